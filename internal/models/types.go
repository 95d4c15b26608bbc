package models

import "time"

// Survey is a named collection of ordered questions accepting submissions.
// Entities are value records: mutation happens by building a new copy, never
// in place, so they are safe to share across calls.
type Survey struct {
	ID          int64
	Title       string
	Description string
	CreatedAt   time.Time
	Questions   []*Question
}

// WithQuestion returns a copy of the survey with q appended to its question
// ordering. The receiver is left untouched.
func (s *Survey) WithQuestion(q *Question) *Survey {
	cp := *s
	cp.Questions = make([]*Question, 0, len(s.Questions)+1)
	cp.Questions = append(cp.Questions, s.Questions...)
	cp.Questions = append(cp.Questions, q)
	return &cp
}

// Question is a single prompt within a survey. Type and its metadata are
// fixed at creation.
type Question struct {
	ID       int64
	SurveyID int64
	Text     string
	Type     QuestionType
	Options  []string // choice questions only
}

// Response is one respondent's submission against a survey: a mapping from
// question ID to the raw answer payload.
type Response struct {
	ID           int64
	SurveyID     int64
	RespondentID string
	Answers      map[int64]string
	SubmittedAt  time.Time
}
