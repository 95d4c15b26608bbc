package services

import (
	"strconv"

	"github.com/canvass-io/canvass/internal/models"
)

// ResultSummary is the per-question aggregate computed from all answers to
// that question across all responses. Which fields are populated depends on
// the question type.
type ResultSummary struct {
	QuestionID   int64
	QuestionText string
	Type         models.QuestionType
	Count        int

	// rating
	Mean *float64 // nil when Count is 0
	Min  int
	Max  int

	// choice: declared option -> answer count, zero-count options included
	Distribution map[string]int

	// text: raw answers in submission order
	Answers []string
}

// Results aggregates every answer to each of the survey's questions. Each
// question is summarized in a single linear pass over its collected answers.
func (s *ResponseService) Results(surveyID int64) (map[int64]*ResultSummary, error) {
	sv, err := s.surveys.GetSurvey(surveyID)
	if err != nil {
		return nil, err
	}
	if sv == nil {
		return nil, NewNotFoundError("survey not found")
	}
	questions, err := s.surveys.ListQuestions(surveyID)
	if err != nil {
		return nil, err
	}
	responses, err := s.responses.ListBySurvey(surveyID)
	if err != nil {
		return nil, err
	}

	// Collect answers per question, preserving response submission order.
	collected := make(map[int64][]string, len(questions))
	for _, r := range responses {
		for _, q := range questions {
			if raw, ok := r.Answers[q.ID]; ok {
				collected[q.ID] = append(collected[q.ID], raw)
			}
		}
	}

	out := make(map[int64]*ResultSummary, len(questions))
	for _, q := range questions {
		out[q.ID] = summarize(q, collected[q.ID])
	}
	return out, nil
}

func summarize(q *models.Question, answers []string) *ResultSummary {
	rs := &ResultSummary{
		QuestionID:   q.ID,
		QuestionText: q.Text,
		Type:         q.Type,
	}
	switch q.Type {
	case models.TypeRating:
		sum := 0
		for _, a := range answers {
			n, err := strconv.Atoi(a)
			if err != nil {
				continue
			}
			if rs.Count == 0 || n < rs.Min {
				rs.Min = n
			}
			if rs.Count == 0 || n > rs.Max {
				rs.Max = n
			}
			sum += n
			rs.Count++
		}
		if rs.Count > 0 {
			mean := float64(sum) / float64(rs.Count)
			rs.Mean = &mean
		}
	case models.TypeChoice:
		rs.Distribution = make(map[string]int, len(q.Options))
		for _, opt := range q.Options {
			rs.Distribution[opt] = 0
		}
		for _, a := range answers {
			if _, ok := rs.Distribution[a]; ok {
				rs.Distribution[a]++
				rs.Count++
			}
		}
	default:
		rs.Answers = append([]string(nil), answers...)
		rs.Count = len(answers)
	}
	return rs
}
