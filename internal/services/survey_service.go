package services

import (
	"strings"
	"time"

	"github.com/canvass-io/canvass/internal/models"
)

// SurveyRepository is the persistence contract for surveys and their
// questions. Implementations own ID generation and durable visibility; they
// return nil (not an error) for lookups that do not resolve. Cross-entity
// validation stays in the services.
type SurveyRepository interface {
	NextSurveyID() (int64, error)
	NextQuestionID() (int64, error)
	SaveSurvey(sv *models.Survey) error
	SaveQuestion(q *models.Question) error
	GetSurvey(id int64) (*models.Survey, error)
	GetQuestion(id int64) (*models.Question, error)
	ListSurveys() ([]*models.Survey, error)
	ListQuestions(surveyID int64) ([]*models.Question, error)
}

// SurveyService hosts the survey and question lifecycle use cases.
type SurveyService struct {
	surveys SurveyRepository
	now     func() time.Time
}

func NewSurveyService(surveys SurveyRepository) *SurveyService {
	return &SurveyService{
		surveys: surveys,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// CreateSurvey validates and persists a new survey and returns it with its
// assigned ID.
func (s *SurveyService) CreateSurvey(title, description string) (*models.Survey, error) {
	if strings.TrimSpace(title) == "" {
		return nil, NewInvalidError("title required")
	}
	id, err := s.surveys.NextSurveyID()
	if err != nil {
		return nil, err
	}
	sv := &models.Survey{
		ID:          id,
		Title:       title,
		Description: description,
		CreatedAt:   s.now(),
	}
	if err := s.surveys.SaveSurvey(sv); err != nil {
		return nil, err
	}
	return sv, nil
}

// AddQuestion appends a question to an existing survey. The question's type
// and metadata are validated before any write.
func (s *SurveyService) AddQuestion(surveyID int64, text string, qtype models.QuestionType, options []string) (*models.Question, error) {
	sv, err := s.surveys.GetSurvey(surveyID)
	if err != nil {
		return nil, err
	}
	if sv == nil {
		return nil, NewNotFoundError("survey not found")
	}
	if strings.TrimSpace(text) == "" {
		return nil, NewInvalidError("question text required")
	}
	if err := models.ValidateDefinition(qtype, options); err != nil {
		return nil, NewInvalidError(err.Error())
	}
	id, err := s.surveys.NextQuestionID()
	if err != nil {
		return nil, err
	}
	q := &models.Question{
		ID:       id,
		SurveyID: surveyID,
		Text:     text,
		Type:     qtype,
		Options:  append([]string(nil), options...),
	}
	if err := s.surveys.SaveQuestion(q); err != nil {
		return nil, err
	}
	return q, nil
}

// GetSurvey returns the survey with its questions attached, in creation
// order.
func (s *SurveyService) GetSurvey(id int64) (*models.Survey, error) {
	sv, err := s.surveys.GetSurvey(id)
	if err != nil {
		return nil, err
	}
	if sv == nil {
		return nil, NewNotFoundError("survey not found")
	}
	qs, err := s.surveys.ListQuestions(id)
	if err != nil {
		return nil, err
	}
	out := *sv
	out.Questions = qs
	return &out, nil
}

// ListSurveys returns survey summaries in insertion order, without questions
// attached.
func (s *SurveyService) ListSurveys() ([]*models.Survey, error) {
	return s.surveys.ListSurveys()
}
