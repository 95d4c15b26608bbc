package services

import (
	"strings"
	"time"

	"github.com/canvass-io/canvass/internal/models"
)

// ResponseRepository is the persistence contract for responses and their
// embedded answers.
type ResponseRepository interface {
	NextID() (int64, error)
	SaveResponse(r *models.Response) error
	ListBySurvey(surveyID int64) ([]*models.Response, error)
}

// ResponseService hosts response submission and result aggregation.
type ResponseService struct {
	responses ResponseRepository
	surveys   SurveyRepository
	now       func() time.Time
}

func NewResponseService(responses ResponseRepository, surveys SurveyRepository) *ResponseService {
	return &ResponseService{
		responses: responses,
		surveys:   surveys,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// SubmitResponse validates every answer against its question's type rule
// before anything is written, so a response either fully commits or fully
// fails. Answers may cover a subset of the survey's questions.
func (s *ResponseService) SubmitResponse(surveyID int64, respondentID string, answers map[int64]string) (*models.Response, error) {
	sv, err := s.surveys.GetSurvey(surveyID)
	if err != nil {
		return nil, err
	}
	if sv == nil {
		return nil, NewNotFoundError("survey not found")
	}
	if strings.TrimSpace(respondentID) == "" {
		return nil, NewInvalidError("respondent id required")
	}

	questions, err := s.surveys.ListQuestions(surveyID)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	normalized := make(map[int64]string, len(answers))
	for qid, raw := range answers {
		q, ok := byID[qid]
		if !ok {
			return nil, NewInvalidError("question does not belong to survey")
		}
		val, err := models.ValidateAnswer(q, raw)
		if err != nil {
			return nil, NewInvalidError(err.Error())
		}
		normalized[qid] = val
	}

	id, err := s.responses.NextID()
	if err != nil {
		return nil, err
	}
	r := &models.Response{
		ID:           id,
		SurveyID:     surveyID,
		RespondentID: respondentID,
		Answers:      normalized,
		SubmittedAt:  s.now(),
	}
	if err := s.responses.SaveResponse(r); err != nil {
		return nil, err
	}
	return r, nil
}
