package services

import (
	"testing"

	"github.com/canvass-io/canvass/internal/models"
)

// stubSurveyRepo is an in-memory SurveyRepository shared by the service
// tests in this package.
type stubSurveyRepo struct {
	surveys      []*models.Survey
	questions    []*models.Question
	nextSurvey   int64
	nextQuestion int64
}

func (s *stubSurveyRepo) NextSurveyID() (int64, error) {
	s.nextSurvey++
	return s.nextSurvey, nil
}

func (s *stubSurveyRepo) NextQuestionID() (int64, error) {
	s.nextQuestion++
	return s.nextQuestion, nil
}

func (s *stubSurveyRepo) SaveSurvey(sv *models.Survey) error {
	s.surveys = append(s.surveys, sv)
	return nil
}

func (s *stubSurveyRepo) SaveQuestion(q *models.Question) error {
	s.questions = append(s.questions, q)
	return nil
}

func (s *stubSurveyRepo) GetSurvey(id int64) (*models.Survey, error) {
	for _, sv := range s.surveys {
		if sv.ID == id {
			return sv, nil
		}
	}
	return nil, nil
}

func (s *stubSurveyRepo) GetQuestion(id int64) (*models.Question, error) {
	for _, q := range s.questions {
		if q.ID == id {
			return q, nil
		}
	}
	return nil, nil
}

func (s *stubSurveyRepo) ListSurveys() ([]*models.Survey, error) {
	return append([]*models.Survey(nil), s.surveys...), nil
}

func (s *stubSurveyRepo) ListQuestions(surveyID int64) ([]*models.Question, error) {
	out := []*models.Question{}
	for _, q := range s.questions {
		if q.SurveyID == surveyID {
			out = append(out, q)
		}
	}
	return out, nil
}

type stubResponseRepo struct {
	responses []*models.Response
	nextID    int64
}

func (s *stubResponseRepo) NextID() (int64, error) {
	s.nextID++
	return s.nextID, nil
}

func (s *stubResponseRepo) SaveResponse(r *models.Response) error {
	s.responses = append(s.responses, r)
	return nil
}

func (s *stubResponseRepo) ListBySurvey(surveyID int64) ([]*models.Response, error) {
	out := []*models.Response{}
	for _, r := range s.responses {
		if r.SurveyID == surveyID {
			out = append(out, r)
		}
	}
	return out, nil
}

func TestCreateSurveyAssignsMonotonicIDs(t *testing.T) {
	svc := NewSurveyService(&stubSurveyRepo{})

	var last int64
	for i := 0; i < 5; i++ {
		sv, err := svc.CreateSurvey("Customer feedback", "quarterly")
		if err != nil {
			t.Fatalf("CreateSurvey returned error: %v", err)
		}
		if sv.ID <= last {
			t.Fatalf("survey id %d not greater than previous %d", sv.ID, last)
		}
		last = sv.ID
	}
}

func TestCreateSurveyEmptyTitle(t *testing.T) {
	repo := &stubSurveyRepo{}
	svc := NewSurveyService(repo)

	for _, title := range []string{"", "   "} {
		if _, err := svc.CreateSurvey(title, "d"); !IsInvalid(err) {
			t.Fatalf("CreateSurvey(%q) error = %v, want invalid", title, err)
		}
	}
	if len(repo.surveys) != 0 {
		t.Fatalf("surveys persisted = %d, want 0", len(repo.surveys))
	}
}

func TestAddQuestionSurveyMissing(t *testing.T) {
	svc := NewSurveyService(&stubSurveyRepo{})

	_, err := svc.AddQuestion(42, "How was it?", models.TypeText, nil)
	if !IsNotFound(err) {
		t.Fatalf("AddQuestion error = %v, want not_found", err)
	}
}

func TestAddQuestionValidation(t *testing.T) {
	repo := &stubSurveyRepo{}
	svc := NewSurveyService(repo)
	sv, err := svc.CreateSurvey("s", "")
	if err != nil {
		t.Fatalf("CreateSurvey returned error: %v", err)
	}

	if _, err := svc.AddQuestion(sv.ID, "  ", models.TypeText, nil); !IsInvalid(err) {
		t.Fatalf("empty text error = %v, want invalid", err)
	}
	if _, err := svc.AddQuestion(sv.ID, "q", models.QuestionType("likert"), nil); !IsInvalid(err) {
		t.Fatalf("unknown type error = %v, want invalid", err)
	}
	if _, err := svc.AddQuestion(sv.ID, "q", models.TypeChoice, nil); !IsInvalid(err) {
		t.Fatalf("choice without options error = %v, want invalid", err)
	}
	if len(repo.questions) != 0 {
		t.Fatalf("questions persisted = %d, want 0", len(repo.questions))
	}

	q, err := svc.AddQuestion(sv.ID, "When?", models.TypeChoice, []string{"am", "pm"})
	if err != nil {
		t.Fatalf("AddQuestion returned error: %v", err)
	}
	if q.SurveyID != sv.ID {
		t.Fatalf("question survey id = %d, want %d", q.SurveyID, sv.ID)
	}
}

func TestGetSurveyAttachesQuestionsInOrder(t *testing.T) {
	svc := NewSurveyService(&stubSurveyRepo{})
	sv, err := svc.CreateSurvey("s", "")
	if err != nil {
		t.Fatalf("CreateSurvey returned error: %v", err)
	}
	for _, text := range []string{"first", "second", "third"} {
		if _, err := svc.AddQuestion(sv.ID, text, models.TypeText, nil); err != nil {
			t.Fatalf("AddQuestion(%q) returned error: %v", text, err)
		}
	}

	got, err := svc.GetSurvey(sv.ID)
	if err != nil {
		t.Fatalf("GetSurvey returned error: %v", err)
	}
	if len(got.Questions) != 3 {
		t.Fatalf("questions attached = %d, want 3", len(got.Questions))
	}
	for i, want := range []string{"first", "second", "third"} {
		if got.Questions[i].Text != want {
			t.Fatalf("question %d text = %q, want %q", i, got.Questions[i].Text, want)
		}
	}

	if _, err := svc.GetSurvey(999); !IsNotFound(err) {
		t.Fatalf("GetSurvey(999) error = %v, want not_found", err)
	}
}

func TestListSurveysInsertionOrder(t *testing.T) {
	svc := NewSurveyService(&stubSurveyRepo{})
	for _, title := range []string{"a", "b", "c"} {
		if _, err := svc.CreateSurvey(title, ""); err != nil {
			t.Fatalf("CreateSurvey(%q) returned error: %v", title, err)
		}
	}
	surveys, err := svc.ListSurveys()
	if err != nil {
		t.Fatalf("ListSurveys returned error: %v", err)
	}
	if len(surveys) != 3 {
		t.Fatalf("surveys listed = %d, want 3", len(surveys))
	}
	for i, want := range []string{"a", "b", "c"} {
		if surveys[i].Title != want {
			t.Fatalf("survey %d title = %q, want %q", i, surveys[i].Title, want)
		}
	}
}
