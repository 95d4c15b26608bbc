package csvstore

import (
	"encoding/json"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/canvass-io/canvass/internal/models"
	"github.com/canvass-io/canvass/internal/services"
)

var (
	surveyHeader   = []string{"id", "title", "description", "created_at"}
	questionHeader = []string{"id", "survey_id", "text", "type", "options"}
)

// SurveyStore keeps surveys and questions in surveys.csv and questions.csv
// under a data directory. ID counters are initialized lazily by scanning the
// stores and stay monotonic for the process lifetime; the mutex serializes
// every next-ID/save pair against concurrent callers in the same process.
type SurveyStore struct {
	mu             sync.Mutex
	surveys        table
	questions      table
	nextSurveyID   int64 // 0 until first scan
	nextQuestionID int64
}

var _ services.SurveyRepository = (*SurveyStore)(nil)

func NewSurveyStore(dataDir string) *SurveyStore {
	return &SurveyStore{
		surveys:   table{path: filepath.Join(dataDir, "surveys.csv"), header: surveyHeader},
		questions: table{path: filepath.Join(dataDir, "questions.csv"), header: questionHeader},
	}
}

func (s *SurveyStore) NextSurveyID() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nextSurveyID == 0 {
		max, err := s.surveys.maxID()
		if err != nil {
			return 0, err
		}
		s.nextSurveyID = max + 1
	}
	id := s.nextSurveyID
	s.nextSurveyID++
	return id, nil
}

func (s *SurveyStore) NextQuestionID() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nextQuestionID == 0 {
		max, err := s.questions.maxID()
		if err != nil {
			return 0, err
		}
		s.nextQuestionID = max + 1
	}
	id := s.nextQuestionID
	s.nextQuestionID++
	return id, nil
}

func (s *SurveyStore) SaveSurvey(sv *models.Survey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.surveys.appendRow(encodeSurvey(sv))
}

func (s *SurveyStore) SaveQuestion(q *models.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := encodeQuestion(q)
	if err != nil {
		return err
	}
	return s.questions.appendRow(rec)
}

// GetSurvey returns the first matching record or nil. Questions are not
// attached here; the service layer composes them.
func (s *SurveyStore) GetSurvey(id int64) (*models.Survey, error) {
	rows, err := s.surveys.readRows()
	if err != nil {
		return nil, err
	}
	for _, rec := range rows {
		sv, err := decodeSurvey(rec)
		if err != nil {
			return nil, err
		}
		if sv.ID == id {
			return sv, nil
		}
	}
	return nil, nil
}

func (s *SurveyStore) GetQuestion(id int64) (*models.Question, error) {
	rows, err := s.questions.readRows()
	if err != nil {
		return nil, err
	}
	for _, rec := range rows {
		q, err := decodeQuestion(rec)
		if err != nil {
			return nil, err
		}
		if q.ID == id {
			return q, nil
		}
	}
	return nil, nil
}

func (s *SurveyStore) ListSurveys() ([]*models.Survey, error) {
	rows, err := s.surveys.readRows()
	if err != nil {
		return nil, err
	}
	out := make([]*models.Survey, 0, len(rows))
	for _, rec := range rows {
		sv, err := decodeSurvey(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, sv)
	}
	return out, nil
}

func (s *SurveyStore) ListQuestions(surveyID int64) ([]*models.Question, error) {
	rows, err := s.questions.readRows()
	if err != nil {
		return nil, err
	}
	out := []*models.Question{}
	for _, rec := range rows {
		q, err := decodeQuestion(rec)
		if err != nil {
			return nil, err
		}
		if q.SurveyID == surveyID {
			out = append(out, q)
		}
	}
	return out, nil
}

func encodeSurvey(sv *models.Survey) []string {
	return []string{
		strconv.FormatInt(sv.ID, 10),
		sv.Title,
		sv.Description,
		sv.CreatedAt.Format(time.RFC3339Nano),
	}
}

func decodeSurvey(rec []string) (*models.Survey, error) {
	id, err := strconv.ParseInt(rec[0], 10, 64)
	if err != nil {
		return nil, err
	}
	createdAt, err := time.Parse(time.RFC3339Nano, rec[3])
	if err != nil {
		return nil, err
	}
	return &models.Survey{ID: id, Title: rec[1], Description: rec[2], CreatedAt: createdAt}, nil
}

// Options are embedded as a JSON array so that option strings containing the
// CSV delimiter or the historical pipe separator round-trip exactly.
func encodeQuestion(q *models.Question) ([]string, error) {
	opts := ""
	if len(q.Options) > 0 {
		b, err := json.Marshal(q.Options)
		if err != nil {
			return nil, err
		}
		opts = string(b)
	}
	return []string{
		strconv.FormatInt(q.ID, 10),
		strconv.FormatInt(q.SurveyID, 10),
		q.Text,
		string(q.Type),
		opts,
	}, nil
}

func decodeQuestion(rec []string) (*models.Question, error) {
	id, err := strconv.ParseInt(rec[0], 10, 64)
	if err != nil {
		return nil, err
	}
	surveyID, err := strconv.ParseInt(rec[1], 10, 64)
	if err != nil {
		return nil, err
	}
	var opts []string
	if rec[4] != "" {
		if err := json.Unmarshal([]byte(rec[4]), &opts); err != nil {
			return nil, err
		}
	}
	return &models.Question{
		ID:       id,
		SurveyID: surveyID,
		Text:     rec[2],
		Type:     models.QuestionType(rec[3]),
		Options:  opts,
	}, nil
}
