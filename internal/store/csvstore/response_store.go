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

var responseHeader = []string{"id", "survey_id", "respondent_id", "answers", "submitted_at"}

// ResponseStore keeps responses with their embedded answers in
// responses.csv. One row per response; the answer map is a JSON object cell.
type ResponseStore struct {
	mu     sync.Mutex
	rows   table
	nextID int64 // 0 until first scan
}

var _ services.ResponseRepository = (*ResponseStore)(nil)

func NewResponseStore(dataDir string) *ResponseStore {
	return &ResponseStore{
		rows: table{path: filepath.Join(dataDir, "responses.csv"), header: responseHeader},
	}
}

func (s *ResponseStore) NextID() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nextID == 0 {
		max, err := s.rows.maxID()
		if err != nil {
			return 0, err
		}
		s.nextID = max + 1
	}
	id := s.nextID
	s.nextID++
	return id, nil
}

func (s *ResponseStore) SaveResponse(r *models.Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := encodeResponse(r)
	if err != nil {
		return err
	}
	return s.rows.appendRow(rec)
}

// ListBySurvey returns responses in submission order, which is file order.
func (s *ResponseStore) ListBySurvey(surveyID int64) ([]*models.Response, error) {
	rows, err := s.rows.readRows()
	if err != nil {
		return nil, err
	}
	out := []*models.Response{}
	for _, rec := range rows {
		r, err := decodeResponse(rec)
		if err != nil {
			return nil, err
		}
		if r.SurveyID == surveyID {
			out = append(out, r)
		}
	}
	return out, nil
}

func encodeResponse(r *models.Response) ([]string, error) {
	answers := ""
	if len(r.Answers) > 0 {
		b, err := json.Marshal(r.Answers)
		if err != nil {
			return nil, err
		}
		answers = string(b)
	}
	return []string{
		strconv.FormatInt(r.ID, 10),
		strconv.FormatInt(r.SurveyID, 10),
		r.RespondentID,
		answers,
		r.SubmittedAt.Format(time.RFC3339Nano),
	}, nil
}

func decodeResponse(rec []string) (*models.Response, error) {
	id, err := strconv.ParseInt(rec[0], 10, 64)
	if err != nil {
		return nil, err
	}
	surveyID, err := strconv.ParseInt(rec[1], 10, 64)
	if err != nil {
		return nil, err
	}
	answers := map[int64]string{}
	if rec[3] != "" {
		if err := json.Unmarshal([]byte(rec[3]), &answers); err != nil {
			return nil, err
		}
	}
	submittedAt, err := time.Parse(time.RFC3339Nano, rec[4])
	if err != nil {
		return nil, err
	}
	return &models.Response{
		ID:           id,
		SurveyID:     surveyID,
		RespondentID: rec[2],
		Answers:      answers,
		SubmittedAt:  submittedAt,
	}, nil
}
