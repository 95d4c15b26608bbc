package services

import (
	"bytes"
	"encoding/csv"
	"sort"
	"strconv"
	"time"

	"github.com/canvass-io/canvass/internal/models"
)

// ExportResult carries rendered export data plus metadata a collaborator can
// forward as-is.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders survey data to CSV for offline analysis.
type ExportService struct {
	surveys   SurveyRepository
	responses ResponseRepository
}

func NewExportService(surveys SurveyRepository, responses ResponseRepository) *ExportService {
	return &ExportService{surveys: surveys, responses: responses}
}

// ExportResponsesCSV renders a wide-format CSV: one row per response, one
// column per question (question text as header), unanswered cells left empty.
func (s *ExportService) ExportResponsesCSV(surveyID int64) (*ExportResult, error) {
	questions, responses, err := s.load(surveyID)
	if err != nil {
		return nil, err
	}

	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"response_id", "respondent_id", "submitted_at"}
	for _, q := range questions {
		header = append(header, q.Text)
	}
	_ = w.Write(header)
	for _, r := range responses {
		row := []string{
			strconv.FormatInt(r.ID, 10),
			r.RespondentID,
			r.SubmittedAt.Format(time.RFC3339),
		}
		for _, q := range questions {
			row = append(row, r.Answers[q.ID])
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return &ExportResult{Filename: "responses.csv", ContentType: "text/csv; charset=utf-8", Data: buf.Bytes()}, nil
}

// ExportResultsCSV renders per-question aggregates: one row per rating or
// text question, one row per declared option for choice questions.
func (s *ExportService) ExportResultsCSV(surveyID int64) (*ExportResult, error) {
	questions, responses, err := s.load(surveyID)
	if err != nil {
		return nil, err
	}

	collected := map[int64][]string{}
	for _, r := range responses {
		for _, q := range questions {
			if raw, ok := r.Answers[q.ID]; ok {
				collected[q.ID] = append(collected[q.ID], raw)
			}
		}
	}

	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	_ = w.Write([]string{"question_id", "question", "type", "count", "mean", "min", "max", "option", "option_count"})
	for _, q := range questions {
		rs := summarize(q, collected[q.ID])
		qid := strconv.FormatInt(q.ID, 10)
		count := strconv.Itoa(rs.Count)
		switch q.Type {
		case models.TypeRating:
			mean := ""
			min := ""
			max := ""
			if rs.Mean != nil {
				mean = strconv.FormatFloat(*rs.Mean, 'f', -1, 64)
				min = strconv.Itoa(rs.Min)
				max = strconv.Itoa(rs.Max)
			}
			if err := w.Write([]string{qid, q.Text, string(q.Type), count, mean, min, max, "", ""}); err != nil {
				return nil, err
			}
		case models.TypeChoice:
			opts := append([]string(nil), q.Options...)
			sort.Strings(opts)
			for _, opt := range opts {
				rec := []string{qid, q.Text, string(q.Type), count, "", "", "", opt, strconv.Itoa(rs.Distribution[opt])}
				if err := w.Write(rec); err != nil {
					return nil, err
				}
			}
		default:
			if err := w.Write([]string{qid, q.Text, string(q.Type), count, "", "", "", "", ""}); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return &ExportResult{Filename: "results.csv", ContentType: "text/csv; charset=utf-8", Data: buf.Bytes()}, nil
}

func (s *ExportService) load(surveyID int64) ([]*models.Question, []*models.Response, error) {
	sv, err := s.surveys.GetSurvey(surveyID)
	if err != nil {
		return nil, nil, err
	}
	if sv == nil {
		return nil, nil, NewNotFoundError("survey not found")
	}
	questions, err := s.surveys.ListQuestions(surveyID)
	if err != nil {
		return nil, nil, err
	}
	responses, err := s.responses.ListBySurvey(surveyID)
	if err != nil {
		return nil, nil, err
	}
	return questions, responses, nil
}
