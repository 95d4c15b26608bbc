// Package sqlitestore is a SQLite-backed implementation of the repository
// contracts in the services package. It exists to keep those contracts
// storage-agnostic: services run unchanged against either this store or the
// flat-file one.
package sqlitestore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/canvass-io/canvass/internal/models"
	"github.com/canvass-io/canvass/internal/services"
)

const schema = `
CREATE TABLE IF NOT EXISTS surveys (
    id          INTEGER PRIMARY KEY,
    title       TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    created_at  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS questions (
    id        INTEGER PRIMARY KEY,
    survey_id INTEGER NOT NULL REFERENCES surveys(id),
    text      TEXT NOT NULL,
    type      TEXT NOT NULL,
    options   TEXT
);
CREATE TABLE IF NOT EXISTS responses (
    id            INTEGER PRIMARY KEY,
    survey_id     INTEGER NOT NULL REFERENCES surveys(id),
    respondent_id TEXT NOT NULL,
    answers       TEXT,
    submitted_at  TEXT NOT NULL
);
`

// Store implements both SurveyRepository and ResponseRepository over one
// SQLite database.
type Store struct {
	db *sql.DB

	mu             sync.Mutex
	nextSurveyID   int64
	nextQuestionID int64
	nextResponseID int64
}

var (
	_ services.SurveyRepository   = (*Store)(nil)
	_ services.ResponseRepository = (*Store)(nil)
)

// Open opens (creating if necessary) the database at path and bootstraps the
// schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	st, err := NewStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return st, nil
}

func NewStore(db *sql.DB) (*Store, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("bootstrap schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) nextFrom(counter *int64, table string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if *counter == 0 {
		var max sql.NullInt64
		if err := s.db.QueryRow("SELECT MAX(id) FROM " + table).Scan(&max); err != nil {
			return 0, err
		}
		*counter = max.Int64 + 1
	}
	id := *counter
	*counter++
	return id, nil
}

func (s *Store) NextSurveyID() (int64, error)   { return s.nextFrom(&s.nextSurveyID, "surveys") }
func (s *Store) NextQuestionID() (int64, error) { return s.nextFrom(&s.nextQuestionID, "questions") }
func (s *Store) NextID() (int64, error)         { return s.nextFrom(&s.nextResponseID, "responses") }

func (s *Store) SaveSurvey(sv *models.Survey) error {
	_, err := s.db.Exec(
		`INSERT INTO surveys (id, title, description, created_at) VALUES (?, ?, ?, ?)`,
		sv.ID, sv.Title, sv.Description, sv.CreatedAt.Format(time.RFC3339Nano),
	)
	return err
}

func (s *Store) SaveQuestion(q *models.Question) error {
	opts, err := encodeJSON(q.Options)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO questions (id, survey_id, text, type, options) VALUES (?, ?, ?, ?, ?)`,
		q.ID, q.SurveyID, q.Text, string(q.Type), opts,
	)
	return err
}

func (s *Store) SaveResponse(r *models.Response) error {
	answers, err := encodeJSON(r.Answers)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO responses (id, survey_id, respondent_id, answers, submitted_at) VALUES (?, ?, ?, ?, ?)`,
		r.ID, r.SurveyID, r.RespondentID, answers, r.SubmittedAt.Format(time.RFC3339Nano),
	)
	return err
}

func (s *Store) GetSurvey(id int64) (*models.Survey, error) {
	row := s.db.QueryRow(`SELECT id, title, description, created_at FROM surveys WHERE id = ?`, id)
	sv, err := scanSurvey(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return sv, err
}

func (s *Store) GetQuestion(id int64) (*models.Question, error) {
	row := s.db.QueryRow(`SELECT id, survey_id, text, type, options FROM questions WHERE id = ?`, id)
	q, err := scanQuestion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return q, err
}

func (s *Store) ListSurveys() ([]*models.Survey, error) {
	rows, err := s.db.Query(`SELECT id, title, description, created_at FROM surveys ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*models.Survey{}
	for rows.Next() {
		sv, err := scanSurvey(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sv)
	}
	return out, rows.Err()
}

func (s *Store) ListQuestions(surveyID int64) ([]*models.Question, error) {
	rows, err := s.db.Query(
		`SELECT id, survey_id, text, type, options FROM questions WHERE survey_id = ? ORDER BY id`, surveyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*models.Question{}
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *Store) ListBySurvey(surveyID int64) ([]*models.Response, error) {
	rows, err := s.db.Query(
		`SELECT id, survey_id, respondent_id, answers, submitted_at FROM responses WHERE survey_id = ? ORDER BY id`, surveyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*models.Response{}
	for rows.Next() {
		var (
			r           models.Response
			answers     sql.NullString
			submittedAt string
		)
		if err := rows.Scan(&r.ID, &r.SurveyID, &r.RespondentID, &answers, &submittedAt); err != nil {
			return nil, err
		}
		r.Answers = map[int64]string{}
		if answers.Valid && answers.String != "" {
			if err := json.Unmarshal([]byte(answers.String), &r.Answers); err != nil {
				return nil, err
			}
		}
		if r.SubmittedAt, err = time.Parse(time.RFC3339Nano, submittedAt); err != nil {
			return nil, err
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSurvey(row scanner) (*models.Survey, error) {
	var (
		sv        models.Survey
		createdAt string
	)
	if err := row.Scan(&sv.ID, &sv.Title, &sv.Description, &createdAt); err != nil {
		return nil, err
	}
	var err error
	if sv.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, err
	}
	return &sv, nil
}

func scanQuestion(row scanner) (*models.Question, error) {
	var (
		q     models.Question
		qtype string
		opts  sql.NullString
	)
	if err := row.Scan(&q.ID, &q.SurveyID, &q.Text, &qtype, &opts); err != nil {
		return nil, err
	}
	q.Type = models.QuestionType(qtype)
	if opts.Valid && opts.String != "" {
		if err := json.Unmarshal([]byte(opts.String), &q.Options); err != nil {
			return nil, err
		}
	}
	return &q, nil
}

func encodeJSON(v any) (sql.NullString, error) {
	switch t := v.(type) {
	case []string:
		if len(t) == 0 {
			return sql.NullString{}, nil
		}
	case map[int64]string:
		if len(t) == 0 {
			return sql.NullString{}, nil
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}
