// Command canvass is a thin command-line collaborator over the survey core.
// It translates flags into service calls and never touches the stores
// directly.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/canvass-io/canvass/internal/models"
	"github.com/canvass-io/canvass/internal/services"
	"github.com/canvass-io/canvass/internal/store/csvstore"
	"github.com/canvass-io/canvass/internal/store/sqlitestore"
	"github.com/canvass-io/canvass/internal/utils"
)

type app struct {
	surveys   *services.SurveyService
	responses *services.ResponseService
	exports   *services.ExportService
	close     func() error
}

func main() {
	_ = godotenv.Load()
	log.SetFlags(0)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	a, err := buildApp()
	if err != nil {
		log.Fatalf("canvass: %v", err)
	}
	defer a.close()

	if err := a.run(os.Args[1], os.Args[2:]); err != nil {
		if se, ok := services.AsServiceError(err); ok {
			log.Fatalf("canvass: %s: %s", se.Code, se.Message)
		}
		log.Fatalf("canvass: %v", err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: canvass <command> [flags]

commands:
  create        create a survey (-title, -desc)
  add-question  add a question (-survey, -text, -type, -options)
  list          list surveys
  show          show a survey with its questions (-survey)
  submit        submit a response (-survey, -respondent, -answer qid=value ...)
  results       print per-question aggregates (-survey)
  export        write responses or results CSV (-survey, -kind, -out)

environment:
  CANVASS_DATA_DIR  data directory (default "data")
  CANVASS_STORE     storage backend: csv or sqlite (default "csv")`)
}

func buildApp() (*app, error) {
	dataDir := utils.SafeEnv("CANVASS_DATA_DIR", "data")
	backend := utils.SafeEnv("CANVASS_STORE", "csv")

	var (
		surveyRepo   services.SurveyRepository
		responseRepo services.ResponseRepository
		closer       = func() error { return nil }
	)
	switch backend {
	case "csv":
		surveyRepo = csvstore.NewSurveyStore(dataDir)
		responseRepo = csvstore.NewResponseStore(dataDir)
	case "sqlite":
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, err
		}
		st, err := sqlitestore.Open(filepath.Join(dataDir, "canvass.db"))
		if err != nil {
			return nil, err
		}
		surveyRepo = st
		responseRepo = st
		closer = st.Close
	default:
		return nil, fmt.Errorf("unknown CANVASS_STORE %q (want csv or sqlite)", backend)
	}

	return &app{
		surveys:   services.NewSurveyService(surveyRepo),
		responses: services.NewResponseService(responseRepo, surveyRepo),
		exports:   services.NewExportService(surveyRepo, responseRepo),
		close:     closer,
	}, nil
}

func (a *app) run(cmd string, args []string) error {
	switch cmd {
	case "create":
		return a.create(args)
	case "add-question":
		return a.addQuestion(args)
	case "list":
		return a.list(args)
	case "show":
		return a.show(args)
	case "submit":
		return a.submit(args)
	case "results":
		return a.results(args)
	case "export":
		return a.export(args)
	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *app) create(args []string) error {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	title := fs.String("title", "", "survey title")
	desc := fs.String("desc", "", "survey description")
	if err := fs.Parse(args); err != nil {
		return err
	}
	sv, err := a.surveys.CreateSurvey(*title, *desc)
	if err != nil {
		return err
	}
	fmt.Printf("created survey %d: %s\n", sv.ID, sv.Title)
	return nil
}

func (a *app) addQuestion(args []string) error {
	fs := flag.NewFlagSet("add-question", flag.ExitOnError)
	surveyID := fs.Int64("survey", 0, "survey id")
	text := fs.String("text", "", "question text")
	qtype := fs.String("type", string(models.TypeText), "question type: text, rating or choice")
	options := fs.String("options", "", "comma-separated options (choice questions)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	var opts []string
	if *options != "" {
		for _, o := range strings.Split(*options, ",") {
			opts = append(opts, strings.TrimSpace(o))
		}
	}
	q, err := a.surveys.AddQuestion(*surveyID, *text, models.QuestionType(*qtype), opts)
	if err != nil {
		return err
	}
	fmt.Printf("added question %d to survey %d\n", q.ID, q.SurveyID)
	return nil
}

func (a *app) list(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	surveys, err := a.surveys.ListSurveys()
	if err != nil {
		return err
	}
	if len(surveys) == 0 {
		fmt.Println("no surveys")
		return nil
	}
	for _, sv := range surveys {
		fmt.Printf("%d\t%s\t%s\n", sv.ID, sv.Title, sv.Description)
	}
	return nil
}

func (a *app) show(args []string) error {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	surveyID := fs.Int64("survey", 0, "survey id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	sv, err := a.surveys.GetSurvey(*surveyID)
	if err != nil {
		return err
	}
	fmt.Printf("survey %d: %s\n%s\n", sv.ID, sv.Title, sv.Description)
	for _, q := range sv.Questions {
		if len(q.Options) > 0 {
			fmt.Printf("  [%d] (%s) %s — %s\n", q.ID, q.Type, q.Text, strings.Join(q.Options, " / "))
			continue
		}
		fmt.Printf("  [%d] (%s) %s\n", q.ID, q.Type, q.Text)
	}
	return nil
}

// answerFlags collects repeated -answer qid=value pairs.
type answerFlags map[int64]string

func (f answerFlags) String() string { return "" }

func (f answerFlags) Set(v string) error {
	k, val, ok := strings.Cut(v, "=")
	if !ok {
		return fmt.Errorf("answer %q is not of the form qid=value", v)
	}
	qid, err := strconv.ParseInt(strings.TrimSpace(k), 10, 64)
	if err != nil {
		return fmt.Errorf("answer %q has a non-integer question id", v)
	}
	f[qid] = val
	return nil
}

func (a *app) submit(args []string) error {
	fs := flag.NewFlagSet("submit", flag.ExitOnError)
	surveyID := fs.Int64("survey", 0, "survey id")
	respondent := fs.String("respondent", "", "respondent identifier (generated when omitted)")
	answers := answerFlags{}
	fs.Var(answers, "answer", "answer as qid=value (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rid := *respondent
	if rid == "" {
		rid = strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	}
	r, err := a.responses.SubmitResponse(*surveyID, rid, answers)
	if err != nil {
		return err
	}
	fmt.Printf("recorded response %d from %s (%d answers)\n", r.ID, r.RespondentID, len(r.Answers))
	return nil
}

func (a *app) results(args []string) error {
	fs := flag.NewFlagSet("results", flag.ExitOnError)
	surveyID := fs.Int64("survey", 0, "survey id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	sv, err := a.surveys.GetSurvey(*surveyID)
	if err != nil {
		return err
	}
	results, err := a.responses.Results(*surveyID)
	if err != nil {
		return err
	}
	fmt.Printf("results for survey %d: %s\n", sv.ID, sv.Title)
	for _, q := range sv.Questions {
		rs := results[q.ID]
		if rs == nil {
			continue
		}
		fmt.Printf("  [%d] %s (%s, %d answers)\n", q.ID, rs.QuestionText, rs.Type, rs.Count)
		switch rs.Type {
		case models.TypeRating:
			if rs.Mean != nil {
				fmt.Printf("      mean %.2f, min %d, max %d\n", *rs.Mean, rs.Min, rs.Max)
			}
		case models.TypeChoice:
			opts := make([]string, 0, len(rs.Distribution))
			for opt := range rs.Distribution {
				opts = append(opts, opt)
			}
			sort.Strings(opts)
			for _, opt := range opts {
				fmt.Printf("      %s: %d\n", opt, rs.Distribution[opt])
			}
		default:
			for _, ans := range rs.Answers {
				fmt.Printf("      - %s\n", ans)
			}
		}
	}
	return nil
}

func (a *app) export(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	surveyID := fs.Int64("survey", 0, "survey id")
	kind := fs.String("kind", "responses", "export kind: responses or results")
	out := fs.String("out", "", "output path (defaults to the export's filename)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	var (
		res *services.ExportResult
		err error
	)
	switch *kind {
	case "responses":
		res, err = a.exports.ExportResponsesCSV(*surveyID)
	case "results":
		res, err = a.exports.ExportResultsCSV(*surveyID)
	default:
		return fmt.Errorf("unknown export kind %q", *kind)
	}
	if err != nil {
		return err
	}
	path := *out
	if path == "" {
		path = res.Filename
	}
	if err := os.WriteFile(path, res.Data, 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d bytes)\n", path, len(res.Data))
	return nil
}
