package services

import (
	"fmt"
	"testing"

	"github.com/canvass-io/canvass/internal/models"
)

func TestResultsRatingAggregate(t *testing.T) {
	_, _, svc, sv, qs := fixture(t)
	qid := qs[models.TypeRating].ID

	for i, rating := range []string{"5", "4", "5", "3"} {
		rid := fmt.Sprintf("resp-%d", i)
		if _, err := svc.SubmitResponse(sv.ID, rid, map[int64]string{qid: rating}); err != nil {
			t.Fatalf("SubmitResponse returned error: %v", err)
		}
	}

	results, err := svc.Results(sv.ID)
	if err != nil {
		t.Fatalf("Results returned error: %v", err)
	}
	rs := results[qid]
	if rs == nil {
		t.Fatal("rating question missing from results")
	}
	if rs.Count != 4 {
		t.Fatalf("count = %d, want 4", rs.Count)
	}
	if rs.Mean == nil || *rs.Mean != 4.25 {
		t.Fatalf("mean = %v, want 4.25", rs.Mean)
	}
	if rs.Min != 3 || rs.Max != 5 {
		t.Fatalf("min/max = %d/%d, want 3/5", rs.Min, rs.Max)
	}
}

func TestResultsRatingEmpty(t *testing.T) {
	_, _, svc, sv, qs := fixture(t)

	results, err := svc.Results(sv.ID)
	if err != nil {
		t.Fatalf("Results returned error: %v", err)
	}
	rs := results[qs[models.TypeRating].ID]
	if rs.Count != 0 {
		t.Fatalf("count = %d, want 0", rs.Count)
	}
	if rs.Mean != nil {
		t.Fatalf("mean = %v, want nil for zero answers", *rs.Mean)
	}
}

func TestResultsChoiceDistribution(t *testing.T) {
	_, _, svc, sv, qs := fixture(t)
	qid := qs[models.TypeChoice].ID

	dist := []string{
		"morning", "morning", "morning", "morning", "morning",
		"afternoon", "afternoon", "afternoon",
		"evening", "evening",
	}
	for i, opt := range dist {
		rid := fmt.Sprintf("resp-%d", i)
		if _, err := svc.SubmitResponse(sv.ID, rid, map[int64]string{qid: opt}); err != nil {
			t.Fatalf("SubmitResponse returned error: %v", err)
		}
	}

	results, err := svc.Results(sv.ID)
	if err != nil {
		t.Fatalf("Results returned error: %v", err)
	}
	rs := results[qid]
	want := map[string]int{"morning": 5, "afternoon": 3, "evening": 2}
	for opt, n := range want {
		if rs.Distribution[opt] != n {
			t.Fatalf("distribution[%s] = %d, want %d", opt, rs.Distribution[opt], n)
		}
	}
	if rs.Count != 10 {
		t.Fatalf("count = %d, want 10", rs.Count)
	}
}

func TestResultsChoiceZeroCountOptionsPresent(t *testing.T) {
	_, _, svc, sv, qs := fixture(t)
	qid := qs[models.TypeChoice].ID

	if _, err := svc.SubmitResponse(sv.ID, "r", map[int64]string{qid: "morning"}); err != nil {
		t.Fatalf("SubmitResponse returned error: %v", err)
	}

	results, err := svc.Results(sv.ID)
	if err != nil {
		t.Fatalf("Results returned error: %v", err)
	}
	rs := results[qid]
	for _, opt := range []string{"morning", "afternoon", "evening"} {
		if _, ok := rs.Distribution[opt]; !ok {
			t.Fatalf("option %q missing from distribution", opt)
		}
	}
	if rs.Distribution["evening"] != 0 {
		t.Fatalf("distribution[evening] = %d, want 0", rs.Distribution["evening"])
	}
}

func TestResultsTextPreservesSubmissionOrder(t *testing.T) {
	_, _, svc, sv, qs := fixture(t)
	qid := qs[models.TypeText].ID

	for i, text := range []string{"A", "B", "C"} {
		rid := fmt.Sprintf("resp-%d", i)
		if _, err := svc.SubmitResponse(sv.ID, rid, map[int64]string{qid: text}); err != nil {
			t.Fatalf("SubmitResponse returned error: %v", err)
		}
	}

	results, err := svc.Results(sv.ID)
	if err != nil {
		t.Fatalf("Results returned error: %v", err)
	}
	rs := results[qid]
	want := []string{"A", "B", "C"}
	if len(rs.Answers) != len(want) {
		t.Fatalf("answers = %v, want %v", rs.Answers, want)
	}
	for i := range want {
		if rs.Answers[i] != want[i] {
			t.Fatalf("answers[%d] = %q, want %q", i, rs.Answers[i], want[i])
		}
	}
}

func TestResultsSurveyMissing(t *testing.T) {
	_, _, svc, _, _ := fixture(t)
	if _, err := svc.Results(404); !IsNotFound(err) {
		t.Fatalf("Results error = %v, want not_found", err)
	}
}
