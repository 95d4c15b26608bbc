package models

import (
	"fmt"
	"strconv"
	"strings"
)

// QuestionType tags the kind of answer a question accepts.
type QuestionType string

const (
	TypeText   QuestionType = "text"
	TypeRating QuestionType = "rating"
	TypeChoice QuestionType = "choice"
)

// Rating answers must parse as an integer within this range.
const (
	RatingMin = 1
	RatingMax = 5
)

// answerValidator checks one raw payload against a question and returns the
// normalized value to store.
type answerValidator func(q *Question, raw string) (string, error)

var answerValidators = map[QuestionType]answerValidator{
	TypeText:   validateText,
	TypeRating: validateRating,
	TypeChoice: validateChoice,
}

// Valid reports whether t is one of the supported question types.
func (t QuestionType) Valid() bool {
	_, ok := answerValidators[t]
	return ok
}

// ValidateDefinition checks the type-specific metadata a question must carry
// at creation time.
func ValidateDefinition(t QuestionType, options []string) error {
	if !t.Valid() {
		return fmt.Errorf("unknown question type %q", t)
	}
	if t == TypeChoice && len(options) == 0 {
		return fmt.Errorf("choice question requires at least one option")
	}
	return nil
}

// ValidateAnswer checks raw against the question's type rule and returns the
// normalized payload. It is pure: no state, no side effects.
func ValidateAnswer(q *Question, raw string) (string, error) {
	v, ok := answerValidators[q.Type]
	if !ok {
		return "", fmt.Errorf("unknown question type %q", q.Type)
	}
	return v(q, raw)
}

func validateText(_ *Question, raw string) (string, error) {
	return raw, nil
}

func validateRating(_ *Question, raw string) (string, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("rating answer %q is not an integer", raw)
	}
	if n < RatingMin || n > RatingMax {
		return "", fmt.Errorf("rating answer %d out of range [%d,%d]", n, RatingMin, RatingMax)
	}
	return strconv.Itoa(n), nil
}

func validateChoice(q *Question, raw string) (string, error) {
	for _, opt := range q.Options {
		if raw == opt {
			return raw, nil
		}
	}
	return "", fmt.Errorf("answer %q is not one of the declared options", raw)
}
