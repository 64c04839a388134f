package model

import (
	"slices"

	"github.com/m-mizutani/goerr/v2"
	"github.com/yonnovia/iawashing/pkg/domain/types"
)

// Question is one entry of the questionnaire shown to respondents.
type Question struct {
	ID      types.QuestionID `json:"id"`
	Text    string           `json:"text"`
	Options []string         `json:"options"`
}

// Questionnaire is the ordered list of the ten questions.
type Questionnaire struct {
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

// Validate checks that every question is present exactly once, in order,
// with text and at least two distinct options.
func (q *Questionnaire) Validate() error {
	if len(q.Questions) != types.QuestionCount {
		return goerr.New("questionnaire must have exactly ten questions",
			goerr.V("count", len(q.Questions)))
	}

	for i, question := range q.Questions {
		want := types.AllQuestionIDs()[i]
		if question.ID != want {
			return goerr.New("question out of order",
				goerr.V("position", i+1),
				goerr.V("expected", want),
				goerr.V("actual", question.ID))
		}
		if question.Text == "" {
			return goerr.New("question text is required", goerr.V("id", question.ID))
		}
		if len(question.Options) < 2 {
			return goerr.New("question needs at least two options", goerr.V("id", question.ID))
		}
		seen := make(map[string]bool, len(question.Options))
		for _, opt := range question.Options {
			if opt == "" {
				return goerr.New("empty option", goerr.V("id", question.ID))
			}
			if seen[opt] {
				return goerr.New("duplicate option", goerr.V("id", question.ID), goerr.V("option", opt))
			}
			seen[opt] = true
		}
	}
	return nil
}

// Question returns the question with the given ID.
func (q *Questionnaire) Question(id types.QuestionID) (Question, bool) {
	idx := slices.IndexFunc(q.Questions, func(x Question) bool { return x.ID == id })
	if idx < 0 {
		return Question{}, false
	}
	return q.Questions[idx], true
}
