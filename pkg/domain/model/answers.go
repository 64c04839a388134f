package model

import (
	"encoding/json"
	"sort"
	"strconv"

	"github.com/yonnovia/iawashing/pkg/domain/types"
)

// Answers is the raw answer set of a submission keyed as the respondent
// sent it ("q1", "question1", "Q1", ...).
type Answers map[string]string

// NewAnswers converts a decoded JSON object into Answers. Strings are kept,
// numbers are written in their shortest decimal form, and any other value
// (null, bool, nested object) is dropped so it behaves like a missing answer.
func NewAnswers(raw map[string]any) Answers {
	answers := make(Answers, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			answers[k] = val
		case float64:
			answers[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case json.Number:
			answers[k] = val.String()
		case int:
			answers[k] = strconv.Itoa(val)
		case int64:
			answers[k] = strconv.FormatInt(val, 10)
		}
	}
	return answers
}

// Lookup returns the answer for q. The canonical key ("q1") wins over the
// long alias ("question1"), which wins over any other spelling that
// resolves to the same question ("Q1"); among those the lexically smallest
// key is used so the result does not depend on map iteration order.
// Values are returned exactly as sent; "Oui " is not "Oui".
func (a Answers) Lookup(q types.QuestionID) (string, bool) {
	if v, ok := a[q.String()]; ok {
		return v, true
	}
	if v, ok := a[q.Alias()]; ok {
		return v, true
	}

	var keys []string
	for k := range a {
		if id, ok := types.ParseQuestionKey(k); ok && id == q {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return "", false
	}
	sort.Strings(keys)
	return a[keys[0]], true
}

// Get returns the answer for q, or "" when it is missing.
func (a Answers) Get(q types.QuestionID) string {
	v, _ := a.Lookup(q)
	return v
}

// Canonical returns a copy keyed by canonical question IDs. Keys that do not
// name a question are dropped.
func (a Answers) Canonical() map[types.QuestionID]string {
	out := make(map[types.QuestionID]string, types.QuestionCount)
	for _, q := range types.AllQuestionIDs() {
		if v, ok := a.Lookup(q); ok {
			out[q] = v
		}
	}
	return out
}

// Clone returns a copy of the answer set.
func (a Answers) Clone() Answers {
	if a == nil {
		return nil
	}
	out := make(Answers, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}
