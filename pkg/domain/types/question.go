package types

import (
	"fmt"
	"strconv"
	"strings"
)

// QuestionID identifies one of the ten survey questions in canonical form
// ("q1".."q10").
type QuestionID string

const (
	Q1  QuestionID = "q1"
	Q2  QuestionID = "q2"
	Q3  QuestionID = "q3"
	Q4  QuestionID = "q4"
	Q5  QuestionID = "q5"
	Q6  QuestionID = "q6"
	Q7  QuestionID = "q7"
	Q8  QuestionID = "q8"
	Q9  QuestionID = "q9"
	Q10 QuestionID = "q10"
)

// QuestionCount is the number of questions in the survey.
const QuestionCount = 10

// AllQuestionIDs returns q1..q10 in order.
func AllQuestionIDs() []QuestionID {
	return []QuestionID{Q1, Q2, Q3, Q4, Q5, Q6, Q7, Q8, Q9, Q10}
}

// Number returns the 1-based question number, or 0 when the ID is not valid.
func (q QuestionID) Number() int {
	n, ok := questionNumber(string(q), "q")
	if !ok {
		return 0
	}
	return n
}

// IsValid checks if the ID is a canonical question ID.
func (q QuestionID) IsValid() bool {
	return q.Number() != 0 && string(q) == strings.ToLower(string(q))
}

// Alias returns the long form key ("question1") accepted for this question.
func (q QuestionID) Alias() string {
	return fmt.Sprintf("question%d", q.Number())
}

// String returns the string representation of the ID
func (q QuestionID) String() string {
	return string(q)
}

// ParseQuestionKey resolves an answer key to its canonical QuestionID.
// "q1", "Q1", "question1" and "Question1" all resolve to Q1. Surrounding
// whitespace is ignored.
func ParseQuestionKey(key string) (QuestionID, bool) {
	k := strings.ToLower(strings.TrimSpace(key))

	for _, prefix := range []string{"question", "q"} {
		if n, ok := questionNumber(k, prefix); ok {
			return QuestionID(fmt.Sprintf("q%d", n)), true
		}
	}
	return "", false
}

func questionNumber(key, prefix string) (int, bool) {
	rest, found := strings.CutPrefix(key, prefix)
	if !found || rest == "" || rest[0] == '0' {
		return 0, false
	}
	for _, c := range rest {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 || n > QuestionCount {
		return 0, false
	}
	return n, true
}
