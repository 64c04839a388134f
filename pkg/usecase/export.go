package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/yonnovia/iawashing/pkg/domain/interfaces"
	"github.com/yonnovia/iawashing/pkg/domain/model"
	"github.com/yonnovia/iawashing/pkg/domain/model/auth"
	"github.com/yonnovia/iawashing/pkg/domain/types"
	"github.com/yonnovia/iawashing/pkg/utils/errutil"
)

// csvTimeFormat matches ISO-8601 with milliseconds in UTC.
const csvTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// CSVHeaders is the header row of the feedback export.
var CSVHeaders = []string{
	"Date", "Score", "Niveau", "Interprétation", "Job",
	"q1", "q2", "q3", "q4", "q5", "q6", "q7", "q8", "q9", "q10",
	"Rating", "Commentaire",
}

type ExportUseCase struct {
	repo interfaces.Repository
	now  func() time.Time
}

// CSVExport is a generated file.
type CSVExport struct {
	Filename string
	Data     []byte
}

// exportAnswer looks the answer up by qN, then questionN, then QN. Other
// spellings are not considered, unlike scoring.
func exportAnswer(answers model.Answers, q types.QuestionID) string {
	for _, key := range []string{q.String(), q.Alias(), "Q" + strconv.Itoa(q.Number())} {
		if v, ok := answers[key]; ok {
			return v
		}
	}
	return ""
}

// latestFeedbackBySubmission keeps, per submission, the last feedback in the
// oldest-first list.
func latestFeedbackBySubmission(feedbacks []*model.Feedback) map[model.SubmissionID]*model.Feedback {
	m := make(map[model.SubmissionID]*model.Feedback, len(feedbacks))
	for _, f := range feedbacks {
		if f.SubmissionID != "" {
			m[f.SubmissionID] = f
		}
	}
	return m
}

// ExportFeedbackCSV builds the CSV of all submissions of a session, oldest
// first, joined with the feedback left for each submission.
func (uc *ExportUseCase) ExportFeedbackCSV(ctx context.Context, sessionID string) (*CSVExport, error) {
	session, err := findSession(ctx, uc.repo, sessionID)
	if err != nil {
		return nil, err
	}

	subs, err := uc.repo.Submission().ListBySession(ctx, session.ID, interfaces.WithOrder(types.SortOrderAsc))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list submissions", goerr.V(SessionIDKey, session.ID))
	}
	feedbacks, err := uc.repo.Feedback().ListBySession(ctx, session.ID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list feedbacks", goerr.V(SessionIDKey, session.ID))
	}
	bySubmission := latestFeedbackBySubmission(feedbacks)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(CSVHeaders); err != nil {
		return nil, goerr.Wrap(err, "failed to write CSV header")
	}

	for _, s := range subs {
		row := []string{
			s.CreatedAt.UTC().Format(csvTimeFormat),
			strconv.Itoa(s.Score),
			s.Level.String(),
			s.Interpretation(),
			s.RespondentJob,
		}
		for _, q := range types.AllQuestionIDs() {
			row = append(row, exportAnswer(s.Answers, q))
		}

		rating, comment := "", ""
		if f, ok := bySubmission[s.ID]; ok {
			if f.Rating != nil {
				rating = strconv.Itoa(*f.Rating)
			}
			comment = f.Comment
		}
		row = append(row, rating, comment)

		if err := w.Write(row); err != nil {
			return nil, goerr.Wrap(err, "failed to write CSV row", goerr.V(SubmissionIDKey, s.ID))
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, goerr.Wrap(err, "failed to flush CSV")
	}

	log := model.NewAuditLog(auth.Actor(ctx), model.AuditActionFeedbackExported, map[string]any{
		"sessionId": session.ID.String(),
		"rows":      len(subs),
	}, uc.now())
	if err := uc.repo.AuditLog().Create(ctx, log); err != nil {
		_ = errutil.Handle(ctx, err, "failed to write audit log")
	}

	return &CSVExport{
		Filename: "feedbacks_" + session.ID.String() + ".csv",
		Data:     buf.Bytes(),
	}, nil
}
