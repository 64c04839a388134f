package errutil_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/yonnovia/iawashing/pkg/utils/errutil"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", goerr.New("bad", goerr.T(errutil.TagValidation)), http.StatusBadRequest},
		{"not found", goerr.New("missing", goerr.T(errutil.TagNotFound)), http.StatusNotFound},
		{"conflict", goerr.New("archived", goerr.T(errutil.TagConflict)), http.StatusConflict},
		{"unauthorized", goerr.New("denied", goerr.T(errutil.TagUnauthorized)), http.StatusUnauthorized},
		{"wrapped tag", goerr.Wrap(goerr.New("missing", goerr.T(errutil.TagNotFound)), "outer"), http.StatusNotFound},
		{"plain", errors.New("x"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, errutil.StatusCode(tt.err)).Equal(tt.want)
		})
	}
}

func TestHandleHTTP(t *testing.T) {
	t.Run("client error keeps message", func(t *testing.T) {
		rec := httptest.NewRecorder()
		errutil.HandleHTTP(context.Background(), rec, goerr.New("title required"), http.StatusBadRequest)

		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
		var body map[string]string
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body)).Required()
		gt.Value(t, body["error"]).Equal("title required")
	})

	t.Run("server error hides message", func(t *testing.T) {
		rec := httptest.NewRecorder()
		errutil.HandleHTTP(context.Background(), rec, goerr.New("db password leaked"), http.StatusInternalServerError)

		gt.Value(t, rec.Code).Equal(http.StatusInternalServerError)
		gt.String(t, rec.Body.String()).NotContains("password")
	})

	t.Run("nil error writes nothing", func(t *testing.T) {
		rec := httptest.NewRecorder()
		errutil.HandleHTTP(context.Background(), rec, nil, http.StatusInternalServerError)
		gt.Value(t, rec.Body.Len()).Equal(0)
	})
}

func TestHandle_ReportsToSentry(t *testing.T) {
	var (
		mu     sync.Mutex
		events []*sentry.Event
	)
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn: "https://public@sentry.example.com/1",
		BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
			mu.Lock()
			defer mu.Unlock()
			events = append(events, event)
			return nil
		},
	})
	gt.NoError(t, err).Required()
	ctx := sentry.SetHubOnContext(context.Background(), sentry.NewHub(client, sentry.NewScope()))

	cause := goerr.New("db down", goerr.V("session_id", "abc"))
	gt.Error(t, errutil.Handle(ctx, cause, "failed to list sessions")).Is(cause)

	mu.Lock()
	defer mu.Unlock()
	gt.Array(t, events).Length(1).Required()
	details := events[0].Contexts["goerr"]
	gt.Value(t, details["message"]).Equal(any("failed to list sessions"))
	gt.Value(t, details["session_id"]).Equal(any("abc"))
}

func TestHandle_NilError(t *testing.T) {
	gt.NoError(t, errutil.Handle(context.Background(), nil, "unused"))
}
