package http_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/m-mizutani/gt"
	"github.com/yonnovia/iawashing/pkg/cli/config"
	httpctrl "github.com/yonnovia/iawashing/pkg/controller/http"
	"github.com/yonnovia/iawashing/pkg/domain/model"
	"github.com/yonnovia/iawashing/pkg/repository/memory"
	"github.com/yonnovia/iawashing/pkg/service/metrics"
	"github.com/yonnovia/iawashing/pkg/service/realtime"
	"github.com/yonnovia/iawashing/pkg/usecase"
)

const testPassword = "s3cret"

type testServer struct {
	*httptest.Server
	hub *realtime.Hub
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	repo := memory.New()
	hub := realtime.NewHub()
	recorder := metrics.New()

	authUC, err := usecase.NewAuthUseCase(repo, testPassword,
		usecase.WithTokenSecret([]byte("0123456789abcdef0123456789abcdef")))
	gt.NoError(t, err).Required()

	uc := usecase.New(repo,
		usecase.WithQuestionnaire(config.DefaultQuestionnaire()),
		usecase.WithPublisher(hub),
		usecase.WithMetrics(recorder),
		usecase.WithAuth(authUC),
	)

	srv, err := httpctrl.New(uc,
		httpctrl.WithHub(hub),
		httpctrl.WithMetrics(recorder),
		httpctrl.WithPingInterval(time.Second),
	)
	gt.NoError(t, err).Required()

	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return &testServer{Server: ts, hub: hub}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		switch v := body.(type) {
		case string:
			r = strings.NewReader(v)
		default:
			data, err := json.Marshal(v)
			gt.NoError(t, err).Required()
			r = bytes.NewReader(data)
		}
	}

	req, err := http.NewRequest(method, ts.URL+path, r)
	gt.NoError(t, err).Required()
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.Client().Do(req)
	gt.NoError(t, err).Required()
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	gt.NoError(t, json.NewDecoder(resp.Body).Decode(&v)).Required()
	return v
}

func (ts *testServer) login(t *testing.T) string {
	t.Helper()
	resp := ts.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "admin",
		"password": testPassword,
	})
	gt.Value(t, resp.StatusCode).Equal(http.StatusOK)
	body := decode[map[string]any](t, resp)
	token, ok := body["access_token"].(string)
	gt.Bool(t, ok).True()
	return token
}

func (ts *testServer) createSession(t *testing.T, token, title string) string {
	t.Helper()
	resp := ts.do(t, http.MethodPost, "/admin/sessions", token, map[string]any{"title": title})
	gt.Value(t, resp.StatusCode).Equal(http.StatusCreated)
	session := decode[usecase.SessionSummary](t, resp)
	return session.ID.String()
}

func bestAnswers() map[string]any {
	return map[string]any{
		"q1": "Oui", "q2": "Oui", "q3": "3+", "q4": "Oui", "q5": "Oui",
		"q6": "Oui", "q7": "Oui", "q8": "Oui", "q9": "Non", "q10": "<6 mois",
	}
}

func TestServer_Health(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.do(t, http.MethodGet, "/health", "", nil)
	gt.Value(t, resp.StatusCode).Equal(http.StatusOK)
}

func TestServer_Questions(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.do(t, http.MethodGet, "/survey/questions", "", nil)
	gt.Value(t, resp.StatusCode).Equal(http.StatusOK)

	q := decode[model.Questionnaire](t, resp)
	gt.Array(t, q.Questions).Length(10)
	gt.Value(t, q.Questions[0].ID.String()).Equal("q1")
}

func TestServer_Submit(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t)
	sessionID := ts.createSession(t, token, "Campagne")

	t.Run("scores a submission", func(t *testing.T) {
		resp := ts.do(t, http.MethodPost, "/survey/"+sessionID, "", map[string]any{
			"answers": bestAnswers(),
			"job":     "DSI",
		})
		gt.Value(t, resp.StatusCode).Equal(http.StatusCreated)

		result := decode[map[string]any](t, resp)
		gt.Value(t, result["score"]).Equal(float64(0))
		gt.Value(t, result["level"]).Equal("Faible")
		gt.String(t, result["id"].(string)).NotEqual("")
		gt.Value(t, result["interpretation"]).Equal("Votre gouvernance IA semble robuste et alignée sur vos usages.")
	})

	t.Run("numeric answers", func(t *testing.T) {
		resp := ts.do(t, http.MethodPost, "/survey/"+sessionID, "",
			`{"answers": {"q1": "Oui", "q2": "Oui", "q3": 0, "q4": "Oui", "q5": "Oui", "q6": "Oui", "q7": "Oui", "q8": "Oui", "q9": "Oui", "q10": "<6 mois"}}`)
		gt.Value(t, resp.StatusCode).Equal(http.StatusCreated)
		result := decode[map[string]any](t, resp)
		gt.Value(t, result["score"]).Equal(float64(30))
	})

	t.Run("missing answers", func(t *testing.T) {
		resp := ts.do(t, http.MethodPost, "/survey/"+sessionID, "", map[string]any{"job": "DSI"})
		gt.Value(t, resp.StatusCode).Equal(http.StatusBadRequest)
		body := decode[map[string]string](t, resp)
		gt.Value(t, body["error"]).Equal("Le corps doit contenir un objet \"answers\".")
	})

	t.Run("answers is not an object", func(t *testing.T) {
		resp := ts.do(t, http.MethodPost, "/survey/"+sessionID, "", `{"answers": ["Oui"]}`)
		gt.Value(t, resp.StatusCode).Equal(http.StatusBadRequest)
	})

	t.Run("unknown session", func(t *testing.T) {
		resp := ts.do(t, http.MethodPost, "/survey/"+model.NewSessionID().String(), "", map[string]any{"answers": bestAnswers()})
		gt.Value(t, resp.StatusCode).Equal(http.StatusNotFound)
	})

	t.Run("archived session", func(t *testing.T) {
		closedID := ts.createSession(t, token, "Fermée")
		resp := ts.do(t, http.MethodPost, "/admin/sessions/"+closedID+"/archive", token, nil)
		gt.Value(t, resp.StatusCode).Equal(http.StatusOK)

		resp = ts.do(t, http.MethodPost, "/survey/"+closedID, "", map[string]any{"answers": bestAnswers()})
		gt.Value(t, resp.StatusCode).Equal(http.StatusConflict)
	})

	t.Run("feedback", func(t *testing.T) {
		resp := ts.do(t, http.MethodPost, "/survey/"+sessionID, "", map[string]any{"answers": bestAnswers()})
		result := decode[map[string]any](t, resp)

		resp = ts.do(t, http.MethodPost, "/survey/"+sessionID+"/feedback", "", map[string]any{
			"submissionId": result["id"],
			"rating":       5,
			"comment":      "Merci",
		})
		gt.Value(t, resp.StatusCode).Equal(http.StatusCreated)
		body := decode[map[string]string](t, resp)
		gt.Value(t, body["message"]).Equal("Feedback reçu avec succès.")
		gt.String(t, body["id"]).NotEqual("")
	})

	t.Run("feedback with invalid rating", func(t *testing.T) {
		resp := ts.do(t, http.MethodPost, "/survey/"+sessionID+"/feedback", "", map[string]any{"rating": 9})
		gt.Value(t, resp.StatusCode).Equal(http.StatusBadRequest)
	})
}

func TestServer_AdminAuth(t *testing.T) {
	ts := newTestServer(t)

	t.Run("no token", func(t *testing.T) {
		resp := ts.do(t, http.MethodGet, "/admin/sessions", "", nil)
		gt.Value(t, resp.StatusCode).Equal(http.StatusUnauthorized)
	})

	t.Run("invalid token", func(t *testing.T) {
		resp := ts.do(t, http.MethodGet, "/admin/sessions", "garbage", nil)
		gt.Value(t, resp.StatusCode).Equal(http.StatusUnauthorized)
	})

	t.Run("wrong password", func(t *testing.T) {
		resp := ts.do(t, http.MethodPost, "/auth/login", "", map[string]string{
			"username": "admin",
			"password": "nope",
		})
		gt.Value(t, resp.StatusCode).Equal(http.StatusUnauthorized)
	})

	t.Run("valid token", func(t *testing.T) {
		resp := ts.do(t, http.MethodGet, "/admin/sessions", ts.login(t), nil)
		gt.Value(t, resp.StatusCode).Equal(http.StatusOK)
	})
}

func TestServer_AdminEndpoints(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t)
	sessionID := ts.createSession(t, token, "Campagne")

	for range 3 {
		resp := ts.do(t, http.MethodPost, "/survey/"+sessionID, "", map[string]any{"answers": bestAnswers()})
		gt.Value(t, resp.StatusCode).Equal(http.StatusCreated)
	}
	resp := ts.do(t, http.MethodPost, "/survey/"+sessionID, "", map[string]any{"answers": map[string]any{}})
	gt.Value(t, resp.StatusCode).Equal(http.StatusCreated)

	t.Run("title required", func(t *testing.T) {
		resp := ts.do(t, http.MethodPost, "/admin/sessions", token, map[string]any{"title": ""})
		gt.Value(t, resp.StatusCode).Equal(http.StatusBadRequest)
	})

	t.Run("list sessions with counts", func(t *testing.T) {
		resp := ts.do(t, http.MethodGet, "/admin/sessions", token, nil)
		sessions := decode[[]usecase.SessionSummary](t, resp)
		gt.Array(t, sessions).Length(1).Required()
		gt.Value(t, sessions[0].SubmissionsCount).Equal(4)
	})

	t.Run("paginated submissions", func(t *testing.T) {
		resp := ts.do(t, http.MethodGet, "/admin/submissions?sessionId="+sessionID+"&page=2&pageSize=3", token, nil)
		gt.Value(t, resp.StatusCode).Equal(http.StatusOK)
		page := decode[usecase.SubmissionPage](t, resp)
		gt.Value(t, page.Total).Equal(4)
		gt.Value(t, page.Page).Equal(2)
		gt.Value(t, page.PageSize).Equal(3)
		gt.Array(t, page.Items).Length(1)
	})

	t.Run("page size is clamped", func(t *testing.T) {
		resp := ts.do(t, http.MethodGet, "/admin/submissions?sessionId="+sessionID+"&pageSize=1000&page=-1", token, nil)
		page := decode[usecase.SubmissionPage](t, resp)
		gt.Value(t, page.Page).Equal(1)
		gt.Value(t, page.PageSize).Equal(100)
		gt.Array(t, page.Items).Length(4)
	})

	t.Run("submissions without session", func(t *testing.T) {
		resp := ts.do(t, http.MethodGet, "/admin/submissions", token, nil)
		gt.Value(t, resp.StatusCode).Equal(http.StatusBadRequest)
	})

	t.Run("stats", func(t *testing.T) {
		resp := ts.do(t, http.MethodGet, "/admin/sessions/"+sessionID+"/stats", token, nil)
		gt.Value(t, resp.StatusCode).Equal(http.StatusOK)
		stats := decode[model.SessionStats](t, resp)
		gt.Value(t, stats.Total).Equal(4)
		gt.Value(t, stats.Faible).Equal(3)
		gt.Value(t, stats.Eleve).Equal(1)
	})

	t.Run("history", func(t *testing.T) {
		resp := ts.do(t, http.MethodGet, "/admin/history?limit=2", token, nil)
		items := decode[[]usecase.SubmissionView](t, resp)
		gt.Array(t, items).Length(2)
	})

	t.Run("audit logs", func(t *testing.T) {
		resp := ts.do(t, http.MethodGet, "/admin/audit-logs", token, nil)
		logs := decode[[]model.AuditLog](t, resp)
		gt.Bool(t, len(logs) >= 6).True()
	})

	t.Run("export CSV", func(t *testing.T) {
		resp := ts.do(t, http.MethodGet, "/admin/sessions/"+sessionID+"/export-feedback", token, nil)
		gt.Value(t, resp.StatusCode).Equal(http.StatusOK)
		gt.String(t, resp.Header.Get("Content-Type")).Contains("text/csv")
		gt.String(t, resp.Header.Get("Content-Disposition")).Contains("feedbacks_" + sessionID + ".csv")

		records, err := csv.NewReader(resp.Body).ReadAll()
		gt.NoError(t, err).Required()
		gt.Array(t, records).Length(5)
		gt.Array(t, records[0]).Equal(usecase.CSVHeaders)
	})

	t.Run("export unknown session", func(t *testing.T) {
		resp := ts.do(t, http.MethodGet, "/admin/sessions/missing/export-feedback", token, nil)
		gt.Value(t, resp.StatusCode).Equal(http.StatusNotFound)
	})

	t.Run("metrics", func(t *testing.T) {
		resp := ts.do(t, http.MethodGet, "/metrics", "", nil)
		gt.Value(t, resp.StatusCode).Equal(http.StatusOK)
		data, err := io.ReadAll(resp.Body)
		gt.NoError(t, err).Required()
		gt.String(t, string(data)).Contains(`iawashing_submissions_total{level="Faible"} 3`)
		gt.String(t, string(data)).Contains("iawashing_http_requests_total")
	})
}

func wsURL(ts *testServer, query string) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?" + query
}

func TestServer_WebSocket(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t)
	sessionID := ts.createSession(t, token, "Campagne")

	t.Run("rejects missing token", func(t *testing.T) {
		_, resp, err := websocket.DefaultDialer.Dial(wsURL(ts, "sessionId="+sessionID), nil)
		gt.Value(t, err).NotNil()
		gt.Value(t, resp.StatusCode).Equal(http.StatusUnauthorized)
	})

	t.Run("receives session updates", func(t *testing.T) {
		conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, "sessionId="+sessionID+"&token="+token), nil)
		gt.NoError(t, err).Required()
		defer conn.Close()

		// wait until the subscription is registered
		deadline := time.Now().Add(2 * time.Second)
		for ts.hub.SubscriberCount(model.SessionID(sessionID)) == 0 && time.Now().Before(deadline) {
			time.Sleep(10 * time.Millisecond)
		}
		gt.Value(t, ts.hub.SubscriberCount(model.SessionID(sessionID))).Equal(1)

		resp := ts.do(t, http.MethodPost, "/survey/"+sessionID, "", map[string]any{"answers": bestAnswers()})
		gt.Value(t, resp.StatusCode).Equal(http.StatusCreated)

		gt.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second))).Required()
		var event model.DashboardEvent
		gt.NoError(t, conn.ReadJSON(&event)).Required()
		gt.Value(t, event.Event).Equal(model.EventSessionUpdate)
		gt.Value(t, event.SessionID.String()).Equal(sessionID)
		gt.Value(t, event.Submission.Score).Equal(0)
	})

	t.Run("unsubscribes on close", func(t *testing.T) {
		deadline := time.Now().Add(2 * time.Second)
		for ts.hub.SubscriberCount(model.SessionID(sessionID)) != 0 && time.Now().Before(deadline) {
			time.Sleep(10 * time.Millisecond)
		}
		gt.Value(t, ts.hub.SubscriberCount(model.SessionID(sessionID))).Equal(0)
	})

	t.Run("requires session", func(t *testing.T) {
		_, resp, err := websocket.DefaultDialer.DialContext(context.Background(), wsURL(ts, "token="+token), nil)
		gt.Value(t, err).NotNil()
		gt.Value(t, resp.StatusCode).Equal(http.StatusBadRequest)
	})
}
