package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/yonnovia/iawashing/pkg/domain/model"
	"github.com/yonnovia/iawashing/pkg/usecase"
	"github.com/yonnovia/iawashing/pkg/utils/safe"
)

// queryInt parses an optional integer query parameter. Missing or
// malformed values yield 0, which the use cases treat as "default".
func queryInt(r *http.Request, name string) int {
	v, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get(name)))
	if err != nil {
		return 0
	}
	return v
}

func listSessionsHandler(uc *usecase.AdminUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions, err := uc.ListSessions(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, sessions)
	}
}

func createSessionHandler(uc *usecase.AdminUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input usecase.CreateSessionInput
		if err := decodeJSON(r, &input); err != nil {
			writeError(w, r, err)
			return
		}

		session, err := uc.CreateSession(r.Context(), input)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusCreated, session)
	}
}

func archiveSessionHandler(uc *usecase.AdminUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := uc.ArchiveSession(r.Context(), chi.URLParam(r, "sessionId"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, session)
	}
}

func sessionStatsHandler(uc *usecase.AdminUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := uc.SessionStats(r.Context(), model.SessionID(chi.URLParam(r, "sessionId")))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, stats)
	}
}

func listSubmissionsHandler(uc *usecase.AdminUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := uc.ListSubmissions(r.Context(),
			r.URL.Query().Get("sessionId"),
			queryInt(r, "page"),
			queryInt(r, "pageSize"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, page)
	}
}

func historyHandler(uc *usecase.AdminUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := uc.History(r.Context(), queryInt(r, "limit"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, items)
	}
}

func auditLogsHandler(uc *usecase.AdminUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logs, err := uc.AuditLogs(r.Context(), queryInt(r, "limit"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, logs)
	}
}

func exportFeedbackHandler(uc *usecase.ExportUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		export, err := uc.ExportFeedbackCSV(r.Context(), chi.URLParam(r, "sessionId"))
		if err != nil {
			writeError(w, r, err)
			return
		}

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
		w.WriteHeader(http.StatusOK)
		safe.Write(r.Context(), w, export.Data)
	}
}
