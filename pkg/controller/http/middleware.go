package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"
	"github.com/yonnovia/iawashing/pkg/domain/model/auth"
	"github.com/yonnovia/iawashing/pkg/service/metrics"
	"github.com/yonnovia/iawashing/pkg/usecase"
	"github.com/yonnovia/iawashing/pkg/utils/errutil"
	"github.com/yonnovia/iawashing/pkg/utils/logging"
)

// requestLogger stores a logger tagged with the request ID in the context.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := logging.Default()
		if id := middleware.GetReqID(r.Context()); id != "" {
			logger = logger.With("request_id", id)
		}
		next.ServeHTTP(w, r.WithContext(logging.With(r.Context(), logger)))
	})
}

// accessLogger logs HTTP requests and counts them by route pattern
func accessLogger(m *metrics.Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				route := r.URL.Path
				if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
					route = rctx.RoutePattern()
				}
				if m != nil {
					m.RecordHTTPRequest(r.Method, route, ww.Status())
				}

				logging.From(r.Context()).Info("access",
					"method", r.Method,
					"path", r.URL.Path,
					"route", route,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start),
					"remote", r.RemoteAddr,
					"user_agent", r.UserAgent(),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(h, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

func authenticate(authUC AuthUseCase, token string, w http.ResponseWriter, r *http.Request, next http.Handler) {
	if !authUC.IsNoAuthn() && token == "" {
		err := goerr.Wrap(usecase.ErrInvalidToken, "authentication required")
		errutil.HandleHTTP(r.Context(), w, err, http.StatusUnauthorized)
		return
	}

	claims, err := authUC.ValidateToken(r.Context(), token)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusUnauthorized)
		return
	}
	if !claims.IsAdmin() {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(usecase.ErrInvalidToken, "admin role required"), http.StatusUnauthorized)
		return
	}

	ctx := auth.ContextWithClaims(r.Context(), claims)
	ctx = logging.With(ctx, logging.From(ctx).With("actor", claims.Subject))
	next.ServeHTTP(w, r.WithContext(ctx))
}

// authMiddleware requires an admin bearer token
func authMiddleware(authUC AuthUseCase) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authenticate(authUC, bearerToken(r), w, r, next)
		})
	}
}

// wsAuthMiddleware accepts the token from the query string as well, since
// browsers cannot set headers on a websocket handshake
func wsAuthMiddleware(authUC AuthUseCase) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				token = r.URL.Query().Get("token")
			}
			authenticate(authUC, token, w, r, next)
		})
	}
}
