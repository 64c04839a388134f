package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/m-mizutani/goerr/v2"
	"github.com/yonnovia/iawashing/pkg/service/metrics"
	"github.com/yonnovia/iawashing/pkg/service/realtime"
	"github.com/yonnovia/iawashing/pkg/usecase"
)

const defaultPingInterval = 30 * time.Second

type Server struct {
	router       *chi.Mux
	uc           *usecase.UseCases
	authUC       AuthUseCase
	hub          *realtime.Hub
	metrics      *metrics.Recorder
	corsOrigins  []string
	pingInterval time.Duration
}

type Options func(*Server)

// WithAuth overrides the auth use case carried by the use cases.
func WithAuth(authUC AuthUseCase) Options {
	return func(s *Server) {
		s.authUC = authUC
	}
}

// WithHub enables the /ws dashboard endpoint.
func WithHub(hub *realtime.Hub) Options {
	return func(s *Server) {
		s.hub = hub
	}
}

// WithMetrics enables /metrics and per-request counters.
func WithMetrics(m *metrics.Recorder) Options {
	return func(s *Server) {
		s.metrics = m
	}
}

func WithCORSOrigins(origins []string) Options {
	return func(s *Server) {
		s.corsOrigins = origins
	}
}

func WithPingInterval(d time.Duration) Options {
	return func(s *Server) {
		if d > 0 {
			s.pingInterval = d
		}
	}
}

func New(uc *usecase.UseCases, opts ...Options) (*Server, error) {
	if uc == nil {
		return nil, goerr.New("use cases are required")
	}

	r := chi.NewRouter()
	s := &Server{
		router:       r,
		uc:           uc,
		authUC:       uc.Auth,
		corsOrigins:  []string{"*"},
		pingInterval: defaultPingInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.authUC == nil {
		s.authUC = usecase.NewNoAuthnUseCase()
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(accessLogger(s.metrics))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", healthHandler)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route("/survey", func(r chi.Router) {
		r.Get("/questions", questionsHandler(uc.Survey))
		r.Post("/{sessionId}", submitHandler(uc.Survey))
		r.Post("/{sessionId}/feedback", feedbackHandler(uc.Survey))
	})

	r.Post("/auth/login", loginHandler(s.authUC))

	r.Route("/admin", func(r chi.Router) {
		r.Use(authMiddleware(s.authUC))
		r.Get("/sessions", listSessionsHandler(uc.Admin))
		r.Post("/sessions", createSessionHandler(uc.Admin))
		r.Post("/sessions/{sessionId}/archive", archiveSessionHandler(uc.Admin))
		r.Get("/sessions/{sessionId}/stats", sessionStatsHandler(uc.Admin))
		r.Get("/sessions/{sessionId}/export-feedback", exportFeedbackHandler(uc.Export))
		r.Get("/submissions", listSubmissionsHandler(uc.Admin))
		r.Get("/history", historyHandler(uc.Admin))
		r.Get("/audit-logs", auditLogsHandler(uc.Admin))
	})

	if s.hub != nil {
		r.With(wsAuthMiddleware(s.authUC)).Get("/ws", wsHandler(s.hub, s.metrics, s.corsOrigins, s.pingInterval))
	}

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}
