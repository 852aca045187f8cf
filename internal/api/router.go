// Package api exposes the assessment engine over HTTP. Every request is
// stateless: the caller posts a layout snapshot and gets the reports back.
package api

import (
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"floorsense/internal/assess"
	"floorsense/internal/history"
	"floorsense/internal/observe"
)

// maxBodyBytes bounds a posted layout document.
const maxBodyBytes = 4 << 20

// Config wires the server's collaborators. Only Engine is required.
type Config struct {
	Engine  *assess.Engine
	History *history.Store
	Metrics *observe.Metrics

	// MetricsHandler serves /metrics. Defaults to the Prometheus default
	// registry, which the OTel Prometheus exporter feeds.
	MetricsHandler http.Handler
	// AccessLog receives combined-format access log lines. Defaults to stdout.
	AccessLog io.Writer
	Logger    *slog.Logger
}

// Server holds the HTTP handlers.
type Server struct {
	engine  *assess.Engine
	history *history.Store
	metrics *observe.Metrics
	promh   http.Handler
	access  io.Writer
	logger  *slog.Logger
}

func New(cfg Config) *Server {
	s := &Server{
		engine:  cfg.Engine,
		history: cfg.History,
		metrics: cfg.Metrics,
		promh:   cfg.MetricsHandler,
		access:  cfg.AccessLog,
		logger:  cfg.Logger,
	}
	if s.promh == nil {
		s.promh = promhttp.Handler()
	}
	if s.access == nil {
		s.access = os.Stdout
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Router returns the bare route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", s.healthz).Methods(http.MethodGet)
	r.Handle("/metrics", s.promh).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.Use(mux.MiddlewareFunc(observe.Middleware(s.metrics)))
	v1.HandleFunc("/assessments", s.createAssessment).Methods(http.MethodPost)
	v1.HandleFunc("/assessments/{id}", s.getAssessment).Methods(http.MethodGet)
	v1.HandleFunc("/links", s.listLinks).Methods(http.MethodPost)

	return r
}

// Handler returns the router wrapped with panic recovery and access logging.
func (s *Server) Handler() http.Handler {
	recovered := handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{s.logger}),
	)(s.Router())
	return handlers.CombinedLoggingHandler(s.access, recovered)
}

// recoveryLogger adapts slog to handlers.RecoveryHandlerLogger.
type recoveryLogger struct {
	l *slog.Logger
}

func (r recoveryLogger) Println(v ...any) {
	r.l.Error("api: recovered from panic", "panic", v)
}
