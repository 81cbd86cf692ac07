// Package server exposes a loaded package database over HTTP.
//
// The server holds one parsed corpus in memory and answers lookups and
// resolution requests against it. Every request runs its own resolution;
// the database is read-only and shared.
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/debimpact/pkg/errors"
	"github.com/matzehuels/debimpact/pkg/pipeline"
	"github.com/matzehuels/debimpact/pkg/pkgdb"
	"github.com/matzehuels/debimpact/pkg/resolve"
	"github.com/matzehuels/debimpact/pkg/store"
)

const (
	readHeaderTimeout = 10 * time.Second
	maxBodyBytes      = 1 << 20
)

// Config wires a Server to its dependencies.
type Config struct {
	Addr     string
	Database *pkgdb.Database
	Digest   string          // Corpus digest; keys cached reports
	Source   string          // Where the corpus came from, for /healthz
	Runner   *pipeline.Runner
	Resolve  resolve.Options // Defaults for requests that omit them
	Store    store.Store     // Optional report history
	Logger   *log.Logger
}

// Server serves the debimpact API.
type Server struct {
	cfg        Config
	httpServer *http.Server
}

// New creates a Server. Database and Runner are required.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, nil, cfg.Logger)
	}
	s := &Server{cfg: cfg}
	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return s
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/packages/{name}", s.handlePackage)
		r.Get("/binaries/{name}/source", s.handleSourceOf)
		r.Get("/dependents/{name}", s.handleDependents)
		r.Post("/resolve", s.handleResolve)
		r.Get("/reports", s.handleReports)
		r.Get("/reports/{id}", s.handleReport)
	})
	return r
}

// Start listens until Shutdown is called.
func (s *Server) Start() error {
	s.cfg.Logger.Info("listening", "addr", s.httpServer.Addr, "packages", s.cfg.Database.Len())
	if err := s.httpServer.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.cfg.Logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Microsecond),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

type errorResponse struct {
	Error   errors.Code `json:"error"`
	Message string      `json:"message"`
}

// statusFor maps error codes to HTTP statuses.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidPackage, errors.ErrCodeInvalidMode,
		errors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeReportNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := statusFor(code)
	if status >= 500 {
		s.cfg.Logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: code, Message: errors.UserMessage(err)})
}
