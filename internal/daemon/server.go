package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/tdewolff/minify/v2"

	"sptnr/internal/config"
	"sptnr/internal/logging"
	"sptnr/internal/runlogs"
)

// Server exposes the trigger and run log endpoints over HTTP.
type Server struct {
	bind     string
	logDir   string
	logger   *slog.Logger
	launcher Launcher
	metrics  *metrics
	minifier *minify.M
	router   chi.Router

	listener net.Listener
	server   *http.Server
}

// NewServer wires the routes for cfg. launcher starts sync jobs.
func NewServer(cfg *config.Config, launcher Launcher, logger *slog.Logger) (*Server, error) {
	if cfg == nil || launcher == nil {
		return nil, errors.New("trigger server requires config and launcher")
	}
	bind := strings.TrimSpace(cfg.Web.Bind)
	if bind == "" {
		return nil, errors.New("web.bind must be set")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	s := &Server{
		bind:     bind,
		logDir:   cfg.Paths.LogDir,
		logger:   logging.NewComponentLogger(logger, "trigger-server"),
		launcher: launcher,
		metrics:  newMetrics(),
		minifier: newMinifier(),
	}

	r := chi.NewRouter()
	r.Use(apiKeyMiddleware(cfg.Web.APIKeyEnabled, cfg.Web.APIKey, s.recordRejection))
	r.Get("/process", s.handleProcess)
	r.Post("/process", s.handleProcess)
	r.Route("/logs", func(r chi.Router) {
		r.Get("/", s.handleLogList)
		r.Get("/{name}", s.handleLogView)
	})
	r.Method(http.MethodGet, "/metrics", s.metrics.handler())
	s.router = r

	s.server = &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

// Handler returns the routed handler without a listener.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on the configured address and serves until ctx is done or
// Stop is called.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("trigger listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("trigger server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("trigger server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Addr reports the bound address once Start has succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the listener down, waiting briefly for in-flight requests.
func (s *Server) Stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

// handleProcess launches a sync job. The answer does not depend on whether
// the spawn worked; failures only reach the daemon log.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	args := BuildArgs(r.URL.Query())
	if err := s.launcher.Launch(args); err != nil {
		s.metrics.trigger(outcomeLaunchFailed)
		logging.WarnWithContext(s.logger, "sync job launch failed", "sync_job_launch_failed",
			logging.Strings("args", args),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check web.job_binary and that the sptnr binary is executable"),
			logging.String(logging.FieldImpact, "requested sync did not run"),
		)
	} else {
		s.metrics.trigger(outcomeStarted)
		s.logger.Info("sync job requested",
			logging.String("remote", r.RemoteAddr),
			logging.Strings("args", args),
		)
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"message": "Processing started"})
}

func (s *Server) handleLogList(w http.ResponseWriter, r *http.Request) {
	entries, err := runlogs.List(s.logDir)
	if err != nil {
		s.metrics.logRequest("list", http.StatusInternalServerError)
		s.logger.Error("list run logs failed", logging.Error(err))
		s.writeText(w, http.StatusInternalServerError, "An error occurred: "+err.Error())
		return
	}
	body := renderLogTable(entries, r.URL.Query().Get("api_key"))
	s.metrics.logRequest("list", http.StatusOK)
	s.writeHTML(w, http.StatusOK, renderPage("Log Files", body))
}

func (s *Server) handleLogView(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		name = chi.URLParam(r, "name")
	}
	content, err := runlogs.Open(s.logDir, name)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.metrics.logRequest("view", http.StatusNotFound)
		s.writeText(w, http.StatusNotFound, "File not found")
		return
	case err != nil:
		s.metrics.logRequest("view", http.StatusInternalServerError)
		s.logger.Error("read run log failed", logging.String("name", name), logging.Error(err))
		s.writeText(w, http.StatusInternalServerError, "An error occurred: "+err.Error())
		return
	}
	s.metrics.logRequest("view", http.StatusOK)
	s.writeHTML(w, http.StatusOK, renderPage(name, renderLogContent(content)))
}

func (s *Server) recordRejection(r *http.Request) {
	switch {
	case r.URL.Path == "/process":
		s.metrics.trigger(outcomeUnauthorized)
	case r.URL.Path == "/logs" || r.URL.Path == "/logs/":
		s.metrics.logRequest("list", http.StatusUnauthorized)
	case strings.HasPrefix(r.URL.Path, "/logs/"):
		s.metrics.logRequest("view", http.StatusUnauthorized)
	}
	s.logger.Debug("request rejected", logging.String("path", r.URL.Path), logging.String("remote", r.RemoteAddr))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeHTML(w http.ResponseWriter, status int, page string) {
	out, err := s.minifier.String("text/html", page)
	if err != nil {
		s.logger.Debug("html minify failed", logging.Error(err))
		out = page
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, out)
}

func (s *Server) writeText(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, message)
}
