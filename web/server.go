// ABOUTME: Web server hosting a record backend, JSON views, and Prometheus metrics
// ABOUTME: Also renders a read-only HTML dashboard from embedded templates
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/harperreed/crmsync/metrics"
	"github.com/harperreed/crmsync/records"
	"github.com/harperreed/crmsync/session"
	"github.com/harperreed/crmsync/views"
	"github.com/harperreed/crmsync/viz"
)

//go:embed templates/*
var templatesFS embed.FS

// Options configures a Server. Backend may be nil, in which case the record
// routes are not mounted.
type Options struct {
	Backend records.Backend
	Access  records.HandlerOptions
	Logger  *zap.Logger
}

type Server struct {
	ws        *session.Workspace
	opts      Options
	logger    *zap.Logger
	templates *template.Template
	handler   http.Handler
}

func NewServer(ws *session.Workspace, opts Options) (*Server, error) {
	funcMap := template.FuncMap{
		"money": viz.FormatMoney,
		"date": func(t time.Time) string {
			return t.Format("2006-01-02")
		},
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{ws: ws, opts: opts, logger: logger, templates: tmpl}
	s.handler = s.routes()
	return s, nil
}

// Handler returns the fully wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleDashboard)
	mux.HandleFunc("GET /pipeline", s.handlePipeline)
	mux.HandleFunc("GET /api/dashboard", s.handleAPIDashboard)
	mux.HandleFunc("GET /api/pipeline", s.handleAPIPipeline)
	mux.HandleFunc("GET /api/report", s.handleAPIReport)
	mux.Handle("GET /metrics", promhttp.Handler())

	if s.opts.Backend != nil {
		mux.Handle("/v1/", records.NewHandler(s.opts.Backend, s.opts.Access))
	}

	return s.withRequestID(s.withMetrics(mux))
}

// Start serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("starting web server", zap.String("addr", srv.Addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(records.HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(records.HeaderRequestID, id)
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) withMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		metrics.ObserveHTTPRequest(r.Method, routeLabel(r), strconv.Itoa(rec.status), duration)
		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", duration),
			zap.String("request_id", w.Header().Get(records.HeaderRequestID)))
	})
}

// routeLabel keeps metric cardinality bounded by using the matched pattern.
func routeLabel(r *http.Request) string {
	if r.Pattern != "" {
		return r.Pattern
	}
	return "unmatched"
}

// snapshot refreshes the workspace so every page reflects the backend.
func (s *Server) snapshot(w http.ResponseWriter, r *http.Request) (views.Snapshot, bool) {
	if err := s.ws.Refresh(r.Context()); err != nil {
		s.logger.Error("failed to refresh workspace", zap.Error(err))
		http.Error(w, err.Error(), http.StatusBadGateway)
		return views.Snapshot{}, false
	}
	return s.ws.Snapshot(), true
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	data := map[string]interface{}{
		"Dashboard":       views.BuildDashboard(snap, time.Now()),
		"Title":           "Dashboard",
		"ContentTemplate": "dashboard-content",
	}
	s.renderTemplate(w, "layout.html", data)
}

func (s *Server) handlePipeline(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	data := map[string]interface{}{
		"Buckets":         views.GroupByStage(snap.Deals),
		"Title":           "Pipeline",
		"ContentTemplate": "pipeline-content",
	}
	s.renderTemplate(w, "layout.html", data)
}

func (s *Server) renderTemplate(w http.ResponseWriter, name string, data interface{}) {
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("template error", zap.String("template", name), zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleAPIDashboard(w http.ResponseWriter, r *http.Request) {
	if snap, ok := s.snapshot(w, r); ok {
		s.writeJSON(w, views.BuildDashboard(snap, time.Now()))
	}
}

func (s *Server) handleAPIPipeline(w http.ResponseWriter, r *http.Request) {
	if snap, ok := s.snapshot(w, r); ok {
		s.writeJSON(w, views.GroupByStage(snap.Deals))
	}
}

func (s *Server) handleAPIReport(w http.ResponseWriter, r *http.Request) {
	if snap, ok := s.snapshot(w, r); ok {
		s.writeJSON(w, views.BuildReport(snap))
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("error writing response", zap.Error(err))
	}
}
