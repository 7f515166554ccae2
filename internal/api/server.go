// Package api exposes the scraper over HTTP: a health probe, Prometheus
// metrics, and a JSON releases endpoint mirroring the CLI's scrape options.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/dazdaz/app-gcp-changelog/internal/clock"
	"github.com/dazdaz/app-gcp-changelog/internal/metrics"
	"github.com/dazdaz/app-gcp-changelog/internal/pipeline"
	"github.com/dazdaz/app-gcp-changelog/internal/release"
	"github.com/dazdaz/app-gcp-changelog/internal/render"
	"github.com/dazdaz/app-gcp-changelog/internal/source"
)

// Runner executes a scrape. The pipeline satisfies it; tests stub it.
type Runner interface {
	Run(ctx context.Context, sources []source.Source, opts pipeline.Options) ([]release.Group, error)
}

// Server is the HTTP surface of the scraper.
type Server struct {
	runner Runner
	clk    clock.Clock
	logger *zap.Logger
}

// NewServer builds a Server.
func NewServer(runner Runner, clk clock.Clock, logger *zap.Logger) *Server {
	return &Server{runner: runner, clk: clk, logger: logger}
}

// Router assembles the chi router with the standard middleware chain.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	r.Get("/api/v1/releases", s.handleReleases)
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleReleases(w http.ResponseWriter, r *http.Request) {
	sources, opts, err := parseQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	groups, err := s.runner.Run(r.Context(), sources, opts)
	if err != nil {
		s.logger.Error("scrape failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, fmt.Errorf("scrape failed"))
		return
	}

	body, err := render.Render(render.FormatJSON, groups, s.clk.Now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

// parseQuery maps the releases endpoint's query string to sources and
// window options. Exactly one selector is required; the window selectors
// are mutually exclusive, like their CLI flags.
func parseQuery(r *http.Request) ([]source.Source, pipeline.Options, error) {
	q := r.URL.Query()
	var opts pipeline.Options

	var sources []source.Source
	selectors := 0
	if svc := q.Get("service"); svc != "" {
		selectors++
		src, ok := source.Lookup(svc)
		if !ok {
			return nil, opts, fmt.Errorf("unknown service %q", svc)
		}
		sources = []source.Source{src}
	}
	if group := q.Get("group"); group != "" {
		selectors++
		grp, ok := source.Group(group)
		if !ok {
			return nil, opts, fmt.Errorf("unknown group %q", group)
		}
		sources = grp
	}
	if u := q.Get("url"); u != "" {
		selectors++
		sources = []source.Source{source.FromURL("custom", u)}
	}
	if q.Get("blogs") == "true" {
		selectors++
		sources = source.Blogs()
	}
	if selectors != 1 {
		return nil, opts, fmt.Errorf("exactly one of service, group, url, blogs is required")
	}

	windows := 0
	if v := q.Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, opts, fmt.Errorf("days must be a positive integer")
		}
		opts.Days = n
		windows++
	}
	if v := q.Get("months"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, opts, fmt.Errorf("months must be a positive integer")
		}
		opts.Months = n
		windows++
	}
	if v := q.Get("start_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, opts, fmt.Errorf("start_date must be YYYY-MM-DD")
		}
		opts.Start = t
		windows++
	}
	if windows > 1 {
		return nil, opts, fmt.Errorf("days, months, and start_date are mutually exclusive")
	}
	if v := q.Get("end_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, opts, fmt.Errorf("end_date must be YYYY-MM-DD")
		}
		opts.End = t
	}

	for _, c := range q["category"] {
		if !release.ValidCategory(c) {
			return nil, opts, fmt.Errorf("unknown category %q", c)
		}
		opts.Categories = append(opts.Categories, release.Category(c))
	}

	return sources, opts, nil
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
