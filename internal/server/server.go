package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"

	"github.com/aasan/postgang/internal/config"
	"github.com/aasan/postgang/internal/domain"
)

// Generator produces a calendar document for a postal code
type Generator interface {
	Execute(ctx context.Context, code domain.PostalCode) (string, error)
}

// Server serves delivery-date feeds over HTTP
type Server struct {
	cfg       *config.ServeConfig
	generator Generator
	cache     *expirable.LRU[domain.PostalCode, string]
	registry  *prometheus.Registry
	metrics   *metrics
	logger    *slog.Logger
}

// New creates a feed server. cfg must be normalized.
func New(cfg *config.ServeConfig, generator Generator, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	registry := prometheus.NewRegistry()
	return &Server{
		cfg:       cfg,
		generator: generator,
		cache:     expirable.NewLRU[domain.PostalCode, string](cfg.CacheSize, nil, cfg.CacheTTL),
		registry:  registry,
		metrics:   newMetrics(registry),
		logger:    logger,
	}
}

// Handler routes for feeds, health and metrics
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /postgang/{code}", s.handleFeed)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return mux
}

// Feed returns the cached document for code, generating it on a miss
func (s *Server) Feed(ctx context.Context, code domain.PostalCode) (string, error) {
	if doc, ok := s.cache.Get(code); ok {
		s.metrics.cacheHits.Inc()
		return doc, nil
	}
	return s.generate(ctx, code)
}

// Refresh regenerates the documents for codes, keeping the old entry when a lookup fails
func (s *Server) Refresh(ctx context.Context, codes []domain.PostalCode) {
	for _, code := range codes {
		if ctx.Err() != nil {
			return
		}
		if _, err := s.generate(ctx, code); err != nil {
			s.logger.Warn("feed refresh failed", "code", code, "error", err)
			continue
		}
		s.logger.Debug("feed refreshed", "code", code)
	}
}

func (s *Server) generate(ctx context.Context, code domain.PostalCode) (string, error) {
	start := time.Now()
	doc, err := s.generator.Execute(ctx, code)
	s.metrics.fetch.Observe(time.Since(start).Seconds())
	if err != nil {
		return "", err
	}
	s.cache.Add(code, doc)
	return doc, nil
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSuffix(r.PathValue("code"), ".ics")
	code, err := domain.ParsePostalCode(raw)
	if err != nil {
		s.fail(w, http.StatusBadRequest, err.Error())
		return
	}

	doc, err := s.Feed(r.Context(), code)
	if err != nil {
		s.logger.Warn("feed lookup failed", "code", code, "kind", domain.KindOf(err).String(), "error", err)
		msg := "could not get delivery dates"
		if domain.IsKind(err, domain.KindAuth) {
			msg = "delivery date service rejected the configured credentials"
		}
		s.fail(w, http.StatusBadGateway, msg)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename="postgang-%s.ics"`, code))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(doc)); err != nil {
		s.logger.Warn("can't write feed response", "code", code, "error", err)
	}
	s.metrics.requests.WithLabelValues(strconv.Itoa(http.StatusOK)).Inc()
}

func (s *Server) fail(w http.ResponseWriter, status int, msg string) {
	s.metrics.requests.WithLabelValues(strconv.Itoa(status)).Inc()
	http.Error(w, msg, status)
}

// Run serves until ctx is canceled, refreshing the configured codes on schedule
func (s *Server) Run(ctx context.Context) error {
	codes := s.cfg.PostalCodes()

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(s.cfg.Refresh, func() { s.Refresh(ctx, codes) }); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", s.cfg.Refresh, err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// warm the cache without delaying startup
	go s.Refresh(ctx, codes)

	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("feed server listening", "listen", s.cfg.Listen, "codes", len(codes), "refresh", s.cfg.Refresh)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("feed server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down feed server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
