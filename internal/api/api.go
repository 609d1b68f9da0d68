// Package api exposes the analysis engine over HTTP: identity resolution,
// account search, comparison and series building, and an admin surface for
// reload and cache introspection. The router is chi with request-ID,
// logging, recovery, CORS and per-client rate-limit middleware.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/enzoomoreira/bacen-data-analysis/internal/analysis"
	"github.com/enzoomoreira/bacen-data-analysis/internal/config"
	"github.com/enzoomoreira/bacen-data-analysis/internal/model"
	"github.com/enzoomoreira/bacen-data-analysis/internal/refdata"
	"github.com/enzoomoreira/bacen-data-analysis/internal/resolve"
)

// Analyzer is the engine surface the HTTP layer exposes. Implemented by
// the bacen package facade.
type Analyzer interface {
	Resolve(ctx context.Context, identifier any) (model.CanonicalIdentity, error)
	SearchAccounts(ctx context.Context, source, query string) ([]refdata.Account, error)
	Compare(ctx context.Context, req analysis.CompareRequest) (*model.ComparisonTable, error)
	Series(ctx context.Context, req analysis.SeriesRequest) ([]model.SeriesPoint, error)
	SeriesBatch(ctx context.Context, reqs []analysis.SeriesRequest) (*analysis.BatchResult, error)
	Reload(ctx context.Context) (refdata.Counts, error)
	ClearCache()
	CacheStats() resolve.CacheStats
	Lookups() int64
	Loaded() bool
}

// Server holds the handler dependencies.
type Server struct {
	analyzer Analyzer
	cfg      config.ServerConfig
	log      *zap.Logger
}

// NewServer builds a Server over the given engine.
func NewServer(analyzer Analyzer, cfg config.ServerConfig) *Server {
	return &Server{
		analyzer: analyzer,
		cfg:      cfg,
		log:      zap.L().With(zap.String("component", "api")),
	}
}

// Router wires every endpoint with the middleware stack.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(recovery(s.log))
	r.Use(requestLogger(s.log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))
	if s.cfg.RateLimitPerSec > 0 {
		r.Use(newRateLimiter(s.cfg.RateLimitPerSec, s.cfg.RateLimitBurst).middleware)
	}

	r.Get("/healthz", s.handleHealthz)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/resolve", s.handleResolve)
		r.Get("/accounts/{source}", s.handleAccounts)
		r.Post("/compare", s.handleCompare)
		r.Post("/series", s.handleSeries)
		r.Post("/series/batch", s.handleSeriesBatch)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/reload", s.handleReload)
			r.Post("/cache/clear", s.handleCacheClear)
			r.Get("/cache/stats", s.handleCacheStats)
		})
	})

	return r
}
