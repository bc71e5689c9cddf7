// Package service wires the destination table, the recommender and the
// result cache behind the operations used by the interactive prompt.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	repository "github.com/okian/getaway/internal/adapters/repository"
	"github.com/okian/getaway/internal/domain/geo"
	"github.com/okian/getaway/internal/domain/model"
	"github.com/okian/getaway/internal/domain/ranking"
	"github.com/okian/getaway/internal/domain/recommend"
	"github.com/okian/getaway/pkg/logger"
	"github.com/okian/getaway/pkg/metrics"
)

// Service answers recommendation queries against a loaded destination table.
type Service struct {
	mu sync.RWMutex

	// Core components
	table   repository.Store
	scorer  *ranking.Scorer
	results *gocache.Cache
	metrics *metrics.Manager

	// Configuration
	dataFile        string
	topK            int
	radiusKm        float64
	earthRadiusKm   float64
	ratingWeight    float64
	proximityWeight float64
	cacheTTL        time.Duration

	// State
	started   bool
	loadError error

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTable serves queries from an already loaded table instead of the data file.
func WithTable(table repository.Store) Option {
	return func(s *Service) {
		s.table = table
	}
}

// WithDataFile sets the CSV file loaded on Start.
func WithDataFile(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.dataFile = path
		}
	}
}

// WithTopK sets how many destinations a query returns.
func WithTopK(k int) Option {
	return func(s *Service) {
		if k > 0 {
			s.topK = k
		}
	}
}

// WithRadius sets the search radius in kilometers.
func WithRadius(km float64) Option {
	return func(s *Service) {
		if km > 0 {
			s.radiusKm = km
		}
	}
}

// WithEarthRadius sets the sphere radius used for distances.
func WithEarthRadius(km float64) Option {
	return func(s *Service) {
		if km > 0 {
			s.earthRadiusKm = km
		}
	}
}

// WithWeights sets the rating and proximity weights of the final rank.
func WithWeights(rating, proximity float64) Option {
	return func(s *Service) {
		s.ratingWeight = rating
		s.proximityWeight = proximity
	}
}

// WithCacheTTL sets how long query results are cached. Zero disables the cache.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl >= 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithMetrics sets the metrics manager. Defaults to the process-wide manager.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dataFile:        "final_data_with_coords.csv",
		topK:            recommend.DefaultK,
		radiusKm:        recommend.DefaultRadiusKm,
		earthRadiusKm:   geo.EarthRadiusKm,
		ratingWeight:    ranking.DefaultRatingWeight,
		proximityWeight: ranking.DefaultProximityWeight,
		cacheTTL:        5 * time.Minute,
		logger:          nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	if s.metrics == nil {
		s.metrics = metrics.Default()
	}
	s.scorer = ranking.NewScorer(ranking.WithWeights(s.ratingWeight, s.proximityWeight))

	return s
}

// Start loads the destination table. A load failure is logged and kept;
// the service still starts and reports repository.ErrDataUnavailable on queries.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting getaway service...")

	if s.table == nil {
		begin := time.Now()
		table, err := repository.LoadCSV(ctx, s.dataFile)
		if err != nil {
			s.loadError = err
			s.metrics.RecordTableLoadError()
			s.logger.Error(ctx, "failed to load destination data",
				logger.String("file", s.dataFile),
				logger.Error(err),
			)
		} else {
			s.table = table
			s.metrics.UpdateTable(table.Count(ctx), len(table.Cities(ctx)), msSince(begin))
		}
	} else {
		s.metrics.UpdateTable(s.table.Count(ctx), len(s.table.Cities(ctx)), 0)
	}

	if s.cacheTTL > 0 {
		s.results = gocache.New(s.cacheTTL, 2*s.cacheTTL)
	}

	s.started = true
	s.logger.Info(ctx, "getaway service started",
		logger.Int("rows", s.rowCount(ctx)),
		logger.Int("topK", s.topK),
		logger.Float64("radiusKm", s.radiusKm),
		logger.Bool("cache", s.results != nil),
	)

	return nil
}

// Stop releases the result cache. It is safe to call more than once.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	if s.results != nil {
		s.results.Flush()
		s.results = nil
	}

	s.started = false
	s.logger.Info(context.Background(), "getaway service stopped")
}

// Recommend returns the best destinations around city.
//
// It returns an error wrapping repository.ErrDataUnavailable when no table is
// loaded and recommend.ErrCityNotFound when city has no row. The returned
// slice belongs to the caller.
func (s *Service) Recommend(ctx context.Context, city string) ([]model.Recommendation, error) {
	begin := time.Now()
	queryID := uuid.NewString()
	name := recommend.NormalizeCity(city)

	s.mu.RLock()
	table, results, loadErr, log := s.table, s.results, s.loadError, s.logger
	s.mu.RUnlock()
	if log == nil {
		log = logger.Nop()
	}

	if table == nil {
		s.metrics.RecordRecommendation(metrics.OutcomeUnavailable, msSince(begin))
		switch {
		case loadErr == nil:
			return nil, repository.ErrDataUnavailable
		case errors.Is(loadErr, repository.ErrDataUnavailable):
			return nil, loadErr
		default:
			return nil, fmt.Errorf("%w: %w", repository.ErrDataUnavailable, loadErr)
		}
	}

	if err := ctx.Err(); err != nil {
		s.metrics.RecordRecommendation(metrics.OutcomeError, msSince(begin))
		return nil, err
	}

	if results != nil {
		if cached, ok := results.Get(name); ok {
			s.metrics.RecordCacheHit()
			recs := clone(cached.([]model.Recommendation))
			s.metrics.RecordRecommendation(metrics.OutcomeOK, msSince(begin))
			log.Debug(ctx, "served recommendation from cache",
				logger.String("queryID", queryID),
				logger.String("city", name),
				logger.Int("rows", len(recs)),
			)
			return recs, nil
		}
		s.metrics.RecordCacheMiss()
	}

	rows := table.Rows(ctx)
	candidates, err := recommend.Recommend(rows, name,
		recommend.WithK(len(rows)),
		recommend.WithRadius(s.radiusKm),
		recommend.WithEarthRadius(s.earthRadiusKm),
		recommend.WithScorer(s.scorer),
	)
	if err != nil {
		outcome := metrics.OutcomeError
		if errors.Is(err, recommend.ErrCityNotFound) {
			outcome = metrics.OutcomeNotFound
		}
		s.metrics.RecordRecommendation(outcome, msSince(begin))
		log.Debug(ctx, "recommendation failed",
			logger.String("queryID", queryID),
			logger.String("city", name),
			logger.Error(err),
		)
		return nil, err
	}

	recs := candidates
	if len(recs) > s.topK {
		recs = recs[:s.topK]
	}

	if results != nil {
		results.SetDefault(name, clone(recs))
	}

	latency := msSince(begin)
	s.metrics.RecordRecommendation(metrics.OutcomeOK, latency)
	s.metrics.RecordResult(len(recs), len(candidates))
	log.Debug(ctx, "computed recommendation",
		logger.String("queryID", queryID),
		logger.String("city", name),
		logger.Int("candidates", len(candidates)),
		logger.Int("rows", len(recs)),
		logger.Float64("latencyMs", latency),
	)

	return recs, nil
}

// Cities returns the distinct source cities in the loaded table.
func (s *Service) Cities(ctx context.Context) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.table == nil {
		return nil
	}
	return s.table.Cities(ctx)
}

// TopK returns the number of rows a query returns at most.
func (s *Service) TopK() int {
	return s.topK
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":  s.started,
		"dataFile": s.dataFile,
		"topK":     s.topK,
		"radiusKm": s.radiusKm,
		"loaded":   s.table != nil,
	}

	if s.started {
		stats["rows"] = s.rowCount(ctx)
		if s.table != nil {
			stats["cities"] = len(s.table.Cities(ctx))
		}
		if s.results != nil {
			stats["cachedQueries"] = s.results.ItemCount()
		}
	}

	return stats
}

// rowCount must be called with s.mu held.
func (s *Service) rowCount(ctx context.Context) int {
	if s.table == nil {
		return 0
	}
	return s.table.Count(ctx)
}

func clone(recs []model.Recommendation) []model.Recommendation {
	out := make([]model.Recommendation, len(recs))
	copy(out, recs)
	return out
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}
