package service

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/alumni-hub-api/internal/dto"
)

const dashboardCacheKey = "dash:alumni"

type statsAggregator interface {
	Aggregate() dto.DashboardStats
	Revision() uint64
}

// dashboardKey scopes cached stats to a collection revision so a fill that
// races a mutation lands under a key no later read uses.
func dashboardKey(revision uint64) string {
	return dashboardCacheKey + ":" + strconv.FormatUint(revision, 10)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL time.Duration
}

// DashboardService serves aggregated statistics, cache-aside when a cache is configured.
type DashboardService struct {
	stats  statsAggregator
	cache  *CacheService
	logger *zap.Logger
	cfg    DashboardServiceConfig
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Stats  statsAggregator
	Cache  *CacheService
	Logger *zap.Logger
	Config DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		stats:  params.Stats,
		cache:  params.Cache,
		logger: logger,
		cfg:    cfg,
	}
}

// Summary returns dashboard statistics and indicates cache utilisation.
func (s *DashboardService) Summary(ctx context.Context) (*dto.DashboardStats, bool, error) {
	var stats dto.DashboardStats
	hit, err := s.cache.Remember(ctx, dashboardKey(s.stats.Revision()), s.cfg.CacheTTL, &stats, func() error {
		stats = s.stats.Aggregate()
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if !hit {
		s.logger.Debug("dashboard summary recomputed", zap.Int("total", stats.Total))
	}
	return &stats, hit, nil
}
