package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/wallsetting-api/internal/dto"
	"github.com/noah-isme/wallsetting-api/internal/models"
	appErrors "github.com/noah-isme/wallsetting-api/pkg/errors"
)

// SummarySource provides the two independent reads the summary is built from.
type SummarySource interface {
	CycleSummaries(ctx context.Context) ([]models.CycleSummary, error)
	NextSettings(ctx context.Context, today models.Date) ([]models.NextSetting, error)
}

type settingLister interface {
	ListByType(ctx context.Context, scheduleType models.ScheduleType) ([]models.Schedule, error)
}

// RecordSummarySource derives summary rows in process from raw SETTING records.
type RecordSummarySource struct {
	records settingLister
}

// NewRecordSummarySource wraps a schedule store.
func NewRecordSummarySource(records settingLister) *RecordSummarySource {
	return &RecordSummarySource{records: records}
}

// CycleSummaries loads SETTING records and aggregates them per wall.
func (s *RecordSummarySource) CycleSummaries(ctx context.Context) ([]models.CycleSummary, error) {
	recs, err := s.records.ListByType(ctx, models.ScheduleTypeSetting)
	if err != nil {
		return nil, err
	}
	return AggregateCycles(recs)
}

// NextSettings loads SETTING records and resolves the next one per brand.
func (s *RecordSummarySource) NextSettings(ctx context.Context, today models.Date) ([]models.NextSetting, error) {
	recs, err := s.records.ListByType(ctx, models.ScheduleTypeSetting)
	if err != nil {
		return nil, err
	}
	return ResolveNextSettings(recs, today)
}

// ScheduleSummaryServiceConfig tunes the summary read path.
type ScheduleSummaryServiceConfig struct {
	Timeout  time.Duration
	Location *time.Location
}

// ScheduleSummaryService composes the per-brand schedule summary.
type ScheduleSummaryService struct {
	source  SummarySource
	metrics *MetricsService
	logger  *zap.Logger
	now     func() time.Time
	cfg     ScheduleSummaryServiceConfig
}

// NewScheduleSummaryService constructs the service.
func NewScheduleSummaryService(source SummarySource, metrics *MetricsService, logger *zap.Logger, cfg ScheduleSummaryServiceConfig) *ScheduleSummaryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &ScheduleSummaryService{
		source:  source,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
		cfg:     cfg,
	}
}

// Summary returns one view per brand. Both reads run concurrently against a
// single reference day; if either fails no partial result is returned.
func (s *ScheduleSummaryService) Summary(ctx context.Context) ([]dto.BrandScheduleView, error) {
	today := models.DateOf(s.now().In(s.cfg.Location))

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	var (
		cycles []models.CycleSummary
		next   []models.NextSetting
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		start := time.Now()
		rows, err := s.source.CycleSummaries(gctx)
		s.metrics.ObserveDBQuery("cycle_summaries", err, time.Since(start))
		cycles = rows
		return err
	})
	g.Go(func() error {
		start := time.Now()
		rows, err := s.source.NextSettings(gctx, today)
		s.metrics.ObserveDBQuery("next_settings", err, time.Since(start))
		next = rows
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, appErrors.ErrMalformedRecord) {
			s.logger.Error("malformed schedule record", zap.Error(err))
		} else {
			s.logger.Error("schedule summary read failed", zap.Error(err))
		}
		return nil, appErrors.Internal(err, "failed to fetch schedule summary")
	}

	views := MergeSummary(cycles, next)
	s.metrics.SetSummaryBrands(len(views))
	return views, nil
}
