package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/wallsetting-api/internal/models"
	appErrors "github.com/noah-isme/wallsetting-api/pkg/errors"
)

type fakeSummarySource struct {
	cycles    []models.CycleSummary
	next      []models.NextSetting
	cycleErr  error
	nextErr   error
	mu        sync.Mutex
	todayUsed []models.Date
	block     chan struct{}
}

func (f *fakeSummarySource) CycleSummaries(ctx context.Context) ([]models.CycleSummary, error) {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.cycles, f.cycleErr
}

func (f *fakeSummarySource) NextSettings(ctx context.Context, today models.Date) ([]models.NextSetting, error) {
	f.mu.Lock()
	f.todayUsed = append(f.todayUsed, today)
	f.mu.Unlock()
	return f.next, f.nextErr
}

type fakeSettingLister struct {
	records []models.Schedule
	err     error
	calls   int
	mu      sync.Mutex
}

func (f *fakeSettingLister) ListByType(ctx context.Context, scheduleType models.ScheduleType) ([]models.Schedule, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Schedule
	for _, r := range f.records {
		if r.Type == scheduleType {
			out = append(out, r)
		}
	}
	return out, nil
}

func newSummaryService(source SummarySource, now time.Time) *ScheduleSummaryService {
	svc := NewScheduleSummaryService(source, NewMetricsService(), nil, ScheduleSummaryServiceConfig{Location: time.UTC})
	svc.now = func() time.Time { return now }
	return svc
}

func TestScheduleSummaryServiceMergesBothReads(t *testing.T) {
	src := &fakeSummarySource{
		cycles: []models.CycleSummary{{BrandName: "B", NameKR: "비", WallName: "main", AvgCycle: 10, SettingCount: 2}},
		next:   []models.NextSetting{{BrandName: "A", NameKR: "에이", WallName: "main", Date: models.NewDate(2024, 2, 1)}},
	}
	svc := newSummaryService(src, time.Date(2024, 1, 15, 23, 30, 0, 0, time.UTC))

	views, err := svc.Summary(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "A", views[0].BrandName)
	assert.Empty(t, views[0].Walls)
	assert.Equal(t, "B", views[1].BrandName)
	assert.Nil(t, views[1].NextSetting)

	require.Len(t, src.todayUsed, 1)
	assert.Equal(t, "2024-01-15", src.todayUsed[0].String())
}

func TestScheduleSummaryServiceUsesConfiguredLocation(t *testing.T) {
	src := &fakeSummarySource{}
	svc := NewScheduleSummaryService(src, nil, nil, ScheduleSummaryServiceConfig{Location: time.FixedZone("KST", 9*3600)})
	svc.now = func() time.Time { return time.Date(2024, 1, 15, 16, 0, 0, 0, time.UTC) }

	_, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2024-01-16", src.todayUsed[0].String())
}

func TestScheduleSummaryServiceFailsWholeCallOnEitherError(t *testing.T) {
	dbErr := errors.New("pq: connection refused")
	for name, src := range map[string]*fakeSummarySource{
		"cycle": {cycleErr: dbErr, next: []models.NextSetting{{BrandName: "A", WallName: "main", Date: models.NewDate(2024, 2, 1)}}},
		"next":  {nextErr: dbErr, cycles: []models.CycleSummary{{BrandName: "A", WallName: "main", AvgCycle: 3, SettingCount: 1}}},
	} {
		t.Run(name, func(t *testing.T) {
			svc := newSummaryService(src, time.Now())
			views, err := svc.Summary(context.Background())
			assert.Nil(t, views)
			require.Error(t, err)
			var appErr *appErrors.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, appErrors.ErrInternal.Code, appErr.Code)
			assert.Equal(t, "failed to fetch schedule summary", appErr.Message)
			assert.ErrorIs(t, err, dbErr)
		})
	}
}

func TestScheduleSummaryServiceCancelsSiblingRead(t *testing.T) {
	src := &fakeSummarySource{nextErr: errors.New("boom"), block: make(chan struct{})}
	svc := newSummaryService(src, time.Now())

	done := make(chan error, 1)
	go func() {
		_, err := svc.Summary(context.Background())
		done <- err
	}()

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("summary did not cancel the blocked read")
	}
}

func TestScheduleSummaryServiceTimeout(t *testing.T) {
	src := &fakeSummarySource{block: make(chan struct{})}
	svc := NewScheduleSummaryService(src, nil, nil, ScheduleSummaryServiceConfig{Timeout: 20 * time.Millisecond, Location: time.UTC})

	_, err := svc.Summary(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestScheduleSummaryServiceWithRecordSource(t *testing.T) {
	lister := &fakeSettingLister{records: []models.Schedule{
		setting("1", "A", "main", "2024-01-01"),
		setting("2", "A", "main", "2024-01-11"),
		setting("3", "A", "main", "2024-01-21"),
		setting("4", "A", "main", "2024-02-01"),
		setting("5", "A", "side", "2024-02-10"),
		record("6", "A", "main", models.ScheduleTypeRemoval, "2024-01-16"),
		setting("7", "B", "wall", "2023-12-01"),
		setting("8", "B", "wall", "2023-12-08"),
	}}
	svc := newSummaryService(NewRecordSummarySource(lister), time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC))

	views, err := svc.Summary(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 2)

	a := views[0]
	assert.Equal(t, "A", a.BrandName)
	assert.Equal(t, 3, a.Walls["main"].SettingCount)
	assert.Equal(t, 10, a.Walls["main"].AvgCycle)
	_, hasSide := a.Walls["side"]
	assert.False(t, hasSide)
	require.NotNil(t, a.NextSetting)
	assert.Equal(t, "2024-01-21", a.NextSetting.Date.String())
	assert.Equal(t, "main", a.NextSetting.WallName)

	b := views[1]
	assert.Equal(t, 7, b.Walls["wall"].AvgCycle)
	assert.Nil(t, b.NextSetting)
	assert.Equal(t, 2, lister.calls)
}

func TestScheduleSummaryServiceMalformedRecordIsGeneric500(t *testing.T) {
	lister := &fakeSettingLister{records: []models.Schedule{
		setting("1", "A", "main", "2024-01-01"),
		{ID: "bad", BrandName: "A", WallName: "main", Type: models.ScheduleTypeSetting},
	}}
	svc := newSummaryService(NewRecordSummarySource(lister), time.Now())

	_, err := svc.Summary(context.Background())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, 500, appErr.Status)
	assert.Equal(t, "failed to fetch schedule summary", appErr.Message)
	assert.ErrorIs(t, err, appErrors.ErrMalformedRecord)
}
