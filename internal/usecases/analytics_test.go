package usecases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iwtcode/oeeMonitor"
	"github.com/iwtcode/oeeMonitor/internal/cache"
	"github.com/iwtcode/oeeMonitor/internal/domain/entities"
	"github.com/iwtcode/oeeMonitor/internal/domain/models"
	"github.com/iwtcode/oeeMonitor/internal/shift"
)

type fakeActivityRepo struct {
	intervals    []models.ActivityInterval
	summary      *entities.OrderSummary
	listErr      error
	listCalls    int
	summaryCalls int
}

func (r *fakeActivityRepo) ListActivity(context.Context, string, string) ([]models.ActivityInterval, error) {
	r.listCalls++
	return r.intervals, r.listErr
}

func (r *fakeActivityRepo) GetOrderSummary(context.Context, string, string) (*entities.OrderSummary, error) {
	r.summaryCalls++
	return r.summary, nil
}

type failingCache struct{ *cache.MemoryCache }

func (failingCache) GetOrGenerate(context.Context, models.CacheKey, time.Duration, func() models.ShiftBucket) (models.ShiftBucket, bool, error) {
	return models.ShiftBucket{}, false, errors.New("redis: connection refused")
}

var testCfg = &oeeMonitor.Config{NominalRate: 60, ShiftCacheTTL: time.Minute}

func newAnalytics(repo *fakeActivityRepo) (*analyticsUsecase, *cache.MemoryCache) {
	mc := cache.NewMemoryCache()
	u := NewAnalyticsUsecase(repo, mc, shift.NewWindower(time.UTC), testCfg, zap.NewNop())
	return u.(*analyticsUsecase), mc
}

func morning(d time.Duration, ok, nok int64) models.ActivityInterval {
	start := time.Date(2026, 10, 19, 7, 0, 0, 0, time.UTC)
	return models.ActivityInterval{
		MachineCode: "M-1", OrderCode: "OF-1", Kind: models.ActivityProductive,
		Start: start, End: start.Add(d), OK: ok, NOK: nok,
	}
}

func TestShiftReportMissingOrderCodeSkipsStore(t *testing.T) {
	repo := &fakeActivityRepo{}
	u, _ := newAnalytics(repo)

	_, err := u.ShiftReport(context.Background(), "M-1", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrMissingParameters)

	var missing *models.MissingParametersError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"orderCode"}, missing.Params)
	assert.Zero(t, repo.listCalls, "store must not be touched")
	assert.Zero(t, repo.summaryCalls)

	_, err = u.ShiftReport(context.Background(), " ", "")
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"machineCode", "orderCode"}, missing.Params)
}

func TestShiftReportUpstreamFailure(t *testing.T) {
	repo := &fakeActivityRepo{listErr: errors.New("pq: relation does not exist")}
	u, _ := newAnalytics(repo)

	_, err := u.ShiftReport(context.Background(), "M-1", "OF-1")
	assert.ErrorIs(t, err, models.ErrUpstreamQuery)
	assert.Contains(t, err.Error(), "relation does not exist")
}

func TestShiftReportBackfillsNightFromCache(t *testing.T) {
	repo := &fakeActivityRepo{
		intervals: []models.ActivityInterval{morning(time.Hour, 50, 2)},
		summary: &entities.OrderSummary{
			MachineCode: "M-1", OrderCode: "OF-1",
			PlannedQuantity: 500, OK: 80, NOK: 4,
			OEE: 0.6, Performance: 0.8, TotalProductionSeconds: 7200,
		},
	}
	u, mc := newAnalytics(repo)
	ctx := context.Background()

	first, err := u.ShiftReport(ctx, "M-1", "OF-1")
	require.NoError(t, err)
	assert.Equal(t, models.SourceLive, first.Sources[0])
	assert.Equal(t, models.SourceLive, first.Sources[1])
	assert.Equal(t, models.SourceSynthetic, first.Sources[2])
	assert.Equal(t, models.ShiftNight, first.Buckets[2].Shift)
	assert.Equal(t, int64(30), first.Buckets[2].OK, "night gets what morning left of the order")
	assert.Equal(t, 1, mc.Len())

	second, err := u.ShiftReport(ctx, "M-1", "OF-1")
	require.NoError(t, err)
	assert.Equal(t, models.SourceCache, second.Sources[2])
	assert.Equal(t, first.Buckets, second.Buckets)
}

func TestShiftReportLiveNightSkipsCache(t *testing.T) {
	night := morning(time.Hour, 10, 0)
	night.Start = time.Date(2026, 10, 19, 23, 0, 0, 0, time.UTC)
	night.End = night.Start.Add(time.Hour)
	repo := &fakeActivityRepo{intervals: []models.ActivityInterval{night}}
	u, mc := newAnalytics(repo)

	report, err := u.ShiftReport(context.Background(), "M-1", "OF-1")
	require.NoError(t, err)
	assert.Equal(t, [3]models.BucketSource{models.SourceLive, models.SourceLive, models.SourceLive}, report.Sources)
	assert.Equal(t, int64(10), report.Buckets[2].OK)
	assert.Zero(t, repo.summaryCalls)
	assert.Zero(t, mc.Len())
}

func TestShiftReportWithoutSummaryStaysEmpty(t *testing.T) {
	u, _ := newAnalytics(&fakeActivityRepo{})

	report, err := u.ShiftReport(context.Background(), "M-1", "OF-1")
	require.NoError(t, err)
	assert.True(t, report.Buckets[2].Empty())
	assert.Equal(t, models.SourceLive, report.Sources[2])
}

func TestShiftReportCacheFailureFallsBackToSynthetic(t *testing.T) {
	repo := &fakeActivityRepo{summary: &entities.OrderSummary{OK: 90, Performance: 0.5, OEE: 0.4}}
	u := NewAnalyticsUsecase(repo, failingCache{cache.NewMemoryCache()}, shift.NewWindower(time.UTC), testCfg, zap.NewNop())

	report, err := u.ShiftReport(context.Background(), "M-1", "OF-1")
	require.NoError(t, err)
	assert.Equal(t, models.SourceSynthetic, report.Sources[2])
	assert.Equal(t, int64(90), report.Buckets[2].OK)
}

func TestCacheControl(t *testing.T) {
	u, mc := newAnalytics(&fakeActivityRepo{})
	ctx := context.Background()
	key := models.CacheKey{MachineCode: "M-1", OrderCode: "OF-1"}
	other := models.CacheKey{MachineCode: "M-2", OrderCode: "OF-2"}
	require.NoError(t, mc.Put(ctx, key, models.ShiftBucket{OK: 1}, time.Minute))
	require.NoError(t, mc.Put(ctx, other, models.ShiftBucket{OK: 2}, time.Minute))

	require.NoError(t, u.CacheControl(ctx, models.CacheCommand{Action: models.CacheActionEvict, MachineCode: "M-1", OrderCode: "OF-1"}))
	assert.Equal(t, 1, mc.Len())

	err := u.CacheControl(ctx, models.CacheCommand{Action: models.CacheActionEvict, MachineCode: "M-2"})
	assert.ErrorIs(t, err, models.ErrMissingParameters)
	assert.Equal(t, 1, mc.Len())

	require.NoError(t, u.CacheControl(ctx, models.CacheCommand{Action: models.CacheActionClear}))
	assert.Zero(t, mc.Len())

	err = u.CacheControl(ctx, models.CacheCommand{Action: "purge"})
	assert.ErrorIs(t, err, models.ErrUnknownCacheAction)
}
