package usecases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iwtcode/oeeMonitor"
	"github.com/iwtcode/oeeMonitor/internal/cache"
	"github.com/iwtcode/oeeMonitor/internal/domain/models"
	"github.com/iwtcode/oeeMonitor/internal/interfaces"
	"github.com/iwtcode/oeeMonitor/internal/shift"
)

var nightIndex = models.ShiftNight.Index()

type analyticsUsecase struct {
	repo        interfaces.ActivityRepository
	shiftCache  interfaces.ShiftCache
	windower    *shift.Windower
	nominalRate float64
	ttl         time.Duration
	log         *zap.Logger
}

func NewAnalyticsUsecase(
	repo interfaces.ActivityRepository,
	shiftCache interfaces.ShiftCache,
	windower *shift.Windower,
	cfg *oeeMonitor.Config,
	log *zap.Logger,
) interfaces.AnalyticsUsecase {
	return &analyticsUsecase{
		repo:        repo,
		shiftCache:  shiftCache,
		windower:    windower,
		nominalRate: cfg.NominalRate,
		ttl:         cfg.ShiftCacheTTL,
		log:         log.Named("analytics"),
	}
}

// ShiftReport aggregates the order's activity into the three shift buckets.
// A Night bucket without telemetry is backfilled from the shift cache.
func (u *analyticsUsecase) ShiftReport(ctx context.Context, machineCode, orderCode string) (*models.ShiftReport, error) {
	machineCode, orderCode = strings.TrimSpace(machineCode), strings.TrimSpace(orderCode)
	if err := requireIDs(machineCode, orderCode); err != nil {
		return nil, err
	}

	// 1. Сырые интервалы из БД
	intervals, err := u.repo.ListActivity(ctx, machineCode, orderCode)
	if err != nil {
		return nil, fmt.Errorf("%w: list activity: %w", models.ErrUpstreamQuery, err)
	}

	// 2. Раскладываем по сменам
	report := &models.ShiftReport{
		MachineCode: machineCode,
		OrderCode:   orderCode,
		Buckets:     u.windower.Aggregate(intervals, u.nominalRate),
		Sources:     [3]models.BucketSource{models.SourceLive, models.SourceLive, models.SourceLive},
	}
	if !report.Buckets[nightIndex].Empty() {
		return report, nil
	}

	// 3. Ночная смена без телеметрии - синтез по агрегатам заказа
	summary, err := u.repo.GetOrderSummary(ctx, machineCode, orderCode)
	if err != nil {
		return nil, fmt.Errorf("%w: order summary: %w", models.ErrUpstreamQuery, err)
	}
	if summary == nil {
		return report, nil
	}

	seed := summary.ToSeed()
	for i, b := range report.Buckets {
		if i != nightIndex && !b.Empty() {
			seed.Observed = append(seed.Observed, b)
		}
	}

	key := models.CacheKey{MachineCode: machineCode, OrderCode: orderCode}
	bucket, hit, err := u.shiftCache.GetOrGenerate(ctx, key, u.ttl, func() models.ShiftBucket {
		return cache.Generate(seed)
	})
	if err != nil {
		u.log.Warn("shift cache unavailable, generating uncached", zap.Stringer("key", key), zap.Error(err))
		bucket, hit = cache.Generate(seed), false
	}

	report.Buckets[nightIndex] = bucket
	if hit {
		report.Sources[nightIndex] = models.SourceCache
	} else {
		report.Sources[nightIndex] = models.SourceSynthetic
	}
	return report, nil
}

func (u *analyticsUsecase) CacheControl(ctx context.Context, cmd models.CacheCommand) error {
	switch cmd.Action {
	case models.CacheActionEvict:
		machineCode, orderCode := strings.TrimSpace(cmd.MachineCode), strings.TrimSpace(cmd.OrderCode)
		if err := requireIDs(machineCode, orderCode); err != nil {
			return err
		}
		key := models.CacheKey{MachineCode: machineCode, OrderCode: orderCode}
		if err := u.shiftCache.Invalidate(ctx, key); err != nil {
			return fmt.Errorf("evict %s: %w", key, err)
		}
		u.log.Info("shift cache entry evicted", zap.Stringer("key", key))
		return nil
	case models.CacheActionClear:
		if err := u.shiftCache.Clear(ctx); err != nil {
			return fmt.Errorf("clear shift cache: %w", err)
		}
		u.log.Info("shift cache cleared")
		return nil
	default:
		return fmt.Errorf("%w: %q", models.ErrUnknownCacheAction, cmd.Action)
	}
}

func requireIDs(machineCode, orderCode string) error {
	var missing []string
	if machineCode == "" {
		missing = append(missing, "machineCode")
	}
	if orderCode == "" {
		missing = append(missing, "orderCode")
	}
	if len(missing) > 0 {
		return &models.MissingParametersError{Params: missing}
	}
	return nil
}
