package interfaces

import (
	"context"
	"encoding/json"
	"time"

	"github.com/iwtcode/oeeMonitor/internal/domain/models"
)

// TelemetrySource fetches the current raw telemetry records from the upstream gateway.
type TelemetrySource interface {
	Fetch(ctx context.Context) ([]json.RawMessage, error)
	Close() error
}

// ShiftCache stores synthesized shift buckets keyed by (machine, order).
// GetOrGenerate must run as one atomic read-modify-write.
type ShiftCache interface {
	Get(ctx context.Context, key models.CacheKey) (models.ShiftBucket, bool, error)
	Put(ctx context.Context, key models.CacheKey, bucket models.ShiftBucket, ttl time.Duration) error
	Invalidate(ctx context.Context, key models.CacheKey) error
	Clear(ctx context.Context) error
	GetOrGenerate(ctx context.Context, key models.CacheKey, ttl time.Duration, gen func() models.ShiftBucket) (models.ShiftBucket, bool, error)
}

// StatePublisher receives every machine list the synchronizer publishes.
type StatePublisher interface {
	Publish(ctx context.Context, machines []models.MachineState) error
}
