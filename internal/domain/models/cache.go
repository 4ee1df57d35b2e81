package models

import "time"

type CacheKey struct {
	MachineCode string `json:"machineCode"`
	OrderCode   string `json:"orderCode"`
}

func (k CacheKey) String() string {
	return k.MachineCode + "/" + k.OrderCode
}

type CacheEntry struct {
	Key        CacheKey      `json:"key"`
	Bucket     ShiftBucket   `json:"bucket"`
	InsertedAt time.Time     `json:"insertedAt"`
	TTL        time.Duration `json:"ttl"`
}

// Expired reports whether the entry is no longer valid at now.
func (e CacheEntry) Expired(now time.Time) bool {
	return !now.Before(e.InsertedAt.Add(e.TTL))
}

// SeedMetrics are the order-level aggregates synthetic buckets are derived from.
type SeedMetrics struct {
	PlannedQuantity        int64         `json:"plannedQuantity"`
	OK                     int64         `json:"ok"`
	NOK                    int64         `json:"nok"`
	Rework                 int64         `json:"rework"`
	OEE                    float64       `json:"oee"`
	Performance            float64       `json:"performance"`
	TotalProductionSeconds float64       `json:"totalProductionSeconds"`
	PreparationSeconds     float64       `json:"preparationSeconds"`
	Observed               []ShiftBucket `json:"observed,omitempty"`
}

type CacheAction string

const (
	CacheActionEvict CacheAction = "evict"
	CacheActionClear CacheAction = "clear"
)

type CacheCommand struct {
	Action      CacheAction `json:"action"`
	MachineCode string      `json:"machineCode"`
	OrderCode   string      `json:"orderCode"`
}
