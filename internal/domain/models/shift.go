package models

import "time"

type ShiftWindow string

const (
	ShiftMorning   ShiftWindow = "Morning"
	ShiftAfternoon ShiftWindow = "Afternoon"
	ShiftNight     ShiftWindow = "Night"
)

// Shifts lists the windows in report order.
var Shifts = [3]ShiftWindow{ShiftMorning, ShiftAfternoon, ShiftNight}

// Index returns the position of w in Shifts, or -1.
func (w ShiftWindow) Index() int {
	for i, s := range Shifts {
		if s == w {
			return i
		}
	}
	return -1
}

type ActivityKind string

const (
	ActivityProductive  ActivityKind = "productive"
	ActivityPreparation ActivityKind = "preparation"
	ActivityDowntime    ActivityKind = "downtime"
	ActivityRework      ActivityKind = "rework"
)

// ActivityInterval is one activity row reported by the shop floor store.
type ActivityInterval struct {
	MachineCode string       `json:"machineCode"`
	OrderCode   string       `json:"orderCode"`
	Kind        ActivityKind `json:"kind"`
	Start       time.Time    `json:"start"`
	End         time.Time    `json:"end"`
	OK          int64        `json:"ok"`
	NOK         int64        `json:"nok"`
	Rework      int64        `json:"rework"`
}

// Seconds returns the interval duration, never negative.
func (a ActivityInterval) Seconds() float64 {
	d := a.End.Sub(a.Start).Seconds()
	if d < 0 {
		return 0
	}
	return d
}

type ShiftBucket struct {
	Shift              ShiftWindow `json:"shift"`
	OK                 int64       `json:"ok"`
	NOK                int64       `json:"nok"`
	Rework             int64       `json:"rework"`
	PreparationSeconds float64     `json:"preparationSeconds"`
	ProductiveSeconds  float64     `json:"productiveSeconds"`
	DowntimeSeconds    float64     `json:"downtimeSeconds"`
	Availability       float64     `json:"availability"`
	Quality            float64     `json:"quality"`
	Performance        float64     `json:"performance"`
	OEE                float64     `json:"oee"`
}

// Empty reports whether no telemetry landed in the bucket.
func (b ShiftBucket) Empty() bool {
	return b.OK == 0 && b.NOK == 0 && b.Rework == 0 &&
		b.PreparationSeconds == 0 && b.ProductiveSeconds == 0 && b.DowntimeSeconds == 0
}

// BucketSource tells the caller where a shift bucket came from.
type BucketSource string

const (
	SourceLive      BucketSource = "live"
	SourceCache     BucketSource = "cache"
	SourceSynthetic BucketSource = "synthetic"
)

type ShiftReport struct {
	MachineCode string          `json:"machineCode"`
	OrderCode   string          `json:"orderCode"`
	Buckets     [3]ShiftBucket  `json:"buckets"`
	Sources     [3]BucketSource `json:"sources"`
}
