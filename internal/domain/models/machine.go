package models

import (
	"math"
	"strings"
)

// MachineStatus is the canonical machine status shown on the dashboard.
type MachineStatus string

const (
	StatusActive      MachineStatus = "Active"
	StatusStopped     MachineStatus = "Stopped"
	StatusProducing   MachineStatus = "Producing"
	StatusMaintenance MachineStatus = "Maintenance"
	StatusInactive    MachineStatus = "Inactive"
)

var statusAliases = map[string]MachineStatus{
	"active":      StatusActive,
	"on":          StatusActive,
	"ready":       StatusActive,
	"stopped":     StatusStopped,
	"stop":        StatusStopped,
	"down":        StatusStopped,
	"alarm":       StatusStopped,
	"producing":   StatusProducing,
	"production":  StatusProducing,
	"running":     StatusProducing,
	"run":         StatusProducing,
	"maintenance": StatusMaintenance,
	"maint":       StatusMaintenance,
	"repair":      StatusMaintenance,
	"inactive":    StatusInactive,
	"off":         StatusInactive,
	"idle":        StatusInactive,
}

// ParseStatus maps an upstream status string onto the enumeration.
// Unrecognized values map to StatusInactive.
func ParseStatus(raw string) MachineStatus {
	if s, ok := statusAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return s
	}
	return StatusInactive
}

// Valid reports whether s is one of the fixed statuses.
func (s MachineStatus) Valid() bool {
	switch s {
	case StatusActive, StatusStopped, StatusProducing, StatusMaintenance, StatusInactive:
		return true
	}
	return false
}

// Counters holds production counts. Total is always OK+NOK+Rework.
type Counters struct {
	OK     int64 `json:"ok"`
	NOK    int64 `json:"nok"`
	Rework int64 `json:"rw"`
	Total  int64 `json:"total"`
}

// MaxCount bounds each counter so that Total never overflows.
const MaxCount int64 = math.MaxInt64 / 3

// NewCounters clamps inputs to [0, MaxCount] and fills Total.
func NewCounters(ok, nok, rework int64) Counters {
	ok = min(max(ok, 0), MaxCount)
	nok = min(max(nok, 0), MaxCount)
	rework = min(max(rework, 0), MaxCount)
	return Counters{OK: ok, NOK: nok, Rework: rework, Total: ok + nok + rework}
}

type Velocity struct {
	Current float64 `json:"current"`
	Nominal float64 `json:"nominal"`
	Ratio   float64 `json:"ratio"`
}

// OEEBreakdown values are fractions in [0,1]; OEE = Availability*Performance*Quality.
type OEEBreakdown struct {
	Availability float64 `json:"availability"`
	Performance  float64 `json:"performance"`
	Quality      float64 `json:"quality"`
	OEE          float64 `json:"oee"`
}

// MachineState is the canonical per-machine snapshot. It is built by the
// normalizer and replaced wholesale on every successful poll.
type MachineState struct {
	MachineCode      string        `json:"machineCode"`
	MachineName      string        `json:"machineName"`
	Status           MachineStatus `json:"status"`
	OrderCode        string        `json:"orderCode"`
	OrderDescription string        `json:"orderDescription"`
	Operator         string        `json:"operator"`
	ShiftLabel       string        `json:"shift"`
	ShiftProduction  Counters      `json:"shiftProduction"`
	OrderProduction  Counters      `json:"orderProduction"`
	Velocity         Velocity      `json:"velocity"`
	OEE              OEEBreakdown  `json:"oee"`
}
