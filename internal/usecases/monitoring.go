package usecases

import (
	"context"

	"github.com/iwtcode/oeeMonitor/internal/domain/models"
	"github.com/iwtcode/oeeMonitor/internal/interfaces"
	"github.com/iwtcode/oeeMonitor/internal/synchronizer"
)

type monitoringUsecase struct {
	sync *synchronizer.Synchronizer
}

func NewMonitoringUsecase(sync *synchronizer.Synchronizer) interfaces.MonitoringUsecase {
	return &monitoringUsecase{sync: sync}
}

func (u *monitoringUsecase) Snapshot() synchronizer.Snapshot {
	return u.sync.Snapshot()
}

func (u *monitoringUsecase) Machine(code string) (models.MachineState, bool) {
	for _, m := range u.sync.Snapshot().Machines {
		if m.MachineCode == code {
			return m, true
		}
	}
	return models.MachineState{}, false
}

// Refresh triggers an out-of-schedule poll.
func (u *monitoringUsecase) Refresh(ctx context.Context) error {
	return u.sync.Refresh(ctx)
}
