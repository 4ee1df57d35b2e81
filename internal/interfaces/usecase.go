package interfaces

import (
	"context"

	"github.com/iwtcode/oeeMonitor/internal/domain/entities"
	"github.com/iwtcode/oeeMonitor/internal/domain/models"
	"github.com/iwtcode/oeeMonitor/internal/synchronizer"
)

type MonitoringUsecase interface {
	Snapshot() synchronizer.Snapshot
	Machine(code string) (models.MachineState, bool)
	Refresh(ctx context.Context) error
}

type AnalyticsUsecase interface {
	ShiftReport(ctx context.Context, machineCode, orderCode string) (*models.ShiftReport, error)
	CacheControl(ctx context.Context, cmd models.CacheCommand) error
}

type SubscriptionUsecase interface {
	Subscribe(sub *entities.Subscriber) error
	Unsubscribe(id int64) error
	Follow(id int64, machineCode string) error
	GetSubscriber(id int64) (*entities.Subscriber, error)
	ActiveSubscribers() ([]entities.Subscriber, error)
}
