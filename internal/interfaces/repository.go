package interfaces

import (
	"context"

	"github.com/iwtcode/oeeMonitor/internal/domain/entities"
	"github.com/iwtcode/oeeMonitor/internal/domain/models"
)

type ActivityRepository interface {
	// ListActivity возвращает интервалы активности станка по заказу в порядке начала.
	ListActivity(ctx context.Context, machineCode, orderCode string) ([]models.ActivityInterval, error)
	// GetOrderSummary возвращает агрегаты заказа или nil, если заказ не найден.
	GetOrderSummary(ctx context.Context, machineCode, orderCode string) (*entities.OrderSummary, error)
}

type SubscriberRepository interface {
	Save(sub *entities.Subscriber) error
	GetByID(id int64) (*entities.Subscriber, error)
	SetActive(id int64, active bool) error
	SetMachineFilter(id int64, machineCode string) error
	ListActive() ([]entities.Subscriber, error)
}
