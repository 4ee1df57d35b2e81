package entities

import (
	"time"

	"github.com/iwtcode/oeeMonitor/internal/domain/models"
)

// ActivityRecord - строка активности станка (производство, наладка, простой, переделка)
type ActivityRecord struct {
	ID          uint      `gorm:"primaryKey"`
	MachineCode string    `gorm:"size:64;index:idx_activity_machine_order"`
	OrderCode   string    `gorm:"size:64;index:idx_activity_machine_order"`
	Kind        string    `gorm:"size:32"`
	StartedAt   time.Time `gorm:"index"`
	EndedAt     time.Time
	OK          int64 `gorm:"default:0"`
	NOK         int64 `gorm:"default:0"`
	Rework      int64 `gorm:"default:0"`
	CreatedAt   time.Time
}

func (r ActivityRecord) ToModel() models.ActivityInterval {
	return models.ActivityInterval{
		MachineCode: r.MachineCode,
		OrderCode:   r.OrderCode,
		Kind:        models.ActivityKind(r.Kind),
		Start:       r.StartedAt,
		End:         r.EndedAt,
		OK:          r.OK,
		NOK:         r.NOK,
		Rework:      r.Rework,
	}
}

// OrderSummary - агрегаты заказа, используются для синтеза ночной смены
type OrderSummary struct {
	ID                     uint   `gorm:"primaryKey"`
	MachineCode            string `gorm:"size:64;uniqueIndex:idx_order_machine"`
	OrderCode              string `gorm:"size:64;uniqueIndex:idx_order_machine"`
	Description            string `gorm:"size:255"`
	PlannedQuantity        int64
	OK                     int64
	NOK                    int64
	Rework                 int64
	OEE                    float64
	Performance            float64
	TotalProductionSeconds float64
	PreparationSeconds     float64
	UpdatedAt              time.Time
}

func (o OrderSummary) ToSeed() models.SeedMetrics {
	return models.SeedMetrics{
		PlannedQuantity:        o.PlannedQuantity,
		OK:                     o.OK,
		NOK:                    o.NOK,
		Rework:                 o.Rework,
		OEE:                    o.OEE,
		Performance:            o.Performance,
		TotalProductionSeconds: o.TotalProductionSeconds,
		PreparationSeconds:     o.PreparationSeconds,
	}
}
