package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/iwtcode/oeeMonitor/internal/domain/entities"
	"github.com/iwtcode/oeeMonitor/internal/domain/models"
	"github.com/iwtcode/oeeMonitor/internal/interfaces"
)

type activityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) interfaces.ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) ListActivity(ctx context.Context, machineCode, orderCode string) ([]models.ActivityInterval, error) {
	var rows []entities.ActivityRecord
	err := r.db.WithContext(ctx).
		Where("machine_code = ? AND order_code = ?", machineCode, orderCode).
		Order("started_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]models.ActivityInterval, len(rows))
	for i, row := range rows {
		out[i] = row.ToModel()
	}
	return out, nil
}

func (r *activityRepository) GetOrderSummary(ctx context.Context, machineCode, orderCode string) (*entities.OrderSummary, error) {
	var o entities.OrderSummary
	err := r.db.WithContext(ctx).
		First(&o, "machine_code = ? AND order_code = ?", machineCode, orderCode).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}
