package repository

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/iwtcode/oeeMonitor/internal/domain/entities"
	"github.com/iwtcode/oeeMonitor/internal/interfaces"
)

type subscriberRepository struct {
	db *gorm.DB
}

func NewSubscriberRepository(db *gorm.DB) interfaces.SubscriberRepository {
	return &subscriberRepository{db: db}
}

func (r *subscriberRepository) Save(sub *entities.Subscriber) error {
	// Upsert: Создать, если нет, обновить поля
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"first_name", "user_name", "active", "updated_at"}),
	}).Create(sub).Error
}

func (r *subscriberRepository) GetByID(id int64) (*entities.Subscriber, error) {
	var sub entities.Subscriber
	err := r.db.First(&sub, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

func (r *subscriberRepository) SetActive(id int64, active bool) error {
	return r.db.Model(&entities.Subscriber{}).Where("id = ?", id).Update("active", active).Error
}

func (r *subscriberRepository) SetMachineFilter(id int64, machineCode string) error {
	return r.db.Model(&entities.Subscriber{}).Where("id = ?", id).Update("machine_filter", machineCode).Error
}

func (r *subscriberRepository) ListActive() ([]entities.Subscriber, error) {
	var subs []entities.Subscriber
	err := r.db.Where("active = ?", true).Find(&subs).Error
	return subs, err
}
