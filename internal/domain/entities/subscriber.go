package entities

import "time"

// Subscriber - чат Telegram, получающий уведомления о смене статуса станков
type Subscriber struct {
	ID        int64  `gorm:"primaryKey;autoIncrement:false"` // Telegram Chat ID
	FirstName string `gorm:"size:255"`
	UserName  string `gorm:"size:255"`
	Active    bool   `gorm:"default:true"`

	// Пустая строка - все станки
	MachineFilter string `gorm:"size:64"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Wants reports whether the subscriber follows machineCode.
func (s Subscriber) Wants(machineCode string) bool {
	return s.Active && (s.MachineFilter == "" || s.MachineFilter == machineCode)
}
