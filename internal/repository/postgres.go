package repository

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/iwtcode/oeeMonitor"
	"github.com/iwtcode/oeeMonitor/internal/domain/entities"
)

func NewPostgresRepository(cfg *oeeMonitor.Config, log *zap.Logger) (*gorm.DB, error) {
	// 1. Check/Create DB logic
	dsnRoot := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=postgres sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword)

	rootDB, err := gorm.Open(postgres.Open(dsnRoot), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to root postgres db: %w", err)
	}

	var exists bool
	if err := rootDB.Raw("SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = ?)", cfg.DBName).Scan(&exists).Error; err != nil {
		return nil, fmt.Errorf("failed to check db existence: %w", err)
	}

	if !exists {
		log.Info("database does not exist, creating", zap.String("db", cfg.DBName))
		if err := rootDB.Exec(fmt.Sprintf("CREATE DATABASE %q", cfg.DBName)).Error; err != nil {
			return nil, fmt.Errorf("failed to create database: %w", err)
		}
	}

	sqlDB, _ := rootDB.DB()
	sqlDB.Close()

	// 2. Connect to App DB
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to application database: %w", err)
	}

	// 3. Migrate entities
	if err := db.AutoMigrate(
		&entities.ActivityRecord{},
		&entities.OrderSummary{},
		&entities.Subscriber{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}
