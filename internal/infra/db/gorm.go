package db

import (
	"fmt"

	"portal/internal/config"
	"portal/internal/domain/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect はDBに接続して *gorm.DB を返す。
func Connect(cfg config.Config) (*gorm.DB, error) {
	level := logger.Warn
	if cfg.LogLevel == "debug" {
		level = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return db, nil
}

// Migrate は全テーブルを作成/更新する。
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Offer{},
		&model.OfferLine{},
		&model.Application{},
		&model.OrderLine{},
		&model.OrderLineConfirmation{},
		&model.ConfirmationSnapshot{},
		&model.AuditLog{},
	)
}
