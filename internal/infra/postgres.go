package infra

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"subscribely/internal/config"
	"subscribely/internal/models/db_models"
)

// InitPostgresql opens the pool and, when DB_AUTO_MIGRATE is set, brings the
// schema up to date.
func InitPostgresql(cfg config.Config, log *zap.Logger) (*gorm.DB, error) {

	logLevel := gormlogger.Warn
	if !cfg.IsProduction() {
		logLevel = gormlogger.Info
	}

	connectionPool, err := gorm.Open(postgres.Open(cfg.PostgresURL), &gorm.Config{
		// unique violations surface as gorm.ErrDuplicatedKey
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if cfg.DBAutoMigrate {
		if err := Migrate(connectionPool); err != nil {
			return nil, err
		}
		log.Info("database schema migrated")
	}

	log.Info("connected to PostgreSQL")
	return connectionPool, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&db_models.Plan{},
		&db_models.Subscription{},
		&db_models.Payment{},
		&db_models.WebhookEvent{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func ClosePostgresql(db *gorm.DB, log *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Error("Error getting database instance", zap.Error(err))
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Error("Error closing database connection", zap.Error(err))
	} else {
		log.Info("PostgreSQL database connection closed successfully")
	}
}
