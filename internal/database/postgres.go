package database

import (
	"fmt"
	"log/slog"
	"time"

	"forms-service/internal/config"
	"forms-service/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	connectRetries    = 5
	connectRetryDelay = 5 * time.Second
)

// NewRelationalConnection opens the gorm connection for STORE_DRIVER=postgres or mysql,
// retrying while the database comes up.
func NewRelationalConnection(cfg config.StoreConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.StorePostgres:
		dialector = postgres.Open(cfg.PostgresURI)
	case config.StoreMySQL:
		dialector = mysql.Open(cfg.MySQLDSN)
	default:
		return nil, fmt.Errorf("driver %q is not relational", cfg.Driver)
	}

	gormConfig := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		SkipDefaultTransaction:                   true,
		TranslateError:                           true,
		Logger:                                   logger.Default.LogMode(logger.Warn),
	}

	var (
		db  *gorm.DB
		err error
	)
	for i := 0; i < connectRetries; i++ {
		db, err = gorm.Open(dialector, gormConfig)
		if err == nil {
			break
		}
		slog.Warn("Failed to connect to database", "driver", cfg.Driver, "attempt", i+1, "maxRetries", connectRetries, "error", err)
		time.Sleep(connectRetryDelay)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", connectRetries, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	slog.Info("Connected to relational store", "driver", cfg.Driver)
	return db, nil
}

// AutoMigrate creates or updates every table the relational store uses.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Template{},
		&models.TemplateLike{},
		&models.Form{},
		&models.Comment{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
