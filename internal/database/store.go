package database

import (
	"context"
	"fmt"

	"forms-service/internal/config"
	"forms-service/internal/repositories"
	"forms-service/internal/repositories/memory"
	mongorepo "forms-service/internal/repositories/mongo"
	"forms-service/internal/repositories/postgres"
)

// SchemaVersion is recorded in Redis by cmd/migrate and checked by the server at startup.
const SchemaVersion = "1.0.0"

// OpenStore connects the backend selected by STORE_DRIVER and returns its repositories.
// When migrate is set the schema (tables or indexes) is brought up to date first.
func OpenStore(ctx context.Context, cfg config.StoreConfig, migrate bool) (*repositories.Store, error) {
	switch cfg.Driver {
	case config.StoreMemory:
		return memory.New(), nil

	case config.StorePostgres, config.StoreMySQL:
		db, err := NewRelationalConnection(cfg)
		if err != nil {
			return nil, err
		}
		if migrate {
			if err := AutoMigrate(db); err != nil {
				return nil, err
			}
		}
		return postgres.New(db), nil

	case config.StoreMongo:
		db, err := NewMongoConnection(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if migrate {
			if err := mongorepo.EnsureIndexes(ctx, db); err != nil {
				return nil, err
			}
		}
		return mongorepo.New(db), nil

	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.Driver)
	}
}
