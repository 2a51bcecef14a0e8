// Package store implements the registry and time-series log described
// in spec.md §3/§6: a relational store, reached by `DB_CONN_STR`
// (default: local file-backed sqlite), used only as a typed key/value
// plus append-only metric/event tables.
package store

import (
	"fmt"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/elsevier-core-engineering/emrscale/autoscaler/structs"
	"github.com/elsevier-core-engineering/emrscale/logging"
)

const defaultSqliteFile = "emrscale.db"

// Store wraps a gorm connection with the registry and time-series
// operations the reconciliation loop and CLI need.
type Store struct {
	db *gorm.DB
}

// Open connects to the store named by DB_CONN_STR, defaulting to a
// local sqlite file when unset, retrying the initial connection with
// exponential backoff (spec §6 Environment).
func Open() (*Store, error) {
	dsn := os.Getenv("DB_CONN_STR")

	var dialector gorm.Dialector
	if dsn == "" {
		logging.Info("client/store: DB_CONN_STR not set, using local file-backed database %s", defaultSqliteFile)
		dialector = sqlite.Open(defaultSqliteFile)
	} else {
		dialector = postgres.Open(dsn)
	}

	var db *gorm.DB
	operation := func() error {
		opened, err := gorm.Open(dialector, &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
			NowFunc: func() time.Time {
				return time.Now().UTC()
			},
		})
		if err != nil {
			logging.Warning("client/store: connection attempt failed: %v", err)
			return err
		}
		db = opened
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5)); err != nil {
		return nil, fmt.Errorf("client/store: unable to open database: %w", err)
	}

	if err := db.AutoMigrate(
		&structs.Cluster{},
		&structs.MetricSample{},
		&structs.CpuUsageSample{},
		&structs.AvgMetric{},
		&structs.ResizeEvent{},
		&structs.QueueEvent{},
	); err != nil {
		return nil, fmt.Errorf("client/store: auto-migrate failed: %w", err)
	}

	logging.Info("client/store: connected and migrated schema")
	return &Store{db: db}, nil
}

// DB returns the underlying gorm handle for components (aggregator,
// executor) that query directly.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
