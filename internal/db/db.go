package db

import (
	"errors"
	"fmt"
	"os"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/exoticmods/exoticbill/internal/config"
	"github.com/exoticmods/exoticbill/internal/models"
)

// ConnectAndMigrate opens the embedded database file and brings its structure
// up to the current required shape. The path is additive and idempotent in
// both modes: versioned SQL migrations (MIGRATIONS=1, recorded in
// schema_migrations) or AutoMigrate of the full model set. Columns are only
// ever added, never dropped or renamed; a structure element that already
// exists is success, not an error.
//
// Must run to completion before anything else touches the store.
func ConnectAndMigrate(cfg config.Config) (*gorm.DB, error) {
	if cfg.DatabasePath == "" {
		return nil, fmt.Errorf("DATABASE_PATH is empty, check environment configuration")
	}
	logLevel := logger.Silent
	if os.Getenv("DB_DEBUG") == "1" {
		logLevel = logger.Info
	}
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}
	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", cfg.DatabasePath, err)
	}

	// Basic connectivity test
	if pingErr := db.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping failed: %w", pingErr)
	}

	if cfg.UseSQLMigrations {
		if err := runSQLMigrations(cfg.DatabasePath); err != nil {
			return nil, fmt.Errorf("sql migrations failed: %w", err)
		}
	} else {
		for _, m := range modelSet() {
			if migErr := db.AutoMigrate(m); migErr != nil {
				return nil, fmt.Errorf("automigrate %T: %w", m, migErr)
			}
		}
	}

	// sanity check: ensure required core tables exist
	for _, table := range []string{"bills", "bills_deleted", "employees", "memberships", "membership_history", "hoods", "items", "loyalty", "shifts", "audit_log"} {
		if !db.Migrator().HasTable(table) {
			return nil, errors.New("missing table after migration: " + table)
		}
	}

	// First-ever run: the catalog starts from the fixed item set, but only
	// when the table is currently empty.
	if err := seedItems(db); err != nil {
		return nil, fmt.Errorf("seed items: %w", err)
	}
	return db, nil
}

func modelSet() []interface{} {
	return []interface{}{
		&models.Bill{}, &models.DeletedBill{}, &models.Employee{}, &models.Hood{},
		&models.Membership{}, &models.MembershipHistory{}, &models.Item{},
		&models.LoyaltyAccount{}, &models.Shift{}, &models.AuditLog{},
	}
}
