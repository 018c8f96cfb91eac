package db

import (
	"path/filepath"
	"testing"

	"github.com/exoticmods/exoticbill/internal/config"
	"github.com/exoticmods/exoticbill/internal/models"
)

func TestConnectSeedsOnlyOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exoticbill_test.db")
	cfg := config.Config{DatabasePath: path}

	conn, err := ConnectAndMigrate(cfg)
	if err != nil {
		t.Fatalf("first connect: %v", err)
	}
	var count int64
	if err := conn.Model(&models.Item{}).Count(&count).Error; err != nil {
		t.Fatalf("count items: %v", err)
	}
	if count == 0 {
		t.Fatal("fresh database was not seeded")
	}
	seeded := count

	// Simulate an operator emptying a shelf; a reboot must not top it back up.
	if err := conn.Model(&models.Item{}).Where("name = ?", "NOS").Update("stock", 0).Error; err != nil {
		t.Fatalf("update stock: %v", err)
	}

	conn2, err := ConnectAndMigrate(cfg)
	if err != nil {
		t.Fatalf("second connect: %v", err)
	}
	if err := conn2.Model(&models.Item{}).Count(&count).Error; err != nil {
		t.Fatalf("recount items: %v", err)
	}
	if count != seeded {
		t.Fatalf("reboot changed catalog size: %d != %d", count, seeded)
	}
	var nos models.Item
	if err := conn2.Where("name = ?", "NOS").First(&nos).Error; err != nil {
		t.Fatalf("load NOS: %v", err)
	}
	if nos.Stock != 0 {
		t.Fatalf("reboot reset stock to %d", nos.Stock)
	}
}

func TestConnectCreatesAllTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables_test.db")
	conn, err := ConnectAndMigrate(config.Config{DatabasePath: path})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	for _, table := range []string{"bills", "bills_deleted", "employees", "memberships", "membership_history", "hoods", "items", "loyalty", "shifts", "audit_log"} {
		if !conn.Migrator().HasTable(table) {
			t.Fatalf("missing table %s", table)
		}
	}
}
