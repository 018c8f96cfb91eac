package services

import (
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/exoticmods/exoticbill/internal/models"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Bill{}, &models.DeletedBill{}, &models.Employee{}, &models.Hood{},
		&models.Membership{}, &models.MembershipHistory{}, &models.Item{},
		&models.LoyaltyAccount{}, &models.Shift{}, &models.AuditLog{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedEmployee(t *testing.T, db *gorm.DB, cid string, rank models.Rank) {
	t.Helper()
	emp := models.Employee{CID: cid, Name: "Emp " + cid, Rank: rank, Hood: models.DefaultHood}
	if err := db.Create(&emp).Error; err != nil {
		t.Fatalf("seed employee: %v", err)
	}
}

func auditCount(t *testing.T, db *gorm.DB, action string) int64 {
	t.Helper()
	var count int64
	if err := db.Model(&models.AuditLog{}).Where("action = ?", action).Count(&count).Error; err != nil {
		t.Fatalf("count audit: %v", err)
	}
	return count
}
