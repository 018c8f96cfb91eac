package services

import (
	"encoding/json"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/exoticmods/exoticbill/internal/models"
)

// AuditRecorder appends best-effort records of mutating administrative
// actions. A failed audit write is logged but never fails or rolls back the
// primary operation it accompanies, which is why Record takes the base DB
// handle rather than joining the caller's transaction.
type AuditRecorder struct {
	db *gorm.DB
}

func NewAuditRecorder(db *gorm.DB) *AuditRecorder {
	return &AuditRecorder{db: db}
}

// Record appends one audit entry. oldVals/newVals are serialized to JSON;
// pass nil for absent state (creates have no old state, deletes no new state).
func (a *AuditRecorder) Record(action, entityTable string, entityID uint, actor string, oldVals, newVals any) {
	entry := models.AuditLog{
		Action:      action,
		EntityTable: entityTable,
		EntityID:    entityID,
		Actor:       actor,
		OldValues:   marshalSnapshot(oldVals),
		NewValues:   marshalSnapshot(newVals),
		CreatedAt:   time.Now(),
	}
	if err := a.db.Create(&entry).Error; err != nil {
		log.Printf("audit write failed action=%s table=%s id=%d: %v", action, entityTable, entityID, err)
	}
}

// Recent returns the latest audit entries, newest first.
func (a *AuditRecorder) Recent(limit int) ([]models.AuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var entries []models.AuditLog
	err := a.db.Order("id DESC").Limit(limit).Find(&entries).Error
	return entries, err
}

func marshalSnapshot(v any) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		log.Printf("audit snapshot marshal failed: %v", err)
		return ""
	}
	return string(b)
}
