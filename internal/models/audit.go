package models

import "time"

// AuditLog is an append-only record of a mutating administrative action.
// OldValues/NewValues hold JSON snapshots of the affected row before and
// after the change; either may be empty (creates have no old state, deletes
// no new state).
type AuditLog struct {
	ID          uint   `gorm:"primaryKey"`
	Action      string `gorm:"size:40;not null"` // create, update, delete, shift_start, shift_end, ...
	EntityTable string `gorm:"size:40;not null"`
	EntityID    uint   `gorm:"not null"`
	Actor       string `gorm:"size:80;not null"`
	OldValues   string
	NewValues   string
	CreatedAt   time.Time `gorm:"index"`
}

func (AuditLog) TableName() string { return "audit_log" }
