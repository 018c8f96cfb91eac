package models

import "time"

// Item is one catalog entry with live stock. Stock never goes negative; the
// rule engine rejects a sale before any decrement if quantities exceed stock.
type Item struct {
	ID        uint    `gorm:"primaryKey"`
	Name      string  `gorm:"size:80;uniqueIndex;not null"`
	UnitPrice float64 `gorm:"not null"`
	Stock     int     `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LoyaltyAccount tracks a customer's point balance. Points accrue on every
// non-membership bill; admin adjustments may apply arbitrary deltas.
type LoyaltyAccount struct {
	ID          uint   `gorm:"primaryKey"`
	CustomerCID string `gorm:"column:customer_cid;size:40;uniqueIndex;not null"`
	Points      int    `gorm:"not null;default:0;index"`
	UpdatedAt   time.Time
}

func (LoyaltyAccount) TableName() string { return "loyalty" }
