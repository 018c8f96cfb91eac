package models

import "time"

// Tier is a membership level granting recurring discounts on REPAIR and
// CUSTOMIZATION sales for seven days from purchase.
type Tier string

const (
	TierOne   Tier = "Tier1"
	TierTwo   Tier = "Tier2"
	TierThree Tier = "Tier3"
	TierRacer Tier = "Racer"
)

// ValidTier reports whether t is a known membership tier.
func ValidTier(t Tier) bool {
	switch t {
	case TierOne, TierTwo, TierThree, TierRacer:
		return true
	}
	return false
}

// Membership is the single active membership a customer may hold. A new
// purchase replaces any prior active row for the same customer.
type Membership struct {
	ID           uint      `gorm:"primaryKey"`
	CustomerCID  string    `gorm:"column:customer_cid;size:40;uniqueIndex;not null"`
	Tier         Tier      `gorm:"size:20;not null"`
	PurchaseDate time.Time `gorm:"not null;index"`
}

// MembershipHistory is the append-only archive a membership moves to once it
// expires. Nothing is ever deleted from this table.
type MembershipHistory struct {
	ID           uint      `gorm:"primaryKey"`
	CustomerCID  string    `gorm:"column:customer_cid;size:40;not null;index"`
	Tier         Tier      `gorm:"size:20;not null"`
	PurchaseDate time.Time `gorm:"not null"`
	ExpiredAt    time.Time `gorm:"not null;index"`
}

func (MembershipHistory) TableName() string { return "membership_history" }
