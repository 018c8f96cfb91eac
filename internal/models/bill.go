package models

import "time"

// BillType is the closed set of sale categories the rule engine accepts.
type BillType string

const (
	BillItems         BillType = "ITEMS"
	BillUpgrades      BillType = "UPGRADES"
	BillRepair        BillType = "REPAIR"
	BillCustomization BillType = "CUSTOMIZATION"
	BillMembership    BillType = "MEMBERSHIP"
)

// ValidBillType reports whether t is one of the five known categories.
func ValidBillType(t BillType) bool {
	switch t {
	case BillItems, BillUpgrades, BillRepair, BillCustomization, BillMembership:
		return true
	}
	return false
}

// Bill is one finalized ledger entry. Commission and tax are stored alongside
// the total so historical bills keep the figures they were computed with even
// if the rate tables change later.
type Bill struct {
	ID          uint     `gorm:"primaryKey"`
	Reference   string   `gorm:"size:36;uniqueIndex;not null"`
	EmployeeCID string   `gorm:"column:employee_cid;size:40;not null;index:idx_bills_employee_ts,priority:1"`
	CustomerCID string   `gorm:"column:customer_cid;size:40;index:idx_bills_customer_ts,priority:1"`
	Type        BillType `gorm:"size:20;not null"`
	Details     string
	Total       float64   `gorm:"not null"`
	Commission  float64   `gorm:"not null;default:0"`
	Tax         float64   `gorm:"not null;default:0"`
	CreatedAt   time.Time `gorm:"index:idx_bills_ts;index:idx_bills_employee_ts,priority:2;index:idx_bills_customer_ts,priority:2"`
}

// DeletedBill mirrors Bill plus deletion metadata. Bills are never hard-deleted;
// they move here so erroneous deletions stay recoverable and auditable.
type DeletedBill struct {
	ID          uint     `gorm:"primaryKey"`
	BillID      uint     `gorm:"not null;index"`
	Reference   string   `gorm:"size:36;not null"`
	EmployeeCID string   `gorm:"column:employee_cid;size:40;not null"`
	CustomerCID string   `gorm:"column:customer_cid;size:40"`
	Type        BillType `gorm:"size:20;not null"`
	Details     string
	Total       float64 `gorm:"not null"`
	Commission  float64 `gorm:"not null;default:0"`
	Tax         float64 `gorm:"not null;default:0"`
	BilledAt    time.Time
	DeletedBy   string    `gorm:"size:80;not null"`
	DeletedAt   time.Time `gorm:"not null"`
}

func (DeletedBill) TableName() string { return "bills_deleted" }
