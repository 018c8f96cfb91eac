package services

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/exoticmods/exoticbill/internal/errs"
	"github.com/exoticmods/exoticbill/internal/models"
)

// LoyaltyService reads balances and applies audited admin adjustments.
// Accrual on sales happens inside the billing engine's transaction, not here.
type LoyaltyService struct {
	db    *gorm.DB
	audit *AuditRecorder
}

func NewLoyaltyService(db *gorm.DB, audit *AuditRecorder) *LoyaltyService {
	return &LoyaltyService{db: db, audit: audit}
}

// Balance returns the customer's account; a customer with no account yet has
// a zero balance rather than a not-found.
func (s *LoyaltyService) Balance(customerCID string) (*models.LoyaltyAccount, error) {
	var acct models.LoyaltyAccount
	if err := s.db.Where("customer_cid = ?", customerCID).First(&acct).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.LoyaltyAccount{CustomerCID: customerCID, Points: 0}, nil
		}
		return nil, errs.Store("load loyalty account", err)
	}
	return &acct, nil
}

// Adjust applies an arbitrary admin delta to the balance. The delta may be
// negative; the resulting balance may too, by admin choice.
func (s *LoyaltyService) Adjust(customerCID string, delta int, actor string, now time.Time) (*models.LoyaltyAccount, error) {
	if customerCID == "" {
		return nil, errs.Validationf("customer CID is required")
	}
	if delta == 0 {
		return nil, errs.Validationf("adjustment delta must be non-zero")
	}
	before, err := s.Balance(customerCID)
	if err != nil {
		return nil, err
	}
	acct := models.LoyaltyAccount{CustomerCID: customerCID, Points: delta, UpdatedAt: now}
	err = s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "customer_cid"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"points":     gorm.Expr("points + ?", delta),
			"updated_at": now,
		}),
	}).Create(&acct).Error
	if err != nil {
		return nil, errs.Store("adjust loyalty points", err)
	}
	after, err := s.Balance(customerCID)
	if err != nil {
		return nil, err
	}
	s.audit.Record("adjust", "loyalty", after.ID, actor, before, after)
	return after, nil
}

// Top returns the highest balances, for the loyalty leaderboard view.
func (s *LoyaltyService) Top(limit int) ([]models.LoyaltyAccount, error) {
	if limit <= 0 || limit > 200 {
		limit = 20
	}
	var accts []models.LoyaltyAccount
	if err := s.db.Order("points DESC").Limit(limit).Find(&accts).Error; err != nil {
		return nil, errs.Store("list loyalty accounts", err)
	}
	return accts, nil
}
