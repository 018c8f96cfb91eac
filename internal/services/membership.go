package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/exoticmods/exoticbill/internal/errs"
	"github.com/exoticmods/exoticbill/internal/models"
)

// MembershipDuration: a membership grants its discounts for seven days from
// purchase, then moves to history.
const MembershipDuration = 7 * 24 * time.Hour

// MembershipService owns the membership lifecycle. Every read of active
// memberships runs the expiry sweep first so a discount is never granted past
// expiry.
type MembershipService struct {
	db *gorm.DB
}

func NewMembershipService(db *gorm.DB) *MembershipService {
	return &MembershipService{db: db}
}

// SweepExpired moves every membership whose purchase is at least seven days
// old into membership_history with expired_at = purchase + 7 days. Pure move
// semantics: nothing is lost, only relocated.
func (s *MembershipService) SweepExpired(now time.Time) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return sweepTx(tx, now)
	})
}

func sweepTx(tx *gorm.DB, now time.Time) error {
	cutoff := now.Add(-MembershipDuration)
	var expired []models.Membership
	if err := tx.Where("purchase_date <= ?", cutoff).Find(&expired).Error; err != nil {
		return errs.Store("find expired memberships", err)
	}
	for _, m := range expired {
		hist := models.MembershipHistory{
			CustomerCID:  m.CustomerCID,
			Tier:         m.Tier,
			PurchaseDate: m.PurchaseDate,
			ExpiredAt:    m.PurchaseDate.Add(MembershipDuration),
		}
		if err := tx.Create(&hist).Error; err != nil {
			return errs.Store("archive membership", err)
		}
		if err := tx.Delete(&models.Membership{}, m.ID).Error; err != nil {
			return errs.Store("remove expired membership", err)
		}
	}
	return nil
}

// ActiveTier sweeps, then returns the customer's active tier if any. Safe to
// call with an open transaction handle; the sweep joins that transaction.
func (s *MembershipService) ActiveTier(tx *gorm.DB, customerCID string, now time.Time) (models.Tier, bool, error) {
	if tx == nil {
		tx = s.db
	}
	if err := sweepTx(tx, now); err != nil {
		return "", false, err
	}
	var m models.Membership
	if err := tx.Where("customer_cid = ?", customerCID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, errs.Store("load membership", err)
	}
	return m.Tier, true, nil
}

// Current returns the customer's active membership after sweeping.
func (s *MembershipService) Current(customerCID string, now time.Time) (*models.Membership, error) {
	if err := s.SweepExpired(now); err != nil {
		return nil, err
	}
	var m models.Membership
	if err := s.db.Where("customer_cid = ?", customerCID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFoundf("no active membership for %s", customerCID)
		}
		return nil, errs.Store("load membership", err)
	}
	return &m, nil
}

// History lists a customer's expired memberships, newest first.
func (s *MembershipService) History(customerCID string) ([]models.MembershipHistory, error) {
	var hist []models.MembershipHistory
	if err := s.db.Where("customer_cid = ?", customerCID).Order("expired_at DESC").Find(&hist).Error; err != nil {
		return nil, errs.Store("membership history", err)
	}
	return hist, nil
}
