package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/exoticmods/exoticbill/internal/errs"
	"github.com/exoticmods/exoticbill/internal/models"
)

// BillAdminService covers the administrative side of the ledger: listing,
// soft deletion and the gated full reset. Sale computation lives in the
// billing engine, not here.
type BillAdminService struct {
	db    *gorm.DB
	audit *AuditRecorder
}

func NewBillAdminService(db *gorm.DB, audit *AuditRecorder) *BillAdminService {
	return &BillAdminService{db: db, audit: audit}
}

// List returns bills newest first with optional employee/customer filters.
func (s *BillAdminService) List(employeeCID, customerCID string, limit int) ([]models.Bill, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	q := s.db.Order("created_at DESC").Limit(limit)
	if employeeCID != "" {
		q = q.Where("employee_cid = ?", employeeCID)
	}
	if customerCID != "" {
		q = q.Where("customer_cid = ?", customerCID)
	}
	var bills []models.Bill
	if err := q.Find(&bills).Error; err != nil {
		return nil, errs.Store("list bills", err)
	}
	return bills, nil
}

// Delete soft-deletes one bill: the row moves to bills_deleted with deleter
// identity and deletion time, and one audit entry captures the full prior
// state as old values.
func (s *BillAdminService) Delete(billID uint, actor string, now time.Time) error {
	var bill models.Bill
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&bill, billID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFoundf("bill %d", billID)
			}
			return errs.Store("load bill", err)
		}
		tomb := models.DeletedBill{
			BillID:      bill.ID,
			Reference:   bill.Reference,
			EmployeeCID: bill.EmployeeCID,
			CustomerCID: bill.CustomerCID,
			Type:        bill.Type,
			Details:     bill.Details,
			Total:       bill.Total,
			Commission:  bill.Commission,
			Tax:         bill.Tax,
			BilledAt:    bill.CreatedAt,
			DeletedBy:   actor,
			DeletedAt:   now,
		}
		if err := tx.Create(&tomb).Error; err != nil {
			return errs.Store("archive bill", err)
		}
		if err := tx.Delete(&models.Bill{}, bill.ID).Error; err != nil {
			return errs.Store("remove bill", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.audit.Record("delete", "bills", bill.ID, actor, bill, nil)
	return nil
}

// Reset wipes the live bills set. Deliberately destructive and irreversible;
// the confirm flag is required and the wipe is audited.
func (s *BillAdminService) Reset(confirm bool, actor string) error {
	if !confirm {
		return errs.Validationf("reset requires explicit confirmation")
	}
	var count int64
	if err := s.db.Model(&models.Bill{}).Count(&count).Error; err != nil {
		return errs.Store("count bills", err)
	}
	if err := s.db.Where("1 = 1").Delete(&models.Bill{}).Error; err != nil {
		return errs.Store("reset bills", err)
	}
	s.audit.Record("reset", "bills", 0, actor, map[string]any{"bills_removed": count}, nil)
	return nil
}

// Deleted lists soft-deleted bills, newest deletion first.
func (s *BillAdminService) Deleted(limit int) ([]models.DeletedBill, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var bills []models.DeletedBill
	if err := s.db.Order("deleted_at DESC").Limit(limit).Find(&bills).Error; err != nil {
		return nil, errs.Store("list deleted bills", err)
	}
	return bills, nil
}
