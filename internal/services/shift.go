package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/exoticmods/exoticbill/internal/errs"
	"github.com/exoticmods/exoticbill/internal/models"
)

// ShiftService tracks one open labor interval per employee and computes its
// summary on close. Start/end transitions are audited.
type ShiftService struct {
	db    *gorm.DB
	audit *AuditRecorder
}

func NewShiftService(db *gorm.DB, audit *AuditRecorder) *ShiftService {
	return &ShiftService{db: db, audit: audit}
}

// Start opens a shift for the employee. Fails with a conflict if one is
// already open.
func (s *ShiftService) Start(employeeCID, actor string, now time.Time) (*models.Shift, error) {
	var shift models.Shift
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var emp models.Employee
		if err := tx.Where("cid = ?", employeeCID).First(&emp).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFoundf("employee %s", employeeCID)
			}
			return errs.Store("load employee", err)
		}
		var open int64
		if err := tx.Model(&models.Shift{}).Where("employee_cid = ? AND ended_at IS NULL", employeeCID).Count(&open).Error; err != nil {
			return errs.Store("check open shift", err)
		}
		if open > 0 {
			return errs.Conflictf("employee %s already has an open shift", employeeCID)
		}
		shift = models.Shift{EmployeeCID: employeeCID, StartedAt: now}
		if err := tx.Create(&shift).Error; err != nil {
			return errs.Store("open shift", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.audit.Record("shift_start", "shifts", shift.ID, actor, nil, shift)
	return &shift, nil
}

// End closes the employee's open shift, computing its duration in minutes and
// the bill count and revenue attributed to [start, now]. Fails with not-found
// if no shift is open.
func (s *ShiftService) End(employeeCID, actor string, now time.Time) (*models.Shift, error) {
	var before, after models.Shift
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("employee_cid = ? AND ended_at IS NULL", employeeCID).First(&before).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFoundf("no open shift for employee %s", employeeCID)
			}
			return errs.Store("load open shift", err)
		}
		var count int64
		var revenue float64
		if err := tx.Model(&models.Bill{}).
			Where("employee_cid = ? AND created_at >= ? AND created_at <= ?", employeeCID, before.StartedAt, now).
			Count(&count).Error; err != nil {
			return errs.Store("count shift bills", err)
		}
		if err := tx.Model(&models.Bill{}).
			Select("COALESCE(SUM(total),0)").
			Where("employee_cid = ? AND created_at >= ? AND created_at <= ?", employeeCID, before.StartedAt, now).
			Scan(&revenue).Error; err != nil {
			return errs.Store("sum shift revenue", err)
		}
		after = before
		after.EndedAt = &now
		after.DurationMin = int(now.Sub(before.StartedAt).Minutes())
		after.BillCount = count
		after.Revenue = revenue
		if err := tx.Save(&after).Error; err != nil {
			return errs.Store("close shift", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.audit.Record("shift_end", "shifts", after.ID, actor, before, after)
	return &after, nil
}

// Open lists all currently open shifts.
func (s *ShiftService) Open() ([]models.Shift, error) {
	var shifts []models.Shift
	if err := s.db.Where("ended_at IS NULL").Order("started_at").Find(&shifts).Error; err != nil {
		return nil, errs.Store("list open shifts", err)
	}
	return shifts, nil
}

// Recent lists the latest shifts for an employee, open or closed.
func (s *ShiftService) Recent(employeeCID string, limit int) ([]models.Shift, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var shifts []models.Shift
	q := s.db.Order("started_at DESC").Limit(limit)
	if employeeCID != "" {
		q = q.Where("employee_cid = ?", employeeCID)
	}
	if err := q.Find(&shifts).Error; err != nil {
		return nil, errs.Store("list shifts", err)
	}
	return shifts, nil
}
