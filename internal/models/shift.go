package models

import "time"

// Shift is one bounded work interval for an employee. EndedAt is null while
// the shift is open; at most one open shift exists per employee.
type Shift struct {
	ID          uint       `gorm:"primaryKey"`
	EmployeeCID string     `gorm:"column:employee_cid;size:40;not null;index:idx_shifts_employee_open,priority:1"`
	StartedAt   time.Time  `gorm:"not null"`
	EndedAt     *time.Time `gorm:"index:idx_shifts_employee_open,priority:2"`
	// Filled on close: duration in minutes plus the bill count and revenue
	// attributed to [StartedAt, EndedAt].
	DurationMin int     `gorm:"not null;default:0"`
	BillCount   int64   `gorm:"not null;default:0"`
	Revenue     float64 `gorm:"not null;default:0"`
}

// Open reports whether the shift is still running.
func (s *Shift) Open() bool { return s.EndedAt == nil }
