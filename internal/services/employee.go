package services

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/exoticmods/exoticbill/internal/billing"
	"github.com/exoticmods/exoticbill/internal/errs"
	"github.com/exoticmods/exoticbill/internal/models"
)

// EmployeeService covers the admin operations on employees and hoods. All
// mutations are audited with before/after snapshots.
type EmployeeService struct {
	db    *gorm.DB
	audit *AuditRecorder
}

func NewEmployeeService(db *gorm.DB, audit *AuditRecorder) *EmployeeService {
	return &EmployeeService{db: db, audit: audit}
}

// EmployeeInput carries the admin-supplied fields for create/update. The
// credential pair is optional and explicit; passwords are never derived from
// other fields.
type EmployeeInput struct {
	CID      string `json:"cid"`
	Name     string `json:"name"`
	Rank     string `json:"rank"`
	Hood     string `json:"hood"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *EmployeeService) Create(in EmployeeInput, actor string) (*models.Employee, error) {
	in.CID = strings.TrimSpace(in.CID)
	in.Name = strings.TrimSpace(in.Name)
	if in.CID == "" || in.Name == "" {
		return nil, errs.Validationf("cid and name are required")
	}
	rank := models.Rank(in.Rank)
	if _, ok := billing.CommissionRate(rank); !ok {
		return nil, errs.Validationf("unknown rank %q", in.Rank)
	}
	emp := models.Employee{CID: in.CID, Name: in.Name, Rank: rank, Hood: models.DefaultHood}
	if in.Hood != "" {
		emp.Hood = in.Hood
	}
	if in.Username != "" {
		if in.Password == "" {
			return nil, errs.Validationf("password required when issuing a username")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, errs.Store("hash password", err)
		}
		u := in.Username
		emp.Username = &u
		emp.PasswordHash = string(hash)
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Employee{}).Where("cid = ?", in.CID).Count(&count).Error; err != nil {
			return errs.Store("check employee cid", err)
		}
		if count > 0 {
			return errs.Conflictf("employee CID %s already exists", in.CID)
		}
		if emp.Username != nil {
			if err := tx.Model(&models.Employee{}).Where("username = ?", *emp.Username).Count(&count).Error; err != nil {
				return errs.Store("check username", err)
			}
			if count > 0 {
				return errs.Conflictf("username %s already taken", *emp.Username)
			}
		}
		if err := tx.Create(&emp).Error; err != nil {
			return errs.Store("insert employee", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.audit.Record("create", "employees", emp.ID, actor, nil, auditView(emp))
	return &emp, nil
}

// Update edits name, rank and hood. CID and credentials are immutable here.
func (s *EmployeeService) Update(cid string, in EmployeeInput, actor string) (*models.Employee, error) {
	var before, after models.Employee
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cid = ?", cid).First(&before).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFoundf("employee %s", cid)
			}
			return errs.Store("load employee", err)
		}
		after = before
		if n := strings.TrimSpace(in.Name); n != "" {
			after.Name = n
		}
		if in.Rank != "" {
			rank := models.Rank(in.Rank)
			if _, ok := billing.CommissionRate(rank); !ok {
				return errs.Validationf("unknown rank %q", in.Rank)
			}
			after.Rank = rank
		}
		if in.Hood != "" {
			after.Hood = in.Hood
		}
		if err := tx.Save(&after).Error; err != nil {
			return errs.Store("update employee", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.audit.Record("update", "employees", after.ID, actor, auditView(before), auditView(after))
	return &after, nil
}

func (s *EmployeeService) Delete(cid, actor string) error {
	var emp models.Employee
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cid = ?", cid).First(&emp).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFoundf("employee %s", cid)
			}
			return errs.Store("load employee", err)
		}
		if err := tx.Delete(&emp).Error; err != nil {
			return errs.Store("delete employee", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.audit.Record("delete", "employees", emp.ID, actor, auditView(emp), nil)
	return nil
}

// List returns employees, optionally filtered by hood.
func (s *EmployeeService) List(hood string) ([]models.Employee, error) {
	var emps []models.Employee
	q := s.db.Order("cid")
	if hood != "" {
		q = q.Where("hood = ?", hood)
	}
	if err := q.Find(&emps).Error; err != nil {
		return nil, errs.Store("list employees", err)
	}
	return emps, nil
}

func (s *EmployeeService) Get(cid string) (*models.Employee, error) {
	var emp models.Employee
	if err := s.db.Where("cid = ?", cid).First(&emp).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFoundf("employee %s", cid)
		}
		return nil, errs.Store("load employee", err)
	}
	return &emp, nil
}

// CreateHood adds a new team grouping; conflict on duplicate name.
func (s *EmployeeService) CreateHood(name, actor string) (*models.Hood, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errs.Validationf("hood name is required")
	}
	hood := models.Hood{Name: name}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Hood{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return errs.Store("check hood name", err)
		}
		if count > 0 {
			return errs.Conflictf("hood %s already exists", name)
		}
		return tx.Create(&hood).Error
	})
	if err != nil {
		return nil, err
	}
	s.audit.Record("create", "hoods", hood.ID, actor, nil, hood)
	return &hood, nil
}

// HoodCount is one row of the hood roster listing.
type HoodCount struct {
	Name      string `json:"name"`
	Employees int64  `json:"employees"`
}

// ListHoods returns every hood with its employee count.
func (s *EmployeeService) ListHoods() ([]HoodCount, error) {
	var out []HoodCount
	err := s.db.Model(&models.Hood{}).
		Select("hoods.name AS name, COUNT(employees.id) AS employees").
		Joins("LEFT JOIN employees ON employees.hood = hoods.name").
		Group("hoods.name").
		Order("hoods.name").
		Scan(&out).Error
	if err != nil {
		return nil, errs.Store("list hoods", err)
	}
	return out, nil
}

// auditView strips the credential hash out of employee snapshots.
func auditView(e models.Employee) map[string]any {
	return map[string]any{
		"id":   e.ID,
		"cid":  e.CID,
		"name": e.Name,
		"rank": e.Rank,
		"hood": e.Hood,
	}
}
