package billing

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/exoticmods/exoticbill/internal/errs"
	"github.com/exoticmods/exoticbill/internal/models"
)

// TierLookup resolves a customer's active membership tier at a point in time.
// Implementations must sweep expired memberships before reading so a stale
// discount is never granted.
type TierLookup interface {
	ActiveTier(tx *gorm.DB, customerCID string, now time.Time) (models.Tier, bool, error)
}

// RepairKind selects between the two repair pricing modes.
type RepairKind string

const (
	RepairNormal   RepairKind = "normal"   // base charge + fixed labor
	RepairAdvanced RepairKind = "advanced" // per-part cost × parts count
)

// SaleInput carries one sale's raw parameters into the engine. Item
// selections travel as a structured name→quantity map end to end; the
// commission exemption checks this map directly, never display text.
type SaleInput struct {
	EmployeeCID string
	CustomerCID string
	Type        models.BillType

	Items      map[string]int // ITEMS
	BaseAmount float64        // UPGRADES, CUSTOMIZATION, REPAIR (normal charge)
	RepairKind RepairKind     // REPAIR only
	PartsCount int            // REPAIR advanced
	Tier       models.Tier    // MEMBERSHIP
}

// Engine computes a finalized monetary outcome for one sale and persists it
// plus its side effects. It is a stateless transformer over the store: every
// SaveBill runs as one transaction, so no partial bill (stock decremented but
// bill row missing) is ever observable.
type Engine struct {
	db               *gorm.DB
	tiers            TierLookup
	loyaltyEarnPerRs int
}

func NewEngine(db *gorm.DB, tiers TierLookup, loyaltyEarnPerRs int) *Engine {
	if loyaltyEarnPerRs <= 0 {
		loyaltyEarnPerRs = DefaultLoyaltyEarnPerRs
	}
	return &Engine{db: db, tiers: tiers, loyaltyEarnPerRs: loyaltyEarnPerRs}
}

// SaveBill validates, computes and persists one sale. All validation happens
// before any write. The returned bill carries the final total, commission and
// tax. A Racer membership purchase is a no-op: it returns (nil, nil) and
// records nothing.
func (e *Engine) SaveBill(in SaleInput, now time.Time) (*models.Bill, error) {
	if in.EmployeeCID == "" {
		return nil, errs.Validationf("employee CID is required")
	}
	if !models.ValidBillType(in.Type) {
		return nil, errs.Validationf("unknown billing type %q", in.Type)
	}
	if in.Type == models.BillMembership {
		if in.CustomerCID == "" {
			return nil, errs.Validationf("membership purchase requires a customer CID")
		}
		if !models.ValidTier(in.Tier) {
			return nil, errs.Validationf("unknown membership tier %q", in.Tier)
		}
		if in.Tier == models.TierRacer {
			return nil, nil
		}
	}

	var bill *models.Bill
	err := e.db.Transaction(func(tx *gorm.DB) error {
		var emp models.Employee
		if err := tx.Where("cid = ?", in.EmployeeCID).First(&emp).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFoundf("employee %s", in.EmployeeCID)
			}
			return errs.Store("load employee", err)
		}

		total, details, err := e.rawTotal(tx, in)
		if err != nil {
			return err
		}
		if total <= 0 {
			return errs.Validationf("bill total must be positive")
		}

		// Membership discount applies to REPAIR and CUSTOMIZATION only,
		// after the raw total and after the expiry sweep.
		if in.CustomerCID != "" && (in.Type == models.BillRepair || in.Type == models.BillCustomization) {
			tier, ok, terr := e.tiers.ActiveTier(tx, in.CustomerCID, now)
			if terr != nil {
				return terr
			}
			if ok {
				if rate := DiscountRate(tier, in.Type); rate > 0 {
					total = total * (1 - rate)
				}
			}
		}

		commission, tax := e.commission(emp.Rank, in, total)

		bill = &models.Bill{
			Reference:   uuid.NewString(),
			EmployeeCID: in.EmployeeCID,
			CustomerCID: in.CustomerCID,
			Type:        in.Type,
			Details:     details,
			Total:       total,
			Commission:  commission,
			Tax:         tax,
			CreatedAt:   now,
		}
		if err := tx.Create(bill).Error; err != nil {
			return errs.Store("insert bill", err)
		}

		if in.Type == models.BillItems {
			if err := decrementStock(tx, in.Items); err != nil {
				return err
			}
		}
		if in.Type != models.BillMembership && in.CustomerCID != "" {
			points := int(math.Floor(total / float64(e.loyaltyEarnPerRs)))
			if points > 0 {
				if err := accruePoints(tx, in.CustomerCID, points, now); err != nil {
					return err
				}
			}
		}
		if in.Type == models.BillMembership {
			if err := upsertMembership(tx, in.CustomerCID, in.Tier, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return bill, nil
}

// rawTotal computes the pre-discount total and the display detail string for
// one sale. For ITEMS it also validates every requested quantity against
// current stock; the whole sale is rejected before any write if one line
// exceeds stock.
func (e *Engine) rawTotal(tx *gorm.DB, in SaleInput) (float64, string, error) {
	switch in.Type {
	case models.BillItems:
		return itemsTotal(tx, in.Items)
	case models.BillUpgrades:
		if in.BaseAmount <= 0 {
			return 0, "", errs.Validationf("upgrade base amount must be positive")
		}
		return in.BaseAmount * UpgradeMultiplier, fmt.Sprintf("Upgrade (base %.2f)", in.BaseAmount), nil
	case models.BillRepair:
		switch in.RepairKind {
		case RepairNormal:
			if in.BaseAmount <= 0 {
				return 0, "", errs.Validationf("repair base charge must be positive")
			}
			return in.BaseAmount + RepairLaborCharge, fmt.Sprintf("Repair (base %.2f + labor)", in.BaseAmount), nil
		case RepairAdvanced:
			if in.PartsCount <= 0 {
				return 0, "", errs.Validationf("advanced repair needs a positive parts count")
			}
			return float64(in.PartsCount) * AdvancedRepairPartCost, fmt.Sprintf("Advanced repair (%d parts)", in.PartsCount), nil
		default:
			return 0, "", errs.Validationf("unknown repair kind %q", in.RepairKind)
		}
	case models.BillCustomization:
		if in.BaseAmount <= 0 {
			return 0, "", errs.Validationf("customization base amount must be positive")
		}
		return in.BaseAmount * CustomizationMultiplier, fmt.Sprintf("Customization (base %.2f)", in.BaseAmount), nil
	case models.BillMembership:
		price := tierPrices[in.Tier]
		return price, fmt.Sprintf("Membership %s", in.Tier), nil
	}
	return 0, "", errs.Validationf("unknown billing type %q", in.Type)
}

// commission applies the exemption rules, then the rank rate. Tax is levied
// on the commission amount.
func (e *Engine) commission(rank models.Rank, in SaleInput, total float64) (float64, float64) {
	if in.Type == models.BillUpgrades || in.Type == models.BillMembership {
		return 0, 0
	}
	if in.Type == models.BillItems && allCommissionExempt(in.Items) {
		return 0, 0
	}
	rate, ok := CommissionRate(rank)
	if !ok {
		return 0, 0
	}
	commission := total * rate
	return commission, commission * TaxRate
}

// itemsTotal loads every selected item, validates stock for all lines before
// anything is written, and builds the total plus detail string.
func itemsTotal(tx *gorm.DB, selection map[string]int) (float64, string, error) {
	if len(selection) == 0 {
		return 0, "", errs.Validationf("no items selected")
	}
	names := make([]string, 0, len(selection))
	for name, qty := range selection {
		if qty <= 0 {
			return 0, "", errs.Validationf("quantity for %s must be positive", name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var items []models.Item
	if err := tx.Where("name IN ?", names).Find(&items).Error; err != nil {
		return 0, "", errs.Store("load items", err)
	}
	byName := make(map[string]models.Item, len(items))
	for _, it := range items {
		byName[it.Name] = it
	}

	var total float64
	parts := make([]string, 0, len(names))
	for _, name := range names {
		item, ok := byName[name]
		if !ok {
			return 0, "", errs.NotFoundf("item %s", name)
		}
		qty := selection[name]
		if qty > item.Stock {
			return 0, "", errs.Validationf("requested %d of %s but only %d in stock", qty, name, item.Stock)
		}
		total += item.UnitPrice * float64(qty)
		parts = append(parts, fmt.Sprintf("%s x%d", name, qty))
	}
	return total, strings.Join(parts, ", "), nil
}

// decrementStock applies the validated quantities. The guarded UPDATE is a
// second line of defense; validation already ran inside the same transaction.
func decrementStock(tx *gorm.DB, selection map[string]int) error {
	for name, qty := range selection {
		res := tx.Model(&models.Item{}).
			Where("name = ? AND stock >= ?", name, qty).
			UpdateColumn("stock", gorm.Expr("stock - ?", qty))
		if res.Error != nil {
			return errs.Store("decrement stock", res.Error)
		}
		if res.RowsAffected == 0 {
			return errs.Validationf("stock for %s changed underneath the sale", name)
		}
	}
	return nil
}

// accruePoints upserts the customer's loyalty balance.
func accruePoints(tx *gorm.DB, customerCID string, points int, now time.Time) error {
	acct := models.LoyaltyAccount{CustomerCID: customerCID, Points: points, UpdatedAt: now}
	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "customer_cid"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"points":     gorm.Expr("points + ?", points),
			"updated_at": now,
		}),
	}).Create(&acct).Error
	if err != nil {
		return errs.Store("accrue loyalty points", err)
	}
	return nil
}

// upsertMembership replaces any prior active membership for the customer.
func upsertMembership(tx *gorm.DB, customerCID string, tier models.Tier, now time.Time) error {
	m := models.Membership{CustomerCID: customerCID, Tier: tier, PurchaseDate: now}
	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "customer_cid"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"tier":          tier,
			"purchase_date": now,
		}),
	}).Create(&m).Error
	if err != nil {
		return errs.Store("upsert membership", err)
	}
	return nil
}
