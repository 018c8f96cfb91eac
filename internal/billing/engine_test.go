package billing

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/exoticmods/exoticbill/internal/errs"
	"github.com/exoticmods/exoticbill/internal/models"
)

func setupEngineTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open db")
	err = db.AutoMigrate(
		&models.Bill{}, &models.DeletedBill{}, &models.Employee{}, &models.Hood{},
		&models.Membership{}, &models.MembershipHistory{}, &models.Item{},
		&models.LoyaltyAccount{}, &models.Shift{}, &models.AuditLog{},
	)
	require.NoError(t, err, "migrate")
	return db
}

// sweepingTiers mimics the membership service: expire-then-read inside the
// caller's transaction.
type sweepingTiers struct{}

func (sweepingTiers) ActiveTier(tx *gorm.DB, customerCID string, now time.Time) (models.Tier, bool, error) {
	cutoff := now.Add(-7 * 24 * time.Hour)
	var expired []models.Membership
	if err := tx.Where("purchase_date <= ?", cutoff).Find(&expired).Error; err != nil {
		return "", false, err
	}
	for _, m := range expired {
		hist := models.MembershipHistory{CustomerCID: m.CustomerCID, Tier: m.Tier, PurchaseDate: m.PurchaseDate, ExpiredAt: m.PurchaseDate.Add(7 * 24 * time.Hour)}
		if err := tx.Create(&hist).Error; err != nil {
			return "", false, err
		}
		if err := tx.Delete(&models.Membership{}, m.ID).Error; err != nil {
			return "", false, err
		}
	}
	var m models.Membership
	if err := tx.Where("customer_cid = ?", customerCID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return m.Tier, true, nil
}

func seedEngineFixtures(t *testing.T, db *gorm.DB) {
	t.Helper()
	emp := models.Employee{CID: "E100", Name: "Vik", Rank: models.RankManager, Hood: "unassigned"}
	require.NoError(t, db.Create(&emp).Error)
	trainee := models.Employee{CID: "E200", Name: "Rook", Rank: models.RankTrainee, Hood: "unassigned"}
	require.NoError(t, db.Create(&trainee).Error)
	items := []models.Item{
		{Name: "NOS", UnitPrice: 1500, Stock: 20},
		{Name: "Harness", UnitPrice: 1000, Stock: 25},
		{Name: "Engine Oil", UnitPrice: 250, Stock: 50},
	}
	for i := range items {
		require.NoError(t, db.Create(&items[i]).Error)
	}
}

func newTestEngine(db *gorm.DB) *Engine {
	return NewEngine(db, sweepingTiers{}, DefaultLoyaltyEarnPerRs)
}

func TestRepairManagerNoMembership(t *testing.T) {
	db := setupEngineTestDB(t)
	seedEngineFixtures(t, db)
	e := newTestEngine(db)

	bill, err := e.SaveBill(SaleInput{
		EmployeeCID: "E100",
		CustomerCID: "C1",
		Type:        models.BillRepair,
		RepairKind:  RepairNormal,
		BaseAmount:  1000,
	}, time.Now())
	require.NoError(t, err)
	require.InDelta(t, 1450, bill.Total, 1e-9)
	require.InDelta(t, 362.50, bill.Commission, 1e-9)
	require.InDelta(t, 18.125, bill.Tax, 1e-9)

	var acct models.LoyaltyAccount
	require.NoError(t, db.Where("customer_cid = ?", "C1").First(&acct).Error)
	require.Equal(t, 14, acct.Points) // floor(1450/100)
}

func TestRepairTier2MemberDiscount(t *testing.T) {
	db := setupEngineTestDB(t)
	seedEngineFixtures(t, db)
	e := newTestEngine(db)
	now := time.Now()

	m := models.Membership{CustomerCID: "C2", Tier: models.TierTwo, PurchaseDate: now.Add(-24 * time.Hour)}
	require.NoError(t, db.Create(&m).Error)

	bill, err := e.SaveBill(SaleInput{
		EmployeeCID: "E100",
		CustomerCID: "C2",
		Type:        models.BillRepair,
		RepairKind:  RepairNormal,
		BaseAmount:  1000,
	}, now)
	require.NoError(t, err)
	require.InDelta(t, 971.5, bill.Total, 1e-9)
	require.InDelta(t, 242.875, bill.Commission, 1e-9)
	require.InDelta(t, 12.14375, bill.Tax, 1e-9)

	var acct models.LoyaltyAccount
	require.NoError(t, db.Where("customer_cid = ?", "C2").First(&acct).Error)
	require.Equal(t, 9, acct.Points)
}

func TestExpiredMembershipGrantsNoDiscount(t *testing.T) {
	db := setupEngineTestDB(t)
	seedEngineFixtures(t, db)
	e := newTestEngine(db)
	now := time.Now()

	m := models.Membership{CustomerCID: "C3", Tier: models.TierThree, PurchaseDate: now.Add(-8 * 24 * time.Hour)}
	require.NoError(t, db.Create(&m).Error)

	bill, err := e.SaveBill(SaleInput{
		EmployeeCID: "E100",
		CustomerCID: "C3",
		Type:        models.BillCustomization,
		BaseAmount:  500,
	}, now)
	require.NoError(t, err)
	require.InDelta(t, 1000, bill.Total, 1e-9) // 500×2, no discount

	// The stale membership was moved to history during the same operation.
	var active int64
	require.NoError(t, db.Model(&models.Membership{}).Where("customer_cid = ?", "C3").Count(&active).Error)
	require.Zero(t, active)
	var hist models.MembershipHistory
	require.NoError(t, db.Where("customer_cid = ?", "C3").First(&hist).Error)
	require.Equal(t, models.TierThree, hist.Tier)
}

func TestItemsExemptSetEarnsNoCommission(t *testing.T) {
	db := setupEngineTestDB(t)
	seedEngineFixtures(t, db)
	e := newTestEngine(db)

	bill, err := e.SaveBill(SaleInput{
		EmployeeCID: "E100",
		CustomerCID: "C4",
		Type:        models.BillItems,
		Items:       map[string]int{"NOS": 2},
	}, time.Now())
	require.NoError(t, err)
	require.InDelta(t, 3000, bill.Total, 1e-9)
	require.Zero(t, bill.Commission)
	require.Zero(t, bill.Tax)

	var acct models.LoyaltyAccount
	require.NoError(t, db.Where("customer_cid = ?", "C4").First(&acct).Error)
	require.Equal(t, 30, acct.Points)

	var nos models.Item
	require.NoError(t, db.Where("name = ?", "NOS").First(&nos).Error)
	require.Equal(t, 18, nos.Stock)
}

func TestItemsMixedSelectionEarnsCommission(t *testing.T) {
	db := setupEngineTestDB(t)
	seedEngineFixtures(t, db)
	e := newTestEngine(db)

	bill, err := e.SaveBill(SaleInput{
		EmployeeCID: "E100",
		Type:        models.BillItems,
		Items:       map[string]int{"NOS": 1, "Engine Oil": 2},
	}, time.Now())
	require.NoError(t, err)
	require.InDelta(t, 2000, bill.Total, 1e-9)
	require.InDelta(t, 500, bill.Commission, 1e-9) // Manager 0.25
	require.InDelta(t, 25, bill.Tax, 1e-9)
}

func TestItemsStockExceededLeavesStateUnchanged(t *testing.T) {
	db := setupEngineTestDB(t)
	seedEngineFixtures(t, db)
	e := newTestEngine(db)

	_, err := e.SaveBill(SaleInput{
		EmployeeCID: "E100",
		CustomerCID: "C5",
		Type:        models.BillItems,
		Items:       map[string]int{"NOS": 1, "Engine Oil": 999},
	}, time.Now())
	require.ErrorIs(t, err, errs.ErrValidation)

	var bills int64
	require.NoError(t, db.Model(&models.Bill{}).Count(&bills).Error)
	require.Zero(t, bills)
	var nos models.Item
	require.NoError(t, db.Where("name = ?", "NOS").First(&nos).Error)
	require.Equal(t, 20, nos.Stock)
	var accts int64
	require.NoError(t, db.Model(&models.LoyaltyAccount{}).Count(&accts).Error)
	require.Zero(t, accts)
}

func TestUpgradesExemptFromCommission(t *testing.T) {
	db := setupEngineTestDB(t)
	seedEngineFixtures(t, db)
	e := newTestEngine(db)

	bill, err := e.SaveBill(SaleInput{
		EmployeeCID: "E100",
		CustomerCID: "C6",
		Type:        models.BillUpgrades,
		BaseAmount:  1000,
	}, time.Now())
	require.NoError(t, err)
	require.InDelta(t, 1500, bill.Total, 1e-9)
	require.Zero(t, bill.Commission)
	require.Zero(t, bill.Tax)

	var acct models.LoyaltyAccount
	require.NoError(t, db.Where("customer_cid = ?", "C6").First(&acct).Error)
	require.Equal(t, 15, acct.Points)
}

func TestAdvancedRepairPricesPerPart(t *testing.T) {
	db := setupEngineTestDB(t)
	seedEngineFixtures(t, db)
	e := newTestEngine(db)

	bill, err := e.SaveBill(SaleInput{
		EmployeeCID: "E200", // Trainee, 0.10
		Type:        models.BillRepair,
		RepairKind:  RepairAdvanced,
		PartsCount:  4,
	}, time.Now())
	require.NoError(t, err)
	require.InDelta(t, 4*AdvancedRepairPartCost, bill.Total, 1e-9)
	require.InDelta(t, bill.Total*0.10, bill.Commission, 1e-9)
	require.InDelta(t, bill.Commission*TaxRate, bill.Tax, 1e-9)
}

func TestMembershipPurchaseRecordsBillAndRow(t *testing.T) {
	db := setupEngineTestDB(t)
	seedEngineFixtures(t, db)
	e := newTestEngine(db)
	now := time.Now()

	bill, err := e.SaveBill(SaleInput{
		EmployeeCID: "E100",
		CustomerCID: "C7",
		Type:        models.BillMembership,
		Tier:        models.TierOne,
	}, now)
	require.NoError(t, err)
	require.InDelta(t, 5000, bill.Total, 1e-9)
	require.Zero(t, bill.Commission)
	require.Zero(t, bill.Tax)

	var m models.Membership
	require.NoError(t, db.Where("customer_cid = ?", "C7").First(&m).Error)
	require.Equal(t, models.TierOne, m.Tier)

	// No loyalty accrual on membership bills.
	var accts int64
	require.NoError(t, db.Model(&models.LoyaltyAccount{}).Count(&accts).Error)
	require.Zero(t, accts)

	// A second purchase replaces the active row rather than adding one.
	_, err = e.SaveBill(SaleInput{
		EmployeeCID: "E100",
		CustomerCID: "C7",
		Type:        models.BillMembership,
		Tier:        models.TierThree,
	}, now.Add(time.Hour))
	require.NoError(t, err)
	var count int64
	require.NoError(t, db.Model(&models.Membership{}).Where("customer_cid = ?", "C7").Count(&count).Error)
	require.EqualValues(t, 1, count)
	require.NoError(t, db.Where("customer_cid = ?", "C7").First(&m).Error)
	require.Equal(t, models.TierThree, m.Tier)
}

func TestRacerMembershipRecordsNothing(t *testing.T) {
	db := setupEngineTestDB(t)
	seedEngineFixtures(t, db)
	e := newTestEngine(db)

	bill, err := e.SaveBill(SaleInput{
		EmployeeCID: "E100",
		CustomerCID: "C8",
		Type:        models.BillMembership,
		Tier:        models.TierRacer,
	}, time.Now())
	require.NoError(t, err)
	require.Nil(t, bill)

	var bills, memberships int64
	require.NoError(t, db.Model(&models.Bill{}).Count(&bills).Error)
	require.NoError(t, db.Model(&models.Membership{}).Count(&memberships).Error)
	require.Zero(t, bills)
	require.Zero(t, memberships)
}

func TestUnknownEmployeeRejected(t *testing.T) {
	db := setupEngineTestDB(t)
	seedEngineFixtures(t, db)
	e := newTestEngine(db)

	_, err := e.SaveBill(SaleInput{
		EmployeeCID: "E999",
		Type:        models.BillUpgrades,
		BaseAmount:  100,
	}, time.Now())
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestUnknownBillTypeRejected(t *testing.T) {
	db := setupEngineTestDB(t)
	e := newTestEngine(db)
	_, err := e.SaveBill(SaleInput{EmployeeCID: "E100", Type: "PIZZA"}, time.Now())
	require.ErrorIs(t, err, errs.ErrValidation)
}
