package billing

import (
	"github.com/exoticmods/exoticbill/internal/models"
)

// Fixed charges and rates of the rule engine. These are the static tables the
// whole computation branches over; historical bills are unaffected by edits
// here because every bill stores the figures it was computed with.
const (
	// RepairLaborCharge is added to the base charge of a normal repair.
	RepairLaborCharge = 450.0
	// AdvancedRepairPartCost is the per-part price of an advanced repair.
	AdvancedRepairPartCost = 250.0
	// UpgradeMultiplier applies to the base amount of an upgrade sale.
	UpgradeMultiplier = 1.5
	// CustomizationMultiplier applies to the base amount of a customization.
	CustomizationMultiplier = 2.0
	// TaxRate applies to the commission amount, not the bill total.
	TaxRate = 0.05
	// DefaultLoyaltyEarnPerRs: one point per this many currency units spent.
	DefaultLoyaltyEarnPerRs = 100
)

// commissionRates by employee rank. Unknown ranks earn nothing.
var commissionRates = map[models.Rank]float64{
	models.RankTrainee:        0.10,
	models.RankMechanic:       0.15,
	models.RankSeniorMechanic: 0.18,
	models.RankLeadUpgrade:    0.20,
	models.RankStockManager:   0.15,
	models.RankManager:        0.25,
	models.RankCEO:            0.69,
}

// CommissionRate returns the rate for a rank and whether the rank is known.
func CommissionRate(r models.Rank) (float64, bool) {
	rate, ok := commissionRates[r]
	return rate, ok
}

// tierPrices for membership purchase. Racer is free and records no bill.
var tierPrices = map[models.Tier]float64{
	models.TierOne:   5000,
	models.TierTwo:   8000,
	models.TierThree: 12000,
	models.TierRacer: 0,
}

// tierDiscounts by tier and billing type. Only REPAIR and CUSTOMIZATION are
// ever discounted.
var tierDiscounts = map[models.Tier]map[models.BillType]float64{
	models.TierOne:   {models.BillRepair: 0.20, models.BillCustomization: 0.10},
	models.TierTwo:   {models.BillRepair: 0.33, models.BillCustomization: 0.20},
	models.TierThree: {models.BillRepair: 0.50, models.BillCustomization: 0.30},
	models.TierRacer: {},
}

// DiscountRate returns the discount a tier grants on a billing type.
func DiscountRate(t models.Tier, bt models.BillType) float64 {
	return tierDiscounts[t][bt]
}

// noCommissionItems: an ITEMS sale made up entirely of these earns no
// commission regardless of the employee's rank.
var noCommissionItems = map[string]bool{
	"Harness": true,
	"NOS":     true,
}

func allCommissionExempt(items map[string]int) bool {
	if len(items) == 0 {
		return false
	}
	for name := range items {
		if !noCommissionItems[name] {
			return false
		}
	}
	return true
}
