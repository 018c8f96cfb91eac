package billing

import (
	"time"

	"github.com/exoticmods/exoticbill/internal/errs"
	"github.com/exoticmods/exoticbill/internal/models"
)

// Summary aggregates the live bills set over a time window.
type Summary struct {
	From       time.Time              `json:"from"`
	To         time.Time              `json:"to"`
	Bills      int64                  `json:"bills"`
	Revenue    float64                `json:"revenue"`
	Commission float64                `json:"commission"`
	Tax        float64                `json:"tax"`
	ByType     map[string]TypeSummary `json:"by_type"`
}

type TypeSummary struct {
	Bills   int64   `json:"bills"`
	Revenue float64 `json:"revenue"`
}

type summaryRow struct {
	Type       models.BillType
	Bills      int64
	Revenue    float64
	Commission float64
	Tax        float64
}

// Summary computes totals and the per-type breakdown for [from, to].
func (e *Engine) Summary(from, to time.Time) (*Summary, error) {
	var rows []summaryRow
	err := e.db.Model(&models.Bill{}).
		Select("type, COUNT(*) AS bills, COALESCE(SUM(total),0) AS revenue, COALESCE(SUM(commission),0) AS commission, COALESCE(SUM(tax),0) AS tax").
		Where("created_at >= ? AND created_at <= ?", from, to).
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return nil, errs.Store("billing summary", err)
	}
	out := &Summary{From: from, To: to, ByType: make(map[string]TypeSummary)}
	for _, r := range rows {
		out.Bills += r.Bills
		out.Revenue += r.Revenue
		out.Commission += r.Commission
		out.Tax += r.Tax
		out.ByType[string(r.Type)] = TypeSummary{Bills: r.Bills, Revenue: r.Revenue}
	}
	return out, nil
}

// EmployeeSummary aggregates one employee's bills for [from, to].
func (e *Engine) EmployeeSummary(employeeCID string, from, to time.Time) (*Summary, error) {
	var rows []summaryRow
	err := e.db.Model(&models.Bill{}).
		Select("type, COUNT(*) AS bills, COALESCE(SUM(total),0) AS revenue, COALESCE(SUM(commission),0) AS commission, COALESCE(SUM(tax),0) AS tax").
		Where("employee_cid = ? AND created_at >= ? AND created_at <= ?", employeeCID, from, to).
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return nil, errs.Store("employee summary", err)
	}
	out := &Summary{From: from, To: to, ByType: make(map[string]TypeSummary)}
	for _, r := range rows {
		out.Bills += r.Bills
		out.Revenue += r.Revenue
		out.Commission += r.Commission
		out.Tax += r.Tax
		out.ByType[string(r.Type)] = TypeSummary{Bills: r.Bills, Revenue: r.Revenue}
	}
	return out, nil
}

// HoodRevenue is one leaderboard row: revenue attributed to a hood through
// its employees' bills.
type HoodRevenue struct {
	Hood    string  `json:"hood"`
	Bills   int64   `json:"bills"`
	Revenue float64 `json:"revenue"`
}

// HoodLeaderboard ranks hoods by revenue over [from, to]. Employees without a
// team land under "unassigned".
func (e *Engine) HoodLeaderboard(from, to time.Time) ([]HoodRevenue, error) {
	var rows []HoodRevenue
	err := e.db.Model(&models.Bill{}).
		Select("employees.hood AS hood, COUNT(*) AS bills, COALESCE(SUM(bills.total),0) AS revenue").
		Joins("JOIN employees ON employees.cid = bills.employee_cid").
		Where("bills.created_at >= ? AND bills.created_at <= ?", from, to).
		Group("employees.hood").
		Order("revenue DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, errs.Store("hood leaderboard", err)
	}
	return rows, nil
}
