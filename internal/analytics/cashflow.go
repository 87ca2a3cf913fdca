package analytics

import (
	"sort"

	"carteira/internal/core"
)

// CashFlowResult compares the reference month against the prior one.
type CashFlowResult struct {
	Income           core.Money `json:"income"`
	Expense          core.Money `json:"expense"`
	MonthlyBalance   core.Money `json:"monthly_balance"`
	PreviousIncome   core.Money `json:"previous_income"`
	PreviousExpense  core.Money `json:"previous_expense"`
	GrowthPercentage float64    `json:"growth_percentage"`
}

// monthTotals sums completed income and expense for one calendar month.
// Transfers move money between wallets without changing net worth, so
// they stay out of flow aggregates.
func monthTotals(txs []core.Transaction, year, month int) (income, expense int64) {
	for _, t := range txs {
		if t.Status != core.Completed {
			continue
		}
		if t.Date.Year() != year || t.Date.Month() != month {
			continue
		}
		switch t.Type {
		case core.Income:
			income += t.Amount.Cents
		case core.Expense:
			expense += t.Amount.Cents
		}
	}
	return income, expense
}

func previousMonth(year, month int) (int, int) {
	month--
	if month < 1 {
		month = 12
		year--
	}
	return year, month
}

// CashFlow sums income and expense for the reference month and the prior
// month. Growth is the percent change in expense versus the prior month,
// 0 when the prior-month base is zero.
func CashFlow(txs []core.Transaction, ref core.Date) CashFlowResult {
	income, expense := monthTotals(txs, ref.Year(), ref.Month())
	prevYear, prevMonth := previousMonth(ref.Year(), ref.Month())
	prevIncome, prevExpense := monthTotals(txs, prevYear, prevMonth)

	growth := 0.0
	if prevExpense != 0 {
		growth = (float64(expense) - float64(prevExpense)) / float64(prevExpense) * 100
	}

	return CashFlowResult{
		Income:           core.Money{Cents: income},
		Expense:          core.Money{Cents: expense},
		MonthlyBalance:   core.Money{Cents: income - expense},
		PreviousIncome:   core.Money{Cents: prevIncome},
		PreviousExpense:  core.Money{Cents: prevExpense},
		GrowthPercentage: growth,
	}
}

// CategoryTotal is one row of the top-expenses ranking.
type CategoryTotal struct {
	CategoryID string     `json:"category_id"`
	Total      core.Money `json:"total"`
}

// TopExpenses ranks categories by summed expense in the reference month,
// descending, ties broken by category id so the order is deterministic.
func TopExpenses(txs []core.Transaction, ref core.Date, limit int) []CategoryTotal {
	sums := make(map[string]int64)
	for _, t := range txs {
		if t.Status != core.Completed || t.Type != core.Expense {
			continue
		}
		if t.Date.Year() != ref.Year() || t.Date.Month() != ref.Month() {
			continue
		}
		sums[t.CategoryID] += t.Amount.Cents
	}

	out := make([]CategoryTotal, 0, len(sums))
	for id, total := range sums {
		out = append(out, CategoryTotal{CategoryID: id, Total: core.Money{Cents: total}})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total.Cents != out[j].Total.Cents {
			return out[i].Total.Cents > out[j].Total.Cents
		}
		return out[i].CategoryID < out[j].CategoryID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
