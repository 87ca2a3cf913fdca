package analytics

import (
	"carteira/internal/core"
)

// ProjectionResult extrapolates next month's balance from a short
// trailing window. It is explicitly a heuristic, not a guarantee.
type ProjectionResult struct {
	ProjectedBalance core.Money   `json:"projected_balance"`
	WindowMonths     int          `json:"window_months"`
	MonthlyBalances  []core.Money `json:"monthly_balances"`
}

// Projection averages the net balance of the trailing window of months
// ending at the reference month. Months with no activity still count as
// zero: silence is data here.
func Projection(txs []core.Transaction, ref core.Date, windowMonths int) ProjectionResult {
	if windowMonths <= 0 {
		windowMonths = 3
	}

	balances := make([]core.Money, 0, windowMonths)
	year, month := ref.Year(), ref.Month()
	var sum int64
	for i := 0; i < windowMonths; i++ {
		income, expense := monthTotals(txs, year, month)
		net := income - expense
		balances = append([]core.Money{{Cents: net}}, balances...)
		sum += net
		year, month = previousMonth(year, month)
	}

	return ProjectionResult{
		ProjectedBalance: core.Money{Cents: sum / int64(windowMonths)},
		WindowMonths:     windowMonths,
		MonthlyBalances:  balances,
	}
}

// GoalOutlook relates a savings goal to the projected monthly balance.
// MonthsToTarget is valid only when Reachable; a non-positive projection
// never reaches an open goal.
type GoalOutlook struct {
	GoalID         string     `json:"goal_id"`
	Name           string     `json:"name"`
	Remaining      core.Money `json:"remaining"`
	Reachable      bool       `json:"reachable"`
	MonthsToTarget int        `json:"months_to_target,omitempty"`
}

// GoalOutlooks estimates, per goal, how many whole months of the projected
// balance close the remaining gap. Goals already at target report zero
// months and remain reachable.
func GoalOutlooks(goals []core.Goal, projected core.Money) []GoalOutlook {
	outlooks := make([]GoalOutlook, 0, len(goals))
	for _, g := range goals {
		remaining := g.Target.Cents - g.Current.Cents
		if remaining < 0 {
			remaining = 0
		}
		o := GoalOutlook{
			GoalID:    g.ID,
			Name:      g.Name,
			Remaining: core.Money{Cents: remaining},
		}
		switch {
		case remaining == 0:
			o.Reachable = true
		case projected.Cents > 0:
			o.Reachable = true
			o.MonthsToTarget = int((remaining + projected.Cents - 1) / projected.Cents)
		}
		outlooks = append(outlooks, o)
	}
	return outlooks
}
