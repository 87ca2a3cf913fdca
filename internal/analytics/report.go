package analytics

import (
	"fmt"

	"carteira/internal/core"
)

// MonthlyReport is a categorized narrative built from the same aggregates
// as the other analytics: deterministic given the same inputs.
type MonthlyReport struct {
	Positives       []string `json:"positives"`
	Attention       []string `json:"attention"`
	Recommendations []string `json:"recommendations"`
	Trends          []string `json:"trends"`
}

// Report runs the rule engine over the reference month.
func Report(wallets []core.Wallet, txs []core.Transaction, ref core.Date, policy Policy) MonthlyReport {
	var rep MonthlyReport

	flow := CashFlow(txs, ref)
	anomalies := Anomalies(txs, ref, policy)
	health := HealthScore(wallets, txs, ref, policy)
	projection := Projection(txs, ref, policy.ProjectionWindow)
	top := TopExpenses(txs, ref, policy.TopExpensesLimit)

	if flow.MonthlyBalance.Cents > 0 {
		rep.Positives = append(rep.Positives,
			fmt.Sprintf("O mês fechou positivo em R$ %s.", flow.MonthlyBalance))
	} else if flow.MonthlyBalance.Cents < 0 {
		rep.Attention = append(rep.Attention,
			fmt.Sprintf("As despesas superaram a renda em R$ %s.", flow.MonthlyBalance.Neg()))
	}

	if flow.PreviousExpense.Cents > 0 {
		switch {
		case flow.GrowthPercentage <= -5:
			rep.Positives = append(rep.Positives,
				fmt.Sprintf("Despesas caíram %.1f%% em relação ao mês anterior.", -flow.GrowthPercentage))
			rep.Trends = append(rep.Trends, "Tendência de queda nas despesas.")
		case flow.GrowthPercentage >= 5:
			rep.Attention = append(rep.Attention,
				fmt.Sprintf("Despesas cresceram %.1f%% em relação ao mês anterior.", flow.GrowthPercentage))
			rep.Trends = append(rep.Trends, "Tendência de alta nas despesas.")
		default:
			rep.Trends = append(rep.Trends, "Despesas estáveis em relação ao mês anterior.")
		}
	}

	for _, a := range anomalies {
		rep.Attention = append(rep.Attention,
			fmt.Sprintf("Gasto atípico na categoria %s: %.1fx a média histórica (%s).",
				a.CategoryID, a.Ratio, a.Severity))
	}
	if len(anomalies) == 0 && flow.Expense.Cents > 0 {
		rep.Positives = append(rep.Positives, "Nenhum gasto atípico detectado neste mês.")
	}

	if len(top) > 0 {
		rep.Trends = append(rep.Trends,
			fmt.Sprintf("Maior categoria de despesa do mês: %s (R$ %s).", top[0].CategoryID, top[0].Total))
	}

	rep.Recommendations = append(rep.Recommendations, health.Recommendations...)
	if projection.ProjectedBalance.Cents < 0 {
		rep.Recommendations = append(rep.Recommendations,
			"A projeção para o próximo mês é negativa; planeje cortes antecipadamente.")
	}

	return rep
}
