package analytics

import (
	"sort"

	"carteira/internal/core"
)

const (
	SeverityHigh   = "alto"
	SeverityMedium = "médio"
)

// Anomaly flags a category whose reference-month spend sits well above
// its historical mean.
type Anomaly struct {
	CategoryID string     `json:"category_id"`
	Current    core.Money `json:"current"`
	Mean       core.Money `json:"historical_mean"`
	Ratio      float64    `json:"ratio"`
	Severity   string     `json:"severity"`
}

// Anomalies compares each expense category's reference-month spend with
// its mean over prior months. Categories with no prior history are never
// flagged: one month is not a baseline.
func Anomalies(txs []core.Transaction, ref core.Date, policy Policy) []Anomaly {
	current := make(map[string]int64)
	priorTotals := make(map[string]int64)
	priorMonths := make(map[string]map[string]struct{})

	for _, t := range txs {
		if t.Status != core.Completed || t.Type != core.Expense {
			continue
		}
		if t.Date.Year() == ref.Year() && t.Date.Month() == ref.Month() {
			current[t.CategoryID] += t.Amount.Cents
			continue
		}
		if t.Date.After(ref.Time) {
			continue
		}
		priorTotals[t.CategoryID] += t.Amount.Cents
		monthKey := t.Date.Format("2006-01")
		if priorMonths[t.CategoryID] == nil {
			priorMonths[t.CategoryID] = make(map[string]struct{})
		}
		priorMonths[t.CategoryID][monthKey] = struct{}{}
	}

	var out []Anomaly
	for categoryID, spent := range current {
		months := len(priorMonths[categoryID])
		if months == 0 {
			continue // insufficient baseline
		}
		mean := float64(priorTotals[categoryID]) / float64(months)
		if mean <= 0 {
			continue
		}
		ratio := float64(spent) / mean
		if ratio < policy.AnomalyRatio {
			continue
		}
		severity := SeverityMedium
		if ratio >= policy.AnomalyHighRatio {
			severity = SeverityHigh
		}
		out = append(out, Anomaly{
			CategoryID: categoryID,
			Current:    core.Money{Cents: spent},
			Mean:       core.Money{Cents: int64(mean)},
			Ratio:      ratio,
			Severity:   severity,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Ratio != out[j].Ratio {
			return out[i].Ratio > out[j].Ratio
		}
		return out[i].CategoryID < out[j].CategoryID
	})
	return out
}
