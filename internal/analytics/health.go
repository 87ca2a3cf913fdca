package analytics

import (
	"fmt"
	"math"

	"carteira/internal/core"
)

// Diagnosis tiers. The health score is a rule table over the ratio of
// liquid balance to trailing 30-day expense, kept deliberately simple so
// every tier is auditable.
const (
	DiagnosisExcellent = "Excelente"
	DiagnosisHealthy   = "Saudável"
	DiagnosisStable    = "Estável"
	DiagnosisAttention = "Atenção"
)

type HealthResult struct {
	Score           int      `json:"score"`
	Ratio           float64  `json:"ratio"`
	Diagnosis       string   `json:"diagnosis"`
	Insights        []string `json:"insights"`
	Recommendations []string `json:"recommendations"`
}

// HealthScore computes totalWalletBalance / trailing30DayCompletedExpense
// and maps it onto the diagnosis tiers. Zero expense in the window yields
// the maximal score regardless of balance.
func HealthScore(wallets []core.Wallet, txs []core.Transaction, ref core.Date, policy Policy) HealthResult {
	var balance int64
	for _, w := range wallets {
		balance += w.Balance.Cents
	}

	windowStart := ref.AddDays(-30)
	var expense int64
	for _, t := range txs {
		if t.Status != core.Completed || t.Type != core.Expense {
			continue
		}
		if t.Date.Before(windowStart.Time) || t.Date.After(ref.Time) {
			continue
		}
		expense += t.Amount.Cents
	}

	if expense == 0 {
		// No defined ratio without spend; zero keeps the result JSON-safe.
		return HealthResult{
			Score:     100,
			Ratio:     0,
			Diagnosis: DiagnosisExcellent,
			Insights: []string{
				"Nenhuma despesa concluída nos últimos 30 dias.",
			},
			Recommendations: []string{
				"Mantenha o registro das despesas em dia para um diagnóstico preciso.",
			},
		}
	}

	ratio := float64(balance) / float64(expense)
	rounded := math.Round(ratio*100) / 100

	switch {
	case ratio >= policy.HealthHighRatio:
		return HealthResult{
			Score:     85,
			Ratio:     rounded,
			Diagnosis: DiagnosisHealthy,
			Insights: []string{
				fmt.Sprintf("Seu saldo cobre %.1f meses de despesas recentes.", ratio),
			},
			Recommendations: []string{
				"Considere direcionar o excedente para investimentos ou metas de poupança.",
			},
		}
	case ratio >= policy.HealthMidRatio:
		return HealthResult{
			Score:     60,
			Ratio:     rounded,
			Diagnosis: DiagnosisStable,
			Insights: []string{
				"Seu saldo cobre as despesas do último mês, sem folga significativa.",
			},
			Recommendations: []string{
				"Construa uma reserva equivalente a pelo menos dois meses de despesas.",
			},
		}
	default:
		return HealthResult{
			Score:     30,
			Ratio:     rounded,
			Diagnosis: DiagnosisAttention,
			Insights: []string{
				"As despesas dos últimos 30 dias superam o saldo disponível.",
			},
			Recommendations: []string{
				"Revise as maiores despesas do mês e priorize os gastos essenciais.",
			},
		}
	}
}
