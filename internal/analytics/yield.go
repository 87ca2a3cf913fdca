package analytics

import (
	"math"

	"github.com/shopspring/decimal"

	"carteira/internal/core"
)

// Reference annual rates per benchmark, in percent. These are display
// assumptions for the estimate, not market data feeds.
var benchmarkAnnualPercent = map[core.Benchmark]decimal.Decimal{
	core.BenchmarkCDI:   decimal.NewFromFloat(10.65),
	core.BenchmarkSELIC: decimal.NewFromFloat(10.75),
	core.BenchmarkIPCA:  decimal.NewFromFloat(4.50),
}

// YieldEstimate is the estimated return of an interest-bearing wallet.
// Daily is the monthly figure divided by 30, a display approximation
// rather than a day-count convention.
type YieldEstimate struct {
	AnnualRate  float64    `json:"annual_rate"`
	MonthlyRate float64    `json:"monthly_rate"`
	Monthly     core.Money `json:"monthly"`
	Daily       core.Money `json:"daily"`
}

// EstimateYield computes the estimated periodic return of a wallet. For
// benchmark-linked wallets the yield percentage scales the benchmark's
// annual rate (110% of CDI and so on); FIXED uses the percentage as the
// annual rate directly. Deterministic for identical inputs.
func EstimateYield(w core.Wallet) (YieldEstimate, error) {
	if w.Investment == nil {
		return YieldEstimate{}, core.ValidationError{Field: "investment", Reason: "wallet has no investment facet"}
	}

	pct := decimal.NewFromFloat(w.Investment.YieldPercent)
	var annual decimal.Decimal
	switch w.Investment.Benchmark {
	case core.BenchmarkFixed:
		annual = pct.Div(decimal.NewFromInt(100))
	case core.BenchmarkCDI, core.BenchmarkSELIC, core.BenchmarkIPCA:
		base := benchmarkAnnualPercent[w.Investment.Benchmark]
		annual = base.Mul(pct).Div(decimal.NewFromInt(10000))
	default:
		return YieldEstimate{}, core.ValidationError{Field: "investment.benchmark", Reason: "unknown benchmark"}
	}

	annualF, _ := annual.Float64()
	// Compound conversion from annual to monthly rate.
	monthlyRate := math.Pow(1+annualF, 1.0/12.0) - 1

	monthly := decimal.NewFromInt(w.Balance.Cents).
		Mul(decimal.NewFromFloat(monthlyRate)).
		Round(0).IntPart()
	daily := decimal.NewFromInt(monthly).
		Div(decimal.NewFromInt(30)).
		Round(0).IntPart()

	return YieldEstimate{
		AnnualRate:  annualF,
		MonthlyRate: monthlyRate,
		Monthly:     core.Money{Cents: monthly},
		Daily:       core.Money{Cents: daily},
	}, nil
}
