// Package analytics derives health, anomaly, projection and reporting
// figures from a transaction-history snapshot. Everything here is a pure
// function of its inputs: no persistence, no clocks.
package analytics

// Policy holds the tunable constants of the rule tables. The defaults
// mirror the product's historical values; they are policy, not derived
// quantities.
type Policy struct {
	// AnomalyRatio flags a category when the reference month's spend
	// exceeds the historical mean by this factor.
	AnomalyRatio float64
	// AnomalyHighRatio promotes the severity from "médio" to "alto".
	AnomalyHighRatio float64
	// HealthHighRatio and HealthMidRatio split the balance/expense ratio
	// into the Saudável / Estável / Atenção tiers.
	HealthHighRatio float64
	HealthMidRatio  float64
	// ProjectionWindow is how many trailing months feed the next-month
	// projection.
	ProjectionWindow int
	// TopExpensesLimit caps the ranking length.
	TopExpensesLimit int
}

func DefaultPolicy() Policy {
	return Policy{
		AnomalyRatio:     1.5,
		AnomalyHighRatio: 2.0,
		HealthHighRatio:  2.0,
		HealthMidRatio:   1.0,
		ProjectionWindow: 3,
		TopExpensesLimit: 5,
	}
}
