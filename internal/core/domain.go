package core

import (
	"strings"
	"time"
)

const (
	Income   TransactionType = "income"
	Expense  TransactionType = "expense"
	Transfer TransactionType = "transfer"
)

const (
	Pending   TransactionStatus = "pending"
	Completed TransactionStatus = "completed"
)

const (
	Daily   Interval = "daily"
	Weekly  Interval = "weekly"
	Monthly Interval = "monthly"
	Yearly  Interval = "yearly"
)

const (
	Checking   WalletType = "checking"
	Savings    WalletType = "savings"
	Investment WalletType = "investment"
	Cash       WalletType = "cash"
	Credit     WalletType = "credit"
)

const (
	BenchmarkCDI   Benchmark = "CDI"
	BenchmarkSELIC Benchmark = "SELIC"
	BenchmarkIPCA  Benchmark = "IPCA"
	BenchmarkFixed Benchmark = "FIXED"
)

type (
	TransactionType   string
	TransactionStatus string
	Interval          string
	WalletType        string
	Benchmark         string

	// Wallet holds a balance that only the ledger may mutate. The balance
	// is authoritative as the running sum of completed transactions that
	// reference the wallet.
	Wallet struct {
		ID         string
		OwnerID    string
		Name       string
		Type       WalletType
		Balance    Money
		Color      string
		Card       *CardFacet
		Investment *InvestmentFacet
		CreatedAt  time.Time
	}

	// CardFacet is present for credit wallets.
	CardFacet struct {
		Brand       string
		LastFour    string
		CreditLimit Money
	}

	// InvestmentFacet is present for interest-bearing wallets.
	InvestmentFacet struct {
		Benchmark    Benchmark
		YieldPercent float64
	}

	Transaction struct {
		ID                  string
		OwnerID             string
		Description         string
		Amount              Money // always positive
		Type                TransactionType
		Date                Date
		Status              TransactionStatus
		WalletID            string
		DestinationWalletID string // transfers only
		CategoryID          string // empty iff transfer
		PaymentMethod       string
		Recurring           bool
		RecurrenceInterval  Interval
		RecurrenceEnd       Date   // zero means open-ended
		RecurrenceOf        string // template id for materialized occurrences
		CreatedAt           time.Time
	}

	Category struct {
		ID      string
		OwnerID string
		Name    string
		Flow    TransactionType // income or expense
		Color   string
	}

	Goal struct {
		ID       string
		OwnerID  string
		Name     string
		Target   Money
		Current  Money
		Deadline Date
	}
)

// Validate checks the wallet's own fields, not its balance invariant.
func (w Wallet) Validate() error {
	if strings.TrimSpace(w.Name) == "" {
		return ValidationError{Field: "name", Reason: "cannot be empty"}
	}
	switch w.Type {
	case Checking, Savings, Investment, Cash, Credit:
	default:
		return ValidationError{Field: "type", Reason: "unknown wallet type"}
	}
	if w.Investment != nil {
		switch w.Investment.Benchmark {
		case BenchmarkCDI, BenchmarkSELIC, BenchmarkIPCA, BenchmarkFixed:
		default:
			return ValidationError{Field: "investment.benchmark", Reason: "unknown benchmark"}
		}
		if w.Investment.YieldPercent < 0 {
			return ValidationError{Field: "investment.yield_percent", Reason: "cannot be negative"}
		}
	}
	return nil
}

// Validate enforces the transaction invariants: positive amount, the
// category/destination rules per type, and the status rule that only an
// expense may be pending.
func (t Transaction) Validate() error {
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return ValidationError{Field: "description", Reason: "too long (max 200 characters)"}
	}
	if t.Amount.Cents <= 0 {
		return ErrInvalidAmount
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	switch t.Status {
	case Pending, Completed:
	default:
		return ValidationError{Field: "status", Reason: "unknown status"}
	}
	if t.WalletID == "" {
		return ValidationError{Field: "wallet_id", Reason: "cannot be empty"}
	}

	switch t.Type {
	case Transfer:
		if t.DestinationWalletID == "" {
			return ErrTransferDestination
		}
		if t.DestinationWalletID == t.WalletID {
			return ErrTransferToSelf
		}
		if t.CategoryID != "" {
			return ErrCategoryOnTransfer
		}
		if t.Status == Pending {
			return ErrPendingNotExpense
		}
	case Income:
		if t.DestinationWalletID != "" {
			return ErrDestinationNotTransfer
		}
		if t.CategoryID == "" {
			return ErrCategoryRequired
		}
		if t.Status == Pending {
			return ErrPendingNotExpense
		}
	case Expense:
		if t.DestinationWalletID != "" {
			return ErrDestinationNotTransfer
		}
		if t.CategoryID == "" {
			return ErrCategoryRequired
		}
	default:
		return ValidationError{Field: "type", Reason: "unknown transaction type"}
	}

	if t.Recurring {
		switch t.RecurrenceInterval {
		case Daily, Weekly, Monthly, Yearly:
		default:
			return ErrInvalidInterval
		}
		if !t.RecurrenceEnd.IsZero() && t.RecurrenceEnd.Before(t.Date.Time) {
			return ValidationError{Field: "recurrence_end", Reason: "ends before first occurrence"}
		}
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ValidationError{Field: "name", Reason: "cannot be empty"}
	}
	if c.Flow != Income && c.Flow != Expense {
		return ValidationError{Field: "flow", Reason: "must be income or expense"}
	}
	return nil
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ValidationError{Field: "name", Reason: "cannot be empty"}
	}
	if g.Target.Cents <= 0 {
		return ErrInvalidAmount
	}
	if g.Current.Cents < 0 {
		return ValidationError{Field: "current", Reason: "cannot be negative"}
	}
	return nil
}
