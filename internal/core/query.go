package core

// BalanceDelta is the wallet-balance side of an atomic ledger write. The
// store applies every delta and the record change as one unit.
type BalanceDelta struct {
	WalletID string
	Cents    int64
}

// TransactionFilter narrows ListTransactions. Zero values mean "any".
type TransactionFilter struct {
	OwnerID       string
	WalletID      string
	From          Date
	To            Date
	Types         []TransactionType
	Status        TransactionStatus
	RecurringOnly bool   // templates only
	RecurrenceOf  string // occurrences of one template
	SortDesc      bool   // date descending; default ascending
}

// Matches reports whether a transaction passes the filter. Both store
// backends share it so listing semantics cannot drift.
func (f TransactionFilter) Matches(t Transaction) bool {
	if f.OwnerID != "" && t.OwnerID != f.OwnerID {
		return false
	}
	if f.WalletID != "" && t.WalletID != f.WalletID && t.DestinationWalletID != f.WalletID {
		return false
	}
	if !f.From.IsZero() && t.Date.Before(f.From.Time) {
		return false
	}
	if !f.To.IsZero() && t.Date.After(f.To.Time) {
		return false
	}
	if len(f.Types) > 0 {
		ok := false
		for _, ty := range f.Types {
			if t.Type == ty {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.RecurringOnly && !t.Recurring {
		return false
	}
	if f.RecurrenceOf != "" && t.RecurrenceOf != f.RecurrenceOf {
		return false
	}
	return true
}

// Less orders transactions by date, then creation time, then id. The id
// tie-break keeps the ordering deterministic for same-instant rows.
func Less(a, b Transaction) bool {
	if !a.Date.Equal(b.Date.Time) {
		return a.Date.Before(b.Date.Time)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}
