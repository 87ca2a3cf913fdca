package http

import (
	"carteira/internal/core"
	"carteira/internal/services"
)

// Wire representations. Dates travel as YYYY-MM-DD strings, money as
// integer cents.

type walletView struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Type       string          `json:"type"`
	Balance    int64           `json:"balance_cents"`
	Color      string          `json:"color,omitempty"`
	Card       *cardFacetView  `json:"card,omitempty"`
	Investment *investmentView `json:"investment,omitempty"`
	CreatedAt  string          `json:"created_at"`
}

type cardFacetView struct {
	Brand       string `json:"brand"`
	LastFour    string `json:"last_four"`
	CreditLimit int64  `json:"credit_limit_cents"`
}

type investmentView struct {
	Benchmark    string  `json:"benchmark"`
	YieldPercent float64 `json:"yield_percent"`
}

type transactionView struct {
	ID                  string `json:"id"`
	Description         string `json:"description"`
	Amount              int64  `json:"amount_cents"`
	Type                string `json:"type"`
	Date                string `json:"date"`
	Status              string `json:"status"`
	WalletID            string `json:"wallet_id"`
	DestinationWalletID string `json:"destination_wallet_id,omitempty"`
	CategoryID          string `json:"category_id,omitempty"`
	PaymentMethod       string `json:"payment_method,omitempty"`
	Recurring           bool   `json:"recurring"`
	RecurrenceInterval  string `json:"recurrence_interval,omitempty"`
	RecurrenceEnd       string `json:"recurrence_end,omitempty"`
	RecurrenceOf        string `json:"recurrence_of,omitempty"`
	CreatedAt           string `json:"created_at"`
}

type categoryView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Flow  string `json:"flow"`
	Color string `json:"color,omitempty"`
}

type goalView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Target   int64  `json:"target_cents"`
	Current  int64  `json:"current_cents"`
	Deadline string `json:"deadline,omitempty"`
}

func toWalletView(w core.Wallet) walletView {
	v := walletView{
		ID:        w.ID,
		Name:      w.Name,
		Type:      string(w.Type),
		Balance:   w.Balance.Cents,
		Color:     w.Color,
		CreatedAt: w.CreatedAt.UTC().Format(timeLayout),
	}
	if w.Card != nil {
		v.Card = &cardFacetView{
			Brand:       w.Card.Brand,
			LastFour:    w.Card.LastFour,
			CreditLimit: w.Card.CreditLimit.Cents,
		}
	}
	if w.Investment != nil {
		v.Investment = &investmentView{
			Benchmark:    string(w.Investment.Benchmark),
			YieldPercent: w.Investment.YieldPercent,
		}
	}
	return v
}

func toWalletViews(ws []core.Wallet) []walletView {
	views := make([]walletView, 0, len(ws))
	for _, w := range ws {
		views = append(views, toWalletView(w))
	}
	return views
}

func toTransactionView(t core.Transaction) transactionView {
	v := transactionView{
		ID:                  t.ID,
		Description:         t.Description,
		Amount:              t.Amount.Cents,
		Type:                string(t.Type),
		Date:                t.Date.String(),
		Status:              string(t.Status),
		WalletID:            t.WalletID,
		DestinationWalletID: t.DestinationWalletID,
		CategoryID:          t.CategoryID,
		PaymentMethod:       t.PaymentMethod,
		Recurring:           t.Recurring,
		RecurrenceInterval:  string(t.RecurrenceInterval),
		RecurrenceOf:        t.RecurrenceOf,
		CreatedAt:           t.CreatedAt.UTC().Format(timeLayout),
	}
	if !t.RecurrenceEnd.IsZero() {
		v.RecurrenceEnd = t.RecurrenceEnd.String()
	}
	return v
}

func toTransactionViews(ts []core.Transaction) []transactionView {
	views := make([]transactionView, 0, len(ts))
	for _, t := range ts {
		views = append(views, toTransactionView(t))
	}
	return views
}

func toCategoryView(c core.Category) categoryView {
	return categoryView{ID: c.ID, Name: c.Name, Flow: string(c.Flow), Color: c.Color}
}

func toGoalView(g core.Goal) goalView {
	v := goalView{
		ID:      g.ID,
		Name:    g.Name,
		Target:  g.Target.Cents,
		Current: g.Current.Cents,
	}
	if !g.Deadline.IsZero() {
		v.Deadline = g.Deadline.String()
	}
	return v
}

// Request payloads.

type transactionRequest struct {
	Description         string `json:"description"`
	Amount              int64  `json:"amount_cents"`
	Type                string `json:"type"`
	Date                string `json:"date"`
	Status              string `json:"status"`
	WalletID            string `json:"wallet_id"`
	DestinationWalletID string `json:"destination_wallet_id"`
	CategoryID          string `json:"category_id"`
	PaymentMethod       string `json:"payment_method"`
	Recurring           bool   `json:"recurring"`
	RecurrenceInterval  string `json:"recurrence_interval"`
	RecurrenceEnd       string `json:"recurrence_end"`
}

func (r transactionRequest) toInput(ownerID string) (services.TransactionInput, error) {
	date, err := core.ParseDate(r.Date)
	if err != nil {
		return services.TransactionInput{}, core.ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"}
	}
	in := services.TransactionInput{
		OwnerID:             ownerID,
		Description:         r.Description,
		Amount:              core.Money{Cents: r.Amount},
		Type:                core.TransactionType(r.Type),
		Date:                date,
		Status:              core.TransactionStatus(r.Status),
		WalletID:            r.WalletID,
		DestinationWalletID: r.DestinationWalletID,
		CategoryID:          r.CategoryID,
		PaymentMethod:       r.PaymentMethod,
		Recurring:           r.Recurring,
		RecurrenceInterval:  core.Interval(r.RecurrenceInterval),
	}
	if r.RecurrenceEnd != "" {
		end, err := core.ParseDate(r.RecurrenceEnd)
		if err != nil {
			return services.TransactionInput{}, core.ValidationError{Field: "recurrence_end", Reason: "must be YYYY-MM-DD"}
		}
		in.RecurrenceEnd = end
	}
	return in, nil
}

type transactionPatchRequest struct {
	Description         *string `json:"description"`
	Amount              *int64  `json:"amount_cents"`
	Type                *string `json:"type"`
	Date                *string `json:"date"`
	Status              *string `json:"status"`
	WalletID            *string `json:"wallet_id"`
	DestinationWalletID *string `json:"destination_wallet_id"`
	CategoryID          *string `json:"category_id"`
	PaymentMethod       *string `json:"payment_method"`
	Recurring           *bool   `json:"recurring"`
	RecurrenceInterval  *string `json:"recurrence_interval"`
	RecurrenceEnd       *string `json:"recurrence_end"`
}

func (r transactionPatchRequest) toPatch() (services.TransactionPatch, error) {
	var p services.TransactionPatch
	p.Description = r.Description
	if r.Amount != nil {
		p.Amount = &core.Money{Cents: *r.Amount}
	}
	if r.Type != nil {
		t := core.TransactionType(*r.Type)
		p.Type = &t
	}
	if r.Date != nil {
		d, err := core.ParseDate(*r.Date)
		if err != nil {
			return p, core.ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"}
		}
		p.Date = &d
	}
	if r.Status != nil {
		s := core.TransactionStatus(*r.Status)
		p.Status = &s
	}
	p.WalletID = r.WalletID
	p.DestinationWalletID = r.DestinationWalletID
	p.CategoryID = r.CategoryID
	p.PaymentMethod = r.PaymentMethod
	p.Recurring = r.Recurring
	if r.RecurrenceInterval != nil {
		iv := core.Interval(*r.RecurrenceInterval)
		p.RecurrenceInterval = &iv
	}
	if r.RecurrenceEnd != nil {
		d, err := core.ParseDate(*r.RecurrenceEnd)
		if err != nil {
			return p, core.ValidationError{Field: "recurrence_end", Reason: "must be YYYY-MM-DD"}
		}
		p.RecurrenceEnd = &d
	}
	return p, nil
}

type walletRequest struct {
	Name       string          `json:"name"`
	Type       string          `json:"type"`
	Color      string          `json:"color"`
	Card       *cardFacetView  `json:"card"`
	Investment *investmentView `json:"investment"`
}

func (r walletRequest) toInput(ownerID string) services.WalletInput {
	in := services.WalletInput{
		OwnerID: ownerID,
		Name:    r.Name,
		Type:    core.WalletType(r.Type),
		Color:   r.Color,
	}
	if r.Card != nil {
		in.Card = &core.CardFacet{
			Brand:       r.Card.Brand,
			LastFour:    r.Card.LastFour,
			CreditLimit: core.Money{Cents: r.Card.CreditLimit},
		}
	}
	if r.Investment != nil {
		in.Investment = &core.InvestmentFacet{
			Benchmark:    core.Benchmark(r.Investment.Benchmark),
			YieldPercent: r.Investment.YieldPercent,
		}
	}
	return in
}

type walletPatchRequest struct {
	Name       *string         `json:"name"`
	Type       *string         `json:"type"`
	Color      *string         `json:"color"`
	Balance    *int64          `json:"balance_cents"`
	Card       *cardFacetView  `json:"card"`
	Investment *investmentView `json:"investment"`
}

func (r walletPatchRequest) toPatch() (services.WalletPatch, error) {
	// Balances are derived from the transaction history and cannot be
	// assigned directly.
	if r.Balance != nil {
		return services.WalletPatch{}, core.ErrBalanceForbidden
	}
	var p services.WalletPatch
	p.Name = r.Name
	if r.Type != nil {
		t := core.WalletType(*r.Type)
		p.Type = &t
	}
	p.Color = r.Color
	if r.Card != nil {
		p.Card = &core.CardFacet{
			Brand:       r.Card.Brand,
			LastFour:    r.Card.LastFour,
			CreditLimit: core.Money{Cents: r.Card.CreditLimit},
		}
	}
	if r.Investment != nil {
		p.Investment = &core.InvestmentFacet{
			Benchmark:    core.Benchmark(r.Investment.Benchmark),
			YieldPercent: r.Investment.YieldPercent,
		}
	}
	return p, nil
}

type categoryRequest struct {
	Name  string `json:"name"`
	Flow  string `json:"flow"`
	Color string `json:"color"`
}

type goalRequest struct {
	Name     string `json:"name"`
	Target   int64  `json:"target_cents"`
	Current  int64  `json:"current_cents"`
	Deadline string `json:"deadline"`
}
