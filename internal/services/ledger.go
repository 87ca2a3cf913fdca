package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"carteira/internal/core"
)

// Ledger is the sole path through which transactions are created, edited,
// removed or settled. It keeps wallet balances consistent with transaction
// state and emits audit events for every mutation.
type Ledger struct {
	store    Store
	notifier Notifier
}

func NewLedger(store Store, notifier Notifier) *Ledger {
	return &Ledger{store: store, notifier: notifier}
}

// TransactionInput is what callers provide to Create. The ledger assigns
// id and creation timestamp.
type TransactionInput struct {
	OwnerID             string
	Description         string
	Amount              core.Money
	Type                core.TransactionType
	Date                core.Date
	Status              core.TransactionStatus // defaults to completed
	WalletID            string
	DestinationWalletID string
	CategoryID          string
	PaymentMethod       string
	Recurring           bool
	RecurrenceInterval  core.Interval
	RecurrenceEnd       core.Date
	RecurrenceOf        string
}

// TransactionPatch is a partial update; nil fields stay untouched.
type TransactionPatch struct {
	Description         *string
	Amount              *core.Money
	Type                *core.TransactionType
	Date                *core.Date
	Status              *core.TransactionStatus
	WalletID            *string
	DestinationWalletID *string
	CategoryID          *string
	PaymentMethod       *string
	Recurring           *bool
	RecurrenceInterval  *core.Interval
	RecurrenceEnd       *core.Date
}

// balanceEffect returns the wallet deltas a transaction contributes while
// it is completed. A pending expense contributes nothing.
func balanceEffect(t core.Transaction) []core.BalanceDelta {
	if t.Status != core.Completed {
		return nil
	}
	switch t.Type {
	case core.Income:
		return []core.BalanceDelta{{WalletID: t.WalletID, Cents: t.Amount.Cents}}
	case core.Expense:
		return []core.BalanceDelta{{WalletID: t.WalletID, Cents: -t.Amount.Cents}}
	case core.Transfer:
		return []core.BalanceDelta{
			{WalletID: t.WalletID, Cents: -t.Amount.Cents},
			{WalletID: t.DestinationWalletID, Cents: t.Amount.Cents},
		}
	}
	return nil
}

func negate(deltas []core.BalanceDelta) []core.BalanceDelta {
	out := make([]core.BalanceDelta, len(deltas))
	for i, d := range deltas {
		out[i] = core.BalanceDelta{WalletID: d.WalletID, Cents: -d.Cents}
	}
	return out
}

// combine sums deltas per wallet and drops the zeros, so an update that
// does not move money ends up touching no balance at all.
func combine(sets ...[]core.BalanceDelta) []core.BalanceDelta {
	sums := make(map[string]int64)
	var order []string
	for _, set := range sets {
		for _, d := range set {
			if _, seen := sums[d.WalletID]; !seen {
				order = append(order, d.WalletID)
			}
			sums[d.WalletID] += d.Cents
		}
	}
	var out []core.BalanceDelta
	for _, id := range order {
		if sums[id] != 0 {
			out = append(out, core.BalanceDelta{WalletID: id, Cents: sums[id]})
		}
	}
	return out
}

// checkReferences rejects transactions pointing at wallets or categories
// that do not exist, before any persistence attempt.
func (l *Ledger) checkReferences(ctx context.Context, t core.Transaction) error {
	if _, err := l.store.GetWallet(ctx, t.OwnerID, t.WalletID); err != nil {
		return err
	}
	if t.DestinationWalletID != "" {
		if _, err := l.store.GetWallet(ctx, t.OwnerID, t.DestinationWalletID); err != nil {
			return err
		}
	}
	if t.CategoryID != "" {
		cat, err := l.store.GetCategory(ctx, t.OwnerID, t.CategoryID)
		if err != nil {
			return err
		}
		if cat.Flow != t.Type {
			return core.ValidationError{Field: "category_id",
				Reason: fmt.Sprintf("%s category on a %s transaction", cat.Flow, t.Type)}
		}
	}
	return nil
}

// Create validates the input, persists the transaction together with its
// balance effect as one atomic unit, and emits TX_CREATED.
func (l *Ledger) Create(ctx context.Context, in TransactionInput) (core.Transaction, error) {
	t := core.Transaction{
		ID:                  uuid.NewString(),
		OwnerID:             in.OwnerID,
		Description:         in.Description,
		Amount:              in.Amount,
		Type:                in.Type,
		Date:                in.Date,
		Status:              in.Status,
		WalletID:            in.WalletID,
		DestinationWalletID: in.DestinationWalletID,
		CategoryID:          in.CategoryID,
		PaymentMethod:       in.PaymentMethod,
		Recurring:           in.Recurring,
		RecurrenceInterval:  in.RecurrenceInterval,
		RecurrenceEnd:       in.RecurrenceEnd,
		RecurrenceOf:        in.RecurrenceOf,
		CreatedAt:           time.Now().UTC(),
	}
	if t.Status == "" {
		t.Status = core.Completed
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := l.checkReferences(ctx, t); err != nil {
		return core.Transaction{}, err
	}

	if err := l.store.CreateTransaction(ctx, t, balanceEffect(t)); err != nil {
		return core.Transaction{}, err
	}

	l.emitAudit(ctx, t.OwnerID, core.AuditTxCreated, core.SeverityInfo, map[string]string{
		"transaction_id": t.ID,
		"type":           string(t.Type),
		"amount_cents":   fmt.Sprintf("%d", t.Amount.Cents),
		"wallet_id":      t.WalletID,
	})
	l.notify(ctx, ChangeEvent{Entity: "transaction", Action: "created", ID: t.ID, OwnerID: t.OwnerID})
	return t, nil
}

// Update is the only mutation path after creation. The balance delta is
// recomputed as the inverse of the original effect plus the new effect,
// applied atomically, so editing an amount lands on the same balance a
// delete-then-recreate would have produced.
func (l *Ledger) Update(ctx context.Context, ownerID, id string, patch TransactionPatch) (core.Transaction, error) {
	old, err := l.store.GetTransaction(ctx, ownerID, id)
	if err != nil {
		return core.Transaction{}, err
	}

	updated := old
	if patch.Description != nil {
		updated.Description = *patch.Description
	}
	if patch.Amount != nil {
		updated.Amount = *patch.Amount
	}
	if patch.Type != nil {
		updated.Type = *patch.Type
	}
	if patch.Date != nil {
		updated.Date = *patch.Date
	}
	if patch.Status != nil {
		updated.Status = *patch.Status
	}
	if patch.WalletID != nil {
		updated.WalletID = *patch.WalletID
	}
	if patch.DestinationWalletID != nil {
		updated.DestinationWalletID = *patch.DestinationWalletID
	}
	if patch.CategoryID != nil {
		updated.CategoryID = *patch.CategoryID
	}
	if patch.PaymentMethod != nil {
		updated.PaymentMethod = *patch.PaymentMethod
	}
	if patch.Recurring != nil {
		updated.Recurring = *patch.Recurring
	}
	if patch.RecurrenceInterval != nil {
		updated.RecurrenceInterval = *patch.RecurrenceInterval
	}
	if patch.RecurrenceEnd != nil {
		updated.RecurrenceEnd = *patch.RecurrenceEnd
	}

	// Settle is the only transition out of pending.
	if old.Status == core.Pending && updated.Status == core.Completed {
		return core.Transaction{}, core.ErrUpdateCannotSettle
	}

	if err := updated.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := l.checkReferences(ctx, updated); err != nil {
		return core.Transaction{}, err
	}

	deltas := combine(negate(balanceEffect(old)), balanceEffect(updated))
	if err := l.store.UpdateTransaction(ctx, updated, deltas); err != nil {
		return core.Transaction{}, err
	}

	l.notify(ctx, ChangeEvent{Entity: "transaction", Action: "updated", ID: id, OwnerID: ownerID})
	return updated, nil
}

// Delete atomically reverses whatever balance effect the transaction had
// and removes the record, then emits TX_DELETED.
func (l *Ledger) Delete(ctx context.Context, ownerID, id string) error {
	old, err := l.store.GetTransaction(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if err := l.store.DeleteTransaction(ctx, ownerID, id, negate(balanceEffect(old))); err != nil {
		return err
	}

	l.emitAudit(ctx, ownerID, core.AuditTxDeleted, core.SeverityInfo, map[string]string{
		"transaction_id": id,
		"type":           string(old.Type),
		"amount_cents":   fmt.Sprintf("%d", old.Amount.Cents),
	})
	l.notify(ctx, ChangeEvent{Entity: "transaction", Action: "deleted", ID: id, OwnerID: ownerID})
	return nil
}

// Settle marks a pending transaction completed and applies its balance
// effect atomically. It is the only transition out of pending.
func (l *Ledger) Settle(ctx context.Context, ownerID, id string) (core.Transaction, error) {
	old, err := l.store.GetTransaction(ctx, ownerID, id)
	if err != nil {
		return core.Transaction{}, err
	}
	if old.Status != core.Pending {
		return core.Transaction{}, core.ErrSettleNotPending
	}

	settled := old
	settled.Status = core.Completed
	if err := l.store.UpdateTransaction(ctx, settled, balanceEffect(settled)); err != nil {
		return core.Transaction{}, err
	}

	l.notify(ctx, ChangeEvent{Entity: "transaction", Action: "settled", ID: id, OwnerID: ownerID})
	return settled, nil
}

// List is read-only and has no balance side effects.
func (l *Ledger) List(ctx context.Context, f core.TransactionFilter) ([]core.Transaction, error) {
	return l.store.ListTransactions(ctx, f)
}

func (l *Ledger) GetByID(ctx context.Context, ownerID, id string) (core.Transaction, error) {
	return l.store.GetTransaction(ctx, ownerID, id)
}

// VerifyConsistency replays the completed history of every wallet and
// compares it against the stored balance. Mismatches are reported through
// BALANCE_INCONSISTENCY audit events for manual reconciliation; the ledger
// never corrects a balance on its own.
func (l *Ledger) VerifyConsistency(ctx context.Context, ownerID string) ([]core.ConsistencyError, error) {
	wallets, err := l.store.ListWallets(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	txs, err := l.store.ListTransactions(ctx, core.TransactionFilter{
		OwnerID: ownerID,
		Status:  core.Completed,
	})
	if err != nil {
		return nil, err
	}

	replayed := make(map[string]int64)
	for _, t := range txs {
		for _, d := range balanceEffect(t) {
			replayed[d.WalletID] += d.Cents
		}
	}

	var mismatches []core.ConsistencyError
	for _, w := range wallets {
		if w.Balance.Cents == replayed[w.ID] {
			continue
		}
		ce := core.ConsistencyError{
			WalletID: w.ID,
			Stored:   w.Balance,
			Computed: core.Money{Cents: replayed[w.ID]},
		}
		mismatches = append(mismatches, ce)
		slog.ErrorContext(ctx, "Wallet balance inconsistent with history",
			"wallet_id", w.ID,
			"stored_cents", w.Balance.Cents,
			"replayed_cents", replayed[w.ID])
		l.emitAudit(ctx, ownerID, core.AuditBalanceInconsistency, core.SeverityCritical, map[string]string{
			"wallet_id":      w.ID,
			"stored_cents":   fmt.Sprintf("%d", w.Balance.Cents),
			"replayed_cents": fmt.Sprintf("%d", replayed[w.ID]),
		})
	}
	return mismatches, nil
}

// emitAudit appends to the audit log. A failed append is logged but never
// fails the mutation it describes.
func (l *Ledger) emitAudit(ctx context.Context, ownerID string, typ core.AuditEventType, sev core.AuditSeverity, meta map[string]string) {
	ev := core.AuditEvent{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Type:      typ,
		Severity:  sev,
		Metadata:  meta,
		CreatedAt: time.Now().UTC(),
	}
	if err := l.store.AppendAudit(ctx, ev); err != nil {
		slog.ErrorContext(ctx, "Failed to append audit event",
			"type", typ, "owner_id", ownerID, "error", err)
	}
}

// notify publishes a change event. Presentation refreshes off these; the
// ledger does not depend on delivery.
func (l *Ledger) notify(ctx context.Context, ev ChangeEvent) {
	if l.notifier == nil {
		return
	}
	if err := l.notifier.Publish(ctx, ev); err != nil {
		slog.WarnContext(ctx, "Failed to publish change event",
			"entity", ev.Entity, "action", ev.Action, "id", ev.ID, "error", err)
	}
}
