// Package services holds the core of the ledger: the transaction ledger,
// the recurrence scheduler, and the statement import reconciler. All state
// goes through the Store port; analytics stay in internal/analytics.
package services

import (
	"context"

	"carteira/internal/core"
)

// Store is the persistence port the services depend on. Balance-affecting
// writes take the wallet deltas alongside the record change and must apply
// both as one atomic unit: either everything is persisted or nothing is.
// Implementations must serialize conflicting writes per wallet and give
// readers a consistent snapshot.
type Store interface {
	// Transactions. Deltas ride in the same atomic unit as the record.
	CreateTransaction(ctx context.Context, t core.Transaction, deltas []core.BalanceDelta) error
	UpdateTransaction(ctx context.Context, t core.Transaction, deltas []core.BalanceDelta) error
	DeleteTransaction(ctx context.Context, ownerID, id string, deltas []core.BalanceDelta) error
	GetTransaction(ctx context.Context, ownerID, id string) (core.Transaction, error)
	ListTransactions(ctx context.Context, f core.TransactionFilter) ([]core.Transaction, error)
	// OccurrenceExists is the recurrence idempotency check: does an
	// occurrence of the template already exist at exactly this date?
	OccurrenceExists(ctx context.Context, ownerID, templateID string, date core.Date) (bool, error)

	// Wallets. Balances are only ever touched through the deltas above.
	CreateWallet(ctx context.Context, w core.Wallet) error
	GetWallet(ctx context.Context, ownerID, id string) (core.Wallet, error)
	ListWallets(ctx context.Context, ownerID string) ([]core.Wallet, error)
	UpdateWallet(ctx context.Context, w core.Wallet) error
	DeleteWallet(ctx context.Context, ownerID, id string) error

	// Categories. Delete conflicts while transactions reference one.
	CreateCategory(ctx context.Context, c core.Category) error
	GetCategory(ctx context.Context, ownerID, id string) (core.Category, error)
	ListCategories(ctx context.Context, ownerID string) ([]core.Category, error)
	DeleteCategory(ctx context.Context, ownerID, id string) error

	// Goals.
	CreateGoal(ctx context.Context, g core.Goal) error
	ListGoals(ctx context.Context, ownerID string) ([]core.Goal, error)
	UpdateGoal(ctx context.Context, g core.Goal) error
	DeleteGoal(ctx context.Context, ownerID, id string) error

	// Audit log, append-only.
	AppendAudit(ctx context.Context, ev core.AuditEvent) error
	ListAudit(ctx context.Context, ownerID string, limit int) ([]core.AuditEvent, error)

	// ListOwnerIDs feeds the recurrence worker sweep.
	ListOwnerIDs(ctx context.Context) ([]string, error)
}

// ChangeEvent tells presentation collaborators that an entity changed.
type ChangeEvent struct {
	Entity  string `json:"entity"`
	Action  string `json:"action"`
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`
}

// Notifier publishes change events after successful mutations. Publishing
// is best effort: the ledger never depends on it for correctness.
type Notifier interface {
	Publish(ctx context.Context, ev ChangeEvent) error
}
