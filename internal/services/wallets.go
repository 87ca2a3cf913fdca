package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"carteira/internal/core"
)

// Wallets manages wallet metadata. Balances are out of its reach: they
// move only through the ledger's transaction deltas.
type Wallets struct {
	store    Store
	notifier Notifier
}

func NewWallets(store Store, notifier Notifier) *Wallets {
	return &Wallets{store: store, notifier: notifier}
}

// WalletInput creates a wallet with a zero balance. Seeding money into a
// new wallet is done with an income transaction, keeping the balance
// invariant replayable from history.
type WalletInput struct {
	OwnerID    string
	Name       string
	Type       core.WalletType
	Color      string
	Card       *core.CardFacet
	Investment *core.InvestmentFacet
}

// WalletPatch is a partial metadata update. There is intentionally no
// balance field.
type WalletPatch struct {
	Name       *string
	Type       *core.WalletType
	Color      *string
	Card       *core.CardFacet
	Investment *core.InvestmentFacet
}

func (s *Wallets) Create(ctx context.Context, in WalletInput) (core.Wallet, error) {
	w := core.Wallet{
		ID:         uuid.NewString(),
		OwnerID:    in.OwnerID,
		Name:       in.Name,
		Type:       in.Type,
		Color:      in.Color,
		Card:       in.Card,
		Investment: in.Investment,
		CreatedAt:  time.Now().UTC(),
	}
	if err := w.Validate(); err != nil {
		return core.Wallet{}, err
	}
	if err := s.store.CreateWallet(ctx, w); err != nil {
		return core.Wallet{}, err
	}
	s.notify(ctx, ChangeEvent{Entity: "wallet", Action: "created", ID: w.ID, OwnerID: w.OwnerID})
	return w, nil
}

func (s *Wallets) List(ctx context.Context, ownerID string) ([]core.Wallet, error) {
	return s.store.ListWallets(ctx, ownerID)
}

func (s *Wallets) GetByID(ctx context.Context, ownerID, id string) (core.Wallet, error) {
	return s.store.GetWallet(ctx, ownerID, id)
}

func (s *Wallets) Update(ctx context.Context, ownerID, id string, patch WalletPatch) (core.Wallet, error) {
	w, err := s.store.GetWallet(ctx, ownerID, id)
	if err != nil {
		return core.Wallet{}, err
	}
	if patch.Name != nil {
		w.Name = *patch.Name
	}
	if patch.Type != nil {
		w.Type = *patch.Type
	}
	if patch.Color != nil {
		w.Color = *patch.Color
	}
	if patch.Card != nil {
		w.Card = patch.Card
	}
	if patch.Investment != nil {
		w.Investment = patch.Investment
	}
	if err := w.Validate(); err != nil {
		return core.Wallet{}, err
	}
	if err := s.store.UpdateWallet(ctx, w); err != nil {
		return core.Wallet{}, err
	}
	s.notify(ctx, ChangeEvent{Entity: "wallet", Action: "updated", ID: id, OwnerID: ownerID})
	return w, nil
}

// Delete refuses wallets that still hold a positive balance; the store
// surfaces that as a conflict.
func (s *Wallets) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.store.DeleteWallet(ctx, ownerID, id); err != nil {
		return err
	}
	s.notify(ctx, ChangeEvent{Entity: "wallet", Action: "deleted", ID: id, OwnerID: ownerID})
	return nil
}

func (s *Wallets) notify(ctx context.Context, ev ChangeEvent) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, ev); err != nil {
		slog.WarnContext(ctx, "Failed to publish change event",
			"entity", ev.Entity, "action", ev.Action, "id", ev.ID, "error", err)
	}
}
