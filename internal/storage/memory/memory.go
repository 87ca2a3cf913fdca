// Package memory is an in-memory Store backend. It backs the default
// DATA_BACKEND=memory mode and the service tests. A single RWMutex makes
// every write an atomic unit and gives readers a consistent snapshot.
package memory

import (
	"context"
	"sort"
	"sync"

	"carteira/internal/core"
)

type Store struct {
	mu           sync.RWMutex
	wallets      map[string]core.Wallet
	transactions map[string]core.Transaction
	categories   map[string]core.Category
	goals        map[string]core.Goal
	audit        []core.AuditEvent

	// failNext, when set, makes the next balance-affecting write fail
	// before mutating anything. Test hook for the no-partial-effect
	// guarantee.
	failNext error
}

func New() *Store {
	return &Store{
		wallets:      make(map[string]core.Wallet),
		transactions: make(map[string]core.Transaction),
		categories:   make(map[string]core.Category),
		goals:        make(map[string]core.Goal),
	}
}

// FailNextWrite arms a one-shot write failure.
func (s *Store) FailNextWrite(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = err
}

func (s *Store) takeFailure() error {
	if s.failNext != nil {
		err := s.failNext
		s.failNext = nil
		return core.TransientError{Op: "memory write", Err: err}
	}
	return nil
}

// applyDeltas adjusts wallet balances. It verifies every wallet exists
// before touching any so a failure leaves no partial effect.
func (s *Store) applyDeltas(deltas []core.BalanceDelta) error {
	for _, d := range deltas {
		if _, ok := s.wallets[d.WalletID]; !ok {
			return core.NotFoundError{Entity: "wallet", ID: d.WalletID}
		}
	}
	for _, d := range deltas {
		w := s.wallets[d.WalletID]
		w.Balance = core.Money{Cents: w.Balance.Cents + d.Cents}
		s.wallets[d.WalletID] = w
	}
	return nil
}

func (s *Store) CreateTransaction(_ context.Context, t core.Transaction, deltas []core.BalanceDelta) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}
	if _, ok := s.transactions[t.ID]; ok {
		return core.ConflictError{Reason: "transaction id already exists"}
	}
	// Same guard the sqlite backend enforces with a partial unique index.
	if t.RecurrenceOf != "" {
		for _, other := range s.transactions {
			if other.OwnerID == t.OwnerID && other.RecurrenceOf == t.RecurrenceOf && other.Date.Equal(t.Date.Time) {
				return core.ConflictError{Reason: "occurrence already materialized for this date"}
			}
		}
	}
	if err := s.applyDeltas(deltas); err != nil {
		return err
	}
	s.transactions[t.ID] = t
	return nil
}

func (s *Store) UpdateTransaction(_ context.Context, t core.Transaction, deltas []core.BalanceDelta) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}
	old, ok := s.transactions[t.ID]
	if !ok || old.OwnerID != t.OwnerID {
		return core.NotFoundError{Entity: "transaction", ID: t.ID}
	}
	// Same guard as on create: an occurrence cannot move onto a date a
	// sibling already occupies.
	if t.RecurrenceOf != "" {
		for _, other := range s.transactions {
			if other.ID != t.ID && other.OwnerID == t.OwnerID &&
				other.RecurrenceOf == t.RecurrenceOf && other.Date.Equal(t.Date.Time) {
				return core.ConflictError{Reason: "occurrence already materialized for this date"}
			}
		}
	}
	if err := s.applyDeltas(deltas); err != nil {
		return err
	}
	s.transactions[t.ID] = t
	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, ownerID, id string, deltas []core.BalanceDelta) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}
	old, ok := s.transactions[id]
	if !ok || old.OwnerID != ownerID {
		return core.NotFoundError{Entity: "transaction", ID: id}
	}
	if err := s.applyDeltas(deltas); err != nil {
		return err
	}
	delete(s.transactions, id)
	return nil
}

func (s *Store) GetTransaction(_ context.Context, ownerID, id string) (core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.transactions[id]
	if !ok || t.OwnerID != ownerID {
		return core.Transaction{}, core.NotFoundError{Entity: "transaction", ID: id}
	}
	return t, nil
}

func (s *Store) ListTransactions(_ context.Context, f core.TransactionFilter) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Transaction
	for _, t := range s.transactions {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if f.SortDesc {
			return core.Less(out[j], out[i])
		}
		return core.Less(out[i], out[j])
	})
	return out, nil
}

func (s *Store) OccurrenceExists(_ context.Context, ownerID, templateID string, date core.Date) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.transactions {
		if t.OwnerID == ownerID && t.RecurrenceOf == templateID && t.Date.Equal(date.Time) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) CreateWallet(_ context.Context, w core.Wallet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.wallets[w.ID]; ok {
		return core.ConflictError{Reason: "wallet id already exists"}
	}
	s.wallets[w.ID] = w
	return nil
}

func (s *Store) GetWallet(_ context.Context, ownerID, id string) (core.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.wallets[id]
	if !ok || w.OwnerID != ownerID {
		return core.Wallet{}, core.NotFoundError{Entity: "wallet", ID: id}
	}
	return w, nil
}

func (s *Store) ListWallets(_ context.Context, ownerID string) ([]core.Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Wallet
	for _, w := range s.wallets {
		if w.OwnerID == ownerID {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) UpdateWallet(_ context.Context, w core.Wallet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.wallets[w.ID]
	if !ok || old.OwnerID != w.OwnerID {
		return core.NotFoundError{Entity: "wallet", ID: w.ID}
	}
	s.wallets[w.ID] = w
	return nil
}

func (s *Store) DeleteWallet(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wallets[id]
	if !ok || w.OwnerID != ownerID {
		return core.NotFoundError{Entity: "wallet", ID: id}
	}
	if w.Balance.Cents > 0 {
		return core.ConflictError{Reason: "wallet still holds a positive balance"}
	}
	for _, t := range s.transactions {
		if t.OwnerID == ownerID && (t.WalletID == id || t.DestinationWalletID == id) {
			return core.ConflictError{Reason: "wallet has transactions"}
		}
	}
	delete(s.wallets, id)
	return nil
}

func (s *Store) CreateCategory(_ context.Context, c core.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[c.ID]; ok {
		return core.ConflictError{Reason: "category id already exists"}
	}
	s.categories[c.ID] = c
	return nil
}

func (s *Store) GetCategory(_ context.Context, ownerID, id string) (core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[id]
	if !ok || c.OwnerID != ownerID {
		return core.Category{}, core.NotFoundError{Entity: "category", ID: id}
	}
	return c, nil
}

func (s *Store) ListCategories(_ context.Context, ownerID string) ([]core.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Category
	for _, c := range s.categories {
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) DeleteCategory(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok || c.OwnerID != ownerID {
		return core.NotFoundError{Entity: "category", ID: id}
	}
	for _, t := range s.transactions {
		if t.OwnerID == ownerID && t.CategoryID == id {
			return core.ConflictError{Reason: "category is referenced by transactions"}
		}
	}
	delete(s.categories, id)
	return nil
}

func (s *Store) CreateGoal(_ context.Context, g core.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.goals[g.ID]; ok {
		return core.ConflictError{Reason: "goal id already exists"}
	}
	s.goals[g.ID] = g
	return nil
}

func (s *Store) ListGoals(_ context.Context, ownerID string) ([]core.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Goal
	for _, g := range s.goals {
		if g.OwnerID == ownerID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) UpdateGoal(_ context.Context, g core.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.goals[g.ID]
	if !ok || old.OwnerID != g.OwnerID {
		return core.NotFoundError{Entity: "goal", ID: g.ID}
	}
	s.goals[g.ID] = g
	return nil
}

func (s *Store) DeleteGoal(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[id]
	if !ok || g.OwnerID != ownerID {
		return core.NotFoundError{Entity: "goal", ID: id}
	}
	delete(s.goals, id)
	return nil
}

func (s *Store) AppendAudit(_ context.Context, ev core.AuditEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audit = append(s.audit, ev)
	return nil
}

func (s *Store) ListAudit(_ context.Context, ownerID string, limit int) ([]core.AuditEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.AuditEvent
	for i := len(s.audit) - 1; i >= 0; i-- {
		if s.audit[i].OwnerID != ownerID {
			continue
		}
		out = append(out, s.audit[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *Store) ListOwnerIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	var out []string
	for _, w := range s.wallets {
		if _, ok := seen[w.OwnerID]; !ok {
			seen[w.OwnerID] = struct{}{}
			out = append(out, w.OwnerID)
		}
	}
	sort.Strings(out)
	return out, nil
}
