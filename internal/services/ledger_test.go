package services

import (
	"context"
	"errors"
	"testing"

	"carteira/internal/core"
	"carteira/internal/storage/memory"
)

const testOwner = "owner-1"

func newTestLedger(t *testing.T) (*memory.Store, *Ledger) {
	t.Helper()
	store := memory.New()
	ctx := context.Background()

	for _, w := range []core.Wallet{
		{ID: "w-1", OwnerID: testOwner, Name: "Conta Corrente", Type: core.Checking},
		{ID: "w-2", OwnerID: testOwner, Name: "Poupança", Type: core.Savings},
	} {
		if err := store.CreateWallet(ctx, w); err != nil {
			t.Fatalf("seed wallet %s: %v", w.ID, err)
		}
	}
	for _, c := range []core.Category{
		{ID: "cat-exp", OwnerID: testOwner, Name: "Alimentação", Flow: core.Expense},
		{ID: "cat-inc", OwnerID: testOwner, Name: "Salário", Flow: core.Income},
	} {
		if err := store.CreateCategory(ctx, c); err != nil {
			t.Fatalf("seed category %s: %v", c.ID, err)
		}
	}
	return store, NewLedger(store, nil)
}

func walletBalance(t *testing.T, store *memory.Store, id string) int64 {
	t.Helper()
	w, err := store.GetWallet(context.Background(), testOwner, id)
	if err != nil {
		t.Fatalf("get wallet %s: %v", id, err)
	}
	return w.Balance.Cents
}

func TestLedgerCreateBalanceEffects(t *testing.T) {
	tests := []struct {
		name  string
		input TransactionInput
		w1    int64
		w2    int64
	}{
		{
			name: "income credits the wallet",
			input: TransactionInput{
				OwnerID: testOwner, Description: "salário", Amount: core.Money{Cents: 500000},
				Type: core.Income, Date: core.NewDate(2025, 6, 5), WalletID: "w-1", CategoryID: "cat-inc",
			},
			w1: 500000,
		},
		{
			name: "expense debits the wallet",
			input: TransactionInput{
				OwnerID: testOwner, Description: "mercado", Amount: core.Money{Cents: 4550},
				Type: core.Expense, Date: core.NewDate(2025, 6, 10), WalletID: "w-1", CategoryID: "cat-exp",
			},
			w1: -4550,
		},
		{
			name: "transfer moves between wallets",
			input: TransactionInput{
				OwnerID: testOwner, Description: "reserva", Amount: core.Money{Cents: 20000},
				Type: core.Transfer, Date: core.NewDate(2025, 6, 12), WalletID: "w-1", DestinationWalletID: "w-2",
			},
			w1: -20000,
			w2: 20000,
		},
		{
			name: "pending expense leaves balances untouched",
			input: TransactionInput{
				OwnerID: testOwner, Description: "fatura cartão", Amount: core.Money{Cents: 9900},
				Type: core.Expense, Date: core.NewDate(2025, 6, 20), Status: core.Pending,
				WalletID: "w-1", CategoryID: "cat-exp",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, ledger := newTestLedger(t)
			tx, err := ledger.Create(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			if tx.ID == "" {
				t.Error("created transaction should carry an id")
			}
			if got := walletBalance(t, store, "w-1"); got != tt.w1 {
				t.Errorf("w-1 balance = %d, want %d", got, tt.w1)
			}
			if got := walletBalance(t, store, "w-2"); got != tt.w2 {
				t.Errorf("w-2 balance = %d, want %d", got, tt.w2)
			}
		})
	}
}

func TestLedgerCreateDefaultsToCompleted(t *testing.T) {
	_, ledger := newTestLedger(t)
	tx, err := ledger.Create(context.Background(), TransactionInput{
		OwnerID: testOwner, Description: "padaria", Amount: core.Money{Cents: 1200},
		Type: core.Expense, Date: core.NewDate(2025, 6, 1), WalletID: "w-1", CategoryID: "cat-exp",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if tx.Status != core.Completed {
		t.Errorf("status = %s, want completed", tx.Status)
	}
}

func TestLedgerCreateRejections(t *testing.T) {
	_, ledger := newTestLedger(t)
	ctx := context.Background()

	t.Run("unknown wallet", func(t *testing.T) {
		_, err := ledger.Create(ctx, TransactionInput{
			OwnerID: testOwner, Description: "x", Amount: core.Money{Cents: 100},
			Type: core.Expense, Date: core.NewDate(2025, 6, 1), WalletID: "ghost", CategoryID: "cat-exp",
		})
		if !core.IsNotFound(err) {
			t.Errorf("want not-found, got %v", err)
		}
	})

	t.Run("unknown category", func(t *testing.T) {
		_, err := ledger.Create(ctx, TransactionInput{
			OwnerID: testOwner, Description: "x", Amount: core.Money{Cents: 100},
			Type: core.Expense, Date: core.NewDate(2025, 6, 1), WalletID: "w-1", CategoryID: "ghost",
		})
		if !core.IsNotFound(err) {
			t.Errorf("want not-found, got %v", err)
		}
	})

	t.Run("category flow mismatch", func(t *testing.T) {
		_, err := ledger.Create(ctx, TransactionInput{
			OwnerID: testOwner, Description: "x", Amount: core.Money{Cents: 100},
			Type: core.Expense, Date: core.NewDate(2025, 6, 1), WalletID: "w-1", CategoryID: "cat-inc",
		})
		if !core.IsValidation(err) {
			t.Errorf("want validation error, got %v", err)
		}
	})

	t.Run("invalid amount", func(t *testing.T) {
		_, err := ledger.Create(ctx, TransactionInput{
			OwnerID: testOwner, Description: "x", Amount: core.Money{Cents: 0},
			Type: core.Expense, Date: core.NewDate(2025, 6, 1), WalletID: "w-1", CategoryID: "cat-exp",
		})
		if !errors.Is(err, core.ErrInvalidAmount) {
			t.Errorf("want ErrInvalidAmount, got %v", err)
		}
	})
}

func TestLedgerDeleteRestoresBalances(t *testing.T) {
	store, ledger := newTestLedger(t)
	ctx := context.Background()

	tx, err := ledger.Create(ctx, TransactionInput{
		OwnerID: testOwner, Description: "reserva", Amount: core.Money{Cents: 30000},
		Type: core.Transfer, Date: core.NewDate(2025, 6, 12), WalletID: "w-1", DestinationWalletID: "w-2",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := ledger.Delete(ctx, testOwner, tx.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got := walletBalance(t, store, "w-1"); got != 0 {
		t.Errorf("w-1 balance after delete = %d, want 0", got)
	}
	if got := walletBalance(t, store, "w-2"); got != 0 {
		t.Errorf("w-2 balance after delete = %d, want 0", got)
	}
	if _, err := ledger.GetByID(ctx, testOwner, tx.ID); !core.IsNotFound(err) {
		t.Errorf("deleted transaction should be gone, got %v", err)
	}
}

func TestLedgerUpdateRederivesBalance(t *testing.T) {
	t.Run("amount change", func(t *testing.T) {
		store, ledger := newTestLedger(t)
		ctx := context.Background()
		tx, err := ledger.Create(ctx, TransactionInput{
			OwnerID: testOwner, Description: "mercado", Amount: core.Money{Cents: 10000},
			Type: core.Expense, Date: core.NewDate(2025, 6, 10), WalletID: "w-1", CategoryID: "cat-exp",
		})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}

		newAmount := core.Money{Cents: 2500}
		if _, err := ledger.Update(ctx, testOwner, tx.ID, TransactionPatch{Amount: &newAmount}); err != nil {
			t.Fatalf("Update: %v", err)
		}
		if got := walletBalance(t, store, "w-1"); got != -2500 {
			t.Errorf("w-1 balance = %d, want -2500", got)
		}
	})

	t.Run("wallet change moves the effect", func(t *testing.T) {
		store, ledger := newTestLedger(t)
		ctx := context.Background()
		tx, err := ledger.Create(ctx, TransactionInput{
			OwnerID: testOwner, Description: "mercado", Amount: core.Money{Cents: 7000},
			Type: core.Expense, Date: core.NewDate(2025, 6, 10), WalletID: "w-1", CategoryID: "cat-exp",
		})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}

		newWallet := "w-2"
		if _, err := ledger.Update(ctx, testOwner, tx.ID, TransactionPatch{WalletID: &newWallet}); err != nil {
			t.Fatalf("Update: %v", err)
		}
		if got := walletBalance(t, store, "w-1"); got != 0 {
			t.Errorf("w-1 balance = %d, want 0", got)
		}
		if got := walletBalance(t, store, "w-2"); got != -7000 {
			t.Errorf("w-2 balance = %d, want -7000", got)
		}
	})

	t.Run("back to pending reverses the effect", func(t *testing.T) {
		store, ledger := newTestLedger(t)
		ctx := context.Background()
		tx, err := ledger.Create(ctx, TransactionInput{
			OwnerID: testOwner, Description: "mercado", Amount: core.Money{Cents: 7000},
			Type: core.Expense, Date: core.NewDate(2025, 6, 10), WalletID: "w-1", CategoryID: "cat-exp",
		})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}

		pending := core.Pending
		if _, err := ledger.Update(ctx, testOwner, tx.ID, TransactionPatch{Status: &pending}); err != nil {
			t.Fatalf("Update: %v", err)
		}
		if got := walletBalance(t, store, "w-1"); got != 0 {
			t.Errorf("w-1 balance = %d, want 0", got)
		}
	})
}

func TestLedgerSettle(t *testing.T) {
	store, ledger := newTestLedger(t)
	ctx := context.Background()

	tx, err := ledger.Create(ctx, TransactionInput{
		OwnerID: testOwner, Description: "fatura", Amount: core.Money{Cents: 15000},
		Type: core.Expense, Date: core.NewDate(2025, 6, 20), Status: core.Pending,
		WalletID: "w-1", CategoryID: "cat-exp",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got := walletBalance(t, store, "w-1"); got != 0 {
		t.Fatalf("pending expense moved the balance: %d", got)
	}

	settled, err := ledger.Settle(ctx, testOwner, tx.ID)
	if err != nil {
		t.Fatalf("Settle: %v", err)
	}
	if settled.Status != core.Completed {
		t.Errorf("status = %s, want completed", settled.Status)
	}
	if got := walletBalance(t, store, "w-1"); got != -15000 {
		t.Errorf("w-1 balance = %d, want -15000", got)
	}

	if _, err := ledger.Settle(ctx, testOwner, tx.ID); !errors.Is(err, core.ErrSettleNotPending) {
		t.Errorf("settling a completed transaction: got %v, want ErrSettleNotPending", err)
	}
}

func TestLedgerNoPartialEffectOnFailure(t *testing.T) {
	store, ledger := newTestLedger(t)
	ctx := context.Background()

	store.FailNextWrite(errors.New("disk full"))
	_, err := ledger.Create(ctx, TransactionInput{
		OwnerID: testOwner, Description: "reserva", Amount: core.Money{Cents: 5000},
		Type: core.Transfer, Date: core.NewDate(2025, 6, 12), WalletID: "w-1", DestinationWalletID: "w-2",
	})
	if !core.IsTransient(err) {
		t.Fatalf("want transient error, got %v", err)
	}

	if got := walletBalance(t, store, "w-1"); got != 0 {
		t.Errorf("w-1 balance after failed write = %d, want 0", got)
	}
	if got := walletBalance(t, store, "w-2"); got != 0 {
		t.Errorf("w-2 balance after failed write = %d, want 0", got)
	}
	txs, err := ledger.List(ctx, core.TransactionFilter{OwnerID: testOwner})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(txs) != 0 {
		t.Errorf("failed create left %d transactions behind", len(txs))
	}
}

func TestVerifyConsistency(t *testing.T) {
	store, ledger := newTestLedger(t)
	ctx := context.Background()

	if _, err := ledger.Create(ctx, TransactionInput{
		OwnerID: testOwner, Description: "salário", Amount: core.Money{Cents: 100000},
		Type: core.Income, Date: core.NewDate(2025, 6, 5), WalletID: "w-1", CategoryID: "cat-inc",
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	mismatches, err := ledger.VerifyConsistency(ctx, testOwner)
	if err != nil {
		t.Fatalf("VerifyConsistency: %v", err)
	}
	if len(mismatches) != 0 {
		t.Fatalf("fresh ledger should be consistent, got %v", mismatches)
	}

	// Corrupt a balance behind the ledger's back.
	w, _ := store.GetWallet(ctx, testOwner, "w-1")
	w.Balance = core.Money{Cents: 999}
	if err := store.UpdateWallet(ctx, w); err != nil {
		t.Fatalf("corrupt wallet: %v", err)
	}

	mismatches, err = ledger.VerifyConsistency(ctx, testOwner)
	if err != nil {
		t.Fatalf("VerifyConsistency: %v", err)
	}
	if len(mismatches) != 1 {
		t.Fatalf("want 1 mismatch, got %d", len(mismatches))
	}
	m := mismatches[0]
	if m.WalletID != "w-1" || m.Stored.Cents != 999 || m.Computed.Cents != 100000 {
		t.Errorf("mismatch = %+v", m)
	}

	// The stored balance is reported, never healed.
	if got := walletBalance(t, store, "w-1"); got != 999 {
		t.Errorf("balance after verify = %d, want 999 untouched", got)
	}

	events, err := store.ListAudit(ctx, testOwner, 0)
	if err != nil {
		t.Fatalf("ListAudit: %v", err)
	}
	found := false
	for _, ev := range events {
		if ev.Type == core.AuditBalanceInconsistency && ev.Severity == core.SeverityCritical {
			found = true
		}
	}
	if !found {
		t.Error("expected a critical BALANCE_INCONSISTENCY audit event")
	}
}

func TestLedgerUpdateCannotSettle(t *testing.T) {
	store, ledger := newTestLedger(t)
	ctx := context.Background()

	tx, err := ledger.Create(ctx, TransactionInput{
		OwnerID: testOwner, Description: "fatura", Amount: core.Money{Cents: 15000},
		Type: core.Expense, Date: core.NewDate(2025, 6, 20), Status: core.Pending,
		WalletID: "w-1", CategoryID: "cat-exp",
	})
	if err != nil {
		t.Fatalf("create pending expense: %v", err)
	}

	completed := core.Completed
	_, err = ledger.Update(ctx, testOwner, tx.ID, TransactionPatch{Status: &completed})
	if !errors.Is(err, core.ErrUpdateCannotSettle) {
		t.Fatalf("patching pending to completed: got %v, want ErrUpdateCannotSettle", err)
	}
	if !core.IsValidation(err) {
		t.Errorf("ErrUpdateCannotSettle should classify as validation")
	}

	stored, err := ledger.GetByID(ctx, testOwner, tx.ID)
	if err != nil {
		t.Fatalf("reload transaction: %v", err)
	}
	if stored.Status != core.Pending {
		t.Errorf("status = %s, want still pending", stored.Status)
	}
	if got := walletBalance(t, store, "w-1"); got != 0 {
		t.Errorf("w-1 balance = %d, want untouched 0", got)
	}

	if _, err := ledger.Settle(ctx, testOwner, tx.ID); err != nil {
		t.Fatalf("settle after rejected patch: %v", err)
	}
	if got := walletBalance(t, store, "w-1"); got != -15000 {
		t.Errorf("w-1 balance after settle = %d, want -15000", got)
	}
}
