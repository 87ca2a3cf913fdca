package core

import (
	"errors"
	"strings"
	"testing"
)

func validExpense() Transaction {
	return Transaction{
		ID:          "tx-1",
		OwnerID:     "owner-1",
		Description: "mercado",
		Amount:      Money{Cents: 4550},
		Type:        Expense,
		Date:        NewDate(2025, 6, 10),
		Status:      Completed,
		WalletID:    "w-1",
		CategoryID:  "cat-1",
	}
}

func TestTransactionValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Transaction)
		wantErr error
	}{
		{"valid expense", func(t *Transaction) {}, nil},
		{"valid pending expense", func(t *Transaction) { t.Status = Pending }, nil},
		{"empty description", func(t *Transaction) { t.Description = "   " }, ErrEmptyDescription},
		{"zero amount", func(t *Transaction) { t.Amount = Money{} }, ErrInvalidAmount},
		{"negative amount", func(t *Transaction) { t.Amount = Money{Cents: -1} }, ErrInvalidAmount},
		{"expense without category", func(t *Transaction) { t.CategoryID = "" }, ErrCategoryRequired},
		{"expense with destination", func(t *Transaction) { t.DestinationWalletID = "w-2" }, ErrDestinationNotTransfer},
		{"pending income", func(t *Transaction) {
			t.Type = Income
			t.Status = Pending
		}, ErrPendingNotExpense},
		{"transfer without destination", func(t *Transaction) {
			t.Type = Transfer
			t.CategoryID = ""
		}, ErrTransferDestination},
		{"transfer to itself", func(t *Transaction) {
			t.Type = Transfer
			t.CategoryID = ""
			t.DestinationWalletID = t.WalletID
		}, ErrTransferToSelf},
		{"transfer with category", func(t *Transaction) {
			t.Type = Transfer
			t.DestinationWalletID = "w-2"
		}, ErrCategoryOnTransfer},
		{"pending transfer", func(t *Transaction) {
			t.Type = Transfer
			t.CategoryID = ""
			t.DestinationWalletID = "w-2"
			t.Status = Pending
		}, ErrPendingNotExpense},
		{"recurring without interval", func(t *Transaction) { t.Recurring = true }, ErrInvalidInterval},
		{"recurring with bad interval", func(t *Transaction) {
			t.Recurring = true
			t.RecurrenceInterval = "fortnightly"
		}, ErrInvalidInterval},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := validExpense()
			tt.mutate(&tx)
			err := tx.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTransactionValidateFieldErrors(t *testing.T) {
	t.Run("description too long", func(t *testing.T) {
		tx := validExpense()
		tx.Description = strings.Repeat("x", 201)
		if !IsValidation(tx.Validate()) {
			t.Error("over-long description should fail validation")
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		tx := validExpense()
		tx.Type = "refund"
		if !IsValidation(tx.Validate()) {
			t.Error("unknown type should fail validation")
		}
	})

	t.Run("recurrence ends before first occurrence", func(t *testing.T) {
		tx := validExpense()
		tx.Recurring = true
		tx.RecurrenceInterval = Monthly
		tx.RecurrenceEnd = tx.Date.AddDays(-1)
		if !IsValidation(tx.Validate()) {
			t.Error("recurrence end before start should fail validation")
		}
	})
}

func TestWalletValidate(t *testing.T) {
	w := Wallet{ID: "w-1", OwnerID: "o-1", Name: "Conta Corrente", Type: Checking}
	if err := w.Validate(); err != nil {
		t.Fatalf("valid wallet: %v", err)
	}

	w.Name = ""
	if !IsValidation(w.Validate()) {
		t.Error("empty name should fail")
	}

	w.Name = "Carteira"
	w.Type = "offshore"
	if !IsValidation(w.Validate()) {
		t.Error("unknown wallet type should fail")
	}

	w.Type = Investment
	w.Investment = &InvestmentFacet{Benchmark: "IBOV", YieldPercent: 100}
	if !IsValidation(w.Validate()) {
		t.Error("unknown benchmark should fail")
	}

	w.Investment = &InvestmentFacet{Benchmark: BenchmarkCDI, YieldPercent: -1}
	if !IsValidation(w.Validate()) {
		t.Error("negative yield percent should fail")
	}

	w.Investment = &InvestmentFacet{Benchmark: BenchmarkCDI, YieldPercent: 110}
	if err := w.Validate(); err != nil {
		t.Errorf("valid investment wallet: %v", err)
	}
}

func TestCategoryValidate(t *testing.T) {
	c := Category{ID: "c-1", OwnerID: "o-1", Name: "Alimentação", Flow: Expense}
	if err := c.Validate(); err != nil {
		t.Fatalf("valid category: %v", err)
	}
	c.Flow = Transfer
	if !IsValidation(c.Validate()) {
		t.Error("transfer flow should fail")
	}
}

func TestGoalValidate(t *testing.T) {
	g := Goal{ID: "g-1", OwnerID: "o-1", Name: "Reserva", Target: Money{Cents: 100000}}
	if err := g.Validate(); err != nil {
		t.Fatalf("valid goal: %v", err)
	}
	g.Target = Money{}
	if g.Validate() == nil {
		t.Error("zero target should fail")
	}
	g.Target = Money{Cents: 1000}
	g.Current = Money{Cents: -1}
	if g.Validate() == nil {
		t.Error("negative current should fail")
	}
}
