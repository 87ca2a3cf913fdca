package services

import (
	"context"
	"testing"

	"carteira/internal/core"
)

const sampleOFX = `OFXHEADER:100
DATA:OFXSGML
<OFX>
<BANKMSGSRSV1>
<STMTTRNRS>
<STMTRS>
<BANKTRANLIST>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20250610120000
<TRNAMT>-45.50
<MEMO>SUPERMERCADO PAGUE MENOS
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20250605
<TRNAMT>5000.00
<NAME>SALARIO ACME LTDA
</STMTTRN>
</BANKTRANLIST>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

func TestParseOFX(t *testing.T) {
	imp := NewImporter(nil, nil)

	candidates, err := imp.Parse(FormatOFX, []byte(sampleOFX))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("candidates = %d, want 2", len(candidates))
	}

	first := candidates[0]
	if first.Description != "SUPERMERCADO PAGUE MENOS" {
		t.Errorf("description = %q", first.Description)
	}
	if first.Amount.Cents != 4550 {
		t.Errorf("amount = %d, want 4550", first.Amount.Cents)
	}
	if first.Type != core.Expense {
		t.Errorf("type = %s, want expense", first.Type)
	}
	if first.Date.String() != "2025-06-10" {
		t.Errorf("date = %s, want 2025-06-10", first.Date)
	}

	second := candidates[1]
	if second.Type != core.Income || second.Amount.Cents != 500000 {
		t.Errorf("second candidate = %+v, want income of 500000", second)
	}
	if second.Description != "SALARIO ACME LTDA" {
		t.Errorf("NAME fallback failed: %q", second.Description)
	}
}

func TestParseOFXMissingAnchor(t *testing.T) {
	imp := NewImporter(nil, nil)
	_, err := imp.Parse(FormatOFX, []byte("<OFX><STMTTRN><TRNAMT>-1.00</STMTTRN></OFX>"))
	if !core.IsValidation(err) {
		t.Errorf("missing BANKTRANLIST should be a validation error, got %v", err)
	}
}

func TestParseStatementJSON(t *testing.T) {
	imp := NewImporter(nil, nil)

	content := []byte(`{
		"transactions": [
			{"description": "Uber", "amount": -23.90, "date": "2025-06-08"},
			{"description": "Pix recebido", "amount": 150.00, "date": "2025-06-09"}
		]
	}`)
	candidates, err := imp.Parse(FormatJSON, content)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("candidates = %d, want 2", len(candidates))
	}
	if candidates[0].Type != core.Expense || candidates[0].Amount.Cents != 2390 {
		t.Errorf("first = %+v", candidates[0])
	}
	if candidates[1].Type != core.Income || candidates[1].Amount.Cents != 15000 {
		t.Errorf("second = %+v", candidates[1])
	}

	t.Run("missing transactions key", func(t *testing.T) {
		_, err := imp.Parse(FormatJSON, []byte(`{"entries": []}`))
		if !core.IsValidation(err) {
			t.Errorf("want validation error, got %v", err)
		}
	})

	t.Run("not json at all", func(t *testing.T) {
		_, err := imp.Parse(FormatJSON, []byte("hello"))
		if !core.IsValidation(err) {
			t.Errorf("want validation error, got %v", err)
		}
	})
}

func TestParsePDFText(t *testing.T) {
	imp := NewImporter(nil, nil)

	content := []byte(`Extrato de Conta Corrente
Periodo: 01/06/2025 a 30/06/2025

10/06/2025  SUPERMERCADO PAGUE MENOS  -1.234,56
11/06/2025  TRANSFERENCIA RECEBIDA  500,00
linha sem formato reconhecido
`)
	candidates, err := imp.Parse(FormatPDFText, content)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("candidates = %d, want 2", len(candidates))
	}
	if candidates[0].Amount.Cents != 123456 || candidates[0].Type != core.Expense {
		t.Errorf("first = %+v, want expense of 123456", candidates[0])
	}
	if candidates[0].Date.String() != "2025-06-10" {
		t.Errorf("date = %s, want 2025-06-10", candidates[0].Date)
	}
	if candidates[1].Amount.Cents != 50000 || candidates[1].Type != core.Income {
		t.Errorf("second = %+v, want income of 50000", candidates[1])
	}

	t.Run("nothing recognized", func(t *testing.T) {
		_, err := imp.Parse(FormatPDFText, []byte("apenas texto livre\nsem lançamentos"))
		if !core.IsValidation(err) {
			t.Errorf("want validation error, got %v", err)
		}
	})
}

func TestParseUnsupportedFormat(t *testing.T) {
	imp := NewImporter(nil, nil)
	if _, err := imp.Parse("csv", []byte("a,b,c")); !core.IsValidation(err) {
		t.Errorf("want validation error, got %v", err)
	}
}

func TestReconcileAndImport(t *testing.T) {
	store, ledger := newTestLedger(t)
	imp := NewImporter(store, ledger)
	ctx := context.Background()

	candidates := []Candidate{
		{Description: "SUPERMERCADO PAGUE MENOS", Amount: core.Money{Cents: 4550}, Type: core.Expense, Date: core.NewDate(2025, 6, 10)},
		{Description: "FARMACIA CENTRAL", Amount: core.Money{Cents: 1200}, Type: core.Expense, Date: core.NewDate(2025, 6, 11)},
	}

	res, err := imp.ReconcileAndImport(ctx, testOwner, candidates, "w-1", "cat-exp")
	if err != nil {
		t.Fatalf("first import: %v", err)
	}
	if res.Imported != 2 || res.Skipped != 0 {
		t.Fatalf("first import = %+v, want 2 imported", res)
	}
	if got := walletBalance(t, store, "w-1"); got != -5750 {
		t.Errorf("w-1 balance = %d, want -5750", got)
	}

	t.Run("re-import is all duplicates", func(t *testing.T) {
		res, err := imp.ReconcileAndImport(ctx, testOwner, candidates, "w-1", "cat-exp")
		if !core.IsConflict(err) {
			t.Fatalf("want conflict for duplicate-only statement, got %v", err)
		}
		if res.Imported != 0 || res.Skipped != 2 {
			t.Errorf("re-import = %+v, want all skipped", res)
		}
		if got := walletBalance(t, store, "w-1"); got != -5750 {
			t.Errorf("balance moved on duplicate import: %d", got)
		}
	})

	t.Run("partial overlap imports only the new ones", func(t *testing.T) {
		next := append(candidates, Candidate{
			Description: "PADARIA DO BAIRRO", Amount: core.Money{Cents: 800}, Type: core.Expense, Date: core.NewDate(2025, 6, 12),
		})
		res, err := imp.ReconcileAndImport(ctx, testOwner, next, "w-1", "cat-exp")
		if err != nil {
			t.Fatalf("partial import: %v", err)
		}
		if res.Imported != 1 || res.Skipped != 2 {
			t.Errorf("partial import = %+v, want 1 imported 2 skipped", res)
		}
	})

	t.Run("duplicates inside one batch collapse", func(t *testing.T) {
		batch := []Candidate{
			{Description: "ESTACIONAMENTO", Amount: core.Money{Cents: 1500}, Type: core.Expense, Date: core.NewDate(2025, 6, 13)},
			{Description: "estacionamento", Amount: core.Money{Cents: 1500}, Type: core.Expense, Date: core.NewDate(2025, 6, 13)},
		}
		res, err := imp.ReconcileAndImport(ctx, testOwner, batch, "w-1", "cat-exp")
		if err != nil {
			t.Fatalf("batch import: %v", err)
		}
		if res.Imported != 1 || res.Skipped != 1 {
			t.Errorf("batch import = %+v, want 1 imported 1 skipped", res)
		}
	})
}

func TestDedupKeyNormalization(t *testing.T) {
	date := core.NewDate(2025, 6, 10)
	a := dedupKey(date, "Supermercado   Pague Menos", 4550)
	b := dedupKey(date, "SUPERMERCADO PAGUE MENOS", 4550)
	if a != b {
		t.Errorf("case and whitespace should normalize: %q vs %q", a, b)
	}

	long := dedupKey(date, "SUPERMERCADO PAGUE MENOS FILIAL CENTRO 0042", 4550)
	alsoLong := dedupKey(date, "SUPERMERCADO PAGUE MENOS FILIAL CENTRO 0099", 4550)
	if long != alsoLong {
		t.Errorf("trailing descriptor differences beyond the prefix should not split the key")
	}

	if dedupKey(date, "SUPERMERCADO", 4550) == dedupKey(date, "SUPERMERCADO", 4551) {
		t.Error("different amounts must produce different keys")
	}
}

func TestReconcileAndImportCountsFailures(t *testing.T) {
	store, ledger := newTestLedger(t)
	imp := NewImporter(store, ledger)
	ctx := context.Background()

	// The income candidate cannot book under an expense category, so its
	// individual create fails while the rest of the batch proceeds.
	candidates := []Candidate{
		{Description: "REEMBOLSO", Amount: core.Money{Cents: 9000}, Type: core.Income, Date: core.NewDate(2025, 6, 14)},
		{Description: "LIVRARIA", Amount: core.Money{Cents: 3200}, Type: core.Expense, Date: core.NewDate(2025, 6, 15)},
	}

	res, err := imp.ReconcileAndImport(ctx, testOwner, candidates, "w-1", "cat-exp")
	if err != nil {
		t.Fatalf("import with a failing candidate: %v", err)
	}
	if res.Imported != 1 || res.Skipped != 0 || res.Failed != 1 {
		t.Errorf("result = %+v, want 1 imported 1 failed", res)
	}
	if res.Imported+res.Skipped+res.Failed != len(candidates) {
		t.Errorf("counts %+v do not account for the whole batch of %d", res, len(candidates))
	}
	if got := walletBalance(t, store, "w-1"); got != -3200 {
		t.Errorf("w-1 balance = %d, want -3200 from the booked candidate only", got)
	}
}
