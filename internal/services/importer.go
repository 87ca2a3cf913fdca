package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"carteira/internal/core"
)

// Supported statement formats.
const (
	FormatOFX     = "ofx"
	FormatJSON    = "json"
	FormatPDFText = "pdf-text"
)

// Candidate is a normalized statement line: positive magnitude, inferred
// flow direction, day-precision date.
type Candidate struct {
	Description string
	Amount      core.Money
	Type        core.TransactionType
	Date        core.Date
}

// ImportResult reports what actually got persisted. Import is not
// all-or-nothing: each candidate is created independently, and a
// candidate whose create fails counts as failed rather than vanishing
// from the totals.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// Importer parses foreign statements and reconciles candidates against
// ledger history before booking them.
type Importer struct {
	store  Store
	ledger *Ledger
}

func NewImporter(store Store, ledger *Ledger) *Importer {
	return &Importer{store: store, ledger: ledger}
}

// Parse turns statement content into normalized candidates. A file whose
// structural anchor is missing is rejected whole; individual malformed
// records fail parsing with a validation error.
func (i *Importer) Parse(format string, content []byte) ([]Candidate, error) {
	switch format {
	case FormatOFX:
		return parseOFX(content)
	case FormatJSON:
		return parseStatementJSON(content)
	case FormatPDFText:
		return parsePDFText(content)
	default:
		return nil, core.ValidationError{Field: "format", Reason: fmt.Sprintf("unsupported statement format %q", format)}
	}
}

// signedAmountToCandidate normalizes a signed source amount: the sign
// picks the flow, the magnitude becomes the positive amount.
func signedAmountToCandidate(desc string, amount decimal.Decimal, date core.Date) (Candidate, error) {
	cents := amount.Abs().Shift(2).Round(0).IntPart()
	if cents == 0 {
		return Candidate{}, core.ErrInvalidAmount
	}
	typ := core.Income
	if amount.IsNegative() {
		typ = core.Expense
	}
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return Candidate{}, core.ErrEmptyDescription
	}
	return Candidate{
		Description: desc,
		Amount:      core.Money{Cents: cents},
		Type:        typ,
		Date:        date,
	}, nil
}

var (
	ofxTrnRe   = regexp.MustCompile(`(?s)<STMTTRN>(.*?)</STMTTRN>`)
	ofxFieldRe = regexp.MustCompile(`<([A-Z0-9]+)>([^<\r\n]*)`)
)

// parseOFX handles the SGML-flavored OFX banks actually emit: tags are
// not necessarily closed, one field per line inside <STMTTRN> blocks.
func parseOFX(content []byte) ([]Candidate, error) {
	text := string(content)
	if !strings.Contains(text, "<BANKTRANLIST>") {
		return nil, core.ValidationError{Field: "content", Reason: "missing BANKTRANLIST statement block"}
	}

	var out []Candidate
	for _, m := range ofxTrnRe.FindAllStringSubmatch(text, -1) {
		fields := make(map[string]string)
		for _, f := range ofxFieldRe.FindAllStringSubmatch(m[1], -1) {
			fields[f[1]] = strings.TrimSpace(f[2])
		}

		rawAmount, ok := fields["TRNAMT"]
		if !ok {
			return nil, core.ValidationError{Field: "TRNAMT", Reason: "missing in statement transaction"}
		}
		amount, err := decimal.NewFromString(strings.ReplaceAll(rawAmount, ",", "."))
		if err != nil {
			return nil, core.ValidationError{Field: "TRNAMT", Reason: fmt.Sprintf("unparseable amount %q", rawAmount)}
		}

		rawDate, ok := fields["DTPOSTED"]
		if !ok || len(rawDate) < 8 {
			return nil, core.ValidationError{Field: "DTPOSTED", Reason: "missing or truncated posting date"}
		}
		date, err := core.ParseDate(rawDate[0:4] + "-" + rawDate[4:6] + "-" + rawDate[6:8])
		if err != nil {
			return nil, core.ValidationError{Field: "DTPOSTED", Reason: fmt.Sprintf("unparseable date %q", rawDate)}
		}

		desc := fields["MEMO"]
		if desc == "" {
			desc = fields["NAME"]
		}

		c, err := signedAmountToCandidate(desc, amount, date)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

type statementJSON struct {
	Transactions []struct {
		Description string      `json:"description"`
		Amount      json.Number `json:"amount"`
		Date        string      `json:"date"`
	} `json:"transactions"`
}

func parseStatementJSON(content []byte) ([]Candidate, error) {
	var stmt statementJSON
	if err := json.Unmarshal(content, &stmt); err != nil {
		return nil, core.ValidationError{Field: "content", Reason: "not a valid JSON statement"}
	}
	// The transactions list is the structural anchor; without it the
	// file is not a statement at all.
	if stmt.Transactions == nil {
		return nil, core.ValidationError{Field: "transactions", Reason: "missing statement list"}
	}

	var out []Candidate
	for idx, rec := range stmt.Transactions {
		amount, err := decimal.NewFromString(rec.Amount.String())
		if err != nil {
			return nil, core.ValidationError{Field: "amount", Reason: fmt.Sprintf("record %d: unparseable amount %q", idx, rec.Amount)}
		}
		date, err := core.ParseDate(rec.Date)
		if err != nil {
			return nil, core.ValidationError{Field: "date", Reason: fmt.Sprintf("record %d: unparseable date %q", idx, rec.Date)}
		}
		c, err := signedAmountToCandidate(rec.Description, amount, date)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// pdfLineRe matches "DD/MM/YYYY  description  -1.234,56" lines from
// text-extracted statements.
var pdfLineRe = regexp.MustCompile(`^(\d{2})/(\d{2})/(\d{4})\s+(.+?)\s+(-?[\d.,]+)$`)

func parsePDFText(content []byte) ([]Candidate, error) {
	lines := strings.Split(string(content), "\n")

	var out []Candidate
	for _, line := range lines {
		m := pdfLineRe.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		date, err := core.ParseDate(m[3] + "-" + m[2] + "-" + m[1])
		if err != nil {
			return nil, core.ValidationError{Field: "date", Reason: fmt.Sprintf("unparseable date in line %q", line)}
		}
		// Brazilian statements write 1.234,56; strip thousand separators
		// before the decimal comma.
		raw := m[5]
		if strings.Contains(raw, ",") {
			raw = strings.ReplaceAll(raw, ".", "")
			raw = strings.ReplaceAll(raw, ",", ".")
		}
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, core.ValidationError{Field: "amount", Reason: fmt.Sprintf("unparseable amount in line %q", line)}
		}
		c, err := signedAmountToCandidate(m[4], amount, date)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		return nil, core.ValidationError{Field: "content", Reason: "no statement lines recognized"}
	}
	return out, nil
}

// dedupPrefixLen bounds the description part of the dedup key so minor
// trailing differences in bank descriptors do not defeat matching.
const dedupPrefixLen = 32

// dedupKey is the heuristic duplicate-detection key: day-precision date,
// normalized description prefix, exact amount.
func dedupKey(date core.Date, description string, cents int64) string {
	desc := strings.ToUpper(strings.Join(strings.Fields(description), " "))
	if len(desc) > dedupPrefixLen {
		desc = desc[:dedupPrefixLen]
	}
	return fmt.Sprintf("%s|%s|%d", date.String(), desc, cents)
}

// ReconcileAndImport partitions candidates against existing ledger
// history and books the new ones. Duplicates are skipped, each import is
// independent, and the returned counts are an honest record of what was
// actually persisted.
func (i *Importer) ReconcileAndImport(ctx context.Context, ownerID string, candidates []Candidate, walletID, defaultCategoryID string) (ImportResult, error) {
	var res ImportResult
	if len(candidates) == 0 {
		return res, nil
	}

	minDate, maxDate := candidates[0].Date, candidates[0].Date
	for _, c := range candidates[1:] {
		if c.Date.Before(minDate.Time) {
			minDate = c.Date
		}
		if c.Date.After(maxDate.Time) {
			maxDate = c.Date
		}
	}

	existing, err := i.store.ListTransactions(ctx, core.TransactionFilter{
		OwnerID: ownerID,
		From:    minDate,
		To:      maxDate,
	})
	if err != nil {
		return res, fmt.Errorf("load existing transactions: %w", err)
	}

	seen := make(map[string]struct{}, len(existing))
	for _, t := range existing {
		seen[dedupKey(t.Date, t.Description, t.Amount.Cents)] = struct{}{}
	}

	for _, c := range candidates {
		key := dedupKey(c.Date, c.Description, c.Amount.Cents)
		if _, dup := seen[key]; dup {
			res.Skipped++
			continue
		}

		_, err := i.ledger.Create(ctx, TransactionInput{
			OwnerID:       ownerID,
			Description:   c.Description,
			Amount:        c.Amount,
			Type:          c.Type,
			Date:          c.Date,
			Status:        core.Completed,
			WalletID:      walletID,
			CategoryID:    defaultCategoryID,
			PaymentMethod: "import",
		})
		if err != nil {
			// A mid-batch failure does not undo already-created records.
			res.Failed++
			slog.ErrorContext(ctx, "Failed to import statement candidate",
				"description", c.Description,
				"date", c.Date.String(),
				"error", err)
			continue
		}
		seen[key] = struct{}{}
		res.Imported++
	}

	slog.InfoContext(ctx, "Statement import reconciled",
		"owner_id", ownerID,
		"candidates", len(candidates),
		"imported", res.Imported,
		"skipped", res.Skipped,
		"failed", res.Failed)

	if res.Imported == 0 && res.Skipped == len(candidates) {
		return res, core.ConflictError{Reason: "statement contained only duplicates"}
	}
	return res, nil
}
