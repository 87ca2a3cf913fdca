// Package sqlite is the durable Store backend. Every balance-affecting
// write runs inside one SQL transaction so the record change and the
// wallet deltas commit or roll back together.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"carteira/internal/core"
	"carteira/internal/services"

	_ "modernc.org/sqlite"
)

var _ services.Store = (*Repository)(nil)

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	// SQLite serializes writers; one writer connection avoids SQLITE_BUSY
	// churn under concurrent ledger mutations.
	db.SetMaxOpenConns(1)

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// withTx runs fn inside a transaction. Begin and commit failures are
// transient: nothing was committed, the caller may retry.
func (r *Repository) withTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.TransientError{Op: op, Err: err}
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return core.TransientError{Op: op, Err: err}
	}
	return nil
}

func applyDeltas(ctx context.Context, tx *sql.Tx, ownerID string, deltas []core.BalanceDelta) error {
	for _, d := range deltas {
		res, err := tx.ExecContext(ctx,
			`UPDATE wallets SET balance_cents = balance_cents + ? WHERE id = ? AND owner_id = ?`,
			d.Cents, d.WalletID, ownerID)
		if err != nil {
			return fmt.Errorf("apply balance delta: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("apply balance delta: %w", err)
		}
		if n == 0 {
			return core.NotFoundError{Entity: "wallet", ID: d.WalletID}
		}
	}
	return nil
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullDate(d core.Date) any {
	if d.IsZero() {
		return nil
	}
	return d.String()
}

func (r *Repository) CreateTransaction(ctx context.Context, t core.Transaction, deltas []core.BalanceDelta) error {
	err := r.withTx(ctx, "create transaction", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO transactions (
				id, owner_id, description, amount_cents, type, date, status,
				wallet_id, destination_wallet_id, category_id, payment_method,
				recurring, recurrence_interval, recurrence_end, recurrence_of, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.OwnerID, t.Description, t.Amount.Cents, string(t.Type),
			t.Date.String(), string(t.Status), t.WalletID,
			nullStr(t.DestinationWalletID), nullStr(t.CategoryID), t.PaymentMethod,
			t.Recurring, nullStr(string(t.RecurrenceInterval)), nullDate(t.RecurrenceEnd),
			nullStr(t.RecurrenceOf), t.CreatedAt.UTC().Format(time.RFC3339Nano))
		if err != nil {
			if strings.Contains(err.Error(), "UNIQUE constraint failed") {
				return core.ConflictError{Reason: "occurrence already materialized for this date"}
			}
			return fmt.Errorf("insert transaction: %w", err)
		}
		return applyDeltas(ctx, tx, t.OwnerID, deltas)
	})
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "Transaction persisted",
		"id", t.ID, "type", t.Type, "amount_cents", t.Amount.Cents, "date", t.Date.String())
	return nil
}

func (r *Repository) UpdateTransaction(ctx context.Context, t core.Transaction, deltas []core.BalanceDelta) error {
	return r.withTx(ctx, "update transaction", func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE transactions SET
				description = ?, amount_cents = ?, type = ?, date = ?, status = ?,
				wallet_id = ?, destination_wallet_id = ?, category_id = ?,
				payment_method = ?, recurring = ?, recurrence_interval = ?, recurrence_end = ?
			WHERE id = ? AND owner_id = ?`,
			t.Description, t.Amount.Cents, string(t.Type), t.Date.String(), string(t.Status),
			t.WalletID, nullStr(t.DestinationWalletID), nullStr(t.CategoryID),
			t.PaymentMethod, t.Recurring, nullStr(string(t.RecurrenceInterval)), nullDate(t.RecurrenceEnd),
			t.ID, t.OwnerID)
		if err != nil {
			if strings.Contains(err.Error(), "UNIQUE constraint failed") {
				return core.ConflictError{Reason: "occurrence already materialized for this date"}
			}
			return fmt.Errorf("update transaction: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("update transaction: %w", err)
		}
		if n == 0 {
			return core.NotFoundError{Entity: "transaction", ID: t.ID}
		}
		return applyDeltas(ctx, tx, t.OwnerID, deltas)
	})
}

func (r *Repository) DeleteTransaction(ctx context.Context, ownerID, id string, deltas []core.BalanceDelta) error {
	return r.withTx(ctx, "delete transaction", func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM transactions WHERE id = ? AND owner_id = ?`, id, ownerID)
		if err != nil {
			return fmt.Errorf("delete transaction: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete transaction: %w", err)
		}
		if n == 0 {
			return core.NotFoundError{Entity: "transaction", ID: id}
		}
		return applyDeltas(ctx, tx, ownerID, deltas)
	})
}

const transactionColumns = `
	id, owner_id, description, amount_cents, type, date, status,
	wallet_id, destination_wallet_id, category_id, payment_method,
	recurring, recurrence_interval, recurrence_end, recurrence_of, created_at`

func scanTransaction(row interface{ Scan(...any) error }) (core.Transaction, error) {
	var t core.Transaction
	var typ, date, status string
	var dest, cat, interval, recEnd, recOf, createdAt sql.NullString
	err := row.Scan(&t.ID, &t.OwnerID, &t.Description, &t.Amount.Cents, &typ, &date, &status,
		&t.WalletID, &dest, &cat, &t.PaymentMethod,
		&t.Recurring, &interval, &recEnd, &recOf, &createdAt)
	if err != nil {
		return core.Transaction{}, err
	}
	t.Type = core.TransactionType(typ)
	t.Status = core.TransactionStatus(status)
	if t.Date, err = core.ParseDate(date); err != nil {
		return core.Transaction{}, fmt.Errorf("parse transaction date %q: %w", date, err)
	}
	t.DestinationWalletID = dest.String
	t.CategoryID = cat.String
	t.RecurrenceInterval = core.Interval(interval.String)
	t.RecurrenceOf = recOf.String
	if recEnd.Valid && recEnd.String != "" {
		if t.RecurrenceEnd, err = core.ParseDate(recEnd.String); err != nil {
			return core.Transaction{}, fmt.Errorf("parse recurrence end %q: %w", recEnd.String, err)
		}
	}
	if createdAt.Valid {
		if ts, perr := time.Parse(time.RFC3339Nano, createdAt.String); perr == nil {
			t.CreatedAt = ts
		}
	}
	return t, nil
}

func (r *Repository) GetTransaction(ctx context.Context, ownerID, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ? AND owner_id = ?`, id, ownerID)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.NotFoundError{Entity: "transaction", ID: id}
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func (r *Repository) ListTransactions(ctx context.Context, f core.TransactionFilter) ([]core.Transaction, error) {
	var (
		where []string
		args  []any
	)
	if f.OwnerID != "" {
		where = append(where, "owner_id = ?")
		args = append(args, f.OwnerID)
	}
	if f.WalletID != "" {
		where = append(where, "(wallet_id = ? OR destination_wallet_id = ?)")
		args = append(args, f.WalletID, f.WalletID)
	}
	if !f.From.IsZero() {
		where = append(where, "date >= ?")
		args = append(args, f.From.String())
	}
	if !f.To.IsZero() {
		where = append(where, "date <= ?")
		args = append(args, f.To.String())
	}
	if len(f.Types) > 0 {
		ph := make([]string, len(f.Types))
		for i, ty := range f.Types {
			ph[i] = "?"
			args = append(args, string(ty))
		}
		where = append(where, "type IN ("+strings.Join(ph, ", ")+")")
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}
	if f.RecurringOnly {
		where = append(where, "recurring = 1")
	}
	if f.RecurrenceOf != "" {
		where = append(where, "recurrence_of = ?")
		args = append(args, f.RecurrenceOf)
	}

	q := `SELECT ` + transactionColumns + ` FROM transactions`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	order := " ORDER BY date, created_at, id"
	if f.SortDesc {
		order = " ORDER BY date DESC, created_at DESC, id DESC"
	}
	q += order

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *Repository) OccurrenceExists(ctx context.Context, ownerID, templateID string, date core.Date) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM transactions WHERE owner_id = ? AND recurrence_of = ? AND date = ?`,
		ownerID, templateID, date.String()).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("occurrence exists: %w", err)
	}
	return true, nil
}

func (r *Repository) CreateWallet(ctx context.Context, w core.Wallet) error {
	var (
		cardBrand, cardLast4 any
		cardLimit            any
		invBench, invYield   any
	)
	if w.Card != nil {
		cardBrand, cardLast4, cardLimit = w.Card.Brand, w.Card.LastFour, w.Card.CreditLimit.Cents
	}
	if w.Investment != nil {
		invBench, invYield = string(w.Investment.Benchmark), w.Investment.YieldPercent
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO wallets (id, owner_id, name, type, balance_cents, color,
			card_brand, card_last4, card_limit_cents, inv_benchmark, inv_yield_pct, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		w.ID, w.OwnerID, w.Name, string(w.Type), w.Balance.Cents, w.Color,
		cardBrand, cardLast4, cardLimit, invBench, invYield,
		w.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

func scanWallet(row interface{ Scan(...any) error }) (core.Wallet, error) {
	var w core.Wallet
	var typ string
	var brand, last4, bench, createdAt sql.NullString
	var limit sql.NullInt64
	var yield sql.NullFloat64
	err := row.Scan(&w.ID, &w.OwnerID, &w.Name, &typ, &w.Balance.Cents, &w.Color,
		&brand, &last4, &limit, &bench, &yield, &createdAt)
	if err != nil {
		return core.Wallet{}, err
	}
	w.Type = core.WalletType(typ)
	if brand.Valid || last4.Valid || limit.Valid {
		w.Card = &core.CardFacet{
			Brand:       brand.String,
			LastFour:    last4.String,
			CreditLimit: core.Money{Cents: limit.Int64},
		}
	}
	if bench.Valid {
		w.Investment = &core.InvestmentFacet{
			Benchmark:    core.Benchmark(bench.String),
			YieldPercent: yield.Float64,
		}
	}
	if createdAt.Valid {
		if ts, perr := time.Parse(time.RFC3339Nano, createdAt.String); perr == nil {
			w.CreatedAt = ts
		}
	}
	return w, nil
}

const walletColumns = `id, owner_id, name, type, balance_cents, color,
	card_brand, card_last4, card_limit_cents, inv_benchmark, inv_yield_pct, created_at`

func (r *Repository) GetWallet(ctx context.Context, ownerID, id string) (core.Wallet, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+walletColumns+` FROM wallets WHERE id = ? AND owner_id = ?`, id, ownerID)
	w, err := scanWallet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Wallet{}, core.NotFoundError{Entity: "wallet", ID: id}
	}
	if err != nil {
		return core.Wallet{}, fmt.Errorf("get wallet: %w", err)
	}
	return w, nil
}

func (r *Repository) ListWallets(ctx context.Context, ownerID string) ([]core.Wallet, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+walletColumns+` FROM wallets WHERE owner_id = ? ORDER BY id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	defer rows.Close()

	var out []core.Wallet
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan wallet: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// UpdateWallet writes display metadata and facets. It deliberately never
// touches balance_cents: balances move only through transaction deltas.
func (r *Repository) UpdateWallet(ctx context.Context, w core.Wallet) error {
	var (
		cardBrand, cardLast4 any
		cardLimit            any
		invBench, invYield   any
	)
	if w.Card != nil {
		cardBrand, cardLast4, cardLimit = w.Card.Brand, w.Card.LastFour, w.Card.CreditLimit.Cents
	}
	if w.Investment != nil {
		invBench, invYield = string(w.Investment.Benchmark), w.Investment.YieldPercent
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE wallets SET name = ?, type = ?, color = ?,
			card_brand = ?, card_last4 = ?, card_limit_cents = ?,
			inv_benchmark = ?, inv_yield_pct = ?
		WHERE id = ? AND owner_id = ?`,
		w.Name, string(w.Type), w.Color,
		cardBrand, cardLast4, cardLimit, invBench, invYield,
		w.ID, w.OwnerID)
	if err != nil {
		return fmt.Errorf("update wallet: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update wallet: %w", err)
	}
	if n == 0 {
		return core.NotFoundError{Entity: "wallet", ID: w.ID}
	}
	return nil
}

func (r *Repository) DeleteWallet(ctx context.Context, ownerID, id string) error {
	return r.withTx(ctx, "delete wallet", func(tx *sql.Tx) error {
		var balance int64
		err := tx.QueryRowContext(ctx,
			`SELECT balance_cents FROM wallets WHERE id = ? AND owner_id = ?`, id, ownerID).Scan(&balance)
		if errors.Is(err, sql.ErrNoRows) {
			return core.NotFoundError{Entity: "wallet", ID: id}
		}
		if err != nil {
			return fmt.Errorf("read wallet balance: %w", err)
		}
		if balance > 0 {
			return core.ConflictError{Reason: "wallet still holds a positive balance"}
		}
		var refs int
		err = tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM transactions WHERE owner_id = ? AND (wallet_id = ? OR destination_wallet_id = ?)`,
			ownerID, id, id).Scan(&refs)
		if err != nil {
			return fmt.Errorf("count wallet references: %w", err)
		}
		if refs > 0 {
			return core.ConflictError{Reason: "wallet has transactions"}
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM wallets WHERE id = ? AND owner_id = ?`, id, ownerID)
		if err != nil {
			return fmt.Errorf("delete wallet: %w", err)
		}
		return nil
	})
}

func (r *Repository) CreateCategory(ctx context.Context, c core.Category) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (id, owner_id, name, flow, color) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.OwnerID, c.Name, string(c.Flow), c.Color)
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (r *Repository) GetCategory(ctx context.Context, ownerID, id string) (core.Category, error) {
	var c core.Category
	var flow string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, owner_id, name, flow, color FROM categories WHERE id = ? AND owner_id = ?`,
		id, ownerID).Scan(&c.ID, &c.OwnerID, &c.Name, &flow, &c.Color)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.NotFoundError{Entity: "category", ID: id}
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	c.Flow = core.TransactionType(flow)
	return c, nil
}

func (r *Repository) ListCategories(ctx context.Context, ownerID string) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, name, flow, color FROM categories WHERE owner_id = ? ORDER BY id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var (
			c    core.Category
			flow string
		)
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &flow, &c.Color); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Flow = core.TransactionType(flow)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repository) DeleteCategory(ctx context.Context, ownerID, id string) error {
	return r.withTx(ctx, "delete category", func(tx *sql.Tx) error {
		var refs int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM transactions WHERE owner_id = ? AND category_id = ?`,
			ownerID, id).Scan(&refs)
		if err != nil {
			return fmt.Errorf("count category references: %w", err)
		}
		if refs > 0 {
			return core.ConflictError{Reason: "category is referenced by transactions"}
		}
		res, err := tx.ExecContext(ctx,
			`DELETE FROM categories WHERE id = ? AND owner_id = ?`, id, ownerID)
		if err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		if n == 0 {
			return core.NotFoundError{Entity: "category", ID: id}
		}
		return nil
	})
}

func (r *Repository) CreateGoal(ctx context.Context, g core.Goal) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO goals (id, owner_id, name, target_cents, current_cents, deadline) VALUES (?, ?, ?, ?, ?, ?)`,
		g.ID, g.OwnerID, g.Name, g.Target.Cents, g.Current.Cents, nullDate(g.Deadline))
	if err != nil {
		return fmt.Errorf("insert goal: %w", err)
	}
	return nil
}

func (r *Repository) ListGoals(ctx context.Context, ownerID string) ([]core.Goal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, name, target_cents, current_cents, deadline FROM goals WHERE owner_id = ? ORDER BY id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var out []core.Goal
	for rows.Next() {
		var (
			g        core.Goal
			deadline sql.NullString
		)
		if err := rows.Scan(&g.ID, &g.OwnerID, &g.Name, &g.Target.Cents, &g.Current.Cents, &deadline); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		if deadline.Valid && deadline.String != "" {
			if g.Deadline, err = core.ParseDate(deadline.String); err != nil {
				return nil, fmt.Errorf("parse goal deadline %q: %w", deadline.String, err)
			}
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *Repository) UpdateGoal(ctx context.Context, g core.Goal) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE goals SET name = ?, target_cents = ?, current_cents = ?, deadline = ? WHERE id = ? AND owner_id = ?`,
		g.Name, g.Target.Cents, g.Current.Cents, nullDate(g.Deadline), g.ID, g.OwnerID)
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	if n == 0 {
		return core.NotFoundError{Entity: "goal", ID: g.ID}
	}
	return nil
}

func (r *Repository) DeleteGoal(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM goals WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	if n == 0 {
		return core.NotFoundError{Entity: "goal", ID: id}
	}
	return nil
}

func (r *Repository) AppendAudit(ctx context.Context, ev core.AuditEvent) error {
	meta, err := json.Marshal(ev.Metadata)
	if err != nil {
		return fmt.Errorf("marshal audit metadata: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO audit_events (id, owner_id, type, severity, metadata, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.OwnerID, string(ev.Type), string(ev.Severity), string(meta),
		ev.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (r *Repository) ListAudit(ctx context.Context, ownerID string, limit int) ([]core.AuditEvent, error) {
	q := `SELECT id, owner_id, type, severity, metadata, created_at FROM audit_events
		WHERE owner_id = ? ORDER BY created_at DESC, id DESC`
	args := []any{ownerID}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var out []core.AuditEvent
	for rows.Next() {
		var (
			ev        core.AuditEvent
			typ, sev  string
			meta      string
			createdAt string
		)
		if err := rows.Scan(&ev.ID, &ev.OwnerID, &typ, &sev, &meta, &createdAt); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		ev.Type = core.AuditEventType(typ)
		ev.Severity = core.AuditSeverity(sev)
		if err := json.Unmarshal([]byte(meta), &ev.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal audit metadata: %w", err)
		}
		if ts, perr := time.Parse(time.RFC3339Nano, createdAt); perr == nil {
			ev.CreatedAt = ts
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (r *Repository) ListOwnerIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT owner_id FROM wallets ORDER BY owner_id`)
	if err != nil {
		return nil, fmt.Errorf("list owner ids: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan owner id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
