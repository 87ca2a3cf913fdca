package services

import (
	"context"
	"fmt"
	"log/slog"

	"carteira/internal/core"
)

// Scheduler materializes due occurrences of recurring transaction
// templates. It is safe to invoke repeatedly or concurrently: the
// idempotency key is template id + occurrence date, enforced both by the
// existence check here and by the store's uniqueness guard.
type Scheduler struct {
	store  Store
	ledger *Ledger
}

func NewScheduler(store Store, ledger *Ledger) *Scheduler {
	return &Scheduler{store: store, ledger: ledger}
}

// MaterializeDue generates every occurrence due on or before the
// reference date, catching up across missed periods, and stops at the
// most recent due date. It returns the number of occurrences generated
// and never errors for "nothing to do".
func (s *Scheduler) MaterializeDue(ctx context.Context, ownerID string, ref core.Date) (int, error) {
	templates, err := s.store.ListTransactions(ctx, core.TransactionFilter{
		OwnerID:       ownerID,
		RecurringOnly: true,
	})
	if err != nil {
		return 0, fmt.Errorf("list recurring templates: %w", err)
	}

	slog.InfoContext(ctx, "Materializing due recurrences",
		"owner_id", ownerID,
		"templates", len(templates),
		"reference_date", ref.String())

	generated := 0
	for _, tpl := range templates {
		n, err := s.materializeTemplate(ctx, tpl, ref)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to materialize recurring template",
				"template_id", tpl.ID,
				"description", tpl.Description,
				"error", err)
			continue
		}
		generated += n
	}

	slog.InfoContext(ctx, "Recurrence materialization complete",
		"owner_id", ownerID, "generated", generated)
	return generated, nil
}

func (s *Scheduler) materializeTemplate(ctx context.Context, tpl core.Transaction, ref core.Date) (int, error) {
	stepper, err := StepperFor(tpl.RecurrenceInterval)
	if err != nil {
		return 0, err
	}

	// The template's own date is the first occurrence; stepping resumes
	// from the latest materialized one.
	last := tpl.Date
	occurrences, err := s.store.ListTransactions(ctx, core.TransactionFilter{
		OwnerID:      tpl.OwnerID,
		RecurrenceOf: tpl.ID,
	})
	if err != nil {
		return 0, fmt.Errorf("list occurrences: %w", err)
	}
	for _, o := range occurrences {
		if o.Date.After(last.Time) {
			last = o.Date
		}
	}

	anchorDay := tpl.Date.Day()
	generated := 0
	for next := stepper.Next(last, anchorDay); !next.After(ref.Time); next = stepper.Next(next, anchorDay) {
		if !tpl.RecurrenceEnd.IsZero() && next.After(tpl.RecurrenceEnd.Time) {
			break
		}

		exists, err := s.store.OccurrenceExists(ctx, tpl.OwnerID, tpl.ID, next)
		if err != nil {
			return generated, fmt.Errorf("occurrence exists check: %w", err)
		}
		if exists {
			continue
		}

		_, err = s.ledger.Create(ctx, TransactionInput{
			OwnerID:             tpl.OwnerID,
			Description:         tpl.Description,
			Amount:              tpl.Amount,
			Type:                tpl.Type,
			Date:                next,
			Status:              tpl.Status,
			WalletID:            tpl.WalletID,
			DestinationWalletID: tpl.DestinationWalletID,
			CategoryID:          tpl.CategoryID,
			PaymentMethod:       tpl.PaymentMethod,
			RecurrenceOf:        tpl.ID,
		})
		if err != nil {
			// A concurrent sweep can win the race between the existence
			// check and the insert; the store's uniqueness guard turns
			// that into a conflict, which is a skip, not a failure.
			if core.IsConflict(err) {
				slog.DebugContext(ctx, "Occurrence materialized by concurrent sweep",
					"template_id", tpl.ID, "date", next.String())
				continue
			}
			return generated, fmt.Errorf("create occurrence: %w", err)
		}

		generated++
		slog.InfoContext(ctx, "Materialized recurring occurrence",
			"template_id", tpl.ID,
			"description", tpl.Description,
			"date", next.String(),
			"amount_cents", tpl.Amount.Cents,
			"interval", tpl.RecurrenceInterval)
	}
	return generated, nil
}
