package core

import (
	"errors"
	"fmt"
)

// Sentinel validation errors for the invariants that callers check for.
var (
	ErrInvalidAmount          = errors.New("amount must be positive")
	ErrEmptyDescription       = errors.New("empty description")
	ErrTransferToSelf         = errors.New("transfer destination equals origin wallet")
	ErrTransferDestination    = errors.New("transfer requires a destination wallet")
	ErrDestinationNotTransfer = errors.New("destination wallet only valid for transfers")
	ErrCategoryOnTransfer     = errors.New("transfers cannot carry a category")
	ErrCategoryRequired       = errors.New("category is required")
	ErrPendingNotExpense      = errors.New("only expenses may be pending")
	ErrInvalidInterval        = errors.New("invalid recurrence interval")
	ErrSettleNotPending       = errors.New("only pending transactions can be settled")
	ErrUpdateCannotSettle     = errors.New("pending transactions are completed through settle")
	ErrBalanceForbidden       = errors.New("balance cannot be updated directly")
)

// ValidationError is malformed input, caught before any persistence
// attempt. Never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ConflictError is a business-rule refusal: deleting a wallet with a
// positive balance, deleting a category in use, importing only duplicates.
type ConflictError struct {
	Reason string
}

func (e ConflictError) Error() string { return e.Reason }

// NotFoundError means a referenced id does not exist.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// ConsistencyError is a detected mismatch between a stored balance and the
// replay of transaction history. It is always surfaced, never auto-healed.
type ConsistencyError struct {
	WalletID string
	Stored   Money
	Computed Money
}

func (e ConsistencyError) Error() string {
	return fmt.Sprintf("wallet %s balance mismatch: stored %s, history replays to %s",
		e.WalletID, e.Stored, e.Computed)
}

// TransientError wraps a failed atomic persistence step. No partial effect
// was committed, so the caller may retry.
type TransientError struct {
	Op  string
	Err error
}

func (e TransientError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e TransientError) Unwrap() error { return e.Err }

// IsValidation reports whether err belongs to the validation taxonomy,
// either a typed ValidationError or one of the sentinel values above.
func IsValidation(err error) bool {
	var ve ValidationError
	if errors.As(err, &ve) {
		return true
	}
	for _, s := range []error{
		ErrInvalidAmount, ErrEmptyDescription, ErrTransferToSelf,
		ErrTransferDestination, ErrDestinationNotTransfer, ErrCategoryOnTransfer,
		ErrCategoryRequired, ErrPendingNotExpense, ErrInvalidInterval,
		ErrSettleNotPending, ErrUpdateCannotSettle, ErrBalanceForbidden,
	} {
		if errors.Is(err, s) {
			return true
		}
	}
	return false
}

func IsConflict(err error) bool {
	var ce ConflictError
	return errors.As(err, &ce)
}

func IsNotFound(err error) bool {
	var ne NotFoundError
	return errors.As(err, &ne)
}

func IsTransient(err error) bool {
	var te TransientError
	return errors.As(err, &te)
}
