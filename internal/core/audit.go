package core

import "time"

const (
	AuditTxCreated            AuditEventType = "TX_CREATED"
	AuditTxDeleted            AuditEventType = "TX_DELETED"
	AuditAuthFailure          AuditEventType = "AUTH_FAILURE"
	AuditBalanceInconsistency AuditEventType = "BALANCE_INCONSISTENCY"
)

const (
	SeverityInfo     AuditSeverity = "info"
	SeverityWarning  AuditSeverity = "warning"
	SeverityError    AuditSeverity = "error"
	SeverityCritical AuditSeverity = "critical"
)

type (
	AuditEventType string
	AuditSeverity  string

	// AuditEvent is append-only: application code never updates or
	// deletes one.
	AuditEvent struct {
		ID        string
		OwnerID   string
		Type      AuditEventType
		Severity  AuditSeverity
		Metadata  map[string]string
		CreatedAt time.Time
	}
)
