package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldOperation   = "operation"
	FieldError       = "error"
	FieldOwnerID     = "owner_id"
	FieldWalletID    = "wallet_id"
	FieldTxID        = "transaction_id"
	FieldTemplateID  = "template_id"
	FieldAmountCents = "amount_cents"
	FieldCount       = "count"
	FieldDuration    = "duration_ms"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentLedger    = "ledger"
	ComponentWallets   = "wallets"
	ComponentCatalog   = "catalog"
	ComponentScheduler = "scheduler"
	ComponentImporter  = "importer"
	ComponentAnalytics = "analytics"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
)

// Operations defines standard operation names
const (
	OpCreate      = "create"
	OpRead        = "read"
	OpUpdate      = "update"
	OpDelete      = "delete"
	OpList        = "list"
	OpSettle      = "settle"
	OpMaterialize = "materialize"
	OpImport      = "import"
	OpVerify      = "verify"
	OpPublish     = "publish"
	OpStartup     = "startup"
	OpShutdown    = "shutdown"
)
