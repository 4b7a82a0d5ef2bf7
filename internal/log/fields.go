package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"

	FieldUserKey     = "user_key"
	FieldAccountID   = "account_id"
	FieldTxnID       = "transaction_id"
	FieldMerchant    = "merchant"
	FieldCategory    = "category"
	FieldAmount      = "amount"
	FieldConfidence  = "confidence"
	FieldAlertKind   = "alert_kind"
	FieldAlertCount  = "alert_count"
	FieldRowCount    = "row_count"
	FieldUpdated     = "updated"
	FieldBudgetLimit = "monthly_limit"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentStore     = "store"
	ComponentEngine    = "engine"
	ComponentAlerts    = "alerts"
	ComponentInsights  = "insights"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentCache     = "cache"
	ComponentRateLimit = "rate_limit"
)

// Operations defines standard operation names
const (
	OpRegister  = "register"
	OpSeed      = "seed"
	OpImport    = "import"
	OpRebuild   = "rebuild"
	OpUpsert    = "upsert"
	OpRecompute = "recompute"
	OpList      = "list"
	OpSummary   = "summary"
	OpForecast  = "forecast"
	OpPublish   = "publish"
	OpConsume   = "consume"
	OpStartup   = "startup"
	OpShutdown  = "shutdown"
)
