package log

// Common field names for structured logging.
const (
	FieldComponent  = "component"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldCompany    = "company"
	FieldExpenseID  = "expense_id"
	FieldViewType   = "view_type"
)

// Standard component names.
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentExpense  = "expense"
	ComponentRowStore = "rowstore"
	ComponentAMQP     = "amqp"
	ComponentWorker   = "worker"
	ComponentMirror   = "mirror"
)
