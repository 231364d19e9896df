package logging

// Field names shared by log records.
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldQuery      = "query"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldUserID     = "user_id"
	FieldSourceID   = "source_id"
	FieldExpenseID  = "expense_id"
	FieldEvent      = "event"
)

const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentAuth     = "auth"
	ComponentSources  = "sources"
	ComponentExpenses = "expenses"
	ComponentStorage  = "storage"
	ComponentEvents   = "events"
)

const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
	OpList   = "list"
	OpSignUp = "signup"
	OpLogin  = "login"
	OpExport = "export"
)
