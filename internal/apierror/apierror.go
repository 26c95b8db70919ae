// Package apierror defines the error envelopes every 4xx/5xx response uses.
// Handlers go through it so clients always get the same shape and internal
// detail (SQL errors, stack traces) never reaches the wire.
package apierror

// APIError carries a single human-readable message.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError adds the per-field messages produced by request validation.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}
