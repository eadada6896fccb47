package warehouse

import "fmt"

// EngineError represents an engine-level error with a stable code.
type EngineError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *EngineError) Error() string {
	return e.Message
}

// NewEngineError creates a new engine error
func NewEngineError(code, message string) *EngineError {
	return &EngineError{Code: code, Message: message}
}

// Common engine errors
var (
	ErrEmptyBatch       = NewEngineError("EMPTY_BATCH", "input batch contains no rows")
	ErrMissingColumn    = NewEngineError("MISSING_COLUMN", "required column is missing")
	ErrMalformedDate    = NewEngineError("MALFORMED_DATE", "date value could not be parsed")
	ErrOrphanRows       = NewEngineError("ORPHAN_ROWS", "join produced orphan rows in strict mode")
	ErrInvalidBinLabels = NewEngineError("INVALID_BIN_LABELS", "quantile bin labels do not match break count")
)

// ValidationError marks bad input detected before any computation begins.
// A validation failure aborts only the analytic product it was raised in;
// sibling products still run.
type ValidationError struct {
	Op     string // operation that rejected the input
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a validation error for the given operation.
func NewValidationError(op, reason string) *ValidationError {
	return &ValidationError{Op: op, Reason: reason}
}

// WrapValidationError wraps an underlying cause.
func WrapValidationError(op, reason string, err error) *ValidationError {
	return &ValidationError{Op: op, Reason: reason, Err: err}
}
