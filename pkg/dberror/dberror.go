// Package dberror defines the structured error type shared by the storage
// core. Every error carries a Kind that tells the caller how to react:
// usage and configuration errors are programming mistakes, not-found errors
// name a missing table or record, storage errors come from file I/O and
// resource errors from an exhausted page cache.
package dberror

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Kind classifies errors by their nature and appropriate handling strategy.
type Kind int

const (
	// KindUsage is a protocol violation: iterating a closed operator,
	// reading past the end of a stream.
	KindUsage Kind = iota

	// KindConfiguration is an invalid construction, e.g. SUM over a string
	// field or a tuple whose schema does not match its table.
	KindConfiguration

	// KindNotFound names an unknown table or a record id that does not
	// point at an occupied slot.
	KindNotFound

	// KindStorageIO is a file read/write failure, including short reads.
	KindStorageIO

	// KindResourceExhausted means a bounded structure had no room left.
	KindResourceExhausted
)

func (k Kind) String() string {
	switch k {
	case KindUsage:
		return "USAGE"
	case KindConfiguration:
		return "CONFIGURATION"
	case KindNotFound:
		return "NOT_FOUND"
	case KindStorageIO:
		return "STORAGE_IO"
	case KindResourceExhausted:
		return "RESOURCE_EXHAUSTED"
	default:
		return "UNKNOWN"
	}
}

// DBError represents a structured database error with context information.
type DBError struct {
	// Code is a unique identifier for this error type (e.g., "SLOT_EMPTY").
	Code string

	// Kind classifies the error for appropriate handling strategy.
	Kind Kind

	// Message is a human-readable description of what went wrong.
	Message string

	// Detail provides additional context about the specific error instance.
	Detail string

	// Operation identifies the operation that was being performed
	// (e.g. "InsertTuple", "GetPage").
	Operation string

	// Component identifies where the error originated (e.g. "HeapFile").
	Component string

	// Cause is the underlying error, if any. It carries the stack captured
	// when the DBError was created.
	Cause error
}

func newError(kind Kind, code, message string) *DBError {
	return &DBError{
		Code:    code,
		Kind:    kind,
		Message: message,
		Cause:   errors.New(message),
	}
}

// New creates a new DBError with the specified kind, code, and message.
func New(kind Kind, code, message string) *DBError {
	return newError(kind, code, message)
}

// Usage creates a protocol-violation error.
func Usage(code, format string, args ...any) *DBError {
	return newError(KindUsage, code, fmt.Sprintf(format, args...))
}

// Configuration creates an invalid-construction error.
func Configuration(code, format string, args ...any) *DBError {
	return newError(KindConfiguration, code, fmt.Sprintf(format, args...))
}

// NotFound creates a missing table/record error.
func NotFound(code, format string, args ...any) *DBError {
	return newError(KindNotFound, code, fmt.Sprintf(format, args...))
}

// ResourceExhausted creates a bounded-resource error.
func ResourceExhausted(code, format string, args ...any) *DBError {
	return newError(KindResourceExhausted, code, fmt.Sprintf(format, args...))
}

// StorageIO wraps a file-system failure. A nil cause still produces an
// error so that short reads can be reported without an underlying error.
func StorageIO(cause error, code, format string, args ...any) *DBError {
	msg := fmt.Sprintf(format, args...)
	if cause == nil {
		return newError(KindStorageIO, code, msg)
	}
	return &DBError{
		Code:    code,
		Kind:    KindStorageIO,
		Message: msg,
		Cause:   errors.WithStack(cause),
	}
}

// Wrap attaches operation and component context to err. If err already is
// (or wraps) a DBError, that error is enriched and returned so its kind is
// preserved; any other error becomes a storage error.
func Wrap(err error, code, operation, component string) *DBError {
	if err == nil {
		return nil
	}

	var dbErr *DBError
	if errors.As(err, &dbErr) {
		if dbErr.Operation == "" {
			dbErr.Operation = operation
		}
		if dbErr.Component == "" {
			dbErr.Component = component
		}
		return dbErr
	}

	return &DBError{
		Code:      code,
		Kind:      KindStorageIO,
		Message:   err.Error(),
		Operation: operation,
		Component: component,
		Cause:     errors.WithStack(err),
	}
}

// WithDetail sets the detail text and returns the error for chaining.
func (e *DBError) WithDetail(format string, args ...any) *DBError {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// In sets operation and component context and returns the error.
func (e *DBError) In(operation, component string) *DBError {
	e.Operation = operation
	e.Component = component
	return e
}

// Error implements the error interface.
//
// The format follows the pattern:
// [CODE] Message: Detail (operation: Operation, component: Component)
func (e *DBError) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)

	if e.Detail != "" {
		fmt.Fprintf(&b, ": %s", e.Detail)
	}

	if e.Operation != "" {
		fmt.Fprintf(&b, " (operation: %s", e.Operation)
		if e.Component != "" {
			fmt.Fprintf(&b, ", component: %s", e.Component)
		}
		b.WriteString(")")
	}

	if e.Cause != nil && errors.Cause(e.Cause).Error() != e.Message {
		fmt.Fprintf(&b, " caused by: %v", errors.Cause(e.Cause))
	}

	return b.String()
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (e *DBError) Unwrap() error {
	return e.Cause
}

// FormatStack returns the stack recorded when the error was created.
func (e *DBError) FormatStack() string {
	if e.Cause == nil {
		return ""
	}
	return fmt.Sprintf("%+v", e.Cause)
}

// KindOf reports the kind of the first DBError in err's chain.
func KindOf(err error) (Kind, bool) {
	var dbErr *DBError
	if errors.As(err, &dbErr) {
		return dbErr.Kind, true
	}
	return 0, false
}

func isKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// IsUsage reports whether err is a protocol violation.
func IsUsage(err error) bool { return isKind(err, KindUsage) }

// IsConfiguration reports whether err is an invalid-construction error.
func IsConfiguration(err error) bool { return isKind(err, KindConfiguration) }

// IsNotFound reports whether err names a missing table or record.
func IsNotFound(err error) bool { return isKind(err, KindNotFound) }

// IsStorageIO reports whether err is a file I/O failure.
func IsStorageIO(err error) bool { return isKind(err, KindStorageIO) }

// IsResourceExhausted reports whether err is a bounded-resource failure.
func IsResourceExhausted(err error) bool { return isKind(err, KindResourceExhausted) }
