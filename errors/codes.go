// Package errors provides the structured error handling system used across
// projsweep. It extends Go's standard error handling with string error codes,
// retry classification, and wrapping helpers that stay compatible with
// errors.Is and errors.As.
package errors

// ErrorCode represents a specific error condition.
// Error codes are string-based for debuggability and natural JSON serialization.
type ErrorCode string

const (
	// CodeNotFound indicates a requested path or resource does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeInvalidInput indicates the provided input is invalid or malformed.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeInvalidConfig indicates a configuration error prevents the operation.
	CodeInvalidConfig ErrorCode = "INVALID_CONFIGURATION"

	// CodeIO indicates a filesystem operation failed on a directory or file
	// the operation could not proceed without.
	CodeIO ErrorCode = "IO_ERROR"

	// CodeCacheFailed indicates the size cache could not be read or written.
	CodeCacheFailed ErrorCode = "CACHE_FAILED"

	// CodeTimeout indicates an operation exceeded its time limit.
	CodeTimeout ErrorCode = "TIMEOUT"

	// CodeCancelled indicates an operation was cancelled by its caller.
	CodeCancelled ErrorCode = "CANCELLED"

	// CodeInternal indicates an internal error occurred.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// CodeUnknown indicates an unknown or unclassified error occurred.
	CodeUnknown ErrorCode = "UNKNOWN"
)
