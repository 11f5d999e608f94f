package core

import (
	"errors"
	"fmt"
)

// Predefined errors returned by PGRest operations.
var (
	// ErrNoRows is returned when a call that expects a row returns no results.
	ErrNoRows = errors.New("no rows in result set")
	// ErrInvalidModelType is returned when an invalid model type is provided.
	ErrInvalidModelType = errors.New("invalid model type")
	// ErrMissingPrimaryKey is returned when a model operation needs a primary
	// key and the struct does not declare one.
	ErrMissingPrimaryKey = errors.New("primary key not found")
)

// ErrorKind classifies an execution error: something the gateway (or the
// transport below it) reported after the request left the builder. The set
// is closed so callers can branch on it without string matching.
type ErrorKind string

const (
	// KindCardinality marks a single/maybeSingle request that matched a row
	// count the singular media type cannot represent.
	KindCardinality ErrorKind = "cardinality"
	// KindConflict marks a unique or foreign-key violation.
	KindConflict ErrorKind = "conflict"
	// KindValidation marks a request the gateway rejected as malformed.
	KindValidation ErrorKind = "validation"
	// KindNotFound marks an unknown resource or route.
	KindNotFound ErrorKind = "not_found"
	// KindPermission marks missing or insufficient authorization.
	KindPermission ErrorKind = "permission"
	// KindServer marks any other gateway-side failure.
	KindServer ErrorKind = "server"
	// KindTransport marks a request that never produced a response.
	KindTransport ErrorKind = "transport"
)

// ErrorDescriptor is a classified execution error. Message, Details, Hint,
// and Code carry the gateway's error envelope verbatim; Status is the HTTP
// status code, zero when no response was received.
type ErrorDescriptor struct {
	Kind    ErrorKind
	Message string
	Details string
	Hint    string
	Code    string
	Status  int
	cause   error
}

// Error implements the error interface.
func (e *ErrorDescriptor) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("pgrest: %s (%s): %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("pgrest: %s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause, if any. Only transport errors carry
// one; gateway-classified errors originate from the response body.
func (e *ErrorDescriptor) Unwrap() error {
	return e.cause
}

// AsErrorDescriptor extracts an *ErrorDescriptor from an error chain.
func AsErrorDescriptor(err error) (*ErrorDescriptor, bool) {
	var desc *ErrorDescriptor
	if errors.As(err, &desc) {
		return desc, true
	}
	return nil, false
}

func isKind(err error, kind ErrorKind) bool {
	desc, ok := AsErrorDescriptor(err)
	return ok && desc.Kind == kind
}

// IsCardinality reports whether err is a cardinality mismatch.
func IsCardinality(err error) bool { return isKind(err, KindCardinality) }

// IsConflict reports whether err is a unique or foreign-key violation.
func IsConflict(err error) bool { return isKind(err, KindConflict) }

// IsValidation reports whether err is a request the gateway rejected as malformed.
func IsValidation(err error) bool { return isKind(err, KindValidation) }

// IsNotFound reports whether err is an unknown resource or route.
func IsNotFound(err error) bool { return isKind(err, KindNotFound) }

// IsPermission reports whether err is an authorization failure.
func IsPermission(err error) bool { return isKind(err, KindPermission) }

// IsServer reports whether err is an unclassified gateway failure.
func IsServer(err error) bool { return isKind(err, KindServer) }

// IsTransport reports whether err means no response was received.
func IsTransport(err error) bool { return isKind(err, KindTransport) }

// ConfigError reports invalid builder usage: an empty in() list, an illegal
// is() value, conflicting pagination and cardinality modes, and similar
// mistakes. It is detected before any network I/O and never coerced into a
// working request.
type ConfigError struct {
	Op  string // builder operation that was misused, e.g. "In" or "Range"
	Msg string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Op != "" {
		return "pgrest: " + e.Op + ": " + e.Msg
	}
	return "pgrest: " + e.Msg
}

// IsConfigError reports whether err is a builder configuration error.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

func configErrorf(op, format string, args ...interface{}) *ConfigError {
	return &ConfigError{Op: op, Msg: fmt.Sprintf(format, args...)}
}

// WrapError wraps an error with additional context message.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return &wrappedError{
		msg: message,
		err: err,
	}
}

type wrappedError struct {
	msg string
	err error
}

func (e *wrappedError) Error() string {
	return e.msg + ": " + e.err.Error()
}

func (e *wrappedError) Unwrap() error {
	return e.err
}
