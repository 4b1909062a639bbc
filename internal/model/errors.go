package model

import "fmt"

// FormatError means the input does not match the expected shape or length
// for its class. It is locally recoverable: validators fold it into the
// Verdict and never let it escape the validator boundary.
type FormatError struct {
	Class   Class
	Field   string
	Message string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Class, e.Field, e.Message)
}

// NewFormatError creates a new format error.
func NewFormatError(class Class, field, message string) *FormatError {
	return &FormatError{Class: class, Field: field, Message: message}
}

// ChecksumError means the format was valid but a checksum did not verify.
type ChecksumError struct {
	Class    Class
	Expected int
	Actual   int
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("[%s] checksum mismatch: expected %d, got %d", e.Class, e.Expected, e.Actual)
}

// NewChecksumError creates a new checksum error.
func NewChecksumError(class Class, expected, actual int) *ChecksumError {
	return &ChecksumError{Class: class, Expected: expected, Actual: actual}
}

// NotFoundError means no rule exists for a (class, country) pair. Validators
// must treat it as "format check only, no checksum possible", never as a
// silent pass and never as invalid.
type NotFoundError struct {
	Class   Class
	Country string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no format rule for class %s, country %s", e.Class, e.Country)
}

// NewNotFoundError creates a new not-found error.
func NewNotFoundError(class Class, country string) *NotFoundError {
	return &NotFoundError{Class: class, Country: country}
}

// ServiceUnavailableError means an external registry was unreachable or timed
// out. It is propagated to the caller as a distinct condition, decoupled from
// an Invalid verdict, so retry decisions stay external.
type ServiceUnavailableError struct {
	Service string
	Cause   error
}

func (e *ServiceUnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s unavailable: %v", e.Service, e.Cause)
	}
	return fmt.Sprintf("%s unavailable", e.Service)
}

func (e *ServiceUnavailableError) Unwrap() error {
	return e.Cause
}

// NewServiceUnavailableError creates a new service-unavailable error.
func NewServiceUnavailableError(service string, cause error) *ServiceUnavailableError {
	return &ServiceUnavailableError{Service: service, Cause: cause}
}

// PersistenceError means a ledger write failed. Generate must fail atomically:
// no number is considered issued when this is returned.
type PersistenceError struct {
	Op    string
	Cause error
}

func (e *PersistenceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("ledger persistence failed [%s]: %v", e.Op, e.Cause)
	}
	return fmt.Sprintf("ledger persistence failed [%s]", e.Op)
}

func (e *PersistenceError) Unwrap() error {
	return e.Cause
}

// NewPersistenceError creates a new persistence error.
func NewPersistenceError(op string, cause error) *PersistenceError {
	return &PersistenceError{Op: op, Cause: cause}
}

// ParseError means a document could not be parsed into the invoice schema.
type ParseError struct {
	Syntax  string
	Field   string
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error [%s] %s: %s: %v", e.Syntax, e.Field, e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error [%s] %s: %s", e.Syntax, e.Field, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// NewParseError creates a new parse error.
func NewParseError(syntax, field, message string, cause error) *ParseError {
	return &ParseError{Syntax: syntax, Field: field, Message: message, Cause: cause}
}
