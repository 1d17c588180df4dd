package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for classification with errors.Is.
var (
	ErrObjectNotFound  = errors.New("object not found")
	ErrValueIsInvalid  = errors.New("value is invalid")
	ErrValueIsRequired = errors.New("value is required")
	ErrStaleState      = errors.New("state is stale")
	ErrGateway         = errors.New("payment gateway call failed")
	ErrCarrier         = errors.New("shipping carrier call failed")
)

// sanitize strips newlines from values before they end up in log lines.
func sanitize(v any) string {
	return strings.ReplaceAll(fmt.Sprintf("%v", v), "\n", " ")
}

// ObjectNotFoundError indicates that a requested object does not exist.
type ObjectNotFoundError struct {
	ParamName string
	ID        any
	Cause     error
}

// NewObjectNotFoundError creates an ObjectNotFoundError for the given parameter and id.
func NewObjectNotFoundError(paramName string, id any) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id}
}

// NewObjectNotFoundErrorWithCause creates an ObjectNotFoundError wrapping an underlying cause.
func NewObjectNotFoundErrorWithCause(paramName string, id any, cause error) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id, Cause: cause}
}

func (e *ObjectNotFoundError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: param is: %s, ID is: %s (cause: %v)",
			ErrObjectNotFound, e.ParamName, sanitize(e.ID), e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrObjectNotFound, sanitize(e.ID))
}

func (e *ObjectNotFoundError) Unwrap() error {
	return ErrObjectNotFound
}

// ValueIsInvalidError indicates that a supplied value failed validation.
type ValueIsInvalidError struct {
	ParamName string
	Cause     error
}

// NewValueIsInvalidError creates a ValueIsInvalidError for the given parameter.
func NewValueIsInvalidError(paramName string) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName}
}

// NewValueIsInvalidErrorWithCause creates a ValueIsInvalidError wrapping an underlying cause.
func NewValueIsInvalidErrorWithCause(paramName string, cause error) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsInvalidError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrValueIsInvalid, e.ParamName, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrValueIsInvalid, e.ParamName)
}

func (e *ValueIsInvalidError) Unwrap() error {
	return ErrValueIsInvalid
}

// ValueIsRequiredError indicates that a required value is missing.
type ValueIsRequiredError struct {
	ParamName string
	Cause     error
}

// NewValueIsRequiredError creates a ValueIsRequiredError for the given parameter.
func NewValueIsRequiredError(paramName string) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName}
}

// NewValueIsRequiredErrorWithCause creates a ValueIsRequiredError wrapping an underlying cause.
func NewValueIsRequiredErrorWithCause(paramName string, cause error) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsRequiredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrValueIsRequired, e.ParamName, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrValueIsRequired, e.ParamName)
}

func (e *ValueIsRequiredError) Unwrap() error {
	return ErrValueIsRequired
}

// StaleStateError indicates that a compare-and-set update lost a race:
// the stored status no longer matched the expected prior statuses.
// Callers re-read fresh state and decide whether to no-op or re-derive.
type StaleStateError struct {
	ParamName string
	ID        any
}

// NewStaleStateError creates a StaleStateError for the given object.
func NewStaleStateError(paramName string, id any) *StaleStateError {
	return &StaleStateError{ParamName: paramName, ID: id}
}

func (e *StaleStateError) Error() string {
	return fmt.Sprintf("%s: param is: %s, ID is: %s", ErrStaleState, e.ParamName, sanitize(e.ID))
}

func (e *StaleStateError) Unwrap() error {
	return ErrStaleState
}

// GatewayError indicates a failed payment gateway call. Side-effect-creating
// gateway calls are never silently retried; the error is surfaced to an operator.
type GatewayError struct {
	Op    string
	Cause error
}

// NewGatewayError creates a GatewayError for the given gateway operation.
func NewGatewayError(op string, cause error) *GatewayError {
	return &GatewayError{Op: op, Cause: cause}
}

func (e *GatewayError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrGateway, e.Op, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrGateway, e.Op)
}

func (e *GatewayError) Unwrap() error {
	return ErrGateway
}

// CarrierError indicates a failed shipping carrier call. Shipment creation is
// never auto-retried: carrier creation is not guaranteed idempotent.
type CarrierError struct {
	Op    string
	Cause error
}

// NewCarrierError creates a CarrierError for the given carrier operation.
func NewCarrierError(op string, cause error) *CarrierError {
	return &CarrierError{Op: op, Cause: cause}
}

func (e *CarrierError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrCarrier, e.Op, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrCarrier, e.Op)
}

func (e *CarrierError) Unwrap() error {
	return ErrCarrier
}
