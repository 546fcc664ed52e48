package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError reports invalid or missing input. Fields lists the offending
// input names when the failure is about missing data.
type ValidationError struct {
	Message string
	Fields  []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Fields, ", "))
}

// NewValidationError creates a ValidationError with the given message.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// NewMissingFieldsError creates a ValidationError naming every missing field.
func NewMissingFieldsError(fields ...string) *ValidationError {
	return &ValidationError{Message: "missing required fields", Fields: fields}
}

// NotFoundError reports that a referenced entity does not exist.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

// NewNotFoundError creates a NotFoundError.
func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

// InvalidStateError reports a lifecycle transition that is not allowed.
type InvalidStateError struct {
	From string
	To   string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid state transition from %s to %s", e.From, e.To)
}

// NewInvalidStateError creates an InvalidStateError.
func NewInvalidStateError(from, to string) *InvalidStateError {
	return &InvalidStateError{From: from, To: to}
}

// ConflictError reports a lost compare-and-swap or a duplicate write.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// NewConflictError creates a ConflictError.
func NewConflictError(message string) *ConflictError {
	return &ConflictError{Message: message}
}

// ForbiddenError reports an actor operating on a resource it does not own.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string { return e.Message }

// NewForbiddenError creates a ForbiddenError.
func NewForbiddenError(message string) *ForbiddenError {
	return &ForbiddenError{Message: message}
}

// SlotUnavailableError reports that a celebrity already has a confirmed
// booking for the requested date and time slot.
type SlotUnavailableError struct {
	CelebrityID string
	Date        string
	TimeSlot    string
}

func (e *SlotUnavailableError) Error() string {
	return fmt.Sprintf("slot unavailable for celebrity %s on %s at %s", e.CelebrityID, e.Date, e.TimeSlot)
}

// NewSlotUnavailableError creates a SlotUnavailableError.
func NewSlotUnavailableError(celebrityID, date, timeSlot string) *SlotUnavailableError {
	return &SlotUnavailableError{CelebrityID: celebrityID, Date: date, TimeSlot: timeSlot}
}

// ExternalServiceError wraps a failure of an outbound collaborator such as the
// payment processor or the payout function.
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

// NewExternalServiceError creates an ExternalServiceError.
func NewExternalServiceError(service string, err error) *ExternalServiceError {
	return &ExternalServiceError{Service: service, Err: err}
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsConflict reports whether err is (or wraps) a ConflictError.
func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

// IsInvalidState reports whether err is (or wraps) an InvalidStateError.
func IsInvalidState(err error) bool {
	var target *InvalidStateError
	return errors.As(err, &target)
}
