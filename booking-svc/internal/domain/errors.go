package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation             = errors.New("validation failed")
	ErrNotFound               = errors.New("not found")
	ErrInvalidTransition      = errors.New("invalid status transition")
	ErrBlockedDate            = errors.New("date is blocked")
	ErrOutsideOperatingHours  = errors.New("requested time is outside operating hours")
	ErrCapacityExceeded       = errors.New("no reservations left for this date")
	ErrStorageUnavailable     = errors.New("storage unavailable")
	ErrReconciliationConflict = errors.New("duplicate records for one id")
	ErrReconciliationRunning  = errors.New("reconciliation already running")
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s", ErrInvalidTransition, e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

type BlockedDateError struct {
	Date   string
	Reason string
}

func (e *BlockedDateError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: %s", ErrBlockedDate, e.Date)
	}
	return fmt.Sprintf("%s: %s (%s)", ErrBlockedDate, e.Date, e.Reason)
}

func (e *BlockedDateError) Unwrap() error {
	return ErrBlockedDate
}
