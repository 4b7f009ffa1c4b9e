package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrLoanNotFound is returned when the loan id does not resolve.
	ErrLoanNotFound = errors.New("loan not found")

	// ErrLoanAlreadyClosed is returned when a transition is attempted on
	// a loan that is no longer active (returned or expired).
	ErrLoanAlreadyClosed = errors.New("loan is already closed")
)

// NewLoanNotFoundError creates a detailed not found error.
func NewLoanNotFoundError(id uuid.UUID) error {
	return fmt.Errorf("%w: id=%s", ErrLoanNotFound, id)
}

// NewLoanAlreadyClosedError creates an error carrying the terminal status.
func NewLoanAlreadyClosedError(id uuid.UUID, status Status) error {
	return fmt.Errorf("%w: id=%s status=%s", ErrLoanAlreadyClosed, id, status)
}

// IsNotFoundError checks if err is a loan not found error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrLoanNotFound)
}

// IsAlreadyClosedError checks if err is an already closed error.
func IsAlreadyClosedError(err error) bool {
	return errors.Is(err, ErrLoanAlreadyClosed)
}
