package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrPatronNotFound is returned when the patron id does not resolve.
	ErrPatronNotFound = errors.New("patron not found")

	// ErrPatronInactive is returned when a loan is requested for a
	// deactivated patron. Existing loans stay valid for return.
	ErrPatronInactive = errors.New("patron is not active")

	// ErrDuplicateEmail is returned on an email uniqueness violation.
	ErrDuplicateEmail = errors.New("a patron with this email already exists")

	// ErrDuplicateFiscalCode is returned on a fiscal code uniqueness violation.
	ErrDuplicateFiscalCode = errors.New("a patron with this fiscal code already exists")
)

// NewPatronNotFoundError creates a detailed not found error.
func NewPatronNotFoundError(id uuid.UUID) error {
	return fmt.Errorf("%w: id=%s", ErrPatronNotFound, id)
}

// IsNotFoundError checks if err is a patron not found error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrPatronNotFound)
}

// IsDuplicateError checks if err is a uniqueness violation.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicateEmail) || errors.Is(err, ErrDuplicateFiscalCode)
}
