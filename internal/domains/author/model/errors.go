package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrAuthorNotFound is returned when the author id does not resolve.
	ErrAuthorNotFound = errors.New("author not found")

	// ErrDeathBeforeBirth is returned when death date precedes birth date.
	ErrDeathBeforeBirth = errors.New("death date must be after birth date")
)

// NewAuthorNotFoundError creates a detailed not found error.
func NewAuthorNotFoundError(id uuid.UUID) error {
	return fmt.Errorf("%w: id=%s", ErrAuthorNotFound, id)
}

// IsNotFoundError checks if err is an author not found error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrAuthorNotFound)
}
