package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrBookNotFound is returned when the book id does not resolve.
	ErrBookNotFound = errors.New("book not found")

	// ErrBookUnavailable is returned when no copies are left to lend.
	ErrBookUnavailable = errors.New("no copies available")

	// ErrDuplicateISBN is returned on an ISBN uniqueness violation.
	ErrDuplicateISBN = errors.New("a book with this ISBN already exists")

	// ErrAuthorNotFound is returned when the referenced author does not exist.
	ErrAuthorNotFound = errors.New("referenced author not found")

	// ErrOverdraw is returned when an availability adjustment would drive
	// copies_available outside [0, copies_total]. Never clamped silently.
	ErrOverdraw = errors.New("availability adjustment out of range")
)

// NewBookNotFoundError creates a detailed not found error.
func NewBookNotFoundError(id uuid.UUID) error {
	return fmt.Errorf("%w: id=%s", ErrBookNotFound, id)
}

// NewOverdrawError creates an overdraw error with adjustment details.
func NewOverdrawError(id uuid.UUID, delta, available, total int) error {
	return fmt.Errorf("%w: book=%s delta=%d available=%d total=%d",
		ErrOverdraw, id, delta, available, total)
}

// IsNotFoundError checks if err is a book not found error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrBookNotFound)
}

// IsOverdrawError checks if err is an overdraw error.
func IsOverdrawError(err error) bool {
	return errors.Is(err, ErrOverdraw)
}
