package service

import (
	bookModel "library-backend/internal/domains/book/model"
	"library-backend/internal/domains/loan/model"
	patronModel "library-backend/internal/domains/patron/model"
)

// The enforcer is the pure validation layer run before every mutating
// ledger operation. It inspects entity snapshots only, never performs
// I/O, and never mutates. The availability check here is advisory: the
// authoritative guard is inside the repository's atomic adjustment,
// which catches races this pre-check cannot see.

// ValidateIssue checks a prospective issue against current snapshots of
// the book and the patron.
func ValidateIssue(book *bookModel.Book, patron *patronModel.Patron) error {
	if book == nil {
		return bookModel.ErrBookNotFound
	}
	if !book.IsAvailable() {
		return bookModel.ErrBookUnavailable
	}
	if patron == nil {
		return patronModel.ErrPatronNotFound
	}
	if !patron.Active {
		return patronModel.ErrPatronInactive
	}
	return nil
}

// ValidateReturn checks that a loan can still transition out of active.
func ValidateReturn(loan *model.Loan) error {
	if loan == nil {
		return model.ErrLoanNotFound
	}
	if loan.Status != model.StatusActive {
		return model.NewLoanAlreadyClosedError(loan.ID, loan.Status)
	}
	return nil
}
