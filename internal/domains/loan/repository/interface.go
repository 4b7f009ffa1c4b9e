package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"library-backend/internal/domains/loan/model"
)

// RepositoryInterface defines loan ledger data access. Every mutating
// method is one transaction: the loan write and its matching inventory
// adjustment either both commit or neither does.
type RepositoryInterface interface {
	// Create inserts an active loan and decrements the book's available
	// copies as one atomic unit. Returns ErrBookUnavailable when the
	// decrement loses the race for the last copy, ErrBookNotFound when
	// the referenced book is gone; in both cases no loan is persisted.
	Create(ctx context.Context, loan *model.Loan) error

	// MarkReturned transitions an active loan to returned, records the
	// return date and fine, and increments the book's available copies
	// atomically. Returns ErrLoanNotFound or ErrLoanAlreadyClosed.
	MarkReturned(ctx context.Context, id uuid.UUID, returnedAt time.Time, fine decimal.Decimal) (*model.Loan, error)

	// ExpireOverdue transitions every active loan with due_date < asOf
	// to expired and returns the number transitioned. Inventory is not
	// touched: the copies are still out. Idempotent for a fixed asOf.
	ExpireOverdue(ctx context.Context, asOf time.Time) (int, error)

	GetByID(ctx context.Context, id uuid.UUID) (*model.Loan, error)
	ListByPatron(ctx context.Context, patronID uuid.UUID, filter model.ListLoansRequest) ([]model.Loan, int, error)
}
