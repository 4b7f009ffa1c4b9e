package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"library-backend/internal/domains/loan/model"
)

// ServiceInterface is the loan ledger: it orchestrates issue, return and
// expiry, enforcing cross-entity consistency before any mutation.
type ServiceInterface interface {
	IssueLoan(ctx context.Context, req *model.IssueLoanRequest, now time.Time) (*model.Loan, error)
	ReturnLoan(ctx context.Context, loanID uuid.UUID, now time.Time) (*model.Loan, error)
	ExpireOverdueLoans(ctx context.Context, now time.Time) (int, error)
	GetByID(ctx context.Context, loanID uuid.UUID) (*model.Loan, error)
	GetActiveLoansForPatron(ctx context.Context, patronID uuid.UUID) ([]model.Loan, error)
	ListLoansForPatron(ctx context.Context, patronID uuid.UUID, filter model.ListLoansRequest) ([]model.Loan, int, error)
}
