package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	bookRepo "library-backend/internal/domains/book/repository"
	bookService "library-backend/internal/domains/book/service"
	"library-backend/internal/domains/loan/model"
	"library-backend/internal/domains/loan/repository"
	patronRepo "library-backend/internal/domains/patron/repository"
	"library-backend/pkg/cache"
	"library-backend/pkg/logger"
)

// Policy holds the lending policy knobs applied by the ledger.
type Policy struct {
	LoanPeriod       time.Duration
	DailyOverdueFine decimal.Decimal
}

type ledgerService struct {
	loans   repository.RepositoryInterface
	books   bookRepo.RepositoryInterface
	patrons patronRepo.RepositoryInterface
	cache   cache.Cache
	policy  Policy
}

// NewLedgerService creates the loan ledger. It reads books and patrons
// through their repositories directly, not the cached services, so every
// validation sees a current snapshot.
func NewLedgerService(
	loans repository.RepositoryInterface,
	books bookRepo.RepositoryInterface,
	patrons patronRepo.RepositoryInterface,
	c cache.Cache,
	policy Policy,
) ServiceInterface {
	return &ledgerService{
		loans:   loans,
		books:   books,
		patrons: patrons,
		cache:   c,
		policy:  policy,
	}
}

// IssueLoan validates the request against current book and patron
// snapshots, then persists the loan and the availability decrement as
// one transaction. If the decrement loses a race for the last copy the
// loan is not persisted and the caller sees ErrBookUnavailable.
func (s *ledgerService) IssueLoan(ctx context.Context, req *model.IssueLoanRequest, now time.Time) (*model.Loan, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	book, err := s.books.GetByID(ctx, req.BookID)
	if err != nil {
		return nil, err
	}

	patron, err := s.patrons.GetByID(ctx, req.PatronID)
	if err != nil {
		return nil, err
	}

	if err := ValidateIssue(book, patron); err != nil {
		return nil, err
	}

	loan := &model.Loan{
		ID:       uuid.New(),
		BookID:   book.ID,
		PatronID: patron.ID,
		LoanDate: now,
		DueDate:  now.Add(s.policy.LoanPeriod),
		Patron: model.PatronSnapshot{
			Name:  patron.DisplayName(),
			Email: patron.Email,
		},
		Status:     model.StatusActive,
		Note:       req.Note,
		FineAmount: decimal.Zero,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.loans.Create(ctx, loan); err != nil {
		return nil, err
	}

	s.invalidateBook(ctx, book.ID)

	logger.Info("Loan issued", map[string]interface{}{
		"loan_id":   loan.ID,
		"book_id":   loan.BookID,
		"patron_id": loan.PatronID,
		"due_date":  loan.DueDate,
	})

	return loan, nil
}

// ReturnLoan transitions an active loan to returned and gives the copy
// back to the shelf. Loans of deactivated patrons remain returnable.
func (s *ledgerService) ReturnLoan(ctx context.Context, loanID uuid.UUID, now time.Time) (*model.Loan, error) {
	loan, err := s.loans.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}

	if err := ValidateReturn(loan); err != nil {
		return nil, err
	}

	fine := decimal.Zero
	if daysLate := loan.DaysLate(now); daysLate > 0 {
		fine = s.policy.DailyOverdueFine.Mul(decimal.NewFromInt(int64(daysLate)))
	}

	// The repository re-checks status under the row guard, so a
	// concurrent return of the same loan fails with ErrLoanAlreadyClosed.
	updated, err := s.loans.MarkReturned(ctx, loanID, now, fine)
	if err != nil {
		return nil, err
	}

	s.invalidateBook(ctx, updated.BookID)

	logger.Info("Loan returned", map[string]interface{}{
		"loan_id":     updated.ID,
		"book_id":     updated.BookID,
		"fine_amount": updated.FineAmount,
	})

	return updated, nil
}

// ExpireOverdueLoans transitions every active loan past due at now to
// expired. Pure status change: the books are still physically out, so
// inventory is untouched. Safe to re-run with the same instant.
func (s *ledgerService) ExpireOverdueLoans(ctx context.Context, now time.Time) (int, error) {
	count, err := s.loans.ExpireOverdue(ctx, now)
	if err != nil {
		return 0, err
	}

	if count > 0 {
		logger.Info("Overdue loans expired", map[string]interface{}{
			"count": count,
			"as_of": now,
		})
	}

	return count, nil
}

func (s *ledgerService) GetByID(ctx context.Context, loanID uuid.UUID) (*model.Loan, error) {
	return s.loans.GetByID(ctx, loanID)
}

// GetActiveLoansForPatron returns the patron's open loans. Historical
// snapshots are not consulted; the list reflects live loan rows only.
func (s *ledgerService) GetActiveLoansForPatron(ctx context.Context, patronID uuid.UUID) ([]model.Loan, error) {
	if _, err := s.patrons.GetByID(ctx, patronID); err != nil {
		return nil, err
	}

	status := model.StatusActive
	filter := model.ListLoansRequest{Status: &status, Page: 1, Limit: 100}

	loans, _, err := s.loans.ListByPatron(ctx, patronID, filter)
	return loans, err
}

func (s *ledgerService) ListLoansForPatron(ctx context.Context, patronID uuid.UUID, filter model.ListLoansRequest) ([]model.Loan, int, error) {
	if err := filter.Validate(); err != nil {
		return nil, 0, err
	}
	filter.Normalize()
	return s.loans.ListByPatron(ctx, patronID, filter)
}

// invalidateBook drops the cached catalog entry after an inventory
// change. Cache failure is non-critical.
func (s *ledgerService) invalidateBook(ctx context.Context, bookID uuid.UUID) {
	if err := s.cache.Delete(ctx, bookService.BookCacheKey(bookID)); err != nil {
		logger.Error("Book cache invalidation failed", err)
	}
}
