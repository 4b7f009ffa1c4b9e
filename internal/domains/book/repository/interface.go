package repository

import (
	"context"

	"github.com/google/uuid"

	"library-backend/internal/domains/book/model"
)

// RepositoryInterface defines book data access, including the atomic
// availability adjustment primitive used by the loan ledger.
type RepositoryInterface interface {
	Create(ctx context.Context, book *model.Book) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error)
	GetByISBN(ctx context.Context, isbn string) (*model.Book, error)
	List(ctx context.Context, filter model.ListBooksRequest) ([]model.Book, int, error)

	// AdjustAvailability applies delta to copies_available as one
	// indivisible step. The check and the commit happen in a single
	// statement, so no caller can act on a stale value in between.
	// Returns ErrOverdraw if the result would leave [0, copies_total].
	AdjustAvailability(ctx context.Context, id uuid.UUID, delta int) (*model.Book, error)
}
