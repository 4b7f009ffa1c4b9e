package service

import (
	"context"

	"github.com/google/uuid"

	"library-backend/internal/domains/book/model"
)

// ServiceInterface defines catalog business logic for books.
type ServiceInterface interface {
	Create(ctx context.Context, req *model.CreateBookRequest) (*model.Book, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error)
	List(ctx context.Context, filter model.ListBooksRequest) ([]model.Book, int, error)
	AdjustAvailability(ctx context.Context, id uuid.UUID, delta int) (*model.Book, error)
}
