package repository

import (
	"context"

	"github.com/google/uuid"

	"library-backend/internal/domains/author/model"
)

// RepositoryInterface defines author data access.
type RepositoryInterface interface {
	Create(ctx context.Context, author *model.Author) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Author, error)
	List(ctx context.Context, page, limit int) ([]model.Author, int, error)
	Update(ctx context.Context, id uuid.UUID, author *model.Author) error
}
