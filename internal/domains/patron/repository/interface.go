package repository

import (
	"context"

	"github.com/google/uuid"

	"library-backend/internal/domains/patron/model"
)

// RepositoryInterface defines patron data access. Reads serve a
// consistent row snapshot per call.
type RepositoryInterface interface {
	Create(ctx context.Context, patron *model.Patron) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Patron, error)
	List(ctx context.Context, page, limit int) ([]model.Patron, int, error)
	Update(ctx context.Context, id uuid.UUID, patron *model.Patron) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*model.Patron, error)
}
