package service

import (
	"context"

	"github.com/google/uuid"

	"library-backend/internal/domains/patron/model"
)

// ServiceInterface defines patron registry business logic.
type ServiceInterface interface {
	Register(ctx context.Context, req *model.RegisterPatronRequest) (*model.Patron, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Patron, error)
	List(ctx context.Context, page, limit int) ([]model.Patron, int, error)
	Update(ctx context.Context, id uuid.UUID, req *model.UpdatePatronRequest) (*model.Patron, error)
	Deactivate(ctx context.Context, id uuid.UUID) (*model.Patron, error)
	Reactivate(ctx context.Context, id uuid.UUID) (*model.Patron, error)
	IsActive(ctx context.Context, id uuid.UUID) (bool, error)
}
