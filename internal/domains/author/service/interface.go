package service

import (
	"context"

	"github.com/google/uuid"

	"library-backend/internal/domains/author/model"
)

// ServiceInterface defines author business logic.
type ServiceInterface interface {
	Create(ctx context.Context, req *model.CreateAuthorRequest) (*model.Author, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Author, error)
	List(ctx context.Context, page, limit int) ([]model.Author, int, error)
	Update(ctx context.Context, id uuid.UUID, req *model.UpdateAuthorRequest) (*model.Author, error)
}
