package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"library-backend/internal/domains/patron/model"
	"library-backend/internal/domains/patron/repository"
	"library-backend/pkg/logger"
)

type patronService struct {
	repo repository.RepositoryInterface
}

// NewPatronService creates a new patron service
func NewPatronService(repo repository.RepositoryInterface) ServiceInterface {
	return &patronService{
		repo: repo,
	}
}

func (s *patronService) Register(ctx context.Context, req *model.RegisterPatronRequest) (*model.Patron, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	patron := &model.Patron{
		ID:           uuid.New(),
		GivenName:    req.GivenName,
		FamilyName:   req.FamilyName,
		Email:        req.Email,
		FiscalCode:   req.FiscalCode,
		Phone:        req.Phone,
		RegisteredAt: now,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, patron); err != nil {
		return nil, err
	}

	logger.Info("Patron registered", map[string]interface{}{
		"patron_id": patron.ID,
		"email":     patron.Email,
	})

	return patron, nil
}

func (s *patronService) GetByID(ctx context.Context, id uuid.UUID) (*model.Patron, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *patronService) List(ctx context.Context, page, limit int) ([]model.Patron, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.repo.List(ctx, page, limit)
}

func (s *patronService) Update(ctx context.Context, id uuid.UUID, req *model.UpdatePatronRequest) (*model.Patron, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	patron, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.GivenName != nil {
		patron.GivenName = *req.GivenName
	}
	if req.FamilyName != nil {
		patron.FamilyName = *req.FamilyName
	}
	if req.Email != nil {
		patron.Email = *req.Email
	}
	if req.Phone != nil {
		patron.Phone = *req.Phone
	}

	if err := s.repo.Update(ctx, id, patron); err != nil {
		return nil, err
	}

	return patron, nil
}

func (s *patronService) Deactivate(ctx context.Context, id uuid.UUID) (*model.Patron, error) {
	patron, err := s.repo.SetActive(ctx, id, false)
	if err != nil {
		return nil, err
	}

	logger.Info("Patron deactivated", map[string]interface{}{
		"patron_id": id,
	})

	return patron, nil
}

func (s *patronService) Reactivate(ctx context.Context, id uuid.UUID) (*model.Patron, error) {
	return s.repo.SetActive(ctx, id, true)
}

func (s *patronService) IsActive(ctx context.Context, id uuid.UUID) (bool, error) {
	patron, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return patron.Active, nil
}
