package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"library-backend/internal/domains/author/model"
	"library-backend/internal/domains/author/repository"
	"library-backend/pkg/logger"
)

type authorService struct {
	repo repository.RepositoryInterface
}

// NewAuthorService creates a new author service
func NewAuthorService(repo repository.RepositoryInterface) ServiceInterface {
	return &authorService{
		repo: repo,
	}
}

func (s *authorService) Create(ctx context.Context, req *model.CreateAuthorRequest) (*model.Author, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	author := &model.Author{
		ID:          uuid.New(),
		GivenName:   req.GivenName,
		FamilyName:  req.FamilyName,
		BirthDate:   req.BirthDate,
		DeathDate:   req.DeathDate,
		Nationality: req.Nationality,
		Biography:   req.Biography,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, author); err != nil {
		logger.Error("Failed to create author", err)
		return nil, err
	}

	logger.Info("Author created", map[string]interface{}{
		"author_id":   author.ID,
		"family_name": author.FamilyName,
	})

	return author, nil
}

func (s *authorService) GetByID(ctx context.Context, id uuid.UUID) (*model.Author, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *authorService) List(ctx context.Context, page, limit int) ([]model.Author, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.repo.List(ctx, page, limit)
}

func (s *authorService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateAuthorRequest) (*model.Author, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	author, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Nationality != nil {
		author.Nationality = *req.Nationality
	}
	if req.Biography != nil {
		author.Biography = req.Biography
	}

	if err := s.repo.Update(ctx, id, author); err != nil {
		return nil, err
	}

	return author, nil
}
