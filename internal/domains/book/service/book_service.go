package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"library-backend/internal/domains/book/model"
	"library-backend/internal/domains/book/repository"
	"library-backend/pkg/cache"
	"library-backend/pkg/logger"
)

const (
	bookCacheTTL = 5 * time.Minute
)

type bookService struct {
	repo  repository.RepositoryInterface
	cache cache.Cache
}

// NewBookService creates a new book service
func NewBookService(repo repository.RepositoryInterface, c cache.Cache) ServiceInterface {
	return &bookService{
		repo:  repo,
		cache: c,
	}
}

func BookCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("book:%s", id)
}

func (s *bookService) Create(ctx context.Context, req *model.CreateBookRequest) (*model.Book, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	book := &model.Book{
		ID:              uuid.New(),
		Title:           req.Title,
		AuthorID:        req.AuthorID,
		ISBN:            req.ISBN,
		PublicationYear: req.PublicationYear,
		Genre:           req.Genre,
		Publisher:       req.Publisher,
		Pages:           req.Pages,
		Description:     req.Description,
		CopiesTotal:     req.CopiesTotal,
		CopiesAvailable: req.CopiesTotal, // all copies on the shelf at creation
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Create(ctx, book); err != nil {
		return nil, err
	}

	logger.Info("Book created", map[string]interface{}{
		"book_id": book.ID,
		"isbn":    book.ISBN,
	})

	return book, nil
}

// GetByID serves the HTTP read path through the cache. The loan ledger
// bypasses this and reads the repository directly so availability checks
// always see a current snapshot.
func (s *bookService) GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	key := BookCacheKey(id)

	var cached model.Book
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		// Cache failure is non-critical, fall through to the database.
		logger.Error("Book cache read failed", err)
	}
	if found {
		return &cached, nil
	}

	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, book, bookCacheTTL); err != nil {
		logger.Error("Book cache write failed", err)
	}

	return book, nil
}

func (s *bookService) List(ctx context.Context, filter model.ListBooksRequest) ([]model.Book, int, error) {
	filter.Normalize()
	return s.repo.List(ctx, filter)
}

// AdjustAvailability applies a manual inventory correction and drops the
// cached entry so readers never see a stale counter longer than one write.
func (s *bookService) AdjustAvailability(ctx context.Context, id uuid.UUID, delta int) (*model.Book, error) {
	book, err := s.repo.AdjustAvailability(ctx, id, delta)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Delete(ctx, BookCacheKey(id)); err != nil {
		logger.Error("Book cache invalidation failed", err)
	}

	logger.Info("Book availability adjusted", map[string]interface{}{
		"book_id":          book.ID,
		"delta":            delta,
		"copies_available": book.CopiesAvailable,
	})

	return book, nil
}
