package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	authorModel "library-backend/internal/domains/author/model"
	"library-backend/internal/domains/book/model"
)

const bookColumns = `
	id, title, author_id, isbn, publication_year, genre, publisher,
	pages, description, copies_total, copies_available, created_at, updated_at
`

// postgresRepository implements RepositoryInterface
type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository
func NewRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{
		pool: pool,
	}
}

func scanBook(row pgx.Row) (*model.Book, error) {
	var b model.Book
	err := row.Scan(
		&b.ID,
		&b.Title,
		&b.AuthorID,
		&b.ISBN,
		&b.PublicationYear,
		&b.Genre,
		&b.Publisher,
		&b.Pages,
		&b.Description,
		&b.CopiesTotal,
		&b.CopiesAvailable,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Create implements RepositoryInterface.Create
func (r *postgresRepository) Create(ctx context.Context, book *model.Book) error {
	query := `
		INSERT INTO books (
			id, title, author_id, isbn, publication_year, genre, publisher,
			pages, description, copies_total, copies_available, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		)
	`

	_, err := r.pool.Exec(ctx, query,
		book.ID,
		book.Title,
		book.AuthorID,
		book.ISBN,
		book.PublicationYear,
		book.Genre,
		book.Publisher,
		book.Pages,
		book.Description,
		book.CopiesTotal,
		book.CopiesAvailable,
		book.CreatedAt,
		book.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation on isbn
				return model.ErrDuplicateISBN
			}
			if pgErr.Code == "23503" { // foreign_key_violation on author_id
				return authorModel.ErrAuthorNotFound
			}
		}
		return fmt.Errorf("failed to insert book: %w", err)
	}

	return nil
}

// GetByID implements RepositoryInterface.GetByID
func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`

	book, err := scanBook(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NewBookNotFoundError(id)
		}
		return nil, fmt.Errorf("failed to get book by id: %w", err)
	}

	return book, nil
}

// GetByISBN implements RepositoryInterface.GetByISBN
func (r *postgresRepository) GetByISBN(ctx context.Context, isbn string) (*model.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE isbn = $1`

	book, err := scanBook(r.pool.QueryRow(ctx, query, isbn))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: isbn=%s", model.ErrBookNotFound, isbn)
		}
		return nil, fmt.Errorf("failed to get book by isbn: %w", err)
	}

	return book, nil
}

// List implements RepositoryInterface.List
func (r *postgresRepository) List(ctx context.Context, filter model.ListBooksRequest) ([]model.Book, int, error) {
	queryBuilder := `SELECT ` + bookColumns + ` FROM books WHERE 1=1`
	countQuery := "SELECT COUNT(*) FROM books WHERE 1=1"

	args := []interface{}{}
	argCount := 1

	if filter.AuthorID != nil {
		queryBuilder += fmt.Sprintf(" AND author_id = $%d", argCount)
		countQuery += fmt.Sprintf(" AND author_id = $%d", argCount)
		args = append(args, *filter.AuthorID)
		argCount++
	}

	if filter.Genre != nil {
		queryBuilder += fmt.Sprintf(" AND genre = $%d", argCount)
		countQuery += fmt.Sprintf(" AND genre = $%d", argCount)
		args = append(args, *filter.Genre)
		argCount++
	}

	var totalCount int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count books: %w", err)
	}

	queryBuilder += " ORDER BY title ASC, id ASC"
	offset := (filter.Page - 1) * filter.Limit
	queryBuilder += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1)
	args = append(args, filter.Limit, offset)

	rows, err := r.pool.Query(ctx, queryBuilder, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	books := make([]model.Book, 0, filter.Limit)
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan book row: %w", err)
		}
		books = append(books, *book)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating book rows: %w", err)
	}

	return books, totalCount, nil
}

// AdjustAvailability implements RepositoryInterface.AdjustAvailability.
// The range guard and the write are a single UPDATE, so concurrent
// adjustments on the same book serialize on the row lock and none can
// observe a stale counter between check and commit.
func (r *postgresRepository) AdjustAvailability(ctx context.Context, id uuid.UUID, delta int) (*model.Book, error) {
	query := `
		UPDATE books
		SET
			copies_available = copies_available + $2,
			updated_at = NOW()
		WHERE id = $1
		  AND copies_available + $2 >= 0
		  AND copies_available + $2 <= copies_total
		RETURNING ` + bookColumns

	book, err := scanBook(r.pool.QueryRow(ctx, query, id, delta))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Zero rows means either the book does not exist or the
			// adjustment would overdraw. Disambiguate with a lookup.
			current, getErr := r.GetByID(ctx, id)
			if getErr != nil {
				return nil, getErr
			}
			return nil, model.NewOverdrawError(id, delta, current.CopiesAvailable, current.CopiesTotal)
		}
		return nil, fmt.Errorf("failed to adjust availability: %w", err)
	}

	return book, nil
}
