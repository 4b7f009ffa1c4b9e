package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"library-backend/internal/domains/author/model"
)

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

// Create implements RepositoryInterface.Create
func (r *postgresRepository) Create(ctx context.Context, author *model.Author) error {
	query := `
		INSERT INTO authors (
			id, given_name, family_name, birth_date, death_date,
			nationality, biography, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
	`

	_, err := r.pool.Exec(ctx, query,
		author.ID,
		author.GivenName,
		author.FamilyName,
		author.BirthDate,
		author.DeathDate,
		author.Nationality,
		author.Biography,
		author.CreatedAt,
		author.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to insert author: %w", err)
	}

	return nil
}

// GetByID implements RepositoryInterface.GetByID
func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Author, error) {
	query := `
		SELECT
			id, given_name, family_name, birth_date, death_date,
			nationality, biography, created_at, updated_at
		FROM authors
		WHERE id = $1
	`

	var author model.Author
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&author.ID,
		&author.GivenName,
		&author.FamilyName,
		&author.BirthDate,
		&author.DeathDate,
		&author.Nationality,
		&author.Biography,
		&author.CreatedAt,
		&author.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NewAuthorNotFoundError(id)
		}
		return nil, fmt.Errorf("failed to get author by id: %w", err)
	}

	return &author, nil
}

// List implements RepositoryInterface.List
func (r *postgresRepository) List(ctx context.Context, page, limit int) ([]model.Author, int, error) {
	var totalCount int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM authors").Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count authors: %w", err)
	}

	query := `
		SELECT
			id, given_name, family_name, birth_date, death_date,
			nationality, biography, created_at, updated_at
		FROM authors
		ORDER BY family_name ASC, given_name ASC
		LIMIT $1 OFFSET $2
	`

	offset := (page - 1) * limit
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list authors: %w", err)
	}
	defer rows.Close()

	authors := make([]model.Author, 0, limit)
	for rows.Next() {
		var a model.Author
		err := rows.Scan(
			&a.ID,
			&a.GivenName,
			&a.FamilyName,
			&a.BirthDate,
			&a.DeathDate,
			&a.Nationality,
			&a.Biography,
			&a.CreatedAt,
			&a.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan author row: %w", err)
		}
		authors = append(authors, a)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating author rows: %w", err)
	}

	return authors, totalCount, nil
}

// Update implements RepositoryInterface.Update; identity fields stay untouched.
func (r *postgresRepository) Update(ctx context.Context, id uuid.UUID, author *model.Author) error {
	query := `
		UPDATE authors
		SET
			nationality = $2,
			biography = $3,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		id,
		author.Nationality,
		author.Biography,
	).Scan(&author.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.NewAuthorNotFoundError(id)
		}
		return fmt.Errorf("failed to update author: %w", err)
	}

	return nil
}
