package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"library-backend/internal/domains/patron/model"
)

const patronColumns = `
	id, given_name, family_name, email, fiscal_code, phone,
	registered_at, active, created_at, updated_at
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

func scanPatron(row pgx.Row) (*model.Patron, error) {
	var p model.Patron
	err := row.Scan(
		&p.ID,
		&p.GivenName,
		&p.FamilyName,
		&p.Email,
		&p.FiscalCode,
		&p.Phone,
		&p.RegisteredAt,
		&p.Active,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// mapUniqueViolation resolves which unique index fired.
func mapUniqueViolation(pgErr *pgconn.PgError) error {
	if strings.Contains(pgErr.ConstraintName, "fiscal") {
		return model.ErrDuplicateFiscalCode
	}
	return model.ErrDuplicateEmail
}

// Create implements RepositoryInterface.Create
func (r *postgresRepository) Create(ctx context.Context, patron *model.Patron) error {
	query := `
		INSERT INTO patrons (
			id, given_name, family_name, email, fiscal_code, phone,
			registered_at, active, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)
	`

	_, err := r.pool.Exec(ctx, query,
		patron.ID,
		patron.GivenName,
		patron.FamilyName,
		patron.Email,
		patron.FiscalCode,
		patron.Phone,
		patron.RegisteredAt,
		patron.Active,
		patron.CreatedAt,
		patron.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return mapUniqueViolation(pgErr)
		}
		return fmt.Errorf("failed to insert patron: %w", err)
	}

	return nil
}

// GetByID implements RepositoryInterface.GetByID
func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Patron, error) {
	query := `SELECT ` + patronColumns + ` FROM patrons WHERE id = $1`

	patron, err := scanPatron(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NewPatronNotFoundError(id)
		}
		return nil, fmt.Errorf("failed to get patron by id: %w", err)
	}

	return patron, nil
}

// List implements RepositoryInterface.List
func (r *postgresRepository) List(ctx context.Context, page, limit int) ([]model.Patron, int, error) {
	var totalCount int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM patrons").Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count patrons: %w", err)
	}

	query := `SELECT ` + patronColumns + ` FROM patrons
		ORDER BY family_name ASC, given_name ASC
		LIMIT $1 OFFSET $2`

	offset := (page - 1) * limit
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list patrons: %w", err)
	}
	defer rows.Close()

	patrons := make([]model.Patron, 0, limit)
	for rows.Next() {
		patron, err := scanPatron(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan patron row: %w", err)
		}
		patrons = append(patrons, *patron)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating patron rows: %w", err)
	}

	return patrons, totalCount, nil
}

// Update implements RepositoryInterface.Update
func (r *postgresRepository) Update(ctx context.Context, id uuid.UUID, patron *model.Patron) error {
	query := `
		UPDATE patrons
		SET
			given_name = $2,
			family_name = $3,
			email = $4,
			phone = $5,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		id,
		patron.GivenName,
		patron.FamilyName,
		patron.Email,
		patron.Phone,
	).Scan(&patron.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.NewPatronNotFoundError(id)
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return mapUniqueViolation(pgErr)
		}
		return fmt.Errorf("failed to update patron: %w", err)
	}

	return nil
}

// SetActive implements RepositoryInterface.SetActive
func (r *postgresRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) (*model.Patron, error) {
	query := `
		UPDATE patrons
		SET active = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + patronColumns

	patron, err := scanPatron(r.pool.QueryRow(ctx, query, id, active))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NewPatronNotFoundError(id)
		}
		return nil, fmt.Errorf("failed to set patron active flag: %w", err)
	}

	return patron, nil
}
