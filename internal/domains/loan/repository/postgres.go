package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	bookModel "library-backend/internal/domains/book/model"
	"library-backend/internal/domains/loan/model"
	"library-backend/pkg/database"
)

const loanColumns = `
	id, book_id, patron_id, loan_date, due_date, return_date,
	patron_name, patron_email, status, note, fine_amount, created_at, updated_at
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

func scanLoan(row pgx.Row) (*model.Loan, error) {
	var l model.Loan
	err := row.Scan(
		&l.ID,
		&l.BookID,
		&l.PatronID,
		&l.LoanDate,
		&l.DueDate,
		&l.ReturnDate,
		&l.Patron.Name,
		&l.Patron.Email,
		&l.Status,
		&l.Note,
		&l.FineAmount,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Create implements RepositoryInterface.Create.
// The decrement runs first: its row lock serializes concurrent issues on
// the same book, and the availability guard inside the UPDATE decides the
// race for the last copy. Rolling back undoes the decrement if the loan
// insert fails.
func (r *postgresRepository) Create(ctx context.Context, loan *model.Loan) error {
	return database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		return r.createInTx(ctx, tx, loan)
	})
}

func (r *postgresRepository) createInTx(ctx context.Context, tx pgx.Tx, loan *model.Loan) error {
	decrementQuery := `
		UPDATE books
		SET copies_available = copies_available - 1, updated_at = NOW()
		WHERE id = $1 AND copies_available >= 1
		RETURNING copies_available
	`

	var remaining int
	err := tx.QueryRow(ctx, decrementQuery, loan.BookID).Scan(&remaining)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Either the book is gone or the last copy was taken by a
			// concurrent issue. Disambiguate with a lookup.
			var exists bool
			checkErr := tx.QueryRow(ctx,
				"SELECT EXISTS(SELECT 1 FROM books WHERE id = $1)", loan.BookID).Scan(&exists)
			if checkErr != nil {
				return fmt.Errorf("failed to check book existence: %w", checkErr)
			}
			if !exists {
				return bookModel.NewBookNotFoundError(loan.BookID)
			}
			return bookModel.ErrBookUnavailable
		}
		return fmt.Errorf("failed to decrement availability: %w", err)
	}

	insertQuery := `
		INSERT INTO loans (
			id, book_id, patron_id, loan_date, due_date, return_date,
			patron_name, patron_email, status, note, fine_amount, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		)
	`

	_, err = tx.Exec(ctx, insertQuery,
		loan.ID,
		loan.BookID,
		loan.PatronID,
		loan.LoanDate,
		loan.DueDate,
		loan.ReturnDate,
		loan.Patron.Name,
		loan.Patron.Email,
		loan.Status,
		loan.Note,
		loan.FineAmount,
		loan.CreatedAt,
		loan.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert loan: %w", err)
	}

	return nil
}

// MarkReturned implements RepositoryInterface.MarkReturned.
// The status guard in the UPDATE makes the transition linearizable per
// loan id: of two concurrent returns, exactly one matches status='active'.
func (r *postgresRepository) MarkReturned(ctx context.Context, id uuid.UUID, returnedAt time.Time, fine decimal.Decimal) (*model.Loan, error) {
	return database.WithTransactionResult(ctx, r.pool, func(tx pgx.Tx) (*model.Loan, error) {
		return r.markReturnedInTx(ctx, tx, id, returnedAt, fine)
	})
}

func (r *postgresRepository) markReturnedInTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, returnedAt time.Time, fine decimal.Decimal) (*model.Loan, error) {
	transitionQuery := `
		UPDATE loans
		SET
			status = $2,
			return_date = $3,
			fine_amount = $4,
			updated_at = NOW()
		WHERE id = $1 AND status = $5
		RETURNING ` + loanColumns

	loan, err := scanLoan(tx.QueryRow(ctx, transitionQuery,
		id, model.StatusReturned, returnedAt, fine, model.StatusActive))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			var status model.Status
			checkErr := tx.QueryRow(ctx,
				"SELECT status FROM loans WHERE id = $1", id).Scan(&status)
			if checkErr != nil {
				if errors.Is(checkErr, pgx.ErrNoRows) {
					return nil, model.NewLoanNotFoundError(id)
				}
				return nil, fmt.Errorf("failed to check loan status: %w", checkErr)
			}
			return nil, model.NewLoanAlreadyClosedError(id, status)
		}
		return nil, fmt.Errorf("failed to mark loan returned: %w", err)
	}

	incrementQuery := `
		UPDATE books
		SET copies_available = copies_available + 1, updated_at = NOW()
		WHERE id = $1 AND copies_available + 1 <= copies_total
		RETURNING copies_available
	`

	var available int
	err = tx.QueryRow(ctx, incrementQuery, loan.BookID).Scan(&available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Incrementing past copies_total means the counters are
			// inconsistent. Surface it, never clamp.
			return nil, bookModel.NewOverdrawError(loan.BookID, 1, -1, -1)
		}
		return nil, fmt.Errorf("failed to increment availability: %w", err)
	}

	return loan, nil
}

// ExpireOverdue implements RepositoryInterface.ExpireOverdue.
// A single set-based UPDATE selects only loans still active and past
// due, so re-running with the same asOf transitions nothing further.
func (r *postgresRepository) ExpireOverdue(ctx context.Context, asOf time.Time) (int, error) {
	query := `
		UPDATE loans
		SET status = $1, updated_at = NOW()
		WHERE status = $2 AND due_date < $3
	`

	result, err := r.pool.Exec(ctx, query, model.StatusExpired, model.StatusActive, asOf)
	if err != nil {
		return 0, fmt.Errorf("failed to expire overdue loans: %w", err)
	}

	return int(result.RowsAffected()), nil
}

// GetByID implements RepositoryInterface.GetByID
func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`

	loan, err := scanLoan(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NewLoanNotFoundError(id)
		}
		return nil, fmt.Errorf("failed to get loan by id: %w", err)
	}

	return loan, nil
}

// ListByPatron implements RepositoryInterface.ListByPatron
func (r *postgresRepository) ListByPatron(ctx context.Context, patronID uuid.UUID, filter model.ListLoansRequest) ([]model.Loan, int, error) {
	queryBuilder := `SELECT ` + loanColumns + ` FROM loans WHERE patron_id = $1`
	countQuery := "SELECT COUNT(*) FROM loans WHERE patron_id = $1"

	args := []interface{}{patronID}
	argCount := 2

	if filter.Status != nil {
		queryBuilder += fmt.Sprintf(" AND status = $%d", argCount)
		countQuery += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, *filter.Status)
		argCount++
	}

	var totalCount int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count loans: %w", err)
	}

	queryBuilder += " ORDER BY loan_date DESC, id ASC"
	offset := (filter.Page - 1) * filter.Limit
	queryBuilder += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1)
	args = append(args, filter.Limit, offset)

	rows, err := r.pool.Query(ctx, queryBuilder, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list loans: %w", err)
	}
	defer rows.Close()

	loans := make([]model.Loan, 0, filter.Limit)
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan loan row: %w", err)
		}
		loans = append(loans, *loan)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating loan rows: %w", err)
	}

	return loans, totalCount, nil
}
