package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the loan state machine.
// active is the only initial state; returned and expired are terminal.
type Status string

const (
	StatusActive   Status = "active"
	StatusReturned Status = "returned"
	StatusExpired  Status = "expired"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusReturned, StatusExpired:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition exists from s.
func (s Status) IsTerminal() bool {
	return s == StatusReturned || s == StatusExpired
}

func (s Status) String() string {
	return string(s)
}

// PatronSnapshot holds the patron fields copied by value at issue time.
// It is never re-read from the patron registry: later edits to the live
// patron record must not alter historical loans.
type PatronSnapshot struct {
	Name  string `json:"name" db:"patron_name"`
	Email string `json:"email" db:"patron_email"`
}

// Loan represents the loans table entity. Loans are created only by a
// successful issue operation and never deleted.
type Loan struct {
	ID       uuid.UUID `json:"id" db:"id"`
	BookID   uuid.UUID `json:"book_id" db:"book_id"`
	PatronID uuid.UUID `json:"patron_id" db:"patron_id"`

	LoanDate   time.Time  `json:"loan_date" db:"loan_date"`
	DueDate    time.Time  `json:"due_date" db:"due_date"` // invariant: due_date > loan_date
	ReturnDate *time.Time `json:"return_date,omitempty" db:"return_date"`

	Patron PatronSnapshot `json:"patron"`

	Status Status  `json:"status" db:"status"`
	Note   *string `json:"note,omitempty" db:"note"`

	// FineAmount is assessed on a late return, zero otherwise.
	FineAmount decimal.Decimal `json:"fine_amount" db:"fine_amount"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsOverdue reports whether an active loan is past due at the given instant.
func (l *Loan) IsOverdue(now time.Time) bool {
	return l.Status == StatusActive && l.DueDate.Before(now)
}

// DaysLate returns the number of started days past due, zero if on time.
func (l *Loan) DaysLate(now time.Time) int {
	if !now.After(l.DueDate) {
		return 0
	}
	return int(now.Sub(l.DueDate).Hours()/24) + 1
}

// IssueLoanRequest is the payload for issuing a loan.
type IssueLoanRequest struct {
	BookID   uuid.UUID `json:"book_id"`
	PatronID uuid.UUID `json:"patron_id"`
	Note     *string   `json:"note,omitempty"`
}

// Validate validates IssueLoanRequest.
func (req IssueLoanRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.BookID, validation.Required, validation.By(notNilUUID)),
		validation.Field(&req.PatronID, validation.Required, validation.By(notNilUUID)),
		validation.Field(&req.Note, validation.Length(0, 1000)),
	)
}

func notNilUUID(value interface{}) error {
	id, _ := value.(uuid.UUID)
	if id == uuid.Nil {
		return validation.NewError("validation_required", "cannot be blank")
	}
	return nil
}

// ListLoansRequest represents loan list filters for a patron.
type ListLoansRequest struct {
	Status *Status `form:"status"`

	Page  int `form:"page"`
	Limit int `form:"limit"`
}

// Normalize applies pagination defaults in place.
func (req *ListLoansRequest) Normalize() {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}
}

// Validate validates ListLoansRequest.
func (req ListLoansRequest) Validate() error {
	if req.Status != nil && !req.Status.IsValid() {
		return validation.NewError("validation_in_invalid", "must be a valid value")
	}
	return nil
}

// LoanResponse is the API representation of a loan.
type LoanResponse struct {
	ID         uuid.UUID       `json:"id"`
	BookID     uuid.UUID       `json:"book_id"`
	PatronID   uuid.UUID       `json:"patron_id"`
	LoanDate   time.Time       `json:"loan_date"`
	DueDate    time.Time       `json:"due_date"`
	ReturnDate *time.Time      `json:"return_date,omitempty"`
	Patron     PatronSnapshot  `json:"patron"`
	Status     Status          `json:"status"`
	Note       *string         `json:"note,omitempty"`
	FineAmount decimal.Decimal `json:"fine_amount"`
}

// ToResponse converts Loan to LoanResponse.
func (l *Loan) ToResponse() *LoanResponse {
	return &LoanResponse{
		ID:         l.ID,
		BookID:     l.BookID,
		PatronID:   l.PatronID,
		LoanDate:   l.LoanDate,
		DueDate:    l.DueDate,
		ReturnDate: l.ReturnDate,
		Patron:     l.Patron,
		Status:     l.Status,
		Note:       l.Note,
		FineAmount: l.FineAmount,
	}
}
