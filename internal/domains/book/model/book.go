package model

import (
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// Catalog validation bounds. ISBNs are stored with hyphens, 10 to 17 chars.
var (
	ISBNPattern = regexp.MustCompile(`^[0-9-]{10,17}$`)
)

const (
	MinPublicationYear = 1000
	MaxPublicationYear = 2030
)

// Book represents the books table entity.
// Invariant: 0 <= copies_available <= copies_total, enforced by the
// availability adjustment primitive and a database CHECK constraint.
type Book struct {
	ID       uuid.UUID `json:"id" db:"id"`
	Title    string    `json:"title" db:"title"`
	AuthorID uuid.UUID `json:"author_id" db:"author_id"`
	ISBN     string    `json:"isbn" db:"isbn"`

	PublicationYear int     `json:"publication_year" db:"publication_year"`
	Genre           string  `json:"genre" db:"genre"`
	Publisher       string  `json:"publisher" db:"publisher"`
	Pages           int     `json:"pages" db:"pages"`
	Description     *string `json:"description,omitempty" db:"description"`

	// Inventory counters. CopiesAvailable is the only field the loan
	// ledger ever mutates.
	CopiesTotal     int `json:"copies_total" db:"copies_total"`
	CopiesAvailable int `json:"copies_available" db:"copies_available"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsAvailable reports whether at least one copy can be lent out.
func (b *Book) IsAvailable() bool {
	return b.CopiesAvailable > 0
}

// CreateBookRequest is the payload for adding a book to the catalog.
type CreateBookRequest struct {
	Title           string    `json:"title"`
	AuthorID        uuid.UUID `json:"author_id"`
	ISBN            string    `json:"isbn"`
	PublicationYear int       `json:"publication_year"`
	Genre           string    `json:"genre"`
	Publisher       string    `json:"publisher"`
	Pages           int       `json:"pages"`
	Description     *string   `json:"description,omitempty"`
	CopiesTotal     int       `json:"copies_total"`
}

// Validate validates CreateBookRequest.
func (req CreateBookRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Title, validation.Required, validation.Length(1, 500)),
		validation.Field(&req.AuthorID, validation.Required, validation.By(notNilUUID)),
		validation.Field(&req.ISBN, validation.Required, validation.Match(ISBNPattern)),
		validation.Field(&req.PublicationYear, validation.Required,
			validation.Min(MinPublicationYear), validation.Max(MaxPublicationYear)),
		validation.Field(&req.Genre, validation.Length(0, 100)),
		validation.Field(&req.Publisher, validation.Length(0, 200)),
		validation.Field(&req.Pages, validation.Required, validation.Min(1)),
		validation.Field(&req.CopiesTotal, validation.Required, validation.Min(1)),
	)
}

func notNilUUID(value interface{}) error {
	id, _ := value.(uuid.UUID)
	if id == uuid.Nil {
		return validation.NewError("validation_required", "cannot be blank")
	}
	return nil
}

// AdjustAvailabilityRequest is the payload for a manual inventory
// correction (restock, damaged copy removal).
type AdjustAvailabilityRequest struct {
	Delta int `json:"delta"`
}

// Validate validates AdjustAvailabilityRequest.
func (req AdjustAvailabilityRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Delta, validation.Required, validation.NotIn(0)),
	)
}

// ListBooksRequest represents catalog list filters.
type ListBooksRequest struct {
	AuthorID *uuid.UUID `form:"author_id"`
	Genre    *string    `form:"genre"`

	Page  int `form:"page"`
	Limit int `form:"limit"`
}

// Normalize applies pagination defaults in place.
func (req *ListBooksRequest) Normalize() {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}
}

// BookResponse is the API representation of a book.
type BookResponse struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	AuthorID        uuid.UUID `json:"author_id"`
	ISBN            string    `json:"isbn"`
	PublicationYear int       `json:"publication_year"`
	Genre           string    `json:"genre,omitempty"`
	Publisher       string    `json:"publisher,omitempty"`
	Pages           int       `json:"pages"`
	Description     *string   `json:"description,omitempty"`
	CopiesTotal     int       `json:"copies_total"`
	CopiesAvailable int       `json:"copies_available"`
}

// ToResponse converts Book to BookResponse.
func (b *Book) ToResponse() *BookResponse {
	return &BookResponse{
		ID:              b.ID,
		Title:           b.Title,
		AuthorID:        b.AuthorID,
		ISBN:            b.ISBN,
		PublicationYear: b.PublicationYear,
		Genre:           b.Genre,
		Publisher:       b.Publisher,
		Pages:           b.Pages,
		Description:     b.Description,
		CopiesTotal:     b.CopiesTotal,
		CopiesAvailable: b.CopiesAvailable,
	}
}
