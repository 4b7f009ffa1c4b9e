package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// Author represents the authors table entity.
// Identity is immutable; descriptive fields may be updated.
type Author struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	GivenName   string     `json:"given_name" db:"given_name"`
	FamilyName  string     `json:"family_name" db:"family_name"`
	BirthDate   time.Time  `json:"birth_date" db:"birth_date"`
	DeathDate   *time.Time `json:"death_date,omitempty" db:"death_date"` // nil = living
	Nationality string     `json:"nationality" db:"nationality"`
	Biography   *string    `json:"biography,omitempty" db:"biography"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// CreateAuthorRequest is the payload for creating an author.
type CreateAuthorRequest struct {
	GivenName   string     `json:"given_name"`
	FamilyName  string     `json:"family_name"`
	BirthDate   time.Time  `json:"birth_date"`
	DeathDate   *time.Time `json:"death_date,omitempty"`
	Nationality string     `json:"nationality"`
	Biography   *string    `json:"biography,omitempty"`
}

// Validate validates CreateAuthorRequest.
func (req CreateAuthorRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.GivenName, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.FamilyName, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.BirthDate, validation.Required),
		validation.Field(&req.Nationality, validation.Length(0, 100)),
		validation.Field(&req.DeathDate, validation.By(func(value interface{}) error {
			d, _ := value.(*time.Time)
			if d != nil && !d.After(req.BirthDate) {
				return ErrDeathBeforeBirth
			}
			return nil
		})),
	)
}

// UpdateAuthorRequest updates descriptive fields only.
type UpdateAuthorRequest struct {
	Nationality *string `json:"nationality,omitempty"`
	Biography   *string `json:"biography,omitempty"`
}

// Validate validates UpdateAuthorRequest.
func (req UpdateAuthorRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Nationality, validation.Length(0, 100)),
		validation.Field(&req.Biography, validation.Length(0, 10000)),
	)
}

// AuthorResponse is the API representation of an author.
type AuthorResponse struct {
	ID          uuid.UUID  `json:"id"`
	GivenName   string     `json:"given_name"`
	FamilyName  string     `json:"family_name"`
	BirthDate   time.Time  `json:"birth_date"`
	DeathDate   *time.Time `json:"death_date,omitempty"`
	Nationality string     `json:"nationality"`
	Biography   *string    `json:"biography,omitempty"`
}

// ToResponse converts Author to AuthorResponse.
func (a *Author) ToResponse() *AuthorResponse {
	return &AuthorResponse{
		ID:          a.ID,
		GivenName:   a.GivenName,
		FamilyName:  a.FamilyName,
		BirthDate:   a.BirthDate,
		DeathDate:   a.DeathDate,
		Nationality: a.Nationality,
		Biography:   a.Biography,
	}
}
