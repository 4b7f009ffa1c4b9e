package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
)

// FiscalCodeLength is the fixed length of the fiscal identifier.
const FiscalCodeLength = 16

// Patron represents the patrons table entity.
type Patron struct {
	ID         uuid.UUID `json:"id" db:"id"`
	GivenName  string    `json:"given_name" db:"given_name"`
	FamilyName string    `json:"family_name" db:"family_name"`
	Email      string    `json:"email" db:"email"`
	FiscalCode string    `json:"fiscal_code" db:"fiscal_code"`
	Phone      string    `json:"phone" db:"phone"`

	RegisteredAt time.Time `json:"registered_at" db:"registered_at"`
	Active       bool      `json:"active" db:"active"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// DisplayName is the form captured into loan snapshots.
func (p *Patron) DisplayName() string {
	return p.GivenName + " " + p.FamilyName
}

// RegisterPatronRequest is the payload for registering a patron.
type RegisterPatronRequest struct {
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Email      string `json:"email"`
	FiscalCode string `json:"fiscal_code"`
	Phone      string `json:"phone"`
}

// Validate validates RegisterPatronRequest.
func (req RegisterPatronRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.GivenName, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.FamilyName, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.Email, validation.Required, is.Email),
		validation.Field(&req.FiscalCode, validation.Required,
			validation.Length(FiscalCodeLength, FiscalCodeLength)),
		validation.Field(&req.Phone, validation.Length(0, 30)),
	)
}

// UpdatePatronRequest updates contact fields. Email changes never
// propagate to snapshots embedded in existing loans.
type UpdatePatronRequest struct {
	GivenName  *string `json:"given_name,omitempty"`
	FamilyName *string `json:"family_name,omitempty"`
	Email      *string `json:"email,omitempty"`
	Phone      *string `json:"phone,omitempty"`
}

// Validate validates UpdatePatronRequest.
func (req UpdatePatronRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.GivenName, validation.NilOrNotEmpty, validation.Length(1, 100)),
		validation.Field(&req.FamilyName, validation.NilOrNotEmpty, validation.Length(1, 100)),
		validation.Field(&req.Email, validation.NilOrNotEmpty, is.Email),
		validation.Field(&req.Phone, validation.Length(0, 30)),
	)
}

// PatronResponse is the API representation of a patron.
type PatronResponse struct {
	ID           uuid.UUID `json:"id"`
	GivenName    string    `json:"given_name"`
	FamilyName   string    `json:"family_name"`
	Email        string    `json:"email"`
	FiscalCode   string    `json:"fiscal_code"`
	Phone        string    `json:"phone,omitempty"`
	RegisteredAt time.Time `json:"registered_at"`
	Active       bool      `json:"active"`
}

// ToResponse converts Patron to PatronResponse.
func (p *Patron) ToResponse() *PatronResponse {
	return &PatronResponse{
		ID:           p.ID,
		GivenName:    p.GivenName,
		FamilyName:   p.FamilyName,
		Email:        p.Email,
		FiscalCode:   p.FiscalCode,
		Phone:        p.Phone,
		RegisteredAt: p.RegisteredAt,
		Active:       p.Active,
	}
}
