package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func validCreateBookRequest() CreateBookRequest {
	return CreateBookRequest{
		Title:           "Il Gattopardo",
		AuthorID:        uuid.New(),
		ISBN:            "978-88-07-90001-1",
		PublicationYear: 1958,
		Genre:           "novel",
		Publisher:       "Feltrinelli",
		Pages:           320,
		CopiesTotal:     4,
	}
}

func TestCreateBookRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*CreateBookRequest)
		wantErr bool
	}{
		{"valid", func(r *CreateBookRequest) {}, false},
		{"missing title", func(r *CreateBookRequest) { r.Title = "" }, true},
		{"missing author", func(r *CreateBookRequest) { r.AuthorID = uuid.Nil }, true},
		{"isbn with letters", func(r *CreateBookRequest) { r.ISBN = "978-X8-07-9000-1" }, true},
		{"isbn too short", func(r *CreateBookRequest) { r.ISBN = "12-34567" }, true},
		{"isbn too long", func(r *CreateBookRequest) { r.ISBN = "978-88-07-90001-1-23" }, true},
		{"bare ten digit isbn", func(r *CreateBookRequest) { r.ISBN = "8807900017" }, false},
		{"year before printing existed", func(r *CreateBookRequest) { r.PublicationYear = 999 }, true},
		{"year too far ahead", func(r *CreateBookRequest) { r.PublicationYear = 2031 }, true},
		{"earliest accepted year", func(r *CreateBookRequest) { r.PublicationYear = 1000 }, false},
		{"zero pages", func(r *CreateBookRequest) { r.Pages = 0 }, true},
		{"zero copies", func(r *CreateBookRequest) { r.CopiesTotal = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreateBookRequest()
			tt.mutate(&req)

			err := req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBookIsAvailable(t *testing.T) {
	assert.True(t, (&Book{CopiesTotal: 3, CopiesAvailable: 1}).IsAvailable())
	assert.False(t, (&Book{CopiesTotal: 3, CopiesAvailable: 0}).IsAvailable())
}

func TestAdjustAvailabilityRequestValidate(t *testing.T) {
	assert.Error(t, AdjustAvailabilityRequest{Delta: 0}.Validate())
	assert.NoError(t, AdjustAvailabilityRequest{Delta: 2}.Validate())
	assert.NoError(t, AdjustAvailabilityRequest{Delta: -1}.Validate())
}

func TestOverdrawError(t *testing.T) {
	err := NewOverdrawError(uuid.New(), -2, 1, 3)
	assert.True(t, IsOverdrawError(err))
	assert.False(t, IsNotFoundError(err))
}
