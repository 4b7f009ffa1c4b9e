package model

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	t.Run("valid values", func(t *testing.T) {
		assert.True(t, StatusActive.IsValid())
		assert.True(t, StatusReturned.IsValid())
		assert.True(t, StatusExpired.IsValid())
		assert.False(t, Status("attivo").IsValid())
		assert.False(t, Status("").IsValid())
	})

	t.Run("terminality", func(t *testing.T) {
		assert.False(t, StatusActive.IsTerminal())
		assert.True(t, StatusReturned.IsTerminal())
		assert.True(t, StatusExpired.IsTerminal())
	})
}

func TestLoanIsOverdue(t *testing.T) {
	due := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		status Status
		now    time.Time
		want   bool
	}{
		{"active before due date", StatusActive, due.Add(-time.Hour), false},
		{"active exactly at due date", StatusActive, due, false},
		{"active past due date", StatusActive, due.Add(time.Hour), true},
		{"returned past due date", StatusReturned, due.Add(time.Hour), false},
		{"expired past due date", StatusExpired, due.Add(time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loan := &Loan{Status: tt.status, DueDate: due}
			assert.Equal(t, tt.want, loan.IsOverdue(tt.now))
		})
	}
}

func TestLoanDaysLate(t *testing.T) {
	due := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	loan := &Loan{Status: StatusActive, DueDate: due}

	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"before due", due.Add(-time.Hour), 0},
		{"exactly due", due, 0},
		{"an hour late counts as one day", due.Add(time.Hour), 1},
		{"one full day late", due.Add(24 * time.Hour), 2},
		{"two and a half days late", due.Add(60 * time.Hour), 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, loan.DaysLate(tt.now))
		})
	}
}

func TestIssueLoanRequestValidate(t *testing.T) {
	note := "reserved at the front desk"
	longNote := strings.Repeat("x", 1001)

	tests := []struct {
		name    string
		req     IssueLoanRequest
		wantErr bool
	}{
		{
			name: "valid without note",
			req:  IssueLoanRequest{BookID: uuid.New(), PatronID: uuid.New()},
		},
		{
			name: "valid with note",
			req:  IssueLoanRequest{BookID: uuid.New(), PatronID: uuid.New(), Note: &note},
		},
		{
			name:    "missing book id",
			req:     IssueLoanRequest{PatronID: uuid.New()},
			wantErr: true,
		},
		{
			name:    "missing patron id",
			req:     IssueLoanRequest{BookID: uuid.New()},
			wantErr: true,
		},
		{
			name:    "note too long",
			req:     IssueLoanRequest{BookID: uuid.New(), PatronID: uuid.New(), Note: &longNote},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestListLoansRequest(t *testing.T) {
	t.Run("normalize applies defaults", func(t *testing.T) {
		req := ListLoansRequest{}
		req.Normalize()
		assert.Equal(t, 1, req.Page)
		assert.Equal(t, 20, req.Limit)
	})

	t.Run("normalize caps oversized limit", func(t *testing.T) {
		req := ListLoansRequest{Page: 2, Limit: 500}
		req.Normalize()
		assert.Equal(t, 2, req.Page)
		assert.Equal(t, 20, req.Limit)
	})

	t.Run("invalid status filter", func(t *testing.T) {
		bad := Status("restituito")
		req := ListLoansRequest{Status: &bad}
		assert.Error(t, req.Validate())
	})

	t.Run("valid status filter", func(t *testing.T) {
		s := StatusExpired
		req := ListLoansRequest{Status: &s}
		assert.NoError(t, req.Validate())
	})
}
