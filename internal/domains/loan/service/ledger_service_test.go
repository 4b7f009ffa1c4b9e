package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bookModel "library-backend/internal/domains/book/model"
	loanModel "library-backend/internal/domains/loan/model"
	patronModel "library-backend/internal/domains/patron/model"
)

// fakeStore backs the in-memory repository fakes. A single mutex covers
// books and loans together so the fakes give the same all-or-nothing
// behavior as the transactional Postgres repositories.
type fakeStore struct {
	mu      sync.Mutex
	books   map[uuid.UUID]*bookModel.Book
	patrons map[uuid.UUID]*patronModel.Patron
	loans   map[uuid.UUID]*loanModel.Loan
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		books:   make(map[uuid.UUID]*bookModel.Book),
		patrons: make(map[uuid.UUID]*patronModel.Patron),
		loans:   make(map[uuid.UUID]*loanModel.Loan),
	}
}

type fakeBookRepo struct{ store *fakeStore }

func (r *fakeBookRepo) Create(ctx context.Context, book *bookModel.Book) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *book
	r.store.books[book.ID] = &cp
	return nil
}

func (r *fakeBookRepo) GetByID(ctx context.Context, id uuid.UUID) (*bookModel.Book, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	b, ok := r.store.books[id]
	if !ok {
		return nil, bookModel.NewBookNotFoundError(id)
	}
	cp := *b
	return &cp, nil
}

func (r *fakeBookRepo) GetByISBN(ctx context.Context, isbn string) (*bookModel.Book, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, b := range r.store.books {
		if b.ISBN == isbn {
			cp := *b
			return &cp, nil
		}
	}
	return nil, bookModel.ErrBookNotFound
}

func (r *fakeBookRepo) List(ctx context.Context, filter bookModel.ListBooksRequest) ([]bookModel.Book, int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]bookModel.Book, 0, len(r.store.books))
	for _, b := range r.store.books {
		out = append(out, *b)
	}
	return out, len(out), nil
}

func (r *fakeBookRepo) AdjustAvailability(ctx context.Context, id uuid.UUID, delta int) (*bookModel.Book, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	b, ok := r.store.books[id]
	if !ok {
		return nil, bookModel.NewBookNotFoundError(id)
	}
	next := b.CopiesAvailable + delta
	if next < 0 || next > b.CopiesTotal {
		return nil, bookModel.NewOverdrawError(id, delta, b.CopiesAvailable, b.CopiesTotal)
	}
	b.CopiesAvailable = next
	cp := *b
	return &cp, nil
}

type fakePatronRepo struct{ store *fakeStore }

func (r *fakePatronRepo) Create(ctx context.Context, patron *patronModel.Patron) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *patron
	r.store.patrons[patron.ID] = &cp
	return nil
}

func (r *fakePatronRepo) GetByID(ctx context.Context, id uuid.UUID) (*patronModel.Patron, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.patrons[id]
	if !ok {
		return nil, patronModel.NewPatronNotFoundError(id)
	}
	cp := *p
	return &cp, nil
}

func (r *fakePatronRepo) List(ctx context.Context, page, limit int) ([]patronModel.Patron, int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]patronModel.Patron, 0, len(r.store.patrons))
	for _, p := range r.store.patrons {
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (r *fakePatronRepo) Update(ctx context.Context, id uuid.UUID, patron *patronModel.Patron) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.patrons[id]; !ok {
		return patronModel.NewPatronNotFoundError(id)
	}
	cp := *patron
	r.store.patrons[id] = &cp
	return nil
}

func (r *fakePatronRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) (*patronModel.Patron, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.patrons[id]
	if !ok {
		return nil, patronModel.NewPatronNotFoundError(id)
	}
	p.Active = active
	cp := *p
	return &cp, nil
}

type fakeLoanRepo struct{ store *fakeStore }

func (r *fakeLoanRepo) Create(ctx context.Context, loan *loanModel.Loan) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	b, ok := r.store.books[loan.BookID]
	if !ok {
		return bookModel.NewBookNotFoundError(loan.BookID)
	}
	if b.CopiesAvailable < 1 {
		return bookModel.ErrBookUnavailable
	}
	b.CopiesAvailable--

	cp := *loan
	r.store.loans[loan.ID] = &cp
	return nil
}

func (r *fakeLoanRepo) MarkReturned(ctx context.Context, id uuid.UUID, returnedAt time.Time, fine decimal.Decimal) (*loanModel.Loan, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	l, ok := r.store.loans[id]
	if !ok {
		return nil, loanModel.NewLoanNotFoundError(id)
	}
	if l.Status != loanModel.StatusActive {
		return nil, loanModel.NewLoanAlreadyClosedError(id, l.Status)
	}

	b, ok := r.store.books[l.BookID]
	if !ok {
		return nil, bookModel.NewBookNotFoundError(l.BookID)
	}
	if b.CopiesAvailable+1 > b.CopiesTotal {
		return nil, bookModel.NewOverdrawError(l.BookID, 1, b.CopiesAvailable, b.CopiesTotal)
	}
	b.CopiesAvailable++

	l.Status = loanModel.StatusReturned
	l.ReturnDate = &returnedAt
	l.FineAmount = fine
	l.UpdatedAt = returnedAt

	cp := *l
	return &cp, nil
}

func (r *fakeLoanRepo) ExpireOverdue(ctx context.Context, asOf time.Time) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	count := 0
	for _, l := range r.store.loans {
		if l.Status == loanModel.StatusActive && l.DueDate.Before(asOf) {
			l.Status = loanModel.StatusExpired
			l.UpdatedAt = asOf
			count++
		}
	}
	return count, nil
}

func (r *fakeLoanRepo) GetByID(ctx context.Context, id uuid.UUID) (*loanModel.Loan, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	l, ok := r.store.loans[id]
	if !ok {
		return nil, loanModel.NewLoanNotFoundError(id)
	}
	cp := *l
	return &cp, nil
}

func (r *fakeLoanRepo) ListByPatron(ctx context.Context, patronID uuid.UUID, filter loanModel.ListLoansRequest) ([]loanModel.Loan, int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	out := make([]loanModel.Loan, 0)
	for _, l := range r.store.loans {
		if l.PatronID != patronID {
			continue
		}
		if filter.Status != nil && l.Status != *filter.Status {
			continue
		}
		out = append(out, *l)
	}
	return out, len(out), nil
}

type noopCache struct{}

func (noopCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	return false, nil
}
func (noopCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}
func (noopCache) Delete(ctx context.Context, keys ...string) error { return nil }

func (noopCache) DeletePattern(ctx context.Context, pattern string) error { return nil }

func (noopCache) Ping(ctx context.Context) error { return nil }

type testLedger struct {
	store   *fakeStore
	service ServiceInterface
}

func newTestLedger(t *testing.T) *testLedger {
	t.Helper()

	store := newFakeStore()
	svc := NewLedgerService(
		&fakeLoanRepo{store: store},
		&fakeBookRepo{store: store},
		&fakePatronRepo{store: store},
		noopCache{},
		Policy{
			LoanPeriod:       30 * 24 * time.Hour,
			DailyOverdueFine: decimal.NewFromFloat(0.50),
		},
	)

	return &testLedger{store: store, service: svc}
}

func (tl *testLedger) addBook(t *testing.T, total, available int) *bookModel.Book {
	t.Helper()
	book := &bookModel.Book{
		ID:              uuid.New(),
		Title:           "Il nome della rosa",
		AuthorID:        uuid.New(),
		ISBN:            "978-88-452-1234-5",
		PublicationYear: 1980,
		Pages:           512,
		CopiesTotal:     total,
		CopiesAvailable: available,
	}
	tl.store.books[book.ID] = book
	return book
}

func (tl *testLedger) addPatron(t *testing.T, active bool) *patronModel.Patron {
	t.Helper()
	patron := &patronModel.Patron{
		ID:         uuid.New(),
		GivenName:  "Maria",
		FamilyName: "Rossi",
		Email:      "maria.rossi@example.com",
		FiscalCode: "RSSMRA80A41H501X",
		Active:     active,
	}
	tl.store.patrons[patron.ID] = patron
	return patron
}

func (tl *testLedger) availability(id uuid.UUID) int {
	tl.store.mu.Lock()
	defer tl.store.mu.Unlock()
	return tl.store.books[id].CopiesAvailable
}

func TestIssueLoan(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	t.Run("issues a loan and decrements availability", func(t *testing.T) {
		tl := newTestLedger(t)
		book := tl.addBook(t, 3, 3)
		patron := tl.addPatron(t, true)

		loan, err := tl.service.IssueLoan(ctx, &loanModel.IssueLoanRequest{
			BookID:   book.ID,
			PatronID: patron.ID,
		}, now)

		require.NoError(t, err)
		assert.Equal(t, book.ID, loan.BookID)
		assert.Equal(t, patron.ID, loan.PatronID)
		assert.Equal(t, loanModel.StatusActive, loan.Status)
		assert.Equal(t, now, loan.LoanDate)
		assert.Equal(t, now.Add(30*24*time.Hour), loan.DueDate)
		assert.Nil(t, loan.ReturnDate)
		assert.True(t, loan.FineAmount.IsZero())
		assert.Equal(t, "Maria Rossi", loan.Patron.Name)
		assert.Equal(t, "maria.rossi@example.com", loan.Patron.Email)
		assert.Equal(t, 2, tl.availability(book.ID))
	})

	t.Run("rejects when no copies are available", func(t *testing.T) {
		tl := newTestLedger(t)
		book := tl.addBook(t, 2, 0)
		patron := tl.addPatron(t, true)

		_, err := tl.service.IssueLoan(ctx, &loanModel.IssueLoanRequest{
			BookID:   book.ID,
			PatronID: patron.ID,
		}, now)

		require.ErrorIs(t, err, bookModel.ErrBookUnavailable)
		assert.Equal(t, 0, tl.availability(book.ID))
	})

	t.Run("rejects an inactive patron without touching inventory", func(t *testing.T) {
		tl := newTestLedger(t)
		book := tl.addBook(t, 2, 2)
		patron := tl.addPatron(t, false)

		_, err := tl.service.IssueLoan(ctx, &loanModel.IssueLoanRequest{
			BookID:   book.ID,
			PatronID: patron.ID,
		}, now)

		require.ErrorIs(t, err, patronModel.ErrPatronInactive)
		assert.Equal(t, 2, tl.availability(book.ID))
	})

	t.Run("rejects an unknown book", func(t *testing.T) {
		tl := newTestLedger(t)
		patron := tl.addPatron(t, true)

		_, err := tl.service.IssueLoan(ctx, &loanModel.IssueLoanRequest{
			BookID:   uuid.New(),
			PatronID: patron.ID,
		}, now)

		require.True(t, bookModel.IsNotFoundError(err))
	})

	t.Run("rejects an unknown patron without touching inventory", func(t *testing.T) {
		tl := newTestLedger(t)
		book := tl.addBook(t, 1, 1)

		_, err := tl.service.IssueLoan(ctx, &loanModel.IssueLoanRequest{
			BookID:   book.ID,
			PatronID: uuid.New(),
		}, now)

		require.True(t, patronModel.IsNotFoundError(err))
		assert.Equal(t, 1, tl.availability(book.ID))
	})

	t.Run("rejects a blank request", func(t *testing.T) {
		tl := newTestLedger(t)

		_, err := tl.service.IssueLoan(ctx, &loanModel.IssueLoanRequest{}, now)
		require.Error(t, err)
	})
}

func TestIssueLoan_LastCopyRace(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	tl := newTestLedger(t)
	book := tl.addBook(t, 5, 1)
	first := tl.addPatron(t, true)
	second := tl.addPatron(t, true)

	var wg sync.WaitGroup
	results := make(chan error, 2)

	for _, patronID := range []uuid.UUID{first.ID, second.ID} {
		wg.Add(1)
		go func(pid uuid.UUID) {
			defer wg.Done()
			_, err := tl.service.IssueLoan(ctx, &loanModel.IssueLoanRequest{
				BookID:   book.ID,
				PatronID: pid,
			}, now)
			results <- err
		}(patronID)
	}
	wg.Wait()
	close(results)

	var succeeded, unavailable int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, bookModel.ErrBookUnavailable):
			unavailable++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, succeeded, "exactly one issue must win the last copy")
	assert.Equal(t, 1, unavailable)
	assert.Equal(t, 0, tl.availability(book.ID))
}

func TestReturnLoan(t *testing.T) {
	ctx := context.Background()
	issuedAt := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	issue := func(t *testing.T, tl *testLedger) (*bookModel.Book, *loanModel.Loan) {
		t.Helper()
		book := tl.addBook(t, 2, 2)
		patron := tl.addPatron(t, true)
		loan, err := tl.service.IssueLoan(ctx, &loanModel.IssueLoanRequest{
			BookID:   book.ID,
			PatronID: patron.ID,
		}, issuedAt)
		require.NoError(t, err)
		return book, loan
	}

	t.Run("on time return restores availability with no fine", func(t *testing.T) {
		tl := newTestLedger(t)
		book, loan := issue(t, tl)
		returnedAt := loan.DueDate.Add(-time.Hour)

		updated, err := tl.service.ReturnLoan(ctx, loan.ID, returnedAt)

		require.NoError(t, err)
		assert.Equal(t, loanModel.StatusReturned, updated.Status)
		require.NotNil(t, updated.ReturnDate)
		assert.Equal(t, returnedAt, *updated.ReturnDate)
		assert.True(t, updated.FineAmount.IsZero())
		assert.Equal(t, 2, tl.availability(book.ID))
	})

	t.Run("late return is fined per started day", func(t *testing.T) {
		tl := newTestLedger(t)
		_, loan := issue(t, tl)
		// 2 full days plus 12 hours past due: 3 started days.
		returnedAt := loan.DueDate.Add(60 * time.Hour)

		updated, err := tl.service.ReturnLoan(ctx, loan.ID, returnedAt)

		require.NoError(t, err)
		assert.True(t, updated.FineAmount.Equal(decimal.NewFromFloat(1.50)),
			"want 1.50, got %s", updated.FineAmount)
	})

	t.Run("second return is rejected", func(t *testing.T) {
		tl := newTestLedger(t)
		book, loan := issue(t, tl)
		returnedAt := loan.DueDate.Add(-time.Hour)

		_, err := tl.service.ReturnLoan(ctx, loan.ID, returnedAt)
		require.NoError(t, err)

		_, err = tl.service.ReturnLoan(ctx, loan.ID, returnedAt.Add(time.Minute))
		require.True(t, loanModel.IsAlreadyClosedError(err))
		assert.Equal(t, 2, tl.availability(book.ID), "availability must not be incremented twice")
	})

	t.Run("expired loan cannot be returned", func(t *testing.T) {
		tl := newTestLedger(t)
		_, loan := issue(t, tl)

		_, err := tl.service.ExpireOverdueLoans(ctx, loan.DueDate.Add(time.Hour))
		require.NoError(t, err)

		_, err = tl.service.ReturnLoan(ctx, loan.ID, loan.DueDate.Add(2*time.Hour))
		require.True(t, loanModel.IsAlreadyClosedError(err))
	})

	t.Run("unknown loan", func(t *testing.T) {
		tl := newTestLedger(t)

		_, err := tl.service.ReturnLoan(ctx, uuid.New(), issuedAt)
		require.True(t, loanModel.IsNotFoundError(err))
	})
}

func TestExpireOverdueLoans(t *testing.T) {
	ctx := context.Background()
	issuedAt := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

	tl := newTestLedger(t)
	book := tl.addBook(t, 5, 5)
	patron := tl.addPatron(t, true)

	var loans []*loanModel.Loan
	for i := 0; i < 3; i++ {
		loan, err := tl.service.IssueLoan(ctx, &loanModel.IssueLoanRequest{
			BookID:   book.ID,
			PatronID: patron.ID,
		}, issuedAt.Add(time.Duration(i)*14*24*time.Hour))
		require.NoError(t, err)
		loans = append(loans, loan)
	}

	// Two loans past due, the third still current.
	asOf := loans[1].DueDate.Add(time.Hour)

	count, err := tl.service.ExpireOverdueLoans(ctx, asOf)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Expiry is a pure status change: the copies are still out.
	assert.Equal(t, 2, tl.availability(book.ID))

	for i, want := range []loanModel.Status{loanModel.StatusExpired, loanModel.StatusExpired, loanModel.StatusActive} {
		got, err := tl.service.GetByID(ctx, loans[i].ID)
		require.NoError(t, err)
		assert.Equal(t, want, got.Status)
	}

	// A second sweep at the same instant finds nothing left to do.
	count, err = tl.service.ExpireOverdueLoans(ctx, asOf)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestPatronSnapshotIsImmutable(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	tl := newTestLedger(t)
	book := tl.addBook(t, 1, 1)
	patron := tl.addPatron(t, true)

	loan, err := tl.service.IssueLoan(ctx, &loanModel.IssueLoanRequest{
		BookID:   book.ID,
		PatronID: patron.ID,
	}, now)
	require.NoError(t, err)

	// The patron moves: live record changes, history must not.
	tl.store.mu.Lock()
	tl.store.patrons[patron.ID].Email = "maria.bianchi@example.com"
	tl.store.patrons[patron.ID].FamilyName = "Bianchi"
	tl.store.mu.Unlock()

	got, err := tl.service.GetByID(ctx, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maria Rossi", got.Patron.Name)
	assert.Equal(t, "maria.rossi@example.com", got.Patron.Email)
}

func TestGetActiveLoansForPatron(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	tl := newTestLedger(t)
	book := tl.addBook(t, 5, 5)
	patron := tl.addPatron(t, true)
	other := tl.addPatron(t, true)

	first, err := tl.service.IssueLoan(ctx, &loanModel.IssueLoanRequest{
		BookID:   book.ID,
		PatronID: patron.ID,
	}, now)
	require.NoError(t, err)

	second, err := tl.service.IssueLoan(ctx, &loanModel.IssueLoanRequest{
		BookID:   book.ID,
		PatronID: patron.ID,
	}, now)
	require.NoError(t, err)

	_, err = tl.service.IssueLoan(ctx, &loanModel.IssueLoanRequest{
		BookID:   book.ID,
		PatronID: other.ID,
	}, now)
	require.NoError(t, err)

	_, err = tl.service.ReturnLoan(ctx, first.ID, now.Add(time.Hour))
	require.NoError(t, err)

	active, err := tl.service.GetActiveLoansForPatron(ctx, patron.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, second.ID, active[0].ID)

	_, err = tl.service.GetActiveLoansForPatron(ctx, uuid.New())
	require.True(t, patronModel.IsNotFoundError(err))
}
