package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"libraryapi/internal/circulation"
	"libraryapi/internal/entity"

	"github.com/google/uuid"
)

// Mem is an in-memory unit of work with the same semantics as the Postgres
// store. One mutex serializes units of work, and a snapshot taken before
// each unit restores the state when it fails, so a failed transaction leaves
// no partial mutation behind.
type Mem struct {
	mu        sync.Mutex
	users     map[string]entity.User
	books     map[string]entity.Book
	copies    map[string]entity.BookCopy
	records   map[string]entity.BorrowRecord
	waitlists map[string][]string
}

func NewMem() *Mem {
	return &Mem{
		users:     make(map[string]entity.User),
		books:     make(map[string]entity.Book),
		copies:    make(map[string]entity.BookCopy),
		records:   make(map[string]entity.BorrowRecord),
		waitlists: make(map[string][]string),
	}
}

func (m *Mem) Do(ctx context.Context, fn func(circulation.Ledgers) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.clone()
	ledgers := circulation.Ledgers{
		Inventory: &memInventory{m},
		Records:   &memBorrow{m},
		Waitlist:  &memWaitlist{m},
		Users:     &memUsers{m},
	}
	if err := fn(ledgers); err != nil {
		m.users, m.books, m.copies, m.records, m.waitlists =
			snapshot.users, snapshot.books, snapshot.copies, snapshot.records, snapshot.waitlists
		return err
	}
	return nil
}

func (m *Mem) clone() *Mem {
	c := NewMem()
	for k, v := range m.users {
		c.users[k] = v
	}
	for k, v := range m.books {
		c.books[k] = v
	}
	for k, v := range m.copies {
		c.copies[k] = v
	}
	for k, v := range m.records {
		c.records[k] = v
	}
	for k, v := range m.waitlists {
		c.waitlists[k] = append([]string(nil), v...)
	}
	return c
}

// Users exposes the directory for callers outside a unit of work.
func (m *Mem) Users() circulation.UserDirectory { return &lockedUsers{m} }

// ---- seed helpers (fixtures for tests and demos) ----

func (m *Mem) SeedUser(u entity.User) entity.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = entity.RoleMember
	}
	u.IsActive = true
	m.users[u.ID] = u
	return u
}

func (m *Mem) SeedBook(b entity.Book) entity.Book {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	m.books[b.ID] = b
	return b
}

// SeedCopy registers a copy and bumps the owning book's counters, the way
// copy creation does in the catalog: total always, available only when the
// copy starts out available.
func (m *Mem) SeedCopy(c entity.BookCopy) entity.BookCopy {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Status == "" {
		c.Status = entity.CopyAvailable
	}
	if c.Condition == "" {
		c.Condition = "Good"
	}
	m.copies[c.ID] = c

	book, ok := m.books[c.BookID]
	if ok {
		book.TotalCopies++
		if c.Status == entity.CopyAvailable {
			book.AvailableCopies++
		}
		m.books[c.BookID] = book
	}
	return c
}

// ---- inspection helpers ----

func (m *Mem) Book(id string) (entity.Book, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[id]
	return b, ok
}

func (m *Mem) Copy(id string) (entity.BookCopy, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.copies[id]
	return c, ok
}

func (m *Mem) Record(id string) (entity.BorrowRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[id]
	return r, ok
}

func (m *Mem) Waitlist(bookID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.waitlists[bookID]...)
}

func (m *Mem) OpenRecordCount(userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.records {
		if r.UserID == userID && !r.Returned {
			n++
		}
	}
	return n
}

// AvailableCopyCount recounts copies in AVAILABLE status, for checking the
// counter invariant from tests.
func (m *Mem) AvailableCopyCount(bookID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.copies {
		if c.BookID == bookID && c.Status == entity.CopyAvailable {
			n++
		}
	}
	return n
}

// ---- ledgers (called with m.mu held by Do) ----

type memInventory struct{ m *Mem }

func (r *memInventory) GetBook(_ context.Context, bookID string) (entity.Book, error) {
	b, ok := r.m.books[bookID]
	if !ok {
		return entity.Book{}, circulation.ErrNotFound
	}
	return b, nil
}

func (r *memInventory) GetCopy(_ context.Context, copyID string) (entity.BookCopy, error) {
	c, ok := r.m.copies[copyID]
	if !ok {
		return entity.BookCopy{}, circulation.ErrNotFound
	}
	return c, nil
}

func (r *memInventory) GetCopyByBarcode(_ context.Context, barcode string) (entity.BookCopy, error) {
	for _, c := range r.m.copies {
		if c.Barcode == barcode {
			return c, nil
		}
	}
	return entity.BookCopy{}, circulation.ErrNotFound
}

func (r *memInventory) FindAvailableCopy(_ context.Context, bookID string) (entity.BookCopy, bool, error) {
	var candidates []entity.BookCopy
	for _, c := range r.m.copies {
		if c.BookID == bookID && c.Status == entity.CopyAvailable && !circulation.IsDamaged(c.Condition) {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		return entity.BookCopy{}, false, nil
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Barcode < candidates[j].Barcode })
	return candidates[0], true, nil
}

func (r *memInventory) MarkBorrowed(_ context.Context, copyID string, at time.Time) error {
	c, ok := r.m.copies[copyID]
	if !ok {
		return fmt.Errorf("copy %s: %w", copyID, circulation.ErrNotFound)
	}
	if c.Status != entity.CopyAvailable {
		return fmt.Errorf("copy %s is not available: %w", copyID, circulation.ErrConflict)
	}
	stamp := at
	c.Status = entity.CopyBorrowed
	c.LastBorrowedAt = &stamp
	r.m.copies[copyID] = c

	book := r.m.books[c.BookID]
	book.AvailableCopies--
	r.m.books[c.BookID] = book
	return nil
}

func (r *memInventory) MarkReturned(_ context.Context, copyID string, condition string) error {
	c, ok := r.m.copies[copyID]
	if !ok {
		return fmt.Errorf("copy %s: %w", copyID, circulation.ErrNotFound)
	}
	status := entity.CopyAvailable
	if circulation.IsDamaged(condition) {
		status = entity.CopyDamaged
	}
	c.Status = status
	c.Condition = condition
	r.m.copies[copyID] = c

	if status == entity.CopyAvailable {
		book := r.m.books[c.BookID]
		book.AvailableCopies++
		r.m.books[c.BookID] = book
	}
	return nil
}

type memBorrow struct{ m *Mem }

func (r *memBorrow) OpenRecord(_ context.Context, userID, bookID, copyID string, borrowDate time.Time, loanDays int) (entity.BorrowRecord, error) {
	if loanDays <= 0 {
		return entity.BorrowRecord{}, fmt.Errorf("loan period must be positive, got %d days: %w", loanDays, circulation.ErrValidation)
	}
	rec := entity.BorrowRecord{
		ID:                uuid.NewString(),
		UserID:            userID,
		BookID:            bookID,
		CopyID:            copyID,
		BorrowDate:        borrowDate,
		DueDate:           borrowDate.AddDate(0, 0, loanDays),
		FinePaymentStatus: entity.FineNotApplicable,
	}
	r.m.records[rec.ID] = rec
	return rec, nil
}

func (r *memBorrow) CloseRecord(_ context.Context, recordID string, returnDate time.Time, condition, remarks string, finePaid bool, finePerDay float64) (entity.BorrowRecord, error) {
	rec, ok := r.m.records[recordID]
	if !ok {
		return entity.BorrowRecord{}, fmt.Errorf("borrow record %s: %w", recordID, circulation.ErrNotFound)
	}
	if rec.Returned {
		return entity.BorrowRecord{}, fmt.Errorf("borrow record %s is already returned: %w", recordID, circulation.ErrInvalidState)
	}

	fine := circulation.ComputeFine(rec.DueDate, returnDate, finePerDay)
	status := entity.FineNotApplicable
	if fine > 0 {
		status = entity.FinePending
		if finePaid {
			status = entity.FinePaid
		}
	}

	stamp := returnDate
	rec.Returned = true
	rec.ReturnDate = &stamp
	rec.Fine = fine
	rec.FinePaymentStatus = status
	rec.ConditionOnReturn = condition
	rec.RemarksOnReturn = remarks
	r.m.records[recordID] = rec
	return rec, nil
}

func (r *memBorrow) GetRecord(_ context.Context, recordID string) (entity.BorrowRecord, error) {
	rec, ok := r.m.records[recordID]
	if !ok {
		return entity.BorrowRecord{}, circulation.ErrNotFound
	}
	return rec, nil
}

func (r *memBorrow) FindOpenRecord(_ context.Context, userID, copyID string) (entity.BorrowRecord, error) {
	for _, rec := range r.m.records {
		if rec.UserID == userID && rec.CopyID == copyID && !rec.Returned {
			return rec, nil
		}
	}
	return entity.BorrowRecord{}, circulation.ErrNotFound
}

func (r *memBorrow) CountOpenRecords(_ context.Context, userID string) (int, error) {
	n := 0
	for _, rec := range r.m.records {
		if rec.UserID == userID && !rec.Returned {
			n++
		}
	}
	return n, nil
}

func (r *memBorrow) ListOpenRecords(_ context.Context, userID string) ([]entity.BorrowRecord, error) {
	var records []entity.BorrowRecord
	for _, rec := range r.m.records {
		if rec.UserID == userID && !rec.Returned {
			records = append(records, rec)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].BorrowDate.After(records[j].BorrowDate) })
	return records, nil
}

func (r *memBorrow) ListOverdue(_ context.Context, asOf time.Time) ([]entity.BorrowRecord, error) {
	var records []entity.BorrowRecord
	for _, rec := range r.m.records {
		if !rec.Returned && rec.DueDate.Before(asOf) {
			records = append(records, rec)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].DueDate.Before(records[j].DueDate) })
	return records, nil
}

type memWaitlist struct{ m *Mem }

func (r *memWaitlist) Enqueue(_ context.Context, bookID, userID string) error {
	for _, waiting := range r.m.waitlists[bookID] {
		if waiting == userID {
			return nil
		}
	}
	r.m.waitlists[bookID] = append(r.m.waitlists[bookID], userID)
	return nil
}

func (r *memWaitlist) DequeueNext(_ context.Context, bookID string) (string, bool, error) {
	queue := r.m.waitlists[bookID]
	if len(queue) == 0 {
		return "", false, nil
	}
	next := queue[0]
	r.m.waitlists[bookID] = queue[1:]
	return next, true, nil
}

type memUsers struct{ m *Mem }

func (r *memUsers) GetByID(_ context.Context, id string) (entity.User, error) {
	u, ok := r.m.users[id]
	if !ok {
		return entity.User{}, circulation.ErrNotFound
	}
	return u, nil
}

func (r *memUsers) GetByLogin(_ context.Context, ref string) (entity.User, error) {
	for _, u := range r.m.users {
		if u.Email == ref || u.Username == ref {
			return u, nil
		}
	}
	return entity.User{}, circulation.ErrNotFound
}

// lockedUsers takes the store mutex itself, for use outside Do.
type lockedUsers struct{ m *Mem }

func (r *lockedUsers) GetByID(ctx context.Context, id string) (entity.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return (&memUsers{r.m}).GetByID(ctx, id)
}

func (r *lockedUsers) GetByLogin(ctx context.Context, ref string) (entity.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return (&memUsers{r.m}).GetByLogin(ctx, ref)
}
