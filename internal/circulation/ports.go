package circulation

import (
	"context"
	"time"

	"libraryapi/internal/entity"
)

// InventoryLedger owns copy availability and the books' derived counters.
// Counter updates are explicit statements issued by the ledger inside the
// enclosing unit of work, never a side effect of a generic save.
type InventoryLedger interface {
	GetBook(ctx context.Context, bookID string) (entity.Book, error)
	GetCopy(ctx context.Context, copyID string) (entity.BookCopy, error)
	GetCopyByBarcode(ctx context.Context, barcode string) (entity.BookCopy, error)
	// FindAvailableCopy picks an available, undamaged copy of the book,
	// lowest barcode first. The second result is false when none exists.
	FindAvailableCopy(ctx context.Context, bookID string) (entity.BookCopy, bool, error)
	// MarkBorrowed fails with ErrConflict unless the copy is AVAILABLE.
	// On success it stamps last_borrowed_at and decrements the book's
	// available_copies.
	MarkBorrowed(ctx context.Context, copyID string, at time.Time) error
	// MarkReturned sets the copy AVAILABLE, or DAMAGED when the return
	// condition says so; available_copies is incremented only when the copy
	// actually becomes available again. total_copies is never touched.
	MarkReturned(ctx context.Context, copyID string, condition string) error
}

// BorrowLedger owns the BorrowRecord lifecycle and fine arithmetic.
type BorrowLedger interface {
	OpenRecord(ctx context.Context, userID, bookID, copyID string, borrowDate time.Time, loanDays int) (entity.BorrowRecord, error)
	// CloseRecord fails with ErrInvalidState when the record is already
	// returned. It computes the fine from the due date and sets the payment
	// status: NOT_APPLICABLE for zero, otherwise PAID or PENDING.
	CloseRecord(ctx context.Context, recordID string, returnDate time.Time, condition, remarks string, finePaid bool, finePerDay float64) (entity.BorrowRecord, error)
	GetRecord(ctx context.Context, recordID string) (entity.BorrowRecord, error)
	FindOpenRecord(ctx context.Context, userID, copyID string) (entity.BorrowRecord, error)
	CountOpenRecords(ctx context.Context, userID string) (int, error)
	ListOpenRecords(ctx context.Context, userID string) ([]entity.BorrowRecord, error)
	ListOverdue(ctx context.Context, asOf time.Time) ([]entity.BorrowRecord, error)
}

// WaitlistLedger is the per-book FIFO queue of users waiting for a copy.
type WaitlistLedger interface {
	// Enqueue appends the user unless already present (then it is a no-op).
	Enqueue(ctx context.Context, bookID, userID string) error
	// DequeueNext pops the front entry. It only identifies who to notify;
	// borrowing remains a separate action.
	DequeueNext(ctx context.Context, bookID string) (string, bool, error)
}

// UserDirectory is the identity collaborator. Circulation never verifies
// credentials.
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (entity.User, error)
	// GetByLogin resolves a user by email or username.
	GetByLogin(ctx context.Context, emailOrUsername string) (entity.User, error)
}

// Ledgers bundles the stores bound to one transaction.
type Ledgers struct {
	Inventory InventoryLedger
	Records   BorrowLedger
	Waitlist  WaitlistLedger
	Users     UserDirectory
}

// UnitOfWork runs fn atomically: either every mutation made through the
// ledgers commits, or none does. Implementations must guarantee that two
// concurrent units of work cannot both observe the same copy as available.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(Ledgers) error) error
}

// Clock supplies "now" so tests can pin time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// Notifier is the outbound notification collaborator. Implementations must
// not block the circulation transaction; the service calls them only after
// commit.
type Notifier interface {
	// CopyAvailable tells the next waitlisted user a copy freed up.
	CopyAvailable(ctx context.Context, userID, bookID, barcode string)
	// RecordOverdue reports an open record past its due date.
	RecordOverdue(ctx context.Context, record entity.BorrowRecord, accruedFine float64)
}
