package circulation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"libraryapi/internal/entity"
)

// Config holds the circulation knobs. Zero values fall back to the library's
// standing policy.
type Config struct {
	MaxBorrowLimit int
	BorrowDays     int
	FinePerDay     float64
}

const (
	defaultMaxBorrowLimit = 3
	defaultBorrowDays     = 14
	defaultFinePerDay     = 5
)

func (c Config) withDefaults() Config {
	if c.MaxBorrowLimit == 0 {
		c.MaxBorrowLimit = defaultMaxBorrowLimit
	}
	if c.BorrowDays == 0 {
		c.BorrowDays = defaultBorrowDays
	}
	if c.FinePerDay == 0 {
		c.FinePerDay = defaultFinePerDay
	}
	return c
}

// Operation names a circulation entry point for the capability table.
type Operation string

const (
	OpBorrowByBook    Operation = "borrow_by_book"
	OpBorrowByCopy    Operation = "borrow_by_copy"
	OpReturn          Operation = "return"
	OpGetFine         Operation = "get_fine"
	OpListOpenRecords Operation = "list_open_records"
)

// requiredRoles is checked once at each entry point. Lending an explicit
// copy and processing returns are desk operations.
var requiredRoles = map[Operation][]entity.Role{
	OpBorrowByBook:    {entity.RoleMember, entity.RoleLibrarian, entity.RoleAdmin},
	OpBorrowByCopy:    {entity.RoleLibrarian, entity.RoleAdmin},
	OpReturn:          {entity.RoleLibrarian, entity.RoleAdmin},
	OpGetFine:         {entity.RoleMember, entity.RoleLibrarian, entity.RoleAdmin},
	OpListOpenRecords: {entity.RoleMember, entity.RoleLibrarian, entity.RoleAdmin},
}

// Actor identifies who is invoking an operation.
type Actor struct {
	UserID string
	Role   entity.Role
}

// BorrowRequest borrows a book for UserID (defaults to the actor). Setting
// CopyID instead of BookID lends that exact copy, which is restricted to
// librarians.
type BorrowRequest struct {
	Actor  Actor
	UserID string
	BookID string
	CopyID string
}

// BorrowOutcome reports either a created loan or a waitlist placement.
// Waitlisted is a successful terminal outcome, not an error.
type BorrowOutcome struct {
	Waitlisted bool      `json:"waitlisted"`
	RecordID   string    `json:"borrow_id,omitempty"`
	BookTitle  string    `json:"book_title"`
	Barcode    string    `json:"barcode,omitempty"`
	DueDate    time.Time `json:"due_date,omitzero"`
}

// ReturnRequest resolves the open record either by RecordID or by
// Barcode+UserRef (email or username). RecordID wins when both are present.
type ReturnRequest struct {
	Actor     Actor
	RecordID  string
	Barcode   string
	UserRef   string
	Condition string
	Remarks   string
	FinePaid  bool
}

// ReturnOutcome reports the closed loan and, when the waitlist was
// non-empty, the user who should be offered the copy next.
type ReturnOutcome struct {
	RecordID           string                   `json:"borrow_id"`
	Fine               float64                  `json:"fine"`
	FinePaymentStatus  entity.FinePaymentStatus `json:"fine_payment_status"`
	Barcode            string                   `json:"barcode"`
	NextWaitlistUserID string                   `json:"next_waitlist_user_id,omitempty"`
}

// FineStatement is the fine owed on a record: the stored amount for returned
// records, or the amount accrued up to now for open ones.
type FineStatement struct {
	RecordID string                   `json:"borrow_id"`
	Fine     float64                  `json:"fine"`
	Status   entity.FinePaymentStatus `json:"fine_payment_status"`
	Returned bool                     `json:"returned"`
}

// OverdueLoan pairs an open overdue record with its fine accrued so far.
type OverdueLoan struct {
	Record      entity.BorrowRecord
	AccruedFine float64
}

// Service is the borrow workflow orchestrator. Each public method is one
// atomic transaction against the unit of work.
type Service struct {
	uow      UnitOfWork
	clock    Clock
	cfg      Config
	notifier Notifier
}

func NewService(uow UnitOfWork, clock Clock, cfg Config, notifier Notifier) *Service {
	return &Service{uow: uow, clock: clock, cfg: cfg.withDefaults(), notifier: notifier}
}

func (s *Service) authorize(op Operation, actor Actor) error {
	for _, role := range requiredRoles[op] {
		if actor.Role == role {
			return nil
		}
	}
	return fmt.Errorf("role %q may not perform %s: %w", actor.Role, op, ErrForbidden)
}

// Borrow runs the borrow transaction: limit check, copy selection (or
// waitlist placement), copy reservation and record creation, all or nothing.
func (s *Service) Borrow(ctx context.Context, req BorrowRequest) (BorrowOutcome, error) {
	op := OpBorrowByBook
	if req.CopyID != "" {
		op = OpBorrowByCopy
	}
	if err := s.authorize(op, req.Actor); err != nil {
		return BorrowOutcome{}, err
	}
	if req.BookID == "" && req.CopyID == "" {
		return BorrowOutcome{}, fmt.Errorf("book_id or copy_id is required: %w", ErrValidation)
	}

	borrowerID := req.UserID
	if borrowerID == "" {
		borrowerID = req.Actor.UserID
	}
	if req.Actor.Role == entity.RoleMember && borrowerID != req.Actor.UserID {
		return BorrowOutcome{}, fmt.Errorf("members may only borrow for themselves: %w", ErrForbidden)
	}

	now := s.clock.Now()
	var out BorrowOutcome
	err := s.uow.Do(ctx, func(l Ledgers) error {
		user, err := l.Users.GetByID(ctx, borrowerID)
		if err != nil {
			return fmt.Errorf("borrower %s: %w", borrowerID, err)
		}

		open, err := l.Records.CountOpenRecords(ctx, user.ID)
		if err != nil {
			return err
		}
		if open >= s.cfg.MaxBorrowLimit {
			return fmt.Errorf("user %s holds %d open loans: %w", user.ID, open, ErrLimitExceeded)
		}

		var copy entity.BookCopy
		if req.CopyID != "" {
			copy, err = l.Inventory.GetCopy(ctx, req.CopyID)
			if err != nil {
				return fmt.Errorf("copy %s: %w", req.CopyID, err)
			}
		} else {
			book, err := l.Inventory.GetBook(ctx, req.BookID)
			if err != nil {
				return fmt.Errorf("book %s: %w", req.BookID, err)
			}
			found, ok, err := l.Inventory.FindAvailableCopy(ctx, book.ID)
			if err != nil {
				return err
			}
			if !ok {
				if err := l.Waitlist.Enqueue(ctx, book.ID, user.ID); err != nil {
					return err
				}
				out = BorrowOutcome{Waitlisted: true, BookTitle: book.Title}
				return nil
			}
			copy = found
		}

		if err := l.Inventory.MarkBorrowed(ctx, copy.ID, now); err != nil {
			return err
		}
		record, err := l.Records.OpenRecord(ctx, user.ID, copy.BookID, copy.ID, now, s.cfg.BorrowDays)
		if err != nil {
			return err
		}

		book, err := l.Inventory.GetBook(ctx, copy.BookID)
		if err != nil {
			return err
		}
		out = BorrowOutcome{
			RecordID:  record.ID,
			BookTitle: book.Title,
			Barcode:   copy.Barcode,
			DueDate:   record.DueDate,
		}
		return nil
	})
	if err != nil {
		return BorrowOutcome{}, err
	}
	return out, nil
}

// Return closes the loan, frees (or parks) the copy and pops the waitlist.
// The dequeued user is surfaced to the notifier only after the transaction
// committed.
func (s *Service) Return(ctx context.Context, req ReturnRequest) (ReturnOutcome, error) {
	if err := s.authorize(OpReturn, req.Actor); err != nil {
		return ReturnOutcome{}, err
	}
	if req.RecordID == "" && (req.Barcode == "" || req.UserRef == "") {
		return ReturnOutcome{}, fmt.Errorf("either borrow_id or barcode plus user is required: %w", ErrValidation)
	}
	condition := req.Condition
	if condition == "" {
		condition = "Good"
	}

	now := s.clock.Now()
	var out ReturnOutcome
	var notifyBookID string
	err := s.uow.Do(ctx, func(l Ledgers) error {
		record, err := s.resolveOpenRecord(ctx, l, req)
		if err != nil {
			return err
		}

		closed, err := l.Records.CloseRecord(ctx, record.ID, now, condition, req.Remarks, req.FinePaid, s.cfg.FinePerDay)
		if err != nil {
			return err
		}
		if err := l.Inventory.MarkReturned(ctx, record.CopyID, condition); err != nil {
			return err
		}

		copy, err := l.Inventory.GetCopy(ctx, record.CopyID)
		if err != nil {
			return err
		}

		out = ReturnOutcome{
			RecordID:          closed.ID,
			Fine:              closed.Fine,
			FinePaymentStatus: closed.FinePaymentStatus,
			Barcode:           copy.Barcode,
		}
		next, ok, err := l.Waitlist.DequeueNext(ctx, record.BookID)
		if err != nil {
			return err
		}
		if ok {
			out.NextWaitlistUserID = next
			notifyBookID = record.BookID
		}
		return nil
	})
	if err != nil {
		return ReturnOutcome{}, err
	}
	if out.NextWaitlistUserID != "" && s.notifier != nil {
		s.notifier.CopyAvailable(ctx, out.NextWaitlistUserID, notifyBookID, out.Barcode)
	}
	return out, nil
}

func (s *Service) resolveOpenRecord(ctx context.Context, l Ledgers, req ReturnRequest) (entity.BorrowRecord, error) {
	if req.RecordID != "" {
		record, err := l.Records.GetRecord(ctx, req.RecordID)
		if err != nil {
			return entity.BorrowRecord{}, fmt.Errorf("borrow record %s: %w", req.RecordID, err)
		}
		if record.Returned {
			return entity.BorrowRecord{}, fmt.Errorf("borrow record %s is already returned: %w", req.RecordID, ErrInvalidState)
		}
		return record, nil
	}

	user, err := l.Users.GetByLogin(ctx, req.UserRef)
	if err != nil {
		return entity.BorrowRecord{}, fmt.Errorf("user %q: %w", req.UserRef, err)
	}
	copy, err := l.Inventory.GetCopyByBarcode(ctx, req.Barcode)
	if err != nil {
		return entity.BorrowRecord{}, fmt.Errorf("barcode %q: %w", req.Barcode, err)
	}
	record, err := l.Records.FindOpenRecord(ctx, user.ID, copy.ID)
	if err != nil {
		return entity.BorrowRecord{}, fmt.Errorf("no active loan of %q by %q: %w", req.Barcode, req.UserRef, err)
	}
	return record, nil
}

// GetFine reports the fine on a record: accrued-to-now for open records,
// the stored amount for returned ones. Members may only look at their own.
func (s *Service) GetFine(ctx context.Context, actor Actor, recordID string) (FineStatement, error) {
	if err := s.authorize(OpGetFine, actor); err != nil {
		return FineStatement{}, err
	}
	if recordID == "" {
		return FineStatement{}, fmt.Errorf("borrow_id is required: %w", ErrValidation)
	}

	var out FineStatement
	err := s.uow.Do(ctx, func(l Ledgers) error {
		record, err := l.Records.GetRecord(ctx, recordID)
		if err != nil {
			return fmt.Errorf("borrow record %s: %w", recordID, err)
		}
		if actor.Role == entity.RoleMember && record.UserID != actor.UserID {
			return fmt.Errorf("record belongs to another user: %w", ErrForbidden)
		}
		out = FineStatement{
			RecordID: record.ID,
			Fine:     record.Fine,
			Status:   record.FinePaymentStatus,
			Returned: record.Returned,
		}
		if !record.Returned {
			out.Fine = ComputeFine(record.DueDate, s.clock.Now(), s.cfg.FinePerDay)
		}
		return nil
	})
	if err != nil {
		return FineStatement{}, err
	}
	return out, nil
}

// ListOpenRecords lists a user's active loans, newest first. Members may
// only list their own.
func (s *Service) ListOpenRecords(ctx context.Context, actor Actor, userID string) ([]entity.BorrowRecord, error) {
	if err := s.authorize(OpListOpenRecords, actor); err != nil {
		return nil, err
	}
	if userID == "" {
		userID = actor.UserID
	}
	if actor.Role == entity.RoleMember && userID != actor.UserID {
		return nil, fmt.Errorf("members may only list their own loans: %w", ErrForbidden)
	}

	var records []entity.BorrowRecord
	err := s.uow.Do(ctx, func(l Ledgers) error {
		if _, err := l.Users.GetByID(ctx, userID); err != nil {
			return fmt.Errorf("user %s: %w", userID, err)
		}
		var err error
		records, err = l.Records.ListOpenRecords(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ListOverdue is used by the overdue scanner: every open record past due as
// of now, with the fine it has accrued so far.
func (s *Service) ListOverdue(ctx context.Context) ([]OverdueLoan, error) {
	now := s.clock.Now()
	var out []OverdueLoan
	err := s.uow.Do(ctx, func(l Ledgers) error {
		records, err := l.Records.ListOverdue(ctx, now)
		if err != nil {
			return err
		}
		for _, r := range records {
			out = append(out, OverdueLoan{
				Record:      r,
				AccruedFine: ComputeFine(r.DueDate, now, s.cfg.FinePerDay),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// IsDamaged reports whether a return condition parks the copy.
func IsDamaged(condition string) bool {
	return strings.EqualFold(condition, "Damaged")
}
