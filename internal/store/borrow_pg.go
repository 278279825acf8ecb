package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"libraryapi/internal/circulation"
	"libraryapi/internal/entity"

	"github.com/jackc/pgx/v5"
)

type borrowPG struct {
	tx pgx.Tx
}

const recordColumns = `id, user_id, book_id, copy_id, borrow_date, due_date, return_date, returned, fine, fine_payment_status, condition_on_return, remarks_on_return`

func scanRecord(row pgx.Row) (entity.BorrowRecord, error) {
	var rec entity.BorrowRecord
	err := row.Scan(
		&rec.ID, &rec.UserID, &rec.BookID, &rec.CopyID,
		&rec.BorrowDate, &rec.DueDate, &rec.ReturnDate, &rec.Returned,
		&rec.Fine, &rec.FinePaymentStatus, &rec.ConditionOnReturn, &rec.RemarksOnReturn,
	)
	return rec, err
}

func (r *borrowPG) OpenRecord(ctx context.Context, userID, bookID, copyID string, borrowDate time.Time, loanDays int) (entity.BorrowRecord, error) {
	if loanDays <= 0 {
		return entity.BorrowRecord{}, fmt.Errorf("loan period must be positive, got %d days: %w", loanDays, circulation.ErrValidation)
	}
	query := fmt.Sprintf(`
	INSERT INTO borrow_records (id, user_id, book_id, copy_id, borrow_date, due_date, returned, fine, fine_payment_status)
	VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, false, 0, 'NOT_APPLICABLE')
	RETURNING %s
	`, recordColumns)
	dueDate := borrowDate.AddDate(0, 0, loanDays)
	rec, err := scanRecord(r.tx.QueryRow(ctx, query, userID, bookID, copyID, borrowDate, dueDate))
	if err != nil {
		return entity.BorrowRecord{}, fmt.Errorf("open borrow record: %w", err)
	}
	return rec, nil
}

func (r *borrowPG) CloseRecord(ctx context.Context, recordID string, returnDate time.Time, condition, remarks string, finePaid bool, finePerDay float64) (entity.BorrowRecord, error) {
	current, err := r.GetRecord(ctx, recordID)
	if err != nil {
		return entity.BorrowRecord{}, err
	}
	if current.Returned {
		return entity.BorrowRecord{}, fmt.Errorf("borrow record %s is already returned: %w", recordID, circulation.ErrInvalidState)
	}

	fine := circulation.ComputeFine(current.DueDate, returnDate, finePerDay)
	status := entity.FineNotApplicable
	if fine > 0 {
		status = entity.FinePending
		if finePaid {
			status = entity.FinePaid
		}
	}

	query := fmt.Sprintf(`
	UPDATE borrow_records
	SET returned = true, return_date = $2, fine = $3, fine_payment_status = $4,
	    condition_on_return = $5, remarks_on_return = $6
	WHERE id = $1
	RETURNING %s
	`, recordColumns)
	rec, err := scanRecord(r.tx.QueryRow(ctx, query, recordID, returnDate, fine, status, condition, remarks))
	if err != nil {
		return entity.BorrowRecord{}, fmt.Errorf("close borrow record: %w", err)
	}
	return rec, nil
}

func (r *borrowPG) GetRecord(ctx context.Context, recordID string) (entity.BorrowRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM borrow_records WHERE id = $1 FOR UPDATE`, recordColumns)
	rec, err := scanRecord(r.tx.QueryRow(ctx, query, recordID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.BorrowRecord{}, circulation.ErrNotFound
		}
		return entity.BorrowRecord{}, err
	}
	return rec, nil
}

func (r *borrowPG) FindOpenRecord(ctx context.Context, userID, copyID string) (entity.BorrowRecord, error) {
	query := fmt.Sprintf(`
	SELECT %s FROM borrow_records
	WHERE user_id = $1 AND copy_id = $2 AND returned = false
	LIMIT 1
	FOR UPDATE
	`, recordColumns)
	rec, err := scanRecord(r.tx.QueryRow(ctx, query, userID, copyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.BorrowRecord{}, circulation.ErrNotFound
		}
		return entity.BorrowRecord{}, err
	}
	return rec, nil
}

func (r *borrowPG) CountOpenRecords(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM borrow_records WHERE user_id = $1 AND returned = false`,
		userID,
	).Scan(&count)
	return count, err
}

func (r *borrowPG) ListOpenRecords(ctx context.Context, userID string) ([]entity.BorrowRecord, error) {
	query := fmt.Sprintf(`
	SELECT %s FROM borrow_records
	WHERE user_id = $1 AND returned = false
	ORDER BY borrow_date DESC
	`, recordColumns)
	return r.listRecords(ctx, query, userID)
}

func (r *borrowPG) ListOverdue(ctx context.Context, asOf time.Time) ([]entity.BorrowRecord, error) {
	query := fmt.Sprintf(`
	SELECT %s FROM borrow_records
	WHERE returned = false AND due_date < $1
	ORDER BY due_date
	`, recordColumns)
	return r.listRecords(ctx, query, asOf)
}

func (r *borrowPG) listRecords(ctx context.Context, query string, args ...any) ([]entity.BorrowRecord, error) {
	rows, err := r.tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []entity.BorrowRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
