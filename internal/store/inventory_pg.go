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

type inventoryPG struct {
	tx pgx.Tx
}

const copyColumns = `id, book_id, barcode, status, condition, remarks, added_at, last_borrowed_at`

func scanCopy(row pgx.Row) (entity.BookCopy, error) {
	var c entity.BookCopy
	err := row.Scan(&c.ID, &c.BookID, &c.Barcode, &c.Status, &c.Condition, &c.Remarks, &c.AddedAt, &c.LastBorrowedAt)
	return c, err
}

func (r *inventoryPG) GetBook(ctx context.Context, bookID string) (entity.Book, error) {
	const query = `
	SELECT id, title, author, category, publisher, published_year, isbn, location, total_copies, available_copies, created_at
	FROM books WHERE id = $1
	`
	var b entity.Book
	err := r.tx.QueryRow(ctx, query, bookID).Scan(
		&b.ID, &b.Title, &b.Author, &b.Category, &b.Publisher, &b.PublishedYear,
		&b.ISBN, &b.Location, &b.TotalCopies, &b.AvailableCopies, &b.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.Book{}, circulation.ErrNotFound
		}
		return entity.Book{}, err
	}
	return b, nil
}

func (r *inventoryPG) GetCopy(ctx context.Context, copyID string) (entity.BookCopy, error) {
	query := fmt.Sprintf(`SELECT %s FROM book_copies WHERE id = $1 FOR UPDATE`, copyColumns)
	c, err := scanCopy(r.tx.QueryRow(ctx, query, copyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.BookCopy{}, circulation.ErrNotFound
		}
		return entity.BookCopy{}, err
	}
	return c, nil
}

func (r *inventoryPG) GetCopyByBarcode(ctx context.Context, barcode string) (entity.BookCopy, error) {
	query := fmt.Sprintf(`SELECT %s FROM book_copies WHERE barcode = $1 FOR UPDATE`, copyColumns)
	c, err := scanCopy(r.tx.QueryRow(ctx, query, barcode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.BookCopy{}, circulation.ErrNotFound
		}
		return entity.BookCopy{}, err
	}
	return c, nil
}

// FindAvailableCopy locks the chosen copy row. SKIP LOCKED lets concurrent
// borrowers of the same book contend per copy instead of queueing on one row:
// each transaction claims a different copy, and whoever finds none left is
// told so rather than blocked. The condition filter catches copies the
// catalog marked damaged without parking their status.
func (r *inventoryPG) FindAvailableCopy(ctx context.Context, bookID string) (entity.BookCopy, bool, error) {
	query := fmt.Sprintf(`
	SELECT %s FROM book_copies
	WHERE book_id = $1 AND status = 'AVAILABLE' AND lower(condition) <> 'damaged'
	ORDER BY barcode
	LIMIT 1
	FOR UPDATE SKIP LOCKED
	`, copyColumns)
	c, err := scanCopy(r.tx.QueryRow(ctx, query, bookID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.BookCopy{}, false, nil
		}
		return entity.BookCopy{}, false, err
	}
	return c, true, nil
}

func (r *inventoryPG) MarkBorrowed(ctx context.Context, copyID string, at time.Time) error {
	// Conditional transition: only an AVAILABLE copy can be claimed, so a
	// lost-update race surfaces as zero rows instead of a double borrow.
	const claim = `
	UPDATE book_copies
	SET status = 'BORROWED', last_borrowed_at = $2
	WHERE id = $1 AND status = 'AVAILABLE'
	RETURNING book_id
	`
	var bookID string
	err := r.tx.QueryRow(ctx, claim, copyID, at).Scan(&bookID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("copy %s is not available: %w", copyID, circulation.ErrConflict)
		}
		return err
	}

	const decrement = `
	UPDATE books SET available_copies = available_copies - 1
	WHERE id = $1 AND available_copies > 0
	`
	tag, err := r.tx.Exec(ctx, decrement, bookID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("available_copies underflow for book %s: %w", bookID, circulation.ErrConflict)
	}
	return nil
}

func (r *inventoryPG) MarkReturned(ctx context.Context, copyID string, condition string) error {
	status := entity.CopyAvailable
	if circulation.IsDamaged(condition) {
		status = entity.CopyDamaged
	}

	const update = `
	UPDATE book_copies
	SET status = $2, condition = $3
	WHERE id = $1
	RETURNING book_id
	`
	var bookID string
	err := r.tx.QueryRow(ctx, update, copyID, status, condition).Scan(&bookID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("copy %s: %w", copyID, circulation.ErrNotFound)
		}
		return err
	}

	if status == entity.CopyAvailable {
		const increment = `UPDATE books SET available_copies = available_copies + 1 WHERE id = $1`
		if _, err := r.tx.Exec(ctx, increment, bookID); err != nil {
			return err
		}
	}
	return nil
}
