package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// waitlistPG keeps the per-book FIFO queue in waitlist_entries. Positions
// come from a sequence, so insertion order is the queue order, and the
// (book_id, user_id) unique constraint makes duplicate enqueues a no-op.
type waitlistPG struct {
	tx pgx.Tx
}

func (r *waitlistPG) Enqueue(ctx context.Context, bookID, userID string) error {
	const query = `
	INSERT INTO waitlist_entries (book_id, user_id)
	VALUES ($1, $2)
	ON CONFLICT (book_id, user_id) DO NOTHING
	`
	_, err := r.tx.Exec(ctx, query, bookID, userID)
	return err
}

func (r *waitlistPG) DequeueNext(ctx context.Context, bookID string) (string, bool, error) {
	const query = `
	DELETE FROM waitlist_entries
	WHERE id = (
		SELECT id FROM waitlist_entries
		WHERE book_id = $1
		ORDER BY position
		LIMIT 1
		FOR UPDATE SKIP LOCKED
	)
	RETURNING user_id
	`
	var userID string
	err := r.tx.QueryRow(ctx, query, bookID).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return userID, true, nil
}
