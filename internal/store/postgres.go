package store

import (
	"context"

	"libraryapi/internal/circulation"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PG is the Postgres-backed unit of work. Every circulation transaction runs
// inside one database transaction; the per-copy and per-user row locks taken
// by the ledgers make the read-check-write sequences safe under concurrency.
type PG struct {
	pool *pgxpool.Pool
}

func NewPG(pool *pgxpool.Pool) *PG {
	return &PG{pool: pool}
}

func (s *PG) Do(ctx context.Context, fn func(circulation.Ledgers) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	ledgers := circulation.Ledgers{
		Inventory: &inventoryPG{tx: tx},
		Records:   &borrowPG{tx: tx},
		Waitlist:  &waitlistPG{tx: tx},
		Users:     &userPG{tx: tx},
	}
	if err := fn(ledgers); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Users returns a pool-backed directory for use outside a unit of work
// (e.g. the login handler). It takes no row locks.
func (s *PG) Users() circulation.UserDirectory {
	return &userPool{pool: s.pool}
}
