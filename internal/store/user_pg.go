package store

import (
	"context"
	"errors"

	"libraryapi/internal/circulation"
	"libraryapi/internal/entity"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, username, email, password_hash, full_name, role, is_active, created_at, updated_at`

func scanUser(row pgx.Row) (entity.User, error) {
	var u entity.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.FullName, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// userPG is the tx-bound directory. GetByID locks the user row so that the
// borrow-limit check and the record insert that follows it serialize across
// concurrent borrows by the same user.
type userPG struct {
	tx pgx.Tx
}

func (r *userPG) GetByID(ctx context.Context, id string) (entity.User, error) {
	u, err := scanUser(r.tx.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.User{}, circulation.ErrNotFound
		}
		return entity.User{}, err
	}
	return u, nil
}

func (r *userPG) GetByLogin(ctx context.Context, ref string) (entity.User, error) {
	u, err := scanUser(r.tx.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1 OR username = $1 LIMIT 1`, ref))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.User{}, circulation.ErrNotFound
		}
		return entity.User{}, err
	}
	return u, nil
}

// userPool serves reads outside a unit of work (login, middleware lookups).
type userPool struct {
	pool *pgxpool.Pool
}

func (r *userPool) GetByID(ctx context.Context, id string) (entity.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.User{}, circulation.ErrNotFound
		}
		return entity.User{}, err
	}
	return u, nil
}

func (r *userPool) GetByLogin(ctx context.Context, ref string) (entity.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1 OR username = $1 LIMIT 1`, ref))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.User{}, circulation.ErrNotFound
		}
		return entity.User{}, err
	}
	return u, nil
}
