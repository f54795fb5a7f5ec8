package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/ilpslab/authhub/internal/domain/user"
	"github.com/ilpslab/authhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, name, email, is_admin, is_disabled, created_at, updated_at`

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

// BeginTx opens the transaction that scopes a registration's two inserts.
func (r *UsersRepo) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return r.pool.BeginTx(ctx, pgx.TxOptions{})
}

// CreateTx inserts a user row inside tx. A unique violation on name or
// email comes back as user.ErrAlreadyExists; the caller rolls back.
func (r *UsersRepo) CreateTx(ctx context.Context, tx pgx.Tx, name, email string) (user.User, error) {
	now := time.Now().UTC()

	u := user.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := r.observe("users.create_tx.insert", func() error {
		_, e := tx.Exec(ctx, `
		INSERT INTO users (id, name, email, is_admin, is_disabled, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, u.ID, u.Name, u.Email, u.IsAdmin, u.IsDisabled, u.CreatedAt, u.UpdatedAt)
		return e
	})

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return user.User{}, user.ErrAlreadyExists
		}

		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) GetByName(ctx context.Context, name string) (user.User, error) {
	return r.getBy(ctx, "users.get_by_name", `WHERE name = $1`, name)
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	return r.getBy(ctx, "users.get_by_id", `WHERE id = $1`, id)
}

func (r *UsersRepo) getBy(ctx context.Context, op, where string, arg any) (user.User, error) {
	var u user.User

	err := r.observe(op, func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT `+userColumns+` FROM users `+where,
			arg,
		).Scan(
			&u.ID,
			&u.Name,
			&u.Email,
			&u.IsAdmin,
			&u.IsDisabled,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) List(ctx context.Context, limit, offset int) ([]user.User, error) {
	users := []user.User{}

	err := r.observe("users.list", func() error {
		rows, e := r.pool.Query(ctx, `
		SELECT `+userColumns+` FROM users
		ORDER BY created_at, id
		LIMIT $1 OFFSET $2
	`, limit, offset)

		if e != nil {
			return e
		}

		defer rows.Close()

		for rows.Next() {
			var u user.User

			e = rows.Scan(&u.ID, &u.Name, &u.Email, &u.IsAdmin, &u.IsDisabled, &u.CreatedAt, &u.UpdatedAt)

			if e != nil {
				return e
			}

			users = append(users, u)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return users, nil
}

func (r *UsersRepo) Count(ctx context.Context) (int, error) {
	var total int

	err := r.observe("users.count", func() error {
		return r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total)
	})

	if err != nil {
		return 0, err
	}

	return total, nil
}

// UpdateFlags applies administrative flag changes and returns the updated
// row. Nil fields in upd keep their stored value.
func (r *UsersRepo) UpdateFlags(ctx context.Context, id string, upd user.FlagUpdate) (user.User, error) {
	var u user.User

	err := r.observe("users.update_flags", func() error {
		return r.pool.QueryRow(ctx, `
		UPDATE users
		SET is_admin    = COALESCE($2, is_admin),
			is_disabled = COALESCE($3, is_disabled),
			updated_at  = $4
		WHERE id = $1
		RETURNING `+userColumns+`
	`, id, upd.IsAdmin, upd.IsDisabled, time.Now().UTC()).Scan(
			&u.ID,
			&u.Name,
			&u.Email,
			&u.IsAdmin,
			&u.IsDisabled,
			&u.CreatedAt,
			&u.UpdatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}

	return u, nil
}
