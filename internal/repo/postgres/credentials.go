package postgres

import (
	"context"
	"errors"

	"github.com/ilpslab/authhub/internal/domain/user"
	"github.com/ilpslab/authhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CredentialsRepo stores the one password hash each user owns. The row is
// only ever written inside the same transaction that created its user.
type CredentialsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewCredentialsRepo(pool *pgxpool.Pool, prom *observability.Prom) *CredentialsRepo {
	return &CredentialsRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *CredentialsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *CredentialsRepo) CreateTx(ctx context.Context, tx pgx.Tx, userID, hash string) error {
	err := r.observe("credentials.create_tx.insert", func() error {
		_, e := tx.Exec(ctx, `
		INSERT INTO passwords (user_id, hash)
		VALUES ($1,$2)
	`, userID, hash)
		return e
	})

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return user.ErrAlreadyExists
		}

		return err
	}

	return nil
}

// GetByUserID returns the stored hash for a user, user.ErrNotFound when
// the user has no credential row.
func (r *CredentialsRepo) GetByUserID(ctx context.Context, userID string) (string, error) {
	var hash string

	err := r.observe("credentials.get_by_user_id", func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT hash FROM passwords WHERE user_id = $1`,
			userID,
		).Scan(&hash)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", user.ErrNotFound
		}

		return "", err
	}

	return hash, nil
}
