package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/ilpslab/authhub/internal/config"
	"github.com/ilpslab/authhub/internal/security"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureAdminUser seeds the default administrator on startup. Idempotent:
// an existing user with the configured name is left untouched. The user
// and its credential are inserted in one transaction, same as Register.
func EnsureAdminUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.AdminName == "" || cfg.AdminPassword == "" {
		return nil
	}

	// check if the admin already exists

	var dummy string

	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE name = $1`, cfg.AdminName).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)

	if err != nil {
		return err
	}

	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})

	if err != nil {
		return err
	}

	defer func() { _ = tx.Rollback(ctx) }()

	now := time.Now().UTC()
	id := uuid.NewString()

	_, err = tx.Exec(ctx,
		`INSERT INTO users (id, name, email, is_admin, is_disabled, created_at, updated_at)
		VALUES ($1,$2,$3,TRUE,FALSE,$4,$5)
		`,
		id, cfg.AdminName, cfg.AdminEmail, now, now,
	)

	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO passwords (user_id, hash) VALUES ($1,$2)`,
		id, hash,
	)

	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}
