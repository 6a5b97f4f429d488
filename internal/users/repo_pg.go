package users

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, user User) error {
	const query = `
INSERT INTO users (id, email, password_hash, google_sub, created_at, updated_at)
VALUES ($1, $2, $3, $4, now(), now())`
	_, err := r.DB.ExecContext(ctx, query,
		user.ID,
		user.Email,
		nullableString(user.PasswordHash),
		nullableString(user.GoogleSub),
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrEmailTaken
	}
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, userID string) (User, error) {
	return r.getOne(ctx, "id = $1", userID)
}

func (r *PGRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	return r.getOne(ctx, "lower(email) = lower($1)", email)
}

func (r *PGRepo) GetByGoogleSub(ctx context.Context, sub string) (User, error) {
	return r.getOne(ctx, "google_sub = $1", sub)
}

func (r *PGRepo) SetGoogleSub(ctx context.Context, userID, sub string) error {
	const query = `UPDATE users SET google_sub = $2, updated_at = now() WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, userID, sub)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) getOne(ctx context.Context, where string, arg any) (User, error) {
	query := `
SELECT id, email, password_hash, google_sub, created_at, updated_at
FROM users
WHERE ` + where + `
LIMIT 1`
	var user User
	var passwordHash sql.NullString
	var googleSub sql.NullString
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&passwordHash,
		&googleSub,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	user.PasswordHash = passwordHash.String
	user.GoogleSub = googleSub.String
	return user, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
