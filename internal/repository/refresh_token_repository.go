package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"electro-shop/internal/domain"
)

var (
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrRefreshTokenRevoked  = errors.New("refresh token has been revoked")
)

const refreshTokenColumns = `id, user_number, token, expires_at, created_at, revoked`

// RefreshTokenRepository stores login sessions.
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *domain.RefreshToken) error
	FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error)
	Revoke(ctx context.Context, token string) error
	RevokeAllForUser(ctx context.Context, userNumber int64) (int64, error)
	PruneForUser(ctx context.Context, userNumber int64, now time.Time) (int64, error)
}

type refreshTokenRepository struct {
	db *sql.DB
}

func NewRefreshTokenRepository(db *sql.DB) RefreshTokenRepository {
	return &refreshTokenRepository{db: db}
}

func scanRefreshToken(row rowScanner) (*domain.RefreshToken, error) {
	t := &domain.RefreshToken{}
	if err := row.Scan(&t.ID, &t.UserNumber, &t.Token, &t.ExpiresAt, &t.CreatedAt, &t.Revoked); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *refreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	query := `INSERT INTO refresh_tokens (` + refreshTokenColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.ExecContext(ctx, query,
		token.ID, token.UserNumber, token.Token, token.ExpiresAt, token.CreatedAt, token.Revoked)
	if err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return ErrUserNotFound
		}
		return classify("create refresh token", err)
	}
	return nil
}

// FindByToken returns a live token; revoked tokens yield ErrRefreshTokenRevoked.
// Expiry is left to the caller.
func (r *refreshTokenRepository) FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	query := `SELECT ` + refreshTokenColumns + ` FROM refresh_tokens WHERE token = $1`

	t, err := scanRefreshToken(r.db.QueryRowContext(ctx, query, token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRefreshTokenNotFound
		}
		return nil, fmt.Errorf("failed to find refresh token: %w", err)
	}
	if t.Revoked {
		return nil, ErrRefreshTokenRevoked
	}
	return t, nil
}

func (r *refreshTokenRepository) Revoke(ctx context.Context, token string) error {
	var id string
	err := r.db.QueryRowContext(ctx,
		`UPDATE refresh_tokens SET revoked = TRUE WHERE token = $1 RETURNING id`, token).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrRefreshTokenNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

// RevokeAllForUser ends every open session of a user and reports how many
// were open.
func (r *refreshTokenRepository) RevokeAllForUser(ctx context.Context, userNumber int64) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked = TRUE WHERE user_number = $1 AND revoked = FALSE`, userNumber)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}
	return result.RowsAffected()
}

// PruneForUser deletes the user's revoked and expired sessions.
func (r *refreshTokenRepository) PruneForUser(ctx context.Context, userNumber int64, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE user_number = $1 AND (revoked OR expires_at <= $2)`, userNumber, now)
	if err != nil {
		return 0, fmt.Errorf("failed to prune refresh tokens: %w", err)
	}
	return result.RowsAffected()
}
