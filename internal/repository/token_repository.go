package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// TokenRepo stores refresh-token hashes in the `refresh_tokens` table. Only
// the SHA-256 hash of a token ever reaches the database.
type TokenRepo struct {
	db *sql.DB
}

// NewTokenRepo returns a new TokenRepo bound to the given database.
func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{db: db} }

// StoreRefresh persists a refresh-token hash for a user with its expiry.
func (r *TokenRepo) StoreRefresh(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	const q = `INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, userID, tokenHash, expiresAt.UTC())
	return err
}

// LookupRefresh resolves a refresh-token hash to its owning user id,
// requiring the token to be unrevoked and unexpired. Returns ErrNotFound for
// unknown, revoked or expired tokens.
func (r *TokenRepo) LookupRefresh(ctx context.Context, tokenHash string) (string, error) {
	const q = `SELECT user_id FROM refresh_tokens
	           WHERE token_hash = ? AND revoked_at IS NULL AND expires_at > UTC_TIMESTAMP()`
	var userID string
	err := r.db.QueryRowContext(ctx, q, tokenHash).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return userID, nil
}

// RevokeRefresh marks a refresh token as revoked. Revoking an already
// revoked or unknown token returns ErrNotFound.
func (r *TokenRepo) RevokeRefresh(ctx context.Context, tokenHash string) error {
	const q = `UPDATE refresh_tokens SET revoked_at = UTC_TIMESTAMP()
	           WHERE token_hash = ? AND revoked_at IS NULL`
	res, err := r.db.ExecContext(ctx, q, tokenHash)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
