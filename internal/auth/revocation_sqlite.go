package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLiteRevocationStore implements RevocationStore using the revoked_tokens
// table. Unlike the in-memory store, revocations survive a process restart.
type SQLiteRevocationStore struct {
	db *sql.DB
}

// NewSQLiteRevocationStore creates a SQLite-backed revocation store.
func NewSQLiteRevocationStore(db *sql.DB) *SQLiteRevocationStore {
	return &SQLiteRevocationStore{db: db}
}

// Record registers a freshly issued token.
func (s *SQLiteRevocationStore) Record(ctx context.Context, rec *TokenRecord) error {
	now := time.Now().UTC().Format(time.RFC3339)
	rec.CreatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO revoked_tokens (jti, subject, kind, expires_at, revoked, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.JTI, rec.Subject, string(rec.Kind),
		rec.ExpiresAt.UTC().Format(time.RFC3339),
		boolToInt(rec.Revoked), now,
	)
	if err != nil {
		return fmt.Errorf("recording token: %w", err)
	}
	return nil
}

// Revoke marks a token id as revoked until expiresAt. If the id was never
// recorded, an already-revoked entry is inserted so the blacklist still
// honours it. Revoking twice is not an error.
func (s *SQLiteRevocationStore) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	now := time.Now().UTC().Format(time.RFC3339)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO revoked_tokens (jti, subject, kind, expires_at, revoked, created_at)
		 VALUES (?, '', '', ?, 1, ?)
		 ON CONFLICT(jti) DO UPDATE SET revoked = 1`,
		jti, expiresAt.UTC().Format(time.RFC3339), now,
	)
	if err != nil {
		return fmt.Errorf("revoking token: %w", err)
	}
	return nil
}

// IsRevoked reports whether the token id is revoked as of now.
// Entries whose expiry has passed report false.
func (s *SQLiteRevocationStore) IsRevoked(ctx context.Context, jti string, now time.Time) (bool, error) {
	var revoked int
	var expiresAt string

	err := s.db.QueryRowContext(ctx,
		"SELECT revoked, expires_at FROM revoked_tokens WHERE jti = ?", jti,
	).Scan(&revoked, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("checking revocation: %w", err)
	}

	exp, _ := time.Parse(time.RFC3339, expiresAt) //nolint:errcheck // format is controlled
	if !exp.After(now) {
		return false, nil
	}
	return revoked != 0, nil
}

// RevokeAllForSubject revokes every recorded token for a subject.
// Used when changing a password to force re-login everywhere.
func (s *SQLiteRevocationStore) RevokeAllForSubject(ctx context.Context, subject string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE revoked_tokens SET revoked = 1 WHERE subject = ?", subject)
	if err != nil {
		return fmt.Errorf("revoking all tokens for subject: %w", err)
	}
	return nil
}

// DeleteExpired removes entries whose expiry has passed, freeing storage.
// Returns the number of deleted rows.
func (s *SQLiteRevocationStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM revoked_tokens WHERE expires_at <= ?",
		now.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("deleting expired tokens: %w", err)
	}

	count, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	return count, nil
}
