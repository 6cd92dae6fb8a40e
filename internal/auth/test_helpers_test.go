package auth

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/housetally/housetally-core/internal/infrastructure/logging"
)

// testSecret meets the 32-byte minimum for codec construction.
const testSecret = "test-signing-secret-0123456789abcdef"

// testDB creates a temporary SQLite database with the auth schema applied.
// The database file is cleaned up when the test completes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	// Use a temp file so WAL mode works (in-memory doesn't support it)
	f, err := os.CreateTemp("", "auth-test-*.db")
	if err != nil {
		t.Fatalf("creating temp db: %v", err)
	}
	dbPath := f.Name()
	f.Close()
	t.Cleanup(func() { os.Remove(dbPath) })

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schemaSQL := `
		CREATE TABLE users (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		) STRICT;

		CREATE UNIQUE INDEX idx_users_username ON users(username);

		CREATE TABLE revoked_tokens (
			jti TEXT PRIMARY KEY,
			subject TEXT NOT NULL,
			kind TEXT NOT NULL,
			expires_at TEXT NOT NULL,
			revoked INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		) STRICT;

		CREATE INDEX idx_revoked_tokens_subject ON revoked_tokens(subject);
		CREATE INDEX idx_revoked_tokens_expires ON revoked_tokens(expires_at);
	`
	if _, err := db.Exec(schemaSQL); err != nil {
		t.Fatalf("applying auth schema: %v", err)
	}

	return db
}

// testHasher creates a minimum-cost hasher so tests stay fast.
func testHasher(t *testing.T) *Hasher {
	t.Helper()

	h, err := NewHasher(4)
	if err != nil {
		t.Fatalf("creating test hasher: %v", err)
	}
	return h
}

// testCodec creates a codec with short TTLs for token tests.
func testCodec(t *testing.T) *Codec {
	t.Helper()

	c, err := NewCodec(testSecret, 30*time.Minute, 7*24*time.Hour)
	if err != nil {
		t.Fatalf("creating test codec: %v", err)
	}
	return c
}

// testEngine creates an engine over a SQLite directory and an in-memory
// revocation store.
func testEngine(t *testing.T, db *sql.DB) *Engine {
	t.Helper()

	return NewEngine(
		NewUserDirectory(db),
		testHasher(t),
		testCodec(t),
		NewMemoryRevocationStore(),
		logging.Default(),
	)
}

// seedTestUser registers a user through the engine and returns it.
func seedTestUser(t *testing.T, e *Engine, username, password string) *User {
	t.Helper()

	user, err := e.Register(context.Background(), username, password)
	if err != nil {
		t.Fatalf("registering test user %s: %v", username, err)
	}
	return user
}
