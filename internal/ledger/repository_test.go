package ledger

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// testDB creates a temporary SQLite database with the users and ledger
// schema applied, plus two seeded users.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	f, err := os.CreateTemp("", "ledger-test-*.db")
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

		CREATE TABLE homes (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			created_by TEXT NOT NULL,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			FOREIGN KEY (created_by) REFERENCES users(id) ON DELETE CASCADE
		) STRICT;

		CREATE TABLE home_members (
			home_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			joined_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			PRIMARY KEY (home_id, user_id),
			FOREIGN KEY (home_id) REFERENCES homes(id) ON DELETE CASCADE,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		) STRICT;

		CREATE TABLE contributions (
			id TEXT PRIMARY KEY,
			home_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			amount_cents INTEGER NOT NULL CHECK (amount_cents > 0),
			description TEXT,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			FOREIGN KEY (home_id) REFERENCES homes(id) ON DELETE CASCADE,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		) STRICT;

		CREATE TABLE transfers (
			id TEXT PRIMARY KEY,
			home_id TEXT NOT NULL,
			from_user_id TEXT NOT NULL,
			to_user_id TEXT NOT NULL,
			amount_cents INTEGER NOT NULL CHECK (amount_cents > 0),
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			FOREIGN KEY (home_id) REFERENCES homes(id) ON DELETE CASCADE,
			FOREIGN KEY (from_user_id) REFERENCES users(id) ON DELETE CASCADE,
			FOREIGN KEY (to_user_id) REFERENCES users(id) ON DELETE CASCADE
		) STRICT;

		INSERT INTO users (id, username, password_hash) VALUES ('usr-alice', 'alice', 'h');
		INSERT INTO users (id, username, password_hash) VALUES ('usr-bob', 'bob', 'h');
		INSERT INTO users (id, username, password_hash) VALUES ('usr-carol', 'carol', 'h');
	`
	if _, err := db.Exec(schemaSQL); err != nil {
		t.Fatalf("applying ledger schema: %v", err)
	}

	return db
}

func TestRepository_CreateHome(t *testing.T) {
	repo := NewRepository(testDB(t))
	ctx := context.Background()

	home, err := repo.CreateHome(ctx, "Maple Street", "usr-alice")
	if err != nil {
		t.Fatalf("CreateHome() error = %v", err)
	}
	if home.ID == "" {
		t.Error("CreateHome() returned empty ID")
	}

	// Creator is enrolled automatically
	ok, err := repo.IsMember(ctx, home.ID, "usr-alice")
	if err != nil {
		t.Fatalf("IsMember() error = %v", err)
	}
	if !ok {
		t.Error("creator should be a member of the new home")
	}

	t.Run("empty name", func(t *testing.T) {
		_, err := repo.CreateHome(ctx, "", "usr-alice")
		if !errors.Is(err, ErrEmptyHomeName) {
			t.Errorf("CreateHome() error = %v, want ErrEmptyHomeName", err)
		}
	})
}

func TestRepository_JoinHome(t *testing.T) {
	repo := NewRepository(testDB(t))
	ctx := context.Background()

	home, err := repo.CreateHome(ctx, "Maple Street", "usr-alice")
	if err != nil {
		t.Fatalf("CreateHome() error = %v", err)
	}

	if err := repo.JoinHome(ctx, home.ID, "usr-bob"); err != nil {
		t.Fatalf("JoinHome() error = %v", err)
	}

	// Joining twice is not an error
	if err := repo.JoinHome(ctx, home.ID, "usr-bob"); err != nil {
		t.Errorf("second JoinHome() error = %v", err)
	}

	homes, err := repo.ListHomesForUser(ctx, "usr-bob")
	if err != nil {
		t.Fatalf("ListHomesForUser() error = %v", err)
	}
	if len(homes) != 1 || homes[0].ID != home.ID {
		t.Errorf("ListHomesForUser() = %+v, want the joined home", homes)
	}

	t.Run("unknown home", func(t *testing.T) {
		err := repo.JoinHome(ctx, "home-missing", "usr-bob")
		if !errors.Is(err, ErrHomeNotFound) {
			t.Errorf("JoinHome() error = %v, want ErrHomeNotFound", err)
		}
	})
}

func TestRepository_Contributions(t *testing.T) {
	repo := NewRepository(testDB(t))
	ctx := context.Background()

	home, err := repo.CreateHome(ctx, "Maple Street", "usr-alice")
	if err != nil {
		t.Fatalf("CreateHome() error = %v", err)
	}

	c := &Contribution{
		HomeID:      home.ID,
		UserID:      "usr-alice",
		AmountCents: 12550,
		Description: "groceries",
	}
	if err := repo.AddContribution(ctx, c); err != nil {
		t.Fatalf("AddContribution() error = %v", err)
	}

	list, err := repo.ListContributions(ctx, home.ID)
	if err != nil {
		t.Fatalf("ListContributions() error = %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("ListContributions() = %d entries, want 1", len(list))
	}
	if list[0].AmountCents != 12550 || list[0].Description != "groceries" {
		t.Errorf("contribution = %+v, fields not round-tripped", list[0])
	}

	t.Run("non-positive amount", func(t *testing.T) {
		err := repo.AddContribution(ctx, &Contribution{HomeID: home.ID, UserID: "usr-alice", AmountCents: 0})
		if !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("AddContribution() error = %v, want ErrInvalidAmount", err)
		}
	})

	t.Run("non-member", func(t *testing.T) {
		err := repo.AddContribution(ctx, &Contribution{HomeID: home.ID, UserID: "usr-bob", AmountCents: 100})
		if !errors.Is(err, ErrNotMember) {
			t.Errorf("AddContribution() error = %v, want ErrNotMember", err)
		}
	})
}

func TestRepository_Transfers(t *testing.T) {
	repo := NewRepository(testDB(t))
	ctx := context.Background()

	home, err := repo.CreateHome(ctx, "Maple Street", "usr-alice")
	if err != nil {
		t.Fatalf("CreateHome() error = %v", err)
	}
	if err := repo.JoinHome(ctx, home.ID, "usr-bob"); err != nil {
		t.Fatalf("JoinHome() error = %v", err)
	}

	tr := &Transfer{
		HomeID:      home.ID,
		FromUserID:  "usr-alice",
		ToUserID:    "usr-bob",
		AmountCents: 5000,
	}
	if err := repo.CreateTransfer(ctx, tr); err != nil {
		t.Fatalf("CreateTransfer() error = %v", err)
	}

	list, err := repo.ListTransfers(ctx, home.ID)
	if err != nil {
		t.Fatalf("ListTransfers() error = %v", err)
	}
	if len(list) != 1 || list[0].AmountCents != 5000 {
		t.Errorf("ListTransfers() = %+v, want one 5000-cent transfer", list)
	}

	tests := []struct {
		name     string
		transfer *Transfer
		wantErr  error
	}{
		{
			name:     "self transfer",
			transfer: &Transfer{HomeID: home.ID, FromUserID: "usr-alice", ToUserID: "usr-alice", AmountCents: 100},
			wantErr:  ErrSelfTransfer,
		},
		{
			name:     "negative amount",
			transfer: &Transfer{HomeID: home.ID, FromUserID: "usr-alice", ToUserID: "usr-bob", AmountCents: -5},
			wantErr:  ErrInvalidAmount,
		},
		{
			name:     "recipient not a member",
			transfer: &Transfer{HomeID: home.ID, FromUserID: "usr-alice", ToUserID: "usr-carol", AmountCents: 100},
			wantErr:  ErrNotMember,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.CreateTransfer(ctx, tt.transfer)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CreateTransfer() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRepository_Balances(t *testing.T) {
	repo := NewRepository(testDB(t))
	ctx := context.Background()

	home, err := repo.CreateHome(ctx, "Maple Street", "usr-alice")
	if err != nil {
		t.Fatalf("CreateHome() error = %v", err)
	}
	if err := repo.JoinHome(ctx, home.ID, "usr-bob"); err != nil {
		t.Fatalf("JoinHome() error = %v", err)
	}

	// Alice pays 100.00, Bob pays 40.00, then Bob settles 30.00 to Alice
	contribs := []*Contribution{
		{HomeID: home.ID, UserID: "usr-alice", AmountCents: 10000},
		{HomeID: home.ID, UserID: "usr-bob", AmountCents: 4000},
	}
	for _, c := range contribs {
		if err := repo.AddContribution(ctx, c); err != nil {
			t.Fatalf("AddContribution() error = %v", err)
		}
	}
	if err := repo.CreateTransfer(ctx, &Transfer{
		HomeID: home.ID, FromUserID: "usr-bob", ToUserID: "usr-alice", AmountCents: 3000,
	}); err != nil {
		t.Fatalf("CreateTransfer() error = %v", err)
	}

	balances, err := repo.Balances(ctx, home.ID)
	if err != nil {
		t.Fatalf("Balances() error = %v", err)
	}
	if len(balances) != 2 {
		t.Fatalf("Balances() = %d members, want 2", len(balances))
	}

	byUser := make(map[string]Balance)
	for _, b := range balances {
		byUser[b.UserID] = b
	}

	alice := byUser["usr-alice"]
	if alice.NetCents != 10000-0+3000 {
		t.Errorf("alice net = %d, want 13000", alice.NetCents)
	}
	bob := byUser["usr-bob"]
	if bob.NetCents != 4000-3000+0 {
		t.Errorf("bob net = %d, want 1000", bob.NetCents)
	}

	t.Run("unknown home", func(t *testing.T) {
		_, err := repo.Balances(ctx, "home-missing")
		if !errors.Is(err, ErrHomeNotFound) {
			t.Errorf("Balances() error = %v, want ErrHomeNotFound", err)
		}
	})
}
