package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository persists homes, contributions, and transfers in SQLite.
// Membership checks gate every write: only members touch a home's ledger.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a SQLite-backed ledger repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateHome creates a home and enrols the creator as its first member.
// Both writes happen in one transaction so a home never exists memberless.
func (r *Repository) CreateHome(ctx context.Context, name, createdBy string) (*Home, error) {
	if name == "" {
		return nil, ErrEmptyHomeName
	}

	home := &Home{
		ID:        "home-" + uuid.NewString()[:8],
		Name:      name,
		CreatedBy: createdBy,
	}
	now := time.Now().UTC().Format(time.RFC3339)
	home.CreatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning create-home transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback is no-op after commit

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO homes (id, name, created_by, created_at) VALUES (?, ?, ?, ?)",
		home.ID, home.Name, home.CreatedBy, now,
	); err != nil {
		return nil, fmt.Errorf("creating home: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO home_members (home_id, user_id, joined_at) VALUES (?, ?, ?)",
		home.ID, createdBy, now,
	); err != nil {
		return nil, fmt.Errorf("enrolling creator: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing create-home: %w", err)
	}
	return home, nil
}

// GetHome retrieves a home by ID.
func (r *Repository) GetHome(ctx context.Context, id string) (*Home, error) {
	var h Home
	var createdAt string

	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, created_by, created_at FROM homes WHERE id = ?", id,
	).Scan(&h.ID, &h.Name, &h.CreatedBy, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHomeNotFound
		}
		return nil, fmt.Errorf("getting home: %w", err)
	}

	h.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	return &h, nil
}

// JoinHome enrols a user into a home. Joining twice is not an error.
func (r *Repository) JoinHome(ctx context.Context, homeID, userID string) error {
	if _, err := r.GetHome(ctx, homeID); err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := r.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO home_members (home_id, user_id, joined_at) VALUES (?, ?, ?)",
		homeID, userID, now,
	)
	if err != nil {
		return fmt.Errorf("joining home: %w", err)
	}
	return nil
}

// ListHomesForUser returns the homes a user belongs to, oldest first.
func (r *Repository) ListHomesForUser(ctx context.Context, userID string) ([]Home, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT h.id, h.name, h.created_by, h.created_at
		 FROM homes h
		 JOIN home_members m ON m.home_id = h.id
		 WHERE m.user_id = ?
		 ORDER BY h.created_at ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing homes: %w", err)
	}
	defer rows.Close()

	var homes []Home
	for rows.Next() {
		var h Home
		var createdAt string
		if err := rows.Scan(&h.ID, &h.Name, &h.CreatedBy, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning home: %w", err)
		}
		h.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
		homes = append(homes, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating homes: %w", err)
	}

	if homes == nil {
		homes = []Home{}
	}
	return homes, nil
}

// IsMember reports whether a user belongs to a home.
func (r *Repository) IsMember(ctx context.Context, homeID, userID string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		"SELECT 1 FROM home_members WHERE home_id = ? AND user_id = ?",
		homeID, userID,
	).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("checking membership: %w", err)
	}
	return true, nil
}

// AddContribution records money a member paid into the pool.
func (r *Repository) AddContribution(ctx context.Context, c *Contribution) error {
	if c.AmountCents <= 0 {
		return ErrInvalidAmount
	}
	if err := r.requireMember(ctx, c.HomeID, c.UserID); err != nil {
		return err
	}

	if c.ID == "" {
		c.ID = "con-" + uuid.NewString()[:8]
	}
	now := time.Now().UTC().Format(time.RFC3339)
	c.CreatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO contributions (id, home_id, user_id, amount_cents, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.HomeID, c.UserID, c.AmountCents, nullString(c.Description), now,
	)
	if err != nil {
		return fmt.Errorf("adding contribution: %w", err)
	}
	return nil
}

// ListContributions returns a home's contributions, newest first.
func (r *Repository) ListContributions(ctx context.Context, homeID string) ([]Contribution, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, home_id, user_id, amount_cents, description, created_at
		 FROM contributions WHERE home_id = ?
		 ORDER BY created_at DESC, id DESC`, homeID)
	if err != nil {
		return nil, fmt.Errorf("listing contributions: %w", err)
	}
	defer rows.Close()

	var contributions []Contribution
	for rows.Next() {
		var c Contribution
		var description sql.NullString
		var createdAt string
		if err := rows.Scan(&c.ID, &c.HomeID, &c.UserID, &c.AmountCents, &description, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning contribution: %w", err)
		}
		if description.Valid {
			c.Description = description.String
		}
		c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
		contributions = append(contributions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating contributions: %w", err)
	}

	if contributions == nil {
		contributions = []Contribution{}
	}
	return contributions, nil
}

// CreateTransfer records money moved between two members of a home.
func (r *Repository) CreateTransfer(ctx context.Context, t *Transfer) error {
	if t.AmountCents <= 0 {
		return ErrInvalidAmount
	}
	if t.FromUserID == t.ToUserID {
		return ErrSelfTransfer
	}
	if err := r.requireMember(ctx, t.HomeID, t.FromUserID); err != nil {
		return err
	}
	if err := r.requireMember(ctx, t.HomeID, t.ToUserID); err != nil {
		return err
	}

	if t.ID == "" {
		t.ID = "trf-" + uuid.NewString()[:8]
	}
	now := time.Now().UTC().Format(time.RFC3339)
	t.CreatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transfers (id, home_id, from_user_id, to_user_id, amount_cents, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.HomeID, t.FromUserID, t.ToUserID, t.AmountCents, now,
	)
	if err != nil {
		return fmt.Errorf("creating transfer: %w", err)
	}
	return nil
}

// ListTransfers returns a home's transfers, newest first.
func (r *Repository) ListTransfers(ctx context.Context, homeID string) ([]Transfer, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, home_id, from_user_id, to_user_id, amount_cents, created_at
		 FROM transfers WHERE home_id = ?
		 ORDER BY created_at DESC, id DESC`, homeID)
	if err != nil {
		return nil, fmt.Errorf("listing transfers: %w", err)
	}
	defer rows.Close()

	var transfers []Transfer
	for rows.Next() {
		var t Transfer
		var createdAt string
		if err := rows.Scan(&t.ID, &t.HomeID, &t.FromUserID, &t.ToUserID, &t.AmountCents, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning transfer: %w", err)
		}
		t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
		transfers = append(transfers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transfers: %w", err)
	}

	if transfers == nil {
		transfers = []Transfer{}
	}
	return transfers, nil
}

// Balances computes each member's net position in a home.
func (r *Repository) Balances(ctx context.Context, homeID string) ([]Balance, error) {
	if _, err := r.GetHome(ctx, homeID); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT m.user_id,
		        COALESCE((SELECT SUM(amount_cents) FROM contributions c
		                  WHERE c.home_id = m.home_id AND c.user_id = m.user_id), 0),
		        COALESCE((SELECT SUM(amount_cents) FROM transfers t
		                  WHERE t.home_id = m.home_id AND t.from_user_id = m.user_id), 0),
		        COALESCE((SELECT SUM(amount_cents) FROM transfers t
		                  WHERE t.home_id = m.home_id AND t.to_user_id = m.user_id), 0)
		 FROM home_members m
		 WHERE m.home_id = ?
		 ORDER BY m.joined_at ASC, m.user_id ASC`, homeID)
	if err != nil {
		return nil, fmt.Errorf("computing balances: %w", err)
	}
	defer rows.Close()

	var balances []Balance
	for rows.Next() {
		var b Balance
		if err := rows.Scan(&b.UserID, &b.ContributedCents, &b.SentCents, &b.ReceivedCents); err != nil {
			return nil, fmt.Errorf("scanning balance: %w", err)
		}
		b.NetCents = b.ContributedCents - b.SentCents + b.ReceivedCents
		balances = append(balances, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating balances: %w", err)
	}

	if balances == nil {
		balances = []Balance{}
	}
	return balances, nil
}

// requireMember resolves the home then checks membership, so callers can
// distinguish a missing home from a non-member.
func (r *Repository) requireMember(ctx context.Context, homeID, userID string) error {
	if _, err := r.GetHome(ctx, homeID); err != nil {
		return err
	}
	ok, err := r.IsMember(ctx, homeID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotMember
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
