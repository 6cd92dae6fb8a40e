package ledger

import (
	"errors"
	"time"
)

// Home is a shared household whose members pool contributions.
type Home struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// Contribution is money a member paid into the household pool.
type Contribution struct {
	ID          string    `json:"id"`
	HomeID      string    `json:"home_id"`
	UserID      string    `json:"user_id"`
	AmountCents int64     `json:"amount_cents"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Transfer is money moved from one member to another within a home,
// settling who owes whom.
type Transfer struct {
	ID          string    `json:"id"`
	HomeID      string    `json:"home_id"`
	FromUserID  string    `json:"from_user_id"`
	ToUserID    string    `json:"to_user_id"`
	AmountCents int64     `json:"amount_cents"`
	CreatedAt   time.Time `json:"created_at"`
}

// Balance is a member's net position within a home:
// contributed - sent + received.
type Balance struct {
	UserID           string `json:"user_id"`
	ContributedCents int64  `json:"contributed_cents"`
	SentCents        int64  `json:"sent_cents"`
	ReceivedCents    int64  `json:"received_cents"`
	NetCents         int64  `json:"net_cents"`
}

// Sentinel errors for ledger operations.
var (
	ErrHomeNotFound  = errors.New("home not found")
	ErrNotMember     = errors.New("user is not a member of this home")
	ErrInvalidAmount = errors.New("amount must be positive")
	ErrSelfTransfer  = errors.New("cannot transfer to yourself")
	ErrEmptyHomeName = errors.New("home name is required")
)
