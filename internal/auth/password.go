package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultHashCost is the bcrypt cost factor used when none is configured.
// Cost 12 is roughly 250ms per hash on commodity hardware, slow enough to
// frustrate offline cracking without making login sluggish.
const DefaultHashCost = 12

// Hasher performs one-way credential hashing and verification using bcrypt.
// The resulting digest is self-describing: it embeds the algorithm version,
// cost factor, and salt, so Verify needs no configuration to check it.
//
// Thread Safety:
//   - Hasher is immutable after construction and safe for concurrent use.
type Hasher struct {
	cost int
}

// NewHasher creates a Hasher with the given bcrypt cost factor.
// Cost must be within bcrypt's supported range [4, 31].
func NewHasher(cost int) (*Hasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d outside valid range [%d, %d]",
			cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &Hasher{cost: cost}, nil
}

// Hash produces a bcrypt digest of the plaintext password.
func (h *Hasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(digest), nil
}

// Verify checks a plaintext password against a stored digest.
//
// Returns (true, nil) on match and (false, nil) on a simple mismatch.
// A digest bcrypt cannot parse returns ErrHashCorrupt: the stored
// credential is damaged and the caller must treat this as a server-side
// integrity fault, not a wrong password.
//
// bcrypt's comparison is constant-time with respect to the digest content,
// so a mismatch reveals nothing about how many bytes matched.
func (h *Hasher) Verify(plaintext, digest string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %w", ErrHashCorrupt, err)
	}
}
