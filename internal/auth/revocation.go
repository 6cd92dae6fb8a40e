package auth

import (
	"context"
	"sync"
	"time"
)

// RevocationStore tracks issued token ids and which of them have been
// revoked before their natural expiry.
//
// Every issued token is recorded so that RevokeAllForSubject can terminate
// sessions the server would otherwise never see again (password change).
// Entries whose expiry has passed are logically absent: the token would be
// rejected on expiry grounds regardless, so keeping the entry buys nothing.
// This bounds the store to the set of not-yet-expired issued tokens.
//
// Implementations must be safe for concurrent use, and a Revoke that
// completes before an IsRevoked call begins must be visible to it.
type RevocationStore interface {
	// Record registers a freshly issued token.
	Record(ctx context.Context, rec *TokenRecord) error

	// Revoke marks a token id as no longer honourable until expiresAt.
	// Revoking an unknown or already-revoked id is not an error.
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error

	// IsRevoked reports whether the token id is revoked as of now.
	// Expired entries report false; the expiry check upstream rejects them.
	IsRevoked(ctx context.Context, jti string, now time.Time) (bool, error)

	// RevokeAllForSubject revokes every recorded token for a subject.
	RevokeAllForSubject(ctx context.Context, subject string) error

	// DeleteExpired physically removes entries whose expiry has passed,
	// freeing storage. Returns the number of removed entries.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// MemoryRevocationStore is an in-process RevocationStore backed by a map.
// Suitable for tests and single-process deployments; state does not survive
// a restart, which means a restart un-revokes nothing only because it also
// forgets nothing - all sessions survive unless their tokens expired.
type MemoryRevocationStore struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
}

type memoryEntry struct {
	subject   string
	expiresAt time.Time
	revoked   bool
}

// NewMemoryRevocationStore creates an empty in-memory store.
func NewMemoryRevocationStore() *MemoryRevocationStore {
	return &MemoryRevocationStore{
		entries: make(map[string]*memoryEntry),
	}
}

// Record registers a freshly issued token.
func (s *MemoryRevocationStore) Record(_ context.Context, rec *TokenRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[rec.JTI] = &memoryEntry{
		subject:   rec.Subject,
		expiresAt: rec.ExpiresAt,
		revoked:   rec.Revoked,
	}
	return nil
}

// Revoke marks a token id as revoked until expiresAt.
// Unknown ids get an entry created; this keeps Revoke usable for tokens
// issued before the store existed (e.g. after a store swap).
func (s *MemoryRevocationStore) Revoke(_ context.Context, jti string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[jti]; ok {
		e.revoked = true
		return nil
	}
	s.entries[jti] = &memoryEntry{expiresAt: expiresAt, revoked: true}
	return nil
}

// IsRevoked reports whether the token id is revoked as of now.
func (s *MemoryRevocationStore) IsRevoked(_ context.Context, jti string, now time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[jti]
	if !ok {
		return false, nil
	}
	if !e.expiresAt.After(now) {
		// Logically absent; DeleteExpired reclaims it later.
		return false, nil
	}
	return e.revoked, nil
}

// RevokeAllForSubject revokes every recorded token for a subject.
func (s *MemoryRevocationStore) RevokeAllForSubject(_ context.Context, subject string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries {
		if e.subject == subject {
			e.revoked = true
		}
	}
	return nil
}

// DeleteExpired removes entries whose expiry has passed.
func (s *MemoryRevocationStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for jti, e := range s.entries {
		if !e.expiresAt.After(now) {
			delete(s.entries, jti)
			removed++
		}
	}
	return removed, nil
}
