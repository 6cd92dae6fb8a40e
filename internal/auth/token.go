package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// minSecretLength is the minimum accepted signing secret length in bytes.
// HS256 with a short secret is brute-forceable offline, so weak secrets
// are refused at construction rather than discovered in an incident.
const minSecretLength = 32

// Claims are the decoded fields carried inside a verified token.
type Claims struct {
	jwt.RegisteredClaims
	Kind TokenKind `json:"kind"`
}

// Codec encodes, signs, decodes, and verifies JWT tokens.
//
// All operations are pure computation over explicit inputs: the caller
// passes `now` rather than the codec consulting an ambient clock, which
// keeps issuance and verification deterministic under test.
//
// Thread Safety:
//   - The secret and TTLs are immutable after construction; Codec is safe
//     for concurrent use.
type Codec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewCodec creates a Codec signing with the given secret.
//
// The secret must be at least 32 bytes. Access tokens must be shorter-lived
// than refresh tokens. Both conditions are enforced here so a misconfigured
// process fails at startup, not on first use.
func NewCodec(secret string, accessTTL, refreshTTL time.Duration) (*Codec, error) {
	if len(secret) < minSecretLength {
		return nil, fmt.Errorf("signing secret must be at least %d bytes, got %d", minSecretLength, len(secret))
	}
	if accessTTL <= 0 {
		return nil, fmt.Errorf("access token TTL must be positive, got %v", accessTTL)
	}
	if refreshTTL <= accessTTL {
		return nil, fmt.Errorf("refresh token TTL (%v) must exceed access token TTL (%v)", refreshTTL, accessTTL)
	}
	return &Codec{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

// AccessTTL returns the configured access token lifetime.
func (c *Codec) AccessTTL() time.Duration {
	return c.accessTTL
}

// Issue creates a signed token of the given kind for a subject.
//
// The token id (jti) is a fresh UUID per issuance, so two tokens minted for
// the same subject in the same instant still carry distinct ids. Returns
// the compact token string, its id, and its expiry.
func (c *Codec) Issue(subject string, kind TokenKind, now time.Time) (token, jti string, expiresAt time.Time, err error) {
	if subject == "" {
		return "", "", time.Time{}, errors.New("issuing token: empty subject")
	}

	ttl := c.accessTTL
	if kind == KindRefresh {
		ttl = c.refreshTTL
	}
	expiresAt = now.Add(ttl)
	jti = uuid.NewString()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Kind: kind,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}
	return signed, jti, expiresAt, nil
}

// Verify decodes and validates a token string, expecting the given kind.
//
// Checks run in a fixed order and the first failure wins:
//  1. structural decode        -> ErrTokenMalformed
//  2. signature                -> ErrSignatureInvalid
//  3. kind against wantKind    -> ErrWrongTokenKind
//  4. expiry against now       -> ErrTokenExpired
//
// The signature is validated before any claim is inspected so that no
// decision is ever made on unauthenticated data.
func (c *Codec) Verify(tokenString string, now time.Time, wantKind TokenKind) (*Claims, error) {
	claims, err := c.Decode(tokenString)
	if err != nil {
		return nil, err
	}

	if claims.Kind != wantKind {
		return nil, fmt.Errorf("%w: got %q, want %q", ErrWrongTokenKind, claims.Kind, wantKind)
	}

	if now.After(claims.ExpiresAt.Time) {
		return nil, ErrTokenExpired
	}

	return claims, nil
}

// Decode parses a token string and validates its signature and structure,
// but not its kind or expiry. Used by logout, where an already-expired
// token must still identify which jti to revoke.
func (c *Codec) Decode(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{},
		func(_ *jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		// Expiry is checked manually against the caller-supplied clock.
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, fmt.Errorf("%w: %w", ErrTokenMalformed, err)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, fmt.Errorf("%w: %w", ErrSignatureInvalid, err)
		default:
			return nil, fmt.Errorf("%w: %w", ErrSignatureInvalid, err)
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrSignatureInvalid
	}

	// Required fields: a token without them was not minted by Issue.
	if claims.Subject == "" || claims.ID == "" || claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: missing required claims", ErrTokenMalformed)
	}

	return claims, nil
}
