package auth

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// usernamePattern defines the valid format for usernames:
// alphanumeric, dots, hyphens, underscores, 1-64 characters.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,64}$`)

// maxUsernameLength is the maximum allowed username length.
const maxUsernameLength = 64

// IsValidUsername checks if a username meets format requirements.
// Usernames must be 1-64 characters, alphanumeric with dots, hyphens, underscores.
func IsValidUsername(username string) bool {
	return len(username) <= maxUsernameLength && usernamePattern.MatchString(username)
}

// TokenKind discriminates access tokens from refresh tokens.
// The kind is carried inside the signed token so a refresh token can never
// be replayed as an access token or vice versa.
type TokenKind string

const (
	// KindAccess is a short-lived token authorising individual API calls.
	KindAccess TokenKind = "access"

	// KindRefresh is a longer-lived token used solely to obtain new access tokens.
	KindRefresh TokenKind = "refresh"
)

// User represents a household member account.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // never serialised
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TokenRecord is the issuance/revocation ledger entry for one token.
// A record exists for every issued token so that revoke-all-for-subject
// (password change) can terminate sessions the server never saw again.
type TokenRecord struct {
	JTI       string    `json:"jti"`
	Subject   string    `json:"subject"`
	Kind      TokenKind `json:"kind"`
	ExpiresAt time.Time `json:"expires_at"`
	Revoked   bool      `json:"revoked"`
	CreatedAt time.Time `json:"created_at"`
}

// TokenPair is the credential bundle returned by a successful login.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"` // access token lifetime in seconds
}

// Sentinel errors for auth operations.
var (
	// ErrInvalidCredentials covers both unknown username and wrong password.
	// The two cases are deliberately indistinguishable to prevent user enumeration.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthorized is the single outward signal for any token failure on a
	// protected request: missing, malformed, forged, expired, or revoked.
	ErrUnauthorized = errors.New("unauthorized")

	ErrTokenMalformed   = errors.New("malformed token")
	ErrSignatureInvalid = errors.New("invalid token signature")
	ErrTokenExpired     = errors.New("token has expired")
	ErrWrongTokenKind   = errors.New("wrong token kind")
	ErrTokenRevoked     = errors.New("token has been revoked")

	ErrUserNotFound    = errors.New("user not found")
	ErrUsernameExists  = errors.New("username already exists")
	ErrInvalidUsername = errors.New("invalid username format")

	// ErrHashCorrupt indicates a stored password digest that bcrypt cannot
	// parse. This is a server-side integrity fault, never a user error.
	ErrHashCorrupt = errors.New("corrupt password hash")
)

// PolicyError reports every password strength rule the candidate violated,
// not just the first.
type PolicyError struct {
	Reasons []string
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("password policy violation: %s", strings.Join(e.Reasons, "; "))
}
