package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/housetally/housetally-core/internal/infrastructure/logging"
)

// TokenTypeBearer is the token_type value returned with issued token pairs.
const TokenTypeBearer = "bearer"

// Engine orchestrates login, request authentication, refresh, logout,
// registration, and password changes.
//
// Operations are independent and stateless with respect to each other;
// the only shared state is the UserDirectory and RevocationStore, both of
// which handle concurrent access themselves.
type Engine struct {
	directory UserDirectory
	hasher    *Hasher
	codec     *Codec
	store     RevocationStore
	logger    *logging.Logger

	// now supplies the current time; replaced in tests for determinism.
	now func() time.Time

	// dummyHash is compared against when login hits an unknown username,
	// so both failure paths cost one bcrypt comparison.
	dummyHash string
}

// NewEngine wires the auth components together.
func NewEngine(directory UserDirectory, hasher *Hasher, codec *Codec, store RevocationStore, logger *logging.Logger) *Engine {
	dummy, err := hasher.Hash("housetally-login-timing-pad")
	if err != nil {
		// Hash only fails on an invalid cost, which NewHasher already rejects.
		dummy = ""
	}

	return &Engine{
		directory: directory,
		hasher:    hasher,
		codec:     codec,
		store:     store,
		logger:    logger.With("component", "auth"),
		now:       time.Now,
		dummyHash: dummy,
	}
}

// AccessTTL returns the configured access token lifetime.
func (e *Engine) AccessTTL() time.Duration {
	return e.codec.AccessTTL()
}

// Register creates a new user account.
//
// The password must pass the strength policy before any credential is
// stored; violations are reported in full via *PolicyError. Returns
// ErrUsernameExists if the username is taken.
func (e *Engine) Register(ctx context.Context, username, password string) (*User, error) {
	if !IsValidUsername(username) {
		return nil, ErrInvalidUsername
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := e.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &User{
		Username:     username,
		PasswordHash: hash,
	}
	if err := e.directory.Create(ctx, user); err != nil {
		return nil, err
	}

	e.logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Login verifies credentials and issues an access/refresh token pair.
//
// Both the unknown-username and wrong-password paths return the generic
// ErrInvalidCredentials, and both cost one bcrypt comparison, so callers
// cannot enumerate accounts by error message or by timing.
func (e *Engine) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	user, err := e.directory.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			_, _ = e.hasher.Verify(password, e.dummyHash) //nolint:errcheck // timing pad, result discarded
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := e.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		// Corrupt stored digest is an integrity fault, not a wrong password.
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	pair, err := e.issuePair(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	e.logger.Info("login", "user_id", user.ID, "username", user.Username)
	return pair, nil
}

// Authenticate resolves an access token string to its user.
//
// Any token failure (malformed, forged, expired, wrong kind, revoked,
// subject gone) collapses to ErrUnauthorized; the specific cause is kept
// in the wrapped error for logs but never shown to the caller.
// Infrastructure failures (store or directory unavailable) are returned
// as-is: they are not an authentication decision.
func (e *Engine) Authenticate(ctx context.Context, tokenString string) (*User, error) {
	now := e.now()

	claims, err := e.codec.Verify(tokenString, now, KindAccess)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	revoked, err := e.store.IsRevoked(ctx, claims.ID, now)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, ErrTokenRevoked)
	}

	user, err := e.directory.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, fmt.Errorf("%w: subject no longer exists", ErrUnauthorized)
		}
		return nil, err
	}

	return user, nil
}

// Refresh validates a refresh token and issues a new access token.
//
// The refresh token itself is not rotated: it remains valid until its own
// expiry or an explicit logout. Returns the new access token and its
// lifetime in seconds.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (accessToken string, expiresIn int, err error) {
	now := e.now()

	claims, err := e.codec.Verify(refreshToken, now, KindRefresh)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	revoked, err := e.store.IsRevoked(ctx, claims.ID, now)
	if err != nil {
		return "", 0, err
	}
	if revoked {
		return "", 0, fmt.Errorf("%w: %w", ErrUnauthorized, ErrTokenRevoked)
	}

	token, jti, expiresAt, err := e.codec.Issue(claims.Subject, KindAccess, now)
	if err != nil {
		return "", 0, err
	}
	if err := e.store.Record(ctx, &TokenRecord{
		JTI:       jti,
		Subject:   claims.Subject,
		Kind:      KindAccess,
		ExpiresAt: expiresAt,
	}); err != nil {
		return "", 0, err
	}

	e.logger.Debug("token refreshed", "user_id", claims.Subject, "jti", jti)
	return token, int(e.codec.AccessTTL().Seconds()), nil
}

// Logout revokes the presented tokens.
//
// Verification is best-effort: an expired or otherwise unusable token does
// not block logout, it simply has nothing left to revoke. Calling Logout
// twice with the same tokens is not an error.
func (e *Engine) Logout(ctx context.Context, accessToken, refreshToken string) error {
	for _, tokenString := range []string{accessToken, refreshToken} {
		if tokenString == "" {
			continue
		}
		claims, err := e.codec.Decode(tokenString)
		if err != nil {
			// Unparseable or forged tokens identify nothing to revoke.
			continue
		}
		if err := e.store.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
			return err
		}
		e.logger.Debug("token revoked", "user_id", claims.Subject, "jti", claims.ID)
	}
	return nil
}

// ChangePassword replaces a user's credential and terminates every
// outstanding session for them.
//
// The current password must verify and the new one must pass the strength
// policy. Revoking all recorded tokens forces re-login everywhere; a
// stolen session does not survive a password change.
func (e *Engine) ChangePassword(ctx context.Context, user *User, currentPassword, newPassword string) error {
	ok, err := e.hasher.Verify(currentPassword, user.PasswordHash)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidCredentials
	}

	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	hash, err := e.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := e.directory.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}
	if err := e.store.RevokeAllForSubject(ctx, user.ID); err != nil {
		return err
	}

	e.logger.Info("password changed, sessions revoked", "user_id", user.ID)
	return nil
}

// PurgeExpiredTokens removes revocation entries whose tokens have expired.
// Run periodically; the store stays bounded either way, this just frees
// storage sooner.
func (e *Engine) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	return e.store.DeleteExpired(ctx, e.now())
}

// issuePair mints and records one access and one refresh token.
func (e *Engine) issuePair(ctx context.Context, userID string) (*TokenPair, error) {
	now := e.now()

	access, accessJTI, accessExp, err := e.codec.Issue(userID, KindAccess, now)
	if err != nil {
		return nil, err
	}
	refresh, refreshJTI, refreshExp, err := e.codec.Issue(userID, KindRefresh, now)
	if err != nil {
		return nil, err
	}

	records := []*TokenRecord{
		{JTI: accessJTI, Subject: userID, Kind: KindAccess, ExpiresAt: accessExp},
		{JTI: refreshJTI, Subject: userID, Kind: KindRefresh, ExpiresAt: refreshExp},
	}
	for _, rec := range records {
		if err := e.store.Record(ctx, rec); err != nil {
			return nil, err
		}
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    TokenTypeBearer,
		ExpiresIn:    int(e.codec.AccessTTL().Seconds()),
	}, nil
}
