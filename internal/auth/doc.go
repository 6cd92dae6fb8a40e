// Package auth implements the HouseTally authentication core.
//
// This package manages:
//   - Credential hashing and verification (bcrypt)
//   - Password strength policy
//   - JWT access/refresh token issuance and verification (HS256)
//   - Token revocation (blacklist until natural expiry)
//   - The login / authenticate / refresh / logout / change-password flows
//
// # Token model
//
// Two token kinds are issued, both signed JWTs over the same process-wide
// secret: a short-lived access token authorising individual API calls, and
// a longer-lived refresh token used solely to mint new access tokens. Each
// carries a unique id (jti), the subject's user id, issued-at, expiry, and
// a kind discriminator so one cannot be passed off as the other.
//
// Every issued token is recorded in the RevocationStore by its jti. Logout
// revokes the presented tokens; a password change revokes everything
// outstanding for the subject. Entries become irrelevant once the token's
// own expiry passes, which bounds the store's size.
//
// # Security
//
//   - The signing secret is injected at construction and must be at least
//     32 bytes; NewCodec refuses shorter secrets.
//   - Login failures are reported as a single generic error so callers
//     cannot distinguish unknown users from wrong passwords.
//   - Signature verification happens before any claim is inspected.
//   - Raw passwords and token strings are never logged.
package auth
