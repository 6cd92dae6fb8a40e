package auth

import (
	"errors"
	"testing"
	"time"
)

func TestNewCodec_Validation(t *testing.T) {
	tests := []struct {
		name       string
		secret     string
		accessTTL  time.Duration
		refreshTTL time.Duration
		wantErr    bool
	}{
		{"valid", testSecret, 30 * time.Minute, 7 * 24 * time.Hour, false},
		{"secret exactly 32 bytes", "01234567890123456789012345678901", time.Minute, time.Hour, false},
		{"secret too short", "short-secret", time.Minute, time.Hour, true},
		{"secret 31 bytes", "0123456789012345678901234567890", time.Minute, time.Hour, true},
		{"empty secret", "", time.Minute, time.Hour, true},
		{"zero access TTL", testSecret, 0, time.Hour, true},
		{"refresh not longer than access", testSecret, time.Hour, time.Hour, true},
		{"refresh shorter than access", testSecret, time.Hour, time.Minute, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCodec(tt.secret, tt.accessTTL, tt.refreshTTL)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewCodec() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCodec_IssueVerifyRoundTrip(t *testing.T) {
	c := testCodec(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for _, kind := range []TokenKind{KindAccess, KindRefresh} {
		t.Run(string(kind), func(t *testing.T) {
			token, jti, expiresAt, err := c.Issue("usr-1234", kind, now)
			if err != nil {
				t.Fatalf("Issue() error = %v", err)
			}
			if jti == "" {
				t.Error("Issue() returned empty jti")
			}
			if !expiresAt.After(now) {
				t.Errorf("expiry %v not after issuance %v", expiresAt, now)
			}

			claims, err := c.Verify(token, now, kind)
			if err != nil {
				t.Fatalf("Verify() error = %v", err)
			}
			if claims.Subject != "usr-1234" {
				t.Errorf("Subject = %q, want usr-1234", claims.Subject)
			}
			if claims.ID != jti {
				t.Errorf("jti = %q, want %q", claims.ID, jti)
			}
			if claims.Kind != kind {
				t.Errorf("Kind = %q, want %q", claims.Kind, kind)
			}
		})
	}
}

func TestCodec_RefreshOutlivesAccess(t *testing.T) {
	c := testCodec(t)
	now := time.Now()

	_, _, accessExp, err := c.Issue("usr-1", KindAccess, now)
	if err != nil {
		t.Fatalf("Issue(access) error = %v", err)
	}
	_, _, refreshExp, err := c.Issue("usr-1", KindRefresh, now)
	if err != nil {
		t.Fatalf("Issue(refresh) error = %v", err)
	}

	if !refreshExp.After(accessExp) {
		t.Errorf("refresh expiry %v should be after access expiry %v", refreshExp, accessExp)
	}
}

func TestCodec_DistinctTokenIDs(t *testing.T) {
	c := testCodec(t)
	now := time.Now()

	_, jti1, _, err := c.Issue("usr-1", KindAccess, now)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	_, jti2, _, err := c.Issue("usr-1", KindAccess, now)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if jti1 == jti2 {
		t.Error("two issuances for the same subject produced the same jti")
	}
}

func TestCodec_Verify_WrongSecret(t *testing.T) {
	now := time.Now()

	issuer, err := NewCodec(testSecret, time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("NewCodec() error = %v", err)
	}
	verifier, err := NewCodec("another-secret-entirely-0123456789ab", time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("NewCodec() error = %v", err)
	}

	token, _, _, err := issuer.Issue("usr-1", KindAccess, now)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	_, err = verifier.Verify(token, now, KindAccess)
	if !errors.Is(err, ErrSignatureInvalid) {
		t.Errorf("Verify() error = %v, want ErrSignatureInvalid", err)
	}
}

func TestCodec_Verify_Expired(t *testing.T) {
	c := testCodec(t)
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	token, _, expiresAt, err := c.Issue("usr-1", KindAccess, issued)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	// Still valid right at expiry
	if _, err := c.Verify(token, expiresAt, KindAccess); err != nil {
		t.Errorf("Verify() at expiry error = %v, want nil", err)
	}

	// Rejected one second past expiry
	_, err = c.Verify(token, expiresAt.Add(time.Second), KindAccess)
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Verify() past expiry error = %v, want ErrTokenExpired", err)
	}
}

func TestCodec_Verify_WrongKind(t *testing.T) {
	c := testCodec(t)
	now := time.Now()

	refresh, _, _, err := c.Issue("usr-1", KindRefresh, now)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	// A refresh token must never pass as an access token
	_, err = c.Verify(refresh, now, KindAccess)
	if !errors.Is(err, ErrWrongTokenKind) {
		t.Errorf("Verify(refresh as access) error = %v, want ErrWrongTokenKind", err)
	}

	access, _, _, err := c.Issue("usr-1", KindAccess, now)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	_, err = c.Verify(access, now, KindRefresh)
	if !errors.Is(err, ErrWrongTokenKind) {
		t.Errorf("Verify(access as refresh) error = %v, want ErrWrongTokenKind", err)
	}
}

func TestCodec_Verify_Malformed(t *testing.T) {
	c := testCodec(t)
	now := time.Now()

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"two segments", "aaaa.bbbb"},
		{"invalid base64", "!!!.???.###"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Verify(tt.token, now, KindAccess)
			if !errors.Is(err, ErrTokenMalformed) {
				t.Errorf("Verify(%q) error = %v, want ErrTokenMalformed", tt.token, err)
			}
		})
	}
}

func TestCodec_Verify_TamperedPayload(t *testing.T) {
	c := testCodec(t)
	now := time.Now()

	token, _, _, err := c.Issue("usr-1", KindAccess, now)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	// Flip a byte in the payload segment; signature no longer matches
	tampered := []byte(token)
	mid := len(tampered) / 2
	if tampered[mid] == 'A' {
		tampered[mid] = 'B'
	} else {
		tampered[mid] = 'A'
	}

	_, err = c.Verify(string(tampered), now, KindAccess)
	if err == nil {
		t.Error("Verify() accepted a tampered token")
	}
}

func TestCodec_Decode_ExpiredToken(t *testing.T) {
	c := testCodec(t)
	issued := time.Now().Add(-48 * time.Hour)

	token, jti, _, err := c.Issue("usr-1", KindAccess, issued)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	// Decode ignores expiry so logout can still learn which jti to revoke
	claims, err := c.Decode(token)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if claims.ID != jti {
		t.Errorf("jti = %q, want %q", claims.ID, jti)
	}
}
