package auth

import (
	"errors"
	"testing"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantOK   bool
	}{
		{"all rules satisfied", "LongEnough1!", true},
		{"minimum length exactly", "Abcdef1!", true},
		{"too short", "Short1!", false},
		{"no uppercase", "longenough1!", false},
		{"no lowercase", "LONGENOUGH1!", false},
		{"no digit", "LongEnough!!", false},
		{"no symbol", "LongEnough1", false},
		{"empty", "", false},
		{"symbol from set edges", "LongEnough1?", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantOK && err != nil {
				t.Errorf("ValidatePassword(%q) = %v, want nil", tt.password, err)
			}
			if !tt.wantOK && err == nil {
				t.Errorf("ValidatePassword(%q) = nil, want policy error", tt.password)
			}
		})
	}
}

func TestValidatePassword_ReportsAllViolations(t *testing.T) {
	// Violates every rule at once: short, no upper, no lower, no digit, no symbol
	err := ValidatePassword("")
	if err == nil {
		t.Fatal("ValidatePassword(\"\") should fail")
	}

	var policyErr *PolicyError
	if !errors.As(err, &policyErr) {
		t.Fatalf("error type = %T, want *PolicyError", err)
	}

	if len(policyErr.Reasons) != 5 {
		t.Errorf("Reasons count = %d, want 5: %v", len(policyErr.Reasons), policyErr.Reasons)
	}
}

func TestValidatePassword_SingleViolation(t *testing.T) {
	err := ValidatePassword("LongEnough1")

	var policyErr *PolicyError
	if !errors.As(err, &policyErr) {
		t.Fatalf("error type = %T, want *PolicyError", err)
	}

	if len(policyErr.Reasons) != 1 {
		t.Errorf("Reasons count = %d, want 1: %v", len(policyErr.Reasons), policyErr.Reasons)
	}
}
