package auth

import (
	"fmt"
	"strings"
	"unicode"
)

// minPasswordLength is the minimum accepted password length.
const minPasswordLength = 8

// passwordSymbols is the fixed set of punctuation characters that satisfy
// the symbol requirement.
const passwordSymbols = "!@#$%^&*()_+-=[]{}|;:,.<>?"

// ValidatePassword checks a candidate password against the strength policy.
//
// Rules, all independently checked:
//   - length >= 8
//   - at least one uppercase letter
//   - at least one lowercase letter
//   - at least one digit
//   - at least one symbol from passwordSymbols
//
// Returns nil if the password passes, or a *PolicyError listing every
// violated rule. Pure function: no side effects, no I/O.
func ValidatePassword(password string) error {
	var reasons []string

	if len(password) < minPasswordLength {
		reasons = append(reasons, fmt.Sprintf("must be at least %d characters long", minPasswordLength))
	}

	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(passwordSymbols, r):
			hasSymbol = true
		}
	}

	if !hasUpper {
		reasons = append(reasons, "must contain an uppercase letter")
	}
	if !hasLower {
		reasons = append(reasons, "must contain a lowercase letter")
	}
	if !hasDigit {
		reasons = append(reasons, "must contain a digit")
	}
	if !hasSymbol {
		reasons = append(reasons, fmt.Sprintf("must contain a symbol (%s)", passwordSymbols))
	}

	if len(reasons) > 0 {
		return &PolicyError{Reasons: reasons}
	}
	return nil
}
