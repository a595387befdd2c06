package security

import (
	"fmt"
	"regexp"
	"strings"
)

// Password validation constants.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 128
)

// specialChars are the characters accepted as "special" for the hard
// complexity requirement.
const specialChars = "!@#$%^&*()_+-=[]{}|;:,.<>?/"

// PasswordStrength represents the strength level of a password
type PasswordStrength int

const (
	PasswordWeak PasswordStrength = iota
	PasswordFair
	PasswordGood
	PasswordStrong
)

// String returns a human-readable representation of password strength
func (s PasswordStrength) String() string {
	switch s {
	case PasswordWeak:
		return "weak"
	case PasswordFair:
		return "fair"
	case PasswordGood:
		return "good"
	case PasswordStrong:
		return "strong"
	default:
		return "unknown"
	}
}

// PasswordValidationResult contains the result of password validation
type PasswordValidationResult struct {
	Valid    bool             // Whether password meets minimum requirements
	Strength PasswordStrength // Estimated strength
	Warnings []string         // Suggestions for improvement (not errors)
}

var (
	upperRegex = regexp.MustCompile(`[A-Z]`)
	lowerRegex = regexp.MustCompile(`[a-z]`)
	digitRegex = regexp.MustCompile(`\d`)
)

// ValidateMasterPassword checks a candidate master password against the
// hard requirements (at least 8 characters and one special character) and
// estimates its strength. The result is purely advisory to front ends at
// registration time; the vault engine itself never requires it.
func ValidateMasterPassword(password string) *PasswordValidationResult {
	result := &PasswordValidationResult{
		Valid:    true,
		Strength: PasswordFair,
	}

	// Hard requirements
	if len(password) < MinPasswordLength {
		result.Valid = false
		result.Strength = PasswordWeak
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
		return result
	}
	if len(password) > MaxPasswordLength {
		result.Valid = false
		result.Strength = PasswordWeak
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Password must be at most %d characters", MaxPasswordLength))
		return result
	}
	if !strings.ContainsAny(password, specialChars) {
		result.Valid = false
		result.Strength = PasswordWeak
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Password must contain at least one special character (%s)", specialChars))
		return result
	}

	// Complexity checks (warnings only)
	complexity := 1 // special character is already required
	if upperRegex.MatchString(password) {
		complexity++
	}
	if lowerRegex.MatchString(password) {
		complexity++
	}
	if digitRegex.MatchString(password) {
		complexity++
	}

	if complexity < 3 {
		result.Warnings = append(result.Warnings,
			"Consider using a mix of uppercase, lowercase, numbers, and symbols")
	}
	if len(password) < 12 {
		result.Warnings = append(result.Warnings,
			"Longer passwords (12+ characters) are more secure")
	}

	// Determine strength based on complexity and length
	switch {
	case complexity >= 4 && len(password) >= 16:
		result.Strength = PasswordStrong
	case complexity >= 3 && len(password) >= 12:
		result.Strength = PasswordGood
	case complexity >= 3 || len(password) >= 12:
		result.Strength = PasswordFair
	default:
		result.Strength = PasswordWeak
	}

	return result
}
