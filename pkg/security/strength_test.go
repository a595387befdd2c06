package security

import (
	"strings"
	"testing"
)

func TestValidateMasterPassword(t *testing.T) {
	tests := []struct {
		name      string
		password  string
		wantValid bool
	}{
		{"too short", "ab!", false},
		{"long enough but no special", "abcdefgh", false},
		{"minimum valid", "abcdefg!", true},
		{"strong candidate", "Str0ng!Password#2024", true},
		{"too long", strings.Repeat("a", 129) + "!", false},
		{"special only requirement", "________", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateMasterPassword(tt.password)
			if result.Valid != tt.wantValid {
				t.Errorf("Valid = %v, want %v (warnings: %v)", result.Valid, tt.wantValid, result.Warnings)
			}
		})
	}
}

func TestValidateMasterPasswordStrength(t *testing.T) {
	if got := ValidateMasterPassword("Str0ng!Password#2024").Strength; got != PasswordStrong {
		t.Errorf("expected strong, got %s", got)
	}
	if got := ValidateMasterPassword("weakpw!x").Strength; got == PasswordStrong {
		t.Error("short low-complexity password should not be strong")
	}
	if got := ValidateMasterPassword("short").Strength; got != PasswordWeak {
		t.Errorf("expected weak, got %s", got)
	}
}

func TestPasswordStrengthString(t *testing.T) {
	cases := map[PasswordStrength]string{
		PasswordWeak:        "weak",
		PasswordFair:        "fair",
		PasswordGood:        "good",
		PasswordStrong:      "strong",
		PasswordStrength(9): "unknown",
	}
	for s, want := range cases {
		if s.String() != want {
			t.Errorf("String() = %q, want %q", s.String(), want)
		}
	}
}
