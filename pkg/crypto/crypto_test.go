package crypto

import (
	"bytes"
	"crypto/rand"
	"testing"
)

// TestDeriveKey tests the PBKDF2 key derivation function
func TestDeriveKey(t *testing.T) {
	password := []byte("test-password-123")
	salt := make([]byte, SaltLength)
	if _, err := rand.Read(salt); err != nil {
		t.Fatalf("failed to generate salt: %v", err)
	}

	// Test key derivation produces correct length
	key := DeriveKey(password, salt)
	if len(key) != KeyLength {
		t.Errorf("DeriveKey() returned key of length %d, want %d", len(key), KeyLength)
	}

	// Test same password + salt produces same key (deterministic)
	key2 := DeriveKey(password, salt)
	if !bytes.Equal(key, key2) {
		t.Error("DeriveKey() with same inputs should produce identical keys")
	}

	// Test different password produces different key
	differentKey := DeriveKey([]byte("different-password"), salt)
	if bytes.Equal(key, differentKey) {
		t.Error("DeriveKey() with different password should produce different key")
	}

	// Test different salt produces different key
	differentSalt := make([]byte, SaltLength)
	if _, err := rand.Read(differentSalt); err != nil {
		t.Fatalf("failed to generate salt: %v", err)
	}
	differentKey = DeriveKey(password, differentSalt)
	if bytes.Equal(key, differentKey) {
		t.Error("DeriveKey() with different salt should produce different key")
	}
}

// TestDeriveKeyParameters verifies the derivation parameters
func TestDeriveKeyParameters(t *testing.T) {
	if PBKDF2Iterations != 100_000 {
		t.Errorf("PBKDF2Iterations = %d, want 100000", PBKDF2Iterations)
	}
	if KeyLength != 32 {
		t.Errorf("KeyLength = %d, want 32 (256-bit)", KeyLength)
	}
	if SaltLength != 16 {
		t.Errorf("SaltLength = %d, want 16 (128-bit)", SaltLength)
	}
}

func TestNewSalt(t *testing.T) {
	salt1, err := NewSalt()
	if err != nil {
		t.Fatalf("NewSalt failed: %v", err)
	}
	if len(salt1) != SaltLength {
		t.Errorf("salt length = %d, want %d", len(salt1), SaltLength)
	}

	salt2, err := NewSalt()
	if err != nil {
		t.Fatalf("NewSalt failed: %v", err)
	}
	if bytes.Equal(salt1, salt2) {
		t.Error("two fresh salts should not be equal")
	}
}

func TestSecureWipe(t *testing.T) {
	data := []byte("sensitive-key-material")
	SecureWipe(data)
	for i, b := range data {
		if b != 0 {
			t.Errorf("byte %d not wiped: %d", i, b)
		}
	}
}
