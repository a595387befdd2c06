// Package crypto provides the cryptographic primitives for passctl.
//
// This package implements PBKDF2-SHA256 key derivation, the master-password
// verifier, and per-secret envelope encryption (AES-256-CBC with an
// HMAC-SHA256 integrity tag).
//
// # Security Features
//
//   - PBKDF2-SHA256 key derivation (100,000 iterations)
//   - Fresh 128-bit salt per account verifier and per sealed secret
//   - Encrypt-then-MAC sealing so wrong-password decryption is detected
//   - Cryptographically secure random salt and IV generation
//   - Secure memory wiping for derived key material
//
// # Example Usage
//
//	// Seal a secret under a master password
//	blob, salt, err := crypto.Seal([]byte("hunter2"), "master-password")
//
//	// Open it again with the stored salt
//	plaintext, err := crypto.Open(blob, salt, "master-password")
package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"runtime"

	"golang.org/x/crypto/pbkdf2"
)

// Key derivation parameters.
const (
	// PBKDF2Iterations is the iteration count for the slow derivation.
	PBKDF2Iterations = 100_000

	// KeyLength is the length of encryption keys in bytes (256 bits).
	KeyLength = 32

	// SaltLength is the length of salts in bytes (128 bits).
	SaltLength = 16
)

// DeriveKey derives a 256-bit encryption key from a master password using
// PBKDF2-SHA256 with 100,000 iterations.
//
// The derivation is deterministic: the same password and salt always yield
// the same key. The salt must be SaltLength bytes of cryptographically
// secure random data; passing an empty salt is a programming error, not a
// recoverable condition.
//
// Only the per-secret encryption keys used by Seal/Open come from this
// derivation. The account verifier uses a single fast hash with its own
// salt, so the verifier and any one secret's key can never coincide.
func DeriveKey(password, salt []byte) []byte {
	return pbkdf2.Key(password, salt, PBKDF2Iterations, KeyLength, sha256.New)
}

// deriveKeyPair stretches the master password into an encryption key and a
// separate MAC key for encrypt-then-MAC sealing.
func deriveKeyPair(password, salt []byte) (encKey, macKey []byte) {
	block := pbkdf2.Key(password, salt, PBKDF2Iterations, 2*KeyLength, sha256.New)
	return block[:KeyLength], block[KeyLength:]
}

// NewSalt returns SaltLength bytes of cryptographically secure random data.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("crypto: failed to generate salt: %w", err)
	}
	return salt, nil
}

// SecureWipe overwrites a byte slice with zeros in a way that prevents
// compiler optimization from removing the operation.
// Used to destroy derived keys as soon as a seal/open completes.
func SecureWipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
	// runtime.KeepAlive ensures the write operations are not optimized away
	// by the compiler since b is still "in use" after the loop.
	runtime.KeepAlive(b)
}
