package security

import (
	"bytes"
	"context"

	"github.com/forest6511/passctl/pkg/crypto"
	"github.com/forest6511/passctl/pkg/store"
)

// SecretReader is the slice of secret storage the reuse detector reads.
type SecretReader interface {
	ListSecrets(ctx context.Context, username string) ([]*store.Secret, error)
}

// ReuseDetector finds which of an account's existing labels already
// protect a given plaintext value. Every check decrypts every stored
// secret for the account, which costs one key derivation per secret:
// acceptable for a personal vault, not at fleet scale.
type ReuseDetector struct {
	secrets SecretReader
}

// NewReuseDetector creates a detector over the given secret storage.
func NewReuseDetector(secrets SecretReader) *ReuseDetector {
	return &ReuseDetector{secrets: secrets}
}

// FindReuse returns every label of the account whose decrypted value
// equals candidate byte-for-byte. excludeLabel, when non-empty, is
// skipped: that is the label a new value is about to replace.
//
// Secrets that fail to open (corrupt record, or a record sealed under a
// different master password) are skipped rather than failing the scan.
func (d *ReuseDetector) FindReuse(ctx context.Context, username string, candidate []byte, masterPassword, excludeLabel string) ([]string, error) {
	secrets, err := d.secrets.ListSecrets(ctx, username)
	if err != nil {
		return nil, err
	}

	var labels []string
	for _, sec := range secrets {
		if excludeLabel != "" && sec.Label == excludeLabel {
			continue
		}
		plaintext, err := crypto.Open(sec.Ciphertext, sec.Salt, masterPassword)
		if err != nil {
			continue
		}
		if bytes.Equal(plaintext, candidate) {
			labels = append(labels, sec.Label)
		}
		crypto.SecureWipe(plaintext)
	}
	return labels, nil
}
