package security

import (
	"context"
	"testing"

	"github.com/forest6511/passctl/pkg/crypto"
	"github.com/forest6511/passctl/pkg/store"
)

// fakeSecrets is an in-memory SecretReader for detector tests.
type fakeSecrets struct {
	secrets []*store.Secret
}

func (f *fakeSecrets) ListSecrets(_ context.Context, _ string) ([]*store.Secret, error) {
	return f.secrets, nil
}

func sealSecret(t *testing.T, label, value, masterPassword string) *store.Secret {
	t.Helper()
	sealed, salt, err := crypto.Seal([]byte(value), masterPassword)
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	return &store.Secret{Label: label, Ciphertext: sealed, Salt: salt}
}

func TestFindReuse(t *testing.T) {
	const master = "master-password"
	secrets := &fakeSecrets{secrets: []*store.Secret{
		sealSecret(t, "email", "X", master),
		sealSecret(t, "bank", "Y", master),
	}}
	d := NewReuseDetector(secrets)
	ctx := context.Background()

	labels, err := d.FindReuse(ctx, "alice", []byte("X"), master, "")
	if err != nil {
		t.Fatalf("FindReuse failed: %v", err)
	}
	if len(labels) != 1 || labels[0] != "email" {
		t.Errorf("expected [email], got %v", labels)
	}

	// Excluding the matching label yields nothing
	labels, err = d.FindReuse(ctx, "alice", []byte("X"), master, "email")
	if err != nil {
		t.Fatalf("FindReuse failed: %v", err)
	}
	if len(labels) != 0 {
		t.Errorf("expected no labels with exclusion, got %v", labels)
	}

	// Unmatched candidate yields nothing
	labels, err = d.FindReuse(ctx, "alice", []byte("Z"), master, "")
	if err != nil {
		t.Fatalf("FindReuse failed: %v", err)
	}
	if len(labels) != 0 {
		t.Errorf("expected no labels, got %v", labels)
	}
}

func TestFindReuseMultipleMatches(t *testing.T) {
	const master = "master-password"
	secrets := &fakeSecrets{secrets: []*store.Secret{
		sealSecret(t, "email", "shared", master),
		sealSecret(t, "bank", "shared", master),
		sealSecret(t, "wifi", "other", master),
	}}
	d := NewReuseDetector(secrets)

	labels, err := d.FindReuse(context.Background(), "alice", []byte("shared"), master, "")
	if err != nil {
		t.Fatalf("FindReuse failed: %v", err)
	}
	if len(labels) != 2 {
		t.Fatalf("expected 2 labels, got %v", labels)
	}
}

// TestFindReuseSkipsUnopenable verifies that records sealed under a
// different password do not fail the scan.
func TestFindReuseSkipsUnopenable(t *testing.T) {
	secrets := &fakeSecrets{secrets: []*store.Secret{
		sealSecret(t, "email", "X", "other-master"),
		sealSecret(t, "bank", "X", "master"),
	}}
	d := NewReuseDetector(secrets)

	labels, err := d.FindReuse(context.Background(), "alice", []byte("X"), "master", "")
	if err != nil {
		t.Fatalf("FindReuse failed: %v", err)
	}
	if len(labels) != 1 || labels[0] != "bank" {
		t.Errorf("expected [bank], got %v", labels)
	}
}
