package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func mustCreateAccount(t *testing.T, s *Store, username string) {
	t.Helper()
	verifier := []byte("verifier-" + username)
	salt := []byte("0123456789abcdef")
	if err := s.CreateAccount(context.Background(), username, verifier, salt); err != nil {
		t.Fatalf("CreateAccount(%s) failed: %v", username, err)
	}
}

func TestOpen(t *testing.T) {
	s := openTestStore(t)
	if s.Path() == "" {
		t.Error("expected non-empty path")
	}
}

func TestCreateAccountDuplicate(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	mustCreateAccount(t, s, "alice")

	// Second registration with the same username must fail, not overwrite
	err := s.CreateAccount(ctx, "alice", []byte("other"), []byte("0123456789abcdef"))
	if !errors.Is(err, ErrDuplicateAccount) {
		t.Errorf("expected ErrDuplicateAccount, got %v", err)
	}

	// Distinct usernames always succeed; usernames are case-sensitive
	mustCreateAccount(t, s, "bob")
	mustCreateAccount(t, s, "Alice")
}

func TestFindAccount(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	mustCreateAccount(t, s, "alice")

	a, err := s.FindAccount(ctx, "alice")
	if err != nil {
		t.Fatalf("FindAccount failed: %v", err)
	}
	if a.Username != "alice" {
		t.Errorf("username = %q, want alice", a.Username)
	}
	if string(a.Verifier) != "verifier-alice" {
		t.Errorf("unexpected verifier: %q", a.Verifier)
	}

	_, err = s.FindAccount(ctx, "nobody")
	if !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestInsertSecret(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	mustCreateAccount(t, s, "alice")

	if err := s.InsertSecret(ctx, "alice", "email", []byte("ct1"), []byte("salt1")); err != nil {
		t.Fatalf("InsertSecret failed: %v", err)
	}

	// Same label for the same account fails
	err := s.InsertSecret(ctx, "alice", "email", []byte("ct2"), []byte("salt2"))
	if !errors.Is(err, ErrDuplicateLabel) {
		t.Errorf("expected ErrDuplicateLabel, got %v", err)
	}

	// Same label for a different account is fine
	mustCreateAccount(t, s, "bob")
	if err := s.InsertSecret(ctx, "bob", "email", []byte("ct3"), []byte("salt3")); err != nil {
		t.Errorf("InsertSecret for bob failed: %v", err)
	}

	// Unknown owner
	err = s.InsertSecret(ctx, "nobody", "email", []byte("ct"), []byte("salt"))
	if !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestUpdateSecret(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	mustCreateAccount(t, s, "alice")

	// Updating a nonexistent label fails
	err := s.UpdateSecret(ctx, "alice", "email", []byte("ct"), []byte("salt"))
	if !errors.Is(err, ErrSecretNotFound) {
		t.Errorf("expected ErrSecretNotFound, got %v", err)
	}

	if err := s.InsertSecret(ctx, "alice", "email", []byte("ct1"), []byte("salt1")); err != nil {
		t.Fatalf("InsertSecret failed: %v", err)
	}

	if err := s.UpdateSecret(ctx, "alice", "email", []byte("ct2"), []byte("salt2")); err != nil {
		t.Fatalf("UpdateSecret failed: %v", err)
	}

	sec, err := s.FindSecret(ctx, "alice", "email")
	if err != nil {
		t.Fatalf("FindSecret failed: %v", err)
	}
	if string(sec.Ciphertext) != "ct2" || string(sec.Salt) != "salt2" {
		t.Errorf("update did not replace ciphertext and salt: %q %q", sec.Ciphertext, sec.Salt)
	}
}

func TestDeleteSecret(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	mustCreateAccount(t, s, "alice")
	if err := s.InsertSecret(ctx, "alice", "email", []byte("ct"), []byte("salt")); err != nil {
		t.Fatalf("InsertSecret failed: %v", err)
	}

	if err := s.DeleteSecret(ctx, "alice", "email"); err != nil {
		t.Fatalf("DeleteSecret failed: %v", err)
	}

	if _, err := s.FindSecret(ctx, "alice", "email"); !errors.Is(err, ErrSecretNotFound) {
		t.Errorf("expected ErrSecretNotFound after delete, got %v", err)
	}

	if err := s.DeleteSecret(ctx, "alice", "email"); !errors.Is(err, ErrSecretNotFound) {
		t.Errorf("expected ErrSecretNotFound for second delete, got %v", err)
	}
}

func TestListSecrets(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	mustCreateAccount(t, s, "alice")
	for _, label := range []string{"email", "bank", "wifi"} {
		if err := s.InsertSecret(ctx, "alice", label, []byte("ct-"+label), []byte("salt")); err != nil {
			t.Fatalf("InsertSecret(%s) failed: %v", label, err)
		}
	}

	secrets, err := s.ListSecrets(ctx, "alice")
	if err != nil {
		t.Fatalf("ListSecrets failed: %v", err)
	}
	if len(secrets) != 3 {
		t.Fatalf("expected 3 secrets, got %d", len(secrets))
	}
	// Ordered by label
	want := []string{"bank", "email", "wifi"}
	for i, sec := range secrets {
		if sec.Label != want[i] {
			t.Errorf("secret %d label = %q, want %q", i, sec.Label, want[i])
		}
	}
}

func TestListAccountsWithLabels(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	mustCreateAccount(t, s, "alice")
	mustCreateAccount(t, s, "bob")
	if err := s.InsertSecret(ctx, "alice", "email", []byte("ct"), []byte("salt")); err != nil {
		t.Fatalf("InsertSecret failed: %v", err)
	}
	if err := s.InsertSecret(ctx, "alice", "bank", []byte("ct"), []byte("salt")); err != nil {
		t.Fatalf("InsertSecret failed: %v", err)
	}

	all, err := s.ListAccountsWithLabels(ctx)
	if err != nil {
		t.Fatalf("ListAccountsWithLabels failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(all))
	}
	if all[0].Username != "alice" || len(all[0].Labels) != 2 {
		t.Errorf("alice: got %v", all[0])
	}
	if all[0].Labels[0] != "bank" || all[0].Labels[1] != "email" {
		t.Errorf("alice labels not ordered: %v", all[0].Labels)
	}
	// Accounts with no secrets are still listed
	if all[1].Username != "bob" || len(all[1].Labels) != 0 {
		t.Errorf("bob: got %v", all[1])
	}
}

func TestDeleteAccountCascades(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	mustCreateAccount(t, s, "alice")
	if err := s.InsertSecret(ctx, "alice", "email", []byte("ct"), []byte("salt")); err != nil {
		t.Fatalf("InsertSecret failed: %v", err)
	}
	if err := s.AppendLoginAttempt(ctx, "alice", time.Now(), false); err != nil {
		t.Fatalf("AppendLoginAttempt failed: %v", err)
	}

	if err := s.DeleteAccount(ctx, "alice"); err != nil {
		t.Fatalf("DeleteAccount failed: %v", err)
	}

	if _, err := s.FindAccount(ctx, "alice"); !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
	if _, err := s.FindSecret(ctx, "alice", "email"); !errors.Is(err, ErrSecretNotFound) {
		t.Errorf("expected secrets to be cascaded, got %v", err)
	}
	n, err := s.CountRecentFailures(ctx, "alice", time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("CountRecentFailures failed: %v", err)
	}
	if n != 0 {
		t.Errorf("expected attempt history to be erased, got %d failures", n)
	}

	if err := s.DeleteAccount(ctx, "alice"); !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound for second delete, got %v", err)
	}
}

func TestLoginAttempts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Now()

	// Attempts are recorded even for usernames that do not exist
	if err := s.AppendLoginAttempt(ctx, "ghost", now.Add(-20*time.Minute), false); err != nil {
		t.Fatalf("AppendLoginAttempt failed: %v", err)
	}
	if err := s.AppendLoginAttempt(ctx, "ghost", now.Add(-5*time.Minute), false); err != nil {
		t.Fatalf("AppendLoginAttempt failed: %v", err)
	}
	if err := s.AppendLoginAttempt(ctx, "ghost", now.Add(-1*time.Minute), false); err != nil {
		t.Fatalf("AppendLoginAttempt failed: %v", err)
	}
	if err := s.AppendLoginAttempt(ctx, "ghost", now, true); err != nil {
		t.Fatalf("AppendLoginAttempt failed: %v", err)
	}

	// Only failures inside the window count
	n, err := s.CountRecentFailures(ctx, "ghost", now.Add(-15*time.Minute))
	if err != nil {
		t.Fatalf("CountRecentFailures failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 recent failures, got %d", n)
	}

	at, ok, err := s.MostRecentFailureTime(ctx, "ghost")
	if err != nil {
		t.Fatalf("MostRecentFailureTime failed: %v", err)
	}
	if !ok {
		t.Fatal("expected a most recent failure")
	}
	if diff := at.Sub(now.Add(-1 * time.Minute)); diff > time.Second || diff < -time.Second {
		t.Errorf("most recent failure time off by %v", diff)
	}

	// Clearing erases failures but not the success record
	if err := s.ClearFailures(ctx, "ghost"); err != nil {
		t.Fatalf("ClearFailures failed: %v", err)
	}
	n, err = s.CountRecentFailures(ctx, "ghost", now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("CountRecentFailures failed: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 failures after clear, got %d", n)
	}
	if _, ok, err := s.MostRecentFailureTime(ctx, "ghost"); err != nil || ok {
		t.Errorf("expected no failure time after clear, got ok=%v err=%v", ok, err)
	}
}
