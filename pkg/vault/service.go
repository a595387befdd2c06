// Package vault orchestrates the credential vault engine: master-password
// authentication with brute-force lockout, envelope encryption of
// per-label secrets, and the persisted store behind both.
//
// Every operation authenticates against the store and re-reads what it
// needs; no account, secret, or derived key is cached across calls.
package vault

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/forest6511/passctl/pkg/crypto"
	"github.com/forest6511/passctl/pkg/security"
	"github.com/forest6511/passctl/pkg/store"
)

// Options tunes the lockout policy of a Service. Zero values select the
// defaults (3 attempts, 15 minute window).
type Options struct {
	MaxAttempts   int
	LockoutWindow time.Duration
}

// Service exposes the vault operations to front ends. It owns no state
// beyond the open storage handle; the store is the single source of
// truth for accounts, secrets, and attempt history.
type Service struct {
	store   *store.Store
	lockout *security.LockoutPolicy
	reuse   *security.ReuseDetector
}

// NewService creates a vault service over an open store.
func NewService(st *store.Store, opts Options) *Service {
	return &Service{
		store:   st,
		lockout: security.NewLockoutPolicy(st, opts.MaxAttempts, opts.LockoutWindow),
		reuse:   security.NewReuseDetector(st),
	}
}

// Register creates a new account with a fresh verifier and salt.
// Returns store.ErrDuplicateAccount if the username is taken.
func (s *Service) Register(ctx context.Context, username, masterPassword string) error {
	if username == "" {
		return ErrEmptyUsername
	}

	verifier, salt, err := crypto.NewVerifier(masterPassword)
	if err != nil {
		return fmt.Errorf("vault: failed to create verifier: %w", err)
	}
	return s.store.CreateAccount(ctx, username, verifier, salt)
}

// Authenticate verifies the master password for a username.
//
// The lockout policy is consulted first: a locked account fails with a
// LockedError without the verifier ever being touched, and without a new
// attempt being recorded. Otherwise the attempt is appended to history
// whether it succeeds or not, including attempts against usernames that
// do not exist, which are indistinguishable from a wrong password in the
// returned error. A success clears the account's failure history.
func (s *Service) Authenticate(ctx context.Context, username, masterPassword string) error {
	locked, remaining, err := s.lockout.CheckLocked(ctx, username)
	if err != nil {
		return fmt.Errorf("vault: failed to check lockout: %w", err)
	}
	if locked {
		return &LockedError{Remaining: remaining}
	}

	ok := false
	account, err := s.store.FindAccount(ctx, username)
	switch {
	case errors.Is(err, store.ErrAccountNotFound):
		// Record the attempt anyway so probing unknown usernames is
		// throttled like everything else.
	case err != nil:
		return err
	default:
		ok, err = crypto.VerifyPassword(masterPassword, account.Salt, account.Verifier)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrVaultCorrupted, err)
		}
	}

	if err := s.store.AppendLoginAttempt(ctx, username, time.Now(), ok); err != nil {
		return err
	}

	if !ok {
		return ErrAuthenticationFailed
	}

	if err := s.store.ClearFailures(ctx, username); err != nil {
		return err
	}
	return nil
}

// AddSecret authenticates, seals the plaintext under a freshly derived
// key, and inserts it under the given label. Returns
// store.ErrDuplicateLabel if the label already exists for the account.
//
// The returned slice names the account's other labels that already protect
// an identical value; it is advisory and may be non-empty on success.
func (s *Service) AddSecret(ctx context.Context, username, label string, plaintext []byte, masterPassword string) ([]string, error) {
	if err := s.Authenticate(ctx, username, masterPassword); err != nil {
		return nil, err
	}
	return s.addSecret(ctx, username, label, plaintext, masterPassword)
}

// addSecret is AddSecret without the authentication step, for callers that
// have already authenticated in the same call chain (bulk import).
func (s *Service) addSecret(ctx context.Context, username, label string, plaintext []byte, masterPassword string) ([]string, error) {
	if label == "" {
		return nil, ErrEmptyLabel
	}

	reused, err := s.reuse.FindReuse(ctx, username, plaintext, masterPassword, "")
	if err != nil {
		return nil, err
	}

	sealed, salt, err := crypto.Seal(plaintext, masterPassword)
	if err != nil {
		return nil, fmt.Errorf("vault: failed to seal secret: %w", err)
	}

	if err := s.store.InsertSecret(ctx, username, label, sealed, salt); err != nil {
		return nil, err
	}
	return reused, nil
}

// UpdateSecret authenticates and replaces the value of an existing label,
// resealing with a fresh salt and key even when the plaintext is
// unchanged. Returns store.ErrSecretNotFound if the label does not exist.
//
// The returned slice names the other labels already protecting the new
// value; the label being updated is excluded from that check.
func (s *Service) UpdateSecret(ctx context.Context, username, label string, plaintext []byte, masterPassword string) ([]string, error) {
	if err := s.Authenticate(ctx, username, masterPassword); err != nil {
		return nil, err
	}
	if label == "" {
		return nil, ErrEmptyLabel
	}

	reused, err := s.reuse.FindReuse(ctx, username, plaintext, masterPassword, label)
	if err != nil {
		return nil, err
	}

	sealed, salt, err := crypto.Seal(plaintext, masterPassword)
	if err != nil {
		return nil, fmt.Errorf("vault: failed to seal secret: %w", err)
	}

	if err := s.store.UpdateSecret(ctx, username, label, sealed, salt); err != nil {
		return nil, err
	}
	return reused, nil
}

// GetSecret authenticates and returns the decrypted value for a label.
// Returns store.ErrSecretNotFound if the label does not exist and
// ErrVaultCorrupted if the stored record cannot be opened.
func (s *Service) GetSecret(ctx context.Context, username, label, masterPassword string) ([]byte, error) {
	if err := s.Authenticate(ctx, username, masterPassword); err != nil {
		return nil, err
	}

	sec, err := s.store.FindSecret(ctx, username, label)
	if err != nil {
		return nil, err
	}

	plaintext, err := crypto.Open(sec.Ciphertext, sec.Salt, masterPassword)
	if err != nil {
		// The password verified against the account, so a failed open
		// means the record itself is bad (tampered, truncated, or sealed
		// under a password that is no longer the account's).
		return nil, fmt.Errorf("%w: %v", ErrVaultCorrupted, err)
	}
	return plaintext, nil
}

// DeleteSecret authenticates and removes one label. Returns
// store.ErrSecretNotFound if the label does not exist.
func (s *Service) DeleteSecret(ctx context.Context, username, label, masterPassword string) error {
	if err := s.Authenticate(ctx, username, masterPassword); err != nil {
		return err
	}
	return s.store.DeleteSecret(ctx, username, label)
}

// DeleteAccount authenticates and removes the account, all its secrets,
// and its attempt history.
func (s *Service) DeleteAccount(ctx context.Context, username, masterPassword string) error {
	if err := s.Authenticate(ctx, username, masterPassword); err != nil {
		return err
	}
	return s.store.DeleteAccount(ctx, username)
}

// ListAccounts returns every account with its secret labels. Labels are
// not sensitive on their own; values stay sealed.
func (s *Service) ListAccounts(ctx context.Context) ([]*store.AccountLabels, error) {
	return s.store.ListAccountsWithLabels(ctx)
}

// FindReuse authenticates and returns the labels whose stored value equals
// candidate, excluding excludeLabel when non-empty.
func (s *Service) FindReuse(ctx context.Context, username string, candidate []byte, masterPassword, excludeLabel string) ([]string, error) {
	if err := s.Authenticate(ctx, username, masterPassword); err != nil {
		return nil, err
	}
	return s.reuse.FindReuse(ctx, username, candidate, masterPassword, excludeLabel)
}
