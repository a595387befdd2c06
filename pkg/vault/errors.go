package vault

import (
	"errors"
	"fmt"
	"time"
)

// Errors
var (
	// ErrAuthenticationFailed covers both a wrong master password and a
	// nonexistent account. Front ends must report the two identically to
	// avoid username enumeration.
	ErrAuthenticationFailed = errors.New("vault: invalid master password or unknown account")

	// ErrLocked indicates authentication is blocked by the lockout policy.
	// Returned wrapped in a LockedError carrying the remaining time.
	ErrLocked = errors.New("vault: account is locked")

	// ErrEmptyUsername indicates a registration with an empty username.
	ErrEmptyUsername = errors.New("vault: username must not be empty")

	// ErrEmptyLabel indicates a secret operation with an empty label.
	ErrEmptyLabel = errors.New("vault: label must not be empty")

	// ErrVaultCorrupted indicates storage returned a malformed salt or
	// ciphertext. The affected record is unrecoverable; the operation
	// fails without crashing the process.
	ErrVaultCorrupted = errors.New("vault: stored record is corrupted")
)

// LockedError reports an authentication attempt against a locked account.
type LockedError struct {
	Remaining time.Duration
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("vault: account is locked, retry in %d minute(s)", e.Minutes())
}

// Is makes errors.Is(err, ErrLocked) match.
func (e *LockedError) Is(target error) bool {
	return target == ErrLocked
}

// Minutes returns the remaining lockout time in whole minutes, rounded up
// so a nearly expired lock still reports at least one minute.
func (e *LockedError) Minutes() int {
	m := int((e.Remaining + time.Minute - 1) / time.Minute)
	if m < 1 {
		m = 1
	}
	return m
}
