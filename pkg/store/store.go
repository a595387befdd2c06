// Package store provides durable persistence for the credential vault:
// accounts, sealed secrets, and login-attempt history in a single SQLite
// database. The store is the single source of truth; callers never cache
// account or secret rows across operations.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sqlite "modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"
)

// Constants
const (
	DBFileName = "vault.db"
	FileMode   = 0600 // Owner read/write only
	DirMode    = 0700 // Owner read/write/execute only

	// MinDiskSpaceBytes is the minimum free space required before writes.
	MinDiskSpaceBytes = 10 * 1024 * 1024
)

// Errors
var (
	ErrDuplicateAccount   = errors.New("store: account already exists")
	ErrDuplicateLabel     = errors.New("store: label already exists for this account")
	ErrAccountNotFound    = errors.New("store: account not found")
	ErrSecretNotFound     = errors.New("store: secret not found")
	ErrStorageUnavailable = errors.New("store: storage unavailable")
	ErrInsufficientDisk   = errors.New("store: insufficient disk space")
)

// Account is one registered vault identity. The verifier is a one-way hash
// of the master password and is never stored in reversible form.
type Account struct {
	ID        int64
	Username  string
	Verifier  []byte
	Salt      []byte
	CreatedAt time.Time
}

// Secret is one sealed credential owned by exactly one account. The
// ciphertext blob and per-secret salt are opaque to the store.
type Secret struct {
	ID         int64
	AccountID  int64
	Label      string
	Ciphertext []byte
	Salt       []byte
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// AccountLabels pairs a username with its secret labels for listing.
type AccountLabels struct {
	Username string
	Labels   []string
}

// DiskSpaceInfo contains disk usage information for the vault directory.
type DiskSpaceInfo struct {
	Total     uint64
	Free      uint64
	Available uint64
	UsedPct   int
}

// Store wraps the SQLite database holding all persisted vault state.
type Store struct {
	path string
	db   *sql.DB
}

// Open opens (creating if necessary) the vault database at the given
// directory and ensures the schema exists. The returned handle is owned by
// the caller; there is no process-wide connection.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, DirMode); err != nil {
		return nil, fmt.Errorf("%w: failed to create vault directory: %v", ErrStorageUnavailable, err)
	}

	dbPath := filepath.Join(dir, DBFileName)
	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %v", ErrStorageUnavailable, err)
	}

	// Single-connection mode avoids "database is locked" errors; appropriate
	// for CLI usage where concurrent access is limited.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{path: dir, db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to create tables: %v", ErrStorageUnavailable, err)
	}

	if err := os.Chmod(dbPath, FileMode); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: failed to set database permissions: %w", err)
	}

	return s, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the vault directory path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) createTables() error {
	// Timestamps are stored as Unix nanoseconds: SQLite has no native
	// timestamp type, and integer epochs keep range comparisons exact
	// across drivers.
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS accounts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT UNIQUE NOT NULL,
			verifier BLOB NOT NULL,
			salt BLOB NOT NULL,
			created_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		CREATE TABLE IF NOT EXISTS secrets (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			account_id INTEGER NOT NULL,
			label TEXT NOT NULL,
			ciphertext BLOB NOT NULL,
			salt BLOB NOT NULL,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL,
			FOREIGN KEY (account_id) REFERENCES accounts (id) ON DELETE CASCADE,
			UNIQUE(account_id, label)
		)
	`)
	if err != nil {
		return err
	}

	// Attempts are keyed by username rather than account id so attempts
	// against unknown usernames are recorded too.
	_, err = s.db.Exec(`
		CREATE TABLE IF NOT EXISTS login_attempts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL,
			attempted_at INTEGER NOT NULL,
			success BOOLEAN NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_login_attempts_username
		ON login_attempts (username, attempted_at)
	`)
	return err
}

// isConstraintViolation reports whether err is a SQLite uniqueness violation.
func isConstraintViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		code := se.Code()
		return code == sqlitelib.SQLITE_CONSTRAINT_UNIQUE ||
			code == sqlitelib.SQLITE_CONSTRAINT_PRIMARYKEY ||
			code == sqlitelib.SQLITE_CONSTRAINT
	}
	return false
}

// CreateAccount inserts a new account. Returns ErrDuplicateAccount if the
// username is already taken; an existing account is never overwritten.
func (s *Store) CreateAccount(ctx context.Context, username string, verifier, salt []byte) error {
	if err := s.checkDiskSpaceForWrite(len(username) + len(verifier) + len(salt)); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (username, verifier, salt, created_at) VALUES (?, ?, ?, ?)`,
		username, verifier, salt, time.Now().UnixNano())
	if err != nil {
		if isConstraintViolation(err) {
			return ErrDuplicateAccount
		}
		return fmt.Errorf("store: failed to create account: %w", err)
	}
	return nil
}

// FindAccount returns the account for the given username, or
// ErrAccountNotFound.
func (s *Store) FindAccount(ctx context.Context, username string) (*Account, error) {
	a := &Account{}
	var createdAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, verifier, salt, created_at FROM accounts WHERE username = ?`,
		username).Scan(&a.ID, &a.Username, &a.Verifier, &a.Salt, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("store: failed to find account: %w", err)
	}
	a.CreatedAt = time.Unix(0, createdAt)
	return a, nil
}

// DeleteAccount removes the account, its secrets (via foreign-key cascade),
// and its attempt history. Returns ErrAccountNotFound if the username does
// not exist.
func (s *Store) DeleteAccount(ctx context.Context, username string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM accounts WHERE username = ?`, username)
	if err != nil {
		return fmt.Errorf("store: failed to delete account: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: failed to delete account: %w", err)
	}
	if n == 0 {
		return ErrAccountNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM login_attempts WHERE username = ?`, username); err != nil {
		return fmt.Errorf("store: failed to delete attempt history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: failed to commit transaction: %w", err)
	}
	return nil
}

// InsertSecret stores a new sealed secret. Returns ErrDuplicateLabel if the
// (account, label) pair already exists and ErrAccountNotFound if the owner
// does not.
func (s *Store) InsertSecret(ctx context.Context, username, label string, ciphertext, salt []byte) error {
	if err := s.checkDiskSpaceForWrite(len(label) + len(ciphertext) + len(salt)); err != nil {
		return err
	}

	account, err := s.FindAccount(ctx, username)
	if err != nil {
		return err
	}

	now := time.Now().UnixNano()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO secrets (account_id, label, ciphertext, salt, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		account.ID, label, ciphertext, salt, now, now)
	if err != nil {
		if isConstraintViolation(err) {
			return ErrDuplicateLabel
		}
		return fmt.Errorf("store: failed to insert secret: %w", err)
	}
	return nil
}

// UpdateSecret replaces the ciphertext and salt of an existing secret in a
// single statement: either the row is fully replaced or left untouched.
// Returns ErrSecretNotFound if the (account, label) pair does not exist.
func (s *Store) UpdateSecret(ctx context.Context, username, label string, ciphertext, salt []byte) error {
	if err := s.checkDiskSpaceForWrite(len(label) + len(ciphertext) + len(salt)); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE secrets SET ciphertext = ?, salt = ?, updated_at = ?
		 WHERE label = ? AND account_id = (SELECT id FROM accounts WHERE username = ?)`,
		ciphertext, salt, time.Now().UnixNano(), label, username)
	if err != nil {
		return fmt.Errorf("store: failed to update secret: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: failed to update secret: %w", err)
	}
	if n == 0 {
		return ErrSecretNotFound
	}
	return nil
}

// FindSecret returns the sealed secret for (username, label), or
// ErrSecretNotFound.
func (s *Store) FindSecret(ctx context.Context, username, label string) (*Secret, error) {
	sec := &Secret{}
	var createdAt, updatedAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT s.id, s.account_id, s.label, s.ciphertext, s.salt, s.created_at, s.updated_at
		 FROM secrets s JOIN accounts a ON s.account_id = a.id
		 WHERE a.username = ? AND s.label = ?`,
		username, label).Scan(&sec.ID, &sec.AccountID, &sec.Label, &sec.Ciphertext, &sec.Salt, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSecretNotFound
		}
		return nil, fmt.Errorf("store: failed to find secret: %w", err)
	}
	sec.CreatedAt = time.Unix(0, createdAt)
	sec.UpdatedAt = time.Unix(0, updatedAt)
	return sec, nil
}

// DeleteSecret removes one secret. Returns ErrSecretNotFound if the
// (account, label) pair does not exist.
func (s *Store) DeleteSecret(ctx context.Context, username, label string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM secrets
		 WHERE label = ? AND account_id = (SELECT id FROM accounts WHERE username = ?)`,
		label, username)
	if err != nil {
		return fmt.Errorf("store: failed to delete secret: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: failed to delete secret: %w", err)
	}
	if n == 0 {
		return ErrSecretNotFound
	}
	return nil
}

// ListSecrets returns all sealed secrets for an account ordered by label.
func (s *Store) ListSecrets(ctx context.Context, username string) ([]*Secret, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT s.id, s.account_id, s.label, s.ciphertext, s.salt, s.created_at, s.updated_at
		 FROM secrets s JOIN accounts a ON s.account_id = a.id
		 WHERE a.username = ?
		 ORDER BY s.label`,
		username)
	if err != nil {
		return nil, fmt.Errorf("store: failed to list secrets: %w", err)
	}
	defer rows.Close()

	var secrets []*Secret
	for rows.Next() {
		sec := &Secret{}
		var createdAt, updatedAt int64
		if err := rows.Scan(&sec.ID, &sec.AccountID, &sec.Label, &sec.Ciphertext, &sec.Salt, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("store: failed to scan secret: %w", err)
		}
		sec.CreatedAt = time.Unix(0, createdAt)
		sec.UpdatedAt = time.Unix(0, updatedAt)
		secrets = append(secrets, sec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: failed to list secrets: %w", err)
	}
	return secrets, nil
}

// ListAccountsWithLabels returns every account with its secret labels,
// ordered by username then label. Accounts with no secrets are included.
func (s *Store) ListAccountsWithLabels(ctx context.Context) ([]*AccountLabels, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT a.username, s.label
		 FROM accounts a LEFT JOIN secrets s ON s.account_id = a.id
		 ORDER BY a.username, s.label`)
	if err != nil {
		return nil, fmt.Errorf("store: failed to list accounts: %w", err)
	}
	defer rows.Close()

	var result []*AccountLabels
	byName := make(map[string]*AccountLabels)
	for rows.Next() {
		var username string
		var label sql.NullString
		if err := rows.Scan(&username, &label); err != nil {
			return nil, fmt.Errorf("store: failed to scan account: %w", err)
		}
		al, ok := byName[username]
		if !ok {
			al = &AccountLabels{Username: username}
			byName[username] = al
			result = append(result, al)
		}
		if label.Valid {
			al.Labels = append(al.Labels, label.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: failed to list accounts: %w", err)
	}
	return result, nil
}

// AppendLoginAttempt records one authentication attempt. Attempts are
// append-only and recorded for valid and unknown usernames alike.
func (s *Store) AppendLoginAttempt(ctx context.Context, username string, at time.Time, success bool) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO login_attempts (username, attempted_at, success) VALUES (?, ?, ?)`,
		username, at.UnixNano(), success)
	if err != nil {
		return fmt.Errorf("store: failed to append login attempt: %w", err)
	}
	return nil
}

// CountRecentFailures returns the number of failed attempts for a username
// at or after the given time.
func (s *Store) CountRecentFailures(ctx context.Context, username string, since time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM login_attempts
		 WHERE username = ? AND success = 0 AND attempted_at >= ?`,
		username, since.UnixNano()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("store: failed to count failures: %w", err)
	}
	return n, nil
}

// MostRecentFailureTime returns the timestamp of the newest failed attempt
// for a username. The boolean is false when no failures are recorded.
func (s *Store) MostRecentFailureTime(ctx context.Context, username string) (time.Time, bool, error) {
	var at int64
	err := s.db.QueryRowContext(ctx,
		`SELECT attempted_at FROM login_attempts
		 WHERE username = ? AND success = 0
		 ORDER BY attempted_at DESC LIMIT 1`,
		username).Scan(&at)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("store: failed to query failures: %w", err)
	}
	return time.Unix(0, at), true, nil
}

// ClearFailures erases the failed-attempt history for a username. Called
// after a successful authentication.
func (s *Store) ClearFailures(ctx context.Context, username string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM login_attempts WHERE username = ? AND success = 0`,
		username)
	if err != nil {
		return fmt.Errorf("store: failed to clear failures: %w", err)
	}
	return nil
}

// checkDiskSpaceForWrite verifies sufficient disk space before write
// operations. Advisory: a stat failure does not block the write.
func (s *Store) checkDiskSpaceForWrite(dataSize int) error {
	info, err := s.CheckDiskSpace()
	if err != nil {
		return nil
	}
	if info.Available < MinDiskSpaceBytes+uint64(dataSize) {
		return fmt.Errorf("%w: %d bytes available", ErrInsufficientDisk, info.Available)
	}
	return nil
}
