package vault

import (
	"context"
	"errors"

	"github.com/forest6511/passctl/pkg/store"
)

// ImportStatus classifies the outcome of one imported item.
type ImportStatus int

const (
	// ImportAdded means the item was sealed and stored.
	ImportAdded ImportStatus = iota
	// ImportSkippedDuplicate means the label already existed.
	ImportSkippedDuplicate
	// ImportFailed means the item failed for another reason; Err is set.
	ImportFailed
)

// String returns a human-readable status name.
func (s ImportStatus) String() string {
	switch s {
	case ImportAdded:
		return "added"
	case ImportSkippedDuplicate:
		return "skipped (duplicate)"
	case ImportFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ImportItem is one (label, plaintext) pair fed by a bulk-import
// collaborator.
type ImportItem struct {
	Label string
	Value []byte
}

// ImportOutcome reports the per-item result of a bulk import.
type ImportOutcome struct {
	Label  string
	Status ImportStatus
	Err    error
	Reused []string
}

// ImportSecrets authenticates once and then adds each item as an
// independent attempt. Per-item failures are isolated: a duplicate label
// or a bad item never aborts the batch. The outcomes are returned in
// input order for the caller to display.
func (s *Service) ImportSecrets(ctx context.Context, username, masterPassword string, items []ImportItem) ([]ImportOutcome, error) {
	if err := s.Authenticate(ctx, username, masterPassword); err != nil {
		return nil, err
	}

	outcomes := make([]ImportOutcome, 0, len(items))
	for _, item := range items {
		outcome := ImportOutcome{Label: item.Label}

		reused, err := s.addSecret(ctx, username, item.Label, item.Value, masterPassword)
		switch {
		case errors.Is(err, store.ErrDuplicateLabel):
			outcome.Status = ImportSkippedDuplicate
		case err != nil:
			outcome.Status = ImportFailed
			outcome.Err = err
		default:
			outcome.Status = ImportAdded
			outcome.Reused = reused
		}

		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}
