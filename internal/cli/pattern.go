// Package cli provides shared utilities for CLI commands.
package cli

import (
	"fmt"
	"path/filepath"
	"strings"
)

// FilterLabels returns the labels matching a glob pattern. If the pattern
// contains glob characters (*?[), it performs glob matching; otherwise it
// performs exact matching. An empty pattern matches everything.
func FilterLabels(pattern string, labels []string) ([]string, error) {
	if pattern == "" {
		return labels, nil
	}

	// Validate pattern syntax
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid pattern '%s': %w", pattern, err)
	}

	if !strings.ContainsAny(pattern, "*?[") {
		for _, label := range labels {
			if label == pattern {
				return []string{pattern}, nil
			}
		}
		return nil, nil
	}

	var matches []string
	for _, label := range labels {
		matched, err := filepath.Match(pattern, label)
		if err != nil {
			return nil, err
		}
		if matched {
			matches = append(matches, label)
		}
	}
	return matches, nil
}
