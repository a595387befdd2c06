package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/forest6511/passctl/pkg/importer"
	"github.com/forest6511/passctl/pkg/vault"
)

var importFormat string

func init() {
	importCmd.Flags().StringVarP(&importFormat, "format", "f", "", "Input format: csv, txt (detected from extension if not specified)")
}

var importCmd = &cobra.Command{
	Use:   "import <username> <file>",
	Short: "Bulk import secrets from a CSV or TXT file",
	Long: `Import secrets from a file into an account after a single
authentication. Each line is an independent attempt: duplicates are
skipped and bad lines reported, but one bad line never aborts the batch.

CSV files use "label,password" rows (optional header). TXT files use
"label:password" or "label password" lines; # starts a comment.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		username, filePath := args[0], args[1]

		format := importer.Format(importFormat)
		if importFormat == "" {
			var err error
			format, err = importer.DetectFormat(filePath)
			if err != nil {
				return err
			}
		}

		data, err := os.ReadFile(filePath)
		if err != nil {
			return fmt.Errorf("failed to read import file: %w", err)
		}

		parsed, err := importer.Parse(data, format)
		if err != nil {
			return err
		}
		for _, skipped := range parsed.Skipped {
			fmt.Fprintf(os.Stderr, "warning: line %d skipped: %s\n", skipped.Line, skipped.Reason)
		}
		if len(parsed.Entries) == 0 {
			return fmt.Errorf("no importable entries in %s", filePath)
		}

		password, err := promptMasterPassword(username)
		if err != nil {
			return err
		}

		items := make([]vault.ImportItem, 0, len(parsed.Entries))
		for _, entry := range parsed.Entries {
			items = append(items, vault.ImportItem{Label: entry.Label, Value: entry.Value})
		}

		outcomes, err := svc.ImportSecrets(cmd.Context(), username, password, items)
		if err != nil {
			return friendlyError(err)
		}

		added := 0
		for _, outcome := range outcomes {
			switch outcome.Status {
			case vault.ImportAdded:
				added++
				fmt.Printf("  %s: added\n", outcome.Label)
				warnReuse(outcome.Reused)
			case vault.ImportSkippedDuplicate:
				fmt.Printf("  %s: skipped (label exists)\n", outcome.Label)
			case vault.ImportFailed:
				fmt.Printf("  %s: failed: %v\n", outcome.Label, friendlyError(outcome.Err))
			}
		}
		fmt.Printf("Imported %d of %d secret(s).\n", added, len(outcomes))
		return nil
	},
}
