package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/forest6511/passctl/internal/config"
	"github.com/forest6511/passctl/pkg/store"
	"github.com/forest6511/passctl/pkg/vault"
)

var (
	cfg *config.Config
	st  *store.Store
	svc *vault.Service
)

var rootCmd = &cobra.Command{
	Use:   "passctl",
	Short: "passctl is a multi-account credential vault",
	Long: `A local credential vault built with Go.

Each account is protected by its own master password. Secrets are
encrypted individually under keys derived fresh from the master password,
so the vault file alone reveals nothing.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	// PersistentPreRunE runs before all subcommands and opens the vault.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		st, err = store.Open(cfg.VaultPath)
		if err != nil {
			return err
		}

		svc = vault.NewService(st, vault.Options{
			MaxAttempts:   cfg.Lockout.MaxAttempts,
			LockoutWindow: cfg.Lockout.Window(),
		})
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if st != nil {
			st.Close()
		}
	},
}

func init() {
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(rmAccountCmd)
	rootCmd.AddCommand(importCmd)
}

// friendlyError rewrites engine errors for display. Authentication
// failures for unknown accounts and wrong passwords read identically.
func friendlyError(err error) error {
	var locked *vault.LockedError
	switch {
	case errors.As(err, &locked):
		return fmt.Errorf("account is temporarily locked, retry in %d minute(s)", locked.Minutes())
	case errors.Is(err, vault.ErrAuthenticationFailed):
		return errors.New("invalid master password or unknown account")
	case errors.Is(err, store.ErrDuplicateAccount):
		return errors.New("account already exists")
	case errors.Is(err, store.ErrDuplicateLabel):
		return errors.New("label already exists for this account")
	case errors.Is(err, store.ErrSecretNotFound):
		return errors.New("label not found")
	case errors.Is(err, store.ErrAccountNotFound):
		return errors.New("account not found")
	default:
		return err
	}
}

// warnReuse prints an advisory when other labels protect the same value.
func warnReuse(labels []string) {
	for _, label := range labels {
		fmt.Fprintf(os.Stderr, "warning: this value is already used by label %q\n", label)
	}
}
