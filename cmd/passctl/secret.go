package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forest6511/passctl/pkg/crypto"
)

// readSecretValue returns the value argument if present, otherwise prompts
// for it without echo.
func readSecretValue(args []string) ([]byte, error) {
	if len(args) >= 3 {
		return []byte(args[2]), nil
	}
	value, err := promptPassword("Enter secret value: ")
	if err != nil {
		return nil, err
	}
	return []byte(value), nil
}

var addCmd = &cobra.Command{
	Use:   "add <username> <label> [value]",
	Short: "Add a new secret",
	Long: `Add a new secret under a label. The value may be passed as an argument
or entered interactively (preferred: arguments end up in shell history).`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		username, label := args[0], args[1]

		value, err := readSecretValue(args)
		if err != nil {
			return err
		}
		password, err := promptMasterPassword(username)
		if err != nil {
			return err
		}

		reused, err := svc.AddSecret(cmd.Context(), username, label, value, password)
		if err != nil {
			return friendlyError(err)
		}
		warnReuse(reused)

		fmt.Printf("Secret %q saved.\n", label)
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <username> <label>",
	Short: "Show a secret value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		username, label := args[0], args[1]

		password, err := promptMasterPassword(username)
		if err != nil {
			return err
		}

		value, err := svc.GetSecret(cmd.Context(), username, label, password)
		if err != nil {
			return friendlyError(err)
		}
		defer crypto.SecureWipe(value)

		fmt.Printf("%s\n", value)
		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <username> <label> [value]",
	Short: "Replace the value of an existing secret",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		username, label := args[0], args[1]

		value, err := readSecretValue(args)
		if err != nil {
			return err
		}
		password, err := promptMasterPassword(username)
		if err != nil {
			return err
		}

		reused, err := svc.UpdateSecret(cmd.Context(), username, label, value, password)
		if err != nil {
			return friendlyError(err)
		}
		warnReuse(reused)

		fmt.Printf("Secret %q updated.\n", label)
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <username> <label>",
	Short: "Delete a secret",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		username, label := args[0], args[1]

		password, err := promptMasterPassword(username)
		if err != nil {
			return err
		}

		if err := svc.DeleteSecret(cmd.Context(), username, label, password); err != nil {
			return friendlyError(err)
		}

		fmt.Printf("Secret %q deleted.\n", label)
		return nil
	},
}

var rmAccountCmd = &cobra.Command{
	Use:   "rm-account <username>",
	Short: "Delete an account and all of its secrets",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		username := args[0]

		ok, err := promptConfirm(fmt.Sprintf("Delete account %q and all of its secrets?", username))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Aborted.")
			return nil
		}

		password, err := promptMasterPassword(username)
		if err != nil {
			return err
		}

		if err := svc.DeleteAccount(cmd.Context(), username, password); err != nil {
			return friendlyError(err)
		}

		fmt.Printf("Account %q deleted.\n", username)
		return nil
	},
}
