package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forest6511/passctl/pkg/security"
)

var registerCmd = &cobra.Command{
	Use:   "register <username>",
	Short: "Register a new account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		username := args[0]

		password, err := promptMasterPassword(username)
		if err != nil {
			return err
		}
		confirm, err := promptPassword("Confirm master password: ")
		if err != nil {
			return err
		}
		if password != confirm {
			return errors.New("passwords do not match")
		}

		// Strength check is advisory except for the hard requirements
		result := security.ValidateMasterPassword(password)
		if !result.Valid {
			return fmt.Errorf("password validation failed: %s", result.Warnings[0])
		}
		fmt.Printf("Password strength: %s\n", result.Strength)
		for _, warning := range result.Warnings {
			fmt.Printf("Warning: %s\n", warning)
		}

		if err := svc.Register(cmd.Context(), username, password); err != nil {
			return friendlyError(err)
		}

		fmt.Printf("Account %q registered.\n", username)
		return nil
	},
}
