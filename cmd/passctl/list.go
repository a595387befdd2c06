package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/forest6511/passctl/internal/cli"
)

var listPattern string

func init() {
	listCmd.Flags().StringVarP(&listPattern, "pattern", "p", "", "Filter labels by glob pattern (e.g. 'email*')")
}

var listCmd = &cobra.Command{
	Use:   "list [username]",
	Short: "List accounts and their secret labels",
	Long: `List every account with its secret labels, or a single account's
labels. Labels are stored in the clear; values stay sealed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		accounts, err := svc.ListAccounts(cmd.Context())
		if err != nil {
			return friendlyError(err)
		}

		if len(args) == 1 {
			username := args[0]
			for _, account := range accounts {
				if account.Username != username {
					continue
				}
				labels, err := cli.FilterLabels(listPattern, account.Labels)
				if err != nil {
					return err
				}
				for _, label := range labels {
					fmt.Println(label)
				}
				return nil
			}
			return fmt.Errorf("account not found")
		}

		for _, account := range accounts {
			labels, err := cli.FilterLabels(listPattern, account.Labels)
			if err != nil {
				return err
			}
			fmt.Printf("%s (%d secret(s))\n", account.Username, len(labels))
			for _, label := range labels {
				fmt.Printf("  %s\n", label)
			}
		}
		return nil
	},
}
