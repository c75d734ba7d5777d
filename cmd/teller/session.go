package main

import (
	"github.com/aretw0/teller/internal/cli"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage stored conversations",
	Long:  `List, inspect, and remove the conversations held by the configured session store.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all active sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()
		return cli.ListSessions(cmd.Context(), cmd.OutOrStdout(), app.Store)
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Inspect the state of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reveal, _ := cmd.Flags().GetBool("reveal")
		app, err := buildApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()
		return cli.InspectSession(cmd.Context(), cmd.OutOrStdout(), app.Store, args[0], reveal)
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <session-id>...",
	Short: "Remove one or more sessions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()
		return cli.RemoveSessions(cmd.Context(), cmd.OutOrStdout(), app.Store, args...)
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionRmCmd)

	sessionInspectCmd.Flags().Bool("reveal", false, "Show amounts and payees instead of masking them")
}
