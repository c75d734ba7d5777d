package main

import (
	"os"
	"strings"

	"github.com/aretw0/teller"
	"github.com/aretw0/teller/internal/cli"
	"github.com/aretw0/teller/internal/presentation/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the assistant in the terminal",
	Long: `Starts an interactive conversation. Type '/reset' to start over,
'/context' to show the operation in progress and 'q' to quit.

Without a terminal on stdin, messages are read line by line and replies are
printed as plain text.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetInt64("user")
		sessionID, _ := cmd.Flags().GetString("session")

		app, err := buildApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		opts := cli.ChatOptions{
			SessionID: sessionID,
			UserID:    userID,
			In:        os.Stdin,
			Out:       os.Stdout,
			Quiet:     true,
		}
		if fd := int(os.Stdout.Fd()); term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(fd) {
			width, _, err := term.GetSize(fd)
			if err != nil {
				width = 80
			}
			tui.PrintBanner(os.Stdout, strings.TrimSpace(teller.Version))
			opts.Render = tui.NewRenderer(width - 4)
			opts.Quiet = false
		}

		return cli.RunChat(sigCtx, app.Engine, opts)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().Int64P("user", "u", 0, "Authenticated customer id (0 = anonymous)")
	chatCmd.Flags().StringP("session", "s", "", "Session id (default: one per customer)")
}
