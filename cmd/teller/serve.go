package main

import (
	"github.com/aretw0/teller/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the chat HTTP API",
	Long: `Starts the Teller engine behind a JSON API over HTTP, with Prometheus
metrics on /metrics. Idle sessions are evicted in the background.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		app, err := cli.Build(sigCtx, *cfg)
		if err != nil {
			return err
		}
		defer app.Close()

		if err := cli.Serve(sigCtx, app); err != nil {
			return err
		}
		if sig := sigCtx.Signal(); sig != nil {
			app.Logger.Info("Stopped by signal", "signal", sig.String())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "", "Address to listen on (overrides server.addr)")
}
