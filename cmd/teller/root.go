package main

import (
	"fmt"
	"os"

	"github.com/aretw0/teller/internal/cli"
	"github.com/aretw0/teller/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "teller",
	Short: "Teller is a French-speaking banking assistant",
	Long: `Teller understands customer messages in French, fills in the details of
banking operations over several turns and executes them once confirmed.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Configuration file (default: teller.yaml in ., $HOME/.teller or /etc/teller)")
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

// buildApp loads the configuration and wires the engine.
func buildApp(cmd *cobra.Command) (*cli.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return cli.Build(cmd.Context(), *cfg)
}
