package main

import (
	"fmt"

	"github.com/aretw0/teller/internal/runtime"
	"github.com/aretw0/teller/pkg/domain"
	"github.com/spf13/cobra"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Simulate a fixed-rate loan",
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, _ := cmd.Flags().GetFloat64("amount")
		years, _ := cmd.Flags().GetInt("years")
		rate, _ := cmd.Flags().GetFloat64("rate")

		if !cmd.Flags().Changed("rate") {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			rate = cfg.Bank.AnnualRate
		}

		sim, err := domain.SimulateLoan(amount, years, rate)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Montant      : %s\n", runtime.FormatTND(sim.Amount))
		fmt.Fprintf(out, "Durée        : %d ans (%d mensualités)\n", sim.Years, sim.Years*12)
		fmt.Fprintf(out, "Taux annuel  : %.2f %%\n", sim.AnnualRate*100)
		fmt.Fprintf(out, "Mensualité   : %s\n", runtime.FormatTND(sim.MonthlyPayment))
		fmt.Fprintf(out, "Coût total   : %s\n", runtime.FormatTND(sim.TotalPayment))
		fmt.Fprintf(out, "Intérêts     : %s\n", runtime.FormatTND(sim.TotalInterest))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(simulateCmd)
	simulateCmd.Flags().Float64("amount", 0, "Principal in TND")
	simulateCmd.Flags().Int("years", 0, "Duration in years (1-30)")
	simulateCmd.Flags().Float64("rate", domain.DefaultAnnualRate, "Annual rate, e.g. 0.07 (default: bank.annual_rate)")
	_ = simulateCmd.MarkFlagRequired("amount")
	_ = simulateCmd.MarkFlagRequired("years")
}
