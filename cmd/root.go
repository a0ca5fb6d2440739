package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/diligence-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "diligence-cli",
	Short: "Automated due-diligence pipeline for startup pitch decks",
	Long:  "Extracts claims from a pitch deck, plans verification tasks, gathers web evidence, validates each claim, and produces an investment recommendation.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true

	if err := rootCmd.Execute(); err != nil {
		// Declining a confirmation prompt is a clean exit, not a failure.
		if errors.Is(err, errCanceled) {
			fmt.Println("Cancelled.")
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
