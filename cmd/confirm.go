package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

// errCanceled signals that the user declined a confirmation prompt.
// main treats it as a clean exit.
var errCanceled = eris.New("cancelled by user")

var skipConfirm bool

func init() {
	rootCmd.PersistentFlags().BoolVarP(&skipConfirm, "yes", "y", false, "skip cost confirmation prompts")
}

// confirmCost prints the estimate and asks before spending money.
func confirmCost(cmd *cobra.Command, what string, estimateUSD float64) error {
	fmt.Printf("Estimated cost for %s: $%.2f\n", what, estimateUSD)
	if skipConfirm {
		return nil
	}

	fmt.Print("Proceed? (y/n): ")
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return errCanceled
	}
	if strings.ToLower(strings.TrimSpace(line)) != "y" {
		return errCanceled
	}
	return nil
}
