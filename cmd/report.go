package main

import (
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/diligence-cli/internal/model"
	"github.com/sells-group/diligence-cli/internal/report"
	"github.com/sells-group/diligence-cli/internal/store"
)

var reportJSON bool

var reportCmd = &cobra.Command{
	Use:   "report <company>",
	Short: "Aggregate validation results into the final report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		company := args[0]

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		var vr model.ValidationResults
		if err := env.store.LoadArtifact(ctx, company, store.KindValidationResults, &vr); err != nil {
			return eris.Wrap(err, "no validation results found, run validate first")
		}

		aggregator := report.New(env.llm, cfg.Anthropic.StrongModel, env.rates, env.tracker)
		rep := aggregator.Build(ctx, company, vr.Results)

		if err := env.store.SaveArtifact(ctx, company, store.KindReport, rep); err != nil {
			return err
		}

		if reportJSON {
			out, err := json.MarshalIndent(rep, "", "  ")
			if err != nil {
				return eris.Wrap(err, "marshal report")
			}
			fmt.Println(string(out))
		} else {
			printReport(rep)
		}

		zap.L().Info("report complete",
			zap.String("company", company),
			zap.String("recommendation", string(rep.Recommendation)),
		)
		return nil
	},
}

func printReport(rep *model.ValidationReport) {
	fmt.Printf("\n%s — %s\n\n", rep.CompanyName, rep.Recommendation)
	fmt.Printf("Claims checked: %d (verified %d, contradicted %d, unverified %d, suspicious %d)\n",
		rep.TotalClaims, rep.VerifiedCount, rep.ContradictedCount, rep.UnverifiedCount, rep.SuspiciousCount)

	if len(rep.CriticalIssues) > 0 {
		fmt.Println("\nCritical issues:")
		for _, issue := range rep.CriticalIssues {
			fmt.Printf("  - [%s/%s] %s: %s\n", issue.Status, issue.Severity, issue.Claim, issue.Reasoning)
		}
	}

	fmt.Printf("\nAssessment: %s\n", rep.OverallAssessment)
	fmt.Printf("Justification: %s\n", rep.Justification)
}

func init() {
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "print the full report as JSON")
	rootCmd.AddCommand(reportCmd)
}
