package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/diligence-cli/internal/match"
	"github.com/sells-group/diligence-cli/internal/model"
	"github.com/sells-group/diligence-cli/internal/store"
	"github.com/sells-group/diligence-cli/internal/validate"
)

var validateCmd = &cobra.Command{
	Use:   "validate <company>",
	Short: "Match evidence to claims and validate each one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		company := args[0]

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		var facts model.DeckFacts
		if err := env.store.LoadArtifact(ctx, company, store.KindDeckFacts, &facts); err != nil {
			return eris.Wrap(err, "no deck facts found, run analyze first")
		}
		var results model.ResearchResults
		if err := env.store.LoadArtifact(ctx, company, store.KindResearchResults, &results); err != nil {
			return eris.Wrap(err, "no research results found, run research first")
		}

		vp := match.BuildValidationPlan(&facts, results.Results, match.NewKeywordMatcher())
		if vp.TotalTasks == 0 {
			return eris.Errorf("nothing to validate for %s: no claims or founders in deck facts", company)
		}
		if err := env.store.SaveArtifact(ctx, company, store.KindValidationPlan, vp); err != nil {
			return err
		}

		estimate := float64(vp.TotalTasks) * env.rates.ValidationMarginal
		if err := confirmCost(cmd, fmt.Sprintf("%d claim validations", vp.TotalTasks), estimate); err != nil {
			return err
		}

		validator := validate.New(env.llm, cfg.Anthropic.FastModel, env.rates, env.tracker)
		vr := validator.Run(ctx, vp.Tasks, cfg.Validation.MaxConcurrent)

		artifact := &model.ValidationResults{CompanyName: company, Results: vr}
		if err := env.store.SaveArtifact(ctx, company, store.KindValidationResults, artifact); err != nil {
			return err
		}

		for _, res := range vr {
			fmt.Printf("  %s [%s/%s] %s\n", res.ValidationID, res.Status, res.Severity, res.Claim)
		}
		fmt.Printf("Validation complete: %d claims, spent $%.4f\n", len(vr), env.tracker.Total())

		zap.L().Info("validate complete",
			zap.String("company", company),
			zap.Int("claims", len(vr)),
			zap.Float64("spent_usd", env.tracker.Total()),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
