package main

import (
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/diligence-cli/internal/model"
	"github.com/sells-group/diligence-cli/internal/research"
	"github.com/sells-group/diligence-cli/internal/store"
)

var researchCmd = &cobra.Command{
	Use:   "research <company>",
	Short: "Execute the research plan for a company",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		company := args[0]

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		var p model.ResearchPlan
		if err := env.store.LoadArtifact(ctx, company, store.KindResearchPlan, &p); err != nil {
			return eris.Wrap(err, "no research plan found, run analyze first")
		}

		tasks := p.ResearchOnly()
		if len(tasks) == 0 {
			return eris.Errorf("research plan for %s has no research tasks", company)
		}

		estimate := float64(len(tasks)) * env.rates.TaskMarginal
		if err := confirmCost(cmd, fmt.Sprintf("%d research tasks", len(tasks)), estimate); err != nil {
			return err
		}

		agent := research.NewAgent(env.search, env.chain, env.llm, env.rates, env.tracker, research.Options{
			Model:          cfg.Anthropic.FastModel,
			InterFetchWait: time.Duration(cfg.Fetch.InterFetchWaitMs) * time.Millisecond,
		})
		results := agent.Run(ctx, tasks, cfg.Research.MaxConcurrent)

		artifact := &model.ResearchResults{
			CompanyName: company,
			CompletedAt: time.Now().UTC().Format(time.RFC3339),
			TotalCost:   env.tracker.Total(),
			Results:     results,
		}
		if err := env.store.SaveArtifact(ctx, company, store.KindResearchResults, artifact); err != nil {
			return err
		}

		for _, res := range results {
			fmt.Printf("  %s [%s] sources=%d confidence=%.0f%%", res.TaskID, res.Status, len(res.Sources), res.Confidence*100)
			if len(res.RedFlags) > 0 {
				fmt.Printf(" red_flags=%d", len(res.RedFlags))
			}
			fmt.Println()
		}
		fmt.Printf("Research complete: %d tasks, spent $%.4f\n", len(results), env.tracker.Total())

		zap.L().Info("research complete",
			zap.String("company", company),
			zap.Int("tasks", len(results)),
			zap.Float64("spent_usd", env.tracker.Total()),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(researchCmd)
}
