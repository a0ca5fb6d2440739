package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/diligence-cli/internal/deck"
	"github.com/sells-group/diligence-cli/internal/plan"
	"github.com/sells-group/diligence-cli/internal/store"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <deck.txt>",
	Short: "Analyze a pitch deck and build the research plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		deckText, err := os.ReadFile(args[0])
		if err != nil {
			return eris.Wrapf(err, "read deck %s", args[0])
		}

		analyzer := deck.NewAnalyzer(env.llm, cfg.Anthropic.StrongModel, env.rates, env.tracker)

		facts, err := analyzer.ExtractFacts(ctx, string(deckText))
		if err != nil {
			return err
		}
		gaps := analyzer.IdentifyGaps(ctx, facts)

		p, err := plan.New(env.rates, env.tracker).Build(facts, gaps)
		if err != nil {
			return err
		}

		if err := env.store.SaveArtifact(ctx, facts.CompanyName, store.KindDeckFacts, facts); err != nil {
			return err
		}
		if err := env.store.SaveArtifact(ctx, facts.CompanyName, store.KindResearchPlan, p); err != nil {
			return err
		}

		fmt.Printf("Company: %s\n", facts.CompanyName)
		fmt.Printf("Founders: %d  Claims: %d  Gaps: %d\n", len(facts.Founders), len(facts.Claims), len(gaps))
		fmt.Printf("Research plan: %d tasks, estimated $%.2f\n", len(p.Tasks), p.EstimatedCostUSD)
		for _, task := range p.Tasks {
			fmt.Printf("  %s [%s/%s] %s\n", task.TaskID, task.Agent, task.Priority, task.Query)
		}

		zap.L().Info("analyze complete",
			zap.String("company", facts.CompanyName),
			zap.Int("tasks", len(p.Tasks)),
			zap.Float64("spent_usd", env.tracker.Total()),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}
