package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/diligence-cli/internal/deck"
	"github.com/sells-group/diligence-cli/internal/match"
	"github.com/sells-group/diligence-cli/internal/model"
	"github.com/sells-group/diligence-cli/internal/plan"
	"github.com/sells-group/diligence-cli/internal/report"
	"github.com/sells-group/diligence-cli/internal/research"
	"github.com/sells-group/diligence-cli/internal/store"
	"github.com/sells-group/diligence-cli/internal/validate"
)

var pipelineCmd = &cobra.Command{
	Use:   "pipeline <deck.txt>",
	Short: "Run the full pipeline: analyze, research, validate, report",
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

		rep, err := runPipeline(ctx, cmd, env, string(deckText))
		if err != nil {
			return err
		}

		printReport(rep)
		fmt.Printf("\nTotal spend: $%.4f\n", env.tracker.Total())
		return nil
	},
}

func runPipeline(ctx context.Context, cmd *cobra.Command, env *env, deckText string) (*model.ValidationReport, error) {
	analyzer := deck.NewAnalyzer(env.llm, cfg.Anthropic.StrongModel, env.rates, env.tracker)

	facts, err := analyzer.ExtractFacts(ctx, deckText)
	if err != nil {
		return nil, err
	}
	gaps := analyzer.IdentifyGaps(ctx, facts)

	run, err := env.store.CreateRun(ctx, facts.CompanyName)
	if err != nil {
		return nil, err
	}
	fail := func(stageErr error) (*model.ValidationReport, error) {
		if err := env.store.FinishRun(ctx, run.ID, store.RunFailed, ""); err != nil {
			zap.L().Warn("marking run failed", zap.Error(err))
		}
		return nil, stageErr
	}

	p, err := plan.New(env.rates, env.tracker).Build(facts, gaps)
	if err != nil {
		return fail(err)
	}
	if err := env.store.SaveArtifact(ctx, facts.CompanyName, store.KindDeckFacts, facts); err != nil {
		return fail(err)
	}
	if err := env.store.SaveArtifact(ctx, facts.CompanyName, store.KindResearchPlan, p); err != nil {
		return fail(err)
	}

	if err := confirmCost(cmd, fmt.Sprintf("full pipeline for %s", facts.CompanyName), p.EstimatedCostUSD); err != nil {
		return fail(err)
	}

	agent := research.NewAgent(env.search, env.chain, env.llm, env.rates, env.tracker, research.Options{
		Model:          cfg.Anthropic.FastModel,
		InterFetchWait: time.Duration(cfg.Fetch.InterFetchWaitMs) * time.Millisecond,
	})
	results := agent.Run(ctx, p.ResearchOnly(), cfg.Research.MaxConcurrent)

	resultsArtifact := &model.ResearchResults{
		CompanyName: facts.CompanyName,
		CompletedAt: time.Now().UTC().Format(time.RFC3339),
		TotalCost:   env.tracker.Total(),
		Results:     results,
	}
	if err := env.store.SaveArtifact(ctx, facts.CompanyName, store.KindResearchResults, resultsArtifact); err != nil {
		return fail(err)
	}

	vp := match.BuildValidationPlan(facts, results, match.NewKeywordMatcher())
	if err := env.store.SaveArtifact(ctx, facts.CompanyName, store.KindValidationPlan, vp); err != nil {
		return fail(err)
	}

	validator := validate.New(env.llm, cfg.Anthropic.FastModel, env.rates, env.tracker)
	vr := validator.Run(ctx, vp.Tasks, cfg.Validation.MaxConcurrent)
	if err := env.store.SaveArtifact(ctx, facts.CompanyName, store.KindValidationResults, &model.ValidationResults{
		CompanyName: facts.CompanyName,
		Results:     vr,
	}); err != nil {
		return fail(err)
	}

	aggregator := report.New(env.llm, cfg.Anthropic.StrongModel, env.rates, env.tracker)
	rep := aggregator.Build(ctx, facts.CompanyName, vr)
	if err := env.store.SaveArtifact(ctx, facts.CompanyName, store.KindReport, rep); err != nil {
		return fail(err)
	}

	if err := env.store.FinishRun(ctx, run.ID, store.RunComplete, string(rep.Recommendation)); err != nil {
		zap.L().Warn("marking run complete", zap.Error(err))
	}
	return rep, nil
}

func init() {
	rootCmd.AddCommand(pipelineCmd)
}
