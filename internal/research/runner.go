package research

import (
	"context"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/diligence-cli/internal/model"
)

// Run executes every task with at most maxConcurrent in flight and
// returns results in task order. Higher-priority tasks are dispatched
// first, so under a tight concurrency limit the critical queries run
// before the medium ones. Individual tasks never fail the run;
// degraded results carry the failure detail instead.
func (a *Agent) Run(ctx context.Context, tasks []model.ResearchTask, maxConcurrent int) []model.ResearchResult {
	if maxConcurrent <= 0 {
		maxConcurrent = 3
	}

	zap.L().Info("research: starting run",
		zap.Int("tasks", len(tasks)),
		zap.Int("max_concurrent", maxConcurrent),
	)

	order := make([]int, len(tasks))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(x, y int) bool {
		return tasks[order[x]].Priority.Rank() < tasks[order[y]].Priority.Rank()
	})

	results := make([]model.ResearchResult, len(tasks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)

	for _, i := range order {
		g.Go(func() error {
			results[i] = a.ExecuteTask(gctx, tasks[i])
			return nil
		})
	}
	// Workers only return nil; Wait is for completion.
	_ = g.Wait()

	return results
}
