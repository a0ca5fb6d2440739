package main

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/diligence-cli/internal/cost"
	"github.com/sells-group/diligence-cli/internal/fetch"
	"github.com/sells-group/diligence-cli/internal/resilience"
	"github.com/sells-group/diligence-cli/internal/store"
	"github.com/sells-group/diligence-cli/pkg/llm"
	"github.com/sells-group/diligence-cli/pkg/websearch"
)

// env bundles the shared services every subcommand wires up.
type env struct {
	store   store.Store
	llm     llm.Client
	search  websearch.Client
	chain   *fetch.Chain
	rates   cost.Rates
	tracker *cost.Tracker
}

func initEnv(ctx context.Context) (*env, error) {
	if cfg.Anthropic.Key == "" {
		return nil, eris.New("anthropic api key not configured (DILIGENCE_ANTHROPIC_KEY)")
	}

	st, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	// Migration retries briefly when another process holds the write lock.
	migrateRetry := resilience.Policy{
		MaxAttempts:    3,
		InitialBackoff: 100 * time.Millisecond,
		ShouldRetry: func(err error) bool {
			return strings.Contains(err.Error(), "database is locked")
		},
	}
	if err := resilience.Run(ctx, migrateRetry, st.Migrate); err != nil {
		st.Close()
		return nil, err
	}

	rates := cost.DefaultRates()
	if cfg.Pricing.RatesFile != "" {
		rates, err = cost.LoadRates(cfg.Pricing.RatesFile)
		if err != nil {
			zap.L().Warn("using default pricing rates", zap.Error(err))
		}
	}

	timeout := time.Duration(cfg.Fetch.TimeoutSecs) * time.Second
	var fetchers []fetch.Fetcher
	if cfg.Fetch.RenderEnabled {
		fetchers = append(fetchers, fetch.NewRenderFetcher(timeout))
	}
	fetchers = append(fetchers, fetch.NewHTTPFetcher(timeout))

	return &env{
		store:   st,
		llm:     llm.NewClient(cfg.Anthropic.Key),
		search:  websearch.NewClient(cfg.Search.Key, websearch.WithBaseURL(cfg.Search.BaseURL)),
		chain:   fetch.NewChain(cfg.Fetch.PerHostPerSec, fetchers...),
		rates:   rates,
		tracker: cost.NewTracker(),
	}, nil
}

func (e *env) Close() {
	if err := e.store.Close(); err != nil {
		zap.L().Warn("closing store", zap.Error(err))
	}
}
