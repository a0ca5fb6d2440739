package fetch

import (
	"context"
	"net/url"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/diligence-cli/internal/model"
)

// Chain tries fetchers in tier order and records which tier produced
// each evidence source. When every tier fails the returned source has
// empty content and method "none"; the caller treats that as a normal
// low-information result and continues.
type Chain struct {
	fetchers []Fetcher

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	perHost  rate.Limit
}

// NewChain creates a Chain. Fetchers are tried in order. perHostRate
// spaces requests to the same host (1 means at most one per second).
func NewChain(perHostRate float64, fetchers ...Fetcher) *Chain {
	if perHostRate <= 0 {
		perHostRate = 1
	}
	return &Chain{
		fetchers: fetchers,
		limiters: make(map[string]*rate.Limiter),
		perHost:  rate.Limit(perHostRate),
	}
}

func (c *Chain) hostLimiter(rawURL string) *rate.Limiter {
	host := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		host = u.Host
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	lim, ok := c.limiters[host]
	if !ok {
		lim = rate.NewLimiter(c.perHost, 1)
		c.limiters[host] = lim
	}
	return lim
}

// Fetch acquires one evidence source for a search hit. The search
// snippet and title are preserved even when every fetch tier fails, so
// the task's evidence count is never silently reduced.
func (c *Chain) Fetch(ctx context.Context, hit model.EvidenceSource) model.EvidenceSource {
	if err := c.hostLimiter(hit.URL).Wait(ctx); err != nil {
		hit.Content = ""
		hit.Method = model.MethodNone
		return hit
	}

	for _, f := range c.fetchers {
		page, err := f.Fetch(ctx, hit.URL)
		if err == nil && page != nil && len(page.Content) > 0 {
			if page.Title != "" {
				hit.Title = page.Title
			}
			hit.Content = page.Content
			hit.Method = f.Method()
			return hit
		}
		if err != nil {
			zap.L().Debug("fetch: tier failed, trying next",
				zap.String("method", string(f.Method())),
				zap.String("url", hit.URL),
				zap.Error(err),
			)
		}
	}

	zap.L().Debug("fetch: all tiers failed", zap.String("url", hit.URL))
	hit.Content = ""
	hit.Method = model.MethodNone
	return hit
}
