package cost

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_ConcurrentAdds(t *testing.T) {
	tr := NewTracker()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.Add(0.01)
		}()
	}
	wg.Wait()

	assert.InDelta(t, 1.0, tr.Total(), 1e-9)
}

func TestRates_Tokens(t *testing.T) {
	r := DefaultRates()

	// 1M input + 1M output on haiku pricing.
	got := r.Tokens("claude-haiku-4-5-20251001", 1_000_000, 1_000_000)
	assert.InDelta(t, 4.80, got, 1e-9)

	assert.Zero(t, r.Tokens("unknown-model", 1_000_000, 1_000_000))
}

func TestLoadRates_PartialOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rates.yaml")
	require.NoError(t, os.WriteFile(path, []byte("task_marginal: 0.10\n"), 0o644))

	r, err := LoadRates(path)
	require.NoError(t, err)
	assert.Equal(t, 0.10, r.TaskMarginal)
	assert.Equal(t, DefaultRates().SearchPerQuery, r.SearchPerQuery)
	assert.Equal(t, DefaultRates().ValidationMarginal, r.ValidationMarginal)
	assert.NotEmpty(t, r.Models)
}

func TestLoadRates_MissingFileFallsBack(t *testing.T) {
	r, err := LoadRates("/nonexistent/rates.yaml")
	assert.Error(t, err)
	assert.Equal(t, DefaultRates().TaskMarginal, r.TaskMarginal)
}
