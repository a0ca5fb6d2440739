package deck

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/diligence-cli/internal/cost"
	"github.com/sells-group/diligence-cli/internal/model"
	"github.com/sells-group/diligence-cli/pkg/llm"
)

type stubLLM struct {
	text string
	err  error
}

func (s *stubLLM) Complete(_ context.Context, _ llm.Request) (*llm.Response, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &llm.Response{Text: s.text, Usage: llm.Usage{InputTokens: 2000, OutputTokens: 500}}, nil
}

func newAnalyzer(client llm.Client, tracker *cost.Tracker) *Analyzer {
	return NewAnalyzer(client, "claude-sonnet-4-5-20250929", cost.DefaultRates(), tracker)
}

const factsJSON = `Here are the extracted facts:
{
  "company_name": "FoodFleet",
  "tagline": "The Uber for Food Trucks",
  "founders": ["Sarah Chen", "Mike Rodriguez"],
  "stage": "seed",
  "funding_ask": "$2M",
  "problem": "Food trucks lack discovery",
  "solution": "Marketplace app",
  "traction": "10,000 users",
  "claims": ["10,000 users", "150 trucks on platform"],
  "team_info": "Two founders, both first-time",
  "competitors_mentioned": ["StreetFoodFinder"],
  "website": "www.foodfleet.io"
}`

func TestExtractFacts(t *testing.T) {
	tracker := cost.NewTracker()
	a := newAnalyzer(&stubLLM{text: factsJSON}, tracker)

	facts, err := a.ExtractFacts(context.Background(), "deck text")
	require.NoError(t, err)

	assert.Equal(t, "FoodFleet", facts.CompanyName)
	assert.Equal(t, []string{"Sarah Chen", "Mike Rodriguez"}, facts.Founders)
	assert.Equal(t, []string{"10,000 users", "150 trucks on platform"}, facts.Claims)
	assert.Equal(t, "www.foodfleet.io", facts.Website)
	// Sonnet call at 2000 in / 500 out.
	assert.InDelta(t, 2000.0/1e6*3.00+500.0/1e6*15.00, tracker.Total(), 1e-9)
}

func TestExtractFacts_ModelErrorIsFatal(t *testing.T) {
	a := newAnalyzer(&stubLLM{err: errors.New("invalid api key")}, cost.NewTracker())

	_, err := a.ExtractFacts(context.Background(), "deck text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extract facts")
}

func TestExtractFacts_UnparseableIsFatal(t *testing.T) {
	a := newAnalyzer(&stubLLM{text: "Sorry, I cannot help with that."}, cost.NewTracker())

	_, err := a.ExtractFacts(context.Background(), "deck text")
	require.Error(t, err)
}

func TestExtractFacts_MissingCompanyNameIsFatal(t *testing.T) {
	a := newAnalyzer(&stubLLM{text: `{"company_name": "", "founders": []}`}, cost.NewTracker())

	_, err := a.ExtractFacts(context.Background(), "deck text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "company name")
}

func TestIdentifyGaps(t *testing.T) {
	a := newAnalyzer(&stubLLM{text: `["CRITICAL: No founder backgrounds", "HIGH: Revenue unverified", "MEDIUM: No competitive analysis"]`}, cost.NewTracker())

	gaps := a.IdentifyGaps(context.Background(), &model.DeckFacts{CompanyName: "FoodFleet"})
	require.Len(t, gaps, 3)
	assert.Equal(t, model.GapCritical, gaps[0].Priority())
	assert.Equal(t, model.GapHigh, gaps[1].Priority())
	assert.Equal(t, model.GapMedium, gaps[2].Priority())
}

func TestIdentifyGaps_DegradesToEmpty(t *testing.T) {
	for name, client := range map[string]*stubLLM{
		"call error":  {err: errors.New("model unavailable")},
		"bad payload": {text: "no list here"},
	} {
		t.Run(name, func(t *testing.T) {
			a := newAnalyzer(client, cost.NewTracker())
			gaps := a.IdentifyGaps(context.Background(), &model.DeckFacts{CompanyName: "FoodFleet"})
			assert.Empty(t, gaps)
		})
	}
}
