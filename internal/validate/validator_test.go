package validate

import (
	"context"
	"errors"
	"strings"
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
	return &llm.Response{Text: s.text, Usage: llm.Usage{InputTokens: 500, OutputTokens: 100}}, nil
}

func newValidator(client llm.Client) *Validator {
	return New(client, "claude-haiku-4-5-20251001", cost.DefaultRates(), cost.NewTracker())
}

func evidencedTask() model.ValidationTask {
	return model.ValidationTask{
		ValidationID: "V001",
		Claim:        "10,000 users",
		Source:       "pitch_deck",
		Evidence: []model.MatchedEvidence{
			{TaskID: "T003", Query: "Verify claim: 10,000 users", Findings: []string{"blog post cites 9,000 users"}, Confidence: 0.7},
		},
		RequiresVerification: true,
	}
}

const verifiedJSON = `{
  "status": "verified",
  "severity": "low",
  "evidence_for": ["blog post cites 9,000 users"],
  "evidence_against": [],
  "reasoning": "Independent source roughly corroborates the figure.",
  "confidence_score": 0.8,
  "recommendation": "Accept the claim"
}`

func TestValidateClaim(t *testing.T) {
	v := newValidator(&stubLLM{text: verifiedJSON})

	res := v.ValidateClaim(context.Background(), evidencedTask())

	assert.Equal(t, "V001", res.ValidationID)
	assert.Equal(t, model.StatusVerified, res.Status)
	assert.Equal(t, model.SeverityLow, res.Severity)
	assert.Equal(t, []string{"blog post cites 9,000 users"}, res.EvidenceFor)
	assert.InDelta(t, 0.8, res.Confidence, 1e-9)
	assert.False(t, res.CriticalIssue())
}

func TestValidateClaim_FallbackTriple(t *testing.T) {
	for name, client := range map[string]*stubLLM{
		"call error":      {err: errors.New("model unavailable")},
		"bad payload":     {text: "not json at all"},
		"bad status":      {text: `{"status": "maybe", "severity": "high"}`},
		"bad severity":    {text: `{"status": "verified", "severity": "extreme"}`},
		"empty structure": {text: `{}`},
	} {
		t.Run(name, func(t *testing.T) {
			v := newValidator(client)
			res := v.ValidateClaim(context.Background(), evidencedTask())

			assert.Equal(t, model.StatusUnverified, res.Status)
			assert.Equal(t, model.SeverityMedium, res.Severity)
			assert.Zero(t, res.Confidence)
			assert.Equal(t, "Manual review required - automated validation failed", res.Recommendation)
			// Identity survives the fallback.
			assert.Equal(t, "V001", res.ValidationID)
			assert.Equal(t, "10,000 users", res.Claim)
		})
	}
}

func TestValidateClaim_NoEvidenceNeverVerified(t *testing.T) {
	v := newValidator(&stubLLM{text: verifiedJSON})

	task := evidencedTask()
	task.Evidence = nil
	res := v.ValidateClaim(context.Background(), task)

	assert.Equal(t, model.StatusUnverified, res.Status)
}

func TestValidateClaim_NoEvidenceOtherStatusesKept(t *testing.T) {
	v := newValidator(&stubLLM{text: `{"status": "suspicious", "severity": "high", "reasoning": "r", "confidence_score": 0.6, "recommendation": "dig deeper"}`})

	task := evidencedTask()
	task.Evidence = nil
	res := v.ValidateClaim(context.Background(), task)

	assert.Equal(t, model.StatusSuspicious, res.Status)
	assert.True(t, res.CriticalIssue())
}

func TestRun_PreservesTaskOrder(t *testing.T) {
	v := newValidator(&stubLLM{text: verifiedJSON})

	tasks := []model.ValidationTask{
		{ValidationID: "V001", Claim: "a"},
		{ValidationID: "V002", Claim: "b"},
		{ValidationID: "V003", Claim: "c"},
	}
	results := v.Run(context.Background(), tasks, 2)

	require.Len(t, results, 3)
	for i, res := range results {
		assert.Equal(t, tasks[i].ValidationID, res.ValidationID)
		assert.Equal(t, tasks[i].Claim, res.Claim)
	}
}

func TestFormatEvidence(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Contains(t, formatEvidence(nil), "No research evidence")
	})

	t.Run("findings capped per record", func(t *testing.T) {
		rec := model.MatchedEvidence{TaskID: "T001", Query: "q"}
		for i := 0; i < 10; i++ {
			rec.Findings = append(rec.Findings, "finding")
		}
		text := formatEvidence([]model.MatchedEvidence{rec})
		assert.Equal(t, maxFindingsPerRecord, strings.Count(text, "- finding"))
	})

	t.Run("red flags surface", func(t *testing.T) {
		text := formatEvidence([]model.MatchedEvidence{
			{TaskID: "T002", Query: "q", RedFlags: []string{"profile created last month"}},
		})
		assert.Contains(t, text, "RED FLAG: profile created last month")
	})

	t.Run("total cap", func(t *testing.T) {
		var recs []model.MatchedEvidence
		for i := 0; i < 50; i++ {
			recs = append(recs, model.MatchedEvidence{TaskID: "T001", Query: strings.Repeat("q", 200)})
		}
		assert.LessOrEqual(t, len(formatEvidence(recs)), maxEvidenceChars)
	})
}
