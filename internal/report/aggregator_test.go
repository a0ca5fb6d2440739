package report

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
	return &llm.Response{Text: s.text, Usage: llm.Usage{InputTokens: 800, OutputTokens: 150}}, nil
}

func newAggregator(client llm.Client) *Aggregator {
	return New(client, "claude-sonnet-4-5-20250929", cost.DefaultRates(), cost.NewTracker())
}

func result(id string, status model.ValidationStatus, severity model.Severity) model.ValidationResult {
	return model.ValidationResult{
		ValidationID: id,
		Claim:        "claim " + id,
		Status:       status,
		Severity:     severity,
		Reasoning:    "because",
	}
}

func TestBuild_CountsAndIssues(t *testing.T) {
	a := newAggregator(&stubLLM{text: `{"overall_assessment": "Mostly holds up.", "investment_recommendation": "PROCEED_WITH_CAUTION", "justification": "One contradiction."}`})

	results := []model.ValidationResult{
		result("V001", model.StatusVerified, model.SeverityLow),
		result("V002", model.StatusContradicted, model.SeverityCritical),
		result("V003", model.StatusUnverified, model.SeverityMedium),
		result("V004", model.StatusSuspicious, model.SeverityLow),
	}
	rep := a.Build(context.Background(), "FoodFleet", results)

	assert.Equal(t, 4, rep.TotalClaims)
	assert.Equal(t, 1, rep.VerifiedCount)
	assert.Equal(t, 1, rep.ContradictedCount)
	assert.Equal(t, 1, rep.UnverifiedCount)
	assert.Equal(t, 1, rep.SuspiciousCount)
	assert.True(t, rep.CountsConsistent())

	// V004 is suspicious but low severity, so only V002 qualifies.
	require.Len(t, rep.CriticalIssues, 1)
	assert.Equal(t, "claim V002", rep.CriticalIssues[0].Claim)

	assert.Equal(t, model.RecommendCaution, rep.Recommendation)
	assert.Equal(t, "Mostly holds up.", rep.OverallAssessment)
}

func TestBuild_IssueOrderPreserved(t *testing.T) {
	a := newAggregator(&stubLLM{text: `{"overall_assessment": "x", "investment_recommendation": "REJECT", "justification": "y"}`})

	results := []model.ValidationResult{
		result("V003", model.StatusSuspicious, model.SeverityHigh),
		result("V001", model.StatusContradicted, model.SeverityCritical),
		result("V002", model.StatusContradicted, model.SeverityHigh),
	}
	rep := a.Build(context.Background(), "FoodFleet", results)

	require.Len(t, rep.CriticalIssues, 3)
	assert.Equal(t, "claim V003", rep.CriticalIssues[0].Claim)
	assert.Equal(t, "claim V001", rep.CriticalIssues[1].Claim)
	assert.Equal(t, "claim V002", rep.CriticalIssues[2].Claim)
}

func TestBuild_FallbackRules(t *testing.T) {
	cases := []struct {
		name    string
		results []model.ValidationResult
		want    model.Recommendation
	}{
		{
			name:    "contradiction rejects",
			results: []model.ValidationResult{result("V001", model.StatusContradicted, model.SeverityLow)},
			want:    model.RecommendReject,
		},
		{
			name: "more than two criticals rejects",
			results: []model.ValidationResult{
				result("V001", model.StatusSuspicious, model.SeverityCritical),
				result("V002", model.StatusSuspicious, model.SeverityHigh),
				result("V003", model.StatusSuspicious, model.SeverityCritical),
			},
			want: model.RecommendReject,
		},
		{
			name:    "suspicion cautions",
			results: []model.ValidationResult{result("V001", model.StatusSuspicious, model.SeverityLow)},
			want:    model.RecommendCaution,
		},
		{
			name: "clean passes",
			results: []model.ValidationResult{
				result("V001", model.StatusVerified, model.SeverityLow),
				result("V002", model.StatusUnverified, model.SeverityMedium),
			},
			want: model.RecommendPass,
		},
		{
			name:    "empty passes",
			results: nil,
			want:    model.RecommendPass,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := newAggregator(&stubLLM{err: errors.New("model unavailable")})
			rep := a.Build(context.Background(), "FoodFleet", tc.results)

			assert.Equal(t, tc.want, rep.Recommendation)
			assert.NotEmpty(t, rep.OverallAssessment)
			assert.NotEmpty(t, rep.Justification)
			assert.True(t, rep.CountsConsistent())
		})
	}
}

func TestBuild_UnparseableAssessmentFallsBack(t *testing.T) {
	a := newAggregator(&stubLLM{text: "I'd rather write prose."})

	rep := a.Build(context.Background(), "FoodFleet", []model.ValidationResult{
		result("V001", model.StatusVerified, model.SeverityLow),
	})
	assert.Equal(t, model.RecommendPass, rep.Recommendation)
}

func TestBuild_EmbeddedRecommendationParsed(t *testing.T) {
	a := newAggregator(&stubLLM{text: `{"overall_assessment": "x", "investment_recommendation": "reject - multiple contradicted claims", "justification": "y"}`})

	rep := a.Build(context.Background(), "FoodFleet", []model.ValidationResult{
		result("V001", model.StatusContradicted, model.SeverityCritical),
	})
	assert.Equal(t, model.RecommendReject, rep.Recommendation)
}

func TestBuildAssessmentPrompt_CapsIssues(t *testing.T) {
	rep := &model.ValidationReport{CompanyName: "FoodFleet"}
	for i := 0; i < 8; i++ {
		rep.CriticalIssues = append(rep.CriticalIssues, model.CriticalIssue{
			Claim: "c", Status: model.StatusContradicted, Severity: model.SeverityHigh, Reasoning: "r",
		})
	}
	prompt := buildAssessmentPrompt(rep)
	assert.Equal(t, maxPromptIssues, strings.Count(prompt, "[contradicted/high]"))
}
