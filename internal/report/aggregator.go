// Package report aggregates validation results into the final
// investment report. The model writes the narrative; the
// recommendation always has a deterministic rule-based floor so a dead
// model still yields a defensible call.
package report

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/diligence-cli/internal/cost"
	"github.com/sells-group/diligence-cli/internal/llmjson"
	"github.com/sells-group/diligence-cli/internal/model"
	"github.com/sells-group/diligence-cli/internal/resilience"
	"github.com/sells-group/diligence-cli/pkg/llm"
)

// maxPromptIssues caps how many critical issues the prompt quotes. The
// report itself carries all of them.
const maxPromptIssues = 5

// Aggregator runs the report stage.
type Aggregator struct {
	llm     llm.Client
	model   string
	rates   cost.Rates
	tracker *cost.Tracker
}

// New wires an Aggregator.
func New(client llm.Client, modelName string, rates cost.Rates, tracker *cost.Tracker) *Aggregator {
	return &Aggregator{llm: client, model: modelName, rates: rates, tracker: tracker}
}

// Build assembles the final report from validation results. Counting
// and issue extraction are purely mechanical; only the narrative and
// recommendation involve the model, and both degrade to the rule-based
// fallback.
func (a *Aggregator) Build(ctx context.Context, companyName string, results []model.ValidationResult) *model.ValidationReport {
	rep := &model.ValidationReport{
		CompanyName: companyName,
		TotalClaims: len(results),
		Results:     results,
	}

	for _, res := range results {
		switch res.Status {
		case model.StatusVerified:
			rep.VerifiedCount++
		case model.StatusContradicted:
			rep.ContradictedCount++
		case model.StatusSuspicious:
			rep.SuspiciousCount++
		default:
			rep.UnverifiedCount++
		}

		if res.CriticalIssue() {
			rep.CriticalIssues = append(rep.CriticalIssues, model.CriticalIssue{
				Claim:          res.Claim,
				Status:         res.Status,
				Severity:       res.Severity,
				Reasoning:      res.Reasoning,
				Recommendation: res.Recommendation,
			})
		}
	}

	assessment, err := a.assess(ctx, rep)
	if err != nil {
		zap.L().Warn("report: model assessment failed, using rule-based fallback", zap.Error(err))
		assessment = fallbackAssessment(rep)
	}
	rep.OverallAssessment = assessment.Overall
	rep.Recommendation = model.ParseRecommendation(assessment.Recommendation)
	rep.Justification = assessment.Justification

	zap.L().Info("report: built",
		zap.String("company", companyName),
		zap.String("recommendation", string(rep.Recommendation)),
		zap.Int("critical_issues", len(rep.CriticalIssues)),
	)
	return rep
}

type assessment struct {
	Overall        string `json:"overall_assessment"`
	Recommendation string `json:"investment_recommendation"`
	Justification  string `json:"justification"`
}

func (a *Aggregator) assess(ctx context.Context, rep *model.ValidationReport) (assessment, error) {
	policy := resilience.DefaultRetry()
	policy.OnRetry = resilience.Logged("llm", "assess_report")

	resp, err := resilience.Do(ctx, policy, func(ctx context.Context) (*llm.Response, error) {
		return a.llm.Complete(ctx, llm.Request{
			Model:     a.model,
			Prompt:    buildAssessmentPrompt(rep),
			MaxTokens: 1000,
		})
	})
	if err != nil {
		return assessment{}, err
	}
	a.tracker.Add(a.rates.Tokens(a.model, resp.Usage.InputTokens, resp.Usage.OutputTokens))

	var out assessment
	if err := llmjson.ParseInto(resp.Text, &out); err != nil {
		return assessment{}, err
	}
	if out.Recommendation == "" {
		return assessment{}, fmt.Errorf("report: assessment missing recommendation")
	}
	return out, nil
}

// fallbackAssessment applies fixed rules, worst outcome first: any
// contradiction or more than two critical issues rejects; any
// suspicion or any critical issue warrants caution; otherwise pass.
func fallbackAssessment(rep *model.ValidationReport) assessment {
	overall := fmt.Sprintf("Of %d claims checked: %d verified, %d contradicted, %d unverified, %d suspicious.",
		rep.TotalClaims, rep.VerifiedCount, rep.ContradictedCount, rep.UnverifiedCount, rep.SuspiciousCount)

	var rec model.Recommendation
	var why string
	switch {
	case rep.ContradictedCount > 0 || len(rep.CriticalIssues) > 2:
		rec = model.RecommendReject
		why = "Contradicted claims or multiple critical issues found during validation."
	case rep.SuspiciousCount > 0 || len(rep.CriticalIssues) > 0:
		rec = model.RecommendCaution
		why = "Suspicious claims or critical issues warrant further manual review."
	default:
		rec = model.RecommendPass
		why = "No contradicted or suspicious claims found."
	}

	return assessment{
		Overall:        overall,
		Recommendation: string(rec),
		Justification:  why,
	}
}

func buildAssessmentPrompt(rep *model.ValidationReport) string {
	issues := rep.CriticalIssues
	if len(issues) > maxPromptIssues {
		issues = issues[:maxPromptIssues]
	}

	var sb strings.Builder
	for _, issue := range issues {
		fmt.Fprintf(&sb, "- [%s/%s] %s: %s\n", issue.Status, issue.Severity, issue.Claim, issue.Reasoning)
	}
	issueText := sb.String()
	if issueText == "" {
		issueText = "None.\n"
	}

	return fmt.Sprintf(`You are a partner at a VC firm making a go/no-go call on %s based on due diligence results.

VALIDATION SUMMARY:
- Claims checked: %d
- Verified: %d
- Contradicted: %d
- Unverified: %d
- Suspicious: %d

CRITICAL ISSUES:
%s
Return a JSON object:
{
  "overall_assessment": "2-3 sentence assessment of the company's claims",
  "investment_recommendation": "PASS|PROCEED_WITH_CAUTION|REJECT",
  "justification": "1-2 sentence justification for the recommendation"
}

PASS means claims held up. PROCEED_WITH_CAUTION means material open questions remain. REJECT means claims were contradicted or the pattern suggests misrepresentation.
Return ONLY valid JSON.`,
		rep.CompanyName,
		rep.TotalClaims, rep.VerifiedCount, rep.ContradictedCount, rep.UnverifiedCount, rep.SuspiciousCount,
		issueText)
}
