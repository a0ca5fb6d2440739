// Package validate classifies each deck claim against its matched
// evidence. One model call per claim; any failure lands on a
// deterministic conservative fallback so a partial pipeline still
// produces a complete, honest report.
package validate

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/diligence-cli/internal/cost"
	"github.com/sells-group/diligence-cli/internal/llmjson"
	"github.com/sells-group/diligence-cli/internal/model"
	"github.com/sells-group/diligence-cli/internal/resilience"
	"github.com/sells-group/diligence-cli/pkg/llm"
)

const (
	// maxEvidenceChars caps the evidence block in the prompt.
	maxEvidenceChars = 4000
	// maxFindingsPerRecord caps findings quoted per evidence record.
	maxFindingsPerRecord = 5
	// fallbackRecommendation is the fixed advice on validation failure.
	fallbackRecommendation = "Manual review required - automated validation failed"
)

// Validator runs the claim-validation stage.
type Validator struct {
	llm     llm.Client
	model   string
	rates   cost.Rates
	tracker *cost.Tracker
}

// New wires a Validator.
func New(client llm.Client, modelName string, rates cost.Rates, tracker *cost.Tracker) *Validator {
	return &Validator{llm: client, model: modelName, rates: rates, tracker: tracker}
}

type classification struct {
	Status          string   `json:"status"`
	Severity        string   `json:"severity"`
	EvidenceFor     []string `json:"evidence_for"`
	EvidenceAgainst []string `json:"evidence_against"`
	Reasoning       string   `json:"reasoning"`
	Confidence      float64  `json:"confidence_score"`
	Recommendation  string   `json:"recommendation"`
}

// ValidateClaim classifies one claim. Model or parse failures return
// the fallback result rather than an error; a claim with no evidence
// can never come back verified.
func (v *Validator) ValidateClaim(ctx context.Context, task model.ValidationTask) model.ValidationResult {
	log := zap.L().With(zap.String("validation_id", task.ValidationID))
	log.Info("validate: checking claim", zap.String("claim", task.Claim), zap.Int("evidence", len(task.Evidence)))

	prompt := buildValidationPrompt(task)

	policy := resilience.DefaultRetry()
	policy.OnRetry = resilience.Logged("llm", "validate_claim")

	resp, err := resilience.Do(ctx, policy, func(ctx context.Context) (*llm.Response, error) {
		return v.llm.Complete(ctx, llm.Request{
			Model:     v.model,
			Prompt:    prompt,
			MaxTokens: 1000,
		})
	})
	if err != nil {
		log.Warn("validate: model call failed", zap.Error(err))
		return v.fallback(task)
	}
	v.tracker.Add(v.rates.Tokens(v.model, resp.Usage.InputTokens, resp.Usage.OutputTokens))

	var cls classification
	if err := llmjson.ParseInto(resp.Text, &cls); err != nil {
		log.Warn("validate: classification unparseable", zap.Error(err))
		return v.fallback(task)
	}

	status := model.ValidationStatus(cls.Status)
	severity := model.Severity(cls.Severity)
	if !status.Valid() || !severity.Valid() {
		log.Warn("validate: classification out of vocabulary",
			zap.String("status", cls.Status), zap.String("severity", cls.Severity))
		return v.fallback(task)
	}

	// No evidence means nothing could have been verified, whatever the
	// model says.
	if len(task.Evidence) == 0 && status == model.StatusVerified {
		log.Warn("validate: verified without evidence, downgrading")
		status = model.StatusUnverified
	}

	return model.ValidationResult{
		ValidationID:    task.ValidationID,
		Claim:           task.Claim,
		Status:          status,
		Severity:        severity,
		EvidenceFor:     cls.EvidenceFor,
		EvidenceAgainst: cls.EvidenceAgainst,
		Reasoning:       cls.Reasoning,
		Confidence:      cls.Confidence,
		Recommendation:  cls.Recommendation,
	}
}

func (v *Validator) fallback(task model.ValidationTask) model.ValidationResult {
	return model.ValidationResult{
		ValidationID:    task.ValidationID,
		Claim:           task.Claim,
		Status:          model.StatusUnverified,
		Severity:        model.SeverityMedium,
		EvidenceFor:     []string{},
		EvidenceAgainst: []string{},
		Reasoning:       "Automated validation did not produce a usable classification",
		Confidence:      0,
		Recommendation:  fallbackRecommendation,
	}
}

// Run validates every task with at most maxConcurrent in flight,
// returning results in task order.
func (v *Validator) Run(ctx context.Context, tasks []model.ValidationTask, maxConcurrent int) []model.ValidationResult {
	if maxConcurrent <= 0 {
		maxConcurrent = 3
	}

	zap.L().Info("validate: starting run",
		zap.Int("tasks", len(tasks)),
		zap.Int("max_concurrent", maxConcurrent),
	)

	results := make([]model.ValidationResult, len(tasks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)

	for i, task := range tasks {
		g.Go(func() error {
			results[i] = v.ValidateClaim(gctx, task)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func buildValidationPrompt(task model.ValidationTask) string {
	evidence := formatEvidence(task.Evidence)

	return fmt.Sprintf(`You are a skeptical due diligence validator at a VC firm. Assess whether this claim from a pitch deck holds up against the research evidence.

CLAIM: %s
SOURCE: %s

RESEARCH EVIDENCE:
%s

Classify the claim and return a JSON object:
{
  "status": "verified|contradicted|unverified|suspicious",
  "severity": "critical|high|medium|low",
  "evidence_for": ["evidence supporting the claim"],
  "evidence_against": ["evidence contradicting the claim"],
  "reasoning": "your reasoning in 1-2 sentences",
  "confidence_score": 0.0-1.0,
  "recommendation": "what the investor should do about this claim"
}

Rules:
- "verified" only if independent evidence directly supports the claim
- "contradicted" if evidence conflicts with the claim
- "suspicious" if the evidence pattern suggests the claim is misleading
- "unverified" if there is simply not enough evidence either way
- severity reflects how much this claim matters to the investment decision

Return ONLY valid JSON.`, task.Claim, task.Source, evidence)
}

func formatEvidence(records []model.MatchedEvidence) string {
	if len(records) == 0 {
		return "No research evidence was gathered for this claim."
	}

	var sb strings.Builder
	for _, rec := range records {
		fmt.Fprintf(&sb, "\nResearch task %s (query: %s, confidence %.2f)\n", rec.TaskID, rec.Query, rec.Confidence)

		findings := rec.Findings
		if len(findings) > maxFindingsPerRecord {
			findings = findings[:maxFindingsPerRecord]
		}
		for _, f := range findings {
			fmt.Fprintf(&sb, "- %s\n", f)
		}
		for _, flag := range rec.RedFlags {
			fmt.Fprintf(&sb, "- RED FLAG: %s\n", flag)
		}
	}

	text := sb.String()
	if len(text) > maxEvidenceChars {
		text = text[:maxEvidenceChars]
	}
	return text
}
