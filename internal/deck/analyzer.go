// Package deck extracts structured facts and information gaps from raw
// pitch-deck text. Fact extraction is the pipeline's entry point and
// must succeed; gap identification degrades to an empty list because
// the planner's fixed rules cover the baseline checks without it.
package deck

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/diligence-cli/internal/cost"
	"github.com/sells-group/diligence-cli/internal/llmjson"
	"github.com/sells-group/diligence-cli/internal/model"
	"github.com/sells-group/diligence-cli/internal/resilience"
	"github.com/sells-group/diligence-cli/pkg/llm"
)

// maxDeckChars caps how much deck text goes to the model.
const maxDeckChars = 12000

// Analyzer runs the deck-analysis stage.
type Analyzer struct {
	llm     llm.Client
	model   string
	rates   cost.Rates
	tracker *cost.Tracker
}

// NewAnalyzer wires an Analyzer.
func NewAnalyzer(client llm.Client, modelName string, rates cost.Rates, tracker *cost.Tracker) *Analyzer {
	return &Analyzer{llm: client, model: modelName, rates: rates, tracker: tracker}
}

// ExtractFacts pulls structured facts out of deck text. A model failure
// or unparseable reply is fatal: every later stage keys off these facts.
func (a *Analyzer) ExtractFacts(ctx context.Context, deckText string) (*model.DeckFacts, error) {
	if len(deckText) > maxDeckChars {
		deckText = deckText[:maxDeckChars]
	}

	resp, err := resilience.Do(ctx, a.policy("extract_facts"), func(ctx context.Context) (*llm.Response, error) {
		return a.llm.Complete(ctx, llm.Request{
			Model:     a.model,
			Prompt:    factsPrompt(deckText),
			MaxTokens: 1500,
		})
	})
	if err != nil {
		return nil, eris.Wrap(err, "deck: extract facts")
	}
	a.tracker.Add(a.rates.Tokens(a.model, resp.Usage.InputTokens, resp.Usage.OutputTokens))

	var facts model.DeckFacts
	if err := llmjson.ParseInto(resp.Text, &facts); err != nil {
		return nil, eris.Wrap(err, "deck: parse facts")
	}
	if facts.CompanyName == "" {
		return nil, eris.New("deck: no company name extracted")
	}

	zap.L().Info("deck: facts extracted",
		zap.String("company", facts.CompanyName),
		zap.Int("founders", len(facts.Founders)),
		zap.Int("claims", len(facts.Claims)),
	)
	return &facts, nil
}

// IdentifyGaps asks the model what a diligence analyst would want to
// know that the deck does not say. Failures degrade to no gaps.
func (a *Analyzer) IdentifyGaps(ctx context.Context, facts *model.DeckFacts) []model.Gap {
	resp, err := resilience.Do(ctx, a.policy("identify_gaps"), func(ctx context.Context) (*llm.Response, error) {
		return a.llm.Complete(ctx, llm.Request{
			Model:     a.model,
			Prompt:    gapsPrompt(facts),
			MaxTokens: 800,
		})
	})
	if err != nil {
		zap.L().Warn("deck: gap identification failed", zap.Error(err))
		return nil
	}
	a.tracker.Add(a.rates.Tokens(a.model, resp.Usage.InputTokens, resp.Usage.OutputTokens))

	var raw []string
	if err := llmjson.ParseArrayInto(resp.Text, &raw); err != nil {
		zap.L().Warn("deck: gap list unparseable", zap.Error(err))
		return nil
	}

	gaps := make([]model.Gap, 0, len(raw))
	for _, g := range raw {
		if g != "" {
			gaps = append(gaps, model.Gap(g))
		}
	}
	zap.L().Info("deck: gaps identified", zap.Int("count", len(gaps)))
	return gaps
}

func (a *Analyzer) policy(operation string) resilience.Policy {
	p := resilience.DefaultRetry()
	p.OnRetry = resilience.Logged("llm", operation)
	return p
}

func factsPrompt(deckText string) string {
	return fmt.Sprintf(`You are a due diligence analyst at a VC firm. Extract structured facts from this pitch deck.

PITCH DECK:
%s

Return a JSON object with exactly these fields:
{
  "company_name": "name of the company",
  "tagline": "their one-line pitch",
  "founders": ["list", "of", "founder names"],
  "stage": "funding stage (pre-seed/seed/series-a/etc)",
  "funding_ask": "amount they are raising",
  "problem": "problem they claim to solve",
  "solution": "their claimed solution",
  "traction": "traction metrics they claim",
  "claims": ["each specific verifiable claim, e.g. '10,000 users'"],
  "team_info": "what the deck says about the team",
  "competitors_mentioned": ["competitors the deck names"],
  "website": "company website if mentioned"
}

Extract only what the deck actually says. Use "" or [] for missing fields.
Return ONLY valid JSON.`, deckText)
}

func gapsPrompt(facts *model.DeckFacts) string {
	return fmt.Sprintf(`You are a due diligence analyst. Given these extracted pitch deck facts, list the information gaps an investor would want filled before writing a check.

EXTRACTED FACTS:
Company: %s
Founders: %v
Stage: %s
Traction: %s
Claims: %v

Return a JSON array of gap descriptions, each prefixed with a priority:
["CRITICAL: gap description", "HIGH: gap description", "MEDIUM: gap description"]

Focus on verifiability: missing founder backgrounds, unsubstantiated metrics, absent competitive analysis, unclear business model.
Return ONLY a valid JSON array.`,
		facts.CompanyName, facts.Founders, facts.Stage, facts.Traction, facts.Claims)
}
