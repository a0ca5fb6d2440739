// Package research executes planned research tasks: one web search,
// fetches for the top hits, and an LLM pass over whatever came back.
package research

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/diligence-cli/internal/cost"
	"github.com/sells-group/diligence-cli/internal/llmjson"
	"github.com/sells-group/diligence-cli/internal/model"
	"github.com/sells-group/diligence-cli/internal/resilience"
	"github.com/sells-group/diligence-cli/pkg/llm"
	"github.com/sells-group/diligence-cli/pkg/websearch"
)

const (
	// maxFetches bounds how many search hits are fetched per task.
	maxFetches = 3
	// minUsefulContent is the shortest page text worth keeping; shorter
	// pages are error shells or cookie walls.
	minUsefulContent = 100
	// maxStoredContent caps per-source content carried on the result.
	maxStoredContent = 3000
	// noPresenceFlag is the synthesized red flag for zero search hits.
	noPresenceFlag = "No search results - company may not exist or have no online presence"
)

// SourceFetcher acquires one evidence source for a search hit.
// *fetch.Chain is the production implementation.
type SourceFetcher interface {
	Fetch(ctx context.Context, hit model.EvidenceSource) model.EvidenceSource
}

// Options tunes agent behavior.
type Options struct {
	Model          string
	MaxTokens      int64
	InterFetchWait time.Duration
}

// Agent runs research tasks against the search, fetch, and model services.
type Agent struct {
	search  websearch.Client
	fetcher SourceFetcher
	llm     llm.Client
	rates   cost.Rates
	tracker *cost.Tracker
	opts    Options
}

// NewAgent wires an Agent. InterFetchWait defaults to one second.
func NewAgent(search websearch.Client, fetcher SourceFetcher, llmClient llm.Client, rates cost.Rates, tracker *cost.Tracker, opts Options) *Agent {
	if opts.InterFetchWait <= 0 {
		opts.InterFetchWait = time.Second
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 800
	}
	return &Agent{
		search:  search,
		fetcher: fetcher,
		llm:     llmClient,
		rates:   rates,
		tracker: tracker,
		opts:    opts,
	}
}

// ExecuteTask runs one research task to completion. External failures
// degrade the result instead of propagating: a dead search yields a
// failed result with a synthesized red flag, dead fetches yield
// snippet-only sources, and a dead model yields a low-confidence
// analysis.
func (a *Agent) ExecuteTask(ctx context.Context, task model.ResearchTask) model.ResearchResult {
	log := zap.L().With(zap.String("task_id", task.TaskID))
	log.Info("research: executing task", zap.String("query", task.Query))

	hits, err := resilience.Do(ctx, resilience.DefaultRetry(), func(ctx context.Context) ([]websearch.Result, error) {
		return a.search.Search(ctx, task.Query)
	})
	// The query is billed whether or not it succeeded: a search that
	// errors after retries still consumed API quota.
	a.tracker.Add(a.rates.SearchPerQuery)
	if err != nil {
		log.Warn("research: search failed", zap.Error(err))
		hits = nil
	}

	if len(hits) == 0 {
		// No fetches: a query with zero hits is itself a finding.
		return model.ResearchResult{
			TaskID:      task.TaskID,
			Query:       task.Query,
			Status:      model.ResultFailed,
			Sources:     []model.EvidenceSource{},
			Summary:     "No information found",
			KeyFindings: []string{},
			RedFlags:    []string{noPresenceFlag},
			Confidence:  0,
		}
	}

	if len(hits) > maxFetches {
		hits = hits[:maxFetches]
	}

	sources := make([]model.EvidenceSource, 0, len(hits))
	for i, hit := range hits {
		if i > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(a.opts.InterFetchWait):
			}
		}

		src := a.fetcher.Fetch(ctx, model.EvidenceSource{
			URL:     hit.URL,
			Title:   hit.Title,
			Snippet: hit.Snippet,
		})
		if len(src.Content) < minUsefulContent {
			src.Content = ""
			src.Method = model.MethodNone
		}
		if len(src.Content) > maxStoredContent {
			src.Content = src.Content[:maxStoredContent]
		}
		sources = append(sources, src)
	}

	analysis := a.analyzeFindings(ctx, task, sources)

	status := model.ResultPartial
	for _, s := range sources {
		if s.Success() {
			status = model.ResultSuccess
			break
		}
	}

	log.Info("research: task complete",
		zap.String("status", string(status)),
		zap.Int("sources", len(sources)),
		zap.Float64("confidence", analysis.Confidence),
	)

	return model.ResearchResult{
		TaskID:      task.TaskID,
		Query:       task.Query,
		Status:      status,
		Sources:     sources,
		Summary:     analysis.Summary,
		KeyFindings: analysis.KeyFindings,
		RedFlags:    analysis.RedFlags,
		Confidence:  analysis.Confidence,
	}
}

type findingsAnalysis struct {
	Summary     string   `json:"summary"`
	KeyFindings []string `json:"key_findings"`
	RedFlags    []string `json:"red_flags"`
	Confidence  float64  `json:"confidence_score"`
}

// analyzeFindings asks the model to summarize the fetched sources. A
// failed or unparseable response degrades to a conservative record.
func (a *Agent) analyzeFindings(ctx context.Context, task model.ResearchTask, sources []model.EvidenceSource) findingsAnalysis {
	prompt := buildAnalysisPrompt(task, sources)

	resp, err := a.llm.Complete(ctx, llm.Request{
		Model:       a.opts.Model,
		Prompt:      prompt,
		Temperature: 0.2,
		MaxTokens:   a.opts.MaxTokens,
	})
	if err != nil {
		zap.L().Warn("research: analysis call failed", zap.String("task_id", task.TaskID), zap.Error(err))
		return degradedAnalysis()
	}
	a.tracker.Add(a.rates.Tokens(a.opts.Model, resp.Usage.InputTokens, resp.Usage.OutputTokens))

	var analysis findingsAnalysis
	if err := llmjson.ParseInto(resp.Text, &analysis); err != nil {
		zap.L().Warn("research: analysis unparseable", zap.String("task_id", task.TaskID), zap.Error(err))
		return degradedAnalysis()
	}
	return analysis
}

func degradedAnalysis() findingsAnalysis {
	return findingsAnalysis{
		Summary:     "Analysis failed",
		KeyFindings: []string{},
		RedFlags:    []string{},
		Confidence:  0.3,
	}
}

const (
	maxPromptPerSource = 1500
	maxPromptSources   = 6000
)

func buildAnalysisPrompt(task model.ResearchTask, sources []model.EvidenceSource) string {
	var sb strings.Builder
	for i, src := range sources {
		fmt.Fprintf(&sb, "\n### Source %d: %s\nURL: %s\n", i+1, src.Title, src.URL)
		if src.Snippet != "" {
			fmt.Fprintf(&sb, "Snippet: %s\n", src.Snippet)
		}
		if src.Content != "" {
			content := src.Content
			if len(content) > maxPromptPerSource {
				content = content[:maxPromptPerSource]
			}
			fmt.Fprintf(&sb, "Content: %s...\n", content)
		}
	}
	sourcesText := sb.String()
	if len(sourcesText) > maxPromptSources {
		sourcesText = sourcesText[:maxPromptSources]
	}

	return fmt.Sprintf(`You are a research analyst for a VC firm. Analyze these research findings.

RESEARCH QUERY: %s
CONTEXT: %s

SOURCES FOUND:
%s

Analyze the findings and return a JSON object:
{
  "summary": "2-3 sentence summary of what was found",
  "key_findings": ["finding 1", "finding 2", "finding 3"],
  "red_flags": ["any concerns or warning signs"],
  "confidence_score": 0.0-1.0
}

Focus on:
- Factual information that answers the query
- Any discrepancies between sources
- Missing information that's expected
- Signs of legitimacy or red flags

Return ONLY valid JSON.`, task.Query, task.Context, sourcesText)
}
