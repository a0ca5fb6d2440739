// Package plan turns deck facts and identified gaps into a bounded,
// prioritized research plan.
package plan

import (
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/sells-group/diligence-cli/internal/cost"
	"github.com/sells-group/diligence-cli/internal/model"
)

const (
	// maxFounderTasks bounds per-founder research to keep cost predictable.
	maxFounderTasks = 3
	// maxClaimTasks bounds per-claim validator tasks.
	maxClaimTasks = 2
)

// ErrMissingFacts is returned when no deck facts are available; the
// planner never fabricates an empty plan.
var ErrMissingFacts = eris.New("plan: deck facts missing")

// Planner builds research plans. Deterministic: identical inputs yield
// identical plans; the only state is the monotonic task id counter,
// which resets per Build call.
type Planner struct {
	rates   cost.Rates
	tracker *cost.Tracker
}

// New creates a Planner. tracker carries LLM spend accrued by earlier
// stages into the plan's cost estimate.
func New(rates cost.Rates, tracker *cost.Tracker) *Planner {
	return &Planner{rates: rates, tracker: tracker}
}

// Build generates the plan for the given facts and gaps. Rules run in a
// fixed order: website legitimacy, founder backgrounds (first 3), claim
// validation (first 2), then one competitive-landscape task, one
// funding-history task, and one recent-news task.
func (p *Planner) Build(facts *model.DeckFacts, gaps []model.Gap) (*model.ResearchPlan, error) {
	if facts == nil {
		return nil, ErrMissingFacts
	}

	var (
		tasks   []model.ResearchTask
		counter int
	)
	nextID := func() string {
		counter++
		return fmt.Sprintf("T%03d", counter)
	}

	company := facts.CompanyName

	if facts.Website != "" {
		tasks = append(tasks, model.ResearchTask{
			TaskID:    nextID(),
			Agent:     model.RoleResearch,
			Priority:  model.PriorityCritical,
			Query:     fmt.Sprintf("Verify %s website and company legitimacy", company),
			Context:   "Website: " + facts.Website,
			Reasoning: "Must confirm company actually exists before further research",
		})
	}

	for i, founder := range facts.Founders {
		if i >= maxFounderTasks {
			break
		}
		tasks = append(tasks, model.ResearchTask{
			TaskID:    nextID(),
			Agent:     model.RoleResearch,
			Priority:  model.PriorityCritical,
			Query:     fmt.Sprintf("Find LinkedIn profile and background for %s", founder),
			Context:   "Founder of " + company,
			Reasoning: "Verify founder exists and has relevant experience",
		})
	}

	for i, claim := range facts.Claims {
		if i >= maxClaimTasks {
			break
		}
		tasks = append(tasks, model.ResearchTask{
			TaskID:    nextID(),
			Agent:     model.RoleValidator,
			Priority:  model.PriorityCritical,
			Query:     "Verify claim: " + claim,
			Context:   "Company: " + company,
			Reasoning: "Need to validate specific claims made in pitch deck",
		})
	}

	problem := facts.Problem
	if problem == "" {
		problem = "Not specified"
	}
	tasks = append(tasks, model.ResearchTask{
		TaskID:    nextID(),
		Agent:     model.RoleResearch,
		Priority:  model.PriorityHigh,
		Query:     fmt.Sprintf("Find competitors and alternatives to %s", company),
		Context:   "Industry: " + problem,
		Reasoning: "Understand market positioning and competitive threats",
	})

	stage := facts.Stage
	if stage == "" {
		stage = "Unknown"
	}
	tasks = append(tasks, model.ResearchTask{
		TaskID:    nextID(),
		Agent:     model.RoleResearch,
		Priority:  model.PriorityHigh,
		Query:     fmt.Sprintf("Find funding history for %s on Crunchbase", company),
		Context:   "Current stage: " + stage,
		Reasoning: "Verify funding stage and previous investors",
	})

	tasks = append(tasks, model.ResearchTask{
		TaskID:    nextID(),
		Agent:     model.RoleResearch,
		Priority:  model.PriorityMedium,
		Query:     fmt.Sprintf("Find recent news about %s", company),
		Context:   "Focus on product launches, partnerships, pivots",
		Reasoning: "Identify recent developments not in deck",
	})

	tagline := facts.Tagline
	if tagline == "" {
		tagline = "No tagline"
	}

	return &model.ResearchPlan{
		CompanyName:      company,
		DeckSummary:      fmt.Sprintf("%s | Stage: %s", tagline, stage),
		CriticalGaps:     gaps,
		Tasks:            tasks,
		EstimatedCostUSD: p.tracker.Total() + float64(len(tasks))*p.rates.TaskMarginal,
	}, nil
}
