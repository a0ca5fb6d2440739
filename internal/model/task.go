package model

// AgentRole selects which agent a task is meant for.
type AgentRole string

const (
	RoleResearch  AgentRole = "research"
	RoleValidator AgentRole = "validator"
)

// Priority ranks how important a task is for the investment decision.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// priorityRank maps priorities to numeric ranks for comparison.
// Lower rank means more important.
var priorityRank = map[Priority]int{
	PriorityCritical: 0,
	PriorityHigh:     1,
	PriorityMedium:   2,
	PriorityLow:      3,
}

// Rank returns the numeric rank of p. Unrecognized priorities rank last.
func (p Priority) Rank() int {
	if r, ok := priorityRank[p]; ok {
		return r
	}
	return len(priorityRank)
}

// ResearchTask is a single unit of verification work. Immutable once
// created by the planner.
type ResearchTask struct {
	TaskID    string    `json:"task_id"`
	Agent     AgentRole `json:"agent"`
	Priority  Priority  `json:"priority"`
	Query     string    `json:"query"`
	Context   string    `json:"context"`
	Reasoning string    `json:"reasoning"`
}

// ResearchPlan is the planner's output: a bounded, prioritized task list
// with a running cost estimate.
type ResearchPlan struct {
	CompanyName      string         `json:"company_name"`
	DeckSummary      string         `json:"deck_summary"`
	CriticalGaps     []Gap          `json:"critical_gaps"`
	Tasks            []ResearchTask `json:"tasks"`
	EstimatedCostUSD float64        `json:"estimated_cost_usd"`
}

// ResearchOnly returns the subset of tasks addressed to the research agent.
func (p *ResearchPlan) ResearchOnly() []ResearchTask {
	var out []ResearchTask
	for _, t := range p.Tasks {
		if t.Agent == RoleResearch {
			out = append(out, t)
		}
	}
	return out
}
