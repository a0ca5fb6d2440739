package model

// AcquisitionMethod records which fetch tier produced an evidence source.
type AcquisitionMethod string

const (
	MethodRender AcquisitionMethod = "render"
	MethodHTTP   AcquisitionMethod = "http"
	MethodNone   AcquisitionMethod = "none"
)

// EvidenceSource is one fetched web source. Content is empty and Method
// is MethodNone when both fetch tiers failed; that is a normal
// low-information result, not an error.
type EvidenceSource struct {
	URL     string            `json:"url"`
	Title   string            `json:"title"`
	Snippet string            `json:"snippet"`
	Content string            `json:"content"`
	Method  AcquisitionMethod `json:"method"`
}

// Success reports whether the source carries usable content.
func (s EvidenceSource) Success() bool {
	return s.Method != MethodNone && s.Content != ""
}

// ResultStatus is the outcome of a single research task.
type ResultStatus string

const (
	ResultSuccess ResultStatus = "success"
	ResultPartial ResultStatus = "partial"
	ResultFailed  ResultStatus = "failed"
)

// ResearchResult holds everything a research task produced. Created once
// per task and never mutated afterwards.
type ResearchResult struct {
	TaskID      string           `json:"task_id"`
	Query       string           `json:"query"`
	Status      ResultStatus     `json:"status"`
	Sources     []EvidenceSource `json:"sources"`
	Summary     string           `json:"summary"`
	KeyFindings []string         `json:"key_findings"`
	RedFlags    []string         `json:"red_flags"`
	Confidence  float64          `json:"confidence_score"`
}

// ResearchResults is the persisted artifact for a completed research stage.
type ResearchResults struct {
	CompanyName string           `json:"company_name"`
	CompletedAt string           `json:"completed_at"`
	TotalCost   float64          `json:"total_cost_usd"`
	Results     []ResearchResult `json:"results"`
}
