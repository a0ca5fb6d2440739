package model

// ValidationStatus is the verification outcome of a single claim.
type ValidationStatus string

const (
	StatusVerified     ValidationStatus = "verified"
	StatusContradicted ValidationStatus = "contradicted"
	StatusUnverified   ValidationStatus = "unverified"
	StatusSuspicious   ValidationStatus = "suspicious"
)

// Valid reports whether s is one of the four recognized statuses.
func (s ValidationStatus) Valid() bool {
	switch s {
	case StatusVerified, StatusContradicted, StatusUnverified, StatusSuspicious:
		return true
	}
	return false
}

// Negative reports whether the status indicates a problem with the claim.
func (s ValidationStatus) Negative() bool {
	return s == StatusContradicted || s == StatusSuspicious
}

// Severity ranks how disqualifying a validation outcome would be.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Valid reports whether v is one of the four recognized severities.
func (v Severity) Valid() bool {
	switch v {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow:
		return true
	}
	return false
}

// Elevated reports whether the severity warrants top-line reporting.
func (v Severity) Elevated() bool {
	return v == SeverityCritical || v == SeverityHigh
}

// MatchedEvidence is a research result associated with a claim by the
// matcher, carrying only the fields the validator needs.
type MatchedEvidence struct {
	TaskID     string   `json:"task_id"`
	Query      string   `json:"query"`
	Findings   []string `json:"findings"`
	RedFlags   []string `json:"red_flags,omitempty"`
	Confidence float64  `json:"confidence"`
}

// ValidationTask is one claim queued for verification.
type ValidationTask struct {
	ValidationID         string            `json:"validation_id"`
	Claim                string            `json:"claim"`
	Source               string            `json:"source"`
	Evidence             []MatchedEvidence `json:"evidence"`
	RequiresVerification bool              `json:"requires_verification"`
}

// ValidationPlan is the persisted artifact between the matcher and the
// validation stage.
type ValidationPlan struct {
	CompanyName string           `json:"company_name"`
	Tasks       []ValidationTask `json:"validation_tasks"`
	TotalTasks  int              `json:"total_tasks"`
}

// ValidationResult is the classification of one claim.
type ValidationResult struct {
	ValidationID    string           `json:"validation_id"`
	Claim           string           `json:"claim"`
	Status          ValidationStatus `json:"status"`
	Severity        Severity         `json:"severity"`
	EvidenceFor     []string         `json:"evidence_for"`
	EvidenceAgainst []string         `json:"evidence_against"`
	Reasoning       string           `json:"reasoning"`
	Confidence      float64          `json:"confidence"`
	Recommendation  string           `json:"recommendation"`
}

// CriticalIssue reports whether the result belongs in the report's
// critical-issue list: a negative status at elevated severity.
func (r ValidationResult) CriticalIssue() bool {
	return r.Status.Negative() && r.Severity.Elevated()
}

// ValidationResults is the persisted artifact for a completed
// validation stage.
type ValidationResults struct {
	CompanyName string             `json:"company_name"`
	Results     []ValidationResult `json:"results"`
}
