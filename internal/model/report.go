package model

// Recommendation is the final investment call.
type Recommendation string

const (
	RecommendPass    Recommendation = "PASS"
	RecommendCaution Recommendation = "PROCEED_WITH_CAUTION"
	RecommendReject  Recommendation = "REJECT"
)

// ParseRecommendation normalizes free text into a Recommendation. The
// recommendation may arrive embedded in a justification sentence
// ("REJECT - multiple contradicted claims"), so matching is by prefix.
// Unrecognized values map to PROCEED_WITH_CAUTION, the safest default.
func ParseRecommendation(s string) Recommendation {
	switch {
	case hasPrefixFold(s, string(RecommendReject)):
		return RecommendReject
	case hasPrefixFold(s, string(RecommendPass)):
		return RecommendPass
	case hasPrefixFold(s, string(RecommendCaution)):
		return RecommendCaution
	default:
		return RecommendCaution
	}
}

func hasPrefixFold(s, prefix string) bool {
	if len(s) < len(prefix) {
		return false
	}
	for i := 0; i < len(prefix); i++ {
		a, b := s[i], prefix[i]
		if 'a' <= a && a <= 'z' {
			a -= 'a' - 'A'
		}
		if 'a' <= b && b <= 'z' {
			b -= 'a' - 'A'
		}
		if a != b {
			return false
		}
	}
	return true
}

// CriticalIssue is one top-line problem surfaced in the report.
type CriticalIssue struct {
	Claim          string           `json:"claim"`
	Status         ValidationStatus `json:"status"`
	Severity       Severity         `json:"severity"`
	Reasoning      string           `json:"reasoning"`
	Recommendation string           `json:"recommendation"`
}

// ValidationReport is the terminal artifact of the pipeline. Never
// mutated after construction.
type ValidationReport struct {
	CompanyName       string             `json:"company_name"`
	TotalClaims       int                `json:"total_claims_checked"`
	VerifiedCount     int                `json:"verified"`
	ContradictedCount int                `json:"contradicted"`
	UnverifiedCount   int                `json:"unverified"`
	SuspiciousCount   int                `json:"suspicious"`
	CriticalIssues    []CriticalIssue    `json:"critical_issues"`
	Results           []ValidationResult `json:"validation_results"`
	OverallAssessment string             `json:"overall_assessment"`
	Recommendation    Recommendation     `json:"investment_recommendation"`
	Justification     string             `json:"justification"`
}

// CountsConsistent verifies the per-status counts sum to the total.
// A mismatch is a programming defect, not recoverable input.
func (r *ValidationReport) CountsConsistent() bool {
	return r.VerifiedCount+r.ContradictedCount+r.UnverifiedCount+r.SuspiciousCount == r.TotalClaims
}
