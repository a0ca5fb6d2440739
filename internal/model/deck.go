package model

import "strings"

// DeckFacts holds the structured information extracted from a pitch deck.
// It is produced once by the deck analyzer and treated as read-only by
// every later stage.
type DeckFacts struct {
	CompanyName          string   `json:"company_name"`
	Tagline              string   `json:"tagline"`
	Founders             []string `json:"founders"`
	Stage                string   `json:"stage"`
	FundingAsk           string   `json:"funding_ask"`
	Problem              string   `json:"problem"`
	Solution             string   `json:"solution"`
	Traction             string   `json:"traction"`
	Claims               []string `json:"claims"`
	TeamInfo             string   `json:"team_info"`
	CompetitorsMentioned []string `json:"competitors_mentioned"`
	Website              string   `json:"website"`
}

// GapPriority is the importance marker embedded in a gap string.
type GapPriority string

const (
	GapCritical GapPriority = "critical"
	GapHigh     GapPriority = "high"
	GapMedium   GapPriority = "medium"
)

// Gap describes a missing or suspicious fact identified during deck
// analysis, e.g. "CRITICAL: Claims 10k users but no traction metrics".
type Gap string

// Priority extracts the embedded priority marker. Gaps without a
// recognized marker rank as medium.
func (g Gap) Priority() GapPriority {
	s := strings.ToUpper(string(g))
	switch {
	case strings.HasPrefix(s, "CRITICAL"):
		return GapCritical
	case strings.HasPrefix(s, "HIGH"):
		return GapHigh
	default:
		return GapMedium
	}
}
