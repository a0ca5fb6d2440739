// Package match associates research results with the claims and
// founders they bear on. The default strategy is a deliberately simple
// keyword-overlap heuristic; it is pluggable so an embedding-based
// matcher can replace it without touching downstream stages.
package match

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/sells-group/diligence-cli/internal/model"
)

// claimTokenWindow is how many leading claim tokens participate in
// overlap matching. Known precision gap: generic leading words
// over-match and paraphrased claims under-match.
const claimTokenWindow = 3

// Strategy selects the evidence relevant to a claim or founder. Both
// operations return a subset of the pool, order preserved.
type Strategy interface {
	Match(claim string, pool []model.ResearchResult) []model.ResearchResult
	MatchFounder(founder string, pool []model.ResearchResult) []model.ResearchResult
}

// KeywordMatcher matches on case-folded token overlap between the
// claim's first tokens and the research query.
type KeywordMatcher struct {
	fold cases.Caser
}

// NewKeywordMatcher creates the default matching strategy.
func NewKeywordMatcher() *KeywordMatcher {
	return &KeywordMatcher{fold: cases.Fold()}
}

// Match returns every result whose query shares at least one folded
// token with the claim's first three whitespace-separated tokens.
func (m *KeywordMatcher) Match(claim string, pool []model.ResearchResult) []model.ResearchResult {
	tokens := strings.Fields(m.fold.String(claim))
	if len(tokens) > claimTokenWindow {
		tokens = tokens[:claimTokenWindow]
	}

	var out []model.ResearchResult
	for _, res := range pool {
		query := m.fold.String(res.Query)
		for _, tok := range tokens {
			if strings.Contains(query, tok) {
				out = append(out, res)
				break
			}
		}
	}
	return out
}

// MatchFounder returns every result whose query contains the founder's
// name as a case-insensitive substring.
func (m *KeywordMatcher) MatchFounder(founder string, pool []model.ResearchResult) []model.ResearchResult {
	needle := m.fold.String(founder)

	var out []model.ResearchResult
	for _, res := range pool {
		if strings.Contains(m.fold.String(res.Query), needle) {
			out = append(out, res)
		}
	}
	return out
}
