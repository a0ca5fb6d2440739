package match

import (
	"fmt"

	"github.com/sells-group/diligence-cli/internal/model"
)

// sourceDeck tags evidence tasks as originating from the pitch deck.
const sourceDeck = "pitch_deck"

// BuildValidationPlan creates one validation task per deck claim and
// one per founder, each carrying its matched evidence. Founder tasks
// additionally carry red flags so negative signal survives even when
// the claim text alone would not surface it.
func BuildValidationPlan(facts *model.DeckFacts, results []model.ResearchResult, strategy Strategy) *model.ValidationPlan {
	var (
		tasks   []model.ValidationTask
		counter int
	)
	nextID := func() string {
		counter++
		return fmt.Sprintf("V%03d", counter)
	}

	for _, claim := range facts.Claims {
		matched := strategy.Match(claim, results)
		evidence := make([]model.MatchedEvidence, 0, len(matched))
		for _, res := range matched {
			evidence = append(evidence, model.MatchedEvidence{
				TaskID:     res.TaskID,
				Query:      res.Query,
				Findings:   res.KeyFindings,
				Confidence: res.Confidence,
			})
		}
		tasks = append(tasks, model.ValidationTask{
			ValidationID:         nextID(),
			Claim:                claim,
			Source:               sourceDeck,
			Evidence:             evidence,
			RequiresVerification: true,
		})
	}

	for _, founder := range facts.Founders {
		matched := strategy.MatchFounder(founder, results)
		evidence := make([]model.MatchedEvidence, 0, len(matched))
		for _, res := range matched {
			evidence = append(evidence, model.MatchedEvidence{
				TaskID:     res.TaskID,
				Query:      res.Query,
				Findings:   res.KeyFindings,
				RedFlags:   res.RedFlags,
				Confidence: res.Confidence,
			})
		}
		tasks = append(tasks, model.ValidationTask{
			ValidationID:         nextID(),
			Claim:                fmt.Sprintf("Founder %s has relevant background", founder),
			Source:               sourceDeck,
			Evidence:             evidence,
			RequiresVerification: true,
		})
	}

	return &model.ValidationPlan{
		CompanyName: facts.CompanyName,
		Tasks:       tasks,
		TotalTasks:  len(tasks),
	}
}
