package scoring

import (
	"strings"

	"careeragent/internal/vocab"
)

type tier struct {
	score    Score
	keywords []string
}

// ReputationScorer is a static company-trust lookup. It does not depend
// on the candidate.
type ReputationScorer struct {
	tiers    []tier
	fallback Score
}

// NewReputationScorer copies the tiers. Order is preserved: the first
// tier with any hit wins, however specific a later keyword might be.
func NewReputationScorer(tiers []vocab.Tier, fallback float64) ReputationScorer {
	r := ReputationScorer{fallback: FromFloat(fallback)}
	for _, t := range tiers {
		r.tiers = append(r.tiers, tier{score: FromFloat(t.Score), keywords: lowerAll(t.Keywords)})
	}
	return r
}

// Score returns the first matching tier's score or the fallback.
func (r ReputationScorer) Score(company string) Score {
	name := strings.ToLower(strings.TrimSpace(company))
	for _, t := range r.tiers {
		if containsAny(name, t.keywords) {
			return t.score
		}
	}
	return r.fallback
}
