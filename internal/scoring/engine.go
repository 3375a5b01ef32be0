package scoring

import (
	"careeragent/internal/model"
	"careeragent/internal/tracker"
	"careeragent/internal/vocab"
)

// Result is everything the engine computes for one job.
type Result struct {
	MatchedSkills []string
	Skill         Score
	Domain        Score
	Experience    Score
	Confidence    Score
	Reputation    Score
	Bucket        tracker.Bucket
}

// Engine bundles the scorers built from one vocabulary. It holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	experience ExperienceScorer
	reputation ReputationScorer
	aggregator Aggregator
}

// NewEngine builds the scorers from v.
func NewEngine(v vocab.Vocabulary) *Engine {
	return &Engine{
		experience: NewExperienceScorer(v.EntryRoleKeywords, v.SeniorRoleKeywords),
		reputation: NewReputationScorer(v.ReputationTiers, v.DefaultReputation),
		aggregator: NewAggregator(v.Weights),
	}
}

// Evaluate scores one job against the profile. It never fails: empty
// fields map to the neutral values of each scorer.
func (e *Engine) Evaluate(p model.Profile, j model.Job) Result {
	matched, skill := MatchSkills(p.Skills, SplitSkills(j.RequiredSkills))
	domain := DomainAffinity(p.Domains, j.RequiredSkills)
	exp := e.experience.Score(p.ExperienceLevel, j.Role)
	conf := e.aggregator.Confidence(skill, domain, exp)

	return Result{
		MatchedSkills: matched,
		Skill:         skill,
		Domain:        domain,
		Experience:    exp,
		Confidence:    conf,
		Reputation:    e.reputation.Score(j.Company),
		Bucket:        Categorize(conf),
	}
}
