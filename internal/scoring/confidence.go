package scoring

import (
	"careeragent/internal/tracker"
	"careeragent/internal/vocab"
)

// Aggregator combines the three match scores with integer percent weights
// that sum to 100.
type Aggregator struct {
	skill, domain, experience int64
}

// NewAggregator copies the weights. They are validated by vocab.
func NewAggregator(w vocab.Weights) Aggregator {
	return Aggregator{skill: int64(w.Skill), domain: int64(w.Domain), experience: int64(w.Experience)}
}

// Confidence is the weighted sum, rounded half up to hundredths once.
// Inputs outside 0–100 are clamped first, so the result always is too.
func (a Aggregator) Confidence(skill, domain, experience Score) Score {
	sum := a.skill*int64(skill.Clamp()) +
		a.domain*int64(domain.Clamp()) +
		a.experience*int64(experience.Clamp())
	return Score(divRound(sum, 100))
}

// Thresholds for Categorize.
const (
	highAbove = Score(8000)
	goodFrom  = Score(6000)
)

// Categorize maps a confidence to an automatic bucket. Exactly 80 is a
// Good Match; exactly 60 is a Good Match too.
func Categorize(confidence Score) tracker.Bucket {
	switch {
	case confidence > highAbove:
		return tracker.BucketHigh
	case confidence >= goodFrom:
		return tracker.BucketGood
	default:
		return tracker.BucketStretch
	}
}
