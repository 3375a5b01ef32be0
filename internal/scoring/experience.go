package scoring

import (
	"strings"

	"careeragent/internal/model"
)

// Experience fit scores.
const (
	ExpExact       Score = 10000
	ExpOverEntry   Score = 6000
	ExpUnderSenior Score = 5000
	ExpDefault     Score = 8000
)

// ExperienceScorer rates how a candidate's level fits a role title.
type ExperienceScorer struct {
	entry  []string
	senior []string
}

// NewExperienceScorer copies the keyword lists.
func NewExperienceScorer(entry, senior []string) ExperienceScorer {
	return ExperienceScorer{entry: lowerAll(entry), senior: lowerAll(senior)}
}

// Score applies the rule table. Entry keywords are checked first, so a
// title carrying both kinds resolves as an entry role.
func (e ExperienceScorer) Score(level, role string) Score {
	title := strings.ToLower(role)
	lvl := strings.ToLower(strings.TrimSpace(level))

	switch {
	case containsAny(title, e.entry):
		if lvl == strings.ToLower(model.LevelEntry) {
			return ExpExact
		}
		return ExpOverEntry
	case containsAny(title, e.senior):
		if lvl == strings.ToLower(model.LevelSenior) {
			return ExpExact
		}
		return ExpUnderSenior
	default:
		return ExpDefault
	}
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
