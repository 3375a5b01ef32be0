// Package vocab holds the keyword tables the extractor and scorers work from.
//
// A Vocabulary is plain data. Consumers copy what they need at construction
// time, so one deployment can swap tables (or a test can shrink them)
// without touching any scoring logic.
package vocab

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rule maps a label to the keywords that signal it.
type Rule struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// Tier is one reputation band. Tiers are checked in order.
type Tier struct {
	Score    float64  `yaml:"score"`
	Keywords []string `yaml:"keywords"`
}

// Weights are the aggregator coefficients in percent. They must sum to 100.
type Weights struct {
	Skill      int `yaml:"skill"`
	Domain     int `yaml:"domain"`
	Experience int `yaml:"experience"`
}

// Vocabulary is the full set of keyword tables.
type Vocabulary struct {
	Skills             []string `yaml:"skills"`
	Domains            []Rule   `yaml:"domains"`
	ResumeExperience   []Rule   `yaml:"resume_experience"`
	Roles              []Rule   `yaml:"roles"`
	EntryRoleKeywords  []string `yaml:"entry_role_keywords"`
	SeniorRoleKeywords []string `yaml:"senior_role_keywords"`
	ReputationTiers    []Tier   `yaml:"reputation_tiers"`
	DefaultReputation  float64  `yaml:"default_reputation"`
	Weights            Weights  `yaml:"weights"`
}

// Load reads a YAML file and overlays every non-empty table on Default().
// An empty path returns the defaults.
func Load(path string) (Vocabulary, error) {
	v := Default()
	if path == "" {
		return v, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("read vocabulary: %w", err)
	}

	var overlay Vocabulary
	if err := yaml.Unmarshal(b, &overlay); err != nil {
		return Vocabulary{}, fmt.Errorf("parse vocabulary %s: %w", path, err)
	}

	if len(overlay.Skills) > 0 {
		v.Skills = overlay.Skills
	}
	if len(overlay.Domains) > 0 {
		v.Domains = overlay.Domains
	}
	if len(overlay.ResumeExperience) > 0 {
		v.ResumeExperience = overlay.ResumeExperience
	}
	if len(overlay.Roles) > 0 {
		v.Roles = overlay.Roles
	}
	if len(overlay.EntryRoleKeywords) > 0 {
		v.EntryRoleKeywords = overlay.EntryRoleKeywords
	}
	if len(overlay.SeniorRoleKeywords) > 0 {
		v.SeniorRoleKeywords = overlay.SeniorRoleKeywords
	}
	if len(overlay.ReputationTiers) > 0 {
		v.ReputationTiers = overlay.ReputationTiers
	}
	if overlay.DefaultReputation != 0 {
		v.DefaultReputation = overlay.DefaultReputation
	}
	if overlay.Weights != (Weights{}) {
		v.Weights = overlay.Weights
	}

	if err := v.Validate(); err != nil {
		return Vocabulary{}, fmt.Errorf("vocabulary %s: %w", path, err)
	}
	return v, nil
}

// Validate checks the tables are usable by the scorers.
func (v Vocabulary) Validate() error {
	var errs []error

	w := v.Weights
	if w.Skill < 0 || w.Domain < 0 || w.Experience < 0 {
		errs = append(errs, errors.New("weights must be non-negative"))
	}
	if sum := w.Skill + w.Domain + w.Experience; sum != 100 {
		errs = append(errs, fmt.Errorf("weights must sum to 100, got %d", sum))
	}

	prev := 101.0
	for i, t := range v.ReputationTiers {
		if t.Score < 0 || t.Score > 100 {
			errs = append(errs, fmt.Errorf("reputation tier %d: score %.2f out of range", i+1, t.Score))
		}
		if t.Score >= prev {
			errs = append(errs, fmt.Errorf("reputation tier %d: scores must strictly descend", i+1))
		}
		prev = t.Score
		if blank(t.Keywords) {
			errs = append(errs, fmt.Errorf("reputation tier %d: empty keyword", i+1))
		}
	}
	if v.DefaultReputation < 0 || v.DefaultReputation > 100 {
		errs = append(errs, fmt.Errorf("default reputation %.2f out of range", v.DefaultReputation))
	}

	if blank(v.Skills) || blank(v.EntryRoleKeywords) || blank(v.SeniorRoleKeywords) {
		errs = append(errs, errors.New("keyword lists must not contain empty entries"))
	}
	for _, group := range [][]Rule{v.Domains, v.ResumeExperience, v.Roles} {
		for _, r := range group {
			if strings.TrimSpace(r.Name) == "" || blank(r.Keywords) {
				errs = append(errs, fmt.Errorf("rule %q: empty name or keyword", r.Name))
			}
		}
	}

	return errors.Join(errs...)
}

func blank(words []string) bool {
	for _, w := range words {
		if strings.TrimSpace(w) == "" {
			return true
		}
	}
	return false
}
