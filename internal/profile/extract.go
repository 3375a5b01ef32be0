// Package profile turns an uploaded resume into the stored candidate
// Profile.
package profile

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"careeragent/internal/model"
	"careeragent/internal/vocab"
)

// DefaultRole is used when no role keyword appears in the resume.
const DefaultRole = "Software Engineer"

// Extractor derives a Profile from resume text using keyword tables.
type Extractor struct {
	skills     []string
	domains    []vocab.Rule
	experience []vocab.Rule
	roles      []vocab.Rule
}

// NewExtractor copies the tables it needs from v.
func NewExtractor(v vocab.Vocabulary) *Extractor {
	return &Extractor{
		skills:     lowerAll(v.Skills),
		domains:    copyRules(v.Domains),
		experience: copyRules(v.ResumeExperience),
		roles:      copyRules(v.Roles),
	}
}

// Extract builds a Profile from plain resume text. It never fails; empty
// text yields an Entry profile with no skills.
func (e *Extractor) Extract(text string) model.Profile {
	lower := strings.ToLower(text)
	skills := e.detectSkills(lower)

	return model.Profile{
		Skills:          skills,
		Domains:         e.detectDomains(skills),
		ExperienceLevel: e.detectLevel(lower),
		PreferredRoles:  e.detectRoles(lower),
		Contact:         ExtractContact(text),
	}
}

func (e *Extractor) detectSkills(text string) []string {
	found := []string{}
	seen := map[string]bool{}
	for _, s := range e.skills {
		if !seen[s] && containsToken(text, s) {
			seen[s] = true
			found = append(found, s)
		}
	}
	sort.Strings(found)
	return found
}

// detectDomains keeps every domain with at least one keyword among the
// detected skills.
func (e *Extractor) detectDomains(skills []string) []string {
	have := make(map[string]bool, len(skills))
	for _, s := range skills {
		have[s] = true
	}
	domains := []string{}
	for _, r := range e.domains {
		for _, kw := range r.Keywords {
			if have[kw] {
				domains = append(domains, r.Name)
				break
			}
		}
	}
	return domains
}

// detectLevel returns the first rule with a hit, in table order.
func (e *Extractor) detectLevel(text string) string {
	for _, r := range e.experience {
		for _, kw := range r.Keywords {
			if containsToken(text, kw) {
				return r.Name
			}
		}
	}
	return model.LevelEntry
}

func (e *Extractor) detectRoles(text string) []string {
	var roles []string
	for _, r := range e.roles {
		for _, kw := range r.Keywords {
			if containsToken(text, kw) {
				roles = append(roles, r.Name)
				break
			}
		}
	}
	if len(roles) == 0 {
		return []string{DefaultRole}
	}
	return roles
}

// ─── Token matching ──────────────────────────────────────────────────────────

// isWordRune reports whether r continues a token. '+' and '#' count so
// that "c" does not match inside "c++" or "c#".
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#'
}

// containsToken reports whether kw occurs in text with no word rune
// directly before or after it. Both arguments must already be lower case.
func containsToken(text, kw string) bool {
	if kw == "" {
		return false
	}
	for from := 0; from <= len(text)-len(kw); {
		i := strings.Index(text[from:], kw)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(kw)
		if boundaryBefore(text, start, kw) && boundaryAfter(text, end, kw) {
			return true
		}
		from = start + 1
	}
	return false
}

func boundaryBefore(text string, start int, kw string) bool {
	if start == 0 {
		return true
	}
	first := []rune(kw)[0]
	if !isWordRune(first) {
		return true
	}
	prev := lastRune(text[:start])
	return !isWordRune(prev)
}

func boundaryAfter(text string, end int, kw string) bool {
	if end >= len(text) {
		return true
	}
	last := lastRune(kw)
	if !isWordRune(last) {
		return true
	}
	next := []rune(text[end:])[0]
	return !isWordRune(next)
}

func lastRune(s string) rune {
	r := []rune(s)
	return r[len(r)-1]
}

// ─── Contact details ─────────────────────────────────────────────────────────

var (
	emailRe    = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phoneRe    = regexp.MustCompile(`\+?\d[\d\s\-()]{8,}\d`)
	linkedInRe = regexp.MustCompile(`(?i)(?:https?://)?(?:[a-z]{2,3}\.)?linkedin\.com/in/[A-Za-z0-9_\-%]+/?`)
	gitHubRe   = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?github\.com/[A-Za-z0-9_\-]+/?`)
)

// ExtractContact pulls the candidate's contact block out of resume text.
// Missing fields stay empty.
func ExtractContact(text string) model.Contact {
	c := model.Contact{
		Email:       emailRe.FindString(text),
		LinkedInURL: normalizeURL(linkedInRe.FindString(text)),
		GitHubURL:   normalizeURL(gitHubRe.FindString(text)),
	}
	for _, p := range phoneRe.FindAllString(text, -1) {
		if n := countDigits(p); n >= 10 && n <= 15 {
			c.Phone = strings.Join(strings.Fields(p), " ")
			break
		}
	}
	c.FullName = guessName(text)
	return c
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

func normalizeURL(u string) string {
	if u == "" {
		return ""
	}
	u = strings.TrimSuffix(u, "/")
	if !strings.HasPrefix(strings.ToLower(u), "http") {
		u = "https://" + u
	}
	return u
}

// guessName returns the first non-blank line when it looks like a name:
// two to four words made of letters.
func guessName(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		words := strings.Fields(line)
		if len(words) < 2 || len(words) > 4 {
			return ""
		}
		for _, w := range words {
			for _, r := range w {
				if !unicode.IsLetter(r) && r != '.' && r != '-' && r != '\'' {
					return ""
				}
			}
		}
		return strings.Join(words, " ")
	}
	return ""
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

func copyRules(in []vocab.Rule) []vocab.Rule {
	out := make([]vocab.Rule, len(in))
	for i, r := range in {
		out[i] = vocab.Rule{Name: r.Name, Keywords: lowerAll(r.Keywords)}
	}
	return out
}
