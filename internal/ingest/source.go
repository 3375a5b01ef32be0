// Package ingest fetches listings from job portals and stores the new ones.
package ingest

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"careeragent/internal/model"
)

// MaxPerSource caps how many listings one source contributes per search.
const MaxPerSource = 15

// Listing is one scraped opening before it becomes a stored Job.
type Listing struct {
	Company        string
	Role           string
	Location       string
	Stipend        string
	RequiredSkills string
	Deadline       string
	Link           string
	Source         string
	// Description is only used for red-flag filtering.
	Description string
}

// Job converts the listing into a fresh, unscored Job.
func (l Listing) Job() model.Job {
	j := model.Job{
		Company:        l.Company,
		Role:           l.Role,
		Location:       l.Location,
		Stipend:        l.Stipend,
		RequiredSkills: l.RequiredSkills,
		Deadline:       l.Deadline,
		Link:           l.Link,
		Source:         l.Source,
		Status:         model.DefaultStatus,
	}
	j.ApplyDefaults()
	return j
}

// Source is one job portal.
type Source interface {
	Name() string
	Fetch(ctx context.Context, keywords []string) ([]Listing, error)
}

// Source names accepted in SEARCH_SOURCES.
const (
	SourceInternshala = "internshala"
	SourceLinkedIn    = "linkedin"
	SourceRemoteOK    = "remoteok"
	SourceAdzuna      = "adzuna"
)

// AdzunaCredentials configures the Adzuna source.
type AdzunaCredentials struct {
	AppID   string
	AppKey  string
	Country string
}

// NewSources builds the named sources in order. Unknown names are an error.
func NewSources(names []string, f *Fetcher, adzuna AdzunaCredentials, log *zap.Logger) ([]Source, error) {
	out := make([]Source, 0, len(names))
	for _, n := range names {
		switch strings.ToLower(strings.TrimSpace(n)) {
		case SourceInternshala:
			out = append(out, NewInternshala(f))
		case SourceLinkedIn:
			out = append(out, NewLinkedIn(f))
		case SourceRemoteOK:
			out = append(out, NewRemoteOK(f))
		case SourceAdzuna:
			out = append(out, NewAdzuna(f, adzuna, log))
		default:
			return nil, fmt.Errorf("unknown search source %q", n)
		}
	}
	return out, nil
}

// Keywords picks the search terms for a profile: the first five skills,
// or the preferred roles when there are no skills.
func Keywords(p model.Profile) []string {
	if len(p.Skills) > 0 {
		n := min(len(p.Skills), 5)
		return append([]string(nil), p.Skills[:n]...)
	}
	if len(p.PreferredRoles) > 0 {
		return append([]string(nil), p.PreferredRoles...)
	}
	return []string{"software engineer"}
}

// squash collapses runs of whitespace, the way a browser renders text.
func squash(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func orDefault(s, def string) string {
	if s = squash(s); s != "" {
		return s
	}
	return def
}

func absolute(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "http") {
		return href
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(href, "/")
}
