package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const acceptJSON = "application/json"

// ─── RemoteOK ────────────────────────────────────────────────────────────────

// RemoteOK reads the public remoteok.com JSON feed and keeps the entries
// whose position or tags mention a keyword.
type RemoteOK struct {
	BaseURL string
	fetcher *Fetcher
}

// NewRemoteOK returns the RemoteOK source.
func NewRemoteOK(f *Fetcher) *RemoteOK {
	return &RemoteOK{BaseURL: "https://remoteok.com", fetcher: f}
}

func (s *RemoteOK) Name() string { return "RemoteOK" }

type remoteOKJob struct {
	ID          json.RawMessage `json:"id"`
	Position    string          `json:"position"`
	Company     string          `json:"company"`
	Location    string          `json:"location"`
	Tags        []string        `json:"tags"`
	URL         string          `json:"url"`
	Description string          `json:"description"`
	SalaryMin   float64         `json:"salary_min"`
	SalaryMax   float64         `json:"salary_max"`
}

func (s *RemoteOK) Fetch(ctx context.Context, keywords []string) ([]Listing, error) {
	body, err := s.fetcher.Get(ctx, strings.TrimSuffix(s.BaseURL, "/")+"/api", acceptJSON)
	if err != nil {
		return nil, err
	}

	// The first element is a legal notice, not a job.
	var jobs []remoteOKJob
	if err := json.Unmarshal(body, &jobs); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}

	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			lowered = append(lowered, k)
		}
	}

	var out []Listing
	for _, j := range jobs {
		if len(j.ID) == 0 || j.Position == "" {
			continue
		}
		haystack := strings.ToLower(j.Position + " " + strings.Join(j.Tags, " "))
		if !containsAnyKeyword(haystack, lowered) {
			continue
		}

		skills := strings.Join(j.Tags, ", ")
		if skills == "" {
			skills = strings.Join(keywords, ", ")
		}
		out = append(out, Listing{
			Company:        orDefault(j.Company, "Unknown"),
			Role:           squash(j.Position),
			Location:       orDefault(j.Location, "Remote"),
			Stipend:        salaryRange(int(j.SalaryMin), int(j.SalaryMax)),
			RequiredSkills: skills,
			Deadline:       "N/A",
			Link:           j.URL,
			Source:         s.Name(),
			Description:    j.Description,
		})
		if len(out) == MaxPerSource {
			break
		}
	}
	return out, nil
}

func containsAnyKeyword(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func salaryRange(lo, hi int) string {
	switch {
	case lo > 0 && hi > 0:
		return fmt.Sprintf("$%d - $%d", lo, hi)
	case lo > 0:
		return fmt.Sprintf("$%d+", lo)
	default:
		return "Not disclosed"
	}
}

// ─── Adzuna ──────────────────────────────────────────────────────────────────

const adzunaMaxPages = 3

// Adzuna fetches offers from the Adzuna public API.
// If AppID or AppKey is empty, Fetch returns (nil, nil) and the searcher
// simply gets nothing from this source.
type Adzuna struct {
	BaseURL string
	creds   AdzunaCredentials
	fetcher *Fetcher
	log     *zap.Logger
}

// NewAdzuna constructs the Adzuna source.
func NewAdzuna(f *Fetcher, creds AdzunaCredentials, log *zap.Logger) *Adzuna {
	if creds.Country == "" {
		creds.Country = "in"
	}
	return &Adzuna{
		BaseURL: "https://api.adzuna.com/v1/api/jobs",
		creds:   creds,
		fetcher: f,
		log:     log.Named("adzuna"),
	}
}

func (s *Adzuna) Name() string { return "Adzuna" }

// adzunaResponse mirrors the top-level Adzuna JSON response.
type adzunaResponse struct {
	Results []adzunaResult `json:"results"`
	Count   int            `json:"count"`
}

// adzunaResult mirrors a single Adzuna job listing.
type adzunaResult struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Company     named   `json:"company"`
	Location    named   `json:"location"`
	SalaryMin   float64 `json:"salary_min"`
	SalaryMax   float64 `json:"salary_max"`
	RedirectURL string  `json:"redirect_url"`
}

type named struct {
	DisplayName string `json:"display_name"`
}

// Fetch pages through results until MaxPerSource listings are collected,
// a short page arrives, or adzunaMaxPages is reached.
func (s *Adzuna) Fetch(ctx context.Context, keywords []string) ([]Listing, error) {
	if s.creds.AppID == "" || s.creds.AppKey == "" {
		s.log.Info("ADZUNA_APP_ID / ADZUNA_APP_KEY not set, skipping")
		return nil, nil
	}

	var out []Listing
	for page := 1; page <= adzunaMaxPages && len(out) < MaxPerSource; page++ {
		batch, err := s.fetchPage(ctx, keywords, page)
		if err != nil {
			return out, fmt.Errorf("page %d: %w", page, err)
		}
		out = append(out, batch...)
		if len(batch) < MaxPerSource {
			break
		}
	}
	if len(out) > MaxPerSource {
		out = out[:MaxPerSource]
	}
	return out, nil
}

func (s *Adzuna) fetchPage(ctx context.Context, keywords []string, page int) ([]Listing, error) {
	endpoint := fmt.Sprintf("%s/%s/search/%d", strings.TrimSuffix(s.BaseURL, "/"), s.creds.Country, page)

	params := url.Values{}
	params.Set("app_id", s.creds.AppID)
	params.Set("app_key", s.creds.AppKey)
	params.Set("results_per_page", strconv.Itoa(MaxPerSource))
	params.Set("what_or", strings.Join(keywords, " "))
	params.Set("sort_by", "date")

	body, err := s.fetcher.Get(ctx, endpoint+"?"+params.Encode(), acceptJSON)
	if err != nil {
		return nil, err
	}

	var resp adzunaResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}

	skills := strings.Join(keywords, ", ")
	out := make([]Listing, 0, len(resp.Results))
	for _, r := range resp.Results {
		stipend := "Not disclosed"
		if r.SalaryMin > 0 || r.SalaryMax > 0 {
			stipend = salaryRange(int(r.SalaryMin), int(r.SalaryMax))
		}
		out = append(out, Listing{
			Company:        orDefault(r.Company.DisplayName, "Unknown"),
			Role:           orDefault(r.Title, "Role"),
			Location:       orDefault(r.Location.DisplayName, "Remote"),
			Stipend:        stipend,
			RequiredSkills: skills,
			Deadline:       "N/A",
			Link:           r.RedirectURL,
			Source:         s.Name(),
			Description:    r.Description,
		})
	}
	return out, nil
}
