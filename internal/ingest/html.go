package ingest

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const acceptHTML = "text/html,application/xhtml+xml"

// ─── Internshala ─────────────────────────────────────────────────────────────

// Internshala scrapes the public internship search pages.
type Internshala struct {
	BaseURL string
	fetcher *Fetcher
}

// NewInternshala returns the Internshala source.
func NewInternshala(f *Fetcher) *Internshala {
	return &Internshala{BaseURL: "https://internshala.com", fetcher: f}
}

func (s *Internshala) Name() string { return "Internshala" }

func (s *Internshala) Fetch(ctx context.Context, keywords []string) ([]Listing, error) {
	slugs := make([]string, 0, 3)
	for _, k := range keywords[:min(len(keywords), 3)] {
		slugs = append(slugs, url.PathEscape(strings.ReplaceAll(strings.ToLower(k), " ", "-")))
	}
	endpoint := fmt.Sprintf("%s/internships/%s-internship", strings.TrimSuffix(s.BaseURL, "/"), strings.Join(slugs, "-"))

	body, err := s.fetcher.Get(ctx, endpoint, acceptHTML)
	if err != nil {
		return nil, err
	}
	return s.parse(body, keywords)
}

func (s *Internshala) parse(body []byte, keywords []string) ([]Listing, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	skills := strings.Join(keywords, ", ")
	var out []Listing
	doc.Find(".individual_internship").EachWithBreak(func(_ int, card *goquery.Selection) bool {
		l := Listing{
			Company:        orDefault(card.Find(".company_name a, .company_name, .link_display_like_text").First().Text(), "Unknown"),
			Role:           orDefault(card.Find(".job-internship-name a, h3.job-internship-name, .profile a").First().Text(), "Internship"),
			Location:       orDefault(card.Find("#location_names span, .location_link a, a.location_link").First().Text(), "Remote"),
			Stipend:        orDefault(card.Find(".stipend, span.desktop-text").First().Text(), "Unpaid"),
			RequiredSkills: skills,
			Deadline:       "N/A",
			Source:         s.Name(),
		}
		if href, ok := card.Find("a.view_detail_button, .job-internship-name a, .profile a").First().Attr("href"); ok {
			l.Link = absolute(s.BaseURL, href)
		}
		out = append(out, l)
		return len(out) < MaxPerSource
	})
	return out, nil
}

// ─── LinkedIn ────────────────────────────────────────────────────────────────

// LinkedIn scrapes the guest job search page, which needs no login.
type LinkedIn struct {
	BaseURL string
	fetcher *Fetcher
}

// NewLinkedIn returns the LinkedIn source.
func NewLinkedIn(f *Fetcher) *LinkedIn {
	return &LinkedIn{BaseURL: "https://www.linkedin.com", fetcher: f}
}

func (s *LinkedIn) Name() string { return "LinkedIn" }

func (s *LinkedIn) Fetch(ctx context.Context, keywords []string) ([]Listing, error) {
	params := url.Values{}
	params.Set("keywords", strings.Join(keywords[:min(len(keywords), 3)], " "))
	params.Set("location", "India")
	params.Set("f_TPR", "r2592000")
	endpoint := strings.TrimSuffix(s.BaseURL, "/") + "/jobs/search/?" + params.Encode()

	body, err := s.fetcher.Get(ctx, endpoint, acceptHTML)
	if err != nil {
		return nil, err
	}
	return s.parse(body, keywords)
}

func (s *LinkedIn) parse(body []byte, keywords []string) ([]Listing, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	skills := strings.Join(keywords, ", ")
	var out []Listing
	doc.Find(".base-card, .job-search-card, .base-search-card").EachWithBreak(func(_ int, card *goquery.Selection) bool {
		l := Listing{
			Company:        orDefault(card.Find(".base-search-card__subtitle").First().Text(), "Unknown"),
			Role:           orDefault(card.Find(".base-search-card__title").First().Text(), "Role"),
			Location:       orDefault(card.Find(".job-search-card__location").First().Text(), "India"),
			Stipend:        "Not disclosed",
			RequiredSkills: skills,
			Deadline:       "N/A",
			Source:         s.Name(),
		}
		if href, ok := card.Find("a.base-card__full-link, a[href*='/jobs/view']").First().Attr("href"); ok {
			l.Link, _, _ = strings.Cut(absolute(s.BaseURL, href), "?")
		}
		out = append(out, l)
		return len(out) < MaxPerSource
	})
	return out, nil
}
