package ingest

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"careeragent/internal/events"
	"careeragent/internal/model"
	"careeragent/internal/store"
)

// MaxConcurrentFetches bounds how many sources are fetched at once.
const MaxConcurrentFetches = 4

// Searcher runs every source for a profile and stores the new listings.
// It fetches concurrently, filters red flags, deduplicates by job hash and
// inserts jobs at status New with zero scores.
type Searcher struct {
	sources  []Source
	store    store.Store
	pub      events.Publisher
	log      *zap.Logger
	redFlags []string
}

// NewSearcher constructs a Searcher.
func NewSearcher(sources []Source, st store.Store, pub events.Publisher, redFlags []string, log *zap.Logger) *Searcher {
	return &Searcher{
		sources:  sources,
		store:    st,
		pub:      pub,
		log:      log.Named("ingest"),
		redFlags: redFlags,
	}
}

// Search runs one search cycle and returns the number of jobs inserted.
// A failing source is logged and skipped.
func (s *Searcher) Search(ctx context.Context, p model.Profile) (int, error) {
	keywords := Keywords(p)
	s.log.Info("search started", zap.Strings("keywords", keywords), zap.Int("sources", len(s.sources)))

	results := make([][]Listing, len(s.sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(MaxConcurrentFetches)
	for i, src := range s.sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			listings, err := src.Fetch(gctx, keywords)
			if err != nil {
				// Source errors are absorbed; only cancellation stops the group.
				s.log.Warn("source failed, continuing", zap.String("source", src.Name()), zap.Error(err))
			}
			if len(listings) > MaxPerSource {
				listings = listings[:MaxPerSource]
			}
			s.log.Info("source done", zap.String("source", src.Name()), zap.Int("found", len(listings)))
			results[i] = listings
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var (
		found, filtered, dupes int
		seen                   = map[string]bool{}
		jobs                   []model.Job
	)
	for _, batch := range results {
		for _, l := range batch {
			found++
			if ContainsRedFlag(l, s.redFlags) {
				filtered++
				continue
			}
			j := l.Job()
			if seen[j.JobHash] {
				dupes++
				continue
			}
			seen[j.JobHash] = true
			jobs = append(jobs, j)
		}
	}

	inserted := 0
	if len(jobs) > 0 {
		n, err := s.store.InsertJobs(ctx, jobs)
		if err != nil {
			return 0, fmt.Errorf("insert jobs: %w", err)
		}
		inserted = n
	}

	s.log.Info("search complete",
		zap.Int("found", found),
		zap.Int("inserted", inserted),
		zap.Int("filtered", filtered),
		zap.Int("duplicates", dupes+len(jobs)-inserted),
	)
	if inserted > 0 {
		s.pub.Publish(ctx, events.JobsDiscovered, map[string]any{
			"found":    found,
			"inserted": inserted,
		})
	}
	return inserted, nil
}
