// Package pipeline chains search, scoring and outreach into the runs the
// API, the CLI and the scheduler trigger.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/flock"
	"go.uber.org/zap"

	"careeragent/internal/model"
	"careeragent/internal/outreach"
	"careeragent/internal/scoring"
	"careeragent/internal/store"
)

// ErrBusy is returned when another run, possibly in another process,
// holds the pipeline lock.
var ErrBusy = errors.New("pipeline run already in progress")

// Searcher fetches new listings for a profile and stores them.
type Searcher interface {
	Search(ctx context.Context, p model.Profile) (int, error)
}

// Scorer rescores every stored job.
type Scorer interface {
	ScoreAll(ctx context.Context, p model.Profile) (int, error)
}

// Mailer sends one application email.
type Mailer interface {
	Send(ctx context.Context, req outreach.SendRequest) (*outreach.Result, error)
}

// SearchResult summarises a search run.
type SearchResult struct {
	NewJobs int `json:"new_jobs_count"`
	Scored  int `json:"scored_count"`
}

// DailyResult summarises a daily run. Email is nil when nothing was sent.
type DailyResult struct {
	SearchResult
	Email *outreach.Result `json:"email,omitempty"`
}

// Runner serialises pipeline runs behind a file lock.
type Runner struct {
	store    store.Store
	searcher Searcher
	scorer   Scorer
	mailer   Mailer
	lock     *flock.Flock
	log      *zap.Logger
}

// NewRunner returns a Runner that locks lockPath for the duration of a run.
func NewRunner(st store.Store, searcher Searcher, scorer Scorer, mailer Mailer, lockPath string, log *zap.Logger) *Runner {
	return &Runner{
		store:    st,
		searcher: searcher,
		scorer:   scorer,
		mailer:   mailer,
		lock:     flock.New(lockPath),
		log:      log.Named("pipeline"),
	}
}

// Search fetches new listings and rescores everything.
func (r *Runner) Search(ctx context.Context) (*SearchResult, error) {
	var res *SearchResult
	err := r.locked(func() error {
		p, err := r.profile(ctx)
		if err != nil {
			return err
		}
		res, err = r.searchAndScore(ctx, *p)
		return err
	})
	return res, err
}

// Score rescores every stored job against the stored profile.
func (r *Runner) Score(ctx context.Context) (int, error) {
	var n int
	err := r.locked(func() error {
		p, err := r.profile(ctx)
		if err != nil {
			return err
		}
		n, err = r.scorer.ScoreAll(ctx, *p)
		return err
	})
	return n, err
}

// Daily runs search, scoring and a single outreach email. A missing
// profile or an empty shortlist is not an error.
func (r *Runner) Daily(ctx context.Context) (*DailyResult, error) {
	res := &DailyResult{}
	err := r.locked(func() error {
		r.log.Info("daily pipeline started")

		p, err := r.profile(ctx)
		if errors.Is(err, scoring.ErrNoProfile) {
			r.log.Warn("no profile uploaded, skipping daily run")
			return nil
		}
		if err != nil {
			return err
		}

		sr, err := r.searchAndScore(ctx, *p)
		if err != nil {
			return err
		}
		res.SearchResult = *sr

		sent, err := r.mailer.Send(ctx, outreach.SendRequest{})
		switch {
		case errors.Is(err, outreach.ErrNoEligibleJob):
			r.log.Info("no eligible job to email")
		case err != nil:
			return fmt.Errorf("outreach: %w", err)
		default:
			res.Email = sent
		}

		r.log.Info("daily pipeline complete",
			zap.Int("newJobs", res.NewJobs), zap.Int("scored", res.Scored), zap.Bool("emailed", res.Email != nil))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *Runner) searchAndScore(ctx context.Context, p model.Profile) (*SearchResult, error) {
	found, err := r.searcher.Search(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	scored, err := r.scorer.ScoreAll(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("score: %w", err)
	}
	return &SearchResult{NewJobs: found, Scored: scored}, nil
}

func (r *Runner) profile(ctx context.Context) (*model.Profile, error) {
	p, err := r.store.GetProfile(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return nil, scoring.ErrNoProfile
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return p, nil
}

func (r *Runner) locked(fn func() error) error {
	ok, err := r.lock.TryLock()
	if err != nil {
		return fmt.Errorf("lock %s: %w", r.lock.Path(), err)
	}
	if !ok {
		return ErrBusy
	}
	defer func() {
		if err := r.lock.Unlock(); err != nil {
			r.log.Warn("unlock failed", zap.Error(err))
		}
	}()
	return fn()
}
