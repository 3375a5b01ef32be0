package scoring

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"careeragent/internal/events"
	"careeragent/internal/model"
	"careeragent/internal/store"
	"careeragent/internal/tracker"
)

// ErrNoProfile is returned when scoring is requested before any resume
// has been uploaded.
var ErrNoProfile = errors.New("no profile found")

// Service runs full scoring passes over the stored jobs.
type Service struct {
	store  store.Store
	engine *Engine
	pub    events.Publisher
	log    *zap.Logger
}

// NewService returns a configured Service.
func NewService(st store.Store, engine *Engine, pub events.Publisher, log *zap.Logger) *Service {
	return &Service{store: st, engine: engine, pub: pub, log: log.Named("scoring")}
}

// Run loads the live profile and scores every job. It returns ErrNoProfile
// without touching any job when no profile is stored.
func (s *Service) Run(ctx context.Context) (int, error) {
	p, err := s.store.GetProfile(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return 0, ErrNoProfile
	}
	if err != nil {
		return 0, fmt.Errorf("load profile: %w", err)
	}
	return s.ScoreAll(ctx, *p)
}

// ScoreAll recomputes both scores for every stored job and re-categorizes
// every job whose status is not manual. The whole pass is one
// transaction: if any write fails nothing is committed. It returns the
// number of jobs scored.
func (s *Service) ScoreAll(ctx context.Context, p model.Profile) (int, error) {
	protect := make([]string, len(tracker.Manuals))
	for i, m := range tracker.Manuals {
		protect[i] = string(m)
	}

	var (
		scored   int
		kept     int
		byBucket = map[tracker.Bucket]int{}
	)
	err := s.store.ScorePass(ctx, func(tx store.ScoreTx) error {
		jobs, err := tx.Jobs(ctx)
		if err != nil {
			return err
		}

		for _, j := range jobs {
			res := s.engine.Evaluate(p, j)
			u := store.ScoreUpdate{
				ID:         j.ID,
				Confidence: res.Confidence.Float64(),
				Reputation: res.Reputation.Float64(),
			}

			if tracker.IsManual(j.Status) {
				kept++
			} else {
				if _, err := tracker.ParseStatus(j.Status); err != nil {
					s.log.Info("recategorizing unrecognised status",
						zap.Int64("jobId", j.ID), zap.String("status", j.Status))
				}
				u.Status = string(res.Bucket)
				u.Protect = protect
				byBucket[res.Bucket]++
			}

			if err := tx.Apply(ctx, u); err != nil {
				return err
			}
			scored++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("scoring pass: %w", err)
	}

	s.log.Info("scoring pass complete",
		zap.Int("scored", scored),
		zap.Int("manualKept", kept),
		zap.Int("high", byBucket[tracker.BucketHigh]),
		zap.Int("good", byBucket[tracker.BucketGood]),
		zap.Int("stretch", byBucket[tracker.BucketStretch]),
	)
	s.pub.Publish(ctx, events.JobsScored, map[string]any{"scored": scored})

	return scored, nil
}
