package tracker

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"careeragent/internal/events"
	"careeragent/internal/model"
	"careeragent/internal/store"
)

// ─── Service ─────────────────────────────────────────────────────────────────

// Service applies user-driven changes to jobs. It has no dependency on
// net/http and is shared by the HTTP and gRPC layers.
type Service struct {
	store    store.Store
	pub      events.Publisher
	log      *zap.Logger
	validate *validator.Validate
}

// NewService returns a configured Service.
func NewService(st store.Store, pub events.Publisher, log *zap.Logger) *Service {
	return &Service{
		store:    st,
		pub:      pub,
		log:      log.Named("tracker"),
		validate: validator.New(),
	}
}

// ─── Reads ───────────────────────────────────────────────────────────────────

// ListJobs returns jobs ordered by confidence, best first. A non-empty
// status filter must name a known status.
func (s *Service) ListJobs(ctx context.Context, f store.JobFilter) ([]model.Job, error) {
	if f.Status != "" {
		if _, err := ParseStatus(f.Status); err != nil {
			return nil, &ValidationError{Msg: err.Error()}
		}
	}
	jobs, err := s.store.ListJobs(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("listJobs: %w", err)
	}
	return jobs, nil
}

// GetJob returns one job or ErrNotFound.
func (s *Service) GetJob(ctx context.Context, id int64) (*model.Job, error) {
	j, err := s.store.GetJob(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return j, nil
}

// Stats returns the dashboard counters.
func (s *Service) Stats(ctx context.Context) (*store.Stats, error) {
	st, err := s.store.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	return st, nil
}

// ─── Writes ──────────────────────────────────────────────────────────────────

// UpdateStatus moves a job to a new status.
// Returns ErrNotFound if the job does not exist, a *ValidationError if the
// status is unknown or the transition graph rejects it, and ErrConflict if
// the job changed underneath the caller (for example a scoring pass
// re-bucketed it).
func (s *Service) UpdateStatus(ctx context.Context, id int64, newStatusStr string) (*model.Job, error) {
	next, err := ParseStatus(newStatusStr)
	if err != nil {
		return nil, &ValidationError{Msg: err.Error()}
	}

	j, err := s.store.GetJob(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}

	current, err := ParseStatus(j.Status)
	if err != nil {
		// Unrecognised stored values follow the rules of a fresh job.
		current = BucketNew
	}
	if !IsTransitionAllowed(current, next) {
		return nil, &ValidationError{
			Msg: fmt.Sprintf("transition %s → %s is not allowed", current, next),
		}
	}

	if err := s.store.UpdateStatus(ctx, id, j.Status, next.String()); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrConflict
		}
		return nil, notFound(err)
	}

	s.log.Info("status changed",
		zap.Int64("jobId", id), zap.String("from", j.Status), zap.String("to", next.String()))
	s.pub.Publish(ctx, events.StatusChanged, map[string]any{
		"jobId": id,
		"from":  j.Status,
		"to":    next.String(),
	})

	j.Status = next.String()
	return j, nil
}

// MarkEmailed records that an application email went out. Jobs already
// past the emailing stage keep their status.
func (s *Service) MarkEmailed(ctx context.Context, id int64) error {
	j, err := s.store.GetJob(ctx, id)
	if err != nil {
		return notFound(err)
	}
	current, err := ParseStatus(j.Status)
	if err != nil || !IsTransitionAllowed(current, Emailed) {
		s.log.Debug("emailed job keeps its status",
			zap.Int64("jobId", id), zap.String("status", j.Status))
		return nil
	}
	if err := s.store.UpdateStatus(ctx, id, j.Status, Emailed.String()); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return ErrConflict
		}
		return notFound(err)
	}
	s.pub.Publish(ctx, events.StatusChanged, map[string]any{
		"jobId": id,
		"from":  j.Status,
		"to":    Emailed.String(),
	})
	return nil
}

// SetRecruiterEmail stores the address outreach will send to.
func (s *Service) SetRecruiterEmail(ctx context.Context, id int64, email string) (*model.Job, error) {
	if err := s.validate.Var(email, "required,email"); err != nil {
		return nil, &ValidationError{Msg: fmt.Sprintf("invalid email %q", email)}
	}
	if err := s.store.SetRecruiterEmail(ctx, id, email); err != nil {
		return nil, notFound(err)
	}
	return s.GetJob(ctx, id)
}

func notFound(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// ─── Sentinel errors ─────────────────────────────────────────────────────────

var (
	// ErrNotFound is returned when a job does not exist.
	ErrNotFound = errors.New("job not found")
	// ErrConflict is returned when the job's status changed concurrently.
	ErrConflict = errors.New("job status changed concurrently, reload and retry")
)

// ValidationError wraps a user-facing validation message.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }
