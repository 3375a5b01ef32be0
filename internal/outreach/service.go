package outreach

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"careeragent/internal/events"
	"careeragent/internal/model"
	"careeragent/internal/scoring"
	"careeragent/internal/store"
	"careeragent/internal/tracker"
)

var (
	// ErrNoEligibleJob is returned when no High Priority or Good Match job
	// is waiting for an email.
	ErrNoEligibleJob = errors.New("no eligible jobs found for emailing")
	// ErrSenderUnavailable is returned when the mail transport is not
	// configured or its credentials are missing.
	ErrSenderUnavailable = errors.New("email sender unavailable")
)

// Eligible lists the statuses outreach picks from, best first.
var Eligible = []string{string(tracker.BucketHigh), string(tracker.BucketGood)}

// SendRequest selects a job and optionally overrides the composed fields.
// A zero JobID means the best eligible job.
type SendRequest struct {
	JobID   int64  `json:"job_id"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Result reports a sent email.
type Result struct {
	Status  string `json:"status"`
	JobID   int64  `json:"job_id"`
	Company string `json:"company"`
	Role    string `json:"role"`
	To      string `json:"to"`
	Subject string `json:"subject"`
}

// Service composes and sends application emails.
type Service struct {
	store    store.Store
	tracker  *tracker.Service
	composer *Composer
	sender   Sender
	pub      events.Publisher
	log      *zap.Logger
	validate *validator.Validate
}

// NewService returns a configured Service.
func NewService(st store.Store, tr *tracker.Service, c *Composer, sender Sender, pub events.Publisher, log *zap.Logger) *Service {
	return &Service{
		store:    st,
		tracker:  tr,
		composer: c,
		sender:   sender,
		pub:      pub,
		log:      log.Named("outreach"),
		validate: validator.New(),
	}
}

// Preview composes the email for jobID, or for the best eligible job when
// jobID is zero, without sending anything.
func (s *Service) Preview(ctx context.Context, jobID int64) (*Draft, error) {
	p, err := s.store.GetProfile(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return nil, scoring.ErrNoProfile
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	j, err := s.pick(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return s.composer.Compose(*p, *j)
}

func (s *Service) pick(ctx context.Context, jobID int64) (*model.Job, error) {
	if jobID != 0 {
		return s.tracker.GetJob(ctx, jobID)
	}
	j, err := s.store.BestJob(ctx, Eligible)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNoEligibleJob
	}
	if err != nil {
		return nil, fmt.Errorf("best job: %w", err)
	}
	return j, nil
}

// Send composes, applies overrides, delivers and then marks the job
// Emailed. Nothing is marked when delivery fails.
func (s *Service) Send(ctx context.Context, req SendRequest) (*Result, error) {
	d, err := s.Preview(ctx, req.JobID)
	if err != nil {
		return nil, err
	}
	if req.To != "" {
		d.To = req.To
	}
	if req.Subject != "" {
		d.Subject = req.Subject
	}
	if req.Body != "" {
		d.Body = req.Body
	}
	if err := s.validate.Var(d.To, "required,email"); err != nil {
		return nil, &tracker.ValidationError{Msg: fmt.Sprintf("invalid recipient %q", d.To)}
	}

	msg := Message{To: d.To, From: d.From, Subject: d.Subject, Body: d.Body}
	if err := s.sender.Send(ctx, msg); err != nil {
		s.log.Error("failed to send email",
			zap.Int64("jobId", d.JobID), zap.String("company", d.Company), zap.Error(err))
		return nil, fmt.Errorf("send email: %w", err)
	}

	if err := s.tracker.MarkEmailed(ctx, d.JobID); err != nil {
		// The mail is out; report success and leave the status for the user.
		s.log.Warn("email sent but status not updated", zap.Int64("jobId", d.JobID), zap.Error(err))
	}

	s.log.Info("email sent",
		zap.Int64("jobId", d.JobID), zap.String("company", d.Company), zap.String("role", d.Role))
	s.pub.Publish(ctx, events.EmailSent, map[string]any{
		"jobId":   d.JobID,
		"company": d.Company,
		"role":    d.Role,
		"to":      d.To,
	})

	return &Result{
		Status:  "sent",
		JobID:   d.JobID,
		Company: d.Company,
		Role:    d.Role,
		To:      d.To,
		Subject: d.Subject,
	}, nil
}
