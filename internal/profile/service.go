package profile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"careeragent/internal/model"
	"careeragent/internal/scoring"
	"careeragent/internal/store"
)

// MaxUploadSize bounds the resume file accepted by Upload.
const MaxUploadSize = 10 << 20

// ValidationError wraps a user-facing validation message.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// Service stores the profile extracted from the latest resume.
type Service struct {
	store     store.Store
	extractor *Extractor
	log       *zap.Logger
	validate  *validator.Validate

	// text extracts plain text from the uploaded bytes.
	text func(data []byte) (string, error)
}

// NewService returns a configured Service.
func NewService(st store.Store, ex *Extractor, log *zap.Logger) *Service {
	return &Service{
		store:     st,
		extractor: ex,
		log:       log.Named("profile"),
		validate:  model.NewValidator(),
		text: func(data []byte) (string, error) {
			return PDFText(bytes.NewReader(data), int64(len(data)))
		},
	}
}

// Upload parses a PDF resume and replaces the stored profile with what it
// finds. Only .pdf files are accepted.
func (s *Service) Upload(ctx context.Context, filename string, data []byte) (*model.Profile, error) {
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return nil, &ValidationError{Msg: "Only PDF files are accepted."}
	}
	if len(data) == 0 {
		return nil, &ValidationError{Msg: "uploaded file is empty"}
	}
	if len(data) > MaxUploadSize {
		return nil, &ValidationError{Msg: fmt.Sprintf("file exceeds %d bytes", MaxUploadSize)}
	}

	text, err := s.text(data)
	if err != nil {
		return nil, &ValidationError{Msg: err.Error()}
	}

	p := s.extractor.Extract(text)
	p.UploadedAt = time.Now().UTC().Truncate(time.Second)
	if err := s.validate.Struct(p); err != nil {
		// Contact details are best effort.
		s.log.Warn("discarding invalid contact email", zap.String("email", p.Contact.Email))
		p.Contact.Email = ""
		if err := s.validate.Struct(p); err != nil {
			return nil, fmt.Errorf("extracted profile invalid: %w", err)
		}
	}

	if err := s.store.SaveProfile(ctx, p); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}
	s.log.Info("resume parsed",
		zap.String("file", filename),
		zap.Int("skills", len(p.Skills)),
		zap.Strings("domains", p.Domains),
		zap.String("level", p.ExperienceLevel),
	)
	return &p, nil
}

// Get returns the stored profile or scoring.ErrNoProfile.
func (s *Service) Get(ctx context.Context) (*model.Profile, error) {
	p, err := s.store.GetProfile(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return nil, scoring.ErrNoProfile
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return p, nil
}
