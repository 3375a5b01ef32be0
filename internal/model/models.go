// Package model defines the records shared by every CareerAgent component.
package model

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// Experience levels a Profile can carry.
const (
	LevelEntry  = "Entry"
	LevelMid    = "Mid"
	LevelSenior = "Senior"
)

// Column defaults applied when a listing leaves a field empty.
const (
	DefaultLocation = "Remote"
	DefaultStipend  = "Unpaid"
	DefaultDeadline = "N/A"
	DefaultSource   = "Unknown"
	DefaultStatus   = "New"
)

// Job is one opportunity listing plus its computed scores and lifecycle status.
type Job struct {
	ID              int64     `json:"id"`
	Company         string    `json:"company"`
	Role            string    `json:"role"`
	Location        string    `json:"location"`
	Stipend         string    `json:"stipend"`
	RequiredSkills  string    `json:"required_skills"`
	Deadline        string    `json:"deadline"`
	Link            string    `json:"link"`
	ConfidenceScore float64   `json:"confidence_score"`
	ReputationScore float64   `json:"reputation_score"`
	Status          string    `json:"status"`
	DateAdded       time.Time `json:"date_added"`
	Source          string    `json:"source"`
	JobHash         string    `json:"job_hash"`
	RecruiterEmail  string    `json:"recruiter_email"`
}

// Contact is the contact block extracted from a resume.
type Contact struct {
	FullName    string `json:"full_name"`
	Email       string `json:"email" validate:"omitempty,email"`
	Phone       string `json:"phone"`
	LinkedInURL string `json:"linkedin_url"`
	GitHubURL   string `json:"github_url"`
}

// Profile holds the candidate attributes derived from the live resume.
// Exactly one Profile is stored at a time.
type Profile struct {
	Skills          []string  `json:"skills" validate:"dive,notblank"`
	Domains         []string  `json:"domains" validate:"dive,notblank"`
	ExperienceLevel string    `json:"experience_level" validate:"oneof=Entry Mid Senior"`
	PreferredRoles  []string  `json:"preferred_roles"`
	Contact         Contact   `json:"contact_info"`
	UploadedAt      time.Time `json:"uploaded_at"`
}

// NewValidator returns a validator that understands the notblank tag used
// on Profile labels.
func NewValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// JobHash fingerprints a listing by company, role and link.
func JobHash(company, role, link string) string {
	raw := norm(company) + "|" + norm(role) + "|" + norm(link)
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func norm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ApplyDefaults fills empty descriptive fields with their column defaults
// and computes the hash when it is missing.
func (j *Job) ApplyDefaults() {
	if j.Location == "" {
		j.Location = DefaultLocation
	}
	if j.Stipend == "" {
		j.Stipend = DefaultStipend
	}
	if j.Deadline == "" {
		j.Deadline = DefaultDeadline
	}
	if j.Source == "" {
		j.Source = DefaultSource
	}
	if j.Status == "" {
		j.Status = DefaultStatus
	}
	if j.JobHash == "" {
		j.JobHash = JobHash(j.Company, j.Role, j.Link)
	}
}
