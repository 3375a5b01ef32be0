package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"careeragent/internal/model"
)

// Postgres is the pgx-backed Store.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps a pool. Call Migrate before use.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Migrate creates the tables when they are missing.
func (p *Postgres) Migrate(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS jobs (
		  id               BIGSERIAL PRIMARY KEY,
		  company          TEXT NOT NULL,
		  role             TEXT NOT NULL,
		  location         TEXT NOT NULL DEFAULT 'Remote',
		  stipend          TEXT NOT NULL DEFAULT 'Unpaid',
		  required_skills  TEXT NOT NULL DEFAULT '',
		  deadline         TEXT NOT NULL DEFAULT 'N/A',
		  link             TEXT NOT NULL DEFAULT '',
		  confidence_score DOUBLE PRECISION NOT NULL DEFAULT 0,
		  reputation_score DOUBLE PRECISION NOT NULL DEFAULT 0,
		  status           VARCHAR(50) NOT NULL DEFAULT 'New',
		  date_added       DATE NOT NULL DEFAULT CURRENT_DATE,
		  source           VARCHAR(50) NOT NULL DEFAULT 'Unknown',
		  job_hash         CHAR(64) NOT NULL UNIQUE,
		  recruiter_email  TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs (status);
		CREATE TABLE IF NOT EXISTS resume_profile (
		  id               INT PRIMARY KEY CHECK (id = 1),
		  skills           TEXT[] NOT NULL DEFAULT '{}',
		  domains          TEXT[] NOT NULL DEFAULT '{}',
		  experience_level VARCHAR(50) NOT NULL DEFAULT 'Entry',
		  preferred_roles  TEXT[] NOT NULL DEFAULT '{}',
		  full_name        TEXT NOT NULL DEFAULT '',
		  email            TEXT NOT NULL DEFAULT '',
		  phone            TEXT NOT NULL DEFAULT '',
		  linkedin_url     TEXT NOT NULL DEFAULT '',
		  github_url       TEXT NOT NULL DEFAULT '',
		  uploaded_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`)
	return err
}

// Close closes the pool.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func (p *Postgres) GetProfile(ctx context.Context) (*model.Profile, error) {
	var pr model.Profile
	err := p.pool.QueryRow(ctx,
		`SELECT skills, domains, experience_level, preferred_roles,
		        full_name, email, phone, linkedin_url, github_url, uploaded_at
		 FROM resume_profile WHERE id = 1`,
	).Scan(&pr.Skills, &pr.Domains, &pr.ExperienceLevel, &pr.PreferredRoles,
		&pr.Contact.FullName, &pr.Contact.Email, &pr.Contact.Phone,
		&pr.Contact.LinkedInURL, &pr.Contact.GitHubURL, &pr.UploadedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getProfile: %w", err)
	}
	return &pr, nil
}

func (p *Postgres) SaveProfile(ctx context.Context, pr model.Profile) error {
	uploaded := pr.UploadedAt
	if uploaded.IsZero() {
		uploaded = time.Now()
	}
	_, err := p.pool.Exec(ctx,
		`INSERT INTO resume_profile (id, skills, domains, experience_level, preferred_roles,
		                             full_name, email, phone, linkedin_url, github_url, uploaded_at)
		 VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (id) DO UPDATE SET
		   skills = EXCLUDED.skills,
		   domains = EXCLUDED.domains,
		   experience_level = EXCLUDED.experience_level,
		   preferred_roles = EXCLUDED.preferred_roles,
		   full_name = EXCLUDED.full_name,
		   email = EXCLUDED.email,
		   phone = EXCLUDED.phone,
		   linkedin_url = EXCLUDED.linkedin_url,
		   github_url = EXCLUDED.github_url,
		   uploaded_at = EXCLUDED.uploaded_at`,
		nonNil(pr.Skills), nonNil(pr.Domains), pr.ExperienceLevel, nonNil(pr.PreferredRoles),
		pr.Contact.FullName, pr.Contact.Email, pr.Contact.Phone,
		pr.Contact.LinkedInURL, pr.Contact.GitHubURL, uploaded,
	)
	if err != nil {
		return fmt.Errorf("saveProfile: %w", err)
	}
	return nil
}

func (p *Postgres) InsertJobs(ctx context.Context, jobs []model.Job) (int, error) {
	if len(jobs) == 0 {
		return 0, nil
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("insertJobs begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	inserted := 0
	for _, j := range jobs {
		j.ApplyDefaults()
		added := j.DateAdded
		if added.IsZero() {
			added = time.Now()
		}
		tag, err := tx.Exec(ctx,
			`INSERT INTO jobs (company, role, location, stipend, required_skills, deadline, link,
			                   confidence_score, reputation_score, status, date_added, source, job_hash, recruiter_email)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			 ON CONFLICT (job_hash) DO NOTHING`,
			j.Company, j.Role, j.Location, j.Stipend, j.RequiredSkills, j.Deadline, j.Link,
			j.ConfidenceScore, j.ReputationScore, j.Status, added, j.Source, j.JobHash, j.RecruiterEmail,
		)
		if err != nil {
			return 0, fmt.Errorf("insertJobs: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("insertJobs commit: %w", err)
	}
	return inserted, nil
}

func (p *Postgres) ListJobs(ctx context.Context, f JobFilter) ([]model.Job, error) {
	var (
		where []string
		args  []any
	)
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.Source != "" {
		args = append(args, f.Source)
		where = append(where, fmt.Sprintf("source = $%d", len(args)))
	}

	q := `SELECT ` + jobColumns + ` FROM jobs`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY confidence_score DESC, id ASC`

	return queryPgJobs(ctx, p.pool, q, args...)
}

func (p *Postgres) GetJob(ctx context.Context, id int64) (*model.Job, error) {
	jobs, err := queryPgJobs(ctx, p.pool, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return nil, ErrNotFound
	}
	return &jobs[0], nil
}

func (p *Postgres) BestJob(ctx context.Context, statuses []string) (*model.Job, error) {
	jobs, err := queryPgJobs(ctx, p.pool,
		`SELECT `+jobColumns+` FROM jobs WHERE status = ANY($1)
		 ORDER BY confidence_score DESC, id ASC LIMIT 1`, statuses)
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return nil, ErrNotFound
	}
	return &jobs[0], nil
}

func (p *Postgres) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{ByCategory: map[string]int{}, BySource: map[string]int{}}

	if err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM jobs`).Scan(&st.Total); err != nil {
		return nil, fmt.Errorf("stats total: %w", err)
	}
	if err := pgCountInto(ctx, p.pool, `SELECT status, COUNT(*) FROM jobs GROUP BY status`, st.ByCategory); err != nil {
		return nil, fmt.Errorf("stats by status: %w", err)
	}
	if err := pgCountInto(ctx, p.pool,
		`SELECT COALESCE(NULLIF(source, ''), 'Unknown'), COUNT(*) FROM jobs GROUP BY 1`, st.BySource); err != nil {
		return nil, fmt.Errorf("stats by source: %w", err)
	}
	return st, nil
}

func (p *Postgres) UpdateStatus(ctx context.Context, id int64, from, to string) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE jobs SET status = $1 WHERE id = $2 AND status = $3`, to, id, from)
	if err != nil {
		return fmt.Errorf("updateStatus: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	if _, err := p.GetJob(ctx, id); err != nil {
		return err
	}
	return ErrConflict
}

func (p *Postgres) SetRecruiterEmail(ctx context.Context, id int64, email string) error {
	tag, err := p.pool.Exec(ctx, `UPDATE jobs SET recruiter_email = $1 WHERE id = $2`, email, id)
	if err != nil {
		return fmt.Errorf("setRecruiterEmail: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) ScorePass(ctx context.Context, fn func(tx ScoreTx) error) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("scorePass begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&pgScoreTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("scorePass commit: %w", err)
	}
	return nil
}

type pgScoreTx struct {
	tx pgx.Tx
}

func (t *pgScoreTx) Jobs(ctx context.Context) ([]model.Job, error) {
	return queryPgJobs(ctx, t.tx, `SELECT `+jobColumns+` FROM jobs ORDER BY id`)
}

func (t *pgScoreTx) Apply(ctx context.Context, u ScoreUpdate) error {
	query, args := pgScoreSQL(u)
	tag, err := t.tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("apply score to job %d: %w", u.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("apply score to job %d: %w", u.ID, ErrNotFound)
	}
	return nil
}

func pgScoreSQL(u ScoreUpdate) (string, []any) {
	switch {
	case u.Status == "":
		return `UPDATE jobs SET confidence_score = $1, reputation_score = $2 WHERE id = $3`,
			[]any{u.Confidence, u.Reputation, u.ID}
	case len(u.Protect) == 0:
		return `UPDATE jobs SET confidence_score = $1, reputation_score = $2, status = $3 WHERE id = $4`,
			[]any{u.Confidence, u.Reputation, u.Status, u.ID}
	}
	return `UPDATE jobs
	 SET confidence_score = $1,
	     reputation_score = $2,
	     status = CASE WHEN status = ANY($3) THEN status ELSE $4 END
	 WHERE id = $5`,
		[]any{u.Confidence, u.Reputation, u.Protect, u.Status, u.ID}
}

type pgQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func queryPgJobs(ctx context.Context, q pgQuerier, query string, args ...any) ([]model.Job, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]model.Job, 0)
	for rows.Next() {
		var j model.Job
		if err := rows.Scan(
			&j.ID, &j.Company, &j.Role, &j.Location, &j.Stipend, &j.RequiredSkills,
			&j.Deadline, &j.Link, &j.ConfidenceScore, &j.ReputationScore, &j.Status,
			&j.DateAdded, &j.Source, &j.JobHash, &j.RecruiterEmail,
		); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func pgCountInto(ctx context.Context, q pgQuerier, query string, dst map[string]int) error {
	rows, err := q.Query(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			k string
			n int
		)
		if err := rows.Scan(&k, &n); err != nil {
			return err
		}
		dst[k] = n
	}
	return rows.Err()
}
