package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"careeragent/internal/model"
)

const dateLayout = "2006-01-02"

const jobColumns = `id, company, role, location, stipend, required_skills, deadline, link,
	confidence_score, reputation_score, status, date_added, source, job_hash, recruiter_email`

// SQLite is the embedded Store backend.
type SQLite struct {
	db *sql.DB
}

// NewSQLite wraps an open database. Call Migrate before use.
func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

// Migrate brings the schema up to date using PRAGMA user_version.
func (s *SQLite) Migrate(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRowContext(ctx, `PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}
	if v >= 1 {
		return tx.Commit()
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS jobs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  company TEXT NOT NULL,
  role TEXT NOT NULL,
  location TEXT NOT NULL DEFAULT 'Remote',
  stipend TEXT NOT NULL DEFAULT 'Unpaid',
  required_skills TEXT NOT NULL DEFAULT '',
  deadline TEXT NOT NULL DEFAULT 'N/A',
  link TEXT NOT NULL DEFAULT '',
  confidence_score REAL NOT NULL DEFAULT 0,
  reputation_score REAL NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'New',
  date_added TEXT NOT NULL,
  source TEXT NOT NULL DEFAULT 'Unknown',
  job_hash TEXT NOT NULL UNIQUE,
  recruiter_email TEXT NOT NULL DEFAULT ''
);`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_confidence ON jobs(confidence_score DESC);`,
		`CREATE TABLE IF NOT EXISTS resume_profile (
  id INTEGER PRIMARY KEY CHECK (id = 1),
  skills TEXT NOT NULL DEFAULT '[]',
  domains TEXT NOT NULL DEFAULT '[]',
  experience_level TEXT NOT NULL DEFAULT 'Entry',
  preferred_roles TEXT NOT NULL DEFAULT '[]',
  full_name TEXT NOT NULL DEFAULT '',
  email TEXT NOT NULL DEFAULT '',
  phone TEXT NOT NULL DEFAULT '',
  linkedin_url TEXT NOT NULL DEFAULT '',
  github_url TEXT NOT NULL DEFAULT '',
  uploaded_at TEXT NOT NULL
);`,
		`PRAGMA user_version = 1;`,
	}
	for _, q := range stmts {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Close closes the database.
func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// ─── Profile ────────────────────────────────────────────────────────────────

func (s *SQLite) GetProfile(ctx context.Context) (*model.Profile, error) {
	var (
		p                                model.Profile
		skills, domains, roles, uploaded string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT skills, domains, experience_level, preferred_roles,
		        full_name, email, phone, linkedin_url, github_url, uploaded_at
		 FROM resume_profile WHERE id = 1`,
	).Scan(&skills, &domains, &p.ExperienceLevel, &roles,
		&p.Contact.FullName, &p.Contact.Email, &p.Contact.Phone,
		&p.Contact.LinkedInURL, &p.Contact.GitHubURL, &uploaded)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getProfile: %w", err)
	}

	for _, f := range []struct {
		raw string
		dst *[]string
	}{{skills, &p.Skills}, {domains, &p.Domains}, {roles, &p.PreferredRoles}} {
		if err := json.Unmarshal([]byte(f.raw), f.dst); err != nil {
			return nil, fmt.Errorf("getProfile decode: %w", err)
		}
	}
	p.UploadedAt, _ = time.Parse(time.RFC3339, uploaded)
	return &p, nil
}

func (s *SQLite) SaveProfile(ctx context.Context, p model.Profile) error {
	skills, _ := json.Marshal(nonNil(p.Skills))
	domains, _ := json.Marshal(nonNil(p.Domains))
	roles, _ := json.Marshal(nonNil(p.PreferredRoles))
	uploaded := p.UploadedAt
	if uploaded.IsZero() {
		uploaded = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO resume_profile (id, skills, domains, experience_level, preferred_roles,
		                             full_name, email, phone, linkedin_url, github_url, uploaded_at)
		 VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   skills = excluded.skills,
		   domains = excluded.domains,
		   experience_level = excluded.experience_level,
		   preferred_roles = excluded.preferred_roles,
		   full_name = excluded.full_name,
		   email = excluded.email,
		   phone = excluded.phone,
		   linkedin_url = excluded.linkedin_url,
		   github_url = excluded.github_url,
		   uploaded_at = excluded.uploaded_at`,
		string(skills), string(domains), p.ExperienceLevel, string(roles),
		p.Contact.FullName, p.Contact.Email, p.Contact.Phone,
		p.Contact.LinkedInURL, p.Contact.GitHubURL, uploaded.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("saveProfile: %w", err)
	}
	return nil
}

// ─── Jobs ───────────────────────────────────────────────────────────────────

func (s *SQLite) InsertJobs(ctx context.Context, jobs []model.Job) (int, error) {
	if len(jobs) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("insertJobs begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	inserted := 0
	for _, j := range jobs {
		j.ApplyDefaults()
		added := j.DateAdded
		if added.IsZero() {
			added = time.Now()
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO jobs (company, role, location, stipend, required_skills, deadline, link,
			                   confidence_score, reputation_score, status, date_added, source, job_hash, recruiter_email)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(job_hash) DO NOTHING`,
			j.Company, j.Role, j.Location, j.Stipend, j.RequiredSkills, j.Deadline, j.Link,
			j.ConfidenceScore, j.ReputationScore, j.Status, added.Format(dateLayout),
			j.Source, j.JobHash, j.RecruiterEmail,
		)
		if err != nil {
			return 0, fmt.Errorf("insertJobs: %w", err)
		}
		n, _ := res.RowsAffected()
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("insertJobs commit: %w", err)
	}
	return inserted, nil
}

func (s *SQLite) ListJobs(ctx context.Context, f JobFilter) ([]model.Job, error) {
	var (
		where []string
		args  []any
	)
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if f.Source != "" {
		where = append(where, "source = ?")
		args = append(args, f.Source)
	}

	q := `SELECT ` + jobColumns + ` FROM jobs`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY confidence_score DESC, id ASC`

	return querySQLiteJobs(ctx, s.db, q, args...)
}

func (s *SQLite) GetJob(ctx context.Context, id int64) (*model.Job, error) {
	jobs, err := querySQLiteJobs(ctx, s.db, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return nil, ErrNotFound
	}
	return &jobs[0], nil
}

func (s *SQLite) BestJob(ctx context.Context, statuses []string) (*model.Job, error) {
	if len(statuses) == 0 {
		return nil, ErrNotFound
	}
	q := `SELECT ` + jobColumns + ` FROM jobs WHERE status IN (` + placeholders(len(statuses)) + `)
	      ORDER BY confidence_score DESC, id ASC LIMIT 1`
	jobs, err := querySQLiteJobs(ctx, s.db, q, toArgs(statuses)...)
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return nil, ErrNotFound
	}
	return &jobs[0], nil
}

func (s *SQLite) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{ByCategory: map[string]int{}, BySource: map[string]int{}}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs`).Scan(&st.Total); err != nil {
		return nil, fmt.Errorf("stats total: %w", err)
	}
	if err := countInto(ctx, s.db, `SELECT status, COUNT(*) FROM jobs GROUP BY status`, st.ByCategory); err != nil {
		return nil, fmt.Errorf("stats by status: %w", err)
	}
	if err := countInto(ctx, s.db,
		`SELECT COALESCE(NULLIF(source, ''), 'Unknown'), COUNT(*) FROM jobs GROUP BY 1`, st.BySource); err != nil {
		return nil, fmt.Errorf("stats by source: %w", err)
	}
	return st, nil
}

func (s *SQLite) UpdateStatus(ctx context.Context, id int64, from, to string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET status = ? WHERE id = ? AND status = ?`, to, id, from)
	if err != nil {
		return fmt.Errorf("updateStatus: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	if _, err := s.GetJob(ctx, id); err != nil {
		return err
	}
	return ErrConflict
}

func (s *SQLite) SetRecruiterEmail(ctx context.Context, id int64, email string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE jobs SET recruiter_email = ? WHERE id = ?`, email, id)
	if err != nil {
		return fmt.Errorf("setRecruiterEmail: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ─── Scoring transaction ────────────────────────────────────────────────────

func (s *SQLite) ScorePass(ctx context.Context, fn func(tx ScoreTx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("scorePass begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&sqliteScoreTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("scorePass commit: %w", err)
	}
	return nil
}

type sqliteScoreTx struct {
	tx *sql.Tx
}

func (t *sqliteScoreTx) Jobs(ctx context.Context) ([]model.Job, error) {
	return querySQLiteJobs(ctx, t.tx, `SELECT `+jobColumns+` FROM jobs ORDER BY id`)
}

func (t *sqliteScoreTx) Apply(ctx context.Context, u ScoreUpdate) error {
	query, args := sqliteScoreSQL(u)
	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("apply score to job %d: %w", u.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("apply score to job %d: %w", u.ID, ErrNotFound)
	}
	return nil
}

func sqliteScoreSQL(u ScoreUpdate) (string, []any) {
	args := []any{u.Confidence, u.Reputation}
	switch {
	case u.Status == "":
		return `UPDATE jobs SET confidence_score = ?, reputation_score = ? WHERE id = ?`,
			append(args, u.ID)
	case len(u.Protect) == 0:
		return `UPDATE jobs SET confidence_score = ?, reputation_score = ?, status = ? WHERE id = ?`,
			append(args, u.Status, u.ID)
	}
	args = append(args, toArgs(u.Protect)...)
	return `UPDATE jobs SET confidence_score = ?, reputation_score = ?,
	        status = CASE WHEN status IN (` + placeholders(len(u.Protect)) + `) THEN status ELSE ? END
	 WHERE id = ?`, append(args, u.Status, u.ID)
}

// ─── helpers ────────────────────────────────────────────────────────────────

type sqlQuerier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func querySQLiteJobs(ctx context.Context, q sqlQuerier, query string, args ...any) ([]model.Job, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]model.Job, 0)
	for rows.Next() {
		var (
			j     model.Job
			added string
		)
		if err := rows.Scan(
			&j.ID, &j.Company, &j.Role, &j.Location, &j.Stipend, &j.RequiredSkills,
			&j.Deadline, &j.Link, &j.ConfidenceScore, &j.ReputationScore, &j.Status,
			&added, &j.Source, &j.JobHash, &j.RecruiterEmail,
		); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		j.DateAdded, _ = time.Parse(dateLayout, added)
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func countInto(ctx context.Context, q sqlQuerier, query string, dst map[string]int) error {
	rows, err := q.QueryContext(ctx, query)
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

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func toArgs(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func nonNil(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}
