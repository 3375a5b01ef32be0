// Package store persists jobs and the resume profile.
//
// Two backends implement Store: SQLite (the default, embedded) and
// Postgres. Open picks one from the DATABASE_URL scheme.
package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"careeragent/internal/db"
	"careeragent/internal/model"
)

var (
	// ErrNotFound is returned when a job or the profile does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a compare-and-set status update lost a race.
	ErrConflict = errors.New("status changed concurrently")
)

// JobFilter narrows ListJobs. Empty fields match everything.
type JobFilter struct {
	Status string
	Source string
}

// Stats are the dashboard counters.
type Stats struct {
	Total      int            `json:"total"`
	ByCategory map[string]int `json:"by_category"`
	BySource   map[string]int `json:"by_source"`
}

// ScoreUpdate is one row written by a scoring pass. When Status is set it
// replaces the stored status unless the stored value is one of Protect,
// compared at write time.
type ScoreUpdate struct {
	ID         int64
	Confidence float64
	Reputation float64
	Status     string
	Protect    []string
}

// ScoreTx is the view of the store inside a scoring transaction.
type ScoreTx interface {
	Jobs(ctx context.Context) ([]model.Job, error)
	Apply(ctx context.Context, u ScoreUpdate) error
}

// Store is implemented by SQLite and Postgres.
type Store interface {
	GetProfile(ctx context.Context) (*model.Profile, error)
	// SaveProfile atomically replaces the single stored profile.
	SaveProfile(ctx context.Context, p model.Profile) error

	// InsertJobs adds jobs whose hash is not stored yet and returns how
	// many rows were inserted.
	InsertJobs(ctx context.Context, jobs []model.Job) (int, error)
	ListJobs(ctx context.Context, f JobFilter) ([]model.Job, error)
	GetJob(ctx context.Context, id int64) (*model.Job, error)
	Stats(ctx context.Context) (*Stats, error)
	// UpdateStatus moves a job from one status to another, failing with
	// ErrConflict if the stored status is no longer from.
	UpdateStatus(ctx context.Context, id int64, from, to string) error
	SetRecruiterEmail(ctx context.Context, id int64, email string) error
	// BestJob returns the highest-confidence job whose status is one of
	// statuses.
	BestJob(ctx context.Context, statuses []string) (*model.Job, error)

	// ScorePass runs fn inside one transaction. Any error rolls back every
	// write fn made.
	ScorePass(ctx context.Context, fn func(tx ScoreTx) error) error

	Close() error
}

// Open connects to the database named by databaseURL and migrates it.
func Open(ctx context.Context, databaseURL string, log *zap.Logger) (Store, error) {
	driver, target, err := db.ParseURL(databaseURL)
	if err != nil {
		return nil, err
	}

	switch driver {
	case db.DriverPostgres:
		pool, err := db.NewPostgresPool(ctx, target)
		if err != nil {
			return nil, err
		}
		s := NewPostgres(pool)
		if err := s.Migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		log.Info("store ready", zap.String("driver", driver))
		return s, nil
	default:
		conn, err := db.OpenSQLite(ctx, target)
		if err != nil {
			return nil, err
		}
		s := NewSQLite(conn)
		if err := s.Migrate(ctx); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("migrate sqlite: %w", err)
		}
		log.Info("store ready", zap.String("driver", driver), zap.String("path", target))
		return s, nil
	}
}

var (
	_ Store = (*SQLite)(nil)
	_ Store = (*Postgres)(nil)
)
