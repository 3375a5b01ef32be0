package store

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careeragent/internal/db"
	"careeragent/internal/model"
)

// testPostgresURLEnv names a disposable database; its tables are truncated.
const testPostgresURLEnv = "CAREERAGENT_TEST_POSTGRES_URL"

func newTestPostgres(t *testing.T, url string) *Postgres {
	t.Helper()
	ctx := context.Background()
	pool, err := db.NewPostgresPool(ctx, url)
	require.NoError(t, err)
	p := NewPostgres(pool)
	require.NoError(t, p.Migrate(ctx))
	_, err = pool.Exec(ctx, `TRUNCATE jobs, resume_profile RESTART IDENTITY`)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

// eachBackend runs fn against SQLite and, when configured, Postgres.
func eachBackend(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("sqlite", func(t *testing.T) { fn(t, newTestSQLite(t)) })
	t.Run("postgres", func(t *testing.T) {
		url := os.Getenv(testPostgresURLEnv)
		if url == "" {
			t.Skipf("%s not set", testPostgresURLEnv)
		}
		fn(t, newTestPostgres(t, url))
	})
}

func TestScorePassProtectsManualStatuses(t *testing.T) {
	eachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		_, err := s.InsertJobs(ctx, []model.Job{job("A", "r", ""), job("B", "r", ""), job("C", "r", "")})
		require.NoError(t, err)
		jobs, err := s.ListJobs(ctx, JobFilter{})
		require.NoError(t, err)
		require.Len(t, jobs, 3)

		// Changed after the snapshot was taken; the manual value must still win.
		require.NoError(t, s.UpdateStatus(ctx, jobs[1].ID, "New", "Interview"))
		require.NoError(t, s.UpdateStatus(ctx, jobs[2].ID, "New", "Shortlisted"))

		require.NoError(t, s.ScorePass(ctx, func(tx ScoreTx) error {
			for _, j := range jobs {
				u := ScoreUpdate{ID: j.ID, Confidence: 72.5, Reputation: 60, Status: "Good Match", Protect: manualStatuses}
				if err := tx.Apply(ctx, u); err != nil {
					return err
				}
			}
			return nil
		}))

		want := map[string]string{"A": "Good Match", "B": "Interview", "C": "Good Match"}
		for _, j := range jobs {
			got, err := s.GetJob(ctx, j.ID)
			require.NoError(t, err)
			assert.Equal(t, want[got.Company], got.Status, got.Company)
			assert.Equal(t, 72.5, got.ConfidenceScore, got.Company)
			assert.Equal(t, 60.0, got.ReputationScore, got.Company)
		}
	})
}

func TestScorePassIsAllOrNothing(t *testing.T) {
	eachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		_, err := s.InsertJobs(ctx, []model.Job{job("A", "r", "")})
		require.NoError(t, err)

		err = s.ScorePass(ctx, func(tx ScoreTx) error {
			jobs, err := tx.Jobs(ctx)
			if err != nil {
				return err
			}
			if err := tx.Apply(ctx, ScoreUpdate{ID: jobs[0].ID, Confidence: 88, Status: "High Priority"}); err != nil {
				return err
			}
			return tx.Apply(ctx, ScoreUpdate{ID: 9999, Confidence: 1})
		})
		require.ErrorIs(t, err, ErrNotFound)

		jobs, err := s.ListJobs(ctx, JobFilter{})
		require.NoError(t, err)
		require.Len(t, jobs, 1)
		assert.Zero(t, jobs[0].ConfidenceScore)
		assert.Equal(t, "New", jobs[0].Status)
	})
}

func TestBackendJobLifecycle(t *testing.T) {
	eachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		n, err := s.InsertJobs(ctx, []model.Job{job("A", "r", "go"), job("B", "r", "sql")})
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		n, err = s.InsertJobs(ctx, []model.Job{job("A", "r", "go")})
		require.NoError(t, err)
		assert.Zero(t, n)

		jobs, err := s.ListJobs(ctx, JobFilter{})
		require.NoError(t, err)
		require.Len(t, jobs, 2)
		id := jobs[0].ID

		require.NoError(t, s.UpdateStatus(ctx, id, "New", "Emailed"))
		assert.ErrorIs(t, s.UpdateStatus(ctx, id, "New", "Applied"), ErrConflict)
		assert.ErrorIs(t, s.UpdateStatus(ctx, 4242, "New", "Applied"), ErrNotFound)

		require.NoError(t, s.SetRecruiterEmail(ctx, id, "hr@a.com"))
		got, err := s.GetJob(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "hr@a.com", got.RecruiterEmail)

		_, err = s.BestJob(ctx, []string{"High Priority", "Good Match"})
		assert.ErrorIs(t, err, ErrNotFound)
		best, err := s.BestJob(ctx, []string{"New"})
		require.NoError(t, err)
		assert.Equal(t, jobs[1].ID, best.ID)

		st, err := s.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, st.Total)
		assert.Equal(t, map[string]int{"New": 1, "Emailed": 1}, st.ByCategory)
	})
}

func TestBackendProfileRoundTrip(t *testing.T) {
	eachBackend(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		_, err := s.GetProfile(ctx)
		require.ErrorIs(t, err, ErrNotFound)

		in := model.Profile{
			Skills: []string{"python", "sql"}, Domains: []string{"data"},
			ExperienceLevel: model.LevelMid, PreferredRoles: []string{"data analyst"},
			Contact: model.Contact{FullName: "Asha Rao", Email: "asha@example.com"},
		}
		require.NoError(t, s.SaveProfile(ctx, in))
		require.NoError(t, s.SaveProfile(ctx, in))

		got, err := s.GetProfile(ctx)
		require.NoError(t, err)
		assert.Equal(t, in.Skills, got.Skills)
		assert.Equal(t, in.Domains, got.Domains)
		assert.Equal(t, in.ExperienceLevel, got.ExperienceLevel)
		assert.Equal(t, in.Contact, got.Contact)
	})
}

func TestScoreSQL(t *testing.T) {
	t.Parallel()
	protect := []string{"Applied", "Interview"}

	tests := []struct {
		name     string
		u        ScoreUpdate
		sqlite   []string
		postgres []string
		args     int
	}{
		{
			name:     "scores only",
			u:        ScoreUpdate{ID: 1, Confidence: 50, Reputation: 60},
			sqlite:   []string{"confidence_score = ?", "WHERE id = ?"},
			postgres: []string{"confidence_score = $1", "WHERE id = $3"},
			args:     3,
		},
		{
			name:     "unguarded status",
			u:        ScoreUpdate{ID: 1, Status: "Stretch"},
			sqlite:   []string{"status = ?"},
			postgres: []string{"status = $3", "WHERE id = $4"},
			args:     4,
		},
		{
			name:     "protected status",
			u:        ScoreUpdate{ID: 1, Status: "Stretch", Protect: protect},
			sqlite:   []string{"CASE WHEN status IN (?,?) THEN status ELSE ? END"},
			postgres: []string{"CASE WHEN status = ANY($3) THEN status ELSE $4 END", "WHERE id = $5"},
			args:     5,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, args := pgScoreSQL(tt.u)
			for _, frag := range tt.postgres {
				assert.Contains(t, q, frag)
			}
			assert.Len(t, args, tt.args)
			assert.Equal(t, tt.u.ID, args[len(args)-1])

			q, args = sqliteScoreSQL(tt.u)
			for _, frag := range tt.sqlite {
				assert.Contains(t, q, frag)
			}
			assert.Equal(t, tt.u.ID, args[len(args)-1])
		})
	}

	_, args := pgScoreSQL(ScoreUpdate{ID: 7, Status: "Stretch", Protect: protect})
	assert.Equal(t, protect, args[2])
	assert.Equal(t, "Stretch", args[3])
}
