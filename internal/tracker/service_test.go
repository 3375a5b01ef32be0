package tracker_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"careeragent/internal/db"
	"careeragent/internal/events"
	"careeragent/internal/model"
	"careeragent/internal/store"
	"careeragent/internal/tracker"
)

func newService(t *testing.T) (*tracker.Service, store.Store, *events.Recorder) {
	t.Helper()
	ctx := context.Background()
	conn, err := db.OpenSQLite(ctx, filepath.Join(t.TempDir(), "tracker.db"))
	require.NoError(t, err)
	st := store.NewSQLite(conn)
	require.NoError(t, st.Migrate(ctx))
	t.Cleanup(func() { _ = st.Close() })

	rec := &events.Recorder{}
	return tracker.NewService(st, rec, zap.NewNop()), st, rec
}

func insert(t *testing.T, st store.Store, jobs ...model.Job) []int64 {
	t.Helper()
	ctx := context.Background()
	_, err := st.InsertJobs(ctx, jobs)
	require.NoError(t, err)
	all, err := st.ListJobs(ctx, store.JobFilter{})
	require.NoError(t, err)
	byCompany := map[string]int64{}
	for _, j := range all {
		byCompany[j.Company] = j.ID
	}
	ids := make([]int64, len(jobs))
	for i, j := range jobs {
		ids[i] = byCompany[j.Company]
	}
	return ids
}

// ── UpdateStatus ───────────────────────────────────────────────────────────

func TestUpdateStatus_FollowsGraph(t *testing.T) {
	svc, st, rec := newService(t)
	ctx := context.Background()
	ids := insert(t, st, model.Job{Company: "Acme", Role: "Intern", Status: "Good Match"})

	for _, next := range []string{"Applied", "Interview", "Accepted"} {
		j, err := svc.UpdateStatus(ctx, ids[0], next)
		require.NoError(t, err, next)
		assert.Equal(t, next, j.Status)
	}

	_, err := svc.UpdateStatus(ctx, ids[0], "Rejected")
	var verr *tracker.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Msg, "Accepted")

	assert.Equal(t,
		[]string{events.StatusChanged, events.StatusChanged, events.StatusChanged},
		rec.Channels())
	last := rec.Events()[2].Payload
	assert.Equal(t, "Interview", last["from"])
	assert.Equal(t, "Accepted", last["to"])
}

func TestUpdateStatus_Rejections(t *testing.T) {
	svc, st, rec := newService(t)
	ctx := context.Background()
	ids := insert(t, st, model.Job{Company: "Acme", Role: "Intern"})

	tests := []struct {
		name   string
		status string
	}{
		{"unknown value", "Hired"},
		{"empty", ""},
		{"same status", "New"},
		{"bucket to bucket", "High Priority"},
		{"skip ahead", "Interview"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateStatus(ctx, ids[0], tt.status)
			var verr *tracker.ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}

	j, err := svc.GetJob(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, "New", j.Status)
	assert.Empty(t, rec.Events())
}

func TestUpdateStatus_NotFound(t *testing.T) {
	svc, _, _ := newService(t)
	_, err := svc.UpdateStatus(context.Background(), 999, "Applied")
	assert.ErrorIs(t, err, tracker.ErrNotFound)
}

func TestUpdateStatus_ReopenNotApplied(t *testing.T) {
	svc, st, _ := newService(t)
	ctx := context.Background()
	ids := insert(t, st, model.Job{Company: "Acme", Role: "Intern", Status: "Not Applied"})

	j, err := svc.UpdateStatus(ctx, ids[0], "New")
	require.NoError(t, err)
	assert.Equal(t, "New", j.Status)
}

func TestUpdateStatus_UnknownStoredValue(t *testing.T) {
	svc, st, _ := newService(t)
	ctx := context.Background()
	ids := insert(t, st, model.Job{Company: "Acme", Role: "Intern", Status: "Shortlisted"})

	j, err := svc.UpdateStatus(ctx, ids[0], "Applied")
	require.NoError(t, err)
	assert.Equal(t, "Applied", j.Status)
}

// raceStore changes the status between the read and the write.
type raceStore struct {
	store.Store
}

func (r raceStore) UpdateStatus(ctx context.Context, id int64, from, to string) error {
	if err := r.Store.UpdateStatus(ctx, id, from, "Stretch"); err != nil {
		return err
	}
	return r.Store.UpdateStatus(ctx, id, from, to)
}

func TestUpdateStatus_Conflict(t *testing.T) {
	_, st, rec := newService(t)
	ctx := context.Background()
	ids := insert(t, st, model.Job{Company: "Acme", Role: "Intern"})

	svc := tracker.NewService(raceStore{st}, rec, zap.NewNop())
	_, err := svc.UpdateStatus(ctx, ids[0], "Applied")
	assert.ErrorIs(t, err, tracker.ErrConflict)
	assert.Empty(t, rec.Events())
}

// ── MarkEmailed ────────────────────────────────────────────────────────────

func TestMarkEmailed(t *testing.T) {
	svc, st, rec := newService(t)
	ctx := context.Background()
	ids := insert(t, st,
		model.Job{Company: "Bucketed", Role: "Intern", Status: "High Priority"},
		model.Job{Company: "Interviewing", Role: "Intern", Status: "Interview"},
	)

	require.NoError(t, svc.MarkEmailed(ctx, ids[0]))
	require.NoError(t, svc.MarkEmailed(ctx, ids[1]))

	j, err := svc.GetJob(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, "Emailed", j.Status)

	j, err = svc.GetJob(ctx, ids[1])
	require.NoError(t, err)
	assert.Equal(t, "Interview", j.Status)

	assert.Len(t, rec.Events(), 1)
	assert.ErrorIs(t, svc.MarkEmailed(ctx, 404), tracker.ErrNotFound)
}

// ── Recruiter email and reads ──────────────────────────────────────────────

func TestSetRecruiterEmail(t *testing.T) {
	svc, st, _ := newService(t)
	ctx := context.Background()
	ids := insert(t, st, model.Job{Company: "Acme", Role: "Intern"})

	j, err := svc.SetRecruiterEmail(ctx, ids[0], "hr@acme.io")
	require.NoError(t, err)
	assert.Equal(t, "hr@acme.io", j.RecruiterEmail)

	for _, bad := range []string{"", "not-an-email", "a@"} {
		_, err := svc.SetRecruiterEmail(ctx, ids[0], bad)
		var verr *tracker.ValidationError
		assert.True(t, errors.As(err, &verr), bad)
	}

	_, err = svc.SetRecruiterEmail(ctx, 999, "hr@acme.io")
	assert.ErrorIs(t, err, tracker.ErrNotFound)
}

func TestListJobsRejectsUnknownFilter(t *testing.T) {
	svc, st, _ := newService(t)
	ctx := context.Background()
	insert(t, st,
		model.Job{Company: "A", Role: "Intern", Status: "Stretch"},
		model.Job{Company: "B", Role: "Intern"},
	)

	jobs, err := svc.ListJobs(ctx, store.JobFilter{Status: "Stretch"})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "A", jobs[0].Company)

	_, err = svc.ListJobs(ctx, store.JobFilter{Status: "Bogus"})
	var verr *tracker.ValidationError
	assert.ErrorAs(t, err, &verr)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.ByCategory["New"])
}
