package ingest

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"careeragent/internal/db"
	"careeragent/internal/events"
	"careeragent/internal/model"
	"careeragent/internal/store"
)

type fakeSource struct {
	name     string
	listings []Listing
	err      error
	gotKeys  []string
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Fetch(_ context.Context, keywords []string) ([]Listing, error) {
	f.gotKeys = keywords
	return f.listings, f.err
}

func newSearchStore(t *testing.T) store.Store {
	t.Helper()
	ctx := context.Background()
	conn, err := db.OpenSQLite(ctx, filepath.Join(t.TempDir(), "ingest.db"))
	require.NoError(t, err)
	st := store.NewSQLite(conn)
	require.NoError(t, st.Migrate(ctx))
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func listing(company, role, link, source string) Listing {
	return Listing{Company: company, Role: role, Link: link, Source: source, RequiredSkills: "go, sql"}
}

func TestKeywords(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c", "d", "e"},
		Keywords(model.Profile{Skills: []string{"a", "b", "c", "d", "e", "f"}}))
	assert.Equal(t, []string{"go"}, Keywords(model.Profile{Skills: []string{"go"}}))
	assert.Equal(t, []string{"data scientist"},
		Keywords(model.Profile{PreferredRoles: []string{"data scientist"}}))
	assert.Equal(t, []string{"software engineer"}, Keywords(model.Profile{}))
}

func TestListingJobDefaults(t *testing.T) {
	j := Listing{Company: "Acme", Role: "Intern", Link: "https://x"}.Job()
	assert.Equal(t, "New", j.Status)
	assert.Equal(t, "Remote", j.Location)
	assert.Equal(t, "Unknown", j.Source)
	assert.Zero(t, j.ConfidenceScore)
	assert.Equal(t, model.JobHash("Acme", "Intern", "https://x"), j.JobHash)
}

func TestContainsRedFlag(t *testing.T) {
	l := Listing{Company: "Acme", Role: "Intern", Stipend: "Unpaid", Description: "Registration FEE required"}
	assert.False(t, ContainsRedFlag(l, nil))
	assert.False(t, ContainsRedFlag(l, []string{"", "  "}))
	assert.True(t, ContainsRedFlag(l, []string{"registration fee"}))
	assert.True(t, ContainsRedFlag(l, []string{"unpaid"}))
	assert.False(t, ContainsRedFlag(l, []string{"commission only"}))
}

func TestSearchStoresNewListings(t *testing.T) {
	st := newSearchStore(t)
	ctx := context.Background()

	a := &fakeSource{name: "A", listings: []Listing{
		listing("Acme", "Go Intern", "https://a/1", "A"),
		listing("Scam Co", "Data Entry", "https://a/2", "A"),
		listing("ACME ", "go intern", "HTTPS://A/1", "A"),
	}}
	a.listings[1].Description = "pay a registration fee to apply"
	b := &fakeSource{name: "B", listings: []Listing{
		listing("Acme", "Go Intern", "https://a/1", "B"),
		listing("Globex", "Backend Engineer", "https://b/1", "B"),
	}}
	broken := &fakeSource{name: "Broken", err: errors.New("connection reset")}

	rec := &events.Recorder{}
	s := NewSearcher([]Source{a, broken, b}, st, rec, []string{"registration fee"}, zap.NewNop())

	profile := model.Profile{Skills: []string{"go", "sql"}}
	n, err := s.Search(ctx, profile)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"go", "sql"}, a.gotKeys)
	assert.Equal(t, []string{"go", "sql"}, broken.gotKeys)

	jobs, err := st.ListJobs(ctx, store.JobFilter{})
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	for _, j := range jobs {
		assert.Equal(t, "New", j.Status)
		assert.Zero(t, j.ConfidenceScore)
		assert.Zero(t, j.ReputationScore)
		assert.Equal(t, "go, sql", j.RequiredSkills)
	}

	require.Len(t, rec.Events(), 1)
	assert.Equal(t, events.JobsDiscovered, rec.Events()[0].Channel)
	assert.Equal(t, 2, rec.Events()[0].Payload["inserted"])

	// Second run finds only known listings.
	n, err = s.Search(ctx, profile)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, rec.Events(), 1)
}

func TestSearchCapsEachSource(t *testing.T) {
	st := newSearchStore(t)
	var many []Listing
	for i := 0; i < 30; i++ {
		many = append(many, listing("Co", "Role", "https://x/"+string(rune('a'+i)), "Greedy"))
	}
	s := NewSearcher([]Source{&fakeSource{name: "Greedy", listings: many}}, st, events.Nop{}, nil, zap.NewNop())

	n, err := s.Search(context.Background(), model.Profile{Skills: []string{"go"}})
	require.NoError(t, err)
	assert.Equal(t, MaxPerSource, n)
}

func TestSearchWithNoSources(t *testing.T) {
	st := newSearchStore(t)
	s := NewSearcher(nil, st, events.Nop{}, nil, zap.NewNop())
	n, err := s.Search(context.Background(), model.Profile{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSearchCancelled(t *testing.T) {
	st := newSearchStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewSearcher([]Source{&fakeSource{name: "A", listings: []Listing{listing("A", "B", "C", "A")}}},
		st, events.Nop{}, nil, zap.NewNop())
	_, err := s.Search(ctx, model.Profile{})
	assert.ErrorIs(t, err, context.Canceled)
}

// slowSource records how many fetches overlap.
type slowSource struct {
	name     string
	inflight *atomic.Int32
	peak     *atomic.Int32
}

func (s *slowSource) Name() string { return s.name }

func (s *slowSource) Fetch(ctx context.Context, _ []string) ([]Listing, error) {
	n := s.inflight.Add(1)
	defer s.inflight.Add(-1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}
	select {
	case <-time.After(20 * time.Millisecond):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return []Listing{listing(s.name, "Intern", "https://x/"+s.name, s.name)}, nil
}

func TestSearchBoundsConcurrentFetches(t *testing.T) {
	st := newSearchStore(t)
	var inflight, peak atomic.Int32

	var sources []Source
	for i := 0; i < MaxConcurrentFetches*2; i++ {
		sources = append(sources, &slowSource{name: fmt.Sprintf("S%d", i), inflight: &inflight, peak: &peak})
	}
	s := NewSearcher(sources, st, events.Nop{}, nil, zap.NewNop())

	n, err := s.Search(context.Background(), model.Profile{Skills: []string{"go"}})
	require.NoError(t, err)
	assert.Equal(t, len(sources), n)
	assert.LessOrEqual(t, peak.Load(), int32(MaxConcurrentFetches))
	assert.Positive(t, peak.Load())
}
