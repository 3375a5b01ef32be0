package outreach

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"careeragent/internal/db"
	"careeragent/internal/events"
	"careeragent/internal/model"
	"careeragent/internal/scoring"
	"careeragent/internal/store"
	"careeragent/internal/tracker"
)

const sender = "me@example.com"

type fakeSender struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, m Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m)
	return nil
}

var profile = model.Profile{
	Skills:          []string{"python", "sql", "docker"},
	ExperienceLevel: model.LevelEntry,
	Contact: model.Contact{
		FullName:  "Priya Sharma",
		GitHubURL: "https://github.com/priyas",
	},
}

// ── Composer ───────────────────────────────────────────────────────────────

func TestComposeListsCommonSkills(t *testing.T) {
	d, err := NewComposer(sender).Compose(profile, model.Job{
		ID: 7, Company: "Acme", Role: "Data Intern", RequiredSkills: "SQL, Python, Spark",
	})
	require.NoError(t, err)

	assert.Equal(t, "Application for Data Intern – AI/ML Enthusiast", d.Subject)
	assert.Equal(t, sender, d.To)
	assert.Equal(t, sender, d.From)
	assert.Equal(t, int64(7), d.JobID)
	assert.True(t, strings.HasPrefix(d.Body, "Dear Hiring Manager at Acme,\n"))
	assert.Contains(t, d.Body, "hands-on experience in python, sql, which")
	assert.Contains(t, d.Body, "• Strong proficiency in python, sql\n")
	assert.Contains(t, d.Body, "contribute to Acme's mission.")
	assert.Contains(t, d.Body, "https://github.com/priyas")
	assert.True(t, strings.HasSuffix(d.Body, "Best regards,\nPriya Sharma\nme@example.com\n"))
}

func TestComposeFallbacks(t *testing.T) {
	d, err := NewComposer(sender).Compose(model.Profile{}, model.Job{
		Company: "Globex", Role: "Engineer", RequiredSkills: "rust", RecruiterEmail: "hr@globex.io",
	})
	require.NoError(t, err)
	assert.Equal(t, "hr@globex.io", d.To)
	assert.Contains(t, d.Body, "experience in relevant technical skills,")
	assert.Contains(t, d.Body, "portfolio and work on request.")
	assert.True(t, strings.HasSuffix(d.Body, "Best regards,\nme@example.com\n"))
}

func TestBuildMIME(t *testing.T) {
	raw := string(buildMIME(Message{To: "a@b.c", From: sender, Subject: "Application for X – AI/ML Enthusiast", Body: "line1\nline2"}))
	assert.Contains(t, raw, "To: a@b.c\r\n")
	assert.Contains(t, raw, "Subject: =?utf-8?q?")
	assert.Contains(t, raw, "Content-Type: text/plain; charset=\"utf-8\"\r\n")
	assert.True(t, strings.HasSuffix(raw, "\r\n\r\nline1\r\nline2"))

	// The Gmail API takes URL-safe base64.
	enc := base64.URLEncoding.EncodeToString([]byte(raw))
	assert.NotContains(t, enc, "+")
	assert.NotContains(t, enc, "/")
}

func TestUnavailableSender(t *testing.T) {
	err := Unavailable{Reason: errors.New("no token")}.Send(context.Background(), Message{})
	assert.ErrorIs(t, err, ErrSenderUnavailable)
	assert.Contains(t, err.Error(), "no token")
}

// ── OAuth files ────────────────────────────────────────────────────────────

func TestNewGmailSenderMissingFiles(t *testing.T) {
	dir := t.TempDir()
	_, err := NewGmailSender(context.Background(), filepath.Join(dir, "nope.json"), filepath.Join(dir, "token.json"), zap.NewNop())
	assert.ErrorIs(t, err, ErrSenderUnavailable)

	creds := filepath.Join(dir, "credentials.json")
	require.NoError(t, os.WriteFile(creds, []byte(`{"installed":{"client_id":"id","client_secret":"s","auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token","redirect_uris":["http://localhost"]}}`), 0o600))
	_, err = NewGmailSender(context.Background(), creds, filepath.Join(dir, "token.json"), zap.NewNop())
	assert.ErrorIs(t, err, ErrSenderUnavailable)
}

func TestSavingTokenSourcePersistsNewTokens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	ts := &savingTokenSource{
		base: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "fresh", TokenType: "Bearer"}),
		path: path,
		last: "stale",
		log:  zap.NewNop(),
	}
	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "fresh", tok.AccessToken)

	saved, err := loadToken(path)
	require.NoError(t, err)
	assert.Equal(t, "fresh", saved.AccessToken)

	require.NoError(t, os.Remove(path))
	_, err = ts.Token()
	require.NoError(t, err)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "unchanged token is not rewritten")
}

// ── Service ────────────────────────────────────────────────────────────────

type fixture struct {
	svc    *Service
	st     store.Store
	sender *fakeSender
	rec    *events.Recorder
}

func newFixture(t *testing.T, withProfile bool) fixture {
	t.Helper()
	ctx := context.Background()
	conn, err := db.OpenSQLite(ctx, filepath.Join(t.TempDir(), "outreach.db"))
	require.NoError(t, err)
	st := store.NewSQLite(conn)
	require.NoError(t, st.Migrate(ctx))
	t.Cleanup(func() { _ = st.Close() })

	if withProfile {
		require.NoError(t, st.SaveProfile(ctx, profile))
	}

	rec := &events.Recorder{}
	fs := &fakeSender{}
	tr := tracker.NewService(st, rec, zap.NewNop())
	svc := NewService(st, tr, NewComposer(sender), fs, rec, zap.NewNop())
	return fixture{svc: svc, st: st, sender: fs, rec: rec}
}

func (f fixture) seed(t *testing.T, jobs ...model.Job) map[string]int64 {
	t.Helper()
	ctx := context.Background()
	_, err := f.st.InsertJobs(ctx, jobs)
	require.NoError(t, err)
	all, err := f.st.ListJobs(ctx, store.JobFilter{})
	require.NoError(t, err)
	ids := map[string]int64{}
	for _, j := range all {
		ids[j.Company] = j.ID
	}
	return ids
}

func (f fixture) status(t *testing.T, id int64) string {
	t.Helper()
	j, err := f.st.GetJob(context.Background(), id)
	require.NoError(t, err)
	return j.Status
}

func TestSendPicksBestEligibleJob(t *testing.T) {
	f := newFixture(t, true)
	ids := f.seed(t,
		model.Job{Company: "Good", Role: "Intern", Status: "Good Match", ConfidenceScore: 70},
		model.Job{Company: "High", Role: "Data Intern", Status: "High Priority", ConfidenceScore: 85, RequiredSkills: "python"},
		model.Job{Company: "Applied", Role: "Intern", Status: "Applied", ConfidenceScore: 99},
		model.Job{Company: "Stretch", Role: "Intern", Status: "Stretch", ConfidenceScore: 95},
	)

	res, err := f.svc.Send(context.Background(), SendRequest{})
	require.NoError(t, err)
	assert.Equal(t, "sent", res.Status)
	assert.Equal(t, "High", res.Company)
	assert.Equal(t, "Application for Data Intern – AI/ML Enthusiast", res.Subject)

	require.Len(t, f.sender.sent, 1)
	assert.Equal(t, sender, f.sender.sent[0].To)
	assert.Contains(t, f.sender.sent[0].Body, "experience in python,")

	assert.Equal(t, "Emailed", f.status(t, ids["High"]))
	assert.Equal(t, "Good Match", f.status(t, ids["Good"]))
	assert.Equal(t, []string{events.StatusChanged, events.EmailSent}, f.rec.Channels())

	// The next send moves on to the Good Match job.
	res, err = f.svc.Send(context.Background(), SendRequest{})
	require.NoError(t, err)
	assert.Equal(t, "Good", res.Company)

	_, err = f.svc.Send(context.Background(), SendRequest{})
	assert.ErrorIs(t, err, ErrNoEligibleJob)
}

func TestSendSpecificJobWithOverrides(t *testing.T) {
	f := newFixture(t, true)
	ids := f.seed(t, model.Job{Company: "Acme", Role: "Intern", Status: "Stretch", RecruiterEmail: "hr@acme.io"})

	_, err := f.svc.Send(context.Background(), SendRequest{
		JobID:   ids["Acme"],
		Subject: "Custom subject",
		Body:    "Custom body",
	})
	require.NoError(t, err)
	require.Len(t, f.sender.sent, 1)
	assert.Equal(t, Message{To: "hr@acme.io", From: sender, Subject: "Custom subject", Body: "Custom body"}, f.sender.sent[0])
	assert.Equal(t, "Emailed", f.status(t, ids["Acme"]))
}

func TestSendRejectsBadRecipient(t *testing.T) {
	f := newFixture(t, true)
	ids := f.seed(t, model.Job{Company: "Acme", Role: "Intern", Status: "Good Match"})

	_, err := f.svc.Send(context.Background(), SendRequest{JobID: ids["Acme"], To: "not an email"})
	var verr *tracker.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, f.sender.sent)
	assert.Equal(t, "Good Match", f.status(t, ids["Acme"]))
}

func TestSendFailureLeavesStatus(t *testing.T) {
	f := newFixture(t, true)
	ids := f.seed(t, model.Job{Company: "Acme", Role: "Intern", Status: "High Priority"})
	f.sender.err = Unavailable{Reason: errors.New("no token")}.Send(context.Background(), Message{})

	_, err := f.svc.Send(context.Background(), SendRequest{})
	assert.ErrorIs(t, err, ErrSenderUnavailable)
	assert.Equal(t, "High Priority", f.status(t, ids["Acme"]))
	assert.Empty(t, f.rec.Events())
}

func TestSendKeepsLaterManualStatus(t *testing.T) {
	f := newFixture(t, true)
	ids := f.seed(t, model.Job{Company: "Acme", Role: "Intern", Status: "Interview"})

	_, err := f.svc.Send(context.Background(), SendRequest{JobID: ids["Acme"]})
	require.NoError(t, err)
	assert.Equal(t, "Interview", f.status(t, ids["Acme"]))
	assert.Equal(t, []string{events.EmailSent}, f.rec.Channels())
}

func TestPreviewErrors(t *testing.T) {
	f := newFixture(t, false)
	_, err := f.svc.Preview(context.Background(), 0)
	assert.ErrorIs(t, err, scoring.ErrNoProfile)

	f = newFixture(t, true)
	_, err = f.svc.Preview(context.Background(), 0)
	assert.ErrorIs(t, err, ErrNoEligibleJob)

	_, err = f.svc.Preview(context.Background(), 42)
	assert.ErrorIs(t, err, tracker.ErrNotFound)
}

func TestPreviewDoesNotSend(t *testing.T) {
	f := newFixture(t, true)
	ids := f.seed(t, model.Job{Company: "Acme", Role: "ML Intern", Status: "Good Match", RequiredSkills: "docker, k8s"})

	d, err := f.svc.Preview(context.Background(), ids["Acme"])
	require.NoError(t, err)
	assert.Equal(t, "Application for ML Intern – AI/ML Enthusiast", d.Subject)
	assert.Equal(t, "Priya Sharma", d.Contact.FullName)
	assert.Contains(t, d.Body, "experience in docker,")
	assert.Empty(t, f.sender.sent)
	assert.Equal(t, "Good Match", f.status(t, ids["Acme"]))
}
