package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"careeragent/internal/config"
	"careeragent/internal/db"
	"careeragent/internal/events"
	"careeragent/internal/ingest"
	"careeragent/internal/logger"
	"careeragent/internal/outreach"
	"careeragent/internal/pipeline"
	"careeragent/internal/profile"
	"careeragent/internal/scoring"
	"careeragent/internal/store"
	"careeragent/internal/tracker"
	"careeragent/internal/vocab"
)

// Listing sites are polled at most once per hostInterval.
const hostInterval = 2 * time.Second

// app is the fully wired service graph shared by every subcommand.
type app struct {
	cfg *config.Config
	log *zap.Logger

	store    store.Store
	profiles *profile.Service
	tracker  *tracker.Service
	scoring  *scoring.Service
	outreach *outreach.Service
	runner   *pipeline.Runner

	closers []func()
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogJSON, cfg.LogDebug)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	a := &app{cfg: cfg, log: log}
	a.closers = append(a.closers, func() { _ = log.Sync() })

	v, err := vocab.Load(cfg.VocabularyFile)
	if err != nil {
		a.Close()
		return nil, err
	}

	// ── Store ────────────────────────────────────────────────────────────────
	st, err := store.Open(ctx, cfg.DatabaseURL, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("store: %w", err)
	}
	a.store = st
	a.closers = append(a.closers, func() { _ = st.Close() })

	// ── Events ───────────────────────────────────────────────────────────────
	var pub events.Publisher = events.Nop{}
	if cfg.RedisURL != "" {
		rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("redis: %w", err)
		}
		a.closers = append(a.closers, func() { _ = rdb.Close() })
		pub = events.NewRedis(rdb, log)
		log.Info("redis connected, publishing events")
	}

	// ── Mail ─────────────────────────────────────────────────────────────────
	var sender outreach.Sender
	gmail, err := outreach.NewGmailSender(ctx, cfg.GmailCredentialsPath, cfg.GmailTokenPath, log)
	if err != nil {
		log.Warn("gmail unavailable, emails will not be sent", zap.Error(err))
		sender = outreach.Unavailable{Reason: err}
	} else {
		sender = gmail
	}

	// ── Sources ──────────────────────────────────────────────────────────────
	fetcher := ingest.NewFetcher(nil, ingest.NewHostLimiter(hostInterval, 1))
	sources, err := ingest.NewSources(cfg.SearchSources, fetcher, ingest.AdzunaCredentials{
		AppID:   cfg.AdzunaAppID,
		AppKey:  cfg.AdzunaAppKey,
		Country: cfg.AdzunaCountry,
	}, log)
	if err != nil {
		a.Close()
		return nil, err
	}

	// ── Services ─────────────────────────────────────────────────────────────
	a.tracker = tracker.NewService(st, pub, log)
	a.scoring = scoring.NewService(st, scoring.NewEngine(v), pub, log)
	a.profiles = profile.NewService(st, profile.NewExtractor(v), log)
	a.outreach = outreach.NewService(st, a.tracker, outreach.NewComposer(cfg.SenderEmail), sender, pub, log)
	a.runner = pipeline.NewRunner(st,
		ingest.NewSearcher(sources, st, pub, cfg.RedFlags, log),
		a.scoring,
		a.outreach,
		cfg.LockFile,
		log,
	)
	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// withApp runs fn with a freshly wired app and closes it afterwards.
func withApp(ctx context.Context, fn func(a *app) error) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}
