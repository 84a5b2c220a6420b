package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Zerr0-C00L/EventCast/internal/config"
	"github.com/Zerr0-C00L/EventCast/internal/epg"
	"github.com/Zerr0-C00L/EventCast/internal/logos"
	"github.com/Zerr0-C00L/EventCast/internal/models"
	"github.com/Zerr0-C00L/EventCast/internal/playlist"
	"github.com/Zerr0-C00L/EventCast/internal/schedule"
	"github.com/Zerr0-C00L/EventCast/internal/validator"
)

// Status describes the refresher for the admin API.
type Status struct {
	Running   bool            `json:"running"`
	LastRun   time.Time       `json:"last_run"`
	RunCount  int64           `json:"run_count"`
	LastError string          `json:"last_error,omitempty"`
	Stats     models.RunStats `json:"stats"`
}

// Refresher runs one full resolution pass — schedule → validated streams →
// EPG/logo matching → playlist bytes — and keeps the latest result behind
// a snapshot. Indexes built during a pass are frozen before any matching
// reads them, so the matching stage needs no locks.
type Refresher struct {
	cfg             *config.Config
	scheduleClient  *schedule.Client
	referenceClient *epg.Client
	logoClient      *logos.Client
	validator       *validator.Validator
	logger          *slog.Logger

	interval time.Duration
	stopChan chan struct{}

	mu       sync.RWMutex
	playlist []byte
	status   Status
}

// NewRefresher wires the pipeline from configuration.
func NewRefresher(cfg *config.Config, logger *slog.Logger) *Refresher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Refresher{
		cfg:             cfg,
		scheduleClient:  schedule.NewClient(cfg.ScheduleURL, cfg.RequestHeaders),
		referenceClient: epg.NewClient(cfg.ReferenceListURL, cfg.RequestHeaders),
		logoClient:      logos.NewClient(cfg.LogoListingURL, cfg.LogoRawRoot, logger),
		validator: validator.New(validator.Config{
			Templates:    cfg.URLTemplates,
			Workers:      cfg.Workers,
			Attempts:     cfg.Attempts,
			ProbeTimeout: cfg.ProbeTimeout,
			RetryBackoff: cfg.RetryBackoff,
			Headers:      cfg.RequestHeaders,
		}, logger),
		logger:   logger,
		interval: time.Duration(cfg.RefreshIntervalHours) * time.Hour,
		stopChan: make(chan struct{}),
	}
}

// Playlist returns the latest composed playlist, nil before the first
// successful run.
func (r *Refresher) Playlist() []byte {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.playlist
}

// Status returns a snapshot of the refresher state.
func (r *Refresher) Status() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status
}

// Run performs one refresh pass. Only a schedule fetch failure is an
// error; a missing reference list or logo listing degrades to empty
// indexes and missing endpoints simply drop out of the playlist.
func (r *Refresher) Run(ctx context.Context) error {
	start := time.Now()
	r.setRunning(true)
	defer r.setRunning(false)

	r.logger.Info("Starting playlist refresh")

	sched, err := r.scheduleClient.Fetch(ctx)
	if err != nil {
		r.recordError(err)
		return fmt.Errorf("refresh: %w", err)
	}

	ids := sched.Identifiers()
	r.logger.Info("Schedule loaded", "identifiers", len(ids))

	streams := r.validator.BuildStreamMap(ctx, ids)

	lines, err := r.referenceClient.FetchReferenceList(ctx)
	if err != nil {
		r.logger.Warn("Reference list unavailable, EPG matching degraded", "error", err)
	}
	aliasIndex := epg.BuildIndex(lines)
	r.logger.Info("Alias index built", "keys", aliasIndex.Len())

	logoIndex, err := r.logoClient.BuildIndex(ctx)
	if err != nil {
		r.logger.Warn("Logo listing unavailable, using default artwork", "error", err)
	}

	resolvers := playlist.Resolvers{
		MatchEPG: func(name string) string {
			return epg.Match(name, aliasIndex, r.cfg.PreferredCountries)
		},
		Logo: func(name string) string {
			return logos.Resolve(name, logoIndex, r.cfg.DefaultLogoURL)
		},
	}
	data, pstats := playlist.Compose(sched, streams, resolvers, playlist.Options{
		GuideURL:    r.cfg.GuideXMLURL,
		ProxyPrefix: r.cfg.ProxyPrefix,
		VLCOptions:  r.cfg.VLCOptions,
	})

	stats := models.RunStats{
		StartedAt:       start,
		Duration:        time.Since(start),
		Identifiers:     len(ids),
		WorkingStreams:  len(streams),
		AliasKeys:       aliasIndex.Len(),
		LogoEntries:     len(logoIndex),
		PlaylistEntries: pstats.Entries,
		EPGMatches:      pstats.EPGMatches,
	}

	r.mu.Lock()
	r.playlist = data
	r.status.LastRun = time.Now()
	r.status.RunCount++
	r.status.LastError = ""
	r.status.Stats = stats
	r.mu.Unlock()

	r.logger.Info("Playlist refresh completed",
		"duration_seconds", stats.Duration.Seconds(),
		"identifiers", stats.Identifiers,
		"working_streams", stats.WorkingStreams,
		"entries", stats.PlaylistEntries,
		"epg_matches", stats.EPGMatches)
	return nil
}

// Start runs an immediate refresh and then one per interval until the
// context is cancelled or Stop is called.
func (r *Refresher) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("Refresher started", "interval", r.interval.String())

	if err := r.Run(ctx); err != nil {
		r.logger.Error("Initial refresh failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Refresher stopped (context cancelled)")
			return
		case <-r.stopChan:
			r.logger.Info("Refresher stopped (stop signal)")
			return
		case <-ticker.C:
			if err := r.Run(ctx); err != nil {
				r.logger.Error("Refresh failed", "error", err)
			}
		}
	}
}

// Stop gracefully stops the refresh loop.
func (r *Refresher) Stop() {
	close(r.stopChan)
}

func (r *Refresher) setRunning(running bool) {
	r.mu.Lock()
	r.status.Running = running
	r.mu.Unlock()
}

func (r *Refresher) recordError(err error) {
	r.mu.Lock()
	r.status.LastError = err.Error()
	r.mu.Unlock()
}
