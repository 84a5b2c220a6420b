package validator

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Zerr0-C00L/EventCast/internal/models"
)

// Config holds validator tuning.
type Config struct {
	Templates    []string          // mirror URL templates with a {num} placeholder
	Workers      int               // concurrent probe workers (default: 20)
	Attempts     int               // attempt budget per candidate URL (default: 3)
	ProbeTimeout time.Duration     // per-request timeout (default: 10s)
	RetryBackoff time.Duration     // sleep after a rate-limited response (default: 5s)
	Headers      map[string]string // headers sent with every probe
}

// DefaultConfig returns default validator configuration.
func DefaultConfig() Config {
	return Config{
		Workers:      20,
		Attempts:     3,
		ProbeTimeout: 10 * time.Second,
		RetryBackoff: 5 * time.Second,
	}
}

// Validator decides which candidate endpoints are currently live and
// aggregates the first success per identifier into a stream map.
type Validator struct {
	config     Config
	httpClient *http.Client
	logger     *slog.Logger

	// sleep is swappable so tests don't wait out real backoffs
	sleep func(time.Duration)
}

// New creates a validator. Zero-valued config fields fall back to defaults.
func New(config Config, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if config.Workers <= 0 {
		config.Workers = def.Workers
	}
	if config.Attempts <= 0 {
		config.Attempts = def.Attempts
	}
	if config.ProbeTimeout <= 0 {
		config.ProbeTimeout = def.ProbeTimeout
	}
	if config.RetryBackoff <= 0 {
		config.RetryBackoff = def.RetryBackoff
	}

	return &Validator{
		config: config,
		httpClient: &http.Client{
			Timeout: config.ProbeTimeout,
		},
		logger: logger,
		sleep:  time.Sleep,
	}
}

// Candidates expands one identifier into its candidate URLs, one per
// template in template order. Pure and deterministic.
func Candidates(identifier string, templates []string) []models.CandidateURL {
	out := make([]models.CandidateURL, 0, len(templates))
	for i, tpl := range templates {
		out = append(out, models.CandidateURL{
			Identifier:    identifier,
			TemplateIndex: i,
			URL:           strings.ReplaceAll(tpl, "{num}", identifier),
		})
	}
	return out
}

type acceptance struct {
	identifier string
	url        string
}

// BuildStreamMap probes every candidate of every identifier with a bounded
// worker pool and returns identifier → first URL accepted by completion
// order. Identifiers with no reachable candidate are absent from the map.
func (v *Validator) BuildStreamMap(ctx context.Context, identifiers []string) map[string]string {
	candidates := make(chan models.CandidateURL)
	accepted := make(chan acceptance)

	var wg sync.WaitGroup
	for i := 0; i < v.config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for cand := range candidates {
				outcome := v.Check(ctx, cand)
				if outcome.Kind == models.OutcomeReachable {
					accepted <- acceptance{identifier: cand.Identifier, url: cand.URL}
				}
			}
		}()
	}

	go func() {
		defer close(candidates)
		for _, id := range identifiers {
			for _, cand := range Candidates(id, v.config.Templates) {
				select {
				case candidates <- cand:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	go func() {
		wg.Wait()
		close(accepted)
	}()

	// Single aggregation point: first writer wins per identifier, later
	// acceptances for the same identifier are discarded.
	streams := make(map[string]string)
	for acc := range accepted {
		if _, ok := streams[acc.identifier]; ok {
			continue
		}
		streams[acc.identifier] = acc.url
		v.logger.Debug("Accepted stream", "identifier", acc.identifier, "url", acc.url)
	}

	v.logger.Info("Stream validation completed",
		"identifiers", len(identifiers),
		"working_streams", len(streams))
	return streams
}

// Check runs the retry policy for one candidate URL:
// HEAD 200 accepts, 404/410 rejects, 429 sleeps one backoff and consumes
// an attempt, any other status falls back to a GET within the same
// attempt, and a transport error rejects immediately without consuming
// the remaining attempts.
func (v *Validator) Check(ctx context.Context, cand models.CandidateURL) models.ValidationOutcome {
	for attempt := 1; attempt <= v.config.Attempts; attempt++ {
		if ctx.Err() != nil {
			return models.ValidationOutcome{Candidate: cand, Kind: models.OutcomeTransient}
		}

		status, err := v.probe(ctx, http.MethodHead, cand.URL)
		if err != nil {
			return models.ValidationOutcome{Candidate: cand, Kind: models.OutcomeTransient}
		}

		switch {
		case status == http.StatusOK:
			return models.ValidationOutcome{Candidate: cand, Kind: models.OutcomeReachable}
		case status == http.StatusNotFound || status == http.StatusGone:
			return models.ValidationOutcome{Candidate: cand, Kind: models.OutcomeNotFound}
		case status == http.StatusTooManyRequests:
			v.logger.Debug("Rate limited, backing off",
				"url", cand.URL,
				"attempt", attempt)
			v.sleep(v.config.RetryBackoff)
			continue
		}

		// Odd response: secondary full-fetch probe within the same attempt.
		status, err = v.probe(ctx, http.MethodGet, cand.URL)
		if err != nil {
			return models.ValidationOutcome{Candidate: cand, Kind: models.OutcomeTransient}
		}
		switch status {
		case http.StatusOK:
			return models.ValidationOutcome{Candidate: cand, Kind: models.OutcomeReachable}
		case http.StatusNotFound, http.StatusGone:
			return models.ValidationOutcome{Candidate: cand, Kind: models.OutcomeNotFound}
		}
	}

	return models.ValidationOutcome{Candidate: cand, Kind: models.OutcomeTransient}
}

func (v *Validator) probe(ctx context.Context, method, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return 0, err
	}
	for k, val := range v.config.Headers {
		req.Header.Set(k, val)
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	// The body is never needed, only the status.
	resp.Body.Close()
	return resp.StatusCode, nil
}
