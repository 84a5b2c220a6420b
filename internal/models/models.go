package models

import "time"

// ChannelRecord is one channel reference extracted from a schedule event.
// Records are immutable and live for a single resolution pass.
type ChannelRecord struct {
	Identifier  string `json:"identifier"`
	DisplayName string `json:"display_name"`
}

// CandidateURL is one templated guess at a channel's live media location,
// derived from an identifier and a mirror template.
type CandidateURL struct {
	Identifier    string `json:"identifier"`
	TemplateIndex int    `json:"template_index"`
	URL           string `json:"url"`
}

// OutcomeKind classifies the result of probing one candidate URL.
type OutcomeKind int

const (
	// OutcomeReachable means the endpoint answered and is serving.
	OutcomeReachable OutcomeKind = iota
	// OutcomeNotFound means the endpoint definitively does not exist.
	OutcomeNotFound
	// OutcomeTransient covers transport errors, rate-limit exhaustion and
	// anything else that rejected the candidate without proving absence.
	OutcomeTransient
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeReachable:
		return "reachable"
	case OutcomeNotFound:
		return "not_found"
	default:
		return "transient_failure"
	}
}

// ValidationOutcome is the final verdict for a single candidate URL.
type ValidationOutcome struct {
	Candidate CandidateURL `json:"candidate"`
	Kind      OutcomeKind  `json:"kind"`
}

// MatchResult pairs a display name with its best reference identifier.
// MatchedID is empty when no cascade stage produced a hit.
type MatchResult struct {
	DisplayName string `json:"display_name"`
	MatchedID   string `json:"matched_id,omitempty"`
}

// PlaylistEntry is one fully resolved channel ready for serialization.
type PlaylistEntry struct {
	Title       string `json:"title"`
	ChannelName string `json:"channel_name"`
	Group       string `json:"group"`
	TVGID       string `json:"tvg_id"`
	LogoURL     string `json:"logo_url"`
	StreamURL   string `json:"stream_url"`
}

// RunStats summarizes one refresh pass.
type RunStats struct {
	StartedAt       time.Time     `json:"started_at"`
	Duration        time.Duration `json:"duration_ms"`
	Identifiers     int           `json:"identifiers"`
	WorkingStreams  int           `json:"working_streams"`
	AliasKeys       int           `json:"alias_keys"`
	LogoEntries     int           `json:"logo_entries"`
	PlaylistEntries int           `json:"playlist_entries"`
	EPGMatches      int           `json:"epg_matches"`
}
