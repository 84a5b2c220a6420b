package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Zerr0-C00L/EventCast/internal/config"
	"github.com/Zerr0-C00L/EventCast/internal/playlist"
)

// newPipelineServer fakes every upstream the refresher talks to: the
// event schedule, the stream mirrors, the EPG reference list, and the
// artwork listing.
func newPipelineServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/schedule", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"Saturday": {
				"Soccer": [
					{"event": "Grand Final", "channels": [
						{"channel_id": "1", "channel_name": "Sky Sports Racing UK"},
						{"channel_id": "2", "channel_name": "Dead Channel"}
					]}
				]
			}
		}`))
	})

	mux.HandleFunc("/streams/", func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "premium1/") {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})

	mux.HandleFunc("/epg-ids", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Sky Sports Racing.uk\nBBC One.uk\n"))
	})

	mux.HandleFunc("/logos", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]string{
			{"name": "united-kingdom", "type": "dir"},
		})
	})
	mux.HandleFunc("/logos/united-kingdom", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]string{
			{"name": "sky-sports-racing-uk.png", "type": "file"},
		})
	})

	return httptest.NewServer(mux)
}

func pipelineConfig(srvURL string) *config.Config {
	return &config.Config{
		ScheduleURL:      srvURL + "/schedule",
		ReferenceListURL: srvURL + "/epg-ids",
		GuideXMLURL:      "https://guide.example/epg.xml.gz",
		LogoListingURL:   srvURL + "/logos",
		LogoRawRoot:      "https://raw.example/",
		DefaultLogoURL:   "https://raw.example/misc/no-logo.png",
		ProxyPrefix:      "https://proxy.example/watch/",
		URLTemplates: []string{
			srvURL + "/streams/premium{num}/mono.m3u8",
		},
		PreferredCountries:   []string{"uk", "us"},
		Workers:              4,
		Attempts:             2,
		ProbeTimeout:         2 * time.Second,
		RetryBackoff:         time.Millisecond,
		RefreshIntervalHours: 6,
	}
}

func TestRefresherRun(t *testing.T) {
	srv := newPipelineServer(t)
	defer srv.Close()

	r := NewRefresher(pipelineConfig(srv.URL), slog.Default())
	if r.Playlist() != nil {
		t.Fatal("playlist should be nil before the first run")
	}

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	text := string(r.Playlist())
	if text == "" {
		t.Fatal("playlist empty after successful run")
	}
	if !strings.Contains(text, `tvg-id="Sky Sports Racing.uk"`) {
		t.Error("EPG match missing from playlist")
	}
	if !strings.Contains(text, "https://raw.example/united-kingdom/sky-sports-racing-uk.png") {
		t.Error("resolved logo URL missing from playlist")
	}
	if strings.Contains(text, "Dead Channel") {
		t.Error("channel without a working stream should be omitted")
	}
	wantStream := playlist.ProxyURL("https://proxy.example/watch/", srv.URL+"/streams/premium1/mono.m3u8")
	if !strings.Contains(text, wantStream) {
		t.Errorf("playlist missing proxied stream %q", wantStream)
	}

	status := r.Status()
	if status.Running {
		t.Error("Running should be false after the pass")
	}
	if status.RunCount != 1 {
		t.Errorf("RunCount = %d, want 1", status.RunCount)
	}
	if status.LastError != "" {
		t.Errorf("LastError = %q, want empty", status.LastError)
	}
	if status.Stats.Identifiers != 2 {
		t.Errorf("Stats.Identifiers = %d, want 2", status.Stats.Identifiers)
	}
	if status.Stats.WorkingStreams != 1 {
		t.Errorf("Stats.WorkingStreams = %d, want 1", status.Stats.WorkingStreams)
	}
	if status.Stats.PlaylistEntries != 1 || status.Stats.EPGMatches != 1 {
		t.Errorf("Stats = %+v", status.Stats)
	}
}

func TestRefresherRunScheduleFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := NewRefresher(pipelineConfig(srv.URL), slog.Default())
	if err := r.Run(context.Background()); err == nil {
		t.Fatal("expected error when schedule fetch fails")
	}

	if r.Playlist() != nil {
		t.Error("playlist should stay nil after a failed run")
	}
	status := r.Status()
	if status.RunCount != 0 {
		t.Errorf("RunCount = %d, want 0", status.RunCount)
	}
	if status.LastError == "" {
		t.Error("LastError not recorded")
	}
}

func TestRefresherDegradesWithoutReferenceList(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/schedule", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"Saturday": {
				"Soccer": [
					{"event": "Grand Final", "channels": [{"channel_id": "1", "channel_name": "Sky Sports Racing UK"}]}
				]
			}
		}`))
	})
	mux.HandleFunc("/streams/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	// Reference list and logo listing both 404.
	srv := httptest.NewServer(mux)
	defer srv.Close()

	r := NewRefresher(pipelineConfig(srv.URL), slog.Default())
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run should degrade, not fail: %v", err)
	}

	text := string(r.Playlist())
	// No alias index: the raw identifier doubles as the tvg-id.
	if !strings.Contains(text, `tvg-id="1"`) {
		t.Error("raw identifier fallback missing")
	}
	if !strings.Contains(text, `tvg-logo="https://raw.example/misc/no-logo.png"`) {
		t.Error("default logo fallback missing")
	}
}
