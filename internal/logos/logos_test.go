package logos

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newListingServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/countries", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]listingItem{
			{Name: "united-kingdom", Type: "dir"},
			{Name: "united-states", Type: "dir"},
			{Name: "README.md", Type: "file"},
		})
	})
	mux.HandleFunc("/countries/united-kingdom", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]listingItem{
			{Name: "sky-sports-racing-uk.png", Type: "file"},
			{Name: "bbc-one.png", Type: "file"},
			{Name: "notes.txt", Type: "file"},
		})
	})
	mux.HandleFunc("/countries/united-states", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	return httptest.NewServer(mux)
}

func TestBuildIndex(t *testing.T) {
	srv := newListingServer(t)
	defer srv.Close()

	c := NewClient(srv.URL+"/countries", "https://raw.example/", slog.Default())
	index, err := c.BuildIndex(context.Background())
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}

	wantURL := "https://raw.example/united-kingdom/sky-sports-racing-uk.png"
	for _, key := range []string{
		"sky-sports-racing-uk.png",
		"sky-sports-racing-uk",
		"sky-sports-racing", // country suffix stripped
	} {
		if got := index[key]; got != wantURL {
			t.Errorf("index[%q] = %q, want %q", key, got, wantURL)
		}
	}
	if _, ok := index["notes.txt"]; ok {
		t.Error("non-png file registered")
	}
	if _, ok := index["notes"]; ok {
		t.Error("non-png base registered")
	}
}

func TestBuildIndexTopLevelFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "https://raw.example/", slog.Default())
	index, err := c.BuildIndex(context.Background())
	if err == nil {
		t.Error("expected error from top-level listing failure")
	}
	if len(index) != 0 {
		t.Errorf("index = %v, want empty", index)
	}
}

func TestResolve(t *testing.T) {
	index := Index{
		"bbc-one":    "https://raw.example/uk/bbc-one.png",
		"espn2.png":  "https://raw.example/us/espn2.png",
		"sky-sports": "https://raw.example/uk/sky-sports.png",
	}
	const fallback = "https://example.com/default.png"

	tests := []struct {
		name string
		want string
	}{
		{"BBC One", "https://raw.example/uk/bbc-one.png"},
		// matched via the ".png" variant
		{"ESPN2", "https://raw.example/us/espn2.png"},
		// quality suffix stripped
		{"Sky Sports HD", "https://raw.example/uk/sky-sports.png"},
		{"Nowhere Channel", fallback},
	}
	for _, tt := range tests {
		if got := Resolve(tt.name, index, fallback); got != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestResolveEmptyIndex(t *testing.T) {
	const fallback = "https://example.com/default.png"
	if got := Resolve("BBC One", nil, fallback); got != fallback {
		t.Errorf("Resolve on nil index = %q, want fallback", got)
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"BBC One", "bbc-one"},
		{"TV5 Monde", "tv5-monde"},
		{"Café TV", "cafe-tv"},
		{"A&E", "a-and-e"},
		{"Sky Sports+", "sky-sports-plus"},
		{"  Padded  Name  ", "padded-name"},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
