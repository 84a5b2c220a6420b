package playlist

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"

	"github.com/Zerr0-C00L/EventCast/internal/schedule"
)

func testSchedule(t *testing.T) schedule.Schedule {
	t.Helper()
	data := `{
		"Saturday": {
			"Soccer": [
				{"event": "Derby", "channels": [
					{"channel_id": "1", "channel_name": "Sky Sports Racing UK"},
					{"channel_id": "2", "channel_name": "Dead Channel"}
				]}
			],
			"Tennis": [
				{"event": "Open Final", "channels": [{"channel_id": "3", "channel_name": "ESPN"}]}
			]
		}
	}`
	var s schedule.Schedule
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestProxyURL(t *testing.T) {
	const stream = "https://host.example/nfs/premium1/mono.m3u8"
	got := ProxyURL("https://proxy.example/watch/", stream)

	if !strings.HasPrefix(got, "https://proxy.example/watch/") {
		t.Errorf("ProxyURL = %q, missing prefix", got)
	}
	if !strings.HasSuffix(got, ".m3u8") {
		t.Errorf("ProxyURL = %q, missing extension", got)
	}
	token := strings.TrimSuffix(strings.TrimPrefix(got, "https://proxy.example/watch/"), ".m3u8")
	decoded, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		t.Fatalf("token is not valid base64: %v", err)
	}
	if string(decoded) != stream {
		t.Errorf("decoded token = %q, want %q", decoded, stream)
	}
}

func TestCompose(t *testing.T) {
	sched := testSchedule(t)
	streams := map[string]string{
		"1": "https://host.example/nfs/premium1/mono.m3u8",
		"3": "https://host.example/nfs/premium3/mono.m3u8",
	}
	res := Resolvers{
		MatchEPG: func(name string) string {
			if name == "Sky Sports Racing UK" {
				return "Sky Sports Racing.uk"
			}
			return ""
		},
		Logo: func(name string) string { return "https://logos.example/default.png" },
	}
	opts := Options{
		GuideURL:    "https://guide.example/epg.xml.gz",
		ProxyPrefix: "https://proxy.example/watch/",
		VLCOptions:  []string{"#EXTVLCOPT:http-user-agent=TestAgent"},
	}

	out, stats := Compose(sched, streams, res, opts)
	text := string(out)
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")

	if lines[0] != "#EXTM3U" {
		t.Errorf("line 0 = %q", lines[0])
	}
	if lines[1] != `#EXTM3U url-tvg="https://guide.example/epg.xml.gz"` {
		t.Errorf("line 1 = %q", lines[1])
	}

	if !strings.Contains(text, `tvg-id="Sky Sports Racing.uk"`) {
		t.Error("matched EPG id missing")
	}
	if !strings.Contains(text, `tvg-id="3"`) {
		t.Error("unmatched record should fall back to its raw identifier")
	}
	if strings.Contains(text, "Dead Channel") {
		t.Error("record without a validated stream should be omitted")
	}
	if !strings.Contains(text, "Derby (Sky Sports Racing UK)") {
		t.Error("entry title missing")
	}
	if !strings.Contains(text, "#EXTVLCOPT:http-user-agent=TestAgent") {
		t.Error("VLC option lines missing")
	}
	if !strings.Contains(text, `group-title="SOCCER"`) || !strings.Contains(text, `group-title="TENNIS"`) {
		t.Error("group titles missing or not upper-cased")
	}

	// SOCCER sorts before TENNIS.
	if strings.Index(text, `group-title="SOCCER"`) > strings.Index(text, `group-title="TENNIS"`) {
		t.Error("groups not emitted in sorted order")
	}

	wantToken := ProxyURL(opts.ProxyPrefix, streams["1"])
	if !strings.Contains(text, wantToken) {
		t.Errorf("playlist missing proxied stream URL %q", wantToken)
	}

	if stats.Entries != 2 {
		t.Errorf("stats.Entries = %d, want 2", stats.Entries)
	}
	if stats.EPGMatches != 1 {
		t.Errorf("stats.EPGMatches = %d, want 1", stats.EPGMatches)
	}
}

func TestComposeEmptySchedule(t *testing.T) {
	out, stats := Compose(schedule.Schedule{}, nil, Resolvers{
		MatchEPG: func(string) string { return "" },
		Logo:     func(string) string { return "" },
	}, Options{GuideURL: "https://guide.example/epg.xml.gz"})

	if stats.Entries != 0 {
		t.Errorf("stats.Entries = %d, want 0", stats.Entries)
	}
	want := "#EXTM3U\n#EXTM3U url-tvg=\"https://guide.example/epg.xml.gz\"\n"
	if string(out) != want {
		t.Errorf("output = %q, want header only", out)
	}
}
