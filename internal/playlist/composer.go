package playlist

import (
	"encoding/base64"
	"fmt"
	"sort"
	"strings"

	"github.com/Zerr0-C00L/EventCast/internal/models"
	"github.com/Zerr0-C00L/EventCast/internal/schedule"
)

// Options configures playlist composition.
type Options struct {
	GuideURL    string
	ProxyPrefix string
	VLCOptions  []string
}

// Resolvers are the lookup callbacks supplied by the refresher. Both read
// frozen indexes and must be pure.
type Resolvers struct {
	MatchEPG func(displayName string) string
	Logo     func(displayName string) string
}

// Stats counts what the composition produced.
type Stats struct {
	Entries    int
	EPGMatches int
}

// ProxyURL encodes a validated endpoint into its proxy reference token.
// The raw endpoint is always base64-encoded into the token; decoding
// happens only on the proxy side.
func ProxyURL(prefix, streamURL string) string {
	encoded := base64.StdEncoding.EncodeToString([]byte(streamURL))
	return prefix + encoded + ".m3u8"
}

// Compose renders the refreshed playlist. Groups are emitted in sorted
// order; records whose identifier has no validated endpoint are omitted.
// The tvg-id falls back to the raw identifier when no EPG match exists.
func Compose(sched schedule.Schedule, streams map[string]string, res Resolvers, opts Options) ([]byte, Stats) {
	lines := []string{
		"#EXTM3U",
		fmt.Sprintf("#EXTM3U url-tvg=%q", opts.GuideURL),
	}

	grouped := sched.Grouped()
	groups := make([]string, 0, len(grouped))
	for g := range grouped {
		groups = append(groups, g)
	}
	sort.Strings(groups)

	var stats Stats
	for _, group := range groups {
		for _, ev := range grouped[group] {
			for _, rec := range ev.Records() {
				stream, ok := streams[rec.Identifier]
				if !ok {
					continue
				}

				stats.Entries++
				match := models.MatchResult{
					DisplayName: rec.DisplayName,
					MatchedID:   res.MatchEPG(rec.DisplayName),
				}
				tvgID := match.MatchedID
				if tvgID == "" {
					tvgID = rec.Identifier
				} else {
					stats.EPGMatches++
				}

				entry := models.PlaylistEntry{
					Title:       ev.Title,
					ChannelName: rec.DisplayName,
					Group:       group,
					TVGID:       tvgID,
					LogoURL:     res.Logo(rec.DisplayName),
					StreamURL:   ProxyURL(opts.ProxyPrefix, stream),
				}
				lines = append(lines, fmt.Sprintf(
					"#EXTINF:-1 tvg-id=%q tvg-logo=%q group-title=%q,%s (%s)",
					entry.TVGID, entry.LogoURL, entry.Group, entry.Title, entry.ChannelName))
				lines = append(lines, opts.VLCOptions...)
				lines = append(lines, entry.StreamURL)
			}
		}
	}

	return []byte(strings.Join(lines, "\n") + "\n"), stats
}
