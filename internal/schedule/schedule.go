package schedule

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"

	"github.com/Zerr0-C00L/EventCast/internal/models"
)

// Schedule is the upstream event feed: day → category → events.
type Schedule map[string]map[string][]Event

// Event is one scheduled broadcast with its channel references.
type Event struct {
	Title     string       `json:"event"`
	Channels  ChannelField `json:"channels"`
	Channels2 ChannelField `json:"channels2"`
}

// FieldKind tags the shape a channel field arrived in.
type FieldKind int

const (
	FieldEmpty FieldKind = iota
	FieldSingle
	FieldSequence
	FieldKeyed
)

// Entry is one channel reference inside a channel field.
type Entry struct {
	ID   string
	Name string
}

// ChannelField is the heterogeneous channel slot of an event: a scalar, a
// sequence of entries, a mapping keyed by arbitrary strings, or a single
// keyed entry. The shape is resolved once here at the decoding boundary;
// downstream code only ever sees Entries.
type ChannelField struct {
	Kind    FieldKind
	Entries []Entry
}

// UnmarshalJSON accepts every observed field shape and never fails:
// malformed entries are dropped rather than aborting the decode.
func (f *ChannelField) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*f = ChannelField{Kind: FieldEmpty}
		return nil
	}

	switch trimmed[0] {
	case '[':
		var raws []json.RawMessage
		if err := json.Unmarshal(trimmed, &raws); err != nil {
			*f = ChannelField{Kind: FieldEmpty}
			return nil
		}
		entries := make([]Entry, 0, len(raws))
		for _, raw := range raws {
			if e, ok := decodeEntry(raw); ok {
				entries = append(entries, e)
			}
		}
		*f = ChannelField{Kind: FieldSequence, Entries: entries}

	case '{':
		var m map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &m); err != nil {
			*f = ChannelField{Kind: FieldEmpty}
			return nil
		}
		if _, ok := m["channel_id"]; ok {
			if e, ok := decodeEntry(trimmed); ok {
				*f = ChannelField{Kind: FieldSingle, Entries: []Entry{e}}
			} else {
				*f = ChannelField{Kind: FieldEmpty}
			}
			return nil
		}
		// Mapping from arbitrary keys to entries; keys sorted so the
		// record order is deterministic.
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		entries := make([]Entry, 0, len(keys))
		for _, k := range keys {
			if e, ok := decodeEntry(m[k]); ok {
				entries = append(entries, e)
			}
		}
		*f = ChannelField{Kind: FieldKeyed, Entries: entries}

	default:
		if e, ok := decodeEntry(trimmed); ok {
			*f = ChannelField{Kind: FieldSingle, Entries: []Entry{e}}
		} else {
			*f = ChannelField{Kind: FieldEmpty}
		}
	}
	return nil
}

func decodeEntry(raw json.RawMessage) (Entry, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Entry{}, false
	}

	if trimmed[0] == '{' {
		var obj struct {
			ChannelID   json.RawMessage `json:"channel_id"`
			ChannelName string          `json:"channel_name"`
		}
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return Entry{}, false
		}
		id := scalarString(obj.ChannelID)
		if id == "" {
			return Entry{}, false
		}
		name := strings.TrimSpace(obj.ChannelName)
		if name == "" {
			name = id
		}
		return Entry{ID: id, Name: name}, true
	}

	// Bare scalar: the value is both identifier and display name.
	id := scalarString(trimmed)
	if id == "" {
		return Entry{}, false
	}
	return Entry{ID: id, Name: id}, true
}

// scalarString renders a JSON string or number as its identifier text.
func scalarString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// Records flattens the event's channel fields into channel records.
// Entries that cannot yield both an identifier and a display name were
// already dropped at decode time.
func (e Event) Records() []models.ChannelRecord {
	var out []models.ChannelRecord
	for _, f := range []ChannelField{e.Channels, e.Channels2} {
		for _, entry := range f.Entries {
			out = append(out, models.ChannelRecord{
				Identifier:  entry.ID,
				DisplayName: entry.Name,
			})
		}
	}
	return out
}

// Identifiers returns the unique channel identifiers across the whole
// schedule, sorted.
func (s Schedule) Identifiers() []string {
	set := make(map[string]struct{})
	for _, categories := range s {
		for _, events := range categories {
			for _, ev := range events {
				for _, rec := range ev.Records() {
					set[rec.Identifier] = struct{}{}
				}
			}
		}
	}

	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Grouped merges the per-day categories into upper-cased groups for
// playlist composition.
func (s Schedule) Grouped() map[string][]Event {
	grouped := make(map[string][]Event)
	for _, categories := range s {
		for category, events := range categories {
			key := strings.ToUpper(category)
			grouped[key] = append(grouped[key], events...)
		}
	}
	return grouped
}
