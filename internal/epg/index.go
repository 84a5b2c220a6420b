package epg

import "strings"

// AliasIndex maps alias keys to the raw reference ids they were derived
// from. A key may carry several ids (abbreviation collisions) and an id
// populates many keys; per-key insertion order is preserved so ambiguous
// keys break ties deterministically. The index is built once per run and
// read-only afterwards.
type AliasIndex struct {
	order   []string
	entries map[string][]string
}

func NewAliasIndex() *AliasIndex {
	return &AliasIndex{entries: make(map[string][]string)}
}

func (ix *AliasIndex) add(key, rawID string) {
	if key == "" {
		return
	}
	ids, ok := ix.entries[key]
	if !ok {
		ix.order = append(ix.order, key)
	}
	for _, id := range ids {
		if id == rawID {
			return
		}
	}
	ix.entries[key] = append(ids, rawID)
}

// Lookup returns the reference ids registered under key, oldest first.
func (ix *AliasIndex) Lookup(key string) []string {
	if ix == nil {
		return nil
	}
	return ix.entries[key]
}

// Keys returns every alias key in insertion order.
func (ix *AliasIndex) Keys() []string {
	if ix == nil {
		return nil
	}
	return ix.order
}

// Len returns the number of distinct alias keys.
func (ix *AliasIndex) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.entries)
}

// BuildIndex ingests the raw reference list. Blank lines and # comments
// are skipped. Each remaining line is split on "."; a final two-letter
// segment is taken as the country and the remainder as the brand. Every
// token prefix of the brand, longest first, registers a spaced and a slug
// key, each additionally suffixed with ".<country>" when one was
// detected; the case-folded raw line is registered as a safety net.
func BuildIndex(lines []string) *AliasIndex {
	ix := NewAliasIndex()
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		brand, country := line, ""
		if i := strings.LastIndex(line, "."); i >= 0 {
			if cc := line[i+1:]; isCountryToken(cc) {
				brand, country = line[:i], strings.ToLower(cc)
			}
		}

		tokens := brandTokens(brand)
		for p := len(tokens); p >= 1; p-- {
			spaced := strings.Join(tokens[:p], " ")
			slug := strings.Join(tokens[:p], "")
			ix.add(spaced, line)
			ix.add(slug, line)
			if country != "" {
				ix.add(spaced+"."+country, line)
				ix.add(slug+"."+country, line)
			}
		}

		ix.add(strings.ToLower(line), line)
	}
	return ix
}

func isCountryToken(s string) bool {
	if len(s) != 2 {
		return false
	}
	for _, r := range s {
		if !('a' <= r && r <= 'z') && !('A' <= r && r <= 'Z') {
			return false
		}
	}
	return true
}
