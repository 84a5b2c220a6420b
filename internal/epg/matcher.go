package epg

import "strings"

const (
	// fuzzyThreshold is the minimum similarity score the fallback stage
	// accepts.
	fuzzyThreshold = 0.60
	// minFuzzyKeyLen keeps very short alias keys out of the fuzzy scan,
	// where they would score spuriously high.
	minFuzzyKeyLen = 4
)

// Match resolves a display name to a raw reference id through an ordered
// cascade: country-qualified exact, brand exact, brand variations, then a
// similarity fallback. Returns "" when no stage produces a hit. Pure and
// deterministic for a frozen index and stable preference list.
func Match(displayName string, ix *AliasIndex, preferredCountries []string) string {
	brand, country := ExtractBrand(displayName)
	spaced := Normalize(brand)
	slug := strings.ReplaceAll(spaced, " ", "")

	terms := searchTerms(spaced, slug, country)
	for _, v := range brandVariations(spaced) {
		vSlug := strings.ReplaceAll(v, " ", "")
		terms = append(terms, searchTerms(v, vSlug, country)...)
	}

	for _, term := range terms {
		if ids := ix.Lookup(term); len(ids) > 0 {
			return pickPreferred(ids, preferredCountries)
		}
	}

	return fuzzyMatch(slug, ix, preferredCountries)
}

// searchTerms yields the exact-lookup keys for one brand form, most
// specific first.
func searchTerms(spaced, slug, country string) []string {
	var terms []string
	if country != CountryUnknown {
		terms = append(terms,
			slug+"."+country,
			spaced+"."+country,
			slug+"."+country+".hd",
			spaced+"."+country+".hd",
		)
	}
	return append(terms, slug, spaced)
}

// pickPreferred breaks ties on an ambiguous key: first candidate whose id
// ends in a preferred country, scanning countries in preference order,
// else the first inserted candidate.
func pickPreferred(ids []string, preferred []string) string {
	for _, cc := range preferred {
		suffix := "." + strings.ToLower(cc)
		for _, id := range ids {
			if strings.HasSuffix(strings.ToLower(id), suffix) {
				return id
			}
		}
	}
	return ids[0]
}

var fillerTokens = map[string]bool{
	"tv":      true,
	"hd":      true,
	"sd":      true,
	"channel": true,
	"network": true,
	"sport":   true,
	"sports":  true,
	"news":    true,
}

var writtenNumbers = []struct{ word, digit string }{
	{"two", "2"},
	{"three", "3"},
}

var networkContractions = []struct{ full, compact string }{
	{"fox sports", "foxsports"},
	{"sky sports", "skysports"},
	{"tnt sports", "tntsports"},
	{"bein sports", "beinsports"},
}

// brandVariations generates common alternate spellings of a normalized
// brand: filler words dropped, written numbers as digits ("bbc two" →
// "bbc 2" and "bbc2"), sport/sports toggled, and known two-word network
// names contracted. Output order is deterministic.
func brandVariations(spaced string) []string {
	seen := map[string]bool{spaced: true}
	var out []string
	push := func(v string) {
		v = strings.Join(strings.Fields(v), " ")
		if v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}

	var kept []string
	for _, t := range strings.Fields(spaced) {
		if !fillerTokens[t] {
			kept = append(kept, t)
		}
	}
	push(strings.Join(kept, " "))

	for _, wn := range writtenNumbers {
		if strings.Contains(spaced, wn.word) {
			push(strings.ReplaceAll(spaced, wn.word, wn.digit))
			push(strings.ReplaceAll(spaced, " "+wn.word, wn.digit))
			break
		}
	}

	if strings.Contains(spaced, "sports") {
		push(strings.ReplaceAll(spaced, "sports", "sport"))
	} else if strings.Contains(spaced, "sport") {
		push(strings.ReplaceAll(spaced, "sport", "sports"))
	}

	for _, nc := range networkContractions {
		if strings.Contains(spaced, nc.full) {
			push(strings.ReplaceAll(spaced, nc.full, nc.compact))
		}
	}

	return out
}

// fuzzyMatch scans every alias key of useful length and accepts the single
// best similarity score at or above the threshold.
func fuzzyMatch(slug string, ix *AliasIndex, preferred []string) string {
	if slug == "" {
		return ""
	}

	var (
		bestKey   string
		bestScore float64
	)
	for _, key := range ix.Keys() {
		if len(key) < minFuzzyKeyLen {
			continue
		}
		if score := similarity(slug, key); score > bestScore {
			bestScore = score
			bestKey = key
		}
	}

	if bestKey == "" || bestScore < fuzzyThreshold {
		return ""
	}
	return pickPreferred(ix.Lookup(bestKey), preferred)
}

// similarity is a normalized edit-distance score in [0,1].
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 0
	}
	return 1 - float64(levenshtein(a, b))/float64(longest)
}

// levenshtein computes edit distance between two short ASCII strings with
// a single-row table.
func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	row := make([]int, len(b)+1)
	for j := range row {
		row[j] = j
	}
	for i := 1; i <= len(a); i++ {
		prev := i - 1
		row[0] = i
		for j := 1; j <= len(b); j++ {
			cur := row[j]
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			d := row[j] + 1
			if row[j-1]+1 < d {
				d = row[j-1] + 1
			}
			if prev+cost < d {
				d = prev + cost
			}
			row[j] = d
			prev = cur
		}
	}
	return row[len(b)]
}
