package epg

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// CountryUnknown is returned when no country token is recognized in a name.
const CountryUnknown = "unknown"

// countryAlias maps a spelled-out country token to its two-letter code.
// Order matters: earlier entries win during embedded-keyword detection.
type countryAlias struct {
	Token string
	Code  string
}

var countryTable = []countryAlias{
	{"usa", "us"}, {"united states", "us"}, {"america", "us"},
	{"uk", "uk"}, {"united kingdom", "uk"}, {"britain", "uk"}, {"england", "uk"},
	{"canada", "ca"}, {"can", "ca"},
	{"australia", "au"}, {"aus", "au"},
	{"new zealand", "nz"}, {"newzealand", "nz"},
	{"germany", "de"}, {"deutschland", "de"}, {"german", "de"},
	{"france", "fr"}, {"french", "fr"},
	{"spain", "es"}, {"spanish", "es"}, {"espana", "es"},
	{"italy", "it"}, {"italian", "it"}, {"italia", "it"},
	{"croatia", "hr"}, {"hrvatska", "hr"},
	{"serbia", "rs"}, {"srbija", "rs"},
	{"netherlands", "nl"}, {"holland", "nl"}, {"dutch", "nl"},
	{"portugal", "pt"}, {"portuguese", "pt"},
	{"poland", "pl"}, {"polish", "pl"}, {"polska", "pl"},
	{"greece", "gr"}, {"greek", "gr"},
	{"bulgaria", "bg"}, {"bulgarian", "bg"},
	{"israel", "il"}, {"hebrew", "il"},
	{"malaysia", "my"}, {"malay", "my"},
}

func lookupCountry(token string) (string, bool) {
	for _, c := range countryTable {
		if c.Token == token {
			return c.Code, true
		}
	}
	return "", false
}

// foldTransformer decomposes characters and drops combining marks, so
// "España" folds to "Espana" before matching.
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

var titleCaser = cases.Title(language.English)

func foldASCII(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		folded = s
	}
	return strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, folded)
}

var parenSuffixRE = regexp.MustCompile(`^(.+?)\s*\(([^)]+)\)$`)

// ExtractBrand splits a display name into its brand portion and a
// two-letter country code. Recognizes a parenthetical suffix
// ("BBC Two (UK)"), a trailing country word ("BBC Two UK"), or an
// embedded country keyword; returns CountryUnknown otherwise.
func ExtractBrand(name string) (string, string) {
	name = strings.TrimSpace(name)

	if m := parenSuffixRE.FindStringSubmatch(name); m != nil {
		brand := strings.TrimSpace(m[1])
		part := strings.ToLower(foldASCII(strings.TrimSpace(m[2])))
		if code, ok := lookupCountry(part); ok {
			return brand, code
		}
		if len(part) >= 2 {
			return brand, part[:2]
		}
		return brand, CountryUnknown
	}

	words := strings.Fields(name)
	if len(words) >= 2 {
		for i := len(words) - 1; i >= 1; i-- {
			tail := strings.ToLower(foldASCII(strings.Join(words[i:], " ")))
			if code, ok := lookupCountry(tail); ok {
				return strings.Join(words[:i], " "), code
			}
		}
	}

	lower := strings.ToLower(foldASCII(name))
	for _, c := range countryTable {
		if strings.Contains(lower, c.Token) {
			brand := removeToken(lower, c.Token)
			return titleCaser.String(brand), c.Code
		}
	}

	return name, CountryUnknown
}

// removeToken drops whole-word occurrences of token (which may span
// several words) from s.
func removeToken(s, token string) string {
	fields := strings.Fields(s)
	tokenFields := strings.Fields(token)
	if len(tokenFields) == 0 {
		return s
	}
	var out []string
	for i := 0; i < len(fields); {
		if matchesAt(fields, tokenFields, i) {
			i += len(tokenFields)
			continue
		}
		out = append(out, fields[i])
		i++
	}
	return strings.Join(out, " ")
}

func matchesAt(fields, token []string, i int) bool {
	if i+len(token) > len(fields) {
		return false
	}
	for j, t := range token {
		if fields[i+j] != t {
			return false
		}
	}
	return true
}

var qualitySuffixes = map[string]bool{
	"hd":  true,
	"sd":  true,
	"fhd": true,
	"uhd": true,
	"4k":  true,
}

// Normalize canonicalizes a display name into a matching key: diacritics
// folded, lowercased, punctuation replaced by spaces, trailing quality
// suffixes stripped, whitespace collapsed.
func Normalize(name string) string {
	s := strings.ToLower(foldASCII(name))
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, s)
	fields := strings.Fields(s)
	for len(fields) > 1 && qualitySuffixes[fields[len(fields)-1]] {
		fields = fields[:len(fields)-1]
	}
	return strings.Join(fields, " ")
}

// Slug returns the whitespace-free form of the normalized name.
func Slug(name string) string {
	return strings.ReplaceAll(Normalize(name), " ", "")
}

// brandTokens canonicalizes a reference-list brand portion into lowercase
// word tokens. Unlike Normalize it keeps quality tokens, so "ABC Sports 2
// HD" still indexes under its full form.
func brandTokens(s string) []string {
	s = strings.ToLower(foldASCII(s))
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, s)
	return strings.Fields(s)
}
