package logos

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Index maps slug variants to asset URLs. Built once per run, read-only
// afterwards.
type Index map[string]string

// countrySuffixes are the filename suffixes stripped to register a
// country-neutral alias for an asset.
var countrySuffixes = []string{"-us", "-uk", "-ca", "-au", "-de", "-fr", "-es", "-it"}

// Client lists the hierarchical artwork repository.
type Client struct {
	apiRoot    string
	rawRoot    string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(apiRoot, rawRoot string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		apiRoot: apiRoot,
		rawRoot: rawRoot,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

type listingItem struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// BuildIndex walks the country directories of the artwork listing and
// registers, per image file, its filename, its base name, and the
// country-suffix-stripped base name, all pointing at the raw asset URL.
// A failed top-level listing returns an empty index; a failed country
// listing only skips that country.
func (c *Client) BuildIndex(ctx context.Context) (Index, error) {
	index := Index{}

	countries, err := c.list(ctx, c.apiRoot)
	if err != nil {
		return index, fmt.Errorf("list logo countries: %w", err)
	}

	for _, country := range countries {
		if country.Type != "dir" {
			continue
		}
		files, err := c.list(ctx, c.apiRoot+"/"+country.Name)
		if err != nil {
			c.logger.Debug("Failed to list logos", "country", country.Name, "error", err)
			continue
		}
		for _, f := range files {
			if f.Type != "file" || !strings.HasSuffix(f.Name, ".png") {
				continue
			}
			assetURL := c.rawRoot + country.Name + "/" + f.Name
			base := strings.TrimSuffix(f.Name, ".png")

			index[f.Name] = assetURL
			index[base] = assetURL
			for _, suffix := range countrySuffixes {
				if strings.HasSuffix(base, suffix) {
					index[strings.TrimSuffix(base, suffix)] = assetURL
				}
			}
		}
	}

	c.logger.Info("Logo index built", "entries", len(index))
	return index, nil
}

func (c *Client) list(ctx context.Context, url string) ([]listingItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var items []listingItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, err
	}
	return items, nil
}

// Resolve returns the best asset URL for a display name: exact slug, slug
// with extension, then the slug with a quality suffix stripped. Falls
// back to defaultURL when the index is empty or nothing matches.
func Resolve(name string, index Index, defaultURL string) string {
	if len(index) == 0 {
		return defaultURL
	}

	slug := Slugify(name)
	variants := []string{
		slug,
		slug + ".png",
		strings.ReplaceAll(slug, "-hd", ""),
		strings.ReplaceAll(slug, "-sd", ""),
	}
	for _, variant := range variants {
		if url, ok := index[variant]; ok {
			return url
		}
	}
	return defaultURL
}

var (
	foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	nonSlugRE       = regexp.MustCompile(`[^\w\s-]`)
	whitespaceRE    = regexp.MustCompile(`\s+`)
)

// Slugify lowercases a channel name into the artwork repository's file
// naming convention: diacritics folded, "&"/"+" spelled out, punctuation
// dropped, whitespace dashed.
func Slugify(name string) string {
	folded, _, err := transform.String(foldTransformer, name)
	if err != nil {
		folded = name
	}
	s := strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, folded)
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "&", "-and-")
	s = strings.ReplaceAll(s, "+", "-plus-")
	s = nonSlugRE.ReplaceAllString(s, "")
	s = whitespaceRE.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
