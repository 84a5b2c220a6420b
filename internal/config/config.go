package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Server
	ServerPort int
	Host       string

	// Upstream sources
	ScheduleURL      string
	ReferenceListURL string
	GuideXMLURL      string
	LogoListingURL   string
	LogoRawRoot      string
	DefaultLogoURL   string

	// Proxy rewriting
	ProxyPrefix string

	// Mirror endpoint templates, in probe order. Each template carries a
	// single {num} placeholder for the channel identifier.
	URLTemplates []string

	// Preferred countries for EPG tie-breaking, in preference order.
	PreferredCountries []string

	// Validator tuning
	Workers      int
	Attempts     int
	ProbeTimeout time.Duration
	RetryBackoff time.Duration

	// Headers sent on schedule and probe requests
	RequestHeaders map[string]string

	// Extra directive lines emitted before every stream URL
	VLCOptions []string

	// Refresh loop
	RefreshIntervalHours int

	// Admin API
	AdminUsername     string
	AdminPasswordHash string

	// Debug
	Debug bool
}

// Load returns configuration from environment variables with hardcoded
// defaults. When EVENTCAST_CONFIG points at a YAML file, its values
// override the defaults before environment variables are applied.
func Load() *Config {
	cfg := &Config{
		ServerPort: 8080,
		Host:       "0.0.0.0",

		ScheduleURL:      "https://daddylive.dad/schedule/schedule-generated.php",
		ReferenceListURL: "https://epgshare01.online/epgshare01/epg_ripper_ALL_SOURCES1.txt",
		GuideXMLURL:      "https://epgshare01.online/epgshare01/epg_ripper_ALL_SOURCES1.xml.gz",
		LogoListingURL:   "https://api.github.com/repos/tv-logo/tv-logos/contents/countries",
		LogoRawRoot:      "https://raw.githubusercontent.com/tv-logo/tv-logos/main/countries/",
		DefaultLogoURL:   "https://raw.githubusercontent.com/tv-logo/tv-logos/main/misc/no-logo.png",

		ProxyPrefix: "https://josh9456-ddproxy.hf.space/watch/",

		URLTemplates: []string{
			"https://nfsnew.newkso.ru/nfs/premium{num}/mono.m3u8",
			"https://windnew.newkso.ru/wind/premium{num}/mono.m3u8",
			"https://zekonew.newkso.ru/zeko/premium{num}/mono.m3u8",
			"https://dokko1new.newkso.ru/dokko1/premium{num}/mono.m3u8",
			"https://ddy6new.newkso.ru/ddy6/premium{num}/mono.m3u8",
		},

		PreferredCountries: []string{"uk", "us"},

		Workers:      20,
		Attempts:     3,
		ProbeTimeout: 10 * time.Second,
		RetryBackoff: 5 * time.Second,

		RequestHeaders: map[string]string{
			"User-Agent": "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
				"(KHTML, like Gecko) Chrome/137.0.0.0 Safari/537.36",
			"Referer": "https://daddylive.dad/24-7-channels.php",
			"Accept":  "application/json, text/javascript, */*; q=0.01",
		},

		VLCOptions: []string{
			"#EXTVLCOPT:http-origin=https://lefttoplay.xyz",
			"#EXTVLCOPT:http-referrer=https://lefttoplay.xyz/",
			"#EXTVLCOPT:http-user-agent=" +
				"Mozilla/5.0 (iPhone; CPU iPhone OS 17_7 like Mac OS X) " +
				"AppleWebKit/605.1.15 (KHTML, like Gecko) Version/18.0 " +
				"Mobile/15E148 Safari/604.1",
		},

		RefreshIntervalHours: 6,

		AdminUsername: "admin",

		Debug: false,
	}

	if path := os.Getenv("EVENTCAST_CONFIG"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not apply config file %s: %v\n", path, err)
		}
	}

	cfg.ServerPort = getEnvInt("PORT", cfg.ServerPort)
	cfg.Host = getEnv("HOST", cfg.Host)
	cfg.ScheduleURL = getEnv("SCHEDULE_URL", cfg.ScheduleURL)
	cfg.ReferenceListURL = getEnv("EPG_IDS_URL", cfg.ReferenceListURL)
	cfg.GuideXMLURL = getEnv("EPG_XML_URL", cfg.GuideXMLURL)
	cfg.ProxyPrefix = getEnv("PROXY_PREFIX", cfg.ProxyPrefix)
	cfg.Workers = getEnvInt("VALIDATOR_WORKERS", cfg.Workers)
	cfg.RefreshIntervalHours = getEnvInt("REFRESH_INTERVAL_HOURS", cfg.RefreshIntervalHours)
	cfg.AdminUsername = getEnv("ADMIN_USERNAME", cfg.AdminUsername)
	cfg.AdminPasswordHash = getEnv("ADMIN_PASSWORD_HASH", cfg.AdminPasswordHash)
	cfg.Debug = getEnvBool("DEBUG", cfg.Debug)

	return cfg
}

// fileConfig is the YAML overlay shape. Only set fields override defaults.
type fileConfig struct {
	ScheduleURL        string            `yaml:"schedule_url"`
	ReferenceListURL   string            `yaml:"reference_list_url"`
	GuideXMLURL        string            `yaml:"guide_xml_url"`
	LogoListingURL     string            `yaml:"logo_listing_url"`
	LogoRawRoot        string            `yaml:"logo_raw_root"`
	DefaultLogoURL     string            `yaml:"default_logo_url"`
	ProxyPrefix        string            `yaml:"proxy_prefix"`
	URLTemplates       []string          `yaml:"url_templates"`
	PreferredCountries []string          `yaml:"preferred_countries"`
	Workers            int               `yaml:"workers"`
	Attempts           int               `yaml:"attempts"`
	ProbeTimeoutSecs   int               `yaml:"probe_timeout_seconds"`
	RetryBackoffSecs   int               `yaml:"retry_backoff_seconds"`
	RequestHeaders     map[string]string `yaml:"request_headers"`
	VLCOptions         []string          `yaml:"vlc_options"`
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	if fc.ScheduleURL != "" {
		c.ScheduleURL = fc.ScheduleURL
	}
	if fc.ReferenceListURL != "" {
		c.ReferenceListURL = fc.ReferenceListURL
	}
	if fc.GuideXMLURL != "" {
		c.GuideXMLURL = fc.GuideXMLURL
	}
	if fc.LogoListingURL != "" {
		c.LogoListingURL = fc.LogoListingURL
	}
	if fc.LogoRawRoot != "" {
		c.LogoRawRoot = fc.LogoRawRoot
	}
	if fc.DefaultLogoURL != "" {
		c.DefaultLogoURL = fc.DefaultLogoURL
	}
	if fc.ProxyPrefix != "" {
		c.ProxyPrefix = fc.ProxyPrefix
	}
	if len(fc.URLTemplates) > 0 {
		c.URLTemplates = fc.URLTemplates
	}
	if len(fc.PreferredCountries) > 0 {
		c.PreferredCountries = fc.PreferredCountries
	}
	if fc.Workers > 0 {
		c.Workers = fc.Workers
	}
	if fc.Attempts > 0 {
		c.Attempts = fc.Attempts
	}
	if fc.ProbeTimeoutSecs > 0 {
		c.ProbeTimeout = time.Duration(fc.ProbeTimeoutSecs) * time.Second
	}
	if fc.RetryBackoffSecs > 0 {
		c.RetryBackoff = time.Duration(fc.RetryBackoffSecs) * time.Second
	}
	if len(fc.RequestHeaders) > 0 {
		c.RequestHeaders = fc.RequestHeaders
	}
	if len(fc.VLCOptions) > 0 {
		c.VLCOptions = fc.VLCOptions
	}
	return nil
}

// getEnv returns the value of an environment variable or a default value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}
