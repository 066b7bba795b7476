package cfg

import (
	"cmp"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v3"

	"github.com/crossfeed/crossfeed/app/feed"
	"github.com/crossfeed/crossfeed/app/post"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

// rawCfg carries the values exactly as they arrive from flags and action
// input environment variables. Defaults are applied after the optional
// config file is merged in, which is why the tags carry none.
type rawCfg struct {
	FeedURL         string `long:"feed-url" env:"INPUT_FEED_URL" description:"Sitemap or RSS/Atom feed URL"`
	Since           int    `long:"since" env:"INPUT_SINCE" description:"Age window magnitude; 0 disables age filtering"`
	SinceUnit       string `long:"since-unit" env:"INPUT_SINCE_UNIT" description:"Age window unit: minutes, hours, days, weeks, months or years"`
	Limit           int    `long:"limit" env:"INPUT_LIMIT" description:"Maximum number of entries to post; 0 means unlimited"`
	FailureStrategy string `long:"failure-strategy" env:"INPUT_FAILURE_STRATEGY" description:"fail (abort on first post error) or continue"`
	DryRun          bool   `long:"dry-run" env:"INPUT_DRY_RUN" description:"Preview posts without any network call"`
	ExcludeURLs     string `long:"exclude-urls" env:"INPUT_EXCLUDE_URLS" description:"Newline separated URL patterns to exclude (single * wildcard)"`
	FilterURLs      string `long:"filter-urls" env:"INPUT_FILTER_URLS" description:"Newline separated substrings; keep only URLs containing one"`
	Message         string `long:"message" env:"INPUT_MESSAGE" description:"Post template; {url}, {description} and {tags} are expanded"`

	WebmentionEndpoint    string `long:"webmention-endpoint" env:"INPUT_WEBMENTION_ENDPOINT" description:"Fixed webmention receiver endpoint"`
	WebmentionTargetHosts string `long:"webmention-target-hosts" env:"INPUT_WEBMENTION_TARGET_HOSTS" description:"Newline separated webmention targets for the fixed endpoint"`
	WebmentionScanContent bool   `long:"webmention-scan-content" env:"INPUT_WEBMENTION_SCAN_CONTENT" description:"Send webmentions to links found in the entry's e-content"`

	ConfigFile string `long:"config-file" env:"INPUT_CONFIG_FILE" description:"Optional YAML file providing the same settings"`
	Timeout    int    `long:"timeout" env:"INPUT_TIMEOUT" description:"HTTP timeout in seconds"`
	UserAgent  string `long:"user-agent" env:"INPUT_USER_AGENT" description:"User agent for outbound HTTP requests"`
	Debug      bool   `long:"debug" env:"INPUT_DEBUG" description:"Enable debug logging"`
}

// fileCfg mirrors the action inputs in YAML form, with lists as sequences.
type fileCfg struct {
	FeedURL         string   `yaml:"feed-url"`
	Since           int      `yaml:"since"`
	SinceUnit       string   `yaml:"since-unit"`
	Limit           int      `yaml:"limit"`
	FailureStrategy string   `yaml:"failure-strategy"`
	DryRun          bool     `yaml:"dry-run"`
	ExcludeURLs     []string `yaml:"exclude-urls"`
	FilterURLs      []string `yaml:"filter-urls"`
	Message         string   `yaml:"message"`

	Webmention struct {
		Endpoint    string   `yaml:"endpoint"`
		TargetHosts []string `yaml:"target-hosts"`
		ScanContent bool     `yaml:"scan-content"`
	} `yaml:"webmention"`

	Timeout   int    `yaml:"timeout"`
	UserAgent string `yaml:"user-agent"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	var file fileCfg
	if raw.ConfigFile != "" {
		data, err := os.ReadFile(raw.ConfigFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg, err := buildCfg(raw, file)
	if err != nil {
		return nil, err
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

// buildCfg merges explicit inputs over config file values over defaults and
// validates the result. Zero values count as unset throughout the merge: an
// explicit --since=0 or --dry-run=false cannot override a non-zero config
// file value. Action inputs always arrive with their declared defaults
// filled in and must defer to the file; to force a zero, set it in the file.
func buildCfg(raw rawCfg, file fileCfg) (*Cfg, error) {
	cfg := &Cfg{
		FeedURL:         cmp.Or(raw.FeedURL, file.FeedURL),
		Since:           cmp.Or(raw.Since, file.Since),
		Limit:           cmp.Or(raw.Limit, file.Limit),
		FailureStrategy: cmp.Or(raw.FailureStrategy, file.FailureStrategy, post.StrategyFail),
		DryRun:          raw.DryRun || file.DryRun,
		ExcludeURLs:     orList(splitLines(raw.ExcludeURLs), file.ExcludeURLs),
		FilterURLs:      orList(splitLines(raw.FilterURLs), file.FilterURLs),
		Message:         cmp.Or(raw.Message, file.Message),

		WebmentionEndpoint:    cmp.Or(raw.WebmentionEndpoint, file.Webmention.Endpoint),
		WebmentionTargetHosts: orList(splitLines(raw.WebmentionTargetHosts), file.Webmention.TargetHosts),
		WebmentionScanContent: raw.WebmentionScanContent || file.Webmention.ScanContent,

		Timeout:   cmp.Or(raw.Timeout, file.Timeout, 30),
		UserAgent: cmp.Or(raw.UserAgent, file.UserAgent, "crossfeed/"+GetVersion()),
		Debug:     raw.Debug,
		Version:   GetVersion(),
	}

	if cfg.FeedURL == "" {
		return nil, fmt.Errorf("feed-url is required")
	}
	if u, err := url.Parse(cfg.FeedURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("feed-url is not an absolute URL: %q", cfg.FeedURL)
	}

	unit, err := feed.ParseUnit(cmp.Or(raw.SinceUnit, file.SinceUnit, "days"))
	if err != nil {
		return nil, err
	}
	cfg.SinceUnit = unit

	switch cfg.FailureStrategy {
	case post.StrategyFail, post.StrategyContinue:
	default:
		return nil, fmt.Errorf("invalid failure-strategy: %q", cfg.FailureStrategy)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 30
	}

	return cfg, nil
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func orList(primary, fallback []string) []string {
	if len(primary) > 0 {
		return primary
	}
	return fallback
}
