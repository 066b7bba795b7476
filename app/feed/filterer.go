package feed

import (
	"log/slog"
	"strings"
	"time"
)

type FilterOptions struct {
	// Since is the age window magnitude; <= 0 disables age filtering.
	Since     int
	SinceUnit Unit

	// ExcludePatterns support a single * wildcard; IncludeSubstrings are
	// plain substring matches.
	ExcludePatterns   []string
	IncludeSubstrings []string

	// Limit truncates the selection; <= 0 means unbounded.
	Limit int

	// Now overrides the clock for tests; the zero value means time.Now.
	Now time.Time
}

type Result struct {
	Candidates []Entry // entries inside the age window, before pattern filtering
	Selected   []Entry // entries surviving exclude, include and limit
}

type Filterer struct {
	opts FilterOptions
}

func NewFilterer(opts FilterOptions) *Filterer {
	return &Filterer{opts: opts}
}

// Run applies the age window, then exclude patterns, then include
// substrings, then the limit. Relative order is preserved throughout; the
// limiter never re-sorts.
func (f *Filterer) Run(entries []Entry) Result {
	now := f.opts.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var cutoff time.Time
	hasWindow := f.opts.Since > 0
	if hasWindow {
		cutoff = Cutoff(now, f.opts.Since, f.opts.SinceUnit)
	}

	result := Result{}
	for _, entry := range entries {
		if hasWindow && !withinWindow(entry, cutoff) {
			slog.Debug("Entry outside age window", "url", entry.URL)
			continue
		}
		result.Candidates = append(result.Candidates, entry)

		if pattern, ok := f.excluded(entry.URL); ok {
			slog.Info("Excluding entry", "url", entry.URL, "pattern", pattern)
			continue
		}
		if !f.included(entry.URL) {
			slog.Info("Skipping entry, no filter match", "url", entry.URL)
			continue
		}

		result.Selected = append(result.Selected, entry)
	}

	if f.opts.Limit > 0 && len(result.Selected) > f.opts.Limit {
		result.Selected = result.Selected[:f.opts.Limit]
	}

	return result
}

// withinWindow reports whether an entry is recent enough to keep. Entries
// without any timestamp cannot be judged and are retained unconditionally.
func withinWindow(entry Entry, cutoff time.Time) bool {
	if entry.PublishedAt == nil {
		return true
	}

	if entry.DateOnly {
		// Date-only lastmod values are kept when their date is strictly
		// after the cutoff date, so an entry from the cutoff day itself is
		// considered stale.
		return truncateToDate(*entry.PublishedAt).After(truncateToDate(cutoff))
	}

	return !entry.PublishedAt.Before(cutoff)
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (f *Filterer) excluded(url string) (string, bool) {
	for _, pattern := range f.opts.ExcludePatterns {
		if matchPattern(url, pattern) {
			return pattern, true
		}
	}
	return "", false
}

func (f *Filterer) included(url string) bool {
	if len(f.opts.IncludeSubstrings) == 0 {
		return true
	}
	for _, substr := range f.opts.IncludeSubstrings {
		if strings.Contains(url, substr) {
			return true
		}
	}
	return false
}

// matchPattern matches a URL against an exclude pattern. A single *
// wildcard splits the pattern into a prefix and suffix that must both
// match; a pattern without * matches by substring containment.
func matchPattern(url, pattern string) bool {
	if i := strings.Index(pattern, "*"); i >= 0 {
		prefix, suffix := pattern[:i], pattern[i+1:]
		return len(url) >= len(prefix)+len(suffix) &&
			strings.HasPrefix(url, prefix) &&
			strings.HasSuffix(url, suffix)
	}
	return strings.Contains(url, pattern)
}
