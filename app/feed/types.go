package feed

import (
	"time"
)

// Entry is one discovered content item from a sitemap or feed. Entries are
// immutable once loaded; the pipeline filters and truncates the collection
// but never rewrites an entry in place.
type Entry struct {
	URL         string
	Title       string
	PublishedAt *time.Time // nil when the source carries no timestamp
	DateOnly    bool       // lastmod had no time component; compare at date granularity
	Description string
	Tags        []string
}
