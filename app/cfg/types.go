package cfg

import (
	"github.com/crossfeed/crossfeed/app/feed"
)

// Cfg is the process-wide configuration, built once at startup from action
// inputs, command-line flags and an optional YAML file. It is never mutated
// after Load.
type Cfg struct {
	FeedURL         string
	Since           int
	SinceUnit       feed.Unit
	Limit           int
	FailureStrategy string
	DryRun          bool
	ExcludeURLs     []string
	FilterURLs      []string
	Message         string

	WebmentionEndpoint    string
	WebmentionTargetHosts []string
	WebmentionScanContent bool

	Timeout   int // seconds, for all outbound HTTP
	UserAgent string
	Debug     bool
	Version   string
}
