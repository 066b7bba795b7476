package post

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/crossfeed/crossfeed/app/feed"
)

const (
	StrategyFail     = "fail"
	StrategyContinue = "continue"
)

// PageExtractor supplies metadata for entries whose source carried none.
type PageExtractor interface {
	Description(ctx context.Context, url string) (string, error)
	Tags(ctx context.Context, url string) ([]string, error)
}

// EntryNotifier is invoked once per entry after its posts were attempted.
type EntryNotifier interface {
	Run(ctx context.Context, entry feed.Entry)
}

type Options struct {
	DryRun          bool
	FailureStrategy string
}

// Publisher walks the selected entries in order and posts each one to every
// enabled network, one runner invocation per network. Ordering is strictly
// sequential so a failed run under the fail strategy leaves a deterministic
// attempted prefix.
type Publisher struct {
	renderer  *Renderer
	runner    Runner
	networks  []Network
	extractor PageExtractor
	notifier  EntryNotifier
	env       EnvFunc
	opts      Options
	out       io.Writer
}

func NewPublisher(renderer *Renderer, runner Runner, networks []Network,
	extractor PageExtractor, notifier EntryNotifier, env EnvFunc, out io.Writer, opts Options) *Publisher {
	return &Publisher{
		renderer:  renderer,
		runner:    runner,
		networks:  networks,
		extractor: extractor,
		notifier:  notifier,
		env:       env,
		opts:      opts,
		out:       out,
	}
}

func (p *Publisher) Run(ctx context.Context, entries []feed.Entry) error {
	var failures []error

	for _, entry := range entries {
		entry = p.enrich(ctx, entry)
		message := p.renderer.Run(entry)

		if p.opts.DryRun {
			fmt.Fprintf(p.out, "Would post %s to [%s]: %s\n",
				entry.URL, strings.Join(p.networkNames(), ", "), message)
			continue
		}

		for _, network := range p.networks {
			slog.Info("Posting entry", "url", entry.URL, "network", network.Name)

			err := p.runner.Run(ctx, []string{network.Flag, message}, network.Env(p.env))
			if err == nil {
				continue
			}

			err = fmt.Errorf("failed to post %s to %s: %w", entry.URL, network.Name, err)
			if p.opts.FailureStrategy == StrategyFail {
				return err
			}
			slog.Error("Post failed, continuing", "url", entry.URL,
				"network", network.Name, "error", err)
			failures = append(failures, err)
		}

		if p.notifier != nil {
			p.notifier.Run(ctx, entry)
		}
	}

	return errors.Join(failures...)
}

// enrich fetches page metadata only when the template needs a field the
// entry does not already have. Enrichment failure renders an empty value
// rather than failing the run.
func (p *Publisher) enrich(ctx context.Context, entry feed.Entry) feed.Entry {
	if p.extractor == nil {
		return entry
	}

	if p.renderer.NeedsDescription() && entry.Description == "" {
		description, err := p.extractor.Description(ctx, entry.URL)
		if err != nil {
			slog.Warn("Could not fetch description", "url", entry.URL, "error", err)
		} else {
			entry.Description = description
		}
	}

	if p.renderer.NeedsTags() && len(entry.Tags) == 0 {
		tags, err := p.extractor.Tags(ctx, entry.URL)
		if err != nil {
			slog.Warn("Could not fetch tags", "url", entry.URL, "error", err)
		} else {
			entry.Tags = tags
		}
	}

	return entry
}

func (p *Publisher) networkNames() []string {
	names := make([]string, 0, len(p.networks))
	for _, network := range p.networks {
		names = append(names, network.Name)
	}
	return names
}
