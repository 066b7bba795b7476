package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/crossfeed/crossfeed/app/cfg"
	"github.com/crossfeed/crossfeed/app/feed"
	"github.com/crossfeed/crossfeed/app/gha"
	"github.com/crossfeed/crossfeed/app/page"
	"github.com/crossfeed/crossfeed/app/post"
	"github.com/crossfeed/crossfeed/app/webmention"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	setupLogging(appCfg.Debug)

	slog.Info("Starting crossfeed", "version", appCfg.Version, "feed_url", appCfg.FeedURL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpClient := &http.Client{
		Timeout: time.Duration(appCfg.Timeout) * time.Second,
	}

	loader := feed.NewLoader(httpClient, appCfg.UserAgent)
	entries, err := loader.Run(ctx, appCfg.FeedURL)
	if err != nil {
		slog.Error("Failed to load source", "url", appCfg.FeedURL, "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded entries", "count", len(entries))

	filterer := feed.NewFilterer(feed.FilterOptions{
		Since:             appCfg.Since,
		SinceUnit:         appCfg.SinceUnit,
		ExcludePatterns:   appCfg.ExcludeURLs,
		IncludeSubstrings: appCfg.FilterURLs,
		Limit:             appCfg.Limit,
	})
	result := filterer.Run(entries)
	slog.Info("Filtered entries",
		"candidates", len(result.Candidates), "selected", len(result.Selected))

	writeOutputs(result)

	if len(result.Selected) == 0 {
		slog.Info("No entries to post")
		return
	}

	networks := post.EnabledNetworks(os.Getenv)
	if len(networks) == 0 && !appCfg.DryRun {
		slog.Error("No social network credentials provided")
		os.Exit(1)
	}

	extractor := page.NewExtractor(httpClient, appCfg.UserAgent)

	notifier := webmention.NewNotifier(httpClient, appCfg.UserAgent,
		appCfg.WebmentionEndpoint, appCfg.WebmentionTargetHosts,
		appCfg.WebmentionScanContent, extractor)
	var entryNotifier post.EntryNotifier
	if notifier.Enabled() {
		entryNotifier = notifier
	}

	publisher := post.NewPublisher(
		post.NewRenderer(appCfg.Message),
		post.NewCrosspostRunner(),
		networks,
		extractor,
		entryNotifier,
		os.Getenv,
		os.Stdout,
		post.Options{
			DryRun:          appCfg.DryRun,
			FailureStrategy: appCfg.FailureStrategy,
		},
	)

	if err := publisher.Run(ctx, result.Selected); err != nil {
		slog.Error("Run finished with failures", "error", err)
		os.Exit(1)
	}

	slog.Info("Run complete", "posted", len(result.Selected), "dry_run", appCfg.DryRun)
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler).With("run_id", uuid.NewString()[:8]))
}

func writeOutputs(result feed.Result) {
	if err := gha.WriteOutput("latest-urls", joinURLs(result.Candidates)); err != nil {
		slog.Warn("Failed to write latest-urls output", "error", err)
	}
	if err := gha.WriteOutput("processed-urls", joinURLs(result.Selected)); err != nil {
		slog.Warn("Failed to write processed-urls output", "error", err)
	}
}

func joinURLs(entries []feed.Entry) string {
	urls := make([]string, 0, len(entries))
	for _, entry := range entries {
		urls = append(urls, entry.URL)
	}
	return strings.Join(urls, "\n")
}
