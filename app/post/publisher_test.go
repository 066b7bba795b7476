package post

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/crossfeed/crossfeed/app/feed"
)

type fakeRunner struct {
	calls  [][]string
	envs   [][]string
	failOn map[int]error // call index -> error
}

func (r *fakeRunner) Run(_ context.Context, args []string, extraEnv []string) error {
	index := len(r.calls)
	r.calls = append(r.calls, args)
	r.envs = append(r.envs, extraEnv)
	if err, ok := r.failOn[index]; ok {
		return err
	}
	return nil
}

var testNetworks = []Network{
	{Name: "devto", Flag: "--devto", CredentialGroups: [][]string{{"DEVTO_API_KEY"}}},
	{Name: "slack", Flag: "--slack", CredentialGroups: [][]string{{"SLACK_TOKEN", "SLACK_CHANNEL"}}},
}

func testEnv(name string) string {
	switch name {
	case "DEVTO_API_KEY":
		return "key"
	case "SLACK_TOKEN":
		return "token"
	case "SLACK_CHANNEL":
		return "general"
	}
	return ""
}

func newTestPublisher(runner Runner, opts Options) (*Publisher, *bytes.Buffer) {
	out := &bytes.Buffer{}
	publisher := NewPublisher(NewRenderer("{url}"), runner, testNetworks,
		nil, nil, testEnv, out, opts)
	return publisher, out
}

func TestPublisher_PostsPerNetworkPerEntry(t *testing.T) {
	runner := &fakeRunner{}
	publisher, _ := newTestPublisher(runner, Options{FailureStrategy: StrategyFail})

	entries := []feed.Entry{
		{URL: "https://example.com/a"},
		{URL: "https://example.com/b"},
	}

	if err := publisher.Run(context.Background(), entries); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(runner.calls) != 4 {
		t.Fatalf("Expected 4 invocations (2 entries x 2 networks), got %d", len(runner.calls))
	}
	// First entry to both networks before the second entry starts
	if runner.calls[0][0] != "--devto" || runner.calls[1][0] != "--slack" {
		t.Errorf("Wrong network order: %v", runner.calls[:2])
	}
	if runner.calls[2][1] != "https://example.com/b" {
		t.Errorf("Wrong entry order: %v", runner.calls[2])
	}
	// Credentials travel as bare names
	if len(runner.envs[0]) != 1 || runner.envs[0][0] != "DEVTO_API_KEY=key" {
		t.Errorf("Wrong devto env: %v", runner.envs[0])
	}
}

func TestPublisher_DryRun(t *testing.T) {
	runner := &fakeRunner{}
	publisher, out := newTestPublisher(runner, Options{DryRun: true, FailureStrategy: StrategyFail})

	entries := []feed.Entry{{URL: "https://example.com/a"}}

	if err := publisher.Run(context.Background(), entries); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(runner.calls) != 0 {
		t.Errorf("Dry run must not invoke the runner, got %d calls", len(runner.calls))
	}

	preview := out.String()
	if !strings.Contains(preview, "https://example.com/a") {
		t.Errorf("Preview should contain the message, got %q", preview)
	}
	if !strings.Contains(preview, "devto") || !strings.Contains(preview, "slack") {
		t.Errorf("Preview should list the target networks, got %q", preview)
	}
}

func TestPublisher_FailStrategyStopsImmediately(t *testing.T) {
	runner := &fakeRunner{failOn: map[int]error{0: errors.New("boom")}}
	publisher, _ := newTestPublisher(runner, Options{FailureStrategy: StrategyFail})

	entries := []feed.Entry{
		{URL: "https://example.com/a"},
		{URL: "https://example.com/b"},
	}

	err := publisher.Run(context.Background(), entries)
	if err == nil {
		t.Fatal("Expected an error")
	}
	if len(runner.calls) != 1 {
		t.Errorf("No further posts should be attempted after a failure, got %d calls", len(runner.calls))
	}
	if !strings.Contains(err.Error(), "https://example.com/a") || !strings.Contains(err.Error(), "devto") {
		t.Errorf("Error should carry entry URL and network name, got %v", err)
	}
}

func TestPublisher_ContinueStrategyAttemptsAll(t *testing.T) {
	runner := &fakeRunner{failOn: map[int]error{0: errors.New("boom")}}
	publisher, _ := newTestPublisher(runner, Options{FailureStrategy: StrategyContinue})

	entries := []feed.Entry{
		{URL: "https://example.com/a"},
		{URL: "https://example.com/b"},
	}

	err := publisher.Run(context.Background(), entries)
	if err == nil {
		t.Fatal("A failed post should still surface after the run")
	}
	if len(runner.calls) != 4 {
		t.Errorf("All posts should be attempted under continue, got %d calls", len(runner.calls))
	}
}

type fakeExtractor struct {
	description string
	tags        []string
}

func (f *fakeExtractor) Description(_ context.Context, _ string) (string, error) {
	return f.description, nil
}

func (f *fakeExtractor) Tags(_ context.Context, _ string) ([]string, error) {
	return f.tags, nil
}

func TestPublisher_LazyEnrichment(t *testing.T) {
	runner := &fakeRunner{}
	extractor := &fakeExtractor{description: "from the page", tags: []string{"go"}}
	out := &bytes.Buffer{}
	publisher := NewPublisher(NewRenderer("{url} {description} {tags}"), runner,
		testNetworks[:1], extractor, nil, testEnv, out, Options{FailureStrategy: StrategyFail})

	entries := []feed.Entry{{URL: "https://example.com/a"}}

	if err := publisher.Run(context.Background(), entries); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	message := runner.calls[0][1]
	if message != "https://example.com/a from the page #go" {
		t.Errorf("Enriched message wrong: %q", message)
	}
}

func TestPublisher_FeedMetadataSkipsEnrichment(t *testing.T) {
	runner := &fakeRunner{}
	extractor := &fakeExtractor{description: "should not be used"}
	out := &bytes.Buffer{}
	publisher := NewPublisher(NewRenderer("{description}"), runner,
		testNetworks[:1], extractor, nil, testEnv, out, Options{FailureStrategy: StrategyFail})

	entries := []feed.Entry{{URL: "https://example.com/a", Description: "from the feed"}}

	if err := publisher.Run(context.Background(), entries); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if runner.calls[0][1] != "from the feed" {
		t.Errorf("Feed description should win over page extraction, got %q", runner.calls[0][1])
	}
}

type fakeNotifier struct {
	notified []string
}

func (f *fakeNotifier) Run(_ context.Context, entry feed.Entry) {
	f.notified = append(f.notified, entry.URL)
}

func TestPublisher_NotifierRunsPerEntry(t *testing.T) {
	runner := &fakeRunner{}
	notifier := &fakeNotifier{}
	out := &bytes.Buffer{}
	publisher := NewPublisher(NewRenderer(""), runner, testNetworks[:1],
		nil, notifier, testEnv, out, Options{FailureStrategy: StrategyFail})

	entries := []feed.Entry{
		{URL: "https://example.com/a"},
		{URL: "https://example.com/b"},
	}

	if err := publisher.Run(context.Background(), entries); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(notifier.notified) != 2 {
		t.Errorf("Notifier should run once per entry, got %v", notifier.notified)
	}
}

func TestPublisher_NotifierSkippedInDryRun(t *testing.T) {
	runner := &fakeRunner{}
	notifier := &fakeNotifier{}
	out := &bytes.Buffer{}
	publisher := NewPublisher(NewRenderer(""), runner, testNetworks[:1],
		nil, notifier, testEnv, out, Options{DryRun: true, FailureStrategy: StrategyFail})

	if err := publisher.Run(context.Background(), []feed.Entry{{URL: "https://example.com/a"}}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(notifier.notified) != 0 {
		t.Error("Dry run must not send webmentions")
	}
}
