package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// Loader fetches a source document and turns it into entries. The source
// kind is sniffed from the XML root element: <urlset> and <sitemapindex>
// take the sitemap path, everything else is handed to the feed parser.
type Loader struct {
	httpClient *http.Client
	parser     *Parser
	userAgent  string
}

func NewLoader(httpClient *http.Client, userAgent string) *Loader {
	return &Loader{
		httpClient: httpClient,
		parser:     NewParser(),
		userAgent:  userAgent,
	}
}

func (l *Loader) Run(ctx context.Context, sourceURL string) ([]Entry, error) {
	data, err := l.fetch(ctx, sourceURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", sourceURL, err)
	}

	var entries []Entry

	switch root := rootElement(data); root {
	case "urlset":
		entries, err = parseURLSet(data)
		if err != nil {
			return nil, err
		}
		sortNewestFirst(entries)
	case "sitemapindex":
		entries, err = l.loadIndex(ctx, data)
		if err != nil {
			return nil, err
		}
		sortNewestFirst(entries)
	default:
		entries, err = l.parser.Run(data)
		if err != nil {
			return nil, err
		}
	}

	return dedupe(entries), nil
}

// loadIndex fetches every child sitemap of a sitemap index, one level deep,
// and concatenates their pages.
func (l *Loader) loadIndex(ctx context.Context, data []byte) ([]Entry, error) {
	locs, err := parseSitemapIndex(data)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	for _, loc := range locs {
		slog.Debug("Loading child sitemap", "url", loc)

		childData, err := l.fetch(ctx, loc)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch child sitemap %s: %w", loc, err)
		}

		childEntries, err := parseURLSet(childData)
		if err != nil {
			return nil, fmt.Errorf("child sitemap %s: %w", loc, err)
		}

		entries = append(entries, childEntries...)
	}

	return entries, nil
}

func (l *Loader) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", l.userAgent)

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return data, nil
}

// dedupe collapses duplicate URLs, keeping the first occurrence.
func dedupe(entries []Entry) []Entry {
	seen := make(map[string]struct{}, len(entries))
	out := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		if _, ok := seen[entry.URL]; ok {
			continue
		}
		seen[entry.URL] = struct{}{}
		out = append(out, entry)
	}
	return out
}
