package webmention

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/crossfeed/crossfeed/app/feed"
)

// ContentScanner extracts the external hyperlinks of an entry's content
// region. page.Extractor satisfies it.
type ContentScanner interface {
	ContentLinks(ctx context.Context, url string) ([]string, error)
}

// Notifier delivers webmentions for published entries. Delivery is
// best-effort: failures are logged and never surface as run errors,
// regardless of the posting failure strategy. Webmentions are a secondary
// side-channel, not part of the syndication contract.
type Notifier struct {
	httpClient  *http.Client
	userAgent   string
	endpoint    string
	targetHosts []string
	scanContent bool
	scanner     ContentScanner
}

func NewNotifier(httpClient *http.Client, userAgent, endpoint string,
	targetHosts []string, scanContent bool, scanner ContentScanner) *Notifier {
	return &Notifier{
		httpClient:  httpClient,
		userAgent:   userAgent,
		endpoint:    endpoint,
		targetHosts: targetHosts,
		scanContent: scanContent,
		scanner:     scanner,
	}
}

// Enabled reports whether any delivery mode is configured.
func (n *Notifier) Enabled() bool {
	return (n.endpoint != "" && len(n.targetHosts) > 0) || n.scanContent
}

// Run sends webmentions for one entry. Endpoint mode and content-scan mode
// are independent and non-exclusive.
func (n *Notifier) Run(ctx context.Context, entry feed.Entry) {
	if n.endpoint != "" && len(n.targetHosts) > 0 {
		for _, target := range n.targetHosts {
			if err := n.send(ctx, n.endpoint, entry.URL, target); err != nil {
				slog.Warn("Webmention delivery failed",
					"source", entry.URL, "target", target, "error", err)
				continue
			}
			slog.Info("Webmention sent", "source", entry.URL, "target", target)
		}
	}

	if n.scanContent && n.scanner != nil {
		n.scanAndSend(ctx, entry)
	}
}

// scanAndSend extracts the entry's outbound content links and sends one
// webmention per unique target, discovering each target's endpoint.
func (n *Notifier) scanAndSend(ctx context.Context, entry feed.Entry) {
	links, err := n.scanner.ContentLinks(ctx, entry.URL)
	if err != nil {
		slog.Warn("Content scan failed", "url", entry.URL, "error", err)
		return
	}

	for _, target := range links {
		endpoint, err := n.discover(ctx, target)
		if err != nil {
			slog.Debug("Webmention endpoint discovery failed", "target", target, "error", err)
			continue
		}
		if endpoint == "" {
			slog.Debug("No webmention endpoint advertised", "target", target)
			continue
		}

		if err := n.send(ctx, endpoint, entry.URL, target); err != nil {
			slog.Warn("Webmention delivery failed",
				"source", entry.URL, "target", target, "error", err)
			continue
		}
		slog.Info("Webmention sent", "source", entry.URL, "target", target)
	}
}

func (n *Notifier) send(ctx context.Context, endpoint, source, target string) error {
	form := url.Values{
		"source": {source},
		"target": {target},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", n.userAgent)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return nil
}

// discover finds the webmention endpoint a target advertises, first in the
// Link response header, then in the document's link/a elements. The
// returned endpoint is resolved against the target URL.
func (n *Notifier) discover(ctx context.Context, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", n.userAgent)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	base, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("invalid target URL: %w", err)
	}

	for _, header := range resp.Header.Values("Link") {
		if endpoint := parseLinkHeader(header); endpoint != "" {
			return resolve(base, endpoint), nil
		}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	if href, ok := doc.Find(`link[rel~="webmention"], a[rel~="webmention"]`).First().Attr("href"); ok {
		return resolve(base, href), nil
	}

	return "", nil
}

// parseLinkHeader extracts the URI of a rel="webmention" link from a Link
// header value, which may hold several comma-separated links.
func parseLinkHeader(header string) string {
	for _, link := range strings.Split(header, ",") {
		parts := strings.Split(link, ";")
		if len(parts) < 2 {
			continue
		}
		uri := strings.TrimSpace(parts[0])
		if !strings.HasPrefix(uri, "<") || !strings.HasSuffix(uri, ">") {
			continue
		}
		for _, param := range parts[1:] {
			param = strings.TrimSpace(param)
			value, ok := strings.CutPrefix(param, "rel=")
			if !ok {
				continue
			}
			value = strings.Trim(value, `"`)
			for _, rel := range strings.Fields(value) {
				if rel == "webmention" {
					return strings.Trim(uri, "<>")
				}
			}
		}
	}
	return ""
}

func resolve(base *url.URL, href string) string {
	resolved, err := base.Parse(href)
	if err != nil {
		return href
	}
	return resolved.String()
}
