package page

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	readability "codeberg.org/readeck/go-readability"
	"github.com/PuerkitoBio/goquery"
)

// Extractor pulls post metadata out of a published HTML page: the meta
// description, article:tag properties, and the hyperlinks of the main
// content region. It is used for entries whose source (a sitemap) carries
// no metadata of its own.
type Extractor struct {
	httpClient *http.Client
	userAgent  string
}

func NewExtractor(httpClient *http.Client, userAgent string) *Extractor {
	return &Extractor{
		httpClient: httpClient,
		userAgent:  userAgent,
	}
}

func (e *Extractor) Description(ctx context.Context, pageURL string) (string, error) {
	doc, _, err := e.fetchDoc(ctx, pageURL)
	if err != nil {
		return "", err
	}

	if content, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		return strings.TrimSpace(content), nil
	}

	return "", nil
}

// Tags collects article:tag meta properties. Values are trimmed and
// deduplicated; casing is left to the renderer.
func (e *Extractor) Tags(ctx context.Context, pageURL string) ([]string, error) {
	doc, _, err := e.fetchDoc(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var tags []string
	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		property, _ := s.Attr("property")
		if !strings.HasPrefix(property, "article:tag") {
			return
		}
		content := strings.TrimSpace(s.AttrOr("content", ""))
		if content == "" {
			return
		}
		if _, ok := seen[content]; ok {
			return
		}
		seen[content] = struct{}{}
		tags = append(tags, content)
	})

	return tags, nil
}

// ContentLinks returns the unique external hyperlinks of the page's main
// content. The IndieWeb e-content region is preferred; when the page is not
// marked up with microformats, readability extraction is used instead.
// Links pointing back to the page's own host are skipped.
func (e *Extractor) ContentLinks(ctx context.Context, pageURL string) ([]string, error) {
	doc, raw, err := e.fetchDoc(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page URL: %w", err)
	}

	region := doc.Find(".e-content").First()
	if region.Length() == 0 {
		article, err := readability.FromReader(bytes.NewReader(raw), base)
		if err != nil || article.Content == "" {
			slog.Debug("No content region found", "url", pageURL)
			return nil, nil
		}
		contentDoc, err := goquery.NewDocumentFromReader(strings.NewReader(article.Content))
		if err != nil {
			return nil, fmt.Errorf("failed to parse extracted content: %w", err)
		}
		region = contentDoc.Selection
	}

	seen := make(map[string]struct{})
	var links []string
	region.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" {
			return
		}
		target, err := base.Parse(href)
		if err != nil {
			return
		}
		if target.Scheme != "http" && target.Scheme != "https" {
			return
		}
		if target.Host == base.Host {
			return
		}
		resolved := target.String()
		if _, ok := seen[resolved]; ok {
			return
		}
		seen[resolved] = struct{}{}
		links = append(links, resolved)
	})

	return links, nil
}

func (e *Extractor) fetchDoc(ctx context.Context, pageURL string) (*goquery.Document, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return doc, raw, nil
}
