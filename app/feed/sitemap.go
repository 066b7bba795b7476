package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"sort"
	"time"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string       `xml:"loc"`
	LastMod string       `xml:"lastmod"`
	News    *sitemapNews `xml:"news"`
}

type sitemapNews struct {
	PublicationDate string `xml:"publication_date"`
}

type sitemapIndex struct {
	XMLName  xml.Name `xml:"sitemapindex"`
	Sitemaps []struct {
		Loc string `xml:"loc"`
	} `xml:"sitemap"`
}

// lastmod values in the wild range from bare dates to full W3C datetimes.
var lastModLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseURLSet(data []byte) ([]Entry, error) {
	var urlset sitemapURLSet
	if err := xml.Unmarshal(data, &urlset); err != nil {
		return nil, fmt.Errorf("failed to parse sitemap: %w", err)
	}

	entries := make([]Entry, 0, len(urlset.URLs))
	for _, u := range urlset.URLs {
		if u.Loc == "" {
			continue
		}

		entry := Entry{URL: u.Loc}

		// News sitemaps carry an original publish date; plain sitemaps only
		// have lastmod, which reflects the last edit.
		raw := u.LastMod
		if raw == "" && u.News != nil {
			raw = u.News.PublicationDate
		}
		if raw != "" {
			if t, dateOnly, err := parseLastMod(raw); err == nil {
				entry.PublishedAt = t
				entry.DateOnly = dateOnly
			}
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

func parseSitemapIndex(data []byte) ([]string, error) {
	var index sitemapIndex
	if err := xml.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("failed to parse sitemap index: %w", err)
	}

	locs := make([]string, 0, len(index.Sitemaps))
	for _, s := range index.Sitemaps {
		if s.Loc != "" {
			locs = append(locs, s.Loc)
		}
	}

	return locs, nil
}

func parseLastMod(raw string) (*time.Time, bool, error) {
	for _, layout := range lastModLayouts {
		t, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		// A zero clock means the source only recorded a date; such values
		// are compared at date granularity by the age filter.
		dateOnly := t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0
		return &t, dateOnly, nil
	}

	return nil, false, fmt.Errorf("unrecognized lastmod value: %q", raw)
}

// sortNewestFirst orders sitemap entries newest to oldest. Entries without a
// timestamp keep their relative order at the end of the list.
func sortNewestFirst(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		ti, tj := entries[i].PublishedAt, entries[j].PublishedAt
		if ti == nil || tj == nil {
			return ti != nil && tj == nil
		}
		return ti.After(*tj)
	})
}

// rootElement returns the local name of the document's root element, or ""
// when the data is not well-formed XML up to that point.
func rootElement(data []byte) string {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	for {
		token, err := decoder.Token()
		if err != nil {
			return ""
		}
		if start, ok := token.(xml.StartElement); ok {
			return start.Name.Local
		}
	}
}
