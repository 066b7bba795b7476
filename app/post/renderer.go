package post

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/crossfeed/crossfeed/app/feed"
)

// Recognized placeholders tolerate spaces inside the braces, e.g. "{ url }".
// Anything else in the template is left verbatim.
var (
	placeholder            = regexp.MustCompile(`\{ *(url|description|tags) *\}`)
	descriptionPlaceholder = regexp.MustCompile(`\{ *description *\}`)
	tagsPlaceholder        = regexp.MustCompile(`\{ *tags *\}`)
)

const defaultTemplate = "{url}"

// Renderer expands a message template for one entry. Rendering derives a
// string; it never mutates the entry.
type Renderer struct {
	template string
	lower    cases.Caser
}

func NewRenderer(template string) *Renderer {
	if template == "" {
		template = defaultTemplate
	}
	return &Renderer{
		template: template,
		lower:    cases.Lower(language.Und),
	}
}

func (r *Renderer) NeedsDescription() bool {
	return descriptionPlaceholder.MatchString(r.template)
}

func (r *Renderer) NeedsTags() bool {
	return tagsPlaceholder.MatchString(r.template)
}

// Run expands every placeholder in a single pass over the template, so
// placeholder-shaped text inside substituted values stays literal.
func (r *Renderer) Run(entry feed.Entry) string {
	return placeholder.ReplaceAllStringFunc(r.template, func(match string) string {
		switch strings.TrimSpace(strings.Trim(match, "{}")) {
		case "url":
			return entry.URL
		case "description":
			return entry.Description
		default:
			return r.hashtags(entry.Tags)
		}
	})
}

// hashtags formats tags as a space-separated run of #tag tokens, lowercased,
// deduplicated and sorted.
func (r *Renderer) hashtags(tags []string) string {
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(r.lower.String(tag))
		if tag == "" {
			continue
		}
		seen[tag] = struct{}{}
	}

	if len(seen) == 0 {
		return ""
	}

	unique := make([]string, 0, len(seen))
	for tag := range seen {
		unique = append(unique, "#"+tag)
	}
	sort.Strings(unique)

	return strings.Join(unique, " ")
}
