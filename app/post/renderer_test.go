package post

import (
	"testing"

	"github.com/crossfeed/crossfeed/app/feed"
)

func TestRenderer_URLPlaceholder(t *testing.T) {
	renderer := NewRenderer("New post: {url}")

	got := renderer.Run(feed.Entry{URL: "https://example.com/a"})
	if got != "New post: https://example.com/a" {
		t.Errorf("Unexpected message: %q", got)
	}
}

func TestRenderer_DefaultTemplate(t *testing.T) {
	renderer := NewRenderer("")

	got := renderer.Run(feed.Entry{URL: "https://example.com/a"})
	if got != "https://example.com/a" {
		t.Errorf("Empty template should default to the bare URL, got %q", got)
	}
}

func TestRenderer_NoPlaceholdersIsIdentity(t *testing.T) {
	template := "Just a static announcement, no substitution {at all}"
	renderer := NewRenderer(template)

	got := renderer.Run(feed.Entry{URL: "https://example.com/a", Description: "d"})
	if got != template {
		t.Errorf("Template without recognized placeholders should render verbatim, got %q", got)
	}
}

func TestRenderer_SpacesInsideBraces(t *testing.T) {
	renderer := NewRenderer("{ url } - { description }")

	got := renderer.Run(feed.Entry{URL: "https://example.com/a", Description: "hello"})
	if got != "https://example.com/a - hello" {
		t.Errorf("Placeholders with inner spaces should substitute, got %q", got)
	}
}

func TestRenderer_SubstitutedValuesStayLiteral(t *testing.T) {
	renderer := NewRenderer("{description} {tags}")

	got := renderer.Run(feed.Entry{
		Description: "how {tags} and {description} work",
		Tags:        []string{"go"},
	})
	if got != "how {tags} and {description} work #go" {
		t.Errorf("Placeholder-shaped text inside values must not expand, got %q", got)
	}
}

func TestRenderer_URLContainingPlaceholderText(t *testing.T) {
	renderer := NewRenderer("{url} {description}")

	got := renderer.Run(feed.Entry{
		URL:         "https://example.com/docs/{description}",
		Description: "templating",
	})
	if got != "https://example.com/docs/{description} templating" {
		t.Errorf("URL content must render verbatim, got %q", got)
	}
}

func TestRenderer_MissingDescriptionRendersEmpty(t *testing.T) {
	renderer := NewRenderer("{url} {description}")

	got := renderer.Run(feed.Entry{URL: "https://example.com/a"})
	if got != "https://example.com/a " {
		t.Errorf("Missing description should render as empty string, got %q", got)
	}
}

func TestRenderer_Tags(t *testing.T) {
	renderer := NewRenderer("#blog {tags}")

	got := renderer.Run(feed.Entry{URL: "https://example.com/a", Tags: []string{"b", "A"}})
	if got != "#blog #a #b" {
		t.Errorf("Tags should render lowercased and sorted, got %q", got)
	}
}

func TestRenderer_TagsDeduplicated(t *testing.T) {
	renderer := NewRenderer("{tags}")

	got := renderer.Run(feed.Entry{Tags: []string{"Go", "go", " go "}})
	if got != "#go" {
		t.Errorf("Duplicate tags should collapse, got %q", got)
	}
}

func TestRenderer_EmptyTags(t *testing.T) {
	renderer := NewRenderer("post {tags}")

	got := renderer.Run(feed.Entry{URL: "https://example.com/a"})
	if got != "post " {
		t.Errorf("Missing tags should render as empty string, got %q", got)
	}
}

func TestRenderer_Needs(t *testing.T) {
	r := NewRenderer("{url}")
	if r.NeedsDescription() || r.NeedsTags() {
		t.Error("Plain URL template should not require enrichment")
	}

	r = NewRenderer("{ description } { tags }")
	if !r.NeedsDescription() || !r.NeedsTags() {
		t.Error("Template with spaced placeholders should require enrichment")
	}
}
