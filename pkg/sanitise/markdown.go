package sanitise

import (
	"bytes"
	"fmt"
	"regexp"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	markdownOnce   sync.Once
	markdownEngine goldmark.Markdown
	markdownPolicy *bluemonday.Policy
)

// Markdown renders v as GitHub flavoured markdown and cleans the result with
// a user-generated-content policy. Raw HTML in the source never survives.
func Markdown(v any) (string, error) {
	raw, err := Coerce(v)
	if err != nil {
		return "", err
	}
	if raw == "" {
		return "", nil
	}

	engine, policy := markdownRenderer()

	var buf bytes.Buffer
	if err := engine.Convert([]byte(raw), &buf); err != nil {
		return "", fmt.Errorf("sanitise: convert markdown: %w", err)
	}
	return policy.Sanitize(buf.String()), nil
}

func markdownRenderer() (goldmark.Markdown, *bluemonday.Policy) {
	markdownOnce.Do(func() {
		markdownEngine = goldmark.New(goldmark.WithExtensions(extension.GFM))

		policy := bluemonday.UGCPolicy()
		policy.AllowAttrs("class").Matching(regexp.MustCompile(`^language-[\w-]+$`)).OnElements("code")
		markdownPolicy = policy
	})
	return markdownEngine, markdownPolicy
}
