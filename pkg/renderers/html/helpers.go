package html

import (
	"regexp"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// ThemeToken is a manifest token ready to be printed as a CSS custom property.
type ThemeToken struct {
	Name  string
	Value string
}

var tokenNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// themeTokensHelper snapshots the manifest tokens at construction so the
// compiled renderer does not depend on later changes to the manifest.
func themeTokensHelper(manifest *theme.Manifest) func() []ThemeToken {
	tokens := themeTokens(manifest)
	return func() []ThemeToken {
		return tokens
	}
}

// themeTokens returns the manifest tokens sorted by name. Dotted names become
// dashed; tokens that cannot be written safely inside a style block are
// dropped.
func themeTokens(manifest *theme.Manifest) []ThemeToken {
	if manifest == nil || len(manifest.Tokens) == 0 {
		return nil
	}

	tokens := make([]ThemeToken, 0, len(manifest.Tokens))
	for name, value := range manifest.Tokens {
		name = strings.ReplaceAll(strings.TrimSpace(name), ".", "-")
		value = strings.TrimSpace(value)
		if !tokenNamePattern.MatchString(name) || value == "" || strings.ContainsAny(value, "<>{};") {
			continue
		}
		tokens = append(tokens, ThemeToken{Name: name, Value: value})
	}
	sort.Slice(tokens, func(i, j int) bool {
		return tokens[i].Name < tokens[j].Name
	})
	return tokens
}
