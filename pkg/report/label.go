package report

import "strings"

const ellipsis = "..."

// AbbreviateLabel shortens label to at most maxWidth runes, ending it with
// "...". detail holds the original label when it was shortened and is empty
// otherwise. A maxWidth below one disables abbreviation.
func AbbreviateLabel(label string, maxWidth int) (short, detail string) {
	label = strings.TrimSpace(label)
	runes := []rune(label)
	if maxWidth < 1 || len(runes) <= maxWidth {
		return label, ""
	}
	if maxWidth <= len(ellipsis) {
		return string(runes[:maxWidth]), label
	}
	cut := strings.TrimRight(string(runes[:maxWidth-len(ellipsis)]), " ")
	return cut + ellipsis, label
}

// WithAbbreviatedLabel returns a copy of s whose label fits maxWidth. An
// existing Detail is kept.
func (s Step) WithAbbreviatedLabel(maxWidth int) Step {
	short, detail := AbbreviateLabel(s.Label, maxWidth)
	s.Label = short
	if s.Detail == "" {
		s.Detail = detail
	}
	return s
}
