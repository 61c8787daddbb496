// Package langdetect guesses the language of captured payloads (request and
// response bodies, log excerpts) so report templates can tag them for syntax
// highlighting. Cheap structural checks run first; go-enry's classifier is the
// fallback.
package langdetect

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

const (
	langJSON  = "json"
	langXML   = "xml"
	langHTML  = "html"
	langYAML  = "yaml"
	langSQL   = "sql"
	langShell = "bash"
	langText  = "text"
)

// classifierCandidates bounds the classifier to payload-like languages.
var classifierCandidates = []string{
	"JSON", "XML", "HTML", "YAML", "SQL", "Shell", "GraphQL", "INI", "CSV", "Markdown",
}

// Detect returns a lower-case language tag for content, "text" when unsure.
func Detect(content []byte) string {
	trimmed := bytes.TrimSpace(content)
	if len(trimmed) == 0 {
		return langText
	}

	if lang, safe := enry.GetLanguageByShebang(trimmed); safe {
		return normalize(lang)
	}
	if lang := detectByStructure(trimmed); lang != "" {
		return lang
	}
	if lang, safe := enry.GetLanguageByClassifier(trimmed, classifierCandidates); safe && lang != "" {
		return normalize(lang)
	}
	return langText
}

func detectByStructure(trimmed []byte) string {
	if detectJSON(trimmed) {
		return langJSON
	}
	if lang := detectMarkup(trimmed); lang != "" {
		return lang
	}
	if detectSQL(trimmed) {
		return langSQL
	}
	if detectYAML(trimmed) {
		return langYAML
	}
	return ""
}

func detectJSON(trimmed []byte) bool {
	if trimmed[0] != '{' && trimmed[0] != '[' {
		return false
	}
	return json.Valid(trimmed)
}

func detectMarkup(trimmed []byte) string {
	if trimmed[0] != '<' {
		return ""
	}
	lower := bytes.ToLower(trimmed)
	if bytes.HasPrefix(lower, []byte("<!doctype html")) ||
		bytes.Contains(lower, []byte("<html")) ||
		bytes.Contains(lower, []byte("<body")) {
		return langHTML
	}
	return langXML
}

func detectSQL(trimmed []byte) bool {
	upper := strings.ToUpper(string(trimmed))
	for _, keyword := range []string{"SELECT ", "INSERT ", "UPDATE ", "DELETE ", "CREATE "} {
		if strings.HasPrefix(upper, keyword) {
			return true
		}
	}
	return false
}

// detectYAML needs at least two "key: value" or list lines.
func detectYAML(trimmed []byte) bool {
	count := 0
	for _, line := range bytes.Split(trimmed, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		if bytes.HasPrefix(line, []byte("- ")) {
			count++
			continue
		}
		if bytes.Contains(line, []byte(": ")) &&
			!bytes.ContainsAny(line, "(){};") &&
			line[0] != '"' {
			count++
		}
	}
	return count >= 2
}

func normalize(lang string) string {
	if lang == "Shell" {
		return langShell
	}
	return strings.ToLower(lang)
}
