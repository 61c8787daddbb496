// Package config holds the properties that drive report capture and output:
// where reports are written, how long step labels may get and whether
// identifiers are deterministic. Properties come from built-in defaults, an
// optional YAML file and LSD_* environment variables, in that order.
package config

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// KeyDistDir is the directory reports are written to.
	KeyDistDir = "lsd.dist.dir"
	// KeyLabelMaxWidth is the number of characters a step label keeps before
	// it is abbreviated.
	KeyLabelMaxWidth = "lsd.core.label.maxWidth"
	// KeyDeterministicIDs switches scenario and step identifiers to a
	// repeatable sequence.
	KeyDeterministicIDs = "lsd.core.ids.deterministic"
)

const (
	DefaultDistDir       = "build/reports/lsd"
	DefaultLabelMaxWidth = 50
)

// Defaults returns a fresh copy of the built-in properties.
func Defaults() map[string]string {
	return map[string]string{
		KeyDistDir:          DefaultDistDir,
		KeyLabelMaxWidth:    strconv.Itoa(DefaultLabelMaxWidth),
		KeyDeterministicIDs: "false",
	}
}

// Properties is an immutable set of string properties with typed accessors.
type Properties struct {
	values map[string]string
}

// New copies values into a Properties set.
func New(values map[string]string) *Properties {
	copied := make(map[string]string, len(values))
	for key, value := range values {
		copied[strings.TrimSpace(key)] = value
	}
	return &Properties{values: copied}
}

// Default returns the built-in properties.
func Default() *Properties {
	return New(Defaults())
}

// Lookup returns the raw value of key.
func (p *Properties) Lookup(key string) (string, bool) {
	if p == nil {
		return "", false
	}
	value, ok := p.values[key]
	return value, ok
}

// Get returns the value of key or "" when unset.
func (p *Properties) Get(key string) string {
	value, _ := p.Lookup(key)
	return value
}

// Int returns key parsed as an integer, or fallback when it is unset or not
// a number.
func (p *Properties) Int(key string, fallback int) int {
	raw, ok := p.Lookup(key)
	if !ok {
		return fallback
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return value
}

// Bool returns key parsed as a boolean, or fallback when it is unset or not
// a boolean.
func (p *Properties) Bool(key string, fallback bool) bool {
	raw, ok := p.Lookup(key)
	if !ok {
		return fallback
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return value
}

// Keys returns every property name, sorted.
func (p *Properties) Keys() []string {
	if p == nil {
		return nil
	}
	keys := make([]string, 0, len(p.values))
	for key := range p.values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// With returns a copy of p with key set to value.
func (p *Properties) With(key, value string) *Properties {
	var values map[string]string
	if p == nil {
		values = make(map[string]string, 1)
	} else {
		values = make(map[string]string, len(p.values)+1)
		for k, v := range p.values {
			values[k] = v
		}
	}
	values[strings.TrimSpace(key)] = value
	return &Properties{values: values}
}

// ToYAML serializes the properties as nested YAML maps, the layout written
// by `lsd-report init`.
func (p *Properties) ToYAML() ([]byte, error) {
	root := map[string]any{}
	for _, key := range p.Keys() {
		node := root
		parts := strings.Split(key, ".")
		for _, part := range parts[:len(parts)-1] {
			child, ok := node[part].(map[string]any)
			if !ok {
				child = map[string]any{}
				node[part] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = yamlScalar(p.values[key])
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(root); err != nil {
		return nil, fmt.Errorf("config: encode yaml: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("config: close encoder: %w", err)
	}
	return buf.Bytes(), nil
}

// yamlScalar keeps numbers and booleans unquoted in the written file.
func yamlScalar(value string) any {
	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}
	if i, err := strconv.Atoi(value); err == nil {
		return i
	}
	return value
}
