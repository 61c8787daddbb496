package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-lsd/internal/logging"
)

// envVarPrefix is the prefix for all lsd environment variables.
const envVarPrefix = "LSD_"

// Loader resolves properties from defaults, an optional YAML file and the
// environment.
type Loader struct {
	// Path of the YAML file. Empty skips the file.
	Path string
	// Defaults replaces the built-in defaults when set.
	Defaults map[string]string
	// LookupEnv reads environment variables; os.LookupEnv when nil.
	LookupEnv func(string) (string, bool)
	// Logger receives fallback warnings; logging.Default() when nil.
	Logger *log.Logger
}

// Load builds the property set. A missing or unreadable file is not an
// error: the loader warns and keeps the defaults. Environment overrides for
// typed properties must parse, otherwise Load fails.
func (l Loader) Load() (*Properties, error) {
	logger := l.Logger
	if logger == nil {
		logger = logging.Default()
	}

	values := l.Defaults
	if values == nil {
		values = Defaults()
	}
	merged := make(map[string]string, len(values))
	for key, value := range values {
		merged[key] = value
	}

	if path := strings.TrimSpace(l.Path); path != "" {
		fileValues, err := readFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			logger.Warn("config file not found, using defaults", logging.FieldPath, path)
		case err != nil:
			logger.Warn("config file unreadable, using defaults", logging.FieldPath, path, logging.FieldError, err)
		default:
			for key, value := range fileValues {
				if err := validate(key, value); err != nil {
					logger.Warn("ignoring invalid property", logging.FieldKey, key, logging.FieldValue, value, logging.FieldError, err)
					continue
				}
				merged[key] = value
			}
		}
	}

	lookup := l.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	keys := make([]string, 0, len(merged))
	for key := range merged {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		envVar := EnvVarName(key)
		value, ok := lookup(envVar)
		if !ok {
			continue
		}
		if err := validate(key, value); err != nil {
			return nil, fmt.Errorf("config: %s: %w", envVar, err)
		}
		logger.Debug("property overridden from environment", logging.FieldKey, key, "env", envVar)
		merged[key] = value
	}

	return New(merged), nil
}

// Load is shorthand for Loader{Path: path}.Load().
func Load(path string) (*Properties, error) {
	return Loader{Path: path}.Load()
}

func readFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	out := make(map[string]string)
	flatten("", raw, out)
	return out, nil
}

// flatten turns nested maps into dotted keys. Flat dotted keys and nested
// maps can be mixed in the same file.
func flatten(prefix string, node map[string]any, out map[string]string) {
	for key, value := range node {
		name := key
		if prefix != "" {
			name = prefix + "." + key
		}
		switch typed := value.(type) {
		case map[string]any:
			flatten(name, typed, out)
		case []any:
			parts := make([]string, 0, len(typed))
			for _, item := range typed {
				parts = append(parts, fmt.Sprint(item))
			}
			out[name] = strings.Join(parts, ",")
		case nil:
			out[name] = ""
		default:
			out[name] = fmt.Sprint(typed)
		}
	}
}

func validate(key, value string) error {
	switch key {
	case KeyLabelMaxWidth:
		width, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("invalid integer %q", value)
		}
		if width < 1 {
			return fmt.Errorf("must be positive, got %d", width)
		}
	case KeyDeterministicIDs:
		if _, err := strconv.ParseBool(strings.TrimSpace(value)); err != nil {
			return fmt.Errorf("invalid boolean %q (expected true/false/1/0)", value)
		}
	}
	return nil
}

// EnvVarName returns the environment variable overriding key:
// lsd.core.label.maxWidth becomes LSD_CORE_LABEL_MAX_WIDTH.
func EnvVarName(key string) string {
	key = strings.TrimPrefix(strings.TrimSpace(key), "lsd.")

	var b strings.Builder
	b.WriteString(envVarPrefix)
	prevLower := false
	for _, r := range key {
		switch {
		case r == '.' || r == '-':
			b.WriteByte('_')
			prevLower = false
		case unicode.IsUpper(r):
			if prevLower {
				b.WriteByte('_')
			}
			b.WriteRune(r)
			prevLower = false
		default:
			b.WriteRune(unicode.ToUpper(r))
			prevLower = unicode.IsLower(r) || unicode.IsDigit(r)
		}
	}
	return b.String()
}
