// Package sanitise cleans untrusted text before it is embedded into HTML
// reports. Both helpers are pure: the same input always yields the same
// output, and the output is safe to place in element content or quoted
// attribute values without further escaping.
package sanitise

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// ErrUnsupportedValue is returned when a helper receives a nested object
// (map, slice, struct) instead of a scalar.
var ErrUnsupportedValue = errors.New("sanitise: unsupported value")

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

// Text strips all markup from v and escapes the remaining text.
func Text(v any) (string, error) {
	raw, err := Coerce(v)
	if err != nil {
		return "", err
	}
	if raw == "" {
		return "", nil
	}
	return strictPolicy().Sanitize(raw), nil
}

// Coerce turns scalar values into text. nil becomes "". Nested objects are
// rejected with ErrUnsupportedValue.
func Coerce(v any) (string, error) {
	switch value := v.(type) {
	case nil:
		return "", nil
	case string:
		return value, nil
	case []byte:
		return string(value), nil
	case fmt.Stringer:
		return value.String(), nil
	case error:
		return value.Error(), nil
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "", nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return fmt.Sprint(rv.Interface()), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedValue, describe(rv))
	}
}

func describe(rv reflect.Value) string {
	if !rv.IsValid() {
		return "invalid"
	}
	name := rv.Type().String()
	if strings.TrimSpace(name) == "" {
		return rv.Kind().String()
	}
	return name
}

func strictPolicy() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}
