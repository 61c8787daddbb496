package report

import (
	"encoding/json"
	"fmt"
)

// Fact is a key/value note attached to a scenario. Its contents are only
// reachable through the accessors.
type Fact struct {
	key   string
	value string
}

// NewFact builds a fact.
func NewFact(key, value string) Fact {
	return Fact{key: key, value: value}
}

// GetKey returns the fact name.
func (f Fact) GetKey() string {
	return f.key
}

// GetValue returns the fact value.
func (f Fact) GetValue() string {
	return f.value
}

type factJSON struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// MarshalJSON implements json.Marshaler.
func (f Fact) MarshalJSON() ([]byte, error) {
	return json.Marshal(factJSON{Key: f.key, Value: f.value})
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *Fact) UnmarshalJSON(data []byte) error {
	var raw factJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("report: decode fact: %w", err)
	}
	f.key = raw.Key
	f.value = raw.Value
	return nil
}
