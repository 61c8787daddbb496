package report

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// idNamespace seeds deterministic identifiers.
var idNamespace = uuid.MustParse("5b0c8d9e-6a51-4c3b-9f2e-1d7a4c6b8e30")

// IDGenerator hands out identifiers for scenarios and steps. Deterministic
// generators produce the same sequence on every run so rendered reports can
// be diffed.
type IDGenerator struct {
	mu            sync.Mutex
	deterministic bool
	counter       uint64
}

// NewIDGenerator creates a generator.
func NewIDGenerator(deterministic bool) *IDGenerator {
	return &IDGenerator{deterministic: deterministic}
}

// Next returns a new identifier.
func (g *IDGenerator) Next() string {
	if !g.deterministic {
		return uuid.NewString()
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.counter++
	return uuid.NewSHA1(idNamespace, []byte(fmt.Sprintf("lsd-%d", g.counter))).String()
}

// Reset restarts a deterministic sequence.
func (g *IDGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.counter = 0
}
