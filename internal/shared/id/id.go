// Package id provides centralized ID generation for the backend.
//
// IDs are ULIDs with type-specific prefixes (conn_*, vm_*) so log lines
// stay readable and a connection ID can never be mistaken for an engine
// instance ID. ULIDs sort lexicographically by creation time, which keeps
// log correlation cheap.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ConnID identifies a WebSocket connection
type ConnID string

// EngineID identifies a spawned engine instance
type EngineID string

const (
	ConnPrefix   = "conn"
	EnginePrefix = "vm"
)

// Generator generates ULIDs with optional prefixes
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex // Protects entropy reader
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the shared generator instance
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a new ULID generator backed by crypto/rand
func NewGenerator() *Generator {
	return &Generator{
		entropy: rand.Reader,
	}
}

// NewGeneratorWithEntropy creates a generator with a custom entropy source.
// Useful for testing with deterministic entropy.
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{
		entropy: entropy,
	}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateString creates a new ULID as a string
func (g *Generator) GenerateString() string {
	return g.Generate().String()
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.GenerateString())
}

// NewConnID generates a new connection ID
func NewConnID() ConnID {
	return ConnID(Default().GenerateWithPrefix(ConnPrefix))
}

// NewEngineID generates a new engine instance ID
func NewEngineID() EngineID {
	return EngineID(Default().GenerateWithPrefix(EnginePrefix))
}

func (id ConnID) String() string   { return string(id) }
func (id EngineID) String() string { return string(id) }

// IsValid checks whether the payload after the prefix is a valid ULID
func IsValid(id string) bool {
	if _, rest, found := strings.Cut(id, "_"); found {
		id = rest
	}
	_, err := ulid.Parse(id)
	return err == nil
}

// Timestamp extracts the creation time from a prefixed or bare ULID
func Timestamp(id string) (time.Time, error) {
	if _, rest, found := strings.Cut(id, "_"); found {
		id = rest
	}
	parsed, err := ulid.Parse(id)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}
