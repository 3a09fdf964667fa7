package engine

import (
	"context"
	"time"
)

// Engine is the single entry point into a loaded execution engine.
// Implementations own their output handling; callers treat Execute
// as fire-and-forget apart from the returned error.
type Engine interface {
	Execute(ctx context.Context, code string) (*Result, error)
	Close() error
}

// Config defines engine configuration
type Config struct {
	Timeout       time.Duration // Execution timeout
	MaxMemoryMB   int64         // Maximum heap size in MB (goja only)
	PoolSize      int           // Concurrent runtimes for the in-process engine
	EnableConsole bool          // Capture print/console output
	Prelude       string        // Optional source evaluated into each fresh runtime
}

// Result holds execution result
type Result struct {
	Value    interface{}   // Return value, nil when the program yields none
	Console  []LogEntry    // Captured output
	Duration time.Duration // Execution time
}

// LogEntry represents captured console output
type LogEntry struct {
	Level   string    // log, warn, error, print
	Message string    // Log message
	Time    time.Time // Timestamp
}

// Request is an immutable snapshot of the code buffer taken at the
// moment a run was triggered.
type Request struct {
	ID          string
	Code        string
	SubmittedAt time.Time
}

// Default configuration
func DefaultConfig() Config {
	return Config{
		Timeout:       5 * time.Second,
		MaxMemoryMB:   50,
		PoolSize:      4,
		EnableConsole: true,
	}
}
