// Package star provides the Starlark execution engine.
//
// Unlike the JavaScript engine it keeps no per-run VM state: every
// execution gets a fresh thread over a shared set of predeclared
// globals built once from the optional prelude.
package star

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/runpad/backend/internal/engine"
	"go.starlark.net/starlark"
)

// Engine executes Starlark programs
type Engine struct {
	config      engine.Config
	predeclared starlark.StringDict

	mu     sync.RWMutex
	closed bool
}

// New creates a Starlark engine, evaluating the prelude into the
// predeclared globals shared by all runs.
func New(config engine.Config) (*Engine, error) {
	e := &Engine{
		config:      config,
		predeclared: starlark.StringDict{},
	}

	if config.Prelude != "" {
		thread := &starlark.Thread{Name: "prelude"}
		globals, err := starlark.ExecFile(thread, "prelude.star", config.Prelude, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: prelude: %v", engine.ErrModuleLoad, err)
		}
		e.predeclared = globals
	}

	return e, nil
}

// Execute runs a Starlark program with timeout and cancellation
func (e *Engine) Execute(ctx context.Context, code string) (*engine.Result, error) {
	e.mu.RLock()
	if e.closed {
		e.mu.RUnlock()
		return nil, fmt.Errorf("starlark engine is closed")
	}
	e.mu.RUnlock()

	start := time.Now()

	var console []engine.LogEntry
	var consoleMu sync.Mutex

	thread := &starlark.Thread{
		Name: "run",
		Print: func(_ *starlark.Thread, msg string) {
			if !e.config.EnableConsole {
				return
			}
			consoleMu.Lock()
			console = append(console, engine.LogEntry{
				Level:   "print",
				Message: msg,
				Time:    time.Now(),
			})
			consoleMu.Unlock()
		},
	}

	timer := time.NewTimer(e.config.Timeout)
	defer timer.Stop()

	done := make(chan struct{})
	go func() {
		select {
		case <-timer.C:
			thread.Cancel("execution timeout exceeded")
		case <-ctx.Done():
			thread.Cancel("context cancelled")
		case <-done:
		}
	}()

	_, err := starlark.ExecFile(thread, "input.star", code, e.predeclared)
	close(done)

	consoleMu.Lock()
	result := &engine.Result{
		Console:  append([]engine.LogEntry{}, console...),
		Duration: time.Since(start),
	}
	consoleMu.Unlock()

	if err != nil {
		return result, &engine.ExecError{Locator: string(engine.KindStarlark), Err: err}
	}
	return result, nil
}

// Close marks the engine closed
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.closed = true
	e.predeclared = nil
	return nil
}
