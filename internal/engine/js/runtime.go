package js

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dop251/goja"
	"github.com/runpad/backend/internal/engine"
)

// Runtime wraps a goja VM with execution controls
type Runtime struct {
	vm     *goja.Runtime
	config engine.Config
	mu     sync.Mutex

	// Console output
	console   []engine.LogEntry
	consoleMu sync.Mutex

	// Interrupt channel
	interrupt chan struct{}
}

// NewRuntime creates a single JavaScript runtime
func NewRuntime(config engine.Config) (*Runtime, error) {
	vm := goja.New()

	r := &Runtime{
		vm:        vm,
		config:    config,
		console:   []engine.LogEntry{},
		interrupt: make(chan struct{}),
	}

	if config.MaxMemoryMB > 0 {
		vm.SetMaxCallStackSize(1024)
	}

	if err := r.setupGlobals(); err != nil {
		return nil, err
	}

	if config.Prelude != "" {
		if _, err := vm.RunString(config.Prelude); err != nil {
			return nil, fmt.Errorf("%w: prelude: %v", engine.ErrModuleLoad, err)
		}
	}

	return r, nil
}

// Execute runs JavaScript code with timeout and interrupt handling
func (r *Runtime) Execute(ctx context.Context, code string) (*engine.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()

	timer := time.NewTimer(r.config.Timeout)
	defer timer.Stop()

	go func() {
		select {
		case <-timer.C:
			r.vm.Interrupt("execution timeout exceeded")
		case <-ctx.Done():
			r.vm.Interrupt("context cancelled")
		case <-r.interrupt:
			return
		}
	}()

	r.consoleMu.Lock()
	r.console = []engine.LogEntry{}
	r.consoleMu.Unlock()

	val, err := r.vm.RunString(code)

	// Stop interrupt goroutine
	close(r.interrupt)
	r.interrupt = make(chan struct{})

	result := &engine.Result{
		Duration: time.Since(start),
	}

	r.consoleMu.Lock()
	result.Console = append([]engine.LogEntry{}, r.console...)
	r.consoleMu.Unlock()

	if err != nil {
		return result, &engine.ExecError{Locator: string(engine.KindGoja), Err: err}
	}

	result.Value = exportValue(val)
	return result, nil
}

// setupGlobals strips dangerous globals and wires console capture
func (r *Runtime) setupGlobals() error {
	r.vm.Set("require", goja.Undefined())
	r.vm.Set("process", goja.Undefined())
	r.vm.Set("module", goja.Undefined())
	r.vm.Set("exports", goja.Undefined())

	if r.config.EnableConsole {
		console := r.vm.NewObject()
		console.Set("log", r.makeConsoleFunc("log"))
		console.Set("warn", r.makeConsoleFunc("warn"))
		console.Set("error", r.makeConsoleFunc("error"))
		console.Set("info", r.makeConsoleFunc("info"))
		r.vm.Set("console", console)
	}

	// Timers are no-ops; submitted code has no event loop
	r.vm.Set("setTimeout", func(call goja.FunctionCall) goja.Value {
		return goja.Undefined()
	})
	r.vm.Set("setInterval", func(call goja.FunctionCall) goja.Value {
		return goja.Undefined()
	})

	return nil
}

// makeConsoleFunc creates a console function
func (r *Runtime) makeConsoleFunc(level string) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		var msg string
		for i, arg := range call.Arguments {
			if i > 0 {
				msg += " "
			}
			msg += arg.String()
		}

		r.consoleMu.Lock()
		r.console = append(r.console, engine.LogEntry{
			Level:   level,
			Message: msg,
			Time:    time.Now(),
		})
		r.consoleMu.Unlock()

		return goja.Undefined()
	}
}

// exportValue converts a goja value to a Go value
func exportValue(val goja.Value) interface{} {
	if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
		return nil
	}
	return val.Export()
}

// Reset clears the runtime state
func (r *Runtime) Reset() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.vm = goja.New()
	r.console = []engine.LogEntry{}
	if err := r.setupGlobals(); err != nil {
		return err
	}
	if r.config.Prelude != "" {
		if _, err := r.vm.RunString(r.config.Prelude); err != nil {
			return err
		}
	}
	return nil
}

// Close releases resources
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.vm = nil
	r.console = nil
	return nil
}
