/*
Package js provides the JavaScript execution engine backed by goja.

# Overview

Each runtime is an isolated goja VM with:

  - CPU limits (execution timeout, interrupt-based cancellation)
  - API restrictions (no require, process, module or exports)
  - Console capture into the execution result
  - Optional prelude source evaluated into every fresh VM

# Architecture

The engine is exposed as a Pool: a fixed set of pre-created runtimes
handed out per execution and reset between uses. The pool is the
opaque module handle the loader memoizes, so creation cost (including
prelude evaluation) is paid once per process.

# Security Model

Submitted code cannot:
  - Access filesystem or network
  - Execute native code or spawn processes
  - Run past the configured timeout

# Usage Example

	pool, err := NewPool(engine.DefaultConfig())
	if err != nil {
		return err
	}
	defer pool.Close()

	result, err := pool.Execute(ctx, code)
*/
package js
