// Package main is the entry point for the Runpad backend server.
//
// This application hosts the code playground backend: it keeps the
// shared code buffer, loads the execution engine on demand, and runs
// submitted code inside an isolated context.
//
// Architecture:
//
//	Editor (browser) → Go Backend → Engine (goja / Starlark)
//	                             → Isolated run loop (wall timeout)
//
// The server provides:
//   - REST API for the code buffer and run triggers
//   - WebSocket streaming for live buffer updates and console output
//   - Lazy, memoized engine loading
//   - Rate limiting and Prometheus metrics
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# Production mode
//	./server -port 8000
//
//	# Point at a different engine
//	./server -engine starlark:
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
