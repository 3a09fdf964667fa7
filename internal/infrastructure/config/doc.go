// Package config provides 12-factor configuration management for the
// Runpad backend.
//
// Configuration is loaded from environment variables with sensible
// defaults. CLI flags can override environment variables for
// development flexibility.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host)
//   - Engine: execution engine locator, timeout, pool size
//   - Worker: isolation channel settings
//   - Logging: log level and output format
//   - RateLimit: per-IP rate limiting configuration
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Server running on %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//
// Environment Variables:
//   - PORT, HOST
//   - ENGINE_LOCATOR, ENGINE_TIMEOUT, ENGINE_POOL_SIZE, ENGINE_CONSOLE
//   - WORKER_ISOLATED, WORKER_WALL_TIMEOUT, WORKER_QUEUE_SIZE
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST
package config
