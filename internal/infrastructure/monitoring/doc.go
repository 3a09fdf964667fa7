// Package monitoring provides Prometheus metrics for the Runpad backend.
//
// Collected metric families:
//   - HTTP: request counts, durations per method/path/status
//   - Runs: code run counts by outcome, run durations
//   - Engine: module load attempts, failures, load durations
//   - WebSocket: active connections, messages by type
//
// Metrics are exposed on /metrics in Prometheus exposition format; a
// JSON snapshot of headline values is embedded in /health responses.
package monitoring
