// Package http provides REST handlers for the Runpad backend.
//
// Endpoints:
//   - GET  /         service banner
//   - GET  /health   health with metrics snapshot
//   - GET  /code     current code buffer
//   - PUT  /code     replace the buffer
//   - POST /run      execute the buffer (optionally replacing it first)
//
// Run failures are surfaced, never swallowed: module load and spawn
// failures map to 502, errors raised by the submitted code to 422.
// A failed run leaves the buffer untouched.
package http
