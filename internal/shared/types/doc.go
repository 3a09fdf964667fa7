// Package types defines the request and response shapes shared by the
// HTTP and WebSocket surfaces.
package types
