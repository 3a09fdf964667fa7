package types

import "time"

// UpdateCodeRequest replaces the code buffer.
type UpdateCodeRequest struct {
	Code string `json:"code"`
}

// RunRequest triggers execution. Code is optional: when present it
// replaces the buffer before the run, mirroring an editor that saves
// on run.
type RunRequest struct {
	Code *string `json:"code,omitempty"`
}

// RunResponse reports a completed run.
type RunResponse struct {
	Value     any        `json:"value,omitempty"`
	Console   []LogLine  `json:"console,omitempty"`
	Duration  float64    `json:"duration_ms"`
	StartedAt *time.Time `json:"started_at,omitempty"`
}

// LogLine is one captured console entry.
type LogLine struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// WSMessage represents a WebSocket message in either direction.
type WSMessage struct {
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}
