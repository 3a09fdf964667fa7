package utils

import (
	"fmt"
	"unicode/utf8"
)

// Payload size limits (in bytes)
const (
	MaxCodeSize    = 512 * 1024 // 512KB - code buffer size limit
	MaxMessageSize = 16 * 1024  // 16KB - single WS message size limit
)

// CodeValidator validates submitted code payloads
type CodeValidator struct {
	maxSize int
}

// NewCodeValidator creates a validator with the specified max size
func NewCodeValidator(maxSize int) *CodeValidator {
	return &CodeValidator{maxSize: maxSize}
}

// DefaultCodeValidator returns a validator with the default 512KB limit
func DefaultCodeValidator() *CodeValidator {
	return NewCodeValidator(MaxCodeSize)
}

// Validate checks size and UTF-8 well-formedness. Empty code is
// valid; the buffer may legitimately be blank.
func (v *CodeValidator) Validate(code string) error {
	if len(code) > v.maxSize {
		return fmt.Errorf("code size %d bytes exceeds maximum %d bytes", len(code), v.maxSize)
	}
	if !utf8.ValidString(code) {
		return fmt.Errorf("code is not valid UTF-8")
	}
	return nil
}
