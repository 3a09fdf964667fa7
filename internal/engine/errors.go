package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrModuleLoad indicates the engine could not be resolved or initialized.
	ErrModuleLoad = errors.New("execution module load failed")

	// ErrSpawn indicates an isolated execution context failed to start.
	ErrSpawn = errors.New("isolation spawn failed")

	// ErrUnknownLocator indicates the module locator names no known engine.
	ErrUnknownLocator = fmt.Errorf("%w: unknown locator scheme", ErrModuleLoad)
)

// ExecError wraps a failure reported by the engine while running
// submitted code, as opposed to a failure obtaining the engine.
type ExecError struct {
	Locator string
	Err     error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("execution failed (%s): %v", e.Locator, e.Err)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// IsLoadFailure reports whether err is a module load or spawn failure
// rather than an error produced by the submitted code itself.
func IsLoadFailure(err error) bool {
	return errors.Is(err, ErrModuleLoad) || errors.Is(err, ErrSpawn)
}
