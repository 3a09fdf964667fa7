package star

import (
	"context"
	"errors"
	"testing"

	"github.com/runpad/backend/internal/engine"
)

func TestEngineExecution(t *testing.T) {
	eng, err := New(engine.DefaultConfig())
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	defer eng.Close()

	tests := []struct {
		name    string
		code    string
		wantErr bool
	}{
		{
			name:    "assignment",
			code:    "x = 1 + 1",
			wantErr: false,
		},
		{
			name:    "function definition and call",
			code:    "def double(n):\n    return n * 2\n\ny = double(21)",
			wantErr: false,
		},
		{
			name:    "syntax error",
			code:    "def broken(:",
			wantErr: true,
		},
		{
			name:    "runtime error",
			code:    "x = 1 // 0",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := eng.Execute(context.Background(), tt.code)

			if (err != nil) != tt.wantErr {
				t.Errorf("Execute() error = %v, wantErr %v", err, tt.wantErr)
			}

			if tt.wantErr {
				var execErr *engine.ExecError
				if !errors.As(err, &execErr) {
					t.Errorf("Execute() error type = %T, want *engine.ExecError", err)
				}
			}
		})
	}
}

func TestEnginePrintCapture(t *testing.T) {
	eng, err := New(engine.DefaultConfig())
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	defer eng.Close()

	result, err := eng.Execute(context.Background(), `print("one")
print("two")`)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if len(result.Console) != 2 {
		t.Fatalf("Expected 2 console entries, got %d", len(result.Console))
	}
	if result.Console[0].Message != "one" || result.Console[1].Message != "two" {
		t.Errorf("Console = %v, want [one two]", result.Console)
	}
}

func TestEnginePrelude(t *testing.T) {
	config := engine.DefaultConfig()
	config.Prelude = "def greet(name):\n    return \"hello \" + name\n"

	eng, err := New(config)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	defer eng.Close()

	result, err := eng.Execute(context.Background(), `print(greet("pad"))`)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if len(result.Console) != 1 || result.Console[0].Message != "hello pad" {
		t.Errorf("Console = %v, want [hello pad]", result.Console)
	}
}

func TestEngineBadPrelude(t *testing.T) {
	config := engine.DefaultConfig()
	config.Prelude = "def broken(:"

	if _, err := New(config); !errors.Is(err, engine.ErrModuleLoad) {
		t.Errorf("New() error = %v, want ErrModuleLoad", err)
	}
}

func TestEngineClosed(t *testing.T) {
	eng, err := New(engine.DefaultConfig())
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	eng.Close()

	if _, err := eng.Execute(context.Background(), "x = 1"); err == nil {
		t.Error("Execute() on closed engine should fail")
	}
}
