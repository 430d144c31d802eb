package shared

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMarshalJSON(t *testing.T) {
	value := map[string]int{"count": 3}

	t.Run("compact", func(t *testing.T) {
		data, err := MarshalJSON(value, false)
		if err != nil {
			t.Fatalf("failed to marshal: %v", err)
		}
		if string(data) != `{"count":3}` {
			t.Errorf("unexpected output %s", data)
		}
	})

	t.Run("pretty", func(t *testing.T) {
		data, err := MarshalJSON(value, true)
		if err != nil {
			t.Fatalf("failed to marshal: %v", err)
		}
		if !strings.Contains(string(data), "\n  ") {
			t.Errorf("expected indented output, got %s", data)
		}
	})

	t.Run("unmarshalable value", func(t *testing.T) {
		if _, err := MarshalJSON(make(chan int), false); err == nil {
			t.Error("expected error for channel value")
		}
	})
}

func TestGenerateID(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := GenerateID()
		if id == "" {
			t.Fatal("expected non-empty id")
		}
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}

func TestNewFileLogger(t *testing.T) {
	t.Run("creates parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "app.log")

		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("failed to create file logger: %v", err)
		}

		logger.Info("hello")

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read log file: %v", err)
		}
		if !strings.Contains(string(data), "hello") {
			t.Errorf("expected log entry, got %s", data)
		}
	})

	t.Run("appends to an existing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")
		os.WriteFile(path, []byte("previous\n"), 0644)

		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("failed to create file logger: %v", err)
		}
		logger.Info("next")

		data, _ := os.ReadFile(path)
		if !strings.Contains(string(data), "previous") || !strings.Contains(string(data), "next") {
			t.Errorf("expected appended output, got %s", data)
		}
	})
}

func TestNewLoggerDefaultsWriter(t *testing.T) {
	if logger := NewLogger(nil); logger == nil {
		t.Fatal("expected a logger")
	}
}
