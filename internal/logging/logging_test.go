package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg == nil {
		t.Fatal("DefaultConfig returned nil")
	}
	if cfg.Level != LevelInfo {
		t.Errorf("expected info level, got %v", cfg.Level)
	}
	if cfg.Output != "stderr" {
		t.Errorf("expected stderr output, got %s", cfg.Output)
	}
	if !strings.Contains(cfg.FilePath, "cliptrim") {
		t.Errorf("log path should contain cliptrim: %s", cfg.FilePath)
	}
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "cliptrim.log")
	l, err := New(&Config{
		Level:    LevelDebug,
		Format:   FormatJSON,
		Output:   "file",
		FilePath: path,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer l.Close()

	l.Info("strip generated", "count", 12)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "strip generated") {
		t.Errorf("log file missing entry: %s", data)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"", LevelInfo, false},
		{"loud", LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) err = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestWithComponent(t *testing.T) {
	l, err := New(&Config{Output: "stderr"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	child := l.WithComponent("thumbs")
	if child.Logger == l.Logger {
		t.Error("WithComponent should return a distinct logger")
	}
}
