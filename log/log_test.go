package log

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want log.Level
	}{
		{"debug", log.DebugLevel},
		{"WARN", log.WarnLevel},
		{"error", log.ErrorLevel},
		{"info", log.InfoLevel},
		{"", log.InfoLevel},
		{"verbose", log.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInitLogWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "gridsnake.log")
	if err := InitLog("gridsnake", "warn", path); err != nil {
		t.Fatalf("InitLog: %v", err)
	}
	t.Cleanup(func() {
		Close()
		InitLog("", "info", "")
	})

	Info("hidden %d", 1)
	Warn("visible %d", 2)
	Logger().Error("structured", "key", "value")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if strings.Contains(out, "hidden") {
		t.Error("info line written at warn level")
	}
	if !strings.Contains(out, "visible 2") {
		t.Errorf("missing warn line in %q", out)
	}
	if !strings.Contains(out, "key=value") {
		t.Errorf("missing structured fields in %q", out)
	}
}
