package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestSetupRejectsUnknownLevel(t *testing.T) {
	if _, err := Setup(Options{Level: "loud"}); err == nil {
		t.Error("Setup with unknown level succeeded, want error")
	}
}

func TestSetupSetsGlobalLevel(t *testing.T) {
	closer, err := Setup(Options{Level: "warn"})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	defer closer()

	if got := zerolog.GlobalLevel(); got != zerolog.WarnLevel {
		t.Errorf("GlobalLevel() = %v, want %v", got, zerolog.WarnLevel)
	}
}

func TestSetupFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "relgate.log")

	closer, err := Setup(Options{Level: "debug", File: path})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}

	log.Info().Str("component", "test").Msg("file sink check")
	if err := closer(); err != nil {
		t.Fatalf("close log file: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, `"message":"file sink check"`) {
		t.Errorf("log file missing message, got: %s", content)
	}
	if !strings.Contains(content, `"component":"test"`) {
		t.Errorf("log file missing field, got: %s", content)
	}
}

func TestSetupCloserSafeWithoutFile(t *testing.T) {
	closer, err := Setup(Options{})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if err := closer(); err != nil {
		t.Errorf("closer() = %v, want nil", err)
	}
}
