// internal/logging/logging_test.go
package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	for _, mode := range []string{"release", "debug", ""} {
		logger, err := New(mode)
		if err != nil {
			t.Fatalf("New(%q) failed: %v", mode, err)
		}

		debug := logger.Core().Enabled(zapcore.DebugLevel)
		if mode == "release" && debug {
			t.Error("Expected debug level disabled in release mode")
		}
		if mode != "release" && !debug {
			t.Errorf("Expected debug level enabled in mode %q", mode)
		}
	}

	Sync(nil)
}
