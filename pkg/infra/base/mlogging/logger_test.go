// 指示: miu200521358
package mlogging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/miu200521358/mu_vrm_spring/pkg/shared/base/logging"
)

func TestLoggerRespectsLevel(t *testing.T) {
	buffer := bytes.NewBuffer(nil)
	logger := NewLogger(buffer)
	logger.SetLevel(logging.LOG_LEVEL_INFO)

	logger.Debug("hidden %d", 1)
	logger.Info("visible %d", 2)

	output := buffer.String()
	if strings.Contains(output, "hidden") {
		t.Fatalf("debug should be suppressed: %s", output)
	}
	if !strings.Contains(output, "visible 2") {
		t.Fatalf("info should be written: %s", output)
	}
}

func TestLoggerVerboseChannelToggle(t *testing.T) {
	buffer := bytes.NewBuffer(nil)
	logger := NewLogger(buffer)

	logger.Verbose(logging.VERBOSE_INDEX_SIMULATION, "quiet")
	if logger.IsVerboseEnabled(logging.VERBOSE_INDEX_SIMULATION) {
		t.Fatalf("verbose should be disabled by default")
	}

	logger.SetVerboseEnabled(logging.VERBOSE_INDEX_SIMULATION, true)
	logger.Verbose(logging.VERBOSE_INDEX_SIMULATION, "loud %s", "sim")

	output := buffer.String()
	if strings.Contains(output, "quiet") {
		t.Fatalf("disabled channel should not write: %s", output)
	}
	if !strings.Contains(output, "loud sim") {
		t.Fatalf("enabled channel should write: %s", output)
	}
}

func TestDefaultLoggerRegistration(t *testing.T) {
	buffer := bytes.NewBuffer(nil)
	logger := NewLogger(buffer)
	logger.SetLevel(logging.LOG_LEVEL_INFO)

	prevLogger := logging.DefaultLogger()
	logging.SetDefaultLogger(logger)
	defer func() {
		logging.SetDefaultLogger(prevLogger)
	}()

	logging.DefaultLogger().Info("registered")
	if !strings.Contains(buffer.String(), "registered") {
		t.Fatalf("default logger should be replaced: %s", buffer.String())
	}
}
