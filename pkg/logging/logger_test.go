package logging_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/alulab/vartab/pkg/logging"
)

func TestDefaultLogger(t *testing.T) {
	// Create a buffer to capture output
	buf := &bytes.Buffer{}
	logger := zerolog.New(buf).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	logging.SetDefault(logger)

	// Test logging at different levels
	logging.Debug().Msg("debug message")
	logging.Info().Msg("info message")
	logging.Warn().Msg("warning message")
	logging.Error().Msg("error message")

	output := buf.String()
	if !strings.Contains(output, "info message") {
		t.Errorf("Expected info message in output, got: %s", output)
	}
	if !strings.Contains(output, "warning message") {
		t.Errorf("Expected warning message in output, got: %s", output)
	}
}

func TestContextLogger(t *testing.T) {
	// Create test logger
	testLogger := logging.NewTestLogger(t)

	// Create context with logger
	ctx := logging.WithLogger(context.Background(), testLogger.Logger)

	// Add fields to context
	ctx = logging.WithSource(ctx, "clinvar")
	ctx = logging.WithOperation(ctx, "merge")

	// Get logger from context and log
	logger := logging.FromContext(ctx)
	logger.Info().Msg("partitioned batch")

	// Verify output contains expected fields
	if !testLogger.ContainsAll("clinvar", "merge", "partitioned batch") {
		t.Errorf("Missing expected fields in output:\n%s", testLogger.Output())
	}
}

func TestNewWriters(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := logging.New(buf)
	logger.Info().Str("source", "gnomad").Msg("validated")

	if !strings.Contains(buf.String(), `"source":"gnomad"`) {
		t.Errorf("Expected JSON field in output, got: %s", buf.String())
	}
}

func TestTestLoggerHelpers(t *testing.T) {
	tl := logging.NewTestLogger(t)
	tl.Info().Msg("one")
	tl.Info().Msg("two")

	if tl.Count() != 2 {
		t.Errorf("Expected 2 entries, got %d", tl.Count())
	}
	if !tl.Contains("one") {
		t.Error("Expected output to contain 'one'")
	}

	tl.Clear()
	if tl.Count() != 0 {
		t.Errorf("Expected 0 entries after Clear, got %d", tl.Count())
	}
}
