package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"applytrack/internal/config"
	"applytrack/internal/logging/adapters"
)

func newBufferedLogger(t *testing.T, format string) (*MultiLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := NewMultiLogger()
	require.NoError(t, logger.AddAdapter(adapters.NewStdoutAdapter("buffer", adapters.StdoutConfig{
		Format: format,
		Writer: &buf,
	})))
	return logger, &buf
}

func TestMultiLoggerJSONFields(t *testing.T) {
	logger, buf := newBufferedLogger(t, "json")

	logger.WithField("request_id", "req-1").Info("resume analysed", map[string]interface{}{
		"ats_score": 82,
	})

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "resume analysed", line["message"])
	assert.Equal(t, "req-1", line["request_id"])
	assert.EqualValues(t, 82, line["ats_score"])
}

func TestMultiLoggerLevelFiltering(t *testing.T) {
	logger, buf := newBufferedLogger(t, "text")
	logger.SetLevel(WarnLevel)

	logger.Info("hidden")
	logger.Warn("shown", map[string]interface{}{"b": 2, "a": 1})

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[WARN] shown a=1 b=2")
}

func TestChildLoggersShareAdapters(t *testing.T) {
	logger, buf := newBufferedLogger(t, "json")
	child := logger.WithField("component", "tracker")

	logger.SetLevel(ErrorLevel)
	child.Warn("suppressed by parent level")
	assert.Empty(t, buf.String())

	child.Error("visible")
	assert.Contains(t, buf.String(), `"component":"tracker"`)
}

func TestAddAdapterRejectsDuplicates(t *testing.T) {
	logger, _ := newBufferedLogger(t, "json")
	err := logger.AddAdapter(adapters.NewStdoutAdapter("buffer", adapters.StdoutConfig{}))
	assert.Error(t, err)
	assert.Error(t, logger.RemoveAdapter("missing"))
	assert.Equal(t, []string{"buffer"}, logger.AdapterNames())
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLogLevel("DEBUG"))
	assert.Equal(t, WarnLevel, ParseLogLevel("warning"))
	assert.Equal(t, InfoLevel, ParseLogLevel("nonsense"))
}

func TestManagerInitializeFileAdapter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")

	cfg := config.Default()
	cfg.Logging.Level = "debug"
	cfg.Logging.Adapters = []config.LoggingAdapter{
		{Name: "file", Type: "file", Enabled: true, Options: map[string]interface{}{"file_path": path, "format": "text"}},
		{Name: "disabled", Type: "stdout", Enabled: false},
	}

	manager := NewManager()
	require.NoError(t, manager.Initialize(cfg))
	manager.GetLogger().Debug("written to file")
	require.NoError(t, manager.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "[DEBUG] written to file"))
}

func TestManagerRejectsUnknownAdapter(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Adapters = []config.LoggingAdapter{{Name: "x", Type: "carrier-pigeon", Enabled: true}}
	assert.Error(t, NewManager().Initialize(cfg))
}
