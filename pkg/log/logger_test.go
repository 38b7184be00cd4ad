package log

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perrors "github.com/YuminosukeSato/linearsvm/pkg/errors"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestZerologLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelDebug).With(ModelNameKey, "LinearSVM")

	logger.Info("fit finished",
		OperationKey, OperationFit,
		SamplesKey, 4,
		FeaturesKey, 2,
	)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "info", lines[0]["level"])
	assert.Equal(t, "fit finished", lines[0]["message"])
	assert.Equal(t, "LinearSVM", lines[0][ModelNameKey])
	assert.Equal(t, OperationFit, lines[0][OperationKey])
	assert.Equal(t, 4.0, lines[0][SamplesKey])
}

func TestZerologLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelWarn)
	ctx := context.Background()

	assert.False(t, logger.Enabled(ctx, LevelInfo))
	assert.True(t, logger.Enabled(ctx, LevelWarn))
	assert.True(t, logger.Enabled(ctx, LevelError))

	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestZerologLoggerErrorField(t *testing.T) {
	var buf bytes.Buffer
	SetupLoggerWriter(&buf, LevelDebug)
	defer perrors.SetZerologWarnFunc(nil)

	err := perrors.NewPersistenceError("load", "h-1", perrors.New("checksum mismatch"))
	GetLoggerWithName("store").Error("load failed", err, HandleKey, "h-1")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0]["error"], "checksum mismatch")
	assert.Equal(t, "store", lines[0][ComponentKey])
	assert.Equal(t, "h-1", lines[0][HandleKey])
	assert.NotEmpty(t, lines[0]["stack"], "cockroachdb stack should be attached")
}

func TestWarningsRouteToZerolog(t *testing.T) {
	var buf bytes.Buffer
	SetupLoggerWriter(&buf, LevelInfo)
	defer perrors.SetZerologWarnFunc(nil)

	perrors.Warn(perrors.NewConvergenceWarning("L2R_LR_DUAL", 1000, ""))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "warn", lines[0]["level"])
	assert.Equal(t, "warnings", lines[0][ComponentKey])
	warning, ok := lines[0]["warning"].(map[string]interface{})
	require.True(t, ok, "warning should be marshaled as an object")
	assert.Equal(t, "ConvergenceWarning", warning["type"])
}

func TestToLogLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ToLogLevel("debug"))
	assert.Equal(t, LevelError, ToLogLevel("error"))
	assert.Panics(t, func() { ToLogLevel("verbose") })
}

func TestTestLogger(t *testing.T) {
	logger, buffer := NewTestLogger(LevelInfo)
	child := logger.With(ModelNameKey, "LinearSVM")

	child.Debug("not captured")
	child.Info("captured", SamplesKey, 10)
	child.Error("failed", perrors.New("boom"), OperationKey, OperationLoad)

	assert.NotContains(t, buffer.String(), "not captured")
	assert.True(t, logger.ContainsMessage("captured"))
	assert.True(t, logger.ContainsField(SamplesKey, 10.0))
	assert.True(t, logger.ContainsField(ModelNameKey, "LinearSVM"))
	assert.True(t, logger.ContainsField("error", "boom"))

	entries, err := logger.GetLogEntries()
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestTestLoggerProvider(t *testing.T) {
	p, buffer := NewTestLoggerProvider(LevelDebug)
	p.GetLoggerWithName("svm").Info("named")
	p.SetLevel(LevelError)
	p.GetLogger().Info("dropped")

	assert.Contains(t, buffer.String(), `"ml.component":"svm"`)
	assert.NotContains(t, buffer.String(), "dropped")
	assert.True(t, p.Logger().ContainsMessage("named"))
}
