package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/regselect/pkg/errors"
)

func TestTestLogger(t *testing.T) {
	logger, buffer := NewTestLogger(LevelDebug)

	logger.Debug("debug message", "key1", "value1", "number", 42)
	logger.Info("info message", OperationKey, OperationFit)
	logger.Warn("warning message")
	logger.Error("error message", fmt.Errorf("boom"), "code", "E1")

	require.NotEmpty(t, buffer.String())
	assert.True(t, logger.ContainsMessage("debug message"))
	assert.True(t, logger.ContainsMessage("error message"))
	assert.True(t, logger.ContainsField("key1", "value1"))
	assert.True(t, logger.ContainsField("number", 42.0))
	assert.True(t, logger.ContainsField(ErrAttrKey, "boom"))
	assert.True(t, logger.ContainsField("code", "E1"))

	entries, err := logger.GetLogEntries()
	require.NoError(t, err)
	assert.Len(t, entries, 4)

	logger.Clear()
	assert.Empty(t, buffer.String())
}

func TestTestLoggerLevelsAndWith(t *testing.T) {
	logger, _ := NewTestLogger(LevelInfo)
	ctx := context.Background()

	assert.True(t, logger.Enabled(ctx, LevelInfo))
	assert.False(t, logger.Enabled(ctx, LevelDebug))

	logger.Debug("hidden")
	assert.False(t, logger.ContainsMessage("hidden"))

	scoped := logger.With(ModelNameKey, "LinearModel")
	scoped.Info("fit", SamplesKey, 7)
	assert.True(t, logger.ContainsField(ModelNameKey, "LinearModel"))
	assert.True(t, logger.ContainsField(SamplesKey, 7.0))
}

func TestTestLoggerProvider(t *testing.T) {
	provider, logger := NewTestLoggerProvider(LevelWarn)
	provider.GetLoggerWithName("gbm.cv").Warn("stopped early")
	provider.GetLogger().Info("dropped")

	assert.True(t, logger.ContainsField(ComponentKey, "gbm.cv"))
	assert.False(t, logger.ContainsMessage("dropped"))

	provider.SetLevel(LevelDebug)
	provider.GetLogger().Debug("now visible")
	assert.True(t, logger.ContainsMessage("now visible"))
}

func TestZerologLogger(t *testing.T) {
	var buf bytes.Buffer
	provider := NewZerologProvider(&buf, LevelDebug)

	logger := provider.GetLoggerWithName("linear").With(ModelNameKey, "LinearModel")
	logger.Info("model fitted", SamplesKey, 10, R2ScoreKey, 0.97)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "model fitted", entry["message"])
	assert.Equal(t, "linear", entry[ComponentKey])
	assert.Equal(t, "LinearModel", entry[ModelNameKey])
	assert.Equal(t, 10.0, entry[SamplesKey])
	assert.Equal(t, 0.97, entry[R2ScoreKey])
}

func TestZerologLoggerErrorStack(t *testing.T) {
	var buf bytes.Buffer
	provider := NewZerologProvider(&buf, LevelDebug)

	err := errors.NewLengthMismatchError("RMSE", 5, 4)
	provider.GetLogger().Error("evaluation failed", err)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Contains(t, entry[ErrAttrKey], "5 predictions for 4")
	assert.NotEmpty(t, entry["stack"])
}

func TestZerologLevels(t *testing.T) {
	var buf bytes.Buffer
	provider := NewZerologProvider(&buf, LevelWarn)
	logger := provider.GetLogger()

	assert.False(t, logger.Enabled(context.Background(), LevelInfo))
	assert.True(t, logger.Enabled(context.Background(), LevelError))

	logger.Info("suppressed")
	assert.Empty(t, buf.String())

	provider.SetLevel(LevelInfo)
	provider.GetLogger().Info("emitted")
	assert.True(t, strings.Contains(buf.String(), "emitted"))
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{"debug": LevelDebug, "INFO": LevelInfo, "warn": LevelWarn, "error": LevelError, "": LevelInfo}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseLevel("verbose")
	var vErr *errors.ValidationError
	assert.True(t, errors.As(err, &vErr))
}

func TestSetupRoutesWarnings(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Setup("info", "json", &buf))
	defer SetProvider(NewZerologProvider(&bytes.Buffer{}, LevelInfo))

	errors.Warn(errors.NewMethodologyWarning("preprocessing", "refit on test subset"))
	assert.Contains(t, buf.String(), "refit on test subset")
	assert.Contains(t, buf.String(), "MethodologyWarning")

	assert.Error(t, Setup("info", "xml", &buf))
}
