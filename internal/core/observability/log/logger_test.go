package log

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observed(level Level) (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewZap(zap.New(core), level), logs
}

func TestLevelFiltering(t *testing.T) {
	l, logs := observed(LevelWarn)

	l.Info("dropped")
	l.Warn("kept", String("zone", "character"))
	l.Error("failed", Error(errors.New("boom")))

	require.Equal(t, 2, logs.Len())
	entries := logs.All()
	assert.Equal(t, "kept", entries[0].Message)
	assert.Equal(t, "character", entries[0].ContextMap()["zone"])
	assert.Equal(t, "boom", entries[1].ContextMap()["error"])

	l.SetLevel(LevelDebug)
	assert.Equal(t, LevelDebug, l.GetLevel())
	l.Debug("now visible")
	assert.Equal(t, 3, logs.Len())
}

func TestWithContextAddsFrame(t *testing.T) {
	l, logs := observed(LevelDebug)

	ctx := ContextWithFrame(context.Background(), 42)
	l.WithContext(ctx).Info("tick")
	l.WithContext(context.Background()).Info("plain")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, uint64(42), entries[0].ContextMap()["frame"])
	assert.NotContains(t, entries[1].ContextMap(), "frame")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelSilent, ParseLevel("off"))
	assert.Equal(t, LevelInfo, ParseLevel("whatever"))
}

func TestNopDiscards(t *testing.T) {
	l := NewNop()
	l.Error("nothing happens")
	assert.Equal(t, LevelSilent, l.GetLevel())
}
