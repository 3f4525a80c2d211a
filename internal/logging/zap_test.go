package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestLogger(t *testing.T) (*ZapLogger, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	return NewZapLogger(zap.New(core)), logs
}

func TestZapLogger_Levels(t *testing.T) {
	log, logs := newTestLogger(t)
	ctx := context.Background()

	log.Debug(ctx, "dbg", "a", 1)
	log.Info(ctx, "inf", "b", 2)
	log.Warn(ctx, "wrn", "c", 3)
	log.Error(ctx, "err", "d", 4)

	entries := logs.AllUntimed()
	require.Len(t, entries, 4)

	tests := []struct {
		level zapcore.Level
		msg   string
		key   string
		val   int64
	}{
		{zapcore.DebugLevel, "dbg", "a", 1},
		{zapcore.InfoLevel, "inf", "b", 2},
		{zapcore.WarnLevel, "wrn", "c", 3},
		{zapcore.ErrorLevel, "err", "d", 4},
	}

	for i, tc := range tests {
		assert.Equal(t, tc.level, entries[i].Level)
		assert.Equal(t, tc.msg, entries[i].Message)
		assert.EqualValues(t, tc.val, entries[i].ContextMap()[tc.key])
	}
}

func TestZapLogger_With_AddsAttributes(t *testing.T) {
	log, logs := newTestLogger(t)

	log.With("module", "http_server").Info(context.Background(), "hello", "k", "v")

	entries := logs.FilterMessage("hello").AllUntimed()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "http_server", fields["module"])
	assert.Equal(t, "v", fields["k"])
}

func TestZapLogger_RequestIDFromContext(t *testing.T) {
	log, logs := newTestLogger(t)

	ctx := ContextWithRequestID(context.Background(), "req-1")
	log.Info(ctx, "with id")
	log.Info(context.Background(), "without id")

	withID := logs.FilterMessage("with id").AllUntimed()
	require.Len(t, withID, 1)
	assert.Equal(t, "req-1", withID[0].ContextMap()["request_id"])

	withoutID := logs.FilterMessage("without id").AllUntimed()
	require.Len(t, withoutID, 1)
	_, ok := withoutID[0].ContextMap()["request_id"]
	assert.False(t, ok)
}

func TestNew_Levels(t *testing.T) {
	l, err := New("info")
	require.NoError(t, err)
	require.NotNil(t, l)

	l, err = New("debug")
	require.NoError(t, err)
	require.NotNil(t, l)

	_, err = New("loud")
	require.Error(t, err)
}
