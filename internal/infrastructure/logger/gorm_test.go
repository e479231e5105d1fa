package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func newObservedGormLogger(level gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return NewGormLogger(zap.New(core), level, opts...), logs
}

func TestNewGormLogger_Defaults(t *testing.T) {
	gl := NewGormLogger(zap.NewNop(), gormlogger.Warn)
	assert.Equal(t, 200*time.Millisecond, gl.slowThreshold)
	assert.True(t, gl.ignoreRecordNotFoundError)
}

func TestNewGormLogger_Options(t *testing.T) {
	gl := NewGormLogger(zap.NewNop(), gormlogger.Warn,
		WithSlowThreshold(time.Second),
		WithIgnoreRecordNotFoundError(false),
	)
	assert.Equal(t, time.Second, gl.slowThreshold)
	assert.False(t, gl.ignoreRecordNotFoundError)
}

func TestGormLogger_LogMode(t *testing.T) {
	gl := NewGormLogger(zap.NewNop(), gormlogger.Warn)
	changed := gl.LogMode(gormlogger.Info).(*GormLogger)

	assert.Equal(t, gormlogger.Info, changed.logLevel)
	assert.Equal(t, gormlogger.Warn, gl.logLevel)
}

func TestGormLogger_InfoSuppressedBelowLevel(t *testing.T) {
	gl, logs := newObservedGormLogger(gormlogger.Error)
	gl.Info(context.Background(), "connected to %s", "postgres")
	assert.Zero(t, logs.Len())
}

func TestGormLogger_Trace_Failure(t *testing.T) {
	gl, logs := newObservedGormLogger(gormlogger.Error)

	gl.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT * FROM purchase_orders", 0
	}, errors.New("connection reset"))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "query failed", entries[0].Message)
	assert.Equal(t, "SELECT * FROM purchase_orders", entries[0].ContextMap()["sql"])
}

func TestGormLogger_Trace_RecordNotFoundIgnored(t *testing.T) {
	gl, logs := newObservedGormLogger(gormlogger.Error)

	gl.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT * FROM companies WHERE id = $1", 0
	}, gormlogger.ErrRecordNotFound)

	assert.Zero(t, logs.Len())
}

func TestGormLogger_Trace_SlowQuery(t *testing.T) {
	gl, logs := newObservedGormLogger(gormlogger.Warn, WithSlowThreshold(time.Millisecond))

	gl.Trace(context.Background(), time.Now().Add(-time.Second), func() (string, int64) {
		return "SELECT * FROM po_allocations", 10
	}, nil)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.WarnLevel.String(), entries[0].Level.String())
}

func TestGormLogger_Trace_Silent(t *testing.T) {
	gl, logs := newObservedGormLogger(gormlogger.Silent)

	gl.Trace(context.Background(), time.Now(), func() (string, int64) {
		return "SELECT 1", 1
	}, nil)

	assert.Zero(t, logs.Len())
}

func TestGormLogger_Trace_CarriesRequestID(t *testing.T) {
	gl, logs := newObservedGormLogger(gormlogger.Info)
	ctx := context.WithValue(context.Background(), RequestIDKey, "req-9")

	gl.Trace(ctx, time.Now(), func() (string, int64) {
		return "SELECT 1", 1
	}, nil)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "req-9", entries[0].ContextMap()["request_id"])
}

func TestMapGormLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected gormlogger.LogLevel
	}{
		{"silent", gormlogger.Silent},
		{"error", gormlogger.Error},
		{"warn", gormlogger.Warn},
		{"info", gormlogger.Info},
		{"debug", gormlogger.Info},
		{"unknown", gormlogger.Warn},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, MapGormLogLevel(tt.input))
		})
	}
}

func TestGormLoggerImplementsInterface(t *testing.T) {
	var _ gormlogger.Interface = (*GormLogger)(nil)
}
