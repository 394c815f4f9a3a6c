package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestGormLogger_LogMode(t *testing.T) {
	gl := NewGormLogger(zap.NewNop(), gormlogger.Info, 0)
	changed := gl.LogMode(gormlogger.Warn).(*GormLogger)

	assert.Equal(t, gormlogger.Info, gl.logLevel)
	assert.Equal(t, gormlogger.Warn, changed.logLevel)
}

func TestGormLogger_Trace(t *testing.T) {
	sql := func() (string, int64) { return "SELECT * FROM invoices", 1 }

	tests := []struct {
		name    string
		level   gormlogger.LogLevel
		begin   time.Time
		err     error
		wantMsg string
	}{
		{"error is logged", gormlogger.Warn, time.Now(), errors.New("deadlock detected"), "SQL Error"},
		{"record not found is ignored", gormlogger.Warn, time.Now(), gormlogger.ErrRecordNotFound, ""},
		{"slow query warns", gormlogger.Warn, time.Now().Add(-time.Second), nil, "Slow SQL"},
		{"fast query at warn is silent", gormlogger.Warn, time.Now(), nil, ""},
		{"info level logs every query", gormlogger.Info, time.Now(), nil, "SQL Query"},
		{"silent logs nothing", gormlogger.Silent, time.Now(), errors.New("x"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, recorded := observer.New(zapcore.DebugLevel)
			gl := NewGormLogger(zap.New(core), tt.level, 200*time.Millisecond)

			gl.Trace(WithRequestID(context.Background(), "req-7"), tt.begin, sql, tt.err)

			if tt.wantMsg == "" {
				assert.Equal(t, 0, recorded.Len())
				return
			}
			entries := recorded.FilterMessage(tt.wantMsg).All()
			if assert.Len(t, entries, 1) {
				assert.Equal(t, "req-7", entries[0].ContextMap()["request_id"])
			}
		})
	}
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("warn"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel(""))
}
