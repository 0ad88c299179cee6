package zap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ambiyansyah-risyal/fetchgate"
)

func TestLevelsAndFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := ZapLogger{L: zap.New(core)}

	l.Debug("cache hit", fetchgate.Fields{"cacheKey": "/users/1"})
	l.Info("info", nil)
	l.Warn("request failed", fetchgate.Fields{"statusCode": 500})
	l.Error("boom", fetchgate.Fields{})

	entries := logs.AllUntimed()
	require.Len(t, entries, 4)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "/users/1", entries[0].ContextMap()["cacheKey"])
	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	assert.Empty(t, entries[1].Context)
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.EqualValues(t, 500, entries[2].ContextMap()["statusCode"])
	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
}

func TestZfEmpty(t *testing.T) {
	assert.Nil(t, zf(nil))
	assert.Nil(t, zf(fetchgate.Fields{}))
}
