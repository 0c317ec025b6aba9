package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("nonsense"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel(""))
}

func TestNewZapLogger(t *testing.T) {
	l := NewZapLogger(&ZapLoggerConfig{
		Encoding:          "console",
		Level:             "debug",
		DisableStacktrace: true,
	})
	assert.NotNil(t, l)

	child := l.With(zap.String("component", "test"))
	assert.NotNil(t, child)
	child.Info("hello")
}
