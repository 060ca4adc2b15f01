package logger

import (
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	instance *zap.Logger
	once     sync.Once
)

// Init initializes the logger for env ("production" or "development") at the given level.
// Only the first call has any effect.
func Init(env, level string) {
	once.Do(func() {
		var config zap.Config

		switch env {
		case "production", "prod":
			config = zap.NewProductionConfig()
		default:
			config = zap.NewDevelopmentConfig()
			config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}

		var lvl zapcore.Level
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			lvl = zapcore.InfoLevel
		}
		config.Level = zap.NewAtomicLevelAt(lvl)
		config.OutputPaths = []string{"stdout"}
		config.ErrorOutputPaths = []string{"stderr"}

		var err error
		instance, err = config.Build()
		if err != nil {
			panic(err)
		}
	})
}

// UseLogger installs l as the process logger; tests use it with zap.NewNop or zaptest.
func UseLogger(l *zap.Logger) {
	once.Do(func() {})
	instance = l
}

// GetLogger returns the logger instance
func GetLogger() *zap.Logger {
	if instance == nil {
		Init("development", "info")
	}
	return instance
}

func Debug(msg string, fields ...zap.Field) {
	GetLogger().Debug(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	GetLogger().Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	GetLogger().Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	GetLogger().Error(msg, fields...)
}

// Fatal logs a fatal message and exits
func Fatal(msg string, fields ...zap.Field) {
	GetLogger().Fatal(msg, fields...)
}

// Sync flushes any buffered log entries
func Sync() {
	if instance != nil {
		_ = instance.Sync()
	}
}

func String(key, value string) zap.Field {
	return zap.String(key, value)
}

func Int(key string, value int) zap.Field {
	return zap.Int(key, value)
}

func Int64(key string, value int64) zap.Field {
	return zap.Int64(key, value)
}

func Bool(key string, value bool) zap.Field {
	return zap.Bool(key, value)
}

func Duration(key string, value time.Duration) zap.Field {
	return zap.Duration(key, value)
}

func ErrorField(err error) zap.Field {
	return zap.Error(err)
}
