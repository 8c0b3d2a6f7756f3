// Package obslog provides the process-wide structured logger.
//
// Grounded on the dotted event-name logging idiom of the original Python
// source (logger.info("workflow.started", execution_id=...)), implemented
// with go.uber.org/zap's SugaredLogger the way r3e-network-service_layer
// and theRebelliousNerd-codenerd wire zap through their packages.
package obslog

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	once    sync.Once
	sugared *zap.SugaredLogger
)

// Init builds the global logger from LOG_LEVEL (debug|info|warn|error, default info).
// Safe to call multiple times; only the first call takes effect.
func Init(level string) {
	once.Do(func() {
		sugared = build(level)
	})
}

func build(level string) *zap.SugaredLogger {
	lvl := zapcore.InfoLevel
	switch strings.ToLower(level) {
	case "debug":
		lvl = zapcore.DebugLevel
	case "warn", "warning":
		lvl = zapcore.WarnLevel
	case "error":
		lvl = zapcore.ErrorLevel
	}

	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(cfg),
		zapcore.Lock(os.Stdout),
		lvl,
	)
	return zap.New(core).Sugar()
}

// L returns the process logger, lazily initialized at info level if Init was
// never called explicitly.
func L() *zap.SugaredLogger {
	Init("")
	return sugared
}

// Event logs a dotted event name with key/value pairs, mirroring the
// original source's logger.info("stage.event", k=v, ...) calls.
func Event(level zapcore.Level, name string, kv ...interface{}) {
	l := L()
	switch level {
	case zapcore.DebugLevel:
		l.Debugw(name, kv...)
	case zapcore.WarnLevel:
		l.Warnw(name, kv...)
	case zapcore.ErrorLevel:
		l.Errorw(name, kv...)
	default:
		l.Infow(name, kv...)
	}
}

func Info(name string, kv ...interface{})  { Event(zapcore.InfoLevel, name, kv...) }
func Warn(name string, kv ...interface{})  { Event(zapcore.WarnLevel, name, kv...) }
func Error(name string, kv ...interface{}) { Event(zapcore.ErrorLevel, name, kv...) }
func Debug(name string, kv ...interface{}) { Event(zapcore.DebugLevel, name, kv...) }
