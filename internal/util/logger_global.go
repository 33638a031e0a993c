package util

import (
	"context"
	"sync"
)

var (
	globalLogger LoggerInterface = nopLogger{}
	loggerMu     sync.RWMutex
)

// InitLogger installs the process-wide logger. Calling it again replaces and
// closes the previous one.
func InitLogger(opts LoggerOptions) error {
	logger, err := NewLogger(opts)
	if err != nil {
		return err
	}
	SetLogger(logger)
	return nil
}

// SetLogger swaps the global logger; tests use it to capture output.
func SetLogger(logger LoggerInterface) {
	loggerMu.Lock()
	previous := globalLogger
	if logger == nil {
		logger = nopLogger{}
	}
	globalLogger = logger
	loggerMu.Unlock()

	if previous != nil {
		_ = previous.Close()
	}
}

// Log returns the global logger.
func Log() LoggerInterface {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return globalLogger
}

func LogInfo(msg string, fields ...Field) {
	Log().Info(msg, fields...)
}

func LogInfof(format string, args ...interface{}) {
	Log().Infof(format, args...)
}

func LogDebug(msg string, fields ...Field) {
	Log().Debug(msg, fields...)
}

func LogDebugf(format string, args ...interface{}) {
	Log().Debugf(format, args...)
}

func LogWarn(msg string, fields ...Field) {
	Log().Warn(msg, fields...)
}

func LogWarnf(format string, args ...interface{}) {
	Log().Warnf(format, args...)
}

func LogError(msg string, fields ...Field) {
	Log().Error(msg, fields...)
}

func LogErrorf(format string, args ...interface{}) {
	Log().Errorf(format, args...)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...Field) {}
func (nopLogger) Debugf(string, ...interface{}) {}
func (nopLogger) Info(string, ...Field) {}
func (nopLogger) Infof(string, ...interface{}) {}
func (nopLogger) Warn(string, ...Field) {}
func (nopLogger) Warnf(string, ...interface{}) {}
func (nopLogger) Error(string, ...Field) {}
func (nopLogger) Errorf(string, ...interface{}) {}
func (n nopLogger) With(...Field) LoggerInterface { return n }
func (n nopLogger) WithContext(context.Context) LoggerInterface { return n }
func (nopLogger) SetLevel(LogLevel) {}
func (nopLogger) AddOutput(Output) {}
func (nopLogger) Close() error { return nil }
