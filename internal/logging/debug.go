package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	baseLogger *zap.Logger
	sugar      *zap.SugaredLogger
)

func init() {
	baseLogger = zap.NewNop()
	sugar = baseLogger.Sugar()
}

// InitDebug sends debug logging to the file at path. Until it is called all
// debug output is discarded.
func InitDebug(path string, runID string) error {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build(zap.AddCaller(), zap.AddCallerSkip(1))
	if err != nil {
		return fmt.Errorf("build debug logger: %w", err)
	}

	baseLogger = logger.With(zap.String("run_id", runID))
	sugar = baseLogger.Sugar()
	return nil
}

// Logger returns the debug logger for components that take one explicitly.
func Logger() *zap.SugaredLogger {
	return sugar.WithOptions(zap.AddCallerSkip(-1))
}

func Sync() {
	if baseLogger != nil {
		_ = baseLogger.Sync()
	}
}

func Debugf(format string, args ...interface{}) {
	sugar.Debugf(format, args...)
}

func Infof(format string, args ...interface{}) {
	sugar.Infof(format, args...)
}

func Warnf(format string, args ...interface{}) {
	sugar.Warnf(format, args...)
}

func Errorf(format string, args ...interface{}) {
	sugar.Errorf(format, args...)
}
