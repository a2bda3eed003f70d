package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var sugar = zap.NewNop().Sugar()

// Init builds the process-wide logger. Call once at startup; before Init
// (and in tests that never call it) logging is a no-op.
func Init(verbose bool) error {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}

	zapLog, err := cfg.Build()
	if err != nil {
		return err
	}

	sugar = zapLog.Sugar()
	return nil
}

// L returns the shared SugaredLogger.
func L() *zap.SugaredLogger {
	return sugar
}

// Sync flushes buffered entries. Call at program exit.
func Sync() {
	_ = sugar.Sync()
}
