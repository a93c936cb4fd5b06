package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the process-wide logger. It discards everything until Init is called.
var Log = zap.NewNop()

func Init() {
	InitWithDebug(false)
}

// InitWithDebug builds a console logger; debug enables debug-level output and caller info.
func InitWithDebug(debug bool) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	l, err := cfg.Build()
	if err != nil {
		// Fall back to the example logger so startup never fails on logging
		Log = zap.NewExample()
		Log.Warn("Could not build logger, using example logger", zap.Error(err))
		return
	}
	Log = l
}

func Sync() {
	_ = Log.Sync()
}
