// Package logger holds the process-wide zap logger used by the command line
// tools. Until Init is called Log discards everything, so library code that
// receives it prints nothing.
package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Log = zap.NewNop()

// Init replaces Log with a logger writing to stderr at level ("debug",
// "info", "warn", "error") in format ("console" or "json"). Empty values
// mean info and console.
func Init(level, format string) error {
	lvl := zapcore.InfoLevel
	if s := strings.TrimSpace(level); s != "" {
		var err error
		if lvl, err = zapcore.ParseLevel(strings.ToLower(s)); err != nil {
			return fmt.Errorf("log level: %w", err)
		}
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "console", "text":
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	case "json":
		enc = zapcore.NewJSONEncoder(encCfg)
	default:
		return fmt.Errorf("unknown log format %q", format)
	}

	Log = zap.New(zapcore.NewCore(enc, zapcore.Lock(os.Stderr), lvl))
	return nil
}

// Sync flushes buffered entries
func Sync() {
	// stderr returns EINVAL on sync for some terminals
	_ = Log.Sync()
}
