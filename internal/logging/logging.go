package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the structured logger handed to every component.
type Logger struct {
	*zap.SugaredLogger
}

// console logger, debug level when verbose
func NewLogger(verbose bool) *Logger {
	return &Logger{zap.New(consoleCore(verbose)).Sugar()}
}

// NewLoggerWithFile tees console output into a JSON log file. The file is
// appended to and its parent directory created when missing.
func NewLoggerWithFile(verbose bool, path string) (*Logger, error) {
	if path == "" {
		return NewLogger(verbose), nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.AddSync(file),
		zapcore.DebugLevel,
	)

	core := zapcore.NewTee(consoleCore(verbose), fileCore)
	return &Logger{zap.New(core).Sugar()}, nil
}

// wraps an arbitrary core, mostly for tests using zaptest/observer
func New(core zapcore.Core) *Logger {
	return &Logger{zap.New(core).Sugar()}
}

func NewNop() *Logger {
	return &Logger{zap.NewNop().Sugar()}
}

// Named returns a child logger scoped to a component.
func (l *Logger) Named(name string) *Logger {
	return &Logger{l.SugaredLogger.Named(name)}
}

func consoleCore(verbose bool) zapcore.Core {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	if !verbose {
		encCfg.CallerKey = ""
	}

	return zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		level,
	)
}
