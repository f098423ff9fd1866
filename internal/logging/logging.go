// Package logging builds the session logger: console output plus the
// launcher log file kept under the game root.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const logFileName = "turkuazz_logs.txt"

// NewSessionLogger returns a logger that tees to stderr and to the launcher
// log file under gameRoot. The file is appended across sessions.
func NewSessionLogger(gameRoot string, debug bool) (*zap.Logger, func(), error) {
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}

	consoleEncoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	cores := []zapcore.Core{
		zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stderr), level),
	}

	cleanup := func() {}
	if gameRoot != "" {
		if err := os.MkdirAll(gameRoot, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create game root for log file: %w", err)
		}

		logPath := filepath.Join(gameRoot, logFileName)
		file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open launcher log file: %w", err)
		}

		fileEncoderConfig := zap.NewProductionEncoderConfig()
		fileEncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(fileEncoderConfig),
			zapcore.AddSync(file),
			level,
		))
		cleanup = func() { _ = file.Close() }
	}

	logger := zap.New(zapcore.NewTee(cores...))
	return logger, cleanup, nil
}
