package log

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/dixieflatline76/Paperize/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation limits of the log file.
const (
	maxSizeMB  = 10
	maxBackups = 2
	maxAgeDays = 28
)

// FilePath returns the file release builds log to.
func FilePath() string {
	return filepath.Join(xdg.StateHome, strings.ToLower(config.AppName), config.LogFile)
}

// newFileWriter creates the directory of path and returns a writer that
// rotates the file once it grows past maxSizeMB.
func newFileWriter(path string) (*lumberjack.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   true,
	}, nil
}
