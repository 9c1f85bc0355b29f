package main

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/nyxaria/kmfetch/internal/config"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// setupLogging wires logrus's output per §6's persisted-layout note
// (`<logs_dir>/YYYY-MM-DD.log`, size-based rotation at 10 MiB x 5). When
// LogDir is unset, logs go to stderr only — the teacher's own default.
func setupLogging(cfg *config.Config) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if cfg.LogDir == "" {
		logrus.SetOutput(os.Stderr)
		return
	}

	logFile := filepath.Join(cfg.LogDir, time.Now().Format("2006-01-02")+".log")
	rotator := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    10, // MiB
		MaxBackups: 5,
		Compress:   false,
	}
	logrus.SetOutput(io.MultiWriter(os.Stderr, rotator))
}
