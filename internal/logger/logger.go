package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/signagekit/tv-player/internal/config"
)

// New builds the daemon logger: rotated file output plus optional console,
// text formatted with full timestamps. The instance is passed into every
// component; there is no package-level logger.
func New(cfg config.LogConfig) *logrus.Logger {
	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})

	var writers []io.Writer
	if cfg.File != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			Compress:   true,
		})
	}
	if cfg.Console || len(writers) == 0 {
		writers = append(writers, os.Stdout)
	}
	log.SetOutput(io.MultiWriter(writers...))

	return log
}
