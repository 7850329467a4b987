package logging

import (
	"io" // Writer composition
	"os" // Stdout

	"github.com/sirupsen/logrus"       // Structured logging
	"gopkg.in/natefinch/lumberjack.v2" // Log file rotation
)

// Options controls how the application logger is built
type Options struct {
	Level  string // debug, info, warn, error
	File   string // rotated log file, empty for stdout only
	IsProd bool   // JSON output in production, text otherwise
}

// New builds the application logger. Output always goes to stdout and, when
// opts.File is set, to a size-rotated file as well.
func New(opts Options) *logrus.Logger {
	log := logrus.New()

	if opts.IsProd {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	log.SetOutput(Writer(opts.File))
	return log
}

// Writer returns stdout, teed into a rotated file when path is set
func Writer(path string) io.Writer {
	if path == "" {
		return os.Stdout
	}
	return io.MultiWriter(os.Stdout, &lumberjack.Logger{
		Filename:   path,
		MaxSize:    100, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	})
}
