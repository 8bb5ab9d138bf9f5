package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls how the process logger is built.
type Options struct {
	Level string
	// File, when set, receives a copy of every log line through a rotating writer.
	File  string
	Debug bool
}

// New builds the process logger. Debug mode uses the text formatter and at
// least debug level; production uses JSON.
func New(opts Options) (*logrus.Logger, io.Closer, error) {
	logger := logrus.New()

	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("error parsing log level: %w", err)
	}
	if opts.Debug && level < logrus.DebugLevel {
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)

	if opts.Debug {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	if opts.File == "" {
		return logger, nopCloser{}, nil
	}

	fileWriter := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    100, // MB
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}
	logger.SetOutput(io.MultiWriter(os.Stderr, fileWriter))

	return logger, fileWriter, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
