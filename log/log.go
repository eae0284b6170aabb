// Package log writes vidlink's diagnostics to a dated file under the logs directory.
// Until Setup enables it, everything logged here is dropped.
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/vidlink-cli/vidlink/filesystem"
	"github.com/vidlink-cli/vidlink/key"
	"github.com/vidlink-cli/vidlink/where"
)

// Fields is a set of structured values attached to an entry, such as provider and video.
type Fields = logrus.Fields

var logger = discard()

func discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// Setup opens today's log file when logs.write is on and applies logs.level and logs.json.
func Setup() error {
	if !viper.GetBool(key.LogsWrite) {
		logger = discard()
		return nil
	}

	path := filepath.Join(where.Logs(), time.Now().Format("2006-01-02")+".log")
	f, err := filesystem.API().OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	l := logrus.New()
	l.SetOutput(f)

	if viper.GetBool(key.LogsJson) {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(viper.GetString(key.LogsLevel))
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	logger = l
	return nil
}

// Enabled reports whether entries reach a file.
func Enabled() bool {
	return logger.Out != io.Discard
}

// WithFields starts an entry carrying fields.
func WithFields(fields Fields) *logrus.Entry {
	return logger.WithFields(fields)
}

func Error(args ...any) {
	logger.Error(args...)
}

func Warnf(format string, args ...any) {
	logger.Warnf(format, args...)
}

func Infof(format string, args ...any) {
	logger.Infof(format, args...)
}

func Debugf(format string, args ...any) {
	logger.Debugf(format, args...)
}

func Tracef(format string, args ...any) {
	logger.Tracef(format, args...)
}
