package log

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Fields is a set of structured key/value pairs attached to a log line
type Fields = logrus.Fields

var logger = NewLogger(os.Stderr)

// NewLogger creates a logger writing to out at warn level
func NewLogger(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(logrus.WarnLevel)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return l
}

// SetDebug switches the package logger between debug and warn level
func SetDebug(debug bool) {
	if debug {
		logger.SetLevel(logrus.DebugLevel)
		return
	}
	logger.SetLevel(logrus.WarnLevel)
}

// IsDebug reports whether debug output is enabled
func IsDebug() bool {
	return logger.IsLevelEnabled(logrus.DebugLevel)
}

// SetOutput redirects the package logger
func SetOutput(out io.Writer) {
	logger.SetOutput(out)
}

// WithFields returns an entry carrying fields for a single log call
func WithFields(fields Fields) *logrus.Entry {
	return logger.WithFields(fields)
}

// F builds a one-field set, handy for WithFields(F("file", name))
func F(key string, value interface{}) Fields {
	return Fields{key: value}
}

func Info(args ...interface{}) {
	logger.Info(args...)
}

func Infof(format string, args ...interface{}) {
	logger.Infof(format, args...)
}

// Debug logs a message at debug level
func Debug(args ...interface{}) {
	logger.Debug(args...)
}

// Debugf logs a formatted message at debug level
func Debugf(format string, args ...interface{}) {
	logger.Debugf(format, args...)
}

// Warn logs a warning message
func Warn(args ...interface{}) {
	logger.Warn(args...)
}

// Warnf logs a formatted warning message
func Warnf(format string, args ...interface{}) {
	logger.Warnf(format, args...)
}

// Error logs an error message
func Error(args ...interface{}) {
	logger.Error(args...)
}

// Errorf logs a formatted error message
func Errorf(format string, args ...interface{}) {
	logger.Errorf(format, args...)
}
