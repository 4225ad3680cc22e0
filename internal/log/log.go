package log

import (
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

var logger atomic.Pointer[log.Logger]

func init() {
	logger.Store(newLogger(os.Stdout, "literature", log.InfoLevel))
}

func newLogger(w io.Writer, prefix string, level log.Level) *log.Logger {
	l := log.New(w)
	l.SetPrefix(prefix)
	l.SetReportTimestamp(true)
	l.SetTimeFormat(time.DateTime)
	l.SetLevel(level)
	return l
}

// Init replaces the default logger. Safe to skip: packages log at info to
// stdout until it is called.
func Init(appName string, logLevel string) {
	l := newLogger(os.Stdout, appName, ParseLevel(logLevel))
	l.SetReportCaller(true)
	logger.Store(l)
}

// SetOutput redirects logging, mostly for tests.
func SetOutput(w io.Writer) {
	cur := logger.Load()
	logger.Store(newLogger(w, cur.GetPrefix(), cur.GetLevel()))
}

func ParseLevel(s string) log.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

func Fatal(format string, args ...any) {
	l := logger.Load()
	l.Helper()
	l.Fatalf(format, args...)
}

func Info(format string, args ...any) {
	l := logger.Load()
	l.Helper()
	l.Infof(format, args...)
}

func Warn(format string, args ...any) {
	l := logger.Load()
	l.Helper()
	l.Warnf(format, args...)
}

func Error(format string, args ...any) {
	l := logger.Load()
	l.Helper()
	l.Errorf(format, args...)
}

func Debug(format string, args ...any) {
	l := logger.Load()
	l.Helper()
	l.Debugf(format, args...)
}
