package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

var log = logrus.New()

// Init configures the process-wide logger. Level and format come from
// config (LOG_LEVEL, LOG_FORMAT); unknown values fall back to info/text.
func Init(level, format string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
		log.Warnf("invalid log level %q, using info", level)
	}
	log.SetLevel(lvl)

	switch format {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	log.SetOutput(os.Stdout)
}

// L returns the underlying logrus instance for callers that need
// structured fields.
func L() *logrus.Logger { return log }

func WithField(key string, value any) *logrus.Entry { return log.WithField(key, value) }

func WithFields(fields logrus.Fields) *logrus.Entry { return log.WithFields(fields) }

func Debugf(format string, args ...any) { log.Debugf(format, args...) }

func Info(args ...any) { log.Info(args...) }

func Infof(format string, args ...any) { log.Infof(format, args...) }

func Warnf(format string, args ...any) { log.Warnf(format, args...) }

func Errorf(format string, args ...any) { log.Errorf(format, args...) }

func Fatalf(format string, args ...any) { log.Fatalf(format, args...) }
