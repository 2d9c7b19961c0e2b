package utils

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

var (
	InfoLogger  = newLogger(os.Stdout, logrus.InfoLevel)
	ErrorLogger = newLogger(os.Stderr, logrus.WarnLevel)
)

func newLogger(out io.Writer, level logrus.Level) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	l.SetLevel(level)
	return l
}

// InitLogger configures both loggers. level is a logrus level name (unknown
// names fall back to info) and applies to InfoLogger; ErrorLogger always
// stays at warn level. When logFile is set, both loggers also append to it.
func InitLogger(level, logFile string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}

	var infoOut, errOut io.Writer = os.Stdout, os.Stderr
	if logFile != "" {
		f, ferr := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if ferr != nil {
			return ferr
		}
		infoOut = io.MultiWriter(os.Stdout, f)
		errOut = io.MultiWriter(os.Stderr, f)
	}

	InfoLogger = newLogger(infoOut, lvl)
	ErrorLogger = newLogger(errOut, logrus.WarnLevel)
	return nil
}
