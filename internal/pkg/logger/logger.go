package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

var (
	logger = logrus.New()
)

func init() {
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetReportCaller(false)
	logger.SetLevel(logrus.InfoLevel)
	logger.SetOutput(os.Stderr)
}

// Init sets output and level. level is one of debug, info, warn, error.
// verbosity raises the level one step per count, down to debug.
func Init(out io.Writer, level string, verbosity int) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	for i := 0; i < verbosity && lvl < logrus.DebugLevel; i++ {
		lvl++
	}
	if out != nil {
		logger.SetOutput(out)
	}
	logger.SetLevel(lvl)
	return nil
}

// IsDebug reports whether debug logs are emitted
func IsDebug() bool {
	return logger.IsLevelEnabled(logrus.DebugLevel)
}

// WithField wrapper logrus WithField
func WithField(key string, value interface{}) *logrus.Entry {
	return logger.WithField(key, value)
}

// WithFields wrapper logrus WithFields
func WithFields(fields logrus.Fields) *logrus.Entry {
	return logger.WithFields(fields)
}

// Debugf wrapper logrus log.Debugf
func Debugf(format string, args ...interface{}) {
	logger.Debugf(format, args...)
}

// Infof wrapper logrus log.Infof
func Infof(format string, args ...interface{}) {
	logger.Infof(format, args...)
}

// Warnf wrapper logrus log.Warnf
func Warnf(format string, args ...interface{}) {
	logger.Warnf(format, args...)
}

// Errorf wrapper logrus log.Errorf
func Errorf(err error, format string, args ...interface{}) {
	if err != nil {
		logger.WithError(err).Errorf(format, args...)
	} else {
		logger.Errorf(format, args...)
	}
}

// RestyLogger forwards resty client logs to debug level
type RestyLogger struct{}

// Errorf implements resty.Logger
func (RestyLogger) Errorf(format string, v ...interface{}) {
	logger.Debugf("resty: "+format, v...)
}

// Warnf implements resty.Logger
func (RestyLogger) Warnf(format string, v ...interface{}) {
	logger.Debugf("resty: "+format, v...)
}

// Debugf implements resty.Logger
func (RestyLogger) Debugf(format string, v ...interface{}) {
	logger.Debugf("resty: "+format, v...)
}
