package pathkit

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

var loggerPtr atomic.Pointer[logrus.Logger]

func init() {
	loggerPtr.Store(logrus.StandardLogger())
}

// Logger returns the logger used by collaborator operations.
func Logger() *logrus.Logger {
	return loggerPtr.Load()
}

// SetLogger replaces the logger used by collaborator operations. A nil
// logger restores the logrus standard logger.
func SetLogger(l *logrus.Logger) {
	if l == nil {
		l = logrus.StandardLogger()
	}
	loggerPtr.Store(l)
}

func logEntry() *logrus.Entry {
	return logrus.NewEntry(loggerPtr.Load())
}
