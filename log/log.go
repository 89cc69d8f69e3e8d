// Package log provides loggers for pipeline components.
package log

import (
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
)

// DebugEnv enables debug level logging when set to a true value.
const DebugEnv = "SOF_DEBUG"

// New returns a new logger instance.
func New() *logrus.Logger {
	l := logrus.New()
	if debug, err := strconv.ParseBool(os.Getenv(DebugEnv)); err == nil && debug {
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}

// Component returns an entry tagged with the component kind and instance id.
func Component(kind, id string) *logrus.Entry {
	return New().WithFields(logrus.Fields{
		"comp": kind,
		"id":   id,
	})
}
