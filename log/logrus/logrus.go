// Package logrus adapts a logrus entry to fetchgate.Logger.
package logrus

import (
	"github.com/sirupsen/logrus"

	"github.com/ambiyansyah-risyal/fetchgate"
)

var _ fetchgate.Logger = LogrusLogger{}

type LogrusLogger struct{ E *logrus.Entry }

// New wraps l with no preset fields.
func New(l *logrus.Logger) LogrusLogger { return LogrusLogger{E: logrus.NewEntry(l)} }

func (l LogrusLogger) Debug(msg string, f fetchgate.Fields) {
	l.E.WithFields(logrus.Fields(f)).Debug(msg)
}
func (l LogrusLogger) Info(msg string, f fetchgate.Fields) { l.E.WithFields(logrus.Fields(f)).Info(msg) }
func (l LogrusLogger) Warn(msg string, f fetchgate.Fields) { l.E.WithFields(logrus.Fields(f)).Warn(msg) }
func (l LogrusLogger) Error(msg string, f fetchgate.Fields) {
	l.E.WithFields(logrus.Fields(f)).Error(msg)
}
