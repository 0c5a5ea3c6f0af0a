// Package logging configures logrus for the engine and its front-ends.
package logging

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Setup sets the output, level and formatter of the standard logrus logger.
// Unknown levels fall back to info.
func Setup(out io.Writer, level string, json bool) {
	if out != nil {
		logrus.SetOutput(out)
	}
	if json {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logrus.SetLevel(parsed)
}

// For returns a logger tagged with the component name.
func For(component string) *logrus.Entry {
	return logrus.WithField("component", component)
}
