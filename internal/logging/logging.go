// Package logging builds the process logger.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New creates a logger writing to stderr at the given level. Debug forces DebugLevel.
func New(level string, debug bool) (*logrus.Logger, error) {
	return NewWithOutput(os.Stderr, level, debug)
}

func NewWithOutput(out io.Writer, level string, debug bool) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(out)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if debug {
		log.SetLevel(logrus.DebugLevel)
		return log, nil
	}
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	log.SetLevel(lvl)
	return log, nil
}
