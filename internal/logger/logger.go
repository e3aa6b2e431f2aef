// Package logger configures the process-wide logrus logger.
package logger

import (
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Init configures the global logrus logger from LOG_LEVEL and LOG_FORMAT.
// It is safe to call multiple times; later calls overwrite previous settings.
func Init() {
	Configure(os.Stdout, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
}

// Configure sets output, level and format explicitly. Unknown levels fall
// back to info; format "json" selects the JSON formatter.
func Configure(out io.Writer, level, format string) {
	log.SetOutput(out)
	if strings.EqualFold(format, "json") {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	if level == "" {
		level = "info"
	}
	if lvl, err := log.ParseLevel(level); err == nil {
		log.SetLevel(lvl)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}

// L returns the global logger for convenience.
func L() *log.Logger { return log.StandardLogger() }

// Component returns an entry tagged with the component name.
func Component(name string) *log.Entry {
	return log.StandardLogger().WithField("component", name)
}
