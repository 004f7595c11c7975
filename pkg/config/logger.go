package config

import (
	"os"

	log "github.com/sirupsen/logrus"
)

// SetupLogger configures the global logrus logger from settings.
func SetupLogger(s Settings) {
	if s.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	log.SetOutput(os.Stdout)

	level, err := log.ParseLevel(s.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
}
