package main

import (
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
)

// initLogger configures the standard logrus logger. Diagnostics never go to
// stdout, which only carries conversion results.
func initLogger(out io.Writer, level string, json bool) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}

	log.SetOutput(out)
	log.SetLevel(lvl)
	if json {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}
