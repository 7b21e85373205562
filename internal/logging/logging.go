package logging

import (
	"io"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const RFC3339Milli = "2006-01-02T15:04:05.000Z07:00"

var validFormats = map[string]bool{
	"text": true,
	"json": true,
}

type Config struct {
	// Log level, e.g. info, debug
	Level string
	// Either text or json
	Format string
}

func DefaultConfig() Config {
	return Config{Level: "info", Format: "text"}
}

func (c Config) Validate() error {
	if _, err := parseLevel(c.Level); err != nil {
		return err
	}
	if !validFormats[strings.ToLower(c.Format)] {
		formats := make([]string, 0, len(validFormats))
		for f := range validFormats {
			formats = append(formats, f)
		}
		sort.Strings(formats)
		return errors.Errorf("unknown log format: %s.  Valid formats are %v", c.Format, formats)
	}
	return nil
}

// Configure applies c to the standard logrus logger. Logs always go to stderr
// so that query output on stdout stays machine readable.
func Configure(c Config) error {
	return ConfigureOutput(c, os.Stderr)
}

func ConfigureOutput(c Config, out io.Writer) error {
	if err := c.Validate(); err != nil {
		return err
	}
	level, _ := parseLevel(c.Level)
	log.SetLevel(level)
	log.SetOutput(out)
	if strings.ToLower(c.Format) == "json" {
		log.SetFormatter(&log.JSONFormatter{TimestampFormat: RFC3339Milli})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true, TimestampFormat: RFC3339Milli})
	}
	return nil
}

func parseLevel(level string) (log.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return log.DebugLevel, nil
	case "info":
		return log.InfoLevel, nil
	case "warn", "warning":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	default:
		return log.InfoLevel, errors.Errorf("unknown level: %s", level)
	}
}
