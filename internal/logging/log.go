// Package logging provides the shared logrus logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// LevelEnv selects the log level: debug, info, warn or error.
const LevelEnv = "PRODCHECK_LOG_LEVEL"

// FormatEnv switches to JSON output when set to "json".
const FormatEnv = "PRODCHECK_LOG_FORMAT"

// Entry is a logger scoped with fields.
type Entry = logrus.Entry

var log = logrus.New()

func init() {
	log.Out = os.Stderr
	configure()
}

func configure() {
	if strings.EqualFold(os.Getenv(FormatEnv), "json") {
		log.Formatter = &logrus.JSONFormatter{}
	} else {
		log.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	}

	switch strings.ToLower(os.Getenv(LevelEnv)) {
	case "error":
		log.Level = logrus.ErrorLevel
	case "info":
		log.Level = logrus.InfoLevel
	case "debug":
		log.Level = logrus.DebugLevel
	default:
		log.Level = logrus.WarnLevel
	}
}

func Get() *logrus.Logger {
	return log
}

// For returns an entry tagged with the subsystem prefix.
func For(prefix string) *Entry {
	return log.WithField("prefix", prefix)
}

// SetVerbose raises the level to debug.
func SetVerbose(v bool) {
	if v {
		log.SetLevel(logrus.DebugLevel)
	}
}

// SetOutput redirects log output, mainly for tests.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}
