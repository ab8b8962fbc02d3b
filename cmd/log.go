package cmd

import (
	"path/filepath"

	"github.com/nagelea/keysentry/pkg/errors"
	"github.com/nagelea/keysentry/pkg/logg"
	"github.com/nagelea/keysentry/pkg/logwriter"

	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

var logWriter *logwriter.LogWriter

// Initialize logger (pre-config)
func initLogging() (logger *logrus.Logger, log logg.Logg) {
	logger = logrus.New()
	logger.SetFormatter(&prefixed.TextFormatter{ForceFormatting: true})
	log = logg.NewLogrusLogg(logger)
	return
}

// Initialize logger (post-config). Output tees to a log file in the output
// directory so progress bars can park stdout without losing log lines.
func configureLogging() (err error) {
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		err = errors.Wrapv(err, "invalid value for log-level", cfg.LogLevel)
		return
	}
	logger.SetLevel(logLevel)

	logWriter = logwriter.New(filepath.Join(cfg.OutputDir, appName+".log"))
	logger.SetOutput(logWriter)

	return
}
