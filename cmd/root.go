package cmd

import (
	"fmt"
	"strings"

	"github.com/nagelea/keysentry/pkg/errors"
	"github.com/nagelea/keysentry/pkg/logg"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const (
	appName        = "keysentry"
	configFileName = "." + appName
	configFileExt  = "yaml"
)

var (
	rootCmd = &cobra.Command{
		Use:   appName,
		Short: "Discover, verify and track leaked AI and cloud API credentials in public code.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
			if err = initConfig(cmd); err != nil {
				return
			}
			return configureLogging()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cfg    config
	logger *logrus.Logger
	log    logg.Logg
)

func init() {
	logger, log = initLogging()
	initArgs()
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		errors.Fatal(log, errors.WithMessage(err, "command failed"))
	}
}

// A subset of command parameters that can overwrite configuration values
func initArgs() {
	flags := rootCmd.PersistentFlags()

	flags.String(
		"config",
		"",
		fmt.Sprintf("Config file location (default is $HOME/%s.%s)", configFileName, configFileExt))

	flags.String(
		"log-level",
		logrus.InfoLevel.String(),
		fmt.Sprintf("How detailed should the log be? Valid values: %s.", strings.Join(validLogLevels(), ", ")))

	flags.String(
		"output-dir",
		"./output",
		"Output directory for the database, logs and reports.")

	flags.Bool(
		"interactive",
		true,
		"If false, progress bars will not appear, only log messages.")

	flags.String(
		"github-token",
		"",
		"Code host API token.")
}

func validLogLevels() []string {
	var logLevels []string
	for _, l := range logrus.AllLevels {
		logLevels = append(logLevels, l.String())
	}
	return logLevels
}

func exitOnErr(err error, message string) {
	if err == nil {
		return
	}
	errors.Fatal(log, errors.WithMessage(err, message))
}
