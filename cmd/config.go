package cmd

import (
	"os"
	"path/filepath"
	"time"

	"github.com/nagelea/keysentry/pkg/catalog"
	"github.com/nagelea/keysentry/pkg/errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/mitchellh/go-homedir"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type (

	// Root config
	config struct {

		// Output and workflow
		LogLevel    string `mapstructure:"log-level"`
		OutputDir   string `mapstructure:"output-dir"`
		Interactive bool   `mapstructure:"interactive"`

		// Code host
		GithubToken string `mapstructure:"github-token"`
		MaxFileSize int    `mapstructure:"max-file-size"`

		// Scan config
		Mode            string        `mapstructure:"mode"`
		MaxPages        int           `mapstructure:"max-pages"`
		SearchInterval  time.Duration `mapstructure:"search-interval"`
		FetchInterval   time.Duration `mapstructure:"fetch-interval"`
		CoolDownPenalty time.Duration `mapstructure:"cool-down-penalty"`

		// Verify config
		Verify verifyConfig `mapstructure:"verify"`
	}

	verifyConfig struct {
		Limit         int           `mapstructure:"limit"`
		WorkerCount   int           `mapstructure:"worker-count"`
		ProbeInterval time.Duration `mapstructure:"probe-interval"`
	}
)

func (c config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.LogLevel, validation.Required, validation.In(logLevelValues()...)),
		validation.Field(&c.OutputDir, validation.Required),
		validation.Field(&c.Mode, validation.In("full", "strict")),
		validation.Field(&c.MaxPages, validation.Min(1)),
		validation.Field(&c.Verify),
	)
}

func (c verifyConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Limit, validation.Min(0)),
		validation.Field(&c.WorkerCount, validation.Min(1)),
	)
}

func logLevelValues() (result []interface{}) {
	for _, l := range validLogLevels() {
		result = append(result, l)
	}
	return
}

// Build the cfg variable from the config file and bound flags
func initConfig(cmd *cobra.Command) (err error) {
	vpr := viper.New()

	var cfgFile string
	cfgFile, err = cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		err = errors.Wrap(err, "unable to get \"config\" command parameter value")
		return
	}
	if cfgFile == "" {
		cfgFile, err = defaultConfigFile()
		if err != nil {
			return
		}
	}
	if cfgFile != "" {
		vpr.SetConfigFile(cfgFile)
		vpr.SetConfigType(configFileExt)
	}

	// Bind cobra and viper together
	var flags []*pflag.Flag
	collect := func(f *pflag.Flag) {
		if f.Name != "config" {
			flags = append(flags, f)
		}
	}
	cmd.Root().PersistentFlags().VisitAll(collect)
	cmd.LocalFlags().VisitAll(collect)
	for _, f := range flags {
		if err = vpr.BindPFlag(f.Name, f); err != nil {
			err = errors.Wrapv(err, "unable to bind flag", f.Name)
			return
		}
	}

	if cfgFile != "" {
		if err = vpr.ReadInConfig(); err != nil {
			err = errors.Wrapv(err, "unable to read config file", cfgFile)
			return
		}
	}

	// Unmarshal config into object, flagging config keys nothing consumes
	var md mapstructure.Metadata
	opts := []viper.DecoderConfigOption{
		viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToSliceHookFunc(","),
			mapstructure.StringToTimeDurationHookFunc(),
		)),
		func(dc *mapstructure.DecoderConfig) { dc.Metadata = &md },
	}
	if err = vpr.Unmarshal(&cfg, opts...); err != nil {
		err = errors.Wrap(err, "unable to unmarshal config")
		return
	}
	for _, key := range md.Unused {
		log.WithField("key", key).Warn("unknown config key ignored")
	}

	if err = cfg.Validate(); err != nil {
		err = errors.WithMessage(err, "invalid configuration")
		return
	}

	if err = os.MkdirAll(cfg.OutputDir, 0700); err != nil {
		err = errors.Wrapv(err, "unable to create output directory", cfg.OutputDir)
		return
	}

	return
}

// defaultConfigFile returns $HOME/.keysentry.yaml when it exists, otherwise
// empty so runs work on flags alone
func defaultConfigFile() (result string, err error) {
	hd, err := homedir.Dir()
	if err != nil {
		err = errors.Wrap(err, "unable to find home directory")
		return
	}

	candidate := filepath.Join(hd, configFileName+"."+configFileExt)
	if _, statErr := os.Stat(candidate); statErr != nil {
		return
	}
	result = candidate
	return
}

func scanMode() catalog.ScanMode {
	return catalog.NewScanModeFromValue(cfg.Mode)
}

func dbPath() string {
	return filepath.Join(cfg.OutputDir, appName+".db")
}
