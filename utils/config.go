package utils

import (
	"io/ioutil"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

// EnvPrefix prefixes the environment variables read by LoadConfig, e.g.
// RASTER2JSON_LOG_LEVEL.
const EnvPrefix = "RASTER2JSON"

// Config keys, shared by the YAML file, the environment and flags.
const (
	KeyLogLevel           = "log_level"
	KeyLogFormat          = "log_format"
	KeyProgress           = "progress"
	KeyMetricsDir         = "metrics_dir"
	KeyMetricsMaxFileSize = "metrics_max_file_size"
	KeyMetricsMaxFiles    = "metrics_max_files"
)

// Config is the runtime configuration of raster-to-json. Values come from
// defaults, then the YAML file, then the environment, then flags.
type Config struct {
	LogLevel           string            `yaml:"log_level" mapstructure:"log_level"`
	LogFormat          string            `yaml:"log_format" mapstructure:"log_format"`
	Progress           string            `yaml:"progress" mapstructure:"progress"`
	MetricsDir         string            `yaml:"metrics_dir" mapstructure:"metrics_dir"`
	MetricsMaxFileSize int64             `yaml:"metrics_max_file_size" mapstructure:"metrics_max_file_size"`
	MetricsMaxFiles    int               `yaml:"metrics_max_files" mapstructure:"metrics_max_files"`
	GDAL               map[string]string `yaml:"gdal" mapstructure:"gdal"`
}

func DefaultConfig() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          LogFormatText,
		Progress:           "auto",
		MetricsMaxFileSize: 64 * 1024 * 1024,
		MetricsMaxFiles:    10,
		GDAL:               map[string]string{},
	}
}

// NewViper returns a viper instance reading RASTER2JSON_* variables.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	return v
}

// BindFlags binds the named flags of fs to their config keys.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet, flagToKey map[string]string) error {
	for flag, key := range flagToKey {
		f := fs.Lookup(flag)
		if f == nil {
			return errors.Errorf("flag --%s is not defined", flag)
		}
		if err := v.BindPFlag(key, f); err != nil {
			return errors.Wrapf(err, "binding --%s", flag)
		}
	}
	return nil
}

// LoadConfig builds the configuration. An empty path skips the file. The
// file is decoded strictly so misspelled keys are reported.
func LoadConfig(v *viper.Viper, path string) (*Config, error) {
	config := DefaultConfig()

	if len(path) > 0 {
		data, err := ioutil.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "reading config file")
		}
		if err := yaml.UnmarshalStrict(data, config); err != nil {
			return nil, errors.Wrapf(err, "parsing config file %s", path)
		}
		if config.GDAL == nil {
			config.GDAL = map[string]string{}
		}
	}

	if v != nil {
		overlayString(v, KeyLogLevel, &config.LogLevel)
		overlayString(v, KeyLogFormat, &config.LogFormat)
		overlayString(v, KeyProgress, &config.Progress)
		overlayString(v, KeyMetricsDir, &config.MetricsDir)
		if v.IsSet(KeyMetricsMaxFileSize) {
			config.MetricsMaxFileSize = v.GetInt64(KeyMetricsMaxFileSize)
		}
		if v.IsSet(KeyMetricsMaxFiles) {
			config.MetricsMaxFiles = v.GetInt(KeyMetricsMaxFiles)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func overlayString(v *viper.Viper, key string, dst *string) {
	if v.IsSet(key) {
		*dst = v.GetString(key)
	}
}

func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrapf(err, "invalid %s", KeyLogLevel)
	}

	switch c.LogFormat {
	case LogFormatText, LogFormatJSON:
	default:
		return errors.Errorf("invalid %s %q, expected %s or %s", KeyLogFormat, c.LogFormat, LogFormatText, LogFormatJSON)
	}

	switch c.Progress {
	case "auto", "bar", "percent", "none":
	default:
		return errors.Errorf("invalid %s %q, expected auto, bar, percent or none", KeyProgress, c.Progress)
	}

	if c.MetricsMaxFiles < 1 {
		return errors.Errorf("invalid %s %d, must be at least 1", KeyMetricsMaxFiles, c.MetricsMaxFiles)
	}
	return nil
}
