package main

import (
	"io"
	"os"

	"github.com/nci/raster2json/metrics"
	"github.com/nci/raster2json/processor"
	"github.com/nci/raster2json/raster/gdal"
	"github.com/nci/raster2json/utils"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var errUsage = errors.New("Need one input file as a positional argument.")

var flagKeys = map[string]string{
	"log-level":   utils.KeyLogLevel,
	"log-format":  utils.KeyLogFormat,
	"progress":    utils.KeyProgress,
	"metrics-dir": utils.KeyMetricsDir,
}

type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	open     processor.OpenFunc
	initGDAL func(options map[string]string)

	// set once the configuration is loaded
	log *logrus.Logger
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		stdin:    stdin,
		stdout:   stdout,
		stderr:   stderr,
		open:     gdal.OpenDataset,
		initGDAL: gdal.Init,
	}
}

func newRootCmd(a *app) (*cobra.Command, error) {
	var configPath string
	v := utils.NewViper()

	cmd := &cobra.Command{
		Use:   "raster-to-json <raster> [ignored]",
		Short: "Convert a single band Byte raster to a JSON document",
		Long: `raster-to-json reads a JSON object of metadata from stdin, merges in the
size, projection and affine transform of the raster, and writes the
metadata together with the pixels as column-major arrays to stdout.
Paths ending in .gz are read through GDAL's gzip virtual file system.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 || len(args) > 2 {
				return errUsage
			}
			return nil
		},
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.convert(v, configPath, args[0])
		},
	}
	cmd.SetIn(a.stdin)
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)

	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", "", "YAML configuration file, default "+utils.DefaultConfigName+" on $"+utils.ConfigSearchPathEnv)
	flags.String("log-level", "", "log level: trace, debug, info, warn or error")
	flags.String("log-format", "", "log format: text or json")
	flags.String("progress", "", "progress report: auto, bar, percent or none")
	flags.String("metrics-dir", "", "directory receiving per-run metrics as JSON lines")

	if err := utils.BindFlags(v, flags, flagKeys); err != nil {
		return nil, err
	}
	return cmd, nil
}

func (a *app) convert(v *viper.Viper, configPath, path string) error {
	if len(configPath) == 0 {
		configPath = utils.FindConfig(os.Getenv(utils.ConfigSearchPathEnv))
	}

	config, err := utils.LoadConfig(v, configPath)
	if err != nil {
		return err
	}

	log, err := utils.NewLogger(a.stderr, config.LogLevel, config.LogFormat)
	if err != nil {
		return err
	}
	a.log = log

	a.initGDAL(config.GDAL)

	progress, err := processor.NewProgress(config.Progress, a.stderr, utils.IsTerminal(a.stderr), log)
	if err != nil {
		return err
	}

	loggers := metrics.MultiLogger{metrics.NewDiagLogger(log)}
	if len(config.MetricsDir) > 0 {
		loggers = append(loggers, metrics.NewFileLogger(config.MetricsDir, config.MetricsMaxFileSize, config.MetricsMaxFiles, log))
	}

	dp := processor.InitJSONPipeline(a.stdin, a.stdout, a.open, progress, log, metrics.NewCollector(loggers))
	return dp.Process(path)
}

// run executes the command line and returns the process exit code.
func run(a *app, args []string) int {
	cmd, err := newRootCmd(a)
	if err != nil {
		a.fallbackLog().Error(err)
		return 1
	}
	cmd.SetArgs(args)

	err = cmd.Execute()
	if err == nil {
		return 0
	}

	if errors.Is(err, errUsage) {
		io.WriteString(a.stderr, err.Error()+"\n")
		io.WriteString(a.stderr, cmd.UsageString())
		return 1
	}
	a.fallbackLog().Error(err)
	return 1
}

// fallbackLog is used for errors raised before the configured logger exists.
func (a *app) fallbackLog() *logrus.Logger {
	if a.log != nil {
		return a.log
	}
	log := logrus.New()
	log.SetOutput(a.stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableColors: !utils.IsTerminal(a.stderr), DisableQuote: true})
	return log
}

func main() {
	os.Exit(run(newApp(os.Stdin, os.Stdout, os.Stderr), os.Args[1:]))
}
