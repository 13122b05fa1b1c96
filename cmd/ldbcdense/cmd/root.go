package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/athapong/ldbc-dense/pkg/config"
	"github.com/athapong/ldbc-dense/pkg/graph/metrics"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configFile  string
	envFile     string
	inputDir    string
	outputDir   string
	logLevel    string
	metricsFile string

	cfg    *config.Config
	logger *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "ldbcdense",
	Short: "Convert LDBC SNB CSV exports into dense graph files",
	Long: `ldbcdense converts the LDBC Social Network Benchmark CSV export into a
dense, numerically addressable graph.

transform   densify static/ and dynamic/ into vertex/ and edges/
synthesize  concatenate the dense files into plain vertex and edge lists
stream      merge the update stream into vertex and edge event logs
verify      check referential integrity of the plain lists
load        write the plain lists into Neo4j`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		return initConfig(cmd)
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil || cfg.MetricsFile == "" {
			return nil
		}
		if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
		logger.WithField("file", cfg.MetricsFile).Info("Metrics written")
		return nil
	},
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "path to a YAML config file")
	flags.StringVar(&envFile, "env", ".env", "path to environment file")
	flags.StringVarP(&inputDir, "input_path", "i", "", "input directory")
	flags.StringVarP(&outputDir, "output_path", "o", "", "output directory")
	flags.StringVar(&logLevel, "log-level", "", "logging level (debug, info, warn, error)")
	flags.StringVar(&metricsFile, "metrics-file", "", "write prometheus metrics to this file on exit")
}

func initConfig(cmd *cobra.Command) error {
	if err := config.LoadEnvFile(envFile); err != nil {
		return err
	}
	loaded, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if err := loaded.ApplyEnv(); err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("input_path") {
		loaded.InputDir = inputDir
	}
	if flags.Changed("output_path") {
		loaded.OutputDir = outputDir
	}
	if flags.Changed("log-level") {
		loaded.LogLevel = logLevel
	}
	if flags.Changed("metrics-file") {
		loaded.MetricsFile = metricsFile
	}

	l, err := newLogger(loaded.LogLevel)
	if err != nil {
		return err
	}
	cfg, logger = loaded, l
	return nil
}

func newLogger(level string) (*logrus.Logger, error) {
	l := logrus.New()
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	l.SetLevel(parsed)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	return l, nil
}
