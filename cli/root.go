// Package cli defines the vina-pipeline command tree: prepare structures,
// compute search volumes, dispatch the docking batch, and summarize the
// results into the metrics table.
package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
)

// logger is initialized by the root command's PersistentPreRunE and shared
// by all subcommands.
var logger = zap.NewNop()

type rootOptions struct {
	configPath string
	logLevel   string
	logJSON    bool
}

// Execute runs the command tree under ctx. Cancelling ctx (e.g. on
// SIGINT) cancels in-flight engine invocations.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

// NewRootCommand builds the root command with global flags and all
// subcommands attached.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "vina-pipeline",
		Short: "Batch ligand-receptor docking with AutoDock Vina",
		Long: "vina-pipeline prepares structures, computes per-receptor docking\n" +
			"boxes, fans the receptor×ligand matrix out against AutoDock Vina,\n" +
			"and aggregates the results into a ranked ligand-efficiency table.",
		Version:       fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(opts.configPath); err != nil {
				return err
			}
			return initLogger(opts)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "",
		"config file path (default: ./vina-pipeline.yaml)")
	pf.StringVar(&opts.logLevel, "log-level", "info",
		"log level (debug, info, warn, error)")
	pf.BoolVar(&opts.logJSON, "log-json", false,
		"emit JSON logs instead of console output")

	cmd.AddCommand(
		newPrepareCmd(),
		newBoxCmd(),
		newRunCmd(),
		newMetricsCmd(),
	)
	return cmd
}

// initConfig loads defaults from the viper config file when one exists.
// All settings have working defaults, so a missing file is not an error
// unless it was named explicitly.
func initConfig(path string) error {
	viper.SetDefault("vina.binary", "vina")
	viper.SetDefault("obabel.binary", "obabel")
	viper.SetDefault("descriptors.binary", "ligand-descriptors")
	viper.SetDefault("box.buffer", 10.0)
	viper.SetDefault("box.exhaustiveness", 8)
	viper.SetDefault("box.num_modes", 9)
	viper.SetDefault("run.workers", 0)
	viper.SetDefault("run.timeout", "0s")

	if path != "" {
		viper.SetConfigFile(path)
		return viper.ReadInConfig()
	}
	viper.SetConfigName("vina-pipeline")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
	}
	return nil
}

func initLogger(opts *rootOptions) error {
	level, err := zapcore.ParseLevel(strings.ToLower(opts.logLevel))
	if err != nil {
		return fmt.Errorf("bad log level '%s': %w", opts.logLevel, err)
	}

	cfg := zap.NewDevelopmentConfig()
	if opts.logJSON {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	logger, err = cfg.Build()
	return err
}

// mustBind wires a command flag to its viper key so file values act as
// defaults and flags override them. Binding only fails on a programming
// error (unknown flag name), hence the panic.
func mustBind(key string, fl *pflag.FlagSet, name string) {
	if err := viper.BindPFlag(key, fl.Lookup(name)); err != nil {
		panic(err)
	}
}
