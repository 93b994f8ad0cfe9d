// httpbatch runs large batches of GIS requests through the batch executor.
//
// Usage:
//
//	httpbatch [--config FILE] [--log-level LEVEL] [--pretty] <command> [args]
//
// Commands:
//
//	geocode   Geocode addresses read line by line from a file or stdin
//	route     Compute routes between every pair of locations in a CSV file
package main

import (
	"fmt"
	"os"

	"github.com/Sternrassler/httpbatch/pkg/config"
	"github.com/Sternrassler/httpbatch/pkg/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// version is set via ldflags at build time.
var version = "dev"

// app carries the state shared by all subcommands.
type app struct {
	configPath string
	logLevel   string
	pretty     bool

	cfg    *config.Config
	logger zerolog.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "httpbatch",
		Short:         "Run batches of HTTP requests against GIS APIs",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default: httpbatch.toml in . or ./config)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error, disabled)")
	rootCmd.PersistentFlags().BoolVar(&a.pretty, "pretty", false, "Human-readable log output")

	rootCmd.AddCommand(
		newGeocodeCmd(a),
		newRouteCmd(a),
	)

	return rootCmd
}

// init loads the configuration and sets up logging. Flags win over config values.
func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if flags.Changed("pretty") {
		cfg.Log.Pretty = a.pretty
	}

	logCfg := cfg.LoggingConfig()
	logCfg.Output = cmd.ErrOrStderr()
	logging.Setup(logCfg)

	a.cfg = cfg
	a.logger = logging.NewLogger("cli")
	return nil
}
