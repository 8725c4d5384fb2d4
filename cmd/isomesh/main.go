// Command isomesh meshes implicit surfaces from the command line or over HTTP.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/soypat/implicit"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	verbose    bool
	configPath string
	workers    int
	cellSize   float64

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "isomesh",
	Short: "Mesh the zero level set of implicit surfaces",
	Long: `isomesh converts a scalar field f(x,y,z) into a polygon mesh of the surface f = 0
using marching cubes or dual contouring.

Fields are given as arithmetic formulas in x, y and z such as "x^2 + y^2 + z^2 - 25"
or chosen from a set of built in shapes.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	pf.StringVar(&configPath, "config", "", "YAML file with extraction settings")
	pf.IntVar(&workers, "workers", 0, "goroutines per extraction (0 uses all CPUs)")
	pf.Float64Var(&cellSize, "cell-size", 0, "grid cell edge length (overrides config)")
	rootCmd.AddCommand(meshCmd, serveCmd, convergeCmd)
}

// loadConfig returns the extraction settings from --config, or the defaults,
// with command line overrides applied.
func loadConfig(cmd *cobra.Command) (implicit.Config, error) {
	cfg := implicit.DefaultConfig()
	if configPath != "" {
		fp, err := os.Open(configPath)
		if err != nil {
			return cfg, err
		}
		defer fp.Close()
		cfg, err = implicit.ReadConfig(fp)
		if err != nil {
			return cfg, fmt.Errorf("reading %s: %w", configPath, err)
		}
	}
	flags := cmd.Flags()
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("cell-size") {
		cfg.CellSize = cellSize
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	logger.Debug("extraction settings", zap.Any("config", cfg))
	return cfg, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
