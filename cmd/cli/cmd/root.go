package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/swmm-toolbox/internal/service"
	"github.com/swmm-toolbox/pkg/config"
	apperrors "github.com/swmm-toolbox/pkg/errors"
	"github.com/swmm-toolbox/pkg/pprof"
	"github.com/swmm-toolbox/pkg/telemetry"
	"github.com/swmm-toolbox/pkg/utils"
)

var (
	// Global flags
	verbose      bool
	configPath   string
	profileDir   string
	profileTypes string

	logger            utils.Logger
	svc               *service.Service
	telemetryShutdown telemetry.ShutdownFunc
	profiling         *pprof.Session
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "swmmtoolbox",
	Short: "Read SWMM 5 binary output files",
	Long: `swmmtoolbox lists and extracts time series from the binary output
files written by the EPA Storm Water Management Model (SWMM 5).

Series are addressed by labels of the form TYPE,NAME,VARIABLE where TYPE is
one of subcatchment, node, link, pollutant or system (or its index 0-4),
NAME is an object name and VARIABLE is a variable name or index. Any part
may be left empty to match everything.

Inputs may be local paths, cos://bucket/key or storage://key locations, and
may be gzip or zstd compressed.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		logger, err = newLogger(cfg, cmd.ErrOrStderr())
		if err != nil {
			return err
		}

		shutdown, err := telemetry.Init(cmd.Context(), telemetry.WithServiceVersion(Version))
		if err != nil {
			logger.Warn("Failed to initialize telemetry: %v", err)
		}
		telemetryShutdown = shutdown

		if profileDir != "" {
			types, err := pprof.ParseProfileTypes(profileTypes)
			if err != nil {
				return err
			}
			if profiling, err = pprof.Start(profileDir, types); err != nil {
				return err
			}
			logger.Debug("Profiling %v into %s", types, profileDir)
		}

		svc = service.New(cfg, logger)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return shutdown(cmd.Context())
	},
}

// loadConfig reads --config, or searches the default locations.
func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}

func newLogger(cfg *config.Config, stderr io.Writer) (utils.Logger, error) {
	level := utils.ParseLogLevel(cfg.Log.Level)
	if verbose {
		level = utils.LevelDebug
	}
	if cfg.Log.OutputPath != "" {
		l, err := utils.NewFileLogger(level, cfg.Log.OutputPath)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeConfigError, "failed to open log file", err)
		}
		return l, nil
	}
	return utils.NewDefaultLogger(level, stderr), nil
}

func shutdown(ctx context.Context) error {
	var errs []error
	if svc != nil {
		errs = append(errs, svc.Close())
	}
	if telemetryShutdown != nil {
		errs = append(errs, telemetryShutdown(ctx))
		telemetryShutdown = nil
	}
	if profiling != nil {
		paths, err := profiling.Stop()
		errs = append(errs, err)
		for _, p := range paths {
			logger.Info("Wrote profile %s", p)
		}
		profiling = nil
	}
	return errors.Join(errs...)
}

// Execute runs the root command and returns the process exit code. Errors
// are printed as "[CODE] message".
func Execute() int {
	return run(context.Background(), os.Args[1:], os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// PersistentPostRunE is skipped when RunE fails
		shutdown(ctx)
		fmt.Fprintln(stderr, formatError(err))
		return 1
	}
	return 0
}

func formatError(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Error()
	}
	return fmt.Sprintf("[%s] %s", apperrors.CodeInvalidInput, err.Error())
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: ./config.yaml, ./configs/config.yaml or /etc/swmmtoolbox/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&profileDir, "profile-dir", "", "Write runtime profiles of this run to a directory")
	rootCmd.PersistentFlags().StringVar(&profileTypes, "profiles", "", "Comma-separated profile types: cpu, heap, goroutine, block, mutex, allocs (default: cpu,heap)")

	binName := BinName()
	rootCmd.Example = `  # List every series in a file
  ` + binName + ` catalog model.out

  # Extract one link flow and all system rainfall
  ` + binName + ` extract model.out link,C2,Flow_rate system,,Rainfall

  # Extract from object storage into a zstd compressed CSV
  ` + binName + ` extract cos://models-1250000000/runs/model.out node,,0 --compress zstd -o nodes.csv.zst`
}

// GetLogger returns the configured logger
func GetLogger() utils.Logger {
	return utils.OrNull(logger)
}

// BinName returns the base name of the current executable
func BinName() string {
	return filepath.Base(os.Args[0])
}
