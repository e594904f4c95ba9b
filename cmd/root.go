// =============================================================================
// txtmerge - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. All other commands
// are attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (txtmerge)
//   ├── mergeCmd      (txtmerge merge)
//   ├── monthsCmd     (txtmerge months)
//   ├── duplicatesCmd (txtmerge duplicates)
//   └── versionCmd    (txtmerge version)
//
// The root command loads the configuration and builds the logger before any
// subcommand runs.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ginjaninja78/txtmerge/internal/config"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// appConfig is the loaded configuration, set by PersistentPreRunE.
var appConfig *config.Config

// logger is the application logger, set by PersistentPreRunE.
var logger = zap.NewNop()

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "txtmerge",
	Short: "Merge periodic text exports into one file, checking months and duplicates",
	Long: `txtmerge merges delimited text exports (such as monthly transaction logs)
into a single target file.

Before merging it reports which calendar months the target already contains,
and after concatenating it flags records that look like duplicates. Records
are lines starting with the "15" marker and carrying a quoted YYYYMMDD date.

Files that are not valid UTF-8 are read as ISO-8859-1. The merged file is
always written as UTF-8.

Example Usage:
  txtmerge months bank.txt
  txtmerge merge --target bank.txt jan.txt feb.txt
  txtmerge merge --target bank.txt --mode join --from 2024-01-01 --to 2024-03-31 q1.txt
  txtmerge duplicates bank.txt`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		appConfig = cfg

		l, err := buildLogger(cfg.LogLevel, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},

	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		config.DefaultPath,
		"Path to the configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// buildLogger creates a production zap logger at the configured level.
func buildLogger(level string, debug bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	if debug {
		lvl = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}
