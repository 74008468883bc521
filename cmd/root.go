// =============================================================================
// EDI Codec - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands (like 'process', 'validate') are
// attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (edi-codec)
//   ├── processCmd (edi-codec process)
//   ├── validateCmd (edi-codec validate)
//   └── versionCmd (edi-codec version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (e.g., --config, --verbose)
//   2. Loading the configuration through viper (file, EDI_* env, flags)
//   3. Setting up logging
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ginjaninja78/edi-codec/internal/config"
	"github.com/ginjaninja78/edi-codec/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file. When empty,
// config.yaml is looked up in the working directory.
var cfgFile string

// verbose forces debug logging.
var verbose bool

// v collects the configuration sources; flags are bound to it in init.
var v = viper.New()

// Loaded by loadConfig for the running command.
var (
	mainConfig *config.MainConfig
	logger     *logrus.Logger
	logCloser  io.Closer
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "edi-codec",
	Short: "EDI Codec - Validate, correct, translate and acknowledge X12 and EDIFACT documents",
	Long: `EDI Codec processes X12 and UN/EDIFACT interchanges for logistics status
messaging. Every document is detected, parsed, validated and optionally
auto-corrected, translated to the other dialect and acknowledged (997 or
CONTRL).

Key Features:
  - Dialect and delimiter detection, including XML and JSON wrapped payloads
  - Envelope, structure, element and industry profile validation
  - Schema-licensed auto-correction
  - X12 <-> EDIFACT translation with YAML or XLSX mapping files
  - Concurrent processing with streaming for large files
  - Trading-partner profiles matched by file name

Example Usage:
  edi-codec process                         # Process all files in the input directory
  edi-codec process --file in/acme_0001.edi # Process a single file
  edi-codec process --translate-to EDIFACT  # Translate every accepted document
  edi-codec validate                        # Validate configuration without processing`,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},

	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			logCloser.Close()
		}
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
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
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Path to the main configuration file (default is ./config.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output for debugging")

	flags.String("input-dir", "", "Directory scanned for input files")
	flags.String("output-dir", "", "Directory receiving acknowledgments, translations and reports")
	flags.String("mapping-dir", "", "Directory of YAML/XLSX mapping files")
	flags.String("partners-dir", "", "Directory of trading-partner profiles")
	flags.String("log-format", "", "Log format: text or json")

	v.BindPFlag("input_dir", flags.Lookup("input-dir"))
	v.BindPFlag("output_dir", flags.Lookup("output-dir"))
	v.BindPFlag("mapping_dir", flags.Lookup("mapping-dir"))
	v.BindPFlag("partners_dir", flags.Lookup("partners-dir"))
	v.BindPFlag("logging.format", flags.Lookup("log-format"))
}

// loadConfig loads the main configuration and creates the logger. Commands
// that need configuration call it first.
func loadConfig() error {
	cfg, err := config.LoadMainConfig(v, cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load main config: %w", err)
	}
	if verbose {
		cfg.Logging.Level = logging.LevelDebug
	}

	logger, logCloser, err = logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	mainConfig = cfg
	if used := v.ConfigFileUsed(); used != "" {
		logger.WithField("config", used).Debug("configuration loaded")
	}
	return nil
}
