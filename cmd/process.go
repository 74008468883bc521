// =============================================================================
// EDI Codec - Process Command
// =============================================================================
//
// This file defines the 'process' command, which is the main command for
// handling EDI files. It wires the configuration into the batch converter.
//
// COMMAND USAGE:
//   edi-codec process [flags]
//
// FLAGS:
//   --dry-run       : Process without writing outputs or archiving inputs
//   --file          : Process only this file instead of scanning the input dir
//   --partner       : Use this partner profile for every file
//   --translate-to  : Translation target, e.g. EDIFACT:D96A or none
//   --profile       : Industry profile (ocean, air, rail, trucking or auto)
//   --auto-correct  : Apply schema-licensed corrections
//   --strictness    : strict or lenient
//   --no-ack        : Do not generate acknowledgments
//
// PROCESSING PIPELINE:
//   1. Load configuration, partner profiles and mapping files
//   2. Discover input files (or take --file)
//   3. Process all files on the worker pool
//   4. Write outputs, archive accepted inputs, write logs
//   5. Print the summary
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/edi-codec/internal/config"
	"github.com/ginjaninja78/edi-codec/internal/converter"
	"github.com/ginjaninja78/edi-codec/internal/edi"
	"github.com/ginjaninja78/edi-codec/internal/processor"
	"github.com/ginjaninja78/edi-codec/internal/validation"
	"github.com/ginjaninja78/edi-codec/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	dryRun      bool
	filePath    string
	partnerCode string
	translateTo string
	profile     string
	autoCorrect bool
	strictness  string
	noAck       bool
)

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Process EDI files from the input directory",
	Long: `The process command scans the input directory for EDI files (.edi, .x12,
.edifact, .txt, and XML or JSON wrapped payloads), matches them to a trading
partner profile and runs each one through detection, parsing, validation,
optional correction, translation and acknowledgment.

Processing is done concurrently. Each file is processed independently, and
errors in one file do not affect the processing of others.

For every processed file:
  - The acknowledgment is written as {original}_ack.ack (by default)
  - The translation, if requested, is written as {original}_translated.translated
  - A report (XML or JSON) lists every issue, correction and summary

Inputs whose transactions are all acceptable are moved to the archive.
Rejected and unreadable inputs stay in place and are listed in the error log.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd)
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	flags := processCmd.Flags()
	flags.BoolVar(&dryRun, "dry-run", false, "Process without writing outputs or archiving inputs")
	flags.StringVar(&filePath, "file", "", "Path to a specific file to process")
	flags.StringVar(&partnerCode, "partner", "", "Partner profile code to use for every file")
	flags.StringVar(&translateTo, "translate-to", "", "Translation target (X12[:version], EDIFACT[:version] or none)")
	flags.StringVar(&profile, "profile", "", "Industry profile (ocean, air, rail, trucking or auto)")
	flags.BoolVar(&autoCorrect, "auto-correct", false, "Apply schema-licensed corrections")
	flags.StringVar(&strictness, "strictness", "", "Validation strictness: strict or lenient")
	flags.BoolVar(&noAck, "no-ack", false, "Do not generate acknowledgments")
	flags.Int("concurrency", 0, "Number of files processed at once (0 = one per CPU)")

	v.BindPFlag("concurrency", flags.Lookup("concurrency"))
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runProcess(cmd *cobra.Command) error {
	// =========================================================================
	// STEP 1: LOAD CONFIGURATION
	// =========================================================================

	if err := loadConfig(); err != nil {
		return err
	}
	override, err := flagOverrides(cmd)
	if err != nil {
		return err
	}

	fs := afero.NewOsFs()
	partners, err := config.LoadPartnerConfigs(fs, mainConfig.PartnersDir)
	if err != nil {
		return fmt.Errorf("failed to load partner profiles: %w", err)
	}
	rules, mappings, err := processor.LoadMappings(fs, mainConfig.MappingDir)
	if err != nil {
		return fmt.Errorf("failed to load mappings: %w", err)
	}
	logger.WithFields(logrus.Fields{
		"partners": len(partners),
		"mappings": mappings,
	}).Info("configuration loaded")

	// =========================================================================
	// STEP 2: DISCOVER INPUT FILES
	// =========================================================================

	files := utils.NewFileManager(fs, mainConfig.InputDir, mainConfig.OutputDir, mainConfig.ArchiveDir)
	if !dryRun {
		if err := files.EnsureDirectories(); err != nil {
			return err
		}
	}

	var inputs []utils.InputFile
	if filePath != "" {
		in, err := files.Stat(filePath)
		if err != nil {
			return err
		}
		inputs = []utils.InputFile{in}
	} else {
		inputs, err = files.DiscoverInputFiles()
		if err != nil {
			return fmt.Errorf("failed to discover input files: %w", err)
		}
	}
	if len(inputs) == 0 {
		fmt.Println("No EDI files found in the input directory.")
		return nil
	}
	fmt.Printf("Found %d file(s) to process\n", len(inputs))

	// =========================================================================
	// STEP 3: PROCESS FILES
	// =========================================================================

	proc := processor.New(processor.Config{
		Rules:           rules,
		StreamThreshold: mainConfig.StreamThresholdBytes,
		MaxSegmentSize:  mainConfig.MaxSegmentSize,
		Encoding:        mainConfig.Encoding,
		Logger:          logger,
	})
	conv, err := converter.New(converter.Config{
		Main:      mainConfig,
		Partners:  partners,
		Files:     files,
		Processor: proc,
		Partner:   partnerCode,
		Override:  override,
		DryRun:    dryRun,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	batch, err := conv.Run(cmd.Context(), inputs)
	if err != nil {
		return err
	}

	// =========================================================================
	// STEP 4: PRINT SUMMARY
	// =========================================================================

	for _, r := range batch.Results {
		name := filepath.Base(r.FilePath)
		switch {
		case r.Processing == nil:
			fmt.Printf("  ✗ %s: %v\n", name, r.Error)
		case r.Success:
			fmt.Printf("  ✓ %s (%s, %d transaction(s))\n", name, r.Processing.Info.Dialect, r.Stats.Transactions)
		default:
			fmt.Printf("  ✗ %s: %d error(s)\n", name, r.Stats.Errors)
		}
	}

	s := batch.Summary
	fmt.Println("\n=== Processing Complete ===")
	fmt.Printf("Total files:     %d\n", s.TotalFiles)
	fmt.Printf("Accepted:        %d\n", s.AcceptedFiles)
	fmt.Printf("Rejected:        %d\n", s.RejectedFiles)
	fmt.Printf("Failed:          %d\n", s.FailedFiles)
	fmt.Printf("Time elapsed:    %s\n", s.EndTime.Sub(s.StartTime))
	if batch.ErrorLog != "" {
		fmt.Printf("\nErrors have been logged to %s\n", batch.ErrorLog)
	}
	return nil
}

// flagOverrides builds the option override from the flags the user set.
func flagOverrides(cmd *cobra.Command) (func(*processor.Options), error) {
	flags := cmd.Flags()

	var target edi.DialectVersion
	if flags.Changed("translate-to") {
		var err error
		if target, err = edi.ParseDialectVersion(translateTo); err != nil {
			return nil, fmt.Errorf("invalid --translate-to: %w", err)
		}
	}
	var level validation.Strictness
	if flags.Changed("strictness") {
		var err error
		if level, err = validation.ParseStrictness(strictness); err != nil {
			return nil, err
		}
	}

	return func(o *processor.Options) {
		if flags.Changed("translate-to") {
			o.TranslateTo = target
		}
		if flags.Changed("strictness") {
			o.Strictness = level
		}
		if flags.Changed("profile") {
			o.IndustryProfile = profile
		}
		if flags.Changed("auto-correct") {
			o.AutoCorrect = autoCorrect
		}
		if noAck {
			o.GenerateAcknowledgment = false
		}
	}, nil
}
