// =============================================================================
// EDI Codec - Migrate Command
// =============================================================================
//
// This file defines the 'migrate' command, which converts a legacy flat-file
// export (CSV or fixed width) into X12 or EDIFACT through the mapping files
// and validates the result like any other input.
//
// COMMAND USAGE:
//   edi-codec migrate --layout layouts/shipments.yaml --file export.csv --to X12
//
// FLAGS:
//   --layout   : Record layout file (required)
//   --file     : Legacy file to migrate (required)
//   --to       : Target dialect, e.g. X12 or EDIFACT:D96A (default X12)
//   --dry-run  : Print the result without writing outputs
//
// OUTPUTS:
//   {original}_migrated.edi and the report, in the output directory
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/edi-codec/internal/converter"
	"github.com/ginjaninja78/edi-codec/internal/csvparser"
	"github.com/ginjaninja78/edi-codec/internal/edi"
	"github.com/ginjaninja78/edi-codec/internal/processor"
	"github.com/ginjaninja78/edi-codec/internal/xmlwriter"
	"github.com/ginjaninja78/edi-codec/pkg/utils"
)

var (
	layoutPath    string
	legacyFile    string
	migrateTarget string
	migrateDryRun bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Convert a legacy CSV or fixed width export into X12 or EDIFACT",
	Long: `The migrate command reads a legacy flat file with the given record layout,
maps its rows through the LEGACY mapping files into the target dialect and
runs the generated document through validation and acknowledgment.

Rows whose record type has no mapping rule are reported as translation gaps.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrate(cmd)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)

	flags := migrateCmd.Flags()
	flags.StringVar(&layoutPath, "layout", "", "Record layout file (YAML)")
	flags.StringVar(&legacyFile, "file", "", "Legacy file to migrate")
	flags.StringVar(&migrateTarget, "to", "X12", "Target dialect (X12[:version] or EDIFACT[:version])")
	flags.BoolVar(&migrateDryRun, "dry-run", false, "Migrate without writing outputs")
	migrateCmd.MarkFlagRequired("layout")
	migrateCmd.MarkFlagRequired("file")
}

func runMigrate(cmd *cobra.Command) error {
	if err := loadConfig(); err != nil {
		return err
	}
	target, err := edi.ParseDialectVersion(migrateTarget)
	if err != nil {
		return fmt.Errorf("invalid --to: %w", err)
	}
	if target.IsZero() {
		return fmt.Errorf("--to needs a target dialect")
	}
	opts, err := mainConfig.Options(nil)
	if err != nil {
		return err
	}
	format, err := xmlwriter.ParseFormat(mainConfig.ReportFormat)
	if err != nil {
		return err
	}

	fs := afero.NewOsFs()
	layout, err := csvparser.LoadLayout(fs, layoutPath)
	if err != nil {
		return err
	}
	rules, _, err := processor.LoadMappings(fs, mainConfig.MappingDir)
	if err != nil {
		return fmt.Errorf("failed to load mappings: %w", err)
	}

	files := utils.NewFileManager(fs, mainConfig.InputDir, mainConfig.OutputDir, mainConfig.ArchiveDir)
	in, err := files.Open(legacyFile)
	if err != nil {
		return err
	}
	defer in.Close()

	proc := processor.New(processor.Config{
		Rules:          rules,
		MaxSegmentSize: mainConfig.MaxSegmentSize,
		Logger:         logger,
	})
	m, err := proc.Migrate(cmd.Context(), in, layout, target, opts)
	if err != nil {
		return err
	}
	res := m.Result

	fmt.Printf("Records:          %d\n", m.Records)
	fmt.Printf("Transactions:     %d (%s)\n", res.Stats.Transactions, res.Info.Dialect)
	fmt.Printf("Unmapped records: %d\n", res.Stats.TranslationGaps)
	fmt.Printf("Errors:           %d\n", res.Stats.Errors)
	if migrateDryRun {
		return nil
	}

	if err := files.EnsureDirectories(); err != nil {
		return err
	}
	write := func(kind, ext string, data []byte) error {
		name := files.GenerateOutputFileName(mainConfig.OutputNameFormat, map[string]string{
			"original": utils.OriginalName(legacyFile),
			"kind":     kind,
			"uuid":     res.RunID,
		}, ext)
		path, err := files.WriteOutput(name, data)
		if err == nil {
			fmt.Printf("Wrote %s\n", path)
		}
		return err
	}
	if err := write(converter.KindMigrated, "edi", m.Translation.Text); err != nil {
		return err
	}
	if res.Acknowledgment != nil {
		if err := write(converter.KindAck, "ack", res.Acknowledgment.Text); err != nil {
			return err
		}
	}
	report, err := xmlwriter.Generate(xmlwriter.NewReport(legacyFile, res), format)
	if err != nil {
		return err
	}
	return write(converter.KindReport, format.Extension(), report)
}
