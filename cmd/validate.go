// =============================================================================
// EDI Codec - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which checks the configuration,
// the partner profiles and the mapping files without processing anything.
//
// COMMAND USAGE:
//   edi-codec validate
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/edi-codec/internal/config"
	"github.com/ginjaninja78/edi-codec/internal/processor"
	"github.com/ginjaninja78/edi-codec/internal/xmlwriter"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration, partner profiles and mapping files",
	Long: `The validate command loads the main configuration, every partner profile
and every mapping file, reporting the first problem found. Nothing is
processed and no directory is created.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate()
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate() error {
	if err := loadConfig(); err != nil {
		return err
	}
	fmt.Println("Main configuration:   OK")

	if _, err := mainConfig.Options(nil); err != nil {
		return fmt.Errorf("invalid defaults: %w", err)
	}
	if _, err := xmlwriter.ParseFormat(mainConfig.ReportFormat); err != nil {
		return err
	}

	fs := afero.NewOsFs()
	partners, err := config.LoadPartnerConfigs(fs, mainConfig.PartnersDir)
	if err != nil {
		return fmt.Errorf("failed to load partner profiles: %w", err)
	}
	for _, p := range partners {
		if _, err := mainConfig.Options(p); err != nil {
			return fmt.Errorf("partner %s: %w", p.Code, err)
		}
	}
	fmt.Printf("Partner profiles:     %d OK\n", len(partners))

	rules, mappings, err := processor.LoadMappings(fs, mainConfig.MappingDir)
	if err != nil {
		return fmt.Errorf("failed to load mappings: %w", err)
	}
	fmt.Printf("Mapping files:        %d OK (%d rules in total)\n", mappings, rules.Len())
	return nil
}
