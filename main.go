// =============================================================================
// EDI Codec - Main Entry Point
// =============================================================================
//
// This is the main entry point for the EDI Codec CLI application. It
// initializes the Cobra CLI framework and delegates command execution to the
// cmd package.
//
// USAGE:
//   edi-codec process       - Process all EDI files in the input directory
//   edi-codec validate      - Validate configuration files without processing
//   edi-codec migrate       - Convert a legacy CSV or fixed width export
//   edi-codec version       - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Detection, parsing, validation, correction,
//                      translation, acknowledgment and the batch runner
//   - pkg/           : Shared utilities
//   - mappings/      : YAML/XLSX translation rule files
//   - partners/      : Trading-partner profiles
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/edi-codec/cmd"
)

func main() {
	cmd.Execute()
}
