// =============================================================================
// EDI Codec - XLSX Mapping Workbook Parser
// =============================================================================
//
// This module reads translation mapping rules from XLSX workbooks, so that
// mapping analysts can maintain dialect cross-walks in a spreadsheet.
//
// WORKBOOK STRUCTURE:
//   Each sheet named "<SOURCE>-<TARGET>" (e.g. "X12-EDIFACT") holds the rules
//   for one direction. A sheet named "Transactions" holds the transaction
//   cross-reference. Sheets starting with "_" are skipped.
//
// RULE SHEET COLUMNS (Expected):
//
//   | Column A | Column B    | Column C | Column D    | Column E | Column F              | Column G |
//   |----------|-------------|----------|-------------|----------|-----------------------|----------|
//   | Source   | Source Path | Target   | Target Path | Constant | Transforms            | Merge    |
//   | N1       | 1           | NAD      | 1           |          | lookup:SH=CZ,DA=DP    |          |
//   | N1       | 2           | NAD      | 4.1         |          | trim; uppercase       |          |
//   | N3       | 1           | NAD      | 5.1         |          |                       | yes      |
//   | DTM      |             | DTM      | 1.3         | 102      |                       |          |
//
//   Consecutive rows with the same source and target segment form one rule.
//
// TRANSACTIONS SHEET COLUMNS:
//
//   | Source Dialect | Source Id | Target Dialect | Target Id |
//   | X12            | 214       | EDIFACT        | IFTSTA    |
//
// TRANSFORMS:
//   Separated by ";". Each is "type" or "type:value". Lookup tables are
//   written "lookup:K=V,K=V" and "lookup_with_default:DEFAULT|K=V,K=V";
//   replacements are written "replace:FIND=>VALUE".
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/edi-codec/internal/edi"
	"github.com/ginjaninja78/edi-codec/internal/translate"
)

// TransactionsSheet is the name of the cross-reference sheet.
const TransactionsSheet = "Transactions"

// =============================================================================
// COLUMN CONFIGURATION
// =============================================================================

// Columns defines which columns of a rule sheet contain which data.
// Column indices are 0-based (A=0, B=1, C=2, etc.)
type Columns struct {
	SourceSegment int
	SourcePath    int
	TargetSegment int
	TargetPath    int
	Constant      int
	Transforms    int
	Merge         int

	// HeaderRow is the row holding column headers (0-based).
	HeaderRow int

	// DataStartRow is the first data row (0-based).
	DataStartRow int
}

// DefaultColumns returns the default column configuration.
func DefaultColumns() Columns {
	return Columns{
		SourceSegment: 0, // Column A
		SourcePath:    1, // Column B
		TargetSegment: 2, // Column C
		TargetPath:    3, // Column D
		Constant:      4, // Column E
		Transforms:    5, // Column F
		Merge:         6, // Column G
		HeaderRow:     0, // Row 1
		DataStartRow:  1, // Row 2
	}
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a mapping workbook from disk.
//
// PARAMETERS:
//   - path: The path to the XLSX workbook.
//
// RETURNS:
//   - One mapping file per rule sheet, plus one for the Transactions sheet.
//   - An error if the workbook cannot be read or a row is malformed.
func Parse(path string) ([]*translate.MappingFile, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mapping workbook: %w", err)
	}
	defer f.Close()
	return parseWorkbook(f, DefaultColumns())
}

// ParseReader reads a mapping workbook from a stream.
func ParseReader(r io.Reader) ([]*translate.MappingFile, error) {
	return ParseReaderWithConfig(r, DefaultColumns())
}

// ParseReaderWithConfig reads a workbook using a custom column configuration.
func ParseReaderWithConfig(r io.Reader, columns Columns) ([]*translate.MappingFile, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open mapping workbook: %w", err)
	}
	defer f.Close()
	return parseWorkbook(f, columns)
}

func parseWorkbook(f *excelize.File, columns Columns) ([]*translate.MappingFile, error) {
	var files []*translate.MappingFile
	for _, sheet := range f.GetSheetList() {
		if strings.HasPrefix(sheet, "_") {
			continue
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet '%s': %w", sheet, err)
		}

		var mf *translate.MappingFile
		if strings.EqualFold(sheet, TransactionsSheet) {
			mf, err = parseTransactions(rows, columns.DataStartRow)
		} else {
			mf, err = parseRuleSheet(sheet, rows, columns)
		}
		if err != nil {
			return nil, fmt.Errorf("error parsing sheet '%s': %w", sheet, err)
		}
		files = append(files, mf)
	}
	return files, nil
}

// parseRuleSheet turns one "<SOURCE>-<TARGET>" sheet into a mapping file.
func parseRuleSheet(sheet string, rows [][]string, columns Columns) (*translate.MappingFile, error) {
	src, dst, err := sheetDialects(sheet)
	if err != nil {
		return nil, err
	}
	mf := &translate.MappingFile{SourceDialect: src, TargetDialect: dst}

	var current *translate.Rule
	for i := columns.DataStartRow; i < len(rows); i++ {
		row := rows[i]
		if isRowEmpty(row) {
			continue
		}
		cell := func(index int) string {
			if index < len(row) {
				return strings.TrimSpace(row[index])
			}
			return ""
		}

		source := strings.ToUpper(cell(columns.SourceSegment))
		target := strings.ToUpper(cell(columns.TargetSegment))
		if source == "" || target == "" {
			return nil, fmt.Errorf("row %d: source and target segment are required", i+1)
		}
		merge := isTrue(cell(columns.Merge))

		if current == nil || current.SourceSegment != source || current.TargetSegment != target {
			mf.Rules = append(mf.Rules, translate.Rule{
				SourceDialect: src,
				TargetDialect: dst,
				SourceSegment: source,
				TargetSegment: target,
			})
			current = &mf.Rules[len(mf.Rules)-1]
		}
		current.Merge = current.Merge || merge

		transforms, err := parseTransforms(cell(columns.Transforms))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		current.Elements = append(current.Elements, translate.ElementMapping{
			Source:     cell(columns.SourcePath),
			Target:     cell(columns.TargetPath),
			Constant:   cell(columns.Constant),
			Transforms: transforms,
		})
	}
	return mf, nil
}

// parseTransactions reads the cross-reference sheet. Every row must use the
// dialect pair of the first row.
func parseTransactions(rows [][]string, start int) (*translate.MappingFile, error) {
	mf := &translate.MappingFile{Transactions: make(map[string]string)}
	for i := start; i < len(rows); i++ {
		row := rows[i]
		if isRowEmpty(row) {
			continue
		}
		if len(row) < 4 {
			return nil, fmt.Errorf("row %d: expected 4 columns, got %d", i+1, len(row))
		}
		src, err := dialect(row[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		dst, err := dialect(row[2])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		if mf.SourceDialect == "" {
			mf.SourceDialect, mf.TargetDialect = src, dst
		}
		if src != mf.SourceDialect || dst != mf.TargetDialect {
			return nil, fmt.Errorf("row %d: all rows must use %s -> %s", i+1, mf.SourceDialect, mf.TargetDialect)
		}
		mf.Transactions[strings.TrimSpace(row[1])] = strings.TrimSpace(row[3])
	}
	return mf, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func sheetDialects(sheet string) (edi.Dialect, edi.Dialect, error) {
	a, b, ok := strings.Cut(sheet, "-")
	if !ok {
		return "", "", fmt.Errorf("sheet name must be SOURCE-TARGET, got %q", sheet)
	}
	src, err := dialect(a)
	if err != nil {
		return "", "", err
	}
	dst, err := dialect(b)
	if err != nil {
		return "", "", err
	}
	return src, dst, nil
}

func dialect(s string) (edi.Dialect, error) {
	if strings.EqualFold(strings.TrimSpace(s), string(edi.Legacy)) {
		return edi.Legacy, nil
	}
	dv, err := edi.ParseDialectVersion(s)
	if err != nil {
		return "", err
	}
	if dv.IsZero() {
		return "", fmt.Errorf("missing dialect")
	}
	return dv.Dialect, nil
}

// parseTransforms parses the transforms cell.
func parseTransforms(cell string) ([]translate.Transform, error) {
	var out []translate.Transform
	for _, part := range strings.Split(cell, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value, _ := strings.Cut(part, ":")
		t := translate.Transform{Type: strings.ToLower(strings.TrimSpace(name))}

		switch t.Type {
		case "lookup":
			t.Lookup = parsePairs(value)
		case "lookup_with_default":
			def, pairs, _ := strings.Cut(value, "|")
			t.Value = def
			t.Lookup = parsePairs(pairs)
		case "replace", "regex_replace":
			find, repl, ok := strings.Cut(value, "=>")
			if !ok {
				return nil, fmt.Errorf("%s needs FIND=>VALUE, got %q", t.Type, value)
			}
			t.Find, t.Value = find, repl
		default:
			t.Value = value
		}
		if err := t.Validate(); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func parsePairs(s string) map[string]string {
	out := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		k, v, ok := strings.Cut(pair, "=")
		if ok {
			out[strings.TrimSpace(k)] = strings.TrimSpace(v)
		}
	}
	return out
}

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// isTrue normalizes the merge column.
func isTrue(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "yes", "y", "true", "1", "x", "merge":
		return true
	default:
		return false
	}
}
