// =============================================================================
// EDI Codec - Legacy Record Parser
// =============================================================================
//
// This module reads flat-file exports from legacy systems so they can be
// migrated into X12 or EDIFACT. It handles:
//   - Delimited files (comma, pipe, tab, semicolon, ...)
//   - Multi-line headers
//   - Custom data start rows
//   - Fixed width records described by column offsets
//   - Non UTF-8 encodings
//
// Each data row becomes a Record. Document turns the records into a LEGACY
// dialect document that the translator projects through mapping rules.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/ginjaninja78/edi-codec/internal/edi"
	"github.com/ginjaninja78/edi-codec/internal/parser"
)

// =============================================================================
// RECORD DATA STRUCTURE
// =============================================================================

// Record is one data row.
type Record struct {
	// Line is the 1-based row number in the file.
	Line int

	// Type is the record type, used as the segment id.
	Type string

	// Key is the value of the layout's key column.
	Key string

	// Fields holds the trimmed values in column order.
	Fields []string
}

// Records is a parsed legacy file.
type Records struct {
	Layout  *Layout
	Headers []string
	Rows    []Record
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a legacy file.
//
// PARAMETERS:
//   - r: The file content, in the layout's encoding.
//   - layout: A validated layout.
//
// RETURNS:
//   - The parsed records.
//   - An error if the file cannot be decoded or read.
//
// PARSING PROCESS:
//  1. Decode the input to UTF-8
//  2. Split it into rows (delimited or fixed width)
//  3. Read and merge the header rows
//  4. Read data rows starting from the configured data start row
//  5. Resolve each row's record type and key
func Parse(r io.Reader, layout *Layout) (*Records, error) {
	decoded, err := parser.DecodeReader(r, layout.Encoding)
	if err != nil {
		return nil, err
	}

	var allRows [][]string
	switch layout.Format {
	case FormatFixedWidth:
		allRows, err = readFixedWidth(decoded, layout)
	default:
		allRows, err = readDelimited(decoded, layout)
	}
	if err != nil {
		return nil, err
	}
	if len(allRows) == 0 {
		return nil, fmt.Errorf("legacy file is empty")
	}

	headers, err := extractHeaders(allRows, layout)
	if err != nil {
		return nil, fmt.Errorf("failed to extract headers: %w", err)
	}

	return &Records{
		Layout:  layout,
		Headers: headers,
		Rows:    extractDataRows(allRows, headers, layout),
	}, nil
}

// readDelimited splits a delimited file into rows.
func readDelimited(r io.Reader, layout *Layout) ([][]string, error) {
	reader := csv.NewReader(bufio.NewReader(r))
	configureReader(reader, layout)

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return rows, nil
}

// readFixedWidth cuts each line at the column offsets. Header lines are cut
// the same way and are only used for their count.
func readFixedWidth(r io.Reader, layout *Layout) ([][]string, error) {
	var rows [][]string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := []rune(strings.TrimRight(scanner.Text(), "\r"))
		row := make([]string, len(layout.Columns))
		for i, c := range layout.Columns {
			start := c.Start - 1
			if start >= len(line) {
				continue
			}
			end := min(start+c.Width, len(line))
			row[i] = string(line[start:end])
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read fixed width file: %w", err)
	}
	return rows, nil
}

// configureReader configures the CSV reader from the layout.
func configureReader(reader *csv.Reader, layout *Layout) {
	switch layout.Delimiter {
	case "\\t", "tab", "TAB":
		reader.Comma = '\t'
	case "|", "pipe", "PIPE":
		reader.Comma = '|'
	case ";", "semicolon":
		reader.Comma = ';'
	default:
		if len(layout.Delimiter) > 0 {
			reader.Comma = rune(layout.Delimiter[0])
		} else {
			reader.Comma = ','
		}
	}

	// Legacy exports are rarely consistent in width or quoting.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
}

// extractHeaders returns one name per column.
//
// MULTI-LINE HEADER HANDLING:
//
//	Row 1: "Shipment", "", "Status", ""
//	Row 2: "Number", "Reference", "Code", "Date"
//	Result: "Shipment Number", "Reference", "Status Code", "Date"
//
// Fixed width files and delimited files without header rows take the
// layout's column names.
func extractHeaders(allRows [][]string, layout *Layout) ([]string, error) {
	if layout.Format == FormatFixedWidth || layout.HeaderRows == 0 {
		headers := make([]string, len(layout.Columns))
		for i, c := range layout.Columns {
			headers[i] = c.Name
		}
		return cleanHeaders(headers), nil
	}

	if len(allRows) < layout.HeaderRows {
		return nil, fmt.Errorf("file has fewer rows than header_rows setting")
	}

	maxCols := 0
	for i := 0; i < layout.HeaderRows; i++ {
		maxCols = max(maxCols, len(allRows[i]))
	}

	headers := make([]string, maxCols)
	for col := 0; col < maxCols; col++ {
		var parts []string
		for row := 0; row < layout.HeaderRows; row++ {
			if col < len(allRows[row]) {
				if value := strings.TrimSpace(allRows[row][col]); value != "" {
					parts = append(parts, value)
				}
			}
		}
		headers[col] = strings.Join(parts, " ")
	}
	return cleanHeaders(headers), nil
}

// cleanHeaders trims header names and names empty ones by position.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, header := range headers {
		header = strings.TrimSpace(header)
		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}
		cleaned[i] = header
	}
	return cleaned
}

// extractDataRows turns the data rows into records, skipping empty rows.
func extractDataRows(allRows [][]string, headers []string, layout *Layout) []Record {
	startIndex := layout.DataStartRow - 1
	if startIndex < 0 {
		startIndex = layout.HeaderRows
	}
	if startIndex >= len(allRows) {
		return nil
	}

	typeCol := columnIndex(headers, layout.RecordType)
	keyCol := columnIndex(headers, layout.Key)

	records := make([]Record, 0, len(allRows)-startIndex)
	for rowIndex := startIndex; rowIndex < len(allRows); rowIndex++ {
		row := allRows[rowIndex]
		if isRowEmpty(row) {
			continue
		}

		fields := make([]string, max(len(headers), len(row)))
		for i := range fields {
			if i < len(row) {
				fields[i] = strings.TrimSpace(row[i])
			}
		}

		rec := Record{Line: rowIndex + 1, Type: layout.Record, Fields: fields}
		if typeCol >= 0 && fields[typeCol] != "" {
			rec.Type = strings.ToUpper(fields[typeCol])
		}
		if keyCol >= 0 {
			rec.Key = fields[keyCol]
		}
		records = append(records, rec)
	}
	return records
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// =============================================================================
// DOCUMENT
// =============================================================================

// Segment presents a record as a segment: the record type is the id and each
// column is one simple element.
func (r Record) Segment() *edi.Segment {
	return edi.NewSegment(r.Type, r.Fields...)
}

// Document builds a LEGACY dialect document from the records. The envelope
// levels are implicit: one interchange between the layout's sender and
// receiver, one group, and one transaction per key (or per row without a
// key). Consecutive rows with the same key share a transaction.
func (rs *Records) Document() *edi.Document {
	layout := rs.Layout
	doc := &edi.Document{Info: edi.DialectInfo{Dialect: edi.Legacy}}

	ic := &edi.Interchange{
		Implicit:          true,
		SenderID:          layout.Sender,
		SenderQualifier:   layout.SenderQualifier,
		ReceiverID:        layout.Receiver,
		ReceiverQualifier: layout.ReceiverQualifier,
	}
	group := &edi.Group{
		Implicit:   true,
		SenderID:   layout.Sender,
		ReceiverID: layout.Receiver,
	}
	ic.Groups = []*edi.Group{group}
	doc.Interchanges = []*edi.Interchange{ic}

	var tx *edi.Transaction
	for i, rec := range rs.Rows {
		if tx == nil || layout.Key == "" || rec.Key != tx.ControlNumber {
			tx = &edi.Transaction{
				Index:         len(group.Transactions) + 1,
				SetID:         layout.Transaction,
				ControlNumber: rec.Key,
			}
			if layout.Key == "" {
				tx.ControlNumber = fmt.Sprint(i + 1)
			}
			group.Transactions = append(group.Transactions, tx)
		}
		seg := rec.Segment()
		tx.Segments = append(tx.Segments, seg)
		doc.Segments = append(doc.Segments, seg)
	}
	doc.Renumber()
	return doc
}
