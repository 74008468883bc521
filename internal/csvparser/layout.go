package csvparser

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// RECORD LAYOUT
// =============================================================================
//
// A layout describes one legacy flat-file export and how its rows become
// transactions. Rows are presented to the mapping rules as segments whose id
// is the record type and whose elements are the columns, so a rule path "3"
// is the third column.
//
// EXAMPLE:
//
//	name: shipments
//	format: csv
//	delimiter: ","
//	header_rows: 1
//	key: shipment
//	transaction: STATUS
//	sender: LEGACYSYS
//	receiver: PARTNER01
//
// Fixed width files list their columns:
//
//	format: fixed_width
//	columns:
//	  - {name: type, start: 1, width: 3}
//	  - {name: reference, start: 4, width: 10}
//	record_type: type

// Format is the physical layout of a legacy file.
type Format string

const (
	FormatCSV        Format = "csv"
	FormatFixedWidth Format = "fixed_width"
)

// DefaultRecordType is the segment id of rows without a record type column.
const DefaultRecordType = "ROW"

// Column is one named field. Start (1-based) and Width apply to fixed width
// files only.
type Column struct {
	Name  string `yaml:"name"`
	Start int    `yaml:"start,omitempty"`
	Width int    `yaml:"width,omitempty"`
}

// Layout is the document structure of a legacy layout file.
type Layout struct {
	Name   string `yaml:"name"`
	Format Format `yaml:"format"`

	// Delimiter accepts a character or one of tab, pipe and semicolon.
	Delimiter string `yaml:"delimiter,omitempty"`

	// HeaderRows is the number of header rows; several rows are merged
	// into one name per column. Zero means the names come from Columns.
	HeaderRows int `yaml:"header_rows,omitempty"`

	// DataStartRow is the 1-based first data row. Zero means the row after
	// the headers.
	DataStartRow int `yaml:"data_start_row,omitempty"`

	// Encoding is the IANA charset of the file, empty for UTF-8.
	Encoding string `yaml:"encoding,omitempty"`

	Columns []Column `yaml:"columns,omitempty"`

	// RecordType names the column holding each row's record type. Rows
	// without one use Record, or DefaultRecordType.
	RecordType string `yaml:"record_type,omitempty"`
	Record     string `yaml:"record,omitempty"`

	// Key names the column grouping consecutive rows into one transaction.
	// Without a key every row is its own transaction.
	Key string `yaml:"key,omitempty"`

	// Transaction is the legacy transaction id that mapping files
	// cross-reference to a target transaction.
	Transaction string `yaml:"transaction"`

	Sender            string `yaml:"sender"`
	SenderQualifier   string `yaml:"sender_qualifier,omitempty"`
	Receiver          string `yaml:"receiver"`
	ReceiverQualifier string `yaml:"receiver_qualifier,omitempty"`
}

// LoadLayout reads a YAML layout file. Unknown keys are rejected.
func LoadLayout(fs afero.Fs, path string) (*Layout, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open layout %s: %w", path, err)
	}
	defer f.Close()

	layout, err := ParseLayout(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return layout, nil
}

// ParseLayout decodes and validates a layout.
func ParseLayout(r io.Reader) (*Layout, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var l Layout
	if err := dec.Decode(&l); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("layout is empty")
		}
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return &l, nil
}

// Validate checks the layout and fills its defaults.
func (l *Layout) Validate() error {
	l.Format = Format(strings.ToLower(strings.TrimSpace(string(l.Format))))
	if l.Format == "" {
		l.Format = FormatCSV
	}
	if l.Transaction == "" {
		return fmt.Errorf("layout %s: transaction is required", l.Name)
	}
	if l.Sender == "" || l.Receiver == "" {
		return fmt.Errorf("layout %s: sender and receiver are required", l.Name)
	}
	if l.HeaderRows < 0 || l.DataStartRow < 0 {
		return fmt.Errorf("layout %s: header_rows and data_start_row cannot be negative", l.Name)
	}
	if l.Record == "" {
		l.Record = DefaultRecordType
	}
	l.Record = strings.ToUpper(l.Record)
	l.Transaction = strings.ToUpper(l.Transaction)

	switch l.Format {
	case FormatCSV:
		if l.HeaderRows == 0 && len(l.Columns) == 0 {
			return fmt.Errorf("layout %s: a csv layout needs header_rows or columns", l.Name)
		}
	case FormatFixedWidth:
		if len(l.Columns) == 0 {
			return fmt.Errorf("layout %s: a fixed_width layout needs columns", l.Name)
		}
		for _, c := range l.Columns {
			if c.Start < 1 || c.Width < 1 {
				return fmt.Errorf("layout %s: column %s needs a positive start and width", l.Name, c.Name)
			}
		}
	default:
		return fmt.Errorf("layout %s: unknown format %q", l.Name, l.Format)
	}

	for _, c := range l.Columns {
		if c.Name == "" {
			return fmt.Errorf("layout %s: every column needs a name", l.Name)
		}
	}
	return nil
}

// columnIndex returns the 0-based index of name in headers, or -1. An empty
// name is never found.
func columnIndex(headers []string, name string) int {
	if name == "" {
		return -1
	}
	for i, h := range headers {
		if strings.EqualFold(h, name) {
			return i
		}
	}
	return -1
}
