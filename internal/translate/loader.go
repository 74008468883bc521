package translate

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/edi-codec/internal/edi"
)

// =============================================================================
// YAML MAPPING FILES
// =============================================================================
//
// EXAMPLE:
//
//	source_dialect: X12
//	target_dialect: EDIFACT
//	override: true
//	transactions:
//	  "210": IFTSTA
//	rules:
//	  - source: N1
//	    target: NAD
//	    elements:
//	      - source: "1"
//	        target: "1"
//	        transforms:
//	          - type: lookup
//	            lookup_table: {SH: CZ}
//	      - source: "2"
//	        target: "4.1"
//
// Rules inherit the file's dialects unless they set their own.

// MappingFile is the document structure of a YAML mapping file.
type MappingFile struct {
	SourceDialect edi.Dialect       `yaml:"source_dialect"`
	TargetDialect edi.Dialect       `yaml:"target_dialect"`
	Transactions  map[string]string `yaml:"transactions"`

	// Override replaces built-in rules for the same source segments instead
	// of adding to them.
	Override bool   `yaml:"override"`
	Rules    []Rule `yaml:"rules"`
}

// Normalize fills rule dialects from the file defaults.
func (f *MappingFile) Normalize() {
	for i := range f.Rules {
		if f.Rules[i].SourceDialect == "" {
			f.Rules[i].SourceDialect = f.SourceDialect
		}
		if f.Rules[i].TargetDialect == "" {
			f.Rules[i].TargetDialect = f.TargetDialect
		}
	}
}

// ParseMappingFile decodes a YAML mapping file. Unknown keys are rejected.
func ParseMappingFile(r io.Reader) (*MappingFile, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f MappingFile
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("failed to parse mapping file: %w", err)
	}
	f.Normalize()
	return &f, nil
}

// ParseMappingBytes is ParseMappingFile over a byte slice.
func ParseMappingBytes(data []byte) (*MappingFile, error) {
	return ParseMappingFile(bytes.NewReader(data))
}

// Apply registers the file's rules and cross-references into rs.
func (f *MappingFile) Apply(rs *RuleSet) error {
	var err error
	if f.Override {
		err = rs.Replace(f.Rules...)
	} else {
		err = rs.Add(f.Rules...)
	}
	if err != nil {
		return err
	}
	if len(f.Transactions) > 0 && (f.SourceDialect == "" || f.TargetDialect == "") {
		return fmt.Errorf("transactions need file-level source_dialect and target_dialect")
	}
	for src, dst := range f.Transactions {
		rs.CrossReference(f.SourceDialect, src, f.TargetDialect, dst)
	}
	return nil
}
