package translate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/edi-codec/internal/edi"
	"github.com/ginjaninja78/edi-codec/internal/grammar"
)

func TestApply(t *testing.T) {
	tests := []struct {
		name  string
		value string
		t     Transform
		want  string
	}{
		{"prepend", "123", Transform{Type: "prepend_string", Value: "A"}, "A123"},
		{"append", "123", Transform{Type: "append_string", Value: "-00"}, "123-00"},
		{"trim", "  x ", Transform{Type: "trim"}, "x"},
		{"uppercase", "abc", Transform{Type: "uppercase"}, "ABC"},
		{"substring", "ABCDEFGH", Transform{Type: "substring", Value: "2,5"}, "CDE"},
		{"pad zeros", "11", Transform{Type: "pad_zeros_to_length", Value: "3"}, "011"},
		{"ensure length truncates", "12345678901", Transform{Type: "ensure_length", Value: "4"}, "1234"},
		{"ensure length pads", "7", Transform{Type: "ensure_length", Value: "3"}, "007"},
		{"remove leading zeros", "011", Transform{Type: "remove_leading_zeros"}, "11"},
		{"remove leading zeros keeps zero", "000", Transform{Type: "remove_leading_zeros"}, "0"},
		{"format number", "1234.5", Transform{Type: "format_number", Value: "2"}, "1234.50"},
		{"format date", "20240115", Transform{Type: "format_date", Value: "20060102|060102"}, "240115"},
		{"format date passes invalid input", "2024", Transform{Type: "format_date", Value: "20060102|060102"}, "2024"},
		{"lookup", "SH", Transform{Type: "lookup", Lookup: map[string]string{"SH": "CZ"}}, "CZ"},
		{"lookup passes unknown", "XX", Transform{Type: "lookup", Lookup: map[string]string{"SH": "CZ"}}, "XX"},
		{"lookup with default", "XX", Transform{Type: "lookup_with_default", Value: "ZZ", Lookup: map[string]string{}}, "ZZ"},
		{"default when empty", " ", Transform{Type: "if_empty_use_default", Value: "N/A"}, "N/A"},
		{"replace", "a-b", Transform{Type: "replace", Find: "-", Value: "_"}, "a_b"},
		{"regex replace", "ABC-123-DEF", Transform{Type: "regex_replace", Find: "[A-Z]+", Value: "X"}, "X-123-X"},
		{"extract digits", "AB-12-C3", Transform{Type: "extract_digits"}, "123"},
	}
	for _, tt := range tests {
		t.Run("Should apply "+tt.name, func(t *testing.T) {
			got, err := Apply(tt.value, tt.t)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("Should reject unknown transforms", func(t *testing.T) {
		_, err := Apply("x", Transform{Type: "rot13"})
		assert.Error(t, err)
		assert.Error(t, Transform{Type: "rot13"}.Validate())
	})
}

func TestRuleSet(t *testing.T) {
	t.Run("Should reject rules with bad paths", func(t *testing.T) {
		rs := NewRuleSet()
		err := rs.Add(Rule{SourceDialect: edi.X12, TargetDialect: edi.EDIFACT, SourceSegment: "N1", TargetSegment: "NAD",
			Elements: []ElementMapping{{Source: "x", Target: "1"}}})
		assert.Error(t, err)
	})

	t.Run("Should reject rules within one dialect", func(t *testing.T) {
		err := NewRuleSet().Add(Rule{SourceDialect: edi.X12, TargetDialect: edi.X12, SourceSegment: "N1", TargetSegment: "N1"})
		assert.Error(t, err)
	})

	t.Run("Should cross-reference transactions in both directions", func(t *testing.T) {
		rs := Builtin()
		id, ok := rs.TargetTransaction(edi.X12, "315", edi.EDIFACT)
		require.True(t, ok)
		assert.Equal(t, "IFTSTA", id)

		id, ok = rs.TargetTransaction(edi.EDIFACT, "IFTSTA", edi.X12)
		require.True(t, ok)
		assert.Equal(t, "214", id)

		id, ok = rs.TargetTransaction(edi.EDIFACT, "CONTRL", edi.X12)
		require.True(t, ok)
		assert.Equal(t, "997", id)
	})

	t.Run("Should not change the built-in set through a clone", func(t *testing.T) {
		before := Builtin().Len()
		clone := Builtin().Clone()
		require.NoError(t, clone.Add(Rule{SourceDialect: edi.X12, TargetDialect: edi.EDIFACT, SourceSegment: "L11", TargetSegment: "RFF",
			Elements: []ElementMapping{{Source: "2", Target: "1.1"}, {Source: "1", Target: "1.2"}}}))
		assert.Equal(t, before+1, clone.Len())
		assert.Equal(t, before, Builtin().Len())
	})
}

const mappingYAML = `
source_dialect: X12
target_dialect: EDIFACT
override: true
transactions:
  "210": IFTSTA
rules:
  - source: N1
    target: NAD
    elements:
      - source: "1"
        target: "1"
        transforms:
          - type: lookup
            lookup_table: {SH: CZ}
      - source: "2"
        target: "4.1"
        transforms:
          - type: uppercase
  - source: L11
    target: RFF
    elements:
      - source: "2"
        target: "1.1"
      - source: "1"
        target: "1.2"
`

func TestMappingFile(t *testing.T) {
	t.Run("Should load rules and cross-references", func(t *testing.T) {
		f, err := ParseMappingBytes([]byte(mappingYAML))
		require.NoError(t, err)
		require.Len(t, f.Rules, 2)
		assert.Equal(t, edi.X12, f.Rules[0].SourceDialect)

		rs := Builtin().Clone()
		require.NoError(t, f.Apply(rs))
		assert.Len(t, rs.Lookup(edi.X12, "N1", edi.EDIFACT), 1)
		assert.Len(t, rs.Lookup(edi.X12, "L11", edi.EDIFACT), 1)
		id, ok := rs.TargetTransaction(edi.X12, "210", edi.EDIFACT)
		require.True(t, ok)
		assert.Equal(t, "IFTSTA", id)
	})

	t.Run("Should translate with loaded rules", func(t *testing.T) {
		f, err := ParseMappingBytes([]byte(mappingYAML))
		require.NoError(t, err)
		rs := Builtin().Clone()
		require.NoError(t, f.Apply(rs))

		tr := NewTranslator(grammar.Builtin(), Config{Rules: rs})
		doc := parse(t, x12Status)
		doc.Transactions()[0].Segments[1].Set(edi.MustPath("2"), "acme shipping")
		out, err := tr.Translate(context.Background(), doc, edi.DialectVersion{Dialect: edi.EDIFACT, Version: "D01B"})
		require.NoError(t, err)
		nad := out.Document.Transactions()[0].Segments[3]
		assert.Equal(t, "ACME SHIPPING", nad.Get(edi.MustPath("4.1")))
		assert.Equal(t, "D01B", out.Document.Transactions()[0].Version)
	})

	t.Run("Should reject unknown keys", func(t *testing.T) {
		_, err := ParseMappingBytes([]byte("source_dialect: X12\nrulez: []\n"))
		assert.Error(t, err)
	})

	t.Run("Should reject unknown transforms", func(t *testing.T) {
		f, err := ParseMappingBytes([]byte("source_dialect: X12\ntarget_dialect: EDIFACT\nrules:\n  - source: N1\n    target: NAD\n    elements:\n      - source: \"1\"\n        target: \"1\"\n        transforms: [{type: rot13}]\n"))
		require.NoError(t, err)
		assert.Error(t, f.Apply(NewRuleSet()))
	})
}
