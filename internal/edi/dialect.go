// =============================================================================
// EDI Codec - Dialects and Delimiters
// =============================================================================
//
// This file defines the two supported EDI dialects and the delimiter set each
// document is written with. Every later stage (parser, validator, translator,
// acknowledgment generator) receives a DialectInfo describing how the raw
// payload must be read and how new output must be written.
//
// DELIMITERS:
//   X12     : positional, taken from the fixed-width ISA header.
//   EDIFACT : declared by the optional UNA segment, or the syntax defaults.
//
// =============================================================================

package edi

import (
	"fmt"
	"strings"
)

// Dialect identifies an EDI grammar family.
type Dialect string

const (
	// X12 is the ANSI ASC X12 dialect (ISA/GS/ST envelopes).
	X12 Dialect = "X12"

	// EDIFACT is the UN/EDIFACT dialect (UNB/UNG/UNH envelopes).
	EDIFACT Dialect = "EDIFACT"

	// Legacy marks flat-file records (CSV or fixed width) presented as
	// segments. It is a translation source only.
	Legacy Dialect = "LEGACY"
)

// Wrapper names for custom sub-formats that carry an EDI payload inside
// another document.
const (
	WrapperXML  = "XML_EDI"
	WrapperJSON = "JSON_EDI"
)

// Delimiters is the character set used to frame a document.
// A zero byte means the delimiter is not in use.
type Delimiters struct {
	Segment    byte
	Element    byte
	Component  byte
	Repetition byte
	Decimal    byte
	Release    byte
}

// DefaultDelimiters returns the documented defaults for a dialect.
func DefaultDelimiters(d Dialect) Delimiters {
	switch d {
	case EDIFACT:
		return Delimiters{
			Segment:   '\'',
			Element:   '+',
			Component: ':',
			Decimal:   '.',
			Release:   '?',
		}
	default:
		return Delimiters{
			Segment:    '~',
			Element:    '*',
			Component:  ':',
			Repetition: '^',
			Decimal:    '.',
		}
	}
}

// ServiceString renders the EDIFACT UNA segment declaring these delimiters.
func (d Delimiters) ServiceString() string {
	rep := d.Repetition
	if rep == 0 {
		rep = ' '
	}
	rel := d.Release
	if rel == 0 {
		rel = ' '
	}
	dec := d.Decimal
	if dec == 0 {
		dec = '.'
	}
	return string([]byte{'U', 'N', 'A', d.Component, d.Element, dec, rel, rep, d.Segment})
}

// DialectInfo describes how a raw payload is framed.
type DialectInfo struct {
	Dialect    Dialect
	Version    string
	Delimiters Delimiters

	// Explicit is true when the delimiters were declared by the document
	// itself (EDIFACT UNA) rather than taken from defaults.
	Explicit bool

	// Wrapper names the custom sub-format the payload was unwrapped from,
	// or is empty for plain EDI.
	Wrapper string
}

// DialectVersion names a translation target, e.g. "EDIFACT:D96A".
type DialectVersion struct {
	Dialect Dialect
	Version string
}

// ParseDialectVersion parses "DIALECT[:VERSION]". Dialect names are case
// insensitive. An empty string yields the zero value and no error.
func ParseDialectVersion(s string) (DialectVersion, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") {
		return DialectVersion{}, nil
	}

	name, version, _ := strings.Cut(s, ":")
	var dv DialectVersion
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case string(X12):
		dv.Dialect = X12
	case string(EDIFACT):
		dv.Dialect = EDIFACT
	default:
		return DialectVersion{}, fmt.Errorf("unknown dialect %q", name)
	}
	dv.Version = strings.ToUpper(strings.TrimSpace(version))
	return dv, nil
}

// IsZero reports whether no target was requested.
func (dv DialectVersion) IsZero() bool {
	return dv.Dialect == ""
}

func (dv DialectVersion) String() string {
	if dv.Version == "" {
		return string(dv.Dialect)
	}
	return string(dv.Dialect) + ":" + dv.Version
}
