// =============================================================================
// EDI Codec - Grammar Tables
// =============================================================================
//
// This package holds the static grammar of both dialects: segment and element
// definitions, transaction set / message structures, qualifier code lists and
// industry rule sets. Tables are grouped into a Registry keyed by
// (dialect, version, transaction id) so adding a version is additive.
//
// A Registry is built once and never mutated afterwards; it is shared by every
// worker in the processing pool without locking.
//
// =============================================================================

package grammar

import (
	"strings"

	"github.com/ginjaninja78/edi-codec/internal/edi"
)

// =============================================================================
// DATA TYPES
// =============================================================================

// DataType is the value type of an element.
type DataType string

const (
	// X12 types
	TypeAN DataType = "AN" // string
	TypeID DataType = "ID" // identifier (code)
	TypeN  DataType = "N"  // numeric with implied decimals (N0, N2, ...)
	TypeR  DataType = "R"  // decimal number
	TypeDT DataType = "DT" // date
	TypeTM DataType = "TM" // time

	// EDIFACT types
	TypeAlpha    DataType = "a"
	TypeNumeric  DataType = "n"
	TypeAlphaNum DataType = "an"
)

// IsNumeric reports whether the type holds numbers.
func (t DataType) IsNumeric() bool {
	return t == TypeN || t == TypeR || t == TypeNumeric
}

// IsText reports whether over-length values of this type may be truncated.
func (t DataType) IsText() bool {
	return t == TypeAN || t == TypeID || t == TypeAlpha || t == TypeAlphaNum
}

// =============================================================================
// DEFINITIONS
// =============================================================================

// ElementDef describes one element position (or one component of a composite).
type ElementDef struct {
	Ref      string
	Name     string
	Type     DataType
	Decimals int
	Min      int
	Max      int
	Required bool

	// CodeList names the qualifier list the value must belong to.
	CodeList string

	// Control marks envelope control numbers, which must never be rewritten.
	Control bool

	// Components is set for composite elements.
	Components []ElementDef
}

// IsComposite reports whether the element is a composite.
func (d ElementDef) IsComposite() bool {
	return len(d.Components) > 0
}

// FixedLength reports whether the element has a fixed width.
func (d ElementDef) FixedLength() bool {
	return d.Min > 0 && d.Min == d.Max
}

// SegmentDef describes a segment and its element positions.
type SegmentDef struct {
	ID       string
	Name     string
	Elements []ElementDef
}

// Element returns the definition addressed by a path. For a composite and a
// path without a component, the composite itself is returned.
func (s *SegmentDef) Element(p edi.Path) (ElementDef, bool) {
	if p.Element < 1 || p.Element > len(s.Elements) {
		return ElementDef{}, false
	}
	def := s.Elements[p.Element-1]
	if !def.IsComposite() || p.Component == 0 {
		return def, true
	}
	if p.Component > len(def.Components) {
		return ElementDef{}, false
	}
	return def.Components[p.Component-1], true
}

// SegmentUsage places a segment within a transaction structure.
type SegmentUsage struct {
	ID       string
	Required bool

	// MaxUse bounds repetitions outside loops; 0 means unbounded.
	MaxUse int

	// Loop names the loop the segment belongs to. Nested loops use a
	// slash-separated path ("0200/0205").
	Loop      string
	LoopStart bool
}

// InLoop reports whether the usage is inside loop (or one nested in it).
func (u SegmentUsage) InLoop(loop string) bool {
	return loop != "" && (u.Loop == loop || strings.HasPrefix(u.Loop, loop+"/"))
}

// TableKey identifies one transaction table.
type TableKey struct {
	Dialect       edi.Dialect
	Version       string
	TransactionID string
}

// TransactionSchema is the structure of one transaction set or message.
type TransactionSchema struct {
	Key  TableKey
	Name string

	// Industry is the default industry profile for the transaction.
	Industry string

	// FunctionalID is the X12 GS01 code for the set.
	FunctionalID string

	// Body lists the segments between header and trailer, in order.
	Body []SegmentUsage
}

// Usage returns the index of a segment in the body, or -1.
func (s *TransactionSchema) Usage(id string) int {
	for i, u := range s.Body {
		if u.ID == id {
			return i
		}
	}
	return -1
}

// LoopRegion returns the body index range [start, end] of a loop.
func (s *TransactionSchema) LoopRegion(loop string) (int, int) {
	start, end := -1, -1
	for i, u := range s.Body {
		if u.InLoop(loop) {
			if start < 0 {
				start = i
			}
			end = i
		}
	}
	return start, end
}

// =============================================================================
// CODE LISTS
// =============================================================================

// CodeList is a named set of qualifier codes with descriptions.
type CodeList struct {
	Name  string
	Codes map[string]string
}

// Lookup checks a value. It returns the canonical code and whether the value
// matched exactly; found is false when the value is unknown in any casing.
func (c *CodeList) Lookup(v string) (canonical string, exact bool, found bool) {
	if _, ok := c.Codes[v]; ok {
		return v, true, true
	}
	for code := range c.Codes {
		if strings.EqualFold(code, v) {
			return code, false, true
		}
	}
	return "", false, false
}

// Describe returns the description of a code, or "".
func (c *CodeList) Describe(code string) string {
	return c.Codes[code]
}
