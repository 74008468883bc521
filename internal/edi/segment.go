package edi

import (
	"fmt"
	"strconv"
	"strings"
)

// =============================================================================
// ELEMENT
// =============================================================================

// Element is one data element of a segment. A simple element holds exactly one
// value; a composite holds an ordered list of component values.
type Element struct {
	Values    []string
	Composite bool
}

// Simple creates a simple element.
func Simple(v string) Element {
	return Element{Values: []string{v}}
}

// NewComposite creates a composite element from its components.
func NewComposite(components ...string) Element {
	return Element{Values: components, Composite: true}
}

// Value returns the element value, or the first component of a composite.
func (e Element) Value() string {
	if len(e.Values) == 0 {
		return ""
	}
	return e.Values[0]
}

// Component returns the 1-based component i. For a simple element component 1
// is its value.
func (e Element) Component(i int) string {
	if i < 1 || i > len(e.Values) {
		return ""
	}
	return e.Values[i-1]
}

// IsEmpty reports whether every component is blank.
func (e Element) IsEmpty() bool {
	for _, v := range e.Values {
		if v != "" {
			return false
		}
	}
	return true
}

// setComponent stores v at the 1-based component position, growing the
// element and promoting it to a composite when needed.
func (e *Element) setComponent(i int, v string) {
	if i < 1 {
		i = 1
	}
	for len(e.Values) < i {
		e.Values = append(e.Values, "")
	}
	e.Values[i-1] = v
	if i > 1 {
		e.Composite = true
	}
}

// =============================================================================
// SEGMENT
// =============================================================================

// Segment is a tagged, ordered group of elements.
type Segment struct {
	ID       string
	Elements []Element

	// Position is the 1-based position of the segment in its document.
	Position int

	// Suffix is the whitespace that followed the segment terminator in the
	// source (line breaks between segments).
	Suffix string

	// Unterminated is set for a final segment that had no terminator.
	Unterminated bool

	// Raw is the segment body as read, release characters included. It is
	// written back as long as it still parses to the current values.
	Raw string

	// Padding holds empty segments (bare terminators) and their layout that
	// followed this segment in the source.
	Padding string
}

// NewSegment builds a segment of simple elements.
func NewSegment(id string, values ...string) *Segment {
	seg := &Segment{ID: id, Elements: make([]Element, len(values))}
	for i, v := range values {
		seg.Elements[i] = Simple(v)
	}
	return seg
}

// Element returns the 1-based element i, or an empty element when absent.
func (s *Segment) Element(i int) Element {
	if i < 1 || i > len(s.Elements) {
		return Element{}
	}
	return s.Elements[i-1]
}

// Value returns the value of element i (its first component for composites).
func (s *Segment) Value(i int) string {
	return s.Element(i).Value()
}

// Get returns the value addressed by a path.
func (s *Segment) Get(p Path) string {
	if p.Component <= 1 {
		return s.Element(p.Element).Component(1)
	}
	return s.Element(p.Element).Component(p.Component)
}

// Set stores v at the path, growing the segment as needed.
func (s *Segment) Set(p Path, v string) {
	if p.Element < 1 {
		return
	}
	for len(s.Elements) < p.Element {
		s.Elements = append(s.Elements, Element{})
	}
	c := p.Component
	if c == 0 {
		c = 1
	}
	s.Elements[p.Element-1].setComponent(c, v)
}

// TrimTrailing drops trailing empty elements and empty trailing components.
// Used when building new segments so output carries no dangling separators.
func (s *Segment) TrimTrailing() {
	for i := range s.Elements {
		vals := s.Elements[i].Values
		for len(vals) > 1 && vals[len(vals)-1] == "" {
			vals = vals[:len(vals)-1]
		}
		s.Elements[i].Values = vals
		if len(vals) <= 1 {
			s.Elements[i].Composite = false
		}
	}
	n := len(s.Elements)
	for n > 0 && s.Elements[n-1].IsEmpty() {
		n--
	}
	s.Elements = s.Elements[:n]
}

// Clone returns a deep copy of the segment.
func (s *Segment) Clone() *Segment {
	out := *s
	out.Elements = make([]Element, len(s.Elements))
	for i, e := range s.Elements {
		out.Elements[i] = Element{Values: append([]string(nil), e.Values...), Composite: e.Composite}
	}
	return &out
}

// =============================================================================
// PATH
// =============================================================================

// Path addresses an element (and optionally a component) inside a segment.
// Both indices are 1-based; Component 0 means the whole simple element.
type Path struct {
	Element   int
	Component int
}

// ParsePath parses "E" or "E.C", e.g. "4" or "04.01".
func ParsePath(s string) (Path, error) {
	elem, comp, hasComp := strings.Cut(strings.TrimSpace(s), ".")
	e, err := strconv.Atoi(elem)
	if err != nil || e < 1 {
		return Path{}, fmt.Errorf("invalid element path %q", s)
	}
	p := Path{Element: e}
	if hasComp {
		c, err := strconv.Atoi(comp)
		if err != nil || c < 1 {
			return Path{}, fmt.Errorf("invalid component path %q", s)
		}
		p.Component = c
	}
	return p, nil
}

// MustPath is ParsePath for static tables.
func MustPath(s string) Path {
	p, err := ParsePath(s)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Path) String() string {
	if p.Component == 0 {
		return strconv.Itoa(p.Element)
	}
	return fmt.Sprintf("%d.%d", p.Element, p.Component)
}
