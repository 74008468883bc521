package edi

import (
	"bytes"
	"io"
	"strings"
)

// =============================================================================
// SERIALIZATION
// =============================================================================

// Bytes serializes the document with the delimiters it was read with.
// A document parsed without errors serializes back to its source bytes.
func (d *Document) Bytes() []byte {
	var buf bytes.Buffer
	d.WriteTo(&buf)
	return buf.Bytes()
}

// WriteTo writes the serialized document to w.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	buf.WriteString(d.ServiceString)
	buf.WriteString(d.ServiceSuffix)
	for _, seg := range d.Segments {
		writeSegment(&buf, seg, d.Info.Delimiters)
	}
	return buf.WriteTo(w)
}

// FormatSegment renders one segment including its terminator and suffix.
func FormatSegment(seg *Segment, delims Delimiters) string {
	var buf bytes.Buffer
	writeSegment(&buf, seg, delims)
	return buf.String()
}

// Render serializes a list of segments, ending each with the terminator and
// the given separator (typically "" or "\n").
func Render(segments []*Segment, delims Delimiters, separator string) []byte {
	var buf bytes.Buffer
	for _, seg := range segments {
		s := seg.Clone()
		s.Suffix = separator
		s.Unterminated = false
		s.Raw, s.Padding = "", ""
		writeSegment(&buf, s, delims)
	}
	return buf.Bytes()
}

func writeSegment(buf *bytes.Buffer, seg *Segment, delims Delimiters) {
	body := formatBody(seg, delims)
	if seg.Raw != "" && seg.Raw != body && sameValues(seg, ParseSegment(seg.Raw, delims)) {
		body = seg.Raw
	}
	buf.WriteString(body)
	if !seg.Unterminated {
		buf.WriteByte(delims.Segment)
	}
	buf.WriteString(seg.Suffix)
	buf.WriteString(seg.Padding)
}

// formatBody renders the segment tag and elements with every delimiter
// character escaped.
func formatBody(seg *Segment, delims Delimiters) string {
	var b strings.Builder
	b.WriteString(seg.ID)
	for _, el := range seg.Elements {
		b.WriteByte(delims.Element)
		for i, v := range el.Values {
			if i > 0 {
				b.WriteByte(delims.Component)
			}
			b.WriteString(Escape(v, delims))
		}
	}
	return b.String()
}

// sameValues reports whether two segments hold the same tag and values.
func sameValues(a, b *Segment) bool {
	if a.ID != b.ID || len(a.Elements) != len(b.Elements) {
		return false
	}
	for i := range a.Elements {
		x, y := a.Elements[i], b.Elements[i]
		if x.Composite != y.Composite || len(x.Values) != len(y.Values) {
			return false
		}
		for j := range x.Values {
			if x.Values[j] != y.Values[j] {
				return false
			}
		}
	}
	return true
}

// Escape prefixes delimiter characters in v with the release character.
// Dialects without a release character (X12) are returned unchanged.
func Escape(v string, delims Delimiters) string {
	if delims.Release == 0 || !strings.ContainsAny(v, specials(delims)) {
		return v
	}
	var b strings.Builder
	for i := 0; i < len(v); i++ {
		c := v[i]
		if c == delims.Release || c == delims.Segment || c == delims.Element || c == delims.Component {
			b.WriteByte(delims.Release)
		}
		b.WriteByte(c)
	}
	return b.String()
}

func specials(d Delimiters) string {
	return string([]byte{d.Release, d.Segment, d.Element, d.Component})
}
