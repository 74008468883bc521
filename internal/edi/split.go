package edi

import "strings"

// SplitEscaped splits s on sep, ignoring separators preceded by the release
// character. Escape sequences are kept in the parts so that nested splits see
// them too; call Unescape on leaf values. A zero release disables escaping.
func SplitEscaped(s string, sep, release byte) []string {
	if release == 0 || strings.IndexByte(s, release) < 0 {
		return strings.Split(s, string(sep))
	}
	var parts []string
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case release:
			i++
		case sep:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

// Unescape removes release characters from a leaf value.
func Unescape(s string, release byte) string {
	if release == 0 || strings.IndexByte(s, release) < 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == release && i+1 < len(s) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// ParseSegment tokenizes one segment body (without its terminator).
// Elements that contain an unescaped component separator become composites,
// except in the X12 ISA segment whose last element is the separator itself.
func ParseSegment(body string, delims Delimiters) *Segment {
	fields := SplitEscaped(body, delims.Element, delims.Release)
	seg := &Segment{ID: Unescape(fields[0], delims.Release)}
	if len(fields) == 1 {
		return seg
	}
	seg.Elements = make([]Element, len(fields)-1)
	splitComponents := seg.ID != "ISA" && delims.Component != 0
	for i, f := range fields[1:] {
		if splitComponents {
			comps := SplitEscaped(f, delims.Component, delims.Release)
			if len(comps) > 1 {
				for j := range comps {
					comps[j] = Unescape(comps[j], delims.Release)
				}
				seg.Elements[i] = Element{Values: comps, Composite: true}
				continue
			}
		}
		seg.Elements[i] = Simple(Unescape(f, delims.Release))
	}
	return seg
}
