// =============================================================================
// EDI Codec - Format Detector
// =============================================================================
//
// This module inspects a raw payload and decides how it must be read:
//   - X12     : identified by the fixed-width ISA header (106 bytes)
//   - EDIFACT : identified by a UNA service string or a UNB header
//   - Custom  : XML or JSON documents wrapping one of the above
//
// Nothing after detection can run without delimiters, so every failure here
// is a FramingError and aborts processing of the payload.
//
// =============================================================================

package detect

import (
	"bytes"
	"encoding/xml"
	"strings"
	"unicode"

	"github.com/gabriel-vasile/mimetype"
	"github.com/tidwall/gjson"

	"github.com/ginjaninja78/edi-codec/internal/edi"
	"github.com/ginjaninja78/edi-codec/internal/grammar"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// ISAHeaderLength is the fixed width of the X12 interchange header,
	// including its segment terminator.
	ISAHeaderLength = 106

	isaRepetitionOffset = 82
	isaVersionStart     = 84
	isaVersionEnd       = 89
	isaComponentOffset  = 104
	isaTerminatorOffset = 105

	// firstRepetitionVersion is the first X12 release with a repetition
	// separator in ISA11; earlier releases carry "U" there.
	firstRepetitionVersion = "00402"

	unaLength = 9

	// VersionScanLimit bounds how far into an EDIFACT payload the detector
	// looks for the first UNH.
	VersionScanLimit = 8 << 10

	// DefaultEDIFACTVersion is used when no UNH is found in the scan window.
	DefaultEDIFACTVersion = "D96A"
)

// isaSeparatorOffsets are the positions of every element separator in the
// ISA header.
var isaSeparatorOffsets = []int{3, 6, 17, 20, 31, 34, 50, 53, 69, 76, 81, 83, 89, 99, 101, 103}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// =============================================================================
// RESULT
// =============================================================================

// Result is the outcome of a detection.
type Result struct {
	Info edi.DialectInfo

	// Payload is the EDI text to parse: the input without BOM and leading
	// whitespace, or the unwrapped content of a custom sub-format.
	Payload []byte
}

// =============================================================================
// DETECTION
// =============================================================================

// Detect identifies the dialect and delimiters of raw.
//
// PARAMETERS:
//   - raw: The complete payload. For streamed input pass a prefix that holds
//     at least the interchange header (VersionScanLimit bytes is enough).
//
// RETURNS:
//   - The dialect information and the payload to parse.
//   - A *edi.FramingError when no dialect can be determined.
func Detect(raw []byte) (*Result, error) {
	data := trimLeading(raw)
	if len(data) == 0 {
		return nil, &edi.FramingError{Reason: "unrecognized dialect", Detail: "empty payload"}
	}

	if res, ok, err := detectPlain(data); ok || err != nil {
		return res, err
	}

	return detectWrapped(data)
}

// detectPlain recognizes X12 and EDIFACT by their leading segment tag.
// ok is false when the payload starts with neither.
func detectPlain(data []byte) (*Result, bool, error) {
	switch {
	case bytes.HasPrefix(data, []byte("ISA")):
		info, err := detectX12(data)
		if err != nil {
			return nil, true, err
		}
		return &Result{Info: info, Payload: data}, true, nil

	case bytes.HasPrefix(data, []byte("UNA")), bytes.HasPrefix(data, []byte("UNB")):
		info, err := detectEDIFACT(data)
		if err != nil {
			return nil, true, err
		}
		return &Result{Info: info, Payload: data}, true, nil
	}
	return nil, false, nil
}

// detectX12 reads the delimiters from the positional ISA header.
func detectX12(data []byte) (edi.DialectInfo, error) {
	if len(data) < ISAHeaderLength {
		return edi.DialectInfo{}, &edi.FramingError{
			Reason: "malformed interchange header",
			Detail: "ISA header shorter than 106 characters",
		}
	}

	elem := data[3]
	if !isDelimiter(elem) {
		return edi.DialectInfo{}, &edi.FramingError{
			Reason: "malformed interchange header",
			Detail: "invalid element separator",
		}
	}
	for _, off := range isaSeparatorOffsets {
		if data[off] != elem {
			return edi.DialectInfo{}, &edi.FramingError{
				Reason: "malformed interchange header",
				Detail: "element separator not found at fixed offsets",
			}
		}
	}

	component := data[isaComponentOffset]
	terminator := data[isaTerminatorOffset]
	if !isDelimiter(component) || terminator == elem || terminator == component || component == elem {
		return edi.DialectInfo{}, &edi.FramingError{
			Reason: "malformed interchange header",
			Detail: "component separator or segment terminator invalid",
		}
	}

	isaVersion := string(data[isaVersionStart:isaVersionEnd])
	delims := edi.Delimiters{
		Segment:   terminator,
		Element:   elem,
		Component: component,
		Decimal:   '.',
	}
	if isaVersion >= firstRepetitionVersion {
		if rep := data[isaRepetitionOffset]; isDelimiter(rep) && rep != elem && rep != component && rep != terminator {
			delims.Repetition = rep
		}
	}

	return edi.DialectInfo{
		Dialect:    edi.X12,
		Version:    grammar.X12VersionFromHeader(isaVersion),
		Delimiters: delims,
		Explicit:   true,
	}, nil
}

// detectEDIFACT reads the UNA service string when present, otherwise uses
// the syntax defaults, then scans for the message directory version.
func detectEDIFACT(data []byte) (edi.DialectInfo, error) {
	delims := edi.DefaultDelimiters(edi.EDIFACT)
	explicit := false
	body := data

	if bytes.HasPrefix(data, []byte("UNA")) {
		if len(data) < unaLength {
			return edi.DialectInfo{}, &edi.FramingError{Reason: "malformed service string", Detail: "UNA shorter than 9 characters"}
		}
		delims = edi.Delimiters{
			Component: data[3],
			Element:   data[4],
			Decimal:   data[5],
			Release:   data[6],
			Segment:   data[8],
		}
		if delims.Release == ' ' {
			delims.Release = 0
		}
		if delims.Component == delims.Element || delims.Element == delims.Segment || delims.Component == delims.Segment {
			return edi.DialectInfo{}, &edi.FramingError{Reason: "malformed service string", Detail: "delimiters are not distinct"}
		}
		explicit = true
		body = bytes.TrimLeftFunc(data[unaLength:], unicode.IsSpace)
		if !bytes.HasPrefix(body, []byte("UNB")) {
			return edi.DialectInfo{}, &edi.FramingError{Reason: "malformed service string", Detail: "UNA not followed by UNB"}
		}
	}

	return edi.DialectInfo{
		Dialect:    edi.EDIFACT,
		Version:    scanMessageVersion(body, delims),
		Delimiters: delims,
		Explicit:   explicit,
	}, nil
}

// scanMessageVersion returns the directory of the first UNH (e.g. "D96A").
func scanMessageVersion(data []byte, delims edi.Delimiters) string {
	if len(data) > VersionScanLimit {
		data = data[:VersionScanLimit]
	}
	for _, body := range edi.SplitEscaped(string(data), delims.Segment, delims.Release) {
		body = strings.TrimLeftFunc(body, unicode.IsSpace)
		if !strings.HasPrefix(body, "UNH") {
			continue
		}
		seg := edi.ParseSegment(body, delims)
		version := seg.Get(edi.Path{Element: 2, Component: 2})
		release := seg.Get(edi.Path{Element: 2, Component: 3})
		if version == "" || release == "" {
			break
		}
		return strings.ToUpper(version + release)
	}
	return DefaultEDIFACTVersion
}

// =============================================================================
// CUSTOM SUB-FORMATS
// =============================================================================

// IsWrapped reports whether a payload prefix starts an XML or JSON document
// rather than plain X12 or EDIFACT. Streaming callers use it to decide
// whether the whole input must be read before Detect can unwrap it.
func IsWrapped(prefix []byte) bool {
	data := trimLeading(prefix)
	if len(data) == 0 {
		return false
	}
	for _, tag := range []string{"ISA", "UNA", "UNB"} {
		if bytes.HasPrefix(data, []byte(tag)) {
			return false
		}
	}
	if data[0] == '<' || data[0] == '{' {
		return true
	}
	mt := mimetype.Detect(data)
	return mt.Is("text/xml") || mt.Is("application/json")
}

// detectWrapped sniffs XML and JSON envelopes carrying an EDI payload.
func detectWrapped(data []byte) (*Result, error) {
	mt := mimetype.Detect(data)

	var (
		inner   []byte
		wrapper string
	)
	looksXML := mt.Is("text/xml") || (data[0] == '<' && bytes.Contains(data, []byte("<EDI")))
	looksJSON := mt.Is("application/json") || (data[0] == '{' && gjson.ValidBytes(data))

	switch {
	case looksXML:
		text, ok := unwrapXML(data)
		if !ok {
			return nil, &edi.FramingError{Reason: "unrecognized dialect", Detail: "XML document without <EDI> element"}
		}
		inner, wrapper = text, edi.WrapperXML

	case looksJSON:
		text, ok := unwrapJSON(data)
		if !ok {
			return nil, &edi.FramingError{Reason: "unrecognized dialect", Detail: "JSON document without ediType payload"}
		}
		inner, wrapper = text, edi.WrapperJSON

	default:
		return nil, &edi.FramingError{Reason: "unrecognized dialect", Detail: "content type " + mt.String()}
	}

	inner = trimLeading(inner)
	res, ok, err := detectPlain(inner)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &edi.FramingError{Reason: "unrecognized dialect", Detail: wrapper + " payload is not X12 or EDIFACT"}
	}
	res.Info.Wrapper = wrapper
	return res, nil
}

// unwrapXML returns the character data of the first <EDI> element.
func unwrapXML(data []byte) ([]byte, bool) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, false
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "EDI" {
			continue
		}
		var el struct {
			Text string `xml:",chardata"`
		}
		if err := dec.DecodeElement(&el, &start); err != nil {
			return nil, false
		}
		return []byte(strings.TrimSpace(el.Text)), true
	}
}

// unwrapJSON returns the "payload" (or "data") string of a document that
// declares an "ediType".
func unwrapJSON(data []byte) ([]byte, bool) {
	if !gjson.GetBytes(data, "ediType").Exists() {
		return nil, false
	}
	for _, key := range []string{"payload", "data"} {
		if v := gjson.GetBytes(data, key); v.Type == gjson.String {
			return []byte(v.String()), true
		}
	}
	return nil, false
}

// =============================================================================
// HELPERS
// =============================================================================

func trimLeading(raw []byte) []byte {
	return bytes.TrimLeftFunc(bytes.TrimPrefix(raw, utf8BOM), unicode.IsSpace)
}

// isDelimiter reports whether c can act as a separator: printable or control
// punctuation, never a letter, digit or space.
func isDelimiter(c byte) bool {
	if c == ' ' || c >= 0x80 {
		return false
	}
	r := rune(c)
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
