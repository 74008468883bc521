package parser

import (
	"bufio"
	"bytes"
	"io"

	"github.com/ginjaninja78/edi-codec/internal/edi"
)

// =============================================================================
// SEGMENT SCANNING
// =============================================================================

// DefaultMaxSegmentSize bounds the buffer of the streaming tokenizer.
const DefaultMaxSegmentSize = 1 << 20

// unaLength is the fixed width of the EDIFACT service string advice.
const unaLength = 9

// isSuffix reports whether c is layout whitespace following a terminator.
func isSuffix(c byte, d edi.Delimiters) bool {
	return c != d.Segment && (c == '\r' || c == '\n' || c == '\t' || c == ' ')
}

// splitSegment is a bufio.SplitFunc over raw segments. A token is the
// segment body, its terminator and any layout whitespace after it. Release
// characters are honoured so an escaped terminator never ends a segment.
func splitSegment(d edi.Delimiters) bufio.SplitFunc {
	return func(data []byte, atEOF bool) (int, []byte, error) {
		for i := 0; i < len(data); i++ {
			c := data[i]
			if d.Release != 0 && c == d.Release {
				i++
				continue
			}
			if c != d.Segment {
				continue
			}
			j := i + 1
			for j < len(data) && isSuffix(data[j], d) {
				j++
			}
			if j == len(data) && !atEOF {
				return 0, nil, nil
			}
			return j, data[:j], nil
		}
		if !atEOF || len(data) == 0 {
			return 0, nil, nil
		}
		return len(data), data, nil
	}
}

// splitService returns the length of a leading UNA service string plus its
// trailing whitespace, or 0 when data does not start with one.
func splitService(data []byte, d edi.Delimiters) int {
	if len(data) < unaLength || !bytes.HasPrefix(data, []byte("UNA")) {
		return 0
	}
	j := unaLength
	for j < len(data) && isSuffix(data[j], d) {
		j++
	}
	return j
}

// terminated reports whether body ends with an unescaped terminator.
func terminated(body []byte, d edi.Delimiters) bool {
	n := len(body)
	if n == 0 || body[n-1] != d.Segment {
		return false
	}
	if d.Release == 0 {
		return true
	}
	releases := 0
	for k := n - 2; k >= 0 && body[k] == d.Release; k-- {
		releases++
	}
	return releases%2 == 0
}

// makeSegment turns a scanned token into a segment. It returns nil and the
// whole token for an empty segment, so the caller can keep its bytes.
func makeSegment(tok []byte, d edi.Delimiters) (*edi.Segment, string) {
	end := len(tok)
	for end > 0 && isSuffix(tok[end-1], d) {
		end--
	}
	suffix := string(tok[end:])
	body := tok[:end]

	term := terminated(body, d)
	if term {
		body = body[:len(body)-1]
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, string(tok)
	}

	raw := string(body)
	seg := edi.ParseSegment(raw, d)
	seg.Raw = raw
	seg.Suffix = suffix
	seg.Unterminated = !term
	return seg, ""
}

// =============================================================================
// IN-MEMORY TOKENIZER
// =============================================================================

// Tokens is the output of Tokenize.
type Tokens struct {
	ServiceString string
	ServiceSuffix string
	Segments      []*edi.Segment
}

// Tokenize splits an in-memory payload into segments.
func Tokenize(payload []byte, info edi.DialectInfo) *Tokens {
	d := info.Delimiters
	out := &Tokens{}

	if info.Dialect == edi.EDIFACT {
		if n := splitService(payload, d); n > 0 {
			out.ServiceString = string(payload[:unaLength])
			out.ServiceSuffix = string(payload[unaLength:n])
			payload = payload[n:]
		}
	}

	split := splitSegment(d)
	for len(payload) > 0 {
		advance, tok, _ := split(payload, true)
		if advance == 0 {
			break
		}
		payload = payload[advance:]

		seg, loose := makeSegment(tok, d)
		if seg == nil {
			if n := len(out.Segments); n > 0 {
				out.Segments[n-1].Padding += loose
			} else {
				out.ServiceSuffix += loose
			}
			continue
		}
		seg.Position = len(out.Segments) + 1
		out.Segments = append(out.Segments, seg)
	}
	return out
}

// =============================================================================
// STREAMING TOKENIZER
// =============================================================================

// Tokenizer reads segments one at a time from an io.Reader, keeping at most
// one segment buffered.
//
// USAGE:
//
//	tok := NewTokenizer(r, info, DefaultMaxSegmentSize)
//	for tok.Next() {
//	    seg := tok.Segment()
//	}
//	if err := tok.Err(); err != nil { ... }
type Tokenizer struct {
	scanner *bufio.Scanner
	delims  edi.Delimiters

	serviceString string
	serviceSuffix string

	current  *edi.Segment
	position int
	err      error
}

// NewTokenizer creates a streaming tokenizer.
//
// PARAMETERS:
//   - r: The payload reader, already decoded to UTF-8 or ASCII.
//   - info: The detected dialect information.
//   - maxSegment: The largest segment accepted; 0 uses DefaultMaxSegmentSize.
func NewTokenizer(r io.Reader, info edi.DialectInfo, maxSegment int) *Tokenizer {
	if maxSegment <= 0 {
		maxSegment = DefaultMaxSegmentSize
	}
	t := &Tokenizer{delims: info.Delimiters}

	segments := splitSegment(info.Delimiters)
	checkService := info.Dialect == edi.EDIFACT
	split := func(data []byte, atEOF bool) (int, []byte, error) {
		if checkService {
			if len(data) < unaLength+1 && !atEOF {
				return 0, nil, nil
			}
			checkService = false
			if n := splitService(data, t.delims); n > 0 {
				if n == len(data) && !atEOF {
					checkService = true
					return 0, nil, nil
				}
				t.serviceString = string(data[:unaLength])
				t.serviceSuffix = string(data[unaLength:n])
				return n, nil, nil
			}
		}
		return segments(data, atEOF)
	}

	initial := 64 << 10
	if maxSegment < initial {
		initial = maxSegment
	}
	t.scanner = bufio.NewScanner(r)
	t.scanner.Buffer(make([]byte, 0, initial), maxSegment)
	t.scanner.Split(split)
	return t
}

// Next advances to the next segment. Returns false at end of input or on
// error.
func (t *Tokenizer) Next() bool {
	if t.err != nil {
		return false
	}
	for t.scanner.Scan() {
		seg, loose := makeSegment(t.scanner.Bytes(), t.delims)
		if seg == nil {
			if t.current != nil {
				t.current.Padding += loose
			} else {
				t.serviceSuffix += loose
			}
			continue
		}
		t.position++
		seg.Position = t.position
		t.current = seg
		return true
	}
	t.err = t.scanner.Err()
	return false
}

// Segment returns the current segment.
func (t *Tokenizer) Segment() *edi.Segment {
	return t.current
}

// ServiceString returns the UNA segment read from the stream, if any, and
// the whitespace that followed it.
func (t *Tokenizer) ServiceString() (string, string) {
	return t.serviceString, t.serviceSuffix
}

// Err returns any error that occurred while reading.
func (t *Tokenizer) Err() error {
	return t.err
}
