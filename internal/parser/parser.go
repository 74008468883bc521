// =============================================================================
// EDI Codec - Structural Parser
// =============================================================================
//
// The parser turns a detected payload into a Document in two steps:
//   1. Tokenize : split on the segment terminator, then on the element and
//                 component separators (release character honoured)
//   2. Fold     : build the Interchange -> Group -> Transaction tree with a
//                 stack of open envelope levels
//
// MODES:
//   - In-memory : Parse over a []byte payload
//   - Streaming : ParseReader over an io.Reader; only one raw segment is
//                 buffered at a time, the tree itself is still built
//
// Envelope defects never abort parsing. They are returned alongside the
// document as StructuralErrors so validation can still run on whatever
// structure did parse. Only cancellation stops the parser early.
//
// =============================================================================

package parser

import (
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"

	"github.com/ginjaninja78/edi-codec/internal/edi"
)

// checkInterval is how many segments are folded between context checks.
const checkInterval = 512

// =============================================================================
// OPTIONS AND RESULT
// =============================================================================

// Options tune streaming input.
type Options struct {
	// MaxSegmentSize is the largest raw segment accepted by the streaming
	// tokenizer. Zero uses DefaultMaxSegmentSize.
	MaxSegmentSize int

	// Encoding names the character set of the input (IANA name, e.g.
	// "ISO-8859-1"). Empty or UTF-8 input is read as is.
	Encoding string
}

// Result is a parsed document plus the envelope defects found while folding.
type Result struct {
	Document *edi.Document
	Errors   []*edi.StructuralError
}

// Issues converts the structural errors into validation issues.
func (r *Result) Issues() edi.Issues {
	out := make(edi.Issues, 0, len(r.Errors))
	for _, e := range r.Errors {
		out = append(out, e.Issue())
	}
	return out
}

// =============================================================================
// PARSING
// =============================================================================

// Parse tokenizes and folds an in-memory payload.
//
// PARAMETERS:
//   - ctx: Checked every 512 segments; cancellation aborts the parse.
//   - payload: The EDI text returned by the detector.
//   - info: The detected dialect information.
//
// RETURNS:
//   - The document and its structural errors.
//   - A *edi.StructuralError with reason "aborted" when ctx is done.
func Parse(ctx context.Context, payload []byte, info edi.DialectInfo) (*Result, error) {
	tokens := Tokenize(payload, info)

	doc := &edi.Document{
		Info:          info,
		ServiceString: tokens.ServiceString,
		ServiceSuffix: tokens.ServiceSuffix,
		Segments:      make([]*edi.Segment, 0, len(tokens.Segments)),
	}
	f := newFolder(doc)
	for i, seg := range tokens.Segments {
		if i%checkInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, edi.Aborted(err)
			}
		}
		f.push(seg)
	}

	return &Result{Document: doc, Errors: f.finish()}, nil
}

// ParseReader tokenizes and folds a streamed payload.
//
// PARAMETERS:
//   - ctx: Checked every 512 segments; cancellation aborts the parse.
//   - r: The payload reader, positioned at the first segment.
//   - info: The detected dialect information.
//   - opts: Segment size bound and input encoding.
//
// RETURNS:
//   - The document and its structural errors.
//   - An error when reading fails, a segment exceeds the size bound, or the
//     parse was aborted.
func ParseReader(ctx context.Context, r io.Reader, info edi.DialectInfo, opts Options) (*Result, error) {
	r, err := DecodeReader(r, opts.Encoding)
	if err != nil {
		return nil, err
	}

	doc := &edi.Document{Info: info}
	f := newFolder(doc)
	tok := NewTokenizer(r, info, opts.MaxSegmentSize)

	n := 0
	for tok.Next() {
		if n%checkInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, edi.Aborted(err)
			}
		}
		n++
		f.push(tok.Segment())
	}
	if err := tok.Err(); err != nil {
		return nil, fmt.Errorf("failed to read segment %d: %w", n+1, err)
	}
	doc.ServiceString, doc.ServiceSuffix = tok.ServiceString()

	return &Result{Document: doc, Errors: f.finish()}, nil
}

// =============================================================================
// INPUT ENCODING
// =============================================================================

// lookupEncoding resolves an IANA charset name. A nil encoding means the
// input needs no decoding.
func lookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "", "UTF-8", "UTF8", "US-ASCII", "ASCII":
		return nil, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("unknown input encoding %q: %w", name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported input encoding %q", name)
	}
	return enc, nil
}

// Decode converts an in-memory payload to UTF-8.
func Decode(raw []byte, encodingName string) ([]byte, error) {
	enc, err := lookupEncoding(encodingName)
	if err != nil || enc == nil {
		return raw, err
	}
	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s input: %w", encodingName, err)
	}
	return out, nil
}

// DecodeReader wraps r so it yields UTF-8.
func DecodeReader(r io.Reader, encodingName string) (io.Reader, error) {
	enc, err := lookupEncoding(encodingName)
	if err != nil || enc == nil {
		return r, err
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}
