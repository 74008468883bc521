// =============================================================================
// EDI Codec - Acknowledgment Generator
// =============================================================================
//
// This module builds the functional acknowledgment for a received document:
// an X12 997 or an EDIFACT CONTRL, in the dialect and with the delimiters of
// the document being acknowledged.
//
// RULES:
//   - One entry per transaction/message: "A" with no error-severity issues,
//     "R" otherwise
//   - One detail line per error (AK3 or UCS), plus an element line (AK4 or
//     UCD) when the element position is known
//   - Fresh control numbers, never equal to the source's
//   - Sender and receiver are swapped
//
// =============================================================================

package ack

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ginjaninja78/edi-codec/internal/edi"
	"github.com/ginjaninja78/edi-codec/internal/grammar"
	"github.com/ginjaninja78/edi-codec/internal/logging"
	"github.com/ginjaninja78/edi-codec/pkg/utils"
)

// Status is the acknowledgment code of one transaction.
type Status string

const (
	StatusAccepted Status = "A"
	StatusRejected Status = "R"
)

// Detail is one reported error.
type Detail struct {
	SegmentID string

	// Position is counted from the transaction header (header = 1).
	Position          int
	ElementPosition   int
	ComponentPosition int

	// Code is the dialect syntax error code (AK304 / 0085) and ElementCode
	// the element-level code (AK403 / 0085), empty when not applicable.
	Code        string
	ElementCode string

	Issue edi.Issue
}

// Entry is the acknowledgment of one transaction.
type Entry struct {
	TransactionIndex int
	SetID            string
	ControlNumber    string
	Status           Status
	Details          []Detail
}

// Acknowledgment is a generated 997 or CONTRL.
type Acknowledgment struct {
	Dialect edi.Dialect

	// SetID is "997" or "CONTRL".
	SetID    string
	Entries  []Entry
	Segments []*edi.Segment
	Text     []byte
}

// Accepted counts accepted entries.
func (a *Acknowledgment) Accepted() int {
	n := 0
	for _, e := range a.Entries {
		if e.Status == StatusAccepted {
			n++
		}
	}
	return n
}

// Rejected counts rejected entries.
func (a *Acknowledgment) Rejected() int {
	return len(a.Entries) - a.Accepted()
}

// Config holds the generator collaborators. Zero values select defaults.
type Config struct {
	Registry       *grammar.Registry
	ControlNumbers edi.ControlNumbers
	Now            func() time.Time
	Logger         logrus.FieldLogger
}

// Generator builds acknowledgments. It is safe for concurrent use when its
// ControlNumbers source is.
type Generator struct {
	registry *grammar.Registry
	controls edi.ControlNumbers
	now      func() time.Time
	logger   logrus.FieldLogger
}

// NewGenerator creates a generator.
func NewGenerator(cfg Config) *Generator {
	g := &Generator{
		registry: cfg.Registry,
		controls: cfg.ControlNumbers,
		now:      cfg.Now,
		logger:   cfg.Logger,
	}
	if g.registry == nil {
		g.registry = grammar.Builtin()
	}
	if g.controls == nil {
		g.controls = edi.NewSequence()
	}
	if g.now == nil {
		g.now = time.Now
	}
	if g.logger == nil {
		g.logger = logging.Discard()
	}
	return g
}

// Generate acknowledges doc given its validation issues.
//
// PARAMETERS:
//   - doc: The parsed (and possibly corrected) source document.
//   - issues: The final issue list for doc.
//
// RETURNS:
//   - The acknowledgment, or nil when the dialect has none.
func (g *Generator) Generate(doc *edi.Document, issues edi.Issues) *Acknowledgment {
	if doc == nil {
		return nil
	}

	b := &builder{
		g:      g,
		doc:    doc,
		issues: issues,
		delims: doc.Info.Delimiters,
		stamp:  g.now(),
	}
	switch doc.Info.Dialect {
	case edi.X12:
		b.out = &Acknowledgment{Dialect: edi.X12, SetID: "997"}
		for _, ic := range doc.Interchanges {
			b.x12(ic)
		}
	case edi.EDIFACT:
		b.out = &Acknowledgment{Dialect: edi.EDIFACT, SetID: "CONTRL"}
		for _, ic := range doc.Interchanges {
			b.edifact(ic)
		}
	default:
		return nil
	}

	b.out.Segments = b.segments
	b.out.Text = b.render()

	g.logger.WithFields(logrus.Fields{
		"dialect":  b.out.Dialect,
		"accepted": b.out.Accepted(),
		"rejected": b.out.Rejected(),
	}).Debug("acknowledgment generated")
	return b.out
}

// =============================================================================
// ENTRIES
// =============================================================================

// envelopeCodes are findings about a transaction's own envelope. They are
// reported at the transaction header.
var envelopeCodes = map[string]bool{
	edi.CodeMissingTrailer:         true,
	edi.CodeControlMismatch:        true,
	edi.CodeCountMismatch:          true,
	edi.CodeImplicitEnvelope:       true,
	edi.CodeUnsupportedTransaction: true,
}

func entry(tx *edi.Transaction, issues edi.Issues, dialect edi.Dialect) Entry {
	e := Entry{
		TransactionIndex: tx.Index,
		SetID:            tx.SetID,
		ControlNumber:    tx.ControlNumber,
		Status:           StatusAccepted,
	}
	for _, iss := range issues.ForTransaction(tx.Index) {
		if !iss.IsError() {
			continue
		}
		e.Status = StatusRejected

		d := Detail{Issue: iss, SegmentID: iss.SegmentID}
		if envelopeCodes[iss.Code] || iss.SegmentPosition == 0 {
			d.Position = 1
			if tx.Header != nil {
				d.SegmentID = tx.Header.ID
			}
		} else {
			d.Position = tx.RelativePosition(iss.SegmentPosition)
			d.ElementPosition = iss.ElementPosition
			d.ComponentPosition = iss.ComponentPosition
		}

		if dialect == edi.X12 {
			d.Code = X12SegmentCode(iss.Code)
			if c, ok := X12ElementCode(iss.Code); ok && d.ElementPosition > 0 {
				d.ElementCode = c
			} else {
				d.ElementPosition, d.ComponentPosition = 0, 0
			}
		} else {
			d.Code = EDIFACTCode(iss.Code)
			if d.ElementPosition > 0 {
				d.ElementCode = d.Code
			}
		}
		e.Details = append(e.Details, d)
	}
	return e
}

// transactionCodes returns the distinct AK502 codes for a rejected entry.
func transactionCodes(e Entry) []string {
	var out []string
	seen := make(map[string]bool)
	for _, d := range e.Details {
		c := lookup(x12TransactionCodes, d.Issue.Code, x12TransactionDefault)
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

// envelopeErrors returns the error-severity issues reported on one of the
// given envelope segments.
func envelopeErrors(issues edi.Issues, segments ...*edi.Segment) edi.Issues {
	var out edi.Issues
	for _, iss := range issues {
		if iss.TransactionIndex != 0 || !iss.IsError() {
			continue
		}
		for _, seg := range segments {
			if seg != nil && seg.Position == iss.SegmentPosition {
				out = append(out, iss)
				break
			}
		}
	}
	return out
}

// =============================================================================
// BUILDER
// =============================================================================

type builder struct {
	g      *Generator
	doc    *edi.Document
	issues edi.Issues
	delims edi.Delimiters
	stamp  time.Time

	segments []*edi.Segment
	out      *Acknowledgment
}

func (b *builder) add(segs ...*edi.Segment) {
	b.segments = append(b.segments, segs...)
}

// -----------------------------------------------------------------------------
// X12 997
// -----------------------------------------------------------------------------

func (b *builder) x12(ic *edi.Interchange) {
	if len(ic.Groups) == 0 {
		return
	}

	isa11, isa12, isa15 := "U", "00401", "P"
	if ic.Header != nil {
		isa11 = valueOr(ic.Header.Value(11), isa11)
		isa12 = valueOr(ic.Header.Value(12), isa12)
		isa15 = valueOr(ic.Header.Value(15), isa15)
	}

	icn := edi.NextDistinct(b.g.controls, "%09d", ic.ControlNumber)
	b.add(edi.NewSegment("ISA",
		"00", strings.Repeat(" ", 10), "00", strings.Repeat(" ", 10),
		valueOr(ic.ReceiverQualifier, "ZZ"), padID(ic.ReceiverID),
		valueOr(ic.SenderQualifier, "ZZ"), padID(ic.SenderID),
		b.stamp.Format("060102"), b.stamp.Format("1504"),
		isa11, isa12, icn, "0", isa15, string(b.delims.Component),
	))

	sender, receiver, version := ic.ReceiverID, ic.SenderID, b.doc.Info.Version
	for _, grp := range ic.Groups {
		if !grp.Implicit {
			sender, receiver = grp.ReceiverID, grp.SenderID
			version = valueOr(grp.Version, version)
			break
		}
	}

	var avoid []string
	for _, grp := range ic.Groups {
		avoid = append(avoid, grp.ControlNumber)
	}
	gcn := edi.NextDistinct(b.g.controls, "%d", avoid...)
	b.add(edi.NewSegment("GS",
		"FA", sender, receiver,
		b.stamp.Format("20060102"), b.stamp.Format("1504"), gcn, "X", valueOr(version, "004010"),
	))
	for _, grp := range ic.Groups {
		b.x12Group(grp)
	}
	b.add(
		edi.NewSegment("GE", strconv.Itoa(len(ic.Groups)), gcn),
		edi.NewSegment("IEA", "1", icn),
	)
}

// x12Group writes one 997 transaction acknowledging one source group.
func (b *builder) x12Group(grp *edi.Group) {
	var avoid []string
	for _, tx := range grp.Transactions {
		avoid = append(avoid, tx.ControlNumber)
	}
	stcn := edi.NextDistinct(b.g.controls, "%04d", avoid...)
	start := len(b.segments)
	b.add(edi.NewSegment("ST", "997", stcn))

	b.add(edi.NewSegment("AK1", b.functionalID(grp), valueOr(grp.ControlNumber, "0")))

	accepted := 0
	for _, tx := range grp.Transactions {
		e := entry(tx, b.issues, edi.X12)
		b.out.Entries = append(b.out.Entries, e)

		b.add(edi.NewSegment("AK2", tx.SetID, tx.ControlNumber))
		for _, d := range e.Details {
			b.add(edi.NewSegment("AK3", d.SegmentID, strconv.Itoa(d.Position), "", d.Code))
			if d.ElementCode != "" {
				pos := edi.Simple(strconv.Itoa(d.ElementPosition))
				if d.ComponentPosition > 0 {
					pos = edi.NewComposite(strconv.Itoa(d.ElementPosition), strconv.Itoa(d.ComponentPosition))
				}
				b.add(&edi.Segment{ID: "AK4", Elements: []edi.Element{pos, edi.Simple(""), edi.Simple(d.ElementCode)}})
			}
		}

		ak5 := edi.NewSegment("AK5", string(e.Status))
		if e.Status == StatusRejected {
			codes := transactionCodes(e)
			if len(codes) > 5 {
				codes = codes[:5]
			}
			ak5 = edi.NewSegment("AK5", append([]string{string(e.Status)}, codes...)...)
		} else {
			accepted++
		}
		b.add(ak5)
	}

	received := len(grp.Transactions)
	included := received
	if grp.Trailer != nil {
		if n, err := strconv.Atoi(strings.TrimSpace(grp.Trailer.Value(1))); err == nil {
			included = n
		}
	}

	groupErrors := envelopeErrors(b.issues, grp.Header, grp.Trailer)
	status := "P"
	switch {
	case received > 0 && accepted == 0:
		status = "R"
	case accepted == received && len(groupErrors) > 0:
		status = "E"
	case accepted == received:
		status = "A"
	}
	ak9 := []string{status, strconv.Itoa(included), strconv.Itoa(received), strconv.Itoa(accepted)}
	seen := make(map[string]bool)
	for _, iss := range groupErrors {
		c, ok := x12GroupCodes[iss.Code]
		if ok && !seen[c] && len(ak9) < 9 {
			seen[c] = true
			ak9 = append(ak9, c)
		}
	}
	b.add(edi.NewSegment("AK9", ak9...))

	count := len(b.segments) - start + 1
	b.add(edi.NewSegment("SE", strconv.Itoa(count), stcn))
}

// functionalID returns the group's functional identifier, falling back to
// the table of its first transaction for groups without a GS.
func (b *builder) functionalID(grp *edi.Group) string {
	if grp.FunctionalID != "" {
		return grp.FunctionalID
	}
	for _, tx := range grp.Transactions {
		if schema, ok := b.g.registry.Transaction(edi.X12, tx.Version, tx.SetID); ok && schema.FunctionalID != "" {
			return schema.FunctionalID
		}
	}
	return "ZZ"
}

func padID(id string) string {
	return utils.PadRight(utils.Truncate(id, 15), 15, ' ')
}

// -----------------------------------------------------------------------------
// EDIFACT CONTRL
// -----------------------------------------------------------------------------

func (b *builder) edifact(ic *edi.Interchange) {
	syntax := edi.NewComposite("UNOC", "3")
	if ic.Header != nil && !ic.Header.Element(1).IsEmpty() {
		syntax = ic.Header.Element(1)
	}

	ref := edi.NextDistinct(b.g.controls, "%d", ic.ControlNumber)
	b.add(&edi.Segment{ID: "UNB", Elements: []edi.Element{
		syntax,
		party(ic.ReceiverID, ic.ReceiverQualifier),
		party(ic.SenderID, ic.SenderQualifier),
		edi.NewComposite(b.stamp.Format("060102"), b.stamp.Format("1504")),
		edi.Simple(ref),
	}})

	var avoid []string
	var txs []*edi.Transaction
	for _, grp := range ic.Groups {
		for _, tx := range grp.Transactions {
			avoid = append(avoid, tx.ControlNumber)
			txs = append(txs, tx)
		}
	}
	mref := edi.NextDistinct(b.g.controls, "%d", avoid...)
	start := len(b.segments)

	directory := "96A"
	if v := strings.TrimPrefix(b.doc.Info.Version, "D"); v != "" {
		directory = v
	}
	b.add(&edi.Segment{ID: "UNH", Elements: []edi.Element{
		edi.Simple(mref),
		edi.NewComposite("CONTRL", "D", directory, "UN"),
	}})

	entries := make([]Entry, 0, len(txs))
	rejected := 0
	for _, tx := range txs {
		e := entry(tx, b.issues, edi.EDIFACT)
		if e.Status == StatusRejected {
			rejected++
		}
		entries = append(entries, e)
	}

	var envelope []*edi.Segment
	envelope = append(envelope, ic.Header, ic.Trailer)
	for _, grp := range ic.Groups {
		envelope = append(envelope, grp.Header, grp.Trailer)
	}
	icErrors := envelopeErrors(b.issues, envelope...)

	uci := &edi.Segment{ID: "UCI", Elements: []edi.Element{
		edi.Simple(ic.ControlNumber),
		party(ic.SenderID, ic.SenderQualifier),
		party(ic.ReceiverID, ic.ReceiverQualifier),
		edi.Simple(actionAccepted),
	}}
	if len(icErrors) > 0 || (len(txs) > 0 && rejected == len(txs)) {
		uci.Elements[3] = edi.Simple(actionRejected)
	}
	if len(icErrors) > 0 {
		uci.Elements = append(uci.Elements, edi.Simple(EDIFACTCode(icErrors[0].Code)))
	}
	b.add(uci)

	for i, tx := range txs {
		e := entries[i]
		b.out.Entries = append(b.out.Entries, e)

		ucm := &edi.Segment{ID: "UCM", Elements: []edi.Element{
			edi.Simple(tx.ControlNumber),
			messageIdentifier(tx),
			edi.Simple(actionAccepted),
		}}
		if e.Status == StatusRejected {
			ucm.Elements[2] = edi.Simple(actionRejected)
			for _, d := range e.Details {
				if envelopeCodes[d.Issue.Code] {
					ucm.Elements = append(ucm.Elements, edi.Simple(d.Code))
					break
				}
			}
		}
		b.add(ucm)

		for _, d := range e.Details {
			if d.ElementCode == "" {
				b.add(edi.NewSegment("UCS", strconv.Itoa(d.Position), d.Code))
				continue
			}
			b.add(edi.NewSegment("UCS", strconv.Itoa(d.Position)))
			pos := edi.Simple(strconv.Itoa(d.ElementPosition))
			if d.ComponentPosition > 0 {
				pos = edi.NewComposite(strconv.Itoa(d.ElementPosition), strconv.Itoa(d.ComponentPosition))
			}
			b.add(&edi.Segment{ID: "UCD", Elements: []edi.Element{edi.Simple(d.ElementCode), pos}})
		}
	}

	count := len(b.segments) - start + 1
	b.add(
		edi.NewSegment("UNT", strconv.Itoa(count), mref),
		edi.NewSegment("UNZ", "1", ref),
	)
}

// messageIdentifier copies the S009 of the acknowledged message.
func messageIdentifier(tx *edi.Transaction) edi.Element {
	if tx.Header != nil && !tx.Header.Element(2).IsEmpty() {
		return tx.Header.Element(2)
	}
	return edi.Simple(tx.SetID)
}

func party(id, qualifier string) edi.Element {
	if qualifier == "" {
		return edi.Simple(id)
	}
	return edi.NewComposite(id, qualifier)
}

// -----------------------------------------------------------------------------
// Rendering
// -----------------------------------------------------------------------------

// render writes the acknowledgment with the source delimiters and line
// breaks. An EDIFACT source that declared UNA gets one too.
func (b *builder) render() []byte {
	sep := lineBreak(b.doc)
	text := edi.Render(b.segments, b.delims, sep)
	if b.out.Dialect == edi.EDIFACT && b.doc.Info.Explicit {
		return append([]byte(b.delims.ServiceString()+sep), text...)
	}
	return text
}

func lineBreak(doc *edi.Document) string {
	for _, seg := range doc.Segments {
		if seg.Suffix != "" {
			return seg.Suffix
		}
	}
	return ""
}

func valueOr(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

// String renders a one-line summary.
func (a *Acknowledgment) String() string {
	return fmt.Sprintf("%s %s: %d accepted, %d rejected", a.Dialect, a.SetID, a.Accepted(), a.Rejected())
}
