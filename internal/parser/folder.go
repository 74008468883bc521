package parser

import (
	"strings"

	"github.com/ginjaninja78/edi-codec/internal/edi"
)

// =============================================================================
// ENVELOPE LEVELS
// =============================================================================

// Level of an envelope segment in the hierarchy.
type Level int

const (
	LevelInterchange Level = iota
	LevelGroup
	LevelTransaction
)

func (l Level) String() string {
	switch l {
	case LevelInterchange:
		return "interchange"
	case LevelGroup:
		return "group"
	default:
		return "transaction"
	}
}

// envelopeTag describes one header or trailer tag.
type envelopeTag struct {
	level  Level
	opener bool

	// control is the element holding the control number.
	control int
}

var envelopeTags = map[edi.Dialect]map[string]envelopeTag{
	edi.X12: {
		"ISA": {LevelInterchange, true, 13},
		"IEA": {LevelInterchange, false, 2},
		"GS":  {LevelGroup, true, 6},
		"GE":  {LevelGroup, false, 2},
		"ST":  {LevelTransaction, true, 2},
		"SE":  {LevelTransaction, false, 2},
	},
	edi.EDIFACT: {
		"UNB": {LevelInterchange, true, 5},
		"UNZ": {LevelInterchange, false, 2},
		"UNG": {LevelGroup, true, 5},
		"UNE": {LevelGroup, false, 2},
		"UNH": {LevelTransaction, true, 1},
		"UNT": {LevelTransaction, false, 2},
	},
}

// EnvelopeTag reports the level of an envelope segment and whether it opens
// or closes the level. ok is false for body segments.
func EnvelopeTag(d edi.Dialect, id string) (level Level, opener bool, ok bool) {
	tag, ok := envelopeTags[d][id]
	return tag.level, tag.opener, ok
}

// IsTrailer reports whether id closes an envelope level.
func IsTrailer(d edi.Dialect, id string) bool {
	_, opener, ok := EnvelopeTag(d, id)
	return ok && !opener
}

// ControlNumber returns the control number carried by an envelope segment.
func ControlNumber(d edi.Dialect, seg *edi.Segment) string {
	if seg == nil {
		return ""
	}
	tag, ok := envelopeTags[d][seg.ID]
	if !ok {
		return ""
	}
	return strings.TrimSpace(seg.Value(tag.control))
}

// =============================================================================
// FOLDER
// =============================================================================

// folder builds the envelope tree from a flat segment sequence using a stack
// of open levels. Envelope defects are recorded, never returned.
type folder struct {
	doc     *edi.Document
	dialect edi.Dialect

	ic  *edi.Interchange
	grp *edi.Group
	tx  *edi.Transaction

	txCount int
	errs    []*edi.StructuralError
}

func newFolder(doc *edi.Document) *folder {
	return &folder{doc: doc, dialect: doc.Info.Dialect}
}

// push adds the next segment in document order.
func (f *folder) push(seg *edi.Segment) {
	f.doc.Segments = append(f.doc.Segments, seg)

	tag, ok := envelopeTags[f.dialect][seg.ID]
	switch {
	case !ok:
		f.body(seg)
	case tag.opener:
		f.open(tag.level, seg)
	default:
		f.close(tag.level, seg)
	}
}

// finish reports every level still open at end of stream.
func (f *folder) finish() []*edi.StructuralError {
	f.closeTransaction()
	f.closeGroup()
	f.closeInterchange()
	return f.errs
}

func (f *folder) body(seg *edi.Segment) {
	switch {
	case f.tx != nil:
		f.tx.Segments = append(f.tx.Segments, seg)
	case f.grp != nil:
		f.grp.Orphans = append(f.grp.Orphans, seg)
	case f.ic != nil:
		f.ic.Orphans = append(f.ic.Orphans, seg)
	default:
		f.doc.Stray = append(f.doc.Stray, seg)
	}
}

// -----------------------------------------------------------------------------
// Openers
// -----------------------------------------------------------------------------

func (f *folder) open(level Level, seg *edi.Segment) {
	switch level {
	case LevelInterchange:
		f.closeTransaction()
		f.closeGroup()
		f.closeInterchange()
		f.ic = f.newInterchange(seg)
		f.doc.Interchanges = append(f.doc.Interchanges, f.ic)

	case LevelGroup:
		f.closeTransaction()
		f.closeGroup()
		f.ensureInterchange()
		f.grp = f.newGroup(seg)
		f.ic.Groups = append(f.ic.Groups, f.grp)

	case LevelTransaction:
		f.closeTransaction()
		f.ensureGroup()
		f.txCount++
		f.tx = f.newTransaction(seg)
		f.grp.Transactions = append(f.grp.Transactions, f.tx)
	}
}

func (f *folder) ensureInterchange() {
	if f.ic != nil {
		return
	}
	f.ic = &edi.Interchange{Implicit: true}
	f.doc.Interchanges = append(f.doc.Interchanges, f.ic)
}

func (f *folder) ensureGroup() {
	if f.grp != nil {
		return
	}
	f.ensureInterchange()
	f.grp = &edi.Group{Implicit: true, Version: f.doc.Info.Version}
	f.ic.Groups = append(f.ic.Groups, f.grp)
}

func (f *folder) newInterchange(seg *edi.Segment) *edi.Interchange {
	ic := &edi.Interchange{Header: seg, ControlNumber: ControlNumber(f.dialect, seg)}
	if f.dialect == edi.X12 {
		ic.SenderQualifier = strings.TrimSpace(seg.Value(5))
		ic.SenderID = strings.TrimSpace(seg.Value(6))
		ic.ReceiverQualifier = strings.TrimSpace(seg.Value(7))
		ic.ReceiverID = strings.TrimSpace(seg.Value(8))
		return ic
	}
	ic.SenderID = seg.Get(edi.Path{Element: 2, Component: 1})
	ic.SenderQualifier = seg.Get(edi.Path{Element: 2, Component: 2})
	ic.ReceiverID = seg.Get(edi.Path{Element: 3, Component: 1})
	ic.ReceiverQualifier = seg.Get(edi.Path{Element: 3, Component: 2})
	return ic
}

func (f *folder) newGroup(seg *edi.Segment) *edi.Group {
	g := &edi.Group{
		Header:        seg,
		ControlNumber: ControlNumber(f.dialect, seg),
		FunctionalID:  seg.Value(1),
	}
	if f.dialect == edi.X12 {
		g.SenderID = seg.Value(2)
		g.ReceiverID = seg.Value(3)
		g.Version = seg.Value(8)
		if len(g.Version) > 6 {
			g.Version = g.Version[:6]
		}
	} else {
		g.SenderID = seg.Get(edi.Path{Element: 2, Component: 1})
		g.ReceiverID = seg.Get(edi.Path{Element: 3, Component: 1})
		g.Version = strings.ToUpper(seg.Get(edi.Path{Element: 7, Component: 1}) + seg.Get(edi.Path{Element: 7, Component: 2}))
	}
	if g.Version == "" {
		g.Version = f.doc.Info.Version
	}
	return g
}

func (f *folder) newTransaction(seg *edi.Segment) *edi.Transaction {
	t := &edi.Transaction{
		Header:        seg,
		Index:         f.txCount,
		ControlNumber: ControlNumber(f.dialect, seg),
	}
	if f.dialect == edi.X12 {
		t.SetID = seg.Value(1)
		t.Version = f.grp.Version
		if ref := seg.Value(3); len(ref) >= 6 {
			t.Version = ref[:6]
		}
	} else {
		t.SetID = seg.Get(edi.Path{Element: 2, Component: 1})
		t.Version = strings.ToUpper(seg.Get(edi.Path{Element: 2, Component: 2}) + seg.Get(edi.Path{Element: 2, Component: 3}))
	}
	if t.Version == "" {
		t.Version = f.doc.Info.Version
	}
	return t
}

// -----------------------------------------------------------------------------
// Closers
// -----------------------------------------------------------------------------

func (f *folder) close(level Level, seg *edi.Segment) {
	switch level {
	case LevelTransaction:
		if f.tx == nil {
			f.unexpected(seg)
			return
		}
		f.tx.Trailer = seg
		f.checkControl(seg, f.tx.Header, f.tx.Index)
		f.tx = nil

	case LevelGroup:
		f.closeTransaction()
		if f.grp == nil || f.grp.Implicit {
			f.unexpected(seg)
			return
		}
		f.grp.Trailer = seg
		f.checkControl(seg, f.grp.Header, 0)
		f.grp = nil

	case LevelInterchange:
		f.closeTransaction()
		f.closeGroup()
		if f.ic == nil || f.ic.Implicit {
			f.unexpected(seg)
			return
		}
		f.ic.Trailer = seg
		f.checkControl(seg, f.ic.Header, 0)
		f.ic = nil
	}
}

// closeTransaction closes an open transaction that never saw its trailer.
func (f *folder) closeTransaction() {
	if f.tx == nil {
		return
	}
	f.missing(f.tx.Header, f.tx.Index)
	f.tx = nil
}

// closeGroup closes an open group. Implicit groups have no header and need
// no trailer.
func (f *folder) closeGroup() {
	if f.grp == nil {
		return
	}
	if !f.grp.Implicit {
		f.missing(f.grp.Header, 0)
	}
	f.grp = nil
}

func (f *folder) closeInterchange() {
	if f.ic == nil {
		return
	}
	if !f.ic.Implicit {
		f.missing(f.ic.Header, 0)
	}
	f.ic = nil
}

// -----------------------------------------------------------------------------
// Errors
// -----------------------------------------------------------------------------

func (f *folder) missing(header *edi.Segment, txIndex int) {
	f.errs = append(f.errs, &edi.StructuralError{
		Reason:           "missing " + trailerName(header.ID),
		Code:             edi.CodeMissingTrailer,
		SegmentID:        header.ID,
		Position:         header.Position,
		ControlNumber:    ControlNumber(f.dialect, header),
		TransactionIndex: txIndex,
	})
}

func (f *folder) unexpected(seg *edi.Segment) {
	f.doc.Stray = append(f.doc.Stray, seg)
	f.errs = append(f.errs, &edi.StructuralError{
		Reason:        "unexpected trailer " + seg.ID,
		Code:          edi.CodeUnexpectedTrailer,
		SegmentID:     seg.ID,
		Position:      seg.Position,
		ControlNumber: ControlNumber(f.dialect, seg),
	})
}

func (f *folder) checkControl(trailer, header *edi.Segment, txIndex int) {
	want := ControlNumber(f.dialect, header)
	got := ControlNumber(f.dialect, trailer)
	if want == got {
		return
	}
	f.errs = append(f.errs, &edi.StructuralError{
		Reason:           "control number mismatch: " + header.ID + " " + want + " / " + trailer.ID + " " + got,
		Code:             edi.CodeControlMismatch,
		SegmentID:        trailer.ID,
		Position:         trailer.Position,
		ControlNumber:    got,
		TransactionIndex: txIndex,
	})
}

var trailerNames = map[string]string{
	"ISA": "IEA", "GS": "GE", "ST": "SE",
	"UNB": "UNZ", "UNG": "UNE", "UNH": "UNT",
}

func trailerName(header string) string {
	if t, ok := trailerNames[header]; ok {
		return t
	}
	return "trailer"
}
