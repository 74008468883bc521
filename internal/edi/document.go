package edi

// =============================================================================
// ENVELOPE HIERARCHY
// =============================================================================
//
//   X12     : Interchange (ISA/IEA) -> Group (GS/GE) -> Transaction (ST/SE)
//   EDIFACT : Interchange (UNB/UNZ) -> Group (UNG/UNE, optional) -> Message (UNH/UNT)
//
// The tree nodes point at the same *Segment values held in Document.Segments,
// so a correction applied through either view is visible in both.
//
// =============================================================================

// Interchange is the outermost envelope.
type Interchange struct {
	Header  *Segment
	Trailer *Segment

	ControlNumber     string
	SenderQualifier   string
	SenderID          string
	ReceiverQualifier string
	ReceiverID        string

	// Implicit is set when the folder had to create this level because a
	// lower level opened without it.
	Implicit bool

	Groups  []*Group
	Orphans []*Segment
}

// Group is an X12 functional group or an EDIFACT group. EDIFACT messages sent
// without UNG are held in an implicit group.
type Group struct {
	Header  *Segment
	Trailer *Segment

	ControlNumber string
	FunctionalID  string
	SenderID      string
	ReceiverID    string
	Version       string
	Implicit      bool

	Transactions []*Transaction
	Orphans      []*Segment
}

// Transaction is an X12 transaction set or an EDIFACT message.
type Transaction struct {
	Header  *Segment
	Trailer *Segment

	// Index is the 1-based ordinal of the transaction within its document.
	Index int

	ControlNumber string
	SetID         string
	Version       string

	// Segments holds the body, excluding header and trailer.
	Segments []*Segment
}

// All returns header, body and trailer in document order.
func (t *Transaction) All() []*Segment {
	out := make([]*Segment, 0, len(t.Segments)+2)
	if t.Header != nil {
		out = append(out, t.Header)
	}
	out = append(out, t.Segments...)
	if t.Trailer != nil {
		out = append(out, t.Trailer)
	}
	return out
}

// RelativePosition converts a document position to a position counted from
// the transaction header (header = 1).
func (t *Transaction) RelativePosition(pos int) int {
	if t.Header == nil || pos < t.Header.Position {
		return 1
	}
	return pos - t.Header.Position + 1
}

// Document is a parsed EDI payload.
type Document struct {
	Info DialectInfo

	// ServiceString is the raw EDIFACT UNA segment (including its terminator)
	// and ServiceSuffix the layout and any empty segments that followed it.
	ServiceString string
	ServiceSuffix string

	// Segments lists every segment in source order.
	Segments []*Segment

	Interchanges []*Interchange

	// Stray holds segments found outside any interchange.
	Stray []*Segment
}

// SegmentAt returns the segment at a 1-based document position.
func (d *Document) SegmentAt(pos int) *Segment {
	if pos < 1 || pos > len(d.Segments) {
		return nil
	}
	return d.Segments[pos-1]
}

// Transactions returns every transaction in document order.
func (d *Document) Transactions() []*Transaction {
	var out []*Transaction
	for _, ic := range d.Interchanges {
		for _, g := range ic.Groups {
			out = append(out, g.Transactions...)
		}
	}
	return out
}

// Transaction returns the transaction with the given ordinal.
func (d *Document) Transaction(index int) *Transaction {
	for _, t := range d.Transactions() {
		if t.Index == index {
			return t
		}
	}
	return nil
}

// Renumber reassigns 1-based positions after segments were added or removed.
func (d *Document) Renumber() {
	for i, s := range d.Segments {
		s.Position = i + 1
	}
}
