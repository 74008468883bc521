// =============================================================================
// EDI Codec - Translator
// =============================================================================
//
// This module projects a parsed document from one dialect into the other.
//
// PROCESS:
//   1. Envelopes are synthesized for the target dialect, not mapped
//   2. Each transaction type is cross-referenced (214 -> IFTSTA, ...)
//   3. Each body segment is projected through the rules for its id
//   4. Target segments are ordered by the target transaction table
//   5. The result is rendered with the target's default delimiters,
//      re-parsed and validated against the target grammar
//
// Segments without a rule are reported as TranslationGapError warnings and
// left out of the output.
//
// =============================================================================

package translate

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ginjaninja78/edi-codec/internal/detect"
	"github.com/ginjaninja78/edi-codec/internal/edi"
	"github.com/ginjaninja78/edi-codec/internal/grammar"
	"github.com/ginjaninja78/edi-codec/internal/logging"
	"github.com/ginjaninja78/edi-codec/internal/parser"
	"github.com/ginjaninja78/edi-codec/internal/validation"
	"github.com/ginjaninja78/edi-codec/pkg/utils"
)

// Config holds the translator collaborators. Zero values select defaults.
type Config struct {
	Rules          *RuleSet
	ControlNumbers edi.ControlNumbers
	Validation     validation.Options
	Now            func() time.Time
	Logger         logrus.FieldLogger
}

// Translation is the output of one translation.
type Translation struct {
	Target   edi.DialectVersion
	Document *edi.Document
	Text     []byte

	// Gaps lists the source constructs that had no mapping rule.
	Gaps edi.Issues

	// Issues is the validation report of the translated document.
	Issues edi.Issues

	Transactions int
}

// Translator maps documents between dialects.
type Translator struct {
	registry  *grammar.Registry
	rules     *RuleSet
	controls  edi.ControlNumbers
	validator *validation.Validator
	now       func() time.Time
	logger    logrus.FieldLogger
}

// NewTranslator creates a translator over a grammar registry.
func NewTranslator(registry *grammar.Registry, cfg Config) *Translator {
	t := &Translator{
		registry:  registry,
		rules:     cfg.Rules,
		controls:  cfg.ControlNumbers,
		validator: validation.NewValidator(registry, cfg.Validation),
		now:       cfg.Now,
		logger:    cfg.Logger,
	}
	if t.rules == nil {
		t.rules = Builtin()
	}
	if t.controls == nil {
		t.controls = edi.NewSequence()
	}
	if t.now == nil {
		t.now = time.Now
	}
	if t.logger == nil {
		t.logger = logging.Discard()
	}
	return t
}

// Translate projects doc into the target dialect.
//
// PARAMETERS:
//   - ctx: Checked between transactions.
//   - doc: The parsed (and possibly corrected) source document.
//   - target: The target dialect; an empty version selects the registry default.
//
// RETURNS:
//   - The translation, including gaps and the target validation report.
//   - An aborted StructuralError on cancellation, or an error when the
//     target cannot be produced at all.
func (t *Translator) Translate(ctx context.Context, doc *edi.Document, target edi.DialectVersion) (*Translation, error) {
	if target.IsZero() {
		return nil, fmt.Errorf("no translation target")
	}
	if target.Dialect == doc.Info.Dialect {
		return nil, fmt.Errorf("document is already %s", target.Dialect)
	}
	if target.Version == "" {
		target.Version = t.registry.DefaultVersion(target.Dialect)
	}
	if !t.registry.HasVersion(target.Dialect, target.Version) {
		return nil, fmt.Errorf("unsupported target version %s", target)
	}

	b := &builder{
		t:      t,
		source: doc,
		target: target,
		delims: edi.DefaultDelimiters(target.Dialect),
		stamp:  t.now(),
		out:    &Translation{Target: target},
	}
	for _, seg := range doc.Stray {
		b.gap(seg, 0, "segment outside any interchange")
	}
	for _, ic := range doc.Interchanges {
		if err := b.interchange(ctx, ic); err != nil {
			return nil, err
		}
	}

	text := b.render()
	det, err := detect.Detect(text)
	if err != nil {
		return nil, fmt.Errorf("translated document is not readable: %w", err)
	}
	res, err := parser.Parse(ctx, det.Payload, det.Info)
	if err != nil {
		return nil, err
	}

	b.out.Text = text
	b.out.Document = res.Document
	b.out.Issues = t.validator.Validate(res)

	t.logger.WithFields(logrus.Fields{
		"target":       target.String(),
		"transactions": b.out.Transactions,
		"gaps":         len(b.out.Gaps),
		"errors":       b.out.Issues.Errors(),
	}).Debug("translation complete")
	return b.out, nil
}

// =============================================================================
// BUILDER
// =============================================================================

type builder struct {
	t      *Translator
	source *edi.Document
	target edi.DialectVersion
	delims edi.Delimiters
	stamp  time.Time

	segments []*edi.Segment
	out      *Translation
}

// mapped is one translated transaction.
type mapped struct {
	setID        string
	functionalID string
	body         []*edi.Segment
}

func (b *builder) gap(seg *edi.Segment, txIndex int, msg string) {
	b.out.Gaps = append(b.out.Gaps, edi.Issue{
		Kind:             edi.KindTranslationGap,
		Severity:         edi.SeverityWarning,
		Code:             edi.CodeNoMappingRule,
		Message:          msg,
		SegmentID:        seg.ID,
		SegmentPosition:  seg.Position,
		TransactionIndex: txIndex,
	})
}

func (b *builder) interchange(ctx context.Context, ic *edi.Interchange) error {
	for _, seg := range ic.Orphans {
		b.gap(seg, 0, "segment outside any group")
	}

	var txs []mapped
	for _, g := range ic.Groups {
		for _, seg := range g.Orphans {
			b.gap(seg, 0, "segment outside any transaction")
		}
		for _, tx := range g.Transactions {
			if err := ctx.Err(); err != nil {
				return edi.Aborted(err)
			}
			if m, ok := b.transaction(tx); ok {
				txs = append(txs, m)
			}
		}
	}

	switch b.target.Dialect {
	case edi.X12:
		b.x12Interchange(ic, txs)
	default:
		b.edifactInterchange(ic, txs)
	}
	b.out.Transactions += len(txs)
	return nil
}

// transaction maps one transaction body.
func (b *builder) transaction(tx *edi.Transaction) (mapped, bool) {
	src, dst := b.source.Info.Dialect, b.target.Dialect
	setID, ok := b.t.rules.TargetTransaction(src, tx.SetID, dst)
	if !ok {
		seg := tx.Header
		if seg == nil {
			seg = &edi.Segment{ID: tx.SetID}
		}
		b.gap(seg, tx.Index, fmt.Sprintf("no %s equivalent for transaction %s", dst, tx.SetID))
		return mapped{}, false
	}

	var body []*edi.Segment
	for _, seg := range tx.Segments {
		rules := b.t.rules.Lookup(src, seg.ID, dst)
		if len(rules) == 0 {
			b.gap(seg, tx.Index, fmt.Sprintf("no mapping rule for %s to %s", seg.ID, dst))
			continue
		}
		for _, r := range rules {
			out, err := r.apply(seg)
			if err != nil {
				b.gap(seg, tx.Index, err.Error())
				continue
			}
			if out == nil {
				continue
			}
			if r.Merge {
				if prev := lastWithID(body, out.ID); prev != nil {
					merge(prev, out)
					continue
				}
			}
			body = append(body, out)
		}
	}

	m := mapped{setID: setID, body: body}
	if schema, ok := b.t.registry.Transaction(dst, b.target.Version, setID); ok {
		m.body = order(body, schema)
		m.functionalID = schema.FunctionalID
	}
	return m, true
}

func lastWithID(segments []*edi.Segment, id string) *edi.Segment {
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i].ID == id {
			return segments[i]
		}
	}
	return nil
}

// merge copies the non-empty values of src into dst.
func merge(dst, src *edi.Segment) {
	for i, e := range src.Elements {
		for j, v := range e.Values {
			if v == "" {
				continue
			}
			p := edi.Path{Element: i + 1}
			if e.Composite || j > 0 {
				p.Component = j + 1
			}
			dst.Set(p, v)
		}
	}
}

// order sorts target segments by their place in the target table. A segment
// inside a loop stays with the loop start before it, so repeated loops keep
// their shape.
func order(body []*edi.Segment, schema *grammar.TransactionSchema) []*edi.Segment {
	type unit struct {
		key      int
		loop     string
		segments []*edi.Segment
	}

	var units []*unit
	for _, seg := range body {
		idx := schema.Usage(seg.ID)
		if idx < 0 {
			idx = len(schema.Body)
		}
		var usage grammar.SegmentUsage
		if idx < len(schema.Body) {
			usage = schema.Body[idx]
		}

		if n := len(units); n > 0 && usage.Loop != "" {
			cur := units[n-1]
			if cur.loop != "" && usage.InLoop(cur.loop) && (!usage.LoopStart || usage.Loop != cur.loop) {
				cur.segments = append(cur.segments, seg)
				continue
			}
		}
		u := &unit{key: idx, segments: []*edi.Segment{seg}}
		if usage.LoopStart {
			u.loop = usage.Loop
		}
		units = append(units, u)
	}

	sort.SliceStable(units, func(i, j int) bool { return units[i].key < units[j].key })

	out := make([]*edi.Segment, 0, len(body))
	for _, u := range units {
		out = append(out, u.segments...)
	}
	return out
}

// =============================================================================
// ENVELOPES
// =============================================================================

func (b *builder) next(format string) string {
	return fmt.Sprintf(format, b.t.controls.Next())
}

func (b *builder) x12Interchange(ic *edi.Interchange, txs []mapped) {
	version := b.target.Version
	isaVersion := version
	if len(isaVersion) > 5 {
		isaVersion = isaVersion[:5]
	}
	repetition := "U"
	if isaVersion >= "00402" {
		repetition = string(b.delims.Repetition)
	}

	icn := b.next("%09d")
	b.segments = append(b.segments, edi.NewSegment("ISA",
		"00", strings.Repeat(" ", 10), "00", strings.Repeat(" ", 10),
		x12Qualifier(ic.SenderQualifier), utils.PadRight(utils.Truncate(ic.SenderID, 15), 15, ' '),
		x12Qualifier(ic.ReceiverQualifier), utils.PadRight(utils.Truncate(ic.ReceiverID, 15), 15, ' '),
		b.stamp.Format("060102"), b.stamp.Format("1504"),
		repetition, isaVersion, icn, "0", "P", string(b.delims.Component),
	))

	groups := 0
	for start := 0; start < len(txs); {
		end := start + 1
		for end < len(txs) && txs[end].functionalID == txs[start].functionalID {
			end++
		}
		groups++

		gcn := b.next("%d")
		b.segments = append(b.segments, edi.NewSegment("GS",
			txs[start].functionalID, ic.SenderID, ic.ReceiverID,
			b.stamp.Format("20060102"), b.stamp.Format("1504"), gcn, "X", version,
		))
		for _, m := range txs[start:end] {
			stcn := b.next("%04d")
			b.segments = append(b.segments, edi.NewSegment("ST", m.setID, stcn))
			b.segments = append(b.segments, m.body...)
			b.segments = append(b.segments, edi.NewSegment("SE", fmt.Sprint(len(m.body)+2), stcn))
		}
		b.segments = append(b.segments, edi.NewSegment("GE", fmt.Sprint(end-start), gcn))
		start = end
	}
	b.segments = append(b.segments, edi.NewSegment("IEA", fmt.Sprint(groups), icn))
}

func x12Qualifier(q string) string {
	if len(q) == 2 {
		return q
	}
	return "ZZ"
}

func (b *builder) edifactInterchange(ic *edi.Interchange, txs []mapped) {
	directory := strings.TrimPrefix(b.target.Version, "D")

	ref := b.next("%d")
	b.segments = append(b.segments, &edi.Segment{ID: "UNB", Elements: []edi.Element{
		edi.NewComposite("UNOC", "3"),
		party(ic.SenderID, ic.SenderQualifier),
		party(ic.ReceiverID, ic.ReceiverQualifier),
		edi.NewComposite(b.stamp.Format("060102"), b.stamp.Format("1504")),
		edi.Simple(ref),
	}})
	for _, m := range txs {
		mref := b.next("%d")
		b.segments = append(b.segments, &edi.Segment{ID: "UNH", Elements: []edi.Element{
			edi.Simple(mref),
			edi.NewComposite(m.setID, "D", directory, "UN"),
		}})
		b.segments = append(b.segments, m.body...)
		b.segments = append(b.segments, edi.NewSegment("UNT", fmt.Sprint(len(m.body)+2), mref))
	}
	b.segments = append(b.segments, edi.NewSegment("UNZ", fmt.Sprint(len(txs)), ref))
}

func party(id, qualifier string) edi.Element {
	if qualifier == "" {
		return edi.Simple(id)
	}
	return edi.NewComposite(id, qualifier)
}

func (b *builder) render() []byte {
	text := edi.Render(b.segments, b.delims, "\n")
	if b.target.Dialect == edi.EDIFACT {
		return append([]byte(b.delims.ServiceString()+"\n"), text...)
	}
	return text
}
