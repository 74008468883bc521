// =============================================================================
// EDI Codec - Validation Engine
// =============================================================================
//
// This module validates a parsed Document against the grammar registry.
// Checks run in a fixed order, because later checks assume earlier ones
// passed for a given scope:
//   1. Envelope  : parser defects, implicit containers, orphans, strays and
//                  control counts
//   2. Mandatory : required body segments, unknown segments, max use
//   3. Sequence  : body order against the transaction table
//   4. Elements  : data type, length, presence and code-list membership
//   5. Industry  : the business rules of the selected industry profile
//
// ERROR HANDLING:
//   - Issues are collected, never returned as errors
//   - Structural issues are always errors
//   - Element and business-rule issues are errors in strict mode and
//     warnings in lenient mode
//   - Positions are 1-based and relative to the document
//
// =============================================================================

package validation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ginjaninja78/edi-codec/internal/edi"
	"github.com/ginjaninja78/edi-codec/internal/grammar"
	"github.com/ginjaninja78/edi-codec/internal/parser"
)

// =============================================================================
// OPTIONS
// =============================================================================

// Strictness selects the severity of element and business-rule issues.
type Strictness string

const (
	StrictnessStrict  Strictness = "strict"
	StrictnessLenient Strictness = "lenient"
)

// ParseStrictness accepts "strict" or "lenient" in any case; empty means
// strict.
func ParseStrictness(s string) (Strictness, error) {
	switch Strictness(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrictnessStrict:
		return StrictnessStrict, nil
	case StrictnessLenient:
		return StrictnessLenient, nil
	}
	return "", fmt.Errorf("invalid strictness %q (want strict or lenient)", s)
}

// Options contains options for validation.
type Options struct {
	// Strictness defaults to strict.
	Strictness Strictness

	// Profile names the industry rule set: "" for none, "auto" for the
	// transaction table's industry, or a registered profile name.
	Profile string
}

// =============================================================================
// VALIDATOR
// =============================================================================

// Validator checks documents against a grammar registry. It holds no
// per-document state and is safe for concurrent use.
type Validator struct {
	registry *grammar.Registry
	options  Options
}

// NewValidator creates a new Validator instance.
func NewValidator(registry *grammar.Registry, options Options) *Validator {
	if options.Strictness == "" {
		options.Strictness = StrictnessStrict
	}
	return &Validator{registry: registry, options: options}
}

// Options returns the options the validator was built with.
func (v *Validator) Options() Options {
	return v.options
}

// Validate checks a parsed document.
//
// PARAMETERS:
//   - res: The parser result; its structural errors are re-confirmed as the
//     first issues.
//
// RETURNS:
//   - Every issue found, in check order. Never nil-panics on malformed input.
func (v *Validator) Validate(res *parser.Result) edi.Issues {
	return v.ValidateDocument(res.Document, res.Errors)
}

// ValidateDocument checks a document given the structural errors found when
// it was folded.
func (v *Validator) ValidateDocument(doc *edi.Document, structural []*edi.StructuralError) edi.Issues {
	var issues edi.Issues
	for _, e := range structural {
		issues = append(issues, e.Issue())
	}

	c := &checker{v: v, doc: doc, dialect: doc.Info.Dialect}
	issues = append(issues, c.envelope()...)

	for _, ic := range doc.Interchanges {
		issues = append(issues, c.envelopeElements(ic.Header, ic.Trailer)...)
		for _, g := range ic.Groups {
			issues = append(issues, c.envelopeElements(g.Header, g.Trailer)...)
			for _, tx := range g.Transactions {
				issues = append(issues, c.transaction(tx)...)
			}
		}
	}
	return issues
}

// checker carries the document being validated.
type checker struct {
	v       *Validator
	doc     *edi.Document
	dialect edi.Dialect
}

func (c *checker) severity() edi.Severity {
	if c.v.options.Strictness == StrictnessLenient {
		return edi.SeverityWarning
	}
	return edi.SeverityError
}

// =============================================================================
// 1. ENVELOPE
// =============================================================================

func (c *checker) envelope() edi.Issues {
	var issues edi.Issues

	for _, seg := range c.doc.Stray {
		if parser.IsTrailer(c.dialect, seg.ID) {
			// already reported by the parser as unexpected_trailer
			continue
		}
		issues = append(issues, structural(edi.CodeStraySegment, seg, 0,
			fmt.Sprintf("segment %s is outside any interchange", seg.ID)))
	}

	for _, ic := range c.doc.Interchanges {
		if ic.Implicit {
			first := firstSegment(ic)
			issues = append(issues, structural(edi.CodeImplicitEnvelope, first, 0,
				"interchange header missing"))
		}
		for _, seg := range ic.Orphans {
			issues = append(issues, structural(edi.CodeOrphanSegment, seg, 0,
				fmt.Sprintf("segment %s is outside any group", seg.ID)))
		}

		for _, g := range ic.Groups {
			if g.Implicit && c.dialect == edi.X12 && len(g.Transactions) > 0 {
				issues = append(issues, structural(edi.CodeImplicitEnvelope, g.Transactions[0].Header, 0,
					"functional group header missing"))
			}
			for _, seg := range g.Orphans {
				issues = append(issues, structural(edi.CodeOrphanSegment, seg, 0,
					fmt.Sprintf("segment %s is outside any transaction", seg.ID)))
			}
			for _, tx := range g.Transactions {
				if tx.Trailer != nil {
					issues = append(issues, countCheck(tx.Trailer, 1, len(tx.All()), tx.Index)...)
				}
			}
			if g.Trailer != nil {
				issues = append(issues, countCheck(g.Trailer, 1, len(g.Transactions), 0)...)
			}
		}

		if ic.Trailer != nil {
			issues = append(issues, countCheck(ic.Trailer, 1, interchangeCount(ic), 0)...)
		}
	}
	return issues
}

// interchangeCount is the number IEA01 / UNZ 1 must carry: explicit groups,
// or for EDIFACT without groups the number of messages.
func interchangeCount(ic *edi.Interchange) int {
	groups, messages := 0, 0
	for _, g := range ic.Groups {
		if !g.Implicit {
			groups++
		}
		messages += len(g.Transactions)
	}
	if groups == 0 && ic.Header != nil && ic.Header.ID == "UNB" {
		return messages
	}
	return groups
}

func countCheck(trailer *edi.Segment, element, want, txIndex int) edi.Issues {
	raw := strings.TrimSpace(trailer.Value(element))
	got, err := strconv.Atoi(raw)
	if err == nil && got == want {
		return nil
	}
	iss := structural(edi.CodeCountMismatch, trailer, txIndex,
		fmt.Sprintf("%s control count is %q, expected %d", trailer.ID, raw, want))
	iss.ElementPosition = element
	iss.Value = raw
	return edi.Issues{iss}
}

func firstSegment(ic *edi.Interchange) *edi.Segment {
	for _, g := range ic.Groups {
		if g.Header != nil {
			return g.Header
		}
		if len(g.Transactions) > 0 {
			return g.Transactions[0].Header
		}
	}
	if len(ic.Orphans) > 0 {
		return ic.Orphans[0]
	}
	return nil
}

func structural(code string, seg *edi.Segment, txIndex int, msg string) edi.Issue {
	iss := edi.Issue{
		Kind:             edi.KindStructural,
		Severity:         edi.SeverityError,
		Code:             code,
		Message:          msg,
		TransactionIndex: txIndex,
	}
	if seg != nil {
		iss.SegmentID = seg.ID
		iss.SegmentPosition = seg.Position
	}
	return iss
}

// =============================================================================
// 2-5. TRANSACTION CHECKS
// =============================================================================

func (c *checker) transaction(tx *edi.Transaction) edi.Issues {
	var issues edi.Issues

	schema, ok := c.v.registry.Transaction(c.dialect, tx.Version, tx.SetID)
	if !ok {
		iss := structural(edi.CodeUnsupportedTransaction, tx.Header, tx.Index,
			fmt.Sprintf("no %s table for transaction %s version %s", c.dialect, tx.SetID, tx.Version))
		iss.Severity = edi.SeverityWarning
		issues = append(issues, iss)
		for _, seg := range tx.All() {
			issues = append(issues, c.elements(seg, tx.Version, tx.Index)...)
		}
		return issues
	}

	issues = append(issues, c.mandatory(tx, schema)...)
	issues = append(issues, c.sequence(tx, schema)...)
	for _, seg := range tx.All() {
		issues = append(issues, c.elements(seg, tx.Version, tx.Index)...)
	}
	issues = append(issues, c.profile(tx, schema)...)
	return issues
}

// anchor is where transaction-level findings are reported: the trailer, or
// the header when the trailer is missing.
func anchor(tx *edi.Transaction) *edi.Segment {
	if tx.Trailer != nil {
		return tx.Trailer
	}
	return tx.Header
}

// -----------------------------------------------------------------------------
// 2. Mandatory segments
// -----------------------------------------------------------------------------

func (c *checker) mandatory(tx *edi.Transaction, schema *grammar.TransactionSchema) edi.Issues {
	var issues edi.Issues

	counts := make(map[string]int)
	for _, seg := range tx.Segments {
		u := schema.Usage(seg.ID)
		if u < 0 {
			issues = append(issues, structural(edi.CodeNotInSet, seg, tx.Index,
				fmt.Sprintf("segment %s is not defined for transaction %s", seg.ID, tx.SetID)))
			continue
		}
		counts[seg.ID]++
		usage := schema.Body[u]
		if usage.Loop == "" && usage.MaxUse > 0 && counts[seg.ID] == usage.MaxUse+1 {
			issues = append(issues, structural(edi.CodeExceedsMaxUse, seg, tx.Index,
				fmt.Sprintf("segment %s exceeds maximum use of %d", seg.ID, usage.MaxUse)))
		}
	}

	for _, usage := range schema.Body {
		if usage.Required && counts[usage.ID] == 0 {
			iss := structural(edi.CodeMandatoryMissing, anchor(tx), tx.Index,
				fmt.Sprintf("mandatory segment %s missing", usage.ID))
			iss.Value = usage.ID
			issues = append(issues, iss)
		}
	}
	return issues
}

// -----------------------------------------------------------------------------
// 3. Sequence
// -----------------------------------------------------------------------------

// sequence walks the body with a cursor into the table's usage list. A
// segment may repeat in place or move forward; a loop start may also jump
// back to restart its loop while the cursor is inside that loop.
func (c *checker) sequence(tx *edi.Transaction, schema *grammar.TransactionSchema) edi.Issues {
	var issues edi.Issues

	cursor := -1
	for _, seg := range tx.Segments {
		u := schema.Usage(seg.ID)
		if u < 0 {
			continue
		}
		if u >= cursor {
			cursor = u
			continue
		}
		usage := schema.Body[u]
		if usage.LoopStart {
			start, end := schema.LoopRegion(usage.Loop)
			if cursor >= start && cursor <= end {
				cursor = u
				continue
			}
		}
		issues = append(issues, structural(edi.CodeOutOfSequence, seg, tx.Index,
			fmt.Sprintf("segment %s is out of sequence after %s", seg.ID, schema.Body[cursor].ID)))
	}
	return issues
}

// -----------------------------------------------------------------------------
// 5. Industry profile
// -----------------------------------------------------------------------------

func (c *checker) profile(tx *edi.Transaction, schema *grammar.TransactionSchema) edi.Issues {
	name := c.v.options.Profile
	if name == grammar.ProfileAuto {
		name = schema.Industry
	}
	if name == "" {
		return nil
	}
	profile, ok := c.v.registry.Profile(name)
	if !ok {
		return nil
	}

	var issues edi.Issues
	for _, rule := range profile.RulesFor(c.dialect) {
		if hasQualified(tx.Segments, rule) {
			continue
		}
		severity := c.severity()
		if !rule.Required {
			severity = edi.SeverityWarning
		}
		at := anchor(tx)
		issues = append(issues, edi.Issue{
			Kind:             edi.KindBusinessRule,
			Severity:         severity,
			Code:             edi.CodeBusinessRule,
			Message:          fmt.Sprintf("%s profile requires %s %s=%s (%s)", profile.Name, rule.Segment, rule.Qualifier, rule.Value, rule.Description),
			SegmentID:        at.ID,
			SegmentPosition:  at.Position,
			Value:            rule.Segment + " " + rule.Value,
			TransactionIndex: tx.Index,
		})
	}
	return issues
}

func hasQualified(segments []*edi.Segment, rule grammar.BusinessRule) bool {
	for _, seg := range segments {
		if seg.ID == rule.Segment && seg.Get(rule.Qualifier) == rule.Value {
			return true
		}
	}
	return false
}
