// =============================================================================
// EDI Codec - Auto-Corrector
// =============================================================================
//
// This module repairs recoverable element defects in place. Fixes are kept in
// a registry keyed by issue code:
//
//   element_too_long  -> truncate        (text types only)
//   element_too_short -> pad_numeric     (fixed-length numerics, left zeros)
//                        pad_text        (fixed-length text, right spaces)
//   invalid_code      -> normalize_case  (when the code differs only in case)
//
// PROCESS:
//   1. Apply every applicable fix to the document
//   2. Re-validate
//   3. Revert each fix whose triggering issue is still reported and mark the
//      issue as a failed correction
//   4. Repeat until a pass applies nothing, at most MaxPasses times
//
// Envelope control numbers are never rewritten.
//
// =============================================================================

package correction

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ginjaninja78/edi-codec/internal/edi"
	"github.com/ginjaninja78/edi-codec/internal/grammar"
	"github.com/ginjaninja78/edi-codec/internal/logging"
	"github.com/ginjaninja78/edi-codec/internal/validation"
	"github.com/ginjaninja78/edi-codec/pkg/utils"
)

// MaxPasses bounds the fix and re-validate loop.
const MaxPasses = 3

// Correction actions.
const (
	ActionTruncate      = "truncate"
	ActionPadNumeric    = "pad_numeric"
	ActionPadText       = "pad_text"
	ActionNormalizeCase = "normalize_case"
)

// Fix proposes a new value for the element an issue points at. It returns
// the action name and ok=false when it does not apply.
type Fix func(value string, def grammar.ElementDef, issue edi.Issue) (after string, action string, ok bool)

// Outcome is the result of a correction run.
type Outcome struct {
	Issues      edi.Issues
	Corrections []edi.Correction
}

// Corrector applies registered fixes and re-validates.
type Corrector struct {
	registry  *grammar.Registry
	validator *validation.Validator
	fixes     map[string]Fix
	logger    logrus.FieldLogger
}

// NewCorrector creates a corrector with the built-in fixes.
//
// PARAMETERS:
//   - registry: The grammar registry used to look up element definitions.
//   - validator: The validator used for re-validation after each pass.
//   - logger: Optional logger; nil discards output.
func NewCorrector(registry *grammar.Registry, validator *validation.Validator, logger logrus.FieldLogger) *Corrector {
	if logger == nil {
		logger = logging.Discard()
	}
	c := &Corrector{
		registry:  registry,
		validator: validator,
		fixes:     make(map[string]Fix),
		logger:    logger,
	}
	c.Register(edi.CodeTooLong, truncate)
	c.Register(edi.CodeTooShort, pad)
	c.Register(edi.CodeInvalidCode, normalizeCase)
	return c
}

// Register installs or replaces the fix for an issue code.
func (c *Corrector) Register(code string, fix Fix) {
	c.fixes[code] = fix
}

// applied is one fix written into the document during a pass.
type applied struct {
	issue  edi.Issue
	seg    *edi.Segment
	path   edi.Path
	before string
	after  string
	action string
}

// Correct runs the correction loop over a parsed document.
//
// PARAMETERS:
//   - ctx: Checked between passes.
//   - doc: The document; fixes are written into it in place.
//   - structural: The parser's structural errors, needed for re-validation.
//   - issues: The issues of the initial validation.
//
// RETURNS:
//   - The final issues and the corrections that stuck.
//   - An aborted StructuralError when ctx is done.
func (c *Corrector) Correct(ctx context.Context, doc *edi.Document, structural []*edi.StructuralError, issues edi.Issues) (*Outcome, error) {
	out := &Outcome{Issues: issues}
	var failed []edi.Issue

	for pass := 1; pass <= MaxPasses; pass++ {
		if err := ctx.Err(); err != nil {
			return nil, edi.Aborted(err)
		}

		var changes []applied
		for _, iss := range out.Issues {
			if iss.Kind != edi.KindElement || isFailed(failed, iss) {
				continue
			}
			if ch, ok := c.apply(doc, iss); ok {
				changes = append(changes, ch)
			}
		}
		if len(changes) == 0 {
			break
		}

		out.Issues = c.validator.ValidateDocument(doc, structural)

		reverted := 0
		for _, ch := range changes {
			if persists(out.Issues, ch.issue) {
				ch.seg.Set(ch.path, ch.before)
				failed = append(failed, ch.issue)
				reverted++
				continue
			}
			out.Corrections = append(out.Corrections, edi.Correction{
				Issue:  ch.issue,
				Action: ch.action,
				Before: ch.before,
				After:  ch.after,
			})
		}
		if reverted > 0 {
			out.Issues = c.validator.ValidateDocument(doc, structural)
		}

		c.logger.WithFields(logrus.Fields{
			"pass":     pass,
			"applied":  len(changes) - reverted,
			"reverted": reverted,
		}).Debug("correction pass complete")
	}

	out.Issues = markFailed(out.Issues, failed)
	return out, nil
}

// apply writes the registered fix for one issue into the document.
func (c *Corrector) apply(doc *edi.Document, iss edi.Issue) (applied, bool) {
	fix, ok := c.fixes[iss.Code]
	if !ok || iss.ElementPosition == 0 {
		return applied{}, false
	}
	seg := doc.SegmentAt(iss.SegmentPosition)
	if seg == nil {
		return applied{}, false
	}

	version := doc.Info.Version
	if tx := doc.Transaction(iss.TransactionIndex); tx != nil && tx.Version != "" {
		version = tx.Version
	}
	segDef, ok := c.registry.Segment(doc.Info.Dialect, version, seg.ID)
	if !ok {
		return applied{}, false
	}
	path := edi.Path{Element: iss.ElementPosition, Component: iss.ComponentPosition}
	def, ok := segDef.Element(path)
	if !ok || def.Control || def.IsComposite() {
		return applied{}, false
	}

	before := seg.Get(path)
	after, action, ok := fix(before, def, iss)
	if !ok || after == before {
		return applied{}, false
	}
	seg.Set(path, after)
	return applied{issue: iss, seg: seg, path: path, before: before, after: after, action: action}, true
}

func persists(issues edi.Issues, iss edi.Issue) bool {
	for _, i := range issues {
		if i.SameLocation(iss) {
			return true
		}
	}
	return false
}

func isFailed(failed []edi.Issue, iss edi.Issue) bool {
	return persists(failed, iss)
}

// markFailed flags reverted issues and appends one CorrectionFailure warning
// per failed fix.
func markFailed(issues edi.Issues, failed []edi.Issue) edi.Issues {
	if len(failed) == 0 {
		return issues
	}
	for i := range issues {
		if persists(failed, issues[i]) {
			issues[i].CorrectionFailed = true
		}
	}
	for _, f := range failed {
		issues = append(issues, edi.Issue{
			Kind:              edi.KindCorrectionFailure,
			Severity:          edi.SeverityWarning,
			Code:              edi.CodeCorrectionFailed,
			Message:           fmt.Sprintf("automatic fix for %s was reverted", f.Code),
			SegmentID:         f.SegmentID,
			SegmentPosition:   f.SegmentPosition,
			ElementPosition:   f.ElementPosition,
			ComponentPosition: f.ComponentPosition,
			Value:             f.Value,
			TransactionIndex:  f.TransactionIndex,
		})
	}
	return issues
}

// =============================================================================
// FIXES
// =============================================================================

func truncate(value string, def grammar.ElementDef, _ edi.Issue) (string, string, bool) {
	if !def.Type.IsText() || def.Max <= 0 {
		return "", "", false
	}
	return utils.Truncate(value, def.Max), ActionTruncate, true
}

func pad(value string, def grammar.ElementDef, _ edi.Issue) (string, string, bool) {
	if !def.FixedLength() {
		return "", "", false
	}
	switch {
	case def.Type == grammar.TypeN || def.Type == grammar.TypeNumeric:
		sign := ""
		digits := value
		if strings.HasPrefix(value, "-") {
			sign, digits = "-", value[1:]
		}
		return sign + utils.PadLeft(digits, def.Min, '0'), ActionPadNumeric, true
	case def.Type.IsText():
		return utils.PadRight(value, def.Min, ' '), ActionPadText, true
	default:
		return "", "", false
	}
}

func normalizeCase(value string, _ grammar.ElementDef, iss edi.Issue) (string, string, bool) {
	if iss.Hint == "" || !strings.EqualFold(iss.Hint, value) {
		return "", "", false
	}
	return iss.Hint, ActionNormalizeCase, true
}
