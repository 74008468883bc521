package edi

import (
	"fmt"
	"strings"
)

// Kind classifies an issue within the error taxonomy.
type Kind string

const (
	KindFraming           Kind = "FramingError"
	KindStructural        Kind = "StructuralError"
	KindElement           Kind = "ElementError"
	KindBusinessRule      Kind = "BusinessRuleError"
	KindCorrectionFailure Kind = "CorrectionFailure"
	KindTranslationGap    Kind = "TranslationGapError"
)

// Severity of an issue. Only errors make a transaction non-acceptable.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue codes. They are dialect neutral; the acknowledgment generator maps
// them to X12 and EDIFACT syntax error codes.
const (
	// Envelope and structure
	CodeMissingTrailer         = "missing_trailer"
	CodeUnexpectedTrailer      = "unexpected_trailer"
	CodeControlMismatch        = "control_number_mismatch"
	CodeCountMismatch          = "control_count_mismatch"
	CodeImplicitEnvelope       = "implicit_envelope"
	CodeOrphanSegment          = "orphan_segment"
	CodeStraySegment           = "stray_segment"
	CodeMandatoryMissing       = "mandatory_segment_missing"
	CodeOutOfSequence          = "segment_out_of_sequence"
	CodeNotInSet               = "segment_not_in_set"
	CodeExceedsMaxUse          = "segment_exceeds_max_use"
	CodeUnsupportedTransaction = "unsupported_transaction"
	CodeAborted                = "aborted"

	// Element level
	CodeElementMissing   = "element_missing"
	CodeTooManyElements  = "too_many_elements"
	CodeTooShort         = "element_too_short"
	CodeTooLong          = "element_too_long"
	CodeInvalidCharacter = "invalid_character"
	CodeInvalidNumeric   = "invalid_numeric"
	CodeInvalidDecimal   = "invalid_decimal"
	CodeInvalidDate      = "invalid_date"
	CodeInvalidTime      = "invalid_time"
	CodeInvalidCode      = "invalid_code"

	// Industry profile
	CodeBusinessRule = "business_rule"

	// Auto-correction and translation
	CodeCorrectionFailed = "correction_failed"
	CodeNoMappingRule    = "no_mapping_rule"
)

// Issue is a single validation finding. Positions are 1-based; zero means the
// location is not applicable.
type Issue struct {
	Kind     Kind
	Severity Severity
	Code     string
	Message  string

	SegmentID         string
	SegmentPosition   int
	ElementPosition   int
	ComponentPosition int
	Value             string

	// Hint carries a canonical value when one is known (e.g. the correctly
	// cased code for an invalid_code issue).
	Hint string

	// TransactionIndex is the ordinal of the owning transaction, 0 for
	// envelope-level issues.
	TransactionIndex int

	// CorrectionFailed marks an issue whose automatic fix was reverted.
	CorrectionFailed bool
}

// IsError reports whether the issue has error severity.
func (i Issue) IsError() bool {
	return i.Severity == SeverityError
}

// SameLocation reports whether two issues describe the same finding.
func (i Issue) SameLocation(o Issue) bool {
	return i.Code == o.Code &&
		i.SegmentPosition == o.SegmentPosition &&
		i.ElementPosition == o.ElementPosition &&
		i.ComponentPosition == o.ComponentPosition
}

func (i Issue) Error() string {
	loc := fmt.Sprintf("segment %d", i.SegmentPosition)
	if i.SegmentID != "" {
		loc = fmt.Sprintf("%s at segment %d", i.SegmentID, i.SegmentPosition)
	}
	if i.ElementPosition > 0 {
		loc += fmt.Sprintf(" element %d", i.ElementPosition)
		if i.ComponentPosition > 0 {
			loc += fmt.Sprintf(".%d", i.ComponentPosition)
		}
	}
	return fmt.Sprintf("%s %s (%s): %s", i.Kind, i.Code, loc, i.Message)
}

// Issues is an ordered list of findings.
type Issues []Issue

// Errors counts error-severity issues.
func (iss Issues) Errors() int {
	n := 0
	for _, i := range iss {
		if i.IsError() {
			n++
		}
	}
	return n
}

// Warnings counts warning-severity issues.
func (iss Issues) Warnings() int {
	return len(iss) - iss.Errors()
}

// ForTransaction returns the issues owned by a transaction.
func (iss Issues) ForTransaction(index int) Issues {
	var out Issues
	for _, i := range iss {
		if i.TransactionIndex == index {
			out = append(out, i)
		}
	}
	return out
}

// ByKind returns the issues of one kind.
func (iss Issues) ByKind(k Kind) Issues {
	var out Issues
	for _, i := range iss {
		if i.Kind == k {
			out = append(out, i)
		}
	}
	return out
}

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	parts := make([]string, 0, maxShown)
	for i := 0; i < len(iss) && i < maxShown; i++ {
		parts = append(parts, iss[i].Error())
	}
	s := strings.Join(parts, "; ")
	if len(iss) > maxShown {
		s += fmt.Sprintf("; ... (total %d)", len(iss))
	}
	return s
}

// Correction records one change made by the auto-corrector.
type Correction struct {
	Issue  Issue
	Action string
	Before string
	After  string
}
