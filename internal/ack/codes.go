package ack

import "github.com/ginjaninja78/edi-codec/internal/edi"

// =============================================================================
// SYNTAX ERROR CODES
// =============================================================================
//
// Validation issue codes are dialect neutral. These tables translate them to
// the code lists used in acknowledgments:
//
//   X12 AK304   Segment Syntax Error Code
//   X12 AK403   Data Element Syntax Error Code
//   X12 AK502   Transaction Set Syntax Error Code
//   X12 AK905   Functional Group Syntax Error Code
//   EDIFACT 0085 Syntax error, coded
//
// =============================================================================

// X12 AK304 values.
var x12SegmentCodes = map[string]string{
	edi.CodeNotInSet:          "6", // Segment Not in Defined Transaction Set
	edi.CodeOutOfSequence:     "7", // Segment Not in Proper Sequence
	edi.CodeExceedsMaxUse:     "5", // Segment Exceeds Maximum Use
	edi.CodeMandatoryMissing:  "3", // Mandatory Segment Missing
	edi.CodeMissingTrailer:    "3",
	edi.CodeBusinessRule:      "3",
	edi.CodeOrphanSegment:     "2", // Unexpected Segment
	edi.CodeStraySegment:      "2",
	edi.CodeUnexpectedTrailer: "2",
	edi.CodeImplicitEnvelope:  "2",
}

// X12 AK403 values.
var x12ElementCodes = map[string]string{
	edi.CodeElementMissing:   "1", // Mandatory Data Element Missing
	edi.CodeTooManyElements:  "3", // Too Many Data Elements
	edi.CodeTooShort:         "4", // Data Element Too Short
	edi.CodeTooLong:          "5", // Data Element Too Long
	edi.CodeInvalidCharacter: "6", // Invalid Character in Data Element
	edi.CodeInvalidNumeric:   "6",
	edi.CodeInvalidDecimal:   "6",
	edi.CodeInvalidCode:      "7", // Invalid Code Value
	edi.CodeInvalidDate:      "8", // Invalid Date
	edi.CodeInvalidTime:      "9", // Invalid Time
}

// X12 AK502 values for findings about the transaction envelope itself.
// Everything else is reported as "5", One or More Segments in Error.
var x12TransactionCodes = map[string]string{
	edi.CodeUnsupportedTransaction: "1",
	edi.CodeMissingTrailer:         "2",
	edi.CodeControlMismatch:        "3",
	edi.CodeCountMismatch:          "4",
}

// X12 AK905 values.
var x12GroupCodes = map[string]string{
	edi.CodeMissingTrailer:  "3",
	edi.CodeControlMismatch: "4",
	edi.CodeCountMismatch:   "5",
}

// EDIFACT 0085 values.
var edifactCodes = map[string]string{
	edi.CodeMissingTrailer:         "13", // Missing
	edi.CodeImplicitEnvelope:       "13",
	edi.CodeMandatoryMissing:       "13",
	edi.CodeElementMissing:         "13",
	edi.CodeBusinessRule:           "13",
	edi.CodeUnexpectedTrailer:      "15", // Not supported in this position
	edi.CodeOutOfSequence:          "15",
	edi.CodeNotInSet:               "15",
	edi.CodeUnsupportedTransaction: "14", // Value not supported in this position
	edi.CodeControlMismatch:        "28", // References do not match
	edi.CodeCountMismatch:          "29", // Control count does not match
	edi.CodeOrphanSegment:          "33", // Invalid occurrence outside message
	edi.CodeStraySegment:           "33",
	edi.CodeExceedsMaxUse:          "35", // Too many repetitions
	edi.CodeTooManyElements:        "16", // Too many constituents
	edi.CodeTooLong:                "39",
	edi.CodeTooShort:               "40",
	edi.CodeInvalidCharacter:       "21",
	edi.CodeInvalidNumeric:         "37", // Invalid type of character(s)
	edi.CodeInvalidDecimal:         "19",
	edi.CodeInvalidDate:            "12", // Invalid value
	edi.CodeInvalidTime:            "12",
	edi.CodeInvalidCode:            "12",
}

// Fallbacks when an issue code has no specific mapping.
const (
	x12SegmentDefault     = "8"  // Segment Has Data Element Errors
	x12TransactionDefault = "5"  // One or More Segments in Error
	edifactDefault        = "18" // Unspecified error
)

// EDIFACT 0083 action codes.
const (
	actionAccepted = "7"
	actionRejected = "4"
)

func lookup(table map[string]string, code, fallback string) string {
	if c, ok := table[code]; ok {
		return c
	}
	return fallback
}

// X12SegmentCode returns the AK304 code for an issue code.
func X12SegmentCode(code string) string {
	return lookup(x12SegmentCodes, code, x12SegmentDefault)
}

// X12ElementCode returns the AK403 code for an issue code, or false when the
// issue is not about an element value.
func X12ElementCode(code string) (string, bool) {
	c, ok := x12ElementCodes[code]
	return c, ok
}

// EDIFACTCode returns the 0085 code for an issue code.
func EDIFACTCode(code string) string {
	return lookup(edifactCodes, code, edifactDefault)
}
