package validation

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/edi-codec/internal/edi"
	"github.com/ginjaninja78/edi-codec/internal/grammar"
)

// =============================================================================
// 4. ELEMENTS
// =============================================================================

func (c *checker) envelopeElements(segments ...*edi.Segment) edi.Issues {
	var issues edi.Issues
	for _, seg := range segments {
		if seg != nil {
			issues = append(issues, c.elements(seg, c.doc.Info.Version, 0)...)
		}
	}
	return issues
}

// elements validates every element of one segment. Segments without a
// definition are left to the structure checks.
func (c *checker) elements(seg *edi.Segment, version string, txIndex int) edi.Issues {
	def, ok := c.v.registry.Segment(c.dialect, version, seg.ID)
	if !ok {
		return nil
	}

	var issues edi.Issues
	report := func(code string, elem, comp int, value, hint, msg string) {
		issues = append(issues, edi.Issue{
			Kind:              edi.KindElement,
			Severity:          c.severity(),
			Code:              code,
			Message:           msg,
			SegmentID:         seg.ID,
			SegmentPosition:   seg.Position,
			ElementPosition:   elem,
			ComponentPosition: comp,
			Value:             value,
			Hint:              hint,
			TransactionIndex:  txIndex,
		})
	}

	for i := len(def.Elements); i < len(seg.Elements); i++ {
		if !seg.Elements[i].IsEmpty() {
			report(edi.CodeTooManyElements, i+1, 0, seg.Elements[i].Value(),
				"", fmt.Sprintf("%s has %d elements, at most %d defined", seg.ID, len(seg.Elements), len(def.Elements)))
			break
		}
	}

	for i, ed := range def.Elements {
		el := seg.Element(i + 1)

		if !ed.IsComposite() {
			if code, hint, msg := c.checkValue(ed, el.Value()); code != "" {
				report(code, i+1, 0, el.Value(), hint, msg)
			}
			continue
		}

		if el.IsEmpty() {
			if ed.Required {
				report(edi.CodeElementMissing, i+1, 0, "", "", fmt.Sprintf("required composite %s (%s) is missing", ed.Ref, ed.Name))
			}
			continue
		}
		for j, cd := range ed.Components {
			value := el.Component(j + 1)
			if code, hint, msg := c.checkValue(cd, value); code != "" {
				report(code, i+1, j+1, value, hint, msg)
			}
		}
		if len(el.Values) > len(ed.Components) {
			report(edi.CodeTooManyElements, i+1, len(ed.Components)+1, el.Values[len(ed.Components)],
				"", fmt.Sprintf("composite %s has more than %d components", ed.Ref, len(ed.Components)))
		}
	}
	return issues
}

// checkValue validates one value against its definition. It returns the
// issue code ("" when valid), an optional hint and a message.
func (c *checker) checkValue(ed grammar.ElementDef, value string) (string, string, string) {
	// =========================================================================
	// REQUIRED
	// =========================================================================
	if value == "" {
		if ed.Required {
			return edi.CodeElementMissing, "", fmt.Sprintf("required element %s (%s) is missing", ed.Ref, ed.Name)
		}
		return "", "", ""
	}

	// =========================================================================
	// DATA TYPE
	// =========================================================================
	if code, msg := validateDataType(value, ed, c.doc.Info.Delimiters.Decimal); code != "" {
		return code, "", msg
	}

	// =========================================================================
	// LENGTH
	// =========================================================================
	n := valueLength(value, ed.Type)
	if ed.Min > 0 && n < ed.Min {
		return edi.CodeTooShort, "", fmt.Sprintf("%s is %d characters, minimum %d", ed.Ref, n, ed.Min)
	}
	if ed.Max > 0 && n > ed.Max {
		return edi.CodeTooLong, "", fmt.Sprintf("%s is %d characters, maximum %d", ed.Ref, n, ed.Max)
	}

	// =========================================================================
	// CODE LIST
	// =========================================================================
	if ed.CodeList != "" {
		list, ok := c.v.registry.CodeList(ed.CodeList)
		if !ok {
			return "", "", ""
		}
		canonical, exact, found := list.Lookup(value)
		switch {
		case exact:
			return "", "", ""
		case found:
			return edi.CodeInvalidCode, canonical, fmt.Sprintf("%s code %q differs in case from %q", ed.Ref, value, canonical)
		default:
			return edi.CodeInvalidCode, "", fmt.Sprintf("%s code %q is not in list %s", ed.Ref, value, ed.CodeList)
		}
	}
	return "", "", ""
}

// valueLength counts characters; numeric lengths exclude the sign and the
// decimal mark.
func valueLength(value string, t grammar.DataType) int {
	if t.IsNumeric() {
		n := 0
		for _, r := range value {
			if unicode.IsDigit(r) {
				n++
			}
		}
		return n
	}
	return utf8.RuneCountInString(value)
}

// =============================================================================
// DATA TYPE VALIDATORS
// =============================================================================

// validateDataType validates a value against an element type.
//
// RETURNS:
//   - The issue code and message if validation fails, empty strings if valid.
//
// SUPPORTED DATA TYPES:
//   - AN, an  : printable text
//   - ID      : printable code value
//   - N, n    : integer digits (N carries implied decimals)
//   - R       : decimal number
//   - DT      : date CCYYMMDD or YYMMDD
//   - TM      : time HHMM, HHMMSS or HHMMSSd..
//   - a       : alphabetic text, no digits
func validateDataType(value string, ed grammar.ElementDef, decimalMark byte) (string, string) {
	switch ed.Type {
	case grammar.TypeAN, grammar.TypeID, grammar.TypeAlphaNum, "":
		return validatePrintable(value)

	case grammar.TypeAlpha:
		return validateAlpha(value)

	case grammar.TypeN:
		return validateNumeric(value)

	case grammar.TypeR, grammar.TypeNumeric:
		return validateDecimal(value, decimalMark)

	case grammar.TypeDT:
		return validateDate(value)

	case grammar.TypeTM:
		return validateTime(value)

	default:
		return "", ""
	}
}

func validatePrintable(value string) (string, string) {
	for _, r := range value {
		if !unicode.IsPrint(r) {
			return edi.CodeInvalidCharacter, fmt.Sprintf("value %q contains a non-printable character", value)
		}
	}
	return "", ""
}

func validateAlpha(value string) (string, string) {
	for _, r := range value {
		if unicode.IsDigit(r) || !unicode.IsPrint(r) {
			return edi.CodeInvalidCharacter, fmt.Sprintf("value %q is not alphabetic", value)
		}
	}
	return "", ""
}

// validateNumeric validates an integer with an optional leading minus sign.
func validateNumeric(value string) (string, string) {
	digits := strings.TrimPrefix(value, "-")
	if digits == "" {
		return edi.CodeInvalidNumeric, fmt.Sprintf("value %q is not a valid number", value)
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return edi.CodeInvalidNumeric, fmt.Sprintf("value %q is not a valid number", value)
		}
	}
	return "", ""
}

// validateDecimal parses a decimal number honouring the document's decimal
// mark.
func validateDecimal(value string, decimalMark byte) (string, string) {
	normalized := value
	if decimalMark != 0 && decimalMark != '.' {
		normalized = strings.ReplaceAll(value, string(decimalMark), ".")
	}
	if strings.ContainsAny(normalized, "eE") {
		return edi.CodeInvalidDecimal, fmt.Sprintf("value %q is not a valid decimal number", value)
	}
	if _, err := decimal.NewFromString(normalized); err != nil {
		return edi.CodeInvalidDecimal, fmt.Sprintf("value %q is not a valid decimal number", value)
	}
	return "", ""
}

// validateDate accepts CCYYMMDD and YYMMDD.
func validateDate(value string) (string, string) {
	var layout string
	switch len(value) {
	case 6:
		layout = "060102"
	case 8:
		layout = "20060102"
	default:
		return edi.CodeInvalidDate, fmt.Sprintf("value %q is not a valid date", value)
	}
	if _, err := time.Parse(layout, value); err != nil {
		return edi.CodeInvalidDate, fmt.Sprintf("value %q is not a valid date", value)
	}
	return "", ""
}

// validateTime accepts HHMM, HHMMSS and HHMMSS followed by decimal seconds.
func validateTime(value string) (string, string) {
	if len(value) < 4 || len(value) == 5 || len(value) > 8 {
		return edi.CodeInvalidTime, fmt.Sprintf("value %q is not a valid time", value)
	}
	layout := "1504"
	head := value
	if len(value) >= 6 {
		layout = "150405"
		head = value[:6]
		for _, r := range value[6:] {
			if r < '0' || r > '9' {
				return edi.CodeInvalidTime, fmt.Sprintf("value %q is not a valid time", value)
			}
		}
	}
	if _, err := time.Parse(layout, head); err != nil {
		return edi.CodeInvalidTime, fmt.Sprintf("value %q is not a valid time", value)
	}
	return "", ""
}
