// =============================================================================
// EDI Codec - Value Transforms
// =============================================================================
//
// This module rewrites element values while they are projected from one
// dialect into the other. Each element mapping may carry a chain of
// transforms that run in order.
//
// TRANSFORMATION TYPES:
//   - String manipulations (prepend, append, trim, case conversion, substring)
//   - Numeric formatting (zero padding, fixed length, decimal places)
//   - Date/time conversions between dialect layouts
//   - Lookup tables for qualifier code cross-references
//   - Defaults for empty values
//   - Regular expression replacements
//
// =============================================================================

package translate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/edi-codec/pkg/utils"
)

// Transform is one value transformation step.
type Transform struct {
	Type   string            `yaml:"type"`
	Value  string            `yaml:"value,omitempty"`
	Find   string            `yaml:"find,omitempty"`
	Lookup map[string]string `yaml:"lookup_table,omitempty"`
}

// transformTypes lists the supported transform names.
var transformTypes = map[string]bool{
	"prepend_string":       true,
	"append_string":        true,
	"trim":                 true,
	"trim_left":            true,
	"trim_right":           true,
	"uppercase":            true,
	"lowercase":            true,
	"replace":              true,
	"regex_replace":        true,
	"substring":            true,
	"pad_zeros_to_length":  true,
	"pad_spaces_to_length": true,
	"ensure_length":        true,
	"format_number":        true,
	"remove_leading_zeros": true,
	"format_date":          true,
	"lookup":               true,
	"lookup_with_default":  true,
	"if_empty_use_default": true,
	"extract_digits":       true,
	"normalize_whitespace": true,
}

var (
	digitsPattern     = regexp.MustCompile(`\d+`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Validate checks that the transform type is known and its parameters parse.
func (t Transform) Validate() error {
	if !transformTypes[t.Type] {
		return fmt.Errorf("unknown transformation type: %s", t.Type)
	}
	if t.Type == "regex_replace" && t.Find != "" {
		if _, err := regexp.Compile(t.Find); err != nil {
			return fmt.Errorf("invalid regex pattern: %w", err)
		}
	}
	if t.Type == "format_date" && len(strings.Split(t.Value, "|")) != 2 {
		return fmt.Errorf("format_date needs \"in|out\" layouts, got %q", t.Value)
	}
	return nil
}

// ApplyChain runs transforms in order.
func ApplyChain(value string, chain []Transform) (string, error) {
	var err error
	for _, t := range chain {
		value, err = Apply(value, t)
		if err != nil {
			return "", fmt.Errorf("transformation '%s' failed: %w", t.Type, err)
		}
	}
	return value, nil
}

// Apply applies a single transform.
//
// PARAMETERS:
//   - value: The current value.
//   - t: The transform to apply.
//
// RETURNS:
//   - The transformed value.
//   - An error if the transform is unknown or its parameters are invalid.
func Apply(value string, t Transform) (string, error) {
	switch t.Type {

	// =========================================================================
	// STRING MANIPULATIONS
	// =========================================================================

	case "prepend_string":
		return t.Value + value, nil

	case "append_string":
		return value + t.Value, nil

	case "trim":
		return strings.TrimSpace(value), nil

	case "trim_left":
		if t.Value != "" {
			return strings.TrimLeft(value, t.Value), nil
		}
		return strings.TrimLeft(value, " \t\n\r"), nil

	case "trim_right":
		if t.Value != "" {
			return strings.TrimRight(value, t.Value), nil
		}
		return strings.TrimRight(value, " \t\n\r"), nil

	case "uppercase":
		return strings.ToUpper(value), nil

	case "lowercase":
		return strings.ToLower(value), nil

	case "replace":
		if t.Find == "" {
			return value, nil
		}
		return strings.ReplaceAll(value, t.Find, t.Value), nil

	case "regex_replace":
		// EXAMPLE:
		//   Input: "ABC-123-DEF"
		//   Transform: regex_replace with find "[A-Z]+" and value "X"
		//   Output: "X-123-X"
		if t.Find == "" {
			return value, nil
		}
		re, err := regexp.Compile(t.Find)
		if err != nil {
			return "", fmt.Errorf("invalid regex pattern: %w", err)
		}
		return re.ReplaceAllString(value, t.Value), nil

	case "substring":
		// VALUE FORMAT: "start,end" (0-indexed, end is exclusive)
		parts := strings.Split(t.Value, ",")
		if len(parts) != 2 {
			return value, nil
		}
		start, _ := strconv.Atoi(strings.TrimSpace(parts[0]))
		end, _ := strconv.Atoi(strings.TrimSpace(parts[1]))
		runes := []rune(value)
		if start < 0 {
			start = 0
		}
		if end > len(runes) {
			end = len(runes)
		}
		if start >= end {
			return "", nil
		}
		return string(runes[start:end]), nil

	case "normalize_whitespace":
		return strings.TrimSpace(whitespacePattern.ReplaceAllString(value, " ")), nil

	case "extract_digits":
		return strings.Join(digitsPattern.FindAllString(value, -1), ""), nil

	// =========================================================================
	// NUMERIC FORMATTING
	// =========================================================================

	case "pad_zeros_to_length":
		// EXAMPLE:
		//   Input: "11"
		//   Transform: pad_zeros_to_length with value "3"
		//   Output: "011"
		n, err := strconv.Atoi(t.Value)
		if err != nil || n <= 0 {
			return value, nil
		}
		return utils.PadLeft(value, n, '0'), nil

	case "pad_spaces_to_length":
		n, err := strconv.Atoi(t.Value)
		if err != nil || n <= 0 {
			return value, nil
		}
		return utils.PadRight(value, n, ' '), nil

	case "ensure_length":
		// Truncates from the right or pads with leading zeros.
		n, err := strconv.Atoi(t.Value)
		if err != nil || n <= 0 {
			return value, nil
		}
		if len([]rune(value)) > n {
			return utils.Truncate(value, n), nil
		}
		return utils.PadLeft(value, n, '0'), nil

	case "format_number":
		places, err := strconv.Atoi(t.Value)
		if err != nil || places < 0 {
			return value, nil
		}
		d, err := decimal.NewFromString(value)
		if err != nil {
			return value, nil
		}
		return d.StringFixed(int32(places)), nil

	case "remove_leading_zeros":
		result := strings.TrimLeft(value, "0")
		if result == "" && value != "" {
			return "0", nil
		}
		return result, nil

	// =========================================================================
	// DATE/TIME CONVERSIONS
	// =========================================================================

	case "format_date":
		// VALUE FORMAT: "input_layout|output_layout" in Go time layouts.
		//
		// COMMON LAYOUTS:
		//   - "20060102" : CCYYMMDD (X12 DT, EDIFACT format 102)
		//   - "060102"   : YYMMDD
		//   - "200601021504" : CCYYMMDDHHMM (EDIFACT format 203)
		parts := strings.Split(t.Value, "|")
		if len(parts) != 2 {
			return value, nil
		}
		parsed, err := time.Parse(strings.TrimSpace(parts[0]), value)
		if err != nil {
			return value, nil
		}
		return parsed.Format(strings.TrimSpace(parts[1])), nil

	// =========================================================================
	// LOOKUP TABLES
	// =========================================================================

	case "lookup":
		// Unknown values pass through unchanged.
		if replacement, ok := t.Lookup[value]; ok {
			return replacement, nil
		}
		return value, nil

	case "lookup_with_default":
		if replacement, ok := t.Lookup[value]; ok {
			return replacement, nil
		}
		return t.Value, nil

	// =========================================================================
	// CONDITIONAL
	// =========================================================================

	case "if_empty_use_default":
		if strings.TrimSpace(value) == "" {
			return t.Value, nil
		}
		return value, nil

	default:
		return "", fmt.Errorf("unknown transformation type: %s", t.Type)
	}
}
