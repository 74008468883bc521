// =============================================================================
// EDI Codec - Report Writer Module
// =============================================================================
//
// This module renders a processing result as a report document. XML is the
// default format; JSON carries the same fields for downstream services.
//
// XML STRUCTURE:
//   <ediReport run="..." file="..." acceptable="false">
//     <Dialect version="004010" explicit="false">X12</Dialect>
//     <Stats segments="11" transactions="1" errors="1" .../>
//     <Issues>
//       <Issue kind="ElementError" severity="error" code="element_too_long"
//              segment="N1" position="5" element="2" transaction="1">
//         value exceeds maximum length 60
//       </Issue>
//     </Issues>
//     <Corrections>...</Corrections>
//     <Acknowledgment set="997" accepted="0" rejected="1"/>
//     <Translation target="EDIFACT:D96A" transactions="1" acceptable="true"/>
//     <Summaries>
//       <Summary index="1" set_id="214" ...>...</Summary>
//     </Summaries>
//   </ediReport>
//
// CUSTOMIZATION:
//   - Change the root element via GenerateOptions.RootElement
//   - Drop the XML declaration for embedding into another document
//
// =============================================================================

package xmlwriter

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/ginjaninja78/edi-codec/internal/edi"
	"github.com/ginjaninja78/edi-codec/internal/processor"
)

// Format names a report format.
type Format string

const (
	FormatXML  Format = "xml"
	FormatJSON Format = "json"
)

// ParseFormat parses a report format name. Empty selects XML.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatXML:
		return FormatXML, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown report format %q (expected xml or json)", s)
	}
}

// Extension returns the file extension for the format, without the dot.
func (f Format) Extension() string {
	if f == FormatJSON {
		return "json"
	}
	return "xml"
}

// =============================================================================
// REPORT MODEL
// =============================================================================

// Report is the serializable view of one processing result.
type Report struct {
	XMLName xml.Name `json:"-" xml:"ediReport"`

	RunID      string `json:"run_id" xml:"run,attr"`
	File       string `json:"file,omitempty" xml:"file,attr,omitempty"`
	Acceptable bool   `json:"acceptable" xml:"acceptable,attr"`
	Duration   string `json:"duration" xml:"duration,attr"`

	Dialect DialectEntry    `json:"dialect" xml:"Dialect"`
	Stats   processor.Stats `json:"stats" xml:"Stats"`

	Issues         []IssueEntry         `json:"issues" xml:"Issues>Issue"`
	Corrections    []CorrectionEntry    `json:"corrections,omitempty" xml:"Corrections>Correction,omitempty"`
	Acknowledgment *AcknowledgmentEntry `json:"acknowledgment,omitempty" xml:"Acknowledgment,omitempty"`
	Translation    *TranslationEntry    `json:"translation,omitempty" xml:"Translation,omitempty"`
	Summaries      []processor.Summary  `json:"summaries" xml:"Summaries>Summary"`
}

// DialectEntry describes the detected dialect.
type DialectEntry struct {
	Name     string `json:"name" xml:",chardata"`
	Version  string `json:"version,omitempty" xml:"version,attr,omitempty"`
	Wrapper  string `json:"wrapper,omitempty" xml:"wrapper,attr,omitempty"`
	Explicit bool   `json:"explicit_delimiters" xml:"explicit,attr"`
}

// IssueEntry is one validation finding.
type IssueEntry struct {
	Kind        string `json:"kind" xml:"kind,attr"`
	Severity    string `json:"severity" xml:"severity,attr"`
	Code        string `json:"code" xml:"code,attr"`
	SegmentID   string `json:"segment,omitempty" xml:"segment,attr,omitempty"`
	Position    int    `json:"position,omitempty" xml:"position,attr,omitempty"`
	Element     int    `json:"element,omitempty" xml:"element,attr,omitempty"`
	Component   int    `json:"component,omitempty" xml:"component,attr,omitempty"`
	Transaction int    `json:"transaction,omitempty" xml:"transaction,attr,omitempty"`
	Value       string `json:"value,omitempty" xml:"value,attr,omitempty"`
	Message     string `json:"message" xml:",chardata"`
}

// CorrectionEntry is one applied correction.
type CorrectionEntry struct {
	Action   string `json:"action" xml:"action,attr"`
	Code     string `json:"code" xml:"code,attr"`
	Position int    `json:"position" xml:"position,attr"`
	Element  int    `json:"element,omitempty" xml:"element,attr,omitempty"`
	Before   string `json:"before" xml:"Before"`
	After    string `json:"after" xml:"After"`
}

// AcknowledgmentEntry summarizes the generated acknowledgment.
type AcknowledgmentEntry struct {
	SetID    string `json:"set_id" xml:"set,attr"`
	Accepted int    `json:"accepted" xml:"accepted,attr"`
	Rejected int    `json:"rejected" xml:"rejected,attr"`
}

// TranslationEntry summarizes the translation.
type TranslationEntry struct {
	Target       string       `json:"target" xml:"target,attr"`
	Transactions int          `json:"transactions" xml:"transactions,attr"`
	Acceptable   bool         `json:"acceptable" xml:"acceptable,attr"`
	Gaps         []IssueEntry `json:"gaps,omitempty" xml:"Gap,omitempty"`
}

// NewReport builds the report of one result.
//
// PARAMETERS:
//   - file: The input name shown in the report (may be empty).
//   - res: The processing result.
//
// RETURNS:
//   - The report. Issue and summary lists are never nil so that JSON output
//     always carries arrays.
func NewReport(file string, res *processor.Result) *Report {
	r := &Report{
		RunID:      res.RunID,
		File:       file,
		Acceptable: res.Acceptable,
		Duration:   res.Duration.String(),
		Dialect: DialectEntry{
			Name:     string(res.Info.Dialect),
			Version:  res.Info.Version,
			Wrapper:  res.Info.Wrapper,
			Explicit: res.Info.Explicit,
		},
		Stats:     res.Stats,
		Issues:    issueEntries(res.Issues),
		Summaries: res.Summaries,
	}
	if r.Summaries == nil {
		r.Summaries = []processor.Summary{}
	}

	for _, c := range res.Corrections {
		r.Corrections = append(r.Corrections, CorrectionEntry{
			Action:   c.Action,
			Code:     c.Issue.Code,
			Position: c.Issue.SegmentPosition,
			Element:  c.Issue.ElementPosition,
			Before:   c.Before,
			After:    c.After,
		})
	}

	if a := res.Acknowledgment; a != nil {
		r.Acknowledgment = &AcknowledgmentEntry{
			SetID:    a.SetID,
			Accepted: a.Accepted(),
			Rejected: a.Rejected(),
		}
	}

	if t := res.Translation; t != nil {
		r.Translation = &TranslationEntry{
			Target:       t.Target.String(),
			Transactions: t.Transactions,
			Acceptable:   t.Issues.Errors() == 0,
		}
		if len(t.Gaps) > 0 {
			r.Translation.Gaps = issueEntries(t.Gaps)
		}
	}
	return r
}

func issueEntries(issues edi.Issues) []IssueEntry {
	out := make([]IssueEntry, 0, len(issues))
	for _, i := range issues {
		out = append(out, IssueEntry{
			Kind:        string(i.Kind),
			Severity:    string(i.Severity),
			Code:        i.Code,
			SegmentID:   i.SegmentID,
			Position:    i.SegmentPosition,
			Element:     i.ElementPosition,
			Component:   i.ComponentPosition,
			Transaction: i.TransactionIndex,
			Value:       i.Value,
			Message:     i.Message,
		})
	}
	return out
}

// =============================================================================
// REPORT GENERATION
// =============================================================================

// GenerateOptions contains options for XML generation.
type GenerateOptions struct {
	// Indent is the string used for indentation.
	// Default: "  " (two spaces)
	Indent string

	// IncludeXMLDeclaration determines whether to include the XML declaration.
	// Default: true
	IncludeXMLDeclaration bool

	// RootElement overrides the root element name.
	// Default: "ediReport"
	RootElement string
}

// DefaultGenerateOptions returns the default generation options.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		Indent:                "  ",
		IncludeXMLDeclaration: true,
		RootElement:           "ediReport",
	}
}

// Generate renders the report in the given format with default options.
func Generate(r *Report, format Format) ([]byte, error) {
	if format == FormatJSON {
		return GenerateJSON(r)
	}
	return GenerateWithOptions(r, DefaultGenerateOptions())
}

// GenerateWithOptions renders the report as XML.
func GenerateWithOptions(r *Report, options GenerateOptions) ([]byte, error) {
	var buffer bytes.Buffer

	if options.IncludeXMLDeclaration {
		buffer.WriteString(xml.Header)
	}

	root := options.RootElement
	if root == "" {
		root = "ediReport"
	}

	enc := xml.NewEncoder(&buffer)
	enc.Indent("", options.Indent)
	if err := enc.EncodeElement(r, xml.StartElement{Name: xml.Name{Local: root}}); err != nil {
		return nil, fmt.Errorf("failed to marshal XML report: %w", err)
	}
	buffer.WriteByte('\n')

	return buffer.Bytes(), nil
}

// GenerateJSON renders the report as indented JSON.
func GenerateJSON(r *Report) ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON report: %w", err)
	}
	return append(data, '\n'), nil
}
