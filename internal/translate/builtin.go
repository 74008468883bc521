package translate

import (
	"sync"

	"github.com/ginjaninja78/edi-codec/internal/edi"
)

// =============================================================================
// BUILT-IN TABLES
// =============================================================================
//
//   X12             EDIFACT
//   B10             BGM (document number), RFF (shipment reference)
//   N1 + N3 + N4    NAD (one NAD per N1 loop)
//   REF, N9         RFF
//   DTM, G62        DTM C507
//   LX              CNI
//   AT7             STS
//
// Transaction cross-reference: 214/315 <-> IFTSTA, 204 <-> IFTMIN,
// 997 <-> CONTRL.
//
// =============================================================================

// entityToParty maps X12 N101 entity identifiers to EDIFACT 3035 party
// qualifiers where the code lists differ.
var entityToParty = map[string]string{
	"SH": "CZ",
	"DA": "DP",
	"VN": "SE",
}

var partyToEntity = invert(entityToParty)

func invert(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

func el(source, target string, transforms ...Transform) ElementMapping {
	return ElementMapping{Source: source, Target: target, Transforms: transforms}
}

func constant(target, value string) ElementMapping {
	return ElementMapping{Target: target, Constant: value}
}

func x12ToEDIFACT(source, target string, merge bool, elements ...ElementMapping) Rule {
	return Rule{SourceDialect: edi.X12, TargetDialect: edi.EDIFACT, SourceSegment: source, TargetSegment: target, Merge: merge, Elements: elements}
}

func edifactToX12(source, target string, merge bool, elements ...ElementMapping) Rule {
	return Rule{SourceDialect: edi.EDIFACT, TargetDialect: edi.X12, SourceSegment: source, TargetSegment: target, Merge: merge, Elements: elements}
}

var (
	builtinOnce  sync.Once
	builtinRules *RuleSet
)

// Builtin returns the shared built-in rule set. Callers that want to extend
// it must Clone it first.
func Builtin() *RuleSet {
	builtinOnce.Do(func() {
		rs := NewRuleSet()
		if err := rs.Add(builtinX12ToEDIFACT()...); err != nil {
			panic(err)
		}
		if err := rs.Add(builtinEDIFACTToX12()...); err != nil {
			panic(err)
		}
		rs.CrossReference(edi.X12, "214", edi.EDIFACT, "IFTSTA")
		rs.CrossReference(edi.X12, "315", edi.EDIFACT, "IFTSTA")
		rs.CrossReference(edi.X12, "204", edi.EDIFACT, "IFTMIN")
		rs.CrossReference(edi.X12, "997", edi.EDIFACT, "CONTRL")
		builtinRules = rs
	})
	return builtinRules
}

func builtinX12ToEDIFACT() []Rule {
	dateQualifier := Transform{Type: "remove_leading_zeros"}
	return []Rule{
		x12ToEDIFACT("B10", "BGM", false,
			constant("1.1", "23"),
			el("1", "2"),
		),
		x12ToEDIFACT("B10", "RFF", false,
			constant("1.1", "SRN"),
			el("2", "1.2"),
		),
		x12ToEDIFACT("BGN", "BGM", false,
			constant("1.1", "23"),
			el("2", "2"),
		),
		x12ToEDIFACT("REF", "RFF", false,
			el("1", "1.1"),
			el("2", "1.2"),
		),
		x12ToEDIFACT("N9", "RFF", false,
			el("1", "1.1"),
			el("2", "1.2"),
		),
		x12ToEDIFACT("N1", "NAD", false,
			el("1", "1", Transform{Type: "lookup", Lookup: entityToParty}),
			el("2", "4.1"),
		),
		x12ToEDIFACT("N3", "NAD", true,
			el("1", "5.1"),
			el("2", "5.2"),
		),
		x12ToEDIFACT("N4", "NAD", true,
			el("1", "6"),
			el("2", "7"),
			el("3", "8"),
			el("4", "9"),
		),
		x12ToEDIFACT("DTM", "DTM", false,
			el("1", "1.1", dateQualifier),
			el("2", "1.2"),
			constant("1.3", "102"),
		),
		x12ToEDIFACT("G62", "DTM", false,
			el("1", "1.1", dateQualifier),
			el("2", "1.2"),
			constant("1.3", "102"),
		),
		x12ToEDIFACT("LX", "CNI", false,
			el("1", "1"),
		),
		x12ToEDIFACT("AT7", "STS", false,
			constant("1.1", "1"),
			el("1", "2.1"),
			el("2", "3.1"),
		),
	}
}

func builtinEDIFACTToX12() []Rule {
	return []Rule{
		edifactToX12("BGM", "B10", false,
			el("2", "1"),
			el("2", "2"),
		),
		edifactToX12("RFF", "REF", false,
			el("1.1", "1"),
			el("1.2", "2"),
		),
		edifactToX12("NAD", "N1", false,
			el("1", "1", Transform{Type: "lookup", Lookup: partyToEntity}),
			el("4.1", "2"),
		),
		edifactToX12("NAD", "N3", false,
			el("5.1", "1"),
			el("5.2", "2"),
		),
		edifactToX12("NAD", "N4", false,
			el("6", "1"),
			el("7", "2"),
			el("8", "3"),
			el("9", "4"),
		),
		edifactToX12("DTM", "DTM", false,
			el("1.1", "1", Transform{Type: "pad_zeros_to_length", Value: "3"}),
			el("1.2", "2", Transform{Type: "substring", Value: "0,8"}),
		),
		edifactToX12("CNI", "LX", false,
			el("1", "1"),
		),
		edifactToX12("STS", "AT7", false,
			el("2.1", "1"),
			el("3.1", "2"),
		),
	}
}
