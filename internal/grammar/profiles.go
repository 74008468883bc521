package grammar

import "github.com/ginjaninja78/edi-codec/internal/edi"

// ProfileAuto selects the industry profile declared by the transaction schema.
const ProfileAuto = "auto"

// BusinessRule requires a segment carrying a given qualifier.
type BusinessRule struct {
	Dialect     edi.Dialect
	Segment     string
	Qualifier   edi.Path
	Value       string
	Description string

	// Required rules raise errors; optional rules only warn.
	Required bool
}

// Profile is an industry rule set for one transport mode.
type Profile struct {
	Name  string
	Rules []BusinessRule
}

// RulesFor returns the rules that apply to a dialect.
func (p *Profile) RulesFor(d edi.Dialect) []BusinessRule {
	var out []BusinessRule
	for _, r := range p.Rules {
		if r.Dialect == d {
			out = append(out, r)
		}
	}
	return out
}

func x12Rule(seg, qualifier, value, desc string, required bool) BusinessRule {
	return BusinessRule{Dialect: edi.X12, Segment: seg, Qualifier: edi.MustPath(qualifier), Value: value, Description: desc, Required: required}
}

func edifactRule(seg, qualifier, value, desc string, required bool) BusinessRule {
	return BusinessRule{Dialect: edi.EDIFACT, Segment: seg, Qualifier: edi.MustPath(qualifier), Value: value, Description: desc, Required: required}
}

func registerProfiles(r *Registry) {
	r.RegisterProfile(&Profile{Name: "ocean", Rules: []BusinessRule{
		x12Rule("N1", "1", "CA", "Carrier", true),
		x12Rule("N1", "1", "SH", "Shipper", true),
		x12Rule("N1", "1", "CN", "Consignee", true),
		x12Rule("DTM", "1", "037", "Ship not before", true),
		x12Rule("DTM", "1", "038", "Ship not later than", true),
		edifactRule("NAD", "1", "CA", "Carrier", true),
		edifactRule("NAD", "1", "CZ", "Consignor", true),
		edifactRule("NAD", "1", "CN", "Consignee", true),
		edifactRule("DTM", "1.1", "64", "Earliest delivery", true),
		edifactRule("DTM", "1.1", "63", "Latest delivery", true),
	}})
	r.RegisterProfile(&Profile{Name: "air", Rules: []BusinessRule{
		x12Rule("N1", "1", "CA", "Carrier", true),
		x12Rule("REF", "1", "AW", "Air waybill number", true),
		x12Rule("MEA", "2", "G", "Gross weight", true),
		edifactRule("NAD", "1", "CA", "Carrier", true),
		edifactRule("RFF", "1.1", "AWB", "Air waybill number", true),
	}})
	r.RegisterProfile(&Profile{Name: "rail", Rules: []BusinessRule{
		x12Rule("N1", "1", "RR", "Railroad", true),
		x12Rule("REF", "1", "RU", "Route number", true),
		x12Rule("DTM", "1", "371", "Estimated arrival date", true),
		edifactRule("NAD", "1", "CA", "Carrier", true),
	}})
	r.RegisterProfile(&Profile{Name: "trucking", Rules: []BusinessRule{
		x12Rule("N1", "1", "CA", "Carrier", true),
		x12Rule("REF", "1", "MB", "Master bill of lading", true),
		x12Rule("REF", "1", "PO", "Purchase order number", false),
		edifactRule("NAD", "1", "CA", "Carrier", true),
	}})
}
