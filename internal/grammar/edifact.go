package grammar

import "github.com/ginjaninja78/edi-codec/internal/edi"

// EDIFACTVersions lists the message directories registered by default.
var EDIFACTVersions = []string{"D96A", "D01B", "D03A", "D19B"}

func partyIdentification(ref, name string, required bool) ElementDef {
	return composite(ref, name, required,
		req("0004", "Identification", TypeAlphaNum, 1, 35),
		opt("0007", "Partner identification code qualifier", TypeAlphaNum, 1, 4),
		opt("0008", "Address for reverse routing", TypeAlphaNum, 1, 14),
	)
}

func messageIdentifier(required bool) ElementDef {
	return composite("S009", "Message identifier", required,
		req("0065", "Message type", TypeAlphaNum, 1, 6),
		req("0052", "Message version number", TypeAlphaNum, 1, 3),
		req("0054", "Message release number", TypeAlphaNum, 1, 3),
		req("0051", "Controlling agency", TypeAlphaNum, 1, 2),
		opt("0057", "Association assigned code", TypeAlphaNum, 1, 6),
	)
}

func edifactEnvelope() []*SegmentDef {
	return []*SegmentDef{
		segment("UNB", "Interchange header",
			composite("S001", "Syntax identifier", true,
				req("0001", "Syntax identifier", TypeAlpha, 4, 4).codes("syntax_identifier"),
				req("0002", "Syntax version number", TypeNumeric, 1, 1),
			),
			partyIdentification("S002", "Interchange sender", true),
			partyIdentification("S003", "Interchange recipient", true),
			composite("S004", "Date and time of preparation", true,
				req("0017", "Date", TypeNumeric, 6, 8),
				req("0019", "Time", TypeNumeric, 4, 4),
			),
			req("0020", "Interchange control reference", TypeAlphaNum, 1, 14).control(),
			composite("S005", "Recipient's reference/password", false,
				req("0022", "Recipient's reference/password", TypeAlphaNum, 1, 14),
				opt("0025", "Recipient's reference/password qualifier", TypeAlphaNum, 2, 2),
			),
			opt("0026", "Application reference", TypeAlphaNum, 1, 14),
			opt("0029", "Processing priority code", TypeAlpha, 1, 1),
			opt("0031", "Acknowledgement request", TypeNumeric, 1, 1),
			opt("0032", "Communications agreement identification", TypeAlphaNum, 1, 35),
			opt("0035", "Test indicator", TypeNumeric, 1, 1),
		),
		segment("UNZ", "Interchange trailer",
			req("0036", "Interchange control count", TypeNumeric, 1, 6),
			req("0020", "Interchange control reference", TypeAlphaNum, 1, 14).control(),
		),
		segment("UNG", "Functional group header",
			req("0038", "Functional group identification", TypeAlphaNum, 1, 6),
			composite("S006", "Application sender identification", true,
				req("0040", "Application sender identification", TypeAlphaNum, 1, 35),
				opt("0007", "Partner identification code qualifier", TypeAlphaNum, 1, 4),
			),
			composite("S007", "Application recipient identification", true,
				req("0044", "Application recipient identification", TypeAlphaNum, 1, 35),
				opt("0007", "Partner identification code qualifier", TypeAlphaNum, 1, 4),
			),
			composite("S004", "Date and time of preparation", true,
				req("0017", "Date", TypeNumeric, 6, 8),
				req("0019", "Time", TypeNumeric, 4, 4),
			),
			req("0048", "Functional group reference number", TypeAlphaNum, 1, 14).control(),
			req("0051", "Controlling agency", TypeAlphaNum, 1, 2),
			composite("S008", "Message version", true,
				req("0052", "Message version number", TypeAlphaNum, 1, 3),
				req("0054", "Message release number", TypeAlphaNum, 1, 3),
				opt("0057", "Association assigned code", TypeAlphaNum, 1, 6),
			),
			opt("0058", "Application password", TypeAlphaNum, 1, 14),
		),
		segment("UNE", "Functional group trailer",
			req("0060", "Number of messages", TypeNumeric, 1, 6),
			req("0048", "Functional group reference number", TypeAlphaNum, 1, 14).control(),
		),
		segment("UNH", "Message header",
			req("0062", "Message reference number", TypeAlphaNum, 1, 14).control(),
			messageIdentifier(true),
			opt("0068", "Common access reference", TypeAlphaNum, 1, 35),
			composite("S010", "Status of the transfer", false,
				req("0070", "Sequence of transfers", TypeNumeric, 1, 2),
				opt("0073", "First and last transfer", TypeAlpha, 1, 1),
			),
		),
		segment("UNT", "Message trailer",
			req("0074", "Number of segments in the message", TypeNumeric, 1, 6),
			req("0062", "Message reference number", TypeAlphaNum, 1, 14).control(),
		),
	}
}

func edifactSegments() []*SegmentDef {
	return []*SegmentDef{
		segment("BGM", "Beginning of message",
			composite("C002", "Document/message name", false,
				opt("1001", "Document/message name, coded", TypeAlphaNum, 1, 3),
				opt("1131", "Code list qualifier", TypeAlphaNum, 1, 3),
				opt("3055", "Code list responsible agency, coded", TypeAlphaNum, 1, 3),
				opt("1000", "Document/message name", TypeAlphaNum, 1, 35),
			),
			opt("1004", "Document/message number", TypeAlphaNum, 1, 35),
			opt("1225", "Message function, coded", TypeAlphaNum, 1, 3),
			opt("4343", "Response type, coded", TypeAlphaNum, 1, 3),
		),
		segment("DTM", "Date/time/period",
			composite("C507", "Date/time/period", true,
				req("2005", "Date/time/period qualifier", TypeAlphaNum, 1, 3),
				opt("2380", "Date/time/period", TypeAlphaNum, 1, 35),
				opt("2379", "Date/time/period format qualifier", TypeAlphaNum, 1, 3),
			),
		),
		segment("RFF", "Reference",
			composite("C506", "Reference", true,
				req("1153", "Reference qualifier", TypeAlphaNum, 1, 3),
				opt("1154", "Reference number", TypeAlphaNum, 1, 35),
				opt("1156", "Line number", TypeAlphaNum, 1, 6),
			),
		),
		segment("NAD", "Name and address",
			req("3035", "Party qualifier", TypeAlphaNum, 1, 3).codes("party_qualifier"),
			composite("C082", "Party identification details", false,
				req("3039", "Party id. identification", TypeAlphaNum, 1, 35),
				opt("1131", "Code list qualifier", TypeAlphaNum, 1, 3),
				opt("3055", "Code list responsible agency, coded", TypeAlphaNum, 1, 3),
			),
			composite("C058", "Name and address", false,
				req("3124", "Name and address line", TypeAlphaNum, 1, 35),
				opt("3124", "Name and address line", TypeAlphaNum, 1, 35),
				opt("3124", "Name and address line", TypeAlphaNum, 1, 35),
			),
			composite("C080", "Party name", false,
				req("3036", "Party name", TypeAlphaNum, 1, 35),
				opt("3036", "Party name", TypeAlphaNum, 1, 35),
				opt("3036", "Party name", TypeAlphaNum, 1, 35),
				opt("3045", "Party name format, coded", TypeAlphaNum, 1, 3),
			),
			composite("C059", "Street", false,
				req("3042", "Street and number/p.o. box", TypeAlphaNum, 1, 35),
				opt("3042", "Street and number/p.o. box", TypeAlphaNum, 1, 35),
				opt("3042", "Street and number/p.o. box", TypeAlphaNum, 1, 35),
			),
			opt("3164", "City name", TypeAlphaNum, 1, 35),
			opt("3229", "Country sub-entity identification", TypeAlphaNum, 1, 9),
			opt("3251", "Postcode identification", TypeAlphaNum, 1, 9),
			opt("3207", "Country, coded", TypeAlphaNum, 1, 3),
		),
		segment("LOC", "Place/location identification",
			req("3227", "Place/location qualifier", TypeAlphaNum, 1, 3),
			composite("C517", "Location identification", false,
				req("3225", "Place/location identification", TypeAlphaNum, 1, 25),
				opt("1131", "Code list qualifier", TypeAlphaNum, 1, 3),
				opt("3055", "Code list responsible agency, coded", TypeAlphaNum, 1, 3),
				opt("3224", "Place/location", TypeAlphaNum, 1, 256),
			),
		),
		segment("TDT", "Details of transport",
			req("8051", "Transport stage qualifier", TypeAlphaNum, 1, 3),
			opt("8028", "Conveyance reference number", TypeAlphaNum, 1, 17),
		),
		segment("CNI", "Consignment information",
			opt("1490", "Consolidation item number", TypeNumeric, 1, 5),
			composite("C503", "Document/message details", false,
				req("1004", "Document/message number", TypeAlphaNum, 1, 35),
			),
		),
		segment("STS", "Status",
			composite("C601", "Status category", false,
				req("9015", "Status category, coded", TypeAlphaNum, 1, 3),
			),
			composite("C555", "Status", false,
				req("4405", "Status, coded", TypeAlphaNum, 1, 3),
			),
			composite("C556", "Status reason", false,
				req("9013", "Status reason, coded", TypeAlphaNum, 1, 3),
			),
		),
		segment("EQD", "Equipment details",
			req("8053", "Equipment qualifier", TypeAlphaNum, 1, 3),
			composite("C237", "Equipment identification", false,
				req("8260", "Equipment identification number", TypeAlphaNum, 1, 17),
			),
		),

		// Syntax and service report (CONTRL)
		segment("UCI", "Interchange response",
			req("0020", "Interchange control reference", TypeAlphaNum, 1, 14),
			partyIdentification("S002", "Interchange sender", true),
			partyIdentification("S003", "Interchange recipient", true),
			req("0083", "Action, coded", TypeAlphaNum, 1, 3).codes("contrl_action"),
			opt("0085", "Syntax error, coded", TypeAlphaNum, 1, 3),
			opt("0013", "Service segment tag, coded", TypeAlphaNum, 3, 3),
		),
		segment("UCM", "Message response",
			req("0062", "Message reference number", TypeAlphaNum, 1, 14),
			messageIdentifier(true),
			req("0083", "Action, coded", TypeAlphaNum, 1, 3).codes("contrl_action"),
			opt("0085", "Syntax error, coded", TypeAlphaNum, 1, 3),
			opt("0013", "Service segment tag, coded", TypeAlphaNum, 3, 3),
		),
		segment("UCS", "Segment error indication",
			req("0096", "Segment position in message", TypeNumeric, 1, 6),
			opt("0085", "Syntax error, coded", TypeAlphaNum, 1, 3),
		),
		segment("UCD", "Data element error indication",
			req("0085", "Syntax error, coded", TypeAlphaNum, 1, 3),
			composite("S011", "Data element identification", true,
				req("0098", "Erroneous data element position in segment", TypeNumeric, 1, 3),
				opt("0104", "Erroneous component data element position", TypeNumeric, 1, 3),
			),
		),
	}
}

func edifactMessages(version string) []*TransactionSchema {
	key := func(id string) TableKey {
		return TableKey{Dialect: edi.EDIFACT, Version: version, TransactionID: id}
	}
	return []*TransactionSchema{
		{
			Key:      key("IFTSTA"),
			Name:     "International multimodal status report message",
			Industry: "ocean",
			Body: []SegmentUsage{
				mandatory("BGM", 1),
				optional("DTM", 9),
				optional("RFF", 9),
				loopStart("NAD", "0100"),
				inLoop("LOC", "0100"),
				optional("TDT", 9),
				loopStart("CNI", "0200"),
				inLoop("STS", "0200"),
				inLoop("EQD", "0200"),
			},
		},
		{
			Key:      key("IFTMIN"),
			Name:     "Instruction message",
			Industry: "ocean",
			Body: []SegmentUsage{
				mandatory("BGM", 1),
				optional("DTM", 9),
				optional("RFF", 9),
				optional("TDT", 9),
				loopStart("NAD", "0100"),
				inLoop("LOC", "0100"),
				loopStart("EQD", "0200"),
			},
		},
		{
			Key:  key("CONTRL"),
			Name: "Syntax and service report message",
			Body: []SegmentUsage{
				mandatory("UCI", 1),
				loopStart("UCM", "0100"),
				loopStart("UCS", "0100/0110"),
				inLoop("UCD", "0100/0110"),
			},
		},
	}
}

func registerEDIFACT(r *Registry) {
	for _, v := range EDIFACTVersions {
		r.RegisterSegments(edi.EDIFACT, v, edifactEnvelope()...)
		r.RegisterSegments(edi.EDIFACT, v, edifactSegments()...)
		for _, m := range edifactMessages(v) {
			mustRegister(r, m)
		}
	}
	r.SetDefaultVersion(edi.EDIFACT, "D96A")
}
