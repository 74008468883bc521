package grammar

import "github.com/ginjaninja78/edi-codec/internal/edi"

// X12Versions lists the X12 releases registered by default.
var X12Versions = []string{"004010", "005010", "006020", "007050"}

func x12Envelope() []*SegmentDef {
	return []*SegmentDef{
		segment("ISA", "Interchange Control Header",
			req("ISA01", "Authorization Information Qualifier", TypeID, 2, 2),
			req("ISA02", "Authorization Information", TypeAN, 10, 10),
			req("ISA03", "Security Information Qualifier", TypeID, 2, 2),
			req("ISA04", "Security Information", TypeAN, 10, 10),
			req("ISA05", "Interchange ID Qualifier", TypeID, 2, 2).codes("interchange_id_qualifier"),
			req("ISA06", "Interchange Sender ID", TypeAN, 15, 15),
			req("ISA07", "Interchange ID Qualifier", TypeID, 2, 2).codes("interchange_id_qualifier"),
			req("ISA08", "Interchange Receiver ID", TypeAN, 15, 15),
			req("ISA09", "Interchange Date", TypeDT, 6, 6),
			req("ISA10", "Interchange Time", TypeTM, 4, 4),
			req("ISA11", "Repetition Separator", TypeAN, 1, 1),
			req("ISA12", "Interchange Control Version Number", TypeID, 5, 5),
			req("ISA13", "Interchange Control Number", TypeN, 9, 9).control(),
			req("ISA14", "Acknowledgment Requested", TypeID, 1, 1).codes("acknowledgment_requested"),
			req("ISA15", "Usage Indicator", TypeID, 1, 1).codes("usage_indicator"),
			req("ISA16", "Component Element Separator", TypeAN, 1, 1),
		),
		segment("IEA", "Interchange Control Trailer",
			req("IEA01", "Number of Included Functional Groups", TypeN, 1, 5),
			req("IEA02", "Interchange Control Number", TypeN, 9, 9).control(),
		),
		segment("GS", "Functional Group Header",
			req("GS01", "Functional Identifier Code", TypeID, 2, 2).codes("functional_identifier"),
			req("GS02", "Application Sender's Code", TypeAN, 2, 15),
			req("GS03", "Application Receiver's Code", TypeAN, 2, 15),
			req("GS04", "Date", TypeDT, 8, 8),
			req("GS05", "Time", TypeTM, 4, 8),
			req("GS06", "Group Control Number", TypeN, 1, 9).control(),
			req("GS07", "Responsible Agency Code", TypeID, 1, 2),
			req("GS08", "Version / Release / Industry Identifier Code", TypeAN, 1, 12),
		),
		segment("GE", "Functional Group Trailer",
			req("GE01", "Number of Transaction Sets Included", TypeN, 1, 6),
			req("GE02", "Group Control Number", TypeN, 1, 9).control(),
		),
		segment("ST", "Transaction Set Header",
			req("ST01", "Transaction Set Identifier Code", TypeID, 3, 3),
			req("ST02", "Transaction Set Control Number", TypeAN, 4, 9).control(),
			opt("ST03", "Implementation Convention Reference", TypeAN, 1, 35),
		),
		segment("SE", "Transaction Set Trailer",
			req("SE01", "Number of Included Segments", TypeN, 1, 10),
			req("SE02", "Transaction Set Control Number", TypeAN, 4, 9).control(),
		),
	}
}

func x12Segments() []*SegmentDef {
	return []*SegmentDef{
		// Shipment status (214) and ocean status (315)
		segment("B10", "Beginning Segment for Transportation Carrier Shipment Status Message",
			req("B1001", "Reference Identification", TypeAN, 1, 30),
			req("B1002", "Shipment Identification Number", TypeAN, 1, 30),
			req("B1003", "Standard Carrier Alpha Code", TypeID, 2, 4),
			opt("B1004", "Inquiry Request Number", TypeN, 1, 9),
		),
		segment("BGN", "Beginning Segment",
			req("BGN01", "Transaction Set Purpose Code", TypeID, 2, 2),
			req("BGN02", "Reference Identification", TypeAN, 1, 30),
			req("BGN03", "Date", TypeDT, 8, 8),
			opt("BGN04", "Time", TypeTM, 4, 8),
		),
		segment("B4", "Beginning Segment for Inquiry or Reply",
			opt("B401", "Special Handling Code", TypeID, 2, 3),
			opt("B402", "Inquiry Request Number", TypeN, 1, 4),
			opt("B403", "Shipment Status Code", TypeID, 1, 2),
			opt("B404", "Date", TypeDT, 8, 8),
			opt("B405", "Status Time", TypeTM, 4, 4),
			opt("B406", "Status Location", TypeAN, 3, 5),
			opt("B407", "Equipment Initial", TypeAN, 1, 4),
			opt("B408", "Equipment Number", TypeAN, 1, 10),
		),
		segment("L11", "Business Instructions and Reference Number",
			opt("L1101", "Reference Identification", TypeAN, 1, 30),
			opt("L1102", "Reference Identification Qualifier", TypeID, 2, 3),
			opt("L1103", "Description", TypeAN, 1, 80),
		),
		segment("N9", "Reference Identification",
			req("N901", "Reference Identification Qualifier", TypeID, 2, 3),
			opt("N902", "Reference Identification", TypeAN, 1, 30),
			opt("N903", "Free-form Description", TypeAN, 1, 45),
		),
		segment("REF", "Reference Identification",
			req("REF01", "Reference Identification Qualifier", TypeID, 2, 3),
			opt("REF02", "Reference Identification", TypeAN, 1, 30),
			opt("REF03", "Description", TypeAN, 1, 80),
		),
		segment("N1", "Name",
			req("N101", "Entity Identifier Code", TypeID, 2, 3).codes("entity_identifier"),
			opt("N102", "Name", TypeAN, 1, 60),
			opt("N103", "Identification Code Qualifier", TypeID, 1, 2).codes("id_code_qualifier"),
			opt("N104", "Identification Code", TypeAN, 2, 80),
		),
		segment("N2", "Additional Name Information",
			req("N201", "Name", TypeAN, 1, 60),
			opt("N202", "Name", TypeAN, 1, 60),
		),
		segment("N3", "Address Information",
			req("N301", "Address Information", TypeAN, 1, 55),
			opt("N302", "Address Information", TypeAN, 1, 55),
		),
		segment("N4", "Geographic Location",
			opt("N401", "City Name", TypeAN, 2, 30),
			opt("N402", "State or Province Code", TypeID, 2, 2),
			opt("N403", "Postal Code", TypeID, 3, 15),
			opt("N404", "Country Code", TypeID, 2, 3),
		),
		segment("G62", "Date/Time",
			opt("G6201", "Date Qualifier", TypeID, 2, 2),
			opt("G6202", "Date", TypeDT, 8, 8),
			opt("G6203", "Time Qualifier", TypeID, 1, 2),
			opt("G6204", "Time", TypeTM, 4, 8),
		),
		segment("DTM", "Date/Time Reference",
			req("DTM01", "Date/Time Qualifier", TypeID, 3, 3).codes("date_time_qualifier"),
			opt("DTM02", "Date", TypeDT, 8, 8),
			opt("DTM03", "Time", TypeTM, 4, 8),
			opt("DTM04", "Time Code", TypeID, 2, 2),
		),
		segment("LX", "Assigned Number",
			req("LX01", "Assigned Number", TypeN, 1, 6),
		),
		segment("AT7", "Shipment Status Details",
			opt("AT701", "Shipment Status Code", TypeID, 2, 2),
			opt("AT702", "Shipment Status or Appointment Reason Code", TypeID, 2, 2),
			opt("AT703", "Shipment Appointment Status Code", TypeID, 2, 2),
			opt("AT704", "Shipment Status or Appointment Reason Code", TypeID, 2, 2),
			opt("AT705", "Date", TypeDT, 8, 8),
			opt("AT706", "Time", TypeTM, 4, 8),
			opt("AT707", "Time Code", TypeID, 2, 2),
		),
		segment("MS1", "Equipment, Shipment, or Real Property Location",
			opt("MS101", "City Name", TypeAN, 2, 30),
			opt("MS102", "State or Province Code", TypeID, 2, 2),
			opt("MS103", "Country Code", TypeID, 2, 3),
		),
		segment("MS2", "Equipment or Container Owner and Type",
			opt("MS201", "Standard Carrier Alpha Code", TypeID, 2, 4),
			opt("MS202", "Equipment Number", TypeAN, 1, 10),
			opt("MS203", "Equipment Description Code", TypeID, 2, 2),
		),
		segment("AT8", "Shipment Weight, Packaging and Quantity Data",
			opt("AT801", "Weight Qualifier", TypeID, 1, 2),
			opt("AT802", "Weight Unit Code", TypeID, 1, 1),
			opt("AT803", "Weight", TypeR, 1, 10),
			opt("AT804", "Lading Quantity", TypeN, 1, 7),
			opt("AT805", "Lading Quantity", TypeN, 1, 7),
		),
		segment("MEA", "Measurements",
			opt("MEA01", "Measurement Reference ID Code", TypeID, 2, 2),
			opt("MEA02", "Measurement Qualifier", TypeID, 1, 3),
			opt("MEA03", "Measurement Value", TypeR, 1, 20),
		),
		segment("Q2", "Status Details (Ocean)",
			opt("Q201", "Vessel Code", TypeID, 1, 8),
			opt("Q202", "Country Code", TypeID, 2, 3),
			opt("Q203", "Date", TypeDT, 8, 8),
			opt("Q204", "Date", TypeDT, 8, 8),
			opt("Q205", "Date", TypeDT, 8, 8),
			opt("Q206", "Lading Quantity", TypeN, 1, 7),
			opt("Q207", "Weight", TypeR, 1, 10),
			opt("Q208", "Weight Qualifier", TypeID, 1, 2),
			opt("Q209", "Flight/Voyage Number", TypeAN, 2, 10),
		),
		segment("V1", "Vessel Identification",
			opt("V101", "Vessel Code", TypeID, 1, 8),
			opt("V102", "Vessel Name", TypeAN, 2, 28),
			opt("V103", "Country Code", TypeID, 2, 3),
			opt("V104", "Flight/Voyage Number", TypeAN, 2, 10),
		),
		segment("R4", "Port or Terminal",
			req("R401", "Port or Terminal Function Code", TypeID, 1, 1),
			opt("R402", "Location Qualifier", TypeID, 1, 2),
			opt("R403", "Location Identifier", TypeAN, 1, 30),
			opt("R404", "Port Name", TypeAN, 2, 24),
		),

		// Functional acknowledgment (997)
		segment("AK1", "Functional Group Response Header",
			req("AK101", "Functional Identifier Code", TypeID, 2, 2).codes("functional_identifier"),
			req("AK102", "Group Control Number", TypeN, 1, 9),
		),
		segment("AK2", "Transaction Set Response Header",
			req("AK201", "Transaction Set Identifier Code", TypeID, 3, 3),
			req("AK202", "Transaction Set Control Number", TypeAN, 4, 9),
		),
		segment("AK3", "Data Segment Note",
			req("AK301", "Segment ID Code", TypeID, 2, 3),
			req("AK302", "Segment Position in Transaction Set", TypeN, 1, 6),
			opt("AK303", "Loop Identifier Code", TypeAN, 1, 4),
			opt("AK304", "Segment Syntax Error Code", TypeID, 1, 3),
		),
		segment("AK4", "Data Element Note",
			composite("AK401", "Position in Segment", true,
				req("72201", "Element Position in Segment", TypeN, 1, 2),
				opt("72202", "Component Data Element Position in Composite", TypeN, 1, 2),
			),
			opt("AK402", "Data Element Reference Number", TypeN, 1, 4),
			req("AK403", "Data Element Syntax Error Code", TypeID, 1, 3),
			opt("AK404", "Copy of Bad Data Element", TypeAN, 1, 99),
		),
		segment("AK5", "Transaction Set Response Trailer",
			req("AK501", "Transaction Set Acknowledgment Code", TypeID, 1, 1).codes("acknowledgment_code"),
			opt("AK502", "Transaction Set Syntax Error Code", TypeID, 1, 3),
			opt("AK503", "Transaction Set Syntax Error Code", TypeID, 1, 3),
			opt("AK504", "Transaction Set Syntax Error Code", TypeID, 1, 3),
			opt("AK505", "Transaction Set Syntax Error Code", TypeID, 1, 3),
			opt("AK506", "Transaction Set Syntax Error Code", TypeID, 1, 3),
		),
		segment("AK9", "Functional Group Response Trailer",
			req("AK901", "Functional Group Acknowledge Code", TypeID, 1, 1).codes("acknowledgment_code"),
			req("AK902", "Number of Transaction Sets Included", TypeN, 1, 6),
			req("AK903", "Number of Received Transaction Sets", TypeN, 1, 6),
			req("AK904", "Number of Accepted Transaction Sets", TypeN, 1, 6),
			opt("AK905", "Functional Group Syntax Error Code", TypeID, 1, 3),
		),
	}
}

func x12Transactions(version string) []*TransactionSchema {
	key := func(id string) TableKey {
		return TableKey{Dialect: edi.X12, Version: version, TransactionID: id}
	}
	return []*TransactionSchema{
		{
			Key:          key("214"),
			Name:         "Transportation Carrier Shipment Status Message",
			Industry:     "trucking",
			FunctionalID: "QM",
			Body: []SegmentUsage{
				mandatory("B10", 1),
				optional("BGN", 1),
				optional("L11", 10),
				optional("N9", 10),
				optional("REF", 10),
				loopStart("N1", "0100"),
				inLoop("N2", "0100"),
				inLoop("N3", "0100"),
				inLoop("N4", "0100"),
				inLoop("G62", "0100"),
				optional("DTM", 10),
				loopStart("LX", "0200"),
				loopStart("AT7", "0200/0205"),
				inLoop("MS1", "0200/0205"),
				inLoop("MS2", "0200/0205"),
				inLoop("AT8", "0200"),
				inLoop("MEA", "0200"),
			},
		},
		{
			Key:          key("315"),
			Name:         "Status Details (Ocean)",
			Industry:     "ocean",
			FunctionalID: "QO",
			Body: []SegmentUsage{
				mandatory("B4", 1),
				optional("N9", 30),
				optional("Q2", 1),
				optional("V1", 1),
				loopStart("N1", "0050"),
				inLoop("N3", "0050"),
				inLoop("N4", "0050"),
				loopStart("R4", "0100"),
				inLoop("DTM", "0100"),
			},
		},
		{
			Key:          key("997"),
			Name:         "Functional Acknowledgment",
			FunctionalID: "FA",
			Body: []SegmentUsage{
				mandatory("AK1", 1),
				loopStart("AK2", "2000"),
				loopStart("AK3", "2000/2100"),
				inLoop("AK4", "2000/2100"),
				inLoop("AK5", "2000"),
				mandatory("AK9", 1),
			},
		},
	}
}

func registerX12(r *Registry) {
	for _, v := range X12Versions {
		r.RegisterSegments(edi.X12, v, x12Envelope()...)
		r.RegisterSegments(edi.X12, v, x12Segments()...)
		for _, t := range x12Transactions(v) {
			mustRegister(r, t)
		}
	}
	r.SetDefaultVersion(edi.X12, "004010")
}

// X12VersionFromHeader maps an ISA12 control version ("00401") to the
// release identifier used by the registry ("004010").
func X12VersionFromHeader(isa12 string) string {
	if len(isa12) != 5 {
		return ""
	}
	return isa12 + "0"
}
