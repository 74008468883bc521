package grammar

func registerCodeLists(r *Registry) {
	for _, c := range []*CodeList{
		{Name: "entity_identifier", Codes: map[string]string{
			"BY": "Buying Party",
			"CN": "Consignee",
			"SH": "Shipper",
			"SF": "Ship From",
			"ST": "Ship To",
			"VN": "Vendor",
			"BT": "Bill-to-Party",
			"RI": "Remit To",
			"CA": "Carrier",
			"RR": "Railroad",
			"PW": "Pick Up Address",
			"DA": "Delivery Address",
			"OT": "Origin Terminal",
			"DT": "Destination Terminal",
			"N1": "Notify Party no. 1",
		}},
		{Name: "date_time_qualifier", Codes: map[string]string{
			"002": "Delivery Requested",
			"010": "Requested Ship",
			"011": "Shipped",
			"017": "Estimated Delivery",
			"035": "Delivered",
			"036": "Expiration",
			"037": "Ship Not Before",
			"038": "Ship No Later",
			"067": "Current Schedule Delivery",
			"068": "Current Schedule Ship",
			"139": "Estimated",
			"140": "Actual",
			"150": "Service Period Start",
			"151": "Service Period End",
			"371": "Estimated Arrival Date",
		}},
		{Name: "id_code_qualifier", Codes: map[string]string{
			"01": "D-U-N-S Number",
			"02": "Standard Carrier Alpha Code (SCAC)",
			"08": "UCC/EAN Location Code",
			"09": "D-U-N-S+4",
			"10": "Department of Defense Activity Address Code",
			"11": "Drug Enforcement Administration",
			"12": "Telephone Number",
			"91": "Assigned by Seller",
			"92": "Assigned by Buyer",
			"93": "Code assigned by the organization originating the transaction",
			"94": "Code assigned by the organization that is the ultimate destination",
			"ZZ": "Mutually Defined",
		}},
		{Name: "interchange_id_qualifier", Codes: map[string]string{
			"01": "Duns",
			"02": "SCAC",
			"08": "UCC EDI Communications ID",
			"09": "X.121",
			"12": "Phone",
			"14": "Duns Plus Suffix",
			"20": "Health Industry Number",
			"27": "Carrier Identification Number",
			"28": "Fiscal Intermediary Identification Number",
			"29": "Medicare Provider and Supplier Identification Number",
			"30": "U.S. Federal Tax Identification Number",
			"33": "NAIC Company Code",
			"ZZ": "Mutually Defined",
		}},
		{Name: "functional_identifier", Codes: map[string]string{
			"FA": "Functional Acknowledgment (997)",
			"QM": "Transportation Carrier Shipment Status Message (214)",
			"QO": "Ocean Shipment Status Information (313, 315)",
			"SM": "Motor Carrier Load Tender (204)",
			"IN": "Invoice Information (810)",
			"PO": "Purchase Order (850)",
			"SH": "Ship Notice/Manifest (856)",
			"GF": "Response to a Load Tender (990)",
			"IM": "Motor Carrier Freight Details and Invoice (210)",
		}},
		{Name: "acknowledgment_requested", Codes: map[string]string{
			"0": "No Interchange Acknowledgment Requested",
			"1": "Interchange Acknowledgment Requested",
		}},
		{Name: "usage_indicator", Codes: map[string]string{
			"P": "Production Data",
			"T": "Test Data",
			"I": "Information",
		}},
		{Name: "acknowledgment_code", Codes: map[string]string{
			"A": "Accepted",
			"E": "Accepted But Errors Were Noted",
			"M": "Rejected, Message Authentication Code (MAC) Failed",
			"P": "Partially Accepted",
			"R": "Rejected",
			"W": "Rejected, Assurance Failed Validity Tests",
			"X": "Rejected, Content After Decryption Could Not Be Analyzed",
		}},
		{Name: "syntax_identifier", Codes: map[string]string{
			"UNOA": "UN/ECE level A",
			"UNOB": "UN/ECE level B",
			"UNOC": "UN/ECE level C",
			"UNOD": "UN/ECE level D",
			"UNOE": "UN/ECE level E",
			"UNOF": "UN/ECE level F",
			"UNOW": "UN/ECE level W",
			"UNOY": "UN/ECE level Y",
		}},
		{Name: "party_qualifier", Codes: map[string]string{
			"BY": "Buyer",
			"CA": "Carrier",
			"CN": "Consignee",
			"CZ": "Consignor",
			"DP": "Delivery party",
			"FW": "Freight forwarder",
			"MR": "Message recipient",
			"MS": "Document/message issuer/sender",
			"PW": "Pick-up party",
			"SE": "Seller",
			"SF": "Ship from",
			"ST": "Ship to",
			"BT": "Bill to",
		}},
		{Name: "contrl_action", Codes: map[string]string{
			"4": "This level and all lower levels rejected",
			"7": "This level acknowledged and all lower levels acknowledged if not explicitly rejected",
			"8": "Interchange received",
		}},
		{Name: "shipment_status", Codes: map[string]string{
			"A1": "Loaded on Vessel",
			"A2": "Unloaded from Vessel",
			"AF": "Loaded on Aircraft",
			"AL": "Available for Delivery",
			"AR": "Arrived at Destination",
			"B1": "Loaded on Equipment",
			"B2": "Unloaded from Equipment",
			"CD": "Customs Release",
			"CP": "Cleared Destination Port",
			"CX": "Cancelled",
			"D1": "Delivered",
			"DE": "Departed",
			"DR": "Driver Dispatched",
			"G1": "Gate In",
			"G2": "Gate Out",
			"I1": "In-Gate",
			"OA": "Out-Gate",
			"P1": "Departed Pickup Location",
			"X1": "Arrived at Delivery Location",
			"X3": "Arrived at Pickup Location",
		}},
	} {
		r.RegisterCodeList(c)
	}
}
