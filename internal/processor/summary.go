package processor

import (
	"strings"

	"github.com/ginjaninja78/edi-codec/internal/edi"
	"github.com/ginjaninja78/edi-codec/internal/grammar"
)

// =============================================================================
// SHIPMENT STATUS SUMMARY
// =============================================================================
//
// A summary lifts the business fields an ingestion layer typically stores
// out of a status transaction. Values are copied, never interpreted beyond
// describing status codes.
//
//   Field        X12                  EDIFACT
//   -----------  -------------------  ------------------
//   Reference    B10-02, BGN-02       BGM 1004
//   Shipment     N9/REF BM or CN      EQD 2
//   Carrier      N1 CA, else N1 SH    NAD CA
//   Events       AT7                  STS
//   Location     N3 / N4              NAD street / city
//   Date         DTM-02, G62-02       DTM 1.2
//
// =============================================================================

// Summary holds the extracted fields of one transaction.
type Summary struct {
	TransactionIndex int    `json:"transaction_index" xml:"index,attr"`
	SetID            string `json:"set_id" xml:"set_id,attr"`
	ControlNumber    string `json:"control_number" xml:"control_number,attr"`
	Accepted         bool   `json:"accepted" xml:"accepted,attr"`

	Reference  string   `json:"reference,omitempty" xml:"Reference,omitempty"`
	ShipmentID string   `json:"shipment_id,omitempty" xml:"ShipmentID,omitempty"`
	Carrier    Party    `json:"carrier" xml:"Carrier"`
	Location   Location `json:"location" xml:"Location"`
	Date       string   `json:"date,omitempty" xml:"Date,omitempty"`
	Events     []Event  `json:"events,omitempty" xml:"Events>Event,omitempty"`
}

// Party is a named trading party.
type Party struct {
	Qualifier string `json:"qualifier,omitempty" xml:"qualifier,attr,omitempty"`
	Name      string `json:"name,omitempty" xml:",chardata"`
}

// Location is a postal location.
type Location struct {
	Address    string `json:"address,omitempty" xml:"Address,omitempty"`
	City       string `json:"city,omitempty" xml:"City,omitempty"`
	State      string `json:"state,omitempty" xml:"State,omitempty"`
	PostalCode string `json:"postal_code,omitempty" xml:"PostalCode,omitempty"`
	Country    string `json:"country,omitempty" xml:"Country,omitempty"`
}

// Event is one shipment status event.
type Event struct {
	Code        string `json:"code" xml:"code,attr"`
	Description string `json:"description,omitempty" xml:",chardata"`
	Reason      string `json:"reason,omitempty" xml:"reason,attr,omitempty"`
	Date        string `json:"date,omitempty" xml:"date,attr,omitempty"`
	Time        string `json:"time,omitempty" xml:"time,attr,omitempty"`
}

// Summarize extracts one summary per transaction of doc.
func Summarize(registry *grammar.Registry, doc *edi.Document, issues edi.Issues) []Summary {
	statuses, _ := registry.CodeList("shipment_status")
	txs := doc.Transactions()
	out := make([]Summary, 0, len(txs))
	for _, tx := range txs {
		s := Summary{
			TransactionIndex: tx.Index,
			SetID:            tx.SetID,
			ControlNumber:    tx.ControlNumber,
			Accepted:         issues.ForTransaction(tx.Index).Errors() == 0,
		}
		if doc.Info.Dialect == edi.EDIFACT {
			summarizeEDIFACT(&s, tx.Segments, statuses)
		} else {
			summarizeX12(&s, tx.Segments, statuses)
		}
		out = append(out, s)
	}
	return out
}

func summarizeX12(s *Summary, segments []*edi.Segment, statuses *grammar.CodeList) {
	for _, seg := range segments {
		switch seg.ID {
		case "B10", "BGN":
			setOnce(&s.Reference, seg.Value(2))
		case "N9", "REF":
			if q := seg.Value(1); q == "BM" || q == "CN" {
				setOnce(&s.ShipmentID, seg.Value(2))
			}
		case "N1":
			switch seg.Value(1) {
			case "CA":
				if s.Carrier.Qualifier != "CA" {
					s.Carrier = Party{Qualifier: "CA", Name: seg.Value(2)}
				}
			case "SH":
				if s.Carrier.Qualifier == "" {
					s.Carrier = Party{Qualifier: "SH", Name: seg.Value(2)}
				}
			}
		case "N3":
			setOnce(&s.Location.Address, seg.Value(1))
		case "N4":
			if s.Location.City == "" {
				s.Location.City = seg.Value(1)
				s.Location.State = seg.Value(2)
				s.Location.PostalCode = seg.Value(3)
				s.Location.Country = seg.Value(4)
			}
		case "DTM", "G62":
			setOnce(&s.Date, seg.Value(2))
		case "AT7":
			if code := seg.Value(1); code != "" {
				s.Events = append(s.Events, Event{
					Code:        code,
					Description: describe(statuses, code),
					Reason:      seg.Value(2),
					Date:        seg.Value(5),
					Time:        seg.Value(6),
				})
			}
		}
	}
}

func summarizeEDIFACT(s *Summary, segments []*edi.Segment, statuses *grammar.CodeList) {
	for _, seg := range segments {
		switch seg.ID {
		case "BGM":
			setOnce(&s.Reference, seg.Value(2))
		case "EQD":
			setOnce(&s.ShipmentID, seg.Get(edi.Path{Element: 2, Component: 1}))
		case "RFF":
			if q := seg.Get(edi.Path{Element: 1, Component: 1}); q == "BM" {
				setOnce(&s.ShipmentID, seg.Get(edi.Path{Element: 1, Component: 2}))
			}
		case "NAD":
			if seg.Value(1) == "CA" && s.Carrier.Qualifier == "" {
				name := seg.Get(edi.Path{Element: 4, Component: 1})
				if name == "" {
					name = seg.Get(edi.Path{Element: 2, Component: 1})
				}
				s.Carrier = Party{Qualifier: "CA", Name: name}
			}
			if s.Location.City == "" && seg.Value(6) != "" {
				s.Location = Location{
					Address:    seg.Get(edi.Path{Element: 5, Component: 1}),
					City:       seg.Value(6),
					State:      seg.Get(edi.Path{Element: 7, Component: 1}),
					PostalCode: seg.Value(8),
					Country:    seg.Value(9),
				}
			}
		case "DTM":
			setOnce(&s.Date, seg.Get(edi.Path{Element: 1, Component: 2}))
		case "STS":
			code := seg.Get(edi.Path{Element: 2, Component: 1})
			if code != "" {
				s.Events = append(s.Events, Event{
					Code:        code,
					Description: describe(statuses, code),
					Reason:      seg.Get(edi.Path{Element: 3, Component: 1}),
				})
			}
		}
	}
}

func setOnce(dst *string, v string) {
	if *dst == "" {
		*dst = strings.TrimSpace(v)
	}
}

func describe(statuses *grammar.CodeList, code string) string {
	if statuses == nil {
		return ""
	}
	return statuses.Describe(code)
}
