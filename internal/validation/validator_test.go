package validation

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/edi-codec/internal/detect"
	"github.com/ginjaninja78/edi-codec/internal/edi"
	"github.com/ginjaninja78/edi-codec/internal/grammar"
	"github.com/ginjaninja78/edi-codec/internal/parser"
)

const x12Status = "ISA*00*          *00*          *ZZ*SENDER         *ZZ*RECEIVER       *240101*1200*U*00401*000000001*0*P*:~\n" +
	"GS*QM*SENDER*RECEIVER*20240101*1200*1*X*004010~\n" +
	"ST*214*0001~\n" +
	"B10*REF123*SHIP456*SCAC~\n" +
	"N1*SH*ACME SHIPPING~\n" +
	"N3*100 MAIN ST~\n" +
	"N4*CHICAGO*IL*60601*US~\n" +
	"DTM*011*20240101~\n" +
	"SE*7*0001~\n" +
	"GE*1*1~\n" +
	"IEA*1*000000001~\n"

const edifactStatus = "UNA:+.? '" +
	"UNB+UNOA:1+SENDER:ZZ+RECEIVER:ZZ+240101:1200+1'" +
	"UNH+1+IFTSTA:D:96A:UN'" +
	"BGM+23+REF?+123'" +
	"NAD+CA+SCAC'" +
	"UNT+4+1'" +
	"UNZ+1+1'"

func validate(t *testing.T, raw string, opts Options) edi.Issues {
	t.Helper()
	det, err := detect.Detect([]byte(raw))
	require.NoError(t, err)
	res, err := parser.Parse(context.Background(), det.Payload, det.Info)
	require.NoError(t, err)
	return NewValidator(grammar.Builtin(), opts).Validate(res)
}

func issueCodes(iss edi.Issues) []string {
	out := make([]string, len(iss))
	for i, is := range iss {
		out[i] = is.Code
	}
	return out
}

func TestValidateWellFormed(t *testing.T) {
	t.Run("Should accept a well-formed X12 214", func(t *testing.T) {
		assert.Empty(t, validate(t, x12Status, Options{}))
	})

	t.Run("Should accept a well-formed EDIFACT IFTSTA", func(t *testing.T) {
		assert.Empty(t, validate(t, edifactStatus, Options{}))
	})
}

func TestValidateEnvelope(t *testing.T) {
	t.Run("Should report exactly one structural error for a missing SE", func(t *testing.T) {
		raw := strings.Replace(x12Status, "SE*7*0001~\n", "", 1)
		iss := validate(t, raw, Options{})
		require.Len(t, iss, 1)
		assert.Equal(t, edi.KindStructural, iss[0].Kind)
		assert.Equal(t, edi.CodeMissingTrailer, iss[0].Code)
		assert.Equal(t, 1, iss[0].TransactionIndex)
	})

	t.Run("Should check control counts", func(t *testing.T) {
		raw := strings.Replace(x12Status, "SE*7*0001", "SE*9*0001", 1)
		iss := validate(t, raw, Options{})
		require.Len(t, iss, 1)
		assert.Equal(t, edi.CodeCountMismatch, iss[0].Code)
		assert.Equal(t, "SE", iss[0].SegmentID)
		assert.Equal(t, 1, iss[0].ElementPosition)
	})

	t.Run("Should flag orphans and implicit X12 groups", func(t *testing.T) {
		raw := strings.Replace(x12Status, "GE*1*1~", "N9*BM*123~\nGE*1*1~", 1)
		assert.Equal(t, []string{edi.CodeOrphanSegment}, issueCodes(validate(t, raw, Options{})))

		raw = strings.Replace(strings.Replace(x12Status, "GS*QM*SENDER*RECEIVER*20240101*1200*1*X*004010~\n", "", 1), "GE*1*1~\n", "", 1)
		raw = strings.Replace(raw, "IEA*1", "IEA*0", 1)
		assert.Equal(t, []string{edi.CodeImplicitEnvelope}, issueCodes(validate(t, raw, Options{})))
	})

	t.Run("Should count messages in UNZ when there are no groups", func(t *testing.T) {
		raw := strings.Replace(edifactStatus, "UNZ+1+1", "UNZ+2+1", 1)
		assert.Equal(t, []string{edi.CodeCountMismatch}, issueCodes(validate(t, raw, Options{})))
	})
}

func TestValidateStructure(t *testing.T) {
	t.Run("Should report a missing mandatory segment at the trailer", func(t *testing.T) {
		raw := strings.Replace(x12Status, "B10*REF123*SHIP456*SCAC~\n", "", 1)
		raw = strings.Replace(raw, "SE*7", "SE*6", 1)
		iss := validate(t, raw, Options{})
		require.Len(t, iss, 1)
		assert.Equal(t, edi.CodeMandatoryMissing, iss[0].Code)
		assert.Equal(t, "SE", iss[0].SegmentID)
		assert.Equal(t, "B10", iss[0].Value)
	})

	t.Run("Should report segments out of sequence", func(t *testing.T) {
		raw := strings.Replace(x12Status, "N3*100 MAIN ST~\n", "", 1)
		raw = strings.Replace(raw, "N4*CHICAGO*IL*60601*US~\n", "N4*CHICAGO*IL*60601*US~\nN3*100 MAIN ST~\n", 1)
		iss := validate(t, raw, Options{})
		assert.Equal(t, []string{edi.CodeOutOfSequence}, issueCodes(iss))
		assert.Equal(t, "N3", iss[0].SegmentID)
		assert.Equal(t, 7, iss[0].SegmentPosition)
	})

	t.Run("Should allow loops to repeat", func(t *testing.T) {
		raw := strings.Replace(x12Status, "DTM*011*20240101~\n", "N1*CN*CONSIGNEE INC~\nN4*DALLAS*TX*75201*US~\nDTM*011*20240101~\n", 1)
		raw = strings.Replace(raw, "SE*7", "SE*9", 1)
		assert.Empty(t, validate(t, raw, Options{}))
	})

	t.Run("Should report segments not in the set", func(t *testing.T) {
		raw := strings.Replace(x12Status, "DTM*011*20240101~\n", "DTM*011*20240101~\nBEG*00*SA*PO1**20240101~\n", 1)
		raw = strings.Replace(raw, "SE*7", "SE*8", 1)
		assert.Equal(t, []string{edi.CodeNotInSet}, issueCodes(validate(t, raw, Options{})))
	})

	t.Run("Should warn and check only elements for unknown transactions", func(t *testing.T) {
		raw := strings.Replace(x12Status, "ST*214", "ST*999", 1)
		iss := validate(t, raw, Options{})
		require.Len(t, iss, 1)
		assert.Equal(t, edi.CodeUnsupportedTransaction, iss[0].Code)
		assert.Equal(t, edi.SeverityWarning, iss[0].Severity)
	})
}

func TestValidateElements(t *testing.T) {
	t.Run("Should report one ElementError for an over-long value", func(t *testing.T) {
		raw := strings.Replace(x12Status, "ACME SHIPPING", strings.Repeat("A", 70), 1)
		iss := validate(t, raw, Options{})
		require.Len(t, iss, 1)
		assert.Equal(t, edi.KindElement, iss[0].Kind)
		assert.Equal(t, edi.CodeTooLong, iss[0].Code)
		assert.Equal(t, "N1", iss[0].SegmentID)
		assert.Equal(t, 5, iss[0].SegmentPosition)
		assert.Equal(t, 2, iss[0].ElementPosition)
		assert.Equal(t, edi.SeverityError, iss[0].Severity)
	})

	t.Run("Should downgrade element issues to warnings when lenient", func(t *testing.T) {
		raw := strings.Replace(x12Status, "ACME SHIPPING", strings.Repeat("A", 70), 1)
		iss := validate(t, raw, Options{Strictness: StrictnessLenient})
		require.Len(t, iss, 1)
		assert.Equal(t, edi.SeverityWarning, iss[0].Severity)
	})

	t.Run("Should hint the canonical code for case mismatches", func(t *testing.T) {
		raw := strings.Replace(x12Status, "N1*SH", "N1*sh", 1)
		iss := validate(t, raw, Options{})
		require.Len(t, iss, 1)
		assert.Equal(t, edi.CodeInvalidCode, iss[0].Code)
		assert.Equal(t, "SH", iss[0].Hint)
	})

	t.Run("Should validate dates, times and numbers", func(t *testing.T) {
		raw := strings.Replace(x12Status, "DTM*011*20240101", "DTM*011*20241301*2561", 1)
		assert.Equal(t, []string{edi.CodeInvalidDate, edi.CodeInvalidTime}, issueCodes(validate(t, raw, Options{})))
	})

	t.Run("Should report too many elements", func(t *testing.T) {
		raw := strings.Replace(x12Status, "N3*100 MAIN ST", "N3*100 MAIN ST*SUITE 1*EXTRA", 1)
		assert.Equal(t, []string{edi.CodeTooManyElements}, issueCodes(validate(t, raw, Options{})))
	})

	t.Run("Should check composite components", func(t *testing.T) {
		raw := strings.Replace(edifactStatus, "NAD+CA+SCAC", "NAD+CA+SCAC++"+strings.Repeat("B", 40), 1)
		iss := validate(t, raw, Options{})
		require.Len(t, iss, 1)
		assert.Equal(t, edi.CodeTooLong, iss[0].Code)
		assert.Equal(t, 4, iss[0].ElementPosition)
		assert.Equal(t, 1, iss[0].ComponentPosition)
	})
}

func TestValidateProfiles(t *testing.T) {
	t.Run("Should apply the trucking profile", func(t *testing.T) {
		iss := validate(t, x12Status, Options{Profile: "trucking"})
		require.Len(t, iss, 3)
		for _, is := range iss {
			assert.Equal(t, edi.KindBusinessRule, is.Kind)
		}
		assert.Equal(t, 2, iss.Errors())
		assert.Equal(t, 1, iss.Warnings())
	})

	t.Run("Should use the table industry in auto mode", func(t *testing.T) {
		raw := strings.Replace(x12Status, "N1*SH*ACME SHIPPING", "N1*CA*ACME CARRIER", 1)
		raw = strings.Replace(raw, "DTM*011*20240101~\n", "DTM*011*20240101~\nLX*1~\n", 1)
		raw = strings.Replace(raw, "B10*REF123*SHIP456*SCAC~\n", "B10*REF123*SHIP456*SCAC~\nREF*MB*MBL001~\nREF*PO*PO42~\n", 1)
		raw = strings.Replace(raw, "SE*7", "SE*10", 1)
		assert.Empty(t, validate(t, raw, Options{Profile: grammar.ProfileAuto}))
	})

	t.Run("Should apply EDIFACT rules", func(t *testing.T) {
		iss := validate(t, edifactStatus, Options{Profile: "ocean"})
		assert.Len(t, iss, 4)
	})
}

func TestParseStrictness(t *testing.T) {
	s, err := ParseStrictness("LENIENT")
	require.NoError(t, err)
	assert.Equal(t, StrictnessLenient, s)

	s, err = ParseStrictness("")
	require.NoError(t, err)
	assert.Equal(t, StrictnessStrict, s)

	_, err = ParseStrictness("relaxed")
	assert.Error(t, err)
}
