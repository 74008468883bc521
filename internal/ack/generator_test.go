package ack

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/edi-codec/internal/detect"
	"github.com/ginjaninja78/edi-codec/internal/edi"
	"github.com/ginjaninja78/edi-codec/internal/grammar"
	"github.com/ginjaninja78/edi-codec/internal/parser"
	"github.com/ginjaninja78/edi-codec/internal/validation"
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

// run parses and validates raw, then acknowledges it.
func run(t *testing.T, raw string, strictness validation.Strictness) (*Acknowledgment, edi.Issues) {
	t.Helper()
	res := parse(t, raw)
	issues := validation.NewValidator(grammar.Builtin(), validation.Options{Strictness: strictness}).Validate(res)

	gen := NewGenerator(Config{
		ControlNumbers: edi.NewSequenceAt(1),
		Now:            func() time.Time { return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC) },
	})
	a := gen.Generate(res.Document, issues)
	require.NotNil(t, a)
	return a, issues
}

func parse(t *testing.T, raw string) *parser.Result {
	t.Helper()
	det, err := detect.Detect([]byte(raw))
	require.NoError(t, err)
	res, err := parser.Parse(context.Background(), det.Payload, det.Info)
	require.NoError(t, err)
	return res
}

// revalidate checks that a generated acknowledgment is itself valid EDI.
func revalidate(t *testing.T, a *Acknowledgment) edi.Issues {
	t.Helper()
	return validation.NewValidator(grammar.Builtin(), validation.Options{}).Validate(parse(t, string(a.Text)))
}

func TestGenerateX12(t *testing.T) {
	t.Run("Should accept a well-formed 214", func(t *testing.T) {
		a, issues := run(t, x12Status, validation.StrictnessStrict)
		require.Empty(t, issues)

		assert.Equal(t, "997", a.SetID)
		require.Len(t, a.Entries, 1)
		assert.Equal(t, StatusAccepted, a.Entries[0].Status)
		assert.Empty(t, a.Entries[0].Details)

		text := string(a.Text)
		assert.True(t, strings.HasPrefix(text,
			"ISA*00*          *00*          *ZZ*RECEIVER       *ZZ*SENDER         *240101*1200*U*00401*000000002*0*P*:~\n"))
		assert.Contains(t, text, "GS*FA*RECEIVER*SENDER*20240101*1200*3*X*004010~\n")
		assert.Contains(t, text, "ST*997*0004~\nAK1*QM*1~\nAK2*214*0001~\nAK5*A~\nAK9*A*1*1*1~\nSE*6*0004~\n")
		assert.True(t, strings.HasSuffix(text, "GE*1*3~\nIEA*1*000000002~\n"))
		assert.Empty(t, revalidate(t, a))
	})

	t.Run("Should reject a transaction missing its SE", func(t *testing.T) {
		raw := strings.Replace(x12Status, "SE*7*0001~\n", "", 1)
		a, issues := run(t, raw, validation.StrictnessStrict)
		require.Equal(t, 1, issues.Errors())

		require.Len(t, a.Entries, 1)
		e := a.Entries[0]
		assert.Equal(t, StatusRejected, e.Status)
		require.Len(t, e.Details, 1)
		assert.Equal(t, "ST", e.Details[0].SegmentID)
		assert.Equal(t, 1, e.Details[0].Position)

		text := string(a.Text)
		assert.Contains(t, text, "AK3*ST*1**3~\n")
		assert.Contains(t, text, "AK5*R*2~\n")
		assert.Contains(t, text, "AK9*R*1*1*0~\n")
		assert.Empty(t, revalidate(t, a))
	})

	t.Run("Should report element errors with AK4", func(t *testing.T) {
		raw := strings.Replace(x12Status, "N1*SH*ACME SHIPPING", "N1*SH*"+strings.Repeat("A", 61), 1)
		a, issues := run(t, raw, validation.StrictnessStrict)
		require.Equal(t, 1, issues.Errors())

		e := a.Entries[0]
		assert.Equal(t, StatusRejected, e.Status)
		require.Len(t, e.Details, 1)
		assert.Equal(t, "5", e.Details[0].ElementCode)

		text := string(a.Text)
		assert.Contains(t, text, "AK3*N1*3**8~\nAK4*2**5~\nAK5*R*5~\n")
		assert.Empty(t, revalidate(t, a))
	})

	t.Run("Should accept warnings in lenient mode", func(t *testing.T) {
		raw := strings.Replace(x12Status, "N1*SH*ACME SHIPPING", "N1*SH*"+strings.Repeat("A", 61), 1)
		a, issues := run(t, raw, validation.StrictnessLenient)
		require.NotEmpty(t, issues)
		assert.Zero(t, issues.Errors())
		assert.Equal(t, StatusAccepted, a.Entries[0].Status)
	})

	t.Run("Should report group count errors in AK9", func(t *testing.T) {
		raw := strings.Replace(x12Status, "GE*1*1", "GE*2*1", 1)
		a, _ := run(t, raw, validation.StrictnessStrict)
		assert.Equal(t, StatusAccepted, a.Entries[0].Status)
		assert.Contains(t, string(a.Text), "AK9*E*2*1*1*5~\n")
	})
}

func TestAcknowledgmentCorrectness(t *testing.T) {
	inputs := map[string]string{
		"clean":        x12Status,
		"missing SE":   strings.Replace(x12Status, "SE*7*0001~\n", "", 1),
		"bad count":    strings.Replace(x12Status, "SE*7*0001", "SE*3*0001", 1),
		"long name":    strings.Replace(x12Status, "ACME SHIPPING", strings.Repeat("B", 70), 1),
		"bad code":     strings.Replace(x12Status, "N1*SH", "N1*QQ", 1),
		"missing B10":  strings.Replace(strings.Replace(x12Status, "B10*REF123*SHIP456*SCAC~\n", "", 1), "SE*7", "SE*6", 1),
		"edifact":      edifactStatus,
		"edifact UNT":  strings.Replace(edifactStatus, "UNT+4+1'", "", 1),
		"edifact long": strings.Replace(edifactStatus, "REF?+123", strings.Repeat("R", 40), 1),
	}
	for name, raw := range inputs {
		t.Run("Should mirror the error count for "+name, func(t *testing.T) {
			a, issues := run(t, raw, validation.StrictnessStrict)
			for _, e := range a.Entries {
				errs := issues.ForTransaction(e.TransactionIndex).Errors()
				assert.Len(t, e.Details, errs)
				if errs > 0 {
					assert.Equal(t, StatusRejected, e.Status)
				} else {
					assert.Equal(t, StatusAccepted, e.Status)
				}
			}
		})
	}
}

func TestGenerateEDIFACT(t *testing.T) {
	t.Run("Should acknowledge with a CONTRL", func(t *testing.T) {
		a, issues := run(t, edifactStatus, validation.StrictnessStrict)
		require.Empty(t, issues)

		assert.Equal(t, "CONTRL", a.SetID)
		require.Len(t, a.Entries, 1)
		assert.Equal(t, StatusAccepted, a.Entries[0].Status)

		text := string(a.Text)
		assert.True(t, strings.HasPrefix(text, "UNA:+.? 'UNB+UNOA:1+RECEIVER:ZZ+SENDER:ZZ+240101:1200+2'"))
		assert.Contains(t, text, "UNH+3+CONTRL:D:96A:UN'")
		assert.Contains(t, text, "UCI+1+SENDER:ZZ+RECEIVER:ZZ+7'")
		assert.Contains(t, text, "UCM+1+IFTSTA:D:96A:UN+7'")
		assert.True(t, strings.HasSuffix(text, "UNT+4+3'UNZ+1+2'"))
		assert.Empty(t, revalidate(t, a))
	})

	t.Run("Should reject a message missing its UNT", func(t *testing.T) {
		raw := strings.Replace(edifactStatus, "UNT+4+1'", "", 1)
		a, _ := run(t, raw, validation.StrictnessStrict)

		require.Len(t, a.Entries, 1)
		assert.Equal(t, StatusRejected, a.Entries[0].Status)
		text := string(a.Text)
		assert.Contains(t, text, "UCI+1+SENDER:ZZ+RECEIVER:ZZ+4'")
		assert.Contains(t, text, "UCM+1+IFTSTA:D:96A:UN+4+13'")
		assert.Contains(t, text, "UCS+1+13'")
	})

	t.Run("Should report element errors with UCD", func(t *testing.T) {
		raw := strings.Replace(edifactStatus, "REF?+123", strings.Repeat("R", 40), 1)
		a, _ := run(t, raw, validation.StrictnessStrict)

		assert.Equal(t, StatusRejected, a.Entries[0].Status)
		assert.Contains(t, string(a.Text), "UCS+2'UCD+39+2'")
	})
}

func TestGenerateUnsupported(t *testing.T) {
	gen := NewGenerator(Config{})
	assert.Nil(t, gen.Generate(&edi.Document{}, nil))
	assert.Nil(t, gen.Generate(nil, nil))
}

func TestCodes(t *testing.T) {
	assert.Equal(t, "7", X12SegmentCode(edi.CodeOutOfSequence))
	assert.Equal(t, "8", X12SegmentCode(edi.CodeTooLong))
	c, ok := X12ElementCode(edi.CodeInvalidCode)
	assert.True(t, ok)
	assert.Equal(t, "7", c)
	_, ok = X12ElementCode(edi.CodeMandatoryMissing)
	assert.False(t, ok)
	assert.Equal(t, "29", EDIFACTCode(edi.CodeCountMismatch))
	assert.Equal(t, "18", EDIFACTCode("something_new"))
}
