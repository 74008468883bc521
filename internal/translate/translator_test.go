package translate

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

func parse(t *testing.T, raw string) *edi.Document {
	t.Helper()
	det, err := detect.Detect([]byte(raw))
	require.NoError(t, err)
	res, err := parser.Parse(context.Background(), det.Payload, det.Info)
	require.NoError(t, err)
	return res.Document
}

func newTranslator() *Translator {
	return NewTranslator(grammar.Builtin(), Config{
		ControlNumbers: edi.NewSequenceAt(100),
		Now:            func() time.Time { return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC) },
	})
}

func bodyIDs(tx *edi.Transaction) []string {
	out := make([]string, len(tx.Segments))
	for i, s := range tx.Segments {
		out[i] = s.ID
	}
	return out
}

func TestTranslateX12ToEDIFACT(t *testing.T) {
	t.Run("Should map name, address and dates into a valid IFTSTA", func(t *testing.T) {
		out, err := newTranslator().Translate(context.Background(), parse(t, x12Status), edi.DialectVersion{Dialect: edi.EDIFACT})
		require.NoError(t, err)

		assert.Equal(t, "EDIFACT:D96A", out.Target.String())
		assert.Empty(t, out.Gaps)
		assert.Empty(t, out.Issues)
		assert.Equal(t, 1, out.Transactions)

		txs := out.Document.Transactions()
		require.Len(t, txs, 1)
		tx := txs[0]
		assert.Equal(t, "IFTSTA", tx.SetID)
		assert.Equal(t, []string{"BGM", "DTM", "RFF", "NAD"}, bodyIDs(tx))

		dtm := tx.Segments[1]
		assert.Equal(t, "11", dtm.Get(edi.MustPath("1.1")))
		assert.Equal(t, "20240101", dtm.Get(edi.MustPath("1.2")))
		assert.Equal(t, "102", dtm.Get(edi.MustPath("1.3")))

		nad := tx.Segments[3]
		assert.Equal(t, "CZ", nad.Value(1))
		assert.Equal(t, "ACME SHIPPING", nad.Get(edi.MustPath("4.1")))
		assert.Equal(t, "100 MAIN ST", nad.Get(edi.MustPath("5.1")))
		assert.Equal(t, "CHICAGO", nad.Value(6))
		assert.Equal(t, "US", nad.Value(9))

		ic := out.Document.Interchanges[0]
		assert.Equal(t, "SENDER", ic.SenderID)
		assert.Equal(t, "RECEIVER", ic.ReceiverID)
		assert.True(t, strings.HasPrefix(string(out.Text), "UNA:+.? '\nUNB+UNOC:3+SENDER:ZZ+RECEIVER:ZZ+240101:1200+100'"))
	})

	t.Run("Should report segments without a rule as gaps", func(t *testing.T) {
		raw := strings.Replace(x12Status, "B10*REF123*SHIP456*SCAC~\n", "B10*REF123*SHIP456*SCAC~\nL11*ABC*BM~\n", 1)
		raw = strings.Replace(raw, "SE*7", "SE*8", 1)
		out, err := newTranslator().Translate(context.Background(), parse(t, raw), edi.DialectVersion{Dialect: edi.EDIFACT})
		require.NoError(t, err)

		require.Len(t, out.Gaps, 1)
		gap := out.Gaps[0]
		assert.Equal(t, edi.KindTranslationGap, gap.Kind)
		assert.Equal(t, edi.SeverityWarning, gap.Severity)
		assert.Equal(t, "L11", gap.SegmentID)
		assert.Equal(t, 1, gap.TransactionIndex)
		assert.Empty(t, out.Issues)
	})

	t.Run("Should keep repeated loops together", func(t *testing.T) {
		raw := strings.Replace(x12Status, "DTM*011*20240101~\n", "DTM*011*20240101~\nLX*1~\nAT7*X1*NS~\nLX*2~\nAT7*D1*NS~\n", 1)
		raw = strings.Replace(raw, "SE*7", "SE*11", 1)
		out, err := newTranslator().Translate(context.Background(), parse(t, raw), edi.DialectVersion{Dialect: edi.EDIFACT})
		require.NoError(t, err)

		assert.Empty(t, out.Issues)
		tx := out.Document.Transactions()[0]
		assert.Equal(t, []string{"BGM", "DTM", "RFF", "NAD", "CNI", "STS", "CNI", "STS"}, bodyIDs(tx))
		assert.Equal(t, "D1", tx.Segments[7].Get(edi.MustPath("2.1")))
	})

	t.Run("Should report a transaction with no equivalent", func(t *testing.T) {
		raw := strings.Replace(x12Status, "ST*214", "ST*999", 1)
		out, err := newTranslator().Translate(context.Background(), parse(t, raw), edi.DialectVersion{Dialect: edi.EDIFACT})
		require.NoError(t, err)

		require.Len(t, out.Gaps, 1)
		assert.Equal(t, "ST", out.Gaps[0].SegmentID)
		assert.Equal(t, 0, out.Transactions)
		assert.Empty(t, out.Document.Transactions())
	})
}

func TestTranslateEDIFACTToX12(t *testing.T) {
	out, err := newTranslator().Translate(context.Background(), parse(t, edifactStatus), edi.DialectVersion{Dialect: edi.X12})
	require.NoError(t, err)

	assert.Empty(t, out.Gaps)
	txs := out.Document.Transactions()
	require.Len(t, txs, 1)
	assert.Equal(t, "214", txs[0].SetID)
	assert.Equal(t, "QM", out.Document.Interchanges[0].Groups[0].FunctionalID)
	assert.Equal(t, []string{"B10", "N1"}, bodyIDs(txs[0]))
	assert.Contains(t, string(out.Text), "B10*REF+123*REF+123~")
	assert.Contains(t, string(out.Text), "N1*CA~")
	assert.Equal(t, "000000100", out.Document.Interchanges[0].ControlNumber)
}

func TestTranslateErrors(t *testing.T) {
	tr := newTranslator()
	doc := parse(t, x12Status)

	_, err := tr.Translate(context.Background(), doc, edi.DialectVersion{Dialect: edi.X12})
	assert.Error(t, err)

	_, err = tr.Translate(context.Background(), doc, edi.DialectVersion{Dialect: edi.EDIFACT, Version: "D99Z"})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = tr.Translate(ctx, doc, edi.DialectVersion{Dialect: edi.EDIFACT})
	var se *edi.StructuralError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, edi.ReasonAborted, se.Reason)
}
