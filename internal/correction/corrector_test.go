package correction

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

type fixture struct {
	res       *parser.Result
	corrector *Corrector
	validator *validation.Validator
}

func setup(t *testing.T, raw string) *fixture {
	t.Helper()
	det, err := detect.Detect([]byte(raw))
	require.NoError(t, err)
	res, err := parser.Parse(context.Background(), det.Payload, det.Info)
	require.NoError(t, err)

	registry := grammar.Builtin()
	v := validation.NewValidator(registry, validation.Options{})
	return &fixture{res: res, validator: v, corrector: NewCorrector(registry, v, nil)}
}

func (f *fixture) correct(t *testing.T) *Outcome {
	t.Helper()
	out, err := f.corrector.Correct(context.Background(), f.res.Document, f.res.Errors, f.validator.Validate(f.res))
	require.NoError(t, err)
	return out
}

func TestCorrect(t *testing.T) {
	t.Run("Should truncate an over-long name and clear the error", func(t *testing.T) {
		f := setup(t, strings.Replace(x12Status, "ACME SHIPPING", strings.Repeat("A", 70), 1))
		out := f.correct(t)

		assert.Empty(t, out.Issues)
		require.Len(t, out.Corrections, 1)
		c := out.Corrections[0]
		assert.Equal(t, ActionTruncate, c.Action)
		assert.Equal(t, edi.CodeTooLong, c.Issue.Code)
		assert.Len(t, c.Before, 70)
		assert.Len(t, c.After, 60)
		assert.Equal(t, c.After, f.res.Document.SegmentAt(5).Value(2))
	})

	t.Run("Should be idempotent", func(t *testing.T) {
		f := setup(t, strings.Replace(x12Status, "ACME SHIPPING", strings.Repeat("A", 70), 1))
		f.correct(t)
		again := f.correct(t)
		assert.Empty(t, again.Corrections)
		assert.Empty(t, again.Issues)
	})

	t.Run("Should normalize the case of a known code", func(t *testing.T) {
		f := setup(t, strings.Replace(x12Status, "N1*SH", "N1*sh", 1))
		out := f.correct(t)
		assert.Empty(t, out.Issues)
		require.Len(t, out.Corrections, 1)
		assert.Equal(t, ActionNormalizeCase, out.Corrections[0].Action)
		assert.Equal(t, "SH", out.Corrections[0].After)
	})

	t.Run("Should pad fixed-length text on the right", func(t *testing.T) {
		f := setup(t, strings.Replace(x12Status, "N4*CHICAGO*IL", "N4*CHICAGO*I", 1))
		out := f.correct(t)
		assert.Empty(t, out.Issues)
		require.Len(t, out.Corrections, 1)
		assert.Equal(t, ActionPadText, out.Corrections[0].Action)
		assert.Equal(t, "I ", out.Corrections[0].After)
	})

	t.Run("Should never rewrite control numbers", func(t *testing.T) {
		f := setup(t, strings.Replace(x12Status, "IEA*1*000000001", "IEA*1*1", 1))
		out := f.correct(t)
		assert.Empty(t, out.Corrections)
		assert.Contains(t, issueCodes(out.Issues), edi.CodeTooShort)
		assert.Equal(t, "1", f.res.Document.SegmentAt(11).Value(2))
	})

	t.Run("Should revert a fix that does not clear its issue", func(t *testing.T) {
		f := setup(t, strings.Replace(x12Status, "ACME SHIPPING", strings.Repeat("A", 70), 1))
		f.corrector.Register(edi.CodeTooLong, func(v string, _ grammar.ElementDef, _ edi.Issue) (string, string, bool) {
			return v + "B", "append", true
		})
		out := f.correct(t)

		assert.Empty(t, out.Corrections)
		assert.Equal(t, []string{edi.CodeTooLong, edi.CodeCorrectionFailed}, issueCodes(out.Issues))
		assert.True(t, out.Issues[0].CorrectionFailed)
		assert.Equal(t, edi.KindCorrectionFailure, out.Issues[1].Kind)
		assert.Equal(t, edi.SeverityWarning, out.Issues[1].Severity)
		assert.Equal(t, strings.Repeat("A", 70), f.res.Document.SegmentAt(5).Value(2))
	})

	t.Run("Should stop when the context is cancelled", func(t *testing.T) {
		f := setup(t, x12Status)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := f.corrector.Correct(ctx, f.res.Document, f.res.Errors, nil)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestFixes(t *testing.T) {
	t.Run("Should pad fixed-length numerics with zeros after the sign", func(t *testing.T) {
		def := grammar.ElementDef{Type: grammar.TypeN, Min: 4, Max: 4}
		after, action, ok := pad("-42", def, edi.Issue{})
		require.True(t, ok)
		assert.Equal(t, "-0042", after)
		assert.Equal(t, ActionPadNumeric, action)
	})

	t.Run("Should not pad variable-length elements", func(t *testing.T) {
		_, _, ok := pad("1", grammar.ElementDef{Type: grammar.TypeAN, Min: 2, Max: 30}, edi.Issue{})
		assert.False(t, ok)
	})

	t.Run("Should not truncate numbers", func(t *testing.T) {
		_, _, ok := truncate("1234567", grammar.ElementDef{Type: grammar.TypeR, Max: 4}, edi.Issue{})
		assert.False(t, ok)
	})
}

func issueCodes(iss edi.Issues) []string {
	out := make([]string, len(iss))
	for i, is := range iss {
		out[i] = is.Code
	}
	return out
}
