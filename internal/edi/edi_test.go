package edi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSegment(t *testing.T) {
	t.Run("Should split X12 elements and composites", func(t *testing.T) {
		seg := ParseSegment("AK4*2:1*66*7", DefaultDelimiters(X12))
		assert.Equal(t, "AK4", seg.ID)
		require.Len(t, seg.Elements, 3)
		assert.True(t, seg.Elements[0].Composite)
		assert.Equal(t, "1", seg.Get(MustPath("1.2")))
		assert.Equal(t, "7", seg.Value(3))
	})

	t.Run("Should never split the ISA segment into components", func(t *testing.T) {
		seg := ParseSegment("ISA*00*          *00*          *ZZ*SENDER         *ZZ*RECEIVER       *240101*1200*U*00401*000000001*0*P*:", DefaultDelimiters(X12))
		require.Len(t, seg.Elements, 16)
		assert.False(t, seg.Elements[15].Composite)
		assert.Equal(t, ":", seg.Value(16))
	})

	t.Run("Should honour the EDIFACT release character", func(t *testing.T) {
		seg := ParseSegment("FTX+AAI+++PRICE ?+ TAX?: 10?? OFF", DefaultDelimiters(EDIFACT))
		assert.Equal(t, "PRICE + TAX: 10? OFF", seg.Value(4))
		assert.False(t, seg.Elements[3].Composite)
	})

	t.Run("Should keep empty trailing elements", func(t *testing.T) {
		seg := ParseSegment("N1*SH*ACME**", DefaultDelimiters(X12))
		assert.Len(t, seg.Elements, 4)
	})
}

func TestRenderRoundTrip(t *testing.T) {
	delims := DefaultDelimiters(EDIFACT)
	body := "FTX+AAI+++PRICE ?+ TAX?: 10?? OFF"
	seg := ParseSegment(body, delims)
	assert.Equal(t, body+"'", FormatSegment(seg, delims))
}

func TestRenderRawBody(t *testing.T) {
	delims := DefaultDelimiters(EDIFACT)

	t.Run("Should write a release before a plain character back unchanged", func(t *testing.T) {
		seg := ParseSegment("NAD+CA+SC?AC", delims)
		seg.Raw = "NAD+CA+SC?AC"
		assert.Equal(t, "SCAC", seg.Value(2))
		assert.Equal(t, "NAD+CA+SC?AC'", FormatSegment(seg, delims))
	})

	t.Run("Should escape again once a value changed", func(t *testing.T) {
		seg := ParseSegment("NAD+CA+SC?AC", delims)
		seg.Raw = "NAD+CA+SC?AC"
		seg.Set(MustPath("2"), "A+B")
		assert.Equal(t, "NAD+CA+A?+B'", FormatSegment(seg, delims))
	})

	t.Run("Should write padding after the suffix", func(t *testing.T) {
		seg := NewSegment("BGM", "23")
		seg.Suffix = "\n"
		seg.Padding = "'\n"
		assert.Equal(t, "BGM+23'\n'\n", FormatSegment(seg, delims))
	})

	t.Run("Should drop raw body and padding when rendering new output", func(t *testing.T) {
		seg := ParseSegment("NAD+CA+SC?AC", delims)
		seg.Raw = "NAD+CA+SC?AC"
		seg.Padding = "''"
		assert.Equal(t, "NAD+CA+SCAC'\n", string(Render([]*Segment{seg}, delims, "\n")))
	})
}

func TestSegmentSet(t *testing.T) {
	seg := NewSegment("NAD", "CA")
	seg.Set(MustPath("4.1"), "ACME LINES")
	seg.Set(MustPath("9"), "US")

	assert.Equal(t, "ACME LINES", seg.Get(MustPath("4.1")))
	assert.Len(t, seg.Elements, 9)

	seg.Set(MustPath("2.3"), "ZZZ")
	assert.True(t, seg.Elements[1].Composite)
	assert.Equal(t, "NAD+CA+::ZZZ++ACME LINES+++++US'", FormatSegment(seg, DefaultDelimiters(EDIFACT)))

	seg.Set(MustPath("9"), "")
	seg.TrimTrailing()
	assert.Len(t, seg.Elements, 4)
}

func TestParsePath(t *testing.T) {
	p, err := ParsePath("04.01")
	require.NoError(t, err)
	assert.Equal(t, Path{Element: 4, Component: 1}, p)

	_, err = ParsePath("x")
	assert.Error(t, err)
	_, err = ParsePath("2.0")
	assert.Error(t, err)
}

func TestParseDialectVersion(t *testing.T) {
	dv, err := ParseDialectVersion("edifact:d96a")
	require.NoError(t, err)
	assert.Equal(t, DialectVersion{Dialect: EDIFACT, Version: "D96A"}, dv)
	assert.Equal(t, "EDIFACT:D96A", dv.String())

	dv, err = ParseDialectVersion("none")
	require.NoError(t, err)
	assert.True(t, dv.IsZero())

	_, err = ParseDialectVersion("TRADACOMS")
	assert.Error(t, err)
}

func TestServiceString(t *testing.T) {
	assert.Equal(t, "UNA:+.? '", DefaultDelimiters(EDIFACT).ServiceString())
}

func TestIssues(t *testing.T) {
	iss := Issues{
		{Kind: KindStructural, Severity: SeverityError, Code: CodeMissingTrailer, TransactionIndex: 1},
		{Kind: KindElement, Severity: SeverityWarning, Code: CodeTooLong, TransactionIndex: 1},
		{Kind: KindElement, Severity: SeverityError, Code: CodeTooLong, TransactionIndex: 2},
	}
	assert.Equal(t, 2, iss.Errors())
	assert.Equal(t, 1, iss.Warnings())
	assert.Len(t, iss.ForTransaction(1), 2)
	assert.Len(t, iss.ByKind(KindElement), 2)
	assert.Contains(t, iss.Error(), CodeMissingTrailer)
}

func TestSequence(t *testing.T) {
	t.Run("Should count up from the start value", func(t *testing.T) {
		s := NewSequenceAt(7)
		assert.Equal(t, uint64(7), s.Next())
		assert.Equal(t, uint64(8), s.Next())
	})

	t.Run("Should wrap within nine digits", func(t *testing.T) {
		s := NewSequenceAt(999999999)
		assert.Equal(t, uint64(999999999), s.Next())
		assert.Equal(t, uint64(1), s.Next())
	})

	t.Run("Should skip numbers already used by the source", func(t *testing.T) {
		s := NewSequenceAt(1)
		assert.Equal(t, "000000002", NextDistinct(s, "%09d", "1"))
	})

	t.Run("Should stay in range from a random seed", func(t *testing.T) {
		s := NewSequence()
		for i := 0; i < 100; i++ {
			n := s.Next()
			assert.True(t, n >= 1 && n <= 999999999)
		}
	})
}
