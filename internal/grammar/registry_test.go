package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/edi-codec/internal/edi"
)

func TestBuiltinRegistry(t *testing.T) {
	r := Builtin()

	t.Run("Should resolve transaction tables per version", func(t *testing.T) {
		s, ok := r.Transaction(edi.X12, "005010", "214")
		require.True(t, ok)
		assert.Equal(t, "005010", s.Key.Version)
		assert.Equal(t, "QM", s.FunctionalID)
	})

	t.Run("Should fall back to the default version", func(t *testing.T) {
		s, ok := r.Transaction(edi.X12, "003020", "214")
		require.True(t, ok)
		assert.Equal(t, "004010", s.Key.Version)

		m, ok := r.Transaction(edi.EDIFACT, "", "IFTSTA")
		require.True(t, ok)
		assert.Equal(t, "D96A", m.Key.Version)
	})

	t.Run("Should report unknown transactions", func(t *testing.T) {
		_, ok := r.Transaction(edi.X12, "004010", "999")
		assert.False(t, ok)
	})

	t.Run("Should expose segment definitions with control numbers flagged", func(t *testing.T) {
		isa, ok := r.Segment(edi.X12, "004010", "ISA")
		require.True(t, ok)
		require.Len(t, isa.Elements, 16)
		assert.True(t, isa.Elements[12].Control)
		assert.True(t, isa.Elements[12].FixedLength())

		unb, ok := r.Segment(edi.EDIFACT, "D96A", "UNB")
		require.True(t, ok)
		assert.True(t, unb.Elements[0].IsComposite())
	})

	t.Run("Should list registered versions", func(t *testing.T) {
		assert.Equal(t, []string{"004010", "005010", "006020", "007050"}, r.Versions(edi.X12))
		assert.Contains(t, r.Versions(edi.EDIFACT), "D01B")
	})

	t.Run("Should register industry profiles", func(t *testing.T) {
		assert.Equal(t, []string{"air", "ocean", "rail", "trucking"}, r.Profiles())
		ocean, ok := r.Profile("ocean")
		require.True(t, ok)
		assert.Len(t, ocean.RulesFor(edi.X12), 5)
	})
}

func TestCodeListLookup(t *testing.T) {
	cl, ok := Builtin().CodeList("entity_identifier")
	require.True(t, ok)

	t.Run("Should match exact codes", func(t *testing.T) {
		canonical, exact, found := cl.Lookup("SH")
		assert.True(t, found)
		assert.True(t, exact)
		assert.Equal(t, "SH", canonical)
	})

	t.Run("Should find the canonical casing", func(t *testing.T) {
		canonical, exact, found := cl.Lookup("sh")
		assert.True(t, found)
		assert.False(t, exact)
		assert.Equal(t, "SH", canonical)
	})

	t.Run("Should reject unknown codes", func(t *testing.T) {
		_, _, found := cl.Lookup("ZZZ")
		assert.False(t, found)
	})
}

func TestLoopRegion(t *testing.T) {
	s, ok := Builtin().Transaction(edi.X12, "004010", "214")
	require.True(t, ok)

	start, end := s.LoopRegion("0200")
	assert.Equal(t, s.Usage("LX"), start)
	assert.Equal(t, s.Usage("MEA"), end)

	start, end = s.LoopRegion("0200/0205")
	assert.Equal(t, s.Usage("AT7"), start)
	assert.Equal(t, s.Usage("MS2"), end)
}

func TestRegisterTransactionRejectsUnknownSegments(t *testing.T) {
	r := NewRegistry()
	r.RegisterSegments(edi.X12, "004010", x12Envelope()...)
	err := r.RegisterTransaction(&TransactionSchema{
		Key:  TableKey{Dialect: edi.X12, Version: "004010", TransactionID: "214"},
		Body: []SegmentUsage{mandatory("B10", 1)},
	})
	assert.Error(t, err)
}
