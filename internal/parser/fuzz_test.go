package parser

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/edi-codec/internal/detect"
	"github.com/ginjaninja78/edi-codec/internal/edi"
)

// balanced reports whether every envelope opener is closed by a trailer of
// the same level carrying an identical control number, with levels properly
// nested. Transactions and groups may appear without an explicit parent.
func balanced(d edi.Dialect, segments []*edi.Segment) bool {
	type open struct {
		level   Level
		control string
	}
	var stack []open
	for _, seg := range segments {
		level, opener, ok := EnvelopeTag(d, seg.ID)
		if !ok {
			continue
		}
		control := ControlNumber(d, seg)
		n := len(stack)
		if opener {
			if n > 0 && stack[n-1].level >= level {
				return false
			}
			stack = append(stack, open{level: level, control: control})
			continue
		}
		if n == 0 || stack[n-1].level != level || stack[n-1].control != control {
			return false
		}
		stack = stack[:n-1]
	}
	return len(stack) == 0
}

func seedDocuments() []string {
	return []string{
		x12Status,
		edifactStatus,
		strings.Replace(x12Status, "SE*7*0001~\n", "", 1),
		strings.Replace(x12Status, "SE*7*0001", "SE*7*0002", 1),
		strings.Replace(x12Status, "SCAC~\n", "SCAC~~\n", 1),
		strings.Replace(edifactStatus, "NAD+CA+SCAC'", "NAD+CA+SC?AC'", 1),
		strings.Replace(edifactStatus, "UNT+4+1'\n", "", 1),
		strings.TrimSuffix(x12Status, "~\n"),
		"UNB+UNOA:1+S+R+240101:1200+1'UNG+IFTSTA+S+R+240101:1200+9+UN+D:96A'UNH+1+IFTSTA:D:96A:UN'BGM+23'UNT+3+1'UNE+1+9'UNZ+1+1'",
	}
}

func FuzzParse(f *testing.F) {
	for _, seed := range seedDocuments() {
		f.Add([]byte(seed))
	}

	f.Fuzz(func(t *testing.T, raw []byte) {
		det, err := detect.Detect(raw)
		if err != nil {
			return
		}
		res, err := Parse(context.Background(), det.Payload, det.Info)
		require.NoError(t, err)

		if len(res.Errors) == 0 {
			assert.Equal(t, string(det.Payload), string(res.Document.Bytes()))
		}
		assert.Equal(t, !balanced(det.Info.Dialect, res.Document.Segments), len(res.Errors) > 0,
			"structural errors %v", codes(res.Errors))
	})
}

func TestParseSeeds(t *testing.T) {
	t.Run("Should flag exactly the unbalanced seeds", func(t *testing.T) {
		want := []bool{true, true, false, false, true, true, false, true, true}
		for i, seed := range seedDocuments() {
			res := parse(t, seed)
			assert.Equal(t, want[i], balanced(res.Document.Info.Dialect, res.Document.Segments), "seed %d", i)
			assert.Equal(t, !want[i], len(res.Errors) > 0, "seed %d", i)
		}
	})
}
