package correction

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/edi-codec/internal/detect"
	"github.com/ginjaninja78/edi-codec/internal/grammar"
	"github.com/ginjaninja78/edi-codec/internal/parser"
	"github.com/ginjaninja78/edi-codec/internal/validation"
)

func FuzzCorrectTwice(f *testing.F) {
	f.Add(x12Status)
	f.Add(strings.Replace(x12Status, "ACME SHIPPING", strings.Repeat("A", 70), 1))
	f.Add(strings.Replace(x12Status, "N1*SH", "N1*sh", 1))
	f.Add(strings.Replace(x12Status, "SE*7*0001~\n", "", 1))
	f.Add("UNA:+.? 'UNB+UNOA:1+S:ZZ+R:ZZ+240101:1200+1'UNH+1+IFTSTA:D:96A:UN'BGM+23+REF?+123'NAD+ca+SCAC'UNT+4+1'UNZ+1+1'")

	registry := grammar.Builtin()
	f.Fuzz(func(t *testing.T, raw string) {
		det, err := detect.Detect([]byte(raw))
		if err != nil {
			return
		}
		res, err := parser.Parse(context.Background(), det.Payload, det.Info)
		require.NoError(t, err)

		v := validation.NewValidator(registry, validation.Options{})
		c := NewCorrector(registry, v, nil)
		first, err := c.Correct(context.Background(), res.Document, res.Errors, v.Validate(res))
		require.NoError(t, err)
		second, err := c.Correct(context.Background(), res.Document, res.Errors, first.Issues)
		require.NoError(t, err)

		assert.Empty(t, second.Corrections)
	})
}
