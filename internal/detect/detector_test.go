package detect

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/edi-codec/internal/edi"
)

const (
	isa4010 = "ISA*00*          *00*          *ZZ*SENDER         *ZZ*RECEIVER       *240101*1200*U*00401*000000001*0*P*:~"
	isa5010 = "ISA*00*          *00*          *ZZ*SENDER         *ZZ*RECEIVER       *240101*1200*^*00501*000000001*0*P*>\n"

	edifactBody = "UNB+UNOA:1+SENDER+RECEIVER+240101:1200+1'UNH+1+IFTSTA:D:01B:UN'BGM+23+REF1'UNT+3+1'UNZ+1+1'"
)

func TestDetectX12(t *testing.T) {
	t.Run("Should read delimiters from the ISA header", func(t *testing.T) {
		res, err := Detect([]byte(isa4010 + "GS*QM*S*R*20240101*1200*1*X*004010~"))
		require.NoError(t, err)
		assert.Equal(t, edi.X12, res.Info.Dialect)
		assert.Equal(t, "004010", res.Info.Version)
		assert.Equal(t, byte('*'), res.Info.Delimiters.Element)
		assert.Equal(t, byte(':'), res.Info.Delimiters.Component)
		assert.Equal(t, byte('~'), res.Info.Delimiters.Segment)
		assert.Zero(t, res.Info.Delimiters.Repetition)
		assert.Empty(t, res.Info.Wrapper)
	})

	t.Run("Should record the repetition separator for 00501", func(t *testing.T) {
		res, err := Detect([]byte(isa5010))
		require.NoError(t, err)
		assert.Equal(t, "005010", res.Info.Version)
		assert.Equal(t, byte('^'), res.Info.Delimiters.Repetition)
		assert.Equal(t, byte('>'), res.Info.Delimiters.Component)
		assert.Equal(t, byte('\n'), res.Info.Delimiters.Segment)
	})

	t.Run("Should strip a byte order mark and leading whitespace", func(t *testing.T) {
		res, err := Detect(append([]byte{0xEF, 0xBB, 0xBF, '\n', ' '}, isa4010...))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(res.Payload), "ISA*"))
	})

	t.Run("Should reject a header with a misplaced separator", func(t *testing.T) {
		broken := strings.Replace(isa4010, "*SENDER         *", "*SENDER          ", 1)
		_, err := Detect([]byte(broken))
		var fe *edi.FramingError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, "malformed interchange header", fe.Reason)
	})

	t.Run("Should reject a truncated header", func(t *testing.T) {
		_, err := Detect([]byte(isa4010[:60]))
		var fe *edi.FramingError
		require.True(t, errors.As(err, &fe))
	})
}

func TestDetectEDIFACT(t *testing.T) {
	t.Run("Should use defaults and scan the message version", func(t *testing.T) {
		res, err := Detect([]byte(edifactBody))
		require.NoError(t, err)
		assert.Equal(t, edi.EDIFACT, res.Info.Dialect)
		assert.Equal(t, "D01B", res.Info.Version)
		assert.False(t, res.Info.Explicit)
		assert.Equal(t, edi.DefaultDelimiters(edi.EDIFACT), res.Info.Delimiters)
	})

	t.Run("Should read delimiters from UNA", func(t *testing.T) {
		raw := "UNA|*.# !\nUNB*UNOA|1*S*R*240101|1200*1!UNH*1*IFTSTA|D|96A|UN!UNT*2*1!UNZ*1*1!"
		res, err := Detect([]byte(raw))
		require.NoError(t, err)
		assert.True(t, res.Info.Explicit)
		assert.Equal(t, byte('|'), res.Info.Delimiters.Component)
		assert.Equal(t, byte('*'), res.Info.Delimiters.Element)
		assert.Equal(t, byte('#'), res.Info.Delimiters.Release)
		assert.Equal(t, byte('!'), res.Info.Delimiters.Segment)
		assert.Equal(t, "D96A", res.Info.Version)
	})

	t.Run("Should default the version when no UNH is present", func(t *testing.T) {
		res, err := Detect([]byte("UNB+UNOA:1+S+R+240101:1200+1'UNZ+0+1'"))
		require.NoError(t, err)
		assert.Equal(t, DefaultEDIFACTVersion, res.Info.Version)
	})

	t.Run("Should reject UNA without UNB", func(t *testing.T) {
		_, err := Detect([]byte("UNA:+.? 'UNH+1+IFTSTA:D:96A:UN'"))
		var fe *edi.FramingError
		require.True(t, errors.As(err, &fe))
	})
}

func TestDetectWrapped(t *testing.T) {
	t.Run("Should unwrap XML_EDI", func(t *testing.T) {
		raw := `<?xml version="1.0" encoding="UTF-8"?><Envelope><EDI>` + edifactBody + `</EDI></Envelope>`
		res, err := Detect([]byte(raw))
		require.NoError(t, err)
		assert.Equal(t, edi.WrapperXML, res.Info.Wrapper)
		assert.Equal(t, edi.EDIFACT, res.Info.Dialect)
		assert.Equal(t, edifactBody, string(res.Payload))
	})

	t.Run("Should unwrap XML without a declaration", func(t *testing.T) {
		res, err := Detect([]byte("<EDI>" + isa4010 + "</EDI>"))
		require.NoError(t, err)
		assert.Equal(t, edi.WrapperXML, res.Info.Wrapper)
		assert.Equal(t, edi.X12, res.Info.Dialect)
	})

	t.Run("Should unwrap JSON_EDI", func(t *testing.T) {
		raw := `{"ediType":"X12","payload":"` + isa4010 + `"}`
		res, err := Detect([]byte(raw))
		require.NoError(t, err)
		assert.Equal(t, edi.WrapperJSON, res.Info.Wrapper)
		assert.Equal(t, edi.X12, res.Info.Dialect)
		assert.Equal(t, isa4010, string(res.Payload))
	})

	t.Run("Should reject JSON without ediType", func(t *testing.T) {
		_, err := Detect([]byte(`{"payload":"` + isa4010 + `"}`))
		var fe *edi.FramingError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, "unrecognized dialect", fe.Reason)
	})

	t.Run("Should reject unknown content", func(t *testing.T) {
		_, err := Detect([]byte("HELLO WORLD"))
		var fe *edi.FramingError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, "unrecognized dialect", fe.Reason)
	})
}
