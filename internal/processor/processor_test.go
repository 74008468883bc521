package processor

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/edi-codec/internal/ack"
	"github.com/ginjaninja78/edi-codec/internal/edi"
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

func newProcessor() *Processor {
	return New(Config{
		ControlNumbers: edi.NewSequenceAt(500),
		Now:            func() time.Time { return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC) },
	})
}

func process(t *testing.T, raw string, opts Options) *Result {
	t.Helper()
	res, err := newProcessor().Process(context.Background(), []byte(raw), opts)
	require.NoError(t, err)
	return res
}

func TestScenarios(t *testing.T) {
	t.Run("Should accept a well-formed X12 214 (A)", func(t *testing.T) {
		res := process(t, x12Status, Options{GenerateAcknowledgment: true})

		assert.True(t, res.Acceptable)
		assert.Empty(t, res.Issues)
		assert.Equal(t, 11, res.Stats.Segments)
		assert.Equal(t, 1, res.Stats.Transactions)
		assert.NotEmpty(t, res.RunID)

		require.NotNil(t, res.Acknowledgment)
		require.Len(t, res.Acknowledgment.Entries, 1)
		assert.Equal(t, ack.StatusAccepted, res.Acknowledgment.Entries[0].Status)
	})

	t.Run("Should reject a transaction without SE (B)", func(t *testing.T) {
		raw := strings.Replace(x12Status, "SE*7*0001~\n", "", 1)
		res := process(t, raw, Options{GenerateAcknowledgment: true})

		assert.False(t, res.Acceptable)
		require.Len(t, res.Issues, 1)
		assert.Equal(t, edi.KindStructural, res.Issues[0].Kind)
		assert.Equal(t, ack.StatusRejected, res.Acknowledgment.Entries[0].Status)
		assert.Len(t, res.Acknowledgment.Entries[0].Details, 1)
	})

	t.Run("Should parse with declared EDIFACT delimiters (C)", func(t *testing.T) {
		res := process(t, edifactStatus, Options{})

		assert.True(t, res.Info.Explicit)
		assert.Equal(t, byte(':'), res.Info.Delimiters.Component)
		assert.Equal(t, byte('\''), res.Info.Delimiters.Segment)
		assert.True(t, res.Acceptable)
		assert.Equal(t, "REF+123", res.Summaries[0].Reference)
	})

	t.Run("Should truncate an over-long element once (D)", func(t *testing.T) {
		raw := strings.Replace(x12Status, "ACME SHIPPING", strings.Repeat("A", 70), 1)

		res := process(t, raw, Options{})
		require.Equal(t, 1, res.Stats.Errors)
		assert.Equal(t, edi.KindElement, res.Issues[0].Kind)
		assert.Equal(t, edi.CodeTooLong, res.Issues[0].Code)

		res = process(t, raw, Options{AutoCorrect: true})
		assert.True(t, res.Acceptable)
		require.Len(t, res.Corrections, 1)
		assert.Equal(t, strings.Repeat("A", 60), res.Corrections[0].After)
		assert.Equal(t, 1, res.Stats.Corrections)
	})

	t.Run("Should translate a status message to IFTSTA (E)", func(t *testing.T) {
		res := process(t, x12Status, Options{TranslateTo: edi.DialectVersion{Dialect: edi.EDIFACT}})

		require.NotNil(t, res.Translation)
		assert.Empty(t, res.Translation.Issues)
		assert.Empty(t, res.Translation.Gaps)
		assert.Zero(t, res.Stats.TranslationGaps)
		assert.Equal(t, "IFTSTA", res.Translation.Document.Transactions()[0].SetID)
	})
}

func TestProcessErrors(t *testing.T) {
	t.Run("Should return a framing error for unknown input", func(t *testing.T) {
		_, err := newProcessor().Process(context.Background(), []byte("hello world"), Options{})
		var fe *edi.FramingError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, "unrecognized dialect", fe.Reason)
	})

	t.Run("Should abort when the context is done", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := newProcessor().Process(ctx, []byte(x12Status), Options{AutoCorrect: true})
		var se *edi.StructuralError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, edi.ReasonAborted, se.Reason)
		assert.True(t, errors.Is(err, context.Canceled))
	})

	t.Run("Should report an impossible translation as a gap", func(t *testing.T) {
		res := process(t, x12Status, Options{TranslateTo: edi.DialectVersion{Dialect: edi.X12}})
		assert.Nil(t, res.Translation)
		assert.Equal(t, 1, res.Stats.TranslationGaps)
		assert.True(t, res.Acceptable)
		require.Len(t, res.Issues, 1)
		assert.Equal(t, edi.KindTranslationGap, res.Issues[0].Kind)
	})

	t.Run("Should downgrade element errors in lenient mode", func(t *testing.T) {
		raw := strings.Replace(x12Status, "ACME SHIPPING", strings.Repeat("A", 70), 1)
		res := process(t, raw, Options{Strictness: validation.StrictnessLenient})
		assert.True(t, res.Acceptable)
		assert.Equal(t, 1, res.Stats.Warnings)
	})
}

func TestProcessReader(t *testing.T) {
	t.Run("Should stream to the same result as in-memory parsing", func(t *testing.T) {
		p := newProcessor()
		mem, err := p.Process(context.Background(), []byte(x12Status), Options{})
		require.NoError(t, err)

		streamed, err := p.ProcessReader(context.Background(), strings.NewReader("\xEF\xBB\xBF\n"+x12Status), Options{})
		require.NoError(t, err)

		assert.Equal(t, mem.Stats, streamed.Stats)
		assert.Equal(t, mem.Info, streamed.Info)
		assert.Equal(t, x12Status, string(streamed.Document.Bytes()))
	})

	t.Run("Should unwrap JSON payloads read from a stream", func(t *testing.T) {
		wrapped, err := json.Marshal(map[string]string{"ediType": "EDIFACT", "payload": edifactStatus})
		require.NoError(t, err)

		res, err := newProcessor().ProcessReader(context.Background(), bytes.NewReader(wrapped), Options{})
		require.NoError(t, err)
		assert.Equal(t, edi.WrapperJSON, res.Info.Wrapper)
		assert.Equal(t, edi.EDIFACT, res.Info.Dialect)
		assert.True(t, res.Acceptable)
	})

	t.Run("Should unwrap JSON payloads larger than the detection window", func(t *testing.T) {
		wrapped, err := json.Marshal(map[string]string{
			"ediType": "EDIFACT",
			"comment": strings.Repeat("x", 12<<10),
			"payload": edifactStatus,
		})
		require.NoError(t, err)
		require.Greater(t, len(wrapped), 8<<10)

		res, err := newProcessor().ProcessReader(context.Background(), bytes.NewReader(wrapped), Options{})
		require.NoError(t, err)
		assert.Equal(t, edi.WrapperJSON, res.Info.Wrapper)
		assert.Equal(t, edi.EDIFACT, res.Info.Dialect)
		assert.Equal(t, 6, res.Stats.Segments)
	})

	t.Run("Should unwrap XML payloads larger than the detection window", func(t *testing.T) {
		wrapped := "<?xml version=\"1.0\"?>\n<Envelope><Note>" + strings.Repeat("y", 12<<10) +
			"</Note><EDI>" + x12Status + "</EDI></Envelope>"

		res, err := newProcessor().ProcessReader(context.Background(), strings.NewReader(wrapped), Options{})
		require.NoError(t, err)
		assert.Equal(t, edi.WrapperXML, res.Info.Wrapper)
		assert.Equal(t, edi.X12, res.Info.Dialect)
		assert.True(t, res.Acceptable)
		assert.Equal(t, 11, res.Stats.Segments)
	})
}

func TestSummaries(t *testing.T) {
	raw := strings.Replace(x12Status, "DTM*011*20240101~\n", "DTM*011*20240101~\nLX*1~\nAT7*D1*NS***20240102*1530~\n", 1)
	raw = strings.Replace(raw, "SE*7", "SE*9", 1)
	res := process(t, raw, Options{})

	require.Len(t, res.Summaries, 1)
	s := res.Summaries[0]
	assert.Equal(t, "214", s.SetID)
	assert.Equal(t, "SHIP456", s.Reference)
	assert.Equal(t, Party{Qualifier: "SH", Name: "ACME SHIPPING"}, s.Carrier)
	assert.Equal(t, "100 MAIN ST", s.Location.Address)
	assert.Equal(t, "CHICAGO", s.Location.City)
	assert.Equal(t, "US", s.Location.Country)
	assert.Equal(t, "20240101", s.Date)
	require.Len(t, s.Events, 1)
	assert.Equal(t, Event{Code: "D1", Description: "Delivered", Reason: "NS", Date: "20240102", Time: "1530"}, s.Events[0])
}

func TestPool(t *testing.T) {
	t.Run("Should keep task order and isolate failures", func(t *testing.T) {
		pool := NewPool(newProcessor(), 2, time.Minute)
		tasks := []Task{
			{Name: "a.edi", Data: []byte(x12Status)},
			{Name: "panics.edi", Size: -1, Open: func() (io.ReadCloser, error) { panic("boom") }},
			{Name: "bad.edi", Data: []byte("not edi")},
			{Name: "b.edi", Size: int64(len(edifactStatus)), Open: func() (io.ReadCloser, error) {
				return io.NopCloser(strings.NewReader(edifactStatus)), nil
			}},
			{Name: "streamed.edi", Size: -1, Open: func() (io.ReadCloser, error) {
				return io.NopCloser(strings.NewReader(x12Status)), nil
			}},
		}

		out := pool.Run(context.Background(), tasks)
		require.Len(t, out, len(tasks))
		for i := range tasks {
			assert.Equal(t, tasks[i].Name, out[i].Task.Name)
		}

		require.NoError(t, out[0].Err)
		assert.True(t, out[0].Result.Acceptable)

		require.Error(t, out[1].Err)
		assert.Contains(t, out[1].Err.Error(), "boom")

		var fe *edi.FramingError
		assert.ErrorAs(t, out[2].Err, &fe)

		require.NoError(t, out[3].Err)
		assert.Equal(t, edi.EDIFACT, out[3].Result.Info.Dialect)

		require.NoError(t, out[4].Err)
		assert.Equal(t, out[0].Result.Stats, out[4].Result.Stats)
	})

	t.Run("Should default to GOMAXPROCS workers", func(t *testing.T) {
		assert.GreaterOrEqual(t, NewPool(newProcessor(), 0, 0).Size(), 1)
	})
}

const extraMapping = `
source_dialect: X12
target_dialect: EDIFACT
rules:
  - source: L11
    target: RFF
    elements:
      - source: "2"
        target: "1.1"
      - source: "1"
        target: "1.2"
`

func TestLoadMappings(t *testing.T) {
	t.Run("Should load YAML mappings and skip other files", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/mappings/extra.yaml", []byte(extraMapping), 0o644))
		require.NoError(t, afero.WriteFile(fs, "/mappings/_draft.yaml", []byte("not: [valid"), 0o644))
		require.NoError(t, afero.WriteFile(fs, "/mappings/README.txt", []byte("notes"), 0o644))

		rules, n, err := LoadMappings(fs, "/mappings")
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Len(t, rules.Lookup(edi.X12, "L11", edi.EDIFACT), 1)

		p := New(Config{Rules: rules})
		raw := strings.Replace(x12Status, "N1*SH", "L11*ABC*BM~\nN1*SH", 1)
		raw = strings.Replace(raw, "SE*7", "SE*8", 1)
		res, err := p.Process(context.Background(), []byte(raw), Options{TranslateTo: edi.DialectVersion{Dialect: edi.EDIFACT}})
		require.NoError(t, err)
		assert.Empty(t, res.Translation.Gaps)
	})

	t.Run("Should fall back to built-in rules without a directory", func(t *testing.T) {
		rules, n, err := LoadMappings(afero.NewMemMapFs(), "/missing")
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.NotZero(t, rules.Len())
	})

	t.Run("Should name the file that failed", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/mappings/broken.yml", []byte("rules: {"), 0o644))
		_, _, err := LoadMappings(fs, "/mappings")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "broken.yml")
	})
}
