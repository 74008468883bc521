// =============================================================================
// EDI Codec - Processor
// =============================================================================
//
// This module contains the core processing pipeline. It runs one document
// through every stage and returns a complete ProcessingResult.
//
// PROCESSING PIPELINE:
//   1. Detect the dialect and delimiters (fatal on failure)
//   2. Parse the envelope tree, in memory or streaming
//   3. Validate envelope, structure, elements and industry profile
//   4. Auto-correct schema-licensed defects (optional)
//   5. Translate to the other dialect (optional)
//   6. Generate the functional acknowledgment (optional)
//   7. Extract per-transaction shipment summaries
//
// ERRORS:
//   Only a FramingError or an aborted StructuralError is returned as an
//   error. Every other finding is an issue inside the result.
//
// CONCURRENCY:
//   A Processor holds only read-only tables and a concurrency-safe control
//   number source. One Processor serves every worker of a Pool.
//
// =============================================================================

package processor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ginjaninja78/edi-codec/internal/ack"
	"github.com/ginjaninja78/edi-codec/internal/correction"
	"github.com/ginjaninja78/edi-codec/internal/detect"
	"github.com/ginjaninja78/edi-codec/internal/edi"
	"github.com/ginjaninja78/edi-codec/internal/grammar"
	"github.com/ginjaninja78/edi-codec/internal/logging"
	"github.com/ginjaninja78/edi-codec/internal/parser"
	"github.com/ginjaninja78/edi-codec/internal/translate"
	"github.com/ginjaninja78/edi-codec/internal/validation"
)

// DefaultStreamThreshold is the input size above which documents are parsed
// in streaming mode.
const DefaultStreamThreshold = 50 << 20

// =============================================================================
// OPTIONS AND RESULT
// =============================================================================

// Options are the per-document processing options.
type Options struct {
	// Strictness selects error or warning severity for element and
	// business-rule issues. Empty means strict.
	Strictness validation.Strictness

	AutoCorrect            bool
	GenerateAcknowledgment bool

	// TranslateTo is the target dialect; the zero value disables translation.
	TranslateTo edi.DialectVersion

	// IndustryProfile names the business rule set: "", "auto" or a profile.
	IndustryProfile string

	// Timeout bounds the whole call. Zero means no timeout.
	Timeout time.Duration
}

// Stats holds the result counters.
type Stats struct {
	Segments        int `json:"segments" xml:"segments,attr"`
	Transactions    int `json:"transactions" xml:"transactions,attr"`
	Errors          int `json:"errors" xml:"errors,attr"`
	Warnings        int `json:"warnings" xml:"warnings,attr"`
	Corrections     int `json:"corrections" xml:"corrections,attr"`
	TranslationGaps int `json:"translation_gaps" xml:"translation_gaps,attr"`
}

// Result is the outcome of processing one document. It is created per call
// and shares nothing with other results.
type Result struct {
	RunID    string
	Info     edi.DialectInfo
	Document *edi.Document

	Issues      edi.Issues
	Corrections []edi.Correction

	Translation    *translate.Translation
	Acknowledgment *ack.Acknowledgment
	Summaries      []Summary

	Stats Stats

	// Acceptable is false when any error-severity issue remains.
	Acceptable bool
	Duration   time.Duration
}

// =============================================================================
// PROCESSOR
// =============================================================================

// Config holds the processor collaborators. Zero values select defaults.
type Config struct {
	Registry       *grammar.Registry
	Rules          *translate.RuleSet
	ControlNumbers edi.ControlNumbers

	// StreamThreshold is the size in bytes above which a task is streamed.
	StreamThreshold int64

	// MaxSegmentSize bounds a single segment in streaming mode.
	MaxSegmentSize int

	// Encoding is the IANA charset of the input, empty for UTF-8.
	Encoding string

	Now    func() time.Time
	Logger logrus.FieldLogger
}

// Processor runs documents through the pipeline.
type Processor struct {
	registry        *grammar.Registry
	rules           *translate.RuleSet
	controls        edi.ControlNumbers
	streamThreshold int64
	parseOptions    parser.Options
	encoding        string
	now             func() time.Time
	logger          logrus.FieldLogger
	acks            *ack.Generator
}

// New creates a Processor.
func New(cfg Config) *Processor {
	p := &Processor{
		registry:        cfg.Registry,
		rules:           cfg.Rules,
		controls:        cfg.ControlNumbers,
		streamThreshold: cfg.StreamThreshold,
		parseOptions:    parser.Options{MaxSegmentSize: cfg.MaxSegmentSize},
		encoding:        cfg.Encoding,
		now:             cfg.Now,
		logger:          cfg.Logger,
	}
	if p.registry == nil {
		p.registry = grammar.Builtin()
	}
	if p.rules == nil {
		p.rules = translate.Builtin()
	}
	if p.controls == nil {
		p.controls = edi.NewSequence()
	}
	if p.streamThreshold <= 0 {
		p.streamThreshold = DefaultStreamThreshold
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.logger == nil {
		p.logger = logging.Discard()
	}
	p.acks = ack.NewGenerator(ack.Config{
		Registry:       p.registry,
		ControlNumbers: p.controls,
		Now:            p.now,
		Logger:         p.logger,
	})
	return p
}

// StreamThreshold returns the size above which input is streamed.
func (p *Processor) StreamThreshold() int64 {
	return p.streamThreshold
}

// Process runs an in-memory document through the pipeline.
//
// PARAMETERS:
//   - ctx: Cancellation aborts the call between and within stages.
//   - raw: The complete document.
//   - opts: The processing options.
//
// RETURNS:
//   - The processing result.
//   - A *edi.FramingError when the dialect cannot be determined, or an
//     aborted *edi.StructuralError on cancellation or timeout.
func (p *Processor) Process(ctx context.Context, raw []byte, opts Options) (*Result, error) {
	start := time.Now()
	ctx, cancel := withTimeout(ctx, opts.Timeout)
	defer cancel()

	data, err := parser.Decode(raw, p.encoding)
	if err != nil {
		return nil, &edi.FramingError{Reason: "undecodable input", Detail: err.Error()}
	}
	det, err := detect.Detect(data)
	if err != nil {
		return nil, err
	}
	return p.run(ctx, start, det.Info, opts, func(ctx context.Context) (*parser.Result, error) {
		return parser.Parse(ctx, det.Payload, det.Info)
	})
}

// ProcessReader runs a streamed document through the pipeline. Only the
// detection window and one segment at a time are buffered, except for
// wrapped (XML or JSON) payloads which must be read whole to unwrap.
func (p *Processor) ProcessReader(ctx context.Context, r io.Reader, opts Options) (*Result, error) {
	start := time.Now()
	ctx, cancel := withTimeout(ctx, opts.Timeout)
	defer cancel()

	decoded, err := parser.DecodeReader(r, p.encoding)
	if err != nil {
		return nil, &edi.FramingError{Reason: "undecodable input", Detail: err.Error()}
	}
	br := bufio.NewReaderSize(decoded, 2*detect.VersionScanLimit)
	prefix, err := br.Peek(detect.VersionScanLimit)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, unreadable(err)
	}

	if detect.IsWrapped(prefix) {
		whole, err := io.ReadAll(br)
		if err != nil {
			return nil, unreadable(err)
		}
		det, err := detect.Detect(whole)
		if err != nil {
			return nil, err
		}
		return p.run(ctx, start, det.Info, opts, func(ctx context.Context) (*parser.Result, error) {
			return parser.Parse(ctx, det.Payload, det.Info)
		})
	}

	det, err := detect.Detect(prefix)
	if err != nil {
		return nil, err
	}
	if _, err := br.Discard(len(prefix) - len(det.Payload)); err != nil {
		return nil, unreadable(err)
	}
	return p.run(ctx, start, det.Info, opts, func(ctx context.Context) (*parser.Result, error) {
		return parser.ParseReader(ctx, br, det.Info, p.parseOptions)
	})
}

func unreadable(err error) *edi.FramingError {
	return &edi.FramingError{Reason: "unreadable input", Detail: err.Error()}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d > 0 {
		return context.WithTimeout(ctx, d)
	}
	return context.WithCancel(ctx)
}

// run executes the stages after detection.
func (p *Processor) run(ctx context.Context, start time.Time, info edi.DialectInfo, opts Options,
	parse func(context.Context) (*parser.Result, error)) (*Result, error) {

	result := &Result{RunID: uuid.New().String(), Info: info}
	log := p.logger.WithFields(logrus.Fields{"run": result.RunID, "dialect": info.Dialect})

	// =========================================================================
	// STEP 1: PARSE
	// =========================================================================

	parsed, err := parse(ctx)
	if err != nil {
		var se *edi.StructuralError
		if errors.As(err, &se) {
			return nil, err
		}
		return nil, unreadable(err)
	}
	result.Document = parsed.Document

	// =========================================================================
	// STEP 2: VALIDATE
	// =========================================================================

	validator := validation.NewValidator(p.registry, validation.Options{
		Strictness: opts.Strictness,
		Profile:    opts.IndustryProfile,
	})
	result.Issues = validator.Validate(parsed)
	if err := ctx.Err(); err != nil {
		return nil, edi.Aborted(err)
	}

	// =========================================================================
	// STEP 3: AUTO-CORRECT
	// =========================================================================

	if opts.AutoCorrect {
		corrector := correction.NewCorrector(p.registry, validator, log)
		outcome, err := corrector.Correct(ctx, parsed.Document, parsed.Errors, result.Issues)
		if err != nil {
			return nil, err
		}
		result.Issues = outcome.Issues
		result.Corrections = outcome.Corrections
	}

	// =========================================================================
	// STEP 4: TRANSLATE
	// =========================================================================

	if !opts.TranslateTo.IsZero() {
		translator := translate.NewTranslator(p.registry, translate.Config{
			Rules:          p.rules,
			ControlNumbers: p.controls,
			Validation:     validation.Options{Strictness: opts.Strictness},
			Now:            p.now,
			Logger:         log,
		})
		tr, err := translator.Translate(ctx, parsed.Document, opts.TranslateTo)
		var se *edi.StructuralError
		switch {
		case errors.As(err, &se):
			return nil, err
		case err != nil:
			result.Issues = append(result.Issues, edi.Issue{
				Kind:     edi.KindTranslationGap,
				Severity: edi.SeverityWarning,
				Code:     edi.CodeNoMappingRule,
				Message:  fmt.Sprintf("translation to %s not possible: %v", opts.TranslateTo, err),
			})
			result.Stats.TranslationGaps++
		default:
			result.Translation = tr
			result.Stats.TranslationGaps += len(tr.Gaps)
		}
	}

	// =========================================================================
	// STEP 5: ACKNOWLEDGE
	// =========================================================================

	if opts.GenerateAcknowledgment {
		result.Acknowledgment = p.acks.Generate(parsed.Document, result.Issues)
	}

	// =========================================================================
	// COMPLETE
	// =========================================================================

	result.Summaries = Summarize(p.registry, parsed.Document, result.Issues)
	result.Stats.Segments = len(parsed.Document.Segments)
	result.Stats.Transactions = len(parsed.Document.Transactions())
	result.Stats.Errors = result.Issues.Errors()
	result.Stats.Warnings = result.Issues.Warnings()
	result.Stats.Corrections = len(result.Corrections)
	result.Acceptable = result.Stats.Errors == 0
	result.Duration = time.Since(start)

	log.WithFields(logrus.Fields{
		"segments":     result.Stats.Segments,
		"transactions": result.Stats.Transactions,
		"errors":       result.Stats.Errors,
		"warnings":     result.Stats.Warnings,
		"corrections":  result.Stats.Corrections,
		"acceptable":   result.Acceptable,
	}).Debug("document processed")
	return result, nil
}
