package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ginjaninja78/edi-codec/internal/csvparser"
	"github.com/ginjaninja78/edi-codec/internal/edi"
	"github.com/ginjaninja78/edi-codec/internal/translate"
	"github.com/ginjaninja78/edi-codec/internal/validation"
)

// =============================================================================
// LEGACY MIGRATION
// =============================================================================

// Migration is the outcome of migrating one legacy file.
type Migration struct {
	Layout  *csvparser.Layout
	Records int

	// Translation holds the generated X12 or EDIFACT text and the rows that
	// had no mapping rule.
	Translation *translate.Translation

	// Result is the full pipeline run over the generated text.
	Result *Result
}

// Migrate converts legacy flat-file records into the target dialect and
// runs the generated document through the pipeline.
//
// PARAMETERS:
//   - ctx: Cancellation aborts the call.
//   - r: The legacy file.
//   - layout: A validated record layout.
//   - target: The target dialect; an empty version selects the default.
//   - opts: Options for the pipeline run over the generated document.
//     TranslateTo is ignored.
//
// RETURNS:
//   - The migration. Rows without a mapping rule are counted as
//     translation gaps in Result.Stats.
//   - A *edi.FramingError when the records cannot be read, or an error
//     when no target document can be produced.
func (p *Processor) Migrate(ctx context.Context, r io.Reader, layout *csvparser.Layout,
	target edi.DialectVersion, opts Options) (*Migration, error) {

	ctx, cancel := withTimeout(ctx, opts.Timeout)
	defer cancel()
	opts.Timeout = 0
	opts.TranslateTo = edi.DialectVersion{}

	records, err := csvparser.Parse(r, layout)
	if err != nil {
		return nil, &edi.FramingError{Reason: "unreadable legacy records", Detail: err.Error()}
	}
	log := p.logger.WithFields(logrus.Fields{"layout": layout.Name, "target": target.String()})

	translator := translate.NewTranslator(p.registry, translate.Config{
		Rules:          p.rules,
		ControlNumbers: p.controls,
		Validation:     validation.Options{Strictness: opts.Strictness},
		Now:            p.now,
		Logger:         log,
	})
	tr, err := translator.Translate(ctx, records.Document(), target)
	if err != nil {
		var se *edi.StructuralError
		if errors.As(err, &se) {
			return nil, err
		}
		return nil, fmt.Errorf("legacy layout %s: %w", layout.Name, err)
	}
	if tr.Transactions == 0 {
		return nil, fmt.Errorf("legacy layout %s: no %s transaction for %s", layout.Name, target.Dialect, layout.Transaction)
	}

	start := time.Now()
	res, err := p.Process(ctx, tr.Text, opts)
	if err != nil {
		return nil, err
	}
	res.Stats.TranslationGaps += len(tr.Gaps)

	log.WithFields(logrus.Fields{
		"records":      len(records.Rows),
		"transactions": tr.Transactions,
		"gaps":         len(tr.Gaps),
		"acceptable":   res.Acceptable,
		"duration":     time.Since(start),
	}).Info("legacy file migrated")

	return &Migration{
		Layout:      layout,
		Records:     len(records.Rows),
		Translation: tr,
		Result:      res,
	}, nil
}
