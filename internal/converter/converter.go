// =============================================================================
// EDI Codec - Batch Converter Module
// =============================================================================
//
// This module orchestrates a batch run over input files, from partner
// matching to archival. Document semantics live in the processor; this module
// only decides options per file and handles the files around it.
//
// BATCH PIPELINE:
//   1. Match each file to a trading partner and resolve its options
//   2. Process all files on the bounded worker pool
//   3. For each result, write the acknowledgment (.ack), the translation
//      (.translated) and the report (.xml or .json)
//   4. Archive inputs whose transactions were all acceptable
//   5. Write the error log and the processing summary
//
// CONCURRENCY:
//   Step 2 runs in parallel; outputs are written sequentially in input order
//   afterwards so that file names and logs are deterministic.
//
// =============================================================================

package converter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ginjaninja78/edi-codec/internal/config"
	"github.com/ginjaninja78/edi-codec/internal/edi"
	"github.com/ginjaninja78/edi-codec/internal/logging"
	"github.com/ginjaninja78/edi-codec/internal/processor"
	"github.com/ginjaninja78/edi-codec/internal/xmlwriter"
	"github.com/ginjaninja78/edi-codec/pkg/utils"
)

// Output kinds, used for the {kind} placeholder.
const (
	KindAck        = "ack"
	KindTranslated = "translated"
	KindReport     = "report"
	KindMigrated   = "migrated"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single file.
type Result struct {
	// FilePath is the path to the input file that was processed.
	FilePath string

	// Partner is the code of the matched partner, empty for none.
	Partner string

	// Outputs are the paths of the written output files.
	Outputs []string

	// ArchivePath is where the input was moved, empty when not archived.
	ArchivePath string

	// Success indicates that the document was processed and acceptable.
	Success bool

	// Error is set when the document could not be processed at all.
	Error error

	// Processing is the processor result, nil when Error is set.
	Processing *processor.Result

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	processor.Stats

	// ProcessingTime is the time taken to process the file.
	ProcessingTime time.Duration
}

// Batch is the outcome of a run.
type Batch struct {
	Results []Result
	Summary utils.ProcessingSummary

	// ErrorLog and SummaryLog are the written log paths (empty on dry run).
	ErrorLog   string
	SummaryLog string
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Config holds the converter collaborators.
type Config struct {
	Main      *config.MainConfig
	Partners  []*config.PartnerConfig
	Files     *utils.FileManager
	Processor *processor.Processor

	// Partner forces one partner code for every file instead of matching.
	Partner string

	// Override adjusts the resolved options of every file (command-line
	// flags); it may be nil.
	Override func(*processor.Options)

	// DryRun processes files without writing or moving anything.
	DryRun bool

	Logger logrus.FieldLogger
}

// Converter runs batches of files.
type Converter struct {
	cfg    Config
	format xmlwriter.Format
	pool   *processor.Pool
	forced *config.PartnerConfig
	logger logrus.FieldLogger
}

// =============================================================================
// CONSTRUCTOR
// =============================================================================

// New creates a new Converter.
//
// RETURNS:
//   - A new Converter instance.
//   - An error if the report format or the forced partner is unknown.
func New(cfg Config) (*Converter, error) {
	format, err := xmlwriter.ParseFormat(cfg.Main.ReportFormat)
	if err != nil {
		return nil, err
	}
	c := &Converter{
		cfg:    cfg,
		format: format,
		pool:   processor.NewPool(cfg.Processor, cfg.Main.Concurrency, cfg.Main.TaskTimeout),
		logger: cfg.Logger,
	}
	if c.logger == nil {
		c.logger = logging.Discard()
	}
	if cfg.Partner != "" {
		p, ok := config.FindPartner(cfg.Partners, cfg.Partner)
		if !ok {
			return nil, fmt.Errorf("unknown partner %q", cfg.Partner)
		}
		c.forced = p
	}
	return c, nil
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run processes the files and handles their outputs.
//
// RETURNS:
//   - The batch outcome. Per-file failures are recorded in the results.
//   - An error only when option resolution or a log write fails.
func (c *Converter) Run(ctx context.Context, files []utils.InputFile) (*Batch, error) {
	start := c.cfg.Files.Now()

	// =========================================================================
	// STEP 1: MATCH PARTNERS AND RESOLVE OPTIONS
	// =========================================================================

	tasks := make([]processor.Task, len(files))
	partners := make([]string, len(files))
	for i, f := range files {
		partner := c.forced
		if partner == nil {
			partner = config.MatchPartner(c.cfg.Partners, f.Path)
		}
		opts, err := c.cfg.Main.Options(partner)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve options for %s: %w", f.Path, err)
		}
		if c.cfg.Override != nil {
			c.cfg.Override(&opts)
		}
		if partner != nil {
			partners[i] = partner.Code
		}

		path := f.Path
		tasks[i] = processor.Task{
			Name:    path,
			Size:    f.Size,
			Options: opts,
			Open:    func() (io.ReadCloser, error) { return c.cfg.Files.Open(path) },
		}
	}

	// =========================================================================
	// STEP 2: PROCESS FILES CONCURRENTLY
	// =========================================================================

	c.logger.WithFields(logrus.Fields{"files": len(files), "workers": c.pool.Size()}).Info("processing batch")
	outcomes := c.pool.Run(ctx, tasks)

	// =========================================================================
	// STEP 3: WRITE OUTPUTS AND ARCHIVE
	// =========================================================================

	batch := &Batch{Results: make([]Result, len(outcomes))}
	var errorLog []utils.ErrorLogEntry
	for i, out := range outcomes {
		res := c.finish(out, partners[i])
		batch.Results[i] = res
		errorLog = append(errorLog, c.errorEntries(res)...)
	}

	// =========================================================================
	// STEP 4: WRITE LOGS
	// =========================================================================

	batch.Summary = c.summarize(start, batch.Results)
	if c.cfg.DryRun {
		return batch, nil
	}

	var err error
	if batch.ErrorLog, err = c.cfg.Files.WriteErrorLog(errorLog); err != nil {
		return batch, err
	}
	if batch.SummaryLog, err = c.cfg.Files.WriteSummaryLog(batch.Summary); err != nil {
		return batch, err
	}
	return batch, nil
}

// finish writes the outputs of one outcome and archives its input.
func (c *Converter) finish(out processor.Outcome, partner string) Result {
	result := Result{FilePath: out.Task.Name, Partner: partner, Error: out.Err}
	log := c.logger.WithField("file", filepath.Base(out.Task.Name))
	if out.Err != nil {
		log.WithError(out.Err).Error("document not processed")
		return result
	}

	res := out.Result
	result.Processing = res
	result.Success = res.Acceptable
	result.Stats = ProcessingStats{Stats: res.Stats, ProcessingTime: res.Duration}

	if c.cfg.DryRun {
		log.WithField("acceptable", res.Acceptable).Info("dry run: outputs not written")
		return result
	}

	outputs, err := c.writeOutputs(out.Task.Name, res)
	result.Outputs = outputs
	if err != nil {
		result.Error = err
		result.Success = false
		log.WithError(err).Error("failed to write outputs")
		return result
	}

	if res.Acceptable {
		archived, err := c.cfg.Files.ArchiveInputFile(out.Task.Name)
		if err != nil {
			// The outputs exist; leaving the input in place is safe.
			log.WithError(err).Warn("failed to archive input")
		} else if archived != out.Task.Name {
			result.ArchivePath = archived
		}
	}

	log.WithFields(logrus.Fields{
		"dialect":      res.Info.Dialect,
		"transactions": res.Stats.Transactions,
		"errors":       res.Stats.Errors,
		"acceptable":   res.Acceptable,
	}).Info("document processed")
	return result
}

// writeOutputs writes the acknowledgment, translation and report.
func (c *Converter) writeOutputs(input string, res *processor.Result) ([]string, error) {
	var outputs []string
	write := func(kind, ext string, data []byte) error {
		name := c.cfg.Files.GenerateOutputFileName(c.cfg.Main.OutputNameFormat, map[string]string{
			"original": utils.OriginalName(input),
			"kind":     kind,
			"uuid":     res.RunID,
		}, ext)
		path, err := c.cfg.Files.WriteOutput(name, data)
		if err != nil {
			return err
		}
		outputs = append(outputs, path)
		return nil
	}

	if res.Acknowledgment != nil {
		if err := write(KindAck, "ack", res.Acknowledgment.Text); err != nil {
			return outputs, err
		}
	}
	if res.Translation != nil {
		if err := write(KindTranslated, "translated", res.Translation.Text); err != nil {
			return outputs, err
		}
	}

	report, err := xmlwriter.Generate(xmlwriter.NewReport(input, res), c.format)
	if err != nil {
		return outputs, err
	}
	if err := write(KindReport, c.format.Extension(), report); err != nil {
		return outputs, err
	}
	return outputs, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// errorEntries lists the error-severity issues of a result, or the failure.
func (c *Converter) errorEntries(r Result) []utils.ErrorLogEntry {
	now := c.cfg.Files.Now()
	if r.Processing == nil {
		return []utils.ErrorLogEntry{{
			Timestamp:    now,
			FileName:     r.FilePath,
			ErrorType:    errorType(r.Error),
			ErrorMessage: r.Error.Error(),
		}}
	}

	var entries []utils.ErrorLogEntry
	for _, issue := range r.Processing.Issues {
		if !issue.IsError() {
			continue
		}
		entries = append(entries, utils.ErrorLogEntry{
			Timestamp:        now,
			FileName:         r.FilePath,
			ErrorType:        string(issue.Kind),
			ErrorMessage:     issue.Message,
			SegmentID:        issue.SegmentID,
			SegmentPosition:  issue.SegmentPosition,
			ElementPosition:  issue.ElementPosition,
			Value:            issue.Value,
			TransactionIndex: issue.TransactionIndex,
		})
	}
	if r.Error != nil {
		entries = append(entries, utils.ErrorLogEntry{
			Timestamp:    now,
			FileName:     r.FilePath,
			ErrorType:    "OutputError",
			ErrorMessage: r.Error.Error(),
		})
	}
	return entries
}

func errorType(err error) string {
	var fe *edi.FramingError
	var se *edi.StructuralError
	switch {
	case errors.As(err, &fe):
		return string(edi.KindFraming)
	case errors.As(err, &se):
		return string(edi.KindStructural)
	default:
		return "InternalError"
	}
}

func (c *Converter) summarize(start time.Time, results []Result) utils.ProcessingSummary {
	s := utils.ProcessingSummary{
		StartTime:  start,
		EndTime:    c.cfg.Files.Now(),
		TotalFiles: len(results),
	}
	for _, r := range results {
		if r.Processing == nil {
			s.FailedFiles++
			s.FailedFilesList = append(s.FailedFilesList, utils.FailedFileInfo{
				InputFile:    r.FilePath,
				ErrorType:    errorType(r.Error),
				ErrorMessage: r.Error.Error(),
			})
			continue
		}
		if r.Success {
			s.AcceptedFiles++
		} else {
			s.RejectedFiles++
		}
		s.TotalSegments += r.Stats.Segments
		s.TotalTransactions += r.Stats.Transactions
		s.TotalErrors += r.Stats.Errors
		s.TotalWarnings += r.Stats.Warnings
		s.TotalCorrections += r.Stats.Corrections
		s.ProcessedFiles = append(s.ProcessedFiles, utils.ProcessedFileInfo{
			InputFile:    r.FilePath,
			Partner:      r.Partner,
			Dialect:      string(r.Processing.Info.Dialect),
			Acceptable:   r.Success,
			Outputs:      r.Outputs,
			ArchivePath:  r.ArchivePath,
			Transactions: r.Stats.Transactions,
			Errors:       r.Stats.Errors,
			ProcessTime:  r.Stats.ProcessingTime,
		})
	}
	return s
}
