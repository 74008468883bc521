package processor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// =============================================================================
// WORKER POOL
// =============================================================================
//
// Documents are independent, so a batch is processed by a bounded pool with
// one task per document. Tasks are plain data; workers share the Processor
// and nothing else. A failing or panicking task produces an Outcome with an
// error and never affects its siblings.
//
// =============================================================================

// Task is one document to process.
type Task struct {
	// Name identifies the document in logs and outcomes (usually its path).
	Name string

	// Data holds an in-memory document. When nil, Open is used.
	Data []byte

	// Open returns a reader over the document.
	Open func() (io.ReadCloser, error)

	// Size is the document size in bytes, or -1 when unknown. Documents
	// larger than the processor's stream threshold, or of unknown size, are
	// streamed.
	Size int64

	Options Options
}

// Outcome pairs a task with its result.
type Outcome struct {
	Task   Task
	Result *Result
	Err    error
}

// Pool runs tasks on a bounded number of goroutines.
type Pool struct {
	processor *Processor
	size      int
	timeout   time.Duration
	logger    logrus.FieldLogger
}

// NewPool creates a pool. A size below 1 uses GOMAXPROCS; a zero timeout
// leaves tasks bounded only by their own Options.Timeout.
func NewPool(p *Processor, size int, timeout time.Duration) *Pool {
	if size < 1 {
		size = runtime.GOMAXPROCS(0)
	}
	return &Pool{processor: p, size: size, timeout: timeout, logger: p.logger}
}

// Size returns the concurrency limit.
func (pl *Pool) Size() int {
	return pl.size
}

// Run processes every task and returns the outcomes in task order.
func (pl *Pool) Run(ctx context.Context, tasks []Task) []Outcome {
	outcomes := make([]Outcome, len(tasks))

	var group errgroup.Group
	group.SetLimit(pl.size)
	for idx := range tasks {
		group.Go(func() error {
			outcomes[idx] = pl.runTask(ctx, tasks[idx])
			return nil
		})
	}
	_ = group.Wait()
	return outcomes
}

// runTask processes one task, turning a panic into an error outcome.
func (pl *Pool) runTask(ctx context.Context, task Task) (out Outcome) {
	out.Task = task
	defer func() {
		if r := recover(); r != nil {
			pl.logger.WithFields(logrus.Fields{
				"file":  task.Name,
				"panic": r,
			}).Error("task panicked")
			pl.logger.Debug(string(debug.Stack()))
			out.Result = nil
			out.Err = fmt.Errorf("internal error processing %s: %v", task.Name, r)
		}
	}()

	if pl.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, pl.timeout)
		defer cancel()
	}

	out.Result, out.Err = pl.process(ctx, task)
	if out.Err != nil {
		pl.logger.WithFields(logrus.Fields{"file": task.Name, "error": out.Err}).Warn("document not processed")
	}
	return out
}

func (pl *Pool) process(ctx context.Context, task Task) (*Result, error) {
	if task.Data != nil {
		return pl.processor.Process(ctx, task.Data, task.Options)
	}
	if task.Open == nil {
		return nil, fmt.Errorf("task %s has no data", task.Name)
	}

	rc, err := task.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", task.Name, err)
	}
	defer rc.Close()

	if task.Size >= 0 && task.Size <= pl.processor.StreamThreshold() {
		var buf bytes.Buffer
		buf.Grow(int(task.Size))
		if _, err := buf.ReadFrom(rc); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", task.Name, err)
		}
		return pl.processor.Process(ctx, buf.Bytes(), task.Options)
	}
	return pl.processor.ProcessReader(ctx, rc, task.Options)
}
