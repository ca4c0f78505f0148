// Package runner implements the sample execution protocol: applying a
// target model to each sample's original and perturbed text and recording
// the outputs.
//
// Perturbation is synchronous and CPU-bound; model invocation is the only
// I/O boundary. The runner therefore suspends exclusively at model calls
// and offers a background handle (Go) so callers can schedule many runs
// over disjoint sample lists concurrently. No timeout is imposed here;
// callers that need a deadline wrap ctx themselves.
package runner

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/harrison/lingtest/internal/sample"
)

// Model is the target under test. Predict returns a task-shaped output for
// one input text; the runner stores the value without inspecting it.
type Model interface {
	Predict(ctx context.Context, text string) (sample.Result, error)
}

// ModelFunc adapts a plain function to the Model interface.
type ModelFunc func(ctx context.Context, text string) (sample.Result, error)

// Predict calls f.
func (f ModelFunc) Predict(ctx context.Context, text string) (sample.Result, error) {
	return f(ctx, text)
}

// SampleRunner is the capability hook for task variants with custom
// evaluation (question answering and summarization issue several model
// calls per sample). A registered SampleRunner owns the whole pass for its
// task: it must fill ExpectedResults/ActualResults and mark the sample
// done.
type SampleRunner interface {
	RunSample(ctx context.Context, s *sample.Sample, m Model) error
}

// SampleRunnerFunc adapts a plain function to the SampleRunner interface.
type SampleRunnerFunc func(ctx context.Context, s *sample.Sample, m Model) error

// RunSample calls f.
func (f SampleRunnerFunc) RunSample(ctx context.Context, s *sample.Sample, m Model) error {
	return f(ctx, s, m)
}

// Progress is invoked once per processed sample, after its state flips to
// done. It runs on the runner's goroutine; keep it cheap.
type Progress func(s *sample.Sample)

// Runner executes samples against a model.
type Runner struct {
	custom   map[sample.Task]SampleRunner
	progress Progress
}

// Option configures a Runner.
type Option func(*Runner)

// WithProgress registers a per-sample progress callback.
func WithProgress(p Progress) Option {
	return func(r *Runner) {
		r.progress = p
	}
}

// WithSampleRunner registers a custom evaluation hook for one task variant.
func WithSampleRunner(task sample.Task, sr SampleRunner) Option {
	return func(r *Runner) {
		r.custom[task] = sr
	}
}

// New constructs a Runner.
func New(opts ...Option) *Runner {
	r := &Runner{custom: make(map[sample.Task]SampleRunner)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes every not-yet-done sample in order: the model is called once
// on Original and once on TestCase, the outputs are stored, and the sample
// is marked done. Samples whose task has a registered SampleRunner delegate
// instead. The first model error aborts the pass and propagates; retry
// policy belongs to the caller.
func (r *Runner) Run(ctx context.Context, samples []*sample.Sample, m Model) error {
	if m == nil {
		return fmt.Errorf("runner requires a model")
	}

	for _, s := range samples {
		if s.IsDone() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := r.runOne(ctx, s, m); err != nil {
			return fmt.Errorf("sample %s: %w", s.ID, err)
		}
		if r.progress != nil {
			r.progress(s)
		}
	}
	return nil
}

// runOne executes a single sample.
func (r *Runner) runOne(ctx context.Context, s *sample.Sample, m Model) error {
	if sr, ok := r.custom[s.Task]; ok {
		return sr.RunSample(ctx, s, m)
	}

	expected, err := m.Predict(ctx, s.Original)
	if err != nil {
		return fmt.Errorf("predict original: %w", err)
	}
	actual, err := m.Predict(ctx, s.TestCase)
	if err != nil {
		return fmt.Errorf("predict test case: %w", err)
	}

	s.ExpectedResults = expected
	s.ActualResults = actual
	s.State = sample.StateDone
	return nil
}

// Handle is an in-flight background run started by Go.
type Handle struct {
	done chan struct{}
	err  error
}

// Wait blocks until the run finishes and returns its error.
func (h *Handle) Wait() error {
	<-h.done
	return h.err
}

// Go starts Run on its own goroutine and returns a handle to await it.
// Each handle owns its sample list exclusively; callers may hold many
// handles over disjoint lists at once.
func (r *Runner) Go(ctx context.Context, samples []*sample.Sample, m Model) *Handle {
	h := &Handle{done: make(chan struct{})}
	go func() {
		defer close(h.done)
		h.err = r.Run(ctx, samples, m)
	}()
	return h
}

// RunBatches fans batches out across at most limit concurrent runs. Each
// batch must be a disjoint sample list. A limit below 1 means one goroutine
// per batch. The first error cancels the remaining batches.
func (r *Runner) RunBatches(ctx context.Context, batches [][]*sample.Sample, m Model, limit int) error {
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for _, batch := range batches {
		batch := batch
		g.Go(func() error {
			return r.Run(ctx, batch, m)
		})
	}
	return g.Wait()
}
