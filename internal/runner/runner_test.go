package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/harrison/lingtest/internal/sample"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// echoModel returns a deterministic marker per input so tests can verify
// which text each stored result came from.
var echoModel = ModelFunc(func(_ context.Context, text string) (sample.Result, error) {
	return "echo:" + text, nil
})

func makeSamples(n int) []*sample.Sample {
	list := make([]*sample.Sample, n)
	for i := range list {
		s := sample.New(sample.TaskClassification, fmt.Sprintf("text %d", i))
		s.TestCase = fmt.Sprintf("TEXT %d", i)
		list[i] = s
	}
	return list
}

func TestRunFillsResultsAndMarksDone(t *testing.T) {
	r := New()
	samples := makeSamples(3)

	if err := r.Run(context.Background(), samples, echoModel); err != nil {
		t.Fatal(err)
	}
	for i, s := range samples {
		if !s.IsDone() {
			t.Errorf("sample %d not marked done", i)
		}
		if s.ExpectedResults != "echo:"+s.Original {
			t.Errorf("sample %d ExpectedResults = %v", i, s.ExpectedResults)
		}
		if s.ActualResults != "echo:"+s.TestCase {
			t.Errorf("sample %d ActualResults = %v", i, s.ActualResults)
		}
	}
}

func TestRunSkipsDoneSamples(t *testing.T) {
	r := New()
	samples := makeSamples(2)
	samples[0].State = sample.StateDone
	samples[0].ExpectedResults = "prior"

	if err := r.Run(context.Background(), samples, echoModel); err != nil {
		t.Fatal(err)
	}
	if samples[0].ExpectedResults != "prior" {
		t.Error("done sample was re-executed")
	}
	if !samples[1].IsDone() {
		t.Error("pending sample was not executed")
	}
}

func TestRunPropagatesModelErrors(t *testing.T) {
	wantErr := errors.New("model unavailable")
	failing := ModelFunc(func(_ context.Context, _ string) (sample.Result, error) {
		return nil, wantErr
	})

	r := New()
	samples := makeSamples(2)
	err := r.Run(context.Background(), samples, failing)
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want wrapped %v", err, wantErr)
	}
	if samples[0].IsDone() {
		t.Error("failed sample must not be marked done")
	}
}

func TestRunProgressCallback(t *testing.T) {
	var seen []string
	r := New(WithProgress(func(s *sample.Sample) {
		seen = append(seen, s.Original)
	}))

	samples := makeSamples(3)
	samples[1].State = sample.StateDone
	if err := r.Run(context.Background(), samples, echoModel); err != nil {
		t.Fatal(err)
	}
	if len(seen) != 2 {
		t.Fatalf("progress fired %d times, want 2 (done samples skipped)", len(seen))
	}
}

func TestRunCustomSampleRunner(t *testing.T) {
	custom := SampleRunnerFunc(func(_ context.Context, s *sample.Sample, _ Model) error {
		s.ExpectedResults = "custom"
		s.ActualResults = "custom"
		s.State = sample.StateDone
		return nil
	})
	r := New(WithSampleRunner(sample.TaskQA, custom))

	qa := sample.New(sample.TaskQA, "what is the answer")
	qa.TestCase = "WHAT IS THE ANSWER"
	plain := makeSamples(1)[0]

	if err := r.Run(context.Background(), []*sample.Sample{qa, plain}, echoModel); err != nil {
		t.Fatal(err)
	}
	if qa.ExpectedResults != "custom" {
		t.Errorf("custom runner not used: %v", qa.ExpectedResults)
	}
	if plain.ExpectedResults != "echo:"+plain.Original {
		t.Errorf("default path broken for other tasks: %v", plain.ExpectedResults)
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := New()
	samples := makeSamples(2)
	err := r.Run(ctx, samples, echoModel)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestGoReturnsAwaitableHandle(t *testing.T) {
	slow := ModelFunc(func(ctx context.Context, text string) (sample.Result, error) {
		select {
		case <-time.After(time.Millisecond):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return strings.ToLower(text), nil
	})

	r := New()
	a := r.Go(context.Background(), makeSamples(2), slow)
	b := r.Go(context.Background(), makeSamples(2), slow)

	if err := a.Wait(); err != nil {
		t.Errorf("handle a: %v", err)
	}
	if err := b.Wait(); err != nil {
		t.Errorf("handle b: %v", err)
	}
}

func TestRunBatches(t *testing.T) {
	r := New()
	batches := [][]*sample.Sample{makeSamples(2), makeSamples(3), makeSamples(1)}

	if err := r.RunBatches(context.Background(), batches, echoModel, 2); err != nil {
		t.Fatal(err)
	}
	for bi, batch := range batches {
		for si, s := range batch {
			if !s.IsDone() {
				t.Errorf("batch %d sample %d not done", bi, si)
			}
		}
	}
}

func TestRunBatchesFirstErrorCancels(t *testing.T) {
	wantErr := errors.New("boom")
	failing := ModelFunc(func(_ context.Context, text string) (sample.Result, error) {
		if strings.Contains(text, "0") {
			return nil, wantErr
		}
		return text, nil
	})

	r := New()
	batches := [][]*sample.Sample{makeSamples(2), makeSamples(2)}
	err := r.RunBatches(context.Background(), batches, failing, 0)
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want wrapped %v", err, wantErr)
	}
}

func TestRunNilModel(t *testing.T) {
	r := New()
	if err := r.Run(context.Background(), makeSamples(1), nil); err == nil {
		t.Fatal("nil model must be rejected")
	}
}
