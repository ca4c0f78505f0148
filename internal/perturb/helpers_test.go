package perturb

import (
	"math/rand"
	"testing"

	"github.com/harrison/lingtest/internal/sample"
)

// testRand returns a seeded generator so operator tests are reproducible.
func testRand() *rand.Rand {
	return rand.New(rand.NewSource(42))
}

// classSample builds a classification sample, the simplest span-tracking
// task variant.
func classSample(text string) *sample.Sample {
	return sample.New(sample.TaskClassification, text)
}

// assertSpansValid checks the span validity invariant on every recorded
// transformation: a non-zero-length OriginalSpan must materialize its word
// against Original, and a non-zero-length NewSpan against TestCase.
func assertSpansValid(t *testing.T, s *sample.Sample) {
	t.Helper()
	for i, tr := range s.Transformations {
		if tr.OriginalSpan.Len() > 0 {
			got := s.Original[tr.OriginalSpan.Start:tr.OriginalSpan.End]
			if got != tr.OriginalSpan.Word {
				t.Errorf("transformation %d: original span %v materializes %q", i, tr.OriginalSpan, got)
			}
		}
		if tr.NewSpan.Len() > 0 && tr.NewSpan.Word != "" && !tr.Ignore {
			got := s.TestCase[tr.NewSpan.Start:tr.NewSpan.End]
			if got != tr.NewSpan.Word {
				t.Errorf("transformation %d: new span %v materializes %q", i, tr.NewSpan, got)
			}
		}
	}
}

// transformOne runs op on a single sample and returns the resulting sample.
func transformOne(t *testing.T, op Operator, s *sample.Sample) *sample.Sample {
	t.Helper()
	out, err := op.Transform(testRand(), Samples([]*sample.Sample{s}))
	if err != nil {
		t.Fatalf("%s: unexpected error: %v", op.Alias(), err)
	}
	if len(out) == 0 {
		t.Fatalf("%s: no output samples", op.Alias())
	}
	return out[0].Sample
}
