package perturb

import (
	"testing"

	"github.com/harrison/lingtest/internal/sample"
)

// operatorParams supplies the required configuration for operators that
// have no built-in fallback tables.
var operatorParams = map[string]Params{
	"swap_entities": {
		"terminology": map[string][]string{"PER": {"Alice"}, "LOC": {"Rome"}},
	},
	"add_context": {
		"starting_context": []string{"PS:"},
		"ending_context":   []string{"over"},
	},
	"multiple_perturbations": {
		"perturbations": []string{"lowercase", "add_typo"},
	},
}

func nerFixture() *sample.Sample {
	return sample.NewNER(
		"John saw 3 colors in Paris as soon as possible, hello",
		[]string{"B-PER", "O", "O", "O", "O", "B-LOC", "O", "O", "O", "O", "O"},
	)
}

func TestZeroProbIsIdentityAcrossOperators(t *testing.T) {
	for _, alias := range Aliases() {
		t.Run(alias, func(t *testing.T) {
			op, err := Build(alias, 0, operatorParams[alias])
			if err != nil {
				t.Fatal(err)
			}

			s := nerFixture()
			out, err := op.Transform(testRand(), []Input{Of(s)})
			if err != nil {
				t.Fatal(err)
			}
			for i, in := range out {
				got := in.Sample
				if got.TestCase != s.Original {
					t.Errorf("output %d: TestCase = %q, want original %q", i, got.TestCase, s.Original)
				}
				if got.Category != CategoryRobustness {
					t.Errorf("output %d: Category = %q, want %q", i, got.Category, CategoryRobustness)
				}
				if len(got.Transformations) != 0 {
					t.Errorf("output %d: got %d transformations, want none", i, len(got.Transformations))
				}
			}
		})
	}
}

func TestSpanValidityAcrossOperators(t *testing.T) {
	for _, alias := range Aliases() {
		t.Run(alias, func(t *testing.T) {
			op, err := Build(alias, 1.0, operatorParams[alias])
			if err != nil {
				t.Fatal(err)
			}

			out, err := op.Transform(testRand(), []Input{Of(nerFixture())})
			if err != nil {
				t.Fatal(err)
			}
			for _, in := range out {
				assertSpansValid(t, in.Sample)
			}
		})
	}
}

func TestNilRngFallsBackToGlobal(t *testing.T) {
	op, err := NewUpperCase(1.0)
	if err != nil {
		t.Fatal(err)
	}

	SeedGlobal(7)
	a, err := op.Transform(nil, Texts([]string{"the quick brown fox"}))
	if err != nil {
		t.Fatal(err)
	}
	SeedGlobal(7)
	b, err := op.Transform(nil, Texts([]string{"the quick brown fox"}))
	if err != nil {
		t.Fatal(err)
	}
	if a[0].Text != b[0].Text {
		t.Errorf("same global seed produced %q and %q", a[0].Text, b[0].Text)
	}
}

func TestInputWrapping(t *testing.T) {
	raw := RawText("hello")
	if !raw.IsRaw() || raw.Text != "hello" {
		t.Errorf("RawText = %+v", raw)
	}

	s := classSample("hello")
	wrapped := Of(s)
	if wrapped.IsRaw() || wrapped.Sample != s {
		t.Errorf("Of = %+v", wrapped)
	}

	inputs := Samples([]*sample.Sample{s, s})
	if len(inputs) != 2 || inputs[0].IsRaw() {
		t.Errorf("Samples = %+v", inputs)
	}
	texts := Texts([]string{"a", "b"})
	if len(texts) != 2 || !texts[1].IsRaw() {
		t.Errorf("Texts = %+v", texts)
	}
}
