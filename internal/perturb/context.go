package perturb

import (
	"math/rand"

	"github.com/harrison/lingtest/internal/span"
)

// Context placement strategies.
const (
	StrategyStart    = "start"
	StrategyEnd      = "end"
	StrategyCombined = "combined"
)

// contextSkipSentinel marks texts the context operator leaves untouched.
const contextSkipSentinel = "-"

// AddContext prepends and/or appends a randomly chosen phrase from
// caller-supplied lists, per a strategy of start, end, or combined (chosen
// at random per sample when unspecified). Texts equal to the "-" sentinel
// are skipped entirely. Each applied side is gated independently by prob
// and recorded as an insertion Transformation with Ignore=true. count
// independent copies are produced per input.
type AddContext struct {
	prob     float64
	starting []string
	ending   []string
	strategy string
	count    int
}

// NewAddContext returns the add_context operator. The phrase list for every
// side the strategy can touch must be non-empty; an unknown strategy is a
// configuration error.
func NewAddContext(prob float64, starting, ending []string, strategy string, count int) (*AddContext, error) {
	if err := validateProb(prob); err != nil {
		return nil, err
	}
	switch strategy {
	case "", StrategyStart, StrategyEnd, StrategyCombined:
	default:
		return nil, configErrorf("add_context strategy must be one of 'start', 'end', 'combined', got %q", strategy)
	}
	needStart := strategy == StrategyStart || strategy == StrategyCombined || strategy == ""
	needEnd := strategy == StrategyEnd || strategy == StrategyCombined || strategy == ""
	if needStart && len(starting) == 0 {
		return nil, configErrorf("add_context requires a non-empty starting_context list for strategy %q", orRandom(strategy))
	}
	if needEnd && len(ending) == 0 {
		return nil, configErrorf("add_context requires a non-empty ending_context list for strategy %q", orRandom(strategy))
	}
	if count < 1 {
		count = 1
	}
	return &AddContext{prob: prob, starting: starting, ending: ending, strategy: strategy, count: count}, nil
}

func orRandom(strategy string) string {
	if strategy == "" {
		return "random"
	}
	return strategy
}

func (op *AddContext) Alias() string { return "add_context" }

func (op *AddContext) Transform(r *rand.Rand, inputs []Input) ([]Input, error) {
	r = rngOr(r)

	var out []Input
	for _, in := range inputs {
		for i := 0; i < op.count; i++ {
			if in.IsRaw() {
				mutated, _ := op.addContext(r, in.Text)
				out = append(out, RawText(mutated))
				continue
			}
			dup := in.Sample.Clone()
			mutated, transformations := op.addContext(r, dup.Original)
			dup.TestCase = mutated
			dup.Category = CategoryRobustness
			if dup.Task.SupportsSpanTracking() {
				dup.Transformations = transformations
			}
			out = append(out, Of(dup))
		}
	}
	return out, nil
}

// addContext applies the chosen strategy to one text.
func (op *AddContext) addContext(r *rand.Rand, text string) (string, []span.Transformation) {
	strategy := op.strategy
	if strategy == "" {
		strategies := []string{StrategyStart, StrategyEnd, StrategyCombined}
		strategy = strategies[r.Intn(len(strategies))]
	}
	if text == contextSkipSentinel {
		return text, nil
	}

	origLen := len(text)
	var transformations []span.Transformation

	if strategy == StrategyStart || strategy == StrategyCombined {
		if gate(r, op.prob) {
			phrase := op.starting[r.Intn(len(op.starting))]
			text = phrase + " " + text
			transformations = append(transformations, span.Transformation{
				OriginalSpan: span.New(0, 0, ""),
				NewSpan:      span.New(0, len(phrase)+1, phrase),
				Ignore:       true,
			})
		}
	}

	if strategy == StrategyEnd || strategy == StrategyCombined {
		if gate(r, op.prob) {
			phrase := op.ending[r.Intn(len(op.ending))]
			before := len(text)
			text = text + " " + phrase
			transformations = append(transformations, span.Transformation{
				OriginalSpan: span.New(origLen, origLen, ""),
				NewSpan:      span.New(before, len(text), phrase),
				Ignore:       true,
			})
		}
	}

	return text, transformations
}
