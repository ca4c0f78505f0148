package perturb

import (
	"math/rand"

	"github.com/harrison/lingtest/internal/sample"
)

// MultiplePerturbations chains atomic operators sequentially: the first
// step runs on the input list, and every later step runs on fresh samples
// wrapped around the previous step's TestCase outputs. After the final
// step each output sample's Original is reset to the pristine pre-chain
// original and its Transformations are cleared.
//
// Known limitation, preserved deliberately: span tracking does not survive
// chaining. The per-step transformation lists describe intermediate
// strings, not the pristine original, so they are discarded rather than
// composed. Consumers that need label realignment must not chain span-
// dependent operators through this composition.
type MultiplePerturbations struct {
	prob          float64
	perturbations []string
	config        map[string]Params
}

// NewMultiplePerturbations returns the multiple_perturbations operator.
// Every alias in the chain is resolved against the registry up front, so an
// unrecognized name fails before any sample is touched.
func NewMultiplePerturbations(prob float64, perturbations []string, config map[string]Params) (*MultiplePerturbations, error) {
	if err := validateProb(prob); err != nil {
		return nil, err
	}
	if len(perturbations) == 0 {
		return nil, configErrorf("multiple_perturbations requires a non-empty perturbation chain")
	}
	for _, alias := range perturbations {
		if alias == "multiple_perturbations" {
			return nil, configErrorf("multiple_perturbations cannot nest itself")
		}
		if _, ok := registry[alias]; !ok {
			return nil, configErrorf("unknown perturbation %q in chain; known perturbations: %v", alias, Aliases())
		}
	}
	return &MultiplePerturbations{prob: prob, perturbations: perturbations, config: config}, nil
}

func (op *MultiplePerturbations) Alias() string { return "multiple_perturbations" }

func (op *MultiplePerturbations) Transform(r *rand.Rand, inputs []Input) ([]Input, error) {
	r = rngOr(r)

	// Remember the pristine originals before any step runs.
	originals := make([]string, len(inputs))
	for i, in := range inputs {
		originals[i] = sourceText(in)
	}

	current := inputs
	for i, alias := range op.perturbations {
		step, err := Build(alias, op.prob, op.config[alias])
		if err != nil {
			return nil, err
		}

		if i > 0 {
			current = rewrap(current)
		}
		current, err = step.Transform(r, current)
		if err != nil {
			return nil, err
		}
	}

	// Reset originals and drop the accumulated per-step span traces.
	for i, in := range current {
		if in.IsRaw() {
			continue
		}
		if i < len(originals) {
			in.Sample.Original = originals[i]
		}
		in.Sample.Transformations = nil
	}
	return current, nil
}

// rewrap threads one step's outputs into the next step's inputs: each
// sample's TestCase becomes the Original of a fresh sample, and raw strings
// pass through as-is.
func rewrap(inputs []Input) []Input {
	next := make([]Input, len(inputs))
	for i, in := range inputs {
		if in.IsRaw() {
			next[i] = in
			continue
		}
		fresh := sample.New(in.Sample.Task, in.Sample.TestCase)
		fresh.ID = in.Sample.ID
		fresh.Category = CategoryRobustness
		fresh.Labels = in.Sample.Labels
		fresh.ExpectedResults = in.Sample.ExpectedResults
		next[i] = Of(fresh)
	}
	return next
}
