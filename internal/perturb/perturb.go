// Package perturb implements the text perturbation engine: a family of
// operators that mutate natural-language strings (case changes, typos,
// punctuation edits, entity swaps, contraction and homophone substitution,
// slang substitution, number-to-word conversion) while recording a
// character-accurate trace of every edit as span transformations, so that
// downstream consumers such as NER label realignment can recover which
// tokens moved where.
//
// Every operator exposes the same contract through the Operator interface:
// it accepts a list of inputs (full samples or raw strings), a probability
// that each eligible edit site is actually changed, and operator-specific
// configuration. Operators write Sample.TestCase, tag Sample.Category, and
// populate Sample.Transformations only for task variants that support span
// tracking. Malformed configuration fails fast with a ConfigError before
// any sample is touched; data edge cases (too-short strings, all-O label
// sequences) are silent no-ops with TestCase set equal to Original.
//
// Span conventions: OriginalSpan is always in coordinates of the pre-edit
// string the operator received, and NewSpan in coordinates of the final
// mutated string, with cumulative length deltas applied. This keeps every
// emitted Transformation materializable against both strings even when one
// operator call performs several length-changing edits.
package perturb

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/harrison/lingtest/internal/sample"
)

// CategoryRobustness tags samples produced by the robustness test family.
const CategoryRobustness = "robustness"

// Input is one unit of operator input: either a full sample or, in
// unit-test/debug mode, a raw string. Exactly one representation is active;
// a nil Sample means raw-text mode.
type Input struct {
	Sample *sample.Sample
	Text   string
}

// RawText wraps a plain string as operator input.
func RawText(text string) Input {
	return Input{Text: text}
}

// Of wraps a sample as operator input.
func Of(s *sample.Sample) Input {
	return Input{Sample: s}
}

// IsRaw reports whether the input is a raw string rather than a sample.
func (in Input) IsRaw() bool {
	return in.Sample == nil
}

// Samples wraps a sample list as operator inputs.
func Samples(list []*sample.Sample) []Input {
	inputs := make([]Input, len(list))
	for i, s := range list {
		inputs[i] = Of(s)
	}
	return inputs
}

// Texts wraps raw strings as operator inputs.
func Texts(list []string) []Input {
	inputs := make([]Input, len(list))
	for i, s := range list {
		inputs[i] = RawText(s)
	}
	return inputs
}

// Operator is one perturbation implementation. Transform consumes inputs
// and produces outputs; depending on the operator family it either mutates
// sample inputs in place or appends independent copies (see each operator's
// documentation). A nil rng falls back to the shared process-wide source.
type Operator interface {
	// Alias returns the registry name the operator is looked up by.
	Alias() string

	// Transform applies the perturbation to every input.
	Transform(rng *rand.Rand, inputs []Input) ([]Input, error)
}

// ConfigError reports missing or invalid operator configuration: an absent
// required dictionary, an unknown perturbation alias, a malformed strategy
// value. It is raised before any sample is mutated and is never retried.
type ConfigError struct {
	msg string
}

// Error returns the configuration error message.
func (e *ConfigError) Error() string {
	return e.msg
}

// configErrorf builds a ConfigError with a formatted message.
func configErrorf(format string, args ...any) error {
	return &ConfigError{msg: fmt.Sprintf(format, args...)}
}

// IsConfigError reports whether err is (or wraps) a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// validateProb rejects probabilities outside [0, 1].
func validateProb(prob float64) error {
	if prob < 0 || prob > 1 {
		return configErrorf("prob must be between 0.0 and 1.0, got %g", prob)
	}
	return nil
}

// globalRand is the shared fallback source used when a caller passes a nil
// rng. Concurrent operator calls sharing it race non-deterministically;
// this is accepted behavior, documented rather than synchronized away.
// Callers that need reproducibility pass their own seeded *rand.Rand.
var globalRand = rand.New(rand.NewSource(time.Now().UnixNano()))

// SeedGlobal reseeds the shared fallback source. Useful for tests that
// exercise the nil-rng path.
func SeedGlobal(seed int64) {
	globalRand = rand.New(rand.NewSource(seed))
}

// rngOr returns r, or the shared fallback source when r is nil.
func rngOr(r *rand.Rand) *rand.Rand {
	if r != nil {
		return r
	}
	return globalRand
}

// gate reports whether an eligible edit site should actually be changed,
// evaluated independently per site.
func gate(r *rand.Rand, prob float64) bool {
	return r.Float64() < prob
}
