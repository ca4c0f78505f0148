package perturb

import (
	"math/rand"
	"strings"

	"github.com/harrison/lingtest/internal/sample"
	"github.com/harrison/lingtest/internal/span"
)

// SwapEntities replaces one labeled entity per sample with a terminology
// value of the same entity type. It needs token-aligned BIO labels (either
// supplied per call or carried on the samples) and a terminology mapping
// from entity type to candidate replacement strings. One entity span is
// picked at random among the B-* starts and extended through contiguous
// matching I-* continuations; the whole edit is gated by prob. Samples
// whose labels are all "O" pass through as no-ops. count independent
// copies are produced per input.
type SwapEntities struct {
	prob        float64
	labels      [][]string
	terminology map[string][]string
	count       int
}

// NewSwapEntities returns the swap_entities operator. terminology is
// required; labels may be nil when every sample carries its own BIO tags.
func NewSwapEntities(prob float64, labels [][]string, terminology map[string][]string, count int) (*SwapEntities, error) {
	if err := validateProb(prob); err != nil {
		return nil, err
	}
	if len(terminology) == 0 {
		return nil, configErrorf("swap_entities requires a terminology mapping of entity types to replacement candidates")
	}
	if count < 1 {
		count = 1
	}
	return &SwapEntities{prob: prob, labels: labels, terminology: terminology, count: count}, nil
}

func (op *SwapEntities) Alias() string { return "swap_entities" }

func (op *SwapEntities) Transform(r *rand.Rand, inputs []Input) ([]Input, error) {
	r = rngOr(r)

	// Validate the whole batch before touching any sample.
	if op.labels != nil && len(op.labels) != len(inputs) {
		return nil, configErrorf("swap_entities got %d label sequences for %d samples", len(op.labels), len(inputs))
	}
	for i, in := range inputs {
		if in.IsRaw() {
			return nil, configErrorf("swap_entities requires full samples with BIO labels, got raw text at index %d", i)
		}
		if op.labelsFor(i, in) == nil {
			return nil, configErrorf("swap_entities requires BIO labels for every sample; sample %d has none", i)
		}
	}

	var out []Input
	for i, in := range inputs {
		labels := op.labelsFor(i, in)
		for c := 0; c < op.count; c++ {
			dup := in.Sample.Clone()
			dup.Category = CategoryRobustness
			op.swap(r, dup, labels)
			out = append(out, Of(dup))
		}
	}
	return out, nil
}

// labelsFor resolves the BIO labels for input i: caller-supplied sequences
// win over labels carried on the sample.
func (op *SwapEntities) labelsFor(i int, in Input) []string {
	if op.labels != nil {
		return op.labels[i]
	}
	if in.Sample != nil {
		return in.Sample.Labels
	}
	return nil
}

// swap performs the single entity replacement on dup. All-O label
// sequences, unknown entity types, and failed prob gates leave the sample
// as a no-op with TestCase equal to Original.
func (op *SwapEntities) swap(r *rand.Rand, dup *sample.Sample, labels []string) {
	dup.TestCase = dup.Original

	var entStarts []int
	for i, label := range labels {
		if strings.HasPrefix(label, "B-") {
			entStarts = append(entStarts, i)
		}
	}
	if len(entStarts) == 0 {
		return
	}

	tokens := strings.Split(dup.Original, " ")
	replaceIdx := entStarts[r.Intn(len(entStarts))]
	if replaceIdx >= len(tokens) {
		return
	}
	entType := labels[replaceIdx][2:]

	end := replaceIdx
	for end+1 < len(labels) && end+1 < len(tokens) && labels[end+1] == "I-"+entType {
		end++
	}
	replaceToken := strings.Join(tokens[replaceIdx:end+1], " ")

	candidates := op.terminology[entType]
	if len(candidates) == 0 {
		return
	}
	chosen := candidates[r.Intn(len(candidates))]

	if !gate(r, op.prob) {
		return
	}

	pos := strings.Index(dup.Original, replaceToken)
	if pos < 0 {
		return
	}
	dup.TestCase = strings.ReplaceAll(dup.Original, replaceToken, chosen)
	if dup.Task.SupportsSpanTracking() {
		dup.Transformations = []span.Transformation{{
			OriginalSpan: span.New(pos, pos+len(replaceToken), replaceToken),
			NewSpan:      span.New(pos, pos+len(chosen), chosen),
			Ignore:       false,
		}}
	}
}
