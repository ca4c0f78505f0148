package perturb

import (
	"math/rand"

	"github.com/harrison/lingtest/internal/lexicon"
)

// minTypoLength is the shortest string AddTypo will touch; anything shorter
// is a silent no-op.
const minTypoLength = 5

// adjacentSwapChance is the residual probability of swapping two adjacent
// characters instead of substituting from the keyboard-confusion table.
const adjacentSwapChance = 0.1

// AddTypo injects one keyboard typo per string: with 90% likelihood a
// random character is replaced by a frequency-weighted substitute from the
// keyboard-confusion table (up to ten retries to land on a character the
// table knows), otherwise two adjacent characters are swapped. The whole
// edit is gated by prob, and count independent perturbed copies are
// produced per input. No transformation list is emitted.
type AddTypo struct {
	prob  float64
	count int
}

// NewAddTypo returns the add_typo operator. count < 1 is normalized to 1.
func NewAddTypo(prob float64, count int) (*AddTypo, error) {
	if err := validateProb(prob); err != nil {
		return nil, err
	}
	if count < 1 {
		count = 1
	}
	return &AddTypo{prob: prob, count: count}, nil
}

func (op *AddTypo) Alias() string { return "add_typo" }

func (op *AddTypo) Transform(r *rand.Rand, inputs []Input) ([]Input, error) {
	r = rngOr(r)

	var out []Input
	for _, in := range inputs {
		for i := 0; i < op.count; i++ {
			mutated := op.keyboardTypo(r, sourceText(in))
			if in.IsRaw() {
				out = append(out, RawText(mutated))
				continue
			}
			dup := in.Sample.Clone()
			dup.TestCase = mutated
			dup.Category = CategoryRobustness
			out = append(out, Of(dup))
		}
	}
	return out, nil
}

// keyboardTypo applies one typo to text, or returns it unchanged when the
// prob gate fails or the string is too short.
func (op *AddTypo) keyboardTypo(r *rand.Rand, text string) string {
	if !gate(r, op.prob) {
		return text
	}
	runes := []rune(text)
	if len(runes) < minTypoLength {
		return text
	}

	if r.Float64() > adjacentSwapChance {
		table := lexicon.TypoFrequency()
		for attempt := 0; attempt < 10; attempt++ {
			idx := r.Intn(len(runes))
			ch := runes[idx]
			lower := ch
			upper := false
			if ch >= 'A' && ch <= 'Z' {
				lower = ch + ('a' - 'A')
				upper = true
			}
			if lower < 'a' || lower > 'z' {
				continue
			}
			subs, ok := table[byte(lower)]
			if !ok {
				continue
			}
			sub := weightedChoice(r, subs)
			if upper {
				sub = sub - ('a' - 'A')
			}
			runes[idx] = rune(sub)
			break
		}
	} else {
		swapIdx := r.Intn(len(runes) - 1)
		runes[swapIdx], runes[swapIdx+1] = runes[swapIdx+1], runes[swapIdx]
	}
	return string(runes)
}

// weightedChoice samples one substitute character proportionally to its
// confusion weight. Entries are guaranteed non-empty with positive weights
// by the lexicon loader.
func weightedChoice(r *rand.Rand, subs []lexicon.WeightedChar) byte {
	total := 0
	for _, wc := range subs {
		total += wc.Weight
	}
	pick := r.Intn(total)
	for _, wc := range subs {
		pick -= wc.Weight
		if pick < 0 {
			return wc.Char
		}
	}
	return subs[len(subs)-1].Char
}
