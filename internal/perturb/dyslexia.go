package perturb

import (
	"math/rand"
	"regexp"

	"github.com/harrison/lingtest/internal/lexicon"
	"github.com/harrison/lingtest/internal/span"
)

var wordBoundaryRe = regexp.MustCompile(`\b\w+\b`)

// DyslexiaWordSwap replaces whole words with their common dyslexic
// confusions ("was" -> "saw"). Each matched word is gated independently by
// prob. Samples are mutated in place.
type DyslexiaWordSwap struct {
	prob    float64
	wordMap map[string]string
}

// NewDyslexiaWordSwap returns the dyslexia_word_swap operator. A nil
// wordMap selects the built-in lexicon table.
func NewDyslexiaWordSwap(prob float64, wordMap map[string]string) (*DyslexiaWordSwap, error) {
	if err := validateProb(prob); err != nil {
		return nil, err
	}
	if wordMap == nil {
		wordMap = lexicon.DyslexiaMap()
	}
	return &DyslexiaWordSwap{prob: prob, wordMap: wordMap}, nil
}

func (op *DyslexiaWordSwap) Alias() string { return "dyslexia_word_swap" }

func (op *DyslexiaWordSwap) Transform(r *rand.Rand, inputs []Input) ([]Input, error) {
	r = rngOr(r)
	for i, in := range inputs {
		mutated, transformations := op.swapWords(r, sourceText(in))
		inputs[i] = finish(in, mutated, transformations)
	}
	return inputs, nil
}

func (op *DyslexiaWordSwap) swapWords(r *rand.Rand, text string) (string, []span.Transformation) {
	var edits []edit
	for _, loc := range wordBoundaryRe.FindAllStringIndex(text, -1) {
		word := text[loc[0]:loc[1]]
		swapped, ok := op.wordMap[word]
		if !ok || swapped == word || !gate(r, op.prob) {
			continue
		}
		edits = append(edits, edit{start: loc[0], end: loc[1], repl: swapped})
	}
	return applyEdits(text, edits, true)
}
