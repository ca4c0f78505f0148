package perturb

import (
	"math"
	"math/rand"
	"strings"
	"unicode"
)

// caseOperator implements the uppercase/lowercase/titlecase family. The
// text is split on whitespace, round(prob*n) word positions are chosen
// uniformly at random without replacement, only those words are case-folded,
// and the words are rejoined with single spaces. Samples are mutated in
// place and no transformation list is emitted: pure case folds move no
// characters.
type caseOperator struct {
	alias string
	prob  float64
	fold  func(string) string
}

// NewUpperCase returns the uppercase operator.
func NewUpperCase(prob float64) (Operator, error) {
	return newCaseOperator("uppercase", prob, strings.ToUpper)
}

// NewLowerCase returns the lowercase operator.
func NewLowerCase(prob float64) (Operator, error) {
	return newCaseOperator("lowercase", prob, strings.ToLower)
}

// NewTitleCase returns the titlecase operator.
func NewTitleCase(prob float64) (Operator, error) {
	return newCaseOperator("titlecase", prob, titleWord)
}

func newCaseOperator(alias string, prob float64, fold func(string) string) (Operator, error) {
	if err := validateProb(prob); err != nil {
		return nil, err
	}
	return &caseOperator{alias: alias, prob: prob, fold: fold}, nil
}

func (op *caseOperator) Alias() string {
	return op.alias
}

func (op *caseOperator) Transform(r *rand.Rand, inputs []Input) ([]Input, error) {
	r = rngOr(r)
	for i, in := range inputs {
		mutated := op.foldWords(r, sourceText(in))
		inputs[i] = finish(in, mutated, nil)
	}
	return inputs, nil
}

// foldWords case-folds round(prob*n) randomly chosen words of text.
func (op *caseOperator) foldWords(r *rand.Rand, text string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return text
	}

	n := int(math.Round(op.prob * float64(len(words))))
	if n > len(words) {
		n = len(words)
	}
	if n == 0 {
		return text
	}

	chosen := r.Perm(len(words))[:n]
	for _, idx := range chosen {
		words[idx] = op.fold(words[idx])
	}
	return strings.Join(words, " ")
}

// titleWord upper-cases the first letter of each word-internal run and
// lower-cases the rest, matching per-word title casing.
func titleWord(word string) string {
	var b strings.Builder
	b.Grow(len(word))
	startOfWord := true
	for _, ru := range word {
		if unicode.IsLetter(ru) || unicode.IsDigit(ru) {
			if startOfWord {
				b.WriteRune(unicode.ToUpper(ru))
			} else {
				b.WriteRune(unicode.ToLower(ru))
			}
			startOfWord = false
		} else {
			b.WriteRune(ru)
			startOfWord = true
		}
	}
	return b.String()
}
