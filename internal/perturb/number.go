package perturb

import (
	"math/rand"
	"regexp"

	"github.com/harrison/lingtest/internal/numword"
	"github.com/harrison/lingtest/internal/span"
)

var numberTokenRe = regexp.MustCompile(`\d+(\.\d+)?`)

// NumberToWord converts standalone numeric tokens to their English word
// form ("45" -> "forty-five", "3.14" -> "three point one four"). A token
// is standalone when it is bounded by whitespace or the string edges;
// digits glued to other characters are left alone. Each conversion is
// gated independently by prob. Samples are mutated in place.
type NumberToWord struct {
	prob float64
}

// NewNumberToWord returns the number_to_word operator.
func NewNumberToWord(prob float64) (*NumberToWord, error) {
	if err := validateProb(prob); err != nil {
		return nil, err
	}
	return &NumberToWord{prob: prob}, nil
}

func (op *NumberToWord) Alias() string { return "number_to_word" }

func (op *NumberToWord) Transform(r *rand.Rand, inputs []Input) ([]Input, error) {
	r = rngOr(r)
	for i, in := range inputs {
		mutated, transformations := op.convertNumbers(r, sourceText(in))
		inputs[i] = finish(in, mutated, transformations)
	}
	return inputs, nil
}

func (op *NumberToWord) convertNumbers(r *rand.Rand, text string) (string, []span.Transformation) {
	var edits []edit
	for _, loc := range numberTokenRe.FindAllStringIndex(text, -1) {
		if !standalone(text, loc[0], loc[1]) {
			continue
		}
		token := text[loc[0]:loc[1]]
		words, ok := numword.Words(token)
		if !ok || !gate(r, op.prob) {
			continue
		}
		edits = append(edits, edit{start: loc[0], end: loc[1], repl: words})
	}
	return applyEdits(text, edits, true)
}

// standalone reports whether text[start:end] is bounded by whitespace or
// the string edges on both sides.
func standalone(text string, start, end int) bool {
	if start > 0 && !isSpace(text[start-1]) {
		return false
	}
	if end < len(text) && !isSpace(text[end]) {
		return false
	}
	return true
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
