package perturb

import (
	"math/rand"
	"regexp"

	"github.com/harrison/lingtest/internal/lexicon"
	"github.com/harrison/lingtest/internal/span"
)

var ocrTokenRe = regexp.MustCompile(`[^,\s.!?]+`)

// AddOcrTypo replaces words with OCR-confusable misreads: for each
// word-like token the OCR confusion table is reverse-looked-up for
// misspellings whose canonical form equals the token, and one is chosen at
// random, gated by prob. count independent copies are produced per input.
type AddOcrTypo struct {
	prob  float64
	count int
}

// NewAddOcrTypo returns the add_ocr_typo operator. count < 1 is normalized
// to 1.
func NewAddOcrTypo(prob float64, count int) (*AddOcrTypo, error) {
	if err := validateProb(prob); err != nil {
		return nil, err
	}
	if count < 1 {
		count = 1
	}
	return &AddOcrTypo{prob: prob, count: count}, nil
}

func (op *AddOcrTypo) Alias() string { return "add_ocr_typo" }

func (op *AddOcrTypo) Transform(r *rand.Rand, inputs []Input) ([]Input, error) {
	r = rngOr(r)

	var out []Input
	for _, in := range inputs {
		for i := 0; i < op.count; i++ {
			text := sourceText(in)
			mutated, transformations := op.ocrTypo(r, text)
			if in.IsRaw() {
				out = append(out, RawText(mutated))
				continue
			}
			dup := in.Sample.Clone()
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

func (op *AddOcrTypo) ocrTypo(r *rand.Rand, text string) (string, []span.Transformation) {
	var edits []edit
	for _, loc := range ocrTokenRe.FindAllStringIndex(text, -1) {
		token := text[loc[0]:loc[1]]
		candidates := lexicon.OcrCandidates(token)
		if len(candidates) == 0 {
			continue
		}
		corrupted := candidates[r.Intn(len(candidates))]
		if corrupted == token || !gate(r, op.prob) {
			continue
		}
		edits = append(edits, edit{start: loc[0], end: loc[1], repl: corrupted})
	}
	return applyEdits(text, edits, true)
}
