package perturb

import (
	"math/rand"
	"regexp"
	"strings"

	"github.com/harrison/lingtest/internal/lexicon"
	"github.com/harrison/lingtest/internal/span"
)

// slangTokenRe keeps hyphenated and possessive words intact as single
// tokens, alongside single punctuation characters and whitespace runs.
var slangTokenRe = regexp.MustCompile(`\w+(?:[-']\w+)*|[^\w\s]|\s+`)

// AddSlangifyTypo substitutes standard words with slang equivalents drawn
// from noun, adverb, and adjective tables ("money" -> "dough"). The chosen
// slang is re-cased to match the original word's leading capitalization;
// each substitution is gated independently by prob. Samples are mutated in
// place.
type AddSlangifyTypo struct {
	prob float64
}

// NewAddSlangifyTypo returns the add_slangs operator.
func NewAddSlangifyTypo(prob float64) (*AddSlangifyTypo, error) {
	if err := validateProb(prob); err != nil {
		return nil, err
	}
	return &AddSlangifyTypo{prob: prob}, nil
}

func (op *AddSlangifyTypo) Alias() string { return "add_slangs" }

func (op *AddSlangifyTypo) Transform(r *rand.Rand, inputs []Input) ([]Input, error) {
	r = rngOr(r)
	for i, in := range inputs {
		mutated, transformations := op.slangify(r, sourceText(in))
		inputs[i] = finish(in, mutated, transformations)
	}
	return inputs, nil
}

func (op *AddSlangifyTypo) slangify(r *rand.Rand, text string) (string, []span.Transformation) {
	tables := lexicon.SlangTables()

	var edits []edit
	for _, loc := range slangTokenRe.FindAllStringIndex(text, -1) {
		token := text[loc[0]:loc[1]]
		if !isWordToken(token) {
			continue
		}
		lower := strings.ToLower(token)

		for _, table := range tables {
			slangs, ok := table[lower]
			if !ok || len(slangs) == 0 {
				continue
			}
			chosen := matchCase(token, slangs[r.Intn(len(slangs))])
			if chosen != token && gate(r, op.prob) {
				edits = append(edits, edit{start: loc[0], end: loc[1], repl: chosen})
			}
			break
		}
	}
	return applyEdits(text, edits, true)
}
