package perturb

import (
	"math/rand"
	"regexp"
	"sort"

	"github.com/harrison/lingtest/internal/lexicon"
	"github.com/harrison/lingtest/internal/span"
)

// AddContraction rewrites expanded phrases to their contracted forms
// ("do not" -> "don't") via case-insensitive whole-phrase matches, keeping
// the first letter's original case. Each matched site is gated
// independently by prob and emits one replacement Transformation. Samples
// are mutated in place.
type AddContraction struct {
	prob     float64
	patterns []contractionPattern
}

type contractionPattern struct {
	re   *regexp.Regexp
	repl string
}

// NewAddContraction returns the add_contraction operator. A nil
// contractionMap selects the built-in lexicon table.
func NewAddContraction(prob float64, contractionMap map[string]string) (*AddContraction, error) {
	if err := validateProb(prob); err != nil {
		return nil, err
	}
	if contractionMap == nil {
		contractionMap = lexicon.Contractions()
	}
	if len(contractionMap) == 0 {
		return nil, configErrorf("add_contraction requires a non-empty contraction map")
	}

	// Compile once, in deterministic key order so seeded runs reproduce.
	keys := make([]string, 0, len(contractionMap))
	for k := range contractionMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	patterns := make([]contractionPattern, 0, len(keys))
	for _, k := range keys {
		re := regexp.MustCompile(`(?is)` + regexp.QuoteMeta(k))
		patterns = append(patterns, contractionPattern{re: re, repl: contractionMap[k]})
	}
	return &AddContraction{prob: prob, patterns: patterns}, nil
}

func (op *AddContraction) Alias() string { return "add_contraction" }

func (op *AddContraction) Transform(r *rand.Rand, inputs []Input) ([]Input, error) {
	r = rngOr(r)
	for i, in := range inputs {
		mutated, transformations := op.contract(r, sourceText(in))
		inputs[i] = finish(in, mutated, transformations)
	}
	return inputs, nil
}

// contract finds every phrase match in text, applies the surviving edits
// left to right, and preserves the first letter of each matched phrase.
func (op *AddContraction) contract(r *rand.Rand, text string) (string, []span.Transformation) {
	var edits []edit
	for _, p := range op.patterns {
		for _, loc := range p.re.FindAllStringIndex(text, -1) {
			if !gate(r, op.prob) {
				continue
			}
			matched := text[loc[0]:loc[1]]
			edits = append(edits, edit{
				start: loc[0],
				end:   loc[1],
				repl:  preserveFirstLetter(matched, p.repl),
			})
		}
	}
	sortEdits(edits)
	edits = dropOverlaps(edits)
	return applyEdits(text, edits, true)
}

// preserveFirstLetter grafts the first byte of the matched token onto the
// replacement, so "Cannot" contracts to "Can't" rather than "can't".
func preserveFirstLetter(token, repl string) string {
	if token == "" || repl == "" {
		return repl
	}
	return token[:1] + repl[1:]
}
