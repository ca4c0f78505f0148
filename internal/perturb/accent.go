package perturb

import (
	"math/rand"
	"strings"

	"github.com/harrison/lingtest/internal/lexicon"
	"github.com/harrison/lingtest/internal/span"
)

// ConvertAccent rewrites words between spelling conventions (American to
// British or the reverse) using a conversion map. The text is tokenized on
// spaces into a set (duplicate tokens collapse to one lookup), each token
// is looked up case-insensitively and gated by prob, and every occurrence
// of a changed token is replaced, one Transformation per occurrence.
// Samples are mutated in place.
type ConvertAccent struct {
	alias     string
	prob      float64
	accentMap map[string]string
}

// NewConvertAccent returns an accent converter for the given direction
// alias ("american_to_british" or "british_to_american"). A non-nil
// accentMap overrides the built-in lexicon for that direction.
func NewConvertAccent(alias string, prob float64, accentMap map[string]string) (*ConvertAccent, error) {
	if err := validateProb(prob); err != nil {
		return nil, err
	}
	if accentMap == nil {
		accentMap = lexicon.AccentMap(alias)
	}
	if accentMap == nil {
		return nil, configErrorf("accent conversion requires an accent_map; none supplied and %q is not a built-in direction", alias)
	}
	return &ConvertAccent{alias: alias, prob: prob, accentMap: accentMap}, nil
}

func (op *ConvertAccent) Alias() string { return op.alias }

func (op *ConvertAccent) Transform(r *rand.Rand, inputs []Input) ([]Input, error) {
	r = rngOr(r)
	for i, in := range inputs {
		text := sourceText(in)
		mutated, transformations := op.convert(r, text)
		inputs[i] = finish(in, mutated, transformations)
	}
	return inputs, nil
}

// convert applies the accent map to text. Distinct tokens are visited in
// first-occurrence order so seeded runs are reproducible.
func (op *ConvertAccent) convert(r *rand.Rand, text string) (string, []span.Transformation) {
	seen := make(map[string]bool)
	var edits []edit

	for _, token := range strings.Split(text, " ") {
		if token == "" || seen[token] {
			continue
		}
		seen[token] = true

		if !gate(r, op.prob) {
			continue
		}
		newToken, ok := op.accentMap[strings.ToLower(token)]
		if !ok || newToken == token {
			continue
		}

		// Every occurrence of the token, substring matches included.
		for pos := 0; ; {
			idx := strings.Index(text[pos:], token)
			if idx < 0 {
				break
			}
			start := pos + idx
			edits = append(edits, edit{start: start, end: start + len(token), repl: newToken})
			pos = start + len(token)
		}
	}

	sortEdits(edits)
	edits = dropOverlaps(edits)
	return applyEdits(text, edits, true)
}
