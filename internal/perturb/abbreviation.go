package perturb

import (
	"math/rand"
	"regexp"
	"sort"

	"github.com/harrison/lingtest/internal/lexicon"
	"github.com/harrison/lingtest/internal/span"
)

// AbbreviationInsertion rewrites expansion phrases to their abbreviations
// ("as soon as possible" -> "asap") via case-insensitive whole-phrase
// matches. Each matched occurrence is gated independently by prob and
// emits one replacement Transformation. Samples are mutated in place.
type AbbreviationInsertion struct {
	prob     float64
	patterns []abbreviationPattern
}

type abbreviationPattern struct {
	re   *regexp.Regexp
	abbr string
}

// NewAbbreviationInsertion returns the add_abbreviation operator. A nil
// abbreviationMap selects the built-in lexicon table.
func NewAbbreviationInsertion(prob float64, abbreviationMap map[string][]string) (*AbbreviationInsertion, error) {
	if err := validateProb(prob); err != nil {
		return nil, err
	}
	if abbreviationMap == nil {
		abbreviationMap = lexicon.Abbreviations()
	}
	if len(abbreviationMap) == 0 {
		return nil, configErrorf("add_abbreviation requires a non-empty abbreviation map")
	}

	abbrs := make([]string, 0, len(abbreviationMap))
	for abbr := range abbreviationMap {
		abbrs = append(abbrs, abbr)
	}
	sort.Strings(abbrs)

	var patterns []abbreviationPattern
	for _, abbr := range abbrs {
		for _, expansion := range abbreviationMap[abbr] {
			re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(expansion) + `\b`)
			patterns = append(patterns, abbreviationPattern{re: re, abbr: abbr})
		}
	}
	return &AbbreviationInsertion{prob: prob, patterns: patterns}, nil
}

func (op *AbbreviationInsertion) Alias() string { return "add_abbreviation" }

func (op *AbbreviationInsertion) Transform(r *rand.Rand, inputs []Input) ([]Input, error) {
	r = rngOr(r)
	for i, in := range inputs {
		mutated, transformations := op.abbreviate(r, sourceText(in))
		inputs[i] = finish(in, mutated, transformations)
	}
	return inputs, nil
}

func (op *AbbreviationInsertion) abbreviate(r *rand.Rand, text string) (string, []span.Transformation) {
	var edits []edit
	for _, p := range op.patterns {
		for _, loc := range p.re.FindAllStringIndex(text, -1) {
			token := text[loc[0]:loc[1]]
			if token == p.abbr || !gate(r, op.prob) {
				continue
			}
			edits = append(edits, edit{start: loc[0], end: loc[1], repl: p.abbr})
		}
	}
	sortEdits(edits)
	edits = dropOverlaps(edits)
	return applyEdits(text, edits, true)
}
