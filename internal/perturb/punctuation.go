package perturb

import (
	"math/rand"
	"regexp"
	"strings"

	"github.com/harrison/lingtest/internal/span"
)

// defaultPunctuation is the whitelist of sentence-final punctuation the
// add/strip pair considers.
var defaultPunctuation = []string{"!", "?", ",", ".", "-", ":", ";"}

// AddPunctuation appends one whitelist character, chosen uniformly at
// random, to strings that do not already end in a whitelist character,
// gated by prob. It produces count independent copies per input. The single
// insertion is recorded with Ignore=true: it carries no semantic token.
type AddPunctuation struct {
	prob      float64
	whitelist []string
	count     int
}

// NewAddPunctuation returns the add_punctuation operator. A nil whitelist
// selects the default set; count < 1 is normalized to 1.
func NewAddPunctuation(prob float64, whitelist []string, count int) (*AddPunctuation, error) {
	if err := validateProb(prob); err != nil {
		return nil, err
	}
	if whitelist == nil {
		whitelist = defaultPunctuation
	}
	if count < 1 {
		count = 1
	}
	return &AddPunctuation{prob: prob, whitelist: whitelist, count: count}, nil
}

func (op *AddPunctuation) Alias() string { return "add_punctuation" }

func (op *AddPunctuation) Transform(r *rand.Rand, inputs []Input) ([]Input, error) {
	r = rngOr(r)

	var out []Input
	for _, in := range inputs {
		for i := 0; i < op.count; i++ {
			text := sourceText(in)
			if in.IsRaw() {
				if endsInWhitelist(text, op.whitelist) || !gate(r, op.prob) {
					out = append(out, in)
					continue
				}
				out = append(out, RawText(text+op.choose(r)))
				continue
			}

			dup := in.Sample.Clone()
			if !endsInWhitelist(text, op.whitelist) && gate(r, op.prob) {
				punc := op.choose(r)
				dup.TestCase = text + punc
				if dup.Task.SupportsSpanTracking() {
					dup.Transformations = []span.Transformation{{
						OriginalSpan: span.New(len(text), len(text), ""),
						NewSpan:      span.New(len(text), len(dup.TestCase), punc),
						Ignore:       true,
					}}
				}
			} else {
				dup.TestCase = text
			}
			dup.Category = CategoryRobustness
			out = append(out, Of(dup))
		}
	}
	return out, nil
}

func (op *AddPunctuation) choose(r *rand.Rand) string {
	return op.whitelist[r.Intn(len(op.whitelist))]
}

// endsInWhitelist reports whether the last character of text is one of the
// whitelist characters. Empty strings have nothing to punctuate.
func endsInWhitelist(text string, whitelist []string) bool {
	if text == "" {
		return true
	}
	last := text[len(text)-1:]
	for _, w := range whitelist {
		if w == last {
			return true
		}
	}
	return false
}

// StripPunctuation removes the final character of strings that end in a
// whitelist character, gated by prob. Samples are mutated in place; the
// deletion is recorded with Ignore=true.
type StripPunctuation struct {
	prob      float64
	whitelist []string
}

// NewStripPunctuation returns the strip_punctuation operator. A nil
// whitelist selects the default set.
func NewStripPunctuation(prob float64, whitelist []string) (*StripPunctuation, error) {
	if err := validateProb(prob); err != nil {
		return nil, err
	}
	if whitelist == nil {
		whitelist = defaultPunctuation
	}
	return &StripPunctuation{prob: prob, whitelist: whitelist}, nil
}

func (op *StripPunctuation) Alias() string { return "strip_punctuation" }

func (op *StripPunctuation) Transform(r *rand.Rand, inputs []Input) ([]Input, error) {
	r = rngOr(r)

	for i, in := range inputs {
		text := sourceText(in)

		if in.IsRaw() {
			if text != "" && endsInWhitelist(text, op.whitelist) && gate(r, op.prob) {
				inputs[i] = RawText(text[:len(text)-1])
			}
			continue
		}

		s := in.Sample
		if text != "" && endsInWhitelist(text, op.whitelist) && gate(r, op.prob) {
			s.TestCase = text[:len(text)-1]
			if s.Task.SupportsSpanTracking() {
				s.Transformations = []span.Transformation{{
					OriginalSpan: span.New(len(text)-1, len(text), text[len(text)-1:]),
					NewSpan:      span.New(len(s.TestCase), len(s.TestCase), ""),
					Ignore:       true,
				}}
			}
		} else {
			s.TestCase = text
		}
		s.Category = CategoryRobustness
	}
	return inputs, nil
}

// StripAllPunctuation removes or rewrites a wider punctuation set in one
// combined left-to-right pass, with domain exceptions: decimal numbers like
// "3.14" are preserved, whitelisted slash abbreviations such as "s/p" are
// kept intact, and generic letter/letter patterns are rewritten to " and "
// rather than deleted. Samples are mutated in place; prob gates the whole
// sample.
type StripAllPunctuation struct {
	prob      float64
	whitelist []string
	pattern   *regexp.Regexp
}

var defaultStripAll = []string{"!", "?", ",", ".", "-", ":", ";", "/", "'", "\""}

// slashExceptions are clinical-style abbreviations whose slash survives the
// strip pass.
var slashExceptions = map[string]bool{"s/p": true, "h/o": true}

var letterSlashLetter = regexp.MustCompile(`^\w/\w$`)

// NewStripAllPunctuation returns the strip_punctuation_all operator. A nil
// whitelist selects the extended default set.
func NewStripAllPunctuation(prob float64, whitelist []string) (*StripAllPunctuation, error) {
	if err := validateProb(prob); err != nil {
		return nil, err
	}
	if whitelist == nil {
		whitelist = defaultStripAll
	}

	// One alternation, tried in order: decimal numbers (kept), slash pairs
	// (rewritten or kept), then individual whitelist characters.
	var chars strings.Builder
	for _, w := range whitelist {
		if w == "/" || w == "." {
			continue
		}
		// Backslash-escape every character so '-' and friends cannot form
		// ranges inside the class.
		chars.WriteByte('\\')
		chars.WriteString(w)
	}
	pattern := regexp.MustCompile(`\d+\.\d+|\b\w/\w\b|[` + chars.String() + `/.]`)

	return &StripAllPunctuation{prob: prob, whitelist: whitelist, pattern: pattern}, nil
}

func (op *StripAllPunctuation) Alias() string { return "strip_punctuation_all" }

func (op *StripAllPunctuation) Transform(r *rand.Rand, inputs []Input) ([]Input, error) {
	r = rngOr(r)

	for i, in := range inputs {
		text := sourceText(in)

		if !gate(r, op.prob) {
			inputs[i] = finish(in, text, nil)
			continue
		}

		mutated, transformations := op.strip(text)
		inputs[i] = finish(in, mutated, transformations)
	}
	return inputs, nil
}

// strip performs the single left-to-right pass over text.
func (op *StripAllPunctuation) strip(text string) (string, []span.Transformation) {
	var edits []edit
	for _, loc := range op.pattern.FindAllStringIndex(text, -1) {
		tok := text[loc[0]:loc[1]]
		switch {
		case letterSlashLetter.MatchString(tok):
			if slashExceptions[strings.ToLower(tok)] {
				continue
			}
			edits = append(edits, edit{start: loc[0], end: loc[1], repl: " and "})
		case tok == ".":
			// Non-decimal periods only; decimals were consumed whole by the
			// first alternation, but a trailing "3." still reaches here.
			if loc[0] > 0 && isDigit(text[loc[0]-1]) && loc[1] < len(text) && isDigit(text[loc[1]]) {
				continue
			}
			edits = append(edits, edit{start: loc[0], end: loc[1]})
		case tok == "/":
			if keepSlash(text, loc[0]) {
				continue
			}
			edits = append(edits, edit{start: loc[0], end: loc[1]})
		case len(tok) > 1:
			// Decimal number: preserved.
			continue
		default:
			edits = append(edits, edit{start: loc[0], end: loc[1]})
		}
	}
	return applyEdits(text, edits, true)
}

// keepSlash reports whether the slash at position idx belongs to a
// protected abbreviation pattern.
func keepSlash(text string, idx int) bool {
	prev := byte(0)
	next := byte(0)
	if idx > 0 {
		prev = text[idx-1]
	}
	if idx+1 < len(text) {
		next = text[idx+1]
	}
	return (prev == 's' && next == 'p') || (prev == 'h' && next == 'o')
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
