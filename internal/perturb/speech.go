package perturb

import (
	"math/rand"
	"regexp"
	"strings"
	"unicode"

	"github.com/harrison/lingtest/internal/lexicon"
	"github.com/harrison/lingtest/internal/span"
)

// speechTokenRe splits text into word tokens (apostrophes kept inside
// words) and single non-word characters, so punctuation and whitespace
// survive reconstruction byte for byte.
var speechTokenRe = regexp.MustCompile(`\w+(?:'\w+)*|[^\w]`)

// AddSpeechToTextTypo substitutes words with perfect homophones ("right"
// -> "write"), simulating speech-to-text transcription errors. A randomly
// chosen homophone is re-cased to match the original word's leading
// capitalization; each substitution is gated independently by prob. count
// independent copies are produced per input.
type AddSpeechToTextTypo struct {
	prob  float64
	count int
}

// NewAddSpeechToTextTypo returns the add_speech_to_text_typo operator.
// count < 1 is normalized to 1.
func NewAddSpeechToTextTypo(prob float64, count int) (*AddSpeechToTextTypo, error) {
	if err := validateProb(prob); err != nil {
		return nil, err
	}
	if count < 1 {
		count = 1
	}
	return &AddSpeechToTextTypo{prob: prob, count: count}, nil
}

func (op *AddSpeechToTextTypo) Alias() string { return "add_speech_to_text_typo" }

func (op *AddSpeechToTextTypo) Transform(r *rand.Rand, inputs []Input) ([]Input, error) {
	r = rngOr(r)

	var out []Input
	for _, in := range inputs {
		for i := 0; i < op.count; i++ {
			mutated, transformations := op.homophoneSwap(r, sourceText(in))
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

func (op *AddSpeechToTextTypo) homophoneSwap(r *rand.Rand, text string) (string, []span.Transformation) {
	var edits []edit
	for _, loc := range speechTokenRe.FindAllStringIndex(text, -1) {
		word := text[loc[0]:loc[1]]
		if !isWordToken(word) {
			continue
		}
		homophones := lexicon.PerfectHomophones(word)
		if len(homophones) == 0 {
			continue
		}
		similar := matchCase(word, homophones[r.Intn(len(homophones))])
		if strings.EqualFold(similar, word) || similar == word || !gate(r, op.prob) {
			continue
		}
		edits = append(edits, edit{start: loc[0], end: loc[1], repl: similar})
	}
	return applyEdits(text, edits, true)
}

// isWordToken reports whether tok starts with a word character.
func isWordToken(tok string) bool {
	for _, ru := range tok {
		return unicode.IsLetter(ru) || unicode.IsDigit(ru) || ru == '_'
	}
	return false
}

// matchCase adjusts word to follow the leading capitalization of the
// original token: a capitalized original capitalizes the substitute, a
// lowercase original lower-cases it.
func matchCase(original, word string) string {
	if original == "" || word == "" {
		return word
	}
	origUpper := unicode.IsUpper(firstRune(original))
	wordUpper := unicode.IsUpper(firstRune(word))
	switch {
	case origUpper && !wordUpper:
		return strings.ToUpper(word[:1]) + word[1:]
	case !origUpper && wordUpper:
		return strings.ToLower(word)
	}
	return word
}

func firstRune(s string) rune {
	for _, ru := range s {
		return ru
	}
	return 0
}
