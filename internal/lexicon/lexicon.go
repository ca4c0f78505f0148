// Package lexicon provides the static lookup tables backing the perturbation
// operators: keyboard typo frequencies, contraction and abbreviation maps,
// dyslexia and OCR confusion maps, slang tables, homophone groups, and
// American/British accent maps.
//
// Tables are embedded via go:embed, parsed once on first use, and never
// mutated afterwards, so they are safe for unsynchronized concurrent reads
// by any number of operator calls.
package lexicon

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var dataFS embed.FS

// WeightedChar is one substitute character with its confusion frequency.
type WeightedChar struct {
	Char   byte
	Weight int
}

var (
	once sync.Once

	typoFrequency map[byte][]WeightedChar
	contractions  map[string]string
	dyslexia      map[string]string
	ocrTypos      map[string]string
	ocrReverse    map[string][]string
	abbreviations map[string][]string
	slangTables   []map[string][]string
	homophoneIdx  map[string][]string
	amToBr        map[string]string
	brToAm        map[string]string
)

// load parses every embedded table exactly once. Embedded data is part of
// the build; a parse failure is a programmer error and panics.
func load() {
	once.Do(func() {
		typoFrequency = loadTypoFrequency()
		contractions = mustStringMap("data/contractions.yaml")
		dyslexia = mustStringMap("data/dyslexia.yaml")
		ocrTypos = mustStringMap("data/ocr.yaml")
		ocrReverse = invertMulti(ocrTypos)
		abbreviations = mustMultiMap("data/abbreviations.yaml")
		slangTables = loadSlang()
		homophoneIdx = loadHomophones()
		amToBr = mustStringMap("data/accent.yaml")
		brToAm = invert(amToBr)
	})
}

func mustRead(name string) []byte {
	data, err := dataFS.ReadFile(name)
	if err != nil {
		panic(fmt.Sprintf("lexicon: missing embedded table %s: %v", name, err))
	}
	return data
}

func mustStringMap(name string) map[string]string {
	var m map[string]string
	if err := yaml.Unmarshal(mustRead(name), &m); err != nil {
		panic(fmt.Sprintf("lexicon: malformed table %s: %v", name, err))
	}
	return m
}

func mustMultiMap(name string) map[string][]string {
	var m map[string][]string
	if err := yaml.Unmarshal(mustRead(name), &m); err != nil {
		panic(fmt.Sprintf("lexicon: malformed table %s: %v", name, err))
	}
	return m
}

func loadTypoFrequency() map[byte][]WeightedChar {
	var raw map[string]map[string]int
	if err := yaml.Unmarshal(mustRead("data/typo_frequency.yaml"), &raw); err != nil {
		panic(fmt.Sprintf("lexicon: malformed typo frequency table: %v", err))
	}

	table := make(map[byte][]WeightedChar, len(raw))
	for letter, subs := range raw {
		if len(letter) != 1 {
			panic(fmt.Sprintf("lexicon: typo table key %q is not a single letter", letter))
		}
		entries := make([]WeightedChar, 0, len(subs))
		for sub, weight := range subs {
			if len(sub) != 1 || weight <= 0 {
				panic(fmt.Sprintf("lexicon: bad typo substitute %q for %q", sub, letter))
			}
			entries = append(entries, WeightedChar{Char: sub[0], Weight: weight})
		}
		table[letter[0]] = entries
	}
	return table
}

func loadSlang() []map[string][]string {
	var raw struct {
		Nouns      map[string][]string `yaml:"nouns"`
		Adverbs    map[string][]string `yaml:"adverbs"`
		Adjectives map[string][]string `yaml:"adjectives"`
	}
	if err := yaml.Unmarshal(mustRead("data/slang.yaml"), &raw); err != nil {
		panic(fmt.Sprintf("lexicon: malformed slang table: %v", err))
	}
	return []map[string][]string{raw.Nouns, raw.Adverbs, raw.Adjectives}
}

func loadHomophones() map[string][]string {
	var groups [][]string
	if err := yaml.Unmarshal(mustRead("data/homophones.yaml"), &groups); err != nil {
		panic(fmt.Sprintf("lexicon: malformed homophone table: %v", err))
	}

	idx := make(map[string][]string)
	for _, group := range groups {
		for _, word := range group {
			others := make([]string, 0, len(group)-1)
			for _, other := range group {
				if other != word {
					others = append(others, other)
				}
			}
			idx[strings.ToLower(word)] = others
		}
	}
	return idx
}

func invert(m map[string]string) map[string]string {
	inv := make(map[string]string, len(m))
	for k, v := range m {
		inv[v] = k
	}
	return inv
}

func invertMulti(m map[string]string) map[string][]string {
	inv := make(map[string][]string)
	for k, v := range m {
		inv[v] = append(inv[v], k)
	}
	return inv
}

// TypoFrequency returns the keyboard-confusion table: for each lowercase
// letter, the substitute letters with their confusion weights.
func TypoFrequency() map[byte][]WeightedChar {
	load()
	return typoFrequency
}

// Contractions returns the expanded-phrase -> contraction map.
func Contractions() map[string]string {
	load()
	return contractions
}

// DyslexiaMap returns the word-level dyslexic confusion map.
func DyslexiaMap() map[string]string {
	load()
	return dyslexia
}

// OcrTypos returns the OCR-misread-spelling -> canonical-word map.
func OcrTypos() map[string]string {
	load()
	return ocrTypos
}

// OcrCandidates returns the OCR misreads whose canonical form equals word,
// or nil if the word has no recorded confusable spellings.
func OcrCandidates(word string) []string {
	load()
	return ocrReverse[word]
}

// Abbreviations returns the abbreviation -> expansion-phrases map.
func Abbreviations() map[string][]string {
	load()
	return abbreviations
}

// SlangTables returns the noun, adverb, and adjective slang maps, in that
// order. Keys are lowercase standard words; values are slang equivalents.
func SlangTables() []map[string][]string {
	load()
	return slangTables
}

// PerfectHomophones returns the words pronounced identically to word
// (case-insensitive lookup), or nil if none are recorded.
func PerfectHomophones(word string) []string {
	load()
	return homophoneIdx[strings.ToLower(word)]
}

// AccentMap returns the spelling conversion map for the given direction:
// "american_to_british" or "british_to_american". Unknown directions
// return nil.
func AccentMap(direction string) map[string]string {
	load()
	switch direction {
	case "american_to_british":
		return amToBr
	case "british_to_american":
		return brToAm
	}
	return nil
}
