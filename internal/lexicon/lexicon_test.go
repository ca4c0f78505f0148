package lexicon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypoFrequency_CoversAlphabet(t *testing.T) {
	table := TypoFrequency()
	require.NotEmpty(t, table)
	for c := byte('a'); c <= 'z'; c++ {
		subs, ok := table[c]
		require.True(t, ok, "letter %c missing from typo table", c)
		require.NotEmpty(t, subs, "letter %c has no substitutes", c)
		for _, wc := range subs {
			assert.Greater(t, wc.Weight, 0)
			assert.GreaterOrEqual(t, wc.Char, byte('a'))
			assert.LessOrEqual(t, wc.Char, byte('z'))
		}
	}
}

func TestContractions(t *testing.T) {
	m := Contractions()
	assert.Equal(t, "can't", m["cannot"])
	assert.Equal(t, "don't", m["do not"])
}

func TestDyslexiaMap_Symmetry(t *testing.T) {
	m := DyslexiaMap()
	assert.Equal(t, "saw", m["was"])
	assert.Equal(t, "was", m["saw"])
}

func TestOcrCandidates(t *testing.T) {
	candidates := OcrCandidates("hello")
	require.NotEmpty(t, candidates)
	assert.Contains(t, candidates, "he11o")

	assert.Nil(t, OcrCandidates("zzzzz"))
}

func TestAbbreviations(t *testing.T) {
	m := Abbreviations()
	require.Contains(t, m, "asap")
	assert.Contains(t, m["asap"], "as soon as possible")
}

func TestSlangTables(t *testing.T) {
	tables := SlangTables()
	require.Len(t, tables, 3)
	assert.Contains(t, tables[0], "money")      // nouns
	assert.Contains(t, tables[1], "very")       // adverbs
	assert.Contains(t, tables[2], "good")       // adjectives
}

func TestPerfectHomophones(t *testing.T) {
	got := PerfectHomophones("right")
	require.NotEmpty(t, got)
	assert.Contains(t, got, "write")
	assert.NotContains(t, got, "right")

	// Case-insensitive lookup.
	assert.NotEmpty(t, PerfectHomophones("Right"))

	assert.Nil(t, PerfectHomophones("xylophone"))
}

func TestAccentMap_Directions(t *testing.T) {
	am := AccentMap("american_to_british")
	require.NotNil(t, am)
	assert.Equal(t, "colour", am["color"])

	br := AccentMap("british_to_american")
	require.NotNil(t, br)
	assert.Equal(t, "color", br["colour"])

	assert.Nil(t, AccentMap("australian_to_british"))
}
