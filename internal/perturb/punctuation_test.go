package perturb

import (
	"strings"
	"testing"
)

func TestAddPunctuationAppendsWhitelistChar(t *testing.T) {
	op, err := NewAddPunctuation(1.0, nil, 1)
	if err != nil {
		t.Fatal(err)
	}
	s := transformOne(t, op, classSample("The fox jumps"))

	if !strings.HasPrefix(s.TestCase, s.Original) || len(s.TestCase) != len(s.Original)+1 {
		t.Fatalf("TestCase = %q, want original plus one character", s.TestCase)
	}
	added := s.TestCase[len(s.TestCase)-1:]
	found := false
	for _, w := range defaultPunctuation {
		if w == added {
			found = true
		}
	}
	if !found {
		t.Errorf("appended %q, not in whitelist", added)
	}

	if len(s.Transformations) != 1 {
		t.Fatalf("got %d transformations, want 1", len(s.Transformations))
	}
	tr := s.Transformations[0]
	if !tr.Ignore {
		t.Error("insertion transformation must be flagged Ignore")
	}
	if tr.OriginalSpan.Start != len(s.Original) || tr.OriginalSpan.End != len(s.Original) {
		t.Errorf("OriginalSpan = %v, want zero-width at end of original", tr.OriginalSpan)
	}
	if tr.NewSpan.End != len(s.TestCase) {
		t.Errorf("NewSpan = %v, want to end at %d", tr.NewSpan, len(s.TestCase))
	}
}

func TestAddPunctuationSkipsAlreadyPunctuated(t *testing.T) {
	op, err := NewAddPunctuation(1.0, nil, 1)
	if err != nil {
		t.Fatal(err)
	}
	s := transformOne(t, op, classSample("Done already."))
	if s.TestCase != s.Original {
		t.Errorf("TestCase = %q, want unchanged", s.TestCase)
	}
	if len(s.Transformations) != 0 {
		t.Errorf("no-op should carry no transformations, got %d", len(s.Transformations))
	}
}

func TestAddPunctuationCountCopies(t *testing.T) {
	op, err := NewAddPunctuation(1.0, nil, 3)
	if err != nil {
		t.Fatal(err)
	}
	s := classSample("Hello world")
	out, err := op.Transform(testRand(), []Input{Of(s)})
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 3 {
		t.Fatalf("count 3 should produce 3 copies, got %d", len(out))
	}
	for i, in := range out {
		if in.Sample == s {
			t.Errorf("copy %d aliases the input sample", i)
		}
		if in.Sample.Original != s.Original {
			t.Errorf("copy %d Original = %q, want %q", i, in.Sample.Original, s.Original)
		}
	}
}

func TestStripPunctuationRemovesTrailingChar(t *testing.T) {
	op, err := NewStripPunctuation(1.0, nil)
	if err != nil {
		t.Fatal(err)
	}
	s := transformOne(t, op, classSample("Hello world!"))
	if s.TestCase != "Hello world" {
		t.Errorf("TestCase = %q, want %q", s.TestCase, "Hello world")
	}
	if len(s.Transformations) != 1 || !s.Transformations[0].Ignore {
		t.Fatalf("want one Ignore transformation, got %+v", s.Transformations)
	}
	assertSpansValid(t, s)
}

func TestAddStripPunctuationRoundTrip(t *testing.T) {
	add, err := NewAddPunctuation(1.0, nil, 1)
	if err != nil {
		t.Fatal(err)
	}
	strip, err := NewStripPunctuation(1.0, nil)
	if err != nil {
		t.Fatal(err)
	}

	const text = "The fox jumps"
	mid, err := add.Transform(testRand(), Texts([]string{text}))
	if err != nil {
		t.Fatal(err)
	}
	out, err := strip.Transform(testRand(), mid)
	if err != nil {
		t.Fatal(err)
	}
	if out[0].Text != text {
		t.Errorf("round trip = %q, want %q", out[0].Text, text)
	}
}

func TestStripAllPunctuation(t *testing.T) {
	op, err := NewStripAllPunctuation(1.0, nil)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"basic", "Hello, world!", "Hello world"},
		{"decimal kept", "pi is 3.14 exactly", "pi is 3.14 exactly"},
		{"slash abbreviation kept", "Pt s/p repair: stable.", "Pt s/p repair stable"},
		{"history abbreviation kept", "h/o migraines, none now", "h/o migraines none now"},
		{"trailing period", "The end.", "The end"},
		{"mixed", "Hello, world! s/p repair: 3.14 okay.", "Hello world s/p repair 3.14 okay"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := transformOne(t, op, classSample(tt.in))
			if s.TestCase != tt.want {
				t.Errorf("TestCase = %q, want %q", s.TestCase, tt.want)
			}
			assertSpansValid(t, s)
		})
	}
}

func TestStripAllPunctuationLetterSlashLetter(t *testing.T) {
	op, err := NewStripAllPunctuation(1.0, nil)
	if err != nil {
		t.Fatal(err)
	}
	s := transformOne(t, op, classSample("rated s/o overall"))
	if s.TestCase != "rated  and  overall" {
		t.Errorf("TestCase = %q, want letter/letter rewritten to %q", s.TestCase, " and ")
	}
	assertSpansValid(t, s)
}

func TestKeepSlashProtectsOnlyKnownPairs(t *testing.T) {
	tests := []struct {
		text string
		idx  int
		want bool
	}{
		{"s/p", 1, true},
		{"h/o", 1, true},
		{"s/o", 1, false},
		{"h/p", 1, false},
		// Mixed halves of the two protected pairs must not combine.
		{"as/ok", 2, false},
		{"a/b", 1, false},
		{"/p", 0, false},
		{"s/", 1, false},
	}
	for _, tt := range tests {
		if got := keepSlash(tt.text, tt.idx); got != tt.want {
			t.Errorf("keepSlash(%q, %d) = %v, want %v", tt.text, tt.idx, got, tt.want)
		}
	}
}

func TestStripAllPunctuationZeroProb(t *testing.T) {
	op, err := NewStripAllPunctuation(0, nil)
	if err != nil {
		t.Fatal(err)
	}
	s := transformOne(t, op, classSample("Hello, world!"))
	if s.TestCase != s.Original {
		t.Errorf("TestCase = %q, want original", s.TestCase)
	}
}
