// Package span defines the character-range data model used to track text
// edits made by perturbation operators.
//
// A Span is a half-open, zero-based character range in a specific string.
// A Transformation pairs the Span an edit covered in the pre-edit string
// with the Span the replacement occupies in the post-edit string, so that
// downstream consumers (NER label realignment, exporters) can recover
// which tokens moved where.
package span

import (
	"fmt"
	"sort"
)

// Span is an immutable half-open character range [Start, End) in the string
// being described. Word holds the substring at that range; it is advisory
// (used for debugging and tests) and may be empty for insertion or deletion
// markers, where it need not be length-consistent with End-Start.
type Span struct {
	Start int    `json:"start" yaml:"start"`
	End   int    `json:"end" yaml:"end"`
	Word  string `json:"word" yaml:"word"`
}

// New creates a Span covering [start, end) with the given word.
func New(start, end int, word string) Span {
	return Span{Start: start, End: end, Word: word}
}

// Len returns the number of characters the span covers.
func (s Span) Len() int {
	return s.End - s.Start
}

// Validate checks the 0 <= Start <= End invariant.
func (s Span) Validate() error {
	if s.Start < 0 {
		return fmt.Errorf("span start must be >= 0, got %d", s.Start)
	}
	if s.End < s.Start {
		return fmt.Errorf("span end %d precedes start %d", s.End, s.Start)
	}
	return nil
}

// String renders the span in [start, end, "word"] form.
func (s Span) String() string {
	return fmt.Sprintf("[%d, %d, %q]", s.Start, s.End, s.Word)
}

// Transformation records one atomic text edit: the range it covered in the
// pre-edit string and the range its replacement occupies in the post-edit
// string. Ignore marks edits that downstream label-alignment consumers
// should skip, such as a purely cosmetic punctuation insertion with no
// semantic token.
//
// Operators produce Transformations in application order, which is not
// guaranteed to be sorted by position. Consumers must call SortByOriginal
// before doing any alignment. Multiple Transformations from one operator
// call describe disjoint edits to the same original string.
type Transformation struct {
	OriginalSpan Span `json:"original_span" yaml:"original_span"`
	NewSpan      Span `json:"new_span" yaml:"new_span"`
	Ignore       bool `json:"ignore" yaml:"ignore"`
}

// Shift returns the length delta this edit introduces: positive when the
// replacement is longer than the original text, negative when shorter.
func (t Transformation) Shift() int {
	return t.NewSpan.Len() - t.OriginalSpan.Len()
}

// Validate checks both spans of the transformation.
func (t Transformation) Validate() error {
	if err := t.OriginalSpan.Validate(); err != nil {
		return fmt.Errorf("original span: %w", err)
	}
	if err := t.NewSpan.Validate(); err != nil {
		return fmt.Errorf("new span: %w", err)
	}
	return nil
}

// SortByOriginal sorts transformations by the start of their original span,
// in place. Alignment consumers call this before walking the edit list.
func SortByOriginal(ts []Transformation) {
	sort.SliceStable(ts, func(i, j int) bool {
		return ts[i].OriginalSpan.Start < ts[j].OriginalSpan.Start
	})
}
