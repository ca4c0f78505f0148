package perturb

import (
	"sort"
	"strings"

	"github.com/harrison/lingtest/internal/span"
)

// edit is one planned replacement of text[start:end] with repl. Insertions
// use start == end; deletions use repl == "".
type edit struct {
	start  int
	end    int
	repl   string
	ignore bool
}

// sortEdits orders edits by start position, keeping plan order for edits at
// the same position.
func sortEdits(edits []edit) {
	sort.SliceStable(edits, func(i, j int) bool {
		return edits[i].start < edits[j].start
	})
}

// dropOverlaps removes any edit that overlaps an earlier-starting one.
// Edits must already be sorted. Touching ranges (end == next start) are
// kept.
func dropOverlaps(edits []edit) []edit {
	kept := edits[:0]
	lastEnd := -1
	for _, e := range edits {
		if e.start < lastEnd {
			continue
		}
		kept = append(kept, e)
		lastEnd = e.end
	}
	return kept
}

// applyEdits rewrites text with the given edits and returns the mutated
// string plus one Transformation per edit. Edits must be sorted by start
// and non-overlapping; callers use sortEdits and dropOverlaps first.
//
// OriginalSpan is emitted in coordinates of text; NewSpan in coordinates of
// the returned string, with the cumulative length delta of all preceding
// edits applied. A nil transformation slice is returned unchanged when
// track is false, so operators can skip span bookkeeping for task variants
// that do not need it.
func applyEdits(text string, edits []edit, track bool) (string, []span.Transformation) {
	if len(edits) == 0 {
		return text, nil
	}

	var b strings.Builder
	b.Grow(len(text) + 16)

	var transformations []span.Transformation
	cursor := 0
	delta := 0

	for _, e := range edits {
		b.WriteString(text[cursor:e.start])
		b.WriteString(e.repl)
		cursor = e.end

		if track {
			transformations = append(transformations, span.Transformation{
				OriginalSpan: span.New(e.start, e.end, text[e.start:e.end]),
				NewSpan:      span.New(e.start+delta, e.start+delta+len(e.repl), e.repl),
				Ignore:       e.ignore,
			})
		}
		delta += len(e.repl) - (e.end - e.start)
	}
	b.WriteString(text[cursor:])

	return b.String(), transformations
}

// finish writes the operator result back onto an input: raw inputs get the
// mutated text, samples get TestCase, the robustness category tag, and the
// transformation list when the task supports span tracking.
func finish(in Input, mutated string, transformations []span.Transformation) Input {
	if in.IsRaw() {
		in.Text = mutated
		return in
	}
	in.Sample.TestCase = mutated
	in.Sample.Category = CategoryRobustness
	if in.Sample.Task.SupportsSpanTracking() {
		in.Sample.Transformations = transformations
	}
	return in
}

// sourceText returns the string an operator should read from an input.
func sourceText(in Input) string {
	if in.IsRaw() {
		return in.Text
	}
	return in.Sample.Original
}
