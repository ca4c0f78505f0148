package dataset

import (
	"fmt"
	"os"
	"strings"

	"github.com/harrison/lingtest/internal/filelock"
	"github.com/harrison/lingtest/internal/logger"
	"github.com/harrison/lingtest/internal/sample"
)

// docStartPrefix marks document boundaries in CoNLL files.
const docStartPrefix = "-DOCSTART-"

// LoadCoNLL reads a 4-column CoNLL file (token, POS tag, chunk tag, NER
// tag) into NER samples, one per sentence. Sentences are separated by
// blank lines; -DOCSTART- lines are document markers. A sentence is
// skipped with a warning when any line does not have 4 columns, when its
// first tag is an I- continuation, or when an I- tag follows O.
func LoadCoNLL(path string, log logger.Logger) ([]*sample.Sample, error) {
	log = logger.Or(log)

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset %s: %w", path, err)
	}

	var samples []*sample.Sample
	for _, sent := range splitSentences(string(content)) {
		tokens, labels, err := parseSentence(sent)
		if err != nil {
			log.Warnf("%s: skipping sentence %q: %v", path, firstLine(sent), err)
			continue
		}
		if len(tokens) == 0 {
			continue
		}

		original := strings.Join(tokens, " ")
		s := sample.NewNER(original, labels)
		s.ExpectedResults = sample.NEROutputFromBIO(original, labels)
		samples = append(samples, s)
	}

	log.Debugf("loaded %d ner samples from %s", len(samples), path)
	return samples, nil
}

// splitSentences breaks file content into per-sentence line blocks,
// dropping document markers.
func splitSentences(content string) []string {
	var sentences []string
	var current []string

	flush := func() {
		if len(current) > 0 {
			sentences = append(sentences, strings.Join(current, "\n"))
			current = nil
		}
	}

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, docStartPrefix) {
			flush()
			continue
		}
		current = append(current, trimmed)
	}
	flush()
	return sentences
}

// parseSentence extracts tokens and NER tags from one sentence block and
// validates the tag sequence.
func parseSentence(sent string) ([]string, []string, error) {
	var tokens, labels []string
	for _, line := range strings.Split(sent, "\n") {
		fields := strings.Fields(line)
		if len(fields) != 4 {
			return nil, nil, fmt.Errorf("line %q has %d columns, want 4", line, len(fields))
		}
		tokens = append(tokens, fields[0])
		labels = append(labels, fields[3])
	}

	prev := ""
	for i, label := range labels {
		if strings.HasPrefix(label, "I-") {
			if i == 0 {
				return nil, nil, fmt.Errorf("sentence starts with continuation tag %q", label)
			}
			if prev == "O" {
				return nil, nil, fmt.Errorf("continuation tag %q follows O", label)
			}
		}
		prev = label
	}
	return tokens, labels, nil
}

func firstLine(sent string) string {
	if idx := strings.IndexByte(sent, '\n'); idx >= 0 {
		return sent[:idx]
	}
	return sent
}

// ExportCoNLL writes NER samples back out in 4-column CoNLL form, one
// sentence per sample, using the gold labels over the original tokens.
// POS and chunk columns are not tracked and are written as -X-. The write
// is guarded by an exclusive lock and an atomic rename.
func ExportCoNLL(samples []*sample.Sample, path string) error {
	var b strings.Builder
	b.WriteString(docStartPrefix + " -X- -X- O\n\n")

	for _, s := range samples {
		if s.Task != sample.TaskNER {
			return fmt.Errorf("sample %s: conll export requires ner samples, got %q", s.ID, s.Task)
		}
		tokens := strings.Split(s.Original, " ")
		if len(tokens) != len(s.Labels) {
			return fmt.Errorf("sample %s: %d tokens but %d labels", s.ID, len(tokens), len(s.Labels))
		}
		for i, tok := range tokens {
			fmt.Fprintf(&b, "%s -X- -X- %s\n", tok, s.Labels[i])
		}
		b.WriteString("\n")
	}

	return filelock.LockAndWrite(path, []byte(b.String()))
}
