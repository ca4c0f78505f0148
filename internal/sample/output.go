package sample

import (
	"strings"

	"github.com/harrison/lingtest/internal/span"
)

// ClassificationOutput is a model or gold output for sequence classification.
type ClassificationOutput struct {
	Label string  `json:"label" yaml:"label"`
	Score float64 `json:"score" yaml:"score"`
}

// NERPrediction is one predicted or gold entity span.
type NERPrediction struct {
	EntityType string    `json:"entity" yaml:"entity"`
	Span       span.Span `json:"span" yaml:"span"`
}

// NEROutput is the set of entity predictions for one text.
type NEROutput struct {
	Predictions []NERPrediction `json:"predictions" yaml:"predictions"`
}

// TextOutput is free-text model output (QA answers, summaries, translations).
type TextOutput struct {
	Text string `json:"text" yaml:"text"`
}

// NEROutputFromBIO converts token-aligned BIO labels into entity spans over
// text. Tokens are the space-separated words of text, matching the alignment
// convention of Sample.Labels. Labels that are "O" or malformed are skipped.
func NEROutputFromBIO(text string, labels []string) NEROutput {
	var out NEROutput
	tokens := strings.Split(text, " ")

	offset := 0
	starts := make([]int, len(tokens))
	for i, tok := range tokens {
		starts[i] = offset
		offset += len(tok) + 1
	}

	i := 0
	for i < len(labels) && i < len(tokens) {
		label := labels[i]
		if !strings.HasPrefix(label, "B-") {
			i++
			continue
		}
		entType := label[2:]
		end := i
		for end+1 < len(labels) && end+1 < len(tokens) && labels[end+1] == "I-"+entType {
			end++
		}
		startChar := starts[i]
		endChar := starts[end] + len(tokens[end])
		out.Predictions = append(out.Predictions, NERPrediction{
			EntityType: entType,
			Span:       span.New(startChar, endChar, text[startChar:endChar]),
		})
		i = end + 1
	}
	return out
}
