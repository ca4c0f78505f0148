// Package dataset loads labeled evaluation data into samples and exports
// perturbed samples back out. Supported formats: CSV (classification and
// NER), JSONL (question answering, summarization, translation), and CoNLL
// (NER).
//
// Malformed individual records are logged as warnings and skipped; only
// structural problems (unreadable file, unresolvable columns) abort a
// load.
package dataset

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/harrison/lingtest/internal/logger"
	"github.com/harrison/lingtest/internal/sample"
)

// columnSynonyms maps each task's canonical fields to the header names
// accepted for them, matched case-insensitively.
var columnSynonyms = map[sample.Task]map[string][]string{
	sample.TaskClassification: {
		"text":  {"text", "sentences", "sentence", "sample"},
		"label": {"label", "labels", "class", "classes"},
	},
	sample.TaskNER: {
		"text": {"text", "sentences", "sentence", "sample", "tokens"},
		"ner":  {"label", "labels", "class", "classes", "ner_tag", "ner_tags", "ner", "entity"},
	},
	sample.TaskQA: {
		"text":    {"question"},
		"context": {"context", "passage"},
		"answer":  {"answer"},
	},
	sample.TaskSummarization: {
		"text":    {"text", "document"},
		"summary": {"summary"},
	},
	sample.TaskTranslation: {
		"text": {"text", "original", "sourcestring"},
	},
}

// resolveColumns maps canonical field names to header positions. Fields
// with no matching header are absent from the result; the caller decides
// which fields are required.
func resolveColumns(task sample.Task, header []string) (map[string]int, error) {
	synonyms, ok := columnSynonyms[task]
	if !ok {
		return nil, fmt.Errorf("task %q has no column mapping", task)
	}

	resolved := make(map[string]int)
	for field, names := range synonyms {
		for i, h := range header {
			if containsFold(names, strings.TrimSpace(h)) {
				resolved[field] = i
				break
			}
		}
	}
	if _, ok := resolved["text"]; !ok {
		return nil, fmt.Errorf("no text column found for task %q in header %v", task, header)
	}
	return resolved, nil
}

func containsFold(names []string, h string) bool {
	for _, n := range names {
		if strings.EqualFold(n, h) {
			return true
		}
	}
	return false
}

// Load reads path into samples, dispatching on the file extension: .csv,
// .jsonl, and .conll are supported.
func Load(path string, task sample.Task, log logger.Logger) ([]*sample.Sample, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return LoadCSV(path, task, log)
	case ".jsonl":
		return LoadJSONL(path, task, log)
	case ".conll":
		return LoadCoNLL(path, log)
	default:
		return nil, fmt.Errorf("unsupported dataset format %q (want .csv, .jsonl, or .conll)", ext)
	}
}
