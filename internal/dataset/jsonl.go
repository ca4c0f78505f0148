package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/harrison/lingtest/internal/filelock"
	"github.com/harrison/lingtest/internal/logger"
	"github.com/harrison/lingtest/internal/sample"
)

// LoadJSONL reads one JSON object per line into samples. Field names are
// resolved through the same synonym table as CSV headers, so a question-
// answering file may use "question"/"context"/"answer" and a summarization
// file "document"/"summary". Malformed lines are warned about and skipped.
func LoadJSONL(path string, task sample.Task, log logger.Logger) ([]*sample.Sample, error) {
	switch task {
	case sample.TaskQA, sample.TaskSummarization, sample.TaskTranslation:
	default:
		return nil, fmt.Errorf("jsonl loader supports qa, summarization, and translation, got %q", task)
	}
	log = logger.Or(log)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset %s: %w", path, err)
	}
	defer f.Close()

	synonyms := columnSynonyms[task]

	var samples []*sample.Sample
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for line := 1; scanner.Scan(); line++ {
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}

		var record map[string]any
		if err := json.Unmarshal([]byte(raw), &record); err != nil {
			log.Warnf("%s:%d: skipping malformed json: %v", path, line, err)
			continue
		}

		s, err := jsonlSample(task, synonyms, record)
		if err != nil {
			log.Warnf("%s:%d: skipping record: %v", path, line, err)
			continue
		}
		samples = append(samples, s)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	log.Debugf("loaded %d %s samples from %s", len(samples), task, path)
	return samples, nil
}

// jsonlSample builds one sample from a decoded JSONL record.
func jsonlSample(task sample.Task, synonyms map[string][]string, record map[string]any) (*sample.Sample, error) {
	text, ok := stringField(record, synonyms["text"])
	if !ok || strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("missing text field")
	}

	s := sample.New(task, text)
	switch task {
	case sample.TaskQA:
		if context, ok := stringField(record, synonyms["context"]); ok && context != "" {
			s.Original = text + "\n" + context
		}
		if answer, ok := stringField(record, synonyms["answer"]); ok {
			s.ExpectedResults = sample.TextOutput{Text: answer}
		}
	case sample.TaskSummarization:
		if summary, ok := stringField(record, synonyms["summary"]); ok {
			s.ExpectedResults = sample.TextOutput{Text: summary}
		}
	}
	return s, nil
}

// stringField returns the first present field among names, matched
// case-insensitively against the record keys.
func stringField(record map[string]any, names []string) (string, bool) {
	for _, name := range names {
		for key, value := range record {
			if !strings.EqualFold(key, name) {
				continue
			}
			if s, ok := value.(string); ok {
				return s, true
			}
		}
	}
	return "", false
}

// ExportJSONL writes samples one JSON object per line, guarded by an
// exclusive lock and an atomic rename.
func ExportJSONL(samples []*sample.Sample, path string) error {
	var b strings.Builder
	enc := json.NewEncoder(&b)
	for _, s := range samples {
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("encode sample %s: %w", s.ID, err)
		}
	}
	return filelock.LockAndWrite(path, []byte(b.String()))
}
