package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/harrison/lingtest/internal/filelock"
	"github.com/harrison/lingtest/internal/logger"
	"github.com/harrison/lingtest/internal/sample"
)

// LoadCSV reads a header-bearing CSV file into samples. Classification
// rows yield a gold ClassificationOutput; NER rows expect space-separated
// BIO tags in the label column, aligned with the whitespace tokens of the
// text column. Rows that fail per-record validation are warned about and
// skipped.
func LoadCSV(path string, task sample.Task, log logger.Logger) ([]*sample.Sample, error) {
	if task != sample.TaskClassification && task != sample.TaskNER {
		return nil, fmt.Errorf("csv loader supports classification and ner, got %q", task)
	}
	log = logger.Or(log)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}
	cols, err := resolveColumns(task, header)
	if err != nil {
		return nil, err
	}

	var samples []*sample.Sample
	for line := 2; ; line++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Warnf("%s:%d: skipping malformed row: %v", path, line, err)
			continue
		}

		s, err := csvSample(task, cols, record)
		if err != nil {
			log.Warnf("%s:%d: skipping row: %v", path, line, err)
			continue
		}
		samples = append(samples, s)
	}

	log.Debugf("loaded %d %s samples from %s", len(samples), task, path)
	return samples, nil
}

// csvSample builds one sample from a resolved CSV record.
func csvSample(task sample.Task, cols map[string]int, record []string) (*sample.Sample, error) {
	textIdx := cols["text"]
	if textIdx >= len(record) {
		return nil, fmt.Errorf("row has %d fields, text column is %d", len(record), textIdx)
	}
	text := record[textIdx]
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty text")
	}

	switch task {
	case sample.TaskNER:
		nerIdx, ok := cols["ner"]
		if !ok || nerIdx >= len(record) {
			return nil, fmt.Errorf("missing ner label column")
		}
		labels := strings.Fields(record[nerIdx])
		s := sample.NewNER(text, labels)
		if err := s.Validate(); err != nil {
			return nil, err
		}
		s.ExpectedResults = sample.NEROutputFromBIO(text, labels)
		return s, nil

	default:
		s := sample.New(sample.TaskClassification, text)
		if labelIdx, ok := cols["label"]; ok && labelIdx < len(record) {
			s.ExpectedResults = sample.ClassificationOutput{Label: record[labelIdx], Score: 1.0}
		}
		return s, nil
	}
}

// ExportCSV writes samples as original/test_case/category rows, guarded by
// an exclusive lock and an atomic rename.
func ExportCSV(samples []*sample.Sample, path string) error {
	var b strings.Builder
	w := csv.NewWriter(&b)

	if err := w.Write([]string{"original", "test_case", "category"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, s := range samples {
		if err := w.Write([]string{s.Original, s.TestCase, s.Category}); err != nil {
			return fmt.Errorf("write sample %s: %w", s.ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	return filelock.LockAndWrite(path, []byte(b.String()))
}
