// Package sample defines the evaluation record passed between dataset
// loaders, perturbation operators, and the execution runner.
//
// A Sample carries the immutable original text, the perturbed test case,
// and bookkeeping fields (category, task, execution state, span
// transformations). Task variants are a Task tag plus capability methods
// rather than separate types, so operators branch on
// Task.SupportsSpanTracking() instead of comparing task-name strings.
package sample

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/harrison/lingtest/internal/span"
)

// Task identifies the evaluation task variant a sample belongs to.
type Task string

// Supported task variants.
const (
	TaskNER            Task = "ner"
	TaskClassification Task = "text-classification"
	TaskQA             Task = "question-answering"
	TaskSummarization  Task = "summarization"
	TaskTranslation    Task = "translation"
	TaskGeneric        Task = "generic"
)

// SupportsSpanTracking reports whether downstream consumers of this task
// realign labeled spans, and therefore whether perturbation operators should
// record Transformations for it. Only NER and sequence classification carry
// token/label alignment.
func (t Task) SupportsSpanTracking() bool {
	return t == TaskNER || t == TaskClassification
}

// Valid reports whether t is one of the supported task variants.
func (t Task) Valid() bool {
	switch t {
	case TaskNER, TaskClassification, TaskQA, TaskSummarization, TaskTranslation, TaskGeneric:
		return true
	}
	return false
}

// Execution states. Anything other than StateDone means the runner still
// owes the sample a model pass.
const (
	StateGenerated = "generated"
	StateDone      = "done"
)

// Result is a task-shaped model output. The execution protocol never
// inspects it; it only stores what the model returned.
type Result any

// Sample is one evaluation record. It is exclusively owned by the pipeline
// stage currently processing it: operators that need to preserve their input
// clone it before mutating fields. Some operator families mutate in place
// instead; see the perturb package for the per-operator contract.
type Sample struct {
	// ID tags the sample for logging and history bookkeeping.
	ID uuid.UUID `json:"id" yaml:"id"`

	// Original is the immutable input text.
	Original string `json:"original" yaml:"original"`

	// TestCase is the mutated output text, written exactly once per
	// operator pass.
	TestCase string `json:"test_case" yaml:"test_case"`

	// Category tags which test family produced the case, e.g. "robustness".
	Category string `json:"category" yaml:"category"`

	// Task is the evaluation task variant.
	Task Task `json:"task" yaml:"task"`

	// State records whether model execution has completed.
	State string `json:"state" yaml:"state"`

	// Labels holds token-aligned BIO tags for NER samples. Tokens are the
	// whitespace-split words of Original.
	Labels []string `json:"labels,omitempty" yaml:"labels,omitempty"`

	// Transformations lists the character edits needed to remap labeled
	// spans from Original to TestCase. Populated only for task variants
	// where SupportsSpanTracking is true.
	Transformations []span.Transformation `json:"transformations,omitempty" yaml:"transformations,omitempty"`

	// ExpectedResults is the model output on Original, filled in by the
	// runner.
	ExpectedResults Result `json:"expected_results,omitempty" yaml:"expected_results,omitempty"`

	// ActualResults is the model output on TestCase, filled in by the
	// runner.
	ActualResults Result `json:"actual_results,omitempty" yaml:"actual_results,omitempty"`
}

// New creates a sample for the given task with a fresh ID.
func New(task Task, original string) *Sample {
	return &Sample{
		ID:       uuid.New(),
		Original: original,
		Task:     task,
		State:    StateGenerated,
	}
}

// NewNER creates an NER sample with token-aligned BIO labels.
func NewNER(original string, labels []string) *Sample {
	s := New(TaskNER, original)
	s.Labels = labels
	return s
}

// Clone returns a deep copy of the sample with the same ID. Slices are
// copied so mutating the clone never aliases the source.
func (s *Sample) Clone() *Sample {
	dup := *s
	if s.Labels != nil {
		dup.Labels = make([]string, len(s.Labels))
		copy(dup.Labels, s.Labels)
	}
	if s.Transformations != nil {
		dup.Transformations = make([]span.Transformation, len(s.Transformations))
		copy(dup.Transformations, s.Transformations)
	}
	return &dup
}

// IsDone reports whether model execution has completed for this sample.
func (s *Sample) IsDone() bool {
	return s.State == StateDone
}

// Validate checks structural invariants: a known task, and for NER samples
// labels aligned with the whitespace tokens of Original.
func (s *Sample) Validate() error {
	if !s.Task.Valid() {
		return fmt.Errorf("unknown task %q", s.Task)
	}
	if s.Task == TaskNER && s.Labels != nil {
		tokens := tokenCount(s.Original)
		if len(s.Labels) != tokens {
			return fmt.Errorf("ner sample has %d labels for %d tokens", len(s.Labels), tokens)
		}
	}
	return nil
}

func tokenCount(text string) int {
	n := 0
	inWord := false
	for _, r := range text {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			inWord = false
			continue
		}
		if !inWord {
			n++
			inWord = true
		}
	}
	return n
}
