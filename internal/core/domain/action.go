package domain

import (
	"sort"
	"strings"
	"time"
)

// Action accumulates the label/folder/star/archive mutations decided for
// one message. It is owned by the orchestrator until submitted to the
// backing store, then discarded.
type Action struct {
	MessageID    string
	AddLabels    []string
	RemoveLabels []string
	Archive      bool
	Star         bool
	TargetFolder string
	DueDate      time.Time
}

// GroupKey returns a canonical key for the mutation this action performs,
// ignoring the message it applies to. Actions with equal keys can be
// submitted to the backing store in a single batched call.
func (a *Action) GroupKey() string {
	add := append([]string(nil), a.AddLabels...)
	rem := append([]string(nil), a.RemoveLabels...)
	sort.Strings(add)
	sort.Strings(rem)

	var b strings.Builder
	b.WriteString(strings.Join(add, "\x1f"))
	b.WriteByte('|')
	b.WriteString(strings.Join(rem, "\x1f"))
	b.WriteByte('|')
	if a.Archive {
		b.WriteByte('A')
	}
	if a.Star {
		b.WriteByte('S')
	}
	b.WriteByte('|')
	b.WriteString(a.TargetFolder)
	return b.String()
}

// ProcessingResult summarizes a batch run.
type ProcessingResult struct {
	RunID          string
	ProcessedCount int
	SuccessCount   int
	ErrorCount     int
	LabelCounts    map[string]int
	Errors         []string
}

// MaxRecordedErrors bounds the error list carried in a result.
const MaxRecordedErrors = 50

// NewProcessingResult returns an empty result ready for accumulation.
func NewProcessingResult(runID string) *ProcessingResult {
	return &ProcessingResult{
		RunID:       runID,
		LabelCounts: make(map[string]int),
	}
}

// AddLabelStat increments the count for a label.
func (r *ProcessingResult) AddLabelStat(label string) {
	r.LabelCounts[label]++
}

// RecordError appends an error string, dropping it once the bound is hit.
func (r *ProcessingResult) RecordError(msg string) {
	r.ErrorCount++
	if len(r.Errors) < MaxRecordedErrors {
		r.Errors = append(r.Errors, msg)
	}
}
