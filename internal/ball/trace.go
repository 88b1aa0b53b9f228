package ball

import (
	"fmt"
	"strings"
)

// TraceEntry records one comparison made while checking a candidate.
// Boolean checks carry no operands.
type TraceEntry struct {
	Candidate int     `json:"candidate"`
	Check     string  `json:"check"`
	Passed    bool    `json:"passed"`
	Op1       float64 `json:"op1"`
	Op2       float64 `json:"op2"`
	Compared  bool    `json:"compared"`
}

// String formats the entry like "minResponse: 0.3 <= 0.52 passed".
func (e TraceEntry) String() string {
	result := "failed"
	if e.Passed {
		result = "passed"
	}
	if e.Compared {
		return fmt.Sprintf("#%d %s: %g <= %g %s", e.Candidate, e.Check, e.Op1, e.Op2, result)
	}
	return fmt.Sprintf("#%d %s %s", e.Candidate, e.Check, result)
}

// Trace collects the checks of a verification run. A nil *Trace records
// nothing, so callers that do not want a trace pass nil.
type Trace struct {
	Entries   []TraceEntry `json:"entries"`
	candidate int
}

// NewTrace returns an empty trace.
func NewTrace() *Trace {
	return &Trace{}
}

// begin marks the start of the checks of the candidate with the given index.
func (t *Trace) begin(candidate int) {
	if t != nil {
		t.candidate = candidate
	}
}

// leq evaluates op1 <= op2 and records it.
func (t *Trace) leq(op1, op2 float64, check string) bool {
	passed := op1 <= op2
	if t != nil {
		t.Entries = append(t.Entries, TraceEntry{
			Candidate: t.candidate,
			Check:     check,
			Passed:    passed,
			Op1:       op1,
			Op2:       op2,
			Compared:  true,
		})
	}
	return passed
}

// result records a boolean check and returns it.
func (t *Trace) result(passed bool, check string) bool {
	if t != nil {
		t.Entries = append(t.Entries, TraceEntry{Candidate: t.candidate, Check: check, Passed: passed})
	}
	return passed
}

// String formats all entries, one per line.
func (t *Trace) String() string {
	if t == nil {
		return ""
	}
	var sb strings.Builder
	for _, e := range t.Entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
