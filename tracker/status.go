package tracker

import "strings"

// Outcome classifies a backend payment status.
type Outcome int

const (
	OutcomePending Outcome = iota
	OutcomeSuccess
	OutcomeFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	}
	return "pending"
}

// StatusTable decides which backend statuses end tracking. Anything not
// listed is treated as still pending. Matching ignores case.
type StatusTable struct {
	success map[string]struct{}
	failure map[string]struct{}
}

// DefaultSuccessStatuses and DefaultFailureStatuses are used when no table
// is configured. COMPLETED counts as a successful payment.
var (
	DefaultSuccessStatuses = []string{"SUCCESS", "PAID", "COMPLETED"}
	DefaultFailureStatuses = []string{"FAILED"}
)

// NewStatusTable builds a table. A status listed as both success and
// failure is treated as failure.
func NewStatusTable(success, failure []string) StatusTable {
	t := StatusTable{
		success: make(map[string]struct{}, len(success)),
		failure: make(map[string]struct{}, len(failure)),
	}
	for _, s := range success {
		if s = normalizeStatus(s); s != "" {
			t.success[s] = struct{}{}
		}
	}
	for _, s := range failure {
		if s = normalizeStatus(s); s != "" {
			delete(t.success, s)
			t.failure[s] = struct{}{}
		}
	}
	return t
}

func DefaultStatusTable() StatusTable {
	return NewStatusTable(DefaultSuccessStatuses, DefaultFailureStatuses)
}

func (t StatusTable) Classify(status string) Outcome {
	s := normalizeStatus(status)
	if _, ok := t.failure[s]; ok {
		return OutcomeFailure
	}
	if _, ok := t.success[s]; ok {
		return OutcomeSuccess
	}
	return OutcomePending
}

// IsTerminal reports whether status ends tracking.
func (t StatusTable) IsTerminal(status string) bool {
	return t.Classify(status) != OutcomePending
}

func normalizeStatus(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
