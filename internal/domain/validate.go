package domain

import (
	"math"
	"time"
)

// Validation methods.
const (
	MethodDOMInjection = "dom-injection"
	MethodSkipped      = "skipped"
)

// ValidationState is a step of a single fix trial against the live document.
type ValidationState string

const (
	StateIdle      ValidationState = "idle"
	StateInjecting ValidationState = "injecting"
	StateChecking  ValidationState = "checking"
	StateReverting ValidationState = "reverting"
	StateValidated ValidationState = "validated"
	StateManual    ValidationState = "manual"
	StateError     ValidationState = "error"
)

// Reasons attached to results the validator produces without checker detail.
const (
	ReasonElementNotFound    = "element not found"
	ReasonStillViolating     = "still reports violations"
	ReasonDocumentNotRestore = "live document was not restored to its original markup"
)

// FixTrial is one request to trial a replacement against the live document.
type FixTrial struct {
	Selector     string
	ProposedCode string
	OriginalCode string
	// RuleID narrows which surviving violations count against the fix.
	// Empty means any surviving violation counts.
	RuleID string
}

// ValidationResult is the classification of one fix trial.
type ValidationResult struct {
	Method     string          `json:"method"`
	Passed     bool            `json:"passed"`
	Reason     string          `json:"reason,omitempty"`
	State      ValidationState `json:"-"`
	Violations []Violation     `json:"-"`
}

// Status returns the persisted status for the result.
func (r ValidationResult) Status() ValidationState {
	if r.Passed {
		return StateValidated
	}
	return StateManual
}

// ValidatedIssue pairs an issue with the outcome of its validation pass.
type ValidatedIssue struct {
	Issue  Issue
	Result ValidationResult
}

// ValidationSummary counts the outcome of a validation pass.
type ValidationSummary struct {
	Total        int     `json:"total"`
	Validated    int     `json:"validated"`
	Manual       int     `json:"manual"`
	ValidatedPct float64 `json:"validatedPct"`
}

// IssueStatus is the persisted view of one validated issue.
type IssueStatus struct {
	Element      string          `json:"element"`
	Message      string          `json:"message"`
	WCAGCriteria string          `json:"wcagCriteria,omitempty"`
	Severity     Severity        `json:"severity"`
	Status       ValidationState `json:"status"`
	Reason       string          `json:"reason,omitempty"`
}

// ValidationResults is stored under the validationResults key of a report.
type ValidationResults struct {
	RunID       string            `json:"runId,omitempty"`
	URL         string            `json:"url,omitempty"`
	ValidatedAt time.Time         `json:"validatedAt"`
	Summary     ValidationSummary `json:"summary"`
	Issues      []IssueStatus     `json:"issues"`
}

// Summarize builds the persisted validation section from a completed pass.
func Summarize(validated []ValidatedIssue, at time.Time) ValidationResults {
	out := ValidationResults{
		ValidatedAt: at.UTC(),
		Issues:      make([]IssueStatus, 0, len(validated)),
	}
	for _, v := range validated {
		status := v.Result.Status()
		if status == StateValidated {
			out.Summary.Validated++
		} else {
			out.Summary.Manual++
		}
		out.Issues = append(out.Issues, IssueStatus{
			Element:      v.Issue.Element,
			Message:      v.Issue.Message,
			WCAGCriteria: v.Issue.WCAGCriteria,
			Severity:     v.Issue.Severity,
			Status:       status,
			Reason:       v.Result.Reason,
		})
	}
	out.Summary.Total = len(validated)
	if out.Summary.Total > 0 {
		pct := float64(out.Summary.Validated) * 100 / float64(out.Summary.Total)
		out.Summary.ValidatedPct = math.Round(pct*10) / 10
	}
	return out
}
