package domain

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// Severity ranks how badly an issue affects users of assistive technology.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeveritySerious  Severity = "serious"
	SeverityModerate Severity = "moderate"
	SeverityMinor    Severity = "minor"
)

// ValidSeverities enumerates all recognized severities, most severe first.
var ValidSeverities = []Severity{
	SeverityCritical,
	SeveritySerious,
	SeverityModerate,
	SeverityMinor,
}

// Rank returns a numeric rank for sorting (lower is more severe).
func (s Severity) Rank() int {
	for i, v := range ValidSeverities {
		if v == s {
			return i
		}
	}
	return len(ValidSeverities)
}

// Issue is a single accessibility finding together with the fix proposed for it.
// Field names follow the upstream report format.
type Issue struct {
	Element       string   `json:"element"`
	Selectors     []string `json:"selectors,omitempty"`
	CurrentCode   string   `json:"currentCode"`
	SuggestedFix  string   `json:"suggestedFix"`
	Message       string   `json:"message"`
	WCAGCriteria  string   `json:"wcagCriteria,omitempty"`
	Severity      Severity `json:"severity"`
	Category      string   `json:"category,omitempty"`
	InstanceCount int      `json:"instanceCount,omitempty"`
	RuleID        string   `json:"ruleId,omitempty"`
}

// AllSelectors returns Element followed by Selectors, blanks and duplicates removed,
// first occurrence order preserved.
func (i Issue) AllSelectors() []string {
	seen := make(map[string]bool, len(i.Selectors)+1)
	var out []string
	for _, s := range append([]string{i.Element}, i.Selectors...) {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// Instances returns the number of affected instances, never less than one.
func (i Issue) Instances() int {
	if i.InstanceCount < 1 {
		return 1
	}
	return i.InstanceCount
}

// Validate checks the invariants an issue must hold before it can be trialed or patched.
func (i Issue) Validate() error {
	if strings.TrimSpace(i.CurrentCode) == "" {
		return fmt.Errorf("%w: currentCode is empty", ErrMalformedInput)
	}
	if i.SuggestedFix == i.CurrentCode {
		return fmt.Errorf("%w: suggestedFix is identical to currentCode", ErrMalformedInput)
	}
	if i.Severity != "" && i.Severity.Rank() == len(ValidSeverities) {
		return fmt.Errorf("%w: unknown severity %q", ErrMalformedInput, i.Severity)
	}
	return nil
}

// Fingerprint identifies a fix independent of the report it came from.
func (i Issue) Fingerprint() string {
	h := sha256.New()
	for _, part := range []string{i.Element, i.CurrentCode, i.SuggestedFix} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Label is a short human-readable reference used in logs and error messages.
func (i Issue) Label() string {
	if i.Element != "" {
		return i.Element
	}
	code := strings.Join(strings.Fields(i.CurrentCode), " ")
	if len(code) > 40 {
		code = code[:40] + "…"
	}
	return code
}

// Violation is a finding reported by the accessibility checker.
type Violation struct {
	RuleID            string   `json:"ruleId"`
	Impact            string   `json:"impact,omitempty"`
	Description       string   `json:"description,omitempty"`
	AffectedSelectors []string `json:"affectedSelectors,omitempty"`
}

// Detail returns the identifier and description of the violation in one line.
func (v Violation) Detail() string {
	switch {
	case v.RuleID != "" && v.Description != "":
		return v.RuleID + ": " + v.Description
	case v.RuleID != "":
		return v.RuleID
	default:
		return v.Description
	}
}
