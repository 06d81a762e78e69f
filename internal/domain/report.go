package domain

import "encoding/json"

// Report is an audit report produced upstream and enriched by this tool.
// Keys this tool does not own are carried through untouched in Extra.
type Report struct {
	Path              string                     `json:"-"`
	URL               string                     `json:"url,omitempty"`
	Issues            []Issue                    `json:"issues"`
	ApprovedFixes     []Issue                    `json:"approvedFixes,omitempty"`
	ValidationResults *ValidationResults         `json:"validationResults,omitempty"`
	Extra             map[string]json.RawMessage `json:"-"`

	// HasApprovedFixes is true when the report carried an approvedFixes list,
	// even an empty one.
	HasApprovedFixes bool `json:"-"`
}

// SetApproved records the approved subset on the report.
func (r *Report) SetApproved(issues []Issue) {
	r.ApprovedFixes = append([]Issue{}, issues...)
	r.HasApprovedFixes = true
}
