package domain

// Patch outcomes.
const (
	OutcomeApplied        = "applied"
	OutcomeWouldApply     = "would-apply"
	OutcomeDeclined       = "declined"
	OutcomeNotFound       = "not-found"
	OutcomeFailed         = "failed"
	OutcomeDuplicate      = "duplicate"
	OutcomeAlreadyApplied = "already-applied"
	OutcomeInvalid        = "invalid"
)

// ReasonCodeNotFound is reported when an issue's currentCode matches no candidate file.
const ReasonCodeNotFound = "currentCode not found in any file"

// PatchResult is the outcome of applying one approved issue to the source tree.
type PatchResult struct {
	Issue   Issue  `json:"issue"`
	File    string `json:"file,omitempty"`
	Applied bool   `json:"applied"`
	Outcome string `json:"outcome"`
	Reason  string `json:"reason,omitempty"`
}

// PatchSummary aggregates a patch run.
type PatchSummary struct {
	Results    []PatchResult `json:"results"`
	Applied    int           `json:"applied"`
	WouldApply int           `json:"would_apply"`
	Skipped    int           `json:"skipped"`
	NotFound   int           `json:"not_found"`
	Failed     int           `json:"failed"`
	DryRun     bool          `json:"dry_run"`
	Commit     string        `json:"commit,omitempty"`
}

// Add records a result and updates the counters.
func (s *PatchSummary) Add(r PatchResult) {
	s.Results = append(s.Results, r)
	switch r.Outcome {
	case OutcomeApplied:
		s.Applied++
	case OutcomeWouldApply:
		s.WouldApply++
	case OutcomeNotFound:
		s.NotFound++
	case OutcomeFailed:
		s.Failed++
	default:
		s.Skipped++
	}
}

// PatchOptions controls a patch run.
type PatchOptions struct {
	DryRun bool `json:"dry_run"`
}

// Location is where a snippet was found in a source tree.
type Location struct {
	File    string `json:"file"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
	Line    int    `json:"line"`
	Matched string `json:"matched"`
}
