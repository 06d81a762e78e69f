package domain

import "context"

// ElementHandle is an opaque reference to an element of the live document.
// It stays bound to the element resolved at Resolve time; it is never re-resolved
// from the selector.
type ElementHandle string

// LiveDocument is the single shared mutable page fixes are trialed against.
// Callers must not run trials against the same document concurrently.
type LiveDocument interface {
	// Resolve binds a handle to the first element matching selector.
	// Returns an error wrapping ErrNotFound if nothing matches.
	Resolve(ctx context.Context, selector string) (ElementHandle, error)
	// Markup returns the current outer markup at the handle's position.
	Markup(ctx context.Context, h ElementHandle) (string, error)
	// Replace swaps the element's entire outer markup for markup in one mutation.
	Replace(ctx context.Context, h ElementHandle, markup string) error
	// Restore puts the element captured at Resolve time back in place.
	Restore(ctx context.Context, h ElementHandle) error
	// Release drops the handle. Releasing an unknown handle is a no-op.
	Release(ctx context.Context, h ElementHandle) error
}

// Navigator loads a page into the live document.
type Navigator interface {
	Navigate(ctx context.Context, url string) error
}

// AccessibilityChecker runs automated rules against the subtree around a handle.
type AccessibilityChecker interface {
	Check(ctx context.Context, scope ElementHandle) ([]Violation, error)
}

// PromptKind tells a confirmer which decision is being asked for.
type PromptKind string

const (
	PromptApproveFix PromptKind = "approve"
	PromptApplyPatch PromptKind = "apply"
)

// Prompt is one confirmation request.
type Prompt struct {
	Kind   PromptKind
	Issue  Issue
	File   string
	Before string
	After  string
}

// Confirmer is the synchronous confirmation capability. Implementations may
// block indefinitely waiting for an operator.
type Confirmer interface {
	Confirm(ctx context.Context, p Prompt) (bool, error)
}

// SourceScanner enumerates candidate source files under a root, in a stable order.
type SourceScanner interface {
	Scan(root string, opts ScanOptions) (*ScanResult, error)
}

// ScanOptions filters source enumeration.
type ScanOptions struct {
	Extensions   []string
	ExcludePaths []string
	MaxFileBytes int64
}

// ScanResult holds the files found under RootPath, relative paths in walk order.
type ScanResult struct {
	RootPath string   `json:"root_path"`
	Files    []string `json:"files"`
	Skipped  []string `json:"skipped,omitempty"`
}

// ReportStore loads and persists audit reports.
type ReportStore interface {
	Load(path string) (*Report, error)
	Save(r *Report) error
}

// FixLedger remembers which fixes were already written to a source tree.
type FixLedger interface {
	Applied(root string) (map[string]LedgerEntry, error)
	Record(root string, entry LedgerEntry) error
}

// LedgerEntry is one applied fix.
type LedgerEntry struct {
	Fingerprint string `json:"fingerprint"`
	File        string `json:"file"`
	Element     string `json:"element,omitempty"`
	AppliedAt   string `json:"applied_at"`
}

// ConfigLoader loads tool configuration.
type ConfigLoader interface {
	Load(path string) (Config, error)
}

// GitInfo reports version-control state of a source tree.
type GitInfo interface {
	IsGitRepo(path string) bool
	CommitHash(path string) (string, error)
	// Uncommitted reports whether file differs from HEAD or is untracked.
	Uncommitted(file string) (bool, error)
}
