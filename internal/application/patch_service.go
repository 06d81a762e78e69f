package application

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/a11yfix/a11yfix/internal/domain"
	"github.com/a11yfix/a11yfix/internal/domain/span"
	"github.com/a11yfix/a11yfix/internal/fsutil"
	"github.com/a11yfix/a11yfix/internal/logging"
)

// PatchService writes approved fixes back into source files.
//
// Each issue is applied to the first enumerated file whose content contains its
// currentCode, at most once, and only after confirmation unless running dry.
type PatchService struct {
	scanner   domain.SourceScanner
	confirmer domain.Confirmer
	ledger    domain.FixLedger
	git       domain.GitInfo
	scanOpts  domain.ScanOptions
	log       *zap.Logger
	write     FileWriter
	now       func() time.Time
}

// FileWriter persists data at path with perm.
type FileWriter func(path string, data []byte, perm os.FileMode) error

// PatchOption customizes a PatchService.
type PatchOption func(*PatchService)

// WithFileWriter replaces the atomic file writer.
func WithFileWriter(w FileWriter) PatchOption {
	return func(s *PatchService) { s.write = w }
}

// WithLedger records applied fixes so they are never written twice across runs.
func WithLedger(l domain.FixLedger) PatchOption {
	return func(s *PatchService) { s.ledger = l }
}

// WithGitInfo stamps summaries with the source tree's HEAD commit.
func WithGitInfo(g domain.GitInfo) PatchOption {
	return func(s *PatchService) { s.git = g }
}

// NewPatchService creates a PatchService.
func NewPatchService(scanner domain.SourceScanner, confirmer domain.Confirmer, scanOpts domain.ScanOptions, log *zap.Logger, opts ...PatchOption) *PatchService {
	s := &PatchService{
		scanner:   scanner,
		confirmer: confirmer,
		scanOpts:  scanOpts,
		log:       logging.OrNop(log),
		write:     fsutil.WriteFile,
		now:       time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Apply patches issues into the tree under root. Per-issue failures are
// recorded in the summary; only a failure to enumerate the tree is returned.
func (s *PatchService) Apply(ctx context.Context, root string, issues []domain.Issue, opts domain.PatchOptions) (*domain.PatchSummary, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving source root: %w", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("%w: source root %s: %w", domain.ErrIOFailure, root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: source root %s is not a directory", domain.ErrIOFailure, root)
	}

	scan, err := s.scanner.Scan(absRoot, s.scanOpts)
	if err != nil {
		return nil, fmt.Errorf("%w: scanning %s: %w", domain.ErrIOFailure, root, err)
	}
	s.log.Debug("source tree scanned",
		zap.String("root", absRoot),
		zap.Int("candidates", len(scan.Files)))

	summary := &domain.PatchSummary{DryRun: opts.DryRun}
	s.stampCommit(absRoot, summary, opts)

	applied := s.loadLedger(absRoot)
	seen := make(map[string]bool, len(issues))

	for _, issue := range issues {
		r := s.applyOne(ctx, absRoot, scan.Files, issue, opts, applied, seen)
		s.log.Info("patch outcome",
			zap.String("element", issue.Label()),
			zap.String("outcome", r.Outcome),
			zap.String("file", r.File),
			zap.String("reason", r.Reason))
		summary.Add(r)
	}
	return summary, nil
}

func (s *PatchService) applyOne(
	ctx context.Context,
	root string,
	files []string,
	issue domain.Issue,
	opts domain.PatchOptions,
	applied map[string]domain.LedgerEntry,
	seen map[string]bool,
) domain.PatchResult {
	res := domain.PatchResult{Issue: issue}

	if err := issue.Validate(); err != nil {
		res.Outcome, res.Reason = domain.OutcomeInvalid, err.Error()
		return res
	}

	fp := issue.Fingerprint()
	if seen[fp] {
		res.Outcome, res.Reason = domain.OutcomeDuplicate, "fix already processed in this run"
		return res
	}
	seen[fp] = true

	if entry, ok := applied[fp]; ok {
		res.File = entry.File
		res.Outcome, res.Reason = domain.OutcomeAlreadyApplied, "fix was applied on "+entry.AppliedAt
		return res
	}

	m, err := s.locate(root, files, issue.CurrentCode)
	if err != nil {
		res.Outcome, res.Reason = domain.OutcomeNotFound, domain.ReasonCodeNotFound
		return res
	}
	res.File = m.rel

	if opts.DryRun {
		res.Outcome = domain.OutcomeWouldApply
		return res
	}

	s.warnUncommitted(m)

	// No file is held open while the operator decides.
	ok, err := s.confirmer.Confirm(ctx, domain.Prompt{
		Kind:   domain.PromptApplyPatch,
		Issue:  issue,
		File:   m.rel,
		Before: m.matched(),
		After:  issue.SuggestedFix,
	})
	if err != nil {
		res.Outcome, res.Reason = domain.OutcomeFailed, fmt.Sprintf("confirmation failed: %v", err)
		return res
	}
	if !ok {
		res.Outcome, res.Reason = domain.OutcomeDeclined, "declined by operator"
		return res
	}

	if err := s.writePatch(m, issue); err != nil {
		res.Outcome, res.Reason = domain.OutcomeFailed, err.Error()
		return res
	}

	res.Applied, res.Outcome = true, domain.OutcomeApplied
	s.recordLedger(root, domain.LedgerEntry{
		Fingerprint: fp,
		File:        m.rel,
		Element:     issue.Element,
		AppliedAt:   s.now().UTC().Format(time.RFC3339),
	})
	return res
}

// spanMatch is the location of an issue's currentCode inside one file.
type spanMatch struct {
	rel        string
	abs        string
	content    string
	start, end int
}

func (m *spanMatch) matched() string {
	return m.content[m.start:m.end]
}

// Locate finds the span of snippet under root using the same first-file-wins
// rule as Apply. The error wraps domain.ErrNotFound when no file contains it.
func (s *PatchService) Locate(root, snippet string) (*domain.Location, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving source root: %w", err)
	}
	scan, err := s.scanner.Scan(absRoot, s.scanOpts)
	if err != nil {
		return nil, fmt.Errorf("%w: scanning %s: %w", domain.ErrIOFailure, root, err)
	}
	m, err := s.locate(absRoot, scan.Files, snippet)
	if err != nil {
		return nil, err
	}
	return &domain.Location{
		File:    m.rel,
		Start:   m.start,
		End:     m.end,
		Line:    strings.Count(m.content[:m.start], "\n") + 1,
		Matched: m.matched(),
	}, nil
}

// locate returns the first file, in scan order, whose content contains needle.
func (s *PatchService) locate(root string, files []string, needle string) (*spanMatch, error) {
	for _, rel := range files {
		abs := filepath.Join(root, rel)
		data, err := os.ReadFile(abs)
		if err != nil {
			s.log.Warn("skipping unreadable file", zap.String("file", rel), zap.Error(err))
			continue
		}
		content := string(data)
		if start, end, ok := span.Locate(content, needle); ok {
			return &spanMatch{rel: rel, abs: abs, content: content, start: start, end: end}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, domain.ReasonCodeNotFound)
}

// writePatch re-reads the file, replaces the matched span and writes it back.
func (s *PatchService) writePatch(m *spanMatch, issue domain.Issue) error {
	info, err := os.Stat(m.abs)
	if err != nil {
		return fmt.Errorf("%w: stat %s: %w", domain.ErrIOFailure, m.rel, err)
	}
	data, err := os.ReadFile(m.abs)
	if err != nil {
		return fmt.Errorf("%w: reading %s: %w", domain.ErrIOFailure, m.rel, err)
	}

	content := string(data)
	start, end, ok := span.Locate(content, issue.CurrentCode)
	if !ok || content[start:end] != m.matched() {
		return fmt.Errorf("%w: %s changed while awaiting confirmation", domain.ErrIOFailure, m.rel)
	}

	patched := content[:start] + issue.SuggestedFix + content[end:]
	if err := s.write(m.abs, []byte(patched), info.Mode().Perm()); err != nil {
		return fmt.Errorf("%w: writing %s: %w", domain.ErrIOFailure, m.rel, err)
	}
	return nil
}

func (s *PatchService) loadLedger(root string) map[string]domain.LedgerEntry {
	if s.ledger == nil {
		return nil
	}
	entries, err := s.ledger.Applied(root)
	if err != nil {
		s.log.Warn("reading fix ledger", zap.Error(err))
		return nil
	}
	return entries
}

func (s *PatchService) recordLedger(root string, entry domain.LedgerEntry) {
	if s.ledger == nil {
		return
	}
	if err := s.ledger.Record(root, entry); err != nil {
		s.log.Warn("recording applied fix", zap.String("file", entry.File), zap.Error(err))
	}
}

// warnUncommitted flags files whose local edits would be mixed with the fix.
func (s *PatchService) warnUncommitted(m *spanMatch) {
	if s.git == nil {
		return
	}
	if dirty, err := s.git.Uncommitted(m.abs); err == nil && dirty {
		s.log.Warn("file has uncommitted changes; the fix will be mixed with them", zap.String("file", m.rel))
	}
}

func (s *PatchService) stampCommit(root string, summary *domain.PatchSummary, opts domain.PatchOptions) {
	if s.git == nil {
		return
	}
	if !s.git.IsGitRepo(root) {
		if !opts.DryRun {
			s.log.Warn("source tree is not under version control; applied fixes cannot be reverted with git",
				zap.String("root", root))
		}
		return
	}
	if hash, err := s.git.CommitHash(root); err == nil {
		summary.Commit = hash
	}
}
