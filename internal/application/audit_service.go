package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/a11yfix/a11yfix/internal/domain"
	"github.com/a11yfix/a11yfix/internal/logging"
)

// AuditService sequences a full audit run:
// load issues → validate each against the live page → persist the enriched
// report → approve validated fixes → patch the approved subset.
type AuditService struct {
	reports   domain.ReportStore
	navigator domain.Navigator
	validator *ValidateService
	approver  domain.Confirmer
	patcher   *PatchService
	log       *zap.Logger
	now       func() time.Time
	newID     func() string
}

// NewAuditService creates an AuditService. patcher may be nil when runs never
// patch a source tree.
func NewAuditService(
	reports domain.ReportStore,
	navigator domain.Navigator,
	validator *ValidateService,
	approver domain.Confirmer,
	patcher *PatchService,
	log *zap.Logger,
) *AuditService {
	return &AuditService{
		reports:   reports,
		navigator: navigator,
		validator: validator,
		approver:  approver,
		patcher:   patcher,
		log:       logging.OrNop(log),
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// AuditRequest describes one audit run.
type AuditRequest struct {
	ReportPath string
	// URL overrides the page recorded in the report.
	URL string
	// SourceDir, when set, receives the approved fixes.
	SourceDir string
	DryRun    bool
}

// AuditOutcome is everything a run produced.
type AuditOutcome struct {
	Report    *domain.Report
	Validated []domain.ValidatedIssue
	Approved  []domain.Issue
	Patch     *domain.PatchSummary
}

// ValidateReport validates every issue in the report and persists the
// enriched report before returning.
func (s *AuditService) ValidateReport(ctx context.Context, req AuditRequest) (*AuditOutcome, error) {
	report, err := s.reports.Load(req.ReportPath)
	if err != nil {
		return nil, err
	}

	url := strings.TrimSpace(req.URL)
	if url == "" {
		url = report.URL
	}
	if url == "" {
		return nil, fmt.Errorf("%w: %s: no page url in report and none given", domain.ErrMalformedInput, req.ReportPath)
	}

	if err := s.navigator.Navigate(ctx, url); err != nil {
		return nil, fmt.Errorf("%w: loading %s: %w", domain.ErrValidationFailure, url, err)
	}
	s.log.Info("validating fixes", zap.String("url", url), zap.Int("issues", len(report.Issues)))

	validated := s.validator.ValidateAll(ctx, report.Issues)

	results := domain.Summarize(validated, s.now())
	results.RunID = s.newID()
	results.URL = url
	report.URL = url
	report.ValidationResults = &results

	// Persist before any approval so a crash afterwards still leaves a complete report.
	if err := s.reports.Save(report); err != nil {
		return nil, fmt.Errorf("saving validated report: %w", err)
	}
	s.log.Info("validated report saved",
		zap.String("path", report.Path),
		zap.Int("validated", results.Summary.Validated),
		zap.Int("manual", results.Summary.Manual))

	return &AuditOutcome{Report: report, Validated: validated}, nil
}

// Run performs a full audit. The validated report is on disk before approval starts.
func (s *AuditService) Run(ctx context.Context, req AuditRequest) (*AuditOutcome, error) {
	out, err := s.ValidateReport(ctx, req)
	if err != nil {
		return nil, err
	}

	out.Approved = s.approve(ctx, out.Validated)
	out.Report.SetApproved(out.Approved)
	if err := s.reports.Save(out.Report); err != nil {
		return out, fmt.Errorf("saving approved fixes: %w", err)
	}

	if req.SourceDir == "" || s.patcher == nil {
		return out, nil
	}

	summary, err := s.patcher.Apply(ctx, req.SourceDir, out.Approved, domain.PatchOptions{DryRun: req.DryRun})
	if err != nil {
		return out, fmt.Errorf("patching %s: %w", req.SourceDir, err)
	}
	out.Patch = summary
	return out, nil
}

// approve asks for approval of validated issues only. Manual issues are
// surfaced for review and never approved here.
func (s *AuditService) approve(ctx context.Context, validated []domain.ValidatedIssue) []domain.Issue {
	approved := []domain.Issue{}
	for _, v := range validated {
		if v.Result.Status() != domain.StateValidated {
			s.log.Info("needs manual review",
				zap.String("element", v.Issue.Label()),
				zap.String("reason", v.Result.Reason))
			continue
		}

		ok, err := s.approver.Confirm(ctx, domain.Prompt{
			Kind:   domain.PromptApproveFix,
			Issue:  v.Issue,
			Before: v.Issue.CurrentCode,
			After:  v.Issue.SuggestedFix,
		})
		if err != nil {
			s.log.Warn("approval failed; fix not approved", zap.String("element", v.Issue.Label()), zap.Error(err))
			continue
		}
		if ok {
			approved = append(approved, v.Issue)
		}
	}
	return approved
}
