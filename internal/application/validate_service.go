package application

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/a11yfix/a11yfix/internal/domain"
	"github.com/a11yfix/a11yfix/internal/logging"
)

// ValidateService trials candidate fixes against the live document and
// classifies each one as validated or manual. The document is always restored
// before a result is returned.
type ValidateService struct {
	doc     domain.LiveDocument
	checker domain.AccessibilityChecker
	log     *zap.Logger

	// mu serializes trials: the live document is one shared mutable resource.
	mu sync.Mutex
}

// NewValidateService creates a ValidateService bound to one live document.
func NewValidateService(doc domain.LiveDocument, checker domain.AccessibilityChecker, log *zap.Logger) *ValidateService {
	return &ValidateService{doc: doc, checker: checker, log: logging.OrNop(log)}
}

// ValidateAll validates issues one at a time and returns one result per issue, in order.
func (s *ValidateService) ValidateAll(ctx context.Context, issues []domain.Issue) []domain.ValidatedIssue {
	out := make([]domain.ValidatedIssue, 0, len(issues))
	for _, issue := range issues {
		out = append(out, domain.ValidatedIssue{Issue: issue, Result: s.ValidateIssue(ctx, issue)})
	}
	return out
}

// ValidateIssue validates a single issue, trying each of its selectors in
// order and trialing the fix on the first one that resolves.
func (s *ValidateService) ValidateIssue(ctx context.Context, issue domain.Issue) domain.ValidationResult {
	if err := issue.Validate(); err != nil {
		return domain.ValidationResult{Method: domain.MethodSkipped, Reason: err.Error(), State: domain.StateManual}
	}

	selectors := issue.AllSelectors()
	if len(selectors) == 0 {
		return notFound()
	}

	var res domain.ValidationResult
	for _, sel := range selectors {
		res = s.ValidateFix(ctx, domain.FixTrial{
			Selector:     sel,
			ProposedCode: issue.SuggestedFix,
			OriginalCode: issue.CurrentCode,
			RuleID:       issue.RuleID,
		})
		if res.Method != domain.MethodSkipped {
			break
		}
	}

	s.log.Info("issue validated",
		zap.String("element", issue.Label()),
		zap.Bool("passed", res.Passed),
		zap.String("reason", res.Reason))
	return res
}

// ValidateFix runs one trial: resolve, inject, check, revert, classify.
// It never returns an error; failures are folded into a manual result.
func (s *ValidateService) ValidateFix(ctx context.Context, t domain.FixTrial) domain.ValidationResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	tr := &trial{svc: s, fix: t, state: domain.StateIdle}
	return tr.run(ctx)
}

// trial is the state machine for a single fix trial.
type trial struct {
	svc   *ValidateService
	fix   domain.FixTrial
	state domain.ValidationState
}

func (t *trial) enter(next domain.ValidationState) {
	t.svc.log.Debug("trial transition",
		zap.String("selector", t.fix.Selector),
		zap.String("from", string(t.state)),
		zap.String("to", string(next)))
	t.state = next
}

func (t *trial) run(ctx context.Context) (res domain.ValidationResult) {
	doc := t.svc.doc

	h, err := doc.Resolve(ctx, t.fix.Selector)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			t.enter(domain.StateManual)
			return notFound()
		}
		t.enter(domain.StateError)
		return t.fail(err)
	}
	defer func() {
		if err := doc.Release(context.WithoutCancel(ctx), h); err != nil {
			t.svc.log.Warn("releasing element handle", zap.Error(err))
		}
	}()

	snapshot, err := doc.Markup(ctx, h)
	if err != nil {
		t.enter(domain.StateError)
		return t.fail(err)
	}

	t.enter(domain.StateInjecting)
	violations, trialErr := t.injectAndCheck(ctx, h)

	// Revert on every path, including a cancelled context.
	revertCtx := context.WithoutCancel(ctx)
	t.enter(domain.StateReverting)
	if err := t.revert(revertCtx, h, snapshot); err != nil {
		trialErr = errors.Join(trialErr, err)
	}

	if trialErr != nil {
		t.enter(domain.StateError)
		return t.fail(trialErr)
	}

	surviving := matchingViolations(violations, t.fix.RuleID)
	if len(surviving) == 0 {
		t.enter(domain.StateValidated)
		return domain.ValidationResult{Method: domain.MethodDOMInjection, Passed: true, State: domain.StateValidated}
	}

	t.enter(domain.StateManual)
	reason := surviving[0].Detail()
	if reason == "" {
		reason = domain.ReasonStillViolating
	}
	return domain.ValidationResult{
		Method:     domain.MethodDOMInjection,
		Reason:     reason,
		State:      domain.StateManual,
		Violations: surviving,
	}
}

func (t *trial) injectAndCheck(ctx context.Context, h domain.ElementHandle) (violations []domain.Violation, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic during %s: %v", domain.ErrValidationFailure, t.state, r)
		}
	}()

	if err := t.svc.doc.Replace(ctx, h, t.fix.ProposedCode); err != nil {
		return nil, fmt.Errorf("%w: injecting fix into %s: %w", domain.ErrValidationFailure, t.fix.Selector, err)
	}

	t.enter(domain.StateChecking)
	violations, err = t.svc.checker.Check(ctx, h)
	if err != nil {
		return nil, fmt.Errorf("%w: checking %s: %w", domain.ErrValidationFailure, t.fix.Selector, err)
	}
	return violations, nil
}

func (t *trial) revert(ctx context.Context, h domain.ElementHandle, snapshot string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic while reverting %s: %v", domain.ErrValidationFailure, t.fix.Selector, r)
		}
	}()

	if err := t.svc.doc.Restore(ctx, h); err != nil {
		return fmt.Errorf("%w: reverting %s: %w", domain.ErrValidationFailure, t.fix.Selector, err)
	}
	after, err := t.svc.doc.Markup(ctx, h)
	if err != nil {
		return fmt.Errorf("%w: reading %s after revert: %w", domain.ErrValidationFailure, t.fix.Selector, err)
	}
	if after != snapshot {
		return fmt.Errorf("%w: %s: %s", domain.ErrValidationFailure, t.fix.Selector, domain.ReasonDocumentNotRestore)
	}
	return nil
}

func (t *trial) fail(err error) domain.ValidationResult {
	t.svc.log.Warn("fix trial failed",
		zap.String("selector", t.fix.Selector),
		zap.Error(err))
	return domain.ValidationResult{
		Method: domain.MethodDOMInjection,
		Reason: err.Error(),
		State:  domain.StateManual,
	}
}

func notFound() domain.ValidationResult {
	return domain.ValidationResult{
		Method: domain.MethodSkipped,
		Reason: domain.ReasonElementNotFound,
		State:  domain.StateManual,
	}
}

// matchingViolations keeps the violations that count against a fix for ruleID.
// An empty ruleID counts every violation.
func matchingViolations(violations []domain.Violation, ruleID string) []domain.Violation {
	if ruleID == "" {
		return violations
	}
	var out []domain.Violation
	for _, v := range violations {
		if v.RuleID == ruleID {
			out = append(out, v)
		}
	}
	return out
}
