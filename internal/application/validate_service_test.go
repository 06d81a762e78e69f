package application_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a11yfix/a11yfix/internal/application"
	"github.com/a11yfix/a11yfix/internal/domain"
)

const (
	logoSel   = "header img.logo"
	logoCode  = `<img src="/img/logo.png" class="logo">`
	logoFixed = `<img src="/img/logo.png" class="logo" alt="Acme Widgets">`
)

func newValidator(markup map[string]string) (*application.ValidateService, *fakeDocument, *altChecker) {
	doc := newFakeDocument(markup)
	checker := &altChecker{doc: doc}
	return application.NewValidateService(doc, checker, nil), doc, checker
}

func logoTrial(proposed string) domain.FixTrial {
	return domain.FixTrial{Selector: logoSel, ProposedCode: proposed, OriginalCode: logoCode, RuleID: "image-alt"}
}

func TestValidateFix_PassingFixIsValidated(t *testing.T) {
	svc, doc, _ := newValidator(map[string]string{logoSel: logoCode})

	res := svc.ValidateFix(context.Background(), logoTrial(logoFixed))

	assert.True(t, res.Passed)
	assert.Equal(t, domain.MethodDOMInjection, res.Method)
	assert.Empty(t, res.Reason)
	assert.Equal(t, domain.StateValidated, res.State)
	assert.Equal(t, logoCode, doc.get(logoSel), "document must be reverted")
}

func TestValidateFix_FailingFixIsManualWithRuleReason(t *testing.T) {
	svc, doc, _ := newValidator(map[string]string{logoSel: logoCode})

	res := svc.ValidateFix(context.Background(), logoTrial(`<img src="/img/logo.png" class="logo brand">`))

	assert.False(t, res.Passed)
	assert.Equal(t, domain.MethodDOMInjection, res.Method)
	assert.Equal(t, "image-alt: Images must have alternate text", res.Reason)
	assert.Equal(t, domain.StateManual, res.State)
	assert.Equal(t, logoCode, doc.get(logoSel))
}

func TestValidateFix_UnrelatedViolationsDoNotCountWhenRuleKnown(t *testing.T) {
	svc, _, checker := newValidator(map[string]string{logoSel: logoCode})
	checker.extra = []domain.Violation{{RuleID: "color-contrast"}}

	res := svc.ValidateFix(context.Background(), logoTrial(logoFixed))
	assert.True(t, res.Passed)
}

func TestValidateFix_AnyViolationCountsWhenRuleUnknown(t *testing.T) {
	svc, _, checker := newValidator(map[string]string{logoSel: logoCode})
	checker.extra = []domain.Violation{{}}

	trial := logoTrial(logoFixed)
	trial.RuleID = ""
	res := svc.ValidateFix(context.Background(), trial)

	assert.False(t, res.Passed)
	assert.Equal(t, domain.ReasonStillViolating, res.Reason)
}

func TestValidateFix_UnresolvedSelectorIsSkipped(t *testing.T) {
	svc, doc, checker := newValidator(map[string]string{logoSel: logoCode})

	trial := logoTrial(logoFixed)
	trial.Selector = "#missing"
	res := svc.ValidateFix(context.Background(), trial)

	assert.Equal(t, domain.ValidationResult{
		Method: domain.MethodSkipped,
		Passed: false,
		Reason: domain.ReasonElementNotFound,
		State:  domain.StateManual,
	}, res)
	assert.Zero(t, checker.calls, "nothing is checked when nothing was injected")
	assert.Equal(t, logoCode, doc.get(logoSel))
}

func TestValidateFix_InjectErrorIsManualAndReverted(t *testing.T) {
	svc, doc, _ := newValidator(map[string]string{logoSel: logoCode})
	doc.failReplace = errors.New("boom: dom exception")

	res := svc.ValidateFix(context.Background(), logoTrial(logoFixed))

	assert.False(t, res.Passed)
	assert.Contains(t, res.Reason, "boom: dom exception")
	assert.Equal(t, logoCode, doc.get(logoSel))
}

func TestValidateFix_CheckerErrorStillReverts(t *testing.T) {
	svc, doc, checker := newValidator(map[string]string{logoSel: logoCode})
	checker.err = errors.New("axe is not defined")

	res := svc.ValidateFix(context.Background(), logoTrial(logoFixed))

	assert.False(t, res.Passed)
	assert.Equal(t, domain.MethodDOMInjection, res.Method)
	assert.Contains(t, res.Reason, "axe is not defined")
	assert.Equal(t, logoCode, doc.get(logoSel), "revert must run after a checker failure")
}

func TestValidateFix_CheckerPanicStillReverts(t *testing.T) {
	svc, doc, checker := newValidator(map[string]string{logoSel: logoCode})
	checker.panic = true

	res := svc.ValidateFix(context.Background(), logoTrial(logoFixed))

	assert.False(t, res.Passed)
	assert.Contains(t, res.Reason, "checker exploded")
	assert.Equal(t, logoCode, doc.get(logoSel))
}

func TestValidateFix_RevertErrorIsManual(t *testing.T) {
	svc, doc, _ := newValidator(map[string]string{logoSel: logoCode})
	doc.failRestore = errors.New("node detached")

	res := svc.ValidateFix(context.Background(), logoTrial(logoFixed))

	assert.False(t, res.Passed, "a fix that could not be reverted is never validated")
	assert.Contains(t, res.Reason, "node detached")
}

func TestValidateFix_UnrestoredDocumentIsDetected(t *testing.T) {
	svc, doc, _ := newValidator(map[string]string{logoSel: logoCode})
	doc.skipRestore = true

	res := svc.ValidateFix(context.Background(), logoTrial(logoFixed))

	assert.False(t, res.Passed)
	assert.Contains(t, res.Reason, domain.ReasonDocumentNotRestore)
}

func TestValidateFix_CancelledContextStillReverts(t *testing.T) {
	svc, doc, _ := newValidator(map[string]string{logoSel: logoCode})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc.ValidateFix(ctx, logoTrial(logoFixed))
	assert.Equal(t, logoCode, doc.get(logoSel))
}

func TestValidateFix_Idempotent(t *testing.T) {
	svc, doc, _ := newValidator(map[string]string{logoSel: logoCode})

	first := svc.ValidateFix(context.Background(), logoTrial(logoFixed))
	second := svc.ValidateFix(context.Background(), logoTrial(logoFixed))

	assert.Equal(t, first, second)
	assert.Equal(t, logoCode, doc.get(logoSel))
}

func TestValidateFix_DocumentRestoredForEveryOutcome(t *testing.T) {
	proposals := []string{logoFixed, `<img src="x">`, `<div>`, ``, `<img alt="">`}
	for _, p := range proposals {
		svc, doc, _ := newValidator(map[string]string{logoSel: logoCode})
		svc.ValidateFix(context.Background(), logoTrial(p))
		assert.Equal(t, logoCode, doc.get(logoSel), "proposal %q", p)
	}
}

func TestValidateFix_TrialsNeverOverlap(t *testing.T) {
	svc, doc, _ := newValidator(map[string]string{logoSel: logoCode, "a": `<a href="/"><img src="h.svg"></a>`})
	doc.replaceHold = 5 * time.Millisecond

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				svc.ValidateFix(context.Background(), logoTrial(logoFixed))
			} else {
				svc.ValidateFix(context.Background(), domain.FixTrial{Selector: "a", ProposedCode: `<a href="/"><img src="h.svg" alt="Home"></a>`})
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), doc.maxInFlight.Load())
	assert.Equal(t, logoCode, doc.get(logoSel))
}

func TestValidateIssue_FallsBackToOtherSelectors(t *testing.T) {
	svc, doc, _ := newValidator(map[string]string{"#top img": logoCode})

	res := svc.ValidateIssue(context.Background(), domain.Issue{
		Element:      logoSel,
		Selectors:    []string{"#top img"},
		CurrentCode:  logoCode,
		SuggestedFix: logoFixed,
		RuleID:       "image-alt",
	})

	assert.True(t, res.Passed)
	assert.Equal(t, []string{logoSel, "#top img"}, doc.resolved)
}

func TestValidateIssue_InvalidIssueIsSkipped(t *testing.T) {
	svc, doc, _ := newValidator(map[string]string{logoSel: logoCode})

	res := svc.ValidateIssue(context.Background(), domain.Issue{Element: logoSel, CurrentCode: logoCode, SuggestedFix: logoCode})

	assert.False(t, res.Passed)
	assert.Equal(t, domain.MethodSkipped, res.Method)
	assert.Contains(t, res.Reason, "identical")
	assert.Empty(t, doc.resolved)
}

func TestValidateIssue_NoSelectors(t *testing.T) {
	svc, _, _ := newValidator(map[string]string{})
	res := svc.ValidateIssue(context.Background(), domain.Issue{CurrentCode: "<img>", SuggestedFix: `<img alt="">`})
	assert.Equal(t, domain.ReasonElementNotFound, res.Reason)
}

func TestValidateAll_OneResultPerIssueInOrder(t *testing.T) {
	svc, _, _ := newValidator(map[string]string{logoSel: logoCode})
	issues := []domain.Issue{
		{Element: logoSel, CurrentCode: logoCode, SuggestedFix: logoFixed, RuleID: "image-alt"},
		{Element: "#gone", CurrentCode: "<p>", SuggestedFix: "<p lang=en>"},
		{Element: logoSel, CurrentCode: logoCode, SuggestedFix: `<img src="/img/logo.png">`, RuleID: "image-alt"},
	}

	got := svc.ValidateAll(context.Background(), issues)
	require.Len(t, got, 3)
	assert.True(t, got[0].Result.Passed)
	assert.Equal(t, domain.ReasonElementNotFound, got[1].Result.Reason)
	assert.False(t, got[2].Result.Passed)
	for i := range issues {
		assert.Equal(t, issues[i], got[i].Issue)
	}
}
