package cli

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/a11yfix/a11yfix/internal/adapters/outbound/axe"
	"github.com/a11yfix/a11yfix/internal/adapters/outbound/browser"
	"github.com/a11yfix/a11yfix/internal/adapters/outbound/gitinfo"
	"github.com/a11yfix/a11yfix/internal/adapters/outbound/ledger"
	"github.com/a11yfix/a11yfix/internal/adapters/outbound/prompt"
	"github.com/a11yfix/a11yfix/internal/adapters/outbound/scanner"
	"github.com/a11yfix/a11yfix/internal/application"
	"github.com/a11yfix/a11yfix/internal/domain"
	"github.com/a11yfix/a11yfix/internal/logging"
)

// confirmer returns the operator prompt, or an unconditional approval with --yes.
func (a *app) confirmer(cmd *cobra.Command, yes bool) domain.Confirmer {
	if yes {
		return prompt.AutoApprove
	}
	if f, ok := cmd.InOrStdin().(*os.File); ok && !prompt.Interactive(f) {
		a.log.Warn("stdin is not a terminal, answers are read from it as lines")
	}
	return prompt.NewTerminal(cmd.InOrStdin(), cmd.OutOrStdout())
}

func (a *app) patchService(confirm domain.Confirmer) *application.PatchService {
	return application.NewPatchService(
		scanner.New(),
		confirm,
		a.cfg.ScanOptions(),
		logging.New("patch"),
		application.WithLedger(ledger.New()),
		application.WithGitInfo(gitinfo.New()),
	)
}

// liveChecker is a browser tab with the rule engine attached.
type liveChecker struct {
	session   *browser.Session
	validator *application.ValidateService
}

func (a *app) openLiveChecker(ctx context.Context) (*liveChecker, error) {
	session, err := browser.New(ctx, a.cfg.Browser, logging.New("browser"))
	if err != nil {
		return nil, err
	}
	checker, err := axe.New(session, a.cfg.Checker, logging.New("axe"))
	if err != nil {
		return nil, errors.Join(err, session.Close())
	}
	return &liveChecker{
		session:   session,
		validator: application.NewValidateService(session, checker, logging.New("validate")),
	}, nil
}

func (l *liveChecker) Close() error {
	return l.session.Close()
}
