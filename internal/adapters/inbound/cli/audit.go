package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/a11yfix/a11yfix/internal/adapters/outbound/report"
	"github.com/a11yfix/a11yfix/internal/adapters/outbound/tui"
	"github.com/a11yfix/a11yfix/internal/application"
	"github.com/a11yfix/a11yfix/internal/logging"
)

func newAuditCmd(a *app) *cobra.Command {
	var (
		url    string
		dryRun bool
		yes    bool
	)

	cmd := &cobra.Command{
		Use:   "audit <report> [source-dir]",
		Short: "Validate, approve and patch in one run",
		Long: "Validate every suggested fix against the live page, save the report, ask which " +
			"validated fixes to approve and, when a source directory is given, patch them in.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := application.AuditRequest{ReportPath: args[0], URL: url, DryRun: dryRun}
			if len(args) > 1 {
				req.SourceDir = args[1]
			}

			store := report.New()
			if _, err := store.Load(req.ReportPath); err != nil {
				return err
			}

			live, err := a.openLiveChecker(cmd.Context())
			if err != nil {
				return err
			}
			defer live.Close()

			confirm := a.confirmer(cmd, yes)
			svc := application.NewAuditService(
				store,
				live.session,
				live.validator,
				confirm,
				a.patchService(confirm),
				logging.New("audit"),
			)
			out, runErr := svc.Run(cmd.Context(), req)
			if out == nil {
				return runErr
			}

			w := cmd.OutOrStdout()
			fmt.Fprint(w, tui.RenderValidation(out.Report.ValidationResults))
			fmt.Fprintf(w, "  %d of %d validated fixes approved\n\n", len(out.Approved), out.Report.ValidationResults.Summary.Validated)
			if out.Patch != nil {
				fmt.Fprint(w, tui.RenderPatchSummary(out.Patch))
			}
			return runErr
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "Page to validate against (overrides the report's url)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show which approved fixes would be written without writing them")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Approve and apply every validated fix without asking")

	return cmd
}
