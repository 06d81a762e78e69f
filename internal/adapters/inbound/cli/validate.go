package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/a11yfix/a11yfix/internal/adapters/outbound/report"
	"github.com/a11yfix/a11yfix/internal/adapters/outbound/tui"
	"github.com/a11yfix/a11yfix/internal/application"
	"github.com/a11yfix/a11yfix/internal/logging"
)

func newValidateCmd(a *app) *cobra.Command {
	var (
		url        string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "validate <report>",
		Short: "Trial every suggested fix against the live page",
		Long: "Load the page named by the report, inject each suggested fix in place, re-run the " +
			"accessibility rules on it and revert. The report is rewritten with validationResults.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := report.New()
			// Fail on a bad report before paying for a browser start.
			if _, err := store.Load(args[0]); err != nil {
				return err
			}

			live, err := a.openLiveChecker(cmd.Context())
			if err != nil {
				return err
			}
			defer live.Close()

			svc := application.NewAuditService(store, live.session, live.validator, nil, nil, logging.New("audit"))
			out, err := svc.ValidateReport(cmd.Context(), application.AuditRequest{ReportPath: args[0], URL: url})
			if err != nil {
				return err
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out.Report.ValidationResults)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderValidation(out.Report.ValidationResults))
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "Page to validate against (overrides the report's url)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output validation results as JSON")

	return cmd
}
