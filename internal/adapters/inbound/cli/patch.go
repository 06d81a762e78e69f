package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/a11yfix/a11yfix/internal/adapters/outbound/report"
	"github.com/a11yfix/a11yfix/internal/adapters/outbound/tui"
	"github.com/a11yfix/a11yfix/internal/domain"
)

func newPatchCmd(a *app) *cobra.Command {
	var (
		dryRun     bool
		yes        bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "patch <report> <source-dir>",
		Short: "Write a report's approved fixes into the source tree",
		Long: "Find each approved fix's current code in the source tree, confirm the change and " +
			"replace it in the first file that contains it. Fixes already written by an earlier run are skipped.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := report.New().Load(args[0])
			if err != nil {
				return err
			}
			if !rep.HasApprovedFixes {
				return fmt.Errorf("%w: %s has no approvedFixes list", domain.ErrMalformedInput, args[0])
			}

			svc := a.patchService(a.confirmer(cmd, yes))
			summary, err := svc.Apply(cmd.Context(), args[1], rep.ApprovedFixes, domain.PatchOptions{DryRun: dryRun})
			if err != nil {
				return err
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderPatchSummary(summary))
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would change without writing")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Apply every fix without asking")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the patch summary as JSON")

	return cmd
}
