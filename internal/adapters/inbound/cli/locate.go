package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/a11yfix/a11yfix/internal/adapters/outbound/prompt"
	"github.com/a11yfix/a11yfix/internal/domain"
)

func newLocateCmd(a *app) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "locate <source-dir> <snippet-file|->",
		Short: "Show where a markup snippet lives in the source tree",
		Long: "Search the source tree the way patch does, tolerating whitespace differences, and " +
			"print the first file and span that match. Read the snippet from stdin with '-'.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			snippet, err := readSnippet(cmd.InOrStdin(), args[1])
			if err != nil {
				return err
			}

			loc, err := a.patchService(prompt.AutoReject).Locate(args[0], snippet)
			if err != nil {
				return err
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(loc)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s:%d\n%s\n", loc.File, loc.Line, loc.Matched)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the location as JSON")

	return cmd
}

func readSnippet(stdin io.Reader, arg string) (string, error) {
	var (
		data []byte
		err  error
	)
	if arg == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(arg)
	}
	if err != nil {
		return "", fmt.Errorf("%w: reading snippet: %w", domain.ErrIOFailure, err)
	}
	return string(data), nil
}
