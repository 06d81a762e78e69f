package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/a11yfix/a11yfix/internal/adapters/outbound/config"
	"github.com/a11yfix/a11yfix/internal/domain"
	"github.com/a11yfix/a11yfix/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
)

// app carries the global flags and what PersistentPreRunE builds from them.
type app struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg domain.Config
	log *zap.Logger
}

func (a *app) setup(cmd *cobra.Command) error {
	path := a.configPath
	if path == "" {
		path = "."
	}
	cfg, err := config.New().Load(path)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}

	log, err := logging.Init(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = log
	return nil
}

func newRootCmd() *cobra.Command {
	a := &app{cfg: domain.DefaultConfig(), log: zap.NewNop()}

	cmd := &cobra.Command{
		Use:   "a11yfix",
		Short: "Prove accessibility fixes work, then patch them into source",
		Long: "a11yfix trial-applies suggested accessibility fixes to a live page, keeps only the ones " +
			"that make the violation disappear, and writes the approved ones back into the source tree.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file or directory containing "+config.FileName+" (defaults to the working directory)")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "Log format: console or json")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newValidateCmd(a))
	cmd.AddCommand(newAuditCmd(a))
	cmd.AddCommand(newPatchCmd(a))
	cmd.AddCommand(newLocateCmd(a))
	cmd.AddCommand(newMCPCmd(a))
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

// Execute runs the CLI until it finishes or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	_ = zap.L().Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}
