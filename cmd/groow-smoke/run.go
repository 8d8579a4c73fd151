package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/groow/smoke/internal/config"
	"github.com/groow/smoke/internal/service/notify"
	"github.com/groow/smoke/internal/service/runs"
)

// errRunFailed makes the process exit non-zero without printing an extra error line.
var errRunFailed = errors.New("smoke run has failures")

func newRunCmd(a *app) *cobra.Command {
	var (
		policy    string
		modules   []string
		role      string
		reportDir string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the smoke suites once and write reports",
		Example: `  groow-smoke run --policy fixed
  groow-smoke run --policy tolerant --module reports --module audit --role vendor`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("report-dir") {
				a.cfg.Smoke.ReportDir = reportDir
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w, err := a.wire(ctx)
			if err != nil {
				return err
			}
			defer w.close()

			run, err := w.runs.Execute(ctx, runs.Options{Policy: policy, Modules: modules, Role: config.Role(strings.ToLower(role))})
			if run.Summary.RunID == "" && err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, notify.FormatSummary(run.Summary))
			if run.Reports.JSON != "" {
				fmt.Fprintf(out, "\nReports:\n  %s\n  %s\n  %s\n", run.Reports.JSON, run.Reports.CSV, run.Reports.HTML)
			}

			if errors.Is(err, context.Canceled) {
				return fmt.Errorf("run interrupted: %w", err)
			}
			if err != nil {
				return err
			}
			if !run.Summary.Healthy() {
				return errRunFailed
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&policy, "policy", "", "acceptance policy (fixed, permissive, exact, tolerant); defaults to SMOKE_POLICY")
	cmd.Flags().StringArrayVar(&modules, "module", nil, "module to run, repeatable; defaults to every module")
	cmd.Flags().StringVar(&role, "role", string(config.RoleAdmin), "account to authenticate as (admin, vendor, customer)")
	cmd.Flags().StringVar(&reportDir, "report-dir", "", "directory for JSON, CSV and HTML reports; defaults to REPORT_DIR")
	return cmd
}
