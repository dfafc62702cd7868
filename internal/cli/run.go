package cli

import (
	"fmt"
	"io"

	"github.com/Klingon-tech/klingnet-lockup/internal/event"
	"github.com/Klingon-tech/klingnet-lockup/internal/metrics"
	"github.com/Klingon-tech/klingnet-lockup/internal/scenario"
	"github.com/Klingon-tech/klingnet-lockup/internal/token"
	"github.com/spf13/cobra"
)

// NewRunCommand creates the run command.
func NewRunCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run <scenario.yaml>...",
		Short: "Run lockup scenarios",
		Long: "Run each scenario against a fresh token with a manual clock.\n" +
			"Committed receipts go to the journal when it is enabled.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(cmd, opts, args)
		},
	}
}

func runScenarios(cmd *cobra.Command, opts *RootOptions, paths []string) error {
	cfg := opts.Config
	out := cmd.OutOrStdout()

	owner, err := cfg.OwnerAddress()
	if err != nil {
		return WrapExitError(ExitCommandError, "token.owner", err)
	}
	runOpts := []scenario.Option{
		scenario.WithTokenDefaults(token.Config{
			Name:     cfg.Token.Name,
			Symbol:   cfg.Token.Symbol,
			Decimals: cfg.Token.Decimals,
			Cap:      cfg.Token.Cap,
			Owner:    owner,
		}),
	}

	if cfg.Journal.Enabled {
		j, closeDB, err := openJournal(opts, true)
		if err != nil {
			return WrapExitError(ExitCommandError, "journal", err)
		}
		defer closeDB()
		runOpts = append(runOpts, scenario.WithSink(j))
	}

	var m *metrics.Metrics
	reg := metrics.NewRegistry()
	if cfg.Metrics.Enabled {
		m = metrics.New()
		if err := m.Register(reg); err != nil {
			return WrapExitError(ExitCommandError, "register metrics", err)
		}
		runOpts = append(runOpts, scenario.WithMetrics(m))
	}

	var reports []*scenario.Report
	failed := 0
	for _, path := range paths {
		s, err := scenario.Load(path)
		if err != nil {
			return WrapExitError(ExitCommandError, path, err)
		}
		rep, err := scenario.Run(s, runOpts...)
		if err != nil {
			return WrapExitError(ExitCommandError, path, err)
		}
		if !rep.Passed() {
			failed++
		}
		reports = append(reports, rep)
		if !opts.JSON {
			printReport(out, rep)
		}
	}

	if opts.JSON {
		if err := writeJSON(out, reports); err != nil {
			return err
		}
	}
	if m != nil && !opts.JSON {
		fmt.Fprintln(out)
		if err := metrics.WriteText(out, reg); err != nil {
			return WrapExitError(ExitCommandError, "write metrics", err)
		}
	}
	if failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d scenarios failed", failed, len(paths)))
	}
	return nil
}

func printReport(w io.Writer, rep *scenario.Report) {
	status := "PASS"
	if !rep.Passed() {
		status = "FAIL"
	}
	fmt.Fprintf(w, "%s %s\n", status, rep.Name)
	for _, st := range rep.Steps {
		switch st.Kind {
		case scenario.KindAdvance:
			fmt.Fprintf(w, "  %3d  advance -> %s\n", st.Index, st.Time.Format("2006-01-02T15:04:05Z07:00"))
		case scenario.KindCheck:
			fmt.Fprintf(w, "  %3d  check\n", st.Index)
		default:
			fmt.Fprintf(w, "  %3d  %-22s %s\n", st.Index, st.Op, describe(st))
		}
		if st.Failure != "" {
			fmt.Fprintf(w, "       ! %s\n", st.Failure)
		}
	}
}

func describe(st scenario.StepResult) string {
	if st.Err != "" {
		return "error: " + st.Err
	}
	if st.Receipt == nil {
		return ""
	}
	kinds := make(map[event.Kind]int)
	var order []event.Kind
	for _, e := range st.Receipt.Events {
		if kinds[e.Kind] == 0 {
			order = append(order, e.Kind)
		}
		kinds[e.Kind]++
	}
	s := ""
	for i, k := range order {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%s x%d", k, kinds[k])
	}
	return s
}
