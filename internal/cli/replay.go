package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/cinebox/internal/journal"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Journal string
	RunID   string // optional - specific run only
}

// ReplayRunResult holds the replay result for a single run.
type ReplayRunResult struct {
	RunID         string   `json:"run_id"`
	EngineVersion string   `json:"engine_version"`
	Ticks         int      `json:"ticks"`
	Tickets       int      `json:"tickets"`
	FinalState    string   `json:"final_state"`
	FinalCredit   int      `json:"final_credit"`
	Deterministic bool     `json:"deterministic"`
	Mismatches    []string `json:"mismatches,omitempty"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Runs             []ReplayRunResult `json:"runs"`
	TotalRuns        int               `json:"total_runs"`
	AllDeterministic bool              `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay a journal and verify determinism",
		Long: `Feed every journaled event back through the state machine, starting
from power-up, and check that each tick reproduces the recorded states and
notifications.

Exit codes:
  0 - All runs are deterministic
  1 - At least one run diverged
  2 - Command error (journal not found, unknown run, etc.)

Examples:
  cinebox replay --journal ./cinebox.db
  cinebox replay --journal ./cinebox.db --run 0190f3a2-...
  cinebox replay --journal ./cinebox.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "path to SQLite journal (required)")
	_ = cmd.MarkFlagRequired("journal")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "replay a specific run only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := openJournal(opts.Journal)
	if err != nil {
		return err
	}
	defer st.Close()

	var runIDs []string
	if opts.RunID != "" {
		runIDs = []string{opts.RunID}
	} else {
		runs, err := st.ListRuns(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list runs", err)
		}
		for _, r := range runs {
			runIDs = append(runIDs, r.ID)
		}
	}

	formatter := newFormatter(opts.RootOptions, cmd)
	result := ReplayResult{
		Runs:             make([]ReplayRunResult, 0, len(runIDs)),
		TotalRuns:        len(runIDs),
		AllDeterministic: true,
	}

	if len(runIDs) == 0 {
		if opts.Format == "json" {
			return outputReplayJSON(formatter, result)
		}
		fmt.Fprintln(formatter.Writer, "No runs found in journal.")
		return nil
	}

	for _, id := range runIDs {
		rr, err := replayRun(ctx, st, id)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay run %s", id), err)
		}
		formatter.VerboseLog("replayed run %s: %d ticks", id, rr.Ticks)

		result.Runs = append(result.Runs, rr)
		if !rr.Deterministic {
			result.AllDeterministic = false
		}
	}

	if opts.Format == "json" {
		return outputReplayJSON(formatter, result)
	}
	return outputReplayText(formatter, result)
}

func replayRun(ctx context.Context, st *journal.Store, runID string) (ReplayRunResult, error) {
	run, err := st.ReadRun(ctx, runID)
	if err != nil {
		return ReplayRunResult{}, err
	}

	res, err := st.Verify(ctx, runID)
	rr := ReplayRunResult{
		RunID:         runID,
		EngineVersion: run.EngineVersion,
		Ticks:         res.Ticks,
		Tickets:       res.Tickets,
		FinalState:    res.Final.State.String(),
		FinalCredit:   res.Final.Credit,
		Deterministic: true,
	}

	var mm *journal.MismatchError
	switch {
	case err == nil:
	case errors.As(err, &mm):
		rr.Deterministic = false
		for _, m := range mm.Mismatches {
			rr.Mismatches = append(rr.Mismatches, m.String())
		}
	default:
		return ReplayRunResult{}, err
	}
	return rr, nil
}

func outputReplayJSON(formatter *OutputFormatter, result ReplayResult) error {
	response := CLIResponse{Status: "ok", Data: result}
	if !result.AllDeterministic {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    "E_DETERMINISM",
			Message: "determinism verification failed",
		}
	}

	if err := formatter.JSON(response); err != nil {
		return err
	}
	if !result.AllDeterministic {
		return NewExitError(ExitFailure, "determinism verification failed")
	}
	return nil
}

func outputReplayText(formatter *OutputFormatter, result ReplayResult) error {
	w := formatter.Writer

	fmt.Fprintf(w, "Replay Summary: %d run(s)\n", result.TotalRuns)
	fmt.Fprintln(w)

	for _, r := range result.Runs {
		status := "✓"
		if !r.Deterministic {
			status = "✗"
		}
		fmt.Fprintf(w, "%s %s: %d ticks, %d tickets, final %s credit=%d\n",
			status, r.RunID, r.Ticks, r.Tickets, r.FinalState, r.FinalCredit)
		for _, m := range r.Mismatches {
			fmt.Fprintf(w, "    %s\n", m)
		}
	}

	fmt.Fprintln(w)
	if !result.AllDeterministic {
		fmt.Fprintln(w, "✗ Determinism verification FAILED")
		return NewExitError(ExitFailure, "determinism verification failed")
	}
	fmt.Fprintln(w, "✓ All runs deterministic")
	return nil
}
