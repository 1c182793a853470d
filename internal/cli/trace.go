package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/cinebox/internal/display"
	"github.com/roach88/cinebox/internal/vending"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Journal string
	RunID   string
	Event   string // optional - filter to one event
}

// TraceTick is one journaled tick in the timeline.
type TraceTick struct {
	Seq           int64                  `json:"seq"`
	Event         string                 `json:"event"`
	From          string                 `json:"from"`
	To            string                 `json:"to"`
	Consumed      bool                   `json:"consumed"`
	Credit        int                    `json:"credit"`
	Cursor        int                    `json:"cursor"`
	Notifications []vending.Notification `json:"notifications,omitempty"`
}

// TraceResult holds the trace output.
type TraceResult struct {
	RunID    string      `json:"run_id"`
	Timeline []TraceTick `json:"timeline"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show the tick timeline of a journaled run",
		Long: `Show every journaled tick of a run: the event, the state transition,
whether the event was consumed, and the notifications it produced.

Without --run the most recent run is shown.

Examples:
  cinebox trace --journal ./cinebox.db
  cinebox trace --journal ./cinebox.db --run 0190f3a2-... --event select
  cinebox trace --journal ./cinebox.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "path to SQLite journal (required)")
	_ = cmd.MarkFlagRequired("journal")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run to trace (default: latest)")
	cmd.Flags().StringVar(&opts.Event, "event", "", "only show ticks for this event")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var filter vending.Event
	if opts.Event != "" {
		ev, err := vending.ParseEvent(opts.Event)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --event", err)
		}
		filter = ev
	}

	st, err := openJournal(opts.Journal)
	if err != nil {
		return err
	}
	defer st.Close()

	runID := opts.RunID
	if runID == "" {
		run, err := st.LatestRun(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to find latest run", err)
		}
		runID = run.ID
	} else if _, err := st.ReadRun(ctx, runID); err != nil {
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	ticks, err := st.ReadTicks(ctx, runID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read ticks", err)
	}

	result := TraceResult{RunID: runID, Timeline: []TraceTick{}}
	for _, t := range ticks {
		if filter != vending.None && t.Event != filter {
			continue
		}
		result.Timeline = append(result.Timeline, TraceTick{
			Seq:           t.Seq,
			Event:         t.Event.String(),
			From:          t.Before.State.String(),
			To:            t.After.State.String(),
			Consumed:      t.Consumed,
			Credit:        t.After.Credit,
			Cursor:        t.After.Cursor,
			Notifications: t.Notifications,
		})
	}

	formatter := newFormatter(opts.RootOptions, cmd)
	if opts.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "Run: %s\n", result.RunID)
	if len(result.Timeline) == 0 {
		fmt.Fprintln(w, "No ticks recorded.")
		return nil
	}
	fmt.Fprintln(w)
	for _, t := range result.Timeline {
		disposition := "held"
		if t.Consumed {
			disposition = "consumed"
		}
		fmt.Fprintf(w, "#%d %s %s -> %s %s credit=%d cursor=%d\n",
			t.Seq, t.Event, t.From, t.To, disposition, t.Credit, t.Cursor)
		for _, n := range t.Notifications {
			fmt.Fprintf(w, "  > %s\n", display.Format(n))
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d tick(s)\n", len(result.Timeline))
	return nil
}
