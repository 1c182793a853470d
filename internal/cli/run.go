package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/cinebox/internal/display"
	"github.com/roach88/cinebox/internal/input"
	"github.com/roach88/cinebox/internal/journal"
	"github.com/roach88/cinebox/internal/vending"
)

// drainTicks bounds how long run waits for the last press to be handled
// after the input ends. Ignored events stay pending forever.
const drainTicks = 10

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Config  string
	Journal string
	Tick    time.Duration
	Input   string
	Pace    time.Duration

	// TicketIDs overrides the ticket ID generator (for testing).
	// If nil, defaults to vending.UUIDv7Generator.
	TicketIDs vending.TicketIDGenerator
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the vending machine",
		Long: `Run the vending machine, reading button presses as text.

Each whitespace-separated token is one press: a channel number on the
configured wiring (1-8 by default) or an event name (coin1, coin2, coin5,
coin10, up, down, select, return). "quit" or end of input stops the machine.
Notifications are written to stdout.

Example:
  cinebox run
  cinebox run --config machine.cue --journal ./cinebox.db
  echo "coin10 up select" | cinebox run --pace 50ms --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMachine(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Config, "config", "", "machine configuration (CUE)")
	cmd.Flags().StringVar(&opts.Journal, "journal", "", "record every tick to this SQLite journal")
	cmd.Flags().DurationVar(&opts.Tick, "tick", 0, "tick interval (default from config, 10ms)")
	cmd.Flags().StringVar(&opts.Input, "input", "", "read presses from a file instead of stdin")
	cmd.Flags().DurationVar(&opts.Pace, "pace", 0, "delay between presses (default 5 ticks with --input)")

	return cmd
}

func runMachine(opts *RunOptions, cmd *cobra.Command) error {
	cfg, err := loadConfig(opts.Config)
	if err != nil {
		return err
	}

	interval := cfg.TickInterval
	if opts.Tick > 0 {
		interval = opts.Tick
	}

	sink, err := display.New(opts.Format, cmd.OutOrStdout())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create display", err)
	}

	var in io.Reader = cmd.InOrStdin()
	pace := opts.Pace
	if opts.Input != "" {
		f, err := os.Open(opts.Input)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open input", err)
		}
		defer f.Close()
		in = f
		if pace == 0 {
			pace = 5 * interval
		}
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	engineOpts := []vending.Option{
		vending.WithTickInterval(interval),
		vending.WithLogger(slog.Default()),
	}
	if opts.TicketIDs != nil {
		engineOpts = append(engineOpts, vending.WithTicketIDs(opts.TicketIDs))
	}

	if opts.Journal != "" {
		st, err := journal.Open(opts.Journal)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				slog.Error("error closing journal", "error", closeErr)
			}
		}()

		runID := vending.UUIDv7Generator{}.Generate()
		rec, err := st.StartRun(ctx, runID, cfg.Catalog, time.Now())
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to start journal run", err)
		}
		engineOpts = append(engineOpts, vending.WithRecorder(rec))
		fmt.Fprintf(cmd.ErrOrStderr(), "journal run %s\n", runID)
	}

	eng := vending.New(cfg.Catalog, engineOpts...)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	engineDone := make(chan error, 1)
	go func() {
		engineDone <- eng.Run(ctx, sink)
	}()

	// The source runs in its own goroutine: a read from a terminal cannot be
	// interrupted, and a signal must still stop the machine.
	src := input.NewLineSource(in, cfg.Buttons, eng, input.WithPace(pace))
	srcDone := make(chan error, 1)
	go func() {
		srcDone <- src.Run(ctx)
	}()

	var srcErr error
	select {
	case srcErr = <-srcDone:
		if srcErr == nil {
			drain(ctx, eng, interval)
		}
	case <-ctx.Done():
		srcErr = ctx.Err()
	}

	cancel()
	if err := <-engineDone; err != nil && !errors.Is(err, context.Canceled) {
		return WrapExitError(ExitFailure, "engine error", err)
	}
	if srcErr != nil && !errors.Is(srcErr, context.Canceled) {
		return WrapExitError(ExitFailure, "input error", srcErr)
	}

	slog.Info("machine stopped", "state", eng.CurrentState().String(), "credit", eng.Snapshot().Credit)
	return nil
}

// drain waits for the pending event to be handled, for at most drainTicks
// tick intervals.
func drain(ctx context.Context, eng *vending.Engine, interval time.Duration) {
	deadline := time.NewTimer(drainTicks * interval)
	defer deadline.Stop()
	poll := time.NewTicker(interval)
	defer poll.Stop()

	for eng.Pending() != vending.None {
		select {
		case <-ctx.Done():
			return
		case <-deadline.C:
			slog.Debug("pending event left unhandled", "event", eng.Pending().String())
			return
		case <-poll.C:
		}
	}
}
