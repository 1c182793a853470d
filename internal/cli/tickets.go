package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// TicketsOptions holds flags for the tickets command.
type TicketsOptions struct {
	*RootOptions
	Journal string
	RunID   string
}

// TicketRow is one issued ticket in the listing.
type TicketRow struct {
	ID              string `json:"id"`
	RunID           string `json:"run_id"`
	Seq             int64  `json:"seq"`
	Name            string `json:"name"`
	Showtime        string `json:"showtime"`
	Price           int    `json:"price"`
	RemainingCredit int    `json:"remaining_credit"`
}

// TicketsResult holds the tickets output.
type TicketsResult struct {
	Tickets []TicketRow `json:"tickets"`
	Total   int         `json:"total"`
	Revenue int         `json:"revenue"`
}

// NewTicketsCommand creates the tickets command.
func NewTicketsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TicketsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "tickets",
		Short: "List issued tickets",
		Long: `List the tickets recorded in a journal, in issue order.

Examples:
  cinebox tickets --journal ./cinebox.db
  cinebox tickets --journal ./cinebox.db --run 0190f3a2-... --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTickets(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "path to SQLite journal (required)")
	_ = cmd.MarkFlagRequired("journal")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "only tickets from this run")

	return cmd
}

func runTickets(opts *TicketsOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := openJournal(opts.Journal)
	if err != nil {
		return err
	}
	defer st.Close()

	if opts.RunID != "" {
		if _, err := st.ReadRun(ctx, opts.RunID); err != nil {
			return WrapExitError(ExitCommandError, "failed to read run", err)
		}
	}

	tickets, err := st.ListTickets(ctx, opts.RunID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list tickets", err)
	}

	result := TicketsResult{Tickets: make([]TicketRow, 0, len(tickets)), Total: len(tickets)}
	for _, t := range tickets {
		result.Tickets = append(result.Tickets, TicketRow{
			ID:              t.ID,
			RunID:           t.RunID,
			Seq:             t.Seq,
			Name:            t.Session.Name,
			Showtime:        t.Session.Showtime,
			Price:           t.Session.Price,
			RemainingCredit: t.RemainingCredit,
		})
		result.Revenue += t.Session.Price
	}

	formatter := newFormatter(opts.RootOptions, cmd)
	if opts.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	if result.Total == 0 {
		fmt.Fprintln(w, "No tickets issued.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TICKET\tMOVIE\tSESSION\tPRICE\tREMAINING")
	for _, t := range result.Tickets {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\n", t.ID, t.Name, t.Showtime, t.Price, t.RemainingCredit)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\n%d ticket(s), revenue %d\n", result.Total, result.Revenue)
	return nil
}
