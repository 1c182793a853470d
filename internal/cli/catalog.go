package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/cinebox/internal/catalog"
)

// CatalogOptions holds flags for the catalog command.
type CatalogOptions struct {
	*RootOptions
	Config string
}

// CatalogEntry is one session in the catalog listing.
type CatalogEntry struct {
	Index int `json:"index"`
	catalog.MovieSession
}

// CatalogResult is the catalog command's output.
type CatalogResult struct {
	Hash     string         `json:"hash"`
	Sessions []CatalogEntry `json:"sessions"`
}

// NewCatalogCommand creates the catalog command.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CatalogOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Print the active catalog",
		Long: `Print the movie sessions the machine sells, in browse order, with
the catalog hash recorded in journals.

Examples:
  cinebox catalog
  cinebox catalog --config machine.cue --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalog(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Config, "config", "", "machine configuration (CUE)")

	return cmd
}

func runCatalog(opts *CatalogOptions, cmd *cobra.Command) error {
	cfg, err := loadConfig(opts.Config)
	if err != nil {
		return err
	}

	hash, err := cfg.Catalog.Hash()
	if err != nil {
		return WrapExitError(ExitFailure, "failed to hash catalog", err)
	}

	result := CatalogResult{Hash: hash, Sessions: make([]CatalogEntry, 0, cfg.Catalog.Len())}
	for i, s := range cfg.Catalog.Sessions() {
		result.Sessions = append(result.Sessions, CatalogEntry{Index: i, MovieSession: s})
	}

	formatter := newFormatter(opts.RootOptions, cmd)
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	tw := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tNAME\tSHOWTIME\tPRICE")
	for _, e := range result.Sessions {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", e.Index, e.Name, e.Showtime, e.Price)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(formatter.Writer, "hash: %s\n", result.Hash)
	return nil
}
