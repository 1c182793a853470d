package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/cinebox/internal/config"
	"github.com/roach88/cinebox/internal/journal"
)

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// loadConfig loads the machine configuration. A missing file is a command
// error; a file that fails the schema is a failure.
func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}

	var cfgErr *config.Error
	if errors.As(err, &cfgErr) && cfgErr.Code != config.ErrCodeNotFound {
		return config.Config{}, WrapExitError(ExitFailure, "invalid config", err)
	}
	return config.Config{}, WrapExitError(ExitCommandError, "failed to load config", err)
}

// openJournal opens an existing journal for reading.
func openJournal(path string) (*journal.Store, error) {
	if path == "" {
		return nil, NewExitError(ExitCommandError, "--journal is required")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("journal not found: %s", path), err)
	}
	st, err := journal.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	return st, nil
}
