package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/cinebox/internal/config"
)

// ValidationResult is the validate command's output.
type ValidationResult struct {
	Valid    bool   `json:"valid"`
	File     string `json:"file"`
	Sessions int    `json:"sessions,omitempty"`
	Buttons  int    `json:"buttons,omitempty"`
	Tick     string `json:"tick_interval,omitempty"`

	Code   string `json:"code,omitempty"`
	Error  string `json:"error,omitempty"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <config.cue>",
		Short: "Validate a machine configuration",
		Long: `Check a CUE machine configuration against the schema without starting
the machine: syntax, field types, button wiring completeness and catalog
entries.

Exit codes:
  0 - Configuration is valid
  1 - Configuration is invalid
  2 - Command error (file not found, etc.)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	cfg, err := config.Load(path)
	if err != nil {
		return outputValidationError(formatter, path, err)
	}

	formatter.VerboseLog("Loaded %s", path)

	result := ValidationResult{
		Valid:    true,
		File:     path,
		Sessions: cfg.Catalog.Len(),
		Buttons:  len(cfg.Buttons.Channels()),
		Tick:     cfg.TickInterval.String(),
	}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ %s valid (%d sessions, %d buttons, tick %s)\n",
		path, result.Sessions, result.Buttons, result.Tick)
	return nil
}

func outputValidationError(formatter *OutputFormatter, path string, err error) error {
	result := ValidationResult{File: path, Code: "CONFIG_ERROR", Error: err.Error()}

	var cfgErr *config.Error
	if errors.As(err, &cfgErr) {
		result.Code = cfgErr.Code
		result.Error = cfgErr.Message
		if cfgErr.Pos.IsValid() {
			result.Line = cfgErr.Pos.Line()
			result.Column = cfgErr.Pos.Column()
		}
	}

	_ = formatter.Error(result.Code, err.Error(), result)

	if result.Code == config.ErrCodeNotFound {
		return WrapExitError(ExitCommandError, "config not found", err)
	}
	return WrapExitError(ExitFailure, "invalid config", err)
}
