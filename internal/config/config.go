// Package config loads the machine configuration.
//
// Configuration is written in CUE and unified with an embedded schema
// (#Machine) before it is decoded, so unknown fields, negative prices and
// mistyped events are reported with file positions:
//
//	tick_interval: "10ms"
//	buttons: {
//	    "1": "coin1"
//	    "2": "coin2"
//	    ...
//	}
//	catalog: [
//	    {name: "Movie A", showtime: "19H00", price: 9},
//	]
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/cinebox/internal/catalog"
	"github.com/roach88/cinebox/internal/input"
	"github.com/roach88/cinebox/internal/vending"
)

//go:embed schema.cue
var schemaCUE string

// Config is the resolved machine configuration.
type Config struct {
	TickInterval time.Duration
	Buttons      *input.ButtonMap
	Catalog      *catalog.Catalog
}

// Default returns the reference machine: 10ms ticks, 8-button wiring and the
// five-session catalog.
func Default() Config {
	return Config{
		TickInterval: vending.DefaultTickInterval,
		Buttons:      input.DefaultButtonMap(),
		Catalog:      catalog.Default(),
	}
}

// fileConfig mirrors #Machine. Field names follow the json tags, which is
// what cue.Value.Decode matches on.
type fileConfig struct {
	TickInterval string                 `json:"tick_interval,omitempty"`
	Buttons      map[string]string      `json:"buttons,omitempty"`
	Catalog      []catalog.MovieSession `json:"catalog,omitempty"`
}

// Load reads and validates a CUE configuration file.
// An empty path returns Default().
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, &Error{Code: ErrCodeNotFound, Message: fmt.Sprintf("read config: %v", err)}
	}
	return Parse(path, data)
}

// Parse validates CUE source against the schema and resolves it.
// filename is used only for error positions.
func Parse(filename string, src []byte) (Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Config{}, fmt.Errorf("compile embedded schema: %w", err)
	}

	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return Config{}, formatCUEError(ErrCodeSyntax, err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Machine")).Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return Config{}, formatCUEError(ErrCodeSchema, err)
	}

	var fc fileConfig
	if err := unified.Decode(&fc); err != nil {
		return Config{}, formatCUEError(ErrCodeSchema, err)
	}

	return resolve(fc)
}

// resolve applies defaults and builds the runtime values.
func resolve(fc fileConfig) (Config, error) {
	cfg := Default()

	if fc.TickInterval != "" {
		d, err := time.ParseDuration(fc.TickInterval)
		if err != nil {
			return Config{}, &Error{Code: ErrCodeInvalid, Message: fmt.Sprintf("tick_interval: %v", err)}
		}
		if d <= 0 {
			return Config{}, &Error{Code: ErrCodeInvalid, Message: "tick_interval must be positive"}
		}
		cfg.TickInterval = d
	}

	if len(fc.Buttons) > 0 {
		table := make(map[int]vending.Event, len(fc.Buttons))
		for ch, name := range fc.Buttons {
			n, err := strconv.Atoi(ch)
			if err != nil {
				return Config{}, &Error{Code: ErrCodeInvalid, Message: fmt.Sprintf("buttons: channel %q: %v", ch, err)}
			}
			ev, err := vending.ParseEvent(name)
			if err != nil {
				return Config{}, &Error{Code: ErrCodeInvalid, Message: fmt.Sprintf("buttons: channel %d: %v", n, err)}
			}
			table[n] = ev
		}
		m, err := input.NewButtonMap(table)
		if err != nil {
			return Config{}, &Error{Code: ErrCodeInvalid, Message: fmt.Sprintf("buttons: %v", err)}
		}
		cfg.Buttons = m
	}

	if len(fc.Catalog) > 0 {
		cat, err := catalog.New(fc.Catalog)
		if err != nil {
			return Config{}, &Error{Code: ErrCodeInvalid, Message: fmt.Sprintf("catalog: %v", err)}
		}
		cfg.Catalog = cat
	}

	return cfg, nil
}
