package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScenario_Valid(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: minimal
description: "one coin"
catalog:
  - {name: "Solo", showtime: "20H00", price: 3}
steps:
  - press: 1
  - tick: 2
  - expect:
      credit: 1
assertions:
  - type: final_state
    credit: 1
`))
	require.NoError(t, err)

	assert.Equal(t, "minimal", s.Name)
	require.Len(t, s.Catalog, 1)
	assert.Equal(t, "Solo", s.Catalog[0].Name)
	require.Len(t, s.Steps, 3)
	require.NotNil(t, s.Steps[0].Press)
	assert.Equal(t, 1, *s.Steps[0].Press)
	assert.Equal(t, 2, s.Steps[1].Tick)
	require.NotNil(t, s.Steps[2].Expect.Credit)
	assert.Equal(t, 1, *s.Steps[2].Expect.Credit)
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "unknown field",
			yaml:    "name: x\nstep:\n  - tick: 1\n",
			wantErr: "parse YAML",
		},
		{
			name:    "missing name",
			yaml:    "steps:\n  - tick: 1\n",
			wantErr: "name is required",
		},
		{
			name:    "no steps",
			yaml:    "name: x\n",
			wantErr: "steps must not be empty",
		},
		{
			name:    "two actions in one step",
			yaml:    "name: x\nsteps:\n  - send: coin1\n    tick: 1\n",
			wantErr: "exactly one of",
		},
		{
			name:    "empty step",
			yaml:    "name: x\nsteps:\n  - {}\n",
			wantErr: "exactly one of",
		},
		{
			name:    "unknown event",
			yaml:    "name: x\nsteps:\n  - send: coin3\n",
			wantErr: "steps[0]: send",
		},
		{
			name:    "none cannot be fed",
			yaml:    "name: x\nsteps:\n  - feed: none\n",
			wantErr: "cannot be sent",
		},
		{
			name:    "unwired channel",
			yaml:    "name: x\nsteps:\n  - press: 9\n",
			wantErr: "steps[0]: press",
		},
		{
			name:    "negative tick",
			yaml:    "name: x\nsteps:\n  - tick: -1\n",
			wantErr: "tick must be positive",
		},
		{
			name:    "bad expected state",
			yaml:    "name: x\nsteps:\n  - expect:\n      state: dispensing\n",
			wantErr: "steps[0]: expect",
		},
		{
			name:    "silent with output",
			yaml:    "name: x\nsteps:\n  - expect:\n      silent: true\n      output: [\"a\"]\n",
			wantErr: "mutually exclusive",
		},
		{
			name:    "invalid catalog",
			yaml:    "name: x\ncatalog:\n  - {name: \"\", showtime: \"19H00\", price: 1}\nsteps:\n  - tick: 1\n",
			wantErr: "catalog",
		},
		{
			name:    "unknown assertion type",
			yaml:    "name: x\nsteps:\n  - tick: 1\nassertions:\n  - type: final_credit\n",
			wantErr: "unknown assertion type",
		},
		{
			name:    "trace_count without kind",
			yaml:    "name: x\nsteps:\n  - tick: 1\nassertions:\n  - type: trace_count\n    count: 1\n",
			wantErr: "kind is required",
		},
		{
			name:    "empty final_state",
			yaml:    "name: x\nsteps:\n  - tick: 1\nassertions:\n  - type: final_state\n",
			wantErr: "at least one of",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read scenario file")
}

func TestLoadScenario_FromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: disk\nsteps:\n  - feed: coin2\n"), 0o644))

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "disk", s.Name)
	assert.Equal(t, "coin2", s.Steps[0].Feed)
}
