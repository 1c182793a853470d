package harness

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarios_Golden(t *testing.T) {
	files, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		name := strings.TrimSuffix(filepath.Base(file), ".yaml")
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario(file)
			require.NoError(t, err)
			assert.Equal(t, name, scenario.Name, "scenario name must match its file name")

			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestTranscript_Deterministic(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/two_tickets.yaml")
	require.NoError(t, err)

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	assert.Equal(t, Transcript(scenario.Name, first), Transcript(scenario.Name, second))
}

func TestTranscript_Format(t *testing.T) {
	result := NewResult()
	result.Trace = append(result.Trace,
		TraceEvent{Seq: 1, Event: "coin2", From: "start", To: "insert_coin", Credit: 0},
		TraceEvent{Seq: 2, Event: "coin2", From: "insert_coin", To: "insert_coin", Consumed: true, Credit: 2,
			Output: []string{"current credit = 2"}},
	)
	result.Final.Credit = 2

	want := "scenario: demo\n" +
		"#1 coin2 start -> insert_coin held credit=0 cursor=0\n" +
		"#2 coin2 insert_coin -> insert_coin consumed credit=2 cursor=0\n" +
		"  > current credit = 2\n" +
		"final: start credit=2 cursor=0 pending=none\n"
	assert.Equal(t, want, string(Transcript("demo", result)))
}
