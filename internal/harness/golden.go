package harness

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Transcript renders a result as the text stored in golden files.
//
//	scenario: buy_ticket
//	#1 coin10 start -> insert_coin held credit=0 cursor=0
//	#2 coin10 insert_coin -> insert_coin consumed credit=10 cursor=0
//	  > current credit = 10
//	final: insert_coin credit=10 cursor=0 pending=none
func Transcript(name string, result *Result) []byte {
	var buf strings.Builder
	fmt.Fprintf(&buf, "scenario: %s\n", name)
	writeTrace(&buf, result.Trace)
	fmt.Fprintf(&buf, "final: %s credit=%d cursor=%d pending=%s\n",
		result.Final.State, result.Final.Credit, result.Final.Cursor, result.Pending)
	return []byte(buf.String())
}

func writeTrace(w io.Writer, trace []TraceEvent) {
	for _, ev := range trace {
		disposition := "held"
		if ev.Consumed {
			disposition = "consumed"
		}
		fmt.Fprintf(w, "#%d %s %s -> %s %s credit=%d cursor=%d\n",
			ev.Seq, ev.Event, ev.From, ev.To, disposition, ev.Credit, ev.Cursor)
		for _, line := range ev.Output {
			fmt.Fprintf(w, "  > %s\n", line)
		}
	}
}

// RunWithGolden runs scenario and compares its transcript against
// testdata/golden/<name>.golden. Regenerate with:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	AssertGolden(t, scenario.Name, result)
	return result, nil
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, Transcript(name, result))
}
