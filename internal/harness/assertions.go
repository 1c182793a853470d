package harness

import (
	"fmt"
	"strings"
)

// AssertionError is a failed assertion with enough context to debug it.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []TraceEvent
}

func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		writeTrace(&buf, e.Trace)
	}
	return buf.String()
}

// EvaluateAssertions checks every assertion and returns one message per
// failure. An empty slice means all passed.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	errs := []string{}
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, a)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, a)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, a)
		case AssertFinalState:
			err = assertFinalState(result, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func assertTraceContains(trace []TraceEvent, a Assertion) error {
	for _, ev := range trace {
		for _, line := range ev.Output {
			if line == a.Text {
				return nil
			}
		}
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: fmt.Sprintf("line %q", a.Text),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks that the lines appear in order. Other lines may sit
// between them.
func assertTraceOrder(trace []TraceEvent, a Assertion) error {
	next := 0
	for _, ev := range trace {
		for _, line := range ev.Output {
			if next < len(a.Texts) && line == a.Texts[next] {
				next++
			}
		}
	}
	if next == len(a.Texts) {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceOrder,
		Expected: fmt.Sprintf("lines in order: %q", a.Texts),
		Actual:   fmt.Sprintf("matched %d of %d, missing %q", next, len(a.Texts), a.Texts[next]),
		Trace:    trace,
	}
}

func assertTraceCount(trace []TraceEvent, a Assertion) error {
	count := 0
	for _, ev := range trace {
		for _, kind := range ev.Kinds {
			if kind == a.Kind {
				count++
			}
		}
	}
	if count == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceCount,
		Expected: fmt.Sprintf("%d %s notifications", a.Count, a.Kind),
		Actual:   fmt.Sprintf("%d", count),
		Trace:    trace,
	}
}

func assertFinalState(result *Result, a Assertion) error {
	var mismatches []string
	ms := result.Final

	if a.State != "" && ms.State.String() != a.State {
		mismatches = append(mismatches, fmt.Sprintf("state=%s (expected %s)", ms.State, a.State))
	}
	if a.Credit != nil && ms.Credit != *a.Credit {
		mismatches = append(mismatches, fmt.Sprintf("credit=%d (expected %d)", ms.Credit, *a.Credit))
	}
	if a.Cursor != nil && ms.Cursor != *a.Cursor {
		mismatches = append(mismatches, fmt.Sprintf("cursor=%d (expected %d)", ms.Cursor, *a.Cursor))
	}
	if a.Pending != "" && result.Pending.String() != a.Pending {
		mismatches = append(mismatches, fmt.Sprintf("pending=%s (expected %s)", result.Pending, a.Pending))
	}

	if len(mismatches) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertFinalState,
		Expected: "final machine to match",
		Actual:   strings.Join(mismatches, ", "),
	}
}
