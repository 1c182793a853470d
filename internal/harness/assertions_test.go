package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cinebox/internal/vending"
)

func sampleTrace() []TraceEvent {
	return []TraceEvent{
		{Seq: 1, Event: "coin5", From: "start", To: "insert_coin"},
		{Seq: 2, Event: "coin5", From: "insert_coin", To: "insert_coin", Consumed: true, Credit: 5,
			Kinds: []string{"credit_update"}, Output: []string{"current credit = 5"}},
		{Seq: 3, Event: "return", From: "insert_coin", To: "insert_coin", Consumed: true,
			Kinds: []string{"return_confirmed", "credit_update"}, Output: []string{"5 returned", "current credit = 0"}},
	}
}

func intPtr(v int) *int { return &v }

func TestAssertTraceContains(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceContains(trace, Assertion{Text: "5 returned"}))

	err := assertTraceContains(trace, Assertion{Text: "6 returned"})
	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, AssertTraceContains, ae.Type)
	assert.Contains(t, err.Error(), "Full trace:")
	assert.Contains(t, err.Error(), "#3 return")
}

func TestAssertTraceOrder(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceOrder(trace, Assertion{Texts: []string{"current credit = 5", "5 returned"}}))
	assert.NoError(t, assertTraceOrder(trace, Assertion{Texts: []string{"5 returned"}}))

	err := assertTraceOrder(trace, Assertion{Texts: []string{"5 returned", "current credit = 5"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "matched 1 of 2")
}

func TestAssertTraceCount(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceCount(trace, Assertion{Kind: "credit_update", Count: 2}))
	assert.NoError(t, assertTraceCount(trace, Assertion{Kind: "return_confirmed", Count: 1}))
	assert.NoError(t, assertTraceCount(trace, Assertion{Kind: "ticket_issued", Count: 0}))
	assert.Error(t, assertTraceCount(trace, Assertion{Kind: "credit_update", Count: 1}))
}

func TestAssertFinalState(t *testing.T) {
	result := NewResult()
	result.Final = vending.MachineState{State: vending.Browse, Credit: 3, Cursor: 2}
	result.Pending = vending.Select

	assert.NoError(t, assertFinalState(result, Assertion{State: "browse", Credit: intPtr(3), Cursor: intPtr(2), Pending: "select"}))

	err := assertFinalState(result, Assertion{State: "start", Credit: intPtr(0)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "state=browse (expected start)")
	assert.Contains(t, err.Error(), "credit=3 (expected 0)")
}

func TestEvaluateAssertions(t *testing.T) {
	result := NewResult()
	result.Trace = sampleTrace()

	errs := EvaluateAssertions(result, []Assertion{
		{Type: AssertTraceContains, Text: "current credit = 5"},
		{Type: AssertTraceCount, Kind: "return_confirmed", Count: 2},
		{Type: "bogus"},
	})

	require.Len(t, errs, 2)
	assert.Contains(t, errs[0], "assertions[1]")
	assert.Contains(t, errs[1], "assertions[2]")
	assert.Contains(t, errs[1], "unknown assertion type")
}
