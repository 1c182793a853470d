package harness

import "github.com/roach88/cinebox/internal/vending"

// TraceEvent is one non-idle tick as seen by the scenario.
type TraceEvent struct {
	Seq      int64    `json:"seq"`
	Event    string   `json:"event"`
	From     string   `json:"from"`
	To       string   `json:"to"`
	Consumed bool     `json:"consumed"`
	Credit   int      `json:"credit"`
	Cursor   int      `json:"cursor"`
	Kinds    []string `json:"kinds,omitempty"`
	Output   []string `json:"output,omitempty"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every expectation, assertion and the journal replay
	// succeeded.
	Pass bool `json:"pass"`

	// Trace lists every tick that processed an event, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors holds one message per failed check.
	Errors []string `json:"errors,omitempty"`

	// Final is the machine state after the last step.
	Final vending.MachineState `json:"final"`

	// Pending is the event still in the mailbox after the last step.
	Pending vending.Event `json:"pending"`
}

// NewResult creates a passing result with an empty trace.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError records a failed check and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Output returns every notification line in the trace, in order.
func (r *Result) Output() []string {
	var out []string
	for _, ev := range r.Trace {
		out = append(out, ev.Output...)
	}
	return out
}
