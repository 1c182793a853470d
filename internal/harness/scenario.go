package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/cinebox/internal/catalog"
	"github.com/roach88/cinebox/internal/input"
	"github.com/roach88/cinebox/internal/vending"
)

// Scenario is one scripted session at the machine.
type Scenario struct {
	// Name identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	Description string `yaml:"description"`

	// Catalog replaces the reference catalog when non-empty.
	Catalog []catalog.MovieSession `yaml:"catalog,omitempty"`

	// Steps run in order.
	Steps []Step `yaml:"steps"`

	// Assertions are evaluated against the full trace after the last step.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is exactly one of send, press, tick, feed or expect.
type Step struct {
	// Send makes the named event pending without ticking.
	Send string `yaml:"send,omitempty"`

	// Press makes the event wired to this channel pending without ticking.
	Press *int `yaml:"press,omitempty"`

	// Tick runs this many ticks.
	Tick int `yaml:"tick,omitempty"`

	// Feed sends the named event and ticks until it is consumed or ignored.
	Feed string `yaml:"feed,omitempty"`

	// Expect checks the machine after the preceding steps.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect is a checkpoint. Unset fields are not checked.
type Expect struct {
	State   string `yaml:"state,omitempty"`
	Credit  *int   `yaml:"credit,omitempty"`
	Cursor  *int   `yaml:"cursor,omitempty"`
	Pending string `yaml:"pending,omitempty"`

	// Output lists the exact notification lines rendered since the previous
	// expect (or the start of the scenario).
	Output []string `yaml:"output,omitempty"`

	// Silent asserts that nothing was rendered since the previous expect.
	Silent bool `yaml:"silent,omitempty"`
}

// Assertion validates the complete trace or the final machine.
type Assertion struct {
	// Type is one of trace_contains, trace_order, trace_count, final_state.
	Type string `yaml:"type"`

	// Text is a notification line (trace_contains).
	Text string `yaml:"text,omitempty"`

	// Texts are notification lines that must appear in this order,
	// not necessarily adjacent (trace_order).
	Texts []string `yaml:"texts,omitempty"`

	// Kind and Count: the number of notifications of a kind (trace_count).
	Kind  string `yaml:"kind,omitempty"`
	Count int    `yaml:"count,omitempty"`

	// Final machine fields (final_state).
	State   string `yaml:"state,omitempty"`
	Credit  *int   `yaml:"credit,omitempty"`
	Cursor  *int   `yaml:"cursor,omitempty"`
	Pending string `yaml:"pending,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalState    = "final_state"
)

// LoadScenario reads and validates a scenario file. Unknown fields are
// rejected so that typos do not silently disable checks.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates a scenario document.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps must not be empty")
	}
	if len(s.Catalog) > 0 {
		if _, err := catalog.New(s.Catalog); err != nil {
			return fmt.Errorf("catalog: %w", err)
		}
	}

	buttons := input.DefaultButtonMap()
	for i, step := range s.Steps {
		if err := validateStep(i, step, buttons); err != nil {
			return err
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, step Step, buttons *input.ButtonMap) error {
	actions := 0
	if step.Send != "" {
		actions++
		if err := validateEventName(step.Send); err != nil {
			return fmt.Errorf("steps[%d]: send: %w", index, err)
		}
	}
	if step.Feed != "" {
		actions++
		if err := validateEventName(step.Feed); err != nil {
			return fmt.Errorf("steps[%d]: feed: %w", index, err)
		}
	}
	if step.Press != nil {
		actions++
		if _, err := buttons.Event(*step.Press); err != nil {
			return fmt.Errorf("steps[%d]: press: %w", index, err)
		}
	}
	if step.Tick != 0 {
		actions++
		if step.Tick < 0 {
			return fmt.Errorf("steps[%d]: tick must be positive", index)
		}
	}
	if step.Expect != nil {
		actions++
		if err := validateExpect(index, step.Expect); err != nil {
			return err
		}
	}

	if actions != 1 {
		return fmt.Errorf("steps[%d]: exactly one of send, press, tick, feed, expect is required (got %d)", index, actions)
	}
	return nil
}

func validateExpect(index int, e *Expect) error {
	if e.State != "" {
		if _, err := vending.ParseState(e.State); err != nil {
			return fmt.Errorf("steps[%d]: expect: %w", index, err)
		}
	}
	if e.Pending != "" {
		if _, err := vending.ParseEvent(e.Pending); err != nil {
			return fmt.Errorf("steps[%d]: expect: pending: %w", index, err)
		}
	}
	if e.Silent && len(e.Output) > 0 {
		return fmt.Errorf("steps[%d]: expect: silent and output are mutually exclusive", index)
	}
	return nil
}

func validateEventName(name string) error {
	ev, err := vending.ParseEvent(name)
	if err != nil {
		return err
	}
	if ev == vending.None {
		return fmt.Errorf("event %q cannot be sent", name)
	}
	return nil
}

func validateAssertion(index int, a Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Texts) == 0 {
			return fmt.Errorf("assertions[%d]: texts list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Kind == "" {
			return fmt.Errorf("assertions[%d]: kind is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertFinalState:
		if a.State == "" && a.Credit == nil && a.Cursor == nil && a.Pending == "" {
			return fmt.Errorf("assertions[%d]: final_state needs at least one of state, credit, cursor, pending", index)
		}
		if a.State != "" {
			if _, err := vending.ParseState(a.State); err != nil {
				return fmt.Errorf("assertions[%d]: %w", index, err)
			}
		}
		if a.Pending != "" {
			if _, err := vending.ParseEvent(a.Pending); err != nil {
				return fmt.Errorf("assertions[%d]: pending: %w", index, err)
			}
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
