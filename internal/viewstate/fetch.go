// Package viewstate holds the dashboard's view state and the fetch state
// machine that drives every panel. Each panel moves through the phases
// idle -> loading -> success | error, driven by discrete events: a trigger
// (load, selection change, user action) begins a fetch, and completion either
// populates the panel's value or records an error string. The machine is
// independent of any UI framework; HTTP handlers and the WebSocket hub are
// just readers of it.
package viewstate

// Phase is the lifecycle state of one panel's fetch.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseSuccess Phase = "success"
	PhaseError   Phase = "error"
)

// PanelState is the externally visible snapshot of one panel.
type PanelState[T any] struct {
	Phase Phase  `json:"phase"`
	Value T      `json:"value"`
	Error string `json:"error,omitempty"`
}

// panel tracks one panel's fetch lifecycle. Transitions:
//
//	begin   : * -> loading, clearing any prior error
//	succeed : loading -> success, storing the value
//	fail    : loading -> error, zeroing the value and storing the message
//	reset   : * -> idle, zeroing everything
//
// Completion always leaves the phase out of loading, in both directions.
type panel[T any] struct {
	phase Phase
	value T
	err   string
}

func newPanel[T any]() panel[T] {
	return panel[T]{phase: PhaseIdle}
}

func (p *panel[T]) begin() {
	p.phase = PhaseLoading
	p.err = ""
}

func (p *panel[T]) succeed(v T) {
	p.value = v
	p.err = ""
	p.phase = PhaseSuccess
}

func (p *panel[T]) fail(err error) {
	var zero T
	p.value = zero
	p.err = err.Error()
	p.phase = PhaseError
}

func (p *panel[T]) reset() {
	var zero T
	p.value = zero
	p.err = ""
	p.phase = PhaseIdle
}

// state returns the panel as an exported snapshot value.
func (p *panel[T]) state() PanelState[T] {
	return PanelState[T]{Phase: p.phase, Value: p.value, Error: p.err}
}
