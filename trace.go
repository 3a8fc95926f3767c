package postfix

import (
	"encoding/json"

	"github.com/goliatone/go-postfix/adapter"
	"github.com/goliatone/go-postfix/value"
)

// Trace captures how every source on the probe chain contributed to one
// path lookup.
type Trace struct {
	Postfix string       `json:"postfix"`
	Path    string       `json:"path"`
	Chain   []string     `json:"chain"`
	Layers  []Provenance `json:"layers"`
	Value   any          `json:"value,omitempty"`
	Found   bool         `json:"found"`
}

// Provenance details what a single source holds at the traced path.
type Provenance struct {
	Postfix string `json:"postfix"`
	Name    string `json:"name,omitempty"`
	Loaded  bool   `json:"loaded"`
	Path    string `json:"path"`
	Value   any    `json:"value,omitempty"`
	Found   bool   `json:"found"`
}

// Contributors returns the postfixes that held a value, strongest first.
func (t Trace) Contributors() []string {
	var out []string
	for _, layer := range t.Layers {
		if layer.Found {
			out = append(out, layer.Postfix)
		}
	}
	return out
}

// Trace explains a lookup of path for postfix. Layers follow the probe
// order; Value is the effective result, which bypasses the lookup cache.
func (e *Engine) Trace(postfix, path string) (Trace, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.registry == nil {
		return Trace{}, ErrNotLoaded
	}
	probe := e.chain.Probe(postfix, true)
	trace := Trace{
		Postfix: postfix,
		Path:    path,
		Chain:   probe,
		Layers:  make([]Provenance, 0, len(probe)),
	}
	for _, candidate := range probe {
		layer := Provenance{
			Postfix: candidate,
			Name:    e.registry.Name(candidate),
			Loaded:  e.registry.Has(candidate),
			Path:    path,
		}
		fragment, found, err := e.extract(adapter.Request{Probe: []string{candidate}, Path: path, Shape: value.ShapeAny})
		if err != nil {
			return Trace{}, err
		}
		if found {
			layer.Found = true
			layer.Value = fragment.ToAny()
		}
		trace.Layers = append(trace.Layers, layer)
	}

	fragment, found, err := e.extract(adapter.Request{Probe: probe, Path: path, Shape: value.ShapeAny})
	if err != nil {
		return Trace{}, err
	}
	if found && !fragment.IsNull() {
		trace.Found = true
		trace.Value = fragment.ToAny()
	}
	return trace, nil
}

// ToJSON serialises the trace into JSON for logging or transport helpers.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON deserialises a JSON payload that was previously generated via
// ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}
