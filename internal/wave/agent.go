package wave

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// MaxFunctions is the capacity of an agent's term array.
const MaxFunctions = 8

// ErrAgentFull is returned when appending to an agent that already has MaxFunctions terms
var ErrAgentFull = errors.New("agent already holds the maximum number of functions")

// Agent is a candidate approximation: an ordered sum of up to MaxFunctions
// terms. The term array is fixed size and only reachable through methods, so
// the length can never exceed MaxFunctions.
//
// Fitness is a cache. Any method that changes a term clears Scored.
type Agent struct {
	functions [MaxFunctions]FunctionCoefficients
	length    int

	Fitness float64
	Scored  bool
}

// NewAgent builds an agent from the given terms
func NewAgent(terms ...FunctionCoefficients) (Agent, error) {
	var a Agent
	if len(terms) > MaxFunctions {
		return a, &InvariantError{Reason: fmt.Sprintf("%d functions exceeds capacity %d", len(terms), MaxFunctions)}
	}
	for _, t := range terms {
		if err := a.Append(t); err != nil {
			return Agent{}, err
		}
	}
	return a, nil
}

// Len returns the number of terms
func (a *Agent) Len() int {
	return a.length
}

// Full reports whether no more terms can be appended
func (a *Agent) Full() bool {
	return a.length >= MaxFunctions
}

// Term returns the i-th term
func (a *Agent) Term(i int) FunctionCoefficients {
	return a.functions[:a.length][i]
}

// Terms returns a copy of the active terms
func (a *Agent) Terms() []FunctionCoefficients {
	out := make([]FunctionCoefficients, a.length)
	copy(out, a.functions[:a.length])
	return out
}

// SetTerm replaces the i-th term
func (a *Agent) SetTerm(i int, c FunctionCoefficients) {
	a.functions[:a.length][i] = c
	a.Invalidate()
}

// Append adds a term at the end
func (a *Agent) Append(c FunctionCoefficients) error {
	if !c.FunctionType.Valid() {
		return &InvariantError{Reason: fmt.Sprintf("cannot append term using %s", c.FunctionType)}
	}
	if a.Full() {
		return ErrAgentFull
	}
	a.functions[a.length] = c
	a.length++
	a.Invalidate()
	return nil
}

// RemoveAt deletes the i-th term, keeping the order of the rest
func (a *Agent) RemoveAt(i int) {
	if i < 0 || i >= a.length {
		panic(fmt.Sprintf("wave: term index %d out of range [0,%d)", i, a.length))
	}
	copy(a.functions[i:a.length], a.functions[i+1:a.length])
	a.length--
	a.functions[a.length] = FunctionCoefficients{}
	a.Invalidate()
}

// Invalidate marks the cached fitness as stale
func (a *Agent) Invalidate() {
	a.Fitness = 0
	a.Scored = false
}

// Validate checks the length bound and every term's function type
func (a *Agent) Validate() error {
	if a.length < 0 || a.length > MaxFunctions {
		return &InvariantError{Reason: fmt.Sprintf("functions_len %d outside [0,%d]", a.length, MaxFunctions)}
	}
	for i := 0; i < a.length; i++ {
		if !a.functions[i].FunctionType.Valid() {
			return &InvariantError{Reason: fmt.Sprintf("term %d uses %s", i, a.functions[i].FunctionType)}
		}
	}
	return nil
}

// Evaluate sums every term at x. An agent without terms evaluates to 0.
func (a *Agent) Evaluate(x float64) (float64, error) {
	var sum float64
	for i := 0; i < a.length; i++ {
		v, err := a.functions[i].At(x)
		if err != nil {
			return v, fmt.Errorf("term %d: %w", i, err)
		}
		sum += v
	}
	return sum, nil
}

// Sample evaluates the agent at every x in xs, reusing dst when it has room.
func (a *Agent) Sample(xs []float64, dst []float64) ([]float64, error) {
	if cap(dst) < len(xs) {
		dst = make([]float64, len(xs))
	}
	dst = dst[:len(xs)]
	for k, x := range xs {
		v, err := a.Evaluate(x)
		if err != nil {
			return nil, err
		}
		dst[k] = v
	}
	return dst, nil
}

// String renders the agent as a formula, e.g. "1*sin(x - 0) + 0.5*saw(x - 1.2)"
func (a Agent) String() string {
	if a.length == 0 {
		return "0"
	}
	parts := make([]string, a.length)
	for i := 0; i < a.length; i++ {
		parts[i] = a.functions[i].String()
	}
	return strings.Join(parts, " + ")
}

type agentJSON struct {
	Functions []FunctionCoefficients `json:"functions"`
	Fitness   float64                `json:"fitness"`
	Scored    bool                   `json:"scored,omitempty"`
}

// MarshalJSON encodes only the active terms
func (a Agent) MarshalJSON() ([]byte, error) {
	return json.Marshal(agentJSON{
		Functions: a.Terms(),
		Fitness:   a.Fitness,
		Scored:    a.Scored,
	})
}

// UnmarshalJSON rejects agents with too many terms or unknown function types
func (a *Agent) UnmarshalJSON(data []byte) error {
	var raw agentJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	decoded, err := NewAgent(raw.Functions...)
	if err != nil {
		return err
	}
	decoded.Fitness = raw.Fitness
	decoded.Scored = raw.Scored
	*a = decoded
	return nil
}
