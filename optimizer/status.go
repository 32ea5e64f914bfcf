package optimizer

import (
	"encoding"
	"encoding/json"
	"fmt"
)

// Status is the outcome a Solver reports when it stops.
type Status int

const (
	Converged            Status = iota + 1 // Gradient or method convergence test met.
	AlreadyMinimized                       // Starting point already satisfied the convergence test.
	MaxLineSearchReached                   // Line search exhausted its evaluation budget.
	MaxIterationsReached                   // Iteration cap hit.
	RoundingError                          // Line search could not make progress in floating point.
	MinStepReached                         // Step shrank below the step tolerance.
	MaxStepReached                         // Step grew beyond the maximum step.
	Failure                                // Any other failure.
)

var (
	statusNames = [...]string{
		Converged:            "Converged",
		AlreadyMinimized:     "AlreadyMinimized",
		MaxLineSearchReached: "MaxLineSearchReached",
		MaxIterationsReached: "MaxIterationsReached",
		RoundingError:        "RoundingError",
		MinStepReached:       "MinStepReached",
		MaxStepReached:       "MaxStepReached",
		Failure:              "Failure",
	}
	statusByName = func() map[string]Status {
		m := make(map[string]Status, len(statusNames))
		for s := Converged; s <= Failure; s++ {
			m[statusNames[s]] = s
		}
		return m
	}()

	// acceptable is the set of statuses whose final point may be committed.
	// The solver stopped early or on a limit, but on a point it evaluated.
	acceptable = [...]bool{
		Converged:            true,
		AlreadyMinimized:     true,
		MaxLineSearchReached: true,
		MaxIterationsReached: true,
		RoundingError:        true,
		MinStepReached:       true,
		MaxStepReached:       true,
		Failure:              false,
	}
)

// Compile-time interface checks.
var (
	_ fmt.Stringer             = Status(0)
	_ json.Marshaler           = Status(0)
	_ json.Unmarshaler         = (*Status)(nil)
	_ encoding.TextMarshaler   = Status(0)
	_ encoding.TextUnmarshaler = (*Status)(nil)
)

// IsValid reports whether s is one of the defined statuses.
func (s Status) IsValid() bool {
	return s >= Converged && s <= Failure
}

// Acceptable reports whether a solution ending with s may be committed,
// provided its multipliers are not all numerically zero.
func (s Status) Acceptable() bool {
	return s.IsValid() && acceptable[s]
}

// String returns the name of the status. For invalid values it returns
// "Status(n)".
func (s Status) String() string {
	if s.IsValid() {
		return statusNames[s]
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("optimizer: invalid status: %d", int(s))
	}
	return []byte(statusNames[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	v, ok := statusByName[string(text)]
	if !ok {
		return fmt.Errorf("optimizer: invalid status: %q", text)
	}
	*s = v
	return nil
}

// MarshalJSON implements json.Marshaler. Status serializes as a JSON string.
func (s Status) MarshalJSON() ([]byte, error) {
	text, err := s.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// UnmarshalJSON implements json.Unmarshaler. Expects a JSON string.
func (s *Status) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("optimizer: invalid status: %s", data)
	}
	return s.UnmarshalText([]byte(str))
}
