package monitor

import "fmt"

// State is a poll loop state.
type State int

const (
	StateIdle State = iota
	StateFetching
	StateParsing
	StateNormalizing
	StateComparing
	StateLogging
	StateSleeping
	StateDone
)

var stateNames = [...]string{
	StateIdle:        "idle",
	StateFetching:    "fetching",
	StateParsing:     "parsing",
	StateNormalizing: "normalizing",
	StateComparing:   "comparing",
	StateLogging:     "logging",
	StateSleeping:    "sleeping",
	StateDone:        "done",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// Outcome tags the result of a state step. Any outcome other than
// OutcomeOK abandons the iteration.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeFetchError
	OutcomeDecodeError
	OutcomeMalformed
)

var outcomeNames = [...]string{
	OutcomeOK:          "ok",
	OutcomeFetchError:  "fetch_error",
	OutcomeDecodeError: "decode_error",
	OutcomeMalformed:   "malformed_snapshot",
}

func (o Outcome) String() string {
	if o < 0 || int(o) >= len(outcomeNames) {
		return fmt.Sprintf("outcome(%d)", int(o))
	}
	return outcomeNames[o]
}

// ParseOutcome is the inverse of Outcome.String.
func ParseOutcome(s string) (Outcome, error) {
	for i, name := range outcomeNames {
		if name == s {
			return Outcome(i), nil
		}
	}
	return 0, fmt.Errorf("unknown outcome %q", s)
}

// next returns the state following from after a step that produced
// outcome. A failed fetch, parse or normalize step goes straight to
// logging; the outcome is ignored for every other state.
func next(from State, outcome Outcome, last bool) State {
	switch from {
	case StateFetching, StateParsing, StateNormalizing:
		if outcome != OutcomeOK {
			return StateLogging
		}
	}
	switch from {
	case StateIdle:
		return StateFetching
	case StateFetching:
		return StateParsing
	case StateParsing:
		return StateNormalizing
	case StateNormalizing:
		return StateComparing
	case StateComparing:
		return StateLogging
	case StateLogging:
		if last {
			return StateDone
		}
		return StateSleeping
	case StateSleeping:
		return StateIdle
	default:
		return StateDone
	}
}
