package model

import "fmt"

// State represents the current lifecycle state of an approval instance.
type State string

const (
	StateSubmitted        State = "SUBMITTED"
	StateAwaitingDecision State = "AWAITING_DECISION"
	StateApproved         State = "APPROVED"
	StateRejected         State = "REJECTED"
	StateExpired          State = "EXPIRED"
	StateFailed           State = "FAILED"
)

// Terminal reports whether the state admits no further transitions.
func (s State) Terminal() bool {
	switch s {
	case StateApproved, StateRejected, StateExpired, StateFailed:
		return true
	}
	return false
}

// transitions enumerates the permitted forward moves; states are never
// revisited.
var transitions = map[State][]State{
	StateSubmitted:        {StateAwaitingDecision, StateFailed},
	StateAwaitingDecision: {StateApproved, StateRejected, StateExpired, StateFailed},
}

// CanTransition reports whether a move from s to next is permitted.
func (s State) CanTransition(next State) bool {
	for _, candidate := range transitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// Verdict represents an external approval decision.
type Verdict string

const (
	VerdictApproved Verdict = "APPROVED"
	VerdictRejected Verdict = "REJECTED"
)

// ParseVerdict validates raw decision input.
func ParseVerdict(value string) (Verdict, error) {
	switch Verdict(value) {
	case VerdictApproved:
		return VerdictApproved, nil
	case VerdictRejected:
		return VerdictRejected, nil
	}
	return "", fmt.Errorf("decision must be %v or %v", VerdictApproved, VerdictRejected)
}

// State returns the terminal state a verdict resolves to.
func (v Verdict) State() State {
	if v == VerdictApproved {
		return StateApproved
	}
	return StateRejected
}
