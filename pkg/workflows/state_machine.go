package workflows

// StateMachine enforces status transitions over a fixed edge table.
// The table is copied on construction so callers cannot mutate it afterwards.
type StateMachine[S comparable] struct {
	allowedTransitions map[S][]S
}

// NewStateMachine creates a new state machine from a from -> {to...} table
func NewStateMachine[S comparable](table map[S][]S) *StateMachine[S] {
	allowed := make(map[S][]S, len(table))
	for from, targets := range table {
		allowed[from] = append([]S(nil), targets...)
	}
	return &StateMachine[S]{allowedTransitions: allowed}
}

// CanTransition checks if a status transition is allowed
func (sm *StateMachine[S]) CanTransition(from, to S) bool {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return false
	}
	for _, allowedTo := range allowed {
		if allowedTo == to {
			return true
		}
	}
	return false
}

// GetAllowedTransitions returns the allowed next statuses for a given status
func (sm *StateMachine[S]) GetAllowedTransitions(from S) []S {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return []S{}
	}
	return append([]S(nil), allowed...)
}

// IsKnown reports whether the status appears as a source in the table.
func (sm *StateMachine[S]) IsKnown(status S) bool {
	_, exists := sm.allowedTransitions[status]
	return exists
}

// IsTerminal reports whether a known status has no outgoing transitions.
func (sm *StateMachine[S]) IsTerminal(status S) bool {
	allowed, exists := sm.allowedTransitions[status]
	return exists && len(allowed) == 0
}

// Table returns a copy of the full transition table.
func (sm *StateMachine[S]) Table() map[S][]S {
	out := make(map[S][]S, len(sm.allowedTransitions))
	for from, targets := range sm.allowedTransitions {
		out[from] = append([]S{}, targets...)
	}
	return out
}
