package requests

import (
	"investor-desk/request-portal-backend/pkg/workflows"
)

// transitionTable is the only definition of legal status changes. Everything
// that validates a transition (executor, UI pre-flight, report filters) goes
// through lifecycle below.
//
// approved -> rejected allows reversing an approval after compliance issues
// surface during settlement. draft may jump straight to any review stage for
// staff-created drafts.
var transitionTable = map[Status][]Status{
	StatusDraft:            {StatusSubmitted, StatusScreening, StatusPendingInfo, StatusComplianceReview, StatusApproved, StatusRejected},
	StatusSubmitted:        {StatusScreening, StatusPendingInfo, StatusComplianceReview, StatusApproved, StatusRejected},
	StatusScreening:        {StatusPendingInfo, StatusComplianceReview, StatusApproved, StatusRejected},
	StatusPendingInfo:      {StatusScreening, StatusComplianceReview, StatusApproved, StatusRejected},
	StatusComplianceReview: {StatusApproved, StatusPendingInfo, StatusRejected},
	StatusApproved:         {StatusSettling, StatusRejected},
	StatusSettling:         {StatusCompleted, StatusRejected},
	StatusCompleted:        {},
	StatusRejected:         {},
}

var lifecycle = workflows.NewStateMachine(transitionTable)

// CanTransition reports whether from -> to is in the transition table.
func CanTransition(from, to Status) bool {
	return lifecycle.CanTransition(from, to)
}

// AllowedTransitions returns the legal next statuses for from.
func AllowedTransitions(from Status) []Status {
	return lifecycle.GetAllowedTransitions(from)
}

// IsTerminal reports whether status has no outgoing transitions.
func IsTerminal(status Status) bool {
	return lifecycle.IsTerminal(status)
}

// TransitionTable returns a copy of the table for presentation layers.
func TransitionTable() map[Status][]Status {
	return lifecycle.Table()
}
