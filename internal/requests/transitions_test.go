package requests

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTerminalStatusesHaveNoOutgoingEdges(t *testing.T) {
	for _, terminal := range []Status{StatusCompleted, StatusRejected} {
		assert.True(t, IsTerminal(terminal), terminal)
		assert.Empty(t, AllowedTransitions(terminal), terminal)
		for _, to := range Statuses {
			assert.False(t, CanTransition(terminal, to), "%s -> %s", terminal, to)
		}
	}
}

func TestOnlyCompletedAndRejectedAreTerminal(t *testing.T) {
	for _, s := range Statuses {
		expected := s == StatusCompleted || s == StatusRejected
		assert.Equal(t, expected, IsTerminal(s), s)
	}
}

func TestTransitionTableEdges(t *testing.T) {
	table := TransitionTable()
	assert.Len(t, table, len(Statuses))

	expected := map[Status][]Status{
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

	for from, targets := range expected {
		assert.ElementsMatch(t, targets, table[from], from)
	}
}

func TestCanTransitionClosure(t *testing.T) {
	table := TransitionTable()
	for _, from := range Statuses {
		allowed := make(map[Status]bool)
		for _, to := range table[from] {
			allowed[to] = true
		}
		for _, to := range Statuses {
			assert.Equal(t, allowed[to], CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestCompletedOnlyReachableFromSettling(t *testing.T) {
	for _, from := range Statuses {
		assert.Equal(t, from == StatusSettling, CanTransition(from, StatusCompleted), from)
	}
}

func TestUnknownStatusCannotTransition(t *testing.T) {
	assert.False(t, CanTransition(Status("archived"), StatusSubmitted))
	assert.False(t, CanTransition(StatusDraft, Status("archived")))
}
