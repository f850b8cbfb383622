package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionFollowsSequence(t *testing.T) {
	now := time.Now()
	ticket := &Ticket{Status: TicketStatusOpen, CreatedAt: now}

	sequence := []TicketStatus{
		TicketStatusAssigned,
		TicketStatusInProgress,
		TicketStatusResolved,
		TicketStatusClosed,
	}
	for _, next := range sequence {
		require.True(t, ticket.TransitionTo(next, now), "expected transition to %s", next)
		assert.Equal(t, next, ticket.Status)
	}
	require.NotNil(t, ticket.CompletedAt)
}

func TestTransitionRejectsSkipsAndBackwardMoves(t *testing.T) {
	now := time.Now()
	cases := []struct {
		name string
		from TicketStatus
		to   TicketStatus
	}{
		{"skip to in_progress", TicketStatusOpen, TicketStatusInProgress},
		{"skip to closed", TicketStatusOpen, TicketStatusClosed},
		{"backwards to open", TicketStatusAssigned, TicketStatusOpen},
		{"backwards from resolved", TicketStatusResolved, TicketStatusInProgress},
		{"out of closed", TicketStatusClosed, TicketStatusResolved},
		{"same status", TicketStatusInProgress, TicketStatusInProgress},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ticket := &Ticket{Status: tc.from}
			assert.False(t, ticket.TransitionTo(tc.to, now))
			assert.Equal(t, tc.from, ticket.Status, "failed transition must not mutate the ticket")
			assert.Nil(t, ticket.CompletedAt)
		})
	}
}

func TestCompletedAtOnlySetOnClose(t *testing.T) {
	now := time.Now()
	ticket := &Ticket{Status: TicketStatusOpen}

	require.True(t, ticket.TransitionTo(TicketStatusAssigned, now))
	require.True(t, ticket.TransitionTo(TicketStatusInProgress, now))
	require.True(t, ticket.TransitionTo(TicketStatusResolved, now))
	assert.Nil(t, ticket.CompletedAt)

	require.True(t, ticket.TransitionTo(TicketStatusClosed, now))
	require.NotNil(t, ticket.CompletedAt)
	assert.Equal(t, now, *ticket.CompletedAt)
}

func TestEligibilityChecks(t *testing.T) {
	assert.True(t, (&Ticket{Status: TicketStatusOpen}).CanBeAssigned())
	assert.False(t, (&Ticket{Status: TicketStatusAssigned}).CanBeAssigned())

	assert.True(t, (&Ticket{Status: TicketStatusAssigned}).CanBeStarted())
	assert.False(t, (&Ticket{Status: TicketStatusOpen}).CanBeStarted())

	assert.True(t, (&Ticket{Status: TicketStatusResolved}).CanBeClosed())
	assert.False(t, (&Ticket{Status: TicketStatusInProgress}).CanBeClosed())
}

func TestIsOverdueIgnoresStatus(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.False(t, (&Ticket{Status: TicketStatusOpen}).IsOverdue(now), "no due date")
	assert.False(t, (&Ticket{Status: TicketStatusOpen, DueDate: &future}).IsOverdue(now))
	assert.True(t, (&Ticket{Status: TicketStatusOpen, DueDate: &past}).IsOverdue(now))
	assert.True(t, (&Ticket{Status: TicketStatusClosed, DueDate: &past}).IsOverdue(now),
		"closed tickets past due are still flagged by the pure check")
}

func TestRequiresAttention(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)

	assert.True(t, (&Ticket{Status: TicketStatusOpen, Priority: TicketPriorityLow}).RequiresAttention(now))
	assert.True(t, (&Ticket{Status: TicketStatusResolved, Priority: TicketPriorityCritical}).RequiresAttention(now))
	assert.True(t, (&Ticket{Status: TicketStatusInProgress, Priority: TicketPriorityLow, DueDate: &past}).RequiresAttention(now))
	assert.False(t, (&Ticket{Status: TicketStatusClosed, Priority: TicketPriorityLow, DueDate: &past}).RequiresAttention(now),
		"closed past-due tickets do not need attention")
	assert.False(t, (&Ticket{Status: TicketStatusAssigned, Priority: TicketPriorityMedium}).RequiresAttention(now))

	// multiple reasons at once still mean one entry
	assert.True(t, (&Ticket{Status: TicketStatusOpen, Priority: TicketPriorityCritical, DueDate: &past}).RequiresAttention(now))
}
