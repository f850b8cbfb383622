package domain

import "time"

// TicketStatus enumerates lifecycle states for service tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusAssigned   TicketStatus = "ASSIGNED"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// TicketType enumerates the kind of field intervention requested.
type TicketType string

const (
	TicketTypePreventive TicketType = "PREVENTIVE"
	TicketTypeCorrective TicketType = "CORRECTIVE"
	TicketTypeVisit      TicketType = "VISIT"
)

// TicketPriority enumerates dispatch urgency.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "LOW"
	TicketPriorityMedium   TicketPriority = "MEDIUM"
	TicketPriorityHigh     TicketPriority = "HIGH"
	TicketPriorityCritical TicketPriority = "CRITICAL"
)

// Ticket is the aggregate for an ATM service request.
type Ticket struct {
	ID           string
	ExternalKey  string
	ATMID        string
	ZoneID       string
	ClientID     string
	TechnicianID *string
	Type         TicketType
	Title        string
	Description  string
	Status       TicketStatus
	Priority     TicketPriority
	DueDate      *time.Time
	SLADueDate   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CompletedAt  *time.Time
}

// allowedTransitions is the status adjacency table. Tickets only move
// forward through the sequence; CLOSED has no outgoing edges.
var allowedTransitions = map[TicketStatus][]TicketStatus{
	TicketStatusOpen:       {TicketStatusAssigned},
	TicketStatusAssigned:   {TicketStatusInProgress},
	TicketStatusInProgress: {TicketStatusResolved},
	TicketStatusResolved:   {TicketStatusClosed},
	TicketStatusClosed:     {},
}

// CanTransitionTo reports whether the status change is allowed by the
// adjacency table. Requesting the already-current status is a failure,
// not a no-op success.
func (t *Ticket) CanTransitionTo(next TicketStatus) bool {
	for _, candidate := range allowedTransitions[t.Status] {
		if candidate == next {
			return true
		}
	}
	return false
}

// TransitionTo applies a status change when the adjacency table allows
// it. Entering CLOSED stamps the completion timestamp; a rejected
// transition leaves the ticket untouched.
func (t *Ticket) TransitionTo(next TicketStatus, now time.Time) bool {
	if !t.CanTransitionTo(next) {
		return false
	}
	if next == TicketStatusClosed {
		completed := now
		t.CompletedAt = &completed
	}
	t.Status = next
	return true
}

// CanBeAssigned reports whether a technician may be assigned.
func (t *Ticket) CanBeAssigned() bool {
	return t.Status == TicketStatusOpen
}

// CanBeStarted reports whether maintenance work may begin.
func (t *Ticket) CanBeStarted() bool {
	return t.Status == TicketStatusAssigned
}

// CanBeClosed reports whether the ticket may be closed.
func (t *Ticket) CanBeClosed() bool {
	return t.Status == TicketStatusResolved
}

// IsOverdue reports whether the due date has passed. The check is
// status-independent; callers separate "overdue and open" from
// "overdue and closed" themselves.
func (t *Ticket) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && now.After(*t.DueDate)
}

// RequiresAttention reports whether the ticket belongs on the attention
// dashboard: still open, critical, or past due and not yet closed. The
// conditions are independent and unioned.
func (t *Ticket) RequiresAttention(now time.Time) bool {
	if t.Status == TicketStatusOpen {
		return true
	}
	if t.Priority == TicketPriorityCritical {
		return true
	}
	return t.IsOverdue(now) && t.Status != TicketStatusClosed
}
