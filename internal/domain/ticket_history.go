package domain

import "time"

// ChangeType enumerates audited ticket mutations.
type ChangeType string

const (
	ChangeTypeStatus     ChangeType = "STATUS"
	ChangeTypeTechnician ChangeType = "TECHNICIAN"
	ChangeTypePriority   ChangeType = "PRIORITY"
)

// ActorType identifies who performed an audited change.
type ActorType string

const (
	ActorTypeTechnician ActorType = "TECHNICIAN"
	ActorTypeSystem     ActorType = "SYSTEM"
)

// TicketHistory is one audit entry for a ticket mutation.
type TicketHistory struct {
	ID            string
	TicketID      string
	ChangedByType ActorType
	ChangedByID   *string
	ChangeType    ChangeType
	OldValue      map[string]any
	NewValue      map[string]any
	CreatedAt     time.Time
}
