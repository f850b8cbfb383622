package domain

import "time"

// MaintenanceType enumerates the level of intervention performed.
type MaintenanceType string

const (
	MaintenanceTypeFirstLine  MaintenanceType = "FIRST_LINE"
	MaintenanceTypeSecondLine MaintenanceType = "SECOND_LINE"
	MaintenanceTypeVisit      MaintenanceType = "VISIT"
)

// PartUsed records a spare part consumed during maintenance.
type PartUsed struct {
	Name         string  `json:"name"`
	Quantity     int     `json:"quantity"`
	UnitCost     float64 `json:"unit_cost"`
	SerialNumber *string `json:"serial_number,omitempty"`
	Notes        *string `json:"notes,omitempty"`
}

// Measurement records a diagnostic reading taken on site.
type Measurement struct {
	Name      string   `json:"name"`
	Value     float64  `json:"value"`
	Unit      string   `json:"unit"`
	Threshold *float64 `json:"threshold,omitempty"`
}

// OutOfThreshold reports whether the reading exceeds its safe bound.
// Measurements without a threshold never flag.
func (m Measurement) OutOfThreshold() bool {
	return m.Threshold != nil && m.Value > *m.Threshold
}

// TaskStatus enumerates checklist task states.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "PENDING"
	TaskStatusCompleted TaskStatus = "COMPLETED"
	TaskStatusSkipped   TaskStatus = "SKIPPED"
)

// ChecklistTask is one step of a maintenance checklist.
type ChecklistTask struct {
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
}

// MaintenanceRecord tracks the physical work performed against a ticket.
// At most one incomplete record exists per ticket and per technician.
type MaintenanceRecord struct {
	ID               string
	TicketID         string
	ATMID            string
	TechnicianID     string
	Type             MaintenanceType
	Diagnosis        string
	WorkPerformed    string
	Parts            []PartUsed
	Measurements     []Measurement
	Tasks            []ChecklistTask
	RequiresFollowUp bool
	FollowUpNotes    *string
	StartedAt        time.Time
	EndedAt          *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsComplete reports whether the work has been finalized. Once complete,
// the identifying fields (start time, ticket, ATM, technician) are
// immutable.
func (r *MaintenanceRecord) IsComplete() bool {
	return r.EndedAt != nil
}

// Duration returns the elapsed work time. Undefined while incomplete.
func (r *MaintenanceRecord) Duration() (time.Duration, bool) {
	if r.EndedAt == nil {
		return 0, false
	}
	return r.EndedAt.Sub(r.StartedAt), true
}

// TotalPartsUsed sums part quantities.
func (r *MaintenanceRecord) TotalPartsUsed() int {
	total := 0
	for _, part := range r.Parts {
		total += part.Quantity
	}
	return total
}

// TotalCost sums quantity-weighted part costs.
func (r *MaintenanceRecord) TotalCost() float64 {
	total := 0.0
	for _, part := range r.Parts {
		total += float64(part.Quantity) * part.UnitCost
	}
	return total
}

// OpenTaskCount counts checklist tasks not yet completed.
func (r *MaintenanceRecord) OpenTaskCount() int {
	count := 0
	for _, task := range r.Tasks {
		if task.Status != TaskStatusCompleted {
			count++
		}
	}
	return count
}

// OutOfThresholdMeasurements returns readings exceeding their bounds,
// for maintenance-quality reporting.
func (r *MaintenanceRecord) OutOfThresholdMeasurements() []Measurement {
	var flagged []Measurement
	for _, m := range r.Measurements {
		if m.OutOfThreshold() {
			flagged = append(flagged, m)
		}
	}
	return flagged
}
