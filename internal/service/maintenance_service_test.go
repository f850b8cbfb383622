package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/atm-maintenance-service/internal/domain"
	apperrors "github.com/spec-kit/atm-maintenance-service/pkg/util"
)

type maintenanceFixture struct {
	service     *MaintenanceService
	tickets     *fakeTicketRepo
	records     *fakeMaintenanceRepo
	technicians *fakeTechnicianRepo
}

func newMaintenanceFixture(t *testing.T) *maintenanceFixture {
	t.Helper()
	tickets := newFakeTicketRepo()
	records := newFakeMaintenanceRepo()
	technicians := newFakeTechnicianRepo()
	technicians.add(domain.Technician{ID: "tech-1", Name: "Ada", Email: "ada@example.com", Role: domain.RoleTechnician, Active: true})
	technicians.add(domain.Technician{ID: "tech-2", Name: "Lin", Email: "lin@example.com", Role: domain.RoleTechnician, Active: true})
	technicians.add(domain.Technician{ID: "tech-gone", Name: "Out", Email: "out@example.com", Role: domain.RoleTechnician, Active: false})

	svc := NewMaintenanceService(MaintenanceDependencies{
		MaintenanceRepo: records,
		TicketRepo:      tickets,
		TechnicianRepo:  technicians,
		HistoryRepo:     newFakeHistoryRepo(),
		Reservations:    newFakeReservations(),
		Dispatcher:      nil,
	})
	return &maintenanceFixture{service: svc, tickets: tickets, records: records, technicians: technicians}
}

func (f *maintenanceFixture) addTicket(t *testing.T, id string, status domain.TicketStatus) {
	t.Helper()
	technicianID := "tech-1"
	ticket := &domain.Ticket{
		ID:          id,
		ExternalKey: "ATM-" + id,
		ATMID:       "atm-1",
		ZoneID:      "zone-1",
		ClientID:    "client-1",
		Type:        domain.TicketTypeCorrective,
		Title:       "cash dispenser jam",
		Status:      status,
		Priority:    domain.TicketPriorityMedium,
	}
	if status != domain.TicketStatusOpen {
		ticket.TechnicianID = &technicianID
	}
	require.NoError(t, f.tickets.Create(context.Background(), ticket))
}

func TestStartMaintenance(t *testing.T) {
	ctx := context.Background()

	t.Run("starts work and moves the ticket in progress", func(t *testing.T) {
		f := newMaintenanceFixture(t)
		f.addTicket(t, "t1", domain.TicketStatusAssigned)

		record, err := f.service.StartMaintenance(ctx, StartMaintenanceInput{TicketID: "t1", TechnicianID: "tech-1"})
		require.NoError(t, err)
		assert.Equal(t, domain.MaintenanceTypeFirstLine, record.Type)
		assert.False(t, record.IsComplete())

		ticket, err := f.tickets.GetByID(ctx, "t1")
		require.NoError(t, err)
		assert.Equal(t, domain.TicketStatusInProgress, ticket.Status)
	})

	t.Run("rejects a second active record on the same ticket", func(t *testing.T) {
		f := newMaintenanceFixture(t)
		f.addTicket(t, "t1", domain.TicketStatusAssigned)

		_, err := f.service.StartMaintenance(ctx, StartMaintenanceInput{TicketID: "t1", TechnicianID: "tech-1"})
		require.NoError(t, err)

		_, err = f.service.StartMaintenance(ctx, StartMaintenanceInput{TicketID: "t1", TechnicianID: "tech-2"})
		require.Error(t, err)
		assert.Equal(t, "CONFLICT", apperrors.CodeOf(err))
	})

	t.Run("rejects a technician with another open job", func(t *testing.T) {
		f := newMaintenanceFixture(t)
		f.addTicket(t, "t1", domain.TicketStatusAssigned)
		f.addTicket(t, "t2", domain.TicketStatusAssigned)

		_, err := f.service.StartMaintenance(ctx, StartMaintenanceInput{TicketID: "t1", TechnicianID: "tech-1"})
		require.NoError(t, err)

		_, err = f.service.StartMaintenance(ctx, StartMaintenanceInput{TicketID: "t2", TechnicianID: "tech-1"})
		require.Error(t, err)
		assert.Equal(t, "CONFLICT", apperrors.CodeOf(err))
	})

	t.Run("rejects an inactive technician", func(t *testing.T) {
		f := newMaintenanceFixture(t)
		f.addTicket(t, "t1", domain.TicketStatusAssigned)

		_, err := f.service.StartMaintenance(ctx, StartMaintenanceInput{TicketID: "t1", TechnicianID: "tech-gone"})
		require.Error(t, err)
		assert.Equal(t, "CONFLICT", apperrors.CodeOf(err))
	})

	t.Run("unknown ticket yields not found", func(t *testing.T) {
		f := newMaintenanceFixture(t)
		_, err := f.service.StartMaintenance(ctx, StartMaintenanceInput{TicketID: "nope", TechnicianID: "tech-1"})
		require.Error(t, err)
		assert.Equal(t, "NOT_FOUND", apperrors.CodeOf(err))
	})
}

func TestCompleteMaintenance(t *testing.T) {
	ctx := context.Background()
	diagnosis := "worn pick rollers"
	work := "replaced rollers, ran dispense test"
	parts := []domain.PartUsed{{Name: "pick roller", Quantity: 2, UnitCost: 14.5}}

	start := func(t *testing.T, f *maintenanceFixture) *domain.MaintenanceRecord {
		t.Helper()
		f.addTicket(t, "t1", domain.TicketStatusAssigned)
		record, err := f.service.StartMaintenance(ctx, StartMaintenanceInput{TicketID: "t1", TechnicianID: "tech-1"})
		require.NoError(t, err)
		return record
	}

	t.Run("finalizes the record and resolves the ticket", func(t *testing.T) {
		f := newMaintenanceFixture(t)
		record := start(t, f)

		completed, err := f.service.CompleteMaintenance(ctx, record.ID, CompletionInput{
			Diagnosis:     &diagnosis,
			WorkPerformed: &work,
			Parts:         parts,
		})
		require.NoError(t, err)
		assert.True(t, completed.IsComplete())
		assert.Equal(t, 2, completed.TotalPartsUsed())
		assert.InDelta(t, 29.0, completed.TotalCost(), 0.001)

		ticket, err := f.tickets.GetByID(ctx, "t1")
		require.NoError(t, err)
		assert.Equal(t, domain.TicketStatusResolved, ticket.Status)
	})

	t.Run("unmet preconditions leave the record untouched", func(t *testing.T) {
		f := newMaintenanceFixture(t)
		record := start(t, f)

		_, err := f.service.CompleteMaintenance(ctx, record.ID, CompletionInput{Diagnosis: &diagnosis})
		require.Error(t, err)
		assert.Equal(t, "VALIDATION_FAILED", apperrors.CodeOf(err))

		stored, err := f.records.GetByID(ctx, record.ID)
		require.NoError(t, err)
		assert.False(t, stored.IsComplete())
		assert.Empty(t, stored.Diagnosis)
	})

	t.Run("completing twice is rejected", func(t *testing.T) {
		f := newMaintenanceFixture(t)
		record := start(t, f)

		_, err := f.service.CompleteMaintenance(ctx, record.ID, CompletionInput{
			Diagnosis:     &diagnosis,
			WorkPerformed: &work,
			Parts:         parts,
		})
		require.NoError(t, err)

		_, err = f.service.CompleteMaintenance(ctx, record.ID, CompletionInput{
			Diagnosis:     &diagnosis,
			WorkPerformed: &work,
			Parts:         parts,
		})
		require.Error(t, err)
		assert.Equal(t, "ALREADY_COMPLETE", apperrors.CodeOf(err))
	})

	t.Run("technician is free again after completion", func(t *testing.T) {
		f := newMaintenanceFixture(t)
		record := start(t, f)

		_, err := f.service.CompleteMaintenance(ctx, record.ID, CompletionInput{
			Diagnosis:     &diagnosis,
			WorkPerformed: &work,
			Parts:         parts,
		})
		require.NoError(t, err)

		f.addTicket(t, "t2", domain.TicketStatusAssigned)
		_, err = f.service.StartMaintenance(ctx, StartMaintenanceInput{TicketID: "t2", TechnicianID: "tech-1"})
		require.NoError(t, err)
	})

	t.Run("explicit end time is honored", func(t *testing.T) {
		f := newMaintenanceFixture(t)
		record := start(t, f)

		endedAt := record.StartedAt.Add(90 * time.Minute)
		completed, err := f.service.CompleteMaintenance(ctx, record.ID, CompletionInput{
			Diagnosis:     &diagnosis,
			WorkPerformed: &work,
			Parts:         parts,
			EndedAt:       &endedAt,
		})
		require.NoError(t, err)
		duration, ok := completed.Duration()
		require.True(t, ok)
		assert.Equal(t, 90*time.Minute, duration)
	})
}

func TestAddPartsAndMeasurements(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*maintenanceFixture, *domain.MaintenanceRecord) {
		t.Helper()
		f := newMaintenanceFixture(t)
		f.addTicket(t, "t1", domain.TicketStatusAssigned)
		record, err := f.service.StartMaintenance(ctx, StartMaintenanceInput{TicketID: "t1", TechnicianID: "tech-1"})
		require.NoError(t, err)
		return f, record
	}

	t.Run("appends valid parts", func(t *testing.T) {
		f, record := setup(t)
		updated, err := f.service.AddParts(ctx, record.ID, []domain.PartUsed{
			{Name: "card reader belt", Quantity: 1, UnitCost: 8},
		})
		require.NoError(t, err)
		assert.Len(t, updated.Parts, 1)
	})

	t.Run("rejects a zero quantity", func(t *testing.T) {
		f, record := setup(t)
		_, err := f.service.AddParts(ctx, record.ID, []domain.PartUsed{{Name: "belt", Quantity: 0}})
		require.Error(t, err)
		assert.Equal(t, "INVALID_INPUT", apperrors.CodeOf(err))
	})

	t.Run("rejects an unnamed part", func(t *testing.T) {
		f, record := setup(t)
		_, err := f.service.AddParts(ctx, record.ID, []domain.PartUsed{{Name: "  ", Quantity: 1}})
		require.Error(t, err)
		assert.Equal(t, "INVALID_INPUT", apperrors.CodeOf(err))
	})

	t.Run("completed records are immutable", func(t *testing.T) {
		f, record := setup(t)
		diagnosis, work := "diag", "work"
		_, err := f.service.CompleteMaintenance(ctx, record.ID, CompletionInput{
			Diagnosis:     &diagnosis,
			WorkPerformed: &work,
			Parts:         []domain.PartUsed{{Name: "roller", Quantity: 1}},
		})
		require.NoError(t, err)

		_, err = f.service.AddParts(ctx, record.ID, []domain.PartUsed{{Name: "belt", Quantity: 1}})
		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperrors.CodeOf(err))

		_, err = f.service.UpdateMeasurements(ctx, record.ID, []domain.Measurement{{Name: "temp", Value: 40, Unit: "C"}})
		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperrors.CodeOf(err))
	})

	t.Run("measurements replace wholesale", func(t *testing.T) {
		f, record := setup(t)
		_, err := f.service.UpdateMeasurements(ctx, record.ID, []domain.Measurement{
			{Name: "supply voltage", Value: 12.1, Unit: "V"},
			{Name: "cabinet temp", Value: 38, Unit: "C"},
		})
		require.NoError(t, err)

		updated, err := f.service.UpdateMeasurements(ctx, record.ID, []domain.Measurement{
			{Name: "cabinet temp", Value: 36, Unit: "C"},
		})
		require.NoError(t, err)
		assert.Len(t, updated.Measurements, 1)
	})
}

func TestDeleteMaintenance(t *testing.T) {
	ctx := context.Background()

	t.Run("removes an incomplete record", func(t *testing.T) {
		f := newMaintenanceFixture(t)
		f.addTicket(t, "t1", domain.TicketStatusAssigned)
		record, err := f.service.StartMaintenance(ctx, StartMaintenanceInput{TicketID: "t1", TechnicianID: "tech-1"})
		require.NoError(t, err)

		require.NoError(t, f.service.DeleteMaintenance(ctx, record.ID))

		_, err = f.service.GetMaintenance(ctx, record.ID)
		assert.Equal(t, "NOT_FOUND", apperrors.CodeOf(err))
	})

	t.Run("refuses to delete a completed record", func(t *testing.T) {
		f := newMaintenanceFixture(t)
		f.addTicket(t, "t1", domain.TicketStatusAssigned)
		record, err := f.service.StartMaintenance(ctx, StartMaintenanceInput{TicketID: "t1", TechnicianID: "tech-1"})
		require.NoError(t, err)

		diagnosis, work := "diag", "work"
		_, err = f.service.CompleteMaintenance(ctx, record.ID, CompletionInput{
			Diagnosis:     &diagnosis,
			WorkPerformed: &work,
			Parts:         []domain.PartUsed{{Name: "roller", Quantity: 1}},
		})
		require.NoError(t, err)

		err = f.service.DeleteMaintenance(ctx, record.ID)
		require.Error(t, err)
		assert.Equal(t, "ALREADY_COMPLETE", apperrors.CodeOf(err))
	})
}

func TestSetFollowUp(t *testing.T) {
	ctx := context.Background()
	f := newMaintenanceFixture(t)
	f.addTicket(t, "t1", domain.TicketStatusAssigned)
	record, err := f.service.StartMaintenance(ctx, StartMaintenanceInput{TicketID: "t1", TechnicianID: "tech-1"})
	require.NoError(t, err)

	notes := "needs a second-line visit for the safe lock"
	updated, err := f.service.SetFollowUp(ctx, record.ID, true, &notes)
	require.NoError(t, err)
	assert.True(t, updated.RequiresFollowUp)
	require.NotNil(t, updated.FollowUpNotes)
	assert.Equal(t, notes, *updated.FollowUpNotes)

	// Follow-up can still be flagged after completion.
	diagnosis, work := "diag", "work"
	_, err = f.service.CompleteMaintenance(ctx, record.ID, CompletionInput{
		Diagnosis:     &diagnosis,
		WorkPerformed: &work,
		Parts:         []domain.PartUsed{{Name: "roller", Quantity: 1}},
	})
	require.NoError(t, err)

	_, err = f.service.SetFollowUp(ctx, record.ID, false, nil)
	require.NoError(t, err)
}
