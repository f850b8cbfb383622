package service

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/atm-maintenance-service/internal/domain"
	"github.com/spec-kit/atm-maintenance-service/internal/repository"
)

// In-memory repository fakes shared across service tests.

type fakeTicketRepo struct {
	mu      sync.Mutex
	seq     int
	tickets map[string]*domain.Ticket
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: map[string]*domain.Ticket{}}
}

func (r *fakeTicketRepo) nextID() string {
	r.seq++
	return "ticket-" + strconv.Itoa(r.seq)
}

func (r *fakeTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ticket.ID == "" {
		ticket.ID = r.nextID()
	}
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = time.Now()
	}
	ticket.UpdatedAt = ticket.CreatedAt
	clone := *ticket
	r.tickets[ticket.ID] = &clone
	return nil
}

func (r *fakeTicketRepo) Update(ctx context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = time.Now()
	clone := *ticket
	r.tickets[ticket.ID] = &clone
	return nil
}

func (r *fakeTicketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *ticket
	return &clone, nil
}

func (r *fakeTicketRepo) GetByExternalKey(ctx context.Context, key string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ticket := range r.tickets {
		if ticket.ExternalKey == key {
			clone := *ticket
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeTicketRepo) ListWithFilter(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Ticket
	for _, ticket := range r.tickets {
		if filter.ZoneID != nil && ticket.ZoneID != *filter.ZoneID {
			continue
		}
		if filter.ClientID != nil && ticket.ClientID != *filter.ClientID {
			continue
		}
		if filter.ATMID != nil && ticket.ATMID != *filter.ATMID {
			continue
		}
		if filter.TechnicianID != nil && (ticket.TechnicianID == nil || *ticket.TechnicianID != *filter.TechnicianID) {
			continue
		}
		if filter.CreatedFrom != nil && ticket.CreatedAt.Before(*filter.CreatedFrom) {
			continue
		}
		if filter.CreatedTo != nil && ticket.CreatedAt.After(*filter.CreatedTo) {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, ticket.Status) {
			continue
		}
		out = append(out, *ticket)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeTicketRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if ticket.Status != domain.TicketStatusOpen {
		return repository.ErrNotDeletable
	}
	delete(r.tickets, id)
	return nil
}

func containsStatus(statuses []domain.TicketStatus, status domain.TicketStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

type fakeMaintenanceRepo struct {
	mu      sync.Mutex
	seq     int
	records map[string]*domain.MaintenanceRecord
}

func newFakeMaintenanceRepo() *fakeMaintenanceRepo {
	return &fakeMaintenanceRepo{records: map[string]*domain.MaintenanceRecord{}}
}

func (r *fakeMaintenanceRepo) Create(ctx context.Context, record *domain.MaintenanceRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.records {
		if existing.EndedAt != nil {
			continue
		}
		if existing.TicketID == record.TicketID {
			return repository.ErrActiveForTicket
		}
		if existing.TechnicianID == record.TechnicianID {
			return repository.ErrActiveForTechnician
		}
	}
	r.seq++
	record.ID = "maintenance-" + strconv.Itoa(r.seq)
	record.CreatedAt = time.Now()
	record.UpdatedAt = record.CreatedAt
	clone := *record
	r.records[record.ID] = &clone
	return nil
}

func (r *fakeMaintenanceRepo) Update(ctx context.Context, record *domain.MaintenanceRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[record.ID]; !ok {
		return pgx.ErrNoRows
	}
	record.UpdatedAt = time.Now()
	clone := *record
	r.records[record.ID] = &clone
	return nil
}

func (r *fakeMaintenanceRepo) GetByID(ctx context.Context, id string) (*domain.MaintenanceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *record
	return &clone, nil
}

func (r *fakeMaintenanceRepo) GetActiveByTicket(ctx context.Context, ticketID string) (*domain.MaintenanceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, record := range r.records {
		if record.TicketID == ticketID && record.EndedAt == nil {
			clone := *record
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeMaintenanceRepo) HasActiveForTicket(ctx context.Context, ticketID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, record := range r.records {
		if record.TicketID == ticketID && record.EndedAt == nil {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeMaintenanceRepo) HasActiveForTechnician(ctx context.Context, technicianID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, record := range r.records {
		if record.TechnicianID == technicianID && record.EndedAt == nil {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeMaintenanceRepo) ListByTicket(ctx context.Context, ticketID string) ([]domain.MaintenanceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.MaintenanceRecord
	for _, record := range r.records {
		if record.TicketID == ticketID {
			out = append(out, *record)
		}
	}
	// Newest first, matching the SQL ordering.
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	return out, nil
}

func (r *fakeMaintenanceRepo) ListByTechnician(ctx context.Context, technicianID string, limit, offset int) ([]domain.MaintenanceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.MaintenanceRecord
	for _, record := range r.records {
		if record.TechnicianID == technicianID {
			out = append(out, *record)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	return out, nil
}

func (r *fakeMaintenanceRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if record.EndedAt != nil {
		return repository.ErrRecordComplete
	}
	delete(r.records, id)
	return nil
}

type fakeTechnicianRepo struct {
	mu          sync.Mutex
	technicians map[string]*domain.Technician
}

func newFakeTechnicianRepo() *fakeTechnicianRepo {
	return &fakeTechnicianRepo{technicians: map[string]*domain.Technician{}}
}

func (r *fakeTechnicianRepo) add(technician domain.Technician) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := technician
	r.technicians[technician.ID] = &clone
}

func (r *fakeTechnicianRepo) Create(ctx context.Context, technician *domain.Technician) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if technician.ID == "" {
		technician.ID = "technician-" + strconv.Itoa(len(r.technicians)+1)
	}
	clone := *technician
	r.technicians[technician.ID] = &clone
	return nil
}

func (r *fakeTechnicianRepo) Update(ctx context.Context, technician *domain.Technician) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.technicians[technician.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *technician
	r.technicians[technician.ID] = &clone
	return nil
}

func (r *fakeTechnicianRepo) GetByID(ctx context.Context, id string) (*domain.Technician, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	technician, ok := r.technicians[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *technician
	return &clone, nil
}

func (r *fakeTechnicianRepo) GetByEmail(ctx context.Context, email string) (*domain.Technician, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, technician := range r.technicians {
		if technician.Email == email {
			clone := *technician
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeTechnicianRepo) List(ctx context.Context, filter repository.TechnicianFilter) ([]domain.Technician, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Technician
	for _, technician := range r.technicians {
		out = append(out, *technician)
	}
	return out, nil
}

type fakeHistoryRepo struct {
	mu      sync.Mutex
	entries []domain.TicketHistory
}

func newFakeHistoryRepo() *fakeHistoryRepo {
	return &fakeHistoryRepo{}
}

func (r *fakeHistoryRepo) Create(ctx context.Context, entry *domain.TicketHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry.ID = "history-" + strconv.Itoa(len(r.entries)+1)
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeHistoryRepo) ListByTicket(ctx context.Context, ticketID string, limit, offset int) ([]domain.TicketHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.TicketHistory
	for _, entry := range r.entries {
		if entry.TicketID == ticketID {
			out = append(out, entry)
		}
	}
	return out, nil
}

type fakeATMRepo struct {
	atms map[string]*domain.ATM
}

func newFakeATMRepo() *fakeATMRepo {
	return &fakeATMRepo{atms: map[string]*domain.ATM{}}
}

func (r *fakeATMRepo) add(atm domain.ATM) {
	clone := atm
	r.atms[atm.ID] = &clone
}

func (r *fakeATMRepo) GetByID(ctx context.Context, id string) (*domain.ATM, error) {
	atm, ok := r.atms[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *atm
	return &clone, nil
}

func (r *fakeATMRepo) ListByZone(ctx context.Context, zoneID string) ([]domain.ATM, error) {
	var out []domain.ATM
	for _, atm := range r.atms {
		if atm.ZoneID == zoneID {
			out = append(out, *atm)
		}
	}
	return out, nil
}

type fakeZoneRepo struct {
	zones map[string]*domain.Zone
}

func newFakeZoneRepo() *fakeZoneRepo {
	return &fakeZoneRepo{zones: map[string]*domain.Zone{}}
}

func (r *fakeZoneRepo) add(zone domain.Zone) {
	clone := zone
	r.zones[zone.ID] = &clone
}

func (r *fakeZoneRepo) GetByID(ctx context.Context, id string) (*domain.Zone, error) {
	zone, ok := r.zones[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *zone
	return &clone, nil
}

func (r *fakeZoneRepo) List(ctx context.Context) ([]domain.Zone, error) {
	var out []domain.Zone
	for _, zone := range r.zones {
		out = append(out, *zone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type fakeClientRepo struct {
	clients map[string]*domain.Client
}

func newFakeClientRepo() *fakeClientRepo {
	return &fakeClientRepo{clients: map[string]*domain.Client{}}
}

func (r *fakeClientRepo) add(client domain.Client) {
	clone := client
	r.clients[client.ID] = &clone
}

func (r *fakeClientRepo) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	client, ok := r.clients[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *client
	return &clone, nil
}

type fakeSLARepo struct {
	mu      sync.Mutex
	seq     int
	configs map[string]*domain.SLAConfig
}

func newFakeSLARepo() *fakeSLARepo {
	return &fakeSLARepo{configs: map[string]*domain.SLAConfig{}}
}

func (r *fakeSLARepo) Create(ctx context.Context, cfg *domain.SLAConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	cfg.ID = "sla-" + strconv.Itoa(r.seq)
	cfg.CreatedAt = time.Now()
	cfg.UpdatedAt = cfg.CreatedAt
	clone := *cfg
	r.configs[cfg.ID] = &clone
	return nil
}

func (r *fakeSLARepo) Update(ctx context.Context, cfg *domain.SLAConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.configs[cfg.ID]; !ok {
		return pgx.ErrNoRows
	}
	cfg.UpdatedAt = time.Now()
	clone := *cfg
	r.configs[cfg.ID] = &clone
	return nil
}

func (r *fakeSLARepo) GetByID(ctx context.Context, id string) (*domain.SLAConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cfg, ok := r.configs[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *cfg
	return &clone, nil
}

func (r *fakeSLARepo) ListByZone(ctx context.Context, zoneID string) ([]domain.SLAConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.SLAConfig
	for _, cfg := range r.configs {
		if cfg.ZoneID == zoneID {
			out = append(out, *cfg)
		}
	}
	return out, nil
}

func (r *fakeSLARepo) HasScopeConflict(ctx context.Context, zoneID string, clientID *string, maintenanceType domain.MaintenanceType, excludeID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, cfg := range r.configs {
		if excludeID != "" && cfg.ID == excludeID {
			continue
		}
		if cfg.ZoneID != zoneID || cfg.MaintenanceType != maintenanceType {
			continue
		}
		if sameClient(cfg.ClientID, clientID) {
			return true, nil
		}
	}
	return false, nil
}

func sameClient(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (r *fakeSLARepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.configs[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.configs, id)
	return nil
}

type fakeReservations struct {
	mu     sync.Mutex
	claims map[string]bool
}

func newFakeReservations() *fakeReservations {
	return &fakeReservations{claims: map[string]bool{}}
}

func (r *fakeReservations) Reserve(ctx context.Context, technicianID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.claims[technicianID] {
		return false, nil
	}
	r.claims[technicianID] = true
	return true, nil
}

func (r *fakeReservations) Release(ctx context.Context, technicianID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.claims, technicianID)
	return nil
}
