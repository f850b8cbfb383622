package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/atm-maintenance-service/internal/domain"
	apperrors "github.com/spec-kit/atm-maintenance-service/pkg/util"
)

func newSLAServiceForTest() *SLAService {
	zones := newFakeZoneRepo()
	zones.add(domain.Zone{ID: "zone-1", Name: "North", Active: true})
	zones.add(domain.Zone{ID: "zone-2", Name: "South", Active: true})
	clients := newFakeClientRepo()
	clients.add(domain.Client{ID: "client-1", Name: "First Bank", Active: true})
	return NewSLAService(SLADependencies{
		SLARepo:    newFakeSLARepo(),
		ZoneRepo:   zones,
		ClientRepo: clients,
	})
}

func TestCreateSLA(t *testing.T) {
	ctx := context.Background()

	t.Run("parses intervals into minutes", func(t *testing.T) {
		svc := newSLAServiceForTest()
		cfg, err := svc.CreateSLA(ctx, SLAInput{
			ZoneID:          "zone-1",
			MaintenanceType: domain.MaintenanceTypeFirstLine,
			ResponseTime:    "2 hours",
			ResolutionTime:  "1 day",
		})
		require.NoError(t, err)
		assert.Equal(t, 120, cfg.ResponseTimeMinutes)
		assert.Equal(t, 1440, cfg.ResolutionTimeMinutes)
		assert.Equal(t, "2 hours", cfg.ResponseTime)
	})

	t.Run("rejects malformed intervals", func(t *testing.T) {
		svc := newSLAServiceForTest()
		_, err := svc.CreateSLA(ctx, SLAInput{
			ZoneID:          "zone-1",
			MaintenanceType: domain.MaintenanceTypeFirstLine,
			ResponseTime:    "2.5 hours",
			ResolutionTime:  "1 day",
		})
		require.Error(t, err)
		assert.Equal(t, "INVALID_FORMAT", apperrors.CodeOf(err))
	})

	t.Run("rejects an unknown zone", func(t *testing.T) {
		svc := newSLAServiceForTest()
		_, err := svc.CreateSLA(ctx, SLAInput{
			ZoneID:          "zone-99",
			MaintenanceType: domain.MaintenanceTypeFirstLine,
			ResponseTime:    "2 hours",
			ResolutionTime:  "8 hours",
		})
		require.Error(t, err)
		assert.Equal(t, "NOT_FOUND", apperrors.CodeOf(err))
	})

	t.Run("rejects an unknown client", func(t *testing.T) {
		svc := newSLAServiceForTest()
		clientID := "client-99"
		_, err := svc.CreateSLA(ctx, SLAInput{
			ZoneID:          "zone-1",
			ClientID:        &clientID,
			MaintenanceType: domain.MaintenanceTypeFirstLine,
			ResponseTime:    "2 hours",
			ResolutionTime:  "8 hours",
		})
		require.Error(t, err)
		assert.Equal(t, "NOT_FOUND", apperrors.CodeOf(err))
	})

	t.Run("one config per scope", func(t *testing.T) {
		svc := newSLAServiceForTest()
		_, err := svc.CreateSLA(ctx, SLAInput{
			ZoneID:          "zone-1",
			MaintenanceType: domain.MaintenanceTypeFirstLine,
			ResponseTime:    "2 hours",
			ResolutionTime:  "8 hours",
		})
		require.NoError(t, err)

		_, err = svc.CreateSLA(ctx, SLAInput{
			ZoneID:          "zone-1",
			MaintenanceType: domain.MaintenanceTypeFirstLine,
			ResponseTime:    "1 hour",
			ResolutionTime:  "4 hours",
		})
		require.Error(t, err)
		assert.Equal(t, "CONFLICT", apperrors.CodeOf(err))
	})

	t.Run("a client-specific config coexists with the zone default", func(t *testing.T) {
		svc := newSLAServiceForTest()
		_, err := svc.CreateSLA(ctx, SLAInput{
			ZoneID:          "zone-1",
			MaintenanceType: domain.MaintenanceTypeFirstLine,
			ResponseTime:    "2 hours",
			ResolutionTime:  "8 hours",
		})
		require.NoError(t, err)

		clientID := "client-1"
		_, err = svc.CreateSLA(ctx, SLAInput{
			ZoneID:          "zone-1",
			ClientID:        &clientID,
			MaintenanceType: domain.MaintenanceTypeFirstLine,
			ResponseTime:    "1 hour",
			ResolutionTime:  "4 hours",
		})
		require.NoError(t, err)
	})
}

func TestUpdateSLA(t *testing.T) {
	ctx := context.Background()

	t.Run("a config may keep its own scope", func(t *testing.T) {
		svc := newSLAServiceForTest()
		cfg, err := svc.CreateSLA(ctx, SLAInput{
			ZoneID:          "zone-1",
			MaintenanceType: domain.MaintenanceTypeFirstLine,
			ResponseTime:    "2 hours",
			ResolutionTime:  "8 hours",
		})
		require.NoError(t, err)

		updated, err := svc.UpdateSLA(ctx, cfg.ID, SLAInput{
			ZoneID:          "zone-1",
			MaintenanceType: domain.MaintenanceTypeFirstLine,
			ResponseTime:    "90 minutes",
			ResolutionTime:  "8 hours",
		})
		require.NoError(t, err)
		assert.Equal(t, cfg.ID, updated.ID)
		assert.Equal(t, 90, updated.ResponseTimeMinutes)
	})

	t.Run("moving onto another config's scope conflicts", func(t *testing.T) {
		svc := newSLAServiceForTest()
		_, err := svc.CreateSLA(ctx, SLAInput{
			ZoneID:          "zone-1",
			MaintenanceType: domain.MaintenanceTypeFirstLine,
			ResponseTime:    "2 hours",
			ResolutionTime:  "8 hours",
		})
		require.NoError(t, err)
		other, err := svc.CreateSLA(ctx, SLAInput{
			ZoneID:          "zone-1",
			MaintenanceType: domain.MaintenanceTypeSecondLine,
			ResponseTime:    "4 hours",
			ResolutionTime:  "2 days",
		})
		require.NoError(t, err)

		_, err = svc.UpdateSLA(ctx, other.ID, SLAInput{
			ZoneID:          "zone-1",
			MaintenanceType: domain.MaintenanceTypeFirstLine,
			ResponseTime:    "4 hours",
			ResolutionTime:  "2 days",
		})
		require.Error(t, err)
		assert.Equal(t, "CONFLICT", apperrors.CodeOf(err))
	})

	t.Run("moving onto an unknown zone yields not found", func(t *testing.T) {
		svc := newSLAServiceForTest()
		cfg, err := svc.CreateSLA(ctx, SLAInput{
			ZoneID:          "zone-1",
			MaintenanceType: domain.MaintenanceTypeFirstLine,
			ResponseTime:    "2 hours",
			ResolutionTime:  "8 hours",
		})
		require.NoError(t, err)

		_, err = svc.UpdateSLA(ctx, cfg.ID, SLAInput{
			ZoneID:          "zone-99",
			MaintenanceType: domain.MaintenanceTypeFirstLine,
			ResponseTime:    "2 hours",
			ResolutionTime:  "8 hours",
		})
		require.Error(t, err)
		assert.Equal(t, "NOT_FOUND", apperrors.CodeOf(err))
	})

	t.Run("unknown config yields not found", func(t *testing.T) {
		svc := newSLAServiceForTest()
		_, err := svc.UpdateSLA(ctx, "missing", SLAInput{
			ZoneID:          "zone-1",
			MaintenanceType: domain.MaintenanceTypeFirstLine,
			ResponseTime:    "2 hours",
			ResolutionTime:  "8 hours",
		})
		require.Error(t, err)
		assert.Equal(t, "NOT_FOUND", apperrors.CodeOf(err))
	})
}

func TestDeleteSLA(t *testing.T) {
	ctx := context.Background()
	svc := newSLAServiceForTest()
	cfg, err := svc.CreateSLA(ctx, SLAInput{
		ZoneID:          "zone-1",
		MaintenanceType: domain.MaintenanceTypeFirstLine,
		ResponseTime:    "2 hours",
		ResolutionTime:  "8 hours",
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSLA(ctx, cfg.ID))
	err = svc.DeleteSLA(ctx, cfg.ID)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.CodeOf(err))
}
