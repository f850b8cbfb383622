package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func float64Ptr(v float64) *float64 { return &v }

func TestMaintenanceCompletionAndDuration(t *testing.T) {
	start := time.Now()
	record := &MaintenanceRecord{StartedAt: start}

	assert.False(t, record.IsComplete())
	_, defined := record.Duration()
	assert.False(t, defined, "duration is undefined while incomplete")

	end := start.Add(90 * time.Minute)
	record.EndedAt = &end
	require.True(t, record.IsComplete())
	duration, defined := record.Duration()
	require.True(t, defined)
	assert.Equal(t, 90*time.Minute, duration)
}

func TestPartAggregates(t *testing.T) {
	record := &MaintenanceRecord{
		Parts: []PartUsed{
			{Name: "card reader", Quantity: 1, UnitCost: 250},
			{Name: "receipt roll", Quantity: 4, UnitCost: 2.5},
		},
	}
	assert.Equal(t, 5, record.TotalPartsUsed())
	assert.InDelta(t, 260.0, record.TotalCost(), 1e-9)
}

func TestMeasurementThresholds(t *testing.T) {
	assert.False(t, Measurement{Name: "temp", Value: 40, Unit: "C"}.OutOfThreshold(),
		"no threshold defined")
	assert.False(t, Measurement{Name: "temp", Value: 40, Unit: "C", Threshold: float64Ptr(40)}.OutOfThreshold(),
		"at the bound is within threshold")
	assert.True(t, Measurement{Name: "temp", Value: 40.1, Unit: "C", Threshold: float64Ptr(40)}.OutOfThreshold())

	record := &MaintenanceRecord{Measurements: []Measurement{
		{Name: "temp", Value: 45, Unit: "C", Threshold: float64Ptr(40)},
		{Name: "voltage", Value: 228, Unit: "V", Threshold: float64Ptr(240)},
		{Name: "noise", Value: 70, Unit: "dB"},
	}}
	flagged := record.OutOfThresholdMeasurements()
	require.Len(t, flagged, 1)
	assert.Equal(t, "temp", flagged[0].Name)
}

func TestOpenTaskCount(t *testing.T) {
	record := &MaintenanceRecord{Tasks: []ChecklistTask{
		{Description: "clean dispenser", Status: TaskStatusCompleted},
		{Description: "test card reader", Status: TaskStatusPending},
		{Description: "verify alarm", Status: TaskStatusSkipped},
	}}
	assert.Equal(t, 2, record.OpenTaskCount())
}
