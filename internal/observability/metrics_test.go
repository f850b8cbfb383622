package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/tickets", "GET", 200, 5*time.Millisecond)
	m.RecordRequest("/tickets", "GET", 200, 7*time.Millisecond)
	m.RecordError("/tickets", "POST", "VALIDATION_FAILED")

	requests, errors := m.Snapshot()
	assert.Equal(t, int64(2), requests["/tickets|GET|200"])
	assert.Equal(t, int64(1), errors["/tickets|POST|VALIDATION_FAILED"])

	// mutating the snapshot must not touch the live counters
	requests["/tickets|GET|200"] = 99
	fresh, _ := m.Snapshot()
	assert.Equal(t, int64(2), fresh["/tickets|GET|200"])
}

func TestMetricsNilReceiver(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/x", "GET", 200, 0)
	m.RecordError("/x", "GET", "INTERNAL_ERROR")
	requests, errors := m.Snapshot()
	assert.Empty(t, requests)
	assert.Empty(t, errors)
}
