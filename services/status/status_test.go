package status

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"sjmori/vacancywatcher/internal/checker"
)

func TestTrackerSnapshot(t *testing.T) {
	tracker := NewTracker()

	snap := tracker.Snapshot()
	assert.Equal(t, 0, snap.CyclesRun)
	assert.Nil(t, snap.LastCycleAt)
	assert.NotNil(t, snap.LastRecords)

	records := []checker.AvailabilityRecord{
		{
			Accommodation: "Magoemon",
			RoomType:      "8 Japanese Tatami mats",
			Date:          "2025-08-01",
			Status:        checker.StatusAvailable,
			DiscoveredAt:  time.Now(),
		},
	}
	tracker.CycleFinished(2*time.Second, 3, 1, records)

	snap = tracker.Snapshot()
	assert.Equal(t, 1, snap.CyclesRun)
	assert.NotNil(t, snap.LastCycleAt)
	assert.Equal(t, 3, snap.LastPairCount)
	assert.Equal(t, 1, snap.LastErrors)
	assert.InDelta(t, 1.0/3.0, snap.ErrorRate, 1e-9)
	assert.Equal(t, 1, snap.TotalRecords)
	assert.Len(t, snap.LastRecords, 1)
}

func TestTrackerCycleFailed(t *testing.T) {
	tracker := NewTracker()
	tracker.CycleFailed(errors.New("browser launch failed"))

	snap := tracker.Snapshot()
	assert.Equal(t, 1, snap.CyclesRun)
	assert.Equal(t, "browser launch failed", snap.LastError)
}

func TestStatusEndpoints(t *testing.T) {
	tracker := NewTracker()
	tracker.CycleFinished(time.Second, 2, 0, nil)

	server := NewServer(":0", tracker, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	server.srv.Handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/status", nil)
	server.srv.Handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var snap Snapshot
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, 1, snap.CyclesRun)
	assert.Equal(t, 2, snap.LastPairCount)

	// History endpoints are not registered without a store
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/history", nil)
	server.srv.Handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
