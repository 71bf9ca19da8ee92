package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusview/attendance-api/internal/models"
)

type recordingRefresher struct {
	mu        sync.Mutex
	refreshed [][]string
	notify    chan struct{}
}

func newRecordingRefresher() *recordingRefresher {
	return &recordingRefresher{notify: make(chan struct{}, 16)}
}

func (r *recordingRefresher) RefreshGroup(_ context.Context, rollNumbers []string, _ string) []models.FetchResult {
	r.mu.Lock()
	r.refreshed = append(r.refreshed, append([]string(nil), rollNumbers...))
	r.mu.Unlock()
	r.notify <- struct{}{}

	results := make([]models.FetchResult, len(rollNumbers))
	for i, roll := range rollNumbers {
		results[i] = models.FetchResult{RollNumber: roll, Success: true}
	}
	return results
}

func (r *recordingRefresher) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.refreshed)
}

func waitForRefresh(t *testing.T, r *recordingRefresher) {
	t.Helper()
	select {
	case <-r.notify:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a refresh job")
	}
}

func TestRefreshServiceRefreshesServedGroups(t *testing.T) {
	refresher := newRecordingRefresher()
	svc := NewRefreshService(refresher, RefreshServiceConfig{
		CacheTTL: time.Hour,
		Lead:     time.Minute,
		Workers:  1,
	}, nil)

	svc.Start(context.Background())
	defer svc.Stop()

	svc.MarkServed("CSE-A", []string{"2201A0001", "2201A0002"}, "AEC")
	svc.scheduleDue()

	waitForRefresh(t, refresher)

	refresher.mu.Lock()
	defer refresher.mu.Unlock()
	require.Len(t, refresher.refreshed, 1)
	assert.Equal(t, []string{"2201A0001", "2201A0002"}, refresher.refreshed[0])
}

func TestRefreshServiceEvictsStaleGroups(t *testing.T) {
	refresher := newRecordingRefresher()
	svc := NewRefreshService(refresher, RefreshServiceConfig{
		CacheTTL: 5 * time.Minute,
		Lead:     time.Minute,
		Workers:  1,
	}, nil)

	clock := time.Date(2024, 5, 12, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return clock }

	svc.Start(context.Background())
	defer svc.Stop()

	svc.MarkServed("CSE-A", []string{"2201A0001"}, "AEC")

	// One TTL later the group has not been requested again; it drops out
	// of the rotation instead of being refreshed forever.
	clock = clock.Add(5 * time.Minute)
	svc.scheduleDue()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, refresher.count())

	// Re-serving puts it back.
	svc.MarkServed("CSE-A", []string{"2201A0001"}, "AEC")
	svc.scheduleDue()
	waitForRefresh(t, refresher)
	assert.Equal(t, 1, refresher.count())
}

func TestRefreshServiceIgnoresEmptyMarks(t *testing.T) {
	refresher := newRecordingRefresher()
	svc := NewRefreshService(refresher, RefreshServiceConfig{CacheTTL: time.Hour}, nil)

	svc.MarkServed("", []string{"2201A0001"}, "AEC")
	svc.MarkServed("CSE-A", nil, "AEC")

	svc.mu.Lock()
	defer svc.mu.Unlock()
	assert.Empty(t, svc.recent)
}
