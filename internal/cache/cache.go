// Package cache holds parsed snapshots for the duration of a TTL so group
// views do not hammer the portal. Two backends exist: an in-process map
// (default) and redis for deployments with more than one instance.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/campusview/attendance-api/internal/models"
)

// SnapshotCache stores attendance snapshots keyed by roll number.
type SnapshotCache interface {
	// Get returns a live snapshot for the roll number, or ok=false when
	// there is none or the entry has outlived the TTL.
	Get(ctx context.Context, rollNumber string) (models.AttendanceSnapshot, bool)
	// Put stores a snapshot, overwriting any previous entry for the roll.
	Put(ctx context.Context, rollNumber string, snap models.AttendanceSnapshot)
}

type memoryEntry struct {
	snap      models.AttendanceSnapshot
	fetchedAt time.Time
}

// Memory is a mutex-guarded TTL map. Entries past their TTL are reported
// as misses but left in place; the next Put simply overwrites them.
type Memory struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]memoryEntry
}

// NewMemory builds an in-process snapshot cache.
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Memory{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

// Get implements SnapshotCache. Callers receive a copy, never a reference
// into the cache.
func (m *Memory) Get(_ context.Context, rollNumber string) (models.AttendanceSnapshot, bool) {
	m.mu.RLock()
	entry, ok := m.entries[rollNumber]
	m.mu.RUnlock()

	if !ok || m.now().Sub(entry.fetchedAt) >= m.ttl {
		return models.AttendanceSnapshot{}, false
	}
	return entry.snap.Clone(), true
}

// Put implements SnapshotCache.
func (m *Memory) Put(_ context.Context, rollNumber string, snap models.AttendanceSnapshot) {
	entry := memoryEntry{snap: snap.Clone(), fetchedAt: m.now()}
	m.mu.Lock()
	m.entries[rollNumber] = entry
	m.mu.Unlock()
}

// FetchedAt exposes an entry's fetch time regardless of liveness. The
// refresh worker uses it to decide which rolls are close to expiry.
func (m *Memory) FetchedAt(rollNumber string) (time.Time, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.entries[rollNumber]
	if !ok {
		return time.Time{}, false
	}
	return entry.fetchedAt, true
}
