package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusview/attendance-api/internal/models"
)

func sampleSnapshot(roll string) models.AttendanceSnapshot {
	return models.AttendanceSnapshot{
		StudentName: "JOHN DOE",
		RollNumber:  roll,
		Today: &models.WindowReport{
			Date:             "12 May 2024",
			AttendedOverHeld: "9/10",
			Subjects: []models.SubjectRecord{
				{SeqNo: 1, Subject: "Maths", Held: 10, Attended: 9, Percent: 90.0},
			},
		},
	}
}

func TestMemoryPutThenGet(t *testing.T) {
	c := NewMemory(5 * time.Minute)
	ctx := context.Background()

	c.Put(ctx, "2201A0001", sampleSnapshot("2201A0001"))

	snap, ok := c.Get(ctx, "2201A0001")
	require.True(t, ok)
	assert.Equal(t, "JOHN DOE", snap.StudentName)
	require.NotNil(t, snap.Today)
	assert.Equal(t, "9/10", snap.Today.AttendedOverHeld)
}

func TestMemoryTTLBoundary(t *testing.T) {
	now := time.Date(2024, 5, 12, 9, 0, 0, 0, time.UTC)
	c := NewMemory(5 * time.Minute)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	c.Put(ctx, "2201A0001", sampleSnapshot("2201A0001"))

	now = now.Add(5*time.Minute - time.Second)
	_, ok := c.Get(ctx, "2201A0001")
	assert.True(t, ok, "entry just inside TTL must be a hit")

	now = now.Add(time.Second)
	_, ok = c.Get(ctx, "2201A0001")
	assert.False(t, ok, "entry at exactly TTL must be a miss")

	// Expired entries are not removed; a later put overwrites in place.
	fetchedAt, present := c.FetchedAt("2201A0001")
	assert.True(t, present)
	assert.Equal(t, time.Date(2024, 5, 12, 9, 0, 0, 0, time.UTC), fetchedAt)

	c.Put(ctx, "2201A0001", sampleSnapshot("2201A0001"))
	_, ok = c.Get(ctx, "2201A0001")
	assert.True(t, ok)
}

func TestMemoryMissForUnknownRoll(t *testing.T) {
	c := NewMemory(5 * time.Minute)
	_, ok := c.Get(context.Background(), "2201A9999")
	assert.False(t, ok)
}

func TestMemoryReturnsCopies(t *testing.T) {
	c := NewMemory(5 * time.Minute)
	ctx := context.Background()

	original := sampleSnapshot("2201A0001")
	c.Put(ctx, "2201A0001", original)

	// Mutating what the caller handed in must not reach the cache.
	original.Today.Subjects[0].Subject = "mutated-after-put"

	snap, ok := c.Get(ctx, "2201A0001")
	require.True(t, ok)
	assert.Equal(t, "Maths", snap.Today.Subjects[0].Subject)

	// Mutating what the cache handed out must not reach the cache either.
	snap.Today.Subjects[0].Subject = "mutated-after-get"

	again, ok := c.Get(ctx, "2201A0001")
	require.True(t, ok)
	assert.Equal(t, "Maths", again.Today.Subjects[0].Subject)
}

func TestMemoryConcurrentAccess(t *testing.T) {
	c := NewMemory(5 * time.Minute)
	ctx := context.Background()
	rolls := []string{"2201A0001", "2201A0002", "2201A0003", "2201A0004"}

	done := make(chan struct{})
	for _, roll := range rolls {
		go func(r string) {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 100; i++ {
				c.Put(ctx, r, sampleSnapshot(r))
				if snap, ok := c.Get(ctx, r); ok {
					assert.Equal(t, r, snap.RollNumber)
				}
			}
		}(roll)
	}
	for range rolls {
		<-done
	}
}
