package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneview/kpi-dashboard-api/internal/domain"
)

func newSnapshot(createdAt time.Time) *domain.KpiSnapshot {
	return &domain.KpiSnapshot{
		ID:        "snap01",
		CreatedAt: createdAt,
		KeyMetrics: domain.KeyMetrics{
			TotalAdSpend: 100,
		},
	}
}

func TestSnapshotCache_GetRespectsTTLBoundary(t *testing.T) {
	t0 := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	current := t0

	c := New(5 * time.Minute).WithClock(func() time.Time { return current })
	c.Put(newSnapshot(t0))

	tests := []struct {
		name      string
		elapsed   time.Duration
		wantFresh bool
	}{
		{name: "imediatamente após o Put", elapsed: 0, wantFresh: true},
		{name: "um instante antes do TTL", elapsed: 5*time.Minute - time.Second, wantFresh: true},
		{name: "exatamente no TTL", elapsed: 5 * time.Minute, wantFresh: false},
		{name: "depois do TTL", elapsed: 7 * time.Minute, wantFresh: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current = t0.Add(tt.elapsed)

			got := c.Get()
			if tt.wantFresh {
				require.NotNil(t, got)
				assert.Equal(t, "snap01", got.ID)
				assert.False(t, c.IsExpired())
			} else {
				assert.Nil(t, got)
				assert.True(t, c.IsExpired())
			}
		})
	}
}

func TestSnapshotCache_StaleEntryRemainsAvailable(t *testing.T) {
	t0 := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	current := t0

	c := New(5 * time.Minute).WithClock(func() time.Time { return current })
	c.Put(newSnapshot(t0))

	current = t0.Add(time.Hour)

	assert.Nil(t, c.Get(), "entrada expirada não deve ser servida como fresca")
	require.NotNil(t, c.GetStale(), "entrada expirada deve continuar disponível como fallback")
	assert.Equal(t, "snap01", c.GetStale().ID)
}

func TestSnapshotCache_ClearEmptiesEntry(t *testing.T) {
	c := New(5 * time.Minute)
	c.Put(newSnapshot(time.Now()))

	c.Clear()

	assert.Nil(t, c.Get())
	assert.Nil(t, c.GetStale())
	assert.True(t, c.IsExpired())
	assert.False(t, c.Stats().HasData)
}

func TestSnapshotCache_EmptyCacheSignalsEmpty(t *testing.T) {
	c := New(5 * time.Minute)

	assert.Nil(t, c.Get())
	assert.Nil(t, c.GetStale())
	assert.True(t, c.IsExpired())
}

func TestSnapshotCache_LaterSnapshotWins(t *testing.T) {
	t0 := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	c := New(5 * time.Minute).WithClock(func() time.Time { return t0.Add(time.Minute) })

	newer := newSnapshot(t0.Add(30 * time.Second))
	newer.ID = "newer"
	older := newSnapshot(t0)
	older.ID = "older"

	c.Put(newer)
	// Um refresh lento tentando publicar um snapshot mais antigo não vence
	c.Put(older)

	require.NotNil(t, c.GetStale())
	assert.Equal(t, "newer", c.GetStale().ID)
}

func TestSnapshotCache_StatsTracksCountersAndAge(t *testing.T) {
	t0 := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	current := t0

	c := New(5 * time.Minute).WithClock(func() time.Time { return current })

	stats := c.Stats()
	assert.False(t, stats.HasData)
	assert.Zero(t, stats.AgeSeconds)
	assert.Equal(t, float64(300), stats.TTLSeconds)

	c.Put(newSnapshot(t0))
	c.RecordMiss()
	c.RecordHit()
	c.RecordHit()

	current = t0.Add(42 * time.Second)

	stats = c.Stats()
	assert.True(t, stats.HasData)
	assert.Equal(t, float64(42), stats.AgeSeconds)
	assert.Equal(t, int64(2), stats.HitCount)
	assert.Equal(t, int64(1), stats.MissCount)
}
