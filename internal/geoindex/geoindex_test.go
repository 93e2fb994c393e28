package geoindex

import (
	"context"
	"math/rand"
	"sort"
	"testing"

	"airport-api/internal/airport"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]airport.SpatialIndex {
	s := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = rc.Close() })
	return map[string]airport.SpatialIndex{
		"memory": NewMemIndex(),
		"redis":  NewRedisIndex(rc),
	}
}

func seed(t *testing.T, idx airport.SpatialIndex) {
	ctx := context.Background()
	require.NoError(t, idx.Upsert(ctx, "EZE", -58.54, -34.82))
	require.NoError(t, idx.Upsert(ctx, "AEP", -58.4156, -34.5592))
	require.NoError(t, idx.Upsert(ctx, "MVD", -56.03, -34.84))
}

func ids(hits []airport.GeoHit) []string {
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.Identifier)
	}
	return out
}

func TestQueryRadius(t *testing.T) {
	for name, idx := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			seed(t, idx)

			hits, err := idx.QueryRadius(ctx, -58.50, -34.80, 10)
			require.NoError(t, err)
			require.Len(t, hits, 1)
			assert.Equal(t, "EZE", hits[0].Identifier)
			assert.LessOrEqual(t, hits[0].DistanceKm, 10.0)
			assert.InDelta(t, -58.54, hits[0].Longitude, 1e-4)
			assert.InDelta(t, -34.82, hits[0].Latitude, 1e-4)

			hits, err = idx.QueryRadius(ctx, -58.50, -34.80, 50)
			require.NoError(t, err)
			assert.Equal(t, []string{"EZE", "AEP"}, ids(hits))

			hits, err = idx.QueryRadius(ctx, -58.50, -34.80, 500)
			require.NoError(t, err)
			assert.Equal(t, []string{"EZE", "AEP", "MVD"}, ids(hits))
			assert.True(t, sort.SliceIsSorted(hits, func(i, j int) bool { return hits[i].DistanceKm < hits[j].DistanceKm }))
		})
	}
}

func TestQueryRadiusRejectsInvalidInput(t *testing.T) {
	for name, idx := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			_, err := idx.QueryRadius(ctx, 0, 0, 0)
			assert.ErrorIs(t, err, airport.ErrInvalidInput)
			_, err = idx.QueryRadius(ctx, 0, 0, -3)
			assert.ErrorIs(t, err, airport.ErrInvalidInput)
			_, err = idx.QueryRadius(ctx, 190, 0, 3)
			assert.ErrorIs(t, err, airport.ErrInvalidInput)
			_, err = idx.QueryRadius(ctx, 0, 91, 3)
			assert.ErrorIs(t, err, airport.ErrInvalidInput)
			assert.ErrorIs(t, idx.Upsert(ctx, "BAD", 0, 100), airport.ErrInvalidInput)
		})
	}
}

func TestQueryRadiusEmptyIndex(t *testing.T) {
	for name, idx := range backends(t) {
		t.Run(name, func(t *testing.T) {
			hits, err := idx.QueryRadius(context.Background(), 10, 10, 100)
			require.NoError(t, err)
			assert.Empty(t, hits)
		})
	}
}

func TestUpsertMovesAndRemoveDrops(t *testing.T) {
	for name, idx := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			seed(t, idx)
			require.NoError(t, idx.Upsert(ctx, "EZE", -56.03, -34.84))
			hits, err := idx.QueryRadius(ctx, -58.50, -34.80, 10)
			require.NoError(t, err)
			assert.Empty(t, hits)

			require.NoError(t, idx.Remove(ctx, "MVD"))
			require.NoError(t, idx.Remove(ctx, "MVD"))
			hits, err = idx.QueryRadius(ctx, -56.03, -34.84, 5)
			require.NoError(t, err)
			assert.Equal(t, []string{"EZE"}, ids(hits))

			require.NoError(t, idx.Clear(ctx))
			hits, err = idx.QueryRadius(ctx, -56.03, -34.84, 5000)
			require.NoError(t, err)
			assert.Empty(t, hits)
		})
	}
}

func TestMemIndexIncludesEveryPointWithinRadius(t *testing.T) {
	ctx := context.Background()
	idx := NewMemIndex()
	rnd := rand.New(rand.NewSource(7))
	type p struct{ lon, lat float64 }
	pts := map[string]p{}
	for i := 0; i < 500; i++ {
		id := string(rune('A'+i%26)) + string(rune('A'+(i/26)%26)) + string(rune('A'+i/676))
		pt := p{lon: -70 + rnd.Float64()*20, lat: -40 + rnd.Float64()*20}
		pts[id] = pt
		require.NoError(t, idx.Upsert(ctx, id, pt.lon, pt.lat))
	}
	const radius = 400.0
	hits, err := idx.QueryRadius(ctx, -60, -30, radius)
	require.NoError(t, err)
	got := map[string]bool{}
	for i, h := range hits {
		got[h.Identifier] = true
		assert.LessOrEqual(t, h.DistanceKm, radius)
		if i > 0 {
			assert.LessOrEqual(t, hits[i-1].DistanceKm, h.DistanceKm)
		}
	}
	for id, pt := range pts {
		if Haversine(-30, -60, pt.lat, pt.lon) <= radius {
			assert.True(t, got[id], id)
		}
	}
}

func TestHaversine(t *testing.T) {
	assert.InDelta(t, 0, Haversine(10, 10, 10, 10), 1e-9)
	// one degree of latitude on this sphere
	assert.InDelta(t, 111.226, Haversine(0, 0, 1, 0), 0.01)
}

func TestQueryRadiusBeyondRedisLatitudeRange(t *testing.T) {
	for name, idx := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, idx.Upsert(ctx, "LYR", 15.4656, 78.2461))
			require.NoError(t, idx.Upsert(ctx, "X76", 15, 76))

			hits, err := idx.QueryRadius(ctx, 15, 86, 1000)
			require.NoError(t, err)
			require.Equal(t, []string{"LYR"}, ids(hits))
			assert.InDelta(t, Haversine(86, 15, 78.2461, 15.4656), hits[0].DistanceKm, 1)

			hits, err = idx.QueryRadius(ctx, 15, 86, 1200)
			require.NoError(t, err)
			assert.Equal(t, []string{"LYR", "X76"}, ids(hits))
		})
	}
}
