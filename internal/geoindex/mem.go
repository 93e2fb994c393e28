package geoindex

import (
	"context"
	"sort"
	"sync"

	"airport-api/internal/airport"
)

type point struct{ lon, lat float64 }

// MemIndex：进程内空间索引，半径查询为全量扫描
type MemIndex struct {
	mu  sync.RWMutex
	pts map[string]point
}

func NewMemIndex() *MemIndex { return &MemIndex{pts: make(map[string]point)} }

func (m *MemIndex) Upsert(_ context.Context, identifier string, lon, lat float64) error {
	if !airport.ValidCoordinates(lon, lat) {
		return airport.ErrInvalidInput
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pts[identifier] = point{lon: lon, lat: lat}
	return nil
}

func (m *MemIndex) Remove(_ context.Context, identifier string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pts, identifier)
	return nil
}

// QueryRadius：距离升序，等距时按标识升序
func (m *MemIndex) QueryRadius(ctx context.Context, lon, lat, radiusKm float64) ([]airport.GeoHit, error) {
	if err := airport.ValidateRadiusQuery(lon, lat, radiusKm); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, airport.TransientError("mem_radius", err)
	}
	m.mu.RLock()
	out := make([]airport.GeoHit, 0)
	for id, p := range m.pts {
		d := Haversine(lat, lon, p.lat, p.lon)
		if d <= radiusKm {
			out = append(out, airport.GeoHit{Identifier: id, DistanceKm: d, Longitude: p.lon, Latitude: p.lat})
		}
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].DistanceKm != out[j].DistanceKm {
			return out[i].DistanceKm < out[j].DistanceKm
		}
		return out[i].Identifier < out[j].Identifier
	})
	return out, nil
}

func (m *MemIndex) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pts = make(map[string]point)
	return nil
}

// Len：当前索引条目数
func (m *MemIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.pts)
}
