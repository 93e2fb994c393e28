package ingest

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"airport-api/internal/coordinator"
	"airport-api/internal/geoindex"
	"airport-api/internal/logger"
	"airport-api/internal/popularity"
	"airport-api/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJSON = `[
  {"iata_faa": "EZE", "icao": "SAEZ", "name": "Ministro Pistarini", "city": "Buenos Aires, Argentina", "lat": -34.822222, "lng": -58.535833, "alt": 67, "tz": "America/Buenos_Aires"},
  {"iata_faa": "", "icao": "SADF", "name": "San Fernando", "city": "San Fernando", "lat": -34.453189, "lng": -58.589617},
  {"iata_faa": "", "icao": "", "name": "Nowhere Strip", "city": "Nowhere"},
  {"primary_code": "AEP", "name": "Aeroparque", "city": "Buenos Aires"}
]`

const sampleYAML = `
- iata_faa: MVD
  icao: SUMU
  name: Carrasco
  city: Montevideo, Uruguay
  lat: -34.838417
  lng: -56.030806
- name: no codes
`

func TestDecodeAndNormalizeJSON(t *testing.T) {
	raws, err := Decode(strings.NewReader(sampleJSON), FormatJSON)
	require.NoError(t, err)
	require.Len(t, raws, 4)

	recs, skipped := Normalize(raws)
	assert.Equal(t, 1, skipped)
	require.Len(t, recs, 3)

	assert.Equal(t, "EZE", recs[0].IATACode)
	assert.Equal(t, "SAEZ", recs[0].ICAO)
	assert.Equal(t, "Buenos Aires", recs[0].City)
	assert.Equal(t, 67.0, *recs[0].Altitude)
	assert.Equal(t, "America/Buenos_Aires", recs[0].Timezone)

	assert.Equal(t, "", recs[1].IATACode)
	assert.Equal(t, "SADF", recs[1].ICAO)

	assert.Equal(t, "AEP", recs[2].IATACode)
	assert.Nil(t, recs[2].Latitude)
}

func TestDecodeYAML(t *testing.T) {
	raws, err := Decode(strings.NewReader(sampleYAML), FormatYAML)
	require.NoError(t, err)
	recs, skipped := Normalize(raws)
	assert.Equal(t, 1, skipped)
	require.Len(t, recs, 1)
	assert.Equal(t, "Montevideo", recs[0].City)
	assert.InDelta(t, -56.030806, *recs[0].Longitude, 1e-9)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode(strings.NewReader("{not json"), FormatJSON)
	assert.Error(t, err)
}

func TestFormatOf(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatOf("data/airports.YML"))
	assert.Equal(t, FormatYAML, FormatOf("airports.yaml"))
	assert.Equal(t, FormatJSON, FormatOf("airports.json"))
	assert.Equal(t, FormatJSON, FormatOf("airports"))
}

func TestLoadPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "airports.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleJSON), 0o644))

	records := store.NewMemStore()
	geo := geoindex.NewMemIndex()
	c := coordinator.New(records, geo, popularity.NewMemRanking(0), coordinator.Options{Logger: logger.New(io.Discard, "error", "text")})

	res, skipped, err := LoadPath(context.Background(), c, path)
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, coordinator.BulkResult{Stored: 3, Indexed: 2}, res)
	assert.Equal(t, 2, geo.Len())

	_, _, err = LoadPath(context.Background(), c, filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
