// 包 ingest：全量导入文件解析，输出可直接交给协调器的记录；无任何代码的行在此丢弃
package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"airport-api/internal/airport"
	"airport-api/internal/logger"

	"gopkg.in/yaml.v3"
)

// RawAirport：导入源的一行
// 背景：兼容 OpenFlights 导出字段（iata_faa/icao/lat/lng/alt/tz），以及通用的 primary_code/secondary_code
type RawAirport struct {
	IATAFAA       string   `json:"iata_faa" yaml:"iata_faa"`
	ICAO          string   `json:"icao" yaml:"icao"`
	PrimaryCode   string   `json:"primary_code" yaml:"primary_code"`
	SecondaryCode string   `json:"secondary_code" yaml:"secondary_code"`
	Name          string   `json:"name" yaml:"name"`
	City          string   `json:"city" yaml:"city"`
	Lat           *float64 `json:"lat" yaml:"lat"`
	Lng           *float64 `json:"lng" yaml:"lng"`
	Alt           *float64 `json:"alt" yaml:"alt"`
	TZ            string   `json:"tz" yaml:"tz"`
}

// Format：导入文件格式
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatOf：按扩展名判定，.yaml/.yml 为 YAML，其余按 JSON
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Decode：读取整份数组
func Decode(r io.Reader, f Format) ([]RawAirport, error) {
	var raws []RawAirport
	var err error
	if f == FormatYAML {
		err = yaml.NewDecoder(r).Decode(&raws)
	} else {
		err = json.NewDecoder(r).Decode(&raws)
	}
	if err == io.EOF {
		return raws, nil
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", f, err)
	}
	return raws, nil
}

// LoadFile：打开、解析并归一化导入文件，返回记录与被丢弃的行数
func LoadFile(path string) ([]airport.Airport, int, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer fh.Close()
	raws, err := Decode(fh, FormatOf(path))
	if err != nil {
		return nil, 0, err
	}
	recs, skipped := Normalize(raws)
	logger.L().Info("ingest_file_parsed", "path", path, "rows", len(raws), "records", len(recs), "skipped", skipped)
	return recs, skipped, nil
}

// Normalize：丢弃主次代码皆空的行；城市只保留首个逗号之前的部分
func Normalize(raws []RawAirport) ([]airport.Airport, int) {
	out := make([]airport.Airport, 0, len(raws))
	skipped := 0
	for _, r := range raws {
		primary := firstNonEmpty(r.IATAFAA, r.PrimaryCode)
		secondary := firstNonEmpty(r.ICAO, r.SecondaryCode)
		if primary == "" && secondary == "" {
			skipped++
			logger.L().Debug("ingest_row_skipped", "name", r.Name)
			continue
		}
		city, _, _ := strings.Cut(r.City, ",")
		out = append(out, airport.Airport{
			IATACode:  primary,
			ICAO:      secondary,
			Name:      r.Name,
			City:      city,
			Latitude:  r.Lat,
			Longitude: r.Lng,
			Altitude:  r.Alt,
			Timezone:  r.TZ,
		})
	}
	return out, skipped
}

func firstNonEmpty(vs ...string) string {
	for _, v := range vs {
		if v != "" {
			return v
		}
	}
	return ""
}
