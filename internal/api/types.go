package api

import (
	"airport-api/internal/airport"
	"airport-api/internal/query"
)

// 文档注释：对外返回结构
// 约束：字段名与前端约定保持一致；缺失的代码序列化为 null，空名称回退为 "Unknown"
type nearbyResult struct {
	Identifier string  `json:"identifier"`
	IATACode   *string `json:"iata_code"`
	ICAO       *string `json:"icao"`
	Name       string  `json:"name"`
	Distance   float64 `json:"distance"`
	Longitude  float64 `json:"longitude"`
	Latitude   float64 `json:"latitude"`
}

type popularResult struct {
	Identifier string  `json:"identifier"`
	IATACode   *string `json:"iata_code"`
	ICAO       *string `json:"icao"`
	Name       string  `json:"name"`
	Visits     int64   `json:"visits"`
}

// createRequest：POST 请求体；identifier 由服务端推导，不接受客户端指定
type createRequest struct {
	IATACode  string   `json:"iata_code"`
	ICAO      string   `json:"icao"`
	Name      string   `json:"name"`
	City      string   `json:"city"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Altitude  *float64 `json:"altitude"`
	Timezone  string   `json:"timezone"`
}

func (c createRequest) airport() airport.Airport {
	return airport.Airport{
		IATACode:  c.IATACode,
		ICAO:      c.ICAO,
		Name:      c.Name,
		City:      c.City,
		Latitude:  c.Latitude,
		Longitude: c.Longitude,
		Altitude:  c.Altitude,
		Timezone:  c.Timezone,
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func toNearby(n query.Nearby) nearbyResult {
	return nearbyResult{
		Identifier: n.Airport.Identifier,
		IATACode:   nullable(n.Airport.IATACode),
		ICAO:       nullable(n.Airport.ICAO),
		Name:       displayName(n.Airport.Name),
		Distance:   n.DistanceKm,
		Longitude:  n.Longitude,
		Latitude:   n.Latitude,
	}
}

func toPopular(p query.Popular) popularResult {
	return popularResult{
		Identifier: p.Airport.Identifier,
		IATACode:   nullable(p.Airport.IATACode),
		ICAO:       nullable(p.Airport.ICAO),
		Name:       displayName(p.Airport.Name),
		Visits:     p.Visits,
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func displayName(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
