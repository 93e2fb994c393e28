// 包 geoindex：按标识键控的空间索引，支持点写入、移除与球面半径查询
package geoindex

import "math"

// 与 Redis GEO 相同的地球半径，使内存实现与 Redis 返回的距离一致
const earthRadiusKm = 6372.797560856

// Haversine：球面大圆距离，返回千米
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}
