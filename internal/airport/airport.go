// 包 airport：机场记录模型、标识推导与三类存储契约（记录库、空间索引、热度排行）
package airport

// Airport：权威记录库中的单条机场记录
// 约束：Identifier 由 IdentifierOf 推导后写入，入库后不可变；坐标以经纬成对出现才视为有效
type Airport struct {
	Identifier string   `json:"identifier"`
	IATACode   string   `json:"iata_code,omitempty"`
	ICAO       string   `json:"icao,omitempty"`
	Name       string   `json:"name"`
	City       string   `json:"city"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
	Altitude   *float64 `json:"altitude,omitempty"`
	Timezone   string   `json:"timezone,omitempty"`
}

// IdentifierOf：主代码优先，否则取次代码；两者皆空返回 ErrInvalidRecord
// 约束：按原样比较，大小写敏感，不做裁剪
func IdentifierOf(a Airport) (string, error) {
	if a.IATACode != "" {
		return a.IATACode, nil
	}
	if a.ICAO != "" {
		return a.ICAO, nil
	}
	return "", ErrInvalidRecord
}

// Coordinates：返回记录的经纬度；缺任一分量或越界时 ok 为 false
func (a Airport) Coordinates() (lon, lat float64, ok bool) {
	if a.Latitude == nil || a.Longitude == nil {
		return 0, 0, false
	}
	lon, lat = *a.Longitude, *a.Latitude
	return lon, lat, ValidCoordinates(lon, lat)
}

// Patch：更新请求中可变字段，nil 表示不修改
// 约束：代码字段不在此列，标识不可经更新改变
type Patch struct {
	Name      *string  `json:"name,omitempty"`
	City      *string  `json:"city,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Altitude  *float64 `json:"altitude,omitempty"`
	Timezone  *string  `json:"timezone,omitempty"`
}

// Validate：对提供的纬度/经度单独做范围校验
func (p Patch) Validate() error {
	if p.Latitude != nil && !validLat(*p.Latitude) {
		return ErrInvalidInput
	}
	if p.Longitude != nil && !validLon(*p.Longitude) {
		return ErrInvalidInput
	}
	return nil
}

// Apply：返回合并补丁后的副本，不修改入参
func (p Patch) Apply(a Airport) Airport {
	out := a
	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.City != nil {
		out.City = *p.City
	}
	if p.Latitude != nil {
		v := *p.Latitude
		out.Latitude = &v
	}
	if p.Longitude != nil {
		v := *p.Longitude
		out.Longitude = &v
	}
	if p.Altitude != nil {
		v := *p.Altitude
		out.Altitude = &v
	}
	if p.Timezone != nil {
		out.Timezone = *p.Timezone
	}
	return out
}

// CoordinatesChanged：比较更新前后的坐标对（含出现/消失）
func CoordinatesChanged(prev, next Airport) bool {
	return !sameFloat(prev.Latitude, next.Latitude) || !sameFloat(prev.Longitude, next.Longitude)
}

func sameFloat(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// ValidCoordinates：经度 [-180,180]，纬度 [-90,90]
func ValidCoordinates(lon, lat float64) bool { return validLon(lon) && validLat(lat) }

// NaN 不满足任何比较，因此会被判为越界
func validLat(v float64) bool { return v >= -90 && v <= 90 }

func validLon(v float64) bool { return v >= -180 && v <= 180 }

// ValidateRadiusQuery：半径查询入参校验，半径必须为正
func ValidateRadiusQuery(lon, lat, radiusKm float64) error {
	if !ValidCoordinates(lon, lat) || !(radiusKm > 0) {
		return ErrInvalidInput
	}
	return nil
}
