package utils

import (
	"math"

	geohash "github.com/TomiHiltunen/geohash-golang"
	"github.com/paulmach/orb"
)

const (
	earthRadiusM = 6371000.0

	// kmPerDegree - приближение 1° широты ≈ 111 км, используемое для грубого прямоугольника поиска
	kmPerDegree = 111.0

	// minCosLat не даёт долготной полуширине расходиться у полюсов
	minCosLat = 1e-6

	// GeohashPrecision - 7 символов ≈ 150 м, достаточно для подписи точки
	GeohashPrecision = 7
)

// CardinalPoints - восемь румбов по часовой стрелке начиная с севера
var CardinalPoints = [8]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

func toRad(deg float64) float64 { return deg * math.Pi / 180.0 }
func toDeg(rad float64) float64 { return rad * 180.0 / math.Pi }

// Distance вычисляет расстояние по большому кругу (haversine) в метрах
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(toRad(lat1))*math.Cos(toRad(lat2))
	if a > 1 {
		a = 1
	}
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusM * c
}

// DistanceKm - то же, что Distance, но в километрах
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	return Distance(lat1, lon1, lat2, lon2) / 1000.0
}

// Bearing возвращает начальный азимут от точки 1 к точке 2 в градусах [0, 360)
func Bearing(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := toRad(lat1)
	phi2 := toRad(lat2)
	dLon := toRad(lon2 - lon1)

	y := math.Sin(dLon) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLon)

	return normalizeDegrees(toDeg(math.Atan2(y, x)))
}

// Cardinal переводит азимут в ближайший из восьми румбов
func Cardinal(bearing float64) string {
	idx := int(math.Round(normalizeDegrees(bearing)/45.0)) % 8
	return CardinalPoints[idx]
}

func normalizeDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	if deg >= 360 {
		deg = 0
	}
	return deg
}

// GridLocator возвращает 6-символьный локатор Maidenhead (например PM95vq)
func GridLocator(lat, lon float64) string {
	lon = normalizeLongitude(lon) + 180
	lat = clampLatitude(lat) + 90
	// северный полюс попадает в последнюю клетку, а не за сетку
	if lat >= 180 {
		lat = 180 - 1e-9
	}

	fieldLon := int(lon / 20)
	fieldLat := int(lat / 10)
	lon -= float64(fieldLon) * 20
	lat -= float64(fieldLat) * 10

	squareLon := int(lon / 2)
	squareLat := int(lat / 1)
	lon -= float64(squareLon) * 2
	lat -= float64(squareLat)

	subLon := int(lon * 12)
	subLat := int(lat * 24)

	return string([]byte{
		byte('A' + fieldLon),
		byte('A' + fieldLat),
		byte('0' + squareLon),
		byte('0' + squareLat),
		byte('a' + subLon),
		byte('a' + subLat),
	})
}

// Geohash кодирует координату в geohash заданной точности
func Geohash(lat, lon float64, precision int) string {
	if precision <= 0 {
		precision = GeohashPrecision
	}
	return geohash.EncodeWithPrecision(clampLatitude(lat), normalizeLongitude(lon), precision)
}

// SearchBounds строит прямоугольник(и), покрывающие круг радиуса radiusKm вокруг точки.
// Используется только для отсечения кандидатов: 1° широты ≈ 111 км, 1° долготы ≈ 111 км·cos(lat).
// Прямоугольник, пересекающий антимеридиан, разбивается на два.
func SearchBounds(lat, lon, radiusKm float64) []orb.Bound {
	dLat := radiusKm / kmPerDegree
	cosLat := math.Cos(toRad(lat))
	if cosLat < minCosLat {
		cosLat = minCosLat
	}
	dLon := radiusKm / (kmPerDegree * cosLat)
	// на высоких широтах круг шире такого прямоугольника: берём точную полуширину, если она больше
	if s := math.Sin(radiusKm*1000/earthRadiusM) / cosLat; s < 1 {
		dLon = math.Max(dLon, toDeg(math.Asin(s)))
	} else {
		dLon = 180
	}

	minLat := math.Max(lat-dLat, -90)
	maxLat := math.Min(lat+dLat, 90)

	// у полюса или при огромном радиусе покрываем весь пояс широт
	if dLon >= 180 || minLat <= -90 || maxLat >= 90 {
		return []orb.Bound{{Min: orb.Point{-180, minLat}, Max: orb.Point{180, maxLat}}}
	}

	minLon := lon - dLon
	maxLon := lon + dLon
	switch {
	case minLon < -180:
		return []orb.Bound{
			{Min: orb.Point{-180, minLat}, Max: orb.Point{maxLon, maxLat}},
			{Min: orb.Point{minLon + 360, minLat}, Max: orb.Point{180, maxLat}},
		}
	case maxLon > 180:
		return []orb.Bound{
			{Min: orb.Point{minLon, minLat}, Max: orb.Point{180, maxLat}},
			{Min: orb.Point{-180, minLat}, Max: orb.Point{maxLon - 360, maxLat}},
		}
	}
	return []orb.Bound{{Min: orb.Point{minLon, minLat}, Max: orb.Point{maxLon, maxLat}}}
}

// PointBound - вырожденный прямоугольник точки (min == max)
func PointBound(lat, lon float64) orb.Bound {
	p := orb.Point{lon, lat}
	return orb.Bound{Min: p, Max: p}
}

func clampLatitude(lat float64) float64 {
	return math.Max(-90, math.Min(90, lat))
}

func normalizeLongitude(lon float64) float64 {
	if lon >= -180 && lon < 180 {
		return lon
	}
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}

// ValidateCoordinates проверяет валидность координат
func ValidateCoordinates(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// ValidateRadius проверяет, что радиус положителен и не превышает maxKm
func ValidateRadius(radiusKm, maxKm float64) bool {
	return radiusKm > 0 && radiusKm <= maxKm && !math.IsNaN(radiusKm)
}
