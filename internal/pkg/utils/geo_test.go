package utils

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name       string
		lat1, lon1 float64
		lat2, lon2 float64
		wantM      float64
		delta      float64
	}{
		{"same point", 35.0, 139.0, 35.0, 139.0, 0, 1e-6},
		{"one degree of latitude", 0, 0, 1, 0, 111195, 5},
		{"Tokyo to Osaka", 35.6812, 139.7671, 34.7025, 135.4959, 403000, 2000},
		{"across the antimeridian", 0, 179.5, 0, -179.5, 111195, 5},
		{"antipodes", 0, 0, 0, 180, math.Pi * earthRadiusM, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			assert.InDelta(t, tt.wantM, got, tt.delta)
			assert.InDelta(t, got/1000, DistanceKm(tt.lat1, tt.lon1, tt.lat2, tt.lon2), 1e-9)
		})
	}
}

func TestBearingAndCardinal(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
		want     float64
		cardinal string
	}{
		{"north", 1, 0, 0, "N"},
		{"east", 0, 1, 90, "E"},
		{"south", -1, 0, 180, "S"},
		{"west", 0, -1, 270, "W"},
		{"north-east", 1, 1, 45, "NE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Bearing(0, 0, tt.lat, tt.lon)
			assert.InDelta(t, tt.want, b, 0.1)
			assert.GreaterOrEqual(t, b, 0.0)
			assert.Less(t, b, 360.0)
			assert.Equal(t, tt.cardinal, Cardinal(b))
		})
	}

	assert.Equal(t, "N", Cardinal(359))
	assert.Equal(t, "N", Cardinal(-10))
	assert.Equal(t, "NW", Cardinal(315))
	assert.Equal(t, "SE", Cardinal(157.4))
}

func TestGridLocator(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
		want     string
	}{
		{"Tokyo", 35.6812, 139.7671, "PM95vq"},
		{"Munich", 48.1461, 11.6083, "JN58td"},
		{"origin", 0, 0, "JJ00aa"},
		{"south-west corner", -90, -180, "AA00aa"},
		{"north pole", 90, 0, "JR09ax"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GridLocator(tt.lat, tt.lon))
		})
	}
}

func TestGeohash(t *testing.T) {
	h := Geohash(57.64911, 10.40744, 11)
	assert.Equal(t, "u4pruydqqvj", h)
	assert.Len(t, Geohash(35.0, 139.0, 0), GeohashPrecision)
}

func TestSearchBounds_Simple(t *testing.T) {
	bounds := SearchBounds(36.0, 138.0, 111)
	require.Len(t, bounds, 1)

	b := bounds[0]
	assert.InDelta(t, 35.0, b.Min.Lat(), 1e-9)
	assert.InDelta(t, 37.0, b.Max.Lat(), 1e-9)
	// на 36° широты градус долготы короче, полуширина больше градуса
	assert.Greater(t, b.Max.Lon()-138.0, 1.2)
	assert.InDelta(t, 138.0-b.Min.Lon(), b.Max.Lon()-138.0, 1e-9)
}

func TestSearchBounds_CoversCircle(t *testing.T) {
	centers := [][2]float64{{0, 0}, {45, 10}, {70, -150}, {85, 30}, {-60, 100}}
	radii := []float64{1, 25, 150, 500}

	for _, c := range centers {
		for _, r := range radii {
			bounds := SearchBounds(c[0], c[1], r)
			for deg := 0.0; deg < 360; deg += 15 {
				lat, lon := destination(c[0], c[1], deg, r*1000*0.999)
				assert.True(t, anyContains(bounds, lat, lon),
					"center=%v r=%v bearing=%v point=(%v,%v)", c, r, deg, lat, lon)
			}
		}
	}
}

func TestSearchBounds_Antimeridian(t *testing.T) {
	bounds := SearchBounds(-17.0, 179.8, 50)
	require.Len(t, bounds, 2)

	assert.True(t, anyContains(bounds, -17.0, -179.9))
	assert.True(t, anyContains(bounds, -17.0, 179.9))
	assert.False(t, anyContains(bounds, -17.0, 0))

	bounds = SearchBounds(-17.0, -179.8, 50)
	require.Len(t, bounds, 2)
	assert.True(t, anyContains(bounds, -17.0, 179.9))
}

func TestSearchBounds_Pole(t *testing.T) {
	bounds := SearchBounds(89.9, 0, 50)
	require.Len(t, bounds, 1)
	assert.Equal(t, -180.0, bounds[0].Min.Lon())
	assert.Equal(t, 180.0, bounds[0].Max.Lon())
	assert.Equal(t, 90.0, bounds[0].Max.Lat())
}

func TestValidateCoordinates(t *testing.T) {
	assert.True(t, ValidateCoordinates(0, 0))
	assert.True(t, ValidateCoordinates(-90, 180))
	assert.False(t, ValidateCoordinates(90.01, 0))
	assert.False(t, ValidateCoordinates(0, -180.01))
	assert.False(t, ValidateCoordinates(math.NaN(), 0))
}

func TestValidateRadius(t *testing.T) {
	assert.True(t, ValidateRadius(10, 500))
	assert.True(t, ValidateRadius(500, 500))
	assert.False(t, ValidateRadius(0, 500))
	assert.False(t, ValidateRadius(-1, 500))
	assert.False(t, ValidateRadius(501, 500))
	assert.False(t, ValidateRadius(math.NaN(), 500))
}

func anyContains(bounds []orb.Bound, lat, lon float64) bool {
	for _, b := range bounds {
		if b.Contains(orb.Point{lon, lat}) {
			return true
		}
	}
	return false
}

// destination - точка на расстоянии distM по азимуту bearing
func destination(lat, lon, bearing, distM float64) (float64, float64) {
	phi1 := toRad(lat)
	lambda1 := toRad(lon)
	theta := toRad(bearing)
	delta := distM / earthRadiusM

	phi2 := math.Asin(math.Sin(phi1)*math.Cos(delta) + math.Cos(phi1)*math.Sin(delta)*math.Cos(theta))
	lambda2 := lambda1 + math.Atan2(
		math.Sin(theta)*math.Sin(delta)*math.Cos(phi1),
		math.Cos(delta)-math.Sin(phi1)*math.Sin(phi2),
	)
	return toDeg(phi2), normalizeLongitude(toDeg(lambda2))
}
