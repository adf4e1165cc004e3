package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineDistance_KnownPoints(t *testing.T) {
	// Monas to Bundaran HI, Jakarta: roughly 1.9km.
	d := HaversineDistance(-6.175392, 106.827153, -6.193125, 106.821810)
	assert.InDelta(t, 2060, d, 150)
}

func TestHaversineDistance_SamePoint(t *testing.T) {
	d := HaversineDistance(-6.2, 106.8, -6.2, 106.8)
	assert.Equal(t, 0.0, d)
}

func TestValidate_InsideRadius(t *testing.T) {
	office := &Coordinate{Latitude: -6.175392, Longitude: 106.827153}

	// ~15m offset from the office point.
	res := Validate(Coordinate{Latitude: -6.175392, Longitude: 106.827290}, office, 100)

	assert.True(t, res.Accepted)
	assert.False(t, res.Skipped)
	assert.Greater(t, res.DistanceMeters, 0.0)
	assert.Less(t, res.DistanceMeters, 100.0)
}

func TestValidate_OutsideRadius(t *testing.T) {
	office := &Coordinate{Latitude: -6.175392, Longitude: 106.827153}

	res := Validate(Coordinate{Latitude: -6.193125, Longitude: 106.821810}, office, 100)

	assert.False(t, res.Accepted)
	assert.Greater(t, res.DistanceMeters, 100.0)
}

func TestValidate_NoOfficeConfiguredBypasses(t *testing.T) {
	res := Validate(Coordinate{Latitude: 1, Longitude: 1}, nil, 0)

	assert.True(t, res.Accepted)
	assert.True(t, res.Skipped)
	assert.Equal(t, 0.0, res.DistanceMeters)
}
