package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineDistance(t *testing.T) {
	tests := []struct {
		name      string
		from      Coordinates
		to        Coordinates
		wantKm    float64
		tolerance float64
	}{
		{
			name:      "same point",
			from:      Coordinates{Latitude: -1.2921, Longitude: 36.8219},
			to:        Coordinates{Latitude: -1.2921, Longitude: 36.8219},
			wantKm:    0,
			tolerance: 0.001,
		},
		{
			name:      "one degree of longitude at the equator",
			from:      Coordinates{Latitude: 0, Longitude: 0},
			to:        Coordinates{Latitude: 0, Longitude: 1},
			wantKm:    111.19,
			tolerance: 0.5,
		},
		{
			name:      "nairobi to mombasa",
			from:      Coordinates{Latitude: -1.2921, Longitude: 36.8219},
			to:        Coordinates{Latitude: -4.0435, Longitude: 39.6682},
			wantKm:    440,
			tolerance: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HaversineDistance(tt.from, tt.to)
			assert.InDelta(t, tt.wantKm, got, tt.tolerance)
		})
	}
}

func TestHaversineDistanceSymmetric(t *testing.T) {
	a := Coordinates{Latitude: -1.2921, Longitude: 36.8219}
	b := Coordinates{Latitude: -4.0435, Longitude: 39.6682}

	assert.InDelta(t, HaversineDistance(a, b), HaversineDistance(b, a), 0.0001)
}

func TestHaversineDistanceOrdering(t *testing.T) {
	// A driver one degree away must always beat one five degrees away.
	store := Coordinates{Latitude: 0, Longitude: 0}
	near := Coordinates{Latitude: 0, Longitude: 1}
	far := Coordinates{Latitude: 0, Longitude: 5}

	assert.Less(t, HaversineDistance(store, near), HaversineDistance(store, far))
}
