package delivery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEstimateArrival(t *testing.T) {
	now := time.Date(2026, time.August, 31, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name            string
		durationSeconds float64
		want            time.Time
	}{
		{name: "exact minutes", durationSeconds: 600, want: now.Add(10 * time.Minute)},
		{name: "partial minute rounds up", durationSeconds: 601, want: now.Add(11 * time.Minute)},
		{name: "under a minute counts as one", durationSeconds: 30, want: now.Add(1 * time.Minute)},
		{name: "zero duration", durationSeconds: 0, want: now},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EstimateArrival(now, tt.durationSeconds))
		})
	}
}

func TestRouteSummary(t *testing.T) {
	tests := []struct {
		name            string
		distanceMeters  float64
		durationSeconds float64
		want            string
	}{
		{name: "typical route", distanceMeters: 4250, durationSeconds: 780, want: "4.2 km, ~13 min"},
		{name: "short hop", distanceMeters: 900, durationSeconds: 150, want: "0.9 km, ~3 min"},
		{name: "duration rounds up", distanceMeters: 1000, durationSeconds: 61, want: "1.0 km, ~2 min"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RouteSummary(tt.distanceMeters, tt.durationSeconds))
		})
	}
}
