package delivery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCanTransitionTo(t *testing.T) {
	tests := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusPending, StatusAssigned, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusPickedUp, false},
		{StatusAssigned, StatusPickedUp, true},
		{StatusAssigned, StatusCancelled, true},
		{StatusAssigned, StatusInTransit, false},
		{StatusPickedUp, StatusInTransit, true},
		{StatusPickedUp, StatusCancelled, true},
		{StatusPickedUp, StatusDelivered, false},
		{StatusInTransit, StatusDelivered, true},
		{StatusInTransit, StatusCancelled, true},
		{StatusDelivered, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestStatusIsTerminal(t *testing.T) {
	assert.True(t, StatusDelivered.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusInTransit.IsTerminal())
}

func TestStatusIsValid(t *testing.T) {
	assert.True(t, StatusAssigned.IsValid())
	assert.False(t, Status("LOST").IsValid())
}

func TestRouteCoordinatesRoundtrip(t *testing.T) {
	d := &Delivery{}
	points := [][]float64{{36.8219, -1.2921}, {36.83, -1.30}, {36.84, -1.31}}

	require.NoError(t, d.SetRouteCoordinates(points))
	assert.NotEmpty(t, d.RouteCoordinates)

	got, err := d.GetRouteCoordinates()
	require.NoError(t, err)
	assert.Equal(t, points, got)
}

func TestRouteCoordinatesEmpty(t *testing.T) {
	d := &Delivery{}

	require.NoError(t, d.SetRouteCoordinates(nil))
	assert.Empty(t, d.RouteCoordinates)

	got, err := d.GetRouteCoordinates()
	require.NoError(t, err)
	assert.Nil(t, got)
}
