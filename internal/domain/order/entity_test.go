package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCanTransitionTo(t *testing.T) {
	tests := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusPreparing, false},
		{StatusPending, StatusDelivered, false},
		{StatusConfirmed, StatusPreparing, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusReadyForPickup, false},
		{StatusPreparing, StatusReadyForPickup, true},
		{StatusPreparing, StatusCancelled, true},
		{StatusPreparing, StatusInTransit, false},
		{StatusReadyForPickup, StatusInTransit, true},
		{StatusReadyForPickup, StatusCancelled, true},
		{StatusReadyForPickup, StatusDelivered, false},
		{StatusInTransit, StatusDelivered, true},
		{StatusInTransit, StatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestTerminalStatusesHaveNoTransitions(t *testing.T) {
	terminals := []Status{StatusDelivered, StatusCancelled, StatusRefunded}
	all := []Status{
		StatusPending, StatusConfirmed, StatusPreparing, StatusReadyForPickup,
		StatusInTransit, StatusDelivered, StatusCancelled, StatusRefunded,
	}

	for _, terminal := range terminals {
		assert.True(t, terminal.IsTerminal(), "%s should be terminal", terminal)
		for _, target := range all {
			assert.False(t, terminal.CanTransitionTo(target),
				"%s must not transition to %s", terminal, target)
		}
	}
}

func TestStatusIsValid(t *testing.T) {
	assert.True(t, StatusPending.IsValid())
	assert.True(t, StatusRefunded.IsValid())
	assert.False(t, Status("SHIPPED").IsValid())
	assert.False(t, Status("").IsValid())
}

func TestOrderStateHelpers(t *testing.T) {
	tests := []struct {
		status       Status
		canCancel    bool
		canRemove    bool
		canRate      bool
	}{
		{StatusPending, true, false, false},
		{StatusConfirmed, true, false, false},
		{StatusPreparing, true, false, false},
		{StatusReadyForPickup, true, false, false},
		{StatusInTransit, true, false, false},
		{StatusDelivered, false, true, true},
		{StatusCancelled, false, true, false},
		{StatusRefunded, false, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			o := Order{Status: tt.status}
			assert.Equal(t, tt.canCancel, o.CanBeCancelled())
			assert.Equal(t, tt.canRemove, o.CanBeRemoved())
			assert.Equal(t, tt.canRate, o.CanBeRated())
		})
	}
}
