package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInventoryTotalQuantity(t *testing.T) {
	inv := Inventory{AvailableQuantity: 7, ReservedQuantity: 3}
	assert.Equal(t, 10, inv.TotalQuantity())
}

func TestInventoryIsLowStock(t *testing.T) {
	tests := []struct {
		name      string
		available int
		reorder   int
		want      bool
	}{
		{name: "above reorder level", available: 10, reorder: 5, want: false},
		{name: "at reorder level", available: 5, reorder: 5, want: true},
		{name: "below reorder level", available: 2, reorder: 5, want: true},
		{name: "empty", available: 0, reorder: 5, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := Inventory{AvailableQuantity: tt.available, ReorderLevel: tt.reorder}
			assert.Equal(t, tt.want, inv.IsLowStock())
		})
	}
}

func TestInventoryIsOutOfStock(t *testing.T) {
	assert.True(t, (&Inventory{AvailableQuantity: 0}).IsOutOfStock())
	assert.False(t, (&Inventory{AvailableQuantity: 1}).IsOutOfStock())

	// Reserved units do not count as available.
	assert.True(t, (&Inventory{AvailableQuantity: 0, ReservedQuantity: 4}).IsOutOfStock())
}

func TestInventoryCanReserve(t *testing.T) {
	tests := []struct {
		name      string
		available int
		quantity  int
		want      bool
	}{
		{name: "exact amount", available: 5, quantity: 5, want: true},
		{name: "less than available", available: 5, quantity: 3, want: true},
		{name: "more than available", available: 5, quantity: 6, want: false},
		{name: "zero quantity", available: 5, quantity: 0, want: false},
		{name: "negative quantity", available: 5, quantity: -1, want: false},
		{name: "nothing available", available: 0, quantity: 1, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := Inventory{AvailableQuantity: tt.available}
			assert.Equal(t, tt.want, inv.CanReserve(tt.quantity))
		})
	}
}
