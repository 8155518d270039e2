package order

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeTax(t *testing.T) {
	tests := []struct {
		name     string
		subtotal int64
		taxRate  float64
		want     int64
	}{
		{name: "standard rate", subtotal: 20000, taxRate: 0.16, want: 3200},
		{name: "zero subtotal", subtotal: 0, taxRate: 0.16, want: 0},
		{name: "zero rate", subtotal: 50000, taxRate: 0, want: 0},
		{name: "rounds half up", subtotal: 103, taxRate: 0.16, want: 16},
		{name: "rounds up past half", subtotal: 110, taxRate: 0.16, want: 18},
		{name: "single cent", subtotal: 1, taxRate: 0.16, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeTax(tt.subtotal, tt.taxRate))
		})
	}
}

func TestComputeTotal(t *testing.T) {
	tests := []struct {
		name           string
		subtotal       int64
		deliveryFee    int64
		taxAmount      int64
		discountAmount int64
		want           int64
	}{
		{name: "pickup order with no fee", subtotal: 20000, deliveryFee: 0, taxAmount: 3200, discountAmount: 0, want: 23200},
		{name: "delivery order", subtotal: 20000, deliveryFee: 500, taxAmount: 3200, discountAmount: 0, want: 23700},
		{name: "discount applied", subtotal: 10000, deliveryFee: 300, taxAmount: 1600, discountAmount: 2000, want: 9900},
		{name: "empty order", subtotal: 0, deliveryFee: 0, taxAmount: 0, discountAmount: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTotal(tt.subtotal, tt.deliveryFee, tt.taxAmount, tt.discountAmount)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMonthPrefix(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		at     time.Time
		want   string
	}{
		{
			name:   "double digit month",
			prefix: "ORD",
			at:     time.Date(2026, time.November, 3, 10, 0, 0, 0, time.UTC),
			want:   "ORD202611",
		},
		{
			name:   "single digit month is zero padded",
			prefix: "ORD",
			at:     time.Date(2026, time.August, 31, 23, 59, 0, 0, time.UTC),
			want:   "ORD202608",
		},
		{
			name:   "custom prefix",
			prefix: "MKT",
			at:     time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
			want:   "MKT202501",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MonthPrefix(tt.prefix, tt.at))
		})
	}
}

func TestFormatOrderNumber(t *testing.T) {
	tests := []struct {
		name        string
		monthPrefix string
		seq         int64
		want        string
	}{
		{name: "first of month", monthPrefix: "ORD202608", seq: 1, want: "ORD2026080001"},
		{name: "padded to four digits", monthPrefix: "ORD202608", seq: 42, want: "ORD2026080042"},
		{name: "grows past padding", monthPrefix: "ORD202608", seq: 12345, want: "ORD20260812345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatOrderNumber(tt.monthPrefix, tt.seq))
		})
	}
}

func TestReleaseOrderItems(t *testing.T) {
	items := []OrderItem{
		{ProductID: 11, Quantity: 2},
		{ProductID: 12, Quantity: 1},
		{ProductID: 13, Quantity: 4},
	}

	t.Run("all items released", func(t *testing.T) {
		report := releaseOrderItems(items, func(productID uint, quantity int) error {
			return nil
		})
		require.Len(t, report.Released, 3)
		assert.Empty(t, report.Failed)
		assert.Equal(t, uint(11), report.Released[0].ProductID)
		assert.Equal(t, 2, report.Released[0].Quantity)
	})

	t.Run("one failure does not stop the rest", func(t *testing.T) {
		report := releaseOrderItems(items, func(productID uint, quantity int) error {
			if productID == 12 {
				return errors.New("record drained")
			}
			return nil
		})
		require.Len(t, report.Released, 2)
		require.Len(t, report.Failed, 1)
		assert.Equal(t, uint(12), report.Failed[0].ProductID)
		assert.Equal(t, 1, report.Failed[0].Quantity)
		assert.Equal(t, "record drained", report.Failed[0].Reason)
		assert.Equal(t, uint(13), report.Released[1].ProductID)
	})

	t.Run("no items", func(t *testing.T) {
		report := releaseOrderItems(nil, func(uint, int) error { return nil })
		assert.Empty(t, report.Released)
		assert.Empty(t, report.Failed)
	})
}
