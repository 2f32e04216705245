package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arvenlabs/billing-svc/internal/service/models/orderitem"
)

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		name         string
		items        []orderitem.OrderItem
		discountCode string
		wantSubtotal int64
		wantDiscount int64
		wantTax      int64
		wantTotal    int64
	}{
		{
			name: "single_item_no_discount",
			items: []orderitem.OrderItem{
				{UnitPriceCents: 20000, Quantity: 1},
			},
			wantSubtotal: 20000,
			wantDiscount: 0,
			wantTax:      4200,
			wantTotal:    24200,
		},
		{
			name: "two_items_with_save20",
			items: []orderitem.OrderItem{
				{UnitPriceCents: 10000, Quantity: 2},
				{UnitPriceCents: 5000, Quantity: 1},
			},
			discountCode: "SAVE20",
			wantSubtotal: 25000,
			wantDiscount: 5000,
			wantTax:      4200,
			wantTotal:    24200,
		},
		{
			name: "unknown_code_ignored",
			items: []orderitem.OrderItem{
				{UnitPriceCents: 10000, Quantity: 1},
			},
			discountCode: "NOSUCHCODE",
			wantSubtotal: 10000,
			wantDiscount: 0,
			wantTax:      2100,
			wantTotal:    12100,
		},
		{
			name: "first50_halves_subtotal",
			items: []orderitem.OrderItem{
				{UnitPriceCents: 9999, Quantity: 1},
			},
			discountCode: "FIRST50",
			wantSubtotal: 9999,
			wantDiscount: 5000,
			wantTax:      1050,
			wantTotal:    6049,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := Order{DiscountCode: tt.discountCode, OrderItems: tt.items}
			o.ComputeTotals()

			assert.Equal(t, tt.wantSubtotal, o.SubtotalCents)
			assert.Equal(t, tt.wantDiscount, o.DiscountCents)
			assert.Equal(t, tt.wantTax, o.TaxCents)
			assert.Equal(t, tt.wantTotal, o.TotalCents)
		})
	}
}

func TestComputeTotalsRecomputesLineTotals(t *testing.T) {
	o := Order{
		OrderItems: []orderitem.OrderItem{
			{UnitPriceCents: 1500, Quantity: 3, TotalCents: 999},
		},
	}
	o.ComputeTotals()

	require.Equal(t, int64(4500), o.OrderItems[0].TotalCents)
	require.Equal(t, int64(4500), o.SubtotalCents)
}

func TestLeadDays(t *testing.T) {
	tests := []struct {
		estimate string
		want     int
	}{
		{"5-7 días", 5},
		{"2 semanas", 2},
		{"10 días", 10},
		{"inmediato", DefaultLeadDays},
		{"", DefaultLeadDays},
		{"en 14 días hábiles", 14},
	}

	for _, tt := range tests {
		t.Run(tt.estimate, func(t *testing.T) {
			assert.Equal(t, tt.want, LeadDays(tt.estimate))
		})
	}
}

func TestEstimateDelivery(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("max_across_items", func(t *testing.T) {
		items := []orderitem.OrderItem{
			{DeliveryEstimate: "3 días"},
			{DeliveryEstimate: "12 días"},
			{DeliveryEstimate: "5-7 días"},
		}
		assert.Equal(t, now.AddDate(0, 0, 12), EstimateDelivery(items, now))
	})

	t.Run("no_items_uses_default", func(t *testing.T) {
		assert.Equal(t, now.AddDate(0, 0, DefaultLeadDays), EstimateDelivery(nil, now))
	})

	t.Run("short_estimate_below_default", func(t *testing.T) {
		items := []orderitem.OrderItem{{DeliveryEstimate: "2 días"}}
		assert.Equal(t, now.AddDate(0, 0, 2), EstimateDelivery(items, now))
	})
}

func TestFormatOrderNumber(t *testing.T) {
	assert.Equal(t, "ORD-001000", FormatOrderNumber(1000))
	assert.Equal(t, "ORD-001001", FormatOrderNumber(1001))
	assert.Equal(t, "ORD-999999", FormatOrderNumber(999999))
}

func TestDiscountRate(t *testing.T) {
	assert.Equal(t, 0.10, DiscountRate("WELCOME10"))
	assert.Equal(t, 0.20, DiscountRate("SAVE20"))
	assert.Equal(t, 0.50, DiscountRate("FIRST50"))
	assert.Equal(t, 0.0, DiscountRate("welcome10"))
	assert.Equal(t, 0.0, DiscountRate(""))
}
