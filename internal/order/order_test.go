package order

import (
	"testing"

	"github.com/ginjaninja78/order-report-summary/internal/validation"
	"github.com/stretchr/testify/assert"
)

func testOrder(price float64, qty int) Order {
	return New(validation.Record{ID: 1, Name: "Product1", Price: price, Quantity: qty}, DefaultTaxRate)
}

func TestOrder_GrossPrice(t *testing.T) {
	o := testOrder(100, 3)
	assert.InDelta(t, 123.0, o.GrossPrice(), 1e-9)
}

func TestOrder_TotalPrice(t *testing.T) {
	tests := []struct {
		name  string
		price float64
		qty   int
		want  float64
	}{
		{name: "three units", price: 100, qty: 3, want: 369},
		{name: "single unit", price: 150, qty: 1, want: 184.5},
		{name: "twenty units", price: 150, qty: 20, want: 3690},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, testOrder(tt.price, tt.qty).TotalPrice(), 1e-9)
		})
	}
}

func TestOrder_CustomTaxRate(t *testing.T) {
	o := New(validation.Record{ID: 1, Name: "Product1", Price: 200, Quantity: 2}, 0.5)

	assert.InDelta(t, 300.0, o.GrossPrice(), 1e-9)
	assert.InDelta(t, 600.0, o.TotalPrice(), 1e-9)
	assert.Equal(t, 0.5, o.TaxRate())
}

func TestOrder_ZeroTaxRate(t *testing.T) {
	o := New(validation.Record{ID: 1, Name: "Product1", Price: 12.5, Quantity: 4}, 0)

	assert.Equal(t, 12.5, o.GrossPrice())
	assert.Equal(t, 50.0, o.TotalPrice())
}

func TestRound(t *testing.T) {
	assert.Equal(t, 221.4, Round(180*1.23, 2))
	assert.Equal(t, 0.13, Round(0.125, 2))
	assert.Equal(t, 2.0, Round(1.999, 2))
	assert.Equal(t, -1.24, Round(-1.235, 2))
}
