// Package order derives the monetary fields of a validated order row.
package order

import (
	"github.com/ginjaninja78/order-report-summary/internal/validation"
	"github.com/shopspring/decimal"
)

// DefaultTaxRate is the rate applied to net prices unless configured otherwise.
const DefaultTaxRate = 0.23

// Order wraps one validated record. It is immutable after construction.
type Order struct {
	record  validation.Record
	taxRate float64
}

// New builds an Order priced with taxRate.
func New(record validation.Record, taxRate float64) Order {
	return Order{record: record, taxRate: taxRate}
}

// Record returns the validated record backing o.
func (o Order) Record() validation.Record { return o.record }

// TaxRate returns the rate o is priced with.
func (o Order) TaxRate() float64 { return o.taxRate }

// GrossPrice is the unit price including tax: price * (1 + rate).
func (o Order) GrossPrice() float64 {
	return o.record.Price * (1 + o.taxRate)
}

// TotalPrice is the gross price times quantity. Values keep full precision;
// see Round for presentation.
func (o Order) TotalPrice() float64 {
	return o.GrossPrice() * float64(o.record.Quantity)
}

// Round rounds v half away from zero to places decimals. Use it only at the
// presentation boundary.
func Round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
