// =============================================================================
// Order Report Summary - Fake Data Generator
// =============================================================================
//
// Produces daily order workbooks for trying the pipeline without real data.
// A Generator prices a fixed product catalogue once, then every batch draws
// products from it:
//
//   - ids start at the given id and grow by one; with a 25% chance a row
//     repeats the previous id (several products on one order)
//   - quantities are 1..9
//   - every batch gets a distinct random past date, which names the file
//
// =============================================================================

package fakedata

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/xuri/excelize/v2"
)

// ProductNames is the fixed catalogue fake orders are drawn from.
var ProductNames = []string{
	"AeroFlare", "QuantumBlend", "SolarPure", "EcoSphere", "VertexOne",
	"LumeTrack", "VitalBloom", "PulseCore", "OptiWave", "CrystalVibe",
	"ZenithPro", "FusionCraft", "NovaLite", "HyperShield", "PrismEdge",
	"GlideStream", "NimbusTouch", "AquaLuxe", "SkyBound", "ElementFlow",
}

// Header is the column order of generated workbooks.
var Header = []string{"id", "name", "quantity", "price"}

const (
	// repeatChance is the percentage of rows that reuse the previous id.
	repeatChance = 25

	minPrice = 1
	maxPrice = 10000

	minQuantity = 1
	maxQuantity = 9

	// dateSpan bounds how far back batch dates are drawn.
	dateSpan = 5 * 365 * 24 * time.Hour

	fileLayout = "2006_01_02"
	maxDateTry = 100
)

var (
	// ErrNegativeStartID is returned for a start id below zero.
	ErrNegativeStartID = errors.New("start id must be >= 0")

	// ErrDatesExhausted is returned when no unused date could be drawn.
	ErrDatesExhausted = errors.New("no unused batch date left")
)

// Product is one catalogue entry with its fixed net price.
type Product struct {
	Name  string
	Price float64
}

// Order is one generated row.
type Order struct {
	ID       int
	Name     string
	Quantity int
	Price    float64
}

// Batch is one generated daily report.
type Batch struct {
	Date   time.Time
	Orders []Order
}

// FileName is the report file name derived from the batch date.
func (b Batch) FileName() string {
	return b.Date.Format(fileLayout) + ".xlsx"
}

// Generator draws fake batches from a priced catalogue.
type Generator struct {
	faker    *gofakeit.Faker
	products []Product
	used     map[string]bool
	now      func() time.Time
}

// New returns a Generator. A zero seed draws a random one.
func New(seed int64) *Generator {
	faker := gofakeit.New(seed)

	products := make([]Product, len(ProductNames))
	for i, name := range ProductNames {
		products[i] = Product{Name: name, Price: faker.Price(minPrice, maxPrice)}
	}

	return &Generator{
		faker:    faker,
		products: products,
		used:     make(map[string]bool),
		now:      time.Now,
	}
}

// Products returns the priced catalogue.
func (g *Generator) Products() []Product {
	out := make([]Product, len(g.products))
	copy(out, g.products)
	return out
}

// Generate builds a batch of rows orders with ids starting at startID.
func (g *Generator) Generate(startID, rows int) (Batch, error) {
	if startID < 0 {
		return Batch{}, ErrNegativeStartID
	}

	date, err := g.nextDate()
	if err != nil {
		return Batch{}, err
	}

	orders := make([]Order, 0, rows)
	id := startID
	for i := 0; i < rows; i++ {
		if i > 0 && g.faker.Number(1, 100) > repeatChance {
			id++
		}

		product := g.products[g.faker.Number(0, len(g.products)-1)]
		orders = append(orders, Order{
			ID:       id,
			Name:     product.Name,
			Quantity: g.faker.Number(minQuantity, maxQuantity),
			Price:    product.Price,
		})
	}

	return Batch{Date: date, Orders: orders}, nil
}

// nextDate draws a past date not used by an earlier batch.
func (g *Generator) nextDate() (time.Time, error) {
	end := g.now()
	start := end.Add(-dateSpan)

	for i := 0; i < maxDateTry; i++ {
		d := g.faker.DateRange(start, end)
		d = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)

		key := d.Format(fileLayout)
		if g.used[key] {
			continue
		}
		g.used[key] = true
		return d, nil
	}
	return time.Time{}, ErrDatesExhausted
}

// =============================================================================
// WORKBOOK OUTPUT
// =============================================================================

// Write saves batch as dir/<YYYY_MM_DD>.xlsx with a header row and returns
// the file path.
func Write(dir string, batch Batch) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return "", fmt.Errorf("failed to write header: %w", err)
	}

	for i, o := range batch.Orders {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return "", err
		}
		row := []any{o.ID, o.Name, o.Quantity, o.Price}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return "", fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}

	path := filepath.Join(dir, batch.FileName())
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", batch.FileName(), err)
	}
	return path, nil
}
