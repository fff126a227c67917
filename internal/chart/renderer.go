// =============================================================================
// Order Report Summary - Chart Renderer
// =============================================================================
//
// Renders summary charts to PNG files with go-chart:
//
//   - RenderTimeSeries: income per report date as a line with markers
//   - RenderProportion: share of income per product as a pie
//
// Both return the pixel size of the written image so callers can scale it
// when embedding. go-chart refuses to draw an axis whose range has zero
// width and derives the x range from the ticks when any are set, so the time
// axis always carries an unlabelled tick half a step past each end. Points
// that share a date are spread out by position instead of by day.
//
// =============================================================================

package chart

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	gochart "github.com/wcharczuk/go-chart/v2"

	"github.com/ginjaninja78/order-report-summary/internal/types"
)

// Default canvas size in pixels.
const (
	DefaultWidth  = 1024
	DefaultHeight = 512
)

// maxTicks caps the labelled dates on the time axis.
const maxTicks = 12

// dateLabel formats dates on the time axis.
const dateLabel = "2006-01-02"

var (
	// ErrNoPoints is returned when a chart has nothing to draw.
	ErrNoPoints = errors.New("chart has no data points")

	// ErrNoShares is returned when a proportion chart has no positive share.
	ErrNoShares = errors.New("chart has no positive shares")
)

// Renderer draws charts as PNG files.
type Renderer struct {
	Width  int
	Height int
}

// NewRenderer returns a Renderer with the given canvas size. Non-positive
// dimensions fall back to the defaults.
func NewRenderer(width, height int) *Renderer {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return &Renderer{Width: width, Height: height}
}

// RenderTimeSeries draws points in date order as a line chart at path.
// It returns the pixel size of the written image.
func (r *Renderer) RenderTimeSeries(ctx context.Context, title string, points []types.DatePoint, path string) (int, int, error) {
	if len(points) == 0 {
		return 0, 0, ErrNoPoints
	}

	xs := positions(points)
	ys := make([]float64, len(points))
	for i, p := range points {
		ys[i] = p.Amount
	}

	xMin, xMax := bounds(xs)
	yMin, yMax := bounds(ys)
	yMin = math.Min(yMin, 0)

	graph := gochart.Chart{
		Title:  title,
		Width:  r.Width,
		Height: r.Height,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: gochart.XAxis{
			Name:  "Date",
			Range: &gochart.ContinuousRange{Min: xMin - 0.5, Max: xMax + 0.5},
			Ticks: dateTicks(points, xs, xMin-0.5, xMax+0.5),
		},
		YAxis: gochart.YAxis{
			Name:           "Total income",
			Range:          &gochart.ContinuousRange{Min: yMin, Max: padTop(yMin, yMax)},
			ValueFormatter: gochart.FloatValueFormatter,
		},
		Series: []gochart.Series{
			gochart.ContinuousSeries{
				Name:    title,
				XValues: xs,
				YValues: ys,
				Style: gochart.Style{
					StrokeWidth: 2,
					DotWidth:    4,
				},
			},
		},
	}

	return r.save(ctx, path, graph.Render)
}

// RenderProportion draws each share's part of the whole as a pie chart at
// path. Shares that are not positive are left out.
func (r *Renderer) RenderProportion(ctx context.Context, title string, shares []types.CategoryAmount, path string) (int, int, error) {
	var (
		values []gochart.Value
		total  float64
	)
	for _, s := range shares {
		if s.Amount > 0 {
			total += s.Amount
		}
	}
	if total == 0 {
		return 0, 0, ErrNoShares
	}

	for _, s := range shares {
		if s.Amount <= 0 {
			continue
		}
		values = append(values, gochart.Value{
			Value: s.Amount,
			Label: fmt.Sprintf("%s %.1f%%", s.Label, s.Amount/total*100),
		})
	}

	pie := gochart.PieChart{
		Title:  title,
		Width:  r.Width,
		Height: r.Height,
		Values: values,
	}

	return r.save(ctx, path, pie.Render)
}

// save renders into path and reads back the image size.
func (r *Renderer) save(ctx context.Context, path string, render func(gochart.RendererProvider, io.Writer) error) (int, int, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return 0, 0, fmt.Errorf("failed to create chart directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to create chart file: %w", err)
	}
	if err := render(gochart.PNG, file); err != nil {
		file.Close()
		return 0, 0, fmt.Errorf("failed to render chart: %w", err)
	}
	if err := file.Close(); err != nil {
		return 0, 0, fmt.Errorf("failed to close chart file: %w", err)
	}

	width, height, err := Size(path)
	if err != nil {
		return 0, 0, err
	}

	zerolog.Ctx(ctx).Debug().
		Str("path", path).
		Int("width", width).
		Int("height", height).
		Msg("chart rendered")

	return width, height, nil
}

// Size returns the pixel dimensions of the image at path.
func Size(path string) (int, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	cfg, _, err := image.DecodeConfig(file)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decode image %s: %w", filepath.Base(path), err)
	}
	return cfg.Width, cfg.Height, nil
}

// =============================================================================
// AXES
// =============================================================================

func bounds(values []float64) (float64, float64) {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// padTop leaves headroom above the highest value and keeps the range
// non-empty when every value is the same.
func padTop(lo, hi float64) float64 {
	span := hi - lo
	if span <= 0 {
		span = math.Max(math.Abs(hi), 1)
	}
	return hi + span*0.1
}

// positions places points on the time axis by whole days since the first
// point. When two points share a day they are placed by index instead, so
// every point keeps its own x value.
func positions(points []types.DatePoint) []float64 {
	origin := points[0].Date
	xs := make([]float64, len(points))
	seen := make(map[float64]bool, len(points))
	for i, p := range points {
		xs[i] = math.Round(p.Date.Sub(origin).Hours() / 24)
		if seen[xs[i]] {
			for j := range xs {
				xs[j] = float64(j)
			}
			return xs
		}
		seen[xs[i]] = true
	}
	return xs
}

// dateTicks labels at most maxTicks of the points, evenly spread, between
// two unlabelled ticks at lo and hi that fix the axis range.
func dateTicks(points []types.DatePoint, xs []float64, lo, hi float64) []gochart.Tick {
	step := 1
	if len(points) > maxTicks {
		step = int(math.Ceil(float64(len(points)) / maxTicks))
	}

	ticks := make([]gochart.Tick, 0, maxTicks+3)
	ticks = append(ticks, gochart.Tick{Value: lo})
	for i := 0; i < len(points); i += step {
		ticks = append(ticks, gochart.Tick{Value: xs[i], Label: points[i].Date.Format(dateLabel)})
	}
	return append(ticks, gochart.Tick{Value: hi})
}
