package chart

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/order-report-summary/internal/types"
)

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestRenderer_RenderTimeSeries(t *testing.T) {
	tests := []struct {
		name   string
		points []types.DatePoint
	}{
		{
			name: "several dates",
			points: []types.DatePoint{
				{Date: day("2025-01-01"), Amount: 12.5},
				{Date: day("2025-01-02"), Amount: 30},
				{Date: day("2025-01-05"), Amount: 7.25},
			},
		},
		{
			name:   "single date",
			points: []types.DatePoint{{Date: day("2025-01-01"), Amount: 100}},
		},
		{
			name: "every point on one date",
			points: []types.DatePoint{
				{Date: day("2025-01-01"), Amount: 21525},
				{Date: day("2025-01-01"), Amount: 8610},
			},
		},
		{
			name: "more dates than ticks",
			points: func() []types.DatePoint {
				var points []types.DatePoint
				for i := 0; i < 30; i++ {
					points = append(points, types.DatePoint{Date: day("2025-01-01").AddDate(0, 0, i), Amount: float64(i)})
				}
				return points
			}(),
		},
		{
			name: "flat zero income",
			points: []types.DatePoint{
				{Date: day("2025-01-01")},
				{Date: day("2025-01-02")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "charts", "income_by_date.png")

			w, h, err := NewRenderer(400, 200).RenderTimeSeries(context.Background(), "Income", tt.points, path)

			require.NoError(t, err)
			assert.Equal(t, 400, w)
			assert.Equal(t, 200, h)
			assert.FileExists(t, path)
		})
	}
}

func TestPositions(t *testing.T) {
	t.Run("days since the first point", func(t *testing.T) {
		xs := positions([]types.DatePoint{
			{Date: day("2025-01-01")},
			{Date: day("2025-01-02")},
			{Date: day("2025-01-05")},
		})
		assert.Equal(t, []float64{0, 1, 4}, xs)
	})

	t.Run("shared dates fall back to index", func(t *testing.T) {
		xs := positions([]types.DatePoint{
			{Date: day("2025-01-01")},
			{Date: day("2025-01-01")},
			{Date: day("2025-01-03")},
		})
		assert.Equal(t, []float64{0, 1, 2}, xs)
	})
}

func TestDateTicks_SpanAxis(t *testing.T) {
	// Given
	points := []types.DatePoint{{Date: day("2025-01-01"), Amount: 100}}

	// When
	ticks := dateTicks(points, []float64{0}, -0.5, 0.5)

	// Then
	require.Len(t, ticks, 3)
	assert.Equal(t, -0.5, ticks[0].Value)
	assert.Empty(t, ticks[0].Label)
	assert.Equal(t, "2025-01-01", ticks[1].Label)
	assert.Equal(t, 0.5, ticks[2].Value)
	assert.Empty(t, ticks[2].Label)
}

func TestRenderer_RenderTimeSeries_NoPoints(t *testing.T) {
	_, _, err := NewRenderer(0, 0).RenderTimeSeries(context.Background(), "Income", nil, filepath.Join(t.TempDir(), "x.png"))
	assert.ErrorIs(t, err, ErrNoPoints)
}

func TestRenderer_RenderProportion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "income_by_name.png")
	shares := []types.CategoryAmount{
		{Label: "Product1", Amount: 1230},
		{Label: "Product2", Amount: 3690},
		{Label: "Refund", Amount: 0},
	}

	w, h, err := NewRenderer(300, 300).RenderProportion(context.Background(), "Income by product", shares, path)

	require.NoError(t, err)
	assert.Equal(t, 300, w)
	assert.Equal(t, 300, h)
	assert.FileExists(t, path)
}

func TestRenderer_RenderProportion_NoShares(t *testing.T) {
	_, _, err := NewRenderer(0, 0).RenderProportion(context.Background(), "x",
		[]types.CategoryAmount{{Label: "a", Amount: 0}}, filepath.Join(t.TempDir(), "x.png"))
	assert.ErrorIs(t, err, ErrNoShares)
}

func TestRenderer_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewRenderer(0, 0).RenderProportion(ctx, "x",
		[]types.CategoryAmount{{Label: "a", Amount: 1}}, filepath.Join(t.TempDir(), "x.png"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewRenderer_Defaults(t *testing.T) {
	r := NewRenderer(-1, 0)
	assert.Equal(t, DefaultWidth, r.Width)
	assert.Equal(t, DefaultHeight, r.Height)
}
