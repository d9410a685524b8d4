// Package chart renders the egg-production line plot sent by /graph and
// served by the dashboard.
package chart

import (
	"bytes"
	"fmt"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/cirodil/tenhens/internal/domain"
)

var lineColor = drawing.ColorFromHex("ff6b6b")

// LinePNG renders daily totals as a PNG line chart. At least two points are
// required to draw a line; fewer return nil bytes.
func LinePNG(totals []domain.DayTotal, days int) ([]byte, error) {
	if len(totals) < 2 {
		return nil, nil
	}

	xs := make([]time.Time, len(totals))
	ys := make([]float64, len(totals))
	for i, d := range totals {
		t, err := time.Parse(domain.DateLayout, d.Date)
		if err != nil {
			return nil, fmt.Errorf("date %q: %w", d.Date, err)
		}
		xs[i] = t
		ys[i] = float64(d.Total)
	}

	graph := gochart.Chart{
		Title:  fmt.Sprintf("Яйценоскость за %d дней", days),
		Width:  1000,
		Height: 600,
		XAxis: gochart.XAxis{
			ValueFormatter: gochart.TimeDateValueFormatter,
		},
		Series: []gochart.Series{
			gochart.TimeSeries{
				Name:    "Количество яиц",
				XValues: xs,
				YValues: ys,
				Style: gochart.Style{
					StrokeColor: lineColor,
					StrokeWidth: 2,
					DotColor:    lineColor,
					DotWidth:    4,
				},
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(gochart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
