// Package analytics derives period statistics and trend signals from a
// user's per-day egg totals. Everything here is pure computation over data
// already queried from the store.
package analytics

import (
	"github.com/cirodil/tenhens/internal/domain"
)

// Report is the read-only result of Compute.
type Report struct {
	WindowDays   int     // effective window (shrunk to available data)
	CurrentAvg   float64 // mean of daily totals in the current period
	PreviousAvg  float64 // mean of the preceding period, 0 when PreviousDays == 0
	PreviousDays int     // number of days in the preceding period
	Trend        float64 // projected total change over the current period
	MaxDay       domain.DayTotal
	MinDay       domain.DayTotal
	FromDate     string // first date of the current period
	ToDate       string // last date of the current period
	TopWords     []WordCount
}

// HasComparison reports whether a previous period exists. Callers must check
// this before computing percent change against PreviousAvg.
func (r *Report) HasComparison() bool {
	return r.PreviousDays > 0
}

// ChangePercent returns the period-over-period change in percent.
// Only meaningful when HasComparison is true.
func (r *Report) ChangePercent() float64 {
	if r.PreviousAvg == 0 {
		return 0
	}
	return (r.CurrentAvg - r.PreviousAvg) / r.PreviousAvg * 100
}

// Compute builds a report over chronologically ordered per-day totals.
// The current period is the most recent windowDays days (or all available
// days when fewer exist); the previous period is the chunk of up to
// windowDays days immediately before it. Returns nil when fewer than two
// aggregated days exist.
func Compute(totals []domain.DayTotal, windowDays int) *Report {
	if len(totals) < 2 || windowDays <= 0 {
		return nil
	}

	n := len(totals)
	w := windowDays
	if w > n {
		w = n
	}
	current := totals[n-w:]
	prevStart := n - 2*w
	if prevStart < 0 {
		prevStart = 0
	}
	previous := totals[prevStart : n-w]

	r := &Report{
		WindowDays:   w,
		CurrentAvg:   mean(current),
		PreviousDays: len(previous),
		FromDate:     current[0].Date,
		ToDate:       current[len(current)-1].Date,
	}
	if len(previous) > 0 {
		r.PreviousAvg = mean(previous)
	}
	r.Trend = slope(current) * float64(len(current))
	r.MaxDay, r.MinDay = extremes(current)
	return r
}

func mean(days []domain.DayTotal) float64 {
	sum := 0
	for _, d := range days {
		sum += d.Total
	}
	return float64(sum) / float64(len(days))
}

// slope is the ordinary-least-squares slope of totals against day index
// 0..n-1. A single-point series has no trend.
func slope(days []domain.DayTotal) float64 {
	n := len(days)
	if n < 2 {
		return 0
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, d := range days {
		x, y := float64(i), float64(d.Total)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	fn := float64(n)
	denom := fn*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (fn*sumXY - sumX*sumY) / denom
}

// extremes returns the stable argmax and argmin: on ties the earliest day
// in chronological order wins.
func extremes(days []domain.DayTotal) (max, min domain.DayTotal) {
	max, min = days[0], days[0]
	for _, d := range days[1:] {
		if d.Total > max.Total {
			max = d
		}
		if d.Total < min.Total {
			min = d
		}
	}
	return max, min
}
