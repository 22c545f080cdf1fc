// Package chart computes the geometry of the dashboard charts in a 0-100
// viewbox and renders it as SVG.
package chart

import (
	"math"
	"strconv"
	"strings"

	"fintrack/internal/core"
)

const (
	positiveStroke = "#10B981"
	negativeStroke = "#EF4444"
	positiveFill   = "rgba(16,185,129,0.12)"
	negativeFill   = "rgba(239,68,68,0.10)"

	// minimum headroom above zero so that small series do not fill the chart
	minCeiling = 10.0
	padding    = 10.0
)

// MaxTrendDays caps the number of days a trend lays out.
const MaxTrendDays = 3660

// LabelLayout is how trend dates are printed under the chart.
const LabelLayout = "Jan 2"

// TrendPlaceholder is shown instead of an empty trend chart.
const TrendPlaceholder = "No data for this period"

type Point struct {
	X, Y  float64
	Value core.Money
	Color string
	Date  core.Date
}

type Label struct {
	X    float64
	Text string
}

// TrendChart is the line chart of daily net movement over a window.
type TrendChart struct {
	Empty    bool
	Points   []Point
	ZeroY    float64
	Stroke   string
	Fill     string
	Polyline string
	AreaPath string
	Labels   []Label
}

// DayRange returns the days calendar dates ending on today, oldest first.
func DayRange(days int, today core.Date) []core.Date {
	if days < 1 {
		return nil
	}
	days = min(days, MaxTrendDays)
	out := make([]core.Date, days)
	for i := range out {
		out[i] = today.AddDays(i - (days - 1))
	}
	return out
}

// Trend lays out the sparse daily series over the last days days. Dates
// missing from points count as zero; points outside the range are ignored.
// days is capped at MaxTrendDays.
func Trend(points []core.DailyAmount, days int, today core.Date) TrendChart {
	days = min(days, MaxTrendDays)
	if len(points) == 0 || days < 2 {
		return TrendChart{Empty: true}
	}

	byDay := make(map[core.Date]int64, len(points))
	for _, p := range points {
		byDay[p.Date] += p.Amount.Cents
	}

	dates := DayRange(days, today)
	values := make([]float64, len(dates))
	lo, hi, sum := 0.0, minCeiling, 0.0
	for i, d := range dates {
		v := core.Money{Cents: byDay[d]}.Float64()
		values[i] = v
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
		sum += v
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}
	yFor := func(v float64) float64 {
		return 100 - ((v-lo)/span*(100-2*padding) + padding)
	}

	c := TrendChart{
		Points: make([]Point, len(dates)),
		ZeroY:  yFor(0),
		Stroke: positiveStroke,
		Fill:   positiveFill,
	}
	if sum/float64(len(values)) < 0 {
		c.Stroke, c.Fill = negativeStroke, negativeFill
	}

	last := float64(len(dates) - 1)
	coords := make([]string, len(dates))
	for i, d := range dates {
		p := Point{
			X:     float64(i) / last * 100,
			Y:     yFor(values[i]),
			Value: core.Money{Cents: byDay[d]},
			Color: positiveStroke,
			Date:  d,
		}
		if p.Value.Cents < 0 {
			p.Color = negativeStroke
		}
		c.Points[i] = p
		coords[i] = Num(p.X) + "," + Num(p.Y)
	}
	c.Polyline = strings.Join(coords, " ")
	zero := Num(c.ZeroY)
	c.AreaPath = "M 0 " + zero + " L " + strings.Join(coords, " L ") + " L 100 " + zero + " Z"

	for _, i := range []int{0, len(dates) / 2, len(dates) - 1} {
		c.Labels = append(c.Labels, Label{X: c.Points[i].X, Text: dates[i].Format(LabelLayout)})
	}
	return c
}

// Num formats a coordinate with at most four decimals and no trailing zeros.
func Num(f float64) string {
	r := math.Round(f*1e4) / 1e4
	if r == 0 {
		r = 0 // drop negative zero
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}
