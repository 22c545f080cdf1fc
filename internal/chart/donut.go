package chart

import (
	"math"

	"fintrack/internal/core"
)

// Palette colours donut slices in order, wrapping around.
var Palette = []string{"#6366F1", "#8B5CF6", "#EC4899", "#F43F5E", "#F59E0B", "#10B981", "#3B82F6"}

// DonutPlaceholder is shown instead of an empty donut chart.
const DonutPlaceholder = "No expenses yet"

const (
	center      = 50.0
	radius      = 50.0
	InnerRadius = 38.0
	legendSize  = 6
)

type Slice struct {
	Name       string
	Value      core.Money
	StartAngle float64
	EndAngle   float64
	Path       string
	Color      string
	Percent    int
}

// DonutChart is the expense breakdown by category.
type DonutChart struct {
	Empty  bool
	Total  core.Money
	Slices []Slice
}

// Legend returns the slices listed next to the chart.
func (c DonutChart) Legend() []Slice {
	if len(c.Slices) > legendSize {
		return c.Slices[:legendSize]
	}
	return c.Slices
}

// Donut lays out one sector per category in input order. Angles are in
// degrees clockwise from the positive x axis.
func Donut(cats []core.CategoryAmount) DonutChart {
	var total int64
	for _, c := range cats {
		total += c.Amount.Cents
	}
	if len(cats) == 0 || total <= 0 {
		return DonutChart{Empty: true}
	}

	c := DonutChart{Total: core.Money{Cents: total}, Slices: make([]Slice, len(cats))}
	angle := 0.0
	for i, cat := range cats {
		share := float64(cat.Amount.Cents) / float64(total)
		sweep := share * 360
		c.Slices[i] = Slice{
			Name:       cat.Name,
			Value:      cat.Amount,
			StartAngle: angle,
			EndAngle:   angle + sweep,
			Path:       sector(angle, sweep),
			Color:      Palette[i%len(Palette)],
			Percent:    int(math.Round(share * 100)),
		}
		angle += sweep
	}
	return c
}

func sector(start, sweep float64) string {
	x1, y1 := polar(start)
	if sweep >= 360 {
		// A single arc cannot close on itself; split at the opposite point.
		xm, ym := polar(start + 180)
		return "M " + Num(x1) + " " + Num(y1) +
			" A 50 50 0 1 1 " + Num(xm) + " " + Num(ym) +
			" A 50 50 0 1 1 " + Num(x1) + " " + Num(y1) + " Z"
	}
	x2, y2 := polar(start + sweep)
	large := "0"
	if sweep > 180 {
		large = "1"
	}
	return "M 50 50 L " + Num(x1) + " " + Num(y1) +
		" A 50 50 0 " + large + " 1 " + Num(x2) + " " + Num(y2) + " Z"
}

func polar(deg float64) (x, y float64) {
	rad := math.Pi * deg / 180
	return center + radius*math.Cos(rad), center + radius*math.Sin(rad)
}
