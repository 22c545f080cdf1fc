package chart

import (
	"bytes"
	"strings"
	"testing"

	"fintrack/internal/core"
)

var today = core.NewDate(2025, 3, 10)

func money(units int64) core.Money { return core.Money{Cents: units * 100} }

func TestDayRange(t *testing.T) {
	got := DayRange(3, today)
	want := []string{"2025-03-08", "2025-03-09", "2025-03-10"}
	if len(got) != len(want) {
		t.Fatalf("len = %d", len(got))
	}
	for i := range want {
		if got[i].String() != want[i] {
			t.Fatalf("DayRange[%d] = %s, want %s", i, got[i], want[i])
		}
	}
	if DayRange(0, today) != nil {
		t.Fatalf("DayRange(0) should be nil")
	}
}

func TestTrendPositiveSeries(t *testing.T) {
	c := Trend([]core.DailyAmount{{Date: today, Amount: money(50)}}, 7, today)
	if c.Empty {
		t.Fatalf("unexpected empty chart")
	}
	if len(c.Points) != 7 {
		t.Fatalf("points = %d, want 7", len(c.Points))
	}
	if c.ZeroY != 90 {
		t.Fatalf("ZeroY = %v, want 90", c.ZeroY)
	}
	last := c.Points[6]
	if last.X != 100 || last.Y != 10 || last.Color != positiveStroke {
		t.Fatalf("last point = %+v", last)
	}
	if c.Points[0].X != 0 || c.Points[0].Y != 90 {
		t.Fatalf("zero-filled first point = %+v", c.Points[0])
	}
	if c.Stroke != positiveStroke || c.Fill != positiveFill {
		t.Fatalf("colours = %s %s", c.Stroke, c.Fill)
	}
	if !strings.HasPrefix(c.AreaPath, "M 0 90 L 0,90 L ") || !strings.HasSuffix(c.AreaPath, "L 100,10 L 100 90 Z") {
		t.Fatalf("area path = %q", c.AreaPath)
	}
	labels := []string{"Mar 4", "Mar 7", "Mar 10"}
	for i, l := range c.Labels {
		if l.Text != labels[i] {
			t.Fatalf("label %d = %q, want %q", i, l.Text, labels[i])
		}
	}
}

func TestTrendNegativeSeries(t *testing.T) {
	c := Trend([]core.DailyAmount{{Date: today.AddDays(-1), Amount: money(-20)}}, 3, today)
	if c.Stroke != negativeStroke || c.Fill != negativeFill {
		t.Fatalf("negative average should be red, got %s", c.Stroke)
	}
	if Num(c.ZeroY) != "36.6667" {
		t.Fatalf("ZeroY = %s", Num(c.ZeroY))
	}
	mid := c.Points[1]
	if mid.Y != 90 || mid.Color != negativeStroke || mid.X != 50 {
		t.Fatalf("mid point = %+v", mid)
	}
	if c.Points[2].Color != positiveStroke {
		t.Fatalf("zero day should use the positive colour")
	}
}

func TestTrendEmpty(t *testing.T) {
	if !Trend(nil, 30, today).Empty {
		t.Fatalf("no points should be empty")
	}
	if c := Trend([]core.DailyAmount{{Date: today, Amount: money(1)}}, 1, today); !c.Empty || c.Points != nil {
		t.Fatalf("single-day window should be empty")
	}
}

func TestTrendCapsDays(t *testing.T) {
	c := Trend([]core.DailyAmount{{Date: today, Amount: money(1)}}, 1<<30, today)
	if len(c.Points) != MaxTrendDays {
		t.Fatalf("points = %d, want %d", len(c.Points), MaxTrendDays)
	}
	if last := c.Points[len(c.Points)-1]; last.Date != today || last.X != 100 {
		t.Fatalf("last point = %+v, want today at x=100", last)
	}
	if n := len(DayRange(1<<30, today)); n != MaxTrendDays {
		t.Fatalf("DayRange length = %d", n)
	}
}

func TestTrendYStaysInPaddedBox(t *testing.T) {
	pts := []core.DailyAmount{
		{Date: today.AddDays(-4), Amount: money(-300)},
		{Date: today.AddDays(-2), Amount: money(120)},
		{Date: today, Amount: money(5)},
	}
	for _, p := range Trend(pts, 5, today).Points {
		if p.Y < 10 || p.Y > 90 {
			t.Fatalf("y %v outside [10,90]", p.Y)
		}
	}
}

func TestDonutGeometry(t *testing.T) {
	c := Donut([]core.CategoryAmount{{Name: "Food", Amount: money(75)}, {Name: "Rent", Amount: money(25)}})
	if c.Empty || c.Total != money(100) {
		t.Fatalf("unexpected chart %+v", c)
	}
	food, rent := c.Slices[0], c.Slices[1]
	if food.StartAngle != 0 || food.EndAngle != 270 || rent.EndAngle != 360 {
		t.Fatalf("angles = %v..%v, %v..%v", food.StartAngle, food.EndAngle, rent.StartAngle, rent.EndAngle)
	}
	if food.Path != "M 50 50 L 100 50 A 50 50 0 1 1 50 0 Z" {
		t.Fatalf("food path = %q", food.Path)
	}
	if food.Percent != 75 || rent.Percent != 25 {
		t.Fatalf("percents = %d %d", food.Percent, rent.Percent)
	}
	if food.Color != Palette[0] || rent.Color != Palette[1] {
		t.Fatalf("colours = %s %s", food.Color, rent.Color)
	}
}

func TestDonutSingleCategoryIsFullCircle(t *testing.T) {
	c := Donut([]core.CategoryAmount{{Name: "Food", Amount: money(10)}})
	want := "M 100 50 A 50 50 0 1 1 0 50 A 50 50 0 1 1 100 50 Z"
	if c.Slices[0].Path != want || c.Slices[0].Percent != 100 {
		t.Fatalf("slice = %+v", c.Slices[0])
	}
}

func TestDonutPaletteWrapsAndLegend(t *testing.T) {
	var cats []core.CategoryAmount
	for _, n := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		cats = append(cats, core.CategoryAmount{Name: n, Amount: money(1)})
	}
	c := Donut(cats)
	if c.Slices[7].Color != Palette[0] {
		t.Fatalf("palette should wrap")
	}
	if len(c.Legend()) != 6 {
		t.Fatalf("legend = %d entries", len(c.Legend()))
	}
	if end := c.Slices[7].EndAngle; end < 359.999 || end > 360.001 {
		t.Fatalf("angles should sum to 360, got %v", end)
	}
}

func TestDonutEmpty(t *testing.T) {
	if !Donut(nil).Empty {
		t.Fatalf("nil categories should be empty")
	}
	if !Donut([]core.CategoryAmount{{Name: "Food"}}).Empty {
		t.Fatalf("zero total should be empty")
	}
}

func TestRenderTrendSVG(t *testing.T) {
	c := Trend([]core.DailyAmount{{Date: today, Amount: money(50)}}, 7, today)
	var a, b bytes.Buffer
	if err := RenderTrendSVG(&a, c); err != nil {
		t.Fatalf("render: %v", err)
	}
	if err := RenderTrendSVG(&b, c); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Fatalf("render is not deterministic")
	}
	out := a.String()
	for _, want := range []string{"<svg", "<polyline", positiveStroke, "Mar 10", `cy="10"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("svg missing %q:\n%s", want, out)
		}
	}

	var empty bytes.Buffer
	if err := RenderTrendSVG(&empty, Trend(nil, 7, today)); err != nil {
		t.Fatalf("render empty: %v", err)
	}
	if !strings.Contains(empty.String(), TrendPlaceholder) || strings.Contains(empty.String(), "<polyline") {
		t.Fatalf("empty chart should show the placeholder only:\n%s", empty.String())
	}
}

func TestRenderDonutSVGEscapesNames(t *testing.T) {
	c := Donut([]core.CategoryAmount{{Name: "<script>", Amount: money(3)}})
	var buf bytes.Buffer
	if err := RenderDonutSVG(&buf, c); err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(buf.String(), "<script>") {
		t.Fatalf("category name not escaped:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "3.00") {
		t.Fatalf("total missing:\n%s", buf.String())
	}

	html, err := SVG(Donut(nil))
	if err != nil || !strings.Contains(string(html), DonutPlaceholder) {
		t.Fatalf("SVG(empty donut) = %q, %v", html, err)
	}
}
