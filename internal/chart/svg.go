package chart

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	"fintrack/web"
)

var svgTemplates = template.Must(template.New("charts").Funcs(template.FuncMap{
	"num": Num,
	"anchor": func(i int) string {
		switch i {
		case 0:
			return "start"
		case 1:
			return "middle"
		default:
			return "end"
		}
	},
}).ParseFS(web.TemplatesFS, "templates/*.svg"))

// RenderTrendSVG writes c as a standalone SVG document.
func RenderTrendSVG(w io.Writer, c TrendChart) error {
	return render(w, "trend.svg", struct {
		TrendChart
		Placeholder string
	}{c, TrendPlaceholder})
}

// RenderDonutSVG writes c as a standalone SVG document.
func RenderDonutSVG(w io.Writer, c DonutChart) error {
	return render(w, "donut.svg", struct {
		DonutChart
		Placeholder string
		InnerRadius float64
	}{c, DonutPlaceholder, InnerRadius})
}

// render buffers the output so that a template error never leaves a
// truncated document behind.
func render(w io.Writer, name string, data any) error {
	var buf bytes.Buffer
	if err := svgTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// SVG renders a TrendChart or DonutChart for inlining into pages.
func SVG(c any) (template.HTML, error) {
	var buf bytes.Buffer
	var err error
	switch v := c.(type) {
	case TrendChart:
		err = RenderTrendSVG(&buf, v)
	case DonutChart:
		err = RenderDonutSVG(&buf, v)
	default:
		err = fmt.Errorf("unsupported chart %T", c)
	}
	if err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
