package export

import (
	"fmt"
	"html/template"
	"io"
	"math"

	"github.com/mamadbah2/stockboard/internal/domain/models"
)

// PrintableContentType is the MIME type of the printable report.
const PrintableContentType = "text/html; charset=utf-8"

// palette cycles through slice colours for the pie chart.
var palette = []string{"#0088FE", "#00C49F", "#FFBB28", "#FF8042"}

const (
	barWidth     = 500.0
	barHeight    = 300.0
	barMarginTop = 10.0
	barMarginL   = 40.0
	barMarginR   = 30.0
	barMarginBot = 40.0

	pieSize   = 400.0
	pieRadius = 80.0
)

type bar struct {
	X, Y, Width, Height float64
	LabelX, LabelY      float64
	Label, Value        string
}

type barChart struct {
	Width, Height float64
	AxisX, AxisY  float64
	AxisRight     float64
	Max           string
	Bars          []bar
}

type pieSlice struct {
	Path           string
	Full           bool
	Color          string
	LabelX, LabelY float64
	Label          string
}

type pieChart struct {
	Size, CX, CY, R float64
	Slices          []pieSlice
}

type printableView struct {
	Title string
	Bar   *barChart
	Pie   *pieChart
}

var printableTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  body { font-family: Roboto, sans-serif; }
  .screen-note { display: block; }
  .print-only { display: none; }
  @media print {
    .screen-note { display: none; }
    .print-only { display: block; }
  }
  svg text { font-size: 12px; }
</style>
</head>
<body>
<p class="screen-note">Preparing the report for printing&hellip;</p>
<div class="print-only">
  <h1>{{.Title}}</h1>
  <h2>Stock Levels</h2>
  {{- with .Bar}}
  <svg xmlns="http://www.w3.org/2000/svg" width="{{.Width}}" height="{{.Height}}" viewBox="0 0 {{.Width}} {{.Height}}">
    <line x1="{{.AxisX}}" y1="{{.AxisY}}" x2="{{.AxisRight}}" y2="{{.AxisY}}" stroke="#666"/>
    <line x1="{{.AxisX}}" y1="{{.AxisY}}" x2="{{.AxisX}}" y2="0" stroke="#666"/>
    <text x="{{.AxisX}}" y="12" text-anchor="end">{{.Max}}</text>
    {{- range .Bars}}
    <rect x="{{printf "%.2f" .X}}" y="{{printf "%.2f" .Y}}" width="{{printf "%.2f" .Width}}" height="{{printf "%.2f" .Height}}" fill="#8884d8"><title>{{.Label}}: {{.Value}}</title></rect>
    <text x="{{printf "%.2f" .LabelX}}" y="{{printf "%.2f" .LabelY}}" text-anchor="middle">{{.Label}}</text>
    {{- end}}
  </svg>
  {{- else}}
  <p>No data available for the Bar Chart</p>
  {{- end}}
  <h2>Inventory Distribution</h2>
  {{- with .Pie}}
  <svg xmlns="http://www.w3.org/2000/svg" width="{{.Size}}" height="{{.Size}}" viewBox="0 0 {{.Size}} {{.Size}}">
    {{- range .Slices}}
    {{- if .Full}}
    <circle cx="{{$.Pie.CX}}" cy="{{$.Pie.CY}}" r="{{$.Pie.R}}" fill="{{.Color}}"/>
    {{- else}}
    <path d="{{.Path}}" fill="{{.Color}}"/>
    {{- end}}
    <text x="{{printf "%.2f" .LabelX}}" y="{{printf "%.2f" .LabelY}}" text-anchor="middle">{{.Label}}</text>
    {{- end}}
  </svg>
  {{- else}}
  <p>No data available for the Pie Chart</p>
  {{- end}}
</div>
<script>window.addEventListener("load", function () { window.print(); });</script>
</body>
</html>
`))

// RenderPrintable writes a standalone HTML page holding the bar chart of
// ByItem and the pie chart of ByCategory. The charts only show up when
// printed, and the page opens the print dialog as soon as it loads, so the
// user can save it as PDF.
func RenderPrintable(w io.Writer, series models.ReportSeries) error {
	view := printableView{
		Title: "Stock Management Report",
		Bar:   layoutBars(series.ByItem),
		Pie:   layoutPie(series.ByCategory),
	}

	if err := printableTemplate.Execute(w, view); err != nil {
		return fmt.Errorf("render printable report: %w", err)
	}
	return nil
}

// layoutBars returns nil when there is nothing positive to draw.
func layoutBars(points []models.SeriesPoint) *barChart {
	maxValue := 0.0
	for _, p := range points {
		maxValue = math.Max(maxValue, p.Value)
	}
	if len(points) == 0 || maxValue <= 0 {
		return nil
	}

	plotW := barWidth - barMarginL - barMarginR
	plotH := barHeight - barMarginTop - barMarginBot
	slot := plotW / float64(len(points))
	axisY := barMarginTop + plotH

	chart := &barChart{
		Width:     barWidth,
		Height:    barHeight,
		AxisX:     barMarginL,
		AxisY:     axisY,
		AxisRight: barWidth - barMarginR,
		Max:       FormatValue(maxValue),
		Bars:      make([]bar, 0, len(points)),
	}

	for i, p := range points {
		h := 0.0
		if p.Value > 0 {
			h = plotH * p.Value / maxValue
		}
		x := barMarginL + float64(i)*slot + slot*0.1
		chart.Bars = append(chart.Bars, bar{
			X:      x,
			Y:      axisY - h,
			Width:  slot * 0.8,
			Height: h,
			LabelX: x + slot*0.4,
			LabelY: axisY + 16,
			Label:  p.Label,
			Value:  FormatValue(p.Value),
		})
	}

	return chart
}

// layoutPie returns nil when the total is not positive. Non-positive points
// get no slice.
func layoutPie(points []models.SeriesPoint) *pieChart {
	total := 0.0
	for _, p := range points {
		if p.Value > 0 {
			total += p.Value
		}
	}
	if total <= 0 {
		return nil
	}

	chart := &pieChart{Size: pieSize, CX: pieSize / 2, CY: pieSize / 2, R: pieRadius}
	angle := -math.Pi / 2

	for i, p := range points {
		if p.Value <= 0 {
			continue
		}

		share := p.Value / total
		sweep := share * 2 * math.Pi
		end := angle + sweep
		mid := angle + sweep/2

		slice := pieSlice{
			Color:  palette[i%len(palette)],
			LabelX: chart.CX + pieRadius*1.35*math.Cos(mid),
			LabelY: chart.CY + pieRadius*1.35*math.Sin(mid),
			Label:  fmt.Sprintf("%s: %.0f%%", p.Label, share*100),
		}

		if share >= 1 {
			slice.Full = true
		} else {
			largeArc := 0
			if sweep > math.Pi {
				largeArc = 1
			}
			slice.Path = fmt.Sprintf("M %.2f %.2f L %.2f %.2f A %.2f %.2f 0 %d 1 %.2f %.2f Z",
				chart.CX, chart.CY,
				chart.CX+pieRadius*math.Cos(angle), chart.CY+pieRadius*math.Sin(angle),
				pieRadius, pieRadius, largeArc,
				chart.CX+pieRadius*math.Cos(end), chart.CY+pieRadius*math.Sin(end))
		}

		chart.Slices = append(chart.Slices, slice)
		angle = end
	}

	return chart
}
