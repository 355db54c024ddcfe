package output

import (
	"fmt"
	"html"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/vsinha/supplyadvisor/pkg/domain/entities"
)

// GanttChart draws a purchase plan as an SVG timeline, one row per ingredient
type GanttChart struct {
	Width        int
	Height       int
	MarginLeft   int
	MarginTop    int
	MarginRight  int
	MarginBottom int
	RowHeight    int
	StartTime    time.Time
	EndTime      time.Time
	Bottleneck   string
}

// GanttBar represents a single purchase order in the chart
type GanttBar struct {
	IngredientCode string
	Quantity       string
	VendorName     string
	OrderDate      time.Time
	ExpectedDate   time.Time
	X              int
	Width          int
	Color          string
}

// NewGanttChart sizes a chart for the plan. The bottleneck ingredient, when
// known, is highlighted.
func NewGanttChart(plan []entities.PurchaseSuggestion, bottleneck string) *GanttChart {
	if len(plan) == 0 {
		return &GanttChart{
			Width:        800,
			Height:       200,
			MarginLeft:   150,
			MarginTop:    50,
			MarginRight:  50,
			MarginBottom: 50,
			RowHeight:    25,
			Bottleneck:   bottleneck,
		}
	}

	startTime := plan[0].OrderDate
	endTime := plan[0].ExpectedDate
	for _, p := range plan {
		if p.OrderDate.Before(startTime) {
			startTime = p.OrderDate
		}
		if p.ExpectedDate.After(endTime) {
			endTime = p.ExpectedDate
		}
	}

	// same-day deliveries still need a visible range
	if !endTime.After(startTime) {
		endTime = startTime.AddDate(0, 0, 1)
	}
	padding := time.Duration(float64(endTime.Sub(startTime)) * 0.1)
	startTime = startTime.Add(-padding)
	endTime = endTime.Add(padding)

	rowHeight := 30
	return &GanttChart{
		Width:        1200,
		Height:       len(plan)*rowHeight + 160,
		MarginLeft:   200,
		MarginTop:    60,
		MarginRight:  100,
		MarginBottom: 80,
		RowHeight:    rowHeight,
		StartTime:    startTime,
		EndTime:      endTime,
		Bottleneck:   bottleneck,
	}
}

// GenerateSVG renders the plan
func (gc *GanttChart) GenerateSVG(plan []entities.PurchaseSuggestion) string {
	if len(plan) == 0 {
		return gc.generateEmptyChart()
	}

	var svg strings.Builder
	fmt.Fprintf(&svg, `<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">`, gc.Width, gc.Height)
	svg.WriteString(`<defs><style>`)
	svg.WriteString(`.label { font-family: Arial, sans-serif; font-size: 12px; fill: #333; }`)
	svg.WriteString(`.time-label { font-family: Arial, sans-serif; font-size: 10px; fill: #666; }`)
	svg.WriteString(`.title { font-family: Arial, sans-serif; font-size: 16px; font-weight: bold; fill: #333; }`)
	svg.WriteString(`.grid-line { stroke: #e0e0e0; stroke-width: 1; }`)
	svg.WriteString(`.order-bar { stroke: #333; stroke-width: 1; }`)
	svg.WriteString(`.order-text { font-family: Arial, sans-serif; font-size: 9px; fill: white; }`)
	svg.WriteString(`</style></defs>`)

	fmt.Fprintf(&svg, `<rect width="%d" height="%d" fill="white"/>`, gc.Width, gc.Height)
	fmt.Fprintf(&svg, `<text x="%d" y="30" class="title" text-anchor="middle">Purchase plan - expected deliveries</text>`, gc.Width/2)

	bars := gc.createBars(plan)
	gc.drawTimeAxis(&svg)
	gc.drawTimeGrid(&svg, len(bars))
	gc.drawRows(&svg, bars)
	gc.drawLegend(&svg)

	svg.WriteString(`</svg>`)
	return svg.String()
}

// WriteFile renders the plan into an SVG file
func (gc *GanttChart) WriteFile(filename string, plan []entities.PurchaseSuggestion) error {
	if err := os.WriteFile(filename, []byte(gc.GenerateSVG(plan)), 0644); err != nil {
		return fmt.Errorf("failed to write Gantt chart %s: %w", filename, err)
	}
	return nil
}

// createBars orders the plan by arrival, latest last
func (gc *GanttChart) createBars(plan []entities.PurchaseSuggestion) []GanttBar {
	chartWidth := gc.Width - gc.MarginLeft - gc.MarginRight
	total := float64(gc.EndTime.Sub(gc.StartTime))

	bars := make([]GanttBar, 0, len(plan))
	for _, p := range plan {
		x := gc.MarginLeft + int(float64(p.OrderDate.Sub(gc.StartTime))/total*float64(chartWidth))
		width := int(float64(p.ExpectedDate.Sub(p.OrderDate)) / total * float64(chartWidth))
		if width < 2 {
			width = 2
		}
		bars = append(bars, GanttBar{
			IngredientCode: p.IngredientCode,
			Quantity:       fmt.Sprintf("%s %s", p.Quantity.StringFixed(2), p.Unit),
			VendorName:     p.VendorName,
			OrderDate:      p.OrderDate,
			ExpectedDate:   p.ExpectedDate,
			X:              x,
			Width:          width,
			Color:          gc.barColor(p),
		})
	}

	sort.SliceStable(bars, func(i, j int) bool {
		if !bars[i].ExpectedDate.Equal(bars[j].ExpectedDate) {
			return bars[i].ExpectedDate.Before(bars[j].ExpectedDate)
		}
		return bars[i].IngredientCode < bars[j].IngredientCode
	})
	return bars
}

func (gc *GanttChart) interval() (time.Duration, string) {
	days := int(math.Ceil(gc.EndTime.Sub(gc.StartTime).Hours() / 24))
	switch {
	case days <= 30:
		return 24 * time.Hour, "Jan 2"
	case days <= 180:
		return 7 * 24 * time.Hour, "Jan 2"
	default:
		return 30 * 24 * time.Hour, "Jan 2006"
	}
}

func (gc *GanttChart) xOf(t time.Time) int {
	chartWidth := gc.Width - gc.MarginLeft - gc.MarginRight
	return gc.MarginLeft + int(float64(t.Sub(gc.StartTime))/float64(gc.EndTime.Sub(gc.StartTime))*float64(chartWidth))
}

func (gc *GanttChart) drawTimeAxis(svg *strings.Builder) {
	interval, format := gc.interval()
	for t := gc.StartTime.Truncate(interval); t.Before(gc.EndTime); t = t.Add(interval) {
		x := gc.xOf(t)
		if x >= gc.MarginLeft && x <= gc.Width-gc.MarginRight {
			fmt.Fprintf(svg, `<text x="%d" y="%d" class="time-label" text-anchor="middle">%s</text>`,
				x, gc.Height-gc.MarginBottom+15, t.Format(format))
		}
	}
	fmt.Fprintf(svg, `<line x1="%d" y1="%d" x2="%d" y2="%d" class="grid-line"/>`,
		gc.MarginLeft, gc.Height-gc.MarginBottom, gc.Width-gc.MarginRight, gc.Height-gc.MarginBottom)
}

func (gc *GanttChart) drawTimeGrid(svg *strings.Builder, rows int) {
	interval, _ := gc.interval()
	gridBottom := gc.MarginTop + rows*gc.RowHeight
	for t := gc.StartTime.Truncate(interval); t.Before(gc.EndTime); t = t.Add(interval) {
		x := gc.xOf(t)
		if x >= gc.MarginLeft && x <= gc.Width-gc.MarginRight {
			fmt.Fprintf(svg, `<line x1="%d" y1="%d" x2="%d" y2="%d" class="grid-line"/>`, x, gc.MarginTop, x, gridBottom)
		}
	}
}

func (gc *GanttChart) drawRows(svg *strings.Builder, bars []GanttBar) {
	for i, bar := range bars {
		y := gc.MarginTop + i*gc.RowHeight

		fmt.Fprintf(svg, `<text x="%d" y="%d" class="label" text-anchor="end">%s</text>`,
			gc.MarginLeft-15, y+gc.RowHeight/2+4, html.EscapeString(bar.IngredientCode))
		fmt.Fprintf(svg, `<line x1="%d" y1="%d" x2="%d" y2="%d" class="grid-line"/>`,
			gc.MarginLeft, y+gc.RowHeight, gc.Width-gc.MarginRight, y+gc.RowHeight)

		barHeight := gc.RowHeight - 4
		fmt.Fprintf(svg, `<rect x="%d" y="%d" width="%d" height="%d" fill="%s" class="order-bar">`,
			bar.X, y+2, bar.Width, barHeight, bar.Color)
		fmt.Fprintf(svg, `<title>%s</title></rect>`, html.EscapeString(fmt.Sprintf("%s: %s, vendor %s, ordered %s, expected %s",
			bar.IngredientCode, bar.Quantity, orDash(bar.VendorName),
			bar.OrderDate.Format(time.DateOnly), bar.ExpectedDate.Format(time.DateOnly))))

		if bar.Width > 60 {
			fmt.Fprintf(svg, `<text x="%d" y="%d" class="order-text" text-anchor="middle">%s</text>`,
				bar.X+bar.Width/2, y+2+barHeight/2+3, html.EscapeString(bar.Quantity))
		}
	}
}

func (gc *GanttChart) drawLegend(svg *strings.Builder) {
	legendX := gc.Width - gc.MarginRight - 200
	legendY := 40

	fmt.Fprintf(svg, `<rect x="%d" y="%d" width="180" height="60" fill="white" stroke="#ccc" stroke-width="1"/>`, legendX, legendY)
	fmt.Fprintf(svg, `<text x="%d" y="%d" class="label" font-weight="bold">Legend</text>`, legendX+10, legendY+15)

	items := []struct {
		color string
		label string
	}{
		{"#F44336", "Bottleneck"},
		{"#FF9800", "Critical shortage"},
		{"#2196F3", "Shortage"},
	}
	for i, item := range items {
		itemY := legendY + 25 + i*12
		fmt.Fprintf(svg, `<rect x="%d" y="%d" width="12" height="8" fill="%s"/>`, legendX+10, itemY, item.color)
		fmt.Fprintf(svg, `<text x="%d" y="%d" class="time-label">%s</text>`, legendX+30, itemY+6, item.label)
	}
}

func (gc *GanttChart) barColor(p entities.PurchaseSuggestion) string {
	if gc.Bottleneck != "" && p.IngredientCode == gc.Bottleneck {
		return "#F44336"
	}
	if p.Status == entities.StatusCritical {
		return "#FF9800"
	}
	return "#2196F3"
}

func (gc *GanttChart) generateEmptyChart() string {
	return fmt.Sprintf(`<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">`+
		`<style>.title { font-family: Arial, sans-serif; font-size: 16px; fill: #666; }</style>`+
		`<rect width="%d" height="%d" fill="white"/>`+
		`<text x="%d" y="%d" class="title" text-anchor="middle">No purchases needed</text>`+
		`</svg>`, gc.Width, gc.Height, gc.Width, gc.Height, gc.Width/2, gc.Height/2)
}
