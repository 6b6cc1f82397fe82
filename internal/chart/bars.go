package chart

import "fmt"

// Vertical chart layout.
const (
	vLeft        = 50.0
	vBarWidth    = 80.0
	vGap         = 20.0
	vMargin      = 40.0 // height lost to the top margin and the label band
	vLabelBand   = 20.0
	vLabelSize   = 12.0
	RevenueColor = "#4CAF50"
	ExpenseColor = "#FF9800"
	LabelColor   = "#2E7D32"
)

// Horizontal chart layout.
const (
	hAxisX        = 120.0
	hTop          = 50.0
	hBarThickness = 20.0
	hBarSpacing   = 30.0
	hRightReserve = 80.0
	hValueGap     = 10.0
	hAxisMargin   = 20.0
	hTextSize     = 10.0
	hTitleSize    = 16.0
	hTitle        = "Overall UBS report"
)

// Palette is cycled by bar index in the overall chart.
var Palette = [7]string{"#4CAF50", "#2196F3", "#FF9800", "#F44336", "#9C27B0", "#3F51B5", "#FFEB3B"}

// VerticalBars renders the unit report chart. Bar height is
// value / max(series) * (height - 40); bars stand on a baseline 20px above
// the bottom edge, with their labels centred in that band.
func VerticalBars(s Series, size Size) Drawing {
	d := Drawing{Width: size.Width, Height: size.Height}
	if len(s) == 0 {
		return d
	}

	peak := maxValue(s)
	usable := size.Height - vMargin
	baseline := size.Height - vLabelBand

	for i, p := range s {
		h := clampZero(p.Value) / peak * usable
		x := vLeft + float64(i)*(vBarWidth+vGap)

		fill := RevenueColor
		if p.Category == Expense {
			fill = ExpenseColor
		}
		d.Commands = append(d.Commands,
			Command{Kind: KindRect, X: x, Y: baseline - h, W: vBarWidth, H: h, Fill: fill},
			Command{
				Kind:     KindText,
				X:        x + vBarWidth/2,
				Y:        baseline + vLabelBand/2,
				Text:     p.Label,
				Fill:     LabelColor,
				Anchor:   AnchorMiddle,
				FontSize: vLabelSize,
			},
		)
	}
	return d
}

// HorizontalBars renders the overall report chart: one bar per point, width
// proportional to value / max(series), colors cycling through Palette. The
// legend is returned in Drawing.Legend, apart from the bar commands.
func HorizontalBars(s Series, size Size) Drawing {
	d := Drawing{Width: size.Width, Height: size.Height}
	if len(s) == 0 {
		return d
	}

	peak := maxValue(s)
	plotWidth := size.Width - hAxisX - hRightReserve
	axisY := size.Height - hAxisMargin

	d.Commands = append(d.Commands, Command{
		Kind:     KindText,
		X:        size.Width / 2,
		Y:        hTop / 2,
		Text:     hTitle,
		Fill:     "#333",
		Anchor:   AnchorMiddle,
		FontSize: hTitleSize,
		Bold:     true,
	})

	for i, p := range s {
		color := Palette[i%len(Palette)]
		y := hTop + float64(i)*(hBarThickness+hBarSpacing)
		w := clampZero(p.Value) / peak * plotWidth
		mid := y + hBarThickness/2

		d.Commands = append(d.Commands,
			Command{Kind: KindRect, X: hAxisX, Y: y, W: w, H: hBarThickness, Fill: color, Stroke: "black", StrokeWidth: 1},
			Command{
				Kind:     KindText,
				X:        hAxisX + w + hValueGap,
				Y:        mid,
				Text:     fmt.Sprintf("%.2f", p.Value),
				Fill:     "black",
				Anchor:   AnchorStart,
				FontSize: hTextSize,
				Bold:     true,
			},
			Command{
				Kind:     KindText,
				X:        hAxisX - hValueGap,
				Y:        mid,
				Text:     p.Label,
				Fill:     "black",
				Anchor:   AnchorEnd,
				FontSize: hTextSize,
			},
		)
		d.Legend = append(d.Legend, LegendEntry{Label: p.Label, Color: color})
	}

	d.Commands = append(d.Commands,
		Command{Kind: KindLine, X: hAxisX, Y: hTop, X2: hAxisX, Y2: axisY, Stroke: "black", StrokeWidth: 1},
		Command{Kind: KindLine, X: hAxisX, Y: axisY, X2: size.Width - hAxisMargin, Y2: axisY, Stroke: "black", StrokeWidth: 1},
		Command{
			Kind:     KindText,
			X:        size.Width - hAxisMargin,
			Y:        axisY + hAxisMargin/2,
			Text:     "Total",
			Fill:     "black",
			Anchor:   AnchorEnd,
			FontSize: hTextSize,
			Bold:     true,
		},
	)
	return d
}
