// Package chart turns a short series of labelled values into bar geometry.
//
// Renderers are pure: they take a Series and a canvas Size and return a
// Drawing made of rectangle, text and line commands. Nothing here does I/O
// except the SVG encoder, which only writes to the given io.Writer.
package chart

import "ubs/internal/core"

// Category decides the fill of a vertical bar.
type Category int

const (
	Revenue Category = iota
	Expense
)

// Point is one labelled value of a Series.
type Point struct {
	Label    string
	Value    float64
	Category Category
}

// Series is the ordered input of one chart draw.
type Series []Point

// Size is a canvas size in pixels.
type Size struct {
	Width  float64
	Height float64
}

// Fixed canvases of the unit and overall reports.
var (
	UnitCanvas    = Size{Width: 500, Height: 400}
	OverallCanvas = Size{Width: 600, Height: 400}
)

// Kind of a draw command.
type Kind string

const (
	KindRect Kind = "rect"
	KindText Kind = "text"
	KindLine Kind = "line"
)

// Anchor is the horizontal alignment of a text command.
type Anchor string

const (
	AnchorStart  Anchor = "start"
	AnchorMiddle Anchor = "middle"
	AnchorEnd    Anchor = "end"
)

// Command is a single drawing instruction.
//
// Rect uses X, Y, W, H. Text is placed at X, Y (vertically centred). Line
// goes from X, Y to X2, Y2.
type Command struct {
	Kind        Kind
	X, Y        float64
	W, H        float64
	X2, Y2      float64
	Fill        string
	Stroke      string
	StrokeWidth float64
	Text        string
	Anchor      Anchor
	FontSize    float64
	Bold        bool
}

// LegendEntry pairs a series label with its bar color.
type LegendEntry struct {
	Label string
	Color string
}

// Drawing is the output of a renderer.
type Drawing struct {
	Width    float64
	Height   float64
	Commands []Command
	Legend   []LegendEntry
}

// empty reports whether the drawing has nothing to draw.
func (d Drawing) empty() bool {
	return len(d.Commands) == 0
}

// bars returns the rectangle commands in draw order.
func (d Drawing) bars() []Command {
	var out []Command
	for _, c := range d.Commands {
		if c.Kind == KindRect {
			out = append(out, c)
		}
	}
	return out
}

// texts returns the text commands in draw order.
func (d Drawing) texts() []Command {
	var out []Command
	for _, c := range d.Commands {
		if c.Kind == KindText {
			out = append(out, c)
		}
	}
	return out
}

// UnitSeries builds the four-bar series of a unit report: Federal, State,
// Municipal and Expenses, always in that order.
func UnitSeries(r core.UnitReport) Series {
	return Series{
		{Label: "Federal", Value: r.Federal.Float(), Category: Revenue},
		{Label: "State", Value: r.State.Float(), Category: Revenue},
		{Label: "Municipal", Value: r.Municipal.Float(), Category: Revenue},
		{Label: "Expenses", Value: r.TotalExpenses.Float(), Category: Expense},
	}
}

// OverallSeries builds one point per unit total. labels must be parallel to
// totals; a missing label falls back to the unit name.
func OverallSeries(totals []core.UnitTotal, labels []string) Series {
	s := make(Series, 0, len(totals))
	for i, t := range totals {
		label := t.Name
		if i < len(labels) {
			label = labels[i]
		}
		s = append(s, Point{Label: label, Value: t.Total.Float(), Category: Revenue})
	}
	return s
}

// maxValue returns the denominator used for normalization. An all-zero series
// gets 1 so every bar comes out with zero length.
func maxValue(s Series) float64 {
	var m float64
	for _, p := range s {
		if p.Value > m {
			m = p.Value
		}
	}
	if m <= 0 {
		return 1
	}
	return m
}

func clampZero(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
