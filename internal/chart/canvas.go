package chart

import (
	"bytes"
	"html/template"
	"sync"
)

// Canvas is a drawing surface. It only ever holds the commands of the last
// Render: every render clears what was drawn before.
type Canvas struct {
	mu      sync.Mutex
	size    Size
	drawing Drawing
}

func NewCanvas(size Size) *Canvas {
	return &Canvas{size: size, drawing: Drawing{Width: size.Width, Height: size.Height}}
}

// Size returns the fixed canvas size.
func (c *Canvas) Size() Size { return c.size }

// Clear removes every drawn element.
func (c *Canvas) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clear()
}

func (c *Canvas) clear() {
	c.drawing = Drawing{Width: c.size.Width, Height: c.size.Height}
}

// Render clears the canvas and draws d on it.
func (c *Canvas) Render(d Drawing) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.render(d)
}

func (c *Canvas) render(d Drawing) {
	c.clear()
	c.drawing.Commands = append(c.drawing.Commands, d.Commands...)
	c.drawing.Legend = append(c.drawing.Legend, d.Legend...)
}

// snapshot returns a copy of what is currently on the canvas.
func (c *Canvas) snapshot() Drawing {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := Drawing{Width: c.drawing.Width, Height: c.drawing.Height}
	out.Commands = append(out.Commands, c.drawing.Commands...)
	out.Legend = append(out.Legend, c.drawing.Legend...)
	return out
}

// RenderSVG renders d and returns the canvas encoded as an SVG element, both
// under one lock so concurrent requests never see each other's drawing.
func (c *Canvas) RenderSVG(d Drawing) (template.HTML, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.render(d)
	var buf bytes.Buffer
	if err := WriteSVG(&buf, c.drawing); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
