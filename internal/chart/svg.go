package chart

import (
	"html/template"
	"io"
	"strconv"
)

var svgTemplate = template.Must(template.New("svg").Funcs(template.FuncMap{
	"num": func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) },
}).Parse(`<svg xmlns="http://www.w3.org/2000/svg" width="{{num .Width}}" height="{{num .Height}}" viewBox="0 0 {{num .Width}} {{num .Height}}" class="chart" role="img">
<rect x="0" y="0" width="{{num .Width}}" height="{{num .Height}}" fill="#FFFFFF"/>
{{- range .Commands}}
{{- if eq .Kind "rect"}}
<rect x="{{num .X}}" y="{{num .Y}}" width="{{num .W}}" height="{{num .H}}" fill="{{.Fill}}"{{if .Stroke}} stroke="{{.Stroke}}" stroke-width="{{num .StrokeWidth}}"{{end}}/>
{{- else if eq .Kind "line"}}
<line x1="{{num .X}}" y1="{{num .Y}}" x2="{{num .X2}}" y2="{{num .Y2}}" stroke="{{.Stroke}}" stroke-width="{{num .StrokeWidth}}"/>
{{- else if eq .Kind "text"}}
<text x="{{num .X}}" y="{{num .Y}}" fill="{{.Fill}}" text-anchor="{{.Anchor}}" dominant-baseline="middle" font-family="Arial, sans-serif" font-size="{{num .FontSize}}"{{if .Bold}} font-weight="bold"{{end}}>{{.Text}}</text>
{{- end}}
{{- end}}
</svg>`))

// WriteSVG encodes d as a standalone SVG element. Text is escaped.
func WriteSVG(w io.Writer, d Drawing) error {
	return svgTemplate.Execute(w, d)
}
