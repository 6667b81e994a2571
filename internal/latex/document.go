// Package latex turns a schematic graph into TikZ circuit markup. The same
// ordered statement list backs both the rendered text and the structured
// document handed to the typesetting pipeline, so the two can never diverge.
package latex

import (
	"strconv"
	"strings"
)

// Preamble and epilogue are fixed templates wrapping the generated body.
const (
	Preamble = `\documentclass{standalone}
\usepackage{tikz}
\usetikzlibrary{shapes.gates.logic.US}
\begin{document}
\begin{tikzpicture}`

	Epilogue = `\end{tikzpicture}
\end{document}`
)

// GateStatement is one gate node in the output document.
type GateStatement struct {
	ID       string  `json:"id"`
	Symbol   string  `json:"symbol"`
	Inputs   int     `json:"inputs"`
	Rotation int     `json:"rotation"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

// Render emits the TikZ node statement for the gate. The input-count option
// only appears beyond the symbol's implicit two inputs, and the rotation
// option only for rotated gates.
func (g GateStatement) Render() string {
	var b strings.Builder
	b.WriteString(`\node[`)
	b.WriteString(g.Symbol)
	b.WriteString(", draw")
	if g.Inputs > 2 {
		b.WriteString(", logic gate inputs=")
		b.WriteString(strconv.Itoa(g.Inputs))
	}
	if g.Rotation != 0 {
		b.WriteString(", rotate=")
		b.WriteString(strconv.Itoa(g.Rotation))
	}
	b.WriteString("] (")
	b.WriteString(g.ID)
	b.WriteString(") at (")
	b.WriteString(formatCoord(g.X))
	b.WriteString(", ")
	b.WriteString(formatCoord(g.Y))
	b.WriteString(") {};")
	return b.String()
}

// JunctionStatement is one branch-point node in the output document.
type JunctionStatement struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// Render emits the filled-dot node for the junction.
func (j JunctionStatement) Render() string {
	var b strings.Builder
	b.WriteString(`\node[circle, fill, inner sep=1.5pt] (`)
	b.WriteString(j.ID)
	b.WriteString(") at (")
	b.WriteString(formatCoord(j.X))
	b.WriteString(", ")
	b.WriteString(formatCoord(j.Y))
	b.WriteString(") {};")
	return b.String()
}

// ConnectionStatement is one wire between two resolved anchor references.
type ConnectionStatement struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Render emits the draw statement for the connection.
func (c ConnectionStatement) Render() string {
	return `\draw (` + c.From + `) -- (` + c.To + `);`
}

// Document is the structured form of a serialized circuit. Statement order
// matches graph creation order.
type Document struct {
	Gates       []GateStatement       `json:"gates"`
	Junctions   []JunctionStatement   `json:"junctions"`
	Connections []ConnectionStatement `json:"connections"`
}

// Render produces the complete LaTeX source. Section headers are omitted for
// empty sections, so an empty document is just the preamble and epilogue.
func (d *Document) Render() string {
	var b strings.Builder
	b.WriteString(Preamble)
	b.WriteByte('\n')
	if len(d.Gates) > 0 {
		b.WriteString("%Gates\n")
		for _, g := range d.Gates {
			b.WriteString(g.Render())
			b.WriteByte('\n')
		}
	}
	if len(d.Junctions) > 0 {
		b.WriteString("%Junctions\n")
		for _, j := range d.Junctions {
			b.WriteString(j.Render())
			b.WriteByte('\n')
		}
	}
	if len(d.Connections) > 0 {
		b.WriteString("%Connections\n")
		for _, c := range d.Connections {
			b.WriteString(c.Render())
			b.WriteByte('\n')
		}
	}
	b.WriteString(Epilogue)
	b.WriteByte('\n')
	return b.String()
}

// formatCoord renders a coordinate without trailing zeros, so whole numbers
// print bare and the output stays byte-stable across runs. The zero check
// also catches IEEE negative zero, which the vertical-axis flip produces for
// entities on the X axis and which would otherwise print as "-0".
func formatCoord(v float64) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
