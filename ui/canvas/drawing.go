// Drawing primitives for the circuit canvas raster.
package canvas

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"circuit-designer/internal/schematic"
)

var (
	colorBackground = color.RGBA{250, 250, 250, 255}
	colorGrid       = color.RGBA{215, 215, 215, 255}
	colorGuide      = color.RGBA{120, 170, 255, 255}
	colorGate       = color.RGBA{40, 40, 40, 255}
	colorWire       = color.RGBA{40, 40, 40, 255}
	colorPinInput   = color.RGBA{30, 130, 60, 255}
	colorPinOutput  = color.RGBA{190, 60, 40, 255}
	colorJunction   = color.RGBA{40, 40, 40, 255}
	colorSelected   = color.RGBA{230, 140, 20, 255}
	colorPreview    = color.RGBA{150, 150, 150, 255}
)

// z maps a canvas coordinate to a raster pixel at the current zoom.
func (cc *CircuitCanvas) z(v float64) int {
	return int(v * cc.zoom)
}

// render redraws the whole scene from the graph.
func (cc *CircuitCanvas) render(w, h int) image.Image {
	output := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(output, output.Bounds(), &image.Uniform{colorBackground}, image.Point{}, draw.Src)

	cc.drawGrid(output, w, h)
	cc.drawGuides(output, w, h)
	cc.drawWires(output)
	cc.drawPreview(output)
	cc.drawJunctions(output)
	cc.drawGates(output)
	return output
}

func (cc *CircuitCanvas) drawGrid(output *image.RGBA, w, h int) {
	if !cc.state.Snap.GridEnabled() {
		return
	}
	spacing := int(cc.state.Snap.GridSpacing() * cc.zoom)
	if spacing < 2 {
		return
	}
	for y := 0; y < h; y += spacing {
		for x := 0; x < w; x += spacing {
			output.SetRGBA(x, y, colorGrid)
		}
	}
}

func (cc *CircuitCanvas) drawGuides(output *image.RGBA, w, h int) {
	horizontal, vertical := cc.state.Snap.Guides()
	for _, y := range horizontal {
		drawLine(output, 0, cc.z(y), w-1, cc.z(y), colorGuide, 1)
	}
	for _, x := range vertical {
		drawLine(output, cc.z(x), 0, cc.z(x), h-1, colorGuide, 1)
	}
}

func (cc *CircuitCanvas) drawWires(output *image.RGBA) {
	g := cc.state.Graph
	for _, wire := range g.Wires() {
		a, errA := g.EndpointPosition(wire.A)
		b, errB := g.EndpointPosition(wire.B)
		if errA != nil || errB != nil {
			continue
		}
		col := colorWire
		thickness := 2
		if cc.state.Session.Selected(wire.ID) {
			col = colorSelected
			thickness = 3
		}
		drawLine(output, cc.z(a.X), cc.z(a.Y), cc.z(b.X), cc.z(b.Y), col, thickness)
	}
}

func (cc *CircuitCanvas) drawPreview(output *image.RGBA) {
	from, to, ok := cc.state.Session.PreviewLine()
	if !ok {
		return
	}
	drawLine(output, cc.z(from.X), cc.z(from.Y), cc.z(to.X), cc.z(to.Y), colorPreview, 1)
}

func (cc *CircuitCanvas) drawJunctions(output *image.RGBA) {
	for _, j := range cc.state.Graph.Junctions() {
		col := colorJunction
		if cc.state.Session.Selected(j.ID) {
			col = colorSelected
		}
		fillCircle(output, cc.z(j.Position.X), cc.z(j.Position.Y), 4, col)
	}
}

func (cc *CircuitCanvas) drawGates(output *image.RGBA) {
	for _, gate := range cc.state.Graph.Gates() {
		col := colorGate
		if cc.state.Session.Selected(gate.ID) {
			col = colorSelected
		}

		// A quarter-turned gate swaps its box dimensions.
		halfW, halfH := schematic.GateWidth/2, schematic.GateHeight/2
		if gate.Rotation%180 != 0 {
			halfW, halfH = halfH, halfW
		}
		x1 := cc.z(gate.Position.X - halfW)
		y1 := cc.z(gate.Position.Y - halfH)
		x2 := cc.z(gate.Position.X + halfW)
		y2 := cc.z(gate.Position.Y + halfH)
		drawRect(output, x1, y1, x2, y2, col)

		drawCenteredLabel(output, gate.Kind.String(), cc.z(gate.Position.X), cc.z(gate.Position.Y), col)

		for i := range gate.Pins {
			pin := &gate.Pins[i]
			pos := gate.PinPosition(pin)
			pc := colorPinInput
			if pin.Role == schematic.RoleOutput {
				pc = colorPinOutput
			}
			fillCircle(output, cc.z(pos.X), cc.z(pos.Y), 3, pc)
		}
	}
}

// drawLine draws a line using Bresenham's algorithm with the given thickness.
func drawLine(output *image.RGBA, x1, y1, x2, y2 int, col color.RGBA, thickness int) {
	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy

	bounds := output.Bounds()
	x, y := x1, y1
	for {
		for tx := -thickness / 2; tx <= thickness/2; tx++ {
			for ty := -thickness / 2; ty <= thickness/2; ty++ {
				px, py := x+tx, y+ty
				if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
					output.SetRGBA(px, py, col)
				}
			}
		}
		if x == x2 && y == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x += sx
		}
		if e2 < dx {
			err += dx
			y += sy
		}
	}
}

// drawRect draws an axis-aligned rectangle outline.
func drawRect(output *image.RGBA, x1, y1, x2, y2 int, col color.RGBA) {
	drawLine(output, x1, y1, x2, y1, col, 1)
	drawLine(output, x2, y1, x2, y2, col, 1)
	drawLine(output, x2, y2, x1, y2, col, 1)
	drawLine(output, x1, y2, x1, y1, col, 1)
}

// fillCircle draws a filled circle.
func fillCircle(output *image.RGBA, cx, cy, r int, col color.RGBA) {
	bounds := output.Bounds()
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy > r*r {
				continue
			}
			px, py := cx+dx, cy+dy
			if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
				output.SetRGBA(px, py, col)
			}
		}
	}
}

// drawCenteredLabel draws text centered on (cx, cy) using the basic bitmap
// face.
func drawCenteredLabel(output *image.RGBA, label string, cx, cy int, col color.RGBA) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  output,
		Src:  image.NewUniform(col),
		Face: face,
	}
	width := d.MeasureString(label)
	d.Dot = fixed.Point26_6{
		X: fixed.I(cx) - width/2,
		Y: fixed.I(cy) + fixed.I(face.Ascent-face.Height/2),
	}
	d.DrawString(label)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
