// Package align implements alignment and distribution commands for selected
// gates: snap a ragged selection onto its least-squares best-fit line, or
// spread gates evenly between the two extremes.
package align

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"circuit-designer/internal/schematic"
	"circuit-designer/pkg/geometry"
)

// BestFitLine fits a line through the points by least squares, returned as a
// point on the line and a unit direction. Vertical and near-vertical point
// sets are handled by fitting against whichever axis has the larger spread.
func BestFitLine(points []geometry.Point2D) (origin, dir geometry.Point2D, err error) {
	n := len(points)
	if n < 2 {
		return geometry.Point2D{}, geometry.Point2D{}, fmt.Errorf("need at least 2 points, got %d", n)
	}

	c := geometry.Centroid(points)

	var spreadX, spreadY float64
	for _, p := range points {
		spreadX += (p.X - c.X) * (p.X - c.X)
		spreadY += (p.Y - c.Y) * (p.Y - c.Y)
	}

	// Regress the minor axis on the major one so a vertical column of gates
	// does not degenerate.
	swap := spreadY > spreadX
	A := mat.NewDense(n, 2, nil)
	B := mat.NewVecDense(n, nil)
	for i, p := range points {
		x, y := p.X, p.Y
		if swap {
			x, y = y, x
		}
		A.Set(i, 0, x)
		A.Set(i, 1, 1)
		B.SetVec(i, y)
	}

	var qr mat.QR
	qr.Factorize(A)
	var params mat.VecDense
	if err := qr.SolveVecTo(&params, false, B); err != nil {
		return geometry.Point2D{}, geometry.Point2D{}, fmt.Errorf("line fit: %w", err)
	}

	slope := params.AtVec(0)
	norm := math.Hypot(1, slope)
	if swap {
		dir = geometry.Point2D{X: slope / norm, Y: 1 / norm}
	} else {
		dir = geometry.Point2D{X: 1 / norm, Y: slope / norm}
	}
	return c, dir, nil
}

// Gates projects each selected gate onto the selection's best-fit line and
// moves it there. Fewer than two gates is a no-op.
func Gates(g *schematic.Graph, ids []string) error {
	gates := selectGates(g, ids)
	if len(gates) < 2 {
		return nil
	}

	points := make([]geometry.Point2D, len(gates))
	for i, gate := range gates {
		points[i] = gate.Position
	}

	origin, dir, err := BestFitLine(points)
	if err != nil {
		return err
	}

	for _, gate := range gates {
		d := gate.Position.Sub(origin)
		t := d.X*dir.X + d.Y*dir.Y
		if err := g.MoveGate(gate.ID, origin.Add(dir.Scale(t))); err != nil {
			return err
		}
	}
	return nil
}

// Distribute spaces the selected gates evenly along the segment between the
// two outermost gates, keeping their order along the dominant axis. Fewer
// than three gates is a no-op.
func Distribute(g *schematic.Graph, ids []string) error {
	gates := selectGates(g, ids)
	if len(gates) < 3 {
		return nil
	}

	bounds := make([]geometry.Point2D, len(gates))
	for i, gate := range gates {
		bounds[i] = gate.Position
	}
	box := geometry.BoundingBox(bounds)
	horizontal := box.Width >= box.Height

	sort.SliceStable(gates, func(i, j int) bool {
		if horizontal {
			return gates[i].Position.X < gates[j].Position.X
		}
		return gates[i].Position.Y < gates[j].Position.Y
	})

	first := gates[0].Position
	last := gates[len(gates)-1].Position
	step := last.Sub(first).Scale(1 / float64(len(gates)-1))

	for i, gate := range gates[1 : len(gates)-1] {
		pos := first.Add(step.Scale(float64(i + 1)))
		if err := g.MoveGate(gate.ID, pos); err != nil {
			return err
		}
	}
	return nil
}

// selectGates filters the IDs down to gates that still exist, in the order
// given.
func selectGates(g *schematic.Graph, ids []string) []*schematic.Gate {
	gates := make([]*schematic.Gate, 0, len(ids))
	for _, id := range ids {
		if gate, ok := g.Gate(id); ok {
			gates = append(gates, gate)
		}
	}
	return gates
}
